package viewshed

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/kestrelops/sightline/composite"
	"github.com/kestrelops/sightline/geom"
	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/scene"
	"github.com/kestrelops/sightline/shadow"
	"github.com/kestrelops/sightline/track"
)

const (
	DefaultResolution = 4096
	DefaultDepthBias  = 2e-12
	DefaultAlpha      = 0.5
)

// DefaultVisibleColor tints points the sensor can see.
var DefaultVisibleColor = render.RGBA{G: 1, A: 1}

// DefaultShadowColor tints points the sensor cannot see.
var DefaultShadowColor = render.RGBA{R: 1, A: 1}

// Options configures a Sensor. DefaultOptions fills the conventional
// defaults; hand-built Options get zero numeric fields defaulted by New,
// but boolean flags are taken as written.
type Options struct {
	Scene    *scene.Scene
	Observer track.Source
	Target   track.Source

	VisibleColor render.RGBA // zero value -> DefaultVisibleColor
	ShadowColor  render.RGBA // zero value -> DefaultShadowColor
	Alpha        float32     // zero value -> DefaultAlpha; SetAlpha(0) for fully transparent
	FieldOfView  float64     // vertical, radians; zero value -> DefaultFieldOfView
	Resolution   int         // power of two; zero value -> DefaultResolution
	DepthBias    float64     // zero value -> DefaultDepthBias

	EnableFrustum  bool
	ExcludeTerrain bool

	Orientation OrientationPolicy // nil -> RadialUp
}

// DefaultOptions returns the baseline sensor configuration: green over
// red at half strength, 4096 texels, frustum outline on, terrain
// excluded from tinting.
func DefaultOptions(sc *scene.Scene, observer, target track.Source) Options {
	return Options{
		Scene:          sc,
		Observer:       observer,
		Target:         target,
		VisibleColor:   DefaultVisibleColor,
		ShadowColor:    DefaultShadowColor,
		Alpha:          DefaultAlpha,
		FieldOfView:    DefaultFieldOfView,
		Resolution:     DefaultResolution,
		DepthBias:      DefaultDepthBias,
		EnableFrustum:  true,
		ExcludeTerrain: true,
	}
}

// FixedOptions is DefaultOptions for stationary observer and target
// positions, wrapped into constant track sources.
func FixedOptions(sc *scene.Scene, observer, target mgl64.Vec3) Options {
	return DefaultOptions(sc, track.Static{P: observer}, track.Static{P: target})
}

// Sensor is the aggregate: it resolves geometry every frame, keeps one
// visibility map aimed along the sight line, and owns the composition
// pass that tints the frame. It attaches to its scene at construction
// and stays attached until Destroy.
type Sensor struct {
	id uuid.UUID
	sc *scene.Scene

	observer track.Source
	target   track.Source
	policy   OrientationPolicy

	pass *composite.Pass
	vmap *shadow.Map

	geometry Geometry
	hasGeom  bool

	fov           float64
	resolution    int
	depthBias     float64
	enableFrustum bool

	primID uuid.UUID
	hookID uuid.UUID

	destroyed bool
}

// New validates the options, attaches the sensor to the scene and
// attempts an immediate geometry resolution so static sources get their
// visibility map before the first frame.
func New(opts Options) (*Sensor, error) {
	if opts.Scene == nil {
		return nil, fmt.Errorf("viewshed: Options.Scene is required")
	}
	if opts.Observer == nil {
		return nil, fmt.Errorf("viewshed: Options.Observer is required")
	}
	if opts.Target == nil {
		return nil, fmt.Errorf("viewshed: Options.Target is required")
	}

	if opts.Resolution == 0 {
		opts.Resolution = DefaultResolution
	}
	if opts.Resolution < 0 || opts.Resolution&(opts.Resolution-1) != 0 {
		return nil, fmt.Errorf("viewshed: resolution %d is not a power of two", opts.Resolution)
	}
	if opts.DepthBias < 0 {
		return nil, fmt.Errorf("viewshed: negative depth bias %g", opts.DepthBias)
	}
	if opts.DepthBias == 0 {
		opts.DepthBias = DefaultDepthBias
	}
	if opts.FieldOfView < 0 || opts.FieldOfView >= math.Pi {
		return nil, fmt.Errorf("viewshed: field of view %g rad out of range", opts.FieldOfView)
	}
	if opts.FieldOfView == 0 {
		opts.FieldOfView = DefaultFieldOfView
	}
	if opts.Alpha < 0 || opts.Alpha > 1 {
		return nil, fmt.Errorf("viewshed: alpha %g out of [0,1]", opts.Alpha)
	}
	if opts.Alpha == 0 {
		opts.Alpha = DefaultAlpha
	}
	if opts.VisibleColor == (render.RGBA{}) {
		opts.VisibleColor = DefaultVisibleColor
	}
	if opts.ShadowColor == (render.RGBA{}) {
		opts.ShadowColor = DefaultShadowColor
	}

	s := &Sensor{
		id:            uuid.New(),
		sc:            opts.Scene,
		observer:      opts.Observer,
		target:        opts.Target,
		policy:        opts.Orientation,
		fov:           opts.FieldOfView,
		resolution:    opts.Resolution,
		depthBias:     opts.DepthBias,
		enableFrustum: opts.EnableFrustum,
	}

	u := composite.Uniforms{
		Map:            nil,
		VisibleColor:   opts.VisibleColor,
		ShadowColor:    opts.ShadowColor,
		Alpha:          opts.Alpha,
		ExcludeTerrain: opts.ExcludeTerrain,
		Ellipsoid:      geom.WGS84,
	}
	s.pass = composite.NewPass(u)

	s.sc.AddPass(s.pass)
	s.primID = s.sc.AddPrimitive(s)
	s.hookID = s.sc.AddPreRenderHook(s.syncEnablement)

	fb := s.sc.Framebuffer()
	aspect := 1.0
	if fb.H > 0 {
		aspect = float64(fb.W) / float64(fb.H)
	}
	s.refresh(s.sc.Time(), aspect)

	slog.Info("sensor_attached",
		"sensor", s.id,
		"resolution", s.resolution,
		"alpha", opts.Alpha,
		"frustum", s.enableFrustum)
	return s, nil
}

// ID returns the sensor's scene-unique identity.
func (s *Sensor) ID() uuid.UUID {
	return s.id
}

// Update implements scene.Primitive: it refreshes the sensor geometry
// and schedules the visibility map's depth pass. With a source in a
// transient gap the previous camera and map carry over unchanged.
func (s *Sensor) Update(fs *scene.FrameState) {
	s.mustLive()
	s.refresh(fs.Time, fs.AspectRatio())
	if s.vmap != nil && !s.vmap.Destroyed() {
		fs.PushVisibilityMap(s.vmap)
	}
}

// Object implements scene.Primitive; a sensor has no renderable body.
func (s *Sensor) Object() (render.Object, bool) {
	return nil, false
}

// syncEnablement runs as a pre-render hook: the pass stays off until
// the map's first depth pass has completed, so the composition never
// samples an unwritten buffer.
func (s *Sensor) syncEnablement(*scene.FrameState) {
	s.pass.SetEnabled(s.vmap != nil && s.vmap.Ready())
}

func (s *Sensor) refresh(t, aspect float64) {
	g, ok := Resolve(s.observer, s.target, t)
	if !ok || g.Distance <= NearPlane {
		return
	}
	s.geometry = g
	s.hasGeom = true

	cam := BuildCamera(g, s.fov, aspect, s.policy)
	if s.vmap == nil {
		m, err := shadow.NewMap(cam, s.resolution, s.depthBias)
		if err != nil {
			slog.Error("visibility_map_create_failed", "sensor", s.id, "error", err)
			return
		}
		s.vmap = m
		s.pass.Uniforms().Map = m
		slog.Info("visibility_map_created",
			"sensor", s.id,
			"resolution", s.resolution,
			"distance", g.Distance)
		return
	}
	s.vmap.UpdateView(cam)
}

// Geometry returns the last resolved placement; ok is false until the
// first successful resolution.
func (s *Sensor) Geometry() (Geometry, bool) {
	s.mustLive()
	return s.geometry, s.hasGeom
}

// ViewDistance returns the effective observer-target distance, 0 before
// the first resolution.
func (s *Sensor) ViewDistance() float64 {
	s.mustLive()
	if !s.hasGeom {
		return 0
	}
	return s.geometry.Distance
}

// Map exposes the sensor's visibility map, nil before the first
// successful geometry resolution.
func (s *Sensor) Map() *shadow.Map {
	s.mustLive()
	return s.vmap
}

// Stats returns the composition pass counters from the last frame.
func (s *Sensor) Stats() composite.PassStats {
	s.mustLive()
	return s.pass.Stats()
}

// Alpha returns the blend strength.
func (s *Sensor) Alpha() float32 {
	s.mustLive()
	return s.pass.Uniforms().Alpha
}

// SetAlpha sets the blend strength, clamped to [0,1].
func (s *Sensor) SetAlpha(a float32) {
	s.mustLive()
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	s.pass.Uniforms().Alpha = a
}

// VisibleColor returns the tint of points in the sensor's line of sight.
func (s *Sensor) VisibleColor() render.RGBA {
	s.mustLive()
	return s.pass.Uniforms().VisibleColor
}

// SetVisibleColor replaces the visible-area tint.
func (s *Sensor) SetVisibleColor(c render.RGBA) {
	s.mustLive()
	s.pass.Uniforms().VisibleColor = c
}

// ShadowColor returns the tint of occluded points.
func (s *Sensor) ShadowColor() render.RGBA {
	s.mustLive()
	return s.pass.Uniforms().ShadowColor
}

// SetShadowColor replaces the occluded-area tint.
func (s *Sensor) SetShadowColor(c render.RGBA) {
	s.mustLive()
	s.pass.Uniforms().ShadowColor = c
}

// ExcludeTerrain reports whether pixels on the ellipsoid body skip
// tinting.
func (s *Sensor) ExcludeTerrain() bool {
	s.mustLive()
	return s.pass.Uniforms().ExcludeTerrain
}

// SetExcludeTerrain toggles tinting of pixels on the ellipsoid body.
func (s *Sensor) SetExcludeTerrain(v bool) {
	s.mustLive()
	s.pass.Uniforms().ExcludeTerrain = v
}

// DepthBias returns the occlusion comparison bias.
func (s *Sensor) DepthBias() float64 {
	s.mustLive()
	return s.depthBias
}

// SetDepthBias replaces the occlusion comparison bias; negative values
// are rejected.
func (s *Sensor) SetDepthBias(b float64) error {
	s.mustLive()
	if b < 0 {
		return fmt.Errorf("viewshed: negative depth bias %g", b)
	}
	s.depthBias = b
	if s.vmap != nil {
		s.vmap.SetDepthBias(b)
	}
	return nil
}

// NormalShadingSmooth returns the visibility smoothing factor.
func (s *Sensor) NormalShadingSmooth() float64 {
	s.mustLive()
	return s.pass.Uniforms().NormalShadingSmooth
}

// SetNormalShadingSmooth replaces the visibility smoothing factor.
func (s *Sensor) SetNormalShadingSmooth(v float64) {
	s.mustLive()
	s.pass.Uniforms().NormalShadingSmooth = v
}

// Darkness returns the visibility floor for occluded samples.
func (s *Sensor) Darkness() float64 {
	s.mustLive()
	if s.vmap == nil {
		return 0
	}
	return s.vmap.Darkness()
}

// SetDarkness forwards the visibility floor to the map, clamped there
// to [0,1]. Without a map yet this is a no-op.
func (s *Sensor) SetDarkness(d float64) {
	s.mustLive()
	if s.vmap != nil {
		s.vmap.SetDarkness(d)
	}
}

// EnableFrustum reports whether the frustum outline should be drawn.
func (s *Sensor) EnableFrustum() bool {
	s.mustLive()
	return s.enableFrustum
}

// SetEnableFrustum toggles the frustum outline.
func (s *Sensor) SetEnableFrustum(v bool) {
	s.mustLive()
	s.enableFrustum = v
}

// FieldOfView returns the sensor's vertical field of view in radians.
func (s *Sensor) FieldOfView() float64 {
	s.mustLive()
	return s.fov
}

// SetFieldOfView replaces the vertical field of view; it takes effect
// on the next geometry refresh.
func (s *Sensor) SetFieldOfView(rad float64) error {
	s.mustLive()
	if rad <= 0 || rad >= math.Pi {
		return fmt.Errorf("viewshed: field of view %g rad out of range", rad)
	}
	s.fov = rad
	return nil
}

// Resolution returns the visibility map's texel dimension.
func (s *Sensor) Resolution() int {
	s.mustLive()
	return s.resolution
}

// SetResolution destroys the current visibility map so the next frame
// allocates one at the new texel dimension. The pass disables itself
// until the new map's first depth pass completes.
func (s *Sensor) SetResolution(r int) error {
	s.mustLive()
	if r <= 0 || r&(r-1) != 0 {
		return fmt.Errorf("viewshed: resolution %d is not a power of two", r)
	}
	if r == s.resolution {
		return nil
	}
	s.resolution = r
	if s.vmap != nil {
		s.vmap.Destroy()
		s.vmap = nil
		s.pass.Uniforms().Map = nil
		s.pass.SetEnabled(false)
	}
	slog.Info("sensor_resolution_changed", "sensor", s.id, "resolution", r)
	return nil
}

// SetObserver replaces the observer source.
func (s *Sensor) SetObserver(src track.Source) error {
	s.mustLive()
	if src == nil {
		return fmt.Errorf("viewshed: nil observer source")
	}
	s.observer = src
	return nil
}

// SetTarget replaces the target source.
func (s *Sensor) SetTarget(src track.Source) error {
	s.mustLive()
	if src == nil {
		return fmt.Errorf("viewshed: nil target source")
	}
	s.target = src
	return nil
}

// FrustumOutline returns the sensor frustum's world-space corners for
// overlay drawing; ok is false while the outline is disabled or no map
// exists yet.
func (s *Sensor) FrustumOutline() ([8]mgl64.Vec3, bool) {
	s.mustLive()
	if !s.enableFrustum || s.vmap == nil {
		return [8]mgl64.Vec3{}, false
	}
	lcam := s.vmap.Camera()
	return lcam.FrustumCorners(), true
}

// Destroy detaches the sensor from its scene and releases the map and
// pass. The hooks go first so no frame callback can observe freed
// state. Destroy is idempotent; every other method panics afterwards.
func (s *Sensor) Destroy() {
	if s.destroyed {
		return
	}
	s.sc.RemovePreRenderHook(s.hookID)
	s.sc.RemovePrimitive(s.primID)
	s.sc.RemovePass(s.pass)
	s.pass.Close()
	if s.vmap != nil {
		s.vmap.Destroy()
		s.vmap = nil
	}
	s.destroyed = true
	slog.Info("sensor_destroyed", "sensor", s.id)
}

// IsDestroyed reports whether Destroy has run. Safe to call at any time.
func (s *Sensor) IsDestroyed() bool {
	return s.destroyed
}

func (s *Sensor) mustLive() {
	if s.destroyed {
		panic("viewshed: use of destroyed Sensor")
	}
}
