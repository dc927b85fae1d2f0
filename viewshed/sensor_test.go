package viewshed

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
	"github.com/kestrelops/sightline/render"
	"github.com/kestrelops/sightline/scene"
	"github.com/kestrelops/sightline/track"
)

func sensorScene(t *testing.T) *scene.Scene {
	t.Helper()
	sc := scene.NewScene(33, 33)
	t.Cleanup(sc.Close)
	sc.Camera = geom.Camera{
		Position:  mgl64.Vec3{0, 0, 0},
		Direction: mgl64.Vec3{0, 1, 0},
		Up:        mgl64.Vec3{0, 0, 1},
		FOVY:      mgl64.DegToRad(90),
		Aspect:    1,
		Near:      0.1,
		Far:       1000,
	}
	sc.AddObject(render.Sphere{Center: mgl64.Vec3{0, 600, 0}, Radius: 200, Color: render.RGBA{R: 0.6, G: 0.6, B: 0.6, A: 1}})
	return sc
}

// testSensor attaches a small sensor looking from (300,0,0) at the
// ground sphere. Terrain exclusion is off: these scenes sit near the
// coordinate origin, deep inside the reference ellipsoid.
func testSensor(t *testing.T, sc *scene.Scene) *Sensor {
	t.Helper()
	opts := FixedOptions(sc, mgl64.Vec3{300, 0, 0}, mgl64.Vec3{0, 450, 0})
	opts.Resolution = 64
	opts.ExcludeTerrain = false
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Destroy)
	return s
}

func TestNewValidation(t *testing.T) {
	sc := sensorScene(t)
	obs := track.Static{P: mgl64.Vec3{300, 0, 0}}
	tgt := track.Static{P: mgl64.Vec3{0, 450, 0}}

	tests := []struct {
		name string
		opts Options
	}{
		{"missing scene", Options{Observer: obs, Target: tgt}},
		{"missing observer", Options{Scene: sc, Target: tgt}},
		{"missing target", Options{Scene: sc, Observer: obs}},
		{"resolution not power of two", func() Options {
			o := DefaultOptions(sc, obs, tgt)
			o.Resolution = 100
			return o
		}()},
		{"negative depth bias", func() Options {
			o := DefaultOptions(sc, obs, tgt)
			o.DepthBias = -1
			return o
		}()},
		{"alpha above one", func() Options {
			o := DefaultOptions(sc, obs, tgt)
			o.Alpha = 1.5
			return o
		}()},
		{"field of view too wide", func() Options {
			o := DefaultOptions(sc, obs, tgt)
			o.FieldOfView = 3.2
			return o
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); err == nil {
				t.Error("want a construction error, got none")
			}
		})
	}

	// A failed construction must not leave hooks behind.
	if got := sc.PreRenderHookCount(); got != 0 {
		t.Errorf("hooks after failed constructions = %d, want 0", got)
	}
}

func TestNewAttachesEagerly(t *testing.T) {
	sc := sensorScene(t)
	s := testSensor(t, sc)

	if got := sc.PreRenderHookCount(); got != 1 {
		t.Errorf("hook count = %d, want 1", got)
	}
	if got := sc.PrimitiveCount(); got != 1 {
		t.Errorf("primitive count = %d, want 1", got)
	}
	if got := sc.PassCount(); got != 1 {
		t.Errorf("pass count = %d, want 1", got)
	}

	// Static sources resolve at construction time.
	g, ok := s.Geometry()
	if !ok {
		t.Fatal("no geometry after eager attach")
	}
	if g.Distance != 540.8 {
		t.Errorf("distance = %v, want 540.8", g.Distance)
	}
	if s.ViewDistance() != 540.8 {
		t.Errorf("ViewDistance = %v, want 540.8", s.ViewDistance())
	}

	m := s.Map()
	if m == nil {
		t.Fatal("no visibility map after eager attach")
	}
	if m.Ready() {
		t.Error("map ready before any depth pass")
	}
	if got := m.Resolution(); got != 64 {
		t.Errorf("map resolution = %d, want 64", got)
	}
	if got := m.MaxDistance(); got != 540.8 {
		t.Errorf("map max distance = %v, want 540.8", got)
	}
}

func TestSensorDefaults(t *testing.T) {
	sc := sensorScene(t)
	s := testSensor(t, sc)

	if got := s.Alpha(); got != 0.5 {
		t.Errorf("alpha = %v, want 0.5", got)
	}
	if got := s.VisibleColor(); got != DefaultVisibleColor {
		t.Errorf("visible color = %+v, want %+v", got, DefaultVisibleColor)
	}
	if got := s.ShadowColor(); got != DefaultShadowColor {
		t.Errorf("shadow color = %+v, want %+v", got, DefaultShadowColor)
	}
	if got := s.DepthBias(); got != DefaultDepthBias {
		t.Errorf("depth bias = %v, want %v", got, DefaultDepthBias)
	}
	if got := s.NormalShadingSmooth(); got != 0.3 {
		t.Errorf("smoothing = %v, want 0.3", got)
	}
	if got := s.Darkness(); got != 0.3 {
		t.Errorf("darkness = %v, want 0.3", got)
	}
	if !s.EnableFrustum() {
		t.Error("frustum outline should default on")
	}
}

func TestSensorFrameLifecycle(t *testing.T) {
	sc := sensorScene(t)
	s := testSensor(t, sc)

	// Frame 1: the enablement hook runs before the depth pass, so the
	// composition pass stays off and no pixels are classified.
	sc.RenderFrame()
	if !s.Map().Ready() {
		t.Fatal("map not ready after the first frame's depth pass")
	}
	if got := s.Stats().Total(); got != 0 {
		t.Errorf("pass classified %d pixels on frame 1, want 0", got)
	}

	// Frame 2: the map is ready, the pass runs over the whole viewport.
	sc.RenderFrame()
	stats := s.Stats()
	if got := stats.Total(); got != 33*33 {
		t.Fatalf("classified pixels = %d, want %d", got, 33*33)
	}
	if stats.Covered() == 0 {
		t.Error("sensor covering the ground classified nothing as covered")
	}
	if stats.Background == 0 {
		t.Error("sky pixels should classify as background")
	}
}

func TestSensorTransientGapKeepsState(t *testing.T) {
	sc := sensorScene(t)

	opts := DefaultOptions(sc,
		track.Windowed{
			Inner: track.Static{P: mgl64.Vec3{300, 0, 0}},
			Start: 0,
			End:   10,
		},
		track.Static{P: mgl64.Vec3{0, 450, 0}},
	)
	opts.Resolution = 64
	opts.ExcludeTerrain = false
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Destroy)

	sc.SetTime(5)
	sc.RenderFrame()
	sc.RenderFrame()
	if got := s.Stats().Total(); got != 33*33 {
		t.Fatalf("active sensor classified %d pixels, want %d", got, 33*33)
	}
	gBefore, _ := s.Geometry()

	// The observer track has no position after t=10; the sensor keeps
	// its last camera and the map keeps refreshing and executing.
	sc.SetTime(20)
	sc.RenderFrame()

	gAfter, ok := s.Geometry()
	if !ok || gAfter != gBefore {
		t.Errorf("geometry changed across a source gap: %+v -> %+v", gBefore, gAfter)
	}
	if !s.Map().Ready() {
		t.Error("map lost readiness across a source gap")
	}
	if got := s.Stats().Total(); got != 33*33 {
		t.Errorf("pass skipped during a source gap: classified %d", got)
	}
}

func TestSetResolutionRecreatesMap(t *testing.T) {
	sc := sensorScene(t)
	s := testSensor(t, sc)
	sc.RenderFrame()

	old := s.Map()
	if err := s.SetResolution(64); err != nil {
		t.Fatalf("same-value SetResolution: %v", err)
	}
	if s.Map() != old {
		t.Error("same-value SetResolution replaced the map")
	}

	if err := s.SetResolution(100); err == nil {
		t.Error("non power-of-two resolution accepted")
	}

	if err := s.SetResolution(128); err != nil {
		t.Fatal(err)
	}
	if !old.Destroyed() {
		t.Error("old map not destroyed on resolution change")
	}
	if s.Map() != nil {
		t.Error("map should be absent until the next frame")
	}

	sc.RenderFrame()
	m := s.Map()
	if m == nil {
		t.Fatal("map not recreated on the next frame")
	}
	if got := m.Resolution(); got != 128 {
		t.Errorf("recreated resolution = %d, want 128", got)
	}
	if !m.Ready() {
		t.Error("recreated map should be ready after its first depth pass")
	}
}

func TestSensorLiveReconfiguration(t *testing.T) {
	sc := sensorScene(t)
	s := testSensor(t, sc)

	s.SetAlpha(2)
	if got := s.Alpha(); got != 1 {
		t.Errorf("alpha clamped to %v, want 1", got)
	}
	s.SetAlpha(-1)
	if got := s.Alpha(); got != 0 {
		t.Errorf("alpha clamped to %v, want 0", got)
	}

	blue := render.RGBA{B: 1, A: 1}
	s.SetVisibleColor(blue)
	if got := s.VisibleColor(); got != blue {
		t.Errorf("visible color = %+v, want %+v", got, blue)
	}
	s.SetShadowColor(blue)
	if got := s.ShadowColor(); got != blue {
		t.Errorf("shadow color = %+v, want %+v", got, blue)
	}

	if err := s.SetDepthBias(-1); err == nil {
		t.Error("negative depth bias accepted")
	}
	if err := s.SetDepthBias(1e-6); err != nil {
		t.Fatal(err)
	}
	if got := s.Map().DepthBias(); got != 1e-6 {
		t.Errorf("map depth bias = %v, want 1e-6", got)
	}

	s.SetDarkness(0.8)
	if got := s.Darkness(); got != 0.8 {
		t.Errorf("darkness = %v, want 0.8", got)
	}
	s.SetNormalShadingSmooth(0.9)
	if got := s.NormalShadingSmooth(); got != 0.9 {
		t.Errorf("smoothing = %v, want 0.9", got)
	}

	if s.ExcludeTerrain() {
		t.Error("terrain exclusion on despite the test options")
	}
	s.SetExcludeTerrain(true)
	if !s.ExcludeTerrain() {
		t.Error("SetExcludeTerrain(true) did not stick")
	}
	s.SetExcludeTerrain(false)

	if got := s.FieldOfView(); got != DefaultFieldOfView {
		t.Errorf("field of view = %v, want %v", got, DefaultFieldOfView)
	}
	if err := s.SetFieldOfView(0); err == nil {
		t.Error("zero field of view accepted")
	}
	if err := s.SetFieldOfView(4); err == nil {
		t.Error("field of view beyond pi accepted")
	}
	if err := s.SetFieldOfView(mgl64.DegToRad(60)); err != nil {
		t.Fatal(err)
	}
	sc.RenderFrame()
	lcam := s.Map().Camera()
	if lcam.FOVY != mgl64.DegToRad(60) {
		t.Errorf("map camera fovy = %v, want %v", lcam.FOVY, mgl64.DegToRad(60))
	}

	if err := s.SetObserver(nil); err == nil {
		t.Error("nil observer source accepted")
	}
	if err := s.SetTarget(track.Static{P: mgl64.Vec3{0, 400, 0}}); err != nil {
		t.Fatal(err)
	}
	sc.RenderFrame()
	if got := s.ViewDistance(); got != 500 {
		t.Errorf("distance after retarget = %v, want 500", got)
	}
}

func TestFrustumOutline(t *testing.T) {
	sc := sensorScene(t)
	s := testSensor(t, sc)

	corners, ok := s.FrustumOutline()
	if !ok {
		t.Fatal("outline unavailable despite an eager map")
	}
	if corners[0] == corners[4] {
		t.Error("near and far corners coincide")
	}

	s.SetEnableFrustum(false)
	if _, ok := s.FrustumOutline(); ok {
		t.Error("outline still available while disabled")
	}
}

func TestDestroyDetaches(t *testing.T) {
	sc := sensorScene(t)

	opts := FixedOptions(sc, mgl64.Vec3{300, 0, 0}, mgl64.Vec3{0, 450, 0})
	opts.Resolution = 64
	opts.ExcludeTerrain = false
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}

	sc.RenderFrame()
	m := s.Map()

	s.Destroy()
	if !s.IsDestroyed() {
		t.Fatal("IsDestroyed = false after Destroy")
	}
	if got := sc.PreRenderHookCount(); got != 0 {
		t.Errorf("hooks after destroy = %d, want 0", got)
	}
	if got := sc.PrimitiveCount(); got != 0 {
		t.Errorf("primitives after destroy = %d, want 0", got)
	}
	if got := sc.PassCount(); got != 0 {
		t.Errorf("passes after destroy = %d, want 0", got)
	}
	if !m.Destroyed() {
		t.Error("visibility map survived destroy")
	}

	// Idempotent second call.
	s.Destroy()

	// The scene keeps rendering without the sensor.
	sc.RenderFrame()

	defer func() {
		if recover() == nil {
			t.Error("method on a destroyed sensor did not panic")
		}
	}()
	s.SetAlpha(0.4)
}
