package composite

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
	"github.com/kestrelops/sightline/render"
)

// PassStats counts how the last Execute classified the viewport. The
// outcome counts partition the full pixel grid.
type PassStats struct {
	Background      int
	TerrainExcluded int
	OutsideFrustum  int
	OutOfRange      int
	Visible         int
	NearPlane       int
	Shadowed        int
}

func (s *PassStats) add(o Outcome) {
	switch o {
	case OutcomeBackground:
		s.Background++
	case OutcomeTerrainExcluded:
		s.TerrainExcluded++
	case OutcomeOutsideFrustum:
		s.OutsideFrustum++
	case OutcomeOutOfRange:
		s.OutOfRange++
	case OutcomeVisible:
		s.Visible++
	case OutcomeNearPlane:
		s.NearPlane++
	case OutcomeShadowed:
		s.Shadowed++
	}
}

func (s *PassStats) merge(o PassStats) {
	s.Background += o.Background
	s.TerrainExcluded += o.TerrainExcluded
	s.OutsideFrustum += o.OutsideFrustum
	s.OutOfRange += o.OutOfRange
	s.Visible += o.Visible
	s.NearPlane += o.NearPlane
	s.Shadowed += o.Shadowed
}

// Total returns the number of classified pixels.
func (s PassStats) Total() int {
	return s.Background + s.TerrainExcluded + s.OutsideFrustum +
		s.OutOfRange + s.Visible + s.NearPlane + s.Shadowed
}

// Covered returns the pixels that reached the occlusion test.
func (s PassStats) Covered() int {
	return s.Visible + s.NearPlane + s.Shadowed
}

// VisibleFraction returns visible pixels over covered pixels, 0 when the
// sensor covers nothing.
func (s PassStats) VisibleFraction() float64 {
	c := s.Covered()
	if c == 0 {
		return 0
	}
	return float64(s.Visible) / float64(c)
}

// Pass applies one sensor's visibility tint to a rendered framebuffer.
type Pass struct {
	uniforms Uniforms
	enabled  bool
	stats    PassStats
	pool     *render.WorkPool
}

// NewPass wraps the uniforms in a disabled pass. Missing tuning values
// get their conventional defaults.
func NewPass(u Uniforms) *Pass {
	if u.NormalShadingSmooth == 0 {
		u.NormalShadingSmooth = 0.3
	}
	return &Pass{uniforms: u, pool: render.NewWorkPool()}
}

// Uniforms exposes the pass state for live adjustment.
func (p *Pass) Uniforms() *Uniforms {
	return &p.uniforms
}

// Enabled reports whether Execute will run.
func (p *Pass) Enabled() bool {
	return p.enabled
}

// SetEnabled flips the pass on or off.
func (p *Pass) SetEnabled(v bool) {
	p.enabled = v
}

// Stats returns the counters from the most recent Execute.
func (p *Pass) Stats() PassStats {
	return p.stats
}

// Close stops the worker pool. The pass must not execute afterwards.
func (p *Pass) Close() {
	p.pool.Stop()
}

// Execute classifies and tints every pixel of fb as seen from cam. When
// the visibility map is absent or has no completed depth pass the frame
// is left untouched.
func (p *Pass) Execute(fb *render.Framebuffer, cam *geom.Camera) PassStats {
	u := &p.uniforms
	if u.Map == nil || !u.Map.Ready() {
		p.stats = PassStats{}
		return p.stats
	}

	view := cam.View()
	lcam := u.Map.Camera()
	lf, lr, lu := lcam.Basis()
	u.LightMatrix = u.Map.LightMatrix()
	u.LightPosEC = transformPoint(view, lcam.Position)
	u.LightDirEC = transformDir(view, lf)
	u.LightRightEC = transformDir(view, lr)
	u.LightUpEC = transformDir(view, lu)

	rays := cam.Rays(fb.W, fb.H)
	far := cam.Far

	var mu sync.Mutex
	var total PassStats

	p.pool.Run(fb.H, func(y0, y1 int) {
		var local PassStats
		for y := y0; y < y1; y++ {
			for x := 0; x < fb.W; x++ {
				px := Pixel{
					Color: fb.ColorAt(x, y),
					Depth: fb.DepthAt(x, y),
				}
				if !px.Depth.IsBackground() {
					t := render.DecodeRange(px.Depth.Unit(), far)
					dir := rays.At(float64(x), float64(y))
					px.WorldPos = rays.Origin.Add(dir.Mul(t))
					px.EyePos = transformPoint(view, px.WorldPos)
				}

				c, outcome := Shade(px, u)
				fb.SetColor(x, y, c)
				local.add(outcome)
			}
		}
		mu.Lock()
		total.merge(local)
		mu.Unlock()
	})

	p.stats = total
	return total
}

func transformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	h := m.Mul4x1(mgl64.Vec4{p.X(), p.Y(), p.Z(), 1})
	return mgl64.Vec3{h.X(), h.Y(), h.Z()}
}

func transformDir(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	h := m.Mul4x1(mgl64.Vec4{v.X(), v.Y(), v.Z(), 0})
	return mgl64.Vec3{h.X(), h.Y(), h.Z()}
}
