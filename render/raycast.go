// Package render is a CPU ray-cast renderer over analytic scene objects.
// It produces the main color/depth framebuffer and the depth-only passes
// consumed by visibility maps.
package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
)

// Renderer ray-casts the object list with simple lambert shading.
type Renderer struct {
	Objects []Object
	Sun     mgl64.Vec3 // unit vector from the scene toward the sun
	Sky     RGBA
	Ambient float32

	pool *WorkPool
}

// NewRenderer returns a renderer with neutral lighting defaults and an
// empty object list.
func NewRenderer() *Renderer {
	return &Renderer{
		Sun:     mgl64.Vec3{1, 0, 0},
		Sky:     RGBA{R: 0.05, G: 0.07, B: 0.12, A: 1},
		Ambient: 0.35,
		pool:    NewWorkPool(),
	}
}

// Close stops the worker pool. The renderer must not be used afterwards.
func (r *Renderer) Close() {
	r.pool.Stop()
}

// Nearest returns the closest hit along the ray across all objects.
func (r *Renderer) Nearest(origin, dir mgl64.Vec3, tMax float64) (Hit, bool) {
	best := Hit{T: tMax}
	found := false
	for _, obj := range r.Objects {
		if h, ok := obj.Intersect(origin, dir, best.T); ok {
			best = h
			found = true
		}
	}
	return best, found
}

// Render fills the framebuffer from the camera's point of view: lambert
// color plus packed logarithmic range depth, Background where rays escape.
func (r *Renderer) Render(fb *Framebuffer, cam *geom.Camera) {
	gen := cam.Rays(fb.W, fb.H)
	far := cam.Far

	r.pool.Run(fb.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < fb.W; x++ {
				dir := gen.At(float64(x), float64(y))
				hit, ok := r.Nearest(gen.Origin, dir, far)
				if !ok {
					fb.SetColor(x, y, r.Sky)
					fb.SetDepth(x, y, Background)
					continue
				}

				shade := r.Ambient
				if d := hit.Normal.Dot(r.Sun); d > 0 {
					shade += (1 - r.Ambient) * float32(d)
				}
				fb.SetColor(x, y, hit.Color.Scale(shade))
				fb.SetDepth(x, y, PackUnit(EncodeRange(hit.T, far)))
			}
		}
	})
}

// RenderDepth fills out (size*size texels, row-major) with normalized
// projected depth in [0, 1] as seen by cam. Texels with no geometry read 1.
func (r *Renderer) RenderDepth(cam *geom.Camera, size int, out []float32) {
	gen := cam.Rays(size, size)
	vp := cam.ViewProj()
	far := cam.Far

	r.pool.Run(size, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < size; x++ {
				i := y*size + x
				dir := gen.At(float64(x), float64(y))
				hit, ok := r.Nearest(gen.Origin, dir, far)
				if !ok {
					out[i] = 1
					continue
				}

				p := gen.Origin.Add(dir.Mul(hit.T))
				h := vp.Mul4x1(mgl64.Vec4{p.X(), p.Y(), p.Z(), 1})
				if h.W() <= 0 {
					out[i] = 1
					continue
				}
				z01 := 0.5*(h.Z()/h.W()) + 0.5
				if z01 < 0 {
					z01 = 0
				} else if z01 > 1 {
					z01 = 1
				}
				out[i] = float32(z01)
			}
		}
	})
}
