package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective pinhole camera in world (ECEF) coordinates.
// Direction and Up need not be exactly orthogonal; Basis re-orthogonalizes.
type Camera struct {
	Position  mgl64.Vec3
	Direction mgl64.Vec3 // unit, toward the scene
	Up        mgl64.Vec3 // unit, roughly perpendicular to Direction
	FOVY      float64    // vertical field of view, radians
	Aspect    float64    // width / height
	Near      float64
	Far       float64
}

// Basis returns the orthonormal forward/right/up triple of the camera.
func (c *Camera) Basis() (forward, right, up mgl64.Vec3) {
	forward = c.Direction.Normalize()
	right = forward.Cross(c.Up)
	if right.LenSqr() < 1e-18 {
		// Up parallel to Direction; pick any perpendicular.
		alt := mgl64.Vec3{1, 0, 0}
		if math.Abs(forward.X()) > 0.9 {
			alt = mgl64.Vec3{0, 1, 0}
		}
		right = forward.Cross(alt)
	}
	right = right.Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// View returns the world-to-eye matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Position.Add(c.Direction), c.Up)
}

// Proj returns the perspective projection matrix (GL clip conventions,
// z in [-1,1]).
func (c *Camera) Proj() mgl64.Mat4 {
	return mgl64.Perspective(c.FOVY, c.Aspect, c.Near, c.Far)
}

// ViewProj returns Proj * View.
func (c *Camera) ViewProj() mgl64.Mat4 {
	return c.Proj().Mul4(c.View())
}

// RayThrough returns the unit world-space direction of the primary ray
// through the center of pixel (px, py) on a w by h viewport. Pixel (0, 0)
// is the top-left corner.
func (c *Camera) RayThrough(px, py float64, w, h int) mgl64.Vec3 {
	g := c.Rays(w, h)
	return g.At(px, py)
}

// RayGen holds a precomputed camera basis for bulk ray generation, so
// per-pixel work stays free of trig and allocation.
type RayGen struct {
	Origin  mgl64.Vec3
	forward mgl64.Vec3
	right   mgl64.Vec3
	up      mgl64.Vec3
	sx, sy  float64
	w, h    float64
}

// Rays prepares a generator for a w by h viewport.
func (c *Camera) Rays(w, h int) RayGen {
	forward, right, up := c.Basis()
	tanHalf := math.Tan(c.FOVY / 2)
	return RayGen{
		Origin:  c.Position,
		forward: forward,
		right:   right,
		up:      up,
		sx:      tanHalf * c.Aspect,
		sy:      tanHalf,
		w:       float64(w),
		h:       float64(h),
	}
}

// At returns the unit direction through the center of pixel (px, py).
func (g *RayGen) At(px, py float64) mgl64.Vec3 {
	cx := (2*(px+0.5)/g.w - 1) * g.sx
	cy := (1 - 2*(py+0.5)/g.h) * g.sy
	return g.forward.Add(g.right.Mul(cx)).Add(g.up.Mul(cy)).Normalize()
}

// FrustumCorners returns the 8 world-space corners of the view frustum:
// near plane first (bottom-left, bottom-right, top-right, top-left), then
// the far plane in the same winding.
func (c *Camera) FrustumCorners() [8]mgl64.Vec3 {
	inv := c.ViewProj().Inv()

	ndc := [8]mgl64.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}

	var out [8]mgl64.Vec3
	for i, p := range ndc {
		h := inv.Mul4x1(mgl64.Vec4{p.X(), p.Y(), p.Z(), 1})
		w := h.W()
		if w == 0 {
			w = 1
		}
		out[i] = mgl64.Vec3{h.X() / w, h.Y() / w, h.Z() / w}
	}
	return out
}

// ProjectPoint maps a world point through the camera to normalized device
// coordinates. ok is false when the point is behind the eye plane.
func (c *Camera) ProjectPoint(p mgl64.Vec3) (ndc mgl64.Vec3, ok bool) {
	h := c.ViewProj().Mul4x1(mgl64.Vec4{p.X(), p.Y(), p.Z(), 1})
	if h.W() <= 0 {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{h.X() / h.W(), h.Y() / h.W(), h.Z() / h.W()}, true
}
