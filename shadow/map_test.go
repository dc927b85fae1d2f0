package shadow

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
)

func lightCamera() geom.Camera {
	return geom.Camera{
		Position:  mgl64.Vec3{0, 0, 100},
		Direction: mgl64.Vec3{0, 0, -1},
		Up:        mgl64.Vec3{0, 1, 0},
		FOVY:      mgl64.DegToRad(120),
		Aspect:    1,
		Near:      0.1,
		Far:       5000,
	}
}

func TestNewMapValidation(t *testing.T) {
	cam := lightCamera()

	if _, err := NewMap(cam, 0, 0); err == nil {
		t.Error("zero resolution should be rejected")
	}
	if _, err := NewMap(cam, 64, -1); err == nil {
		t.Error("negative bias should be rejected")
	}

	bad := cam
	bad.Far = bad.Near
	if _, err := NewMap(bad, 64, 0); err == nil {
		t.Error("far <= near should be rejected")
	}

	m, err := NewMap(cam, 64, 2e-12)
	if err != nil {
		t.Fatal(err)
	}
	if m.Resolution() != 64 {
		t.Errorf("resolution = %d, want 64", m.Resolution())
	}
	if len(m.Depth()) != 64*64 {
		t.Errorf("depth storage = %d texels, want %d", len(m.Depth()), 64*64)
	}
}

func TestMapReadyGate(t *testing.T) {
	m, err := NewMap(lightCamera(), 16, 0)
	if err != nil {
		t.Fatal(err)
	}

	if m.Ready() {
		t.Error("map must not be ready before the first depth pass")
	}
	m.CompleteDepthPass()
	if !m.Ready() {
		t.Error("map should be ready after a completed depth pass")
	}

	m.Destroy()
	if m.Ready() {
		t.Error("destroyed map must not be ready")
	}
}

func TestUpdateViewRefreshesWholeCamera(t *testing.T) {
	m, err := NewMap(lightCamera(), 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	m.CompleteDepthPass()

	next := lightCamera()
	next.Position = mgl64.Vec3{500, 0, 0}
	next.Direction = mgl64.Vec3{-1, 0, 0}
	next.Up = mgl64.Vec3{0, 0, 1}
	next.Far = 123.4
	m.UpdateView(next)

	got := m.Camera()
	if got.Position != next.Position {
		t.Errorf("position = %v, want %v", got.Position, next.Position)
	}
	if got.Direction != next.Direction {
		t.Errorf("direction = %v, want %v", got.Direction, next.Direction)
	}
	if got.Up != next.Up {
		t.Errorf("up = %v, want %v", got.Up, next.Up)
	}
	if m.MaxDistance() != 123.4 {
		t.Errorf("max distance = %v, want 123.4", m.MaxDistance())
	}
	if !m.Ready() {
		t.Error("refresh must not clear readiness")
	}
}

func TestDepthAtClampsToEdges(t *testing.T) {
	m, err := NewMap(lightCamera(), 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	d := m.Depth()
	for i := range d {
		d[i] = float32(i)
	}

	if got := m.DepthAt(-3, 0); got != 0 {
		t.Errorf("DepthAt(-3,0) = %v, want texel 0", got)
	}
	if got := m.DepthAt(7, 0); got != 3 {
		t.Errorf("DepthAt(7,0) = %v, want texel 3", got)
	}
	if got := m.DepthAt(2, 9); got != float32(3*4+2) {
		t.Errorf("DepthAt(2,9) = %v, want bottom row texel", got)
	}
}

func TestTexelOfFlipsRows(t *testing.T) {
	m, err := NewMap(lightCamera(), 8, 0)
	if err != nil {
		t.Fatal(err)
	}

	// v=1 (top of the frustum) is texel row 0.
	if ix, iy := m.TexelOf(0, 1); ix != 0 || iy != 0 {
		t.Errorf("TexelOf(0,1) = (%d,%d), want (0,0)", ix, iy)
	}
	// v=0 (bottom) lands past the last row; DepthAt clamps it.
	if _, iy := m.TexelOf(0, 0); iy != 8 {
		t.Errorf("TexelOf(0,0) row = %d, want 8", iy)
	}
	// Map center.
	if ix, iy := m.TexelOf(0.5, 0.5); ix != 4 || iy != 4 {
		t.Errorf("TexelOf(0.5,0.5) = (%d,%d), want (4,4)", ix, iy)
	}
}

func TestLightMatrixMapsFrustumToUnitCube(t *testing.T) {
	cam := lightCamera()
	m, err := NewMap(cam, 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	lm := m.LightMatrix()

	project := func(p mgl64.Vec3) (mgl64.Vec3, float64) {
		h := lm.Mul4x1(mgl64.Vec4{p.X(), p.Y(), p.Z(), 1})
		return mgl64.Vec3{h.X() / h.W(), h.Y() / h.W(), h.Z() / h.W()}, h.W()
	}

	// A point on the view axis lands at the map center.
	center, w := project(mgl64.Vec3{0, 0, 50})
	if w <= 0 {
		t.Fatal("point in front of the light should have positive w")
	}
	if math.Abs(center.X()-0.5) > 1e-9 || math.Abs(center.Y()-0.5) > 1e-9 {
		t.Errorf("axis point maps to (%v, %v), want (0.5, 0.5)", center.X(), center.Y())
	}
	if center.Z() < 0 || center.Z() > 1 {
		t.Errorf("axis point depth = %v, want inside [0,1]", center.Z())
	}

	// Nearer points compare smaller than farther points.
	nearPt, _ := project(mgl64.Vec3{0, 0, 95})
	farPt, _ := project(mgl64.Vec3{0, 0, -3000})
	if nearPt.Z() >= farPt.Z() {
		t.Errorf("near depth %v should be below far depth %v", nearPt.Z(), farPt.Z())
	}

	// A point behind the light leaves the unit cube (negative w).
	if _, w := project(mgl64.Vec3{0, 0, 200}); w > 0 {
		t.Error("point behind the light should have non-positive w")
	}
}

func TestDestroyIdempotent(t *testing.T) {
	m, err := NewMap(lightCamera(), 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	m.Destroy()
	m.Destroy()
	if !m.Destroyed() {
		t.Error("map should report destroyed")
	}
	if m.Depth() != nil {
		t.Error("depth storage should be released")
	}
}
