package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
)

func TestSphereIntersect(t *testing.T) {
	s := Sphere{Center: mgl64.Vec3{0, 10, 0}, Radius: 2, Color: RGBA{R: 1}}

	tests := []struct {
		name    string
		origin  mgl64.Vec3
		dir     mgl64.Vec3
		wantHit bool
		wantT   float64
	}{
		{"head on", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0}, true, 8},
		{"from behind", mgl64.Vec3{0, 20, 0}, mgl64.Vec3{0, -1, 0}, true, 8},
		{"miss", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, -1, 0}, false, 0},
		{"graze outside", mgl64.Vec3{0, 0, 2.1}, mgl64.Vec3{0, 1, 0}, false, 0},
		{"inside sphere", mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, 1, 0}, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := s.Intersect(tt.origin, tt.dir, 1e9)
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && math.Abs(h.T-tt.wantT) > 1e-9 {
				t.Errorf("t = %v, want %v", h.T, tt.wantT)
			}
		})
	}
}

func TestSphereRespectsTMax(t *testing.T) {
	s := Sphere{Center: mgl64.Vec3{0, 10, 0}, Radius: 2}
	if _, ok := s.Intersect(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, 5); ok {
		t.Error("hit beyond tMax should be rejected")
	}
}

func TestBoxIntersectNormals(t *testing.T) {
	b := BoxAt(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 2, 2}, RGBA{G: 1})

	tests := []struct {
		name       string
		origin     mgl64.Vec3
		dir        mgl64.Vec3
		wantT      float64
		wantNormal mgl64.Vec3
	}{
		{"+x face", mgl64.Vec3{5, 0, 0}, mgl64.Vec3{-1, 0, 0}, 4, mgl64.Vec3{1, 0, 0}},
		{"-y face", mgl64.Vec3{0, -5, 0}, mgl64.Vec3{0, 1, 0}, 4, mgl64.Vec3{0, -1, 0}},
		{"+z face", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1}, 4, mgl64.Vec3{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := b.Intersect(tt.origin, tt.dir, 1e9)
			if !ok {
				t.Fatal("expected a hit")
			}
			if math.Abs(h.T-tt.wantT) > 1e-9 {
				t.Errorf("t = %v, want %v", h.T, tt.wantT)
			}
			if h.Normal != tt.wantNormal {
				t.Errorf("normal = %v, want %v", h.Normal, tt.wantNormal)
			}
		})
	}

	if _, ok := b.Intersect(mgl64.Vec3{5, 5, 0}, mgl64.Vec3{-1, 0, 0}, 1e9); ok {
		t.Error("ray sliding past the box should miss")
	}
}

func TestNearestPicksClosest(t *testing.T) {
	r := NewRenderer()
	defer r.Close()
	r.Objects = []Object{
		Sphere{Center: mgl64.Vec3{0, 20, 0}, Radius: 1, Color: RGBA{B: 1}},
		Sphere{Center: mgl64.Vec3{0, 10, 0}, Radius: 1, Color: RGBA{R: 1}},
	}

	h, ok := r.Nearest(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, 1e9)
	if !ok {
		t.Fatal("expected a hit")
	}
	if h.Color != (RGBA{R: 1}) {
		t.Errorf("nearest hit color = %v, want the closer red sphere", h.Color)
	}
	if math.Abs(h.T-9) > 1e-9 {
		t.Errorf("t = %v, want 9", h.T)
	}
}

func testCamera() *geom.Camera {
	return &geom.Camera{
		Position:  mgl64.Vec3{0, 0, 0},
		Direction: mgl64.Vec3{0, 1, 0},
		Up:        mgl64.Vec3{0, 0, 1},
		FOVY:      mgl64.DegToRad(60),
		Aspect:    1,
		Near:      0.1,
		Far:       1000,
	}
}

func TestRenderCenterAndBackground(t *testing.T) {
	r := NewRenderer()
	defer r.Close()
	r.Objects = []Object{
		Sphere{Center: mgl64.Vec3{0, 50, 0}, Radius: 5, Color: RGBA{R: 1, A: 1}},
	}
	r.Sun = mgl64.Vec3{0, -1, 0} // light the side facing the camera

	cam := testCamera()
	fb := NewFramebuffer(33, 33)
	r.Render(fb, cam)

	// Center pixel hits the sphere.
	center := fb.ColorAt(16, 16)
	if center.R == 0 || center.B != 0 {
		t.Errorf("center pixel = %v, want a red shade", center)
	}
	d := fb.DepthAt(16, 16)
	if d.IsBackground() {
		t.Fatal("center depth should not be background")
	}
	eye := DecodeRange(d.Unit(), cam.Far)
	if math.Abs(eye-45) > 0.01 {
		t.Errorf("center eye depth = %v, want 45", eye)
	}

	// Corner pixel misses everything.
	if !fb.DepthAt(0, 0).IsBackground() {
		t.Error("corner depth should be background")
	}
	if c := fb.ColorAt(0, 0); c != r.Sky {
		t.Errorf("corner color = %v, want sky", c)
	}
}

func TestRenderDepthOrdering(t *testing.T) {
	r := NewRenderer()
	defer r.Close()
	r.Objects = []Object{
		Sphere{Center: mgl64.Vec3{0, 50, 0}, Radius: 5, Color: RGBA{R: 1}},
	}

	cam := testCamera()
	const size = 32
	out := make([]float32, size*size)
	r.RenderDepth(cam, size, out)

	center := out[(size/2)*size+size/2]
	corner := out[0]
	if center >= 1 {
		t.Fatalf("center texel = %v, want a real depth below 1", center)
	}
	if corner != 1 {
		t.Errorf("corner texel = %v, want 1 (empty)", corner)
	}
}

func TestGroundChecker(t *testing.T) {
	g := Ground{
		Ell:        geom.WGS84,
		Light:      RGBA{R: 0.8, G: 0.8, B: 0.8, A: 1},
		Dark:       RGBA{R: 0.3, G: 0.3, B: 0.3, A: 1},
		CheckerDeg: 1,
	}

	origin := mgl64.Vec3{geom.WGS84.A + 500, 0, 0}
	h, ok := g.Intersect(origin, mgl64.Vec3{-1, 0, 0}, 1e9)
	if !ok {
		t.Fatal("nadir ray should hit the ground")
	}
	if math.Abs(h.T-500) > 0.01 {
		t.Errorf("t = %v, want 500", h.T)
	}
	// Surface normal at the equator points along +X.
	if h.Normal.Sub(mgl64.Vec3{1, 0, 0}).Len() > 1e-9 {
		t.Errorf("normal = %v, want +X", h.Normal)
	}
}
