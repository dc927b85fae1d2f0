package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func vecClose(a, b mgl64.Vec3, tol float64) bool {
	return math.Abs(a.X()-b.X()) <= tol &&
		math.Abs(a.Y()-b.Y()) <= tol &&
		math.Abs(a.Z()-b.Z()) <= tol
}

func TestGeodeticToECEFReferencePoints(t *testing.T) {
	tests := []struct {
		name          string
		lat, lon, alt float64
		want          mgl64.Vec3
	}{
		{"equator prime meridian", 0, 0, 0, mgl64.Vec3{6378137.0, 0, 0}},
		{"equator 90E", 0, 90, 0, mgl64.Vec3{0, 6378137.0, 0}},
		{"north pole", 90, 0, 0, mgl64.Vec3{0, 0, 6356752.314245}},
		{"south pole", -90, 0, 0, mgl64.Vec3{0, 0, -6356752.314245}},
		{"equator 1km up", 0, 0, 1000, mgl64.Vec3{6379137.0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WGS84.GeodeticToECEF(tt.lat, tt.lon, tt.alt)
			if !vecClose(got, tt.want, 0.01) {
				t.Errorf("GeodeticToECEF(%v, %v, %v) = %v, want %v",
					tt.lat, tt.lon, tt.alt, got, tt.want)
			}
		})
	}
}

func TestECEFToGeodeticRoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		lat, lon, alt float64
	}{
		{"mid latitude", 37.4, -122.1, 150},
		{"southern hemisphere", -33.9, 151.2, 25},
		{"high altitude", 51.5, 0.1, 12000},
		{"near pole", 89.0, 45.0, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := WGS84.GeodeticToECEF(tt.lat, tt.lon, tt.alt)
			lat, lon, alt := WGS84.ECEFToGeodetic(p)

			if math.Abs(lat-tt.lat) > 1e-6 {
				t.Errorf("lat = %v, want %v", lat, tt.lat)
			}
			if math.Abs(lon-tt.lon) > 1e-6 {
				t.Errorf("lon = %v, want %v", lon, tt.lon)
			}
			if math.Abs(alt-tt.alt) > 0.01 {
				t.Errorf("alt = %v, want %v", alt, tt.alt)
			}
		})
	}
}

func TestEllipsoidInside(t *testing.T) {
	tests := []struct {
		name string
		p    mgl64.Vec3
		want bool
	}{
		{"origin", mgl64.Vec3{0, 0, 0}, true},
		{"just under equator surface", mgl64.Vec3{6378136.0, 0, 0}, true},
		{"just above equator surface", mgl64.Vec3{6378138.0, 0, 0}, false},
		{"just under pole", mgl64.Vec3{0, 0, 6356751.0}, true},
		{"far outside", mgl64.Vec3{0, 0, 7000000.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WGS84.Inside(tt.p); got != tt.want {
				t.Errorf("Inside(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestEllipsoidIntersectRay(t *testing.T) {
	// Ray from 1000 km above the equator straight down.
	origin := mgl64.Vec3{WGS84.A + 1000000, 0, 0}
	dir := mgl64.Vec3{-1, 0, 0}

	tHit, ok := WGS84.IntersectRay(origin, dir)
	if !ok {
		t.Fatal("ray aimed at the ellipsoid should hit")
	}
	if math.Abs(tHit-1000000) > 0.01 {
		t.Errorf("hit distance = %v, want 1000000", tHit)
	}

	// Ray pointing away never hits.
	if _, ok := WGS84.IntersectRay(origin, mgl64.Vec3{1, 0, 0}); ok {
		t.Error("ray aimed away from the ellipsoid should miss")
	}
}

func TestCameraBasisOrthonormal(t *testing.T) {
	cam := Camera{
		Position:  mgl64.Vec3{7000000, 0, 0},
		Direction: mgl64.Vec3{-1, 0.2, 0.1}.Normalize(),
		Up:        mgl64.Vec3{1, 0, 0},
		FOVY:      mgl64.DegToRad(60),
		Aspect:    16.0 / 9.0,
		Near:      0.1,
		Far:       10000,
	}

	f, r, u := cam.Basis()
	for name, v := range map[string]mgl64.Vec3{"forward": f, "right": r, "up": u} {
		if math.Abs(v.Len()-1) > 1e-9 {
			t.Errorf("%s not unit length: %v", name, v.Len())
		}
	}
	if d := math.Abs(f.Dot(r)); d > 1e-9 {
		t.Errorf("forward.right = %v, want 0", d)
	}
	if d := math.Abs(f.Dot(u)); d > 1e-9 {
		t.Errorf("forward.up = %v, want 0", d)
	}
	if d := math.Abs(r.Dot(u)); d > 1e-9 {
		t.Errorf("right.up = %v, want 0", d)
	}
}

func TestCameraRayThroughCenter(t *testing.T) {
	cam := Camera{
		Position:  mgl64.Vec3{0, 0, 0},
		Direction: mgl64.Vec3{0, 1, 0},
		Up:        mgl64.Vec3{0, 0, 1},
		FOVY:      mgl64.DegToRad(90),
		Aspect:    1,
		Near:      0.1,
		Far:       100,
	}

	// The ray through the viewport center must match the view direction.
	dir := cam.RayThrough(63.5, 63.5, 128, 128)
	if !vecClose(dir, mgl64.Vec3{0, 1, 0}, 1e-6) {
		t.Errorf("center ray = %v, want +Y", dir)
	}

	// Top-center pixel should tilt up, never down.
	top := cam.RayThrough(63.5, 0, 128, 128)
	if top.Z() <= 0 {
		t.Errorf("top ray z = %v, want > 0", top.Z())
	}
}

func TestCameraProjectPoint(t *testing.T) {
	cam := Camera{
		Position:  mgl64.Vec3{0, 0, 0},
		Direction: mgl64.Vec3{0, 0, -1},
		Up:        mgl64.Vec3{0, 1, 0},
		FOVY:      mgl64.DegToRad(60),
		Aspect:    1,
		Near:      1,
		Far:       1000,
	}

	// A point straight ahead projects to the NDC center.
	ndc, ok := cam.ProjectPoint(mgl64.Vec3{0, 0, -10})
	if !ok {
		t.Fatal("point in front of the camera should project")
	}
	if math.Abs(ndc.X()) > 1e-9 || math.Abs(ndc.Y()) > 1e-9 {
		t.Errorf("center projection = %v, want x=y=0", ndc)
	}

	// A point behind the camera must not project.
	if _, ok := cam.ProjectPoint(mgl64.Vec3{0, 0, 10}); ok {
		t.Error("point behind the camera should not project")
	}
}

func TestFrustumCornersNearPlane(t *testing.T) {
	cam := Camera{
		Position:  mgl64.Vec3{100, 0, 0},
		Direction: mgl64.Vec3{-1, 0, 0},
		Up:        mgl64.Vec3{0, 0, 1},
		FOVY:      mgl64.DegToRad(120),
		Aspect:    1,
		Near:      0.1,
		Far:       50,
	}

	corners := cam.FrustumCorners()

	// Near corners sit on the near plane, far corners on the far plane.
	for i := 0; i < 4; i++ {
		d := cam.Position.Sub(corners[i]).Dot(mgl64.Vec3{1, 0, 0})
		if math.Abs(d-cam.Near) > 1e-6 {
			t.Errorf("near corner %d at depth %v, want %v", i, d, cam.Near)
		}
	}
	for i := 4; i < 8; i++ {
		d := cam.Position.Sub(corners[i]).Dot(mgl64.Vec3{1, 0, 0})
		if math.Abs(d-cam.Far) > 1e-3 {
			t.Errorf("far corner %d at depth %v, want %v", i, d, cam.Far)
		}
	}
}
