package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ellipsoid is a triaxial ellipsoid centered at the origin, axes aligned
// with the ECEF frame. All radii are in meters.
type Ellipsoid struct {
	A float64 // equatorial radius along X
	B float64 // equatorial radius along Y
	C float64 // polar radius along Z
}

// WGS84 is the standard Earth reference ellipsoid.
var WGS84 = Ellipsoid{A: 6378137.0, B: 6378137.0, C: 6356752.314245}

// GeodeticToECEF converts geodetic coordinates (degrees, meters above the
// ellipsoid) to ECEF meters. Assumes A == B.
func (e Ellipsoid) GeodeticToECEF(latDeg, lonDeg, altM float64) mgl64.Vec3 {
	lat := mgl64.DegToRad(latDeg)
	lon := mgl64.DegToRad(lonDeg)

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	e2 := 1.0 - (e.C*e.C)/(e.A*e.A)

	// Prime vertical radius of curvature
	n := e.A / math.Sqrt(1.0-e2*sinLat*sinLat)

	return mgl64.Vec3{
		(n + altM) * cosLat * math.Cos(lon),
		(n + altM) * cosLat * math.Sin(lon),
		(n*(1.0-e2) + altM) * sinLat,
	}
}

// ECEFToGeodetic converts an ECEF position to geodetic latitude, longitude
// (degrees) and height above the ellipsoid (meters), using Bowring's
// closed-form approximation. Assumes A == B.
func (e Ellipsoid) ECEFToGeodetic(p mgl64.Vec3) (latDeg, lonDeg, altM float64) {
	x, y, z := p.X(), p.Y(), p.Z()
	r := math.Hypot(x, y)

	// On or near the polar axis the longitude is undefined; pick 0.
	if r < 1e-9 {
		lat := math.Pi / 2
		if z < 0 {
			lat = -lat
		}
		return mgl64.RadToDeg(lat), 0, math.Abs(z) - e.C
	}

	e2 := 1.0 - (e.C*e.C)/(e.A*e.A)
	ep2 := (e.A*e.A)/(e.C*e.C) - 1.0

	theta := math.Atan2(z*e.A, r*e.C)
	sinT, cosT := math.Sin(theta), math.Cos(theta)

	lat := math.Atan2(z+ep2*e.C*sinT*sinT*sinT, r-e2*e.A*cosT*cosT*cosT)
	lon := math.Atan2(y, x)

	sinLat := math.Sin(lat)
	n := e.A / math.Sqrt(1.0-e2*sinLat*sinLat)
	alt := r/math.Cos(lat) - n

	return mgl64.RadToDeg(lat), mgl64.RadToDeg(lon), alt
}

// Inside reports whether p lies strictly inside the ellipsoid volume.
func (e Ellipsoid) Inside(p mgl64.Vec3) bool {
	x := p.X() / e.A
	y := p.Y() / e.B
	z := p.Z() / e.C
	return x*x+y*y+z*z < 1.0
}

// GeodeticSurfaceNormal returns the outward unit normal of the ellipsoid
// surface at the point nearest to p (the direction gravity-up points).
func (e Ellipsoid) GeodeticSurfaceNormal(p mgl64.Vec3) mgl64.Vec3 {
	n := mgl64.Vec3{
		p.X() / (e.A * e.A),
		p.Y() / (e.B * e.B),
		p.Z() / (e.C * e.C),
	}
	if n.LenSqr() == 0 {
		return mgl64.Vec3{0, 0, 1}
	}
	return n.Normalize()
}

// IntersectRay returns the smallest positive t where origin+t*dir meets the
// ellipsoid surface, or false when the ray misses it.
func (e Ellipsoid) IntersectRay(origin, dir mgl64.Vec3) (float64, bool) {
	// Scale to the unit sphere and solve the quadratic there.
	o := mgl64.Vec3{origin.X() / e.A, origin.Y() / e.B, origin.Z() / e.C}
	d := mgl64.Vec3{dir.X() / e.A, dir.Y() / e.B, dir.Z() / e.C}

	a := d.Dot(d)
	b := 2.0 * o.Dot(d)
	c := o.Dot(o) - 1.0

	disc := b*b - 4*a*c
	if disc < 0 || a == 0 {
		return 0, false
	}

	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t0 > 1e-9 {
		return t0, true
	}
	if t1 > 1e-9 {
		return t1, true
	}
	return 0, false
}
