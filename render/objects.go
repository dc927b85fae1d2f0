package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
)

// Hit describes the nearest intersection along a ray.
type Hit struct {
	T      float64 // distance along the (unit) ray direction
	Normal mgl64.Vec3
	Color  RGBA
}

// Object is anything the ray caster can intersect.
type Object interface {
	// Intersect returns the nearest hit with t in (0, tMax).
	Intersect(origin, dir mgl64.Vec3, tMax float64) (Hit, bool)
}

const hitEpsilon = 1e-9

// Sphere is a solid sphere.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
	Color  RGBA
}

// Intersect implements Object.
func (s Sphere) Intersect(origin, dir mgl64.Vec3, tMax float64) (Hit, bool) {
	oc := origin.Sub(s.Center)
	b := 2.0 * oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := b*b - 4*c
	if disc < 0 {
		return Hit{}, false
	}

	sq := math.Sqrt(disc)
	t := (-b - sq) / 2
	if t <= hitEpsilon {
		t = (-b + sq) / 2
	}
	if t <= hitEpsilon || t >= tMax {
		return Hit{}, false
	}

	p := origin.Add(dir.Mul(t))
	return Hit{
		T:      t,
		Normal: p.Sub(s.Center).Mul(1 / s.Radius),
		Color:  s.Color,
	}, true
}

// Box is an axis-aligned box in ECEF coordinates.
type Box struct {
	Min, Max mgl64.Vec3
	Color    RGBA
}

// BoxAt builds a box of the given extent (meters per axis) centered on p.
func BoxAt(p mgl64.Vec3, extent mgl64.Vec3, c RGBA) Box {
	half := extent.Mul(0.5)
	return Box{Min: p.Sub(half), Max: p.Add(half), Color: c}
}

// Intersect implements Object using the slab method, tracking the entry
// axis for the surface normal.
func (b Box) Intersect(origin, dir mgl64.Vec3, tMax float64) (Hit, bool) {
	tEnter := math.Inf(-1)
	tExit := math.Inf(1)
	enterAxis := -1

	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		lo, hi := b.Min[axis], b.Max[axis]

		if d == 0 {
			if o < lo || o > hi {
				return Hit{}, false
			}
			continue
		}

		invD := 1.0 / d
		t0 := (lo - o) * invD
		t1 := (hi - o) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tEnter {
			tEnter = t0
			enterAxis = axis
		}
		if t1 < tExit {
			tExit = t1
		}
	}

	if tEnter > tExit || tEnter <= hitEpsilon || tEnter >= tMax || enterAxis < 0 {
		return Hit{}, false
	}

	var n mgl64.Vec3
	if dir[enterAxis] > 0 {
		n[enterAxis] = -1
	} else {
		n[enterAxis] = 1
	}

	return Hit{T: tEnter, Normal: n, Color: b.Color}, true
}

// Ground is the ellipsoid surface, optionally rendered as a geodetic
// checkerboard so terrain orientation is readable.
type Ground struct {
	Ell        geom.Ellipsoid
	Light      RGBA
	Dark       RGBA
	CheckerDeg float64 // checker cell size in degrees; <= 0 disables
}

// Intersect implements Object.
func (g Ground) Intersect(origin, dir mgl64.Vec3, tMax float64) (Hit, bool) {
	t, ok := g.Ell.IntersectRay(origin, dir)
	if !ok || t >= tMax {
		return Hit{}, false
	}

	p := origin.Add(dir.Mul(t))
	c := g.Light
	if g.CheckerDeg > 0 {
		lat, lon, _ := g.Ell.ECEFToGeodetic(p)
		i := int(math.Floor(lat/g.CheckerDeg)) + int(math.Floor(lon/g.CheckerDeg))
		if i&1 != 0 {
			c = g.Dark
		}
	}

	return Hit{T: t, Normal: g.Ell.GeodeticSurfaceNormal(p), Color: c}, true
}
