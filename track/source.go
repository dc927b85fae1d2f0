// Package track provides time-parameterized position sources for scene
// platforms: observers, targets and anything else that moves through the
// ECEF frame.
package track

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/interp"

	"github.com/kestrelops/sightline/geom"
)

// Source yields a world (ECEF, meters) position for a simulation time.
// The boolean is false when no position is known for that time; callers
// treat this as a transient condition, not an error.
type Source interface {
	PositionAt(t float64) (mgl64.Vec3, bool)
}

// Static is a source pinned to one position for all time.
type Static struct {
	P mgl64.Vec3
}

// PositionAt implements Source.
func (s Static) PositionAt(float64) (mgl64.Vec3, bool) {
	return s.P, true
}

// Sampled interpolates piecewise-linearly between timestamped keyframes.
// Times outside the keyframe span report no position.
type Sampled struct {
	t0, t1  float64
	x, y, z interp.PiecewiseLinear
}

// NewSampled builds a sampled track from keyframe times (seconds, strictly
// increasing) and matching positions.
func NewSampled(times []float64, positions []mgl64.Vec3) (*Sampled, error) {
	if len(times) != len(positions) {
		return nil, fmt.Errorf("track: %d times for %d positions", len(times), len(positions))
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("track: need at least 2 keyframes, got %d", len(times))
	}

	xs := make([]float64, len(positions))
	ys := make([]float64, len(positions))
	zs := make([]float64, len(positions))
	for i, p := range positions {
		xs[i] = p.X()
		ys[i] = p.Y()
		zs[i] = p.Z()
	}

	s := &Sampled{t0: times[0], t1: times[len(times)-1]}
	if err := s.x.Fit(times, xs); err != nil {
		return nil, fmt.Errorf("track: fit x: %w", err)
	}
	if err := s.y.Fit(times, ys); err != nil {
		return nil, fmt.Errorf("track: fit y: %w", err)
	}
	if err := s.z.Fit(times, zs); err != nil {
		return nil, fmt.Errorf("track: fit z: %w", err)
	}
	return s, nil
}

// NewSampledGeodetic builds a sampled track from geodetic waypoints
// (lat deg, lon deg, alt m) on the given ellipsoid.
func NewSampledGeodetic(e geom.Ellipsoid, times []float64, waypoints [][3]float64) (*Sampled, error) {
	positions := make([]mgl64.Vec3, len(waypoints))
	for i, w := range waypoints {
		positions[i] = e.GeodeticToECEF(w[0], w[1], w[2])
	}
	return NewSampled(times, positions)
}

// PositionAt implements Source.
func (s *Sampled) PositionAt(t float64) (mgl64.Vec3, bool) {
	if t < s.t0 || t > s.t1 {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{s.x.Predict(t), s.y.Predict(t), s.z.Predict(t)}, true
}

// Span returns the first and last keyframe times.
func (s *Sampled) Span() (float64, float64) {
	return s.t0, s.t1
}

// Orbit circles a geodetic anchor point at fixed altitude, moving in the
// local tangent plane. Useful for loitering observer platforms.
type Orbit struct {
	center mgl64.Vec3 // anchor on the ellipsoid surface
	east   mgl64.Vec3
	north  mgl64.Vec3
	up     mgl64.Vec3
	Radius float64 // meters from the anchor
	AltM   float64 // meters above the anchor
	Period float64 // seconds per revolution
	Phase  float64 // radians at t=0
}

// NewOrbit builds an orbit around the geodetic anchor (lat, lon in degrees).
func NewOrbit(e geom.Ellipsoid, latDeg, lonDeg, radius, altM, period float64) *Orbit {
	center := e.GeodeticToECEF(latDeg, lonDeg, 0)
	up := e.GeodeticSurfaceNormal(center)

	// Local ENU frame at the anchor.
	east := mgl64.Vec3{0, 0, 1}.Cross(up)
	if east.LenSqr() < 1e-12 {
		east = mgl64.Vec3{0, 1, 0}
	}
	east = east.Normalize()
	north := up.Cross(east)

	return &Orbit{
		center: center,
		east:   east,
		north:  north,
		up:     up,
		Radius: radius,
		AltM:   altM,
		Period: period,
	}
}

// PositionAt implements Source.
func (o *Orbit) PositionAt(t float64) (mgl64.Vec3, bool) {
	if o.Period <= 0 {
		return mgl64.Vec3{}, false
	}
	a := o.Phase + 2*math.Pi*t/o.Period
	p := o.center.
		Add(o.east.Mul(o.Radius * math.Cos(a))).
		Add(o.north.Mul(o.Radius * math.Sin(a))).
		Add(o.up.Mul(o.AltM))
	return p, true
}

// Windowed exposes an inner source only inside [Start, End]; outside it the
// position reads as unavailable. Models sensor feeds that drop out.
type Windowed struct {
	Inner Source
	Start float64
	End   float64
}

// PositionAt implements Source.
func (w Windowed) PositionAt(t float64) (mgl64.Vec3, bool) {
	if t < w.Start || t > w.End {
		return mgl64.Vec3{}, false
	}
	return w.Inner.PositionAt(t)
}
