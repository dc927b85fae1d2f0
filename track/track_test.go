package track

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kestrelops/sightline/geom"
)

func TestStaticAlwaysAvailable(t *testing.T) {
	s := Static{P: mgl64.Vec3{1, 2, 3}}
	for _, tm := range []float64{-100, 0, 1e9} {
		p, ok := s.PositionAt(tm)
		if !ok {
			t.Fatalf("static source unavailable at t=%v", tm)
		}
		if p != (mgl64.Vec3{1, 2, 3}) {
			t.Errorf("PositionAt(%v) = %v, want {1 2 3}", tm, p)
		}
	}
}

func TestSampledInterpolatesLinearly(t *testing.T) {
	s, err := NewSampled(
		[]float64{0, 10, 20},
		[]mgl64.Vec3{{0, 0, 0}, {100, 50, -10}, {200, 0, 0}},
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		t    float64
		want mgl64.Vec3
	}{
		{"first keyframe", 0, mgl64.Vec3{0, 0, 0}},
		{"midpoint of first segment", 5, mgl64.Vec3{50, 25, -5}},
		{"second keyframe", 10, mgl64.Vec3{100, 50, -10}},
		{"midpoint of second segment", 15, mgl64.Vec3{150, 25, -5}},
		{"last keyframe", 20, mgl64.Vec3{200, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := s.PositionAt(tt.t)
			if !ok {
				t.Fatalf("unavailable at t=%v", tt.t)
			}
			for i := 0; i < 3; i++ {
				if math.Abs(p[i]-tt.want[i]) > 1e-9 {
					t.Errorf("PositionAt(%v) = %v, want %v", tt.t, p, tt.want)
					break
				}
			}
		})
	}
}

func TestSampledOutsideSpanUnavailable(t *testing.T) {
	s, err := NewSampled(
		[]float64{10, 20},
		[]mgl64.Vec3{{0, 0, 0}, {1, 1, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := s.PositionAt(9.99); ok {
		t.Error("position before the span should be unavailable")
	}
	if _, ok := s.PositionAt(20.01); ok {
		t.Error("position after the span should be unavailable")
	}
	if _, ok := s.PositionAt(10); !ok {
		t.Error("position at the span start should be available")
	}
}

func TestNewSampledRejectsBadInput(t *testing.T) {
	if _, err := NewSampled([]float64{0}, []mgl64.Vec3{{}}); err == nil {
		t.Error("single keyframe should be rejected")
	}
	if _, err := NewSampled([]float64{0, 1}, []mgl64.Vec3{{}}); err == nil {
		t.Error("length mismatch should be rejected")
	}
	if _, err := NewSampled([]float64{1, 1}, []mgl64.Vec3{{}, {}}); err == nil {
		t.Error("non-increasing times should be rejected")
	}
}

func TestOrbitStaysAtAltitudeAndRadius(t *testing.T) {
	o := NewOrbit(geom.WGS84, 45, 12, 5000, 2000, 60)

	anchor := geom.WGS84.GeodeticToECEF(45, 12, 0)
	for _, tm := range []float64{0, 13, 30, 59} {
		p, ok := o.PositionAt(tm)
		if !ok {
			t.Fatalf("orbit unavailable at t=%v", tm)
		}
		d := p.Sub(anchor).Len()
		want := math.Hypot(5000, 2000)
		if math.Abs(d-want) > 1e-6 {
			t.Errorf("t=%v: distance from anchor = %v, want %v", tm, d, want)
		}
	}

	// One full period returns to the start.
	p0, _ := o.PositionAt(0)
	p1, _ := o.PositionAt(60)
	if p0.Sub(p1).Len() > 1e-6 {
		t.Errorf("orbit not periodic: %v vs %v", p0, p1)
	}
}

func TestWindowedDropsOut(t *testing.T) {
	w := Windowed{Inner: Static{P: mgl64.Vec3{5, 5, 5}}, Start: 10, End: 20}

	if _, ok := w.PositionAt(5); ok {
		t.Error("before the window should be unavailable")
	}
	if _, ok := w.PositionAt(15); !ok {
		t.Error("inside the window should be available")
	}
	if _, ok := w.PositionAt(25); ok {
		t.Error("after the window should be unavailable")
	}
}
