package main

import (
	"math"

	"github.com/kestrelops/sightline/config"
)

// ParamSpec bounds one searchable parameter.
type ParamSpec struct {
	Name    string
	Path    string // config key the value lands in, for log readers
	Min     float64
	Max     float64
	Default float64
}

func (ps ParamSpec) clamp(v float64) float64 {
	return math.Min(math.Max(v, ps.Min), ps.Max)
}

// toUnit maps a raw value into the optimizer's [0, 1] box.
func (ps ParamSpec) toUnit(v float64) float64 {
	return (v - ps.Min) / (ps.Max - ps.Min)
}

// fromUnit maps a [0, 1] coordinate back to the raw parameter scale.
func (ps ParamSpec) fromUnit(u float64) float64 {
	return ps.Min + u*(ps.Max-ps.Min)
}

// ParamVector is the searchable placement parameter set: the observer
// orbit geometry plus the sensor field of view.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector builds the standard placement search space.
func NewParamVector() *ParamVector {
	return &ParamVector{Specs: []ParamSpec{
		{Name: "orbit_radius", Path: "scenario.observer.orbit.radius", Min: 200, Max: 5000, Default: 1200},
		{Name: "orbit_alt", Path: "scenario.observer.orbit.alt", Min: 100, Max: 3000, Default: 900},
		{Name: "orbit_period", Path: "scenario.observer.orbit.period", Min: 60, Max: 600, Default: 240},
		{Name: "orbit_phase", Path: "scenario.observer.orbit.phase", Min: 0, Max: 2 * math.Pi, Default: 0},
		{Name: "fov_degrees", Path: "sensor.fov_degrees", Min: 30, Max: 150, Default: 120},
	}}
}

// Dim returns the search space dimension.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// apply maps f over each parameter into a fresh slice.
func (pv *ParamVector) apply(in []float64, f func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = f(spec, in[i])
	}
	return out
}

// Normalize maps raw values into the optimizer's unit box.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	return pv.apply(raw, ParamSpec.toUnit)
}

// Denormalize maps unit-box coordinates back to raw values.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	return pv.apply(unit, ParamSpec.fromUnit)
}

// Clamp pins every value inside its spec bounds.
func (pv *ParamVector) Clamp(raw []float64) []float64 {
	return pv.apply(raw, ParamSpec.clamp)
}

// defaults returns each parameter's default value.
func (pv *ParamVector) defaults() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// ApplyToConfig writes a candidate into a config. The observer is
// forced onto an orbit track; when the base config declares none, the
// new orbit is anchored at the target.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	orbit := cfg.Scenario.Observer.Orbit
	if orbit == nil {
		orbit = &config.OrbitConfig{}
		if pt := cfg.Scenario.Target.Static; pt != nil {
			orbit.Lat, orbit.Lon = pt.Lat, pt.Lon
		} else if o := cfg.Scenario.Target.Orbit; o != nil {
			orbit.Lat, orbit.Lon = o.Lat, o.Lon
		}
		cfg.Scenario.Observer = config.TrackConfig{Orbit: orbit}
	}

	// Slot order follows Specs order.
	orbit.Radius = clamped[0]
	orbit.Alt = clamped[1]
	orbit.Period = clamped[2]
	orbit.Phase = clamped[3]
	cfg.Sensor.FOVDegrees = clamped[4]
}

// ExtractFromConfig reads the config's current placement, falling back
// to spec defaults where it has no orbit.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := pv.defaults()
	if o := cfg.Scenario.Observer.Orbit; o != nil {
		v[0] = o.Radius
		v[1] = o.Alt
		v[2] = o.Period
		v[3] = o.Phase
	}
	v[4] = cfg.Sensor.FOVDegrees
	return v
}
