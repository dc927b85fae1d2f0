// Package config provides configuration loading and access for the viewer
// and the batch tools.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all viewer and scenario configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Clock     ClockConfig     `yaml:"clock"`
	World     WorldConfig     `yaml:"world"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Scenario  ScenarioConfig  `yaml:"scenario"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Filled by computeDerived, never read from YAML.
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig sizes the window and caps its refresh.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ClockConfig holds the scenario clock. Simulation time runs from Start to
// End; each rendered frame advances it by Step seconds.
type ClockConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Step  float64 `yaml:"step"`
	Loop  bool    `yaml:"loop"` // Wrap back to Start when End is reached
}

// WorldConfig selects the reference ellipsoid for geodetic conversions and
// terrain exclusion.
type WorldConfig struct {
	Ellipsoid string     `yaml:"ellipsoid"` // "wgs84", "sphere", or "custom"
	SemiAxes  [3]float64 `yaml:"semi_axes"` // Used when ellipsoid is "custom"
}

// SensorConfig holds the demo sensor parameters. These seed the sensor at
// startup; most can be changed live from the control panel.
type SensorConfig struct {
	Resolution          int         `yaml:"resolution"`
	DepthBias           float64     `yaml:"depth_bias"`
	Alpha               float64     `yaml:"alpha"`
	FOVDegrees          float64     `yaml:"fov_degrees"`
	ExcludeTerrain      bool        `yaml:"exclude_terrain"`
	EnableFrustum       bool        `yaml:"enable_frustum"`
	NormalShadingSmooth float64     `yaml:"normal_shading_smooth"`
	Darkness            float64     `yaml:"darkness"`
	VisibleColor        ColorConfig `yaml:"visible_color"`
	ShadowColor         ColorConfig `yaml:"shadow_color"`
}

// ColorConfig holds an RGBA color with components in [0,1].
type ColorConfig struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
	A float64 `yaml:"a"`
}

// ScenarioConfig holds the demo scenario: the observer and target platforms
// plus the synthetic terrain dropped around the target.
type ScenarioConfig struct {
	Observer TrackConfig   `yaml:"observer"`
	Target   TrackConfig   `yaml:"target"`
	Terrain  TerrainConfig `yaml:"terrain"`
}

// TrackConfig describes one platform trajectory. Exactly one of Static,
// Waypoints or Orbit should be set; Window optionally limits the time span
// during which the platform reports a position.
type TrackConfig struct {
	Static    *GeodeticPoint   `yaml:"static"`
	Waypoints []WaypointConfig `yaml:"waypoints"`
	Orbit     *OrbitConfig     `yaml:"orbit"`
	Window    *WindowConfig    `yaml:"window"`
}

// GeodeticPoint is a position on the reference ellipsoid.
type GeodeticPoint struct {
	Lat float64 `yaml:"lat"` // Degrees
	Lon float64 `yaml:"lon"` // Degrees
	Alt float64 `yaml:"alt"` // Meters above the ellipsoid
}

// WaypointConfig is a timestamped geodetic keyframe.
type WaypointConfig struct {
	Time float64 `yaml:"time"` // Seconds
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
	Alt  float64 `yaml:"alt"`
}

// OrbitConfig circles a geodetic anchor at fixed altitude.
type OrbitConfig struct {
	Lat    float64 `yaml:"lat"`
	Lon    float64 `yaml:"lon"`
	Radius float64 `yaml:"radius"` // Meters from the anchor
	Alt    float64 `yaml:"alt"`    // Meters above the anchor
	Period float64 `yaml:"period"` // Seconds per revolution
	Phase  float64 `yaml:"phase"`  // Radians at t=0
}

// WindowConfig limits a track to [Start, End] seconds.
type WindowConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// TerrainConfig holds synthetic terrain generation parameters. Features are
// seeded pseudo-randomly around the target so runs are reproducible.
type TerrainConfig struct {
	Seed      int64   `yaml:"seed"`
	Features  int     `yaml:"features"`   // Number of hills
	Radius    float64 `yaml:"radius"`     // Scatter radius around the target, meters
	HeightMin float64 `yaml:"height_min"` // Smallest hill radius, meters
	HeightMax float64 `yaml:"height_max"` // Largest hill radius, meters
}

// ViewerConfig holds viewer run-mode settings.
type ViewerConfig struct {
	Headless      bool   `yaml:"headless"`
	Frames        int    `yaml:"frames"`         // Headless frame count (0 = full clock span)
	SnapshotDir   string `yaml:"snapshot_dir"`   // Where PNG snapshots land
	SnapshotEvery int    `yaml:"snapshot_every"` // Frames between headless snapshots (0 = none)
}

// TelemetryConfig controls the CSV output location and cadence.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	OutputDir     string `yaml:"output_dir"`
	PerfWindow    int    `yaml:"perf_window"`    // Frames per perf stats window
	CoverageEvery int    `yaml:"coverage_every"` // Frames between coverage rows (0 = every frame)
}

// DerivedConfig carries values computed from the loaded sections.
type DerivedConfig struct {
	Aspect     float64    // Screen.Width / Screen.Height
	ScreenW32  float32    // Screen.Width as float32
	ScreenH32  float32    // Screen.Height as float32
	FrameCount int        // Frames in the clock span at Clock.Step (0 if unbounded)
	SemiAxes   [3]float64 // Resolved ellipsoid semi-axes, meters
}

// WGS84 semi-axes, meters.
const (
	wgs84A = 6378137.0
	wgs84B = 6378137.0
	wgs84C = 6356752.3142451793
)

// global is set once by Init and read through Cfg.
var global *Config

// Init loads the configuration and publishes it for Cfg. An empty path
// runs on the embedded defaults alone.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit panics where Init would return an error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the configuration published by Init, panicking when no
// Init ran first.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load parses the embedded defaults and lays the user file on top, so a
// scenario file only needs the keys it wants to change.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Keys absent from the file keep their default.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived fills the fields other packages read but no file sets.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.Aspect = 1
	if c.Screen.Height > 0 {
		c.Derived.Aspect = float64(c.Screen.Width) / float64(c.Screen.Height)
	}

	c.Derived.FrameCount = 0
	if c.Clock.Step > 0 && c.Clock.End > c.Clock.Start {
		c.Derived.FrameCount = int((c.Clock.End-c.Clock.Start)/c.Clock.Step) + 1
	}

	switch c.World.Ellipsoid {
	case "sphere":
		c.Derived.SemiAxes = [3]float64{wgs84A, wgs84A, wgs84A}
	case "custom":
		c.Derived.SemiAxes = c.World.SemiAxes
	default:
		c.Derived.SemiAxes = [3]float64{wgs84A, wgs84B, wgs84C}
	}
}

// WriteYAML saves the configuration, typically as a run artifact next
// to the CSV output.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
