package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Screen.Width != 1280 || cfg.Screen.Height != 800 {
		t.Errorf("screen = %dx%d, want 1280x800", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Sensor.Resolution != 512 {
		t.Errorf("sensor resolution = %d, want 512", cfg.Sensor.Resolution)
	}
	if !cfg.Sensor.ExcludeTerrain {
		t.Error("sensor exclude_terrain should default to true")
	}
	if cfg.Sensor.VisibleColor.G != 1.0 || cfg.Sensor.ShadowColor.R != 1.0 {
		t.Errorf("sensor colors = %+v / %+v, want green / red",
			cfg.Sensor.VisibleColor, cfg.Sensor.ShadowColor)
	}
	if cfg.Scenario.Observer.Orbit == nil {
		t.Error("default scenario observer should be an orbit")
	}
	if cfg.Scenario.Target.Static == nil {
		t.Error("default scenario target should be static")
	}
	if cfg.Scenario.Terrain.Features <= 0 {
		t.Errorf("terrain features = %d, want > 0", cfg.Scenario.Terrain.Features)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("telemetry should default to enabled")
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	override := []byte(`
sensor:
  resolution: 256
world:
  ellipsoid: sphere
`)
	if err := os.WriteFile(path, override, 0644); err != nil {
		t.Fatalf("writing override file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) failed: %v", path, err)
	}

	if cfg.Sensor.Resolution != 256 {
		t.Errorf("sensor resolution = %d, want 256 from override", cfg.Sensor.Resolution)
	}
	// Fields absent from the override keep their defaults.
	if cfg.Sensor.Alpha != 0.5 {
		t.Errorf("sensor alpha = %v, want default 0.5", cfg.Sensor.Alpha)
	}
	if cfg.Screen.Width != 1280 {
		t.Errorf("screen width = %d, want default 1280", cfg.Screen.Width)
	}
	if cfg.Derived.SemiAxes[2] != cfg.Derived.SemiAxes[0] {
		t.Errorf("sphere ellipsoid semi-axes = %v, want equal axes", cfg.Derived.SemiAxes)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load should fail for a missing config file")
	}
}

func TestComputeDerived(t *testing.T) {
	cfg := &Config{}
	cfg.Screen.Width = 1600
	cfg.Screen.Height = 1000
	cfg.Clock.Start = 0
	cfg.Clock.End = 10
	cfg.Clock.Step = 0.5
	cfg.computeDerived()

	if math.Abs(cfg.Derived.Aspect-1.6) > 1e-12 {
		t.Errorf("aspect = %v, want 1.6", cfg.Derived.Aspect)
	}
	if cfg.Derived.FrameCount != 21 {
		t.Errorf("frame count = %d, want 21", cfg.Derived.FrameCount)
	}
	if cfg.Derived.SemiAxes != [3]float64{wgs84A, wgs84B, wgs84C} {
		t.Errorf("empty ellipsoid name should resolve to WGS84, got %v", cfg.Derived.SemiAxes)
	}

	cfg.Clock.Step = 0
	cfg.computeDerived()
	if cfg.Derived.FrameCount != 0 {
		t.Errorf("zero step should give frame count 0, got %d", cfg.Derived.FrameCount)
	}
}

func TestCfgGlobal(t *testing.T) {
	old := global
	t.Cleanup(func() { global = old })

	global = nil
	func() {
		defer func() {
			if recover() == nil {
				t.Error("Cfg() before Init() should panic")
			}
		}()
		Cfg()
	}()

	MustInit("")
	if Cfg().Sensor.Resolution != 512 {
		t.Errorf("Cfg() resolution = %d, want 512", Cfg().Sensor.Resolution)
	}
}
