package ui

import "testing"

func TestOverlayToggle(t *testing.T) {
	reg := NewOverlayRegistry()

	if reg.IsEnabled(OverlayFrustum) {
		t.Error("overlays should start disabled")
	}

	if !reg.Toggle(OverlayFrustum) {
		t.Error("first toggle should enable")
	}
	if !reg.IsEnabled(OverlayFrustum) {
		t.Error("frustum overlay should be enabled after toggle")
	}

	if reg.Toggle(OverlayFrustum) {
		t.Error("second toggle should disable")
	}
	if reg.IsEnabled(OverlayFrustum) {
		t.Error("frustum overlay should be disabled after second toggle")
	}
}

func TestOverlayToggleUnknown(t *testing.T) {
	reg := NewOverlayRegistry()
	if reg.Toggle("does_not_exist") {
		t.Error("unknown overlay should not toggle on")
	}
}

func TestOverlayExclusivity(t *testing.T) {
	reg := NewOverlayRegistry()

	// Depth inset and perf panel share the same screen corner.
	reg.SetEnabled(OverlayDepthMap, true)
	reg.SetEnabled(OverlayPerf, true)

	if reg.IsEnabled(OverlayDepthMap) {
		t.Error("enabling perf panel should disable depth inset")
	}
	if !reg.IsEnabled(OverlayPerf) {
		t.Error("perf panel should be enabled")
	}

	reg.Toggle(OverlayDepthMap)
	if reg.IsEnabled(OverlayPerf) {
		t.Error("enabling depth inset should disable perf panel")
	}
}

func TestOverlayExclusivityDoesNotFireOnDisable(t *testing.T) {
	reg := NewOverlayRegistry()

	reg.SetEnabled(OverlayDepthMap, true)
	reg.SetEnabled(OverlayDepthMap, false)

	if reg.IsEnabled(OverlayDepthMap) {
		t.Error("depth inset should be disabled")
	}
}

func TestEnabledOverlaysOrder(t *testing.T) {
	reg := NewOverlayRegistry()

	reg.SetEnabled(OverlayMarkers, true)
	reg.SetEnabled(OverlayFrustum, true)

	enabled := reg.EnabledOverlays()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled overlays, got %d", len(enabled))
	}
	// Registration order, not enable order.
	if enabled[0] != OverlayFrustum || enabled[1] != OverlayMarkers {
		t.Errorf("expected registration order [frustum, markers], got %v", enabled)
	}
}

func TestOverlayCategories(t *testing.T) {
	reg := NewOverlayRegistry()

	cats := reg.Categories()
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d: %v", len(cats), cats)
	}
	if cats[0] != "sensor" || cats[1] != "scene" || cats[2] != "debug" {
		t.Errorf("unexpected category order: %v", cats)
	}

	sensorOverlays := reg.ByCategory("sensor")
	if len(sensorOverlays) != 2 {
		t.Errorf("expected 2 sensor overlays, got %d", len(sensorOverlays))
	}
}

func TestRegisterCustomOverlay(t *testing.T) {
	reg := NewOverlayRegistry()
	before := len(reg.All())

	reg.Register(OverlayDescriptor{
		ID:       "ground_grid",
		Name:     "Ground Grid",
		Category: "scene",
	})

	if len(reg.All()) != before+1 {
		t.Error("custom overlay should be registered")
	}
	if reg.IsEnabled("ground_grid") {
		t.Error("custom overlay should start disabled")
	}
}
