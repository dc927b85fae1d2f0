package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID names one overlay across the registry, key handling and the
// controls panel.
type OverlayID string

// Built-in overlay IDs.
const (
	OverlayFrustum  OverlayID = "frustum_outline"
	OverlayDepthMap OverlayID = "depth_map"
	OverlayMarkers  OverlayID = "platform_markers"
	OverlayPerf     OverlayID = "perf_panel"
)

// OverlayDescriptor declares a toggleable screen overlay.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32       // Keyboard toggle (0 = none)
	KeyLabel    string      // Key label shown in the controls panel
	Category    string      // Grouping for the controls panel
	Exclusive   []OverlayID // Overlays forced off when this one turns on
}

// defaultOverlays lists the built-in overlays. The depth inset and the
// timing panel share a screen corner, so they exclude each other.
func defaultOverlays() []OverlayDescriptor {
	return []OverlayDescriptor{
		{
			ID:          OverlayFrustum,
			Name:        "Frustum Outline",
			Description: "Trace the sensor viewing volume edges",
			Key:         rl.KeyF,
			KeyLabel:    "F",
			Category:    "sensor",
		},
		{
			ID:          OverlayDepthMap,
			Name:        "Depth Inset",
			Description: "Show the sensor depth texture in the corner",
			Key:         rl.KeyV,
			KeyLabel:    "V",
			Category:    "sensor",
			Exclusive:   []OverlayID{OverlayPerf},
		},
		{
			ID:          OverlayMarkers,
			Name:        "Platform Markers",
			Description: "Mark observer and target positions on screen",
			Key:         rl.KeyM,
			KeyLabel:    "M",
			Category:    "scene",
		},
		{
			ID:          OverlayPerf,
			Name:        "Frame Timing",
			Description: "Per-phase frame time breakdown",
			Key:         rl.KeyP,
			KeyLabel:    "P",
			Category:    "debug",
			Exclusive:   []OverlayID{OverlayDepthMap},
		},
	}
}

// OverlayRegistry tracks which overlays exist and which are on. The
// descriptor slice keeps registration order; state lives in the map.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry holding the built-in overlays,
// all switched off.
func NewOverlayRegistry() *OverlayRegistry {
	return &OverlayRegistry{
		descriptors: defaultOverlays(),
		enabled:     make(map[OverlayID]bool),
	}
}

// Register adds an overlay, initially off.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
}

// find returns the descriptor for id. Linear scan; the registry holds
// a handful of entries.
func (r *OverlayRegistry) find(id OverlayID) (OverlayDescriptor, bool) {
	for _, desc := range r.descriptors {
		if desc.ID == id {
			return desc, true
		}
	}
	return OverlayDescriptor{}, false
}

// switchOn enables an overlay and forces its exclusive peers off.
func (r *OverlayRegistry) switchOn(desc OverlayDescriptor) {
	r.enabled[desc.ID] = true
	for _, excl := range desc.Exclusive {
		r.enabled[excl] = false
	}
}

// Toggle flips an overlay and returns its new state. Unknown IDs stay
// off.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	desc, ok := r.find(id)
	if !ok {
		return false
	}
	if r.enabled[id] {
		r.enabled[id] = false
		return false
	}
	r.switchOn(desc)
	return true
}

// SetEnabled sets an overlay's state directly.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.find(id)
	if !ok {
		return
	}
	if enabled {
		r.switchOn(desc)
		return
	}
	r.enabled[id] = false
}

// IsEnabled reports whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns every overlay in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns the overlays in one category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var match []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			match = append(match, desc)
		}
	}
	return match
}

// Categories returns the distinct categories in first-seen order.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	seen := make(map[string]bool)
	for _, desc := range r.descriptors {
		if seen[desc.Category] {
			continue
		}
		seen[desc.Category] = true
		cats = append(cats, desc.Category)
	}
	return cats
}

// EnabledOverlays returns the active overlay IDs in registration order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var on []OverlayID
	for _, desc := range r.descriptors {
		if r.enabled[desc.ID] {
			on = append(on, desc.ID)
		}
	}
	return on
}
