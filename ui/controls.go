package ui

import (
	"fmt"
	"log/slog"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/kestrelops/sightline/viewshed"
)

// Resolution bounds for the up/down buttons.
const (
	minResolution = 64
	maxResolution = 4096
)

// SensorControls renders the left-side panel with live sensor parameters
// and the overlay toggle list. Slider changes are applied to the sensor
// immediately.
type SensorControls struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
	visible  bool
}

// NewSensorControls creates a new sensor controls panel.
func NewSensorControls(x, y, width int32) *SensorControls {
	return &SensorControls{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// SetVisible opens or closes the panel.
func (c *SensorControls) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible reports whether the panel is open.
func (c *SensorControls) IsVisible() bool {
	return c.visible
}

// Toggle flips the panel and returns the new state.
func (c *SensorControls) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether the point lies inside the panel. Used to keep
// panel interaction from reaching the camera.
func (c *SensorControls) Contains(p rl.Vector2) bool {
	if !c.visible {
		return false
	}
	return p.X >= float32(c.x) && p.X <= float32(c.x+c.width) &&
		p.Y >= float32(c.y) && p.Y <= float32(c.y+c.height)
}

// Draw renders the panel and applies any parameter changes to the sensor.
func (c *SensorControls) Draw(s *viewshed.Sensor, overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	c.height = c.panelHeight(overlays)
	r.DrawPanel(c.x, c.y, c.width, c.height)

	y := c.y + padding
	x := c.x + padding
	innerWidth := c.width - padding*2

	rl.DrawText("Sensor", x, y, 16, rl.White)
	y += lineHeight + 8

	y = c.slider(x, y, innerWidth, "Alpha", "%.2f",
		s.Alpha(), 0, 1, func(v float32) { s.SetAlpha(v) })

	y = c.slider(x, y, innerWidth, "Shadow darkness", "%.2f",
		float32(s.Darkness()), 0, 1, func(v float32) { s.SetDarkness(float64(v)) })

	y = c.slider(x, y, innerWidth, "Grazing smooth", "%.2f",
		float32(s.NormalShadingSmooth()), 0, 1, func(v float32) { s.SetNormalShadingSmooth(float64(v)) })

	y = c.slider(x, y, innerWidth, "Field of view", "%.0f deg",
		float32(s.FieldOfView()*180/math.Pi), 20, 170, func(v float32) {
			if err := s.SetFieldOfView(float64(v) * math.Pi / 180); err != nil {
				slog.Warn("field of view rejected", "error", err)
			}
		})

	y = c.slider(x, y, innerWidth, "Depth bias", "1e%.1f",
		float32(math.Log10(s.DepthBias())), -9, -3, func(v float32) {
			if err := s.SetDepthBias(math.Pow(10, float64(v))); err != nil {
				slog.Warn("depth bias rejected", "error", err)
			}
		})

	y = c.resolutionRow(x, y, innerWidth, s)
	y = c.toggleRow(x, y, s)

	// Overlay toggles, grouped by category as in the registry.
	rl.DrawText("Overlays", x, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), innerWidth)
			y += lineHeight
		}

		y += 4 // Gap between categories
	}

	return y
}

// slider draws one labelled slider row and invokes apply when the value
// changes.
func (c *SensorControls) slider(x, y, width int32, label, format string, cur, min, max float32, apply func(float32)) int32 {
	r := c.renderer

	rl.DrawText(label, x, y, r.Theme.FontSize, rl.Gray)
	y += r.Theme.LineHeight

	newV := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(width - 60), Height: 16},
		"", "",
		cur, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, newV), x+width-54, y+2, r.Theme.FontSize, r.Theme.ValueColor)
	if newV != cur {
		apply(newV)
	}

	return y + 22
}

// resolutionRow steps the depth texture size through powers of two.
func (c *SensorControls) resolutionRow(x, y, width int32, s *viewshed.Sensor) int32 {
	r := c.renderer
	res := s.Resolution()

	rl.DrawText(fmt.Sprintf("Resolution: %d px", res), x, y+6, r.Theme.FontSize, rl.Gray)

	if gui.Button(rl.Rectangle{X: float32(x + width - 56), Y: float32(y), Width: 24, Height: 24}, "-") && res > minResolution {
		c.setResolution(s, res/2)
	}
	if gui.Button(rl.Rectangle{X: float32(x + width - 26), Y: float32(y), Width: 24, Height: 24}, "+") && res < maxResolution {
		c.setResolution(s, res*2)
	}

	return y + 30
}

func (c *SensorControls) setResolution(s *viewshed.Sensor, res int) {
	if res < minResolution {
		res = minResolution
	}
	if res > maxResolution {
		res = maxResolution
	}
	if err := s.SetResolution(res); err != nil {
		slog.Warn("resolution rejected", "error", err)
	}
}

// toggleRow draws the frustum and terrain exclusion toggles.
func (c *SensorControls) toggleRow(x, y int32, s *viewshed.Sensor) int32 {
	halfW := float32((c.width-c.renderer.Theme.Padding*2)/2 - 4)

	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: halfW, Height: 24},
		toggleText(s.EnableFrustum(), "Frustum: ON", "Frustum: OFF")) {
		s.SetEnableFrustum(!s.EnableFrustum())
	}
	if gui.Button(rl.Rectangle{X: float32(x) + halfW + 8, Y: float32(y), Width: halfW, Height: 24},
		toggleText(s.ExcludeTerrain(), "Terrain: SKIP", "Terrain: TINT")) {
		s.SetExcludeTerrain(!s.ExcludeTerrain())
	}

	return y + 32
}

func toggleText(on bool, whenOn, whenOff string) string {
	if on {
		return whenOn
	}
	return whenOff
}

// drawToggle draws one overlay line: state square, name, and the key
// binding against the right edge.
func (c *SensorControls) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// panelHeight sizes the panel to its content.
func (c *SensorControls) panelHeight(overlays *OverlayRegistry) int32 {
	r := c.renderer
	lineHeight := r.Theme.LineHeight

	h := r.Theme.Padding * 2
	h += lineHeight + 8 // title
	h += 5 * (lineHeight + 22)
	h += 30 // resolution row
	h += 32 // toggle row
	h += lineHeight + 4

	for _, cat := range overlays.Categories() {
		h += lineHeight
		h += int32(len(overlays.ByCategory(cat))) * lineHeight
		h += 4
	}

	return h
}

// categoryLabel maps registry categories onto panel headings.
func categoryLabel(cat string) string {
	switch cat {
	case "sensor":
		return "Sensor"
	case "scene":
		return "Scene"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
