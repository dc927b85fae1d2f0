// Package inspector implements the click-to-inspect panel for the viewer.
// Clicking a platform marker selects it; the panel lists live sensor
// settings, sight line geometry, coverage, and the selected platform's
// position. Panel layout is descriptor-driven through the ui package.
package inspector

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/kestrelops/sightline/ui"
)

// Fixed panel geometry; height is measured per frame from the sections.
const (
	PanelWidth   = 280
	PanelPadding = 10
	HeaderHeight = 30

	// pickRadius is the selection distance around a marker, in pixels.
	pickRadius = 16
)

// Chrome colors not covered by the ui theme.
var (
	colorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	colorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	colorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
)

// Marker is a screen-space handle for a selectable platform.
type Marker struct {
	ID   uint32
	Name string
	Pos  rl.Vector2
}

// Inspector manages platform selection and panel rendering.
type Inspector struct {
	renderer     *ui.Renderer
	panelX       int32
	panelY       int32
	screenWidth  int32
	screenHeight int32
	visible      bool
	selected     uint32
	hasSelected  bool
	lastHeight   int32
}

// New creates an inspector anchored to the top-right corner.
func New(screenWidth, screenHeight int32) *Inspector {
	return &Inspector{
		renderer:     ui.NewRenderer(),
		panelX:       screenWidth - PanelWidth - 10,
		panelY:       10,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		lastHeight:   300,
	}
}

// Resize re-anchors the panel after a window size change.
func (ins *Inspector) Resize(screenWidth, screenHeight int32) {
	ins.panelX = screenWidth - PanelWidth - 10
	ins.screenWidth = screenWidth
	ins.screenHeight = screenHeight
}

// Toggle flips the panel open or closed.
func (ins *Inspector) Toggle() bool {
	ins.visible = !ins.visible
	return ins.visible
}

// SetVisible opens or closes the panel directly.
func (ins *Inspector) SetVisible(visible bool) {
	ins.visible = visible
}

// IsVisible reports whether the panel is open.
func (ins *Inspector) IsVisible() bool {
	return ins.visible
}

// Contains reports whether the point lies inside the visible panel.
func (ins *Inspector) Contains(p rl.Vector2) bool {
	if !ins.visible {
		return false
	}
	return p.X >= float32(ins.panelX) && p.X <= float32(ins.panelX+PanelWidth) &&
		p.Y >= float32(ins.panelY) && p.Y <= float32(ins.panelY+ins.panelHeight())
}

// HandleClick selects the marker nearest to the click. Clicking empty
// space clears the selection; clicking the close box hides the panel.
func (ins *Inspector) HandleClick(mouse rl.Vector2, markers []Marker) {
	if ins.visible {
		closeX := float32(ins.panelX + PanelWidth - 25)
		closeY := float32(ins.panelY + 5)
		if mouse.X >= closeX && mouse.X <= closeX+20 && mouse.Y >= closeY && mouse.Y <= closeY+20 {
			ins.visible = false
			return
		}
		if ins.Contains(mouse) {
			return
		}
	}

	var closest uint32
	closestDist := float32(pickRadius * pickRadius)
	found := false

	for _, m := range markers {
		dx := mouse.X - m.Pos.X
		dy := mouse.Y - m.Pos.Y
		dist := dx*dx + dy*dy
		if dist <= closestDist {
			closest = m.ID
			closestDist = dist
			found = true
		}
	}

	if found {
		ins.selected = closest
		ins.hasSelected = true
		ins.visible = true
		return
	}
	ins.Deselect()
}

// Deselect clears the current selection. The panel stays open showing the
// sensor and coverage sections.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the currently selected platform ID.
func (ins *Inspector) Selected() (uint32, bool) {
	return ins.selected, ins.hasSelected
}

// Draw renders the inspector panel.
func (ins *Inspector) Draw(data *Data) {
	if !ins.visible || data == nil {
		return
	}
	if !data.HasPlatform {
		ins.hasSelected = false
	}

	r := ins.renderer
	height := ins.measure(data)

	r.DrawPanel(ins.panelX, ins.panelY, PanelWidth, height)

	// Header with close box
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, colorPanelHeader)
	rl.DrawText("INSPECTOR", ins.panelX+PanelPadding, ins.panelY+7, 16, colorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, colorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	// Descriptor-driven content
	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding
	contentWidth := int32(PanelWidth - 2*PanelPadding)

	for _, sd := range Sections() {
		y = r.DrawSection(x, y, sd, data, contentWidth)
	}
}

// panelHeight returns the height measured on the last draw.
func (ins *Inspector) panelHeight() int32 {
	return ins.lastHeight
}

// measure computes the panel height for the given data by walking the
// section descriptors with the same per-widget heights the renderer uses.
func (ins *Inspector) measure(data *Data) int32 {
	lineHeight := ins.renderer.Theme.LineHeight

	h := int32(HeaderHeight + PanelPadding)
	for _, sd := range Sections() {
		if sd.Visible != nil && !sd.Visible(data) {
			continue
		}
		if sd.Title != "" {
			h += lineHeight
		}
		for _, fd := range sd.Fields {
			if fd.Visible != nil && !fd.Visible(data) {
				continue
			}
			switch fd.Widget {
			case ui.WidgetBar, ui.WidgetCenteredBar:
				h += lineHeight + 2
			case ui.WidgetSpacer:
				h += 6
			default:
				h += lineHeight
			}
		}
		h += 4
	}
	h += PanelPadding

	ins.lastHeight = h
	return h
}
