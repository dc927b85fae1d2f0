package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws descriptor-defined fields with a shared theme. Every
// Draw method returns the Y coordinate the next row starts at.
type Renderer struct {
	Theme Theme
}

// NewRenderer returns a renderer on the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel fills the panel background and outlines it.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a header with a rule spanning the row.
func (r *Renderer) DrawSectionHeader(x, y int32, title string, width int32) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	ruleY := y + r.Theme.LineHeight - 2
	rl.DrawLine(x, ruleY, x+width, ruleY, r.Theme.PanelBorder)
	return y + r.Theme.LineHeight
}

// DrawTextRow draws a label on the left and a right-aligned value.
func (r *Renderer) DrawTextRow(x, y int32, label, value string, width int32) int32 {
	r.label(x, y, label)
	valueW := rl.MeasureText(value, r.Theme.FontSize)
	rl.DrawText(value, x+width-valueW, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a gauge filled to the value's position within rng. The
// value prints inside the track; rng.Mark adds a reference tick.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, rng FieldRange, format string, width int32) int32 {
	r.label(x, y, label)
	trackX, trackW := r.track(x, width)

	rl.DrawRectangle(trackX, y+2, trackW, r.Theme.BarHeight, r.Theme.BarBg)
	fill := int32(clampf(rng.fraction(value), 0, 1) * float32(trackW))
	rl.DrawRectangle(trackX, y+2, fill, r.Theme.BarHeight, r.Theme.BarFill)
	r.tick(trackX, y+2, trackW, rng)

	if format == "" {
		format = "%.2f"
	}
	r.trackText(trackX, y, trackW, fmt.Sprintf(format, value))

	return y + r.Theme.LineHeight + 2
}

// DrawCenteredBar draws a gauge growing from the range midpoint, for
// signed quantities such as a closing speed.
func (r *Renderer) DrawCenteredBar(x, y int32, label string, value float32, rng FieldRange, format string, width int32) int32 {
	r.label(x, y, label)
	trackX, trackW := r.track(x, width)

	rl.DrawRectangle(trackX, y+2, trackW, r.Theme.BarHeight, r.Theme.BarBg)

	// Signed fraction of the half span, clamped to one track half.
	frac := 2*clampf(rng.fraction(value), 0, 1) - 1
	midX := trackX + trackW/2
	fill := int32(frac * float32(trackW/2))
	if fill < 0 {
		rl.DrawRectangle(midX+fill, y+2, -fill, r.Theme.BarHeight, r.Theme.BarFillNegative)
	} else {
		rl.DrawRectangle(midX, y+2, fill, r.Theme.BarHeight, r.Theme.BarFillPositive)
	}
	rl.DrawLine(midX, y+2, midX, y+2+r.Theme.BarHeight, r.Theme.TickColor)

	if format == "" {
		format = "%+.2f"
	}
	r.trackText(trackX, y, trackW, fmt.Sprintf(format, value))

	return y + r.Theme.LineHeight + 2
}

// DrawColorSwatch draws a color square followed by its hex value.
func (r *Renderer) DrawColorSwatch(x, y int32, label string, c rl.Color, width int32) int32 {
	r.label(x, y, label)

	side := r.Theme.BarHeight
	swatchX := x + r.Theme.LabelWidth
	rl.DrawRectangle(swatchX, y+1, side, side, c)
	rl.DrawRectangleLines(swatchX, y+1, side, side, r.Theme.PanelBorder)

	hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	rl.DrawText(hex, swatchX+side+6, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight
}

// DrawSpacer adds vertical space.
func (r *Renderer) DrawSpacer(y, amount int32) int32 {
	return y + amount
}

// DrawField renders one field from its descriptor.
func (r *Renderer) DrawField(x, y int32, fd FieldDescriptor, data any, width int32) int32 {
	switch fd.Widget {
	case WidgetText:
		return r.DrawTextRow(x, y, fd.Label, fd.text(data), width)
	case WidgetBar:
		return r.DrawBar(x, y, fd.Label, fd.value(data), fd.Range, fd.Format, width)
	case WidgetCenteredBar:
		return r.DrawCenteredBar(x, y, fd.Label, fd.value(data), fd.Range, fd.Format, width)
	case WidgetColorSwatch:
		return r.DrawColorSwatch(x, y, fd.Label, fd.color(data), width)
	case WidgetSection:
		return r.DrawSectionHeader(x, y, fd.Label, width)
	case WidgetSpacer:
		return r.DrawSpacer(y, 6)
	}
	return y
}

// DrawSection renders a section header and its visible fields.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if !visible(sd.Visible, data) {
		return y
	}
	if sd.Title != "" {
		y = r.DrawSectionHeader(x, y, sd.Title, width)
	}
	for _, fd := range sd.Fields {
		if visible(fd.Visible, data) {
			y = r.DrawField(x, y, fd, data, width)
		}
	}
	return y + 4 // gap before the next section
}

// label draws the left-column field label.
func (r *Renderer) label(x, y int32, text string) {
	rl.DrawText(text+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
}

// track returns the gauge track geometry for a row.
func (r *Renderer) track(x, width int32) (trackX, trackW int32) {
	return x + r.Theme.LabelWidth, width - r.Theme.LabelWidth
}

// trackText prints a value right-aligned inside a gauge track.
func (r *Renderer) trackText(trackX, y, trackW int32, text string) {
	textW := rl.MeasureText(text, r.Theme.FontSize)
	rl.DrawText(text, trackX+trackW-textW-4, y+2, r.Theme.FontSize, r.Theme.ValueColor)
}

// tick draws the range's reference mark on a track when set.
func (r *Renderer) tick(trackX, trackY, trackW int32, rng FieldRange) {
	if rng.Mark <= rng.Min || rng.Mark >= rng.Max {
		return
	}
	tickX := trackX + int32(rng.fraction(rng.Mark)*float32(trackW))
	rl.DrawLine(tickX, trackY-1, tickX, trackY+r.Theme.BarHeight+1, r.Theme.TickColor)
}

func visible(check func(any) bool, data any) bool {
	return check == nil || check(data)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
