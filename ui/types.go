// Package ui provides a descriptor-driven UI system for the viewer.
// Instead of hard-coding field names and layouts, panels are defined
// through metadata that can be updated alongside the underlying sensor
// and telemetry code.
package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText        WidgetType = iota // Plain text with format string
	WidgetBar                           // Horizontal gauge over Range
	WidgetCenteredBar                   // Gauge growing from the range midpoint
	WidgetColorSwatch                   // Color square with hex value
	WidgetSection                       // Section header
	WidgetSpacer                        // Vertical spacing
)

// FieldRange defines the value span for bar widgets. Mark places a
// reference tick on the track when it lies strictly inside the span,
// e.g. the acquire threshold on a coverage gauge.
type FieldRange struct {
	Min  float32
	Max  float32
	Mark float32
}

// DefaultRange returns a [0, 1] range with no tick.
func DefaultRange() FieldRange {
	return FieldRange{Min: 0, Max: 1}
}

// fraction maps v onto [0, 1] across the span. A degenerate span maps
// everything to zero.
func (fr FieldRange) fraction(v float32) float32 {
	if fr.Max <= fr.Min {
		return 0
	}
	return (v - fr.Min) / (fr.Max - fr.Min)
}

// FieldDescriptor defines how to display a single piece of data. One
// getter is consulted per widget kind: Getter for numeric widgets,
// TextGetter for text rows, ColorGetter for swatches. A text row with
// only Getter set prints the formatted numeric value.
type FieldDescriptor struct {
	ID          string
	Label       string
	Widget      WidgetType
	Format      string // Printf verb for numeric values, e.g. "%.2f"
	Range       FieldRange
	Color       rl.Color       // Fallback when ColorGetter is nil
	Visible     func(any) bool // nil = always visible
	Getter      func(any) float32
	TextGetter  func(any) string
	ColorGetter func(any) rl.Color
}

// value evaluates the numeric getter, defaulting to zero.
func (fd FieldDescriptor) value(data any) float32 {
	if fd.Getter == nil {
		return 0
	}
	return fd.Getter(data)
}

// text evaluates the text getter, falling back to the formatted
// numeric value.
func (fd FieldDescriptor) text(data any) string {
	if fd.TextGetter != nil {
		return fd.TextGetter(data)
	}
	if fd.Getter != nil {
		format := fd.Format
		if format == "" {
			format = "%.2f"
		}
		return fmt.Sprintf(format, fd.Getter(data))
	}
	return ""
}

// color evaluates the color getter, falling back to the static color.
func (fd FieldDescriptor) color(data any) rl.Color {
	if fd.ColorGetter == nil {
		return fd.Color
	}
	return fd.ColorGetter(data)
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string
	Title   string
	Fields  []FieldDescriptor
	Visible func(any) bool // nil = always visible
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg         rl.Color
	PanelBorder     rl.Color
	SectionHeader   rl.Color
	LabelColor      rl.Color
	ValueColor      rl.Color
	BarBg           rl.Color
	BarFill         rl.Color
	BarFillNegative rl.Color
	BarFillPositive rl.Color
	TickColor       rl.Color
	Padding         int32
	LineHeight      int32
	LabelWidth      int32
	BarHeight       int32
	FontSize        int32
	HeaderFontSize  int32
}

// DefaultTheme returns the viewer's dark panel styling.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:         rl.Color{R: 16, G: 20, B: 26, A: 235},
		PanelBorder:     rl.Color{R: 70, G: 80, B: 92, A: 255},
		SectionHeader:   rl.Color{R: 240, G: 210, B: 90, A: 255},
		LabelColor:      rl.LightGray,
		ValueColor:      rl.RayWhite,
		BarBg:           rl.Color{R: 36, G: 40, B: 46, A: 255},
		BarFill:         rl.Color{R: 90, G: 160, B: 190, A: 255},
		BarFillNegative: rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillPositive: rl.Color{R: 100, G: 200, B: 100, A: 255},
		TickColor:       rl.Color{R: 235, G: 200, B: 80, A: 255},
		Padding:         10,
		LineHeight:      16,
		LabelWidth:      90,
		BarHeight:       12,
		FontSize:        12,
		HeaderFontSize:  14,
	}
}
