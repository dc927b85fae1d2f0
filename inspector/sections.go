package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/kestrelops/sightline/components"
	"github.com/kestrelops/sightline/telemetry"
	"github.com/kestrelops/sightline/ui"
)

// Data carries one frame's worth of inspectable state. The viewer fills it
// before drawing; the section descriptors below pull values out of it.
type Data struct {
	// Sensor settings
	Alpha          float32
	Darkness       float64
	Smooth         float64
	FOVDegrees     float64
	DepthBias      float64
	Resolution     int
	ExcludeTerrain bool
	VisibleColor   rl.Color
	ShadowColor    rl.Color

	// Sight line geometry
	Distance  float64
	MaxRange  float64
	RangeRate float64 // m/s, negative while closing

	// Coverage window
	VisibleFraction float64
	CoveredPixels   int
	Acquired        bool

	// Selected platform
	HasPlatform bool
	Platform    components.Platform
	Transform   components.Transform
	Lat         float64
	Lon         float64
	Alt         float64
}

func dataOf(v any) *Data {
	d, ok := v.(*Data)
	if !ok {
		return &Data{}
	}
	return d
}

// Sections returns the inspector panel layout. The platform section only
// appears while a marker is selected.
func Sections() []ui.SectionDescriptor {
	return []ui.SectionDescriptor{
		sensorSection(),
		geometrySection(),
		coverageSection(),
		platformSection(),
	}
}

func sensorSection() ui.SectionDescriptor {
	return ui.SectionDescriptor{
		ID:    "sensor",
		Title: "Sensor",
		Fields: []ui.FieldDescriptor{
			{
				ID: "alpha", Label: "Alpha", Widget: ui.WidgetBar, Range: ui.DefaultRange(),
				Getter: func(v any) float32 { return dataOf(v).Alpha },
			},
			{
				ID: "darkness", Label: "Darkness", Widget: ui.WidgetBar, Range: ui.DefaultRange(),
				Getter: func(v any) float32 { return float32(dataOf(v).Darkness) },
			},
			{
				ID: "smooth", Label: "Smooth", Widget: ui.WidgetBar, Range: ui.DefaultRange(),
				Getter: func(v any) float32 { return float32(dataOf(v).Smooth) },
			},
			{
				ID: "fov", Label: "FOV", Widget: ui.WidgetText, Format: "%.0f deg",
				Getter: func(v any) float32 { return float32(dataOf(v).FOVDegrees) },
			},
			{
				ID: "bias", Label: "Depth bias", Widget: ui.WidgetText,
				TextGetter: func(v any) string { return fmt.Sprintf("%.1e", dataOf(v).DepthBias) },
			},
			{
				ID: "resolution", Label: "Resolution", Widget: ui.WidgetText,
				TextGetter: func(v any) string { return fmt.Sprintf("%d px", dataOf(v).Resolution) },
			},
			{
				ID: "terrain", Label: "Terrain", Widget: ui.WidgetText,
				TextGetter: func(v any) string {
					if dataOf(v).ExcludeTerrain {
						return "skipped"
					}
					return "tinted"
				},
			},
			{
				ID: "visible_color", Label: "Visible", Widget: ui.WidgetColorSwatch,
				ColorGetter: func(v any) rl.Color { return dataOf(v).VisibleColor },
			},
			{
				ID: "shadow_color", Label: "Shadow", Widget: ui.WidgetColorSwatch,
				ColorGetter: func(v any) rl.Color { return dataOf(v).ShadowColor },
			},
		},
	}
}

func geometrySection() ui.SectionDescriptor {
	return ui.SectionDescriptor{
		ID:    "geometry",
		Title: "Sight Line",
		Fields: []ui.FieldDescriptor{
			{
				ID: "distance", Label: "Range", Widget: ui.WidgetText, Format: "%.0f m",
				Getter: func(v any) float32 { return float32(dataOf(v).Distance) },
			},
			{
				ID: "max_range", Label: "Max range", Widget: ui.WidgetText, Format: "%.0f m",
				Getter: func(v any) float32 { return float32(dataOf(v).MaxRange) },
			},
			{
				ID: "range_rate", Label: "Range rate", Widget: ui.WidgetCenteredBar,
				Range:  ui.FieldRange{Min: -60, Max: 60},
				Getter: func(v any) float32 { return float32(dataOf(v).RangeRate) },
			},
		},
	}
}

func coverageSection() ui.SectionDescriptor {
	return ui.SectionDescriptor{
		ID:    "coverage",
		Title: "Coverage",
		Fields: []ui.FieldDescriptor{
			{
				// The tick marks the acquire threshold.
				ID: "visible_frac", Label: "Visible", Widget: ui.WidgetBar,
				Range:  ui.FieldRange{Min: 0, Max: 1, Mark: telemetry.DefaultAcquireThreshold},
				Getter: func(v any) float32 { return float32(dataOf(v).VisibleFraction) },
			},
			{
				ID: "covered", Label: "Covered", Widget: ui.WidgetText,
				TextGetter: func(v any) string { return fmt.Sprintf("%d px", dataOf(v).CoveredPixels) },
			},
			{
				ID: "acquired", Label: "Status", Widget: ui.WidgetText,
				TextGetter: func(v any) string {
					if dataOf(v).Acquired {
						return "acquired"
					}
					return "searching"
				},
			},
		},
	}
}

func platformSection() ui.SectionDescriptor {
	fields := []ui.FieldDescriptor{
		{
			ID: "name", Label: "Name", Widget: ui.WidgetText,
			TextGetter: func(v any) string { return dataOf(v).Platform.Name },
		},
		{
			ID: "kind", Label: "Kind", Widget: ui.WidgetText,
			TextGetter: func(v any) string { return dataOf(v).Platform.Kind.String() },
		},
		{
			ID: "lat", Label: "Latitude", Widget: ui.WidgetText, Format: "%.5f deg",
			Getter: func(v any) float32 { return float32(dataOf(v).Lat) },
		},
		{
			ID: "lon", Label: "Longitude", Widget: ui.WidgetText, Format: "%.5f deg",
			Getter: func(v any) float32 { return float32(dataOf(v).Lon) },
		},
		{
			ID: "alt", Label: "Altitude", Widget: ui.WidgetText, Format: "%.0f m",
			Getter: func(v any) float32 { return float32(dataOf(v).Alt) },
		},
		{
			ID: "tracked", Label: "Tracked", Widget: ui.WidgetText,
			TextGetter: func(v any) string {
				if dataOf(v).Transform.Tracked {
					return "yes"
				}
				return "no"
			},
		},
	}
	fields = append(fields, transformFields()...)

	return ui.SectionDescriptor{
		ID:      "platform",
		Title:   "Platform",
		Fields:  fields,
		Visible: func(v any) bool { return dataOf(v).HasPlatform },
	}
}

// transformFields maps the component metadata descriptors onto panel rows
// showing the platform's earth-fixed position.
func transformFields() []ui.FieldDescriptor {
	var fields []ui.FieldDescriptor
	for _, fd := range components.TransformFieldDescriptors() {
		id := fd.ID
		fields = append(fields, ui.FieldDescriptor{
			ID:     "ecef_" + id,
			Label:  "ECEF " + fd.Label,
			Widget: ui.WidgetText,
			Format: fd.Format,
			Getter: func(v any) float32 {
				d := dataOf(v)
				return float32(components.GetTransformValue(&d.Transform, id))
			},
		})
	}
	return fields
}
