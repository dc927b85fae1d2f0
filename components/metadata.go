package components

// FieldDescriptor describes a component field for UI display.
type FieldDescriptor struct {
	ID           string  // Unique identifier
	Label        string  // Display name
	Format       string  // Printf format (e.g., "%.2f")
	Min          float64 // Minimum value (for bars)
	Max          float64 // Maximum value (for bars)
	IsCentered   bool    // True for centered bar display
	IsBar        bool    // True to render as progress bar
	ShowWhenZero bool    // Show even when value is zero
	Group        string  // Logical grouping
}

// String returns the display name for a platform Kind.
func (k Kind) String() string {
	names := KindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// KindNames returns the display names for all platform kinds.
// The order matches the Kind constants.
func KindNames() []string {
	return []string{"Observer", "Target"}
}

// String returns the display name for a ShapeKind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "Sphere"
	case ShapeBox:
		return "Box"
	}
	return "Unknown"
}

// TransformFieldDescriptors returns metadata for Transform fields.
func TransformFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "x", Label: "X", Format: "%.0f m", ShowWhenZero: true, Group: "position"},
		{ID: "y", Label: "Y", Format: "%.0f m", ShowWhenZero: true, Group: "position"},
		{ID: "z", Label: "Z", Format: "%.0f m", ShowWhenZero: true, Group: "position"},
	}
}

// ShapeFieldDescriptors returns metadata for Shape fields.
func ShapeFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "radius", Label: "Radius", Format: "%.1f m", Min: 0, Max: 500, IsBar: true, Group: "geometry"},
		{ID: "size_x", Label: "Size X", Format: "%.1f m", Group: "geometry"},
		{ID: "size_y", Label: "Size Y", Format: "%.1f m", Group: "geometry"},
		{ID: "size_z", Label: "Size Z", Format: "%.1f m", Group: "geometry"},
	}
}

// GetTransformValue extracts a transform field value by ID.
func GetTransformValue(t *Transform, fieldID string) float64 {
	switch fieldID {
	case "x":
		return t.Pos.X()
	case "y":
		return t.Pos.Y()
	case "z":
		return t.Pos.Z()
	default:
		return 0
	}
}

// GetShapeValue extracts a shape field value by ID.
func GetShapeValue(s *Shape, fieldID string) float64 {
	switch fieldID {
	case "radius":
		return s.Radius
	case "size_x":
		return s.Size.X()
	case "size_y":
		return s.Size.Y()
	case "size_z":
		return s.Size.Z()
	default:
		return 0
	}
}
