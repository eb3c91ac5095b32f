package components

// FieldDescriptor describes a drive field for UI display.
type FieldDescriptor struct {
	ID           string  // Unique identifier
	Label        string  // Display name
	Format       string  // Printf format (e.g., "%.2f")
	Min          float64 // Minimum value (for bars)
	Max          float64 // Maximum value (for bars)
	IsBar        bool    // True to render as progress bar
	ShowWhenZero bool    // Show even when value is zero
	Group        string  // Logical grouping
}

// DriveFieldDescriptors returns metadata for Drive fields.
func DriveFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "level", Label: "Level", Format: "%.3f", Min: 0, Max: 1, IsBar: true, ShowWhenZero: true, Group: "state"},
		{ID: "deficit", Label: "Deficit", Format: "%.3f", Min: 0, Max: 1, IsBar: true, Group: "derived"},
		{ID: "cue", Label: "Cue", Format: "%.3f", Min: 0, Max: 1, Group: "derived"},
		{ID: "motivation", Label: "Motivation", Format: "%.3f", Min: 0, Max: 2, IsBar: true, Group: "derived"},
	}
}

// GetDriveValue returns the value of the named field, or 0 if unknown.
func GetDriveValue(d *Drive, fieldID string) float64 {
	switch fieldID {
	case "level":
		return d.Level
	case "deficit":
		return d.Deficit
	case "cue":
		return d.Cue
	case "motivation":
		return d.Motivation
	}
	return 0
}
