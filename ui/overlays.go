package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Arena overlays.
const (
	OverlayRays    OverlayID = "rays"
	OverlayTrail   OverlayID = "trail"
	OverlayLabels  OverlayID = "labels"
	OverlayFollow  OverlayID = "follow"
	OverlayHeading OverlayID = "heading"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // Keyboard key to toggle (0 = no key)
	KeyLabel    string // Key label for display (e.g., "R")
	Category    string
	Default     bool
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the arena overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayRays,
		Name:        "Sensor Rays",
		Description: "Draw the proximity rays, shaded by reading",
		Key:         rl.KeyR,
		KeyLabel:    "R",
		Category:    "sensors",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayLabels,
		Name:        "Sensor Labels",
		Description: "Label each sensor with its index",
		Key:         rl.KeyL,
		KeyLabel:    "L",
		Category:    "sensors",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayTrail,
		Name:        "Trail",
		Description: "Draw the recent path of the robot",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "robot",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayHeading,
		Name:        "Heading",
		Description: "Draw the forward axis",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "robot",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayFollow,
		Name:        "Follow",
		Description: "Keep the camera on the robot",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "camera",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and returns the new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key, if any.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// HandleInput polls raylib for overlay key presses.
func (r *OverlayRegistry) HandleInput() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
