package ui

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Grid overlay IDs.
const (
	OverlayFood        OverlayID = "food"
	OverlayTrace       OverlayID = "trace"
	OverlayZone        OverlayID = "zone"
	OverlayGrid        OverlayID = "grid"
	OverlaySenseRadius OverlayID = "sense_radius"
	OverlayEnergy      OverlayID = "energy"
	OverlayPersonality OverlayID = "personality"
	OverlayPerf        OverlayID = "perf"
	OverlayLeaderboard OverlayID = "leaderboard"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32 // 0 = no key
	KeyLabel    string
	Category    string
	Exclusive   []OverlayID // disabled when this one is enabled
	Default     bool
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the grid overlays.
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
		ID:          OverlayFood,
		Name:        "Food",
		Description: "Draw food cells",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "world",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayZone,
		Name:        "Food Zone",
		Description: "Outline the active food zone",
		Key:         rl.KeyZ,
		KeyLabel:    "Z",
		Category:    "world",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayTrace,
		Name:        "Trace",
		Description: "Fade recently vacated cells",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "world",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayGrid,
		Name:        "Grid Lines",
		Description: "Draw cell boundaries",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "world",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayEnergy,
		Name:        "Energy Shading",
		Description: "Shade agents by energy instead of genome color",
		Key:         rl.KeyE,
		KeyLabel:    "E",
		Category:    "agents",
		Exclusive:   []OverlayID{OverlayPersonality},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayPersonality,
		Name:        "Personality",
		Description: "Color agents by personality",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "agents",
		Exclusive:   []OverlayID{OverlayEnergy},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlaySenseRadius,
		Name:        "Sense Radius",
		Description: "Show food and agent radii of the selected agent",
		Key:         rl.KeyR,
		KeyLabel:    "R",
		Category:    "agents",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Performance",
		Description: "Per-phase tick timings",
		Key:         rl.KeyF3,
		KeyLabel:    "F3",
		Category:    "panels",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayLeaderboard,
		Name:        "Leaderboard",
		Description: "Longest-lived genome signatures",
		Key:         rl.KeyL,
		KeyLabel:    "L",
		Category:    "panels",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	on := !r.enabled[id]
	r.SetEnabled(id, on)
	return on
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns an overlay descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	desc, ok := r.byID[id]
	return desc, ok
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
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

// Categories returns all unique categories in registration order.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	for _, desc := range r.descriptors {
		if !slices.Contains(cats, desc.Category) {
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key.
// Returns the overlay ID, its new state, and whether a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// EnabledOverlays returns the enabled overlay IDs in registration order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, desc := range r.descriptors {
		if r.enabled[desc.ID] {
			result = append(result, desc.ID)
		}
	}
	return result
}
