// Package entities contains domain entities for the armature domain model.
// These are pure domain types with NO infrastructure dependencies.
package entities

import (
	"github.com/armature-dev/armature/internal/domain/values"
)

// Unit is a snapshot of an assembled, player-controlled unit.
// It is owned by the caller; validation never mutates it.
//
// Aggregate Boundary:
// - Unit is the root
// - Frame, Core and Components are parts installed into the unit
// - Modifiers are equipped effects
// - State is the optional runtime snapshot
type Unit struct {
	ID         string           `json:"id" yaml:"id"`
	Name       string           `json:"name" yaml:"name"`
	Archetype  values.Archetype `json:"archetype" yaml:"archetype"`
	Owner      string           `json:"owner,omitempty" yaml:"owner,omitempty"`
	CombatRole string           `json:"combat_role,omitempty" yaml:"combat_role,omitempty"`
	Frame      *Frame           `json:"frame,omitempty" yaml:"frame,omitempty"`
	Core       *Component       `json:"core,omitempty" yaml:"core,omitempty"`
	Components []Component      `json:"components" yaml:"components"`
	Modifiers  []Modifier       `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	State      *RuntimeState    `json:"state,omitempty" yaml:"state,omitempty"`
}

// Frame is the structural chassis defining component slot capacity.
type Frame struct {
	ID       string        `json:"id,omitempty" yaml:"id,omitempty"`
	Capacity int           `json:"capacity" yaml:"capacity"`
	Rarity   values.Rarity `json:"rarity" yaml:"rarity"`
	Category string        `json:"category,omitempty" yaml:"category,omitempty"`
	Stats    StatBlock     `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Component is a category-tagged part installed into a frame slot.
type Component struct {
	ID       string                   `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string                   `json:"name,omitempty" yaml:"name,omitempty"`
	Category values.ComponentCategory `json:"category" yaml:"category"`
	Rarity   values.Rarity            `json:"rarity" yaml:"rarity"`
	Stats    StatBlock                `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// StatBlock is the numeric stat contribution of a part.
type StatBlock struct {
	Attack  int `json:"attack,omitempty" yaml:"attack,omitempty"`
	Defense int `json:"defense,omitempty" yaml:"defense,omitempty"`
	Agility int `json:"agility,omitempty" yaml:"agility,omitempty"`
	Energy  int `json:"energy,omitempty" yaml:"energy,omitempty"`
}

// Total returns the sum of all stats.
func (s StatBlock) Total() int {
	return s.Attack + s.Defense + s.Agility + s.Energy
}

// Modifier is an equippable effect with a magnitude and upgrade level.
//
// Synergies and Conflicts are optional per-modifier declarations. When set
// they take precedence over the rulebook's table for the modifier's family.
type Modifier struct {
	ID        string                          `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string                          `json:"name,omitempty" yaml:"name,omitempty"`
	Family    values.EffectFamily             `json:"family" yaml:"family"`
	Rarity    values.Rarity                   `json:"rarity" yaml:"rarity"`
	Level     int                             `json:"level" yaml:"level"`
	Magnitude float64                         `json:"magnitude" yaml:"magnitude"`
	Synergies map[values.EffectFamily]float64 `json:"synergies,omitempty" yaml:"synergies,omitempty"`
	Conflicts []ConflictRule                  `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// Label returns the most descriptive identifier available for messages.
func (m Modifier) Label() string {
	switch {
	case m.Name != "":
		return m.Name
	case m.ID != "":
		return m.ID
	default:
		return string(m.Family)
	}
}

// ConflictRule declares that pairing with Family is a hard conflict once the
// other modifier's level reaches MinLevel.
type ConflictRule struct {
	With     values.EffectFamily `json:"with" yaml:"with"`
	MinLevel int                 `json:"min_level" yaml:"min_level"`
}

// RuntimeState is the live state of a unit at snapshot time.
type RuntimeState struct {
	Health        int   `json:"health" yaml:"health"`
	MaxHealth     int   `json:"max_health" yaml:"max_health"`
	Energy        int   `json:"energy,omitempty" yaml:"energy,omitempty"`
	PrecisionMode bool  `json:"precision_mode,omitempty" yaml:"precision_mode,omitempty"`
	Bond          *Bond `json:"bond,omitempty" yaml:"bond,omitempty"`
}

// Bond tracks a social bond between a unit and a partner.
type Bond struct {
	Partner  string `json:"partner" yaml:"partner"`
	Affinity int    `json:"affinity,omitempty" yaml:"affinity,omitempty"`
}

// LowHealthRatio is the health fraction at or below which a unit counts as low on health.
const LowHealthRatio = 0.25

// IsLowHealth reports whether health is at or below LowHealthRatio of max.
func (s *RuntimeState) IsLowHealth() bool {
	if s == nil || s.MaxHealth <= 0 {
		return false
	}
	return float64(s.Health) <= float64(s.MaxHealth)*LowHealthRatio
}

// ===== UNIT AGGREGATE ROOT METHODS =====

// HasOwner reports whether the unit references an owner.
func (u *Unit) HasOwner() bool {
	return u.Owner != ""
}

// ComponentCount returns the number of installed components.
func (u *Unit) ComponentCount() int {
	return len(u.Components)
}

// Parts returns the frame-independent parts: the core (if any) followed by components.
func (u *Unit) Parts() []Component {
	parts := make([]Component, 0, len(u.Components)+1)
	if u.Core != nil {
		parts = append(parts, *u.Core)
	}
	return append(parts, u.Components...)
}
