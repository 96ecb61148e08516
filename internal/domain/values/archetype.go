package values

import "fmt"

// Archetype is the closed category of an assembled unit.
// It selects which business rules apply.
type Archetype string

const (
	// ArchetypeAutonomous units act on their own and never have an owner.
	ArchetypeAutonomous Archetype = "autonomous"
	// ArchetypeLeader units command others and need elevated parts.
	ArchetypeLeader Archetype = "leader"
	// ArchetypeCombat units fight and must declare a combat role.
	ArchetypeCombat Archetype = "combat"
	// ArchetypeSupport units assist an owner.
	ArchetypeSupport Archetype = "support"
)

// AllArchetypes lists every archetype in declaration order.
func AllArchetypes() []Archetype {
	return []Archetype{ArchetypeAutonomous, ArchetypeLeader, ArchetypeCombat, ArchetypeSupport}
}

// IsValid reports whether the archetype is a member of the enumeration.
func (a Archetype) IsValid() bool {
	switch a {
	case ArchetypeAutonomous, ArchetypeLeader, ArchetypeCombat, ArchetypeSupport:
		return true
	default:
		return false
	}
}

// Validate returns an error if the archetype value is invalid
func (a Archetype) Validate() error {
	if !a.IsValid() {
		return fmt.Errorf("invalid archetype: %q", string(a))
	}
	return nil
}

// String returns the string representation
func (a Archetype) String() string {
	return string(a)
}
