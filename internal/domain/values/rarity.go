package values

import "fmt"

// Rarity is the ordered tier scaling an artifact's baseline power.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AllRarities lists every tier from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}
}

// Rank returns the tier position (1 = common, 5 = legendary).
// Unknown values rank 0.
func (r Rarity) Rank() int {
	switch r {
	case RarityCommon:
		return 1
	case RarityUncommon:
		return 2
	case RarityRare:
		return 3
	case RarityEpic:
		return 4
	case RarityLegendary:
		return 5
	default:
		return 0
	}
}

// IsValid reports whether the rarity is a member of the enumeration.
func (r Rarity) IsValid() bool {
	return r.Rank() > 0
}

// AtLeast reports whether r is at or above the floor tier.
func (r Rarity) AtLeast(floor Rarity) bool {
	return r.Rank() >= floor.Rank()
}

// Gap returns the absolute tier distance between two rarities.
func (r Rarity) Gap(other Rarity) int {
	d := r.Rank() - other.Rank()
	if d < 0 {
		return -d
	}
	return d
}

// Validate returns an error if the rarity is not a known tier
func (r Rarity) Validate() error {
	if !r.IsValid() {
		return fmt.Errorf("invalid rarity: %q", string(r))
	}
	return nil
}

// String returns the string representation
func (r Rarity) String() string {
	return string(r)
}
