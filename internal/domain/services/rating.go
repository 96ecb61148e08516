package services

import (
	"github.com/armature-dev/armature/internal/domain/entities"
)

// levelScaling is the per-level magnitude increase used by CompositeRating.
const levelScaling = 0.1

// CompositeRating estimates a unit's overall power.
//
// Parts (frame, core, components) contribute their stat total weighted by
// rarity rank. Modifiers contribute magnitude scaled by level and rarity rank.
// Unknown rarities weigh zero.
func CompositeRating(u *entities.Unit) float64 {
	if u == nil {
		return 0
	}

	var rating float64
	if u.Frame != nil {
		rating += float64(u.Frame.Stats.Total() * u.Frame.Rarity.Rank())
	}
	for _, p := range u.Parts() {
		rating += float64(p.Stats.Total() * p.Rarity.Rank())
	}
	for _, m := range u.Modifiers {
		rating += m.Magnitude * (1 + levelScaling*float64(m.Level)) * float64(m.Rarity.Rank())
	}
	return rating
}
