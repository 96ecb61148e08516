// Package services contains domain services for the Armature domain model.
// These are stateless services that encapsulate business logic.
package services

import (
	"slices"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/values"
)

// ===== DEEP COPY UTILITIES =====
//
// These functions create independent copies of rulebook structures so that
// merging never shares maps or slices with its inputs.

// DeepCopyRulebook creates a complete deep copy of a rulebook.
func DeepCopyRulebook(original *entities.Rulebook) *entities.Rulebook {
	if original == nil {
		return nil
	}

	return &entities.Rulebook{
		Version:             original.Version,
		RequiresEngine:      original.RequiresEngine,
		CapacityPolicy:      original.CapacityPolicy,
		EssentialCategories: CopyCategories(original.EssentialCategories),
		Thresholds:          original.Thresholds,
		Weights:             original.Weights,
		Archetypes:          CopyArchetypePolicies(original.Archetypes),
		Effects:             CopyEffectTables(original.Effects),
		Rules:               CopyExpressionRules(original.Rules),
		ZeroOverrides:       slices.Clone(original.ZeroOverrides),
	}
}

// CopyCategories creates a copy of a category slice.
func CopyCategories(src []values.ComponentCategory) []values.ComponentCategory {
	if src == nil {
		return nil
	}
	dst := make([]values.ComponentCategory, len(src))
	copy(dst, src)
	return dst
}

// CopyArchetypePolicies copies the policy map. Policies are value types.
func CopyArchetypePolicies(src map[values.Archetype]entities.ArchetypePolicy) map[values.Archetype]entities.ArchetypePolicy {
	if src == nil {
		return nil
	}
	dst := make(map[values.Archetype]entities.ArchetypePolicy, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// CopyEffectTables deep copies the per-family effect tables.
func CopyEffectTables(src map[values.EffectFamily]entities.EffectRules) map[values.EffectFamily]entities.EffectRules {
	if src == nil {
		return nil
	}
	dst := make(map[values.EffectFamily]entities.EffectRules, len(src))
	for k, v := range src {
		dst[k] = CopyEffectRules(v)
	}
	return dst
}

// CopyEffectRules deep copies a single effect table.
func CopyEffectRules(src entities.EffectRules) entities.EffectRules {
	dst := entities.EffectRules{
		Synergies:       CopySynergies(src.Synergies),
		Conflicts:       CopyConflicts(src.Conflicts),
		CritFraction:    src.CritFraction,
		EvasionFraction: src.EvasionFraction,
		EnergyCost:      src.EnergyCost,
	}
	if src.SpecialMode != nil {
		sm := *src.SpecialMode
		dst.SpecialMode = &sm
	}
	return dst
}

// CopySynergies copies a synergy bonus map.
func CopySynergies(src map[values.EffectFamily]float64) map[values.EffectFamily]float64 {
	if src == nil {
		return nil
	}
	dst := make(map[values.EffectFamily]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// CopyConflicts copies a conflict rule slice.
func CopyConflicts(src []entities.ConflictRule) []entities.ConflictRule {
	if src == nil {
		return nil
	}
	dst := make([]entities.ConflictRule, len(src))
	copy(dst, src)
	return dst
}

// CopyExpressionRules copies a rule slice. Rules hold only value fields.
func CopyExpressionRules(src []entities.ExpressionRule) []entities.ExpressionRule {
	if src == nil {
		return nil
	}
	dst := make([]entities.ExpressionRule, len(src))
	copy(dst, src)
	return dst
}
