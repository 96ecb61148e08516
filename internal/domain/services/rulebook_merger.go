package services

import (
	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/values"
)

// RulebookMerger layers rulebooks on top of each other.
// This is a DOMAIN SERVICE because overlay semantics are business rules.
//
// Merge Semantics:
//   - Version, RequiresEngine, CapacityPolicy: overlay wins, fallback to base if empty
//   - EssentialCategories: overlay replaces when non-empty
//   - Thresholds, Weights: field by field, non-zero or explicitly zeroed overlay values win
//   - Archetypes, Effects: merge by key (same key = replace)
//   - Rules: merge by name (same name = replace, new name = append)
type RulebookMerger struct{}

// NewRulebookMerger creates a new rulebook merger service.
func NewRulebookMerger() *RulebookMerger {
	return &RulebookMerger{}
}

// MergeAll applies overlays left-to-right onto base.
// Returns a NEW rulebook (does not mutate inputs).
func (m *RulebookMerger) MergeAll(base *entities.Rulebook, overlays ...*entities.Rulebook) *entities.Rulebook {
	result := DeepCopyRulebook(base)
	for _, overlay := range overlays {
		result = m.Merge(result, overlay)
	}
	return result
}

// Merge combines two rulebooks with overlay winning on conflicts.
// Returns a NEW rulebook (does not mutate inputs).
func (m *RulebookMerger) Merge(base, overlay *entities.Rulebook) *entities.Rulebook {
	if base == nil {
		return DeepCopyRulebook(overlay)
	}
	merged := DeepCopyRulebook(base)
	if overlay == nil {
		return merged
	}

	if overlay.Version != "" {
		merged.Version = overlay.Version
	}
	if overlay.RequiresEngine != "" {
		merged.RequiresEngine = overlay.RequiresEngine
	}
	if overlay.CapacityPolicy != "" {
		merged.CapacityPolicy = overlay.CapacityPolicy
	}
	if len(overlay.EssentialCategories) > 0 {
		merged.EssentialCategories = CopyCategories(overlay.EssentialCategories)
	}

	merged.Thresholds = m.mergeThresholds(base.Thresholds, overlay)
	merged.Weights = m.mergeWeights(base.Weights, overlay)
	merged.ZeroOverrides = nil

	if len(overlay.Archetypes) > 0 && merged.Archetypes == nil {
		merged.Archetypes = make(map[values.Archetype]entities.ArchetypePolicy, len(overlay.Archetypes))
	}
	for k, v := range overlay.Archetypes {
		merged.Archetypes[k] = v
	}

	if len(overlay.Effects) > 0 && merged.Effects == nil {
		merged.Effects = make(map[values.EffectFamily]entities.EffectRules, len(overlay.Effects))
	}
	for k, v := range overlay.Effects {
		merged.Effects[k] = CopyEffectRules(v)
	}

	merged.Rules = m.mergeRules(merged.Rules, overlay.Rules)

	return merged
}

func (m *RulebookMerger) mergeThresholds(base entities.Thresholds, overlay *entities.Rulebook) entities.Thresholds {
	result := base
	th := overlay.Thresholds
	if th.NameMin != 0 || overlay.SetsZero("thresholds.name_min") {
		result.NameMin = th.NameMin
	}
	if th.NameMax != 0 || overlay.SetsZero("thresholds.name_max") {
		result.NameMax = th.NameMax
	}
	if th.MaxModifiers != 0 || overlay.SetsZero("thresholds.max_modifiers") {
		result.MaxModifiers = th.MaxModifiers
	}
	if th.RatingCeiling != 0 || overlay.SetsZero("thresholds.rating_ceiling") {
		result.RatingCeiling = th.RatingCeiling
	}
	if th.MaxRarityGap != 0 || overlay.SetsZero("thresholds.max_rarity_gap") {
		result.MaxRarityGap = th.MaxRarityGap
	}
	return result
}

func (m *RulebookMerger) mergeWeights(base entities.ScoreWeights, overlay *entities.Rulebook) entities.ScoreWeights {
	result := base
	w := overlay.Weights
	if w.Critical != 0 || overlay.SetsZero("weights.critical") {
		result.Critical = w.Critical
	}
	if w.Error != 0 || overlay.SetsZero("weights.error") {
		result.Error = w.Error
	}
	if w.Warning != 0 || overlay.SetsZero("weights.warning") {
		result.Warning = w.Warning
	}
	if w.Info != 0 || overlay.SetsZero("weights.info") {
		result.Info = w.Info
	}
	return result
}

// mergeRules merges rules by name.
// Order is preserved: base rules first (replaced in place), then new overlay rules.
func (m *RulebookMerger) mergeRules(base, overlay []entities.ExpressionRule) []entities.ExpressionRule {
	if len(overlay) == 0 {
		return base
	}

	index := make(map[string]int, len(base))
	result := make([]entities.ExpressionRule, 0, len(base)+len(overlay))
	for _, r := range base {
		index[r.Name] = len(result)
		result = append(result, r)
	}
	for _, r := range overlay {
		if i, ok := index[r.Name]; ok {
			result[i] = r
			continue
		}
		index[r.Name] = len(result)
		result = append(result, r)
	}
	return result
}
