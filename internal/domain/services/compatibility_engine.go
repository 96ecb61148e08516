package services

import (
	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/values"
)

// CompatibilityEngine computes pairwise synergy bonuses and conflict flags
// between equipped modifiers.
//
// Lookup order for a modifier's declarations:
//   - the modifier's own Synergies / Conflicts when set
//   - otherwise the rulebook table for the modifier's family
//
// Lookups never fail. Unknown pairs have no synergy and no conflict.
type CompatibilityEngine struct {
	rulebook *entities.Rulebook
}

// NewCompatibilityEngine creates an engine reading declarations from rulebook.
func NewCompatibilityEngine(rulebook *entities.Rulebook) *CompatibilityEngine {
	return &CompatibilityEngine{rulebook: rulebook}
}

// Pair identifies two modifiers by their position in an equipped list.
type Pair struct {
	A int `json:"a" yaml:"a"`
	B int `json:"b" yaml:"b"`
}

// SynergyBonus is a directional bonus between two equipped modifiers.
type SynergyBonus struct {
	Pair
	From  values.EffectFamily `json:"from" yaml:"from"`
	To    values.EffectFamily `json:"to" yaml:"to"`
	Bonus float64             `json:"bonus" yaml:"bonus"`
}

// CompatibilityReport summarizes all pairs in an equipped list.
type CompatibilityReport struct {
	Synergies    []SynergyBonus `json:"synergies" yaml:"synergies"`
	Conflicts    []Pair         `json:"conflicts" yaml:"conflicts"`
	TotalSynergy float64        `json:"total_synergy" yaml:"total_synergy"`
}

// Compatible reports whether no pair conflicts.
func (r CompatibilityReport) Compatible() bool {
	return len(r.Conflicts) == 0
}

// Synergy returns the bonus fraction a declares for pairing with b's family.
// Declarations are directional: Synergy(a, b) and Synergy(b, a) may differ.
func (e *CompatibilityEngine) Synergy(a, b entities.Modifier) float64 {
	if a.Synergies != nil {
		return a.Synergies[b.Family]
	}
	if e.rulebook == nil {
		return 0
	}
	return e.rulebook.EffectRulesFor(a.Family).Synergies[b.Family]
}

// MutualSynergy sums both directions of a pair.
func (e *CompatibilityEngine) MutualSynergy(a, b entities.Modifier) float64 {
	return e.Synergy(a, b) + e.Synergy(b, a)
}

// Conflicts reports whether a and b conflict. A conflict declared from either
// side counts.
func (e *CompatibilityEngine) Conflicts(a, b entities.Modifier) bool {
	return e.conflictsFrom(a, b) || e.conflictsFrom(b, a)
}

// conflictsFrom evaluates the rules a declares against b.
func (e *CompatibilityEngine) conflictsFrom(a, b entities.Modifier) bool {
	for _, rule := range e.conflictRules(a) {
		if rule.With == b.Family && b.Level >= rule.MinLevel {
			return true
		}
	}
	return false
}

func (e *CompatibilityEngine) conflictRules(m entities.Modifier) []entities.ConflictRule {
	if m.Conflicts != nil {
		return m.Conflicts
	}
	if e.rulebook == nil {
		return nil
	}
	return e.rulebook.EffectRulesFor(m.Family).Conflicts
}

// Evaluate inspects every pair of an equipped list. Synergies are listed per
// ordered pair when non-zero; conflicts once per unordered pair (A < B).
func (e *CompatibilityEngine) Evaluate(mods []entities.Modifier) CompatibilityReport {
	report := CompatibilityReport{
		Synergies: []SynergyBonus{},
		Conflicts: []Pair{},
	}

	for i := range mods {
		for j := range mods {
			if i == j {
				continue
			}
			if bonus := e.Synergy(mods[i], mods[j]); bonus != 0 {
				report.Synergies = append(report.Synergies, SynergyBonus{
					Pair:  Pair{A: i, B: j},
					From:  mods[i].Family,
					To:    mods[j].Family,
					Bonus: bonus,
				})
				report.TotalSynergy += bonus
			}
			if i < j && e.Conflicts(mods[i], mods[j]) {
				report.Conflicts = append(report.Conflicts, Pair{A: i, B: j})
			}
		}
	}

	return report
}
