package services

import (
	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/values"
)

// Conditions are caller-supplied runtime flags that can trigger special modes.
type Conditions struct {
	LowHealth     bool `json:"low_health" yaml:"low_health"`
	PrecisionMode bool `json:"precision_mode" yaml:"precision_mode"`
}

// ConditionsFromState derives flags from a runtime snapshot. A nil state sets none.
func ConditionsFromState(state *entities.RuntimeState) Conditions {
	if state == nil {
		return Conditions{}
	}
	return Conditions{
		LowHealth:     state.IsLowHealth(),
		PrecisionMode: state.PrecisionMode,
	}
}

// Has reports whether a trigger condition is set.
func (c Conditions) Has(cond values.Condition) bool {
	switch cond {
	case values.ConditionLowHealth:
		return c.LowHealth
	case values.ConditionPrecisionMode:
		return c.PrecisionMode
	default:
		return false
	}
}

// With returns a copy with cond set.
func (c Conditions) With(cond values.Condition) Conditions {
	switch cond {
	case values.ConditionLowHealth:
		c.LowHealth = true
	case values.ConditionPrecisionMode:
		c.PrecisionMode = true
	}
	return c
}

// AdvancedEffect is the set of secondary values derived from a modifier.
type AdvancedEffect struct {
	Modifier            string              `json:"modifier" yaml:"modifier"`
	Family              values.EffectFamily `json:"family" yaml:"family"`
	Magnitude           float64             `json:"magnitude" yaml:"magnitude"`
	CritChance          float64             `json:"crit_chance" yaml:"crit_chance"`
	EvasionChance       float64             `json:"evasion_chance" yaml:"evasion_chance"`
	SpecialModeUnlocked bool                `json:"special_mode_unlocked" yaml:"special_mode_unlocked"`
	SpecialModeActive   bool                `json:"special_mode_active" yaml:"special_mode_active"`
	AppliedMagnitude    float64             `json:"applied_magnitude" yaml:"applied_magnitude"`
	DurationTurns       int                 `json:"duration_turns" yaml:"duration_turns"`
	EnergyCost          float64             `json:"energy_cost" yaml:"energy_cost"`
}

// DeriveEffects computes a modifier's secondary bonuses and special mode.
//
// The special mode unlocks at the family's unlock level. While unlocked and
// its trigger condition holds, the applied magnitude is multiplied for a fixed
// number of turns and the energy cost is scaled up.
func (e *CompatibilityEngine) DeriveEffects(m entities.Modifier, cond Conditions) AdvancedEffect {
	var rules entities.EffectRules
	if e.rulebook != nil {
		rules = e.rulebook.EffectRulesFor(m.Family)
	}

	effect := AdvancedEffect{
		Modifier:         m.Label(),
		Family:           m.Family,
		Magnitude:        m.Magnitude,
		CritChance:       m.Magnitude * rules.CritFraction,
		EvasionChance:    m.Magnitude * rules.EvasionFraction,
		AppliedMagnitude: m.Magnitude,
		EnergyCost:       rules.EnergyCost,
	}

	sm := rules.SpecialMode
	if sm == nil || m.Level < sm.UnlockLevel {
		return effect
	}
	effect.SpecialModeUnlocked = true

	if !cond.Has(sm.Trigger) {
		return effect
	}
	effect.SpecialModeActive = true
	effect.AppliedMagnitude = m.Magnitude * sm.Multiplier
	effect.DurationTurns = sm.DurationTurns
	effect.EnergyCost = rules.EnergyCost * sm.EnergyFactor

	return effect
}

// DeriveAll computes effects for every modifier of a unit using conditions
// derived from its runtime state. A nil unit has no effects.
func (e *CompatibilityEngine) DeriveAll(unit *entities.Unit) []AdvancedEffect {
	if unit == nil {
		return []AdvancedEffect{}
	}
	return e.DeriveAllWith(unit, ConditionsFromState(unit.State))
}

// DeriveAllWith computes effects for every modifier of a unit under cond.
func (e *CompatibilityEngine) DeriveAllWith(unit *entities.Unit, cond Conditions) []AdvancedEffect {
	if unit == nil {
		return []AdvancedEffect{}
	}
	effects := make([]AdvancedEffect, 0, len(unit.Modifiers))
	for _, m := range unit.Modifiers {
		effects = append(effects, e.DeriveEffects(m, cond))
	}
	return effects
}
