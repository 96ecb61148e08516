package entities

import (
	"errors"
	"fmt"
	"slices"

	"github.com/armature-dev/armature/internal/domain/values"
)

// Rulebook is the static, read-only rule and lookup table set consumed by
// the validation pipeline. It is explicit configuration: each pipeline is
// constructed with its own Rulebook and never mutates it.
type Rulebook struct {
	Version             string                               `yaml:"version"`
	RequiresEngine      string                               `yaml:"requires_engine,omitempty"`
	CapacityPolicy      CapacityPolicy                       `yaml:"capacity_policy,omitempty"`
	EssentialCategories []values.ComponentCategory           `yaml:"essential_categories,omitempty"`
	Thresholds          Thresholds                           `yaml:"thresholds,omitempty"`
	Weights             ScoreWeights                         `yaml:"weights,omitempty"`
	Archetypes          map[values.Archetype]ArchetypePolicy `yaml:"archetypes,omitempty"`
	Effects             map[values.EffectFamily]EffectRules  `yaml:"effects,omitempty"`
	Rules               []ExpressionRule                     `yaml:"rules,omitempty"`

	// ZeroOverrides lists threshold and weight keys, such as "weights.info",
	// that an overlay sets to zero on purpose. Other zero values are unset.
	ZeroOverrides []string `yaml:"-"`
}

// SetsZero reports whether key is explicitly set to zero.
func (r *Rulebook) SetsZero(key string) bool {
	return r != nil && slices.Contains(r.ZeroOverrides, key)
}

// CapacityPolicy decides how component overflow is reported.
type CapacityPolicy string

const (
	// CapacityStrict reports overflow as an ERROR during the required-fields stage.
	CapacityStrict CapacityPolicy = "strict"
	// CapacityLenient reports overflow as a WARNING during the performance stage.
	CapacityLenient CapacityPolicy = "lenient"
)

// Thresholds holds the numeric limits used by the built-in rules.
type Thresholds struct {
	NameMin       int     `yaml:"name_min,omitempty"`
	NameMax       int     `yaml:"name_max,omitempty"`
	MaxModifiers  int     `yaml:"max_modifiers,omitempty"`
	RatingCeiling float64 `yaml:"rating_ceiling,omitempty"`
	MaxRarityGap  int     `yaml:"max_rarity_gap,omitempty"`
}

// ScoreWeights are the per-severity score deductions.
type ScoreWeights struct {
	Critical int `yaml:"critical,omitempty"`
	Error    int `yaml:"error,omitempty"`
	Warning  int `yaml:"warning,omitempty"`
	Info     int `yaml:"info,omitempty"`
}

// OwnerPolicy describes whether an archetype expects an owner reference.
type OwnerPolicy string

const (
	OwnerRequired    OwnerPolicy = "required"
	OwnerForbidden   OwnerPolicy = "forbidden"
	OwnerExpected    OwnerPolicy = "expected"
	OwnerDiscouraged OwnerPolicy = "discouraged"
	OwnerOptional    OwnerPolicy = "optional"
)

// IsValid reports whether the policy is known. Empty means optional.
func (p OwnerPolicy) IsValid() bool {
	switch p {
	case OwnerRequired, OwnerForbidden, OwnerExpected, OwnerDiscouraged, OwnerOptional, "":
		return true
	default:
		return false
	}
}

// ArchetypePolicy declares required and forbidden attributes for an archetype.
type ArchetypePolicy struct {
	Owner              OwnerPolicy   `yaml:"owner,omitempty"`
	MinFrameRarity     values.Rarity `yaml:"min_frame_rarity,omitempty"`
	MinCoreRarity      values.Rarity `yaml:"min_core_rarity,omitempty"`
	RequiresCombatRole bool          `yaml:"requires_combat_role,omitempty"`
	ExpectsCore        bool          `yaml:"expects_core,omitempty"`
	TracksBond         bool          `yaml:"tracks_bond,omitempty"`
}

// EffectRules is the declarative table for one effect family.
type EffectRules struct {
	Synergies       map[values.EffectFamily]float64 `yaml:"synergies,omitempty"`
	Conflicts       []ConflictRule                  `yaml:"conflicts,omitempty"`
	CritFraction    float64                         `yaml:"crit_fraction,omitempty"`
	EvasionFraction float64                         `yaml:"evasion_fraction,omitempty"`
	EnergyCost      float64                         `yaml:"energy_cost,omitempty"`
	SpecialMode     *SpecialMode                    `yaml:"special_mode,omitempty"`
}

// SpecialMode unlocks at UnlockLevel and, while Trigger holds, multiplies the
// applied magnitude for DurationTurns at a higher energy cost.
type SpecialMode struct {
	UnlockLevel   int              `yaml:"unlock_level"`
	Trigger       values.Condition `yaml:"trigger"`
	Multiplier    float64          `yaml:"multiplier"`
	DurationTurns int              `yaml:"duration_turns"`
	EnergyFactor  float64          `yaml:"energy_factor"`
}

// ExpressionRule is a custom rule evaluated with an expression language.
// When an optional When guard holds and Expect is false, one issue is raised.
type ExpressionRule struct {
	Name       string           `yaml:"name"`
	When       string           `yaml:"when,omitempty"`
	Expect     string           `yaml:"expect"`
	Severity   values.Severity  `yaml:"severity"`
	Code       values.IssueCode `yaml:"code"`
	Message    string           `yaml:"message,omitempty"`
	Field      string           `yaml:"field,omitempty"`
	Suggestion string           `yaml:"suggestion,omitempty"`
}

// DefaultRulebook returns the built-in rule tables.
// Each call returns a fresh value so callers can adjust it freely.
func DefaultRulebook() *Rulebook {
	return &Rulebook{
		Version:             "1.0.0",
		CapacityPolicy:      CapacityStrict,
		EssentialCategories: []values.ComponentCategory{values.CategoryHead, values.CategoryTorso},
		Thresholds: Thresholds{
			NameMin:       3,
			NameMax:       50,
			MaxModifiers:  10,
			RatingCeiling: 5000,
			MaxRarityGap:  3,
		},
		Weights: ScoreWeights{Critical: 40, Error: 15, Warning: 5, Info: 1},
		Archetypes: map[values.Archetype]ArchetypePolicy{
			values.ArchetypeAutonomous: {
				Owner: OwnerForbidden,
			},
			values.ArchetypeLeader: {
				Owner:          OwnerRequired,
				MinFrameRarity: values.RarityRare,
				MinCoreRarity:  values.RarityEpic,
				ExpectsCore:    true,
				TracksBond:     true,
			},
			values.ArchetypeCombat: {
				Owner:              OwnerExpected,
				RequiresCombatRole: true,
				ExpectsCore:        true,
				TracksBond:         true,
			},
			values.ArchetypeSupport: {
				Owner:       OwnerExpected,
				ExpectsCore: true,
				TracksBond:  true,
			},
		},
		Effects: defaultEffects(),
	}
}

func defaultEffects() map[values.EffectFamily]EffectRules {
	return map[values.EffectFamily]EffectRules{
		values.FamilyPower: {
			Synergies:    map[values.EffectFamily]float64{values.FamilyFury: 0.15, values.FamilyCritical: 0.05},
			CritFraction: 0.05,
			EnergyCost:   10,
			SpecialMode:  &SpecialMode{UnlockLevel: 5, Trigger: values.ConditionLowHealth, Multiplier: 1.5, DurationTurns: 3, EnergyFactor: 1.25},
		},
		values.FamilyGuard: {
			Synergies:       map[values.EffectFamily]float64{values.FamilyVitality: 0.10},
			Conflicts:       []ConflictRule{{With: values.FamilyFury, MinLevel: 8}},
			EvasionFraction: 0.02,
			EnergyCost:      8,
			SpecialMode:     &SpecialMode{UnlockLevel: 6, Trigger: values.ConditionLowHealth, Multiplier: 1.5, DurationTurns: 2, EnergyFactor: 1.5},
		},
		values.FamilyHaste: {
			Synergies:       map[values.EffectFamily]float64{values.FamilyEvasion: 0.12},
			EvasionFraction: 0.05,
			EnergyCost:      6,
			SpecialMode:     &SpecialMode{UnlockLevel: 5, Trigger: values.ConditionPrecisionMode, Multiplier: 1.3, DurationTurns: 2, EnergyFactor: 1.2},
		},
		values.FamilyCritical: {
			Synergies:    map[values.EffectFamily]float64{values.FamilyPower: 0.10, values.FamilyFocus: 0.15},
			CritFraction: 0.20,
			EnergyCost:   12,
			SpecialMode:  &SpecialMode{UnlockLevel: 7, Trigger: values.ConditionPrecisionMode, Multiplier: 2.0, DurationTurns: 1, EnergyFactor: 1.5},
		},
		values.FamilyEvasion: {
			Synergies:       map[values.EffectFamily]float64{values.FamilyHaste: 0.08},
			EvasionFraction: 0.20,
			EnergyCost:      7,
			SpecialMode:     &SpecialMode{UnlockLevel: 6, Trigger: values.ConditionLowHealth, Multiplier: 1.5, DurationTurns: 2, EnergyFactor: 1.25},
		},
		values.FamilyVitality: {
			Synergies:  map[values.EffectFamily]float64{values.FamilyGuard: 0.10},
			Conflicts:  []ConflictRule{{With: values.FamilyFury, MinLevel: 9}},
			EnergyCost: 5,
		},
		values.FamilyFocus: {
			Synergies:    map[values.EffectFamily]float64{values.FamilyCritical: 0.15},
			Conflicts:    []ConflictRule{{With: values.FamilyFury, MinLevel: 8}},
			CritFraction: 0.10,
			EnergyCost:   9,
			SpecialMode:  &SpecialMode{UnlockLevel: 5, Trigger: values.ConditionPrecisionMode, Multiplier: 1.5, DurationTurns: 3, EnergyFactor: 1.25},
		},
		values.FamilyFury: {
			Synergies:    map[values.EffectFamily]float64{values.FamilyPower: 0.15},
			Conflicts:    []ConflictRule{{With: values.FamilyGuard, MinLevel: 8}, {With: values.FamilyFocus, MinLevel: 8}},
			CritFraction: 0.10,
			EnergyCost:   15,
			SpecialMode:  &SpecialMode{UnlockLevel: 5, Trigger: values.ConditionLowHealth, Multiplier: 2.0, DurationTurns: 2, EnergyFactor: 1.5},
		},
	}
}

// ===== RULEBOOK AGGREGATE ROOT METHODS =====

// Policy returns the policy for an archetype and whether one is declared.
func (r *Rulebook) Policy(a values.Archetype) (ArchetypePolicy, bool) {
	p, ok := r.Archetypes[a]
	return p, ok
}

// EffectRulesFor returns the table for a family. Unknown families yield an
// empty table, never an error.
func (r *Rulebook) EffectRulesFor(f values.EffectFamily) EffectRules {
	return r.Effects[f]
}

// Validate checks the rulebook's internal consistency.
// All problems are reported together.
func (r *Rulebook) Validate() error {
	var errs []error

	if r.Version == "" {
		errs = append(errs, errors.New("rulebook version cannot be empty"))
	}

	switch r.CapacityPolicy {
	case CapacityStrict, CapacityLenient:
	default:
		errs = append(errs, fmt.Errorf("unknown capacity policy %q", r.CapacityPolicy))
	}

	for _, c := range r.EssentialCategories {
		if !c.IsValid() {
			errs = append(errs, fmt.Errorf("unknown essential category %q", c))
		}
	}

	if r.Thresholds.NameMin < 0 || r.Thresholds.NameMax < r.Thresholds.NameMin {
		errs = append(errs, fmt.Errorf("invalid name length bounds [%d,%d]", r.Thresholds.NameMin, r.Thresholds.NameMax))
	}
	if r.Thresholds.MaxModifiers < 0 || r.Thresholds.MaxRarityGap < 0 || r.Thresholds.RatingCeiling < 0 {
		errs = append(errs, errors.New("thresholds cannot be negative"))
	}

	w := r.Weights
	if w.Critical < 0 || w.Error < 0 || w.Warning < 0 || w.Info < 0 {
		errs = append(errs, errors.New("score weights cannot be negative"))
	}

	for a, p := range r.Archetypes {
		if err := p.validate(a); err != nil {
			errs = append(errs, err)
		}
	}

	for f, e := range r.Effects {
		if err := e.validate(f); err != nil {
			errs = append(errs, err)
		}
	}

	for i, rule := range r.Rules {
		if err := rule.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("rule %d (%s): %w", i, rule.Name, err))
		}
	}

	return errors.Join(errs...)
}

func (p ArchetypePolicy) validate(a values.Archetype) error {
	if !a.IsValid() {
		return fmt.Errorf("policy declared for unknown archetype %q", a)
	}
	if !p.Owner.IsValid() {
		return fmt.Errorf("archetype %s: unknown owner policy %q", a, p.Owner)
	}
	if p.MinFrameRarity != "" && !p.MinFrameRarity.IsValid() {
		return fmt.Errorf("archetype %s: invalid frame rarity floor %q", a, p.MinFrameRarity)
	}
	if p.MinCoreRarity != "" && !p.MinCoreRarity.IsValid() {
		return fmt.Errorf("archetype %s: invalid core rarity floor %q", a, p.MinCoreRarity)
	}
	return nil
}

func (e EffectRules) validate(f values.EffectFamily) error {
	if !f.IsValid() {
		return fmt.Errorf("effect table declared for unknown family %q", f)
	}
	for other, bonus := range e.Synergies {
		if !other.IsValid() {
			return fmt.Errorf("effect %s: synergy with unknown family %q", f, other)
		}
		if bonus < 0 || bonus > 1 {
			return fmt.Errorf("effect %s: synergy with %s must be a fraction in [0,1], got %v", f, other, bonus)
		}
	}
	for _, c := range e.Conflicts {
		if !c.With.IsValid() {
			return fmt.Errorf("effect %s: conflict with unknown family %q", f, c.With)
		}
		if c.MinLevel < 0 {
			return fmt.Errorf("effect %s: conflict level threshold cannot be negative", f)
		}
	}
	if sm := e.SpecialMode; sm != nil {
		if sm.Trigger == values.ConditionNone || !sm.Trigger.IsValid() {
			return fmt.Errorf("effect %s: special mode has invalid trigger %q", f, sm.Trigger)
		}
		if sm.Multiplier <= 0 || sm.EnergyFactor <= 0 || sm.UnlockLevel < 0 || sm.DurationTurns < 0 {
			return fmt.Errorf("effect %s: special mode values must be positive", f)
		}
	}
	return nil
}

// Validate checks that an expression rule is complete.
func (r ExpressionRule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name cannot be empty")
	}
	if r.Expect == "" {
		return errors.New("expect expression cannot be empty")
	}
	if r.Code == "" {
		return errors.New("issue code cannot be empty")
	}
	if r.Severity.Level() == 0 {
		return errors.New("severity is required")
	}
	return nil
}
