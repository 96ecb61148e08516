package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

// RuleSet inspects a unit snapshot in stages. Every method is a pure function
// of the snapshot and returns zero or more issues.
type RuleSet interface {
	BasicStructure(u *entities.Unit) []validation.Issue
	RequiredFields(u *entities.Unit) []validation.Issue
	BusinessRules(u *entities.Unit) []validation.Issue
}

// PerformanceChecker is implemented by rule sets with a performance stage.
type PerformanceChecker interface {
	Performance(u *entities.Unit) []validation.Issue
}

// CompatibilityChecker is implemented by rule sets with a compatibility stage.
type CompatibilityChecker interface {
	Compatibility(u *entities.Unit) []validation.Issue
}

// UnitRuleSet is the built-in rule set for assembled units.
// It implements RuleSet, PerformanceChecker and CompatibilityChecker.
type UnitRuleSet struct {
	rulebook *entities.Rulebook
	slots    *SlotAllocator
	compat   *CompatibilityEngine
	handlers map[values.Archetype]archetypeHandler
}

var (
	_ RuleSet              = (*UnitRuleSet)(nil)
	_ PerformanceChecker   = (*UnitRuleSet)(nil)
	_ CompatibilityChecker = (*UnitRuleSet)(nil)
)

// NewUnitRuleSet builds the rule set from a rulebook. Every archetype must
// have a declared policy.
func NewUnitRuleSet(rulebook *entities.Rulebook) (*UnitRuleSet, error) {
	if rulebook == nil {
		return nil, fmt.Errorf("rulebook cannot be nil")
	}
	for _, a := range values.AllArchetypes() {
		if _, ok := rulebook.Policy(a); !ok {
			return nil, &entities.UnknownArchetypePolicyError{Archetype: a.String()}
		}
	}

	return &UnitRuleSet{
		rulebook: rulebook,
		slots:    NewSlotAllocator(rulebook.EssentialCategories),
		compat:   NewCompatibilityEngine(rulebook),
		handlers: archetypeHandlers(),
	}, nil
}

// BasicStructure checks that the snapshot is a well-formed record with an identity.
// Any issue it returns is CRITICAL.
func (r *UnitRuleSet) BasicStructure(u *entities.Unit) []validation.Issue {
	if u == nil {
		return []validation.Issue{
			validation.Critical(values.CodeMalformed, "unit is not a well-formed record"),
		}
	}
	if strings.TrimSpace(u.ID) == "" {
		return []validation.Issue{
			validation.Critical(values.CodeMissingID, "unit has no identity").
				At("id").
				Suggest("assign a unique id"),
		}
	}
	return nil
}

// RequiredFields checks presence and membership of required attributes.
func (r *UnitRuleSet) RequiredFields(u *entities.Unit) []validation.Issue {
	var issues []validation.Issue

	th := r.rulebook.Thresholds
	if n := utf8.RuneCountInString(u.Name); n < th.NameMin || n > th.NameMax {
		issues = append(issues,
			validation.Error(values.CodeNameLength,
				"name must be between %d and %d characters, got %d", th.NameMin, th.NameMax, n).
				At("name"),
		)
	}

	if !u.Archetype.IsValid() {
		issues = append(issues,
			validation.Error(values.CodeArchetypeInvalid, "unknown archetype %q", u.Archetype).
				At("archetype").
				Suggest(fmt.Sprintf("use one of %v", values.AllArchetypes())),
		)
	}

	if u.Frame == nil {
		issues = append(issues, validation.Error(values.CodeFrameMissing, "frame is required").At("frame"))
	} else {
		if u.Frame.Capacity < 0 {
			issues = append(issues,
				validation.Error(values.CodeCapacityInvalid, "frame capacity cannot be negative, got %d", u.Frame.Capacity).
					At("frame.capacity"),
			)
		}
		issues = append(issues, rarityIssue("frame.rarity", u.Frame.Rarity)...)
	}

	if u.Core != nil {
		issues = append(issues, componentIssues("core", *u.Core)...)
	}

	switch {
	case u.Components == nil:
		issues = append(issues, validation.Error(values.CodeComponentsMissing, "component list is required").At("components"))
	case len(u.Components) == 0:
		issues = append(issues,
			validation.Warning(values.CodeComponentsEmpty, "no components installed").
				At("components"),
		)
	default:
		for i, c := range u.Components {
			issues = append(issues, componentIssues(fmt.Sprintf("components[%d]", i), c)...)
		}
	}

	for i, m := range u.Modifiers {
		issues = append(issues, modifierIssues(fmt.Sprintf("modifiers[%d]", i), m)...)
	}

	if u.State == nil {
		issues = append(issues, validation.Error(values.CodeStateMissing, "runtime state is required").At("state"))
	}

	if u.Frame != nil && u.Frame.Capacity >= 0 && len(u.Components) > 0 {
		if r.rulebook.CapacityPolicy == entities.CapacityLenient {
			issues = append(issues, r.slots.CoverageIssues(u.Frame, u.Components)...)
		} else {
			issues = append(issues, r.slots.Issues(r.slots.Allocate(u.Frame, u.Components), values.SevError)...)
		}
	}

	return issues
}

func rarityIssue(field string, rarity values.Rarity) []validation.Issue {
	if rarity.IsValid() {
		return nil
	}
	return []validation.Issue{
		validation.Error(values.CodeRarityInvalid, "unknown rarity %q", rarity).At(field),
	}
}

func componentIssues(path string, c entities.Component) []validation.Issue {
	var issues []validation.Issue
	if !c.Category.IsValid() {
		issues = append(issues,
			validation.Error(values.CodeCategoryInvalid, "unknown component category %q", c.Category).
				At(path+".category"),
		)
	}
	return append(issues, rarityIssue(path+".rarity", c.Rarity)...)
}

func modifierIssues(path string, m entities.Modifier) []validation.Issue {
	var issues []validation.Issue
	if !m.Family.IsValid() {
		issues = append(issues,
			validation.Error(values.CodeFamilyInvalid, "unknown effect family %q", m.Family).
				At(path+".family"),
		)
	}
	if m.Level < 0 {
		issues = append(issues,
			validation.Error(values.CodeLevelInvalid, "modifier level cannot be negative, got %d", m.Level).
				At(path+".level"),
		)
	}
	return append(issues, rarityIssue(path+".rarity", m.Rarity)...)
}

// BusinessRules dispatches to the archetype's handler. Units with an unknown
// archetype have no handler and produce no business-rule issues.
func (r *UnitRuleSet) BusinessRules(u *entities.Unit) []validation.Issue {
	handler, ok := r.handlers[u.Archetype]
	if !ok {
		return nil
	}
	policy, _ := r.rulebook.Policy(u.Archetype)
	return handler(u, policy)
}

// Performance flags efficiency concerns.
func (r *UnitRuleSet) Performance(u *entities.Unit) []validation.Issue {
	var issues []validation.Issue

	if r.rulebook.CapacityPolicy == entities.CapacityLenient && u.Frame != nil && u.Frame.Capacity >= 0 {
		issues = append(issues, r.slots.CapacityIssues(u.Frame, u.Components, values.SevWarning)...)
	}

	th := r.rulebook.Thresholds
	if len(u.Modifiers) > th.MaxModifiers {
		issues = append(issues,
			validation.Warning(values.CodeTooManyModifiers,
				"%d modifiers equipped, more than %d", len(u.Modifiers), th.MaxModifiers).
				At("modifiers"),
		)
	}

	if th.RatingCeiling > 0 {
		if rating := CompositeRating(u); rating > th.RatingCeiling {
			issues = append(issues,
				validation.Info(values.CodeRatingExtreme,
					"composite rating %.1f exceeds %.1f", rating, th.RatingCeiling),
			)
		}
	}

	return issues
}

// Compatibility flags mismatches between parts, state and modifiers.
func (r *UnitRuleSet) Compatibility(u *entities.Unit) []validation.Issue {
	var issues []validation.Issue

	if gap := r.rulebook.Thresholds.MaxRarityGap; gap > 0 && u.Core != nil && u.Frame != nil &&
		u.Core.Rarity.IsValid() && u.Frame.Rarity.IsValid() &&
		u.Core.Rarity.Gap(u.Frame.Rarity) >= gap {
		issues = append(issues,
			validation.Warning(values.CodeRarityMismatch,
				"%s core paired with %s frame", u.Core.Rarity, u.Frame.Rarity).
				At("core.rarity").
				Suggest("pair parts of closer rarity tiers"),
		)
	}

	if u.State != nil && u.State.Bond != nil {
		if policy, ok := r.rulebook.Policy(u.Archetype); ok && !policy.TracksBond {
			issues = append(issues,
				validation.Warning(values.CodeStateMismatch,
					"%s units do not track social bonds", u.Archetype).
					At("state.bond"),
			)
		}
	}

	for _, pair := range r.compat.Evaluate(u.Modifiers).Conflicts {
		a, b := u.Modifiers[pair.A], u.Modifiers[pair.B]
		issues = append(issues,
			validation.Error(values.CodeModifierConflict,
				"%s (%s) conflicts with %s (%s)", a.Label(), a.Family, b.Label(), b.Family).
				At(fmt.Sprintf("modifiers[%d]", pair.B)),
		)
	}

	return issues
}
