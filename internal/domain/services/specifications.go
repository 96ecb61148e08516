package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/armature-dev/armature/internal/domain/entities"
)

// UnitSpecification defines a condition that a unit must meet to be selected.
type UnitSpecification interface {
	// IsSatisfiedBy checks if the unit meets the specification.
	// Returns true if satisfied, along with a reason if not (or empty if satisfied).
	IsSatisfiedBy(u *entities.Unit) (bool, string)
}

// AndSpecification combines multiple specifications with logical AND.
type AndSpecification struct {
	specs []UnitSpecification
}

// NewAndSpecification creates a new AndSpecification.
func NewAndSpecification(specs ...UnitSpecification) *AndSpecification {
	return &AndSpecification{specs: specs}
}

// IsSatisfiedBy checks if all specifications are satisfied.
func (s *AndSpecification) IsSatisfiedBy(u *entities.Unit) (bool, string) {
	for _, spec := range s.specs {
		if satisfied, reason := spec.IsSatisfiedBy(u); !satisfied {
			return false, reason
		}
	}
	return true, ""
}

// ExclusiveUnitsSpecification includes only specified unit IDs.
type ExclusiveUnitsSpecification struct {
	unitIDs map[string]bool
}

// NewExclusiveUnitsSpecification creates a new ExclusiveUnitsSpecification.
func NewExclusiveUnitsSpecification(ids map[string]bool) *ExclusiveUnitsSpecification {
	return &ExclusiveUnitsSpecification{unitIDs: ids}
}

// IsSatisfiedBy checks if the unit ID is in the exclusive list.
func (s *ExclusiveUnitsSpecification) IsSatisfiedBy(u *entities.Unit) (bool, string) {
	if len(s.unitIDs) == 0 {
		return true, "" // Not active
	}
	if u != nil && s.unitIDs[u.ID] {
		return true, ""
	}
	return false, "excluded by --unit filter"
}

// ExcludedUnitsSpecification excludes specified unit IDs.
type ExcludedUnitsSpecification struct {
	unitIDs map[string]bool
}

// NewExcludedUnitsSpecification creates a new ExcludedUnitsSpecification.
func NewExcludedUnitsSpecification(ids map[string]bool) *ExcludedUnitsSpecification {
	return &ExcludedUnitsSpecification{unitIDs: ids}
}

// IsSatisfiedBy checks if the unit ID is NOT in the excluded list.
func (s *ExcludedUnitsSpecification) IsSatisfiedBy(u *entities.Unit) (bool, string) {
	if u != nil && s.unitIDs[u.ID] {
		return false, "excluded by --exclude-unit"
	}
	return true, ""
}

// IncludedArchetypesSpecification includes only units of the specified archetypes.
type IncludedArchetypesSpecification struct {
	archetypes map[string]bool
}

// NewIncludedArchetypesSpecification creates a new IncludedArchetypesSpecification.
func NewIncludedArchetypesSpecification(archetypes map[string]bool) *IncludedArchetypesSpecification {
	return &IncludedArchetypesSpecification{archetypes: archetypes}
}

// IsSatisfiedBy checks if the unit archetype is in the included list.
func (s *IncludedArchetypesSpecification) IsSatisfiedBy(u *entities.Unit) (bool, string) {
	if len(s.archetypes) == 0 {
		return true, ""
	}
	if u == nil || !s.archetypes[u.Archetype.String()] {
		return false, "excluded by --archetype filter"
	}
	return true, ""
}

// ExpressionSpecification filters units using an expr program.
type ExpressionSpecification struct {
	program *vm.Program
}

// NewExpressionSpecification creates a new ExpressionSpecification.
func NewExpressionSpecification(program *vm.Program) *ExpressionSpecification {
	return &ExpressionSpecification{program: program}
}

// IsSatisfiedBy evaluates the expr program against the unit.
func (s *ExpressionSpecification) IsSatisfiedBy(u *entities.Unit) (bool, string) {
	if s.program == nil {
		return true, ""
	}
	if u == nil {
		return false, "excluded by --filter expression"
	}

	// Note: UnitEnv is defined in unit_filter.go (same package)
	env := newUnitEnv(u)

	output, err := expr.Run(s.program, env)
	if err != nil {
		return false, fmt.Sprintf("filter expression error: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Sprintf("filter expression did not return boolean: %v", output)
	}

	if !result {
		return false, "excluded by --filter expression"
	}

	return true, ""
}
