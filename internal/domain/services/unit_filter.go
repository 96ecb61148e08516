package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/armature-dev/armature/internal/domain/entities"
)

// UnitEnv defines the variables available during filter expression evaluation.
type UnitEnv struct {
	ID         string `expr:"id"`
	Name       string `expr:"name"`
	Archetype  string `expr:"archetype"`
	Owner      string `expr:"owner"`
	CombatRole string `expr:"combat_role"`
	Components int    `expr:"components"`
	Modifiers  int    `expr:"modifiers"`
	Capacity   int    `expr:"capacity"`
}

func newUnitEnv(u *entities.Unit) UnitEnv {
	env := UnitEnv{
		ID:         u.ID,
		Name:       u.Name,
		Archetype:  u.Archetype.String(),
		Owner:      u.Owner,
		CombatRole: u.CombatRole,
		Components: len(u.Components),
		Modifiers:  len(u.Modifiers),
	}
	if u.Frame != nil {
		env.Capacity = u.Frame.Capacity
	}
	return env
}

// CompileUnitFilter compiles a --filter expression against UnitEnv.
func CompileUnitFilter(src string) (*vm.Program, error) {
	if len(src) > maxExpressionLength {
		return nil, fmt.Errorf("filter expression too long (max %d chars): %d chars", maxExpressionLength, len(src))
	}
	program, err := expr.Compile(src, expr.Env(UnitEnv{}), expr.AsBool(), expr.MaxNodes(maxASTNodes))
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return program, nil
}

// UnitFilter selects which loaded units are validated, based on IDs,
// archetypes and an optional expression.
type UnitFilter struct {
	// Exclusive mode: only include specified units
	exclusiveUnitIDs map[string]bool

	// Exclusion filters
	excludeUnitIDs map[string]bool

	// Inclusion filters
	includeArchetypes map[string]bool

	// Advanced filtering
	filterProgram *vm.Program
}

// NewUnitFilter initializes a new empty filter.
func NewUnitFilter() *UnitFilter {
	return &UnitFilter{
		exclusiveUnitIDs:  make(map[string]bool),
		excludeUnitIDs:    make(map[string]bool),
		includeArchetypes: make(map[string]bool),
	}
}

// WithExclusiveUnits restricts validation to ONLY the specified unit IDs.
// If set, all other filters are ignored.
func (f *UnitFilter) WithExclusiveUnits(unitIDs []string) *UnitFilter {
	f.exclusiveUnitIDs = toSet(unitIDs)
	return f
}

// WithExcludedUnits excludes specific unit IDs.
func (f *UnitFilter) WithExcludedUnits(unitIDs []string) *UnitFilter {
	f.excludeUnitIDs = toSet(unitIDs)
	return f
}

// WithIncludedArchetypes includes only units of these archetypes.
func (f *UnitFilter) WithIncludedArchetypes(archetypes []string) *UnitFilter {
	f.includeArchetypes = toSet(archetypes)
	return f
}

// WithFilterExpression applies a compiled Expr program for advanced filtering.
func (f *UnitFilter) WithFilterExpression(program *vm.Program) *UnitFilter {
	f.filterProgram = program
	return f
}

// ShouldValidate evaluates whether a unit matches the filter criteria.
// Malformed (nil) units are always selected so that they are reported.
func (f *UnitFilter) ShouldValidate(u *entities.Unit) (bool, string) {
	if u == nil {
		return true, ""
	}

	if len(f.exclusiveUnitIDs) > 0 {
		return NewExclusiveUnitsSpecification(f.exclusiveUnitIDs).IsSatisfiedBy(u)
	}

	var specs []UnitSpecification
	if len(f.excludeUnitIDs) > 0 {
		specs = append(specs, NewExcludedUnitsSpecification(f.excludeUnitIDs))
	}
	if len(f.includeArchetypes) > 0 {
		specs = append(specs, NewIncludedArchetypesSpecification(f.includeArchetypes))
	}
	if f.filterProgram != nil {
		specs = append(specs, NewExpressionSpecification(f.filterProgram))
	}

	return NewAndSpecification(specs...).IsSatisfiedBy(u)
}

// toSet converts a slice to a map (set)
func toSet(slice []string) map[string]bool {
	s := make(map[string]bool, len(slice))
	for _, item := range slice {
		s[item] = true
	}
	return s
}
