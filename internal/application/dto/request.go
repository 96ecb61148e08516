// Package dto contains data transfer objects for application layer use cases.
package dto

import "github.com/armature-dev/armature/internal/domain/values"

// ValidateUnitsRequest encapsulates all inputs needed to validate unit files.
type ValidateUnitsRequest struct {
	UnitPaths     []string
	RulebookPaths []string
	Options       ValidationOptions
	Filters       FilterOptions
	Execution     ExecutionOptions
	Metadata      RequestMetadata
}

// ValidationOptions toggles optional pipeline behavior.
type ValidationOptions struct {
	Strict            bool
	SkipPerformance   bool
	SkipCompatibility bool
}

// FilterOptions defines filters for unit selection.
type FilterOptions struct {
	FilterExpression string
	IncludeUnitIDs   []string
	ExcludeUnitIDs   []string
	Archetypes       []string
}

// ExecutionOptions controls how a batch is executed.
type ExecutionOptions struct {
	// Parallel enables parallel validation of units
	Parallel bool

	// MaxConcurrent limits parallel validation (0 = engine default)
	MaxConcurrent int
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}

// InspectUnitsRequest encapsulates inputs for the compatibility and effects
// use cases.
type InspectUnitsRequest struct {
	UnitPaths     []string
	RulebookPaths []string

	// Conditions are forced on for effect derivation, in addition to those
	// derived from each unit's runtime state.
	Conditions []values.Condition
}
