package entities

import (
	"fmt"
)

// IncompatibleEngineError indicates a rulebook requires a different engine version.
type IncompatibleEngineError struct {
	Constraint string
	Actual     string
}

func (e *IncompatibleEngineError) Error() string {
	return fmt.Sprintf(
		"rulebook requires engine %s, running %s",
		e.Constraint,
		e.Actual,
	)
}

// UnknownArchetypePolicyError indicates an archetype with no declared policy.
type UnknownArchetypePolicyError struct {
	Archetype string
}

func (e *UnknownArchetypePolicyError) Error() string {
	return fmt.Sprintf("no business-rule policy declared for archetype %q", e.Archetype)
}
