package services

import (
	"fmt"

	"github.com/armature-dev/armature/internal/domain/entities"
)

// RulebookCompiler transforms raw rulebook documents into a validated rulebook.
// This is a domain service that encapsulates the compilation process.
//
// Compilation steps:
// 1. Overlay the raw documents onto the built-in defaults (inputs are not mutated)
// 2. Validate invariants
// 3. Compile expression rules so that broken expressions fail here
type RulebookCompiler struct {
	merger *RulebookMerger
}

// NewRulebookCompiler creates a new rulebook compiler service.
func NewRulebookCompiler() *RulebookCompiler {
	return &RulebookCompiler{merger: NewRulebookMerger()}
}

// Compile overlays raw documents (left-to-right) onto DefaultRulebook and
// validates the result. With no documents it returns the defaults.
func (c *RulebookCompiler) Compile(raw ...*entities.Rulebook) (*entities.Rulebook, error) {
	compiled := c.merger.MergeAll(entities.DefaultRulebook(), raw...)

	if err := compiled.Validate(); err != nil {
		return nil, fmt.Errorf("rulebook validation failed: %w", err)
	}

	if _, err := NewExpressionRules(compiled.Rules); err != nil {
		return nil, fmt.Errorf("rulebook expression rules: %w", err)
	}

	return compiled, nil
}
