package validation

import (
	"github.com/armature-dev/armature/internal/domain/entities"
)

// RuleFunc inspects a unit and returns any issues it finds.
// A returned error is treated as a rule failure, not as a finding.
type RuleFunc func(unit *entities.Unit) ([]Issue, error)

// CustomRule is an externally supplied rule run after the built-in stages.
type CustomRule struct {
	Name  string
	Apply RuleFunc
}

// Context carries per-call validation options.
type Context struct {
	// Strict is recorded on the call but does not change the built-in rules.
	Strict             bool
	CheckPerformance   bool
	CheckCompatibility bool
	CustomRules        []CustomRule
}

// DefaultContext enables the performance and compatibility stages.
func DefaultContext() Context {
	return Context{
		CheckPerformance:   true,
		CheckCompatibility: true,
	}
}

// WithRule returns a copy of the context with an extra custom rule appended.
func (c Context) WithRule(name string, fn RuleFunc) Context {
	rules := make([]CustomRule, 0, len(c.CustomRules)+1)
	rules = append(rules, c.CustomRules...)
	c.CustomRules = append(rules, CustomRule{Name: name, Apply: fn})
	return c
}
