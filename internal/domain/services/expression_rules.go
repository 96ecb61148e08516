package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

// Security: complexity limits to prevent DoS via rulebook expressions.
const (
	maxExpressionLength = 1000 // Character limit for readability
	maxASTNodes         = 100  // AST node limit prevents deeply nested expressions
)

// ExpressionRules evaluates rulebook expression rules against units.
// It caches compiled expressions to avoid redundant compilation overhead.
//
// Expressions see the unit in its document form (snake_case keys):
//
//	id, name, archetype, owner, combat_role, frame, core, components, modifiers, state
//
// plus low_health and the helper function rarityRank(r).
type ExpressionRules struct {
	rules        []entities.ExpressionRule
	programCache map[string]*vm.Program // Cache of compiled expressions (thread-safe with mutex)
	cacheMu      sync.RWMutex           // Protects programCache
}

// NewExpressionRules compiles every rule up front so that broken rulebooks
// fail at load rather than during validation.
func NewExpressionRules(rules []entities.ExpressionRule) (*ExpressionRules, error) {
	e := &ExpressionRules{
		rules:        CopyExpressionRules(rules),
		programCache: make(map[string]*vm.Program),
	}
	for _, rule := range e.rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		for _, src := range []string{rule.When, rule.Expect} {
			if src == "" {
				continue
			}
			if _, err := e.getOrCompileExpression(src); err != nil {
				return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
			}
		}
	}
	return e, nil
}

// Len returns the number of rules.
func (e *ExpressionRules) Len() int {
	return len(e.rules)
}

// Rules returns the rules as named custom rules, in declaration order.
func (e *ExpressionRules) Rules() []validation.CustomRule {
	out := make([]validation.CustomRule, 0, len(e.rules))
	for _, rule := range e.rules {
		out = append(out, validation.CustomRule{Name: rule.Name, Apply: e.ruleFunc(rule)})
	}
	return out
}

func (e *ExpressionRules) ruleFunc(rule entities.ExpressionRule) validation.RuleFunc {
	return func(u *entities.Unit) ([]validation.Issue, error) {
		env, err := ruleEnv(u)
		if err != nil {
			return nil, err
		}

		if rule.When != "" {
			applies, err := e.eval(rule.When, env)
			if err != nil {
				return nil, fmt.Errorf("when: %w", err)
			}
			if !applies {
				return nil, nil
			}
		}

		ok, err := e.eval(rule.Expect, env)
		if err != nil {
			return nil, fmt.Errorf("expect: %w", err)
		}
		if ok {
			return nil, nil
		}

		msg := rule.Message
		if msg == "" {
			msg = fmt.Sprintf("Expression evaluated to false: %s", rule.Expect)
		}
		issue := validation.NewIssue(rule.Severity, rule.Code, "%s", msg).At(rule.Field).Suggest(rule.Suggestion)
		return []validation.Issue{issue}, nil
	}
}

func (e *ExpressionRules) eval(src string, env map[string]interface{}) (bool, error) {
	program, err := e.getOrCompileExpression(src)
	if err != nil {
		return false, err
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return boolean: %v", output)
	}
	return result, nil
}

// getOrCompileExpression retrieves a cached program or compiles and caches a new one.
// Thread-safe via RWMutex: multiple readers or single writer.
func (e *ExpressionRules) getOrCompileExpression(src string) (*vm.Program, error) {
	if len(src) > maxExpressionLength {
		return nil, fmt.Errorf("expression too long (max %d chars): %d chars", maxExpressionLength, len(src))
	}

	e.cacheMu.RLock()
	program, found := e.programCache[src]
	e.cacheMu.RUnlock()
	if found {
		return program, nil
	}

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have compiled it)
	if program, found := e.programCache[src]; found {
		return program, nil
	}

	program, err := expr.Compile(src, expressionOptions()...)
	if err != nil {
		return nil, fmt.Errorf("compilation failed: %w", err)
	}
	e.programCache[src] = program
	return program, nil
}

func expressionOptions() []expr.Option {
	return []expr.Option{
		expr.Env(envTemplate()),
		expr.AsBool(),
		expr.MaxNodes(maxASTNodes),

		expr.Function("rarityRank", func(params ...interface{}) (interface{}, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("rarityRank expects 1 argument")
			}
			s, ok := params[0].(string)
			if !ok {
				return 0, nil
			}
			return values.Rarity(s).Rank(), nil
		}),
	}
}

// envTemplate declares the variables available to expressions. Parts are
// generic documents so field access is checked at run time, not compile time.
func envTemplate() map[string]interface{} {
	return map[string]interface{}{
		"id":          "",
		"name":        "",
		"archetype":   "",
		"owner":       "",
		"combat_role": "",
		"frame":       map[string]interface{}{},
		"core":        map[string]interface{}{},
		"components":  []interface{}{},
		"modifiers":   []interface{}{},
		"state":       map[string]interface{}{},
		"low_health":  false,
	}
}

// optionalParts are rendered as nil when absent, so reading a field of a
// missing part fails the rule. Use `(frame?.capacity ?? 0)` to tolerate absence.
var optionalParts = map[string]bool{"frame": true, "core": true, "state": true}

// ruleEnv renders a unit in its document form for expression evaluation.
func ruleEnv(u *entities.Unit) (map[string]interface{}, error) {
	env := envTemplate()
	if u == nil {
		for key := range optionalParts {
			env[key] = nil
		}
		return env, nil
	}

	env["id"] = u.ID
	env["name"] = u.Name
	env["archetype"] = string(u.Archetype)
	env["owner"] = u.Owner
	env["combat_role"] = u.CombatRole
	env["low_health"] = u.State.IsLowHealth()

	parts := map[string]interface{}{
		"frame":      u.Frame,
		"core":       u.Core,
		"components": u.Components,
		"modifiers":  u.Modifiers,
		"state":      u.State,
	}
	for key, v := range parts {
		doc, err := toDocument(v)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", key, err)
		}
		switch {
		case doc != nil:
			env[key] = doc
		case optionalParts[key]:
			env[key] = nil
		}
	}
	return env, nil
}

// toDocument converts a value to generic maps/slices through its JSON form.
func toDocument(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
