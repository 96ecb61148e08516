package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/values"
)

func exprRule(name, when, expect string) entities.ExpressionRule {
	return entities.ExpressionRule{
		Name:     name,
		When:     when,
		Expect:   expect,
		Severity: values.SevWarning,
		Code:     "CUSTOM_CHECK",
		Message:  name + " failed",
		Field:    "frame",
	}
}

func applyOnly(t *testing.T, rules *ExpressionRules, u *entities.Unit) ([]string, error) {
	t.Helper()
	require.Equal(t, 1, rules.Len())
	issues, err := rules.Rules()[0].Apply(u)
	msgs := make([]string, len(issues))
	for i, issue := range issues {
		msgs[i] = issue.Message
	}
	return msgs, err
}

func TestExpressionRules_Evaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rule    entities.ExpressionRule
		mutate  func(u *entities.Unit)
		wantHit bool
	}{
		{
			name: "passing expectation",
			rule: exprRule("capacity", "", "frame.capacity >= len(components)"),
		},
		{
			name:    "failing expectation",
			rule:    exprRule("capacity", "", "frame.capacity >= 5"),
			wantHit: true,
		},
		{
			name: "guard skips rule",
			rule: exprRule("leaders only", `archetype == "leader"`, "false"),
		},
		{
			name:    "guard applies rule",
			rule:    exprRule("combat only", `archetype == "combat"`, `combat_role == "tank"`),
			wantHit: true,
		},
		{
			name: "rarity helper",
			rule: exprRule("rare frame", "", `rarityRank(frame.rarity) >= 3`),
		},
		{
			name:    "collection predicate",
			rule:    exprRule("all heads", "", `all(components, .category == "head")`),
			wantHit: true,
		},
		{
			name:    "low health flag",
			rule:    exprRule("healthy", "", "!low_health"),
			mutate:  func(u *entities.Unit) { u.State.Health = 10 },
			wantHit: true,
		},
		{
			name:   "nil-safe access tolerates a missing frame",
			rule:   exprRule("optional frame", "", "(frame?.capacity ?? 0) == 0"),
			mutate: func(u *entities.Unit) { u.Frame = nil },
		},
		{
			name:    "state fields are readable",
			rule:    exprRule("full health", "", "state.health == state.max_health"),
			mutate:  func(u *entities.Unit) { u.State.Health = 50 },
			wantHit: true,
		},
		{
			name:   "empty components are an empty list",
			rule:   exprRule("no parts", "", "len(components) == 0"),
			mutate: func(u *entities.Unit) { u.Components = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rules, err := NewExpressionRules([]entities.ExpressionRule{tt.rule})
			require.NoError(t, err)

			u := validUnit(values.ArchetypeCombat)
			if tt.mutate != nil {
				tt.mutate(u)
			}

			msgs, err := applyOnly(t, rules, u)
			require.NoError(t, err)
			if tt.wantHit {
				assert.Equal(t, []string{tt.rule.Name + " failed"}, msgs)
			} else {
				assert.Empty(t, msgs)
			}
		})
	}
}

func TestExpressionRules_IssueFields(t *testing.T) {
	t.Parallel()

	rule := entities.ExpressionRule{
		Name:       "no-owner",
		Expect:     `owner == ""`,
		Severity:   values.SevError,
		Code:       "HOUSE_NO_OWNER",
		Field:      "owner",
		Suggestion: "drop the owner",
	}
	rules, err := NewExpressionRules([]entities.ExpressionRule{rule})
	require.NoError(t, err)

	issues, err := rules.Rules()[0].Apply(validUnit(values.ArchetypeSupport))
	require.NoError(t, err)
	require.Len(t, issues, 1)

	assert.Equal(t, values.IssueCode("HOUSE_NO_OWNER"), issues[0].Code)
	assert.True(t, issues[0].Severity.Equals(values.SevError))
	assert.Equal(t, "owner", issues[0].Field)
	assert.Equal(t, "drop the owner", issues[0].Suggestion)
	assert.Equal(t, `Expression evaluated to false: owner == ""`, issues[0].Message)
}

func TestNewExpressionRules_RejectsBadRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rule    entities.ExpressionRule
		wantErr string
	}{
		{"syntax error", exprRule("broken", "", "frame.capacity >>= 2"), "compilation failed"},
		{"non boolean", exprRule("number", "", "1 + 2"), "compilation failed"},
		{"too long", exprRule("long", "", strings.Repeat("true && ", 130)+"true"), "expression too long"},
		{"bad guard", exprRule("guard", "((", "true"), "compilation failed"},
		{"missing expect", entities.ExpressionRule{Name: "x", Code: "X", Severity: values.SevInfo}, "expect expression cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewExpressionRules([]entities.ExpressionRule{tt.rule})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpressionRules_RuntimeErrorIsReturned(t *testing.T) {
	t.Parallel()

	rules, err := NewExpressionRules([]entities.ExpressionRule{exprRule("frame", "", "frame.capacity > 1")})
	require.NoError(t, err)

	u := validUnit(values.ArchetypeCombat)
	u.Frame = nil

	_, err = applyOnly(t, rules, u)
	assert.Error(t, err)
}

func TestExpressionRules_CacheIsShared(t *testing.T) {
	t.Parallel()

	rules, err := NewExpressionRules([]entities.ExpressionRule{
		exprRule("a", "", "len(modifiers) < 5"),
		exprRule("b", "", "len(modifiers) < 5"),
	})
	require.NoError(t, err)

	rules.cacheMu.RLock()
	size := len(rules.programCache)
	rules.cacheMu.RUnlock()
	assert.Equal(t, 1, size, "identical expressions compile once")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, r := range rules.Rules() {
				_, _ = r.Apply(validUnit(values.ArchetypeCombat))
			}
		}()
	}
	wg.Wait()
}
