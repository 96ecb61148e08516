package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	p, err := NewPipeline(entities.DefaultRulebook(), opts...)
	require.NoError(t, err)
	return p
}

func combatUnit(id string) *entities.Unit {
	return &entities.Unit{
		ID:         id,
		Name:       "Ironclad",
		Archetype:  values.ArchetypeCombat,
		Owner:      "player-1",
		CombatRole: "vanguard",
		Frame:      &entities.Frame{Capacity: 4, Rarity: values.RarityRare, Category: "standard"},
		Core:       &entities.Component{ID: "core-1", Category: values.CategoryTorso, Rarity: values.RarityRare},
		Components: []entities.Component{
			{ID: "c1", Category: values.CategoryHead, Rarity: values.RarityCommon},
			{ID: "c2", Category: values.CategoryTorso, Rarity: values.RarityUncommon},
			{ID: "c3", Category: values.CategoryLimb, Rarity: values.RarityCommon},
		},
		Modifiers: []entities.Modifier{
			{ID: "m1", Family: values.FamilyPower, Rarity: values.RarityRare, Level: 2, Magnitude: 10},
		},
		State: &entities.RuntimeState{Health: 80, MaxHealth: 100},
	}
}

func overloadedUnit(id string) *entities.Unit {
	u := combatUnit(id)
	u.Components = append(u.Components,
		entities.Component{ID: "c4", Category: values.CategoryLimb, Rarity: values.RarityCommon},
		entities.Component{ID: "c5", Category: values.CategoryLimb, Rarity: values.RarityCommon},
		entities.Component{ID: "c6", Category: values.CategoryLimb, Rarity: values.RarityCommon},
	)
	return u
}

func namelessUnit(id string) *entities.Unit {
	u := combatUnit(id)
	u.Name = ""
	return u
}

func TestNewPipeline_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline(nil)
	require.Error(t, err)

	rb := entities.DefaultRulebook()
	rb.Version = ""
	_, err = NewPipeline(rb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rulebook")

	rb = entities.DefaultRulebook()
	rb.Rules = []entities.ExpressionRule{{Name: "broken", Expect: "len(", Severity: values.SevInfo, Code: "X"}}
	_, err = NewPipeline(rb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile rulebook rules")
}

func TestPipeline_Rulebook(t *testing.T) {
	t.Parallel()

	rb := entities.DefaultRulebook()
	p, err := NewPipeline(rb, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Same(t, rb, p.Rulebook())
}

func TestPipeline_ValidUnit(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	result := p.Validate(combatUnit("u-1"), validation.DefaultContext())

	assert.Equal(t, "u-1", result.UnitID)
	assert.True(t, result.Valid)
	assert.Equal(t, 100, result.Score)
	assert.NotNil(t, result.Issues)
	assert.Empty(t, result.Issues)
}

func TestPipeline_Deterministic(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	for _, u := range []*entities.Unit{combatUnit("a"), overloadedUnit("b"), namelessUnit("c"), nil} {
		first := p.Validate(u, validation.DefaultContext())
		second := p.Validate(u, validation.DefaultContext())
		assert.Equal(t, first, second)
	}
}

func TestPipeline_CapacityExceeded(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	result := p.Validate(overloadedUnit("u-1"), validation.DefaultContext())

	require.True(t, result.HasCode(values.CodeCapacityExceeded))
	issue := result.IssuesWithCode(values.CodeCapacityExceeded)[0]
	assert.Equal(t, values.SevError, issue.Severity)
	assert.Equal(t, "components", issue.Field)
	assert.Equal(t, validation.StageRequiredFields, issue.Stage)
	assert.Equal(t, "6 components assigned to a frame with capacity 4", issue.Message)
	assert.False(t, result.Valid)
}

func TestPipeline_LenientCapacity(t *testing.T) {
	t.Parallel()

	rb := entities.DefaultRulebook()
	rb.CapacityPolicy = entities.CapacityLenient
	p, err := NewPipeline(rb, WithLogger(quietLogger()))
	require.NoError(t, err)

	result := p.Validate(overloadedUnit("u-1"), validation.DefaultContext())

	require.True(t, result.HasCode(values.CodeCapacityExceeded))
	issue := result.IssuesWithCode(values.CodeCapacityExceeded)[0]
	assert.Equal(t, values.SevWarning, issue.Severity)
	assert.Equal(t, validation.StagePerformance, issue.Stage)
	assert.True(t, result.Valid)
}

func TestPipeline_EmptyName(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	result := p.Validate(namelessUnit("u-1"), validation.DefaultContext())

	assert.False(t, result.Valid)
	found := false
	for _, issue := range result.IssuesAtLeast(values.SevError) {
		if issue.Field == "name" && issue.Severity.Equals(values.SevError) {
			found = true
		}
	}
	assert.True(t, found, "expected an error on field name, got %v", result.Issues)
}

func TestPipeline_MalformedUnitStopsEarly(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	called := false
	vctx := validation.DefaultContext().WithRule("never", func(*entities.Unit) ([]validation.Issue, error) {
		called = true
		return nil, nil
	})

	result := p.Validate(nil, vctx)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, values.CodeMalformed, result.Issues[0].Code)
	assert.Equal(t, validation.StageBasicStructure, result.Issues[0].Stage)
	assert.False(t, result.Valid)
	assert.False(t, called, "custom rules must not run on a malformed unit")
}

func TestPipeline_OptionalStages(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	u := combatUnit("u-1")
	for i := 0; i < 12; i++ {
		u.Modifiers = append(u.Modifiers, entities.Modifier{
			ID: fmt.Sprintf("extra-%d", i), Family: values.FamilyHaste, Rarity: values.RarityCommon, Level: 1, Magnitude: 1,
		})
	}

	withChecks := p.Validate(u, validation.DefaultContext())
	assert.True(t, withChecks.HasCode(values.CodeTooManyModifiers))

	withoutChecks := p.Validate(u, validation.Context{})
	assert.False(t, withoutChecks.HasCode(values.CodeTooManyModifiers))
}

func TestPipeline_PanickingCustomRule(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	laterRan := false
	vctx := validation.DefaultContext().
		WithRule("explodes", func(*entities.Unit) ([]validation.Issue, error) {
			panic("boom")
		}).
		WithRule("later", func(*entities.Unit) ([]validation.Issue, error) {
			laterRan = true
			return nil, nil
		})

	result := p.Validate(combatUnit("u-1"), vctx)

	require.Len(t, result.Issues, 1)
	issue := result.Issues[0]
	assert.Equal(t, values.SevCritical, issue.Severity)
	assert.Equal(t, values.CodeRuleExecutionFailed, issue.Code)
	assert.Equal(t, validation.StageCustom, issue.Stage)
	assert.Contains(t, issue.Message, "boom")
	assert.False(t, result.Valid)
	assert.False(t, laterRan)
}

func TestPipeline_CustomRuleError(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	vctx := validation.DefaultContext().WithRule("fails", func(*entities.Unit) ([]validation.Issue, error) {
		return nil, errors.New("lookup unavailable")
	})

	result := p.Validate(combatUnit("u-1"), vctx)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, values.CodeRuleExecutionFailed, result.Issues[0].Code)
	assert.Contains(t, result.Issues[0].Message, `custom rule "fails"`)
	assert.Contains(t, result.Issues[0].Message, "lookup unavailable")
}

func TestPipeline_CustomRulesRunBeforeRulebookRules(t *testing.T) {
	t.Parallel()

	rb := entities.DefaultRulebook()
	rb.Rules = []entities.ExpressionRule{{
		Name:     "needs-two-modifiers",
		Expect:   "len(modifiers) >= 2",
		Severity: values.SevWarning,
		Code:     "HOUSE_FEW_MODIFIERS",
		Field:    "modifiers",
	}}
	p, err := NewPipeline(rb, WithLogger(quietLogger()))
	require.NoError(t, err)

	vctx := validation.DefaultContext().WithRule("note", func(*entities.Unit) ([]validation.Issue, error) {
		return []validation.Issue{validation.Info("HOUSE_NOTE", "reviewed")}, nil
	})

	result := p.Validate(combatUnit("u-1"), vctx)

	require.Len(t, result.Issues, 2)
	assert.Equal(t, values.IssueCode("HOUSE_NOTE"), result.Issues[0].Code)
	assert.Equal(t, values.IssueCode("HOUSE_FEW_MODIFIERS"), result.Issues[1].Code)
	for _, issue := range result.Issues {
		assert.Equal(t, validation.StageCustom, issue.Stage)
	}
	assert.True(t, result.Valid)
	assert.Equal(t, 100-5-1, result.Score)
}

func TestPipeline_RulebookRulesReadUnitParts(t *testing.T) {
	t.Parallel()

	rb := entities.DefaultRulebook()
	rb.Rules = []entities.ExpressionRule{{
		Name:     "roomy frame",
		Expect:   "frame.capacity >= 4 && state.max_health > 0 && rarityRank(core.rarity) >= 2",
		Severity: values.SevWarning,
		Code:     "HOUSE_SMALL_FRAME",
		Field:    "frame.capacity",
	}}
	p, err := NewPipeline(rb, WithLogger(quietLogger()))
	require.NoError(t, err)

	t.Run("roomy frame passes", func(t *testing.T) {
		t.Parallel()
		result := p.Validate(combatUnit("u-1"), validation.DefaultContext())
		assert.Empty(t, result.Issues)
		assert.Equal(t, 100, result.Score)
	})

	t.Run("small frame is reported", func(t *testing.T) {
		t.Parallel()
		u := combatUnit("u-2")
		u.Frame.Capacity = 3

		result := p.Validate(u, validation.DefaultContext())

		require.Len(t, result.Issues, 1)
		assert.Equal(t, values.IssueCode("HOUSE_SMALL_FRAME"), result.Issues[0].Code)
		assert.Equal(t, "frame.capacity", result.Issues[0].Field)
		assert.True(t, result.Valid)
	})

	t.Run("missing frame fails the rule", func(t *testing.T) {
		t.Parallel()
		u := combatUnit("u-3")
		u.Frame = nil

		result := p.Validate(u, validation.DefaultContext())

		require.NotEmpty(t, result.Issues)
		last := result.Issues[len(result.Issues)-1]
		assert.Equal(t, values.CodeRuleExecutionFailed, last.Code)
		assert.Equal(t, validation.StageCustom, last.Stage)
		assert.Contains(t, last.Message, "roomy frame")
		assert.False(t, result.Valid)
	})
}

type panickyRuleSet struct{}

func (panickyRuleSet) BasicStructure(*entities.Unit) []validation.Issue { return nil }
func (panickyRuleSet) RequiredFields(*entities.Unit) []validation.Issue { return nil }
func (panickyRuleSet) BusinessRules(*entities.Unit) []validation.Issue {
	var m map[string]int
	m["x"] = 1
	return nil
}

func TestPipeline_WithRuleSet_ContainsBuiltinPanics(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, WithRuleSet(panickyRuleSet{}))

	result := p.Validate(combatUnit("u-1"), validation.DefaultContext())

	require.Len(t, result.Issues, 1)
	assert.Equal(t, values.CodeRuleExecutionFailed, result.Issues[0].Code)
	assert.Equal(t, validation.StageBusinessRules, result.Issues[0].Stage)
	assert.Equal(t, 60, result.Score)
}

func TestPipeline_ValidateBatch_PreservesOrder(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	units := []*entities.Unit{combatUnit("a"), namelessUnit("b"), nil, overloadedUnit("d")}
	results, err := p.ValidateBatch(context.Background(), units, validation.DefaultContext())

	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "a", results[0].UnitID)
	assert.Equal(t, "b", results[1].UnitID)
	assert.Equal(t, "", results[2].UnitID)
	assert.Equal(t, "d", results[3].UnitID)
}

func TestPipeline_ParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	var units []*entities.Unit
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("u-%02d", i)
		switch i % 4 {
		case 0:
			units = append(units, combatUnit(id))
		case 1:
			units = append(units, namelessUnit(id))
		case 2:
			units = append(units, overloadedUnit(id))
		default:
			units = append(units, nil)
		}
	}

	parallel := newPipeline(t, WithConfig(PipelineConfig{Parallel: true, MaxConcurrent: 3}))
	sequential := newPipeline(t, WithConfig(PipelineConfig{Parallel: false}))

	got, err := parallel.ValidateBatch(context.Background(), units, validation.DefaultContext())
	require.NoError(t, err)
	want, err := sequential.ValidateBatch(context.Background(), units, validation.DefaultContext())
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestPipeline_ValidateBatch_Cancelled(t *testing.T) {
	t.Parallel()

	for _, parallel := range []bool{true, false} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			t.Parallel()
			p := newPipeline(t, WithConfig(PipelineConfig{Parallel: parallel}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := p.ValidateBatch(ctx, []*entities.Unit{combatUnit("a"), combatUnit("b")}, validation.DefaultContext())
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestPipeline_ValidateBatch_Empty(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	results, err := p.ValidateBatch(context.Background(), nil, validation.DefaultContext())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPipeline_ValidateBatchAggregate(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	units := []*entities.Unit{combatUnit("a"), namelessUnit("b"), overloadedUnit("c"), overloadedUnit("d")}
	report, err := p.ValidateBatchAggregate(context.Background(), units, validation.DefaultContext())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.ValidCount)
	assert.Equal(t, 3, report.InvalidCount)
	assert.False(t, report.StartTime.IsZero())
	assert.GreaterOrEqual(t, report.Duration.Nanoseconds(), int64(0))

	sum := 0
	for _, r := range report.Results {
		sum += r.Score
	}
	assert.InDelta(t, float64(sum)/4, report.AverageScore, 1e-9)

	require.NotEmpty(t, report.CommonIssues)
	assert.LessOrEqual(t, len(report.CommonIssues), validation.MaxCommonIssues)
	assert.Equal(t, values.CodeCapacityExceeded, report.CommonIssues[0].Code)
	assert.Equal(t, 2, report.CommonIssues[0].Count)
	for i := 1; i < len(report.CommonIssues); i++ {
		assert.GreaterOrEqual(t, report.CommonIssues[i-1].Count, report.CommonIssues[i].Count)
	}
}

func TestPipeline_ValidateBatchAggregate_Empty(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	report, err := p.ValidateBatchAggregate(context.Background(), []*entities.Unit{}, validation.DefaultContext())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Zero(t, report.AverageScore)
	assert.Empty(t, report.CommonIssues)
}

func TestDefaultPipelineConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultPipelineConfig()
	assert.True(t, cfg.Parallel)
	assert.GreaterOrEqual(t, cfg.MaxConcurrent, MinConcurrentUnits)
}
