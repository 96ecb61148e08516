package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/services"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

// Pipeline validates units against a rulebook.
//
// Stage order: basic structure, required fields, business rules, performance
// (optional), compatibility (optional), custom rules. A CRITICAL basic
// structure issue stops the run. A panic or error in any stage is recorded as
// one CRITICAL RULE_EXECUTION_FAILED issue and also stops the run.
//
// A Pipeline holds only read-only state and is safe for concurrent use.
type Pipeline struct {
	rulebook    *entities.Rulebook
	rules       services.RuleSet
	expressions *services.ExpressionRules
	scorer      *services.ScoreAggregator
	logger      *slog.Logger
	config      PipelineConfig
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithConfig sets the batch execution config.
func WithConfig(cfg PipelineConfig) Option {
	return func(p *Pipeline) {
		p.config = cfg
	}
}

// WithRuleSet replaces the built-in unit rule set.
func WithRuleSet(rules services.RuleSet) Option {
	return func(p *Pipeline) {
		p.rules = rules
	}
}

// NewPipeline creates a pipeline. The rulebook is the pipeline's only rule
// and lookup state and must not be modified afterwards.
func NewPipeline(rulebook *entities.Rulebook, opts ...Option) (*Pipeline, error) {
	if rulebook == nil {
		return nil, errors.New("rulebook cannot be nil")
	}
	if err := rulebook.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rulebook: %w", err)
	}

	p := &Pipeline{
		rulebook: rulebook,
		logger:   slog.Default(),
		config:   DefaultPipelineConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.rules == nil {
		rules, err := services.NewUnitRuleSet(rulebook)
		if err != nil {
			return nil, fmt.Errorf("failed to build rule set: %w", err)
		}
		p.rules = rules
	}

	expressions, err := services.NewExpressionRules(rulebook.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rulebook rules: %w", err)
	}
	p.expressions = expressions
	p.scorer = services.NewScoreAggregator(rulebook.Weights)

	return p, nil
}

// Rulebook returns the pipeline's rulebook.
func (p *Pipeline) Rulebook() *entities.Rulebook {
	return p.rulebook
}

// Validate runs every stage against one unit. It never panics and never
// returns an error: rule failures become issues.
func (p *Pipeline) Validate(unit *entities.Unit, vctx validation.Context) validation.Result {
	unitID := ""
	if unit != nil {
		unitID = unit.ID
	}

	run := &stageRun{pipeline: p, unit: unit}
	run.execute(vctx)

	result := p.scorer.Aggregate(unitID, run.issues)
	p.logger.Debug("unit validated",
		"unit", unitID,
		"valid", result.Valid,
		"score", result.Score,
		"issues", len(result.Issues),
		"strict", vctx.Strict,
		"message", generateResultMessage(result),
	)
	return result
}

// ValidateBatch validates each unit independently and returns results in
// input order. The only error is cancellation of ctx.
func (p *Pipeline) ValidateBatch(ctx context.Context, units []*entities.Unit, vctx validation.Context) ([]validation.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapContextErr(err)
	}

	results := make([]validation.Result, len(units))

	if p.config.Parallel && len(units) > 1 {
		if err := p.validateWithWorkerPool(ctx, units, vctx, results); err != nil {
			return nil, wrapContextErr(err)
		}
		return results, nil
	}

	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, wrapContextErr(err)
		}
		results[i] = p.Validate(unit, vctx)
	}
	return results, nil
}

// ValidateBatchAggregate validates a batch and adds frequency statistics.
func (p *Pipeline) ValidateBatchAggregate(ctx context.Context, units []*entities.Unit, vctx validation.Context) (*validation.BatchReport, error) {
	start := time.Now()

	results, err := p.ValidateBatch(ctx, units, vctx)
	if err != nil {
		return nil, err
	}

	report := validation.NewBatchReport(results)
	report.StartTime = start
	report.Duration = time.Since(start)

	p.logger.Debug("batch validated",
		"report_id", report.ReportID.String(),
		"units", report.Total,
		"valid", report.ValidCount,
		"invalid", report.InvalidCount,
		"average_score", report.AverageScore,
	)
	return report, nil
}

func wrapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("validation timed out: %w", err)
	}
	return err
}

// stageRun accumulates issues for one Validate call.
type stageRun struct {
	pipeline *Pipeline
	unit     *entities.Unit
	issues   []validation.Issue
}

func (r *stageRun) execute(vctx validation.Context) {
	rules := r.pipeline.rules

	basic, ok := r.stage(validation.StageBasicStructure, "basic structure", wrap(rules.BasicStructure, r.unit))
	if !ok || hasCritical(basic) {
		r.pipeline.logger.Debug("unit is malformed, skipping remaining stages")
		return
	}

	if _, ok := r.stage(validation.StageRequiredFields, "required fields", wrap(rules.RequiredFields, r.unit)); !ok {
		return
	}
	if _, ok := r.stage(validation.StageBusinessRules, "business rules", wrap(rules.BusinessRules, r.unit)); !ok {
		return
	}

	if vctx.CheckPerformance {
		if checker, implemented := rules.(services.PerformanceChecker); implemented {
			if _, ok := r.stage(validation.StagePerformance, "performance", wrap(checker.Performance, r.unit)); !ok {
				return
			}
		}
	}

	if vctx.CheckCompatibility {
		if checker, implemented := rules.(services.CompatibilityChecker); implemented {
			if _, ok := r.stage(validation.StageCompatibility, "compatibility", wrap(checker.Compatibility, r.unit)); !ok {
				return
			}
		}
	}

	custom := make([]validation.CustomRule, 0, len(vctx.CustomRules)+r.pipeline.expressions.Len())
	custom = append(custom, vctx.CustomRules...)
	custom = append(custom, r.pipeline.expressions.Rules()...)
	for _, rule := range custom {
		label := fmt.Sprintf("custom rule %q", rule.Name)
		if _, ok := r.stage(validation.StageCustom, label, customRuleFunc(rule, r.unit)); !ok {
			return
		}
	}
}

// stage runs fn, tags its issues and appends them. A panic or error is
// converted into a single CRITICAL issue and reported as !ok.
func (r *stageRun) stage(stage validation.Stage, label string, fn func() ([]validation.Issue, error)) ([]validation.Issue, bool) {
	found, err := contain(fn)
	for i := range found {
		if found[i].Stage == "" {
			found[i].Stage = stage
		}
	}
	r.issues = append(r.issues, found...)

	if err != nil {
		r.pipeline.logger.Warn("rule execution failed", "stage", string(stage), "rule", label, "error", err)
		r.issues = append(r.issues,
			validation.Critical(values.CodeRuleExecutionFailed, "%s failed: %v", label, err).InStage(stage),
		)
		return found, false
	}
	return found, true
}

// contain calls fn, recovering any panic as an error.
func contain(fn func() ([]validation.Issue, error)) (issues []validation.Issue, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			issues = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}

func wrap(check func(*entities.Unit) []validation.Issue, unit *entities.Unit) func() ([]validation.Issue, error) {
	return func() ([]validation.Issue, error) {
		return check(unit), nil
	}
}

func customRuleFunc(rule validation.CustomRule, unit *entities.Unit) func() ([]validation.Issue, error) {
	return func() ([]validation.Issue, error) {
		if rule.Apply == nil {
			return nil, errors.New("rule has no function")
		}
		return rule.Apply(unit)
	}
}

func hasCritical(issues []validation.Issue) bool {
	for _, issue := range issues {
		if issue.Severity.Equals(values.SevCritical) {
			return true
		}
	}
	return false
}
