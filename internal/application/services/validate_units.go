package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/armature-dev/armature/internal/application/dto"
	apperrors "github.com/armature-dev/armature/internal/application/errors"
	"github.com/armature-dev/armature/internal/application/ports"
	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/services"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/domain/values"
)

// ValidateUnitsUseCase orchestrates the complete unit validation workflow.
// This is a pure application layer component that depends only on ports.
type ValidateUnitsUseCase struct {
	unitLoader     ports.UnitLoader
	rulebookLoader ports.RulebookLoader
	engineFactory  ports.EngineFactory
	engineVersion  string
	logger         *slog.Logger
}

// NewValidateUnitsUseCase creates a new validate units use case.
func NewValidateUnitsUseCase(
	unitLoader ports.UnitLoader,
	rulebookLoader ports.RulebookLoader,
	engineFactory ports.EngineFactory,
	engineVersion string,
	logger *slog.Logger,
) *ValidateUnitsUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &ValidateUnitsUseCase{
		unitLoader:     unitLoader,
		rulebookLoader: rulebookLoader,
		engineFactory:  engineFactory,
		engineVersion:  engineVersion,
		logger:         logger,
	}
}

// Execute runs the complete validation workflow.
func (uc *ValidateUnitsUseCase) Execute(ctx context.Context, req dto.ValidateUnitsRequest) (*dto.ValidateUnitsResponse, error) {
	startTime := time.Now()

	if len(req.UnitPaths) == 0 {
		return nil, apperrors.NewValidationError("units", "at least one unit file is required")
	}

	// 1. Rulebook
	rulebook, err := uc.rulebookLoader.LoadRulebook(req.RulebookPaths...)
	if err != nil {
		return nil, apperrors.NewConfigurationError("rulebook", "failed to load rulebook", err)
	}
	uc.logger.Info("rulebook compiled",
		"version", rulebook.Version,
		"overlays", len(req.RulebookPaths),
		"rules", len(rulebook.Rules),
		"capacity_policy", string(rulebook.CapacityPolicy),
	)

	// 2. Filters
	filter, err := uc.buildFilter(req.Filters)
	if err != nil {
		return nil, err
	}

	// 3. Units
	loaded, err := loadUnitFiles(uc.unitLoader, req.UnitPaths, uc.logger)
	if err != nil {
		return nil, err
	}

	units, sources, skipped := selectUnits(loaded, filter)
	for _, s := range skipped {
		uc.logger.Debug("unit skipped", "unit", s.UnitID, "source", s.Source, "reason", s.Reason)
	}

	// 4. Engine
	eng, err := uc.engineFactory.CreateEngine(rulebook, req.Execution)
	if err != nil {
		return nil, apperrors.NewConfigurationError("engine", "failed to create validation engine", err)
	}

	// 5. Validate
	vctx := validation.DefaultContext()
	vctx.Strict = req.Options.Strict
	vctx.CheckPerformance = !req.Options.SkipPerformance
	vctx.CheckCompatibility = !req.Options.SkipCompatibility

	batch, err := eng.ValidateBatchAggregate(ctx, units, vctx)
	if err != nil {
		return nil, apperrors.NewExecutionError(len(units), "batch interrupted", err)
	}

	uc.logger.Info("validation complete",
		"report_id", batch.ReportID.String(),
		"units", batch.Total,
		"valid", batch.ValidCount,
		"invalid", batch.InvalidCount,
		"skipped", len(skipped),
		"average_score", batch.AverageScore,
		"duration", batch.Duration,
	)

	return &dto.ValidateUnitsResponse{
		Report: &dto.ValidationReport{
			Batch:           batch,
			Sources:         sources,
			Skipped:         skipped,
			RulebookVersion: rulebook.Version,
			EngineVersion:   uc.engineVersion,
		},
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			ProcessedAt: time.Now(),
			Duration:    time.Since(startTime),
		},
	}, nil
}

func (uc *ValidateUnitsUseCase) buildFilter(opts dto.FilterOptions) (*services.UnitFilter, error) {
	for _, a := range opts.Archetypes {
		if !values.Archetype(a).IsValid() {
			return nil, apperrors.NewValidationError("filter", fmt.Sprintf("unknown archetype %q", a))
		}
	}

	filter := services.NewUnitFilter().
		WithExclusiveUnits(opts.IncludeUnitIDs).
		WithExcludedUnits(opts.ExcludeUnitIDs).
		WithIncludedArchetypes(opts.Archetypes)

	if opts.FilterExpression != "" {
		program, err := services.CompileUnitFilter(opts.FilterExpression)
		if err != nil {
			return nil, apperrors.NewValidationError("filter", "invalid filter expression", err.Error())
		}
		filter = filter.WithFilterExpression(program)
	}
	return filter, nil
}

func selectUnits(loaded *loadedUnits, filter *services.UnitFilter) ([]*entities.Unit, []string, []dto.SkippedUnit) {
	units := make([]*entities.Unit, 0, len(loaded.units))
	sources := make([]string, 0, len(loaded.units))
	var skipped []dto.SkippedUnit

	for i, u := range loaded.units {
		if ok, reason := filter.ShouldValidate(u); !ok {
			skipped = append(skipped, dto.SkippedUnit{
				UnitID: unitID(u),
				Source: loaded.sources[i],
				Reason: reason,
			})
			continue
		}
		units = append(units, u)
		sources = append(sources, loaded.sources[i])
	}
	return units, sources, skipped
}
