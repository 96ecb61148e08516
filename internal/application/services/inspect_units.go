package services

import (
	"fmt"
	"log/slog"

	"github.com/armature-dev/armature/internal/application/dto"
	apperrors "github.com/armature-dev/armature/internal/application/errors"
	"github.com/armature-dev/armature/internal/application/ports"
	"github.com/armature-dev/armature/internal/domain/services"
)

// InspectUnitsUseCase answers compatibility and effect queries about units
// without running the validation pipeline.
type InspectUnitsUseCase struct {
	unitLoader     ports.UnitLoader
	rulebookLoader ports.RulebookLoader
	logger         *slog.Logger
}

// NewInspectUnitsUseCase creates a new inspect units use case.
func NewInspectUnitsUseCase(
	unitLoader ports.UnitLoader,
	rulebookLoader ports.RulebookLoader,
	logger *slog.Logger,
) *InspectUnitsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &InspectUnitsUseCase{
		unitLoader:     unitLoader,
		rulebookLoader: rulebookLoader,
		logger:         logger,
	}
}

// Compatibility reports synergies and conflicts among each unit's modifiers.
func (uc *InspectUnitsUseCase) Compatibility(req dto.InspectUnitsRequest) (*dto.CompatibilityResponse, error) {
	engine, loaded, err := uc.prepare(req)
	if err != nil {
		return nil, err
	}

	resp := &dto.CompatibilityResponse{Units: []dto.UnitCompatibility{}}
	for i, u := range loaded.units {
		if u == nil {
			uc.logger.Warn("skipping malformed unit", "source", loaded.sources[i], "index", i)
			continue
		}

		labels := make([]string, len(u.Modifiers))
		for j, m := range u.Modifiers {
			labels[j] = m.Label()
		}
		resp.Units = append(resp.Units, dto.UnitCompatibility{
			UnitID:    u.ID,
			Source:    loaded.sources[i],
			Modifiers: labels,
			Report:    engine.Evaluate(u.Modifiers),
		})
	}
	return resp, nil
}

// Effects derives advanced effects for each unit's modifiers. Conditions from
// the request are added to those derived from each unit's runtime state.
func (uc *InspectUnitsUseCase) Effects(req dto.InspectUnitsRequest) (*dto.EffectsResponse, error) {
	for _, c := range req.Conditions {
		if !c.IsValid() {
			return nil, apperrors.NewValidationError("condition", fmt.Sprintf("unknown condition %q", c))
		}
	}

	engine, loaded, err := uc.prepare(req)
	if err != nil {
		return nil, err
	}

	resp := &dto.EffectsResponse{Units: []dto.UnitEffects{}}
	for i, u := range loaded.units {
		if u == nil {
			uc.logger.Warn("skipping malformed unit", "source", loaded.sources[i], "index", i)
			continue
		}

		cond := services.ConditionsFromState(u.State)
		for _, c := range req.Conditions {
			cond = cond.With(c)
		}
		resp.Units = append(resp.Units, dto.UnitEffects{
			UnitID:     u.ID,
			Source:     loaded.sources[i],
			Conditions: cond,
			Effects:    engine.DeriveAllWith(u, cond),
		})
	}
	return resp, nil
}

func (uc *InspectUnitsUseCase) prepare(req dto.InspectUnitsRequest) (*services.CompatibilityEngine, *loadedUnits, error) {
	if len(req.UnitPaths) == 0 {
		return nil, nil, apperrors.NewValidationError("units", "at least one unit file is required")
	}

	rulebook, err := uc.rulebookLoader.LoadRulebook(req.RulebookPaths...)
	if err != nil {
		return nil, nil, apperrors.NewConfigurationError("rulebook", "failed to load rulebook", err)
	}

	loaded, err := loadUnitFiles(uc.unitLoader, req.UnitPaths, uc.logger)
	if err != nil {
		return nil, nil, err
	}

	return services.NewCompatibilityEngine(rulebook), loaded, nil
}
