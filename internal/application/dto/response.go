package dto

import (
	"time"

	"github.com/armature-dev/armature/internal/domain/services"
	"github.com/armature-dev/armature/internal/domain/validation"
)

// ValidationReport is what output formatters render.
type ValidationReport struct {
	// Batch holds per-unit results and aggregate statistics.
	Batch *validation.BatchReport `json:"batch" yaml:"batch"`

	// Sources is the file each result came from, aligned with Batch.Results.
	Sources []string `json:"sources" yaml:"sources"`

	// Skipped lists units removed by selection filters.
	Skipped []SkippedUnit `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	RulebookVersion string `json:"rulebook_version" yaml:"rulebook_version"`
	EngineVersion   string `json:"engine_version" yaml:"engine_version"`
}

// SourceOf returns the file the i-th result came from.
func (r *ValidationReport) SourceOf(i int) string {
	if i < 0 || i >= len(r.Sources) {
		return ""
	}
	return r.Sources[i]
}

// SkippedUnit is a unit excluded before validation.
type SkippedUnit struct {
	UnitID string `json:"unit_id" yaml:"unit_id"`
	Source string `json:"source" yaml:"source"`
	Reason string `json:"reason" yaml:"reason"`
}

// ValidateUnitsResponse contains the result of validating unit files.
type ValidateUnitsResponse struct {
	Report   *ValidationReport
	Metadata ResponseMetadata
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// UnitCompatibility is the pairwise modifier analysis of one unit.
type UnitCompatibility struct {
	UnitID    string                       `json:"unit_id" yaml:"unit_id"`
	Source    string                       `json:"source" yaml:"source"`
	Modifiers []string                     `json:"modifiers" yaml:"modifiers"`
	Report    services.CompatibilityReport `json:"report" yaml:"report"`
}

// CompatibilityResponse contains the analysis for every loaded unit.
type CompatibilityResponse struct {
	Units []UnitCompatibility `json:"units" yaml:"units"`
}

// UnitEffects is the derived advanced effects of one unit.
type UnitEffects struct {
	UnitID     string                    `json:"unit_id" yaml:"unit_id"`
	Source     string                    `json:"source" yaml:"source"`
	Conditions services.Conditions       `json:"conditions" yaml:"conditions"`
	Effects    []services.AdvancedEffect `json:"effects" yaml:"effects"`
}

// EffectsResponse contains derived effects for every loaded unit.
type EffectsResponse struct {
	Units []UnitEffects `json:"units" yaml:"units"`
}
