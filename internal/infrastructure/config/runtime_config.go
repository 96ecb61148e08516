package config

import (
	"time"

	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/infrastructure/engine"
	"github.com/armature-dev/armature/internal/infrastructure/system"
)

// RuntimeConfig aggregates all runtime configuration.
// This is a value object that flows through the system.
type RuntimeConfig struct {
	// Rulebooks
	RulebookPaths []string

	// Checks
	Strict            bool
	SkipPerformance   bool
	SkipCompatibility bool

	// Concurrency
	Sequential    bool
	MaxConcurrent int
	Timeout       time.Duration
}

// FromSystemConfig creates RuntimeConfig from system config.
func FromSystemConfig(sys *system.Config) *RuntimeConfig {
	return &RuntimeConfig{
		RulebookPaths:     append([]string(nil), sys.Rulebooks...),
		Strict:            sys.Checks.Strict,
		SkipPerformance:   sys.Checks.SkipPerformance,
		SkipCompatibility: sys.Checks.SkipCompatibility,
		Sequential:        sys.Execution.Sequential,
		MaxConcurrent:     sys.Execution.MaxConcurrent,
		Timeout:           sys.Execution.Timeout,
	}
}

// ApplyDefaults applies defaults for zero values.
func (r *RuntimeConfig) ApplyDefaults() {
	if r.MaxConcurrent <= 0 {
		r.MaxConcurrent = engine.DefaultPipelineConfig().MaxConcurrent
	}
	// Timeout defaults to 0 (no limit), which is fine.
}

// PipelineConfig returns the batch execution settings.
func (r *RuntimeConfig) PipelineConfig() engine.PipelineConfig {
	return engine.PipelineConfig{
		Parallel:      !r.Sequential,
		MaxConcurrent: r.MaxConcurrent,
	}
}

// ValidationContext returns the per-call validation options.
func (r *RuntimeConfig) ValidationContext() validation.Context {
	return validation.Context{
		Strict:             r.Strict,
		CheckPerformance:   !r.SkipPerformance,
		CheckCompatibility: !r.SkipCompatibility,
	}
}
