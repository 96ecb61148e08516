// Package adapters provides infrastructure adapters that implement application ports.
// These adapters wrap existing infrastructure components to satisfy port interfaces.
package adapters

import (
	"context"
	"log/slog"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/armature-dev/armature/internal/application/ports"
	"github.com/armature-dev/armature/internal/domain/entities"
	infraconfig "github.com/armature-dev/armature/internal/infrastructure/config"
	"github.com/armature-dev/armature/internal/infrastructure/engine"
	"github.com/armature-dev/armature/internal/infrastructure/system"
)

// Ensure adapters implement ports at compile time
var (
	_ ports.UnitLoader           = (*infraconfig.UnitLoader)(nil)
	_ ports.RulebookLoader       = (*infraconfig.RulebookLoader)(nil)
	_ ports.SystemConfigProvider = (*SystemConfigAdapter)(nil)
	_ ports.EngineFactory        = (*EngineFactoryAdapter)(nil)
	_ ports.ValidationEngine     = (*engine.Pipeline)(nil)
)

// SystemConfigAdapter adapts system config loader to port interface.
type SystemConfigAdapter struct {
	loader *system.ConfigLoader
}

// NewSystemConfigAdapter creates a new system config adapter.
func NewSystemConfigAdapter() *SystemConfigAdapter {
	return &SystemConfigAdapter{
		loader: system.NewConfigLoader(),
	}
}

// NewSystemConfigAdapterWithLoader wraps a preconfigured loader.
func NewSystemConfigAdapterWithLoader(loader *system.ConfigLoader) *SystemConfigAdapter {
	return &SystemConfigAdapter{loader: loader}
}

// LoadConfig loads system configuration from path. An empty path means
// ~/.armature/config.yaml.
func (a *SystemConfigAdapter) LoadConfig(_ context.Context, path string) (*system.Config, error) {
	if path == "" {
		defaultPath, err := system.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	return a.loader.Load(path)
}

// EngineFactoryAdapter creates validation pipelines.
type EngineFactoryAdapter struct {
	logger *slog.Logger
}

// NewEngineFactoryAdapter creates a new engine factory adapter.
func NewEngineFactoryAdapter(logger *slog.Logger) *EngineFactoryAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EngineFactoryAdapter{logger: logger}
}

// CreateEngine creates a pipeline for the compiled rulebook.
func (a *EngineFactoryAdapter) CreateEngine(
	rulebook *entities.Rulebook,
	execution dto.ExecutionOptions,
) (ports.ValidationEngine, error) {
	return engine.NewPipeline(
		rulebook,
		engine.WithLogger(a.logger),
		engine.WithConfig(a.buildPipelineConfig(execution)),
	)
}

// buildPipelineConfig constructs a PipelineConfig from execution options.
func (a *EngineFactoryAdapter) buildPipelineConfig(exec dto.ExecutionOptions) engine.PipelineConfig {
	cfg := engine.DefaultPipelineConfig()

	cfg.Parallel = exec.Parallel
	if exec.MaxConcurrent > 0 {
		cfg.MaxConcurrent = exec.MaxConcurrent
	}

	return cfg
}
