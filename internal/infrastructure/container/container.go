// Package container provides dependency injection for the application.
package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/armature-dev/armature/internal/application/ports"
	"github.com/armature-dev/armature/internal/application/services"
	"github.com/armature-dev/armature/internal/infrastructure/adapters"
	infraconfig "github.com/armature-dev/armature/internal/infrastructure/config"
	"github.com/armature-dev/armature/internal/infrastructure/output"
	"github.com/armature-dev/armature/internal/infrastructure/system"
	"github.com/armature-dev/armature/internal/version"
)

// Container holds all application dependencies.
type Container struct {
	unitLoader           ports.UnitLoader
	rulebookLoader       ports.RulebookLoader
	systemConfig         ports.SystemConfigProvider
	engineFactory        ports.EngineFactory
	formatterFactory     ports.OutputFormatterFactory
	validateUnitsUseCase *services.ValidateUnitsUseCase
	inspectUnitsUseCase  *services.InspectUnitsUseCase
	systemCfg            *system.Config
	logger               *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger           *slog.Logger
	SystemConfigPath string
	// Environment replaces the process environment for ARMATURE_* overrides.
	Environment map[string]string
	// EngineVersion overrides the build version checked against requires_engine.
	EngineVersion string
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	engineVersion := opts.EngineVersion
	if engineVersion == "" {
		engineVersion = version.Get().Version
	}

	configLoader := system.NewConfigLoader()
	if opts.Environment != nil {
		configLoader = configLoader.WithEnvironment(opts.Environment)
	}
	systemConfigAdapter := adapters.NewSystemConfigAdapterWithLoader(configLoader)

	systemCfg, err := systemConfigAdapter.LoadConfig(context.TODO(), opts.SystemConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}

	unitLoader, err := infraconfig.NewUnitLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize unit loader: %w", err)
	}
	rulebookLoader := infraconfig.NewRulebookLoader(engineVersion)
	engineFactory := adapters.NewEngineFactoryAdapter(opts.Logger)

	validateUnitsUseCase := services.NewValidateUnitsUseCase(
		unitLoader,
		rulebookLoader,
		engineFactory,
		engineVersion,
		opts.Logger,
	)
	inspectUnitsUseCase := services.NewInspectUnitsUseCase(
		unitLoader,
		rulebookLoader,
		opts.Logger,
	)

	return &Container{
		unitLoader:           unitLoader,
		rulebookLoader:       rulebookLoader,
		systemConfig:         systemConfigAdapter,
		engineFactory:        engineFactory,
		formatterFactory:     output.NewFormatterFactory(),
		validateUnitsUseCase: validateUnitsUseCase,
		inspectUnitsUseCase:  inspectUnitsUseCase,
		systemCfg:            systemCfg,
		logger:               opts.Logger,
	}, nil
}

// ValidateUnitsUseCase returns the validate units use case.
func (c *Container) ValidateUnitsUseCase() *services.ValidateUnitsUseCase {
	return c.validateUnitsUseCase
}

// InspectUnitsUseCase returns the compatibility and effects use case.
func (c *Container) InspectUnitsUseCase() *services.InspectUnitsUseCase {
	return c.inspectUnitsUseCase
}

// UnitLoader returns the unit loader port.
func (c *Container) UnitLoader() ports.UnitLoader {
	return c.unitLoader
}

// RulebookLoader returns the rulebook loader port.
func (c *Container) RulebookLoader() ports.RulebookLoader {
	return c.rulebookLoader
}

// FormatterFactory returns the output formatter factory.
func (c *Container) FormatterFactory() ports.OutputFormatterFactory {
	return c.formatterFactory
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
