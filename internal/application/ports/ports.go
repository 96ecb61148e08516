// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/validation"
	"github.com/armature-dev/armature/internal/infrastructure/system"
)

// UnitLoader loads unit snapshots from storage.
// Entries that are not well-formed records come back as nil units.
type UnitLoader interface {
	LoadUnits(path string) ([]*entities.Unit, error)
}

// RulebookLoader loads rulebook overlays and compiles them onto the defaults.
type RulebookLoader interface {
	LoadRulebook(paths ...string) (*entities.Rulebook, error)
}

// SystemConfigProvider loads system configuration.
type SystemConfigProvider interface {
	LoadConfig(ctx context.Context, path string) (*system.Config, error)
}

// ValidationEngine validates units against a fixed rulebook.
type ValidationEngine interface {
	Validate(unit *entities.Unit, vctx validation.Context) validation.Result
	ValidateBatch(ctx context.Context, units []*entities.Unit, vctx validation.Context) ([]validation.Result, error)
	ValidateBatchAggregate(ctx context.Context, units []*entities.Unit, vctx validation.Context) (*validation.BatchReport, error)
	Rulebook() *entities.Rulebook
}

// EngineFactory creates validation engines for a compiled rulebook.
type EngineFactory interface {
	CreateEngine(rulebook *entities.Rulebook, execution dto.ExecutionOptions) (ValidationEngine, error)
}

// OutputFormatter formats validation reports.
type OutputFormatter interface {
	Format(report *dto.ValidationReport) error
}

// FormatterOptions configures formatter creation.
type FormatterOptions struct {
	// Indent pretty-prints JSON output.
	Indent bool
	// Color enables ANSI colors in table output.
	Color bool
}

// OutputFormatterFactory creates formatters by name.
type OutputFormatterFactory interface {
	Create(format string, writer io.Writer, options FormatterOptions) (OutputFormatter, error)
	SupportedFormats() []string
}
