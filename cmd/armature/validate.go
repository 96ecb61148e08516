package main

import (
	"fmt"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/armature-dev/armature/internal/application/ports"
	infraconfig "github.com/armature-dev/armature/internal/infrastructure/config"
	"github.com/armature-dev/armature/internal/infrastructure/system"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// validateOptions holds the flags of the validate command.
type validateOptions struct {
	CommonOptions

	Rulebooks       []string
	Strict          bool
	NoPerformance   bool
	NoCompatibility bool

	// Selection
	Units        []string
	ExcludeUnits []string
	Archetypes   []string
	Filter       string
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{CommonOptions: DefaultCommonOptions()}

	cmd := &cobra.Command{
		Use:   "validate <units.yaml>...",
		Short: "Validate unit snapshots against the rulebook",
		Long: `Load unit documents and run every validation stage against each unit.

Rulebooks from the system config are overlaid onto the built-in rulebook
first, followed by each --rulebook file in order.

Selection:
  --unit u-1,u-2                  Validate only these unit IDs
  --exclude-unit u-3              Skip these unit IDs
  --archetype combat,leader       Validate only these archetypes
  --filter "level >= 5"           Advanced selection expression

The command exits non-zero when any validated unit is invalid.`,
		Example: `  armature validate roster.yaml
  armature validate roster.yaml --format sarif -o armature.sarif
  armature validate roster.yaml --rulebook season-3.yaml --no-performance`,
		Args: cobra.MinimumNArgs(1),
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			return runValidate(ctx, cmd, args, opts)
		}),
	}

	opts.RegisterOutputFlags(cmd, []string{"table", "json", "yaml", "junit", "sarif"})
	opts.RegisterExecutionFlags(cmd)

	cmd.Flags().StringSliceVar(&opts.Rulebooks, "rulebook", nil, "Rulebook overlay files, applied in order")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Record strict mode in the validation context")
	cmd.Flags().BoolVar(&opts.NoPerformance, "no-performance", false, "Skip the performance stage")
	cmd.Flags().BoolVar(&opts.NoCompatibility, "no-compatibility", false, "Skip the compatibility stage")

	cmd.Flags().StringSliceVar(&opts.Units, "unit", nil, "Validate only these unit IDs (comma-separated)")
	cmd.Flags().StringSliceVar(&opts.ExcludeUnits, "exclude-unit", nil, "Skip these unit IDs (comma-separated)")
	cmd.Flags().StringSliceVar(&opts.Archetypes, "archetype", nil, "Validate only these archetypes (comma-separated)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "Advanced selection expression (e.g. \"modifier_count > 3\")")

	return cmd
}

// runValidate implements the core logic for the validate command.
func runValidate(ctx *CommandContext, cmd *cobra.Command, args []string, opts *validateOptions) error {
	sys := ctx.Container.SystemConfig()
	runtime := opts.runtimeConfig(cmd, sys)

	if !cmd.Flags().Changed("format") && sys.Output.Format != "" {
		opts.Format = sys.Output.Format
	}
	formats := ctx.Container.FormatterFactory().SupportedFormats()
	if err := opts.ValidateFlags(formats); err != nil {
		return err
	}

	pipeline := runtime.PipelineConfig()
	vctx := runtime.ValidationContext()
	req := dto.ValidateUnitsRequest{
		UnitPaths:     args,
		RulebookPaths: runtime.RulebookPaths,
		Options: dto.ValidationOptions{
			Strict:            vctx.Strict,
			SkipPerformance:   !vctx.CheckPerformance,
			SkipCompatibility: !vctx.CheckCompatibility,
		},
		Filters: dto.FilterOptions{
			FilterExpression: opts.Filter,
			IncludeUnitIDs:   opts.Units,
			ExcludeUnitIDs:   opts.ExcludeUnits,
			Archetypes:       opts.Archetypes,
		},
		Execution: dto.ExecutionOptions{
			Parallel:      pipeline.Parallel,
			MaxConcurrent: pipeline.MaxConcurrent,
		},
		Metadata: dto.RequestMetadata{RequestID: uuid.NewString()},
	}

	opts.Timeout = runtime.Timeout
	runCtx, cancel := opts.ApplyToContext(ctx.Context)
	defer cancel()

	resp, err := ctx.Container.ValidateUnitsUseCase().Execute(runCtx, req)
	if err != nil {
		return err
	}

	writer, closeWriter, err := opts.OpenWriter(cmd)
	if err != nil {
		return err
	}
	defer closeWriter()

	formatter, err := ctx.Container.FormatterFactory().Create(opts.Format, writer, ports.FormatterOptions{
		Indent: true,
		Color:  opts.OutFile == "" && colorEnabled(),
	})
	if err != nil {
		return err
	}
	if err := formatter.Format(resp.Report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if opts.OutFile != "" {
		ctx.Logger.Info("report written", "file", opts.OutFile, "format", opts.Format)
	}

	batch := resp.Report.Batch
	if !batch.AllValid() {
		return fmt.Errorf("validation failed: %d of %d units invalid", batch.InvalidCount, batch.Total)
	}
	return nil
}

// runtimeConfig layers explicitly set flags over the system config.
func (opts *validateOptions) runtimeConfig(cmd *cobra.Command, sys *system.Config) *infraconfig.RuntimeConfig {
	runtime := infraconfig.FromSystemConfig(sys)
	flags := cmd.Flags()

	runtime.RulebookPaths = append(runtime.RulebookPaths, opts.Rulebooks...)
	runtime.Strict = runtime.Strict || opts.Strict
	runtime.SkipPerformance = runtime.SkipPerformance || opts.NoPerformance
	runtime.SkipCompatibility = runtime.SkipCompatibility || opts.NoCompatibility

	if flags.Changed("parallel") {
		runtime.Sequential = !opts.Parallel
	}
	if flags.Changed("max-concurrent") {
		runtime.MaxConcurrent = opts.MaxConcurrent
	}
	if flags.Changed("timeout") {
		runtime.Timeout = opts.Timeout
	}

	runtime.ApplyDefaults()
	return runtime
}
