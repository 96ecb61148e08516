package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// CommonOptions contains output and execution flags shared by commands.
type CommonOptions struct {
	// Output
	Format  string
	OutFile string

	// Execution
	Timeout       time.Duration
	MaxConcurrent int
	Parallel      bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Format:   "table",
		Parallel: true,
	}
}

// RegisterOutputFlags adds --format and --output to a command.
func (opts *CommonOptions) RegisterOutputFlags(cmd *cobra.Command, formats []string) {
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		fmt.Sprintf("Output format: %v", formats))
	cmd.Flags().StringVarP(&opts.OutFile, "output", "o", "",
		"Output file path (default: stdout)")
}

// RegisterExecutionFlags adds batch execution flags to a command.
func (opts *CommonOptions) RegisterExecutionFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Timeout for the whole batch (0 to disable)")
	cmd.Flags().BoolVar(&opts.Parallel, "parallel", opts.Parallel,
		"Validate units in parallel")
	cmd.Flags().IntVar(&opts.MaxConcurrent, "max-concurrent", 0,
		"Maximum units validated at once (0 = number of CPUs)")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

// ValidateFlags validates common options.
func (opts *CommonOptions) ValidateFlags(formats []string) error {
	if !slices.Contains(formats, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %v)", opts.Format, formats)
	}
	if opts.MaxConcurrent < 0 {
		return fmt.Errorf("--max-concurrent cannot be negative, got %d", opts.MaxConcurrent)
	}
	if opts.Timeout < 0 {
		return fmt.Errorf("--timeout cannot be negative, got %s", opts.Timeout)
	}
	return nil
}

// OpenWriter returns the output file, or the command's stdout when no file
// was requested. The returned close function is always safe to call.
func (opts *CommonOptions) OpenWriter(cmd *cobra.Command) (io.Writer, func(), error) {
	if opts.OutFile == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	//nolint:gosec // G304: User-controlled output file path is intentional
	file, err := os.Create(opts.OutFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() {
		_ = file.Close() // Best-effort cleanup
	}, nil
}

// colorEnabled honors the NO_COLOR convention.
func colorEnabled() bool {
	_, disabled := os.LookupEnv("NO_COLOR")
	return !disabled
}

// inspectFormats are the formats supported by compat and effects.
var inspectFormats = []string{"table", "json", "yaml"}

// renderStructured writes v as indented JSON or YAML.
func renderStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		encoder := yaml.NewEncoder(w, yaml.Indent(2))
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
