package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/spf13/cobra"
)

func newCompatCmd() *cobra.Command {
	opts := &CommonOptions{Format: "table"}
	var rulebooks []string

	cmd := &cobra.Command{
		Use:   "compat <units.yaml>...",
		Short: "Show modifier synergies and conflicts for each unit",
		Long: `Evaluate every pair of equipped modifiers on each unit.

Synergies are directional: a power modifier paired with fury gains the bonus
declared for power. Conflicts are symmetric and make a unit incompatible.`,
		Example: `  armature compat roster.yaml
  armature compat roster.yaml --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			if err := opts.ValidateFlags(inspectFormats); err != nil {
				return err
			}

			resp, err := ctx.Container.InspectUnitsUseCase().Compatibility(dto.InspectUnitsRequest{
				UnitPaths:     args,
				RulebookPaths: append(append([]string(nil), ctx.Container.SystemConfig().Rulebooks...), rulebooks...),
			})
			if err != nil {
				return err
			}

			writer, closeWriter, err := opts.OpenWriter(cmd)
			if err != nil {
				return err
			}
			defer closeWriter()

			if opts.Format != "table" {
				return renderStructured(writer, opts.Format, resp)
			}
			return renderCompatTable(writer, resp)
		}),
	}

	opts.RegisterOutputFlags(cmd, inspectFormats)
	cmd.Flags().StringSliceVar(&rulebooks, "rulebook", nil, "Rulebook overlay files, applied in order")

	return cmd
}

func renderCompatTable(w io.Writer, resp *dto.CompatibilityResponse) error {
	if len(resp.Units) == 0 {
		_, err := fmt.Fprintln(w, "No units found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, unit := range resp.Units {
		compatible := "yes"
		if !unit.Report.Compatible() {
			compatible = "no"
		}
		if _, err := fmt.Fprintf(tw, "%s (%s)\ttotal synergy %.2f\tcompatible: %s\n",
			unit.UnitID, unit.Source, unit.Report.TotalSynergy, compatible); err != nil {
			return fmt.Errorf("failed to write unit header: %w", err)
		}

		for _, s := range unit.Report.Synergies {
			if _, err := fmt.Fprintf(tw, "  synergy\t%s + %s\t%s → %s +%.2f\n",
				modifierLabel(unit, s.A), modifierLabel(unit, s.B), s.From, s.To, s.Bonus); err != nil {
				return fmt.Errorf("failed to write synergy: %w", err)
			}
		}
		for _, c := range unit.Report.Conflicts {
			if _, err := fmt.Fprintf(tw, "  conflict\t%s × %s\t\n",
				modifierLabel(unit, c.A), modifierLabel(unit, c.B)); err != nil {
				return fmt.Errorf("failed to write conflict: %w", err)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

func modifierLabel(unit dto.UnitCompatibility, index int) string {
	if index >= 0 && index < len(unit.Modifiers) {
		return unit.Modifiers[index]
	}
	return fmt.Sprintf("#%d", index)
}
