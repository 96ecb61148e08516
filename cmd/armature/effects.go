package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/armature-dev/armature/internal/application/dto"
	"github.com/armature-dev/armature/internal/domain/values"
	"github.com/spf13/cobra"
)

func newEffectsCmd() *cobra.Command {
	opts := &CommonOptions{Format: "table"}
	var (
		rulebooks  []string
		conditions []string
	)

	cmd := &cobra.Command{
		Use:   "effects <units.yaml>...",
		Short: "Show advanced effects derived from each unit's modifiers",
		Long: `Derive secondary bonuses and special modes for every equipped modifier.

Conditions come from each unit's runtime state (low health, precision mode).
Use --condition to force one on for every unit.`,
		Example: `  armature effects roster.yaml
  armature effects roster.yaml --condition low_health --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			if err := opts.ValidateFlags(inspectFormats); err != nil {
				return err
			}

			forced := make([]values.Condition, len(conditions))
			for i, c := range conditions {
				forced[i] = values.Condition(c)
			}

			resp, err := ctx.Container.InspectUnitsUseCase().Effects(dto.InspectUnitsRequest{
				UnitPaths:     args,
				RulebookPaths: append(append([]string(nil), ctx.Container.SystemConfig().Rulebooks...), rulebooks...),
				Conditions:    forced,
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
			return renderEffectsTable(writer, resp)
		}),
	}

	opts.RegisterOutputFlags(cmd, inspectFormats)
	cmd.Flags().StringSliceVar(&rulebooks, "rulebook", nil, "Rulebook overlay files, applied in order")
	cmd.Flags().StringSliceVar(&conditions, "condition", nil, "Force a condition on: low_health, precision_mode")

	return cmd
}

func renderEffectsTable(w io.Writer, resp *dto.EffectsResponse) error {
	if len(resp.Units) == 0 {
		_, err := fmt.Fprintln(w, "No units found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(tw, "UNIT\tMODIFIER\tFAMILY\tCRIT\tEVASION\tSPECIAL\tAPPLIED\tTURNS\tENERGY"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, unit := range resp.Units {
		for _, e := range unit.Effects {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%s\t%.2f\t%d\t%.2f\n",
				unit.UnitID,
				e.Modifier,
				e.Family,
				e.CritChance,
				e.EvasionChance,
				specialState(e.SpecialModeUnlocked, e.SpecialModeActive),
				e.AppliedMagnitude,
				e.DurationTurns,
				e.EnergyCost,
			); err != nil {
				return fmt.Errorf("failed to write effect: %w", err)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

func specialState(unlocked, active bool) string {
	switch {
	case active:
		return "active"
	case unlocked:
		return "unlocked"
	default:
		return "locked"
	}
}
