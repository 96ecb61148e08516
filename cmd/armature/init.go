package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/armature-dev/armature/internal/domain/entities"
	"github.com/armature-dev/armature/internal/domain/values"
	"github.com/charmbracelet/huh"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// InitOptions describes the unit scaffold written by the init command.
type InitOptions struct {
	ID            string
	Name          string
	Archetype     string
	Owner         string
	CombatRole    string
	Rarity        string
	Capacity      int
	OutputPath    string
	Force         bool
	NoInteractive bool
}

func newInitCmd() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a unit document",
		Long: `Write a starter unit document that passes validation against the
built-in rulebook. Missing values are prompted for unless --no-interactive
is set.`,
		Example: `  armature init
  armature init --no-interactive --id scout-1 --archetype support --owner player-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "Unit ID")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Unit display name (default: derived from the ID)")
	cmd.Flags().StringVar(&opts.Archetype, "archetype", "", "Archetype: autonomous, leader, combat, support")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "Owner reference")
	cmd.Flags().StringVar(&opts.CombatRole, "combat-role", "vanguard", "Combat role (combat archetype only)")
	cmd.Flags().StringVar(&opts.Rarity, "rarity", "", "Frame rarity (default: rare)")
	cmd.Flags().IntVar(&opts.Capacity, "capacity", 4, "Frame slot capacity")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "unit.yaml", "Output file path")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&opts.NoInteractive, "no-interactive", false, "Disable interactive prompts")

	return cmd
}

func runInit(cmd *cobra.Command, opts *InitOptions) error {
	if !opts.NoInteractive {
		if err := promptInit(opts); err != nil {
			return err
		}
	}
	opts.applyDefaults()

	if err := opts.Validate(); err != nil {
		return err
	}

	unit := BuildUnitScaffold(opts)
	if err := saveUnit(unit, opts.OutputPath, opts.Force); err != nil {
		return fmt.Errorf("failed to save unit: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "✓ Unit %s saved to %s\n", unit.ID, opts.OutputPath)
	_, _ = fmt.Fprintf(out, "Run 'armature validate %s' to check it.\n", opts.OutputPath)
	return nil
}

func promptInit(opts *InitOptions) error {
	if opts.ID == "" {
		err := huh.NewInput().
			Title("Unit ID").
			Value(&opts.ID).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("unit ID is required")
				}
				return nil
			}).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.Name == "" {
		err := huh.NewInput().
			Title("Display name").
			Placeholder("Unit " + opts.ID).
			Value(&opts.Name).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.Archetype == "" {
		options := make([]huh.Option[string], 0, len(values.AllArchetypes()))
		for _, a := range values.AllArchetypes() {
			options = append(options, huh.NewOption(a.String(), a.String()))
		}
		err := huh.NewSelect[string]().
			Title("Select archetype").
			Options(options...).
			Value(&opts.Archetype).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.Rarity == "" {
		options := make([]huh.Option[string], 0, len(values.AllRarities()))
		for _, r := range values.AllRarities() {
			options = append(options, huh.NewOption(r.String(), r.String()).Selected(r == values.RarityRare))
		}
		err := huh.NewSelect[string]().
			Title("Select frame rarity").
			Options(options...).
			Value(&opts.Rarity).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.Owner == "" && values.Archetype(opts.Archetype) != values.ArchetypeAutonomous {
		err := huh.NewInput().
			Title("Owner reference").
			Value(&opts.Owner).
			Run()
		if err != nil {
			return err
		}
	}

	return nil
}

func (o *InitOptions) applyDefaults() {
	if o.Name == "" && o.ID != "" {
		o.Name = "Unit " + o.ID
	}
	if o.Archetype == "" {
		o.Archetype = values.ArchetypeCombat.String()
	}
	if o.Rarity == "" {
		o.Rarity = values.RarityRare.String()
	}
}

// Validate rejects options that cannot produce a unit document.
func (o *InitOptions) Validate() error {
	if o.ID == "" {
		return errors.New("--id is required")
	}
	if err := values.Archetype(o.Archetype).Validate(); err != nil {
		return err
	}
	if err := values.Rarity(o.Rarity).Validate(); err != nil {
		return err
	}
	if o.Capacity < 2 {
		return fmt.Errorf("--capacity must be at least 2, got %d", o.Capacity)
	}
	return nil
}

// BuildUnitScaffold creates a starter unit: a frame, the essential head and
// torso components, a limb when capacity allows, and full health.
func BuildUnitScaffold(opts *InitOptions) *entities.Unit {
	archetype := values.Archetype(opts.Archetype)
	rarity := values.Rarity(opts.Rarity)

	unit := &entities.Unit{
		ID:        opts.ID,
		Name:      opts.Name,
		Archetype: archetype,
		Frame: &entities.Frame{
			ID:       opts.ID + "-frame",
			Capacity: opts.Capacity,
			Rarity:   rarity,
			Category: "standard",
		},
		State: &entities.RuntimeState{Health: 100, MaxHealth: 100, Energy: 50},
	}

	categories := []values.ComponentCategory{values.CategoryHead, values.CategoryTorso, values.CategoryLimb}
	if len(categories) > opts.Capacity {
		categories = categories[:opts.Capacity]
	}
	for i, category := range categories {
		unit.Components = append(unit.Components, entities.Component{
			ID:       fmt.Sprintf("%s-c%d", opts.ID, i+1),
			Category: category,
			Rarity:   values.RarityCommon,
		})
	}

	if archetype != values.ArchetypeAutonomous {
		unit.Owner = opts.Owner

		coreRarity := rarity
		if archetype == values.ArchetypeLeader && !coreRarity.AtLeast(values.RarityEpic) {
			coreRarity = values.RarityEpic
		}
		unit.Core = &entities.Component{
			ID:       opts.ID + "-core",
			Category: values.CategoryTorso,
			Rarity:   coreRarity,
		}
	}
	if archetype == values.ArchetypeCombat {
		unit.CombatRole = opts.CombatRole
	}

	return unit
}

// saveUnit writes the unit as a single-unit document.
func saveUnit(unit *entities.Unit, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := yaml.MarshalWithOptions(map[string]*entities.Unit{"unit": unit}, yaml.Indent(2))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
