package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix scopes viper's environment lookups, e.g. ARMATURE_CONFIG.
const envPrefix = "ARMATURE"

// newRootCmd builds the application entry point and its subcommands.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "armature",
		Short: "Validation and compatibility engine for game units",
		Long: `Armature validates assembled game units (frame, core, components and
modifiers) against a rulebook. It checks structure, required fields,
archetype business rules, performance and modifier compatibility, and
reports a score for every unit.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file (default is $HOME/.armature/config.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newValidateCmd(),
		newCompatCmd(),
		newEffectsCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	cobra.OnInitialize(initConfig)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig enables ARMATURE_* environment lookups for global flags.
func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
}

// configPath returns --config, falling back to ARMATURE_CONFIG.
func configPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return viper.GetString("config")
}

func setupLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose || viper.GetBool("verbose") {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
