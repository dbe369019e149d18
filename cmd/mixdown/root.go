package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oszuidwest/zwfm-mixdown/internal/config"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
	"github.com/oszuidwest/zwfm-mixdown/pkg/version"
)

// app carries state shared by all subcommands.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "mixdown",
		Short:        "Mix narration with background beds into broadcast-ready WAV files",
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.BuildTime),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Initialize(logger.Options{
				Level:       cfg.Log.Level,
				Development: !cfg.IsProduction(),
				FilePath:    cfg.Log.FilePath,
			}); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newMixCmd(a),
		newConcatCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
	)
	return root
}
