package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oszuidwest/zwfm-mixdown/internal/database"
	"github.com/oszuidwest/zwfm-mixdown/internal/repository"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "seed FILE",
		Short:   "Load mixing assets from a YAML file",
		Example: "  mixdown seed assets.example.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer func() { _ = f.Close() }()

			assets, err := repository.ParseAssetSeed(f)
			if err != nil {
				return err
			}

			db, err := database.NewGormDB(cmd.Context(), a.cfg)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close(db)

			n, err := repository.SeedAssets(cmd.Context(), repository.NewTxManager(db), repository.NewAssetRepository(db), assets)
			if err != nil {
				return err
			}
			logger.Info("Seeded %d mixing assets", n)
			return nil
		},
	}
}
