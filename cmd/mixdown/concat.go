package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

func newConcatCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "concat FILE...",
		Short: "Join audio files in order into one WAV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobs := make([][]byte, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(filepath.Clean(path))
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				blobs = append(blobs, data)
			}

			encoded, err := audio.NewService(&a.cfg.Audio).ConcatenateAudios(cmd.Context(), blobs)
			if err != nil {
				return err
			}
			if err := writeOutput(output, encoded.Data); err != nil {
				return err
			}
			logger.Info("Joined %d files into %s (%.2fs)", len(blobs), output, encoded.Duration)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "concatenation.wav", "output WAV file")
	return cmd
}
