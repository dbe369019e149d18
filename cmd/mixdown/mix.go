package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/config"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

type mixOptions struct {
	narration    string
	background   string
	settingsFile string
	output       string
}

func newMixCmd(a *app) *cobra.Command {
	var opts mixOptions

	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Render a mix from local files or URLs without the database",
		Example: `  mixdown mix --narration voice.mp3 --background bed.wav --settings settings.yaml -o out.wav
  mixdown mix --narration https://cdn.example.org/voice.mp3 -o out.wav`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMix(cmd.Context(), a.cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.narration, "narration", "n", "", "narration file or URL")
	f.StringVarP(&opts.background, "background", "b", "", "background file or URL")
	f.StringVarP(&opts.settingsFile, "settings", "s", "", "YAML or JSON file with mixing settings")
	f.StringVarP(&opts.output, "output", "o", "mix.wav", "output WAV file")
	_ = cmd.MarkFlagRequired("narration")
	return cmd
}

func runMix(ctx context.Context, cfg *config.Config, opts mixOptions) error {
	settings, err := loadSettings(opts.settingsFile)
	if err != nil {
		return err
	}

	svc := audio.NewService(&cfg.Audio)

	narrationSrc, err := cliSource(opts.narration)
	if err != nil {
		return err
	}
	narration, err := svc.DecodeToBuffer(ctx, narrationSrc)
	if err != nil {
		return err
	}

	var background *audio.Buffer
	if opts.background != "" {
		bgSrc, err := cliSource(opts.background)
		if err != nil {
			return err
		}
		if background, err = svc.DecodeToBuffer(ctx, bgSrc); err != nil {
			return err
		}
	}

	encoded, err := svc.ExportMixToWAV(ctx, narration, background, nil, settings)
	if err != nil {
		return err
	}

	if err := writeOutput(opts.output, encoded.Data); err != nil {
		return err
	}
	logger.Info("Wrote %s (%.2fs, %d Hz, %d bytes)", opts.output, encoded.Duration, encoded.SampleRate, len(encoded.Data))
	return nil
}

// loadSettings reads mixing settings over the defaults. YAML is a superset of JSON, so both are accepted.
func loadSettings(path string) (audio.MixingSettings, error) {
	settings := audio.DefaultMixingSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return settings, settings.Validate()
}

// cliSource turns a command line argument into an audio source.
func cliSource(arg string) (audio.Source, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return audio.URLSource(arg), nil
	}
	data, err := os.ReadFile(filepath.Clean(arg))
	if err != nil {
		return audio.Source{}, fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return audio.BlobSource(filepath.Base(arg), data), nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		return errors.New("output path is required")
	}
	// #nosec G306 - exported audio is meant to be shared
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
