package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/oszuidwest/zwfm-mixdown/internal/models"
)

// assetSeed is the layout of an asset seed file:
//
//	assets:
//	  - name: Calm piano
//	    category: background
//	    url: https://cdn.example.org/beds/calm-piano.mp3
//	    duration_seconds: 62.5
//	  - name: Chime
//	    category: effect
//	    file: chime.wav
type assetSeed struct {
	Assets []models.MixingAsset `yaml:"assets"`
}

// ParseAssetSeed reads and validates an asset seed file.
func ParseAssetSeed(r io.Reader) ([]models.MixingAsset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed assetSeed
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid asset seed: %w", err)
	}

	seen := make(map[string]bool, len(seed.Assets))
	for i, a := range seed.Assets {
		switch {
		case a.Name == "":
			return nil, fmt.Errorf("asset %d: name is required", i)
		case seen[a.Name]:
			return nil, fmt.Errorf("asset %q: duplicate name", a.Name)
		case !a.Category.IsValid():
			return nil, fmt.Errorf("asset %q: unknown category %q", a.Name, a.Category)
		case (a.URL == "") == (a.FileName == ""):
			return nil, fmt.Errorf("asset %q: exactly one of url or file is required", a.Name)
		case a.DurationSeconds != nil && *a.DurationSeconds < 0:
			return nil, fmt.Errorf("asset %q: duration must not be negative", a.Name)
		}
		seen[a.Name] = true
	}
	return seed.Assets, nil
}

// SeedAssets upserts every asset by name in one transaction and returns how many were written.
// When one asset fails nothing is written.
func SeedAssets(ctx context.Context, txm TxManager, repo AssetRepository, assets []models.MixingAsset) (int, error) {
	written := 0
	err := txm.WithTransaction(ctx, func(ctx context.Context) error {
		for i := range assets {
			if err := repo.Upsert(ctx, &assets[i]); err != nil {
				return fmt.Errorf("failed to seed asset %q: %w", assets[i].Name, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
