package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oszuidwest/zwfm-mixdown/internal/apperrors"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/models"
	"github.com/oszuidwest/zwfm-mixdown/internal/repository"
)

// AssetService exposes the read-only mixing asset catalogue.
type AssetService struct {
	repo       repository.AssetRepository
	assetsPath string
}

// NewAssetService creates a new asset service. File assets are read from assetsPath.
func NewAssetService(repo repository.AssetRepository, assetsPath string) *AssetService {
	return &AssetService{repo: repo, assetsPath: assetsPath}
}

// List returns assets, optionally limited to one category.
func (s *AssetService) List(ctx context.Context, category string, query *repository.ListQuery) (*repository.ListResult[models.MixingAsset], error) {
	const op = "AssetService.List"

	cat := models.AssetCategory(category)
	if category != "" && !cat.IsValid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown asset category %q", category)).WithField("category")
	}

	result, err := s.repo.List(ctx, cat, query)
	if err != nil {
		return nil, MapRepoError(op, err)
	}
	return result, nil
}

// GetByID returns a single asset.
func (s *AssetService) GetByID(ctx context.Context, id int64) (*models.MixingAsset, error) {
	const op = "AssetService.GetByID"

	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, MapRepoError(op, err)
	}
	return asset, nil
}

// Source resolves the audio of an asset: its URL, or its file in the assets directory.
func (s *AssetService) Source(asset *models.MixingAsset) (audio.Source, error) {
	if asset.URL != "" {
		return audio.Source{URL: asset.URL, Name: asset.Name}, nil
	}
	if asset.FileName == "" {
		return audio.Source{}, apperrors.InvalidInput(fmt.Sprintf("Asset %q has no audio", asset.Name))
	}

	// Only plain file names are allowed; seeds never point outside the assets directory.
	if filepath.Base(asset.FileName) != asset.FileName {
		return audio.Source{}, apperrors.InvalidInput(fmt.Sprintf("Asset %q has an invalid file name", asset.Name))
	}

	// #nosec G304 - file name is validated above
	data, err := os.ReadFile(filepath.Join(s.assetsPath, asset.FileName))
	if err != nil {
		return audio.Source{}, apperrors.NotFound(fmt.Sprintf("Audio of asset %q not found", asset.Name)).
			WithInternal("read %s: %v", asset.FileName, err).Wrap(err)
	}
	return audio.BlobSource(asset.Name, data), nil
}

// ResolveBackground picks the background of a request: an uploaded source or
// a catalogue asset. Supplying both is an error; supplying neither means no background.
func (s *AssetService) ResolveBackground(ctx context.Context, upload *audio.Source, assetID *int64) (*audio.Source, *models.MixingAsset, error) {
	if upload != nil && assetID != nil {
		return nil, nil, apperrors.InvalidInput("Provide either a background file or a background asset, not both").WithField("background_asset_id")
	}
	if upload != nil {
		return upload, nil, nil
	}
	if assetID == nil {
		return nil, nil, nil
	}

	asset, err := s.GetByID(ctx, *assetID)
	if err != nil {
		return nil, nil, err
	}
	if asset.Category != models.AssetCategoryBackground {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("Asset %q is not a background", asset.Name)).WithField("background_asset_id")
	}
	src, err := s.Source(asset)
	if err != nil {
		return nil, nil, err
	}
	return &src, asset, nil
}
