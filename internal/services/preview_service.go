package services

import (
	"context"
	"errors"

	"github.com/oszuidwest/zwfm-mixdown/internal/apperrors"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio/preview"
)

// PreviewRequest selects what the live preview plays.
type PreviewRequest struct {
	Narration         *audio.Source
	Background        *audio.Source
	BackgroundAssetID *int64
	Settings          audio.MixingSettings
}

// PreviewService controls the server-side live preview.
type PreviewService struct {
	player *preview.Player
	mixer  Mixer
	assets *AssetService
}

// NewPreviewService creates a preview service around player.
func NewPreviewService(player *preview.Player, mixer Mixer, assets *AssetService) *PreviewService {
	return &PreviewService{player: player, mixer: mixer, assets: assets}
}

// Play decodes the request and starts the preview, replacing a running one.
// Without narration the player is left untouched.
func (s *PreviewService) Play(ctx context.Context, req PreviewRequest) (preview.Status, error) {
	const op = "PreviewService.Play"

	if req.Narration == nil {
		return s.player.Status(), apperrors.InvalidInput(preview.ErrNoNarration.Error()).WithField("narration")
	}
	if err := req.Settings.Validate(); err != nil {
		return s.player.Status(), apperrors.TranslateAudioError(op, err)
	}

	bgSource, _, err := s.assets.ResolveBackground(ctx, req.Background, req.BackgroundAssetID)
	if err != nil {
		return s.player.Status(), err
	}

	narration, err := s.mixer.DecodeToBuffer(ctx, *req.Narration)
	if err != nil {
		return s.player.Status(), apperrors.TranslateAudioError(op, err)
	}
	var background *audio.Buffer
	if bgSource != nil {
		if background, err = s.mixer.DecodeToBuffer(ctx, *bgSource); err != nil {
			return s.player.Status(), apperrors.TranslateAudioError(op, err)
		}
	}

	if err := s.player.Play(ctx, narration, background, req.Settings); err != nil {
		if errors.Is(err, preview.ErrNoNarration) {
			return s.player.Status(), apperrors.InvalidInput(err.Error()).WithField("narration")
		}
		return s.player.Status(), apperrors.TranslateAudioError(op, err)
	}
	return s.player.Status(), nil
}

// Stop ends the preview and rewinds it.
func (s *PreviewService) Stop() preview.Status {
	s.player.Stop()
	return s.player.Status()
}

// Status returns the preview state and progress.
func (s *PreviewService) Status() preview.Status {
	return s.player.Status()
}
