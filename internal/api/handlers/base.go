// Package handlers provides HTTP request handlers for all API endpoints.
package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-mixdown/internal/apperrors"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio/preview"
	"github.com/oszuidwest/zwfm-mixdown/internal/config"
	"github.com/oszuidwest/zwfm-mixdown/internal/models"
	"github.com/oszuidwest/zwfm-mixdown/internal/repository"
	"github.com/oszuidwest/zwfm-mixdown/internal/services"
	"github.com/oszuidwest/zwfm-mixdown/internal/utils"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

// MixService exports mixes and concatenations; *services.MixService implements it.
type MixService interface {
	Export(ctx context.Context, req services.MixRequest) (*services.MixResult, error)
	Submit(ctx context.Context, req services.MixRequest) (*models.Mix, error)
	GetByID(ctx context.Context, id int64) (*models.Mix, error)
	List(ctx context.Context, query *repository.ListQuery) (*repository.ListResult[models.Mix], error)
	OpenAudio(ctx context.Context, id int64) (*models.Mix, io.ReadCloser, int64, error)
	Concatenate(ctx context.Context, blobs [][]byte) (*audio.EncodedAudio, error)
}

// AssetService reads the mixing asset catalogue; *services.AssetService implements it.
type AssetService interface {
	List(ctx context.Context, category string, query *repository.ListQuery) (*repository.ListResult[models.MixingAsset], error)
	GetByID(ctx context.Context, id int64) (*models.MixingAsset, error)
}

// SpeechService synthesises text; *services.SpeechService implements it.
type SpeechService interface {
	Synthesize(ctx context.Context, text, voiceID string) (*audio.EncodedAudio, error)
}

// PreviewService controls the live preview; *services.PreviewService implements it.
type PreviewService interface {
	Play(ctx context.Context, req services.PreviewRequest) (preview.Status, error)
	Stop() preview.Status
	Status() preview.Status
}

// Handlers contains all the dependencies needed by the API handlers.
type Handlers struct {
	mixSvc     MixService
	assetSvc   AssetService
	speechSvc  SpeechService
	previewSvc PreviewService
	config     *config.Config
}

// NewHandlers creates a new Handlers instance with all required dependencies.
func NewHandlers(
	mixSvc MixService,
	assetSvc AssetService,
	speechSvc SpeechService,
	previewSvc PreviewService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		mixSvc:     mixSvc,
		assetSvc:   assetSvc,
		speechSvc:  speechSvc,
		previewSvc: previewSvc,
		config:     cfg,
	}
}

// handleServiceError converts apperrors.Error to appropriate HTTP responses.
// Internal error details are logged but never exposed to clients.
func handleServiceError(c *gin.Context, err error, resource string) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logger.Error("Unhandled error for %s: %v", resource, err)
		utils.ProblemInternalServer(c, "Failed to process "+resource)
		return
	}

	// Log internal details if present
	if appErr.Internal != "" {
		logger.Error("%s error: %s (internal: %s)", resource, appErr.Message, appErr.Internal)
	}

	// Map error code to HTTP response
	switch appErr.Code {
	case apperrors.CodeNotFound:
		if appErr.Message == apperrors.ErrNotFound.Message {
			utils.ProblemNotFound(c, resource)
		} else {
			utils.ProblemNotFoundDetail(c, appErr.Message)
		}
	case apperrors.CodeDuplicate:
		utils.ProblemDuplicate(c, resource)
	case apperrors.CodeConflict:
		utils.ProblemConflict(c, appErr.Message)
	case apperrors.CodeInvalidInput, apperrors.CodeValidation:
		if appErr.Field != "" {
			utils.ProblemValidationError(c, appErr.Message, []utils.ValidationError{{Field: appErr.Field, Message: appErr.Message}})
		} else {
			utils.ProblemBadRequest(c, appErr.Message)
		}
	case apperrors.CodeMixing:
		// Mixing errors name the offending setting
		if appErr.Field != "" {
			utils.ProblemValidationError(c, appErr.Message, []utils.ValidationError{{Field: appErr.Field, Message: appErr.Message}})
		} else {
			utils.ProblemUnprocessableAudio(c, appErr.Message)
		}
	case apperrors.CodeDecode, apperrors.CodeConcatenation:
		utils.ProblemUnprocessableAudio(c, appErr.Message)
	case apperrors.CodeUpstream:
		utils.ProblemUpstream(c, appErr.Message)
	case apperrors.CodeUnavailable:
		utils.ProblemServiceUnavailable(c, appErr.Message)
	default:
		if appErr.Err != nil {
			logger.Error("%s underlying error: %v", resource, appErr.Err)
		}
		utils.ProblemInternalServer(c, "Failed to process "+resource)
	}
}
