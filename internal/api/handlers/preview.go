package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-mixdown/internal/services"
	"github.com/oszuidwest/zwfm-mixdown/internal/utils"
)

// StartPreview replaces the live preview with the posted mix.
func (h *Handlers) StartPreview(c *gin.Context) {
	form, ok := h.bindMixForm(c, false)
	if !ok {
		return
	}

	status, err := h.previewSvc.Play(c.Request.Context(), services.PreviewRequest{
		Narration:         form.Narration,
		Background:        form.Background,
		BackgroundAssetID: form.BackgroundAssetID,
		Settings:          form.Settings,
	})
	if err != nil {
		handleServiceError(c, err, "Preview")
		return
	}
	utils.Success(c, PreviewResponse(status))
}

// GetPreview reports the live preview state and progress.
func (h *Handlers) GetPreview(c *gin.Context) {
	utils.Success(c, PreviewResponse(h.previewSvc.Status()))
}

// StopPreview stops and rewinds the live preview.
func (h *Handlers) StopPreview(c *gin.Context) {
	utils.Success(c, PreviewResponse(h.previewSvc.Stop()))
}
