package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-mixdown/internal/models"
	"github.com/oszuidwest/zwfm-mixdown/internal/services"
	"github.com/oszuidwest/zwfm-mixdown/internal/utils"
)

const mixesPath = "/api/v1/mixes"

// CreateMix renders a mix from a multipart form.
//
// By default the WAV is returned directly. With format=json the mix record is
// returned instead, and with async=true the job runs in the background and the
// response is 202 pointing at the record to poll.
func (h *Handlers) CreateMix(c *gin.Context) {
	form, ok := h.bindMixForm(c, true)
	if !ok {
		return
	}

	req := services.MixRequest{
		Narration:         *form.Narration,
		Background:        form.Background,
		BackgroundAssetID: form.BackgroundAssetID,
		Settings:          form.Settings,
	}

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		mix, err := h.mixSvc.Submit(c.Request.Context(), req)
		if err != nil {
			handleServiceError(c, err, "Mix")
			return
		}
		if mix.Status == models.MixStatusReady {
			utils.CreatedWithLocation(c, mix.ID, mixesPath, mix)
			return
		}
		utils.AcceptedWithLocation(c, mix.ID, mixesPath, mix)
		return
	}

	result, err := h.mixSvc.Export(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "Mix")
		return
	}

	if c.Query("format") == "json" {
		utils.CreatedWithLocation(c, result.Mix.ID, mixesPath, result.Mix)
		return
	}

	c.Header("Location", fmt.Sprintf("%s/%d", mixesPath, result.Mix.ID))
	c.Header("X-Mix-ID", strconv.FormatInt(result.Mix.ID, 10))
	c.Header("X-Mix-Duration", formatSeconds(result.Audio.Duration))
	c.Header("X-Mix-Cached", strconv.FormatBool(result.Cached))
	utils.WAV(c, http.StatusCreated, result.Mix.Filename, result.Audio.Data)
}

// GetMix returns a single mix record.
func (h *Handlers) GetMix(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	mix, err := h.mixSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Mix")
		return
	}
	utils.Success(c, mix)
}

// ListMixes returns mixes with sorting, filtering on status and pagination.
func (h *Handlers) ListMixes(c *gin.Context) {
	query := utils.ParseListQuery(c, "status")

	result, err := h.mixSvc.List(c.Request.Context(), query)
	if err != nil {
		handleServiceError(c, err, "Mix")
		return
	}
	utils.Success(c, result)
}

// GetMixAudio streams the stored WAV of a ready mix.
func (h *Handlers) GetMixAudio(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	mix, rc, size, err := h.mixSvc.OpenAudio(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Mix")
		return
	}
	defer func() { _ = rc.Close() }()

	c.DataFromReader(http.StatusOK, size, "audio/wav", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", mix.Filename),
		"Cache-Control":       "public, max-age=3600",
	})
}
