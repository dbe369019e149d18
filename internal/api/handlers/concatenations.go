package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-mixdown/internal/utils"
)

// chunksField is the multipart field holding the parts to join; "chunks[]" is accepted too.
const chunksField = "chunks"

// CreateConcatenation joins uploaded WAV or MP3 chunks, in upload order, into one WAV.
func (h *Handlers) CreateConcatenation(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.ProblemBadRequest(c, "Request must be multipart/form-data")
		return
	}

	files := form.File[chunksField]
	if len(files) == 0 {
		files = form.File[chunksField+"[]"]
	}
	if len(files) == 0 {
		utils.ProblemValidationError(c, "The request contains invalid data", []utils.ValidationError{
			{Field: chunksField, Message: "at least one audio chunk is required"},
		})
		return
	}

	blobs, result := readUploads(files, chunksField, h.config.Server.MaxUploadBytes)
	if result.HasErrors() {
		respondValidation(c, result)
		return
	}

	encoded, err := h.mixSvc.Concatenate(c.Request.Context(), blobs)
	if err != nil {
		handleServiceError(c, err, "Concatenation")
		return
	}

	if c.Query("format") == "json" {
		utils.Success(c, ConcatenationResponse{
			Duration:   encoded.Duration,
			SampleRate: encoded.SampleRate,
			Size:       len(encoded.Data),
		})
		return
	}

	c.Header("X-Audio-Duration", formatSeconds(encoded.Duration))
	c.Header("X-Audio-Chunks", strconv.Itoa(len(blobs)))
	utils.WAV(c, http.StatusOK, "concatenation.wav", encoded.Data)
}
