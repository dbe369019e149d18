package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-mixdown/internal/utils"
)

// SpeechRequest is the body of a synthesis request.
type SpeechRequest struct {
	Text    string `json:"text" binding:"required,notblank"`
	VoiceID string `json:"voice_id" binding:"required,notblank"`
}

// CreateSpeech synthesises text into a WAV narration.
func (h *Handlers) CreateSpeech(c *gin.Context) {
	var req SpeechRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	encoded, err := h.speechSvc.Synthesize(c.Request.Context(), req.Text, req.VoiceID)
	if err != nil {
		handleServiceError(c, err, "Speech")
		return
	}

	c.Header("X-Audio-Duration", formatSeconds(encoded.Duration))
	utils.WAV(c, http.StatusOK, "speech.wav", encoded.Data)
}
