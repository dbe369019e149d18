package services

import (
	"context"
	"errors"
	"strings"

	"github.com/oszuidwest/zwfm-mixdown/internal/apperrors"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/tts"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

// Concatenator joins encoded audio chunks; *MixService implements it.
type Concatenator interface {
	Concatenate(ctx context.Context, blobs [][]byte) (*audio.EncodedAudio, error)
}

// SpeechService synthesises long texts chunk by chunk and joins the result.
type SpeechService struct {
	synth    tts.Synthesizer
	concat   Concatenator
	maxChunk int
}

// NewSpeechService creates a speech service. A nil synthesizer disables synthesis.
func NewSpeechService(synth tts.Synthesizer, concat Concatenator, maxChunk int) *SpeechService {
	return &SpeechService{synth: synth, concat: concat, maxChunk: maxChunk}
}

// Enabled reports whether a speech vendor is configured.
func (s *SpeechService) Enabled() bool {
	return s.synth != nil
}

// Synthesize converts text into a single WAV. Chunks are synthesised in order,
// one request at a time.
func (s *SpeechService) Synthesize(ctx context.Context, text, voiceID string) (*audio.EncodedAudio, error) {
	if !s.Enabled() {
		return nil, apperrors.Unavailable("Speech synthesis is not configured")
	}
	if strings.TrimSpace(voiceID) == "" {
		return nil, apperrors.InvalidInput("Voice is required").WithField("voice_id")
	}

	chunks := tts.SplitText(text, s.maxChunk)
	if len(chunks) == 0 {
		return nil, apperrors.InvalidInput("Text is required").WithField("text")
	}

	blobs := make([][]byte, 0, len(chunks))
	for i, chunk := range chunks {
		data, err := s.synth.GenerateSpeech(ctx, chunk, voiceID)
		if err != nil {
			return nil, translateSpeechError(i, err)
		}
		blobs = append(blobs, data)
	}

	logger.Debug("Synthesised %d chunk(s) for voice %s", len(chunks), voiceID)
	return s.concat.Concatenate(ctx, blobs)
}

func translateSpeechError(chunk int, err error) error {
	var apiErr *tts.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Upstream(apiErr.Error()).WithInternal("chunk %d: status %d: %s", chunk, apiErr.StatusCode, apiErr.Body).Wrap(err)
	}
	return apperrors.Upstream("Speech synthesis failed").WithInternal("chunk %d: %v", chunk, err).Wrap(err)
}
