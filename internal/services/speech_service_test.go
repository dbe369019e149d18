package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-mixdown/internal/apperrors"
	"github.com/oszuidwest/zwfm-mixdown/internal/tts"
)

type fakeSynth struct {
	calls []string
	err   error
}

func (s *fakeSynth) GenerateSpeech(_ context.Context, text, _ string) ([]byte, error) {
	s.calls = append(s.calls, text)
	if s.err != nil {
		return nil, s.err
	}
	return []byte("[" + text + "]"), nil
}

func TestSpeechService_Synthesize(t *testing.T) {
	f := newMixFixture(t)
	synth := &fakeSynth{}
	svc := NewSpeechService(synth, f.svc, 20)

	out, err := svc.Synthesize(context.Background(), "The road is closed. Use the detour via the ring road.", "voice")
	require.NoError(t, err)

	assert.Equal(t, []string{"The road is closed.", "Use the detour via", "the ring road."}, synth.calls)
	assert.Equal(t, []byte("[The road is closed.][Use the detour via][the ring road.]"), out.Data)
	assert.InDelta(t, 3.0, out.Duration, 1e-9)
}

func TestSpeechService_Errors(t *testing.T) {
	f := newMixFixture(t)

	_, err := NewSpeechService(nil, f.svc, 100).Synthesize(context.Background(), "Hello.", "voice")
	requireCode(t, err, apperrors.CodeUnavailable)

	svc := NewSpeechService(&fakeSynth{}, f.svc, 100)
	_, err = svc.Synthesize(context.Background(), "   ", "voice")
	requireCode(t, err, apperrors.CodeInvalidInput)

	_, err = svc.Synthesize(context.Background(), "Hello.", "")
	requireCode(t, err, apperrors.CodeInvalidInput)

	svc = NewSpeechService(&fakeSynth{err: &tts.APIError{StatusCode: http.StatusUnauthorized}}, f.svc, 100)
	_, err = svc.Synthesize(context.Background(), "Hello.", "voice")
	appErr := requireCode(t, err, apperrors.CodeUpstream)
	assert.Equal(t, "ElevenLabs API key is invalid or expired", appErr.Message)

	svc = NewSpeechService(&fakeSynth{err: errors.New("timeout")}, f.svc, 100)
	_, err = svc.Synthesize(context.Background(), "Hello.", "voice")
	appErr = requireCode(t, err, apperrors.CodeUpstream)
	assert.Equal(t, "Speech synthesis failed", appErr.Message)
}
