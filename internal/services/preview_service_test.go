package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-mixdown/internal/apperrors"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio/preview"
	"github.com/oszuidwest/zwfm-mixdown/internal/config"
)

func newPreviewService(t *testing.T) *PreviewService {
	t.Helper()
	f := newMixFixture(t)
	audioSvc := audio.NewService(&config.AudioConfig{SampleRate: fakeRate})
	player := preview.NewPlayer(audioSvc, func() preview.Sink { return preview.DiscardSink{} }, preview.Options{})
	return NewPreviewService(player, f.mixer, NewAssetService(f.assets, f.dir))
}

func TestPreviewService_PlayWithoutNarration(t *testing.T) {
	svc := newPreviewService(t)

	status, err := svc.Play(context.Background(), PreviewRequest{Settings: audio.DefaultMixingSettings()})
	appErr := requireCode(t, err, apperrors.CodeInvalidInput)
	assert.Equal(t, preview.ErrNoNarration.Error(), appErr.Message)
	assert.Equal(t, preview.StateIdle, status.State)
}

func TestPreviewService_PlayAndStop(t *testing.T) {
	svc := newPreviewService(t)
	narration := audio.BlobSource("narration", []byte("x"))

	_, err := svc.Play(context.Background(), PreviewRequest{Narration: &narration, Settings: audio.DefaultMixingSettings()})
	require.NoError(t, err)

	status := svc.Stop()
	assert.NotEqual(t, preview.StatePlaying, status.State)
	assert.Zero(t, status.Progress)
}

func TestPreviewService_PlayDecodeFailure(t *testing.T) {
	svc := newPreviewService(t)
	bad := audio.BlobSource("bad", []byte("x"))

	status, err := svc.Play(context.Background(), PreviewRequest{Narration: &bad, Settings: audio.DefaultMixingSettings()})
	requireCode(t, err, apperrors.CodeDecode)
	assert.Equal(t, preview.StateIdle, status.State)
}
