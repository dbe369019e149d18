package audio

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-mixdown/internal/config"
)

func TestExportMixToWAV_NarrationOnly(t *testing.T) {
	svc := newTestService(44100)
	narration := tone(44100, 1, 5.0, 440, 0.5)

	out, err := svc.ExportMixToWAV(context.Background(), narration, nil, nil, DefaultMixingSettings())
	require.NoError(t, err)

	assert.Equal(t, 220500, out.Frames)
	assert.InDelta(t, 5.0, out.Duration, 1e-9)
	assert.Equal(t, 2, out.Channels)
	assert.Equal(t, 44100, out.SampleRate)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("RIFF")))
	// 44 byte header, two channels of 16-bit samples
	assert.Len(t, out.Data, 44+220500*4)

	decoded, err := svc.DecodeToBuffer(context.Background(), BlobSource("mix", out.Data))
	require.NoError(t, err)
	assert.Equal(t, 220500, decoded.Frames())
	assert.Equal(t, 2, decoded.Channels())
}

func TestExportMixToWAV_BackgroundParametersIgnoredWithoutBackground(t *testing.T) {
	svc := newTestService(8000)
	narration := tone(8000, 1, 1.0, 300, 0.4)

	plain, err := svc.ExportMixToWAV(context.Background(), narration, nil, nil, DefaultMixingSettings())
	require.NoError(t, err)

	s := DefaultMixingSettings()
	s.BGMOffset = -3
	s.TrimEndSec = ptr(0.2)
	s.FadeIn, s.FadeOut = 1, 1
	s.LowShelf, s.HighShelf = 6, -6
	s.DuckingEnabled = true
	s.LoopBackground = true
	tweaked, err := svc.ExportMixToWAV(context.Background(), narration, nil, nil, s)
	require.NoError(t, err)

	assert.Equal(t, plain.Data, tweaked.Data)
}

func TestExportMixToWAV_PositiveNarrationOffsetWithoutBackground(t *testing.T) {
	svc := newTestService(8000)
	narration := tone(8000, 1, 1.0, 300, 0.4)

	s := DefaultMixingSettings()
	s.TTSOffset = 0.5
	out, err := svc.ExportMixToWAV(context.Background(), narration, nil, nil, s)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, out.Duration, 1e-9)

	s.TTSOffset = -0.5
	out, err = svc.ExportMixToWAV(context.Background(), narration, nil, nil, s)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Duration, 1e-9)
}

func TestRender_NarrationScaledByMasterGain(t *testing.T) {
	svc := newTestService(8000)
	narration := tone(8000, 2, 0.5, 220, 0.8)
	background := constant(8000, 2, 0.5, 0.9)

	s := flat(DefaultMixingSettings())
	s.TTSGain = 1
	s.BGMGain = 0
	s.MasterGain = 0.5

	out, _, err := svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)
	require.Equal(t, narration.Frames(), out.Frames())

	for ch := range 2 {
		for i := 0; i < out.Frames(); i += 97 {
			assert.InDelta(t, narration.Data[ch][i]*0.5, out.Data[ch][i], 1e-12)
		}
	}
}

func TestExportMixToWAV_NarrationAmplitudeSurvivesEncoding(t *testing.T) {
	svc := newTestService(8000)
	narration := tone(8000, 1, 0.5, 220, 0.8)

	s := DefaultMixingSettings()
	s.MasterGain = 0.5
	out, err := svc.ExportMixToWAV(context.Background(), narration, nil, nil, s)
	require.NoError(t, err)

	decoded, err := svc.DecodeToBuffer(context.Background(), BlobSource("mix", out.Data))
	require.NoError(t, err)
	for i := 0; i < decoded.Frames(); i += 53 {
		assert.InDelta(t, narration.Data[0][i]*0.5, decoded.Data[0][i], pcmTolerance)
		assert.InDelta(t, narration.Data[0][i]*0.5, decoded.Data[1][i], pcmTolerance)
	}
}

func TestExportMixToWAV_TrimScenario(t *testing.T) {
	const rate = 8000
	svc := newTestService(rate)
	narration := constant(rate, 1, 5.0, 0.25)
	background := tone(rate, 2, 10.0, 100, 0.3)

	s := flat(DefaultMixingSettings())
	s.BGMOffset = -2.0
	s.TrimEndSec = ptr(8.0)

	rendered, tl, err := svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)

	assert.Equal(t, 8*rate, tl.Frames)
	assert.Equal(t, 2*rate, tl.NarrationStart)
	assert.Equal(t, 7*rate, tl.NarrationEnd)
	assert.Equal(t, 0, tl.BackgroundStart)
	assert.Equal(t, 8*rate, tl.BackgroundEnd)
	assert.InDelta(t, 8.0, tl.Duration(), 1e-9)

	// Narration is absent before 2 s and present right after.
	assert.InDelta(t, background.Data[0][rate]*s.BGMGain, rendered.Data[0][rate], 1e-12)
	i := 2*rate + 10
	assert.InDelta(t, 0.25+background.Data[0][i]*s.BGMGain, rendered.Data[0][i], 1e-12)

	out, err := svc.ExportMixToWAV(context.Background(), narration, background, nil, s)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, out.Duration, 1e-9)
}

func TestExportMixToWAV_TrimNeverCutsNarration(t *testing.T) {
	const rate = 8000
	svc := newTestService(rate)
	narration := constant(rate, 1, 5.0, 0.25)
	background := constant(rate, 1, 10.0, 0.5)

	s := flat(DefaultMixingSettings())
	s.TrimEndSec = ptr(3.0)

	rendered, tl, err := svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)

	assert.Equal(t, 5*rate, tl.Frames)
	assert.Equal(t, 3*rate, tl.BackgroundEnd)
	last := tl.Frames - 1
	assert.InDelta(t, 0.25, rendered.Data[0][last], 1e-12, "narration plays to its end")
	assert.InDelta(t, 0.25+0.5*s.BGMGain, rendered.Data[0][3*rate-1], 1e-12)
	assert.InDelta(t, 0.25, rendered.Data[0][3*rate], 1e-12, "background stops at trim")
}

func TestExportMixToWAV_TrimExtendsBackground(t *testing.T) {
	const rate = 1000
	svc := newTestService(rate)
	narration := constant(rate, 1, 1.0, 0)
	background := ramped(rate, 1.0)

	s := flat(DefaultMixingSettings())
	s.BGMGain = 1
	s.TrimEndSec = ptr(3.0)

	rendered, tl, err := svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)
	assert.Equal(t, 3*rate, tl.Frames)
	assert.Zero(t, rendered.Data[0][1500], "extension is silent without looping")

	s.LoopBackground = true
	rendered, _, err = svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)
	assert.InDelta(t, background.Data[0][500], rendered.Data[0][1500], 1e-12)
	assert.InDelta(t, background.Data[0][250], rendered.Data[1][2250], 1e-12)
}

func TestExportMixToWAV_ZeroFadeKeepsExactGain(t *testing.T) {
	const rate = 8000
	svc := newTestService(rate)
	narration := constant(rate, 1, 1.0, 0)
	background := constant(rate, 2, 2.0, 1.0)

	s := flat(DefaultMixingSettings())
	s.BGMGain = 0.3

	rendered, tl, err := svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)

	assert.Equal(t, 0.3, rendered.Data[0][tl.BackgroundStart])
	assert.Equal(t, 0.3, rendered.Data[1][tl.BackgroundStart])
	assert.Equal(t, 0.3, rendered.Data[0][tl.BackgroundEnd-1])
	assert.Equal(t, 0.3, rendered.Data[1][tl.BackgroundEnd-1])
}

func TestExportMixToWAV_Fades(t *testing.T) {
	const rate = 1000
	svc := newTestService(rate)
	narration := constant(rate, 1, 1.0, 0)
	background := constant(rate, 1, 4.0, 1.0)

	s := flat(DefaultMixingSettings())
	s.BGMGain = 1
	s.FadeIn = 1
	s.FadeOut = 1

	rendered, _, err := svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)

	assert.InDelta(t, rampFloor, rendered.Data[0][0], 1e-12)
	assert.InDelta(t, 0.01, rendered.Data[0][500], 1e-9, "exponential midpoint")
	assert.Equal(t, 1.0, rendered.Data[0][2000])
	assert.InDelta(t, rampFloor, rendered.Data[0][3999], 1e-4)

	s.FadeCurve = FadeLinear
	rendered, _, err = svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, rendered.Data[0][500], 1e-3)
	assert.InDelta(t, 0.5, rendered.Data[0][3500], 1e-3)
}

func TestExportMixToWAV_WindowDucking(t *testing.T) {
	const rate = 1000
	svc := newTestService(rate)
	narration := constant(rate, 1, 1.0, 0)
	background := constant(rate, 1, 4.0, 1.0)

	s := flat(DefaultMixingSettings())
	s.BGMGain = 1
	s.TTSOffset = 1
	s.DuckingEnabled = true
	s.DuckDB = -20
	s.DuckRelease = 0.5

	rendered, tl, err := svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)
	require.Equal(t, 1000, tl.NarrationStart)

	assert.Equal(t, 1.0, rendered.Data[0][500], "before attack")
	assert.InDelta(t, 0.1, rendered.Data[0][1500], 1e-12, "held while narration plays")
	assert.InDelta(t, 0.55, rendered.Data[0][2250], 1e-2, "half way through release")
	assert.Equal(t, 1.0, rendered.Data[0][3000], "recovered")
	assert.Less(t, rendered.Data[0][950], 1.0, "attack starts before narration")
}

func TestExportMixToWAV_EnvelopeDucking(t *testing.T) {
	const rate = 1000
	svc := newTestService(rate)
	narration := NewBuffer(rate, 1, 3000)
	// Loud only during the second second.
	for i := 1000; i < 2000; i++ {
		narration.Data[0][i] = 0.5
	}
	background := constant(rate, 1, 3.0, 1.0)

	s := flat(DefaultMixingSettings())
	s.BGMGain = 1
	s.DuckingEnabled = true
	s.DuckMode = DuckEnvelope
	s.DuckDB = -20
	s.DuckThreshold = -20
	s.DuckRelease = 0.05

	rendered, _, err := svc.Render(context.Background(), narration, background, nil, s)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rendered.Data[0][500], 1e-9, "silence leaves background alone")
	assert.InDelta(t, 0.5+0.1, rendered.Data[0][1500], 1e-3, "ducked under loud narration")
	assert.InDelta(t, 1.0, rendered.Data[0][2900], 1e-3, "released after narration")
}

func TestExportMixToWAV_Idempotent(t *testing.T) {
	const rate = 8000
	svc := newTestService(rate)
	narration := tone(rate, 1, 1.0, 440, 0.5)
	background := tone(rate, 2, 2.0, 90, 0.5)

	s := DefaultMixingSettings()
	s.FadeIn, s.FadeOut = 0.3, 0.3
	s.LowShelf, s.MidPeaking, s.HighShelf = 4, -3, 2
	s.DuckingEnabled = true
	s.BGMOffset = -0.5

	first, err := svc.ExportMixToWAV(context.Background(), narration, background, nil, s)
	require.NoError(t, err)
	second, err := svc.ExportMixToWAV(context.Background(), narration, background, nil, s)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first.Data, second.Data))
}

func TestExportMixToWAV_InputsUnchanged(t *testing.T) {
	const rate = 8000
	svc := newTestService(rate)
	narration := tone(rate, 1, 1.0, 440, 0.5)
	background := tone(16000, 2, 1.5, 90, 0.5)
	narrationCopy, backgroundCopy := clone(narration), clone(background)

	s := DefaultMixingSettings()
	s.LowShelf = 6
	s.DuckingEnabled = true
	_, err := svc.ExportMixToWAV(context.Background(), narration, background, nil, s)
	require.NoError(t, err)

	assert.Equal(t, narrationCopy, narration)
	assert.Equal(t, backgroundCopy, background)
}

func TestExportMixToWAV_ResamplesInputs(t *testing.T) {
	svc := newTestService(8000)
	narration := tone(16000, 1, 1.0, 440, 0.5)

	out, err := svc.ExportMixToWAV(context.Background(), narration, nil, nil, DefaultMixingSettings())
	require.NoError(t, err)
	assert.Equal(t, 8000, out.SampleRate)
	assert.InDelta(t, 8000, out.Frames, 16)
}

func TestExportMixToWAV_Errors(t *testing.T) {
	svc := newTestService(8000)
	narration := tone(8000, 1, 1.0, 440, 0.5)

	tests := []struct {
		name      string
		narration *Buffer
		settings  func(*MixingSettings)
		ctx       func() context.Context
	}{
		{
			name: "missing narration",
		},
		{
			name:      "empty narration",
			narration: NewBuffer(8000, 1, 0),
		},
		{
			name:      "negative gain",
			narration: narration,
			settings:  func(s *MixingSettings) { s.MasterGain = -1 },
		},
		{
			name:      "negative trim",
			narration: narration,
			settings:  func(s *MixingSettings) { s.TrimEndSec = ptr(-1) },
		},
		{
			name:      "cancelled",
			narration: narration,
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultMixingSettings()
			if tt.settings != nil {
				tt.settings(&s)
			}
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}

			out, err := svc.ExportMixToWAV(ctx, tt.narration, nil, nil, s)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, ErrMixing)
		})
	}
}

func TestExportMixToWAV_RejectsOverlongMix(t *testing.T) {
	svc := NewService(&config.AudioConfig{SampleRate: 8000, MixMaxSeconds: 10})
	narration := tone(8000, 1, 1.0, 440, 0.5)
	background := constant(8000, 2, 2.0, 0.2)

	tests := []struct {
		name       string
		background *Buffer
		settings   func(*MixingSettings)
	}{
		{name: "huge narration offset", settings: func(s *MixingSettings) { s.TTSOffset = 1e7 }},
		{name: "huge background offset", background: background, settings: func(s *MixingSettings) { s.BGMOffset = -1e15 }},
		{name: "huge trim", background: background, settings: func(s *MixingSettings) { s.TrimEndSec = ptr(1e15) }},
		{name: "trim just past limit", background: background, settings: func(s *MixingSettings) { s.TrimEndSec = ptr(10.5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultMixingSettings()
			tt.settings(&s)

			out, err := svc.ExportMixToWAV(context.Background(), narration, tt.background, nil, s)
			assert.Nil(t, out)
			require.ErrorIs(t, err, ErrMixing)
			var audioErr *AudioError
			require.ErrorAs(t, err, &audioErr)
			assert.Equal(t, "duration", audioErr.Source)
		})
	}

	s := DefaultMixingSettings()
	s.TrimEndSec = ptr(10)
	out, err := svc.ExportMixToWAV(context.Background(), narration, background, nil, s)
	require.NoError(t, err)
	assert.Equal(t, 80000, out.Frames)
}
