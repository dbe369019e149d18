package audio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-mixdown/internal/config"
)

// pcmTolerance covers one 16-bit quantization step on each side of a round trip.
const pcmTolerance = 2.0 / 32767

func newTestService(rate int) *Service {
	return NewService(&config.AudioConfig{
		SampleRate:    rate,
		FetchTimeout:  5 * time.Second,
		MaxFetchBytes: 10 << 20,
	})
}

// constant returns a buffer with every sample set to value.
func constant(rate, channels int, seconds, value float64) *Buffer {
	b := NewBuffer(rate, channels, int(math.Round(seconds*float64(rate))))
	for ch := range b.Data {
		for i := range b.Data[ch] {
			b.Data[ch][i] = value
		}
	}
	return b
}

// tone returns a sine at freq Hz with the given amplitude.
func tone(rate, channels int, seconds, freq, amp float64) *Buffer {
	b := NewBuffer(rate, channels, int(math.Round(seconds*float64(rate))))
	for ch := range b.Data {
		for i := range b.Data[ch] {
			b.Data[ch][i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		}
	}
	return b
}

// ramped returns a mono buffer whose sample i is i/frames.
func ramped(rate int, seconds float64) *Buffer {
	b := NewBuffer(rate, 1, int(math.Round(seconds*float64(rate))))
	for i := range b.Data[0] {
		b.Data[0][i] = float64(i) / float64(len(b.Data[0]))
	}
	return b
}

func wavBytes(t *testing.T, b *Buffer) []byte {
	t.Helper()
	enc, err := EncodeBuffer(b)
	require.NoError(t, err)
	return enc.Data
}

func clone(b *Buffer) *Buffer {
	out := &Buffer{SampleRate: b.SampleRate, Data: make([][]float64, len(b.Data))}
	for ch := range b.Data {
		out.Data[ch] = append([]float64(nil), b.Data[ch]...)
	}
	return out
}

func flat(s MixingSettings) MixingSettings {
	s.DuckingEnabled = false
	s.FadeIn, s.FadeOut = 0, 0
	s.LowShelf, s.MidPeaking, s.HighShelf = 0, 0, 0
	return s
}

func ptr(v float64) *float64 {
	return &v
}
