// Package audio provides decoding, mixing and WAV export of narration and background audio.
package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/oszuidwest/zwfm-mixdown/internal/config"
)

// Service renders mixes and concatenations at a fixed sample rate.
type Service struct {
	decoder    *Decoder
	sampleRate int
	maxSeconds float64
}

// NewService creates a new audio processing service.
func NewService(cfg *config.AudioConfig) *Service {
	return &Service{
		decoder: NewDecoder(cfg.SampleRate, FetchPolicy{
			Timeout:      cfg.FetchTimeout,
			MaxBytes:     cfg.MaxFetchBytes,
			AllowedHosts: cfg.FetchAllowedHosts,
			AllowPrivate: cfg.FetchAllowPrivate,
		}),
		sampleRate: cfg.SampleRate,
		maxSeconds: cfg.MixMaxSeconds,
	}
}

// SampleRate returns the render rate of exported mixes.
func (s *Service) SampleRate() int {
	return s.sampleRate
}

// DecodeToBuffer fetches and decodes a source at the render rate.
func (s *Service) DecodeToBuffer(ctx context.Context, src Source) (*Buffer, error) {
	return s.decoder.DecodeToBuffer(ctx, src)
}

// NewGraph builds the mixing graph at the render rate, resampling inputs where needed.
func (s *Service) NewGraph(narration, background, effect *Buffer, settings MixingSettings) (*Graph, error) {
	if narration == nil {
		return nil, NewMixingError("narration", errors.New("narration buffer is required"))
	}
	narration, err := narration.Resample(s.sampleRate)
	if err != nil {
		return nil, NewMixingError("narration", err)
	}
	if background != nil {
		if background, err = background.Resample(s.sampleRate); err != nil {
			return nil, NewMixingError("background", err)
		}
	}
	return NewGraph(s.sampleRate, s.maxSeconds, narration, background, effect, settings)
}

// Render runs the mixing graph offline and returns the stereo result with its timeline.
// The context is checked between blocks; a cancelled render returns no output.
func (s *Service) Render(ctx context.Context, narration, background, effect *Buffer, settings MixingSettings) (*Buffer, Timeline, error) {
	g, err := s.NewGraph(narration, background, effect, settings)
	if err != nil {
		return nil, Timeline{}, err
	}

	out := NewBuffer(s.sampleRate, int(Stereo), g.Len())
	block := make([][2]float64, 4096)
	for pos := 0; ; {
		if err := ctx.Err(); err != nil {
			return nil, Timeline{}, NewMixingError("render", err)
		}
		n, ok := g.Stream(block)
		for i, frame := range block[:n] {
			out.Data[0][pos+i] = frame[0]
			out.Data[1][pos+i] = frame[1]
		}
		pos += n
		if !ok {
			break
		}
	}
	return out, g.Timeline(), nil
}

// ExportMixToWAV renders narration over the optional background and encodes
// the result as stereo 16-bit PCM WAV. Inputs are never modified.
func (s *Service) ExportMixToWAV(ctx context.Context, narration, background, effect *Buffer, settings MixingSettings) (*EncodedAudio, error) {
	rendered, tl, err := s.Render(ctx, narration, background, effect, settings)
	if err != nil {
		return nil, err
	}

	data, err := EncodeWAV(rendered.Streamer(), FormatMixWAV(SampleRate(s.sampleRate)))
	if err != nil {
		return nil, err
	}

	return &EncodedAudio{
		Data:       data,
		SampleRate: s.sampleRate,
		Channels:   int(Stereo),
		Frames:     tl.Frames,
		Duration:   tl.Duration(),
	}, nil
}

// ConcatenateAudios decodes the blobs in order and joins them without gap into one WAV.
// The output keeps the widest channel layout of its members.
func (s *Service) ConcatenateAudios(ctx context.Context, blobs [][]byte) (*EncodedAudio, error) {
	if len(blobs) == 0 {
		return nil, NewConcatenationError("chunks", errors.New("no audio to concatenate"))
	}

	buffers := make([]*Buffer, 0, len(blobs))
	channels, frames := 1, 0
	for i, blob := range blobs {
		buf, err := s.decoder.DecodeToBuffer(ctx, BlobSource(fmt.Sprintf("chunk %d", i), blob))
		if err != nil {
			return nil, NewConcatenationError(fmt.Sprintf("chunk %d", i), err)
		}
		buffers = append(buffers, buf)
		channels = max(channels, buf.Channels())
		frames += buf.Frames()
	}

	joined := NewBuffer(s.sampleRate, channels, frames)
	offset := 0
	for _, buf := range buffers {
		for ch := range joined.Data {
			for i := range buf.Frames() {
				joined.Data[ch][offset+i] = buf.At(ch, i)
			}
		}
		offset += buf.Frames()
	}

	out, err := EncodeBuffer(joined)
	if err != nil {
		return nil, NewConcatenationError("output", err)
	}
	return out, nil
}
