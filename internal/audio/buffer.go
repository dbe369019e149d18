package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
)

// resampleQuality is the beep interpolation quality used for rate conversion.
const resampleQuality = 4

// Buffer is a decoded block of audio samples at a fixed rate.
// Data holds one slice per channel (one or two channels), all of equal length.
// A Buffer is treated as immutable once decoded.
type Buffer struct {
	SampleRate int
	Data       [][]float64
}

// NewBuffer allocates a silent buffer.
func NewBuffer(sampleRate, channels, frames int) *Buffer {
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}
	return &Buffer{SampleRate: sampleRate, Data: data}
}

// Channels returns the number of channels.
func (b *Buffer) Channels() int {
	return len(b.Data)
}

// Frames returns the number of sample frames per channel.
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Seconds returns the buffer length in seconds.
func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Duration returns the buffer length.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// At returns the sample of channel ch at frame i.
// Mono buffers answer for both stereo channels.
func (b *Buffer) At(ch, i int) float64 {
	if ch >= len(b.Data) {
		ch = len(b.Data) - 1
	}
	return b.Data[ch][i]
}

// Streamer exposes the buffer as a stereo beep stream starting at frame 0.
func (b *Buffer) Streamer() beep.Streamer {
	return &bufferStreamer{buf: b}
}

// Resample converts the buffer to another sample rate.
// The receiver is returned unchanged when the rates already match.
func (b *Buffer) Resample(rate int) (*Buffer, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", rate)
	}
	if b.SampleRate == rate {
		return b, nil
	}
	resampler := beep.Resample(resampleQuality, beep.SampleRate(b.SampleRate), beep.SampleRate(rate), b.Streamer())
	return collect(resampler, rate, b.Channels())
}

type bufferStreamer struct {
	buf *Buffer
	pos int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	frames := s.buf.Frames()
	if s.pos >= frames {
		return 0, false
	}
	for n < len(samples) && s.pos < frames {
		samples[n][0] = s.buf.At(0, s.pos)
		samples[n][1] = s.buf.At(1, s.pos)
		n++
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error {
	return nil
}

// collect drains a beep stream into a new buffer with the given channel count.
func collect(s beep.Streamer, rate, channels int) (*Buffer, error) {
	if channels < 1 {
		channels = 1
	}
	if channels > 2 {
		channels = 2
	}
	out := &Buffer{SampleRate: rate, Data: make([][]float64, channels)}
	chunk := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			if channels == 1 {
				out.Data[0] = append(out.Data[0], frame[0])
				continue
			}
			out.Data[0] = append(out.Data[0], frame[0])
			out.Data[1] = append(out.Data[1], frame[1])
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
