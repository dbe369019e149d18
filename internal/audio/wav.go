package audio

import (
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// EncodedAudio is an encoded PCM WAV file plus the bookkeeping callers need.
type EncodedAudio struct {
	Data       []byte
	SampleRate int
	Channels   int
	Frames     int
	// Duration is the length in seconds.
	Duration float64
}

// EncodeWAV writes a stream as 16-bit signed PCM WAV.
// Stereo streams are written as two channels; mono format folds both channels.
func EncodeWAV(s beep.Streamer, format Format) ([]byte, error) {
	ws := &memWriteSeeker{}
	if err := wav.Encode(ws, s, format.beep()); err != nil {
		return nil, NewEncodeError("wav", err)
	}
	return ws.buf, nil
}

// EncodeBuffer writes a buffer as 16-bit signed PCM WAV keeping its channel count.
func EncodeBuffer(b *Buffer) (*EncodedAudio, error) {
	channels := ChannelCount(b.Channels())
	data, err := EncodeWAV(b.Streamer(), Format{SampleRate: SampleRate(b.SampleRate), Channels: channels})
	if err != nil {
		return nil, err
	}
	return &EncodedAudio{
		Data:       data,
		SampleRate: b.SampleRate,
		Channels:   int(channels),
		Frames:     b.Frames(),
		Duration:   b.Seconds(),
	}, nil
}

// memWriteSeeker is an in-memory io.WriteSeeker; the WAV encoder seeks back to patch chunk sizes.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += n
	return n, nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	m.pos = int(abs)
	return abs, nil
}
