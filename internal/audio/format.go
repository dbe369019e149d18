package audio

import "github.com/gopxl/beep/v2"

// SampleRate represents audio sample rate in Hz
type SampleRate int

// Sample rates for audio processing.
const (
	// SampleRate44100 represents CD-quality audio at 44.1 kHz
	SampleRate44100 SampleRate = 44100
	// SampleRate48000 represents professional audio at 48 kHz
	SampleRate48000 SampleRate = 48000
)

// ChannelCount represents number of audio channels
type ChannelCount int

// Channel configurations.
const (
	// Mono represents single-channel audio
	Mono ChannelCount = 1
	// Stereo represents dual-channel audio
	Stereo ChannelCount = 2
)

// pcm16Precision is the byte width of a 16-bit signed PCM sample.
const pcm16Precision = 2

// Format defines the layout of an encoded PCM container.
type Format struct {
	SampleRate SampleRate
	Channels   ChannelCount
}

// FormatMixWAV is the format of exported mixes at the given rate (stereo, 16-bit PCM).
func FormatMixWAV(rate SampleRate) Format {
	return Format{SampleRate: rate, Channels: Stereo}
}

// beep converts the format into the encoder's representation.
func (f Format) beep() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(f.SampleRate),
		NumChannels: int(f.Channels),
		Precision:   pcm16Precision,
	}
}

// ContentTypeWAV is the MIME type of encoded output.
const ContentTypeWAV = "audio/wav"
