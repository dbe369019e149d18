package audio

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaxMixSeconds bounds a mix when no limit is configured.
const DefaultMaxMixSeconds = 3600.0

// Timeline places narration and background on a shared clock. All positions are in frames.
type Timeline struct {
	SampleRate int

	NarrationStart int
	NarrationEnd   int

	HasBackground   bool
	BackgroundStart int
	// BackgroundEnd is where the background stops, from trim_end_sec or its natural length.
	BackgroundEnd int

	Frames int
}

// NewTimeline computes track placement for a mix.
//
// Offsets are relative: with a background present the narration starts
// tts_offset - bgm_offset seconds after the background (or the background
// that much after the narration when negative), and whichever starts first is
// placed at zero. Without a background only a positive tts_offset delays the
// narration.
//
// The mix may not run longer than maxSeconds; zero or less selects
// DefaultMaxMixSeconds. The bound is checked in seconds before any position
// is converted to frames.
func NewTimeline(sampleRate int, maxSeconds float64, narration, background *Buffer, s MixingSettings) (Timeline, error) {
	if narration == nil {
		return Timeline{}, NewMixingError("narration", errors.New("narration buffer is required"))
	}
	if sampleRate <= 0 {
		return Timeline{}, NewMixingError("sample_rate", errors.New("sample rate must be positive"))
	}
	if maxSeconds <= 0 {
		maxSeconds = DefaultMaxMixSeconds
	}
	if end := timelineEndSeconds(sampleRate, narration, background, s); !(end <= maxSeconds) {
		return Timeline{}, NewMixingError("duration", fmt.Errorf("mix would last %.3gs, limit is %gs", end, maxSeconds))
	}

	tl := Timeline{SampleRate: sampleRate}

	if background == nil {
		tl.NarrationStart = tl.frame(math.Max(0, s.TTSOffset))
		tl.NarrationEnd = tl.NarrationStart + narration.Frames()
		tl.Frames = tl.NarrationEnd
	} else {
		shift := s.TTSOffset - s.BGMOffset
		tl.HasBackground = true
		tl.NarrationStart = tl.frame(math.Max(0, shift))
		tl.NarrationEnd = tl.NarrationStart + narration.Frames()
		tl.BackgroundStart = tl.frame(math.Max(0, -shift))

		if s.TrimEndSec != nil {
			tl.BackgroundEnd = max(tl.frame(*s.TrimEndSec), tl.BackgroundStart)
		} else {
			tl.BackgroundEnd = tl.BackgroundStart + background.Frames()
		}
		tl.Frames = max(tl.NarrationEnd, tl.BackgroundEnd)
	}

	if tl.Frames <= 0 {
		return Timeline{}, NewMixingError("duration", errors.New("mix has zero length"))
	}
	return tl, nil
}

// timelineEndSeconds mirrors NewTimeline's placement in seconds.
func timelineEndSeconds(sampleRate int, narration, background *Buffer, s MixingSettings) float64 {
	rate := float64(sampleRate)
	narrationLen := float64(narration.Frames()) / rate
	if background == nil {
		return math.Max(0, s.TTSOffset) + narrationLen
	}

	shift := s.TTSOffset - s.BGMOffset
	backgroundStart := math.Max(0, -shift)
	backgroundEnd := backgroundStart + float64(background.Frames())/rate
	if s.TrimEndSec != nil {
		backgroundEnd = math.Max(*s.TrimEndSec, backgroundStart)
	}
	return math.Max(math.Max(0, shift)+narrationLen, backgroundEnd)
}

// Seconds converts a frame position to seconds.
func (tl Timeline) Seconds(frame int) float64 {
	return float64(frame) / float64(tl.SampleRate)
}

// Duration is the total mix length in seconds.
func (tl Timeline) Duration() float64 {
	return tl.Seconds(tl.Frames)
}

func (tl Timeline) frame(seconds float64) int {
	return int(math.Round(seconds * float64(tl.SampleRate)))
}
