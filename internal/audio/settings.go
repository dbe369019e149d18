package audio

import (
	"fmt"
	"math"
)

// DuckMode selects how the background is attenuated under narration.
type DuckMode string

const (
	// DuckWindow applies a fixed envelope around the narration start and end.
	DuckWindow DuckMode = "window"
	// DuckEnvelope follows the narration level against DuckThreshold.
	DuckEnvelope DuckMode = "envelope"
)

// FadeCurve selects the shape of background fades.
type FadeCurve string

const (
	FadeExponential FadeCurve = "exponential"
	FadeLinear      FadeCurve = "linear"
)

// MixingSettings configures a single mix. Gains are linear multipliers,
// EQ and duck depth are in dB, times and offsets are in seconds.
type MixingSettings struct {
	TTSGain    float64 `json:"tts_gain" yaml:"tts_gain" binding:"gte=0"`
	BGMGain    float64 `json:"bgm_gain" yaml:"bgm_gain" binding:"gte=0"`
	EffectGain float64 `json:"effect_gain" yaml:"effect_gain" binding:"gte=0"`
	MasterGain float64 `json:"master_gain" yaml:"master_gain" binding:"gte=0"`

	FadeIn    float64   `json:"fade_in" yaml:"fade_in" binding:"gte=0"`
	FadeOut   float64   `json:"fade_out" yaml:"fade_out" binding:"gte=0"`
	FadeCurve FadeCurve `json:"fade_curve,omitempty" yaml:"fade_curve"`

	LowShelf   float64 `json:"low_shelf" yaml:"low_shelf"`
	MidPeaking float64 `json:"mid_peaking" yaml:"mid_peaking"`
	HighShelf  float64 `json:"high_shelf" yaml:"high_shelf"`

	DuckingEnabled bool     `json:"ducking_enabled" yaml:"ducking_enabled"`
	DuckMode       DuckMode `json:"duck_mode,omitempty" yaml:"duck_mode"`
	DuckDB         float64  `json:"duck_db" yaml:"duck_db"`
	DuckThreshold  float64  `json:"duck_threshold" yaml:"duck_threshold"`
	DuckRelease    float64  `json:"duck_release" yaml:"duck_release" binding:"gte=0"`

	BGMOffset float64 `json:"bgm_offset" yaml:"bgm_offset"`
	TTSOffset float64 `json:"tts_offset" yaml:"tts_offset"`
	// TrimEndSec ends the background at this absolute time when set.
	TrimEndSec     *float64 `json:"trim_end_sec,omitempty" yaml:"trim_end_sec"`
	LoopBackground bool     `json:"loop_background" yaml:"loop_background"`
}

// DefaultMixingSettings returns unity gains, a flat EQ and ducking disabled.
func DefaultMixingSettings() MixingSettings {
	return MixingSettings{
		TTSGain:       1.0,
		BGMGain:       0.3,
		MasterGain:    1.0,
		FadeCurve:     FadeExponential,
		DuckMode:      DuckWindow,
		DuckDB:        -12,
		DuckThreshold: -40,
		DuckRelease:   0.5,
	}
}

// Validate checks the settings invariants. It returns a MixingError naming the offending field.
func (s MixingSettings) Validate() error {
	nonNegative := []struct {
		field string
		value float64
	}{
		{"tts_gain", s.TTSGain},
		{"bgm_gain", s.BGMGain},
		{"effect_gain", s.EffectGain},
		{"master_gain", s.MasterGain},
		{"fade_in", s.FadeIn},
		{"fade_out", s.FadeOut},
		{"duck_release", s.DuckRelease},
	}
	for _, f := range nonNegative {
		if !isFinite(f.value) || f.value < 0 {
			return NewMixingError(f.field, fmt.Errorf("must be a finite non-negative number, got %v", f.value))
		}
	}

	finite := []struct {
		field string
		value float64
	}{
		{"low_shelf", s.LowShelf},
		{"mid_peaking", s.MidPeaking},
		{"high_shelf", s.HighShelf},
		{"duck_db", s.DuckDB},
		{"duck_threshold", s.DuckThreshold},
		{"bgm_offset", s.BGMOffset},
		{"tts_offset", s.TTSOffset},
	}
	for _, f := range finite {
		if !isFinite(f.value) {
			return NewMixingError(f.field, fmt.Errorf("must be finite, got %v", f.value))
		}
	}

	if s.DuckDB > 0 {
		return NewMixingError("duck_db", fmt.Errorf("must be zero or negative, got %v", s.DuckDB))
	}

	if s.TrimEndSec != nil && (!isFinite(*s.TrimEndSec) || *s.TrimEndSec < 0) {
		return NewMixingError("trim_end_sec", fmt.Errorf("must be a finite non-negative number, got %v", *s.TrimEndSec))
	}

	switch s.DuckMode {
	case "", DuckWindow, DuckEnvelope:
	default:
		return NewMixingError("duck_mode", fmt.Errorf("unknown mode %q", s.DuckMode))
	}

	switch s.FadeCurve {
	case "", FadeExponential, FadeLinear:
	default:
		return NewMixingError("fade_curve", fmt.Errorf("unknown curve %q", s.FadeCurve))
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
