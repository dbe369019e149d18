package audio

import "math"

const (
	// rampFloor is the "near-zero" end point of fades; exponential ramps cannot reach zero.
	rampFloor = 1e-4
	// windowDuckAttack is how long before narration starts the window ducker begins to dip.
	windowDuckAttack = 0.1
	// envelopeDuckAttack is the gain smoothing time when the envelope ducker engages.
	envelopeDuckAttack = 0.01
)

// ramp interpolates between from and to at progress p in [0,1].
func ramp(curve FadeCurve, from, to, p float64) float64 {
	if p <= 0 {
		return from
	}
	if p >= 1 {
		return to
	}
	if curve == FadeLinear {
		return from + (to-from)*p
	}
	return from * math.Pow(to/from, p)
}

// dbToGain converts a level in dB to a linear gain.
func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// fadeEnvelope computes the background fade factor for a frame.
type fadeEnvelope struct {
	curve        FadeCurve
	start, end   int
	fadeInEnd    int
	fadeOutStart int
}

func newFadeEnvelope(tl Timeline, s MixingSettings) fadeEnvelope {
	env := fadeEnvelope{
		curve:        s.FadeCurve,
		start:        tl.BackgroundStart,
		end:          tl.BackgroundEnd,
		fadeInEnd:    tl.BackgroundStart,
		fadeOutStart: tl.BackgroundEnd,
	}
	if s.FadeIn > 0 {
		env.fadeInEnd = tl.BackgroundStart + int(math.Round(s.FadeIn*float64(tl.SampleRate)))
	}
	if s.FadeOut > 0 {
		env.fadeOutStart = max(tl.BackgroundStart, tl.BackgroundEnd-int(math.Round(s.FadeOut*float64(tl.SampleRate))))
	}
	return env
}

// Factor returns the fade multiplier at frame i. Outside fades it is exactly 1.
func (f fadeEnvelope) Factor(i int) float64 {
	factor := 1.0
	if i >= f.start && i < f.fadeInEnd {
		factor *= ramp(f.curve, rampFloor, 1, float64(i-f.start)/float64(f.fadeInEnd-f.start))
	}
	if i >= f.fadeOutStart && i < f.end {
		factor *= ramp(f.curve, 1, rampFloor, float64(i-f.fadeOutStart)/float64(f.end-f.fadeOutStart))
	}
	return factor
}

// ducker yields the background attenuation for consecutive frames.
// Factor must be called once per frame in increasing order.
type ducker interface {
	Factor(i int) float64
}

type noDucker struct{}

func (noDucker) Factor(int) float64 { return 1 }

// windowDucker dips the background to depth over a short attack ending at
// narration start, holds it while narration plays and recovers over release.
type windowDucker struct {
	depth                  float64
	attackStart, holdStart int
	holdEnd, releaseEnd    int
}

func (w windowDucker) Factor(i int) float64 {
	switch {
	case i < w.attackStart || i >= w.releaseEnd:
		return 1
	case i < w.holdStart:
		return ramp(FadeLinear, 1, w.depth, float64(i-w.attackStart)/float64(w.holdStart-w.attackStart))
	case i < w.holdEnd:
		return w.depth
	default:
		return ramp(FadeLinear, w.depth, 1, float64(i-w.holdEnd)/float64(w.releaseEnd-w.holdEnd))
	}
}

// envelopeDucker follows the peak level of the narration and ducks the
// background while it stays above the threshold.
type envelopeDucker struct {
	narration   *Buffer
	start       int
	gainIn      float64
	threshold   float64
	depth       float64
	releaseCoef float64
	attackCoef  float64

	env  float64
	gain float64
}

func (e *envelopeDucker) Factor(i int) float64 {
	level := 0.0
	if j := i - e.start; j >= 0 && j < e.narration.Frames() {
		level = math.Max(math.Abs(e.narration.At(0, j)), math.Abs(e.narration.At(1, j))) * e.gainIn
	}

	if level > e.env {
		e.env = level
	} else {
		e.env *= e.releaseCoef
	}

	target := 1.0
	if e.env > e.threshold {
		target = e.depth
	}

	coef := e.releaseCoef
	if target < e.gain {
		coef = e.attackCoef
	}
	e.gain = target + (e.gain-target)*coef
	return e.gain
}

// smoothingCoef is the one-pole coefficient for a time constant in seconds.
func smoothingCoef(seconds float64, sampleRate int) float64 {
	if seconds <= 0 {
		return 0
	}
	return math.Exp(-1 / (seconds * float64(sampleRate)))
}

func newDucker(tl Timeline, narration *Buffer, s MixingSettings) ducker {
	if !s.DuckingEnabled || !tl.HasBackground {
		return noDucker{}
	}
	depth := dbToGain(s.DuckDB)

	if s.DuckMode == DuckEnvelope {
		return &envelopeDucker{
			narration:   narration,
			start:       tl.NarrationStart,
			gainIn:      s.TTSGain,
			threshold:   dbToGain(s.DuckThreshold),
			depth:       depth,
			releaseCoef: smoothingCoef(s.DuckRelease, tl.SampleRate),
			attackCoef:  smoothingCoef(envelopeDuckAttack, tl.SampleRate),
			gain:        1,
		}
	}

	attack := int(math.Round(windowDuckAttack * float64(tl.SampleRate)))
	release := int(math.Round(s.DuckRelease * float64(tl.SampleRate)))
	return windowDucker{
		depth:       depth,
		attackStart: tl.NarrationStart - attack,
		holdStart:   tl.NarrationStart,
		holdEnd:     tl.NarrationEnd,
		releaseEnd:  tl.NarrationEnd + release,
	}
}
