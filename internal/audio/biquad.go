package audio

import "math"

// Fixed background EQ bands.
const (
	LowShelfFrequency   = 100.0
	MidPeakingFrequency = 1000.0
	MidPeakingQ         = 1.0
	HighShelfFrequency  = 8000.0
)

// Biquad is a second order IIR filter in direct form I.
// Coefficients follow the RBJ audio EQ cookbook as used by Web Audio's BiquadFilterNode.
// State is kept per channel; a Biquad must not be shared between streams.
type Biquad struct {
	b0, b1, b2, a1, a2 float64
	state              [2]biquadState
	bypass             bool
}

type biquadState struct {
	x1, x2, y1, y2 float64
}

// NewLowShelf returns a low-shelf filter with the given corner and gain.
// A corner at or above Nyquist shelves the whole band.
func NewLowShelf(sampleRate, freq, gainDB float64) *Biquad {
	if gainDB == 0 {
		return &Biquad{bypass: true}
	}
	a := math.Pow(10, gainDB/40)
	if freq >= sampleRate/2 {
		return newBiquad(a*a, 0, 0, 1, 0, 0)
	}
	w0 := 2 * math.Pi * freq / sampleRate
	cosW, sinW := math.Cos(w0), math.Sin(w0)
	alpha := sinW / 2 * math.Sqrt2
	sqrtA2 := 2 * math.Sqrt(a) * alpha

	return newBiquad(
		a*((a+1)-(a-1)*cosW+sqrtA2),
		2*a*((a-1)-(a+1)*cosW),
		a*((a+1)-(a-1)*cosW-sqrtA2),
		(a+1)+(a-1)*cosW+sqrtA2,
		-2*((a-1)+(a+1)*cosW),
		(a+1)+(a-1)*cosW-sqrtA2,
	)
}

// NewHighShelf returns a high-shelf filter with the given corner and gain.
// A corner at or above Nyquist leaves the signal untouched.
func NewHighShelf(sampleRate, freq, gainDB float64) *Biquad {
	if gainDB == 0 || freq >= sampleRate/2 {
		return &Biquad{bypass: true}
	}
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosW, sinW := math.Cos(w0), math.Sin(w0)
	alpha := sinW / 2 * math.Sqrt2
	sqrtA2 := 2 * math.Sqrt(a) * alpha

	return newBiquad(
		a*((a+1)+(a-1)*cosW+sqrtA2),
		-2*a*((a-1)+(a+1)*cosW),
		a*((a+1)+(a-1)*cosW-sqrtA2),
		(a+1)-(a-1)*cosW+sqrtA2,
		2*((a-1)-(a+1)*cosW),
		(a+1)-(a-1)*cosW-sqrtA2,
	)
}

// NewPeaking returns a peaking filter centred on freq.
func NewPeaking(sampleRate, freq, q, gainDB float64) *Biquad {
	if gainDB == 0 || freq >= sampleRate/2 {
		return &Biquad{bypass: true}
	}
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosW, sinW := math.Cos(w0), math.Sin(w0)
	alpha := sinW / (2 * q)

	return newBiquad(
		1+alpha*a,
		-2*cosW,
		1-alpha*a,
		1+alpha/a,
		-2*cosW,
		1-alpha/a,
	)
}

func newBiquad(b0, b1, b2, a0, a1, a2 float64) *Biquad {
	return &Biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// Process filters one sample of channel ch.
func (f *Biquad) Process(ch int, x float64) float64 {
	if f.bypass {
		return x
	}
	s := &f.state[ch]
	y := f.b0*x + f.b1*s.x1 + f.b2*s.x2 - f.a1*s.y1 - f.a2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y
	return y
}

// EQ is the fixed three band equaliser applied to the background path.
type EQ struct {
	bands [3]*Biquad
}

// NewEQ builds the low-shelf, mid-peaking and high-shelf chain for the settings.
func NewEQ(sampleRate int, s MixingSettings) *EQ {
	rate := float64(sampleRate)
	return &EQ{bands: [3]*Biquad{
		NewLowShelf(rate, LowShelfFrequency, s.LowShelf),
		NewPeaking(rate, MidPeakingFrequency, MidPeakingQ, s.MidPeaking),
		NewHighShelf(rate, HighShelfFrequency, s.HighShelf),
	}}
}

// Process runs one sample of channel ch through all bands in order.
func (e *EQ) Process(ch int, x float64) float64 {
	for _, band := range e.bands {
		x = band.Process(ch, x)
	}
	return x
}
