package audio

import (
	"errors"
	"fmt"
)

// Graph is the mixing signal graph rendered as a stereo beep stream.
//
//	narration  -> tts gain ----------------------------------\
//	                                                          +-> master gain -> out
//	background -> low shelf -> peaking -> high shelf -> gain -/
//
// The background gain combines bgm_gain, the fade envelope and the ducker.
// The same graph drives offline export and live preview; it is consumed once.
type Graph struct {
	tl         Timeline
	narration  *Buffer
	background *Buffer
	settings   MixingSettings

	eq   *EQ
	fade fadeEnvelope
	duck ducker

	pos int
}

// NewGraph validates the inputs and builds a graph at sampleRate that lasts at
// most maxSeconds. Buffers must already be at sampleRate. The effect buffer is reserved and
// contributes nothing: the effect path gain is forced to zero.
func NewGraph(sampleRate int, maxSeconds float64, narration, background, effect *Buffer, s MixingSettings) (*Graph, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if narration == nil || narration.Frames() == 0 {
		return nil, NewMixingError("narration", errors.New("narration buffer is required"))
	}
	if narration.SampleRate != sampleRate {
		return nil, NewMixingError("narration", fmt.Errorf("sample rate %d does not match render rate %d", narration.SampleRate, sampleRate))
	}
	if background != nil && background.Frames() == 0 {
		background = nil
	}
	if background != nil && background.SampleRate != sampleRate {
		return nil, NewMixingError("background", fmt.Errorf("sample rate %d does not match render rate %d", background.SampleRate, sampleRate))
	}

	tl, err := NewTimeline(sampleRate, maxSeconds, narration, background, s)
	if err != nil {
		return nil, err
	}

	return &Graph{
		tl:         tl,
		narration:  narration,
		background: background,
		settings:   s,
		eq:         NewEQ(sampleRate, s),
		fade:       newFadeEnvelope(tl, s),
		duck:       newDucker(tl, narration, s),
	}, nil
}

// Timeline returns the track placement of the graph.
func (g *Graph) Timeline() Timeline {
	return g.tl
}

// Len returns the total number of frames the graph renders.
func (g *Graph) Len() int {
	return g.tl.Frames
}

// Position returns the number of frames rendered so far.
func (g *Graph) Position() int {
	return g.pos
}

// Stream renders the next frames into samples.
func (g *Graph) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.tl.Frames {
		return 0, false
	}
	for n < len(samples) && g.pos < g.tl.Frames {
		samples[n] = g.frame(g.pos)
		n++
		g.pos++
	}
	return n, true
}

// Err always returns nil; rendering cannot fail once the graph is built.
func (g *Graph) Err() error {
	return nil
}

func (g *Graph) frame(i int) [2]float64 {
	var out [2]float64
	s := &g.settings

	if j := i - g.tl.NarrationStart; j >= 0 && j < g.narration.Frames() {
		out[0] = g.narration.At(0, j) * s.TTSGain
		out[1] = g.narration.At(1, j) * s.TTSGain
	}

	// The ducker keeps per-frame state and must see every frame.
	duck := g.duck.Factor(i)

	if g.background != nil && s.BGMGain > 0 && i >= g.tl.BackgroundStart && i < g.tl.BackgroundEnd {
		k := i - g.tl.BackgroundStart
		if k >= g.background.Frames() {
			if s.LoopBackground {
				k %= g.background.Frames()
			} else {
				k = -1
			}
		}

		gain := s.BGMGain * g.fade.Factor(i) * duck
		for ch := range out {
			var x float64
			if k >= 0 {
				x = g.background.At(ch, k)
			}
			out[ch] += g.eq.Process(ch, x) * gain
		}
	}

	out[0] *= s.MasterGain
	out[1] *= s.MasterGain
	return out
}
