// Package preview plays a mix through a real-time sink while it is being edited.
package preview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

// State is the playback state of a Player.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StateStopped State = "stopped"
)

// ErrNoNarration is returned by Play when no narration is selected.
var ErrNoNarration = errors.New("select a narration before starting the preview")

// GraphBuilder builds the mixing graph; *audio.Service implements it.
type GraphBuilder interface {
	NewGraph(narration, background, effect *audio.Buffer, settings audio.MixingSettings) (*audio.Graph, error)
}

// Options tunes a Player.
type Options struct {
	// BlockFrames is the number of frames handed to the sink per write.
	BlockFrames int
	// Realtime paces writes to wall-clock time. Without it the graph is pushed as fast as the sink accepts it.
	Realtime bool
	// Now replaces time.Now for progress reporting and pacing.
	Now func() time.Time
}

// Status is a snapshot of the player.
type Status struct {
	State State `json:"state"`
	// Progress is the elapsed share of the mix in percent.
	Progress float64 `json:"progress"`
	// Duration is the length of the current mix in seconds.
	Duration float64 `json:"duration"`
}

// Player drives a single live preview. Starting a new preview replaces the
// running one; there is no pause, stopping always rewinds.
type Player struct {
	builder GraphBuilder
	newSink func() Sink
	opts    Options

	// control serialises Play and Stop so a session is never replaced while
	// another caller is still tearing it down.
	control sync.Mutex

	mu       sync.Mutex
	state    State
	duration float64
	started  time.Time
	cancel   context.CancelFunc
	done     chan struct{}
	session  uint64
}

// NewPlayer creates an idle player writing to sinks made by newSink.
func NewPlayer(builder GraphBuilder, newSink func() Sink, opts Options) *Player {
	if opts.BlockFrames <= 0 {
		opts.BlockFrames = 1024
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Player{
		builder: builder,
		newSink: newSink,
		opts:    opts,
		state:   StateIdle,
	}
}

// Play builds a fresh graph and starts streaming it. A running preview is stopped first.
// Playback outlives ctx; use Stop to end it.
func (p *Player) Play(ctx context.Context, narration, background *audio.Buffer, settings audio.MixingSettings) error {
	if narration == nil || narration.Frames() == 0 {
		return ErrNoNarration
	}

	graph, err := p.builder.NewGraph(narration, background, nil, settings)
	if err != nil {
		return err
	}

	p.control.Lock()
	defer p.control.Unlock()

	p.stopLocked()

	rate := graph.Timeline().SampleRate
	sink := p.newSink()
	if err := sink.Open(rate); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	p.mu.Lock()
	p.session++
	session := p.session
	p.state = StatePlaying
	p.duration = graph.Timeline().Duration()
	p.started = p.opts.Now()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go p.run(runCtx, session, graph, sink, rate, done)
	return nil
}

// Stop tears down the running preview and resets progress. It is a no-op unless playing.
// When Stop returns no sink is written to anymore.
func (p *Player) Stop() {
	p.control.Lock()
	defer p.control.Unlock()
	p.stopLocked()
}

// stopLocked stops the running session. The caller holds p.control.
func (p *Player) stopLocked() {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	p.state = StateStopped
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	cancel()
	<-done
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Progress returns the elapsed share of the mix in percent, or 0 when not playing.
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progressLocked()
}

// Status returns state, progress and duration together.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{State: p.state, Progress: p.progressLocked(), Duration: p.duration}
}

func (p *Player) progressLocked() float64 {
	if p.state != StatePlaying || p.duration <= 0 {
		return 0
	}
	elapsed := p.opts.Now().Sub(p.started).Seconds()
	return min(100, max(0, elapsed/p.duration*100))
}

func (p *Player) run(ctx context.Context, session uint64, graph *audio.Graph, sink Sink, rate int, done chan struct{}) {
	defer close(done)

	err := p.pump(ctx, graph, sink, rate)
	if closeErr := sink.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Preview playback failed: %v", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == session && p.state == StatePlaying {
		p.state = StateIdle
		p.cancel, p.done = nil, nil
	}
}

func (p *Player) pump(ctx context.Context, graph *audio.Graph, sink Sink, rate int) error {
	block := make([][2]float64, p.opts.BlockFrames)
	start := p.opts.Now()
	written := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, ok := graph.Stream(block)
		if n > 0 {
			if err := sink.Write(block[:n]); err != nil {
				return err
			}
			written += n
		}
		if !ok {
			return nil
		}

		if p.opts.Realtime {
			due := start.Add(time.Duration(float64(written) / float64(rate) * float64(time.Second)))
			if wait := due.Sub(p.opts.Now()); wait > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
		}
	}
}
