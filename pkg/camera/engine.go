// Package camera animates a viewport between an overview of the board and
// close-up framings of a capture.
package camera

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrSuperseded is returned by a transition that a newer one replaced.
var ErrSuperseded = errors.New("camera transition superseded")

// Kind decides what a transition does to the viewport's interaction
// controller.
type Kind int

const (
	// KindZoom leaves interaction untouched.
	KindZoom Kind = iota
	// KindBattle disables interaction when it starts.
	KindBattle
	// KindBoard re-enables interaction when it completes.
	KindBoard
)

func (k Kind) String() string {
	switch k {
	case KindZoom:
		return "zoom"
	case KindBattle:
		return "battle"
	case KindBoard:
		return "board"
	default:
		return "unknown"
	}
}

// Transition is a single eased move from Start to Target.
type Transition struct {
	Start     Pose
	Target    Pose
	Duration  time.Duration
	StartedAt time.Time
	Kind      Kind

	gen    uint64
	unlock bool
}

// Progress is the clamped fraction of Duration elapsed at now.
func (t *Transition) Progress(now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	return Clamp01(float64(now.Sub(t.StartedAt)) / float64(t.Duration))
}

// PoseAt returns the eased pose at now and the raw progress.
func (t *Transition) PoseAt(now time.Time) (Pose, float64) {
	p := t.Progress(now)
	return t.Start.Lerp(t.Target, Ease(p)), p
}

type EngineOption func(*Engine)

func WithEngineLogger(l zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l.With().Str("component", "camera").Logger()
	}
}

// WithNow replaces the wall clock sampled each frame.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock.now = now
	}
}

// Engine is the sole writer of its viewport's pose while a transition runs.
// Starting a transition supersedes the one in flight: the new one starts
// from whatever pose the viewport holds at that moment, and the old one
// stops at its next frame.
type Engine struct {
	mu       sync.Mutex
	viewport Viewport
	cfg      Config
	clock    *FrameClock
	gen      uint64
	current  *Transition
	log      zerolog.Logger
}

func NewEngine(vp Viewport, cfg Config, opts ...EngineOption) *Engine {
	e := &Engine{
		viewport: vp,
		cfg:      cfg,
		clock:    NewFrameClock(cfg.FrameInterval),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Viewport() Viewport {
	return e.viewport
}

// Begin registers a transition toward target without driving any frames.
func (e *Engine) Begin(target Pose, d time.Duration, kind Kind) *Transition {
	e.mu.Lock()
	defer e.mu.Unlock()

	unlock := kind == KindBoard
	if e.current != nil {
		e.log.Debug().Stringer("from", e.current.Kind).Stringer("to", kind).Msg("Superseding camera transition")
		// A zoom cutting short a return to the board owes the unlock.
		if kind == KindZoom && e.current.unlock {
			unlock = true
		}
	}
	e.gen++
	tr := &Transition{
		Start:     Pose{Position: e.viewport.Position(), LookAt: e.viewport.Target()},
		Target:    target,
		Duration:  d,
		StartedAt: e.clock.Now(),
		Kind:      kind,
		gen:       e.gen,
		unlock:    unlock,
	}
	if kind == KindBattle {
		e.viewport.SetEnabled(false)
	}
	e.current = tr
	return tr
}

// Step renders the frame of tr at now. It reports done once progress has
// reached 1, and ErrSuperseded if tr is no longer current.
func (e *Engine) Step(tr *Transition, now time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tr.gen != e.gen {
		return false, ErrSuperseded
	}
	pose, p := tr.PoseAt(now)
	e.applyLocked(pose)
	if p >= 1 {
		e.finishLocked(tr)
		return true, nil
	}
	return false, nil
}

// Run drives tr one frame per tick until it completes, is superseded or ctx
// ends. A cancelled transition that is still current snaps to its target so
// the viewport is never left locked mid-flight.
func (e *Engine) Run(ctx context.Context, tr *Transition) error {
	if done, err := e.Step(tr, e.clock.Now()); done || err != nil {
		return err
	}

	ticker := e.clock.NewTicker()
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return e.abort(tr, ctx.Err())
		case <-ticker.C:
			if done, err := e.Step(tr, e.clock.Now()); done || err != nil {
				return err
			}
		}
	}
}

// AnimateTo starts a transition toward target and blocks until it finishes.
func (e *Engine) AnimateTo(ctx context.Context, target Pose, d time.Duration, kind Kind) error {
	return e.Run(ctx, e.Begin(target, d, kind))
}

func (e *Engine) abort(tr *Transition, cause error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tr.gen != e.gen {
		return ErrSuperseded
	}
	e.applyLocked(tr.Target)
	e.finishLocked(tr)
	return cause
}

func (e *Engine) applyLocked(p Pose) {
	e.viewport.SetPosition(p.Position)
	e.viewport.SetTarget(p.LookAt)
	e.viewport.Update()
}

func (e *Engine) finishLocked(tr *Transition) {
	if tr.unlock {
		e.viewport.SetEnabled(true)
	}
	e.current = nil
	e.log.Debug().Stringer("kind", tr.Kind).Stringer("pose", tr.Target).Msg("Camera transition complete")
}

// Busy reports whether a transition is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// Current returns a copy of the in-flight transition, or nil.
func (e *Engine) Current() *Transition {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	tr := *e.current
	return &tr
}
