// Package battle turns captures into one-at-a-time battle presentations while
// the rules oracle keeps advancing move by move.
package battle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/qnkhuat/battlechess/pkg/queue"
	"github.com/qnkhuat/battlechess/pkg/rules"
)

// ErrOracleFault wraps unexpected failures from the rules oracle, including
// recovered panics.
var ErrOracleFault = errors.New("rules oracle fault")

// Oracle is the rules engine the sequencer consults. *rules.Oracle
// satisfies it.
type Oracle interface {
	ApplyMove(from, to, promotion string) (*rules.MoveResult, error)
	Occupant(square string) (rules.PieceRef, bool)
	LegalMoves(square string) ([]rules.MoveResult, error)
	Turn() chess.Color
	IsCheck() bool
	IsCheckmate() bool
	IsDraw() bool
	IsGameOver() bool
	Outcome() string
	Method() string
	History() []string
	FEN() string
	Reset()
}

// Listener observes sequencer transitions. Callbacks run after the
// sequencer's lock is released, in the order the transitions happened.
type Listener interface {
	BattleStarted(rec Record)
	BattleQueued(rec Record, depth int)
	BattleFinished(done Record, next *Record)
	GameReset()
}

type Option func(*Sequencer)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Sequencer) {
		s.log = l.With().Str("component", "battle").Logger()
	}
}

func WithListener(l Listener) Option {
	return func(s *Sequencer) {
		s.listeners = append(s.listeners, l)
	}
}

type Sequencer struct {
	mu sync.Mutex

	oracle   Oracle
	current  *Record
	pending  *queue.Queue[*Record]
	status   Status
	lastMove *rules.MoveResult
	nextID   uint64

	listeners []Listener
	log       zerolog.Logger
	metrics   *metrics
}

func NewSequencer(oracle Oracle, opts ...Option) *Sequencer {
	s := &Sequencer{
		oracle:  oracle,
		pending: queue.New[*Record](),
		log:     zerolog.Nop(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mu.Lock()
	s.syncLocked()
	s.mu.Unlock()
	return s
}

// protect runs fn and converts a panic inside the oracle into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrOracleFault, r)
		}
	}()
	return fn()
}

// SubmitMove asks the oracle to play from->to. It reports whether the move
// was applied; rejected moves and oracle faults leave every field untouched.
func (s *Sequencer) SubmitMove(from, to, promotion string) bool {
	s.mu.Lock()
	applied, events := s.submitLocked(from, to, promotion)
	s.mu.Unlock()

	s.dispatch(events)
	return applied
}

func (s *Sequencer) submitLocked(from, to, promotion string) (bool, []func(Listener)) {
	log := s.log.With().Str("from", from).Str("to", to).Logger()

	if !rules.ValidSquare(from) || !rules.ValidSquare(to) {
		log.Debug().Msg("Rejected malformed square")
		s.metrics.move("rejected")
		return false, nil
	}

	var (
		mover, target rules.PieceRef
		occupied      bool
		result        *rules.MoveResult
	)
	err := protect(func() error {
		mover, _ = s.oracle.Occupant(from)
		target, occupied = s.oracle.Occupant(to)

		var err error
		result, err = s.oracle.ApplyMove(from, to, promotion)
		if err == nil && result == nil {
			return rules.ErrIllegalMove
		}
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, rules.ErrRejectedMove):
		log.Debug().Err(err).Msg("Move rejected")
		s.metrics.move("rejected")
		return false, nil
	default:
		log.Error().Err(err).Msg("Rules oracle failed, move not applied")
		s.metrics.move("fault")
		return false, nil
	}

	s.lastMove = result
	s.metrics.move("applied")

	if !occupied {
		s.syncLocked()
		return true, nil
	}

	s.nextID++
	rec := &Record{
		ID:       s.nextID,
		Attacker: Attacker{Piece: mover, From: result.From},
		Defender: Defender{Piece: target, At: result.To},
		Move:     *result,
	}
	log.Info().Stringer("battle", rec).Msg("Capture detected")
	return true, s.triggerLocked(rec)
}

// TriggerBattle activates rec immediately when no battle is active, and
// queues it otherwise.
func (s *Sequencer) TriggerBattle(rec Record) {
	s.mu.Lock()
	if rec.ID == 0 {
		s.nextID++
		rec.ID = s.nextID
	} else if rec.ID > s.nextID {
		s.nextID = rec.ID
	}
	events := s.triggerLocked(&rec)
	s.mu.Unlock()

	s.dispatch(events)
}

func (s *Sequencer) triggerLocked(rec *Record) []func(Listener) {
	s.metrics.battle()

	if s.current == nil {
		rec.Active = true
		s.current = rec
		started := *rec
		return []func(Listener){func(l Listener) { l.BattleStarted(started) }}
	}

	rec.Active = false
	s.pending.Push(rec)
	s.metrics.queueDelta(1)
	queued, depth := *rec, s.pending.Len()
	s.log.Debug().Uint64("battle", rec.ID).Int("depth", depth).Msg("Battle queued")
	return []func(Listener){func(l Listener) { l.BattleQueued(queued, depth) }}
}

// CompleteBattle ends the active presentation, refreshes the derived status
// and promotes the oldest queued battle. It returns false when no battle was
// active.
func (s *Sequencer) CompleteBattle() bool {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return false
	}

	s.syncLocked()

	done := *s.current
	done.Active = false

	var next *Record
	if rec, ok := s.pending.Pop(); ok {
		s.metrics.queueDelta(-1)
		rec.Active = true
		s.current = rec
		promoted := *rec
		next = &promoted
	} else {
		s.current = nil
	}
	s.log.Debug().Uint64("battle", done.ID).Bool("promoted", next != nil).Msg("Battle completed")
	s.mu.Unlock()

	s.dispatch([]func(Listener){func(l Listener) { l.BattleFinished(done, next) }})
	return true
}

// ResetGame returns the oracle to the starting position and drops every
// battle, active or queued.
func (s *Sequencer) ResetGame() {
	s.mu.Lock()
	if err := protect(func() error { s.oracle.Reset(); return nil }); err != nil {
		s.log.Error().Err(err).Msg("Rules oracle failed to reset")
	}
	s.current = nil
	s.metrics.queueDelta(-s.pending.Len())
	s.pending.Clear()
	s.lastMove = nil
	s.syncLocked()
	s.mu.Unlock()

	s.dispatch([]func(Listener){func(l Listener) { l.GameReset() }})
}

// syncLocked copies the oracle's observable state into s.status. A faulting
// oracle leaves the previous status in place.
func (s *Sequencer) syncLocked() {
	var st Status
	err := protect(func() error {
		st = Status{
			FEN:       s.oracle.FEN(),
			Turn:      rules.SideName(s.oracle.Turn()),
			Check:     s.oracle.IsCheck(),
			Checkmate: s.oracle.IsCheckmate(),
			Draw:      s.oracle.IsDraw(),
			GameOver:  s.oracle.IsGameOver(),
			Outcome:   s.oracle.Outcome(),
			Method:    s.oracle.Method(),
			History:   s.oracle.History(),
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Rules oracle failed during status sync")
		return
	}
	if st.History == nil {
		st.History = []string{}
	}
	if s.lastMove != nil {
		last := *s.lastMove
		st.LastMove = &last
	}
	s.status = st
}

func (s *Sequencer) dispatch(events []func(Listener)) {
	for _, ev := range events {
		for _, l := range s.listeners {
			ev(l)
		}
	}
}

func (s *Sequencer) IsBattleActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Idle
	}
	return Active
}

// Current returns a copy of the active battle, or nil when idle.
func (s *Sequencer) Current() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	rec := *s.current
	return &rec
}

// Pending returns copies of the queued battles, oldest first.
func (s *Sequencer) Pending() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	queued := s.pending.Snapshot()
	out := make([]Record, len(queued))
	for i, rec := range queued {
		out[i] = *rec
	}
	return out
}

func (s *Sequencer) QueueDepth() int {
	return s.pending.Len()
}

func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	st.History = make([]string, len(s.status.History))
	copy(st.History, s.status.History)
	return st
}

// LegalMoves passes through to the oracle for move highlighting.
func (s *Sequencer) LegalMoves(square string) ([]rules.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var moves []rules.MoveResult
	err := protect(func() error {
		var err error
		moves, err = s.oracle.LegalMoves(square)
		return err
	})
	return moves, err
}
