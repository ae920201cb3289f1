// Package session binds one game's rules oracle, battle sequencer, camera
// and journal together. Battle transitions drive the camera; the journal
// records every game and battle.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/qnkhuat/battlechess/pkg/battle"
	"github.com/qnkhuat/battlechess/pkg/camera"
	"github.com/qnkhuat/battlechess/pkg/rules"
	"github.com/qnkhuat/battlechess/pkg/store"
)

// Snapshot is everything a client needs to draw the game.
type Snapshot struct {
	Status  battle.Status    `json:"status"`
	State   string           `json:"state"`
	Battle  *battle.Record   `json:"battle,omitempty"`
	Pending int              `json:"pending"`
	Camera  camera.ViewState `json:"camera"`
}

type Option func(*Session)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithJournal records games and battles under matchID.
func WithJournal(j store.Journal, matchID string) Option {
	return func(s *Session) {
		s.journal = j
		s.matchID = matchID
	}
}

// WithListener forwards battle transitions to l after the session has
// reacted to them. l must not call back into the session.
func WithListener(l battle.Listener) Option {
	return func(s *Session) {
		s.listeners = append(s.listeners, l)
	}
}

type Session struct {
	// mu serializes every call that reaches the oracle.
	mu sync.Mutex

	oracle    *rules.Oracle
	sequencer *battle.Sequencer
	viewport  *camera.OrbitViewport
	engine    *camera.Engine

	journal store.Journal
	matchID string
	gameID  uint
	ended   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool

	listeners []battle.Listener
	log       zerolog.Logger
}

func New(cfg camera.Config, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		oracle:   rules.NewOracle(),
		viewport: camera.NewOrbitViewport(cfg.DefaultPose),
		ctx:      ctx,
		cancel:   cancel,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("match", s.matchID).Logger()
	s.engine = camera.NewEngine(s.viewport, cfg, camera.WithEngineLogger(s.log))
	s.sequencer = battle.NewSequencer(s.oracle, battle.WithLogger(s.log), battle.WithListener(s))
	s.startGame()
	return s
}

// OnCamera registers fn to receive every camera frame. fn must not call back
// into the session.
func (s *Session) OnCamera(fn func(camera.ViewState)) {
	s.viewport.OnUpdate(fn)
}

// SubmitMove reports whether the move was applied.
func (s *Session) SubmitMove(from, to, promotion string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	applied := s.sequencer.SubmitMove(from, to, promotion)
	if applied && s.oracle.IsGameOver() {
		s.endGame()
	}
	return applied
}

// CompleteBattle finishes the active battle if its ID matches. A zero id
// matches any active battle.
func (s *Session) CompleteBattle(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	cur := s.sequencer.Current()
	if cur == nil || (id != 0 && cur.ID != id) {
		return false
	}
	return s.sequencer.CompleteBattle()
}

// ResetGame closes the current game in the journal and starts a new one.
func (s *Session) ResetGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if cur := s.sequencer.Current(); cur != nil {
		s.completeBattle(cur.ID)
	}
	s.endGame()
	s.sequencer.ResetGame()
	s.startGame()
}

// Turn is the side to move in the live position, which runs ahead of the
// snapshot's status while a battle is presented.
func (s *Session) Turn() chess.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oracle.Turn()
}

func (s *Session) IsBattleActive() bool {
	return s.sequencer.IsBattleActive()
}

func (s *Session) CurrentBattle() *battle.Record {
	return s.sequencer.Current()
}

func (s *Session) LegalMoves(square string) ([]rules.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequencer.LegalMoves(square)
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Status:  s.sequencer.Status(),
		State:   s.sequencer.State().String(),
		Battle:  s.sequencer.Current(),
		Pending: s.sequencer.QueueDepth(),
		Camera:  s.viewport.State(),
	}
}

func (s *Session) Camera() camera.ViewState {
	return s.viewport.State()
}

// GameID is the journal ID of the game in progress, 0 without a journal.
func (s *Session) GameID() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

// WaitCamera blocks until every camera transition started so far has
// finished or been superseded.
func (s *Session) WaitCamera() {
	s.wg.Wait()
}

// Close snaps the camera to its final pose and ends the game in the journal.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.endGame()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Session) startGame() {
	if s.journal == nil {
		return
	}
	id, err := s.journal.StartGame(s.matchID)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to journal game start")
		return
	}
	s.gameID = id
	s.ended = false
}

func (s *Session) endGame() {
	if s.journal == nil || s.gameID == 0 || s.ended {
		return
	}
	s.ended = true
	res := store.GameResult{
		Outcome: s.oracle.Outcome(),
		Method:  s.oracle.Method(),
		PGN:     s.oracle.PGN(),
		Moves:   len(s.oracle.History()),
	}
	if err := s.journal.EndGame(s.gameID, res); err != nil {
		s.log.Error().Err(err).Uint("game", s.gameID).Msg("Failed to journal game end")
	}
}

// animate registers the transition begin returns before handing it to a
// goroutine, so transitions supersede each other in the order they were
// requested.
func (s *Session) animate(begin func() *camera.Transition) {
	if s.ctx.Err() != nil {
		return
	}
	tr := begin()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.engine.Run(s.ctx, tr)
		if err != nil && !errors.Is(err, camera.ErrSuperseded) && !errors.Is(err, context.Canceled) {
			s.log.Warn().Err(err).Msg("Camera transition failed")
		}
	}()
}

func (s *Session) frame(rec battle.Record) {
	s.animate(func() *camera.Transition {
		tr, err := s.engine.BeginBattleView(rec.Attacker.From, rec.Defender.At)
		if err != nil {
			s.log.Warn().Err(err).Stringer("battle", rec).Msg("Cannot frame battle, using arena view")
			return s.engine.BeginArenaView()
		}
		return tr
	})
}

func (s *Session) BattleStarted(rec battle.Record) {
	s.log.Info().Stringer("battle", rec).Msg("Battle started")
	s.frame(rec)
	s.recordBattle(rec)
	for _, l := range s.listeners {
		l.BattleStarted(rec)
	}
}

func (s *Session) BattleQueued(rec battle.Record, depth int) {
	s.log.Debug().Stringer("battle", rec).Int("depth", depth).Msg("Battle queued")
	s.recordBattle(rec)
	for _, l := range s.listeners {
		l.BattleQueued(rec, depth)
	}
}

func (s *Session) BattleFinished(done battle.Record, next *battle.Record) {
	s.completeBattle(done.ID)
	if next != nil {
		s.frame(*next)
		if s.journaling() {
			if err := s.journal.StartBattle(s.gameID, next.ID); err != nil {
				s.log.Error().Err(err).Msg("Failed to journal battle start")
			}
		}
	} else {
		s.animate(s.engine.BeginBoardView)
	}
	for _, l := range s.listeners {
		l.BattleFinished(done, next)
	}
}

func (s *Session) GameReset() {
	s.animate(s.engine.BeginReset)
	for _, l := range s.listeners {
		l.GameReset()
	}
}

func (s *Session) journaling() bool {
	return s.journal != nil && s.gameID != 0
}

func (s *Session) recordBattle(rec battle.Record) {
	if !s.journaling() {
		return
	}
	if err := s.journal.RecordBattle(s.gameID, rec); err != nil {
		s.log.Error().Err(err).Msg("Failed to journal battle")
	}
}

func (s *Session) completeBattle(id uint64) {
	if !s.journaling() {
		return
	}
	if err := s.journal.CompleteBattle(s.gameID, id); err != nil {
		s.log.Error().Err(err).Msg("Failed to journal battle completion")
	}
}
