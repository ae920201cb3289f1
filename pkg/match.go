package pkg

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/qnkhuat/battlechess/pkg/battle"
	"github.com/qnkhuat/battlechess/pkg/camera"
	"github.com/qnkhuat/battlechess/pkg/session"
	"github.com/qnkhuat/battlechess/pkg/store"
)

const MessageQueueSize = 20

type MatchConfig struct {
	Camera       camera.Config
	AutoComplete time.Duration
	Journal      store.Journal
	Log          zerolog.Logger
}

// Match hosts one game and the connections watching it. Everything touching
// players or the session runs on the match loop.
type Match struct {
	Id string

	session *session.Session
	players map[int]*Player

	in       chan MessageTransport
	join     chan *Player
	leave    chan int
	autoDone chan uint64
	frames   chan struct{}
	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once

	autoComplete time.Duration
	autoTimer    *time.Timer

	numPlayers atomic.Int32
	lastActive atomic.Int64

	log zerolog.Logger
}

func NewMatch(id string, cfg MatchConfig) *Match {
	m := &Match{
		Id:           id,
		players:      make(map[int]*Player),
		in:           make(chan MessageTransport, MessageQueueSize),
		join:         make(chan *Player),
		leave:        make(chan int),
		autoDone:     make(chan uint64),
		frames:       make(chan struct{}, 1),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
		autoComplete: cfg.AutoComplete,
		log:          cfg.Log.With().Str("match", id).Logger(),
	}
	opts := []session.Option{session.WithLogger(cfg.Log), session.WithListener(m)}
	if cfg.Journal != nil {
		opts = append(opts, session.WithJournal(cfg.Journal, id))
	}
	m.session = session.New(cfg.Camera, opts...)
	m.session.OnCamera(func(camera.ViewState) {
		select {
		case m.frames <- struct{}{}:
		default:
		}
	})
	m.touch()
	go m.Run()
	return m
}

func (m *Match) touch() {
	m.lastActive.Store(time.Now().UnixNano())
}

// Idle reports whether nobody is connected and nothing happened for d.
func (m *Match) Idle(d time.Duration) bool {
	if m.numPlayers.Load() > 0 {
		return false
	}
	return time.Since(time.Unix(0, m.lastActive.Load())) > d
}

func (m *Match) NumPlayers() int {
	return int(m.numPlayers.Load())
}

// AddPlayer seats p and serves its connection until it closes. It blocks.
func (m *Match) AddPlayer(p *Player) {
	select {
	case m.join <- p:
	case <-m.quit:
		p.Disconnect()
		return
	}
	p.HandleRead(func(t MessageTransport) bool {
		select {
		case m.in <- t:
			return true
		case <-m.quit:
			return false
		}
	})
	select {
	case m.leave <- p.Id:
	case <-m.quit:
	}
}

// Close disconnects everyone and ends the game in the journal.
func (m *Match) Close() {
	m.quitOnce.Do(func() { close(m.quit) })
	<-m.done
}

func (m *Match) Run() {
	defer close(m.done)
	for {
		select {
		case p := <-m.join:
			m.seat(p)
		case id := <-m.leave:
			m.unseat(id)
		case t := <-m.in:
			m.touch()
			m.handle(t)
		case id := <-m.autoDone:
			if m.session.CompleteBattle(id) {
				m.log.Info().Uint64("battle", id).Msg("Battle auto-completed")
				m.broadcastGame()
			}
		case <-m.frames:
			m.broadcast(MessageCamera{View: m.session.Camera()})
		case <-m.quit:
			m.stopAutoTimer()
			for id := range m.players {
				m.unseat(id)
			}
			m.session.Close()
			m.log.Info().Msg("Match closed")
			return
		}
	}
}

func (m *Match) seat(p *Player) {
	taken := map[PlayerColor]bool{}
	for _, other := range m.players {
		taken[other.Color] = true
	}
	switch {
	case p.Color == Viewer:
	case !taken[White]:
		p.Color = White
	case !taken[Black]:
		p.Color = Black
	default:
		p.Color = Viewer
	}
	m.players[p.Id] = p
	m.numPlayers.Store(int32(len(m.players)))
	m.touch()

	m.log.Info().Int("player", p.Id).Str("name", p.Name).Stringer("color", p.Color).Msg("Player joined")
	p.Send(MessageConnect{
		MatchId: m.Id,
		Color:   p.Color,
		Game:    m.session.Snapshot(),
		IsTurn:  m.isTurn(p),
	})
}

func (m *Match) unseat(id int) {
	p, ok := m.players[id]
	if !ok {
		return
	}
	delete(m.players, id)
	m.numPlayers.Store(int32(len(m.players)))
	m.touch()
	p.Disconnect()
	m.log.Info().Int("player", id).Stringer("color", p.Color).Msg("Player left")
}

func (m *Match) isTurn(p *Player) bool {
	side, ok := p.Color.Side()
	return ok && side == m.session.Turn()
}

func (m *Match) handle(t MessageTransport) {
	p, ok := m.players[t.PlayerId]
	if !ok {
		return
	}
	msg, err := Decode(t)
	if err != nil {
		m.log.Warn().Err(err).Int("player", p.Id).Msg("Undecodable message")
		p.Send(MessageReject{Reason: err.Error()})
		return
	}

	switch msg := msg.(type) {
	case *MessageMove:
		if p.Color == Viewer {
			p.Send(MessageReject{Reason: "viewers cannot move"})
			return
		}
		if !m.isTurn(p) {
			p.Send(MessageReject{Reason: "not your turn"})
			return
		}
		if !m.session.SubmitMove(msg.From, msg.To, msg.Promotion) {
			p.Send(MessageReject{Reason: "illegal move " + msg.From + msg.To})
			return
		}
		m.broadcastGame()

	case *MessageBattleDone:
		if p.Color == Viewer {
			return
		}
		if m.session.CompleteBattle(msg.BattleId) {
			m.broadcastGame()
			return
		}
		m.log.Debug().Uint64("battle", msg.BattleId).Msg("Ignoring stale battle completion")

	case *MessageReset:
		if p.Color == Viewer {
			p.Send(MessageReject{Reason: "viewers cannot reset"})
			return
		}
		m.session.ResetGame()
		m.broadcastGame()

	case *MessageLegalMoves:
		moves, err := m.session.LegalMoves(msg.Square)
		if err != nil {
			p.Send(MessageReject{Reason: err.Error()})
			return
		}
		p.Send(MessageLegalMoves{Square: msg.Square, Moves: moves})

	default:
		m.log.Debug().Stringer("type", t.MsgType).Msg("Unexpected message")
	}
}

func (m *Match) broadcast(msg MessageInterface) {
	for _, p := range m.players {
		p.Send(msg)
	}
}

func (m *Match) broadcastGame() {
	snap := m.session.Snapshot()
	turn := m.session.Turn()
	for _, p := range m.players {
		side, ok := p.Color.Side()
		p.Send(MessageGame{Game: snap, IsTurn: ok && side == turn})
	}
}

func (m *Match) armAutoTimer(id uint64) {
	m.stopAutoTimer()
	if m.autoComplete <= 0 {
		return
	}
	m.autoTimer = time.AfterFunc(m.autoComplete, func() {
		select {
		case m.autoDone <- id:
		case <-m.quit:
		}
	})
}

func (m *Match) stopAutoTimer() {
	if m.autoTimer != nil {
		m.autoTimer.Stop()
		m.autoTimer = nil
	}
}

// battle.Listener, called on the match loop from inside session calls.

func (m *Match) BattleStarted(rec battle.Record) {
	m.broadcast(MessageBattle{Event: BattleStarted, Battle: rec, Pending: m.session.Snapshot().Pending})
	m.armAutoTimer(rec.ID)
}

func (m *Match) BattleQueued(rec battle.Record, depth int) {
	m.broadcast(MessageBattle{Event: BattleQueued, Battle: rec, Pending: depth})
}

func (m *Match) BattleFinished(done battle.Record, next *battle.Record) {
	m.stopAutoTimer()
	m.broadcast(MessageBattle{Event: BattleFinished, Battle: done, Next: next, Pending: m.session.Snapshot().Pending})
	if next != nil {
		m.armAutoTimer(next.ID)
	}
}

func (m *Match) GameReset() {
	m.stopAutoTimer()
}
