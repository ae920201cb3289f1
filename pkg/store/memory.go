package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/qnkhuat/battlechess/pkg/battle"
)

// Memory keeps the journal in process. It is lost on exit.
type Memory struct {
	mu      sync.RWMutex
	games   []Game
	battles map[uint][]Battle
	nextID  uint
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		battles: make(map[uint][]Battle),
		now:     time.Now,
	}
}

func (m *Memory) game(id uint) (*Game, error) {
	for i := range m.games {
		if m.games[i].ID == id {
			return &m.games[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownGame, id)
}

func (m *Memory) StartGame(matchID string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.games = append(m.games, Game{ID: m.nextID, MatchID: matchID, StartedAt: m.now(), Outcome: "*"})
	return m.nextID, nil
}

func (m *Memory) RecordBattle(gameID uint, rec battle.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.game(gameID); err != nil {
		return err
	}
	b := battleFromRecord(gameID, rec, m.now())
	b.ID = uint(len(m.battles[gameID]) + 1)
	m.battles[gameID] = append(m.battles[gameID], b)
	return nil
}

func (m *Memory) StartBattle(gameID uint, seq uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	battles := m.battles[gameID]
	for i := range battles {
		if battles[i].Seq == seq && battles[i].StartedAt == nil {
			at := m.now()
			battles[i].StartedAt = &at
			return nil
		}
	}
	return nil
}

func (m *Memory) CompleteBattle(gameID uint, seq uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	battles := m.battles[gameID]
	for i := range battles {
		if battles[i].Seq == seq && battles[i].CompletedAt == nil {
			at := m.now()
			battles[i].CompletedAt = &at
			return nil
		}
	}
	return nil
}

func (m *Memory) EndGame(gameID uint, res GameResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.game(gameID)
	if err != nil {
		return err
	}
	at := m.now()
	g.EndedAt = &at
	g.Outcome = res.Outcome
	g.Method = res.Method
	g.PGN = res.PGN
	g.Moves = res.Moves
	return nil
}

func (m *Memory) Games() ([]Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Game, len(m.games))
	copy(out, m.games)
	return out, nil
}

func (m *Memory) Battles(gameID uint) ([]Battle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Battle, len(m.battles[gameID]))
	copy(out, m.battles[gameID])
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
