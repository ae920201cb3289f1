// Package store journals games and the battles fought in them.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/qnkhuat/battlechess/pkg/battle"
	"github.com/qnkhuat/battlechess/pkg/config"
	"github.com/qnkhuat/battlechess/pkg/rules"
)

var ErrUnknownGame = errors.New("unknown game")

// Game is one game played in a match, from start (or reset) to reset or
// match close.
type Game struct {
	ID        uint   `gorm:"primaryKey"`
	MatchID   string `gorm:"index"`
	StartedAt time.Time
	EndedAt   *time.Time
	Outcome   string
	Method    string
	PGN       string
	Moves     int
}

func (Game) TableName() string { return "games" }

// Battle is a capture, recorded when it is triggered. StartedAt is set once
// the battle becomes the active one, which for a queued battle is later than
// QueuedAt.
type Battle struct {
	ID           uint   `gorm:"primaryKey"`
	GameID       uint   `gorm:"index"`
	Seq          uint64 `gorm:"index"`
	AttackerKind string
	AttackerSide string
	AttackerFrom string
	DefenderKind string
	DefenderSide string
	DefenderAt   string
	SAN          string
	QueuedAt     time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

func (Battle) TableName() string { return "battles" }

func battleFromRecord(gameID uint, rec battle.Record, at time.Time) Battle {
	b := Battle{
		GameID:       gameID,
		Seq:          rec.ID,
		AttackerKind: rules.KindName(rec.Attacker.Piece.Kind),
		AttackerSide: rules.SideName(rec.Attacker.Piece.Side),
		AttackerFrom: rec.Attacker.From,
		DefenderKind: rules.KindName(rec.Defender.Piece.Kind),
		DefenderSide: rules.SideName(rec.Defender.Piece.Side),
		DefenderAt:   rec.Defender.At,
		SAN:          rec.Move.SAN,
		QueuedAt:     at,
	}
	if rec.Active {
		b.StartedAt = &at
	}
	return b
}

// GameResult is what a game ends with.
type GameResult struct {
	Outcome string
	Method  string
	PGN     string
	Moves   int
}

// Journal is implemented by every storage backend.
type Journal interface {
	StartGame(matchID string) (uint, error)
	RecordBattle(gameID uint, rec battle.Record) error
	StartBattle(gameID uint, seq uint64) error
	CompleteBattle(gameID uint, seq uint64) error
	EndGame(gameID uint, res GameResult) error

	Games() ([]Game, error)
	Battles(gameID uint) ([]Battle, error)

	Close() error
}

// New creates the backend named in cfg.
func New(cfg config.StoreConfig, log zerolog.Logger) (Journal, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
