package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qnkhuat/battlechess/pkg/battle"
)

// SQLite persists the journal through GORM. An empty path opens a shared
// in-memory database.
type SQLite struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time
}

func OpenSQLite(path string, log zerolog.Logger) (*SQLite, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if err := db.AutoMigrate(&Game{}, &Battle{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	log = log.With().Str("component", "store").Logger()
	log.Info().Str("path", path).Msg("Using SQLite journal")
	return &SQLite{db: db, log: log, now: time.Now}, nil
}

func (s *SQLite) StartGame(matchID string) (uint, error) {
	g := Game{MatchID: matchID, StartedAt: s.now(), Outcome: "*"}
	if err := s.db.Create(&g).Error; err != nil {
		return 0, fmt.Errorf("start game: %w", err)
	}
	return g.ID, nil
}

func (s *SQLite) RecordBattle(gameID uint, rec battle.Record) error {
	var g Game
	if err := s.db.First(&g, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", ErrUnknownGame, gameID)
		}
		return err
	}
	b := battleFromRecord(gameID, rec, s.now())
	if err := s.db.Create(&b).Error; err != nil {
		return fmt.Errorf("record battle: %w", err)
	}
	return nil
}

func (s *SQLite) StartBattle(gameID uint, seq uint64) error {
	return s.db.Model(&Battle{}).
		Where("game_id = ? AND seq = ? AND started_at IS NULL", gameID, seq).
		Update("started_at", s.now()).Error
}

func (s *SQLite) CompleteBattle(gameID uint, seq uint64) error {
	return s.db.Model(&Battle{}).
		Where("game_id = ? AND seq = ? AND completed_at IS NULL", gameID, seq).
		Update("completed_at", s.now()).Error
}

func (s *SQLite) EndGame(gameID uint, res GameResult) error {
	tx := s.db.Model(&Game{}).Where("id = ?", gameID).Updates(map[string]interface{}{
		"ended_at": s.now(),
		"outcome":  res.Outcome,
		"method":   res.Method,
		"pgn":      res.PGN,
		"moves":    res.Moves,
	})
	if tx.Error != nil {
		return fmt.Errorf("end game: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrUnknownGame, gameID)
	}
	return nil
}

func (s *SQLite) Games() ([]Game, error) {
	var games []Game
	err := s.db.Order("id").Find(&games).Error
	return games, err
}

func (s *SQLite) Battles(gameID uint) ([]Battle, error) {
	var battles []Battle
	err := s.db.Where("game_id = ?", gameID).Order("seq").Find(&battles).Error
	return battles, err
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
