package session

import (
	"sync"
	"testing"
	"time"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qnkhuat/battlechess/pkg/battle"
	"github.com/qnkhuat/battlechess/pkg/camera"
	"github.com/qnkhuat/battlechess/pkg/store"
)

func fastCamera() camera.Config {
	cfg := camera.DefaultConfig()
	cfg.TransitionDuration = 5 * time.Millisecond
	cfg.ZoomDuration = 5 * time.Millisecond
	cfg.FrameInterval = time.Millisecond
	return cfg
}

func newTestSession(t *testing.T) (*Session, *store.Memory) {
	t.Helper()
	j := store.NewMemory()
	s := New(fastCamera(), WithJournal(j, "test-match"))
	t.Cleanup(s.Close)
	return s, j
}

func play(t *testing.T, s *Session, moves ...[2]string) {
	t.Helper()
	for _, m := range moves {
		require.True(t, s.SubmitMove(m[0], m[1], ""), "%s-%s", m[0], m[1])
	}
}

func TestCaptureFramesBattle(t *testing.T) {
	s, _ := newTestSession(t)
	cfg := fastCamera()

	play(t, s, [2]string{"e2", "e4"}, [2]string{"d7", "d5"})
	assert.False(t, s.IsBattleActive())

	play(t, s, [2]string{"e4", "d5"})
	require.True(t, s.IsBattleActive())
	assert.False(t, s.Camera().Enabled, "interaction is locked as soon as the battle starts")

	s.WaitCamera()
	want, err := cfg.BattlePose("e4", "d5")
	require.NoError(t, err)
	assert.Equal(t, want, s.Camera().Pose)
	assert.False(t, s.Camera().Enabled)

	snap := s.Snapshot()
	assert.Equal(t, "active", snap.State)
	require.NotNil(t, snap.Battle)
	assert.Equal(t, "d5", snap.Battle.Defender.At)
	assert.Equal(t, "white", snap.Status.Turn)
}

func TestCompleteBattleReturnsToBoard(t *testing.T) {
	s, _ := newTestSession(t)
	play(t, s, [2]string{"e2", "e4"}, [2]string{"d7", "d5"}, [2]string{"e4", "d5"})
	id := s.CurrentBattle().ID

	assert.False(t, s.CompleteBattle(id+1), "stale battle id is ignored")
	assert.True(t, s.IsBattleActive())

	require.True(t, s.CompleteBattle(id))
	assert.False(t, s.IsBattleActive())
	s.WaitCamera()
	assert.Equal(t, fastCamera().DefaultPose, s.Camera().Pose)
	assert.True(t, s.Camera().Enabled)
	assert.Equal(t, "black", s.Snapshot().Status.Turn)

	assert.False(t, s.CompleteBattle(0))
}

func TestQueuedBattleReframes(t *testing.T) {
	s, _ := newTestSession(t)
	cfg := fastCamera()
	play(t, s,
		[2]string{"e2", "e4"}, [2]string{"d7", "d5"},
		[2]string{"e4", "d5"}, [2]string{"d8", "d5"},
	)
	assert.Equal(t, 1, s.Snapshot().Pending)

	require.True(t, s.CompleteBattle(0))
	require.True(t, s.IsBattleActive())
	s.WaitCamera()

	want, err := cfg.BattlePose("d8", "d5")
	require.NoError(t, err)
	assert.Equal(t, want, s.Camera().Pose)
	assert.False(t, s.Camera().Enabled)
}

func TestJournal(t *testing.T) {
	s, j := newTestSession(t)
	play(t, s, [2]string{"e2", "e4"}, [2]string{"d7", "d5"}, [2]string{"e4", "d5"})
	first := s.GameID()
	require.NotZero(t, first)
	require.True(t, s.CompleteBattle(0))

	battles, err := j.Battles(first)
	require.NoError(t, err)
	require.Len(t, battles, 1)
	assert.Equal(t, "exd5", battles[0].SAN)
	assert.NotNil(t, battles[0].CompletedAt)

	s.ResetGame()
	assert.NotEqual(t, first, s.GameID())

	games, err := j.Games()
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.NotNil(t, games[0].EndedAt)
	assert.Equal(t, 3, games[0].Moves)
	assert.Nil(t, games[1].EndedAt)
}

func TestJournalStartsQueuedBattleOnPromotion(t *testing.T) {
	s, j := newTestSession(t)
	play(t, s,
		[2]string{"e2", "e4"}, [2]string{"d7", "d5"},
		[2]string{"e4", "d5"}, [2]string{"d8", "d5"},
	)

	battles, err := j.Battles(s.GameID())
	require.NoError(t, err)
	require.Len(t, battles, 2)
	assert.NotNil(t, battles[0].StartedAt)
	assert.Nil(t, battles[1].StartedAt, "queued battle has not started yet")

	require.True(t, s.CompleteBattle(0))
	battles, err = j.Battles(s.GameID())
	require.NoError(t, err)
	assert.NotNil(t, battles[0].CompletedAt)
	require.NotNil(t, battles[1].StartedAt)
	assert.Nil(t, battles[1].CompletedAt)
}

func TestResetClosesActiveBattleInJournal(t *testing.T) {
	s, j := newTestSession(t)
	play(t, s, [2]string{"e2", "e4"}, [2]string{"d7", "d5"}, [2]string{"e4", "d5"})
	first := s.GameID()
	require.True(t, s.IsBattleActive())

	s.ResetGame()

	battles, err := j.Battles(first)
	require.NoError(t, err)
	require.Len(t, battles, 1)
	assert.NotNil(t, battles[0].CompletedAt)
}

func TestCheckmateEndsGameInJournal(t *testing.T) {
	s, j := newTestSession(t)
	play(t, s,
		[2]string{"f2", "f3"}, [2]string{"e7", "e5"},
		[2]string{"g2", "g4"}, [2]string{"d8", "h4"},
	)
	assert.True(t, s.Snapshot().Status.Checkmate)

	games, err := j.Games()
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "0-1", games[0].Outcome)
	assert.NotNil(t, games[0].EndedAt)
}

func TestResetUnlocksCamera(t *testing.T) {
	s, _ := newTestSession(t)
	play(t, s, [2]string{"e2", "e4"}, [2]string{"d7", "d5"}, [2]string{"e4", "d5"})
	require.False(t, s.Camera().Enabled)

	s.ResetGame()
	assert.False(t, s.IsBattleActive())
	s.WaitCamera()
	assert.Equal(t, fastCamera().DefaultPose, s.Camera().Pose)
	assert.True(t, s.Camera().Enabled)
	assert.Empty(t, s.Snapshot().Status.History)
}

func TestOnCamera(t *testing.T) {
	s, _ := newTestSession(t)
	var (
		mu     sync.Mutex
		frames []camera.ViewState
	)
	s.OnCamera(func(v camera.ViewState) {
		mu.Lock()
		frames = append(frames, v)
		mu.Unlock()
	})

	play(t, s, [2]string{"e2", "e4"}, [2]string{"d7", "d5"}, [2]string{"e4", "d5"})
	s.WaitCamera()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, frames)
	assert.Equal(t, s.Camera(), frames[len(frames)-1])
}

func TestClose(t *testing.T) {
	j := store.NewMemory()
	s := New(fastCamera(), WithJournal(j, "m"))
	play(t, s, [2]string{"e2", "e4"})

	s.Close()
	s.Close()
	assert.False(t, s.SubmitMove("e7", "e5", ""))

	games, err := j.Games()
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.NotNil(t, games[0].EndedAt)
	assert.Equal(t, "*", games[0].Outcome)
}

func TestLegalMoves(t *testing.T) {
	s, _ := newTestSession(t)
	moves, err := s.LegalMoves("g1")
	require.NoError(t, err)
	assert.Len(t, moves, 2)
}

type countingListener struct {
	mu                               sync.Mutex
	started, queued, finished, reset int
}

func (c *countingListener) BattleStarted(battle.Record) {
	c.mu.Lock()
	c.started++
	c.mu.Unlock()
}

func (c *countingListener) BattleQueued(battle.Record, int) {
	c.mu.Lock()
	c.queued++
	c.mu.Unlock()
}

func (c *countingListener) BattleFinished(battle.Record, *battle.Record) {
	c.mu.Lock()
	c.finished++
	c.mu.Unlock()
}

func (c *countingListener) GameReset() {
	c.mu.Lock()
	c.reset++
	c.mu.Unlock()
}

func TestListenerForwarding(t *testing.T) {
	l := &countingListener{}
	s := New(fastCamera(), WithListener(l))
	t.Cleanup(s.Close)

	play(t, s,
		[2]string{"e2", "e4"}, [2]string{"d7", "d5"},
		[2]string{"e4", "d5"}, [2]string{"d8", "d5"},
	)
	require.True(t, s.CompleteBattle(0))
	s.ResetGame()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Equal(t, 1, l.started)
	assert.Equal(t, 1, l.queued)
	assert.Equal(t, 1, l.finished)
	assert.Equal(t, 1, l.reset)
	assert.Equal(t, chess.White, s.Turn())
}
