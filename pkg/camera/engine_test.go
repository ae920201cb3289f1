package camera

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func newTestEngine(t *testing.T) (*Engine, *OrbitViewport, *fakeClock) {
	t.Helper()
	cfg := DefaultConfig()
	vp := NewOrbitViewport(cfg.DefaultPose)
	clock := newFakeClock()
	return NewEngine(vp, cfg, WithNow(clock.Now)), vp, clock
}

var battlePose = Pose{
	Position: Vec3{X: -21, Y: 20, Z: 21},
	LookAt:   Vec3{X: 0, Y: 5, Z: 0},
}

func TestStep_InterpolatesAndArrives(t *testing.T) {
	e, vp, clock := newTestEngine(t)
	start := vp.State().Pose

	tr := e.Begin(battlePose, time.Second, KindZoom)
	assert.True(t, e.Busy())

	done, err := e.Step(tr, clock.Now())
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, start, vp.State().Pose)

	done, err = e.Step(tr, clock.Advance(500*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, done)
	half := vp.State().Pose
	assert.InDelta(t, (start.Position.Y+battlePose.Position.Y)/2, half.Position.Y, 1e-9)
	assert.InDelta(t, (start.LookAt.Y+battlePose.LookAt.Y)/2, half.LookAt.Y, 1e-9)

	done, err = e.Step(tr, clock.Advance(500*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, battlePose, vp.State().Pose)
	assert.False(t, e.Busy())
	assert.Equal(t, uint64(3), vp.Updates())
}

func TestStep_OvershootClamps(t *testing.T) {
	e, vp, clock := newTestEngine(t)

	tr := e.Begin(battlePose, 100*time.Millisecond, KindZoom)
	done, err := e.Step(tr, clock.Advance(10*time.Second))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, battlePose, vp.State().Pose)
}

func TestStep_EaseCurveApplied(t *testing.T) {
	e, vp, clock := newTestEngine(t)
	start := vp.State().Pose

	tr := e.Begin(battlePose, time.Second, KindZoom)
	_, err := e.Step(tr, clock.Advance(250*time.Millisecond))
	require.NoError(t, err)

	want := start.Position.Y + (battlePose.Position.Y-start.Position.Y)*Ease(0.25)
	assert.InDelta(t, want, vp.State().Pose.Position.Y, 1e-9)
}

func TestBegin_SupersedesFromCurrentPose(t *testing.T) {
	e, vp, clock := newTestEngine(t)

	first := e.Begin(battlePose, time.Second, KindBattle)
	_, err := e.Step(first, clock.Advance(500*time.Millisecond))
	require.NoError(t, err)
	midway := vp.State().Pose

	second := e.Begin(DefaultConfig().DefaultPose, time.Second, KindBoard)
	assert.Equal(t, midway, second.Start)

	before := vp.Updates()
	done, err := e.Step(first, clock.Advance(100*time.Millisecond))
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.False(t, done)
	assert.Equal(t, before, vp.Updates(), "stale transition must not touch the viewport")
	assert.Equal(t, midway, vp.State().Pose)

	done, err = e.Step(second, clock.Advance(time.Second))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, DefaultConfig().DefaultPose, vp.State().Pose)
	assert.True(t, vp.Enabled())
}

func TestInteractionLockPolicy(t *testing.T) {
	e, vp, clock := newTestEngine(t)
	require.True(t, vp.Enabled())

	tr := e.Begin(battlePose, time.Second, KindBattle)
	assert.False(t, vp.Enabled(), "battle transition disables interaction at start")
	_, err := e.Step(tr, clock.Advance(time.Second))
	require.NoError(t, err)
	assert.False(t, vp.Enabled(), "still locked after arriving at the battle framing")

	tr = e.Begin(battlePose, time.Second, KindZoom)
	_, err = e.Step(tr, clock.Advance(time.Second))
	require.NoError(t, err)
	assert.False(t, vp.Enabled(), "zoom leaves the lock alone")

	tr = e.Begin(DefaultConfig().DefaultPose, time.Second, KindBoard)
	assert.False(t, vp.Enabled(), "board transition unlocks only on completion")
	_, err = e.Step(tr, clock.Advance(500*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, vp.Enabled())
	_, err = e.Step(tr, clock.Advance(500*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, vp.Enabled())
}

func TestInteractionLock_ZoomInheritsUnlock(t *testing.T) {
	e, vp, clock := newTestEngine(t)

	tr := e.Begin(battlePose, time.Second, KindBattle)
	_, err := e.Step(tr, clock.Advance(time.Second))
	require.NoError(t, err)
	require.False(t, vp.Enabled())

	board := e.BeginBoardView()
	zoom, err := e.BeginZoom("a1", "b2")
	require.NoError(t, err)

	_, err = e.Step(board, clock.Advance(2*time.Second))
	assert.ErrorIs(t, err, ErrSuperseded)
	done, err := e.Step(zoom, clock.Now())
	require.NoError(t, err)
	assert.True(t, done)
	assert.False(t, e.Busy())
	assert.True(t, vp.Enabled(), "zoom replacing a return to the board unlocks on arrival")
}

func TestInteractionLock_ZoomAfterBattleStaysLocked(t *testing.T) {
	e, vp, clock := newTestEngine(t)

	e.Begin(battlePose, time.Second, KindBattle)
	zoom, err := e.BeginZoom("a1", "b2")
	require.NoError(t, err)
	done, err := e.Step(zoom, clock.Advance(2*time.Second))
	require.NoError(t, err)
	assert.True(t, done)
	assert.False(t, vp.Enabled(), "a battle in progress keeps interaction locked")
}

func TestBeginPresets(t *testing.T) {
	e, vp, _ := newTestEngine(t)
	cfg := e.Config()

	tr, err := e.BeginBattleView("e4", "d5")
	require.NoError(t, err)
	want, _ := cfg.BattlePose("e4", "d5")
	assert.Equal(t, want, tr.Target)
	assert.Equal(t, KindBattle, tr.Kind)
	assert.False(t, vp.Enabled())

	tr = e.BeginBoardView()
	assert.Equal(t, cfg.DefaultPose, tr.Target)
	assert.Equal(t, cfg.TransitionDuration, tr.Duration)

	tr = e.BeginReset()
	assert.Equal(t, KindBoard, tr.Kind)
	assert.Equal(t, cfg.ZoomDuration, tr.Duration)

	tr = e.BeginArenaView()
	assert.Equal(t, cfg.ArenaPose(), tr.Target)

	_, err = e.BeginBattleView("e4", "x9")
	assert.Error(t, err)
	_, err = e.BeginZoom("z1", "a1")
	assert.Error(t, err)
}

func TestRun_CancelSnapsToTarget(t *testing.T) {
	e, vp, _ := newTestEngine(t)
	e.Begin(battlePose, time.Second, KindBattle)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Run(ctx, e.Begin(DefaultConfig().DefaultPose, time.Hour, KindBoard))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, DefaultConfig().DefaultPose, vp.State().Pose)
	assert.True(t, vp.Enabled(), "a cancelled return transition still unlocks interaction")
	assert.False(t, e.Busy())
}

func TestAnimateTo_RealClock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameInterval = time.Millisecond
	vp := NewOrbitViewport(cfg.DefaultPose)
	e := NewEngine(vp, cfg)

	var (
		mu     sync.Mutex
		frames int
	)
	vp.OnUpdate(func(ViewState) {
		mu.Lock()
		frames++
		mu.Unlock()
	})

	err := e.AnimateTo(context.Background(), battlePose, 30*time.Millisecond, KindBattle)
	require.NoError(t, err)
	assert.Equal(t, battlePose, vp.State().Pose)
	assert.False(t, vp.Enabled())

	mu.Lock()
	assert.Greater(t, frames, 1)
	mu.Unlock()
}

func TestAnimateTo_ConcurrentSupersession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameInterval = time.Millisecond
	vp := NewOrbitViewport(cfg.DefaultPose)
	e := NewEngine(vp, cfg)

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- e.AnimateTo(context.Background(), battlePose, time.Minute, KindBattle)
	}()

	require.Eventually(t, e.Busy, time.Second, time.Millisecond)
	err := e.AnimateTo(context.Background(), cfg.DefaultPose, 20*time.Millisecond, KindBoard)
	require.NoError(t, err)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("superseded transition did not stop")
	}
	assert.Equal(t, cfg.DefaultPose, vp.State().Pose)
	assert.True(t, vp.Enabled())
}

func TestPresets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameInterval = time.Millisecond
	cfg.TransitionDuration = 5 * time.Millisecond
	cfg.ZoomDuration = 5 * time.Millisecond
	vp := NewOrbitViewport(cfg.DefaultPose)
	e := NewEngine(vp, cfg)
	ctx := context.Background()

	require.NoError(t, e.ToBattleView(ctx, "e4", "d5"))
	want, _ := cfg.BattlePose("e4", "d5")
	assert.Equal(t, want, vp.State().Pose)
	assert.False(t, vp.Enabled())

	require.NoError(t, e.ToBoardView(ctx))
	assert.Equal(t, cfg.DefaultPose, vp.State().Pose)
	assert.True(t, vp.Enabled())

	require.NoError(t, e.ZoomToSquares(ctx, "a1", "b2"))
	want, _ = cfg.BattlePose("a1", "b2")
	assert.Equal(t, want, vp.State().Pose)
	assert.True(t, vp.Enabled())

	require.NoError(t, e.ToArenaView(ctx))
	assert.Equal(t, cfg.ArenaPose(), vp.State().Pose)
	assert.False(t, vp.Enabled())

	require.NoError(t, e.ResetCamera(ctx))
	assert.Equal(t, cfg.DefaultPose, vp.State().Pose)
	assert.True(t, vp.Enabled())

	assert.Error(t, e.ToBattleView(ctx, "e4", "x9"))
}
