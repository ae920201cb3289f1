package camera

import "time"

// Config holds board geometry and timing for camera transitions.
type Config struct {
	SquareSize     float64
	BoardSize      float64
	BattleDistance float64
	BattleHeight   float64
	LookAtHeight   float64

	DefaultPose Pose
	ArenaCenter Vec3
	ArenaOffset Vec3

	TransitionDuration time.Duration
	ZoomDuration       time.Duration
	FrameInterval      time.Duration
}

func DefaultConfig() Config {
	return Config{
		SquareSize:     10,
		BoardSize:      80,
		BattleDistance: 30,
		BattleHeight:   20,
		LookAtHeight:   5,
		DefaultPose: Pose{
			Position: Vec3{X: 0, Y: 80, Z: 80},
			LookAt:   Vec3{X: 0, Y: 0, Z: 0},
		},
		ArenaCenter:        Vec3{X: 0, Y: 5, Z: 0},
		ArenaOffset:        Vec3{X: 15, Y: 10, Z: 15},
		TransitionDuration: time.Second,
		ZoomDuration:       1500 * time.Millisecond,
		FrameInterval:      16 * time.Millisecond,
	}
}
