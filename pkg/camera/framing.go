package camera

import (
	"math"

	"github.com/qnkhuat/battlechess/pkg/rules"
)

// SquareCenter returns the centre of a square on the board plane (y = 0).
// Files run along x from a to h; rank 8 sits at the lowest z.
func (c Config) SquareCenter(square string) (Vec3, error) {
	file, rank, err := rules.SquareCoords(square)
	if err != nil {
		return Vec3{}, err
	}
	offset := c.BoardSize/2 - c.SquareSize/2
	return Vec3{
		X: float64(file)*c.SquareSize - offset,
		Z: float64(8-rank)*c.SquareSize - offset,
	}, nil
}

// BattlePose frames two squares from the side: the camera looks at their
// midpoint and stands off along the perpendicular of attacker->defender.
func (c Config) BattlePose(attacker, defender string) (Pose, error) {
	a, err := c.SquareCenter(attacker)
	if err != nil {
		return Pose{}, err
	}
	d, err := c.SquareCenter(defender)
	if err != nil {
		return Pose{}, err
	}

	mid := Vec3{X: (a.X + d.X) / 2, Z: (a.Z + d.Z) / 2}
	angle := math.Atan2(a.Z-d.Z, a.X-d.X) + math.Pi/2

	return Pose{
		Position: Vec3{
			X: mid.X + math.Cos(angle)*c.BattleDistance,
			Y: c.BattleHeight,
			Z: mid.Z + math.Sin(angle)*c.BattleDistance,
		},
		LookAt: Vec3{X: mid.X, Y: c.LookAtHeight, Z: mid.Z},
	}, nil
}

// ArenaPose looks at the arena centre from a fixed diagonal offset.
func (c Config) ArenaPose() Pose {
	return Pose{
		Position: c.ArenaCenter.Add(c.ArenaOffset),
		LookAt:   c.ArenaCenter,
	}
}
