package camera

import (
	"fmt"
	"math"
)

// Vec3 is a float64 3D vector in board space: x across files, y up,
// z across ranks.
type Vec3 struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
	Z float64 `json:"z" mapstructure:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Lerp blends v toward target by t. t == 1 yields target exactly.
func (v Vec3) Lerp(target Vec3, t float64) Vec3 {
	if t >= 1 {
		return target
	}
	if t <= 0 {
		return v
	}
	return v.Add(target.Sub(v).Scale(t))
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}
