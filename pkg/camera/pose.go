package camera

import "fmt"

// Pose is where the camera sits and the point it orbits around.
type Pose struct {
	Position Vec3 `json:"position" mapstructure:"position"`
	LookAt   Vec3 `json:"lookAt" mapstructure:"lookAt"`
}

// Lerp blends position and look-at independently by the same factor.
func (p Pose) Lerp(target Pose, t float64) Pose {
	return Pose{
		Position: p.Position.Lerp(target.Position, t),
		LookAt:   p.LookAt.Lerp(target.LookAt, t),
	}
}

func (p Pose) String() string {
	return fmt.Sprintf("pos=%s look=%s", p.Position, p.LookAt)
}
