package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEase_Endpoints(t *testing.T) {
	assert.Equal(t, 0.0, Ease(0))
	assert.Equal(t, 0.5, Ease(0.5))
	assert.Equal(t, 1.0, Ease(1))
}

func TestEase_Clamps(t *testing.T) {
	assert.Equal(t, 0.0, Ease(-3))
	assert.Equal(t, 1.0, Ease(7))
}

func TestEase_MonotonicAndSymmetric(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 100; i++ {
		p := float64(i) / 100
		e := Ease(p)
		assert.GreaterOrEqual(t, e, prev, "p=%v", p)
		assert.InDelta(t, 1-Ease(1-p), e, 1e-12, "p=%v", p)
		prev = e
	}
}

func TestEase_SmoothAtMidpoint(t *testing.T) {
	const h = 1e-6
	left := (Ease(0.5) - Ease(0.5-h)) / h
	right := (Ease(0.5+h) - Ease(0.5)) / h
	assert.InDelta(t, left, right, 1e-4)
	assert.InDelta(t, 2.0, left, 1e-4)
}

func TestPoseLerp_ExactArrival(t *testing.T) {
	a := Pose{Position: Vec3{0.1, 80.3, 80.7}, LookAt: Vec3{-1.3, 0, 2.9}}
	b := Pose{Position: Vec3{-21.213203435596427, 20, 21.213203435596427}, LookAt: Vec3{0, 5, 0}}

	assert.Equal(t, b, a.Lerp(b, Ease(1)))
	assert.Equal(t, a, a.Lerp(b, Ease(0)))

	mid := a.Lerp(b, 0.5)
	assert.InDelta(t, (a.Position.Y+b.Position.Y)/2, mid.Position.Y, 1e-9)
	assert.InDelta(t, (a.LookAt.Z+b.LookAt.Z)/2, mid.LookAt.Z, 1e-9)
}
