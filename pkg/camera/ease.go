package camera

// Clamp01 limits p to [0, 1].
func Clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// Ease is the quadratic ease-in-out curve. Ease(0)=0, Ease(0.5)=0.5,
// Ease(1)=1 and the first derivative is continuous at 0.5.
func Ease(p float64) float64 {
	p = Clamp01(p)
	if p < 0.5 {
		return 2 * p * p
	}
	q := -2*p + 2
	return 1 - q*q/2
}
