package activity

import "math"

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// SmoothStep maps x onto [0, 1]: 0 at or below a, 1 at or above b, linear between.
func SmoothStep(x, a, b float64) float64 {
	switch {
	case x <= a:
		return 0
	case x >= b:
		return 1
	default:
		return (x - a) / (b - a)
	}
}

// unit clamps x to [0, 1].
func unit(x float64) float64 {
	return Clamp(x, 0, 1)
}
