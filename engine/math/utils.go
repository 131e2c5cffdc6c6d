package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Repeat folds `f` into [0, 1) so that 1.25 and -0.75 both become 0.25.
func Repeat[T constraints.Float](f T) T {
	r := T(m.Mod(float64(f), 1))
	if r < 0 {
		r += 1
	}
	return r
}

// Lerp interpolates linearly between a and b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}
