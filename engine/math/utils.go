package math

import "golang.org/x/exp/constraints"

// Clamp bounds f to [low, high]. Ordered rather than float-only so integer
// ranges such as swapchain extents can use it too.
func Clamp[T constraints.Ordered](f, low, high T) T {
	switch {
	case f < low:
		return low
	case f > high:
		return high
	default:
		return f
	}
}

// Abs returns the absolute value without the float64 round-trip the
// stdlib would force on float32 inputs.
func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// ApproxEqual reports whether a and b are within tolerance of each other.
func ApproxEqual[T constraints.Float](a, b, tolerance T) bool {
	return Abs(a-b) <= tolerance
}
