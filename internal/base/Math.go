package base

import "golang.org/x/exp/constraints"

// Clamp/Min/Max are small generic helpers built on golang.org/x/exp/constraints
// rather than Go 1.21's stdlib "cmp" package.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
