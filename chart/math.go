package chart

import (
	"math"

	"golang.org/x/exp/constraints"
)

func ceilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return max(lo, min(v, hi))
}

func abs[T constraints.Signed | constraints.Float](a T) T {
	if a < 0 {
		return -a
	}
	return a
}

func ceil[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}
