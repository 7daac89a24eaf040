package asn1x

import "golang.org/x/exp/constraints"

// Numerical is the small-integer constraint shared by the bound checks
// below: unused-bit counts (0..7), recursion depth, two-digit years, and
// similar narrow fields that never need big.Int.
type Numerical interface {
	constraints.Integer
}

// withinBounds reports whether v falls in the inclusive range [lo, hi].
func withinBounds[T Numerical](v, lo, hi T) bool {
	return v >= lo && v <= hi
}

// clamp returns v restricted to [lo, hi].
func clamp[T Numerical](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
