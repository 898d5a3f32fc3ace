// package interp provides interpolation helpers for sample tables.
package interp

import (
	"golang.org/x/exp/constraints"
)

// L does linear interpolation:
//
//	L(a, b, c) = (1-c)*a + c*b
//	           = a + c*(b-a)
//
// The last form saves a multiplication, and returns a exactly when c is zero.
func L[T constraints.Float](a, b, c T) T {
	return a + c*(b-a)
}

// At reads src at the fractional position pos, which must not be negative.
// Positions past the end wrap around, so the sample after the last is the
// first.
func At[T constraints.Float](src []T, pos T) T {
	var (
		n = len(src)
		i = int(pos)
		c = pos - T(i)
	)
	i %= n
	j := i + 1
	if j == n {
		j = 0
	}
	return L(src[i], src[j], c)
}

// Clamp limits x to [lo, hi].
func Clamp[T constraints.Ordered](x, lo, hi T) T {
	return min(max(x, lo), hi)
}
