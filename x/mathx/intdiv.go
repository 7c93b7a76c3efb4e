package mathx

import (
	"math"
	"math/bits"
)

// MulDiv returns floor(a*b/d) using a 128-bit intermediate.
// Results that do not fit in 64 bits saturate to MaxUint64, as does d == 0.
func MulDiv(a, b, d uint64) uint64 {
	if d == 0 {
		return math.MaxUint64
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, d)
	return q
}

// MulDivCeil is MulDiv rounded towards +inf.
func MulDivCeil(a, b, d uint64) uint64 {
	if d == 0 {
		return math.MaxUint64
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return math.MaxUint64
	}
	q, r := bits.Div64(hi, lo, d)
	if r != 0 {
		if q == math.MaxUint64 {
			return q
		}
		q++
	}
	return q
}
