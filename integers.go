package tensorexpr

import (
	"math"

	"github.com/gomlx/gopjrt/dtypes"
)

// Integer values are handled as their two's complement bit pattern in a uint64: signed dtypes are
// sign-extended, unsigned ones zero-extended.

// integerBounds returns the bit patterns of the lowest and highest values of an integer dtype.
func integerBounds(dtype dtypes.DType) (lowest, highest uint64) {
	shift := 64 - 8*dtype.Size()
	if dtype.IsUnsigned() {
		return 0, uint64(math.MaxUint64) >> shift
	}
	return uint64(int64(math.MinInt64) >> shift), uint64(int64(math.MaxInt64) >> shift)
}

// wrapInteger keeps the low bits of the pattern that fit dtype, and extends them back to 64 bits.
func wrapInteger(dtype dtypes.DType, bits uint64) uint64 {
	shift := 64 - 8*dtype.Size()
	if dtype.IsUnsigned() {
		return bits << shift >> shift
	}
	return uint64(int64(bits<<shift) >> shift)
}

// integerToFloat converts the bit pattern of a value of dtype to float64. Values of 64-bit dtypes
// beyond 2^53 are rounded.
func integerToFloat(dtype dtypes.DType, bits uint64) float64 {
	if dtype.IsUnsigned() {
		return float64(bits)
	}
	return float64(int64(bits))
}

// floatToInteger converts value to the bit pattern of an integer of dtype. It is truncated toward zero,
// and on overflow it wraps around for dtypes of up to 32 bits, like Go conversions do.
//
// 64-bit dtypes saturate instead, except negative values converted to Uint64, which wrap: float64
// doesn't hold their extremes exactly (math.MaxInt64 rounds to 2^63). NaN converts to 0 and
// infinities saturate.
func floatToInteger(dtype dtypes.DType, value float64) uint64 {
	lowest, highest := integerBounds(dtype)
	switch {
	case math.IsNaN(value):
		return 0
	case math.IsInf(value, 1):
		return highest
	case math.IsInf(value, -1):
		return lowest
	}
	truncated := math.Trunc(value)
	if dtype.Size() < 8 {
		// 2^32 is a multiple of 2^bits for every smaller dtype, so the low bits are preserved.
		return wrapInteger(dtype, uint64(int64(math.Mod(truncated, 1<<32))))
	}
	const twoTo63 = 1 << 63
	switch {
	case truncated >= integerToFloat(dtype, highest):
		return highest
	case truncated >= twoTo63:
		return uint64(truncated)
	case truncated >= -twoTo63:
		return wrapInteger(dtype, uint64(int64(truncated)))
	}
	return lowest
}
