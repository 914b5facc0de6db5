/*
Package bitint provides bit manipulation helpers for buffer and FFT sizing.
All operations are O(1), allocation-free and safe to call from the audio
hot path.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
// Exact powers of 2 are preserved (8 -> 8, 9 -> 16); zero and negative
// inputs return 1. The size-1 subtraction is what keeps exact powers
// from being doubled.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}

	// 64-bit platforms (where int is 64-bit)
	if ^uint(0)>>63 == 0 {
		return int(1 << (bits.Len64(uint64(size - 1))))
	}

	// 32-bit platforms
	return int(1 << (bits.Len32(uint32(size - 1))))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// Powers of 2 have exactly one bit set, so n & (n-1) clears it.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
