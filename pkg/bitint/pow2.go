// SPDX-License-Identifier: MIT

// Package bitint provides power-of-two helpers used when sizing FFT
// analysis frames. All operations are constant-time and allocation-free.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= n. Exact powers of
// two are preserved; non-positive inputs map to 1.
//
// The size-1 adjustment keeps exact powers from being doubled: for n=8,
// bits.Len64(7)=3 and 1<<3=8, while bits.Len64(8)=4 would give 16.
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(n-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. A power of
// two has exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
