package engine

import (
	"fmt"
	"math/bits"
)

// DefaultMaxCausalTypes is the default limit on the causal-type space.
// A realization allocates one int per node and causal type, so the limit
// bounds memory as well as time.
const DefaultMaxCausalTypes = 1 << 26

// TypeSpaceExceededError is returned when the number of causal types exceeds
// the engine's configured limit.
//
// Unlike an int overflow (CAPACITY_EXCEEDED from NewTypeSpace), the space is
// representable but larger than the caller allowed.
type TypeSpaceExceededError struct {
	Size  int // Number of causal types
	Limit int // Maximum allowed causal types
}

func (e *TypeSpaceExceededError) Error() string {
	return fmt.Sprintf("causal type space exceeds limit (%d > %d)", e.Size, e.Limit)
}

// checkQuota enforces the engine's causal-type limit. A limit <= 0 disables it.
func checkQuota(size, limit int) error {
	if limit > 0 && size > limit {
		return &TypeSpaceExceededError{Size: size, Limit: limit}
	}
	return nil
}

// mulChecked returns a*b for non-negative a, b, reporting overflow of int.
func mulChecked(a, b int) (int, bool) {
	hi, lo := bits.Mul(uint(a), uint(b))
	if hi != 0 || lo > uint(maxInt) {
		return 0, false
	}
	return int(lo), true
}

const maxInt = int(^uint(0) >> 1)
