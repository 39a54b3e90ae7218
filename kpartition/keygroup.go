package kpartition

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	// DefaultLowerBoundMaxParallelism is the smallest derived key-group count.
	DefaultLowerBoundMaxParallelism = 1 << 7
	// UpperBoundMaxParallelism is the largest supported key-group count.
	UpperBoundMaxParallelism = 1 << 15
)

// ComputeDefaultMaxParallelism derives a key-group count for an operator
// that has no explicit max parallelism. It leaves headroom for scaling out
// by 50% and is bounded by [128, 32768].
func ComputeDefaultMaxParallelism(parallelism int) int {
	n := roundUpToPowerOfTwo(parallelism + parallelism/2)
	return min(max(n, DefaultLowerBoundMaxParallelism), UpperBoundMaxParallelism)
}

// CheckMaxParallelism returns an error if n is outside [1, 32768].
func CheckMaxParallelism(n int) error {
	if n < 1 || n > UpperBoundMaxParallelism {
		return fmt.Errorf("max parallelism %d is out of range [1, %d]", n, UpperBoundMaxParallelism)
	}
	return nil
}

func roundUpToPowerOfTwo(x int) int {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(x-1))
}

// KeyGroupForHash assigns a key hash to one of maxParallelism key groups.
// maxParallelism must pass CheckMaxParallelism.
func KeyGroupForHash(keyHash int32, maxParallelism int) (int, error) {
	if err := CheckMaxParallelism(maxParallelism); err != nil {
		return 0, err
	}
	return int(murmurHash(keyHash)) % maxParallelism, nil
}

// OperatorIndexForKeyGroup returns the index of the subtask owning a key
// group.
func OperatorIndexForKeyGroup(maxParallelism, parallelism, keyGroup int) int {
	return keyGroup * parallelism / maxParallelism
}

// KeyGroupRange is an inclusive range of key groups.
type KeyGroupRange struct {
	Start int
	End   int
}

// Len returns the number of key groups in the range.
func (r KeyGroupRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether keyGroup lies in r.
func (r KeyGroupRange) Contains(keyGroup int) bool {
	return keyGroup >= r.Start && keyGroup <= r.End
}

// KeyGroupRangeForOperator returns the key groups owned by subtask
// operatorIndex. It is the inverse of OperatorIndexForKeyGroup.
func KeyGroupRangeForOperator(maxParallelism, parallelism, operatorIndex int) KeyGroupRange {
	return KeyGroupRange{
		Start: (operatorIndex*maxParallelism + parallelism - 1) / parallelism,
		End:   ((operatorIndex+1)*maxParallelism - 1) / parallelism,
	}
}

// murmurHash is the 32 bit murmur3 mix of a single int, folded to a
// non-negative value.
func murmurHash(code int32) int32 {
	h := uint32(code)
	h *= 0xcc9e2d51
	h = bits.RotateLeft32(h, 15)
	h *= 0x1b873593
	h = bits.RotateLeft32(h, 13)
	h = h*5 + 0xe6546b64
	h ^= 4
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	v := int32(h)
	switch {
	case v >= 0:
		return v
	case v != math.MinInt32:
		return -v
	default:
		return 0
	}
}
