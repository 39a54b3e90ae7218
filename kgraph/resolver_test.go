package kgraph

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestResolver(t *testing.T) {
	t.Run("invalid defaults", func(t *testing.T) {
		_, err := NewResolver(0, 0)
		assert.True(t, errors.Is(err, ErrInvalidParallelism))
		_, err = NewResolver(1, 40000)
		assert.True(t, errors.Is(err, ErrInvalidParallelism))
	})

	tests := []struct {
		name           string
		defaultPar     int
		defaultMax     int
		parallelism    int
		maxParallelism int
		nonParallel    bool
		wantPar        int
		wantMax        int
		wantMaxSet     bool
	}{
		{name: "defaults", defaultPar: 4, wantPar: 4, wantMax: 128},
		{name: "explicit parallelism", defaultPar: 4, parallelism: 200, wantPar: 200, wantMax: 512},
		{name: "default max parallelism", defaultPar: 4, defaultMax: 64, wantPar: 4, wantMax: 64, wantMaxSet: true},
		{name: "explicit max parallelism wins", defaultPar: 4, defaultMax: 64, maxParallelism: 1024, wantPar: 4, wantMax: 1024, wantMaxSet: true},
		{name: "non-parallel", defaultPar: 4, defaultMax: 64, nonParallel: true, wantPar: 1, wantMax: 1, wantMaxSet: true},
		{name: "non-parallel accepts one", defaultPar: 4, parallelism: 1, nonParallel: true, wantPar: 1, wantMax: 1, wantMaxSet: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResolver(tt.defaultPar, tt.defaultMax)
			assert.NoError(t, err)
			res, err := r.Resolve(tt.parallelism, tt.maxParallelism, tt.nonParallel)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantPar, res.Parallelism)
			assert.Equal(t, tt.wantMax, res.MaxParallelism)
			assert.Equal(t, tt.wantMaxSet, res.MaxParallelismSet)
		})
	}

	t.Run("max parallelism below parallelism", func(t *testing.T) {
		r, err := NewResolver(4, 2)
		assert.NoError(t, err)
		_, err = r.Resolve(0, 0, false)
		assert.True(t, errors.Is(err, ErrInvalidParallelism))
	})

	t.Run("non-parallel rejects more than one", func(t *testing.T) {
		r, err := NewResolver(4, 0)
		assert.NoError(t, err)
		_, err = r.Resolve(3, 0, true)
		assert.True(t, errors.Is(err, ErrNonParallel))
	})
}

func TestResources(t *testing.T) {
	small := ResourceSpec{CPUCores: 1, TaskHeapMemoryMB: 100}
	big := ResourceSpec{CPUCores: 2, TaskHeapMemoryMB: 200, ManagedMemoryMB: 10}

	assert.True(t, small.LessOrEqual(big))
	assert.False(t, big.LessOrEqual(small))
	assert.True(t, ResourceSpec{}.LessOrEqual(small))

	_, err := NewResources(small, big)
	assert.NoError(t, err)
	_, err = NewResources(big, small)
	assert.True(t, errors.Is(err, ErrInvalidResources))
	assert.Contains(t, err.Error(), "exceeds preferred")

	// Not ordered component-wise: more CPU but less memory.
	_, err = NewResources(ResourceSpec{CPUCores: 3}, big)
	assert.True(t, errors.Is(err, ErrInvalidResources))

	_, err = NewResources(ResourceSpec{TaskOffHeapMemoryMB: -5}, big)
	assert.True(t, errors.Is(err, ErrInvalidResources))
	assert.Contains(t, err.Error(), "min resources")
}
