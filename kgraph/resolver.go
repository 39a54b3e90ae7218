package kgraph

import (
	"fmt"

	"github.com/birdayz/kflow/kpartition"
)

// Resolver holds the builder-wide defaults that new nodes snapshot. A
// change of a default only affects nodes created afterwards.
type Resolver struct {
	parallelism    int
	maxParallelism int
}

// NewResolver returns a resolver with the given default parallelism. A
// maxParallelism of 0 derives the key-group count from each node's
// parallelism.
func NewResolver(parallelism, maxParallelism int) (*Resolver, error) {
	r := &Resolver{parallelism: 1}
	if err := r.SetDefaultParallelism(parallelism); err != nil {
		return nil, err
	}
	if maxParallelism != 0 {
		if err := r.SetDefaultMaxParallelism(maxParallelism); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultParallelism returns the parallelism the next node gets unless it
// asks for its own.
func (r *Resolver) DefaultParallelism() int {
	return r.parallelism
}

// DefaultMaxParallelism returns the default key-group count, or 0 if it is
// derived per node.
func (r *Resolver) DefaultMaxParallelism() int {
	return r.maxParallelism
}

func (r *Resolver) SetDefaultParallelism(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: default parallelism must be at least 1, got %d", ErrInvalidParallelism, n)
	}
	r.parallelism = n
	return nil
}

func (r *Resolver) SetDefaultMaxParallelism(n int) error {
	if err := kpartition.CheckMaxParallelism(n); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParallelism, err)
	}
	r.maxParallelism = n
	return nil
}

// Resolved is the outcome of Resolve for one node.
type Resolved struct {
	Parallelism    int
	MaxParallelism int
	// MaxParallelismSet is false if MaxParallelism was derived from
	// Parallelism. A derived value follows later parallelism changes.
	MaxParallelismSet bool
}

// Resolve returns the parallelism and max parallelism of a new node.
// Explicit values win over the defaults. Non-parallel nodes always run
// with one subtask and one key group.
func (r *Resolver) Resolve(parallelism, maxParallelism int, nonParallel bool) (Resolved, error) {
	if nonParallel {
		if parallelism > 1 {
			return Resolved{}, fmt.Errorf("%w: requested parallelism %d", ErrNonParallel, parallelism)
		}
		return Resolved{Parallelism: 1, MaxParallelism: 1, MaxParallelismSet: true}, nil
	}
	if parallelism < 0 {
		return Resolved{}, fmt.Errorf("%w: parallelism must be at least 1, got %d", ErrInvalidParallelism, parallelism)
	}
	if parallelism == 0 {
		parallelism = r.parallelism
	}

	res := Resolved{Parallelism: parallelism, MaxParallelism: maxParallelism, MaxParallelismSet: true}
	switch {
	case maxParallelism > 0:
		if err := kpartition.CheckMaxParallelism(maxParallelism); err != nil {
			return Resolved{}, fmt.Errorf("%w: %w", ErrInvalidParallelism, err)
		}
	case r.maxParallelism > 0:
		res.MaxParallelism = r.maxParallelism
	default:
		res.MaxParallelism = kpartition.ComputeDefaultMaxParallelism(parallelism)
		res.MaxParallelismSet = false
	}
	if res.MaxParallelism < parallelism {
		return Resolved{}, fmt.Errorf("%w: max parallelism %d is lower than parallelism %d",
			ErrInvalidParallelism, res.MaxParallelism, parallelism)
	}
	return res, nil
}

// ResourceSpec is an amount of resources for one subtask. The zero value
// means no constraint.
type ResourceSpec struct {
	CPUCores            float64
	TaskHeapMemoryMB    int
	TaskOffHeapMemoryMB int
	ManagedMemoryMB     int
}

func (r ResourceSpec) String() string {
	return fmt.Sprintf("{cpu=%g, heap=%dMB, offHeap=%dMB, managed=%dMB}",
		r.CPUCores, r.TaskHeapMemoryMB, r.TaskOffHeapMemoryMB, r.ManagedMemoryMB)
}

// Validate checks that no component is negative.
func (r ResourceSpec) Validate() error {
	if r.CPUCores < 0 || r.TaskHeapMemoryMB < 0 || r.TaskOffHeapMemoryMB < 0 || r.ManagedMemoryMB < 0 {
		return fmt.Errorf("%w: negative component in %s", ErrInvalidResources, r)
	}
	return nil
}

// LessOrEqual reports whether every component of r is at most the one of o.
func (r ResourceSpec) LessOrEqual(o ResourceSpec) bool {
	return r.CPUCores <= o.CPUCores &&
		r.TaskHeapMemoryMB <= o.TaskHeapMemoryMB &&
		r.TaskOffHeapMemoryMB <= o.TaskOffHeapMemoryMB &&
		r.ManagedMemoryMB <= o.ManagedMemoryMB
}

// Resources is the (min, preferred) pair of a node.
type Resources struct {
	Min       ResourceSpec
	Preferred ResourceSpec
}

// NewResources validates and returns a resource pair.
func NewResources(minimum, preferred ResourceSpec) (Resources, error) {
	res := Resources{Min: minimum, Preferred: preferred}
	return res, res.Validate()
}

func (r Resources) Validate() error {
	if err := r.Min.Validate(); err != nil {
		return fmt.Errorf("min resources: %w", err)
	}
	if err := r.Preferred.Validate(); err != nil {
		return fmt.Errorf("preferred resources: %w", err)
	}
	if !r.Min.LessOrEqual(r.Preferred) {
		return fmt.Errorf("%w: min %s exceeds preferred %s", ErrInvalidResources, r.Min, r.Preferred)
	}
	return nil
}
