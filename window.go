package kflow

import (
	"fmt"

	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/kprocessor"
	"github.com/birdayz/kflow/ktype"
	"github.com/birdayz/kflow/kwindow"
)

// WindowedStream is a keyed stream grouped into windows. It becomes a
// stream again once a window function is applied.
type WindowedStream[T any] struct {
	stream      *DataStream[T]
	spec        kwindow.Spec
	nonParallel bool
}

// Spec returns the window configuration.
func (w *WindowedStream[T]) Spec() kwindow.Spec {
	return w.spec
}

// Window groups the keyed stream s into windows per key.
func Window[T any](s *DataStream[T], assigner kwindow.Assigner, opts ...kwindow.Option) (*WindowedStream[T], error) {
	if s.key == nil {
		return nil, s.env.reject("Window", misuse("cannot window a non-keyed stream, key it first or use WindowAll"))
	}
	spec, err := kwindow.NewSpec(assigner, opts...)
	if err != nil {
		return nil, s.env.reject("Window", fmt.Errorf("%w: %w", ErrStructuralMisuse, err))
	}
	return &WindowedStream[T]{stream: s, spec: spec}, nil
}

// WindowAll groups all elements of s into windows. The window operator
// runs with parallelism 1.
func WindowAll[T any](s *DataStream[T], assigner kwindow.Assigner, opts ...kwindow.Option) (*WindowedStream[T], error) {
	spec, err := kwindow.NewSpec(assigner, opts...)
	if err != nil {
		return nil, s.env.reject("WindowAll", fmt.Errorf("%w: %w", ErrStructuralMisuse, err))
	}
	keyed, err := s.keyBy("WindowAll", func(any) (any, error) {
		return uint8(0), nil
	}, ktype.Scalar("uint8"))
	if err != nil {
		return nil, err
	}
	return &WindowedStream[T]{stream: keyed, spec: spec, nonParallel: true}, nil
}

// WindowOperator is the function recorded on window nodes.
type WindowOperator struct {
	Spec     kwindow.Spec
	Function any
}

func applyWindow[T, O any](w *WindowedStream[T], function string, fn any, opts []OpOption) (*DataStream[O], error) {
	return apply[T, O](w.stream, operator{
		kind:        koperator.KindWindow,
		name:        w.spec.Assigner.Name(),
		description: w.spec.Describe(function),
		nonParallel: w.nonParallel,
		function:    WindowOperator{Spec: w.spec, Function: fn},
	}, opts)
}

// Reduce combines the elements of every window with fn.
func Reduce[T any](w *WindowedStream[T], fn kprocessor.ReduceFunc[T], opts ...OpOption) (*DataStream[T], error) {
	if fn == nil {
		return nil, w.stream.env.reject("Reduce", misuse("reduce function is nil"))
	}
	return applyWindow[T, T](w, "Reduce", fn, append([]OpOption{WithOutputType(w.stream.outputType)}, opts...))
}

// Aggregate computes one result from the contents of every window.
func Aggregate[T, O any](w *WindowedStream[T], fn kprocessor.AggregateFunc[T, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, w.stream.env.reject("Aggregate", misuse("aggregate function is nil"))
	}
	return applyWindow[T, O](w, "Aggregate", fn, opts)
}

// ProcessWindow evaluates every window with fn.
func ProcessWindow[T, O any](w *WindowedStream[T], fn kprocessor.WindowFunc[T, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, w.stream.env.reject("ProcessWindow", misuse("window function is nil"))
	}
	return applyWindow[T, O](w, "ProcessWindowFunction", fn, opts)
}

// OverOperator is the function recorded on over window nodes.
type OverOperator struct {
	Window   kwindow.Over
	Function any
}

// OverAggregate computes fn over a window of preceding rows for every
// element of the keyed stream s. Exactly one over window is supported.
func OverAggregate[T, O any](s *DataStream[T], fn kprocessor.AggregateFunc[T, O], windows ...kwindow.Over) (*DataStream[O], error) {
	if len(windows) != 1 {
		return nil, s.env.reject("OverAggregate", misuse("only a single over window is supported, got %d", len(windows)))
	}
	if fn == nil {
		return nil, s.env.reject("OverAggregate", misuse("aggregate function is nil"))
	}
	over := windows[0]
	if err := over.Validate(); err != nil {
		return nil, s.env.reject("OverAggregate", fmt.Errorf("%w: %w", ErrStructuralMisuse, err))
	}
	return apply[T, O](s, operator{
		kind:        koperator.KindOverWindow,
		name:        "OverAggregate",
		description: over.String(),
		function:    OverOperator{Window: over, Function: fn},
	}, nil)
}
