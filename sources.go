package kflow

import (
	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/ktype"
)

// Source produces the elements of a stream. Connectors implement it; the
// topology only records it on the source node.
type Source[T any] interface {
	// Name is shown in the operator name, prefixed with "Source: ".
	Name() string
	// Bounded reports whether the source ends after a finite number of
	// elements.
	Bounded() bool
}

// ElementsSource emits a fixed list of elements once.
type ElementsSource[T any] struct {
	Elements []T
}

func (ElementsSource[T]) Name() string  { return "Collection Source" }
func (ElementsSource[T]) Bounded() bool { return true }

// SequenceSource emits the numbers From to To, both included.
type SequenceSource struct {
	From, To int64
}

func (SequenceSource) Name() string  { return "Sequence Source" }
func (SequenceSource) Bounded() bool { return true }

func addSource[T any](env *Environment, src Source[T], nonParallel bool, opts []OpOption) (*DataStream[T], error) {
	n, err := env.addOperator(operator{
		kind:        koperator.KindSource,
		name:        "Source: " + src.Name(),
		outputType:  ktype.Of[T](),
		nonParallel: nonParallel,
		function:    src,
	}, opts)
	if err != nil {
		return nil, err
	}
	return newStream[T](env, n), nil
}

// FromElements creates a non-parallel source emitting the given elements.
func FromElements[T any](env *Environment, elements []T, opts ...OpOption) (*DataStream[T], error) {
	if len(elements) == 0 {
		return nil, env.reject("FromElements", misuse("elements must not be empty"))
	}
	return addSource[T](env, ElementsSource[T]{Elements: elements}, true, opts)
}

// FromSequence creates a parallel source emitting the numbers from..to.
func FromSequence(env *Environment, from, to int64, opts ...OpOption) (*DataStream[int64], error) {
	if from > to {
		return nil, env.reject("FromSequence", misuse("sequence start %d is after end %d", from, to))
	}
	return addSource[int64](env, SequenceSource{From: from, To: to}, false, opts)
}

// FromSource creates a stream reading from src.
func FromSource[T any](env *Environment, src Source[T], opts ...OpOption) (*DataStream[T], error) {
	if src == nil {
		return nil, env.reject("FromSource", misuse("source is nil"))
	}
	return addSource[T](env, src, false, opts)
}
