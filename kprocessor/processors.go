package kprocessor

import (
	"golang.org/x/exp/constraints"
)

// Map adapts an infallible function to MapFunc.
//
// Example:
//
//	words := kflow.Map(lines, kprocessor.Map(strings.ToLower))
func Map[I, O any](fn func(I) O) MapFunc[I, O] {
	return func(v I) (O, error) {
		return fn(v), nil
	}
}

// FlatMap adapts a function returning a slice to FlatMapFunc.
//
// Example:
//
//	words := kflow.FlatMap(lines, kprocessor.FlatMap(strings.Fields))
func FlatMap[I, O any](fn func(I) []O) FlatMapFunc[I, O] {
	return func(v I, out Collector[O]) error {
		for _, o := range fn(v) {
			out.Collect(o)
		}
		return nil
	}
}

// Filter adapts a predicate to FilterFunc.
//
// Example:
//
//	large := kflow.Filter(orders, kprocessor.Filter(func(o Order) bool {
//	    return o.Total > 100
//	}))
func Filter[T any](predicate func(T) bool) FilterFunc[T] {
	return func(v T) (bool, error) {
		return predicate(v), nil
	}
}

// FilterNot keeps the elements that do not match the predicate.
func FilterNot[T any](predicate func(T) bool) FilterFunc[T] {
	return Filter(func(v T) bool {
		return !predicate(v)
	})
}

// Reduce adapts an infallible function to ReduceFunc.
func Reduce[T any](fn func(a, b T) T) ReduceFunc[T] {
	return func(a, b T) (T, error) {
		return fn(a, b), nil
	}
}

// Number is the set of types Sum can add up.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum reduces numbers by adding them up.
func Sum[T Number]() ReduceFunc[T] {
	return Reduce(func(a, b T) T { return a + b })
}

// Max reduces to the largest element.
func Max[T constraints.Ordered]() ReduceFunc[T] {
	return Reduce(func(a, b T) T { return max(a, b) })
}

// Min reduces to the smallest element.
func Min[T constraints.Ordered]() ReduceFunc[T] {
	return Reduce(func(a, b T) T { return min(a, b) })
}

// Count is an AggregateFunc returning the number of rows in the window.
func Count[T any]() AggregateFunc[T, int64] {
	return func(rows []T) (int64, error) {
		return int64(len(rows)), nil
	}
}
