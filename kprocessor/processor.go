// Package kprocessor declares the user functions that can be attached to a
// stream. The topology builder only looks at a function's Shape to pick the
// operator that will run it.
package kprocessor

// Shape identifies which family of process function a value belongs to.
// Every process function reports its shape explicitly; the builder never
// inspects the dynamic type to find out.
type Shape int

const (
	ShapeProcess Shape = iota
	ShapeKeyedProcess
	ShapeBroadcastProcess
	ShapeKeyedBroadcastProcess
	ShapeCoProcess
	ShapeKeyedCoProcess
)

func (s Shape) String() string {
	switch s {
	case ShapeProcess:
		return "ProcessFunction"
	case ShapeKeyedProcess:
		return "KeyedProcessFunction"
	case ShapeBroadcastProcess:
		return "BroadcastProcessFunction"
	case ShapeKeyedBroadcastProcess:
		return "KeyedBroadcastProcessFunction"
	case ShapeCoProcess:
		return "CoProcessFunction"
	case ShapeKeyedCoProcess:
		return "KeyedCoProcessFunction"
	default:
		return "UnknownFunction"
	}
}

// Function is implemented by all process functions.
type Function interface {
	Shape() Shape
}

// ProcessFunction handles the elements of a non-keyed stream.
type ProcessFunction[I, O any] interface {
	Function
	ProcessElement(ctx Context, value I, out Collector[O]) error
}

// KeyedProcessFunction handles the elements of a keyed stream and may use
// keyed state and timers.
type KeyedProcessFunction[I, O any] interface {
	Function
	ProcessElement(ctx KeyedContext, value I, out Collector[O]) error
}

// BroadcastFunction is the part shared by both broadcast process function
// flavors: the handling of broadcast-side elements.
type BroadcastFunction[I, B, O any] interface {
	Function
	ProcessBroadcastElement(ctx BroadcastContext, value B, out Collector[O]) error
}

// BroadcastProcessFunction connects a non-keyed stream with a broadcast
// stream.
type BroadcastProcessFunction[I, B, O any] interface {
	BroadcastFunction[I, B, O]
	ProcessElement(ctx ReadOnlyContext, value I, out Collector[O]) error
}

// KeyedBroadcastProcessFunction connects a keyed stream with a broadcast
// stream.
type KeyedBroadcastProcessFunction[I, B, O any] interface {
	BroadcastFunction[I, B, O]
	ProcessElement(ctx KeyedReadOnlyContext, value I, out Collector[O]) error
}

// CoProcessFunction handles the two inputs of a connected stream.
type CoProcessFunction[I1, I2, O any] interface {
	Function
	ProcessElement1(ctx Context, value I1, out Collector[O]) error
	ProcessElement2(ctx Context, value I2, out Collector[O]) error
}

// KeyedCoProcessFunction handles the two inputs of a connected stream whose
// inputs are both keyed.
type KeyedCoProcessFunction[I1, I2, O any] interface {
	Function
	ProcessElement1(ctx KeyedContext, value I1, out Collector[O]) error
	ProcessElement2(ctx KeyedContext, value I2, out Collector[O]) error
}

// MapFunc transforms one element into exactly one element.
type MapFunc[I, O any] func(I) (O, error)

// FlatMapFunc transforms one element into zero or more elements.
type FlatMapFunc[I, O any] func(I, Collector[O]) error

// FilterFunc keeps the elements for which it returns true.
type FilterFunc[T any] func(T) (bool, error)

// ReduceFunc combines two elements into one.
type ReduceFunc[T any] func(a, b T) (T, error)

// WindowFunc evaluates the contents of one window.
type WindowFunc[T, O any] func(ctx WindowContext, elements []T, out Collector[O]) error

// AggregateFunc computes the result of an over window for the current row.
type AggregateFunc[T, O any] func(rows []T) (O, error)
