package kprocessor

import (
	"context"
	"time"
)

// Collector receives the output of a function.
type Collector[T any] interface {
	Collect(value T)
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc[T any] func(T)

func (f CollectorFunc[T]) Collect(value T) { f(value) }

// Context is passed along with every element.
type Context interface {
	context.Context

	// Timestamp returns the event time of the current element, if any.
	Timestamp() (time.Time, bool)
	CurrentWatermark() time.Time
}

// TimerService registers callbacks for keyed functions.
type TimerService interface {
	RegisterEventTimeTimer(t time.Time)
	RegisterProcessingTimeTimer(t time.Time)
	DeleteEventTimeTimer(t time.Time)
	DeleteProcessingTimeTimer(t time.Time)
}

// KeyedContext is the context of keyed functions.
type KeyedContext interface {
	Context

	CurrentKey() any
	Timers() TimerService
}

// ReadOnlyBroadcastState gives the non-broadcast side of a broadcast
// connection read access to broadcast state.
type ReadOnlyBroadcastState interface {
	Get(key any) (any, bool)
}

// BroadcastState is the writable view of broadcast state.
type BroadcastState interface {
	ReadOnlyBroadcastState
	Put(key, value any)
	Remove(key any)
}

// ReadOnlyContext is passed with non-broadcast elements.
type ReadOnlyContext interface {
	Context

	BroadcastState(name string) (ReadOnlyBroadcastState, error)
}

// KeyedReadOnlyContext is passed with non-broadcast elements of a keyed
// broadcast connection.
type KeyedReadOnlyContext interface {
	ReadOnlyContext

	CurrentKey() any
	Timers() TimerService
}

// BroadcastContext is passed with broadcast elements.
type BroadcastContext interface {
	Context

	BroadcastState(name string) (BroadcastState, error)
	// ApplyToKeyedState runs fn for every key with state. It returns an
	// error on non-keyed connections.
	ApplyToKeyedState(fn func(key any) error) error
}

// WindowContext describes the window being evaluated.
type WindowContext interface {
	Context

	WindowStart() time.Time
	WindowEnd() time.Time
	// CurrentKey is nil for non-keyed windows.
	CurrentKey() any
}
