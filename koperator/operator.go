// Package koperator chooses the runtime operator that executes a node.
//
// The choice is made once, when the node is created, from two facts: the
// shape of the connection the function is attached to and the Shape the
// function reports. Select is a closed state machine over these facts. A
// function that does not fit its connection is rejected with
// ErrOperatorMismatch; nothing is coerced.
package koperator

import (
	"errors"
	"fmt"

	"github.com/birdayz/kflow/kprocessor"
)

// Kind is the runtime operator a node is instantiated as.
type Kind int

const (
	KindSource Kind = iota
	KindMap
	KindFlatMap
	KindFilter
	KindReduce
	KindProcess
	KindKeyedProcess
	KindAsyncKeyedProcess
	KindBroadcastProcess
	KindKeyedBroadcastProcess
	KindCoMap
	KindCoFlatMap
	KindCoProcess
	KindKeyedCoProcess
	KindWindow
	KindOverWindow
	KindSink
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "Source"
	case KindMap:
		return "Map"
	case KindFlatMap:
		return "FlatMap"
	case KindFilter:
		return "Filter"
	case KindReduce:
		return "Reduce"
	case KindProcess:
		return "Process"
	case KindKeyedProcess:
		return "KeyedProcess"
	case KindAsyncKeyedProcess:
		return "AsyncKeyedProcess"
	case KindBroadcastProcess:
		return "BroadcastProcess"
	case KindKeyedBroadcastProcess:
		return "KeyedBroadcastProcess"
	case KindCoMap:
		return "CoMap"
	case KindCoFlatMap:
		return "CoFlatMap"
	case KindCoProcess:
		return "CoProcess"
	case KindKeyedCoProcess:
		return "KeyedCoProcess"
	case KindWindow:
		return "Window"
	case KindOverWindow:
		return "OverWindow"
	case KindSink:
		return "Sink"
	default:
		return "Unknown"
	}
}

// Inputs returns the number of logical inputs of the operator.
func (k Kind) Inputs() int {
	switch k {
	case KindSource:
		return 0
	case KindBroadcastProcess, KindKeyedBroadcastProcess, KindCoMap, KindCoFlatMap, KindCoProcess, KindKeyedCoProcess:
		return 2
	default:
		return 1
	}
}

// RequiresKeyedInput reports whether the operator keeps keyed state and
// therefore needs its first input to be keyed.
func (k Kind) RequiresKeyedInput() bool {
	switch k {
	case KindReduce, KindKeyedProcess, KindAsyncKeyedProcess, KindKeyedBroadcastProcess, KindKeyedCoProcess, KindWindow, KindOverWindow:
		return true
	default:
		return false
	}
}

// ErrOperatorMismatch is returned when a function does not fit the
// connection it is attached to.
var ErrOperatorMismatch = errors.New("operator mismatch")

// Connection is the shape of the inputs a function is attached to.
type Connection int

const (
	// OneInput is a single (possibly unioned) stream.
	OneInput Connection = iota
	// TwoInput is the result of connecting two streams.
	TwoInput
	// BroadcastConnected is a stream connected with a broadcast stream.
	BroadcastConnected
)

func (c Connection) String() string {
	switch c {
	case OneInput:
		return "stream"
	case TwoInput:
		return "connected streams"
	case BroadcastConnected:
		return "broadcast connected stream"
	default:
		return "unknown connection"
	}
}

// Input describes the inputs of the node about to be created.
type Input struct {
	Connection Connection
	// Keyed is the keyedness of the first input. For BroadcastConnected it
	// is the non-broadcast side.
	Keyed bool
	// SecondKeyed is the keyedness of the second input of a TwoInput
	// connection. The broadcast side is never keyed.
	SecondKeyed bool
	// AsyncState is set when async state access was enabled on the keyed
	// stream before the function was attached.
	AsyncState bool
}

func (in Input) String() string {
	switch in.Connection {
	case TwoInput:
		return fmt.Sprintf("%s (first %s, second %s)", in.Connection, keyedness(in.Keyed), keyedness(in.SecondKeyed))
	default:
		return keyedness(in.Keyed) + " " + in.Connection.String()
	}
}

func keyedness(keyed bool) string {
	if keyed {
		return "keyed"
	}
	return "non-keyed"
}

// Select returns the operator that runs a function of the given shape on
// the given inputs.
func Select(in Input, shape kprocessor.Shape) (Kind, error) {
	switch in.Connection {
	case OneInput:
		switch shape {
		case kprocessor.ShapeProcess:
			if in.Keyed {
				return 0, mismatch(in, shape, "use a "+kprocessor.ShapeKeyedProcess.String())
			}
			return KindProcess, nil
		case kprocessor.ShapeKeyedProcess:
			if !in.Keyed {
				return 0, mismatch(in, shape, "key the stream first")
			}
			if in.AsyncState {
				return KindAsyncKeyedProcess, nil
			}
			return KindKeyedProcess, nil
		}
	case BroadcastConnected:
		switch shape {
		case kprocessor.ShapeBroadcastProcess:
			if in.Keyed {
				return 0, mismatch(in, shape, "use a "+kprocessor.ShapeKeyedBroadcastProcess.String())
			}
			return KindBroadcastProcess, nil
		case kprocessor.ShapeKeyedBroadcastProcess:
			if !in.Keyed {
				return 0, mismatch(in, shape, "use a "+kprocessor.ShapeBroadcastProcess.String())
			}
			return KindKeyedBroadcastProcess, nil
		}
	case TwoInput:
		switch shape {
		case kprocessor.ShapeCoProcess:
			return KindCoProcess, nil
		case kprocessor.ShapeKeyedCoProcess:
			if !in.Keyed || !in.SecondKeyed {
				return 0, mismatch(in, shape, "key both inputs first")
			}
			return KindKeyedCoProcess, nil
		}
	}
	return 0, mismatch(in, shape, "")
}

func mismatch(in Input, shape kprocessor.Shape, hint string) error {
	if hint == "" {
		return fmt.Errorf("%w: %s cannot be attached to %s", ErrOperatorMismatch, shape, in)
	}
	return fmt.Errorf("%w: %s cannot be attached to %s, %s", ErrOperatorMismatch, shape, in, hint)
}
