package kflow

import (
	"github.com/birdayz/kflow/kgraph"
	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/kprocessor"
	"github.com/birdayz/kflow/ktype"
)

// apply adds a single-input operator consuming s and returns a handle on
// its output.
func apply[T, O any](s *DataStream[T], op operator, opts []OpOption) (*DataStream[O], error) {
	if op.kind.RequiresKeyedInput() && s.key == nil {
		return nil, s.env.reject(op.kind.String(),
			misuse("%s requires a keyed stream, key the stream first", op.kind))
	}
	if op.name == "" {
		op.name = op.kind.String()
	}
	if op.outputType == nil {
		op.outputType = ktype.Of[O]()
	}
	op.stateKeys = []*kgraph.StateKey{s.key.stateKey()}

	n, err := s.env.addOperator(op, opts, s.graphInputs(0)...)
	if err != nil {
		return nil, err
	}
	return newStream[O](s.env, n), nil
}

// Map applies fn to every element.
func Map[T, O any](s *DataStream[T], fn kprocessor.MapFunc[T, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, s.env.reject("Map", misuse("map function is nil"))
	}
	return apply[T, O](s, operator{kind: koperator.KindMap, function: fn}, opts)
}

// FlatMap applies fn to every element; fn emits any number of results.
func FlatMap[T, O any](s *DataStream[T], fn kprocessor.FlatMapFunc[T, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, s.env.reject("FlatMap", misuse("flat map function is nil"))
	}
	return apply[T, O](s, operator{kind: koperator.KindFlatMap, function: fn}, opts)
}

// Filter keeps the elements fn accepts.
func Filter[T any](s *DataStream[T], fn kprocessor.FilterFunc[T], opts ...OpOption) (*DataStream[T], error) {
	if fn == nil {
		return nil, s.env.reject("Filter", misuse("filter function is nil"))
	}
	return apply[T, T](s, operator{kind: koperator.KindFilter, function: fn, outputType: s.outputType}, opts)
}

// Process attaches a ProcessFunction. s must not be keyed; keyed streams
// take a KeyedProcessFunction via ProcessKeyed.
func Process[T, O any](s *DataStream[T], fn kprocessor.ProcessFunction[T, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, s.env.reject("Process", misuse("process function is nil"))
	}
	return processOneInput[T, O](s, fn, opts)
}

// ProcessKeyed attaches a KeyedProcessFunction to a keyed stream. With
// async state enabled the function runs in an AsyncKeyedProcess operator.
func ProcessKeyed[T, O any](s *DataStream[T], fn kprocessor.KeyedProcessFunction[T, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, s.env.reject("Process", misuse("process function is nil"))
	}
	return processOneInput[T, O](s, fn, opts)
}

func processOneInput[T, O any](s *DataStream[T], fn kprocessor.Function, opts []OpOption) (*DataStream[O], error) {
	kind, err := koperator.Select(koperator.Input{
		Connection: koperator.OneInput,
		Keyed:      s.key != nil,
		AsyncState: s.asyncState,
	}, fn.Shape())
	if err != nil {
		return nil, s.env.reject("Process", err)
	}
	return apply[T, O](s, operator{kind: kind, function: fn}, opts)
}

// RollingReduce combines the elements of each key with fn and emits every
// intermediate result.
func RollingReduce[T any](s *DataStream[T], fn kprocessor.ReduceFunc[T], opts ...OpOption) (*DataStream[T], error) {
	if fn == nil {
		return nil, s.env.reject("Reduce", misuse("reduce function is nil"))
	}
	return apply[T, T](s, operator{
		kind:       koperator.KindReduce,
		name:       "Keyed Reduce",
		function:   fn,
		outputType: s.outputType,
	}, opts)
}
