package kflow

import (
	"github.com/birdayz/kflow/kgraph"
	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/kpartition"
	"github.com/birdayz/kflow/kprocessor"
	"github.com/birdayz/kflow/ktype"
)

// Union merges streams of the same type. The result is a virtual handle:
// the next operator gets one edge per contributing producer, each with the
// partitioner its handle carried. A stream may be unioned with itself.
//
// All streams must be either unkeyed or keyed by the same key type.
func Union[T any](first *DataStream[T], others ...*DataStream[T]) (*DataStream[T], error) {
	u := first.derive()
	u.asyncState = false
	for i, o := range others {
		if o.env != first.env {
			return nil, first.env.reject("Union", misuse("cannot union streams of different environments"))
		}
		if (o.key == nil) != (first.key == nil) {
			return nil, first.env.reject("Union", misuse("cannot union keyed and non-keyed streams (stream %d)", i+1))
		}
		if o.key != nil && !o.key.keyType.Equal(first.key.keyType) {
			return nil, first.env.reject("Union", misuse("cannot union streams keyed by %s and %s", first.key.keyType, o.key.keyType))
		}
		u.inputs = append(u.inputs, o.inputs...)
	}
	first.env.log.Debug("Streams unioned", "streams", len(others)+1, "inputs", len(u.inputs))
	return u, nil
}

// ConnectedStreams are two streams, possibly of different types, consumed
// by one two-input operator.
type ConnectedStreams[A, B any] struct {
	first  *DataStream[A]
	second *DataStream[B]
}

// Connect pairs two streams of the same environment.
func Connect[A, B any](first *DataStream[A], second *DataStream[B]) (*ConnectedStreams[A, B], error) {
	if first.env != second.env {
		return nil, first.env.reject("Connect", misuse("cannot connect streams of different environments"))
	}
	return &ConnectedStreams[A, B]{first: first, second: second}, nil
}

// First returns the first input.
func (c *ConnectedStreams[A, B]) First() *DataStream[A] { return c.first }

// Second returns the second input.
func (c *ConnectedStreams[A, B]) Second() *DataStream[B] { return c.second }

// KeyByConnected keys both inputs. The selectors must produce the same key
// type.
func KeyByConnected[A, B, K any](c *ConnectedStreams[A, B], first func(A) K, second func(B) K, opts ...KeyOption) (*ConnectedStreams[A, B], error) {
	a, err := KeyBy(c.first, first, opts...)
	if err != nil {
		return nil, err
	}
	b, err := KeyBy(c.second, second, opts...)
	if err != nil {
		return nil, err
	}
	return &ConnectedStreams[A, B]{first: a, second: b}, nil
}

func applyCo[A, B, O any](c *ConnectedStreams[A, B], op operator, opts []OpOption) (*DataStream[O], error) {
	env := c.first.env
	if c.first.key != nil && c.second.key != nil && !c.first.key.keyType.Equal(c.second.key.keyType) {
		return nil, env.reject(op.kind.String(),
			misuse("connected inputs are keyed by %s and %s", c.first.key.keyType, c.second.key.keyType))
	}
	if op.outputType == nil {
		op.outputType = ktype.Of[O]()
	}
	op.stateKeys = []*kgraph.StateKey{c.first.key.stateKey(), c.second.key.stateKey()}
	inputs := append(c.first.graphInputs(0), c.second.graphInputs(1)...)

	n, err := env.addOperator(op, opts, inputs...)
	if err != nil {
		return nil, err
	}
	return newStream[O](env, n), nil
}

// CoMapFunc maps the elements of both inputs to a common output type.
type CoMapFunc[A, B, O any] struct {
	Map1 kprocessor.MapFunc[A, O]
	Map2 kprocessor.MapFunc[B, O]
}

// CoMap applies map1 to the first and map2 to the second input.
func CoMap[A, B, O any](c *ConnectedStreams[A, B], map1 kprocessor.MapFunc[A, O], map2 kprocessor.MapFunc[B, O], opts ...OpOption) (*DataStream[O], error) {
	if map1 == nil || map2 == nil {
		return nil, c.first.env.reject("CoMap", misuse("map function is nil"))
	}
	return applyCo[A, B, O](c, operator{
		kind:     koperator.KindCoMap,
		name:     "Co-Map",
		function: CoMapFunc[A, B, O]{Map1: map1, Map2: map2},
	}, opts)
}

// CoFlatMapFunc flat maps the elements of both inputs to a common output
// type.
type CoFlatMapFunc[A, B, O any] struct {
	FlatMap1 kprocessor.FlatMapFunc[A, O]
	FlatMap2 kprocessor.FlatMapFunc[B, O]
}

// CoFlatMap applies flatMap1 to the first and flatMap2 to the second input.
func CoFlatMap[A, B, O any](c *ConnectedStreams[A, B], flatMap1 kprocessor.FlatMapFunc[A, O], flatMap2 kprocessor.FlatMapFunc[B, O], opts ...OpOption) (*DataStream[O], error) {
	if flatMap1 == nil || flatMap2 == nil {
		return nil, c.first.env.reject("CoFlatMap", misuse("flat map function is nil"))
	}
	return applyCo[A, B, O](c, operator{
		kind:     koperator.KindCoFlatMap,
		name:     "Co-Flat Map",
		function: CoFlatMapFunc[A, B, O]{FlatMap1: flatMap1, FlatMap2: flatMap2},
	}, opts)
}

// ProcessCo attaches a CoProcessFunction to the connected streams.
func ProcessCo[A, B, O any](c *ConnectedStreams[A, B], fn kprocessor.CoProcessFunction[A, B, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, c.first.env.reject("Process", misuse("process function is nil"))
	}
	return processTwoInput[A, B, O](c, fn, opts)
}

// ProcessKeyedCo attaches a KeyedCoProcessFunction. Both inputs must be
// keyed.
func ProcessKeyedCo[A, B, O any](c *ConnectedStreams[A, B], fn kprocessor.KeyedCoProcessFunction[A, B, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, c.first.env.reject("Process", misuse("process function is nil"))
	}
	return processTwoInput[A, B, O](c, fn, opts)
}

func processTwoInput[A, B, O any](c *ConnectedStreams[A, B], fn kprocessor.Function, opts []OpOption) (*DataStream[O], error) {
	kind, err := koperator.Select(koperator.Input{
		Connection:  koperator.TwoInput,
		Keyed:       c.first.key != nil,
		SecondKeyed: c.second.key != nil,
	}, fn.Shape())
	if err != nil {
		return nil, c.first.env.reject("Process", err)
	}
	name := "Co-Process"
	if kind == koperator.KindKeyedCoProcess {
		name = "Co-Keyed-Process"
	}
	return applyCo[A, B, O](c, operator{kind: kind, name: name, function: fn}, opts)
}

// BroadcastStateDescriptor declares a piece of broadcast state shared by
// all subtasks of a broadcast process operator.
type BroadcastStateDescriptor struct {
	Name      string
	KeyType   *ktype.Descriptor
	ValueType *ktype.Descriptor
}

// BroadcastStream is a stream whose elements reach every subtask of the
// operator it is connected to, together with the broadcast state those
// elements may write.
type BroadcastStream[T any] struct {
	stream      *DataStream[T]
	descriptors []BroadcastStateDescriptor
}

// Descriptors returns the broadcast state declared for the stream.
func (b *BroadcastStream[T]) Descriptors() []BroadcastStateDescriptor {
	return append([]BroadcastStateDescriptor(nil), b.descriptors...)
}

// BroadcastWithState turns s into a broadcast stream carrying the given
// state. State names must be unique.
func BroadcastWithState[T any](s *DataStream[T], descriptors ...BroadcastStateDescriptor) (*BroadcastStream[T], error) {
	seen := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, s.env.reject("Broadcast", misuse("broadcast state name must not be empty"))
		}
		if seen[d.Name] {
			return nil, s.env.reject("Broadcast", misuse("broadcast state %q declared twice", d.Name))
		}
		seen[d.Name] = true
	}
	return &BroadcastStream[T]{
		stream:      s.repartition(kpartition.Broadcast{}),
		descriptors: append([]BroadcastStateDescriptor(nil), descriptors...),
	}, nil
}

// BroadcastConnectedStream is a stream connected with a broadcast stream.
type BroadcastConnectedStream[T, B any] struct {
	stream    *DataStream[T]
	broadcast *BroadcastStream[B]
}

// ConnectBroadcast connects s with the broadcast stream b. s may be keyed.
func ConnectBroadcast[T, B any](s *DataStream[T], b *BroadcastStream[B]) (*BroadcastConnectedStream[T, B], error) {
	if s.env != b.stream.env {
		return nil, s.env.reject("Connect", misuse("cannot connect streams of different environments"))
	}
	return &BroadcastConnectedStream[T, B]{stream: s, broadcast: b}, nil
}

// BroadcastOperator is the function recorded on broadcast process nodes.
type BroadcastOperator struct {
	Function kprocessor.Function
	States   []BroadcastStateDescriptor
}

// ProcessBroadcast attaches a BroadcastProcessFunction. The non-broadcast
// side must not be keyed.
func ProcessBroadcast[T, B, O any](c *BroadcastConnectedStream[T, B], fn kprocessor.BroadcastProcessFunction[T, B, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, c.stream.env.reject("Process", misuse("process function is nil"))
	}
	return processBroadcast[T, B, O](c, fn, opts)
}

// ProcessKeyedBroadcast attaches a KeyedBroadcastProcessFunction. The
// non-broadcast side must be keyed.
func ProcessKeyedBroadcast[T, B, O any](c *BroadcastConnectedStream[T, B], fn kprocessor.KeyedBroadcastProcessFunction[T, B, O], opts ...OpOption) (*DataStream[O], error) {
	if fn == nil {
		return nil, c.stream.env.reject("Process", misuse("process function is nil"))
	}
	return processBroadcast[T, B, O](c, fn, opts)
}

func processBroadcast[T, B, O any](c *BroadcastConnectedStream[T, B], fn kprocessor.Function, opts []OpOption) (*DataStream[O], error) {
	env := c.stream.env
	kind, err := koperator.Select(koperator.Input{
		Connection: koperator.BroadcastConnected,
		Keyed:      c.stream.key != nil,
	}, fn.Shape())
	if err != nil {
		return nil, env.reject("Process", err)
	}

	name := "Co-Process-Broadcast"
	if kind == koperator.KindKeyedBroadcastProcess {
		name = "Co-Process-Broadcast-Keyed"
	}
	op := operator{
		kind:       kind,
		name:       name,
		outputType: ktype.Of[O](),
		stateKeys:  []*kgraph.StateKey{c.stream.key.stateKey(), nil},
		function:   BroadcastOperator{Function: fn, States: c.broadcast.Descriptors()},
	}
	inputs := append(c.stream.graphInputs(0), c.broadcast.stream.graphInputs(1)...)
	n, err := env.addOperator(op, opts, inputs...)
	if err != nil {
		return nil, err
	}
	return newStream[O](env, n), nil
}
