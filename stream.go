package kflow

import (
	"github.com/birdayz/kflow/kgraph"
	"github.com/birdayz/kflow/kpartition"
	"github.com/birdayz/kflow/ktype"
)

// upstream is one producer a handle draws from, together with the
// partitioner the next consumer's edge will be asked to use. A nil
// partitioner asks for the default rule.
type upstream struct {
	node        kgraph.NodeID
	partitioner kpartition.Partitioner
}

// keying is the key tag of a keyed handle.
type keying struct {
	selector kpartition.KeySelector
	keyType  *ktype.Descriptor
}

func (k *keying) stateKey() *kgraph.StateKey {
	if k == nil {
		return nil
	}
	return &kgraph.StateKey{Selector: k.selector, KeyType: k.keyType}
}

// DataStream is a handle on a stream of T.
//
// A handle returned by an operator call owns that operator's node; its
// mutators (SetParallelism, Name, ...) change the node. Handles returned by
// KeyBy, Union and the partitioning methods are virtual: they only record
// how the next operator connects to its producers, and their mutators fail
// with ErrStructuralMisuse.
type DataStream[T any] struct {
	env *Environment
	// node is 0 for virtual handles.
	node       kgraph.NodeID
	inputs     []upstream
	key        *keying
	asyncState bool
	outputType *ktype.Descriptor
}

func newStream[T any](env *Environment, n *kgraph.Node) *DataStream[T] {
	return &DataStream[T]{
		env:        env,
		node:       n.ID,
		inputs:     []upstream{{node: n.ID}},
		outputType: n.OutputType,
	}
}

// derive returns a virtual copy of s.
func (s *DataStream[T]) derive() *DataStream[T] {
	return &DataStream[T]{
		env:        s.env,
		inputs:     append([]upstream(nil), s.inputs...),
		key:        s.key,
		asyncState: s.asyncState,
		outputType: s.outputType,
	}
}

// Environment returns the environment the stream belongs to.
func (s *DataStream[T]) Environment() *Environment {
	return s.env
}

// ID returns the node the handle owns, or 0 for virtual handles.
func (s *DataStream[T]) ID() kgraph.NodeID {
	return s.node
}

// IsKeyed reports whether the stream is keyed.
func (s *DataStream[T]) IsKeyed() bool {
	return s.key != nil
}

// KeyType returns the key type of a keyed stream, nil otherwise.
func (s *DataStream[T]) KeyType() *ktype.Descriptor {
	if s.key == nil {
		return nil
	}
	return s.key.keyType
}

// OutputType returns the type descriptor of the stream's elements.
func (s *DataStream[T]) OutputType() *ktype.Descriptor {
	return s.outputType
}

// Parallelism returns the parallelism of the owned node, or 0 for virtual
// handles.
func (s *DataStream[T]) Parallelism() int {
	if s.node == 0 {
		return 0
	}
	n, _ := s.env.graph.Node(s.node)
	return n.Parallelism
}

// graphInputs returns the edges a consumer of s needs on the given input.
func (s *DataStream[T]) graphInputs(index int) []kgraph.Input {
	out := make([]kgraph.Input, len(s.inputs))
	for i, in := range s.inputs {
		out[i] = kgraph.Input{Source: in.node, InputIndex: index, Requested: in.partitioner}
	}
	return out
}

func (s *DataStream[T]) mutate(call string, fn func(kgraph.NodeID) error) error {
	if s.node == 0 {
		kind := "partitioned"
		if s.key != nil {
			kind = "keyed"
		}
		return s.env.reject(call, misuse("%s is not supported on a %s stream, it does not own an operator", call, kind))
	}
	return s.env.mutate(call, s.node, fn)
}

// SetParallelism overrides the parallelism of the stream's operator. Edges
// that already exist keep their partitioners.
func (s *DataStream[T]) SetParallelism(n int) error {
	return s.mutate("SetParallelism", func(id kgraph.NodeID) error {
		return s.env.graph.SetParallelism(id, n)
	})
}

// SetMaxParallelism overrides the key-group count of the stream's operator.
func (s *DataStream[T]) SetMaxParallelism(n int) error {
	return s.mutate("SetMaxParallelism", func(id kgraph.NodeID) error {
		return s.env.graph.SetMaxParallelism(id, n)
	})
}

// SetResources records the minimum and preferred resources of the stream's
// operator.
func (s *DataStream[T]) SetResources(minimum, preferred kgraph.ResourceSpec) error {
	return s.mutate("SetResources", func(id kgraph.NodeID) error {
		return s.env.graph.SetResources(id, minimum, preferred)
	})
}

// Name sets the display name of the stream's operator.
func (s *DataStream[T]) Name(name string) error {
	return s.mutate("Name", func(id kgraph.NodeID) error {
		return s.env.graph.SetName(id, name)
	})
}

// SetDescription sets the description of the stream's operator.
func (s *DataStream[T]) SetDescription(description string) error {
	return s.mutate("SetDescription", func(id kgraph.NodeID) error {
		return s.env.graph.SetDescription(id, description)
	})
}

// SetUID sets a stable id for the stream's operator.
func (s *DataStream[T]) SetUID(uid string) error {
	return s.mutate("SetUID", func(id kgraph.NodeID) error {
		return s.env.graph.SetUID(id, uid)
	})
}

// EnableAsyncState switches the keyed stream to asynchronous state access.
// A KeyedProcessFunction attached afterwards runs in an AsyncKeyedProcess
// operator.
func (s *DataStream[T]) EnableAsyncState() (*DataStream[T], error) {
	if s.key == nil {
		return nil, s.env.reject("EnableAsyncState",
			misuse("async state can only be enabled on a keyed stream"))
	}
	s.asyncState = true
	return s, nil
}

// repartition returns a virtual handle whose inputs all use p. The result
// is not keyed.
func (s *DataStream[T]) repartition(p kpartition.Partitioner) *DataStream[T] {
	d := s.derive()
	for i := range d.inputs {
		d.inputs[i].partitioner = p
	}
	d.key = nil
	d.asyncState = false
	return d
}

// Broadcast sends every element to every subtask of the next operator.
func (s *DataStream[T]) Broadcast() *DataStream[T] {
	return s.repartition(kpartition.Broadcast{})
}

// Shuffle distributes elements uniformly at random.
func (s *DataStream[T]) Shuffle() *DataStream[T] {
	return s.repartition(kpartition.Shuffle{})
}

// Forward sends elements to the subtask with the same index. The next
// operator must have the same parallelism.
func (s *DataStream[T]) Forward() *DataStream[T] {
	return s.repartition(kpartition.Forward{})
}

// Rebalance distributes elements round-robin over all subtasks.
func (s *DataStream[T]) Rebalance() *DataStream[T] {
	return s.repartition(kpartition.Rebalance{})
}

// Rescale distributes elements round-robin over a local subset of
// subtasks.
func (s *DataStream[T]) Rescale() *DataStream[T] {
	return s.repartition(kpartition.Rescale{})
}

// Global sends all elements to the first subtask.
func (s *DataStream[T]) Global() *DataStream[T] {
	return s.repartition(kpartition.Global{})
}
