package kflow

import (
	"fmt"
	"io"
	"os"

	"github.com/birdayz/kflow/kgraph"
	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/ktype"
)

// Sink consumes the elements of a stream. Connectors implement it; the
// topology only records it on the sink node.
type Sink[T any] interface {
	// Name is shown in the operator name, prefixed with "Sink: ".
	Name() string
}

// PrintSink writes every element on its own line.
type PrintSink[T any] struct {
	Writer io.Writer
}

func (PrintSink[T]) Name() string { return "Print to Std. Out" }

// Write prints v. A nil Writer prints to stdout.
func (p PrintSink[T]) Write(v T) error {
	w := p.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprintln(w, v)
	return err
}

// SinkHandle is the handle on a sink node. Sinks have no output, so the
// handle only allows configuring the node.
type SinkHandle struct {
	env  *Environment
	node kgraph.NodeID
}

// ID returns the sink node.
func (h *SinkHandle) ID() kgraph.NodeID {
	return h.node
}

func (h *SinkHandle) SetParallelism(n int) error {
	return h.env.mutate("SetParallelism", h.node, func(id kgraph.NodeID) error {
		return h.env.graph.SetParallelism(id, n)
	})
}

func (h *SinkHandle) SetMaxParallelism(n int) error {
	return h.env.mutate("SetMaxParallelism", h.node, func(id kgraph.NodeID) error {
		return h.env.graph.SetMaxParallelism(id, n)
	})
}

func (h *SinkHandle) SetResources(minimum, preferred kgraph.ResourceSpec) error {
	return h.env.mutate("SetResources", h.node, func(id kgraph.NodeID) error {
		return h.env.graph.SetResources(id, minimum, preferred)
	})
}

func (h *SinkHandle) Name(name string) error {
	return h.env.mutate("Name", h.node, func(id kgraph.NodeID) error {
		return h.env.graph.SetName(id, name)
	})
}

func (h *SinkHandle) SetDescription(description string) error {
	return h.env.mutate("SetDescription", h.node, func(id kgraph.NodeID) error {
		return h.env.graph.SetDescription(id, description)
	})
}

func (h *SinkHandle) SetUID(uid string) error {
	return h.env.mutate("SetUID", h.node, func(id kgraph.NodeID) error {
		return h.env.graph.SetUID(id, uid)
	})
}

func addSink[T any](s *DataStream[T], sink Sink[T], name string, opts []OpOption) (*SinkHandle, error) {
	n, err := s.env.addOperator(operator{
		kind:       koperator.KindSink,
		name:       name,
		outputType: ktype.Of[T](),
		stateKeys:  []*kgraph.StateKey{s.key.stateKey()},
		function:   sink,
	}, opts, s.graphInputs(0)...)
	if err != nil {
		return nil, err
	}
	return &SinkHandle{env: s.env, node: n.ID}, nil
}

// SinkTo writes s to sink.
func SinkTo[T any](s *DataStream[T], sink Sink[T], opts ...OpOption) (*SinkHandle, error) {
	if sink == nil {
		return nil, s.env.reject("SinkTo", misuse("sink is nil"))
	}
	return addSink(s, sink, "Sink: "+sink.Name(), opts)
}

// Print writes every element of s to stdout.
func Print[T any](s *DataStream[T], opts ...OpOption) (*SinkHandle, error) {
	sink := PrintSink[T]{Writer: os.Stdout}
	return addSink[T](s, sink, sink.Name(), opts)
}
