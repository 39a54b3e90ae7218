package kflow

import (
	"fmt"
	"log/slog"

	"github.com/birdayz/kflow/kgraph"
	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/ktype"
)

// Environment owns one topology under construction. Streams created from
// it can only be combined with streams of the same environment.
//
// IMPORTANT: Environment is NOT safe for concurrent use. Build the topology
// from a single goroutine; snapshots returned by Export may be shared.
type Environment struct {
	graph *kgraph.Graph
	log   *slog.Logger

	parallelism    int
	maxParallelism int
}

// NewEnvironment creates an environment with default parallelism 1 unless
// configured otherwise.
func NewEnvironment(opts ...Option) (*Environment, error) {
	e := &Environment{
		log:         NullLogger(),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(e)
	}

	r, err := kgraph.NewResolver(e.parallelism, e.maxParallelism)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStructuralMisuse, err)
	}
	e.graph = kgraph.NewGraph(r)
	return e, nil
}

// MustNewEnvironment is like NewEnvironment but panics on error.
func MustNewEnvironment(opts ...Option) *Environment {
	return Must(NewEnvironment(opts...))
}

// Parallelism returns the current default parallelism.
func (e *Environment) Parallelism() int {
	return e.graph.Resolver().DefaultParallelism()
}

// SetParallelism changes the default parallelism for operators created from
// now on. Existing operators keep theirs.
func (e *Environment) SetParallelism(n int) error {
	if err := e.graph.Resolver().SetDefaultParallelism(n); err != nil {
		return fmt.Errorf("%w: %w", ErrStructuralMisuse, err)
	}
	e.log.Debug("Default parallelism changed", "parallelism", n)
	return nil
}

// MaxParallelism returns the default key-group count, 0 if derived.
func (e *Environment) MaxParallelism() int {
	return e.graph.Resolver().DefaultMaxParallelism()
}

// SetMaxParallelism changes the default key-group count for operators
// created from now on.
func (e *Environment) SetMaxParallelism(n int) error {
	if err := e.graph.Resolver().SetDefaultMaxParallelism(n); err != nil {
		return fmt.Errorf("%w: %w", ErrStructuralMisuse, err)
	}
	e.log.Debug("Default max parallelism changed", "maxParallelism", n)
	return nil
}

// Export returns an immutable snapshot of the topology built so far. It
// does not change the environment and can be called any number of times.
func (e *Environment) Export() *kgraph.Snapshot {
	return e.graph.Snapshot()
}

// Validate exports the topology and runs the static checks on it.
func (e *Environment) Validate() error {
	return e.Export().Validate()
}

// operator describes a node a fluent call wants to add.
type operator struct {
	kind        koperator.Kind
	name        string
	description string
	outputType  *ktype.Descriptor
	nonParallel bool
	stateKeys   []*kgraph.StateKey
	function    any
}

// addOperator adds a node and its input edges in one step. opts override
// the operator's defaults. Nothing is added if an error is returned.
func (e *Environment) addOperator(op operator, opts []OpOption, inputs ...kgraph.Input) (*kgraph.Node, error) {
	cfg := opConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.err != nil {
		return nil, e.reject(op.kind.String(), fmt.Errorf("%w: %w", ErrStructuralMisuse, cfg.err))
	}

	spec := kgraph.NodeSpec{
		Name:           op.name,
		Description:    op.description,
		Kind:           op.kind,
		OutputType:     op.outputType,
		Parallelism:    cfg.parallelism,
		MaxParallelism: cfg.maxParallelism,
		NonParallel:    op.nonParallel,
		UID:            cfg.uid,
		Resources:      cfg.resources,
		StateKeys:      op.stateKeys,
		Function:       op.function,
	}
	if cfg.name != "" {
		spec.Name = cfg.name
	}
	if cfg.description != "" {
		spec.Description = cfg.description
	}
	if cfg.outputType != nil {
		spec.OutputType = cfg.outputType
	}

	n, err := e.graph.AddOperator(spec, inputs...)
	if err != nil {
		return nil, e.reject(op.kind.String(), fmt.Errorf("%w: %w", ErrStructuralMisuse, err))
	}

	e.log.Debug("Operator added",
		"id", n.ID,
		"name", n.Name,
		"kind", n.Kind,
		"parallelism", n.Parallelism,
		"maxParallelism", n.MaxParallelism,
		"keyed", n.IsKeyed(),
	)
	for _, id := range n.InEdges {
		edge, _ := e.graph.Edge(id)
		e.log.Debug("Edge added",
			"id", edge.ID,
			"source", edge.Source,
			"target", edge.Target,
			"input", edge.InputIndex,
			"partitioner", edge.Partitioner.String(),
		)
	}
	return n, nil
}

// mutate changes an existing node.
func (e *Environment) mutate(call string, id kgraph.NodeID, fn func(kgraph.NodeID) error) error {
	if err := fn(id); err != nil {
		return e.reject(call, fmt.Errorf("%w: %w", ErrStructuralMisuse, err))
	}
	e.log.Debug("Operator changed", "id", id, "call", call)
	return nil
}

// reject logs a failed call and returns err unchanged.
func (e *Environment) reject(call string, err error) error {
	e.log.Debug("Call rejected", "call", call, "error", err)
	return err
}
