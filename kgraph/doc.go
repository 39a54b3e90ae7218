// Package kgraph is the transformation graph behind a kflow topology.
//
// # Overview
//
// A Graph holds one Node per logical operator and one Edge per producer to
// consumer connection. It is append-only: nodes and edges get ids in
// creation order and are never removed. The fluent API in package kflow
// drives it; this package can also be used directly.
//
//   - **Node**: operator kind, parallelism, max parallelism (key-group
//     count), resources, output type and the key material of every keyed
//     input
//   - **Edge**: source, target, the logical input it feeds and its
//     partitioner
//   - **Resolver**: the builder-wide defaults new nodes snapshot
//   - **Snapshot**: an immutable deep copy for compilers and renderers
//
// # Basic Usage
//
//	r, _ := kgraph.NewResolver(4, 0)
//	g := kgraph.NewGraph(r)
//
//	src, _ := g.AddOperator(kgraph.NodeSpec{
//	    Kind:       koperator.KindSource,
//	    Name:       "Source: orders",
//	    OutputType: ktype.Of[Order](),
//	})
//
//	// Parallelism 2 differs from the source's 4: the edge is Rebalance.
//	m, _ := g.AddOperator(kgraph.NodeSpec{
//	    Kind:        koperator.KindMap,
//	    OutputType:  ktype.Of[int](),
//	    Parallelism: 2,
//	}, kgraph.Input{Source: src.ID})
//
//	snap := g.Snapshot()
//	for _, e := range snap.InEdges(m.ID) {
//	    fmt.Println(e) // 1 -> 2 [REBALANCE]
//	}
//
// # Snapshot Semantics
//
// Parallelism and max parallelism are copied from the Resolver when a node
// is created. Changing a default later only affects nodes created after
// the change. SetParallelism changes a single node and always wins.
//
// The partitioner of an edge is decided once, by AddOperator, from the
// partitioner the caller requested and the parallelism of both endpoints
// at that moment. Later calls never rewrite an edge. If the endpoints of a
// Forward edge are given different parallelism afterwards, Validate
// reports it.
//
// Resources are tracked independently of parallelism. A node without a
// SetResources call has no resource constraint; nothing is inherited from
// neighbours.
//
// # Validation
//
// AddOperator validates everything it needs before touching the graph, so
// a failed call leaves the graph unchanged. Snapshot.Validate performs the
// remaining static checks and returns every finding, combined with
// go.uber.org/multierr:
//
//   - **Cycle Detection**: graphs built with AddEdge may contain cycles
//   - **Forward Edges**: both endpoints must have the same parallelism
//   - **Key Groups**: key-group edges with an explicit count must match the
//     consumer's max parallelism, and all edges of one input must agree on
//     keyedness
//   - **Sinks**: sinks cannot have outputs
//   - **UIDs**: explicit operator UIDs must be unique
//   - **Size Limits**: MaxNodesPerGraph, MaxOutputsPerNode
//
// All validation errors use sentinel errors (ErrCycleDetected,
// ErrInvalidPartitioner, etc.) that can be checked with errors.Is().
//
// # Thread Safety
//
// IMPORTANT: Graph is NOT safe for concurrent use. All construction must
// happen on a single goroutine. A Snapshot taken after construction has
// finished is immutable and safe to share.
package kgraph
