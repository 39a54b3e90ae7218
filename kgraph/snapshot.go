package kgraph

import (
	"slices"

	"github.com/birdayz/kflow/koperator"
)

// Snapshot is an immutable copy of a graph, handed to whatever compiles or
// renders the topology. Callers must not modify the returned nodes and
// edges.
type Snapshot struct {
	nodes []*Node
	edges []*Edge
}

// Len returns the number of nodes.
func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// Nodes returns all nodes ordered by id.
func (s *Snapshot) Nodes() []*Node {
	return slices.Clone(s.nodes)
}

// Edges returns all edges ordered by id.
func (s *Snapshot) Edges() []*Edge {
	return slices.Clone(s.edges)
}

func (s *Snapshot) Node(id NodeID) (*Node, bool) {
	if id < 1 || int(id) > len(s.nodes) {
		return nil, false
	}
	return s.nodes[id-1], true
}

func (s *Snapshot) Edge(id EdgeID) (*Edge, bool) {
	if id < 1 || int(id) > len(s.edges) {
		return nil, false
	}
	return s.edges[id-1], true
}

// InEdges returns the input edges of a node in creation order.
func (s *Snapshot) InEdges(id NodeID) []*Edge {
	n, ok := s.Node(id)
	if !ok {
		return nil
	}
	return s.resolveEdges(n.InEdges)
}

// OutEdges returns the output edges of a node in creation order.
func (s *Snapshot) OutEdges(id NodeID) []*Edge {
	n, ok := s.Node(id)
	if !ok {
		return nil
	}
	return s.resolveEdges(n.OutEdges)
}

func (s *Snapshot) resolveEdges(ids []EdgeID) []*Edge {
	out := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.edges[id-1])
	}
	return out
}

// EdgesBetween returns the edges from source to target.
func (s *Snapshot) EdgesBetween(source, target NodeID) []*Edge {
	var out []*Edge
	for _, e := range s.OutEdges(source) {
		if e.Target == target {
			out = append(out, e)
		}
	}
	return out
}

// Sources returns the nodes without inputs.
func (s *Snapshot) Sources() []NodeID {
	var out []NodeID
	for _, n := range s.nodes {
		if len(n.InEdges) == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}

// Sinks returns the sink nodes.
func (s *Snapshot) Sinks() []NodeID {
	var out []NodeID
	for _, n := range s.nodes {
		if n.Kind == koperator.KindSink {
			out = append(out, n.ID)
		}
	}
	return out
}

// IsKeyed reports whether every input of the node is keyed.
func (s *Snapshot) IsKeyed(id NodeID) bool {
	n, ok := s.Node(id)
	return ok && n.IsKeyed()
}

// Upstream returns the distinct producers feeding a node, ordered by id.
func (s *Snapshot) Upstream(id NodeID) []NodeID {
	var out []NodeID
	for _, e := range s.InEdges(id) {
		if !slices.Contains(out, e.Source) {
			out = append(out, e.Source)
		}
	}
	slices.Sort(out)
	return out
}
