package kgraph

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/kpartition"
)

// Validation limits to prevent pathological cases
const (
	MaxNodesPerGraph  = 10000
	MaxOutputsPerNode = 1000
)

// Validate runs the static checks a compiler of the snapshot relies on and
// returns all findings combined; use multierr.Errors to split them.
//
// Construction already rejects most mistakes at the offending call. What
// remains are problems that can only appear through later mutation, such
// as a Forward edge whose endpoints were given different parallelism
// afterwards, or through the low-level AddNode/AddEdge API.
func (s *Snapshot) Validate() error {
	if len(s.nodes) > MaxNodesPerGraph {
		return fmt.Errorf("%w: node count %d exceeds maximum %d",
			ErrInvalidTopology, len(s.nodes), MaxNodesPerGraph)
	}

	var err error
	err = multierr.Append(err, s.detectCycles())
	err = multierr.Append(err, s.validateNodes())
	err = multierr.Append(err, s.validateEdges())
	err = multierr.Append(err, s.validateKeyedness())
	err = multierr.Append(err, s.validateUIDs())
	return err
}

func (s *Snapshot) validateNodes() error {
	var err error
	for _, n := range s.nodes {
		if n.Parallelism < 1 {
			err = multierr.Append(err, fmt.Errorf("%w: %s has parallelism %d", ErrInvalidParallelism, n.Name, n.Parallelism))
		}
		if n.MaxParallelism < n.Parallelism {
			err = multierr.Append(err, fmt.Errorf("%w: max parallelism %d of %s is lower than its parallelism %d",
				ErrInvalidParallelism, n.MaxParallelism, n.Name, n.Parallelism))
		}
		if n.NonParallel && n.Parallelism != 1 {
			err = multierr.Append(err, fmt.Errorf("%w: %s has parallelism %d", ErrNonParallel, n.Name, n.Parallelism))
		}
		if n.Resources != nil {
			if rerr := n.Resources.Validate(); rerr != nil {
				err = multierr.Append(err, fmt.Errorf("%s: %w", n.Name, rerr))
			}
		}
		if n.Kind == koperator.KindSink && len(n.OutEdges) > 0 {
			err = multierr.Append(err, fmt.Errorf("%w: sink %s has %d outputs", ErrInvalidTopology, n.Name, len(n.OutEdges)))
		}
		if n.Kind == koperator.KindSource && len(n.InEdges) > 0 {
			err = multierr.Append(err, fmt.Errorf("%w: source %s has %d inputs", ErrInvalidTopology, n.Name, len(n.InEdges)))
		}
		if len(n.OutEdges) > MaxOutputsPerNode {
			err = multierr.Append(err, fmt.Errorf("%w: %s has %d outputs, exceeds maximum %d",
				ErrInvalidTopology, n.Name, len(n.OutEdges), MaxOutputsPerNode))
		}
	}
	return err
}

func (s *Snapshot) validateEdges() error {
	var err error
	for _, e := range s.edges {
		src, dst := s.nodes[e.Source-1], s.nodes[e.Target-1]
		switch p := e.Partitioner.(type) {
		case kpartition.Forward:
			if src.Parallelism != dst.Parallelism {
				err = multierr.Append(err, fmt.Errorf("%w: forward edge %s -> %s connects parallelism %d with %d",
					ErrInvalidPartitioner, src.Name, dst.Name, src.Parallelism, dst.Parallelism))
			}
		case kpartition.KeyGroup:
			if p.MaxParallelism != dst.MaxParallelism {
				err = multierr.Append(err, fmt.Errorf("%w: key-group edge %s -> %s uses %d key groups but %s has max parallelism %d",
					ErrInvalidPartitioner, src.Name, dst.Name, p.MaxParallelism, dst.Name, dst.MaxParallelism))
			}
		case nil:
			err = multierr.Append(err, fmt.Errorf("%w: edge %d has no partitioner", ErrInvalidPartitioner, e.ID))
		}
		if e.InputIndex < 0 || e.InputIndex >= max(dst.InputCount(), 1) {
			err = multierr.Append(err, fmt.Errorf("%w: edge %s targets input %d of %s",
				ErrInvalidTopology, e, e.InputIndex, dst.Name))
		}
	}
	return err
}

// validateKeyedness checks that all edges feeding one logical input agree
// on keyedness and key type, and match the state key recorded on the node.
func (s *Snapshot) validateKeyedness() error {
	var err error
	for _, n := range s.nodes {
		byInput := map[int][]*Edge{}
		var inputs []int
		for _, e := range s.InEdges(n.ID) {
			if _, ok := byInput[e.InputIndex]; !ok {
				inputs = append(inputs, e.InputIndex)
			}
			byInput[e.InputIndex] = append(byInput[e.InputIndex], e)
		}
		slices.Sort(inputs)
		for _, input := range inputs {
			edges := byInput[input]
			var keyed, unkeyed int
			for _, e := range edges {
				if _, _, ok := e.KeyMaterial(); ok {
					keyed++
				} else {
					unkeyed++
				}
			}
			if keyed > 0 && unkeyed > 0 {
				err = multierr.Append(err, fmt.Errorf("%w: input %d of %s mixes keyed and non-keyed edges",
					ErrInvalidTopology, input, n.Name))
				continue
			}

			var stateKey *StateKey
			if input < len(n.StateKeys) {
				stateKey = n.StateKeys[input]
			}
			if keyed > 0 && stateKey == nil {
				err = multierr.Append(err, fmt.Errorf("%w: input %d of %s is keyed but has no state key",
					ErrInvalidTopology, input, n.Name))
				continue
			}
			for _, e := range edges {
				if _, keyType, ok := e.KeyMaterial(); ok && !keyType.Equal(stateKey.KeyType) {
					err = multierr.Append(err, fmt.Errorf("%w: input %d of %s is keyed by %s and %s",
						ErrInvalidTopology, input, n.Name, stateKey.KeyType, keyType))
				}
			}
		}
		if n.Kind.RequiresKeyedInput() && (len(n.StateKeys) == 0 || n.StateKeys[0] == nil) {
			err = multierr.Append(err, fmt.Errorf("%w: %s operator %s has no keyed input", ErrInvalidTopology, n.Kind, n.Name))
		}
	}
	return err
}

func (s *Snapshot) validateUIDs() error {
	var err error
	seen := make(map[string]NodeID, len(s.nodes))
	for _, n := range s.nodes {
		if prev, ok := seen[n.UID]; ok {
			err = multierr.Append(err, fmt.Errorf("%w: uid %q is used by %s and %s",
				ErrInvalidTopology, n.UID, s.nodes[prev-1].Name, n.Name))
			continue
		}
		seen[n.UID] = n.ID
	}
	return err
}

// detectCycles reports one cycle if Kahn's algorithm cannot order every
// node. It does not recurse, so chain length is only bounded by
// MaxNodesPerGraph.
func (s *Snapshot) detectCycles() error {
	order, inDegree := s.kahn()
	if len(order) == len(s.nodes) {
		return nil
	}
	cycle := s.cycleIn(inDegree)
	names := make([]string, len(cycle))
	for i, id := range cycle {
		names[i] = s.nodes[id-1].Name
	}
	return fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(names, " -> "))
}

// cycleIn walks backwards from the first unordered node. Every unordered
// node has an in-edge from another unordered node, so the walk repeats a
// node after at most len(s.nodes) steps.
func (s *Snapshot) cycleIn(inDegree map[NodeID]int) []NodeID {
	var id NodeID
	for _, n := range s.nodes {
		if inDegree[n.ID] > 0 {
			id = n.ID
			break
		}
	}

	seen := make(map[NodeID]int)
	var walk []NodeID
	for {
		if i, ok := seen[id]; ok {
			cycle := append(walk[i:], id)
			slices.Reverse(cycle)
			return cycle
		}
		seen[id] = len(walk)
		walk = append(walk, id)

		next := NodeID(0)
		for _, e := range s.InEdges(id) {
			if inDegree[e.Source] > 0 {
				next = e.Source
				break
			}
		}
		if next == 0 {
			return walk
		}
		id = next
	}
}

// insertSorted inserts an item into a sorted slice maintaining sort order.
func insertSorted(slice []NodeID, item NodeID) []NodeID {
	idx := sort.Search(len(slice), func(i int) bool {
		return slice[i] >= item
	})
	return slices.Insert(slice, idx, item)
}

// kahn orders the nodes with Kahn's algorithm, breaking ties by id. Nodes
// on or behind a cycle are missing from the order and keep a positive
// residual in-degree.
func (s *Snapshot) kahn() ([]NodeID, map[NodeID]int) {
	inDegree := make(map[NodeID]int, len(s.nodes))
	queue := make([]NodeID, 0, len(s.nodes)/4)
	for _, n := range s.nodes {
		inDegree[n.ID] = len(n.InEdges)
		if len(n.InEdges) == 0 {
			queue = append(queue, n.ID)
		}
	}

	result := make([]NodeID, 0, len(s.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		for _, e := range s.OutEdges(id) {
			inDegree[e.Target]--
			if inDegree[e.Target] == 0 {
				queue = insertSorted(queue, e.Target)
			}
		}
	}
	return result, inDegree
}

// TopologicalOrder returns the node ids in dependency order using Kahn's
// algorithm. Ties are broken by id, so the order is deterministic.
func (s *Snapshot) TopologicalOrder() ([]NodeID, error) {
	order, _ := s.kahn()
	if len(order) != len(s.nodes) {
		return nil, fmt.Errorf("%w: topological sort failed", ErrCycleDetected)
	}
	return order, nil
}
