package kgraph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/kpartition"
	"github.com/birdayz/kflow/ktype"
)

// NodeID identifies a node. IDs are assigned in creation order starting at 1
// and never reused.
type NodeID int

// EdgeID identifies an edge. Like NodeIDs they are assigned in creation
// order starting at 1.
type EdgeID int

// uidNamespace seeds the derived operator UIDs.
var uidNamespace = uuid.MustParse("6b0e3f0c-4b0a-4c55-9f8e-8a4d6c1f2e71")

// StateKey is the key material of one keyed input.
type StateKey struct {
	Selector kpartition.KeySelector
	KeyType  *ktype.Descriptor
}

// Node is one logical operator.
type Node struct {
	ID NodeID
	// UID is the stable operator id. It is derived from ID and Kind unless
	// set explicitly, in which case UIDSet is true.
	UID    string
	UIDSet bool

	Name        string
	Description string
	Kind        koperator.Kind

	Parallelism    int
	MaxParallelism int
	// MaxParallelismSet is false while MaxParallelism is derived from
	// Parallelism. Only an explicit value bounds SetParallelism.
	MaxParallelismSet bool
	// NonParallel nodes always run with parallelism 1.
	NonParallel bool

	// Resources is nil if no constraint was recorded.
	Resources *Resources

	OutputType *ktype.Descriptor

	InEdges  []EdgeID
	OutEdges []EdgeID

	// StateKeys has one entry per logical input; nil entries are unkeyed
	// inputs.
	StateKeys []*StateKey

	// Function is the user function attached to the node, if any.
	Function any
}

// IsKeyed reports whether every input of the node is keyed.
func (n *Node) IsKeyed() bool {
	if len(n.StateKeys) == 0 {
		return false
	}
	for _, k := range n.StateKeys {
		if k == nil {
			return false
		}
	}
	return true
}

// InputCount returns the number of logical inputs.
func (n *Node) InputCount() int {
	return n.Kind.Inputs()
}

func (n *Node) clone() *Node {
	c := *n
	c.InEdges = slices.Clone(n.InEdges)
	c.OutEdges = slices.Clone(n.OutEdges)
	c.StateKeys = slices.Clone(n.StateKeys)
	if n.Resources != nil {
		r := *n.Resources
		c.Resources = &r
	}
	return &c
}

// Edge connects one producer with one consumer.
type Edge struct {
	ID     EdgeID
	Source NodeID
	Target NodeID
	// InputIndex is the logical input of Target the edge feeds: 0 for the
	// first input, 1 for the second input of a two-input operator.
	InputIndex  int
	Partitioner kpartition.Partitioner
}

// KeyMaterial returns the key selector and key type of a key-group edge.
func (e *Edge) KeyMaterial() (kpartition.KeySelector, *ktype.Descriptor, bool) {
	return kpartition.KeyMaterial(e.Partitioner)
}

func (e *Edge) String() string {
	return fmt.Sprintf("%d -> %d [%s]", e.Source, e.Target, e.Partitioner)
}

// NodeSpec describes a node to add.
type NodeSpec struct {
	Name        string
	Description string
	Kind        koperator.Kind
	OutputType  *ktype.Descriptor
	// Parallelism and MaxParallelism of 0 take the resolver defaults.
	Parallelism    int
	MaxParallelism int
	NonParallel    bool
	UID            string
	Resources      *Resources
	StateKeys      []*StateKey
	Function       any
}

// EdgeSpec describes an edge to add. The partitioner is stored as given.
type EdgeSpec struct {
	Source      NodeID
	Target      NodeID
	InputIndex  int
	Partitioner kpartition.Partitioner
}

// Input is one incoming connection of an operator added with AddOperator.
// Requested is the partitioner the producing handle carries, nil for the
// default rule.
type Input struct {
	Source     NodeID
	InputIndex int
	Requested  kpartition.Partitioner
}

// Sentinel errors for common failure cases.
var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrCycleDetected      = errors.New("cycle detected in graph")
	ErrInvalidTopology    = errors.New("invalid topology")
	ErrInvalidParallelism = errors.New("invalid parallelism")
	ErrNonParallel        = errors.New("operator is non-parallel")
	ErrInvalidResources   = errors.New("invalid resources")
	ErrInvalidPartitioner = errors.New("invalid partitioner")
)

// Graph is the append-only transformation graph. Nodes and edges are
// never removed.
//
// IMPORTANT: Graph is NOT safe for concurrent use. Snapshots taken after
// construction has finished may be shared freely.
type Graph struct {
	nodes    []*Node
	edges    []*Edge
	resolver *Resolver
}

// NewGraph creates an empty graph that resolves defaults with r.
func NewGraph(r *Resolver) *Graph {
	return &Graph{resolver: r}
}

// Resolver returns the resolver new nodes snapshot their defaults from.
func (g *Graph) Resolver() *Resolver {
	return g.resolver
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) node(id NodeID) (*Node, error) {
	if id < 1 || int(id) > len(g.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return g.nodes[id-1], nil
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, err := g.node(id)
	if err != nil {
		return nil, false
	}
	return n.clone(), true
}

// Edge returns a copy of the edge with the given id.
func (g *Graph) Edge(id EdgeID) (*Edge, bool) {
	if id < 1 || int(id) > len(g.edges) {
		return nil, false
	}
	return g.resolvedEdge(g.edges[id-1]), true
}

// resolvedEdge copies e with the key-group count of a KeyGroup edge taken
// from the target's current max parallelism.
func (g *Graph) resolvedEdge(e *Edge) *Edge {
	c := *e
	c.Partitioner = kpartition.ResolveKeyGroups(c.Partitioner, g.nodes[e.Target-1].MaxParallelism)
	return &c
}

// nextNodeID is the id AddNode hands out next.
func (g *Graph) nextNodeID() NodeID {
	return NodeID(len(g.nodes) + 1)
}

// newNode resolves spec into a node without adding it.
func (g *Graph) newNode(spec NodeSpec) (*Node, error) {
	res, err := g.resolver.Resolve(spec.Parallelism, spec.MaxParallelism, spec.NonParallel)
	if err != nil {
		return nil, err
	}
	if spec.Resources != nil {
		if err := spec.Resources.Validate(); err != nil {
			return nil, err
		}
	}

	id := g.nextNodeID()
	n := &Node{
		ID:             id,
		UID:            spec.UID,
		UIDSet:         spec.UID != "",
		Name:           spec.Name,
		Description:    spec.Description,
		Kind:           spec.Kind,
		Parallelism:       res.Parallelism,
		MaxParallelism:    res.MaxParallelism,
		MaxParallelismSet: res.MaxParallelismSet,
		NonParallel:       spec.NonParallel,
		OutputType:        spec.OutputType,
		StateKeys:         slices.Clone(spec.StateKeys),
		Function:          spec.Function,
	}
	if !n.UIDSet {
		n.UID = uuid.NewSHA1(uidNamespace, []byte(fmt.Sprintf("%d:%s", id, spec.Kind))).String()
	}
	if n.Name == "" {
		n.Name = spec.Kind.String()
	}
	if n.Description == "" {
		n.Description = n.Name
	}
	if spec.Resources != nil {
		r := *spec.Resources
		n.Resources = &r
	}
	return n, nil
}

// AddNode creates a node with a fresh id. Parallelism and max parallelism
// are snapshot from the resolver unless spec sets them.
func (g *Graph) AddNode(spec NodeSpec) (NodeID, error) {
	n, err := g.newNode(spec)
	if err != nil {
		return 0, err
	}
	g.nodes = append(g.nodes, n)
	return n.ID, nil
}

// AddEdge appends an edge. The partitioner is stored unchanged.
func (g *Graph) AddEdge(spec EdgeSpec) (EdgeID, error) {
	if spec.Partitioner == nil {
		return 0, fmt.Errorf("%w: edge %d -> %d has no partitioner", ErrInvalidPartitioner, spec.Source, spec.Target)
	}
	src, err := g.node(spec.Source)
	if err != nil {
		return 0, fmt.Errorf("source: %w", err)
	}
	dst, err := g.node(spec.Target)
	if err != nil {
		return 0, fmt.Errorf("target: %w", err)
	}
	return g.appendEdge(src, dst, spec.InputIndex, spec.Partitioner), nil
}

func (g *Graph) appendEdge(src, dst *Node, inputIndex int, p kpartition.Partitioner) EdgeID {
	e := &Edge{
		ID:          EdgeID(len(g.edges) + 1),
		Source:      src.ID,
		Target:      dst.ID,
		InputIndex:  inputIndex,
		Partitioner: p,
	}
	g.edges = append(g.edges, e)
	src.OutEdges = append(src.OutEdges, e.ID)
	dst.InEdges = append(dst.InEdges, e.ID)
	return e.ID
}

// AddOperator creates a node together with its input edges. The partitioner
// of every edge is decided here from the requested one and the parallelism
// of both endpoints. Either everything is added or, on error, nothing.
func (g *Graph) AddOperator(spec NodeSpec, inputs ...Input) (*Node, error) {
	n, err := g.newNode(spec)
	if err != nil {
		return nil, err
	}

	srcs := make([]*Node, len(inputs))
	parts := make([]kpartition.Partitioner, len(inputs))
	for i, in := range inputs {
		src, err := g.node(in.Source)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		if src.Kind == koperator.KindSink {
			return nil, fmt.Errorf("%w: sink %q cannot have outputs", ErrInvalidTopology, src.Name)
		}
		p, err := kpartition.Select(in.Requested, kpartition.Endpoints{
			ProducerParallelism: src.Parallelism,
			ConsumerParallelism: n.Parallelism,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s -> %s: %w", ErrInvalidPartitioner, src.Name, n.Name, err)
		}
		srcs[i] = src
		parts[i] = p
	}

	g.nodes = append(g.nodes, n)
	for i, in := range inputs {
		g.appendEdge(srcs[i], n, in.InputIndex, parts[i])
	}
	return n.clone(), nil
}

// SetParallelism overrides the parallelism of one node. Existing edges keep
// their partitioners. A derived max parallelism is derived again from the
// new value; an explicit one must not be exceeded.
func (g *Graph) SetParallelism(id NodeID, parallelism int) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	if parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be at least 1, got %d", ErrInvalidParallelism, parallelism)
	}
	if n.NonParallel && parallelism != 1 {
		return fmt.Errorf("%w: %s cannot run with parallelism %d", ErrNonParallel, n.Name, parallelism)
	}
	if !n.MaxParallelismSet {
		n.Parallelism = parallelism
		n.MaxParallelism = kpartition.ComputeDefaultMaxParallelism(parallelism)
		return nil
	}
	if parallelism > n.MaxParallelism {
		return fmt.Errorf("%w: parallelism %d of %s exceeds its max parallelism %d",
			ErrInvalidParallelism, parallelism, n.Name, n.MaxParallelism)
	}
	n.Parallelism = parallelism
	return nil
}

// SetMaxParallelism overrides the key-group count of one node.
func (g *Graph) SetMaxParallelism(id NodeID, maxParallelism int) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	if err := kpartition.CheckMaxParallelism(maxParallelism); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParallelism, err)
	}
	if n.NonParallel && maxParallelism != 1 {
		return fmt.Errorf("%w: %s cannot have max parallelism %d", ErrNonParallel, n.Name, maxParallelism)
	}
	if maxParallelism < n.Parallelism {
		return fmt.Errorf("%w: max parallelism %d of %s is lower than its parallelism %d",
			ErrInvalidParallelism, maxParallelism, n.Name, n.Parallelism)
	}
	n.MaxParallelism = maxParallelism
	n.MaxParallelismSet = true
	return nil
}

// SetResources records the resource pair of one node.
func (g *Graph) SetResources(id NodeID, minimum, preferred ResourceSpec) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	res, err := NewResources(minimum, preferred)
	if err != nil {
		return err
	}
	n.Resources = &res
	return nil
}

func (g *Graph) SetName(id NodeID, name string) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	n.Name = name
	return nil
}

func (g *Graph) SetDescription(id NodeID, description string) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	n.Description = description
	return nil
}

// SetUID sets an explicit operator UID. Uniqueness is checked by
// Snapshot.Validate.
func (g *Graph) SetUID(id NodeID, uid string) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	if uid == "" {
		return fmt.Errorf("%w: uid of %s must not be empty", ErrInvalidTopology, n.Name)
	}
	n.UID = uid
	n.UIDSet = true
	return nil
}

// Snapshot returns a deep copy of the graph. The graph is not modified and
// may be snapshot any number of times. Key-group edges that follow their
// consumer carry the consumer's max parallelism as of the snapshot.
func (g *Graph) Snapshot() *Snapshot {
	s := &Snapshot{
		nodes: make([]*Node, len(g.nodes)),
		edges: make([]*Edge, len(g.edges)),
	}
	for i, n := range g.nodes {
		s.nodes[i] = n.clone()
	}
	for i, e := range g.edges {
		s.edges[i] = g.resolvedEdge(e)
	}
	return s
}
