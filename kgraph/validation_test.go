package kgraph

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"go.uber.org/multierr"

	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/kpartition"
	"github.com/birdayz/kflow/ktype"
)

func TestValidate(t *testing.T) {
	t.Run("valid graph", func(t *testing.T) {
		g := newTestGraph(t, 2)
		src := addTestSource(t, g, 0)
		m := addTestMap(t, g, 0, Input{Source: src.ID})
		_, err := g.AddOperator(NodeSpec{Kind: koperator.KindSink}, Input{Source: m.ID})
		assert.NoError(t, err)
		assert.NoError(t, g.Snapshot().Validate())
	})

	t.Run("forward edge diverged after creation", func(t *testing.T) {
		g := newTestGraph(t, 2)
		src := addTestSource(t, g, 0)
		m := addTestMap(t, g, 0, Input{Source: src.ID})
		assert.NoError(t, g.SetParallelism(m.ID, 1))

		err := g.Snapshot().Validate()
		assert.True(t, errors.Is(err, ErrInvalidPartitioner))
		assert.Contains(t, err.Error(), "forward edge")
	})

	t.Run("key groups follow the consumer", func(t *testing.T) {
		g := newTestGraph(t, 2)
		src := addTestSource(t, g, 0)
		kg, err := kpartition.NewKeyGroup(identity, ktype.Scalar("int"))
		assert.NoError(t, err)
		n, err := g.AddOperator(NodeSpec{
			Kind:      koperator.KindKeyedProcess,
			StateKeys: []*StateKey{{Selector: identity, KeyType: ktype.Scalar("int")}},
		}, Input{Source: src.ID, Requested: kg})
		assert.NoError(t, err)
		assert.NoError(t, g.Snapshot().Validate())

		assert.NoError(t, g.SetMaxParallelism(n.ID, 512))
		snap := g.Snapshot()
		assert.NoError(t, snap.Validate())
		assert.Equal(t, 512, snap.InEdges(n.ID)[0].Partitioner.(kpartition.KeyGroup).MaxParallelism)

		e, ok := g.Edge(snap.InEdges(n.ID)[0].ID)
		assert.True(t, ok)
		assert.Equal(t, 512, e.Partitioner.(kpartition.KeyGroup).MaxParallelism)
	})

	t.Run("explicit key groups differ from consumer", func(t *testing.T) {
		g := newTestGraph(t, 2)
		src, _ := g.AddNode(NodeSpec{Kind: koperator.KindSource})
		dst, err := g.AddNode(NodeSpec{
			Kind:           koperator.KindKeyedProcess,
			MaxParallelism: 512,
			StateKeys:      []*StateKey{{Selector: identity, KeyType: ktype.Scalar("int")}},
		})
		assert.NoError(t, err)
		kg, err := kpartition.NewKeyGroup(identity, ktype.Scalar("int"))
		assert.NoError(t, err)
		kg.MaxParallelism = 128
		_, err = g.AddEdge(EdgeSpec{Source: src, Target: dst, Partitioner: kg})
		assert.NoError(t, err)

		err = g.Snapshot().Validate()
		assert.True(t, errors.Is(err, ErrInvalidPartitioner))
		assert.Contains(t, err.Error(), "128 key groups")
	})

	t.Run("duplicate uids", func(t *testing.T) {
		g := newTestGraph(t, 1)
		a := addTestSource(t, g, 0)
		b := addTestSource(t, g, 0)
		assert.NoError(t, g.SetUID(a.ID, "same"))
		assert.NoError(t, g.SetUID(b.ID, "same"))

		err := g.Snapshot().Validate()
		assert.True(t, errors.Is(err, ErrInvalidTopology))
		assert.Contains(t, err.Error(), `uid "same"`)
	})

	t.Run("cycle", func(t *testing.T) {
		g := newTestGraph(t, 1)
		a, _ := g.AddNode(NodeSpec{Kind: koperator.KindMap, Name: "a"})
		b, _ := g.AddNode(NodeSpec{Kind: koperator.KindMap, Name: "b"})
		_, err := g.AddEdge(EdgeSpec{Source: a, Target: b, Partitioner: kpartition.Forward{}})
		assert.NoError(t, err)
		_, err = g.AddEdge(EdgeSpec{Source: b, Target: a, Partitioner: kpartition.Forward{}})
		assert.NoError(t, err)

		snap := g.Snapshot()
		err = snap.Validate()
		assert.True(t, errors.Is(err, ErrCycleDetected))
		assert.Contains(t, err.Error(), "a -> b -> a")

		_, err = snap.TopologicalOrder()
		assert.True(t, errors.Is(err, ErrCycleDetected))
	})

	t.Run("cycle behind a chain", func(t *testing.T) {
		g := newTestGraph(t, 1)
		src, _ := g.AddNode(NodeSpec{Kind: koperator.KindSource, Name: "src"})
		x, _ := g.AddNode(NodeSpec{Kind: koperator.KindMap, Name: "x"})
		y, _ := g.AddNode(NodeSpec{Kind: koperator.KindMap, Name: "y"})
		z, _ := g.AddNode(NodeSpec{Kind: koperator.KindMap, Name: "z"})
		for _, e := range [][2]NodeID{{src, x}, {x, y}, {y, x}, {y, z}} {
			_, err := g.AddEdge(EdgeSpec{Source: e[0], Target: e[1], Partitioner: kpartition.Forward{}})
			assert.NoError(t, err)
		}

		err := g.Snapshot().Validate()
		assert.True(t, errors.Is(err, ErrCycleDetected))
		assert.Contains(t, err.Error(), "x -> y -> x")
	})

	t.Run("long chain", func(t *testing.T) {
		g := newTestGraph(t, 1)
		prev := addTestSource(t, g, 0)
		for i := 0; i < 2000; i++ {
			prev = addTestMap(t, g, 0, Input{Source: prev.ID})
		}

		snap := g.Snapshot()
		assert.NoError(t, snap.Validate())
		order, err := snap.TopologicalOrder()
		assert.NoError(t, err)
		assert.Equal(t, 2001, len(order))
	})

	t.Run("mixed keyedness on one input", func(t *testing.T) {
		g := newTestGraph(t, 1)
		a, _ := g.AddNode(NodeSpec{Kind: koperator.KindSource})
		b, _ := g.AddNode(NodeSpec{Kind: koperator.KindMap})
		kg, err := kpartition.NewKeyGroup(identity, ktype.Scalar("int"))
		assert.NoError(t, err)
		kg.MaxParallelism = 128
		_, err = g.AddEdge(EdgeSpec{Source: a, Target: b, Partitioner: kg})
		assert.NoError(t, err)
		_, err = g.AddEdge(EdgeSpec{Source: a, Target: b, Partitioner: kpartition.Forward{}})
		assert.NoError(t, err)

		err = g.Snapshot().Validate()
		assert.True(t, errors.Is(err, ErrInvalidTopology))
		assert.Contains(t, err.Error(), "mixes keyed and non-keyed")
	})

	t.Run("keyed operator without keyed input", func(t *testing.T) {
		g := newTestGraph(t, 1)
		_, err := g.AddNode(NodeSpec{Kind: koperator.KindKeyedProcess, Name: "kp"})
		assert.NoError(t, err)
		err = g.Snapshot().Validate()
		assert.Contains(t, err.Error(), "has no keyed input")
	})

	t.Run("all findings are reported", func(t *testing.T) {
		g := newTestGraph(t, 2)
		src := addTestSource(t, g, 0)
		m := addTestMap(t, g, 0, Input{Source: src.ID})
		assert.NoError(t, g.SetParallelism(m.ID, 1))
		assert.NoError(t, g.SetUID(src.ID, "x"))
		assert.NoError(t, g.SetUID(m.ID, "x"))

		errs := multierr.Errors(g.Snapshot().Validate())
		assert.Equal(t, 2, len(errs))
	})
}

func TestTopologicalOrder(t *testing.T) {
	g := newTestGraph(t, 1)
	a := addTestSource(t, g, 0)
	b := addTestSource(t, g, 0)
	c := addTestMap(t, g, 0, Input{Source: b.ID})
	d := addTestMap(t, g, 0, Input{Source: a.ID}, Input{Source: c.ID})

	snap := g.Snapshot()
	order, err := snap.TopologicalOrder()
	assert.NoError(t, err)
	assert.Equal(t, []NodeID{a.ID, b.ID, c.ID, d.ID}, order)
	assert.Equal(t, []NodeID{a.ID, b.ID}, snap.Sources())
	assert.Equal(t, []NodeID(nil), snap.Sinks())
	assert.Equal(t, []NodeID{a.ID, c.ID}, snap.Upstream(d.ID))
}
