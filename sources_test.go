package kflow

import (
	"bytes"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/birdayz/kflow/kgraph"
	"github.com/birdayz/kflow/koperator"
)

type testSource struct{}

func (testSource) Name() string  { return "test" }
func (testSource) Bounded() bool { return false }

type testSink struct{}

func (testSink) Name() string { return "collect" }

func TestSources(t *testing.T) {
	t.Run("elements", func(t *testing.T) {
		env := newTestEnv(t, WithDefaultParallelism(3))
		s := words(t, env)
		n := node(t, env, s.ID())
		assert.Equal(t, "Source: Collection Source", n.Name)
		assert.Equal(t, koperator.KindSource, n.Kind)
		assert.Equal(t, "string", s.OutputType().String())

		src, ok := n.Function.(ElementsSource[string])
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b", "a"}, src.Elements)
	})

	t.Run("no elements", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := FromElements(env, []string{})
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
		assert.Equal(t, 0, env.Export().Len())
	})

	t.Run("sequence", func(t *testing.T) {
		env := newTestEnv(t, WithDefaultParallelism(3))
		s := numbers(t, env)
		n := node(t, env, s.ID())
		assert.Equal(t, "Source: Sequence Source", n.Name)
		assert.Equal(t, 3, n.Parallelism)
		assert.Equal(t, SequenceSource{From: 1, To: 100}, n.Function.(SequenceSource))
	})

	t.Run("empty sequence", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := FromSequence(env, 10, 1)
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
	})

	t.Run("custom source", func(t *testing.T) {
		env := newTestEnv(t)
		s, err := FromSource[int64](env, testSource{}, WithUID("ingest"))
		assert.NoError(t, err)
		n := node(t, env, s.ID())
		assert.Equal(t, "Source: test", n.Name)
		assert.Equal(t, "ingest", n.UID)
		assert.Equal(t, []kgraph.NodeID{s.ID()}, env.Export().Sources())
	})

	t.Run("nil source", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := FromSource[int64](env, nil)
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
	})
}

func TestSinks(t *testing.T) {
	t.Run("sink to", func(t *testing.T) {
		env := newTestEnv(t)
		src := numbers(t, env)
		h, err := SinkTo[int64](src, testSink{})
		assert.NoError(t, err)

		n := node(t, env, h.ID())
		assert.Equal(t, koperator.KindSink, n.Kind)
		assert.Equal(t, "Sink: collect", n.Name)
		assert.Equal(t, []kgraph.NodeID{h.ID()}, env.Export().Sinks())
		assert.NoError(t, env.Validate())
	})

	t.Run("print", func(t *testing.T) {
		env := newTestEnv(t)
		h, err := Print(words(t, env))
		assert.NoError(t, err)
		assert.Equal(t, "Print to Std. Out", node(t, env, h.ID()).Name)
	})

	t.Run("print sink writes lines", func(t *testing.T) {
		var buf bytes.Buffer
		sink := PrintSink[int]{Writer: &buf}
		assert.NoError(t, sink.Write(1))
		assert.NoError(t, sink.Write(2))
		assert.Equal(t, "1\n2\n", buf.String())
	})

	t.Run("keyed sink", func(t *testing.T) {
		env := newTestEnv(t)
		keyed, err := KeyBy(numbers(t, env), func(v int64) int64 { return v })
		assert.NoError(t, err)
		h, err := SinkTo[int64](keyed, testSink{})
		assert.NoError(t, err)
		assert.True(t, node(t, env, h.ID()).IsKeyed())
	})

	t.Run("handle mutators", func(t *testing.T) {
		env := newTestEnv(t, WithDefaultParallelism(2))
		h, err := SinkTo[int64](numbers(t, env), testSink{})
		assert.NoError(t, err)

		assert.NoError(t, h.Name("out"))
		assert.NoError(t, h.SetDescription("writes numbers"))
		assert.NoError(t, h.SetUID("sink-1"))
		assert.NoError(t, h.SetMaxParallelism(16))
		assert.NoError(t, h.SetParallelism(1))
		assert.NoError(t, h.SetResources(kgraph.ResourceSpec{CPUCores: 0.5}, kgraph.ResourceSpec{CPUCores: 1}))

		n := node(t, env, h.ID())
		assert.Equal(t, "out", n.Name)
		assert.Equal(t, "writes numbers", n.Description)
		assert.Equal(t, "sink-1", n.UID)
		assert.Equal(t, 1, n.Parallelism)
		assert.Equal(t, 16, n.MaxParallelism)
		assert.Equal(t, 0.5, n.Resources.Min.CPUCores)

		assert.True(t, errors.Is(h.SetParallelism(0), ErrStructuralMisuse))
	})

	t.Run("nil sink", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := SinkTo[int64](numbers(t, env), nil)
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
	})
}
