package kflow

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/birdayz/kflow/kgraph"
	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/kprocessor"
	"github.com/birdayz/kflow/kwindow"
)

var sum = kprocessor.Reduce(func(a, b int64) int64 { return a + b })

func keyedNumbers(t *testing.T, env *Environment) *DataStream[int64] {
	t.Helper()
	keyed, err := KeyBy(numbers(t, env), func(v int64) int64 { return v % 10 })
	assert.NoError(t, err)
	return keyed
}

func TestWindow(t *testing.T) {
	t.Run("reduce", func(t *testing.T) {
		env := newTestEnv(t, WithDefaultParallelism(2))
		w, err := Window(keyedNumbers(t, env), kwindow.Tumbling(time.Second))
		assert.NoError(t, err)
		out, err := Reduce(w, sum)
		assert.NoError(t, err)

		n := node(t, env, out.ID())
		assert.Equal(t, koperator.KindWindow, n.Kind)
		assert.Equal(t, "TumblingEventTimeWindows", n.Name)
		assert.Equal(t, "Window(TumblingEventTimeWindows(1s), EventTimeTrigger(), Reduce)", n.Description)
		assert.True(t, n.IsKeyed())
		assert.Equal(t, 2, n.Parallelism)
		assert.Equal(t, "int64", out.OutputType().String())
		assert.NoError(t, env.Validate())
	})

	t.Run("process window function with trigger and evictor", func(t *testing.T) {
		env := newTestEnv(t)
		w, err := Window(keyedNumbers(t, env), kwindow.Sliding(time.Minute, 10*time.Second),
			kwindow.WithTrigger(kwindow.PurgingTrigger{Nested: kwindow.CountTrigger{Count: 10}}),
			kwindow.WithEvictor(kwindow.CountEvictor{Count: 5}),
		)
		assert.NoError(t, err)
		out, err := ProcessWindow(w, func(ctx kprocessor.WindowContext, elements []int64, out kprocessor.Collector[string]) error {
			return nil
		})
		assert.NoError(t, err)

		n := node(t, env, out.ID())
		assert.Equal(t, "SlidingEventTimeWindows", n.Name)
		assert.Contains(t, n.Description, "PurgingTrigger(CountTrigger(10))")
		assert.Contains(t, n.Description, "CountEvictor(5)")
		assert.Contains(t, n.Description, "ProcessWindowFunction)")

		op, ok := n.Function.(WindowOperator)
		assert.True(t, ok)
		assert.Equal(t, "SlidingEventTimeWindows", op.Spec.Assigner.Name())
	})

	t.Run("aggregate", func(t *testing.T) {
		env := newTestEnv(t)
		w, err := Window(keyedNumbers(t, env), kwindow.Global(), kwindow.WithTrigger(kwindow.CountTrigger{Count: 3}))
		assert.NoError(t, err)
		out, err := Aggregate(w, kprocessor.Count[int64]())
		assert.NoError(t, err)
		assert.Equal(t, "Window(GlobalWindows(), CountTrigger(3), Aggregate)", node(t, env, out.ID()).Description)
	})

	t.Run("non-keyed stream", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := Window(numbers(t, env), kwindow.Tumbling(time.Second))
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
		assert.Contains(t, err.Error(), "WindowAll")
	})

	t.Run("invalid assigner", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := Window(keyedNumbers(t, env), kwindow.Tumbling(0))
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
		assert.True(t, errors.Is(err, kwindow.ErrInvalidWindow))
	})

	t.Run("description can be overridden", func(t *testing.T) {
		env := newTestEnv(t)
		w, err := Window(keyedNumbers(t, env), kwindow.Tumbling(time.Second))
		assert.NoError(t, err)
		out, err := Reduce(w, sum, WithName("sums"), WithDescription("per second sums"))
		assert.NoError(t, err)
		n := node(t, env, out.ID())
		assert.Equal(t, "sums", n.Name)
		assert.Equal(t, "per second sums", n.Description)
	})
}

func TestWindowAll(t *testing.T) {
	env := newTestEnv(t, WithDefaultParallelism(4))
	src := numbers(t, env)
	w, err := WindowAll(src, kwindow.TumblingProcessingTime(time.Minute))
	assert.NoError(t, err)
	out, err := Reduce(w, sum)
	assert.NoError(t, err)

	n := node(t, env, out.ID())
	assert.Equal(t, 1, n.Parallelism)
	assert.Equal(t, 1, n.MaxParallelism)
	assert.True(t, n.NonParallel)
	assert.Equal(t, "uint8", n.StateKeys[0].KeyType.String())

	edges := inEdges(t, env, out.ID())
	assert.Equal(t, []string{"HASH(uint8)"}, partitioners(edges))
	assert.NoError(t, env.Validate())

	assert.True(t, errors.Is(out.SetParallelism(2), kgraph.ErrNonParallel))

	t.Run("explicit parallelism", func(t *testing.T) {
		_, err := Reduce(w, sum, WithParallelism(2))
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
	})
}

func TestOverAggregate(t *testing.T) {
	over := kwindow.OverWindow("rowtime", kwindow.UnboundedRange(), "w")
	count := kprocessor.Count[int64]()

	t.Run("single window", func(t *testing.T) {
		env := newTestEnv(t)
		out, err := OverAggregate(keyedNumbers(t, env), count, over)
		assert.NoError(t, err)

		n := node(t, env, out.ID())
		assert.Equal(t, koperator.KindOverWindow, n.Kind)
		assert.Equal(t, "OverAggregate", n.Name)
		assert.Equal(t, "OVER(ORDER BY rowtime RANGE UNBOUNDED PRECEDING) AS w", n.Description)
	})

	t.Run("several windows", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := OverAggregate(keyedNumbers(t, env), count, over, over)
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
		assert.Contains(t, err.Error(), "only a single over window is supported")
		assert.Equal(t, 1, env.Export().Len())
	})

	t.Run("no window", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := OverAggregate(keyedNumbers(t, env), count)
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
	})

	t.Run("non-keyed stream", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := OverAggregate(numbers(t, env), count, over)
		assert.True(t, errors.Is(err, ErrStructuralMisuse))
	})

	t.Run("invalid window", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := OverAggregate(keyedNumbers(t, env), count, kwindow.OverWindow("", kwindow.RowsPreceding(5), ""))
		assert.True(t, errors.Is(err, kwindow.ErrInvalidWindow))
	})
}
