package kprocessor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

type sliceCollector[T any] struct {
	values []T
}

func (c *sliceCollector[T]) Collect(v T) {
	c.values = append(c.values, v)
}

type testContext struct {
	context.Context
}

func (testContext) Timestamp() (time.Time, bool) { return time.Time{}, false }
func (testContext) CurrentWatermark() time.Time  { return time.Time{} }

func TestShapes(t *testing.T) {
	noop := func(Context, int, Collector[int]) error { return nil }
	keyedNoop := func(KeyedContext, int, Collector[int]) error { return nil }
	bcNoop := func(BroadcastContext, string, Collector[int]) error { return nil }

	tests := []struct {
		name string
		fn   Function
		want Shape
	}{
		{name: "process", fn: NewProcess(noop), want: ShapeProcess},
		{name: "keyed process", fn: NewKeyedProcess(keyedNoop), want: ShapeKeyedProcess},
		{
			name: "broadcast process",
			fn: NewBroadcastProcess(func(ReadOnlyContext, int, Collector[int]) error { return nil }, bcNoop),
			want: ShapeBroadcastProcess,
		},
		{
			name: "keyed broadcast process",
			fn: NewKeyedBroadcastProcess(func(KeyedReadOnlyContext, int, Collector[int]) error { return nil }, bcNoop),
			want: ShapeKeyedBroadcastProcess,
		},
		{name: "co process", fn: NewCoProcess(noop, noop), want: ShapeCoProcess},
		{name: "keyed co process", fn: NewKeyedCoProcess(keyedNoop, keyedNoop), want: ShapeKeyedCoProcess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn.Shape())
			assert.NotEqual(t, "UnknownFunction", tt.fn.Shape().String())
		})
	}
}

func TestNewProcess(t *testing.T) {
	fn := NewProcess(func(ctx Context, v string, out Collector[int]) error {
		out.Collect(len(v))
		return nil
	})

	out := &sliceCollector[int]{}
	ctx := testContext{Context: context.Background()}
	assert.NoError(t, fn.ProcessElement(ctx, "abc", out))
	assert.NoError(t, fn.ProcessElement(ctx, "hello", out))
	assert.Equal(t, []int{3, 5}, out.values)
}

func TestLifecycleOptions(t *testing.T) {
	var opened, closed bool
	fn := NewProcess(
		func(Context, int, Collector[int]) error { return nil },
		WithOpen(func(ctx context.Context) error {
			opened = true
			return nil
		}),
		WithClose(func() error {
			closed = true
			return errors.New("close failed")
		}),
	)

	lc, ok := fn.(Lifecycle)
	assert.True(t, ok)
	assert.NoError(t, lc.Open(context.Background()))
	assert.Error(t, lc.Close())
	assert.True(t, opened)
	assert.True(t, closed)
}

func TestLifecycleDefaults(t *testing.T) {
	fn := NewKeyedProcess(func(KeyedContext, int, Collector[int]) error { return nil })
	lc, ok := fn.(Lifecycle)
	assert.True(t, ok)
	assert.NoError(t, lc.Open(context.Background()))
	assert.NoError(t, lc.Close())
}

func TestMapFamily(t *testing.T) {
	t.Run("map", func(t *testing.T) {
		v, err := Map(strings.ToUpper)("abc")
		assert.NoError(t, err)
		assert.Equal(t, "ABC", v)
	})

	t.Run("flat map", func(t *testing.T) {
		out := &sliceCollector[string]{}
		assert.NoError(t, FlatMap(strings.Fields)("a b  c", out))
		assert.Equal(t, []string{"a", "b", "c"}, out.values)
	})

	t.Run("filter", func(t *testing.T) {
		even := func(v int) bool { return v%2 == 0 }
		keep, err := Filter(even)(2)
		assert.NoError(t, err)
		assert.True(t, keep)
		keep, err = FilterNot(even)(2)
		assert.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("collector func", func(t *testing.T) {
		var got []int
		var c Collector[int] = CollectorFunc[int](func(v int) { got = append(got, v) })
		c.Collect(7)
		assert.Equal(t, []int{7}, got)
	})
}

func TestReducers(t *testing.T) {
	sum, err := Sum[int64]()(3, 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), sum)

	hi, err := Max[string]()("a", "b")
	assert.NoError(t, err)
	assert.Equal(t, "b", hi)

	lo, err := Min[float64]()(1.5, -2)
	assert.NoError(t, err)
	assert.Equal(t, -2.0, lo)

	n, err := Count[string]()([]string{"x", "y"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
