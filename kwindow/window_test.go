package kwindow

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestNames(t *testing.T) {
	tests := []struct {
		assigner Assigner
		name     string
		str      string
	}{
		{Tumbling(time.Second), "TumblingEventTimeWindows", "TumblingEventTimeWindows(1s)"},
		{TumblingProcessingTime(time.Minute), "TumblingProcessingTimeWindows", "TumblingProcessingTimeWindows(1m0s)"},
		{Sliding(10*time.Second, 2*time.Second), "SlidingEventTimeWindows", "SlidingEventTimeWindows(10s, 2s)"},
		{Sessions(time.Second), "EventTimeSessionWindows", "EventTimeSessionWindows(1s)"},
		{Global(), "GlobalWindows", "GlobalWindows()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.assigner.Name())
			assert.Equal(t, tt.str, tt.assigner.String())
			assert.NoError(t, tt.assigner.Validate())
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Run("explicit trigger", func(t *testing.T) {
		s, err := NewSpec(Tumbling(time.Second), WithTrigger(PurgingTrigger{Nested: CountTrigger{Count: 10}}))
		assert.NoError(t, err)
		assert.Equal(t, "Window(TumblingEventTimeWindows(1s), PurgingTrigger(CountTrigger(10)), Reduce)", s.Describe("Reduce"))
	})

	t.Run("default trigger and evictor", func(t *testing.T) {
		s, err := NewSpec(Global(), WithEvictor(CountEvictor{Count: 3}))
		assert.NoError(t, err)
		assert.Equal(t, "Window(GlobalWindows(), NeverTrigger(), CountEvictor(3), Process)", s.Describe("Process"))
	})
}

func TestInvalidWindows(t *testing.T) {
	tests := []struct {
		name string
		a    Assigner
	}{
		{"zero size", Tumbling(0)},
		{"offset beyond slide", SlidingEventTimeWindows{Size: time.Minute, Slide: time.Second, Offset: 2 * time.Second}},
		{"negative gap", Sessions(-time.Second)},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpec(tt.a)
			assert.True(t, errors.Is(err, ErrInvalidWindow))
		})
	}

	_, err := NewSpec(Global(), WithAllowedLateness(-time.Second))
	assert.True(t, errors.Is(err, ErrInvalidWindow))
}

func TestOver(t *testing.T) {
	o := OverWindow("rowtime", UnboundedRange(), "w")
	assert.NoError(t, o.Validate())
	assert.Equal(t, "OVER(ORDER BY rowtime RANGE UNBOUNDED PRECEDING) AS w", o.String())

	assert.Equal(t, "ROWS 5 PRECEDING", RowsPreceding(5).String())
	assert.Equal(t, "RANGE 1m0s PRECEDING", RangePreceding(time.Minute).String())
	assert.Equal(t, "ROWS UNBOUNDED PRECEDING", UnboundedRows().String())

	assert.True(t, errors.Is(OverWindow("", UnboundedRange(), "").Validate(), ErrInvalidWindow))
	assert.True(t, errors.Is(OverWindow("ts", RowsPreceding(-1), "").Validate(), ErrInvalidWindow))
	assert.True(t, errors.Is(OverWindow("ts", Bound{Rows: 1, Range: time.Second}, "").Validate(), ErrInvalidWindow))
	assert.True(t, errors.Is(OverWindow("ts", Bound{Kind: BoundRows, Range: time.Second}, "").Validate(), ErrInvalidWindow))

	t.Run("zero preceding rows", func(t *testing.T) {
		b := RowsPreceding(0)
		assert.Equal(t, BoundRows, b.Kind)
		assert.Equal(t, "ROWS 0 PRECEDING", b.String())
		o := OverWindow("ts", b, "")
		assert.NoError(t, o.Validate())
		assert.Equal(t, "OVER(ORDER BY ts ROWS 0 PRECEDING)", o.String())
	})

	t.Run("zero preceding range", func(t *testing.T) {
		assert.Equal(t, "RANGE 0s PRECEDING", RangePreceding(0).String())
		assert.NoError(t, OverWindow("ts", RangePreceding(0), "").Validate())
	})
}
