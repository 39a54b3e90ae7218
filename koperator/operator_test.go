package koperator

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/birdayz/kflow/kprocessor"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		shape kprocessor.Shape
		want  Kind
	}{
		{
			name:  "process on non-keyed stream",
			in:    Input{Connection: OneInput},
			shape: kprocessor.ShapeProcess,
			want:  KindProcess,
		},
		{
			name:  "keyed process on keyed stream",
			in:    Input{Connection: OneInput, Keyed: true},
			shape: kprocessor.ShapeKeyedProcess,
			want:  KindKeyedProcess,
		},
		{
			name:  "keyed process with async state",
			in:    Input{Connection: OneInput, Keyed: true, AsyncState: true},
			shape: kprocessor.ShapeKeyedProcess,
			want:  KindAsyncKeyedProcess,
		},
		{
			name:  "broadcast process on non-keyed side",
			in:    Input{Connection: BroadcastConnected},
			shape: kprocessor.ShapeBroadcastProcess,
			want:  KindBroadcastProcess,
		},
		{
			name:  "keyed broadcast process on keyed side",
			in:    Input{Connection: BroadcastConnected, Keyed: true},
			shape: kprocessor.ShapeKeyedBroadcastProcess,
			want:  KindKeyedBroadcastProcess,
		},
		{
			name:  "async state does not change broadcast selection",
			in:    Input{Connection: BroadcastConnected, Keyed: true, AsyncState: true},
			shape: kprocessor.ShapeKeyedBroadcastProcess,
			want:  KindKeyedBroadcastProcess,
		},
		{
			name:  "co process on non-keyed inputs",
			in:    Input{Connection: TwoInput},
			shape: kprocessor.ShapeCoProcess,
			want:  KindCoProcess,
		},
		{
			name:  "co process on keyed inputs",
			in:    Input{Connection: TwoInput, Keyed: true, SecondKeyed: true},
			shape: kprocessor.ShapeCoProcess,
			want:  KindCoProcess,
		},
		{
			name:  "keyed co process on keyed inputs",
			in:    Input{Connection: TwoInput, Keyed: true, SecondKeyed: true},
			shape: kprocessor.ShapeKeyedCoProcess,
			want:  KindKeyedCoProcess,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.in, tt.shape)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectMismatch(t *testing.T) {
	tests := []struct {
		name     string
		in       Input
		shape    kprocessor.Shape
		contains string
	}{
		{
			name:     "plain broadcast process on keyed side",
			in:       Input{Connection: BroadcastConnected, Keyed: true},
			shape:    kprocessor.ShapeBroadcastProcess,
			contains: "KeyedBroadcastProcessFunction",
		},
		{
			name:     "keyed broadcast process on non-keyed side",
			in:       Input{Connection: BroadcastConnected},
			shape:    kprocessor.ShapeKeyedBroadcastProcess,
			contains: "non-keyed broadcast connected stream",
		},
		{
			name:     "keyed process on non-keyed stream",
			in:       Input{Connection: OneInput},
			shape:    kprocessor.ShapeKeyedProcess,
			contains: "key the stream first",
		},
		{
			name:     "plain process on keyed stream",
			in:       Input{Connection: OneInput, Keyed: true},
			shape:    kprocessor.ShapeProcess,
			contains: "keyed stream",
		},
		{
			name:     "keyed co process on half keyed connection",
			in:       Input{Connection: TwoInput, Keyed: true},
			shape:    kprocessor.ShapeKeyedCoProcess,
			contains: "second non-keyed",
		},
		{
			name:     "co process on single stream",
			in:       Input{Connection: OneInput},
			shape:    kprocessor.ShapeCoProcess,
			contains: "CoProcessFunction",
		},
		{
			name:     "broadcast process on connected streams",
			in:       Input{Connection: TwoInput},
			shape:    kprocessor.ShapeBroadcastProcess,
			contains: "connected streams",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Select(tt.in, tt.shape)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrOperatorMismatch))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, 0, KindSource.Inputs())
	assert.Equal(t, 1, KindMap.Inputs())
	assert.Equal(t, 2, KindKeyedBroadcastProcess.Inputs())
	assert.Equal(t, 2, KindCoMap.Inputs())

	assert.True(t, KindAsyncKeyedProcess.RequiresKeyedInput())
	assert.False(t, KindCoProcess.RequiresKeyedInput())
	assert.True(t, KindWindow.RequiresKeyedInput())
	assert.False(t, KindMap.RequiresKeyedInput())

	for k := KindSource; k <= KindSink; k++ {
		assert.NotEqual(t, "Unknown", k.String())
	}
	assert.Equal(t, "Unknown", Kind(-1).String())
}
