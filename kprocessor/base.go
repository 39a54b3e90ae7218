package kprocessor

import "context"

// Lifecycle is optionally implemented by functions that need setup and
// teardown around processing.
type Lifecycle interface {
	Open(ctx context.Context) error
	Close() error
}

// FuncOption configures optional behavior of the function adapters.
type FuncOption func(*lifecycle)

// WithOpen adds custom initialization logic to a function adapter.
func WithOpen(fn func(ctx context.Context) error) FuncOption {
	return func(l *lifecycle) {
		l.openFn = fn
	}
}

// WithClose adds custom cleanup logic to a function adapter.
func WithClose(fn func() error) FuncOption {
	return func(l *lifecycle) {
		l.closeFn = fn
	}
}

type lifecycle struct {
	openFn  func(ctx context.Context) error
	closeFn func() error
}

func newLifecycle(opts []FuncOption) lifecycle {
	var l lifecycle
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func (l *lifecycle) Open(ctx context.Context) error {
	if l.openFn != nil {
		return l.openFn(ctx)
	}
	return nil
}

func (l *lifecycle) Close() error {
	if l.closeFn != nil {
		return l.closeFn()
	}
	return nil
}

// NewProcess creates a ProcessFunction from a function.
//
// Example:
//
//	kprocessor.NewProcess(func(ctx kprocessor.Context, v string, out kprocessor.Collector[int]) error {
//	    out.Collect(len(v))
//	    return nil
//	})
func NewProcess[I, O any](fn func(ctx Context, value I, out Collector[O]) error, opts ...FuncOption) ProcessFunction[I, O] {
	return &processFunc[I, O]{lifecycle: newLifecycle(opts), fn: fn}
}

type processFunc[I, O any] struct {
	lifecycle
	fn func(Context, I, Collector[O]) error
}

func (*processFunc[I, O]) Shape() Shape { return ShapeProcess }

func (p *processFunc[I, O]) ProcessElement(ctx Context, value I, out Collector[O]) error {
	return p.fn(ctx, value, out)
}

// NewKeyedProcess creates a KeyedProcessFunction from a function.
func NewKeyedProcess[I, O any](fn func(ctx KeyedContext, value I, out Collector[O]) error, opts ...FuncOption) KeyedProcessFunction[I, O] {
	return &keyedProcessFunc[I, O]{lifecycle: newLifecycle(opts), fn: fn}
}

type keyedProcessFunc[I, O any] struct {
	lifecycle
	fn func(KeyedContext, I, Collector[O]) error
}

func (*keyedProcessFunc[I, O]) Shape() Shape { return ShapeKeyedProcess }

func (p *keyedProcessFunc[I, O]) ProcessElement(ctx KeyedContext, value I, out Collector[O]) error {
	return p.fn(ctx, value, out)
}

// NewBroadcastProcess creates a BroadcastProcessFunction from the handlers
// of both sides.
func NewBroadcastProcess[I, B, O any](
	elementFn func(ctx ReadOnlyContext, value I, out Collector[O]) error,
	broadcastFn func(ctx BroadcastContext, value B, out Collector[O]) error,
	opts ...FuncOption,
) BroadcastProcessFunction[I, B, O] {
	return &broadcastProcessFunc[I, B, O]{lifecycle: newLifecycle(opts), elementFn: elementFn, broadcastFn: broadcastFn}
}

type broadcastProcessFunc[I, B, O any] struct {
	lifecycle
	elementFn   func(ReadOnlyContext, I, Collector[O]) error
	broadcastFn func(BroadcastContext, B, Collector[O]) error
}

func (*broadcastProcessFunc[I, B, O]) Shape() Shape { return ShapeBroadcastProcess }

func (p *broadcastProcessFunc[I, B, O]) ProcessElement(ctx ReadOnlyContext, value I, out Collector[O]) error {
	return p.elementFn(ctx, value, out)
}

func (p *broadcastProcessFunc[I, B, O]) ProcessBroadcastElement(ctx BroadcastContext, value B, out Collector[O]) error {
	return p.broadcastFn(ctx, value, out)
}

// NewKeyedBroadcastProcess creates a KeyedBroadcastProcessFunction from the
// handlers of both sides.
func NewKeyedBroadcastProcess[I, B, O any](
	elementFn func(ctx KeyedReadOnlyContext, value I, out Collector[O]) error,
	broadcastFn func(ctx BroadcastContext, value B, out Collector[O]) error,
	opts ...FuncOption,
) KeyedBroadcastProcessFunction[I, B, O] {
	return &keyedBroadcastProcessFunc[I, B, O]{lifecycle: newLifecycle(opts), elementFn: elementFn, broadcastFn: broadcastFn}
}

type keyedBroadcastProcessFunc[I, B, O any] struct {
	lifecycle
	elementFn   func(KeyedReadOnlyContext, I, Collector[O]) error
	broadcastFn func(BroadcastContext, B, Collector[O]) error
}

func (*keyedBroadcastProcessFunc[I, B, O]) Shape() Shape { return ShapeKeyedBroadcastProcess }

func (p *keyedBroadcastProcessFunc[I, B, O]) ProcessElement(ctx KeyedReadOnlyContext, value I, out Collector[O]) error {
	return p.elementFn(ctx, value, out)
}

func (p *keyedBroadcastProcessFunc[I, B, O]) ProcessBroadcastElement(ctx BroadcastContext, value B, out Collector[O]) error {
	return p.broadcastFn(ctx, value, out)
}

// NewCoProcess creates a CoProcessFunction from the handlers of both inputs.
func NewCoProcess[I1, I2, O any](
	fn1 func(ctx Context, value I1, out Collector[O]) error,
	fn2 func(ctx Context, value I2, out Collector[O]) error,
	opts ...FuncOption,
) CoProcessFunction[I1, I2, O] {
	return &coProcessFunc[I1, I2, O]{lifecycle: newLifecycle(opts), fn1: fn1, fn2: fn2}
}

type coProcessFunc[I1, I2, O any] struct {
	lifecycle
	fn1 func(Context, I1, Collector[O]) error
	fn2 func(Context, I2, Collector[O]) error
}

func (*coProcessFunc[I1, I2, O]) Shape() Shape { return ShapeCoProcess }

func (p *coProcessFunc[I1, I2, O]) ProcessElement1(ctx Context, value I1, out Collector[O]) error {
	return p.fn1(ctx, value, out)
}

func (p *coProcessFunc[I1, I2, O]) ProcessElement2(ctx Context, value I2, out Collector[O]) error {
	return p.fn2(ctx, value, out)
}

// NewKeyedCoProcess creates a KeyedCoProcessFunction from the handlers of
// both inputs.
func NewKeyedCoProcess[I1, I2, O any](
	fn1 func(ctx KeyedContext, value I1, out Collector[O]) error,
	fn2 func(ctx KeyedContext, value I2, out Collector[O]) error,
	opts ...FuncOption,
) KeyedCoProcessFunction[I1, I2, O] {
	return &keyedCoProcessFunc[I1, I2, O]{lifecycle: newLifecycle(opts), fn1: fn1, fn2: fn2}
}

type keyedCoProcessFunc[I1, I2, O any] struct {
	lifecycle
	fn1 func(KeyedContext, I1, Collector[O]) error
	fn2 func(KeyedContext, I2, Collector[O]) error
}

func (*keyedCoProcessFunc[I1, I2, O]) Shape() Shape { return ShapeKeyedCoProcess }

func (p *keyedCoProcessFunc[I1, I2, O]) ProcessElement1(ctx KeyedContext, value I1, out Collector[O]) error {
	return p.fn1(ctx, value, out)
}

func (p *keyedCoProcessFunc[I1, I2, O]) ProcessElement2(ctx KeyedContext, value I2, out Collector[O]) error {
	return p.fn2(ctx, value, out)
}
