// Package kwindow describes windows attached to a stream. The builder only
// records what was asked for, to name and describe window nodes; how
// windows fire and evict is up to the runtime.
package kwindow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidWindow is returned for malformed window definitions.
var ErrInvalidWindow = errors.New("invalid window")

// Assigner decides which windows an element belongs to.
type Assigner interface {
	// Name is the simple name used as the window node's name.
	Name() string
	// String includes the parameters, e.g. "TumblingEventTimeWindows(1s)".
	String() string
	// DefaultTrigger is the trigger used unless one is set explicitly.
	DefaultTrigger() Trigger
	Validate() error
}

// Trigger decides when a window is evaluated.
type Trigger interface {
	String() string
}

// Evictor removes elements from a window before or after evaluation.
type Evictor interface {
	String() string
}

// TumblingEventTimeWindows assigns elements to fixed, non-overlapping
// windows by event time.
type TumblingEventTimeWindows struct {
	Size   time.Duration
	Offset time.Duration
}

func Tumbling(size time.Duration) TumblingEventTimeWindows {
	return TumblingEventTimeWindows{Size: size}
}

func (TumblingEventTimeWindows) Name() string { return "TumblingEventTimeWindows" }

func (w TumblingEventTimeWindows) String() string {
	return fmt.Sprintf("%s(%s)", w.Name(), w.Size)
}

func (TumblingEventTimeWindows) DefaultTrigger() Trigger { return EventTimeTrigger{} }

func (w TumblingEventTimeWindows) Validate() error {
	return validateSize(w.Name(), w.Size, w.Size, w.Offset)
}

// TumblingProcessingTimeWindows is TumblingEventTimeWindows on processing
// time.
type TumblingProcessingTimeWindows struct {
	Size   time.Duration
	Offset time.Duration
}

func TumblingProcessingTime(size time.Duration) TumblingProcessingTimeWindows {
	return TumblingProcessingTimeWindows{Size: size}
}

func (TumblingProcessingTimeWindows) Name() string { return "TumblingProcessingTimeWindows" }

func (w TumblingProcessingTimeWindows) String() string {
	return fmt.Sprintf("%s(%s)", w.Name(), w.Size)
}

func (TumblingProcessingTimeWindows) DefaultTrigger() Trigger { return ProcessingTimeTrigger{} }

func (w TumblingProcessingTimeWindows) Validate() error {
	return validateSize(w.Name(), w.Size, w.Size, w.Offset)
}

// SlidingEventTimeWindows assigns elements to overlapping windows of Size
// starting every Slide.
type SlidingEventTimeWindows struct {
	Size   time.Duration
	Slide  time.Duration
	Offset time.Duration
}

func Sliding(size, slide time.Duration) SlidingEventTimeWindows {
	return SlidingEventTimeWindows{Size: size, Slide: slide}
}

func (SlidingEventTimeWindows) Name() string { return "SlidingEventTimeWindows" }

func (w SlidingEventTimeWindows) String() string {
	return fmt.Sprintf("%s(%s, %s)", w.Name(), w.Size, w.Slide)
}

func (SlidingEventTimeWindows) DefaultTrigger() Trigger { return EventTimeTrigger{} }

func (w SlidingEventTimeWindows) Validate() error {
	return validateSize(w.Name(), w.Size, w.Slide, w.Offset)
}

// EventTimeSessionWindows groups elements separated by less than Gap.
type EventTimeSessionWindows struct {
	Gap time.Duration
}

func Sessions(gap time.Duration) EventTimeSessionWindows {
	return EventTimeSessionWindows{Gap: gap}
}

func (EventTimeSessionWindows) Name() string { return "EventTimeSessionWindows" }

func (w EventTimeSessionWindows) String() string {
	return fmt.Sprintf("%s(%s)", w.Name(), w.Gap)
}

func (EventTimeSessionWindows) DefaultTrigger() Trigger { return EventTimeTrigger{} }

func (w EventTimeSessionWindows) Validate() error {
	if w.Gap <= 0 {
		return fmt.Errorf("%w: %s gap must be positive, got %s", ErrInvalidWindow, w.Name(), w.Gap)
	}
	return nil
}

// GlobalWindows puts all elements into a single window per key. It never
// fires unless a trigger is set.
type GlobalWindows struct{}

func Global() GlobalWindows { return GlobalWindows{} }

func (GlobalWindows) Name() string            { return "GlobalWindows" }
func (GlobalWindows) String() string          { return "GlobalWindows()" }
func (GlobalWindows) DefaultTrigger() Trigger { return NeverTrigger{} }
func (GlobalWindows) Validate() error         { return nil }

func validateSize(name string, size, slide, offset time.Duration) error {
	if size <= 0 || slide <= 0 {
		return fmt.Errorf("%w: %s needs a positive size and slide, got %s and %s", ErrInvalidWindow, name, size, slide)
	}
	if offset < 0 || offset >= slide {
		return fmt.Errorf("%w: %s offset %s must be in [0, %s)", ErrInvalidWindow, name, offset, slide)
	}
	return nil
}

type EventTimeTrigger struct{}

func (EventTimeTrigger) String() string { return "EventTimeTrigger()" }

type ProcessingTimeTrigger struct{}

func (ProcessingTimeTrigger) String() string { return "ProcessingTimeTrigger()" }

type NeverTrigger struct{}

func (NeverTrigger) String() string { return "NeverTrigger()" }

// CountTrigger fires once a window holds Count elements.
type CountTrigger struct {
	Count int64
}

func (t CountTrigger) String() string { return fmt.Sprintf("CountTrigger(%d)", t.Count) }

// PurgingTrigger clears the window whenever Nested fires.
type PurgingTrigger struct {
	Nested Trigger
}

func (t PurgingTrigger) String() string { return fmt.Sprintf("PurgingTrigger(%s)", t.Nested) }

// CountEvictor keeps at most Count elements.
type CountEvictor struct {
	Count int64
}

func (e CountEvictor) String() string { return fmt.Sprintf("CountEvictor(%d)", e.Count) }

// TimeEvictor keeps the elements of the last Keep duration.
type TimeEvictor struct {
	Keep time.Duration
}

func (e TimeEvictor) String() string { return fmt.Sprintf("TimeEvictor(%s)", e.Keep) }

// Spec is a fully configured window.
type Spec struct {
	Assigner Assigner
	Trigger  Trigger
	Evictor  Evictor
	// AllowedLateness keeps windows around after the watermark passed.
	AllowedLateness time.Duration
}

// Option configures a window Spec.
type Option func(*Spec)

var (
	WithTrigger = func(t Trigger) Option {
		return func(s *Spec) {
			s.Trigger = t
		}
	}
	WithEvictor = func(e Evictor) Option {
		return func(s *Spec) {
			s.Evictor = e
		}
	}
	WithAllowedLateness = func(d time.Duration) Option {
		return func(s *Spec) {
			s.AllowedLateness = d
		}
	}
)

// NewSpec validates the assigner and applies the options.
func NewSpec(a Assigner, opts ...Option) (Spec, error) {
	if a == nil {
		return Spec{}, fmt.Errorf("%w: window assigner is nil", ErrInvalidWindow)
	}
	if err := a.Validate(); err != nil {
		return Spec{}, err
	}
	s := Spec{Assigner: a}
	for _, opt := range opts {
		opt(&s)
	}
	if s.AllowedLateness < 0 {
		return Spec{}, fmt.Errorf("%w: allowed lateness must not be negative, got %s", ErrInvalidWindow, s.AllowedLateness)
	}
	return s, nil
}

// EffectiveTrigger returns the explicit trigger or the assigner's default.
func (s Spec) EffectiveTrigger() Trigger {
	if s.Trigger != nil {
		return s.Trigger
	}
	return s.Assigner.DefaultTrigger()
}

// Describe renders the window for a node description, naming the kind of
// function that evaluates it.
func (s Spec) Describe(function string) string {
	parts := []string{s.Assigner.String(), s.EffectiveTrigger().String()}
	if s.Evictor != nil {
		parts = append(parts, s.Evictor.String())
	}
	parts = append(parts, function)
	return "Window(" + strings.Join(parts, ", ") + ")"
}
