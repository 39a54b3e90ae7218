package ktype

// tuple marks the positional composite types of this package.
type tuple interface {
	arity() int
}

// Tuple2 is a positional pair. Tuples are composites: they are valid keys
// as long as every field is.
type Tuple2[A, B any] struct {
	F0 A
	F1 B
}

func (Tuple2[A, B]) arity() int { return 2 }

// NewTuple2 returns the pair (a, b).
func NewTuple2[A, B any](a A, b B) Tuple2[A, B] {
	return Tuple2[A, B]{F0: a, F1: b}
}

// Tuple3 is a positional triple.
type Tuple3[A, B, C any] struct {
	F0 A
	F1 B
	F2 C
}

func (Tuple3[A, B, C]) arity() int { return 3 }

// NewTuple3 returns the triple (a, b, c).
func NewTuple3[A, B, C any](a A, b B, c C) Tuple3[A, B, C] {
	return Tuple3[A, B, C]{F0: a, F1: b, F2: c}
}
