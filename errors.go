package kflow

import (
	"errors"
	"fmt"

	"github.com/birdayz/kflow/koperator"
	"github.com/birdayz/kflow/ktype"
)

// Construction errors. Every failing call returns one of them, wrapped with
// a message naming the offending type, function or handle, and leaves the
// graph untouched.
var (
	// ErrKeyRejected is returned when a stream is keyed by a type that
	// cannot be hash partitioned. errors.As with *ktype.KeyRejectedError
	// gives the offending field.
	ErrKeyRejected = ktype.ErrKeyRejected
	// ErrOperatorMismatch is returned when a function does not fit the
	// keyedness of the stream it is attached to.
	ErrOperatorMismatch = koperator.ErrOperatorMismatch
	// ErrStructuralMisuse is returned for calls that cannot form a valid
	// topology, like mixing environments or an empty key field list.
	ErrStructuralMisuse = errors.New("structural misuse")
)

func misuse(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructuralMisuse, fmt.Sprintf(format, args...))
}

// Must panics if err is not nil and returns v otherwise.
//
//	words := kflow.Must(kflow.FlatMap(lines, split))
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
