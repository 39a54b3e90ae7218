// Package kserde converts stream elements to and from the raw bytes
// carried by connector records.
package kserde

import (
	"errors"
	"fmt"
)

var (
	// ErrSerialize is returned when an element cannot be encoded.
	ErrSerialize = errors.New("serialization failed")
	// ErrDeserialize is returned when bytes cannot be decoded.
	ErrDeserialize = errors.New("deserialization failed")
)

type Serializer[T any] func(T) ([]byte, error)

type Deserializer[T any] func([]byte) (T, error)

// Serde bundles both directions for one element type.
type Serde[T any] struct {
	Serializer   Serializer[T]
	Deserializer Deserializer[T]
}

func deserializeErr(typ string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrDeserialize, typ, fmt.Sprintf(format, args...))
}
