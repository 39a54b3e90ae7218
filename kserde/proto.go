package kserde

import (
	"fmt"

	"github.com/bufbuild/protovalidate-go"
	"google.golang.org/protobuf/proto"
)

// Proto returns a serde for a generated message type. New instances are
// created through the message's reflection descriptor.
func Proto[T proto.Message]() Serde[T] {
	return Serde[T]{
		Serializer: func(v T) ([]byte, error) {
			b, err := proto.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("%w: proto: %w", ErrSerialize, err)
			}
			return b, nil
		},
		Deserializer: func(b []byte) (T, error) {
			var zero T
			msg := zero.ProtoReflect().New().Interface().(T)
			if err := proto.Unmarshal(b, msg); err != nil {
				return zero, fmt.Errorf("%w: proto: %w", ErrDeserialize, err)
			}
			return msg, nil
		},
	}
}

// Validated wraps a deserializer so every decoded message is checked
// against its protovalidate constraints. A nil validator uses a default
// one.
func Validated[T proto.Message](d Deserializer[T], validator *protovalidate.Validator) (Deserializer[T], error) {
	if validator == nil {
		v, err := protovalidate.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create validator: %w", err)
		}
		validator = v
	}
	return func(b []byte) (T, error) {
		msg, err := d(b)
		if err != nil {
			return msg, err
		}
		if err := validator.Validate(msg); err != nil {
			var zero T
			return zero, fmt.Errorf("%w: %w", ErrDeserialize, err)
		}
		return msg, nil
	}, nil
}
