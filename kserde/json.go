package kserde

import (
	"encoding/json"
	"fmt"
)

func JSON[T any]() Serde[T] {
	return Serde[T]{
		Serializer: func(v T) ([]byte, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("%w: json: %w", ErrSerialize, err)
			}
			return b, nil
		},
		Deserializer: func(b []byte) (T, error) {
			var v T
			if err := json.Unmarshal(b, &v); err != nil {
				return v, fmt.Errorf("%w: json: %w", ErrDeserialize, err)
			}
			return v, nil
		},
	}
}
