package kserde

import (
	"encoding/binary"
	"math"
)

var String = Serde[string]{
	Serializer: func(s string) ([]byte, error) {
		return []byte(s), nil
	},
	Deserializer: func(b []byte) (string, error) {
		return string(b), nil
	},
}

// Bytes passes record payloads through untouched.
var Bytes = Serde[[]byte]{
	Serializer: func(b []byte) ([]byte, error) {
		return b, nil
	},
	Deserializer: func(b []byte) ([]byte, error) {
		return b, nil
	},
}

// Int64 encodes big-endian, 8 bytes.
var Int64 = Serde[int64]{
	Serializer: func(v int64) ([]byte, error) {
		return binary.BigEndian.AppendUint64(nil, uint64(v)), nil
	},
	Deserializer: func(b []byte) (int64, error) {
		if len(b) != 8 {
			return 0, deserializeErr("int64", "need 8 bytes, got %d", len(b))
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	},
}

// Int32 encodes big-endian, 4 bytes.
var Int32 = Serde[int32]{
	Serializer: func(v int32) ([]byte, error) {
		return binary.BigEndian.AppendUint32(nil, uint32(v)), nil
	},
	Deserializer: func(b []byte) (int32, error) {
		if len(b) != 4 {
			return 0, deserializeErr("int32", "need 4 bytes, got %d", len(b))
		}
		return int32(binary.BigEndian.Uint32(b)), nil
	},
}

// Float64 encodes the IEEE 754 bits big-endian.
var Float64 = Serde[float64]{
	Serializer: func(v float64) ([]byte, error) {
		return binary.BigEndian.AppendUint64(nil, math.Float64bits(v)), nil
	},
	Deserializer: func(b []byte) (float64, error) {
		if len(b) != 8 {
			return 0, deserializeErr("float64", "need 8 bytes, got %d", len(b))
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	},
}
