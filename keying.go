package kflow

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"

	"github.com/birdayz/kflow/kpartition"
	"github.com/birdayz/kflow/ktype"
)

// selectorOf adapts a typed key selector to the untyped form stored on
// edges and nodes.
func selectorOf[T, K any](fn func(T) K) kpartition.KeySelector {
	return func(element any) (any, error) {
		v, ok := element.(T)
		if !ok {
			return nil, fmt.Errorf("key selector expects %T, got %T", *new(T), element)
		}
		return fn(v), nil
	}
}

// KeyBy partitions s by the key fn extracts. The key type is derived from K
// unless WithKeyType is given; it must be hashable, otherwise the call fails
// with ErrKeyRejected.
//
// The result is a virtual handle: the next operator is connected to every
// producer of s with a key-group edge.
func KeyBy[T, K any](s *DataStream[T], fn func(T) K, opts ...KeyOption) (*DataStream[T], error) {
	if fn == nil {
		return nil, s.env.reject("KeyBy", misuse("key selector is nil"))
	}
	cfg := keyConfig{keyType: ktype.Of[K]()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return s.keyBy("KeyBy", selectorOf(fn), cfg.keyType)
}

// KeyByFields partitions s by the fields at the given positions of its
// element type. One position keys by the field's value, several by a
// []any of the values in the given order.
func KeyByFields[T any](s *DataStream[T], positions ...int) (*DataStream[T], error) {
	if len(positions) == 0 {
		return nil, s.env.reject("KeyByFields", misuse("partition keys must not be empty"))
	}
	projected, err := s.outputType.Project(positions...)
	if err != nil {
		return nil, s.env.reject("KeyByFields", fmt.Errorf("%w: %w", ErrStructuralMisuse, err))
	}
	keyType := projected
	if len(positions) == 1 {
		keyType = projected.Fields[0].Type
	}
	return s.keyBy("KeyByFields", fieldSelector(positions), keyType)
}

func (s *DataStream[T]) keyBy(call string, selector kpartition.KeySelector, keyType *ktype.Descriptor) (*DataStream[T], error) {
	kg, err := kpartition.NewKeyGroup(selector, keyType)
	if err != nil {
		return nil, s.env.reject(call, err)
	}
	d := s.repartition(kg)
	d.key = &keying{selector: selector, keyType: keyType}
	s.env.log.Debug("Stream keyed", "keyType", keyType.String(), "inputs", len(d.inputs))
	return d, nil
}

// fieldSelector extracts fields by position from structs and protobuf
// messages.
func fieldSelector(positions []int) kpartition.KeySelector {
	return func(element any) (any, error) {
		values := make([]any, len(positions))
		for i, p := range positions {
			v, err := fieldAt(element, p)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		if len(values) == 1 {
			return values[0], nil
		}
		return values, nil
	}
}

func fieldAt(element any, position int) (any, error) {
	if m, ok := element.(proto.Message); ok {
		r := m.ProtoReflect()
		fields := r.Descriptor().Fields()
		if position < 0 || position >= fields.Len() {
			return nil, fmt.Errorf("field position %d out of range for %s", position, r.Descriptor().FullName())
		}
		return r.Get(fields.Get(position)).Interface(), nil
	}

	v := reflect.ValueOf(element)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("cannot extract field %d from nil %s", position, v.Type())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot extract field %d from %T", position, element)
	}
	if position < 0 || position >= v.NumField() {
		return nil, fmt.Errorf("field position %d out of range for %s", position, v.Type())
	}
	f := v.Field(position)
	if !f.CanInterface() {
		return nil, fmt.Errorf("field %s of %s is not exported", v.Type().Field(position).Name, v.Type())
	}
	return f.Interface(), nil
}

// PartitionCustom routes every element to the subtask fn picks for its key.
// The result is not keyed.
func PartitionCustom[T, K any](s *DataStream[T], fn func(key K, numPartitions int) int, selector func(T) K) (*DataStream[T], error) {
	if fn == nil {
		return nil, s.env.reject("PartitionCustom", misuse("partition function is nil"))
	}
	if selector == nil {
		return nil, s.env.reject("PartitionCustom", misuse("key selector is nil"))
	}
	custom, err := kpartition.NewCustom(func(key any, n int) int {
		return fn(key.(K), n)
	}, selectorOf(selector))
	if err != nil {
		return nil, s.env.reject("PartitionCustom", fmt.Errorf("%w: %w", ErrStructuralMisuse, err))
	}
	return s.repartition(custom), nil
}
