// Package ktype describes element and key types by their semantic shape and
// decides which of them are safe to hash partition on.
package ktype

import (
	"fmt"
	"strings"
)

// Kind is the semantic classification of a type for keying purposes.
type Kind int

const (
	KindGeneric Kind = iota
	KindScalar
	KindPrimitiveArray
	KindBoxedArray
	KindObjectArray
	KindComposite
	KindRecord
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "Generic"
	case KindScalar:
		return "Scalar"
	case KindPrimitiveArray:
		return "PrimitiveArray"
	case KindBoxedArray:
		return "BoxedArray"
	case KindObjectArray:
		return "ObjectArray"
	case KindComposite:
		return "Composite"
	case KindRecord:
		return "Record"
	case KindEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// IsArray reports whether k is one of the array kinds.
func (k Kind) IsArray() bool {
	return k == KindPrimitiveArray || k == KindBoxedArray || k == KindObjectArray
}

// Field is a named member of a composite or record descriptor.
type Field struct {
	Name string
	Type *Descriptor
}

// Descriptor describes a type as far as key safety is concerned. Descriptors
// are immutable once constructed and may be shared between nodes and edges.
type Descriptor struct {
	Kind Kind
	// Name is the display name of the type, e.g. "int64" or "main.Order".
	Name string
	// Boxed marks a scalar that is referenced through a pointer.
	Boxed bool
	// Elem is the element type of an array descriptor.
	Elem *Descriptor
	// Fields of a composite or record, in declaration order.
	Fields []Field
	// Contract marks a record that declares its own structurally consistent
	// equality and hash functions.
	Contract bool
}

// Scalar describes a primitive value type such as int64 or string.
func Scalar(name string) *Descriptor {
	return &Descriptor{Kind: KindScalar, Name: name}
}

// BoxedScalar describes a scalar held by reference.
func BoxedScalar(name string) *Descriptor {
	return &Descriptor{Kind: KindScalar, Name: "*" + name, Boxed: true}
}

// PrimitiveArray describes a sequence of unboxed scalars, e.g. []int32.
func PrimitiveArray(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindPrimitiveArray, Name: "[]" + elem.Name, Elem: elem}
}

// BoxedArray describes a sequence of boxed scalars, e.g. []*int32.
func BoxedArray(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindBoxedArray, Name: "[]" + elem.Name, Elem: elem}
}

// ObjectArray describes a sequence of non-scalar values.
func ObjectArray(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindObjectArray, Name: "[]" + elem.Name, Elem: elem}
}

// Tuple describes an anonymous composite whose fields are named f0..fN.
func Tuple(fields ...*Descriptor) *Descriptor {
	fs := make([]Field, len(fields))
	names := make([]string, len(fields))
	for i, f := range fields {
		fs[i] = Field{Name: fmt.Sprintf("f%d", i), Type: f}
		names[i] = f.Name
	}
	return &Descriptor{
		Kind:   KindComposite,
		Name:   fmt.Sprintf("Tuple%d<%s>", len(fields), strings.Join(names, ", ")),
		Fields: fs,
	}
}

// Composite describes a structural composite with named fields.
func Composite(name string, fields ...Field) *Descriptor {
	return &Descriptor{Kind: KindComposite, Name: name, Fields: fields}
}

// Record describes a nominal record type. contract reports whether the type
// declares custom equality and hash functions.
func Record(name string, contract bool, fields ...Field) *Descriptor {
	return &Descriptor{Kind: KindRecord, Name: name, Contract: contract, Fields: fields}
}

// Enum describes a nominal enumeration.
func Enum(name string) *Descriptor {
	return &Descriptor{Kind: KindEnum, Name: name}
}

// Generic describes a type the validator treats as an opaque value.
func Generic(name string) *Descriptor {
	return &Descriptor{Kind: KindGeneric, Name: name}
}

func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	return d.Name
}

// Equal reports whether two descriptors describe the same type structure.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind || d.Name != o.Name || d.Boxed != o.Boxed || d.Contract != o.Contract {
		return false
	}
	if !d.Elem.Equal(o.Elem) {
		return false
	}
	if len(d.Fields) != len(o.Fields) {
		return false
	}
	for i := range d.Fields {
		if d.Fields[i].Name != o.Fields[i].Name || !d.Fields[i].Type.Equal(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

// Project returns the composite of the fields at the given positions. It is
// used for field-position keys.
func (d *Descriptor) Project(positions ...int) (*Descriptor, error) {
	if d == nil || (d.Kind != KindComposite && d.Kind != KindRecord) {
		return nil, fmt.Errorf("type %s has no addressable fields", d)
	}
	fields := make([]*Descriptor, len(positions))
	for i, p := range positions {
		if p < 0 || p >= len(d.Fields) {
			return nil, fmt.Errorf("field position %d out of range for %s with %d fields", p, d, len(d.Fields))
		}
		fields[i] = d.Fields[p].Type
	}
	return Tuple(fields...), nil
}
