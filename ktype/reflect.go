package ktype

import (
	"reflect"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Hashable is implemented by record types that define their own key equality
// and hash. Such records are accepted as keys regardless of their fields.
type Hashable interface {
	KeyHash() uint64
	KeyEqual(other any) bool
}

// Enumeration is implemented by named types that model an enumeration.
type Enumeration interface {
	Ordinal() int
}

var (
	hashableType     = reflect.TypeOf((*Hashable)(nil)).Elem()
	enumerationType  = reflect.TypeOf((*Enumeration)(nil)).Elem()
	protoEnumType    = reflect.TypeOf((*protoreflect.Enum)(nil)).Elem()
	protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()
	tupleType        = reflect.TypeOf((*tuple)(nil)).Elem()
)

// Of returns the descriptor of T.
func Of[T any]() *Descriptor {
	return FromReflect(reflect.TypeOf((*T)(nil)).Elem())
}

// FromReflect classifies a Go type:
//
//   - bool, numbers and strings are scalars; pointers to them are boxed scalars
//   - slices and arrays are primitive, boxed or object arrays by element type
//   - tuples and anonymous structs are composites
//   - other named structs are records, with a contract if they implement Hashable
//   - types implementing Enumeration or protoreflect.Enum are enumerations
//   - protobuf messages are composites of their fields, see FromProto
//   - maps, interfaces, channels and funcs are generic
func FromReflect(t reflect.Type) *Descriptor {
	return fromReflect(t, make(map[reflect.Type]bool))
}

func implements(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	return t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(iface)
}

func fromReflect(t reflect.Type, seen map[reflect.Type]bool) *Descriptor {
	if t == nil {
		return Generic("any")
	}
	if seen[t] {
		return Generic(t.String())
	}

	switch {
	case t.Kind() != reflect.Interface && (implements(t, protoEnumType) || implements(t, enumerationType)):
		return Enum(t.String())
	case t.Kind() == reflect.Pointer && t.Implements(protoMessageType):
		msg := reflect.New(t.Elem()).Interface().(proto.Message)
		return OfProto(msg)
	}

	seen[t] = true
	defer delete(seen, t)

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return Scalar(t.String())
	case reflect.Pointer:
		elem := fromReflect(t.Elem(), seen)
		if elem.Kind == KindScalar && !elem.Boxed {
			return BoxedScalar(elem.Name)
		}
		return elem
	case reflect.Slice, reflect.Array:
		elem := fromReflect(t.Elem(), seen)
		switch {
		case elem.Kind == KindScalar && elem.Boxed:
			return BoxedArray(elem)
		case elem.Kind == KindScalar:
			return PrimitiveArray(elem)
		default:
			return ObjectArray(elem)
		}
	case reflect.Struct:
		fields := structFields(t, seen)
		switch {
		case implements(t, hashableType):
			return Record(t.String(), true, fields...)
		case implements(t, tupleType):
			return Composite(t.String(), fields...)
		case t.Name() == "":
			return Composite(t.String(), fields...)
		default:
			return Record(t.String(), false, fields...)
		}
	default:
		return Generic(t.String())
	}
}

func structFields(t reflect.Type, seen map[reflect.Type]bool) []Field {
	fields := make([]Field, t.NumField())
	for i := range fields {
		sf := t.Field(i)
		fields[i] = Field{Name: sf.Name, Type: fromReflect(sf.Type, seen)}
	}
	return fields
}

// OfProto returns the descriptor of a protobuf message type.
func OfProto(m proto.Message) *Descriptor {
	return FromProto(m.ProtoReflect().Descriptor())
}

// FromProto describes a protobuf message as a composite of its fields.
// Repeated fields become arrays, enum fields enumerations and map fields are
// generic.
func FromProto(md protoreflect.MessageDescriptor) *Descriptor {
	return fromProto(md, make(map[protoreflect.FullName]bool))
}

func fromProto(md protoreflect.MessageDescriptor, seen map[protoreflect.FullName]bool) *Descriptor {
	name := md.FullName()
	if seen[name] {
		return Generic(string(name))
	}
	seen[name] = true
	defer delete(seen, name)

	fds := md.Fields()
	fields := make([]Field, fds.Len())
	for i := range fields {
		fd := fds.Get(i)
		fields[i] = Field{Name: string(fd.Name()), Type: protoField(fd, seen)}
	}
	return Composite(string(name), fields...)
}

func protoField(fd protoreflect.FieldDescriptor, seen map[protoreflect.FullName]bool) *Descriptor {
	if fd.IsMap() {
		return Generic("map<" + fd.MapKey().Kind().String() + ", " + fd.MapValue().Kind().String() + ">")
	}
	elem := protoSingular(fd, seen)
	if fd.IsList() {
		if elem.Kind == KindScalar {
			return PrimitiveArray(elem)
		}
		return ObjectArray(elem)
	}
	return elem
}

func protoSingular(fd protoreflect.FieldDescriptor, seen map[protoreflect.FullName]bool) *Descriptor {
	switch fd.Kind() {
	case protoreflect.EnumKind:
		return Enum(string(fd.Enum().FullName()))
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return fromProto(fd.Message(), seen)
	default:
		return Scalar(fd.Kind().String())
	}
}
