package ktype

import (
	"errors"
	"fmt"
)

// ErrKeyRejected is returned when a type cannot be used as the key of a
// hash-partitioned stream.
var ErrKeyRejected = errors.New("key type rejected")

// KeyRejectedError names the key type that was rejected and, for composite
// keys, the field that caused the rejection.
type KeyRejectedError struct {
	// Key is the key type passed to Validate.
	Key *Descriptor
	// Offender is the (sub)type that is not a valid key.
	Offender *Descriptor
	// Path is the dotted field path from Key to Offender, empty if Offender is Key.
	Path   string
	Reason string
}

func (e *KeyRejectedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: type %s cannot be used as key: %s", ErrKeyRejected, e.Offender, e.Reason)
	}
	return fmt.Sprintf("%s: type %s cannot be used as key: field %s of type %s: %s",
		ErrKeyRejected, e.Key, e.Path, e.Offender, e.Reason)
}

func (e *KeyRejectedError) Unwrap() error {
	return ErrKeyRejected
}

// Validate checks whether values of the described type can be hash
// partitioned. Composite types are checked field by field; the first
// offending field is reported.
//
// Records declaring their own equality and hash are accepted without looking
// at their fields.
func Validate(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("%w: key type is missing", ErrKeyRejected)
	}
	return validate(d, d, "")
}

func validate(root, d *Descriptor, path string) error {
	reject := func(reason string) error {
		return &KeyRejectedError{Key: root, Offender: d, Path: path, Reason: reason}
	}

	switch d.Kind {
	case KindPrimitiveArray, KindBoxedArray, KindObjectArray:
		return reject("arrays have no structural equality that survives redistribution")
	case KindEnum:
		return reject("enumeration hash codes are not stable across processes")
	case KindRecord:
		if d.Contract {
			return nil
		}
		// Prefer naming a nested offender over the record itself.
		if err := validateFields(root, d, path); err != nil {
			return err
		}
		return reject("record does not declare its own equality and hash")
	case KindComposite:
		return validateFields(root, d, path)
	case KindScalar, KindGeneric:
		return nil
	default:
		return reject(fmt.Sprintf("unknown type kind %d", d.Kind))
	}
}

func validateFields(root, d *Descriptor, path string) error {
	for _, f := range d.Fields {
		p := f.Name
		if path != "" {
			p = path + "." + f.Name
		}
		if f.Type == nil {
			continue
		}
		if err := validate(root, f.Type, p); err != nil {
			return err
		}
	}
	return nil
}

// IsValidKey reports whether Validate accepts d.
func IsValidKey(d *Descriptor) bool {
	return Validate(d) == nil
}
