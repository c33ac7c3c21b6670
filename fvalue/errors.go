package fvalue

import "fmt"

// IncompatibleTypeError reports an attempt to unmarshal a Value into a Go
// type whose shape does not match the value's kind.
type IncompatibleTypeError struct {
	Value  string
	Target string
}

func (e *IncompatibleTypeError) Error() string {
	return fmt.Sprintf("fvalue: cannot deserialize %s into %s", e.Value, e.Target)
}

// InvalidMapKeyError reports a map whose key type is not string.
type InvalidMapKeyError struct {
	Key string
}

func (e *InvalidMapKeyError) Error() string {
	return fmt.Sprintf("fvalue: map key must be a string, got %s", e.Key)
}

// InvalidValueError reports a native Go value that has no Firestore
// representation (channels, funcs, complex numbers, ...).
type InvalidValueError struct {
	Type string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("fvalue: unsupported Go value of type %s", e.Type)
}
