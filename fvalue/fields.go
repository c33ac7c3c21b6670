package fvalue

import (
	"fmt"

	pb "cloud.google.com/go/firestore/apiv1/firestorepb"
)

// Fields is the named set of values composing one document's contents.
type Fields map[string]Value

// Set stores a value under the given field name.
func (f Fields) Set(name string, v Value) { f[name] = v }

// Get returns the value stored under name.
func (f Fields) Get(name string) (Value, bool) {
	v, ok := f[name]
	return v, ok
}

// AsValue wraps the field set as a single map value.
func (f Fields) AsValue() Value { return Map(f) }

// ToWire converts every field to its wire representation.
func (f Fields) ToWire() map[string]*pb.Value {
	out := make(map[string]*pb.Value, len(f))
	for k, v := range f {
		out[k] = ToWire(v)
	}
	return out
}

// Equal reports whether two field sets hold equal values under equal names.
func (f Fields) Equal(o Fields) bool {
	return Map(f).Equal(Map(o))
}

// FieldsFromWire extracts the field set of a wire document.
func FieldsFromWire(d *pb.Document) Fields {
	out := make(Fields, len(d.GetFields()))
	for k, v := range d.GetFields() {
		out[k] = FromWire(v)
	}
	return out
}

// MarshalFields converts a native Go value into a field set. The value must
// marshal to a map kind (a struct or a string-keyed map).
func MarshalFields(src any) (Fields, error) {
	v, err := Marshal(src)
	if err != nil {
		return nil, err
	}
	m, ok := v.AsMap()
	if !ok {
		return nil, &IncompatibleTypeError{Value: v.Kind().String(), Target: "fvalue.Fields"}
	}
	return Fields(m), nil
}

// FieldsFromJSON parses a JSON object into a field set, applying the same
// value mapping as FromJSON.
func FieldsFromJSON(data []byte) (Fields, error) {
	v, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.AsMap()
	if !ok {
		return nil, fmt.Errorf("fvalue: json value is not an object")
	}
	return Fields(m), nil
}

// Unmarshal fills dst from the field set, treating it as a map value.
func (f Fields) Unmarshal(dst any) error {
	return Unmarshal(Map(f), dst)
}
