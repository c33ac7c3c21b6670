package fvalue

import (
	"reflect"
	"strings"
	"time"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	valueType = reflect.TypeOf(Value{})
)

// Marshal converts a native Go value into a Value.
//
// Mapping rules: booleans, strings and []byte map directly; integer widths
// narrower than 64 bits widen to int64 and float32 widens to float64;
// time.Time becomes a timestamp; slices and arrays become arrays; maps with
// string keys and structs become maps. A nil pointer or interface becomes
// the null value, a non-nil pointer marshals its element.
//
// Struct fields use the `firestore` tag for the wire name when present;
// a tag of "-" skips the field, unexported fields are always skipped.
func Marshal(src any) (Value, error) {
	if src == nil {
		return Null(), nil
	}
	return marshal(reflect.ValueOf(src))
}

func marshal(rv reflect.Value) (Value, error) {
	if rv.Type() == valueType {
		return rv.Interface().(Value), nil
	}
	if rv.Type() == timeType {
		return Timestamp(rv.Interface().(time.Time)), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Double(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(rv.Bytes()), nil
		}
		return marshalSeq(rv)
	case reflect.Array:
		return marshalSeq(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, &InvalidMapKeyError{Key: rv.Type().Key().String()}
		}
		m := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ev, err := marshal(iter.Value())
			if err != nil {
				return Value{}, err
			}
			m[iter.Key().String()] = ev
		}
		return Map(m), nil
	case reflect.Struct:
		return marshalStruct(rv)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return marshal(rv.Elem())
	default:
		return Value{}, &InvalidValueError{Type: rv.Type().String()}
	}
}

func marshalSeq(rv reflect.Value) (Value, error) {
	vs := make([]Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev, err := marshal(rv.Index(i))
		if err != nil {
			return Value{}, err
		}
		vs[i] = ev
	}
	return Array(vs...), nil
}

func marshalStruct(rv reflect.Value) (Value, error) {
	rt := rv.Type()
	m := make(map[string]Value, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name := fieldName(f)
		if name == "" {
			continue
		}
		ev, err := marshal(rv.Field(i))
		if err != nil {
			return Value{}, err
		}
		m[name] = ev
	}
	return Map(m), nil
}

// fieldName resolves the wire name of a struct field, "" meaning skipped.
func fieldName(f reflect.StructField) string {
	tag, ok := f.Tag.Lookup("firestore")
	if !ok {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
