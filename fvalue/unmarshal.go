package fvalue

import (
	"fmt"
	"reflect"
)

// Unmarshal fills dst, which must be a non-nil pointer, from v.
//
// The value's kind must match the shape of the target type: strings into
// string kinds, ints into integer and float kinds (widening), doubles into
// float kinds, arrays into slices, maps into string-keyed maps or structs.
// A null value sets pointer targets to nil and leaves other targets at their
// zero value. Any other mismatch returns *IncompatibleTypeError.
func Unmarshal(v Value, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &IncompatibleTypeError{Value: v.kind.String(), Target: fmt.Sprintf("%T (need non-nil pointer)", dst)}
	}
	return unmarshal(v, rv.Elem())
}

func unmarshal(v Value, rv reflect.Value) error {
	if rv.Type() == valueType {
		rv.Set(reflect.ValueOf(v))
		return nil
	}

	// Null clears pointers and zeroes everything else.
	if v.kind == KindNull {
		rv.SetZero()
		return nil
	}

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return unmarshal(v, rv.Elem())
	}
	if rv.Kind() == reflect.Interface && rv.NumMethod() == 0 {
		native, err := toNative(v)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(native))
		return nil
	}

	if rv.Type() == timeType {
		t, ok := v.AsTimestamp()
		if !ok {
			return mismatch(v, rv)
		}
		rv.Set(reflect.ValueOf(t))
		return nil
	}

	switch v.kind {
	case KindString:
		if rv.Kind() != reflect.String {
			return mismatch(v, rv)
		}
		rv.SetString(v.str)
		return nil
	case KindBool:
		if rv.Kind() != reflect.Bool {
			return mismatch(v, rv)
		}
		rv.SetBool(v.b)
		return nil
	case KindInt:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			rv.SetInt(v.i)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			rv.SetUint(uint64(v.i))
		case reflect.Float32, reflect.Float64:
			rv.SetFloat(float64(v.i))
		default:
			return mismatch(v, rv)
		}
		return nil
	case KindDouble:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			rv.SetFloat(v.d)
		default:
			return mismatch(v, rv)
		}
		return nil
	case KindBytes:
		if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8 {
			return mismatch(v, rv)
		}
		rv.SetBytes(append([]byte(nil), v.bs...))
		return nil
	case KindTimestamp:
		return mismatch(v, rv) // non-time.Time target handled above
	case KindArray:
		if rv.Kind() != reflect.Slice {
			return mismatch(v, rv)
		}
		out := reflect.MakeSlice(rv.Type(), len(v.arr), len(v.arr))
		for i, ev := range v.arr {
			if err := unmarshal(ev, out.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil
	case KindMap:
		switch rv.Kind() {
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return &InvalidMapKeyError{Key: rv.Type().Key().String()}
			}
			out := reflect.MakeMapWithSize(rv.Type(), len(v.m))
			for k, ev := range v.m {
				elem := reflect.New(rv.Type().Elem()).Elem()
				if err := unmarshal(ev, elem); err != nil {
					return err
				}
				out.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), elem)
			}
			rv.Set(out)
			return nil
		case reflect.Struct:
			return unmarshalStruct(v, rv)
		default:
			return mismatch(v, rv)
		}
	default:
		return mismatch(v, rv)
	}
}

func unmarshalStruct(v Value, rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name := fieldName(f)
		if name == "" {
			continue
		}
		ev, ok := v.m[name]
		if !ok {
			continue
		}
		if err := unmarshal(ev, rv.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

// toNative maps a Value to the untyped Go shape used for interface{} targets.
func toNative(v Value) (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindString:
		return v.str, nil
	case KindInt:
		return v.i, nil
	case KindDouble:
		return v.d, nil
	case KindBool:
		return v.b, nil
	case KindBytes:
		return append([]byte(nil), v.bs...), nil
	case KindTimestamp:
		return v.ts, nil
	case KindArray:
		out := make([]any, len(v.arr))
		for i, ev := range v.arr {
			n, err := toNative(ev)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, ev := range v.m {
			n, err := toNative(ev)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	default:
		return nil, &IncompatibleTypeError{Value: v.kind.String(), Target: "interface{}"}
	}
}

func mismatch(v Value, rv reflect.Value) error {
	return &IncompatibleTypeError{Value: v.String(), Target: rv.Type().String()}
}
