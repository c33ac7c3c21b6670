// Package fvalue implements the typed value model of a Firestore document
// and its conversions: to and from the wire representation
// (firestorepb.Value), to and from native Go values via reflection, and to
// and from JSON.
//
// The supported kinds are null, string, int64, float64, bool, bytes,
// timestamp, array and map. Reference and geo-point wire values are not
// supported and fail fast on conversion.
package fvalue

import (
	"fmt"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindDouble
	KindBool
	KindBytes
	KindTimestamp
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "timestamp"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MaxNestingDepth is the deepest array/map nesting Firestore accepts.
// Exceeding it during wire conversion is a programming error and panics.
const MaxNestingDepth = 20

// Value is a closed tagged union over the Firestore-supported value kinds.
// The zero Value is the null value.
type Value struct {
	kind Kind
	str  string
	i    int64
	d    float64
	b    bool
	bs   []byte
	ts   time.Time
	arr  []Value
	m    map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns a 64-bit integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Double returns a double value.
func Double(d float64) Value { return Value{kind: KindDouble, d: d} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Bytes returns a byte-sequence value.
func Bytes(bs []byte) Value { return Value{kind: KindBytes, bs: bs} }

// Timestamp returns a timestamp value. The time is normalized to wall-clock
// UTC with nanosecond precision, matching what the wire format preserves, so
// values survive a wire round trip unchanged.
func Timestamp(t time.Time) Value {
	return Value{kind: KindTimestamp, ts: time.Unix(t.Unix(), int64(t.Nanosecond())).UTC()}
}

// Array returns an array value.
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Map returns a map value.
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload if v is a string value.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsInt returns the integer payload if v is an int value.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsDouble returns the double payload if v is a double value.
func (v Value) AsDouble() (float64, bool) {
	if v.kind != KindDouble {
		return 0, false
	}
	return v.d, true
}

// AsBool returns the boolean payload if v is a bool value.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsBytes returns the byte payload if v is a bytes value.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.bs, true
}

// AsTimestamp returns the time payload if v is a timestamp value.
func (v Value) AsTimestamp() (time.Time, bool) {
	if v.kind != KindTimestamp {
		return time.Time{}, false
	}
	return v.ts, true
}

// AsArray returns the element slice if v is an array value.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsMap returns the entry map if v is a map value.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// Equal reports deep equality of two values. Timestamps compare by instant,
// maps by key set and recursive value equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindInt:
		return v.i == o.i
	case KindDouble:
		return v.d == o.d
	case KindBool:
		return v.b == o.b
	case KindBytes:
		if len(v.bs) != len(o.bs) {
			return false
		}
		for i := range v.bs {
			if v.bs[i] != o.bs[i] {
				return false
			}
		}
		return true
	case KindTimestamp:
		return v.ts.Equal(o.ts)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, ev := range v.m {
			ov, ok := o.m[k]
			if !ok || !ev.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindDouble:
		return fmt.Sprintf("%g", v.d)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bs))
	case KindTimestamp:
		return v.ts.Format(time.RFC3339Nano)
	case KindArray:
		return fmt.Sprintf("array(%d)", len(v.arr))
	case KindMap:
		return fmt.Sprintf("map(%d)", len(v.m))
	default:
		return v.kind.String()
	}
}
