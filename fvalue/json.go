package fvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// MarshalJSON renders v for diagnostics and export. Timestamps become
// RFC3339 strings and byte sequences become arrays of numbers, so the
// JSON form is readable but not guaranteed to round-trip: see FromJSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.jsonValue())
}

func (v Value) jsonValue() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindDouble:
		return v.d
	case KindBool:
		return v.b
	case KindBytes:
		ns := make([]int64, len(v.bs))
		for i, b := range v.bs {
			ns[i] = int64(b)
		}
		return ns
	case KindTimestamp:
		return v.ts.Format(time.RFC3339Nano)
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.jsonValue()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.jsonValue()
		}
		return out
	default:
		return nil
	}
}

// FromJSON parses a JSON document into a Value. Integral numbers become Int
// and all other numbers Double. Any string that parses as RFC3339 becomes a
// Timestamp rather than a string; this heuristic is deliberately lossy, a
// date-like string will not round-trip back to a string.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("fvalue: invalid json: %w", err)
	}
	return fromJSONValue(raw), nil
}

func fromJSONValue(raw any) Value {
	switch j := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(j)
	case json.Number:
		if i, err := j.Int64(); err == nil {
			return Int(i)
		}
		f, _ := j.Float64()
		return Double(f)
	case string:
		if t, err := time.Parse(time.RFC3339, j); err == nil {
			return Timestamp(t)
		}
		return String(j)
	case []any:
		vs := make([]Value, len(j))
		for i, e := range j {
			vs[i] = fromJSONValue(e)
		}
		return Array(vs...)
	case map[string]any:
		m := make(map[string]Value, len(j))
		for k, e := range j {
			m[k] = fromJSONValue(e)
		}
		return Map(m)
	default:
		return Null()
	}
}
