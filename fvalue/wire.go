package fvalue

import (
	"fmt"

	pb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ToWire converts v to its firestorepb representation. Arrays and maps
// nested deeper than MaxNestingDepth panic: such a value can never be stored
// and indicates a construction bug, not bad input data.
func ToWire(v Value) *pb.Value {
	return toWire(v, 0)
}

func toWire(v Value, depth int) *pb.Value {
	if depth > MaxNestingDepth {
		panic(fmt.Sprintf("fvalue: array or map nesting depth must not exceed %d", MaxNestingDepth))
	}

	switch v.kind {
	case KindNull:
		return &pb.Value{ValueType: &pb.Value_NullValue{}}
	case KindString:
		return &pb.Value{ValueType: &pb.Value_StringValue{StringValue: v.str}}
	case KindInt:
		return &pb.Value{ValueType: &pb.Value_IntegerValue{IntegerValue: v.i}}
	case KindDouble:
		return &pb.Value{ValueType: &pb.Value_DoubleValue{DoubleValue: v.d}}
	case KindBool:
		return &pb.Value{ValueType: &pb.Value_BooleanValue{BooleanValue: v.b}}
	case KindBytes:
		return &pb.Value{ValueType: &pb.Value_BytesValue{BytesValue: v.bs}}
	case KindTimestamp:
		return &pb.Value{ValueType: &pb.Value_TimestampValue{TimestampValue: timestamppb.New(v.ts)}}
	case KindArray:
		vs := make([]*pb.Value, len(v.arr))
		for i, e := range v.arr {
			vs[i] = toWire(e, depth+1)
		}
		return &pb.Value{ValueType: &pb.Value_ArrayValue{ArrayValue: &pb.ArrayValue{Values: vs}}}
	case KindMap:
		fs := make(map[string]*pb.Value, len(v.m))
		for k, e := range v.m {
			fs[k] = toWire(e, depth+1)
		}
		return &pb.Value{ValueType: &pb.Value_MapValue{MapValue: &pb.MapValue{Fields: fs}}}
	default:
		panic(fmt.Sprintf("fvalue: unknown value kind %v", v.kind))
	}
}

// FromWire converts a firestorepb value back into a Value. Reference and
// geo-point values are not supported by this model and panic.
func FromWire(v *pb.Value) Value {
	if v == nil || v.ValueType == nil {
		panic("fvalue: wire value without a value type")
	}

	switch w := v.ValueType.(type) {
	case *pb.Value_NullValue:
		return Null()
	case *pb.Value_StringValue:
		return String(w.StringValue)
	case *pb.Value_IntegerValue:
		return Int(w.IntegerValue)
	case *pb.Value_DoubleValue:
		return Double(w.DoubleValue)
	case *pb.Value_BooleanValue:
		return Bool(w.BooleanValue)
	case *pb.Value_BytesValue:
		return Bytes(w.BytesValue)
	case *pb.Value_TimestampValue:
		return Timestamp(w.TimestampValue.AsTime())
	case *pb.Value_ArrayValue:
		vs := make([]Value, len(w.ArrayValue.GetValues()))
		for i, e := range w.ArrayValue.GetValues() {
			vs[i] = FromWire(e)
		}
		return Array(vs...)
	case *pb.Value_MapValue:
		m := make(map[string]Value, len(w.MapValue.GetFields()))
		for k, e := range w.MapValue.GetFields() {
			m[k] = FromWire(e)
		}
		return Map(m)
	case *pb.Value_ReferenceValue:
		panic("fvalue: reference values are not supported")
	case *pb.Value_GeoPointValue:
		panic("fvalue: geo-point values are not supported")
	default:
		panic(fmt.Sprintf("fvalue: unknown wire value type %T", w))
	}
}

// ValuesFromWriteResult converts the transform results of one write result.
func ValuesFromWriteResult(wr *pb.WriteResult) []Value {
	vs := make([]Value, len(wr.GetTransformResults()))
	for i, e := range wr.GetTransformResults() {
		vs[i] = FromWire(e)
	}
	return vs
}

// ValuesFromWriteResults converts the transform results of a whole batch.
func ValuesFromWriteResults(wrs []*pb.WriteResult) [][]Value {
	out := make([][]Value, len(wrs))
	for i, wr := range wrs {
		out[i] = ValuesFromWriteResult(wr)
	}
	return out
}
