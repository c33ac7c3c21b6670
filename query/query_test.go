package query

import (
	"testing"

	pb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/firedoc/fvalue"
)

func TestCollectionSelector(t *testing.T) {
	q := Collection("users", true).Build()
	require.Len(t, q.GetFrom(), 1)
	require.Equal(t, "users", q.GetFrom()[0].GetCollectionId())
	require.True(t, q.GetFrom()[0].GetAllDescendants())
	require.Nil(t, q.GetWhere())
	require.Nil(t, q.GetLimit())
}

func TestSingleFilterPassesThroughUnwrapped(t *testing.T) {
	q := Collection("users", false).
		Where("age", ">=", fvalue.Int(21)).
		Build()

	ff := q.GetWhere().GetFieldFilter()
	require.NotNil(t, ff, "single filter must not be wrapped in a composite")
	require.Equal(t, "age", ff.GetField().GetFieldPath())
	require.Equal(t, pb.StructuredQuery_FieldFilter_GREATER_THAN_OR_EQUAL, ff.GetOp())
	require.Equal(t, int64(21), ff.GetValue().GetIntegerValue())
}

func TestMultipleFiltersAndCombined(t *testing.T) {
	q := Collection("users", false).
		Where("age", ">=", fvalue.Int(21)).
		Where("name", "==", fvalue.String("alice")).
		WhereUnary("deleted_at", "is-null").
		Build()

	cf := q.GetWhere().GetCompositeFilter()
	require.NotNil(t, cf)
	require.Equal(t, pb.StructuredQuery_CompositeFilter_AND, cf.GetOp())
	require.Len(t, cf.GetFilters(), 3)

	uf := cf.GetFilters()[2].GetUnaryFilter()
	require.NotNil(t, uf)
	require.Equal(t, pb.StructuredQuery_UnaryFilter_IS_NULL, uf.GetOp())
	require.Equal(t, "deleted_at", uf.GetField().GetFieldPath())
}

func TestOperatorTokens(t *testing.T) {
	ops := map[string]pb.StructuredQuery_FieldFilter_Operator{
		"<":                  pb.StructuredQuery_FieldFilter_LESS_THAN,
		"<=":                 pb.StructuredQuery_FieldFilter_LESS_THAN_OR_EQUAL,
		"==":                 pb.StructuredQuery_FieldFilter_EQUAL,
		">":                  pb.StructuredQuery_FieldFilter_GREATER_THAN,
		">=":                 pb.StructuredQuery_FieldFilter_GREATER_THAN_OR_EQUAL,
		"!=":                 pb.StructuredQuery_FieldFilter_NOT_EQUAL,
		"array-contains":     pb.StructuredQuery_FieldFilter_ARRAY_CONTAINS,
		"array-contains-any": pb.StructuredQuery_FieldFilter_ARRAY_CONTAINS_ANY,
		"in":                 pb.StructuredQuery_FieldFilter_IN,
		"not-in":             pb.StructuredQuery_FieldFilter_NOT_IN,
	}
	for token, want := range ops {
		q := Collection("c", false).Where("f", token, fvalue.Int(1)).Build()
		require.Equal(t, want, q.GetWhere().GetFieldFilter().GetOp(), "token %q", token)
	}
}

func TestInvalidTokensPanic(t *testing.T) {
	require.Panics(t, func() {
		Collection("c", false).Where("f", "=", fvalue.Int(1))
	})
	require.Panics(t, func() {
		Collection("c", false).WhereUnary("f", "is-missing")
	})
	require.Panics(t, func() {
		Collection("c", false).OrderBy("f", "ascending")
	})
}

func TestSelectOrderOffsetLimit(t *testing.T) {
	q := Collection("users", false).
		Select("name", "age").
		OrderBy("age", "desc").
		OrderBy("name", "asc").
		Offset(10).
		Limit(5).
		Build()

	require.Len(t, q.GetSelect().GetFields(), 2)
	require.Equal(t, "name", q.GetSelect().GetFields()[0].GetFieldPath())

	require.Len(t, q.GetOrderBy(), 2)
	require.Equal(t, pb.StructuredQuery_DESCENDING, q.GetOrderBy()[0].GetDirection())
	require.Equal(t, pb.StructuredQuery_ASCENDING, q.GetOrderBy()[1].GetDirection())

	require.Equal(t, int32(10), q.GetOffset())
	require.NotNil(t, q.GetLimit())
	require.Equal(t, int32(5), q.GetLimit().GetValue())
}

func TestBuildWithCursors(t *testing.T) {
	start := &pb.Cursor{Values: []*pb.Value{fvalue.ToWire(fvalue.Int(1))}, Before: true}
	end := &pb.Cursor{Values: []*pb.Value{fvalue.ToWire(fvalue.Int(9))}}

	q := Collection("c", false).OrderBy("n", "asc").BuildWithCursors(start, end)
	require.Equal(t, start, q.GetStartAt())
	require.Equal(t, end, q.GetEndAt())
}
