// Package query builds Firestore structured queries from a fluent
// specification: one collection selector, string-token filters and
// orderings, an optional projection, offset, limit and cursors.
package query

import (
	"fmt"

	pb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/firedoc/fvalue"
)

// MaxInClauseValues is the largest number of operands Firestore accepts for
// the "in" and "not-in" operators. Callers building such filters are
// responsible for staying within it.
const MaxInClauseValues = 10

// Builder accumulates the parts of a structured query. Methods return the
// builder for chaining; Build produces the wire query.
type Builder struct {
	selection *pb.StructuredQuery_Projection
	from      []*pb.StructuredQuery_CollectionSelector
	filters   []*pb.StructuredQuery_Filter
	orders    []*pb.StructuredQuery_Order
	offset    int32
	limit     *int32
}

// Collection starts a query over the given collection. With allDescendants
// the selector also matches descendant collections of the same id.
func Collection(collectionID string, allDescendants bool) *Builder {
	return &Builder{
		from: []*pb.StructuredQuery_CollectionSelector{{
			CollectionId:   collectionID,
			AllDescendants: allDescendants,
		}},
	}
}

// Select restricts returned documents to the given field paths.
func (b *Builder) Select(fields ...string) *Builder {
	refs := make([]*pb.StructuredQuery_FieldReference, len(fields))
	for i, f := range fields {
		refs[i] = fieldRef(f)
	}
	b.selection = &pb.StructuredQuery_Projection{Fields: refs}
	return b
}

// Where adds a binary comparison filter. Recognized operator tokens:
//
//	<  <=  ==  >  >=  !=  array-contains  array-contains-any  in  not-in
//
// An unrecognized token panics: it is a programming error that must surface
// where the query is built, not at network time.
func (b *Builder) Where(field, op string, value fvalue.Value) *Builder {
	b.filters = append(b.filters, &pb.StructuredQuery_Filter{
		FilterType: &pb.StructuredQuery_Filter_FieldFilter{
			FieldFilter: &pb.StructuredQuery_FieldFilter{
				Field: fieldRef(field),
				Op:    fieldOp(op),
				Value: fvalue.ToWire(value),
			},
		},
	})
	return b
}

// WhereUnary adds a null/NaN test filter. Recognized operator tokens:
//
//	is-nan  is-null  is-not-nan  is-not-null
//
// An unrecognized token panics.
func (b *Builder) WhereUnary(field, op string) *Builder {
	b.filters = append(b.filters, &pb.StructuredQuery_Filter{
		FilterType: &pb.StructuredQuery_Filter_UnaryFilter{
			UnaryFilter: &pb.StructuredQuery_UnaryFilter{
				Op: unaryOp(op),
				OperandType: &pb.StructuredQuery_UnaryFilter_Field{
					Field: fieldRef(field),
				},
			},
		},
	})
	return b
}

// OrderBy appends an ordering. Direction tokens: "asc", "desc"; anything
// else panics.
func (b *Builder) OrderBy(field, direction string) *Builder {
	b.orders = append(b.orders, &pb.StructuredQuery_Order{
		Field:     fieldRef(field),
		Direction: orderDirection(direction),
	})
	return b
}

// Offset skips the first n results.
func (b *Builder) Offset(n int32) *Builder {
	b.offset = n
	return b
}

// Limit caps the number of returned results.
func (b *Builder) Limit(n int32) *Builder {
	b.limit = &n
	return b
}

// Build assembles the structured query without cursors.
func (b *Builder) Build() *pb.StructuredQuery {
	return b.BuildWithCursors(nil, nil)
}

// BuildWithCursors assembles the structured query with optional start/end
// cursors. Multiple filters are AND-combined; a single filter passes through
// unwrapped and zero filters produce no where clause.
func (b *Builder) BuildWithCursors(startAt, endAt *pb.Cursor) *pb.StructuredQuery {
	q := &pb.StructuredQuery{
		Select:  b.selection,
		From:    b.from,
		Where:   mergeFilters(b.filters),
		OrderBy: b.orders,
		StartAt: startAt,
		EndAt:   endAt,
		Offset:  b.offset,
	}
	if b.limit != nil {
		q.Limit = wrapperspb.Int32(*b.limit)
	}
	return q
}

func mergeFilters(filters []*pb.StructuredQuery_Filter) *pb.StructuredQuery_Filter {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	default:
		return &pb.StructuredQuery_Filter{
			FilterType: &pb.StructuredQuery_Filter_CompositeFilter{
				CompositeFilter: &pb.StructuredQuery_CompositeFilter{
					Op:      pb.StructuredQuery_CompositeFilter_AND,
					Filters: filters,
				},
			},
		}
	}
}

func fieldRef(path string) *pb.StructuredQuery_FieldReference {
	return &pb.StructuredQuery_FieldReference{FieldPath: path}
}

func fieldOp(op string) pb.StructuredQuery_FieldFilter_Operator {
	switch op {
	case "<":
		return pb.StructuredQuery_FieldFilter_LESS_THAN
	case "<=":
		return pb.StructuredQuery_FieldFilter_LESS_THAN_OR_EQUAL
	case "==":
		return pb.StructuredQuery_FieldFilter_EQUAL
	case ">":
		return pb.StructuredQuery_FieldFilter_GREATER_THAN
	case ">=":
		return pb.StructuredQuery_FieldFilter_GREATER_THAN_OR_EQUAL
	case "!=":
		return pb.StructuredQuery_FieldFilter_NOT_EQUAL
	case "array-contains":
		return pb.StructuredQuery_FieldFilter_ARRAY_CONTAINS
	case "array-contains-any":
		return pb.StructuredQuery_FieldFilter_ARRAY_CONTAINS_ANY
	case "in":
		return pb.StructuredQuery_FieldFilter_IN
	case "not-in":
		return pb.StructuredQuery_FieldFilter_NOT_IN
	default:
		panic(fmt.Sprintf("query: invalid field operator %q", op))
	}
}

func unaryOp(op string) pb.StructuredQuery_UnaryFilter_Operator {
	switch op {
	case "is-nan":
		return pb.StructuredQuery_UnaryFilter_IS_NAN
	case "is-null":
		return pb.StructuredQuery_UnaryFilter_IS_NULL
	case "is-not-nan":
		return pb.StructuredQuery_UnaryFilter_IS_NOT_NAN
	case "is-not-null":
		return pb.StructuredQuery_UnaryFilter_IS_NOT_NULL
	default:
		panic(fmt.Sprintf("query: invalid unary operator %q", op))
	}
}

func orderDirection(direction string) pb.StructuredQuery_Direction {
	switch direction {
	case "asc":
		return pb.StructuredQuery_ASCENDING
	case "desc":
		return pb.StructuredQuery_DESCENDING
	default:
		panic(fmt.Sprintf("query: invalid order direction %q", direction))
	}
}
