package query

import (
	"github.com/nimburion/searchcriteria/pkg/criteria/dsl"
)

// AggregationMode selects where an aggregation is placed in the query document.
type AggregationMode int

const (
	// AggregationNamed builds a single aggregation on a resolved field, nested
	// under a filter wrapper named after the type.
	AggregationNamed AggregationMode = iota + 1
	// AggregationPassThrough nests a caller document under the filter wrapper.
	AggregationPassThrough
	// AggregationDirect attaches a caller document verbatim as top-level aggs.
	AggregationDirect
)

// Aggregation is an aggregation request.
type Aggregation struct {
	Mode  AggregationMode
	Type  string
	Field string
	Size  int
	Body  dsl.Document
}

// NamedAggregation requests an aggType aggregation ("terms", "avg", ...) on field.
// size <= 0 leaves the backend default.
func NamedAggregation(aggType, field string, size int) *Aggregation {
	return &Aggregation{Mode: AggregationNamed, Type: aggType, Field: field, Size: size}
}

// PassThroughAggregation nests body under the filter wrapper.
func PassThroughAggregation(body dsl.Document) *Aggregation {
	return &Aggregation{Mode: AggregationPassThrough, Body: body}
}

// DirectAggregation attaches body as the top-level aggs.
func DirectAggregation(body dsl.Document) *Aggregation {
	return &Aggregation{Mode: AggregationDirect, Body: body}
}

// Wrapped reports whether the aggregation sits under a type-named filter wrapper.
func (a *Aggregation) Wrapped() bool {
	return a != nil && a.Mode != AggregationDirect
}
