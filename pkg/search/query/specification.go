package query

import (
	"github.com/nimburion/searchcriteria/pkg/criteria"
)

// Specification is everything needed to build one search request.
type Specification struct {
	Criteria    criteria.Criteria
	Sort        Sort
	Offset      int
	Limit       int
	SearchAfter []any
	Aggregation *Aggregation
}

// NewSpecification returns a specification with default sort and the given page.
func NewSpecification(c criteria.Criteria, offset, limit int) Specification {
	return Specification{Criteria: c, Offset: offset, Limit: limit}
}

// WithSort returns a copy of s ordered by sort.
func (s Specification) WithSort(sort Sort) Specification {
	s.Sort = sort
	return s
}

// WithSearchAfter returns a copy of s resuming after the given sort values.
func (s Specification) WithSearchAfter(values ...any) Specification {
	s.SearchAfter = append([]any(nil), values...)
	return s
}

// WithAggregation returns a copy of s carrying agg.
func (s Specification) WithAggregation(agg *Aggregation) Specification {
	s.Aggregation = agg
	return s
}
