// Package query assembles complete search request documents from a criteria
// tree, a sort, a page and an optional aggregation.
package query

import (
	"fmt"

	"github.com/nimburion/searchcriteria/pkg/criteria"
	"github.com/nimburion/searchcriteria/pkg/criteria/dsl"
)

// Assemble builds the request body for spec. It performs no I/O and does not
// modify spec.
//
// The document always carries query, sort, from and size. search_after is added
// when spec has a cursor and aggs when spec has an aggregation.
func Assemble(spec Specification, r dsl.FieldResolver, opts ...Option) (dsl.Document, error) {
	o := newOptions(opts)

	if spec.Offset < 0 || spec.Limit < 0 {
		return nil, fmt.Errorf("%w: offset %d, limit %d", ErrInvalidPagination, spec.Offset, spec.Limit)
	}
	if spec.Criteria == nil {
		return nil, fmt.Errorf("%w: nil criteria", criteria.ErrInvalidCriteria)
	}

	filter, err := dsl.Translate(spec.Criteria, r)
	if err != nil {
		return nil, fmt.Errorf("translate criteria: %w", err)
	}

	sort, err := sortClauses(spec.Sort, columnFunc(r), o.idField)
	if err != nil {
		return nil, fmt.Errorf("build sort: %w", err)
	}

	doc := dsl.Document{
		"query": filter,
		"sort":  sort,
		"from":  spec.Offset,
		"size":  spec.Limit,
	}
	if len(spec.SearchAfter) > 0 {
		doc["search_after"] = append([]any(nil), spec.SearchAfter...)
	}
	if spec.Aggregation != nil {
		aggs, err := aggregations(spec.Aggregation, filter, r, o)
		if err != nil {
			return nil, fmt.Errorf("build aggregation: %w", err)
		}
		doc["aggs"] = aggs
	}
	return doc, nil
}

// DeleteByQuery builds the body of a delete-by-query request matching c.
func DeleteByQuery(c criteria.Criteria, r dsl.FieldResolver) (dsl.Document, error) {
	filter, err := dsl.Translate(c, r)
	if err != nil {
		return nil, fmt.Errorf("translate criteria: %w", err)
	}
	return dsl.Document{"query": filter}, nil
}

func aggregations(agg *Aggregation, filter dsl.Document, r dsl.FieldResolver, o options) (dsl.Document, error) {
	var inner dsl.Document
	switch agg.Mode {
	case AggregationDirect:
		return agg.Body, nil
	case AggregationPassThrough:
		inner = agg.Body
	case AggregationNamed:
		if agg.Type == "" {
			return nil, fmt.Errorf("named aggregation without type")
		}
		col, err := columnFunc(r)(agg.Field)
		if err != nil {
			return nil, err
		}
		params := map[string]any{"field": col}
		if agg.Size > 0 {
			params["size"] = agg.Size
		}
		inner = dsl.Document{o.aggregationName: map[string]any{agg.Type: params}}
	default:
		return nil, fmt.Errorf("unknown aggregation mode %d", agg.Mode)
	}

	if o.typeName == "" {
		return nil, ErrMissingTypeName
	}
	return dsl.Document{o.typeName: map[string]any{
		"filter": filter,
		"aggs":   inner,
	}}, nil
}

func columnFunc(r dsl.FieldResolver) func(string) (string, error) {
	return func(field string) (string, error) {
		col, err := r.ColumnFor(field)
		if err != nil {
			return "", err
		}
		if col == "" {
			return "", &dsl.UnknownFieldError{Field: field}
		}
		return col, nil
	}
}
