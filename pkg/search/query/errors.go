package query

import "errors"

var (
	// ErrInvalidSort classifies sort directions other than asc/desc.
	ErrInvalidSort = errors.New("invalid sort")
	// ErrInvalidPagination classifies negative offsets or limits.
	ErrInvalidPagination = errors.New("invalid pagination")
	// ErrMissingTypeName classifies wrapped aggregations assembled without a type name.
	ErrMissingTypeName = errors.New("missing type name")
)
