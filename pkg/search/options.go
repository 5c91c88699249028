package search

import (
	"github.com/nimburion/searchcriteria/pkg/observability/metrics"
	"github.com/nimburion/searchcriteria/pkg/search/query"
)

// DefaultLimit is the page size used by reads that do not set one.
const DefaultLimit = 10

type serviceOptions struct {
	defaultLimit    int
	maxLimit        int
	idField         string
	aggregationName string
	metrics         *metrics.SearchMetrics
}

// Option configures a Service.
type Option func(*serviceOptions)

// WithDefaultLimit sets the page size for specifications with Limit 0 and for
// FindBy.
func WithDefaultLimit(limit int) Option {
	return func(o *serviceOptions) {
		if limit > 0 {
			o.defaultLimit = limit
		}
	}
}

// WithMaxLimit caps the page size of every read. 0 disables the cap.
func WithMaxLimit(limit int) Option {
	return func(o *serviceOptions) {
		if limit >= 0 {
			o.maxLimit = limit
		}
	}
}

// WithIDField sets the identifier column used as the sort tiebreak.
func WithIDField(field string) Option {
	return func(o *serviceOptions) {
		if field != "" {
			o.idField = field
		}
	}
}

// WithAggregationName sets the key of named aggregations.
func WithAggregationName(name string) Option {
	return func(o *serviceOptions) {
		if name != "" {
			o.aggregationName = name
		}
	}
}

// WithMetrics records query counts, latencies and hit counts.
func WithMetrics(m *metrics.SearchMetrics) Option {
	return func(o *serviceOptions) {
		o.metrics = m
	}
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		defaultLimit:    DefaultLimit,
		idField:         query.DefaultIDField,
		aggregationName: query.DefaultAggregationName,
	}
}
