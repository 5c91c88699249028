package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer scope used for search spans.
const InstrumentationName = "github.com/nimburion/searchcriteria/pkg/search"

// SpanOperation names a traced search operation.
type SpanOperation string

const (
	SpanOperationSearchQuery         SpanOperation = "search.query"
	SpanOperationSearchAggregate     SpanOperation = "search.aggregate"
	SpanOperationSearchIndex         SpanOperation = "search.index"
	SpanOperationSearchDelete        SpanOperation = "search.delete"
	SpanOperationSearchDeleteByQuery SpanOperation = "search.delete_by_query"
	SpanOperationSearchRefresh       SpanOperation = "search.refresh"
	SpanOperationSearchCreateIndex   SpanOperation = "search.create_index"
)

// StartSearchSpan starts a client span for a search backend operation using the
// global tracer provider.
func StartSearchSpan(ctx context.Context, operation SpanOperation, opts ...SearchSpanOption) (context.Context, trace.Span) {
	spanOpts := &searchSpanOptions{
		attributes: []attribute.KeyValue{
			attribute.String("db.system", "opensearch"),
			attribute.String("db.operation", string(operation)),
		},
	}
	for _, opt := range opts {
		opt(spanOpts)
	}

	spanName := fmt.Sprintf("SEARCH %s", operation)
	if spanOpts.index != "" {
		spanName = fmt.Sprintf("SEARCH %s %s", operation, spanOpts.index)
	}

	ctx, span := otel.Tracer(InstrumentationName).Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(spanOpts.attributes...)
	return ctx, span
}

// SearchSpanOption configures a search span.
type SearchSpanOption func(*searchSpanOptions)

type searchSpanOptions struct {
	index      string
	attributes []attribute.KeyValue
}

// WithSearchIndex sets the target index.
func WithSearchIndex(index string) SearchSpanOption {
	return func(opts *searchSpanOptions) {
		opts.index = index
		opts.attributes = append(opts.attributes, attribute.String("db.name", index))
	}
}

// WithSearchQueryID tags the span with the query correlation id.
func WithSearchQueryID(id string) SearchSpanOption {
	return func(opts *searchSpanOptions) {
		opts.attributes = append(opts.attributes, attribute.String("search.query_id", id))
	}
}

// WithSearchSystem overrides db.system, e.g. "elasticsearch".
func WithSearchSystem(system string) SearchSpanOption {
	return func(opts *searchSpanOptions) {
		opts.attributes = append(opts.attributes, attribute.String("db.system", system))
	}
}

// RecordError marks the span as failed.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// RecordSuccess sets the span status to OK.
func RecordSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
