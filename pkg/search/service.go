// Package search runs criteria-based queries against an OpenSearch/Elasticsearch
// index and maps the hits back to entities.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nimburion/searchcriteria/pkg/criteria"
	"github.com/nimburion/searchcriteria/pkg/criteria/dsl"
	"github.com/nimburion/searchcriteria/pkg/criteria/instruction"
	"github.com/nimburion/searchcriteria/pkg/observability/logger"
	"github.com/nimburion/searchcriteria/pkg/observability/tracing"
	"github.com/nimburion/searchcriteria/pkg/search/query"
)

// Service is a typed search facade for one index.
type Service[T any] struct {
	client Client
	mapper Mapper[T]
	logger logger.Logger
	opts   serviceOptions
}

// NewService creates a Service. A nil logger disables logging.
func NewService[T any](client Client, mapper Mapper[T], log logger.Logger, opts ...Option) (*Service[T], error) {
	if client == nil {
		return nil, fmt.Errorf("search client is required")
	}
	if mapper == nil {
		return nil, fmt.Errorf("mapper is required")
	}
	if mapper.IndexName() == "" {
		return nil, fmt.Errorf("mapper returned an empty index name")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Service[T]{
		client: client,
		mapper: mapper,
		logger: log.With("index", mapper.IndexName()),
		opts:   o,
	}, nil
}

// Query assembles the request body for spec without sending it.
func (s *Service[T]) Query(spec query.Specification) (dsl.Document, error) {
	return query.Assemble(spec, s.mapper,
		query.WithIDField(s.opts.idField),
		query.WithTypeName(s.mapper.TypeName()),
		query.WithAggregationName(s.opts.aggregationName),
	)
}

// FindMany returns the entities matching spec in backend order. No match yields
// an empty slice.
func (s *Service[T]) FindMany(ctx context.Context, spec query.Specification) ([]T, error) {
	spec.Limit = s.pageSize(spec.Limit)
	resp, err := s.search(ctx, tracing.SpanOperationSearchQuery, spec)
	if err != nil {
		return nil, err
	}
	return s.entities(resp.Hits)
}

// FindOne returns the single entity matching spec. It fails with ErrNotFound
// when nothing matches and with an *AmbiguousResultError when several do.
func (s *Service[T]) FindOne(ctx context.Context, spec query.Specification) (T, error) {
	var zero T

	// two hits are enough to tell "one" from "many"
	spec.Limit = 2
	resp, err := s.search(ctx, tracing.SpanOperationSearchQuery, spec)
	if err != nil {
		return zero, err
	}
	switch len(resp.Hits) {
	case 0:
		return zero, ErrNotFound
	case 1:
		return s.mapper.DocumentToEntity(resp.Hits[0])
	default:
		return zero, &AmbiguousResultError{Index: s.mapper.IndexName(), Hits: len(resp.Hits)}
	}
}

// FindBy compiles a list finder such as "getByNameAndCity" and runs it with the
// default page size.
func (s *Service[T]) FindBy(ctx context.Context, name string, values ...any) ([]T, error) {
	c, err := s.compile(name, instruction.FindAll, values)
	if err != nil {
		return nil, err
	}
	return s.FindMany(ctx, query.NewSpecification(c, 0, s.opts.defaultLimit))
}

// FindOneBy compiles a single-result finder such as "getOneByEmail" and runs it.
func (s *Service[T]) FindOneBy(ctx context.Context, name string, values ...any) (T, error) {
	c, err := s.compile(name, instruction.FindOne, values)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.FindOne(ctx, query.NewSpecification(c, 0, 0))
}

// Aggregate runs agg over the documents matching c and returns the aggregation
// node: aggregations.<type>.<name> for named aggregations,
// aggregations.<type> for pass-through ones and aggregations for direct ones.
func (s *Service[T]) Aggregate(ctx context.Context, c criteria.Criteria, agg *query.Aggregation) (json.RawMessage, error) {
	if agg == nil {
		return nil, fmt.Errorf("aggregation is required")
	}
	spec := query.NewSpecification(c, 0, 0).WithAggregation(agg)
	resp, err := s.search(ctx, tracing.SpanOperationSearchAggregate, spec)
	if err != nil {
		return nil, err
	}

	switch agg.Mode {
	case query.AggregationNamed:
		return resp.Aggregation(s.mapper.TypeName(), s.opts.aggregationName)
	case query.AggregationPassThrough:
		return resp.Aggregation(s.mapper.TypeName())
	default:
		return resp.Aggregation()
	}
}

// Index stores entity and refreshes the index so it is immediately searchable.
func (s *Service[T]) Index(ctx context.Context, entity T) error {
	if err := s.IndexWithoutRefresh(ctx, entity); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// IndexWithoutRefresh stores entity without waiting for it to become searchable.
func (s *Service[T]) IndexWithoutRefresh(ctx context.Context, entity T) error {
	id, err := s.mapper.EntityID(entity)
	if err != nil {
		return fmt.Errorf("failed to resolve entity id: %w", err)
	}
	doc, err := s.mapper.EntityToDocument(entity)
	if err != nil {
		return fmt.Errorf("failed to map entity %s: %w", id, err)
	}
	return s.write(ctx, tracing.SpanOperationSearchIndex, func(ctx context.Context) error {
		return s.client.IndexDocument(ctx, s.mapper.IndexName(), s.mapper.TypeName(), id, doc)
	}, "id", id)
}

// Delete removes entity and refreshes the index.
func (s *Service[T]) Delete(ctx context.Context, entity T) error {
	id, err := s.mapper.EntityID(entity)
	if err != nil {
		return fmt.Errorf("failed to resolve entity id: %w", err)
	}
	err = s.write(ctx, tracing.SpanOperationSearchDelete, func(ctx context.Context) error {
		return s.client.DeleteDocument(ctx, s.mapper.IndexName(), s.mapper.TypeName(), id)
	}, "id", id)
	if err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// DeleteBy removes every document matching c. Visibility of the deletion follows
// the client's delete-by-query semantics.
func (s *Service[T]) DeleteBy(ctx context.Context, c criteria.Criteria) error {
	body, err := query.DeleteByQuery(c, s.mapper)
	if err != nil {
		return err
	}
	return s.write(ctx, tracing.SpanOperationSearchDeleteByQuery, func(ctx context.Context) error {
		return s.client.DeleteByQuery(ctx, s.mapper.IndexName(), s.mapper.TypeName(), body)
	}, "criteria", c.String())
}

// CreateIndex creates the index from the mapper's definition.
func (s *Service[T]) CreateIndex(ctx context.Context) error {
	return s.write(ctx, tracing.SpanOperationSearchCreateIndex, func(ctx context.Context) error {
		return s.client.CreateIndex(ctx, s.mapper.IndexName(), s.mapper.CreateIndexCommand())
	})
}

// Refresh makes recent writes searchable.
func (s *Service[T]) Refresh(ctx context.Context) error {
	return s.write(ctx, tracing.SpanOperationSearchRefresh, func(ctx context.Context) error {
		return s.client.RefreshIndex(ctx, s.mapper.IndexName())
	})
}

func (s *Service[T]) search(ctx context.Context, op tracing.SpanOperation, spec query.Specification) (*Response, error) {
	queryID := uuid.NewString()
	index := s.mapper.IndexName()
	log := s.logger.WithContext(ctx).With("query_id", queryID)

	ctx, span := tracing.StartSearchSpan(ctx, op,
		tracing.WithSearchIndex(index),
		tracing.WithSearchQueryID(queryID),
	)
	defer span.End()

	body, err := s.Query(spec)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	log.Debug("search query assembled", "query", body.String())

	start := time.Now()
	raw, err := s.client.Search(ctx, index, s.mapper.TypeName(), body)
	elapsed := time.Since(start)
	if err == nil {
		var resp *Response
		resp, err = ParseResponse(raw)
		if err == nil {
			s.opts.metrics.ObserveQuery(index, string(op), elapsed, len(resp.Hits), nil)
			tracing.RecordSuccess(span)
			log.Debug("search query completed", "hits", len(resp.Hits), "total", resp.Total, "duration", elapsed)
			return resp, nil
		}
	}

	s.opts.metrics.ObserveQuery(index, string(op), elapsed, 0, err)
	tracing.RecordError(span, err)
	log.Error("search query failed", "error", err, "duration", elapsed)
	return nil, fmt.Errorf("search %s: %w", index, err)
}

func (s *Service[T]) write(ctx context.Context, op tracing.SpanOperation, call func(context.Context) error, fields ...any) error {
	index := s.mapper.IndexName()
	ctx, span := tracing.StartSearchSpan(ctx, op, tracing.WithSearchIndex(index))
	defer span.End()

	start := time.Now()
	err := call(ctx)
	elapsed := time.Since(start)
	s.opts.metrics.ObserveWrite(index, string(op), elapsed, err)
	if err != nil {
		tracing.RecordError(span, err)
		s.logger.WithContext(ctx).Error("search write failed", append([]any{"operation", op, "error", err}, fields...)...)
		return fmt.Errorf("%s %s: %w", op, index, err)
	}
	tracing.RecordSuccess(span)
	return nil
}

func (s *Service[T]) entities(hits []Hit) ([]T, error) {
	out := make([]T, 0, len(hits))
	for _, hit := range hits {
		entity, err := s.mapper.DocumentToEntity(hit)
		if err != nil {
			return nil, fmt.Errorf("failed to map hit %s: %w", hit.ID, err)
		}
		out = append(out, entity)
	}
	return out, nil
}

func (s *Service[T]) compile(name string, mode instruction.Mode, values []any) (criteria.Criteria, error) {
	ins, err := instruction.Parse(name)
	if err != nil {
		return nil, err
	}
	if ins.Mode != mode {
		return nil, &instruction.UnrecognizedInstructionError{
			Instruction: name,
			Reason:      fmt.Sprintf("is a %s finder, expected %s", ins.Mode, mode),
		}
	}
	return ins.Compile(values)
}

func (s *Service[T]) pageSize(limit int) int {
	if limit == 0 {
		limit = s.opts.defaultLimit
	}
	if s.opts.maxLimit > 0 && limit > s.opts.maxLimit {
		s.logger.Warn("search limit capped", "requested", limit, "max", s.opts.maxLimit)
		limit = s.opts.maxLimit
	}
	return limit
}

// IsNotFound reports whether err means a single-result read matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
