package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nimburion/searchcriteria/pkg/observability/logger"
	"github.com/nimburion/searchcriteria/pkg/resilience"
	"github.com/nimburion/searchcriteria/pkg/store/opensearch"
)

// breakerClient routes every cluster call of a SearchClient through a circuit
// breaker. Close is never rejected.
type breakerClient struct {
	next    SearchClient
	breaker *resilience.CircuitBreaker
}

// WithCircuitBreaker wraps client so that maxFailures consecutive cluster
// failures reject further calls with resilience.ErrCircuitOpen until
// resetTimeout has elapsed. Client errors (4xx other than 408 and 429) do not
// count as failures.
func WithCircuitBreaker(client SearchClient, maxFailures int, resetTimeout time.Duration, log logger.Logger) SearchClient {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &breakerClient{
		next: client,
		breaker: resilience.NewCircuitBreaker(maxFailures, resetTimeout,
			resilience.WithFailurePredicate(isClusterFailure),
			resilience.WithStateChange(func(from, to resilience.State) {
				log.Warn("search circuit breaker state changed", "from", from.String(), "to", to.String())
			}),
		),
	}
}

func isClusterFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var status *opensearch.StatusError
	if errors.As(err, &status) {
		switch {
		case status.Status == http.StatusRequestTimeout, status.Status == http.StatusTooManyRequests:
			return true
		case status.Status >= 400 && status.Status < 500:
			return false
		}
	}
	return true
}

func (c *breakerClient) Search(ctx context.Context, index, typeName string, query any) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.next.Search(ctx, index, typeName, query)
		return err
	})
	return out, err
}

func (c *breakerClient) IndexDocument(ctx context.Context, index, typeName, id string, document any) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.next.IndexDocument(ctx, index, typeName, id, document)
	})
}

func (c *breakerClient) DeleteDocument(ctx context.Context, index, typeName, id string) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.next.DeleteDocument(ctx, index, typeName, id)
	})
}

func (c *breakerClient) DeleteByQuery(ctx context.Context, index, typeName string, query any) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.next.DeleteByQuery(ctx, index, typeName, query)
	})
}

func (c *breakerClient) RefreshIndex(ctx context.Context, index string) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.next.RefreshIndex(ctx, index)
	})
}

func (c *breakerClient) CreateIndex(ctx context.Context, index string, definition any) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.next.CreateIndex(ctx, index, definition)
	})
}

func (c *breakerClient) HealthCheck(ctx context.Context) error {
	return c.breaker.Execute(ctx, c.next.HealthCheck)
}

func (c *breakerClient) ClusterInfo(ctx context.Context) (opensearch.ClusterInfo, error) {
	var info opensearch.ClusterInfo
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		info, err = c.next.ClusterInfo(ctx)
		return err
	})
	return info, err
}

func (c *breakerClient) Close() error {
	return c.next.Close()
}
