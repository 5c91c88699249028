package opensearch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nimburion/searchcriteria/pkg/observability/logger"
)

// performer is the raw request entry point both official clients expose.
type performer interface {
	Perform(*http.Request) (*http.Response, error)
}

// sdkAdapter runs the shared operations through an official client, which
// owns node selection and retries.
type sdkAdapter struct {
	*operations

	driver string
	client performer
	pool   *http.Transport
	logger logger.Logger
}

func newSDKAdapter(driver string, client performer, pool *http.Transport, cfg Config, log logger.Logger) *sdkAdapter {
	a := &sdkAdapter{driver: driver, client: client, pool: pool, logger: log}
	a.operations = newOperations(cfg, a.perform)
	return a
}

// connect pings the cluster once within the operation timeout.
func (a *sdkAdapter) connect(timeout time.Duration, nodes int) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.Ping(ctx); err != nil {
		_ = a.Close()
		return fmt.Errorf("failed to ping %s: %w", a.driver, err)
	}
	a.logger.Info("search connection established", "driver", a.driver, "nodes", nodes)
	return nil
}

// Ping verifies the cluster answers on its root endpoint.
func (a *sdkAdapter) Ping(ctx context.Context) error {
	resp, err := a.perform(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	return checkStatus(a.driver+" ping", resp)
}

func (a *sdkAdapter) HealthCheck(ctx context.Context) error {
	resp, err := a.perform(ctx, http.MethodGet, "/_cluster/health?local=true", nil)
	if err == nil {
		err = checkStatus(a.driver+" health check", resp)
	}
	if err != nil {
		a.logger.Error("search health check failed", "driver", a.driver, "error", err)
		return err
	}
	return nil
}

func (a *sdkAdapter) Close() error {
	a.pool.CloseIdleConnections()
	return nil
}

func (a *sdkAdapter) perform(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Perform(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", a.driver, err)
	}
	return resp, nil
}
