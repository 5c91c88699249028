package health

import (
	"context"
	"time"
)

const defaultCheckTimeout = 5 * time.Second

// Checkable is an interface for components that support health checks
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// AdapterChecker health-checks any Checkable, typically a search client.
type AdapterChecker struct {
	name          string
	adapter       Checkable
	timeout       time.Duration
	slowThreshold time.Duration
	metadata      map[string]any
}

// AdapterCheckerOption configures an AdapterChecker.
type AdapterCheckerOption func(*AdapterChecker)

// WithSlowThreshold reports a successful check as degraded when it takes longer than d.
func WithSlowThreshold(d time.Duration) AdapterCheckerOption {
	return func(c *AdapterChecker) { c.slowThreshold = d }
}

// WithMetadata attaches static metadata, such as the backend type, to every result.
func WithMetadata(key string, value any) AdapterCheckerOption {
	return func(c *AdapterChecker) {
		if c.metadata == nil {
			c.metadata = make(map[string]any)
		}
		c.metadata[key] = value
	}
}

// NewAdapterChecker creates a new health checker for an adapter.
// A zero timeout defaults to 5s.
func NewAdapterChecker(name string, adapter Checkable, timeout time.Duration, opts ...AdapterCheckerOption) *AdapterChecker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	c := &AdapterChecker{
		name:    name,
		adapter: adapter,
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSearchChecker creates a checker for a search client that turns degraded
// when the cluster answers slower than half the timeout.
func NewSearchChecker(name string, client Checkable, timeout time.Duration, opts ...AdapterCheckerOption) *AdapterChecker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	opts = append([]AdapterCheckerOption{WithSlowThreshold(timeout / 2)}, opts...)
	return NewAdapterChecker(name, client, timeout, opts...)
}

// Check performs the health check on the adapter
func (c *AdapterChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.adapter.HealthCheck(checkCtx)
	duration := time.Since(start)

	result := CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "OK",
		Timestamp: time.Now(),
		Duration:  duration,
		Metadata:  c.metadata,
	}
	switch {
	case err != nil:
		result.Status = StatusUnhealthy
		result.Message = ""
		result.Error = err.Error()
	case c.slowThreshold > 0 && duration > c.slowThreshold:
		result.Status = StatusDegraded
		result.Message = "slow response"
	}
	return result
}

// Name returns the name of the health check
func (c *AdapterChecker) Name() string {
	return c.name
}
