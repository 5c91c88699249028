package opensearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nimburion/searchcriteria/pkg/observability/logger"
)

const userAgent = "searchcriteria/1.0"

// Adapter talks to OpenSearch/Elasticsearch over plain HTTP. Requests are spread
// round-robin over the configured nodes and retried on the next node when a node
// is unreachable or answers 502/503/504.
type Adapter struct {
	*operations

	nodes  []url.URL
	cursor atomic.Uint64
	pool   *http.Transport
	client *http.Client
	logger logger.Logger
	config Config
}

// Config holds OpenSearch/Elasticsearch adapter configuration.
type Config struct {
	URL              string
	URLs             []string
	Username         string
	Password         string
	APIKey           string
	AWSAuthEnabled   bool
	AWSRegion        string
	AWSService       string
	AWSAccessKeyID   string
	AWSSecretKey     string
	AWSSessionToken  string
	MaxConns         int
	OperationTimeout time.Duration
	// LegacyTypes addresses documents as /{index}/{type}/{id} instead of _doc.
	LegacyTypes bool
	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

func (c *Config) applyDefaults() error {
	if c.MaxConns <= 0 {
		c.MaxConns = 10
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 5 * time.Second
	}
	if c.AWSAuthEnabled {
		if strings.TrimSpace(c.AWSRegion) == "" {
			return fmt.Errorf("aws region is required when AWS auth is enabled")
		}
		if strings.TrimSpace(c.AWSService) == "" {
			c.AWSService = "es"
		}
	}
	return nil
}

// NewAdapter creates an adapter and pings the cluster once.
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	nodes, err := parseBaseURLs(cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	pool := newTransport(cfg)
	var rt http.RoundTripper = pool
	if cfg.AWSAuthEnabled {
		signed, err := newSigV4Transport(context.Background(), cfg, pool)
		if err != nil {
			return nil, err
		}
		rt = signed
	}

	a := &Adapter{
		nodes:  nodes,
		pool:   pool,
		client: &http.Client{Transport: rt, Timeout: cfg.OperationTimeout},
		logger: log,
		config: cfg,
	}
	a.operations = newOperations(cfg, a.roundRobin)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OperationTimeout)
	defer cancel()
	if err := a.Ping(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to ping opensearch/elasticsearch: %w", err)
	}

	log.Info("search connection established",
		"nodes", len(nodes),
		"aws_auth_enabled", cfg.AWSAuthEnabled,
		"legacy_types", cfg.LegacyTypes,
		"max_conns", cfg.MaxConns,
		"operation_timeout", cfg.OperationTimeout,
	)
	return a, nil
}

// Ping verifies the cluster answers on its root endpoint.
func (a *Adapter) Ping(ctx context.Context) error {
	resp, err := a.roundRobin(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	return checkStatus("ping", resp)
}

// HealthCheck asks the coordinating node for cluster health.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp, err := a.roundRobin(ctx, http.MethodGet, "/_cluster/health?local=true", nil)
	if err == nil {
		err = checkStatus("health check", resp)
	}
	if err != nil {
		a.logger.Error("search health check failed", "error", err)
		return fmt.Errorf("search health check failed: %w", err)
	}
	return nil
}

// Close drops pooled connections.
func (a *Adapter) Close() error {
	a.logger.Info("closing search connections")
	a.pool.CloseIdleConnections()
	return nil
}

// roundRobin sends the request to the next node, moving on to the following
// node while the current one is unreachable or overloaded. The last node's
// answer is returned whatever its status.
func (a *Adapter) roundRobin(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	n := len(a.nodes)
	if n == 0 {
		return nil, fmt.Errorf("no search nodes configured")
	}

	first := int((a.cursor.Add(1) - 1) % uint64(n))
	var lastErr error
	for i := 0; i < n; i++ {
		node := a.nodes[(first+i)%n]
		endpoint, err := resolveEndpoint(node, path)
		if err != nil {
			return nil, err
		}
		req, err := newRequest(ctx, method, endpoint, body)
		if err != nil {
			return nil, err
		}
		setCredentials(req, a.config)

		resp, err := a.client.Do(req)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
		case err != nil:
			a.logger.Warn("search node unreachable", "node", node.Host, "error", err)
			lastErr = fmt.Errorf("request to %s failed: %w", endpoint, err)
		case shouldRetryOnStatus(resp.StatusCode) && i < n-1:
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("node %s returned retryable status %d", node.String(), resp.StatusCode)
		default:
			return resp, nil
		}
	}
	return nil, lastErr
}

func parseBaseURLs(cfg Config) ([]url.URL, error) {
	raw := make([]string, 0, len(cfg.URLs)+1)
	if strings.TrimSpace(cfg.URL) != "" {
		raw = append(raw, cfg.URL)
	}
	for _, u := range cfg.URLs {
		if strings.TrimSpace(u) != "" {
			raw = append(raw, u)
		}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("opensearch URL is required (or configure URLs)")
	}

	parsed := make([]url.URL, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		u, err := url.Parse(strings.TrimSpace(item))
		if err != nil {
			return nil, fmt.Errorf("failed to parse search URL %q: %w", item, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid search URL: %s", item)
		}
		key := u.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		parsed = append(parsed, *u)
	}
	return parsed, nil
}

func resolveEndpoint(base url.URL, path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	rel, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	return base.ResolveReference(rel).String(), nil
}

func shouldRetryOnStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
