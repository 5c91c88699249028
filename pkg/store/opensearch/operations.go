package opensearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// ErrStatus classifies non-2xx responses from the cluster.
var ErrStatus = errors.New("unexpected search status")

// StatusError carries the status and body of a failed request.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// performFunc sends one request and returns the raw response. body is nil for
// requests without payload.
type performFunc func(ctx context.Context, method, path string, body []byte) (*http.Response, error)

// operations implements the document and index API on top of a transport. The
// plain HTTP adapter and the SDK adapters share it.
type operations struct {
	perform     performFunc
	limiter     *rate.Limiter
	legacyTypes bool
}

func newOperations(cfg Config, perform performFunc) *operations {
	ops := &operations{perform: perform, legacyTypes: cfg.LegacyTypes}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = max(1, int(cfg.RateLimit))
		}
		ops.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return ops
}

// Search executes query and returns the raw JSON response.
func (o *operations) Search(ctx context.Context, index, typeName string, query any) (json.RawMessage, error) {
	if err := requireIndex(index); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}
	return o.do(ctx, "search", http.MethodPost, o.indexPath(index, typeName, "_search"), payload)
}

// IndexDocument creates or replaces a document by id.
func (o *operations) IndexDocument(ctx context.Context, index, typeName, id string, document any) error {
	if err := requireIndex(index); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("document id is required")
	}
	payload, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	_, err = o.do(ctx, "index document", http.MethodPut, o.docPath(index, typeName, id), payload)
	return err
}

// DeleteDocument deletes a document by id. A missing document is not an error.
func (o *operations) DeleteDocument(ctx context.Context, index, typeName, id string) error {
	if err := requireIndex(index); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("document id is required")
	}
	_, err := o.do(ctx, "delete document", http.MethodDelete, o.docPath(index, typeName, id), nil)
	var status *StatusError
	if errors.As(err, &status) && status.Status == http.StatusNotFound {
		return nil
	}
	return err
}

// DeleteByQuery deletes every document matching query. The index is refreshed
// before the call returns, so the deletions are visible to the next search.
func (o *operations) DeleteByQuery(ctx context.Context, index, typeName string, query any) error {
	if err := requireIndex(index); err != nil {
		return err
	}
	payload, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}
	path := o.indexPath(index, typeName, "_delete_by_query") + "?conflicts=proceed&refresh=true"
	body, err := o.do(ctx, "delete by query", http.MethodPost, path, payload)
	if err != nil {
		return err
	}

	var result struct {
		Deleted  int64             `json:"deleted"`
		Failures []json.RawMessage `json:"failures"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode delete by query response: %w", err)
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("delete by query reported %d failures: %s", len(result.Failures), result.Failures[0])
	}
	return nil
}

// RefreshIndex makes recent writes on index searchable.
func (o *operations) RefreshIndex(ctx context.Context, index string) error {
	if err := requireIndex(index); err != nil {
		return err
	}
	_, err := o.do(ctx, "refresh", http.MethodPost, "/"+url.PathEscape(index)+"/_refresh", nil)
	return err
}

// CreateIndex creates index with the given settings and mappings.
func (o *operations) CreateIndex(ctx context.Context, index string, definition any) error {
	if err := requireIndex(index); err != nil {
		return err
	}
	var payload []byte
	if definition != nil {
		var err error
		if payload, err = json.Marshal(definition); err != nil {
			return fmt.Errorf("failed to marshal index definition: %w", err)
		}
	}
	_, err := o.do(ctx, "create index", http.MethodPut, "/"+url.PathEscape(index), payload)
	return err
}

// ClusterInfo describes the cluster answering on the root endpoint.
type ClusterInfo struct {
	Name         string `json:"cluster_name"`
	Distribution string `json:"distribution"`
	Version      string `json:"version"`
}

// ClusterInfo reads the cluster name and version. Elasticsearch does not report
// a distribution, so it is filled in as "elasticsearch".
func (o *operations) ClusterInfo(ctx context.Context) (ClusterInfo, error) {
	raw, err := o.do(ctx, "cluster info", http.MethodGet, "/", nil)
	if err != nil {
		return ClusterInfo{}, err
	}
	var root struct {
		ClusterName string `json:"cluster_name"`
		Version     struct {
			Number       string `json:"number"`
			Distribution string `json:"distribution"`
		} `json:"version"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return ClusterInfo{}, fmt.Errorf("failed to decode cluster info: %w", err)
	}
	info := ClusterInfo{
		Name:         root.ClusterName,
		Distribution: root.Version.Distribution,
		Version:      root.Version.Number,
	}
	if info.Distribution == "" {
		info.Distribution = "elasticsearch"
	}
	return info, nil
}

func (o *operations) do(ctx context.Context, op, method, path string, payload []byte) (json.RawMessage, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit: %w", op, err)
		}
	}
	resp, err := o.perform(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return json.RawMessage(body), nil
}

// indexPath addresses an index-level endpoint, scoped to typeName on clusters
// that still use mapping types.
func (o *operations) indexPath(index, typeName, endpoint string) string {
	if o.legacyTypes && typeName != "" {
		return fmt.Sprintf("/%s/%s/%s", url.PathEscape(index), url.PathEscape(typeName), endpoint)
	}
	return fmt.Sprintf("/%s/%s", url.PathEscape(index), endpoint)
}

func (o *operations) docPath(index, typeName, id string) string {
	segment := "_doc"
	if o.legacyTypes && typeName != "" {
		segment = typeName
	}
	return fmt.Sprintf("/%s/%s/%s", url.PathEscape(index), url.PathEscape(segment), url.PathEscape(id))
}

func requireIndex(index string) error {
	if strings.TrimSpace(index) == "" {
		return fmt.Errorf("index is required")
	}
	return nil
}

// checkStatus drains resp and turns a non-2xx status into a *StatusError.
func checkStatus(op string, resp *http.Response) error {
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
