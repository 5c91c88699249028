package search

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Hit is one raw search hit.
type Hit struct {
	ID     string          `json:"_id"`
	Index  string          `json:"_index"`
	Type   string          `json:"_type,omitempty"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
	Sort   []any           `json:"sort,omitempty"`
}

// Response is the decoded part of a search response the service relies on.
type Response struct {
	Took         int             `json:"took"`
	TimedOut     bool            `json:"timed_out"`
	Total        int64           `json:"total"`
	Hits         []Hit           `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations,omitempty"`
}

type rawResponse struct {
	Took         int             `json:"took"`
	TimedOut     bool            `json:"timed_out"`
	Aggregations json.RawMessage `json:"aggregations"`
	Hits         struct {
		Total json.RawMessage `json:"total"`
		Hits  []Hit           `json:"hits"`
	} `json:"hits"`
}

// ParseResponse decodes a search response body. hits.total is accepted both as a
// number and as {"value": n, "relation": ...}.
func ParseResponse(body []byte) (*Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw rawResponse
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	total, err := parseTotal(raw.Hits.Total)
	if err != nil {
		return nil, err
	}
	hits := raw.Hits.Hits
	if hits == nil {
		hits = []Hit{}
	}
	return &Response{
		Took:         raw.Took,
		TimedOut:     raw.TimedOut,
		Total:        total,
		Hits:         hits,
		Aggregations: raw.Aggregations,
	}, nil
}

func parseTotal(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '{' {
		var obj struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, fmt.Errorf("failed to decode hits.total: %w", err)
		}
		return obj.Value, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("failed to decode hits.total: %w", err)
	}
	return n, nil
}

// Aggregation returns the node at path inside the aggregations object, or
// ErrNotFound if any segment is missing.
func (r *Response) Aggregation(path ...string) (json.RawMessage, error) {
	node := r.Aggregations
	if len(node) == 0 {
		return nil, fmt.Errorf("%w: response has no aggregations", ErrNotFound)
	}
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(node, &obj); err != nil {
			return nil, fmt.Errorf("failed to decode aggregation %q: %w", key, err)
		}
		next, ok := obj[key]
		if !ok {
			return nil, fmt.Errorf("%w: aggregation %q", ErrNotFound, key)
		}
		node = next
	}
	return node, nil
}
