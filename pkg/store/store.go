// Package store builds the search backend client selected by configuration.
package store

import (
	"context"

	"github.com/nimburion/searchcriteria/pkg/search"
	"github.com/nimburion/searchcriteria/pkg/store/opensearch"
)

// Adapter is the minimal lifecycle and health contract for storage adapters.
type Adapter interface {
	HealthCheck(ctx context.Context) error
	Close() error
}

// SearchClient is a search.Client that can be health-checked and closed.
type SearchClient interface {
	search.Client
	Adapter
	ClusterInfo(ctx context.Context) (opensearch.ClusterInfo, error)
}

var (
	_ SearchClient = (*opensearch.Adapter)(nil)
	_ SearchClient = (*opensearch.OpenSearchSDKAdapter)(nil)
	_ SearchClient = (*opensearch.ElasticsearchSDKAdapter)(nil)
)
