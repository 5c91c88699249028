package search

import (
	"context"
	"encoding/json"
)

// Client executes requests against an OpenSearch/Elasticsearch cluster.
//
// typeName is only meaningful for clusters that still use mapping types; clients
// for typeless clusters ignore it.
type Client interface {
	Search(ctx context.Context, index, typeName string, query any) (json.RawMessage, error)
	IndexDocument(ctx context.Context, index, typeName, id string, document any) error
	DeleteDocument(ctx context.Context, index, typeName, id string) error
	DeleteByQuery(ctx context.Context, index, typeName string, query any) error
	RefreshIndex(ctx context.Context, index string) error
	CreateIndex(ctx context.Context, index string, definition any) error
}
