//go:build elasticsearch_sdk

package opensearch

import (
	"context"
	"fmt"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/nimburion/searchcriteria/pkg/observability/logger"
)

// ElasticsearchSDKAdapter runs the search operations through go-elasticsearch.
type ElasticsearchSDKAdapter struct {
	*sdkAdapter
}

// NewElasticsearchSDKAdapter creates the adapter and pings the cluster once.
// SigV4 signing wraps the client's transport since go-elasticsearch has no
// signer hook.
func NewElasticsearchSDKAdapter(cfg Config, log logger.Logger) (*ElasticsearchSDKAdapter, error) {
	addresses, err := collectAddresses(cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	pool := newTransport(cfg)
	esCfg := elasticsearch.Config{
		Addresses: addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
		Transport: pool,
	}
	if cfg.AWSAuthEnabled {
		signed, err := newSigV4Transport(context.Background(), cfg, pool)
		if err != nil {
			return nil, err
		}
		esCfg.Transport = signed
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch sdk client: %w", err)
	}

	a := &ElasticsearchSDKAdapter{newSDKAdapter("elasticsearch-sdk", client, pool, cfg, log)}
	if err := a.connect(cfg.OperationTimeout, len(addresses)); err != nil {
		return nil, err
	}
	return a, nil
}
