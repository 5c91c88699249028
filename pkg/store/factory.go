package store

import (
	"fmt"
	"strings"

	"github.com/nimburion/searchcriteria/pkg/config"
	"github.com/nimburion/searchcriteria/pkg/observability/logger"
	"github.com/nimburion/searchcriteria/pkg/store/opensearch"
)

// NewSearchClient selects and initializes a search client from config.
// The SDK drivers need the matching build tag; without it they fail with an
// explanatory error. A positive search.breaker_max_failures wraps the client in
// a circuit breaker.
func NewSearchClient(cfg config.SearchConfig, log logger.Logger) (SearchClient, error) {
	client, err := newDriverClient(cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.BreakerMaxFailures > 0 {
		return WithCircuitBreaker(client, cfg.BreakerMaxFailures, cfg.BreakerResetTimeout, log), nil
	}
	return client, nil
}

func newDriverClient(cfg config.SearchConfig, log logger.Logger) (SearchClient, error) {
	searchType := strings.ToLower(strings.TrimSpace(cfg.Type))
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = config.SearchDriverHTTP
	}

	switch driver {
	case config.SearchDriverHTTP:
		switch searchType {
		case config.SearchTypeOpenSearch, config.SearchTypeElasticsearch:
			adapter, err := opensearch.NewAdapter(adapterConfig(cfg), log)
			if err != nil {
				return nil, err
			}
			return adapter, nil
		default:
			return nil, fmt.Errorf("unsupported search.type %q (supported: opensearch, elasticsearch)", cfg.Type)
		}
	case config.SearchDriverOpenSearchSDK:
		if searchType != config.SearchTypeOpenSearch {
			return nil, fmt.Errorf("search.driver %q requires search.type opensearch", cfg.Driver)
		}
		adapter, err := opensearch.NewOpenSearchSDKAdapter(adapterConfig(cfg), log)
		if err != nil {
			return nil, err
		}
		return adapter, nil
	case config.SearchDriverElasticsearchSDK:
		if searchType != config.SearchTypeElasticsearch {
			return nil, fmt.Errorf("search.driver %q requires search.type elasticsearch", cfg.Driver)
		}
		adapter, err := opensearch.NewElasticsearchSDKAdapter(adapterConfig(cfg), log)
		if err != nil {
			return nil, err
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("unsupported search.driver %q (supported: http, opensearch-sdk, elasticsearch-sdk)", cfg.Driver)
	}
}

func adapterConfig(cfg config.SearchConfig) opensearch.Config {
	return opensearch.Config{
		URL:              cfg.URL,
		URLs:             cfg.URLs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		APIKey:           cfg.APIKey,
		AWSAuthEnabled:   cfg.AWSAuthEnabled,
		AWSRegion:        cfg.AWSRegion,
		AWSService:       cfg.AWSService,
		AWSAccessKeyID:   cfg.AWSAccessKeyID,
		AWSSecretKey:     cfg.AWSSecretKey,
		AWSSessionToken:  cfg.AWSSessionToken,
		MaxConns:         cfg.MaxConns,
		OperationTimeout: cfg.OperationTimeout,
		LegacyTypes:      cfg.LegacyTypes,
		RateLimit:        cfg.RateLimit,
		RateBurst:        cfg.RateBurst,
	}
}
