//go:build opensearch_sdk

package opensearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	opensearchsdk "github.com/opensearch-project/opensearch-go/v4"
	awssigner "github.com/opensearch-project/opensearch-go/v4/signer/awsv2"

	"github.com/nimburion/searchcriteria/pkg/observability/logger"
)

// OpenSearchSDKAdapter runs the search operations through opensearch-go.
type OpenSearchSDKAdapter struct {
	*sdkAdapter
}

// NewOpenSearchSDKAdapter creates the adapter and pings the cluster once.
func NewOpenSearchSDKAdapter(cfg Config, log logger.Logger) (*OpenSearchSDKAdapter, error) {
	addresses, err := collectAddresses(cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	pool := newTransport(cfg)
	osCfg := opensearchsdk.Config{
		Addresses: addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: pool,
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		osCfg.Header = http.Header{"Authorization": []string{"ApiKey " + key}}
	}
	if cfg.AWSAuthEnabled {
		creds, err := credentialsProvider(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		sig, err := awssigner.NewSignerWithService(aws.Config{Region: cfg.AWSRegion, Credentials: creds}, cfg.AWSService)
		if err != nil {
			return nil, fmt.Errorf("failed to create opensearch aws signer: %w", err)
		}
		osCfg.Signer = sig
	}

	client, err := opensearchsdk.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch sdk client: %w", err)
	}

	a := &OpenSearchSDKAdapter{newSDKAdapter("opensearch-sdk", client, pool, cfg, log)}
	if err := a.connect(cfg.OperationTimeout, len(addresses)); err != nil {
		return nil, err
	}
	return a, nil
}
