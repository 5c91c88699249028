//go:build !elasticsearch_sdk

package opensearch

import (
	"errors"

	"github.com/nimburion/searchcriteria/pkg/observability/logger"
)

var errElasticsearchSDKDisabled = errors.New("elasticsearch-sdk driver is not enabled; rebuild with `-tags elasticsearch_sdk`")

// ElasticsearchSDKAdapter is available when built with the `elasticsearch_sdk` tag.
type ElasticsearchSDKAdapter struct {
	*sdkAdapter
}

// NewElasticsearchSDKAdapter always fails in this build.
func NewElasticsearchSDKAdapter(Config, logger.Logger) (*ElasticsearchSDKAdapter, error) {
	return nil, errElasticsearchSDKDisabled
}
