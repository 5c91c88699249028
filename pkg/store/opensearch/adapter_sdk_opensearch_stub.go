//go:build !opensearch_sdk

package opensearch

import (
	"errors"

	"github.com/nimburion/searchcriteria/pkg/observability/logger"
)

var errOpenSearchSDKDisabled = errors.New("opensearch-sdk driver is not enabled; rebuild with `-tags opensearch_sdk`")

// OpenSearchSDKAdapter is available when built with the `opensearch_sdk` tag.
type OpenSearchSDKAdapter struct {
	*sdkAdapter
}

// NewOpenSearchSDKAdapter always fails in this build.
func NewOpenSearchSDKAdapter(Config, logger.Logger) (*OpenSearchSDKAdapter, error) {
	return nil, errOpenSearchSDKDisabled
}
