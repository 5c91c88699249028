// Package config loads searchctl configuration from defaults, files and
// environment variables.
package config

import "time"

// Search backend types.
const (
	SearchTypeOpenSearch    = "opensearch"
	SearchTypeElasticsearch = "elasticsearch"
)

// Search transport drivers.
const (
	SearchDriverHTTP             = "http"
	SearchDriverOpenSearchSDK    = "opensearch-sdk"
	SearchDriverElasticsearchSDK = "elasticsearch-sdk"
)

// Config is the root configuration.
type Config struct {
	Service       ServiceConfig       `mapstructure:"service"`
	Search        SearchConfig        `mapstructure:"search"`
	Query         QueryConfig         `mapstructure:"query"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServiceConfig configures service identity metadata.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// SearchConfig configures OpenSearch/Elasticsearch connections.
type SearchConfig struct {
	Type             string        `mapstructure:"type"`   // opensearch, elasticsearch
	Driver           string        `mapstructure:"driver"` // http, opensearch-sdk, elasticsearch-sdk
	URL              string        `mapstructure:"url"`
	URLs             []string      `mapstructure:"urls"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	APIKey           string        `mapstructure:"api_key"`
	AWSAuthEnabled   bool          `mapstructure:"aws_auth_enabled"`
	AWSRegion        string        `mapstructure:"aws_region"`
	AWSService       string        `mapstructure:"aws_service"`
	AWSAccessKeyID   string        `mapstructure:"aws_access_key_id"`
	AWSSecretKey     string        `mapstructure:"aws_secret_access_key"`
	AWSSessionToken  string        `mapstructure:"aws_session_token"`
	MaxConns         int           `mapstructure:"max_conns"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	LegacyTypes      bool          `mapstructure:"legacy_types"`
	RateLimit        float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst        int           `mapstructure:"rate_burst"`

	BreakerMaxFailures  int           `mapstructure:"breaker_max_failures"` // 0 disables
	BreakerResetTimeout time.Duration `mapstructure:"breaker_reset_timeout"`
}

// QueryConfig configures query assembly and the field mapping used by the CLI.
type QueryConfig struct {
	IDField         string            `mapstructure:"id_field"`
	DefaultLimit    int               `mapstructure:"default_limit"`
	MaxLimit        int               `mapstructure:"max_limit"`
	AggregationName string            `mapstructure:"aggregation_name"`
	TypeName        string            `mapstructure:"type_name"`
	Fields          map[string]string `mapstructure:"fields"`
	StrictFields    bool              `mapstructure:"strict_fields"`
}

// ObservabilityConfig configures logging, metrics and tracing.
type ObservabilityConfig struct {
	LogLevel          string  `mapstructure:"log_level"`
	LogFormat         string  `mapstructure:"log_format"` // json, text
	MetricsEnabled    bool    `mapstructure:"metrics_enabled"`
	TracingEnabled    bool    `mapstructure:"tracing_enabled"`
	TracingSampleRate float64 `mapstructure:"tracing_sample_rate"`
	TracingEndpoint   string  `mapstructure:"tracing_endpoint"`
	TracingInsecure   bool    `mapstructure:"tracing_insecure"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "searchctl",
			Environment: "development",
		},
		Search: SearchConfig{
			Type:             SearchTypeOpenSearch,
			Driver:           SearchDriverHTTP,
			URL:              "http://localhost:9200",
			AWSService:       "es",
			MaxConns:         10,
			OperationTimeout: 5 * time.Second,

			BreakerResetTimeout: 30 * time.Second,
		},
		Query: QueryConfig{
			IDField:         "id",
			DefaultLimit:    10,
			MaxLimit:        1000,
			AggregationName: "result",
			Fields:          map[string]string{},
		},
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			LogFormat:         "json",
			TracingSampleRate: 1.0,
			TracingEndpoint:   "localhost:4317",
		},
	}
}
