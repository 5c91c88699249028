package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader defines the interface for loading configuration
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper for configuration management
type ViperLoader struct {
	configFile         string
	envPrefix          string
	serviceNameDefault string
}

// NewViperLoader creates a new ViperLoader
// configFile: path to configuration file (optional, can be empty)
// envPrefix: prefix for environment variables (e.g., "SEARCHCTL")
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// WithServiceNameDefault sets the default service.name used when no config/env override is provided.
func (l *ViperLoader) WithServiceNameDefault(serviceName string) *ViperLoader {
	if l == nil {
		return l
	}
	l.serviceNameDefault = strings.TrimSpace(serviceName)
	return l
}

// Load loads configuration with precedence: ENV > file > defaults
func (l *ViperLoader) Load() (*Config, error) {
	v, err := l.newViper()
	if err != nil {
		return nil, err
	}
	l.bindEnvVars(v)
	return l.unmarshal(v)
}

func (l *ViperLoader) newViper() (*viper.Viper, error) {
	v := viper.New()
	l.setDefaults(v, DefaultConfig())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}
	v.SetEnvPrefix(l.envPrefix)
	return v, nil
}

func (l *ViperLoader) unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// bindEnvVars explicitly binds environment variables for nested structs
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("service.environment", l.prefixedEnv("SERVICE_ENVIRONMENT"), l.prefixedEnv("ENVIRONMENT"))

	// Search
	v.BindEnv("search.type", l.prefixedEnv("SEARCH_TYPE"))
	v.BindEnv("search.driver", l.prefixedEnv("SEARCH_DRIVER"))
	v.BindEnv("search.url", l.prefixedEnv("SEARCH_URL"))
	v.BindEnv("search.urls", l.prefixedEnv("SEARCH_URLS"))
	v.BindEnv("search.username", l.prefixedEnv("SEARCH_USERNAME"))
	v.BindEnv("search.password", l.prefixedEnv("SEARCH_PASSWORD"))
	v.BindEnv("search.api_key", l.prefixedEnv("SEARCH_API_KEY"))
	v.BindEnv("search.aws_auth_enabled", l.prefixedEnv("SEARCH_AWS_AUTH_ENABLED"))
	v.BindEnv("search.aws_region", l.prefixedEnv("SEARCH_AWS_REGION"), "AWS_REGION")
	v.BindEnv("search.aws_service", l.prefixedEnv("SEARCH_AWS_SERVICE"))
	v.BindEnv("search.aws_access_key_id", l.prefixedEnv("SEARCH_AWS_ACCESS_KEY_ID"))
	v.BindEnv("search.aws_secret_access_key", l.prefixedEnv("SEARCH_AWS_SECRET_ACCESS_KEY"))
	v.BindEnv("search.aws_session_token", l.prefixedEnv("SEARCH_AWS_SESSION_TOKEN"))
	v.BindEnv("search.max_conns", l.prefixedEnv("SEARCH_MAX_CONNS"))
	v.BindEnv("search.operation_timeout", l.prefixedEnv("SEARCH_OPERATION_TIMEOUT"))
	v.BindEnv("search.legacy_types", l.prefixedEnv("SEARCH_LEGACY_TYPES"))
	v.BindEnv("search.rate_limit", l.prefixedEnv("SEARCH_RATE_LIMIT"))
	v.BindEnv("search.rate_burst", l.prefixedEnv("SEARCH_RATE_BURST"))
	v.BindEnv("search.breaker_max_failures", l.prefixedEnv("SEARCH_BREAKER_MAX_FAILURES"))
	v.BindEnv("search.breaker_reset_timeout", l.prefixedEnv("SEARCH_BREAKER_RESET_TIMEOUT"))

	// Query
	v.BindEnv("query.id_field", l.prefixedEnv("QUERY_ID_FIELD"))
	v.BindEnv("query.default_limit", l.prefixedEnv("QUERY_DEFAULT_LIMIT"))
	v.BindEnv("query.max_limit", l.prefixedEnv("QUERY_MAX_LIMIT"))
	v.BindEnv("query.aggregation_name", l.prefixedEnv("QUERY_AGGREGATION_NAME"))
	v.BindEnv("query.type_name", l.prefixedEnv("QUERY_TYPE_NAME"))
	v.BindEnv("query.strict_fields", l.prefixedEnv("QUERY_STRICT_FIELDS"))

	// Observability
	v.BindEnv("observability.log_level", l.prefixedEnv("OBSERVABILITY_LOG_LEVEL"), l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("observability.log_format", l.prefixedEnv("OBSERVABILITY_LOG_FORMAT"), l.prefixedEnv("LOG_FORMAT"))
	v.BindEnv("observability.metrics_enabled", l.prefixedEnv("OBSERVABILITY_METRICS_ENABLED"))
	v.BindEnv("observability.tracing_enabled", l.prefixedEnv("OBSERVABILITY_TRACING_ENABLED"))
	v.BindEnv("observability.tracing_sample_rate", l.prefixedEnv("OBSERVABILITY_TRACING_SAMPLE_RATE"))
	v.BindEnv("observability.tracing_endpoint", l.prefixedEnv("OBSERVABILITY_TRACING_ENDPOINT"))
	v.BindEnv("observability.tracing_insecure", l.prefixedEnv("OBSERVABILITY_TRACING_INSECURE"))
}

func (l *ViperLoader) prefixedEnv(suffix string) string {
	prefix := strings.TrimSpace(l.envPrefix)
	if prefix == "" {
		prefix = "APP"
	}
	return fmt.Sprintf("%s_%s", strings.ToUpper(prefix), suffix)
}

func (l *ViperLoader) defaultServiceName(fallback string) string {
	if l != nil {
		if configured := strings.TrimSpace(l.serviceNameDefault); configured != "" {
			return configured
		}
	}
	return strings.TrimSpace(fallback)
}

// setDefaults sets default values in Viper from the default config
func (l *ViperLoader) setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("service.name", l.defaultServiceName(cfg.Service.Name))
	v.SetDefault("service.environment", cfg.Service.Environment)

	// Search defaults
	v.SetDefault("search.type", cfg.Search.Type)
	v.SetDefault("search.driver", cfg.Search.Driver)
	v.SetDefault("search.url", cfg.Search.URL)
	v.SetDefault("search.aws_service", cfg.Search.AWSService)
	v.SetDefault("search.max_conns", cfg.Search.MaxConns)
	v.SetDefault("search.operation_timeout", cfg.Search.OperationTimeout)
	v.SetDefault("search.legacy_types", cfg.Search.LegacyTypes)
	v.SetDefault("search.rate_limit", cfg.Search.RateLimit)
	v.SetDefault("search.rate_burst", cfg.Search.RateBurst)
	v.SetDefault("search.breaker_max_failures", cfg.Search.BreakerMaxFailures)
	v.SetDefault("search.breaker_reset_timeout", cfg.Search.BreakerResetTimeout)

	// Query defaults
	v.SetDefault("query.id_field", cfg.Query.IDField)
	v.SetDefault("query.default_limit", cfg.Query.DefaultLimit)
	v.SetDefault("query.max_limit", cfg.Query.MaxLimit)
	v.SetDefault("query.aggregation_name", cfg.Query.AggregationName)
	v.SetDefault("query.type_name", cfg.Query.TypeName)
	v.SetDefault("query.strict_fields", cfg.Query.StrictFields)

	// Observability defaults
	v.SetDefault("observability.log_level", cfg.Observability.LogLevel)
	v.SetDefault("observability.log_format", cfg.Observability.LogFormat)
	v.SetDefault("observability.metrics_enabled", cfg.Observability.MetricsEnabled)
	v.SetDefault("observability.tracing_enabled", cfg.Observability.TracingEnabled)
	v.SetDefault("observability.tracing_sample_rate", cfg.Observability.TracingSampleRate)
	v.SetDefault("observability.tracing_endpoint", cfg.Observability.TracingEndpoint)
	v.SetDefault("observability.tracing_insecure", cfg.Observability.TracingInsecure)
}

// Validate validates the configuration and returns every problem found.
func (l *ViperLoader) Validate(cfg *Config) error {
	var errs []error

	cfg.Search.URLs = normalizeStringSlice(cfg.Search.URLs)

	searchType := strings.ToLower(strings.TrimSpace(cfg.Search.Type))
	validTypes := []string{SearchTypeOpenSearch, SearchTypeElasticsearch}
	if !contains(validTypes, searchType) {
		errs = append(errs, fmt.Errorf("invalid search.type: %s (must be one of: %v)", cfg.Search.Type, validTypes))
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Search.Driver))
	if driver == "" {
		driver = SearchDriverHTTP
	}
	validDrivers := []string{SearchDriverHTTP, SearchDriverOpenSearchSDK, SearchDriverElasticsearchSDK}
	if !contains(validDrivers, driver) {
		errs = append(errs, fmt.Errorf("invalid search.driver: %s (must be one of: %v)", cfg.Search.Driver, validDrivers))
	}
	if driver == SearchDriverOpenSearchSDK && searchType != SearchTypeOpenSearch {
		errs = append(errs, errors.New("search.driver=opensearch-sdk requires search.type=opensearch"))
	}
	if driver == SearchDriverElasticsearchSDK && searchType != SearchTypeElasticsearch {
		errs = append(errs, errors.New("search.driver=elasticsearch-sdk requires search.type=elasticsearch"))
	}
	if strings.TrimSpace(cfg.Search.URL) == "" && len(cfg.Search.URLs) == 0 {
		errs = append(errs, errors.New("search.url or search.urls is required"))
	}
	if cfg.Search.AWSAuthEnabled {
		if strings.TrimSpace(cfg.Search.AWSRegion) == "" {
			errs = append(errs, errors.New("search.aws_region is required when search.aws_auth_enabled is true"))
		}
		if strings.TrimSpace(cfg.Search.AWSService) == "" {
			errs = append(errs, errors.New("search.aws_service is required when search.aws_auth_enabled is true"))
		}
	}
	if cfg.Search.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("search.max_conns must be >= 0, got %d", cfg.Search.MaxConns))
	}
	if cfg.Search.OperationTimeout < 0 {
		errs = append(errs, fmt.Errorf("search.operation_timeout must be >= 0, got %s", cfg.Search.OperationTimeout))
	}
	if cfg.Search.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("search.rate_limit must be >= 0, got %v", cfg.Search.RateLimit))
	}
	if cfg.Search.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("search.rate_burst must be >= 0, got %d", cfg.Search.RateBurst))
	}
	if cfg.Search.BreakerMaxFailures < 0 {
		errs = append(errs, fmt.Errorf("search.breaker_max_failures must be >= 0, got %d", cfg.Search.BreakerMaxFailures))
	}
	if cfg.Search.BreakerMaxFailures > 0 && cfg.Search.BreakerResetTimeout <= 0 {
		errs = append(errs, errors.New("search.breaker_reset_timeout must be > 0 when the circuit breaker is enabled"))
	}

	if strings.TrimSpace(cfg.Query.IDField) == "" {
		errs = append(errs, errors.New("query.id_field is required"))
	}
	if strings.TrimSpace(cfg.Query.AggregationName) == "" {
		errs = append(errs, errors.New("query.aggregation_name is required"))
	}
	if cfg.Query.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("query.default_limit must be > 0, got %d", cfg.Query.DefaultLimit))
	}
	if cfg.Query.MaxLimit < 0 {
		errs = append(errs, fmt.Errorf("query.max_limit must be >= 0, got %d", cfg.Query.MaxLimit))
	}
	if cfg.Query.MaxLimit > 0 && cfg.Query.DefaultLimit > cfg.Query.MaxLimit {
		errs = append(errs, fmt.Errorf("query.default_limit (%d) exceeds query.max_limit (%d)", cfg.Query.DefaultLimit, cfg.Query.MaxLimit))
	}
	for field, column := range cfg.Query.Fields {
		if strings.TrimSpace(column) == "" {
			errs = append(errs, fmt.Errorf("query.fields.%s maps to an empty column", field))
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(cfg.Observability.LogLevel)) {
		errs = append(errs, fmt.Errorf("invalid observability.log_level: %s (must be one of: %v)", cfg.Observability.LogLevel, validLevels))
	}
	validFormats := []string{"json", "text"}
	if !contains(validFormats, strings.ToLower(cfg.Observability.LogFormat)) {
		errs = append(errs, fmt.Errorf("invalid observability.log_format: %s (must be one of: %v)", cfg.Observability.LogFormat, validFormats))
	}
	if cfg.Observability.TracingSampleRate < 0 || cfg.Observability.TracingSampleRate > 1 {
		errs = append(errs, fmt.Errorf("observability.tracing_sample_rate must be between 0 and 1, got %v", cfg.Observability.TracingSampleRate))
	}
	if cfg.Observability.TracingEnabled && strings.TrimSpace(cfg.Observability.TracingEndpoint) == "" {
		errs = append(errs, errors.New("observability.tracing_endpoint is required when tracing is enabled"))
	}

	return errors.Join(errs...)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func normalizeStringSlice(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
