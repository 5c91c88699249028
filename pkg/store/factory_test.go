package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nimburion/searchcriteria/pkg/config"
	"github.com/nimburion/searchcriteria/pkg/observability/logger"
	"github.com/nimburion/searchcriteria/pkg/store/opensearch"
)

type mockLogger struct{}

func (m *mockLogger) Debug(string, ...any)                      {}
func (m *mockLogger) Info(string, ...any)                       {}
func (m *mockLogger) Warn(string, ...any)                       {}
func (m *mockLogger) Error(string, ...any)                      {}
func (m *mockLogger) With(...any) logger.Logger                 { return m }
func (m *mockLogger) WithContext(context.Context) logger.Logger { return m }

func newClusterServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			_, _ = w.Write([]byte(`{"version":{"number":"2.11.1"}}`))
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = w.Write([]byte(`{"hits":{"total":{"value":0},"hits":[]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewSearchClient_HTTPDriver(t *testing.T) {
	srv := newClusterServer(t)

	for _, searchType := range []string{config.SearchTypeOpenSearch, config.SearchTypeElasticsearch} {
		t.Run(searchType, func(t *testing.T) {
			client, err := NewSearchClient(config.SearchConfig{
				Type:             searchType,
				URL:              srv.URL,
				OperationTimeout: time.Second,
				LegacyTypes:      true,
				RateLimit:        100,
			}, &mockLogger{})
			if err != nil {
				t.Fatalf("NewSearchClient: %v", err)
			}
			defer client.Close()

			if _, ok := client.(*opensearch.Adapter); !ok {
				t.Fatalf("expected *opensearch.Adapter, got %T", client)
			}
			if err := client.HealthCheck(context.Background()); err != nil {
				t.Fatalf("healthcheck: %v", err)
			}
			raw, err := client.Search(context.Background(), "places", "place", map[string]any{"size": 0})
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if !strings.Contains(string(raw), `"hits"`) {
				t.Fatalf("unexpected search response %s", raw)
			}
		})
	}
}

func TestNewSearchClient_WrapsWithCircuitBreaker(t *testing.T) {
	srv := newClusterServer(t)

	client, err := NewSearchClient(config.SearchConfig{
		Type:                config.SearchTypeOpenSearch,
		URL:                 srv.URL,
		OperationTimeout:    time.Second,
		BreakerMaxFailures:  3,
		BreakerResetTimeout: time.Minute,
	}, &mockLogger{})
	if err != nil {
		t.Fatalf("NewSearchClient: %v", err)
	}
	defer client.Close()

	if _, ok := client.(*breakerClient); !ok {
		t.Fatalf("expected circuit breaker wrapper, got %T", client)
	}
	if _, err := client.Search(context.Background(), "places", "", map[string]any{"size": 0}); err != nil {
		t.Fatalf("search through breaker: %v", err)
	}
}

func TestNewSearchClient_ConnectionFailureReturnsNilInterface(t *testing.T) {
	srv := newClusterServer(t)
	url := srv.URL
	srv.Close()

	client, err := NewSearchClient(config.SearchConfig{
		Type:             config.SearchTypeOpenSearch,
		URL:              url,
		OperationTimeout: 200 * time.Millisecond,
	}, &mockLogger{})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if client != nil {
		t.Fatalf("expected nil client, got %T", client)
	}
}

func TestNewSearchClient_DefaultDriverIsHTTP(t *testing.T) {
	_, err := NewSearchClient(config.SearchConfig{Type: config.SearchTypeOpenSearch}, &mockLogger{})
	if err == nil {
		t.Fatal("expected error for missing url")
	}
	if strings.Contains(err.Error(), "unsupported search.driver") {
		t.Fatalf("empty driver must fall back to http, got %v", err)
	}
}

func TestNewSearchClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SearchConfig
		message string
	}{
		{
			name:    "empty type",
			cfg:     config.SearchConfig{URL: "http://localhost:9200"},
			message: "unsupported search.type",
		},
		{
			name:    "unknown type",
			cfg:     config.SearchConfig{Type: "solr", URL: "http://localhost:9200"},
			message: "unsupported search.type",
		},
		{
			name:    "unknown driver",
			cfg:     config.SearchConfig{Type: config.SearchTypeOpenSearch, Driver: "grpc"},
			message: "unsupported search.driver",
		},
		{
			name:    "opensearch sdk with elasticsearch type",
			cfg:     config.SearchConfig{Type: config.SearchTypeElasticsearch, Driver: config.SearchDriverOpenSearchSDK},
			message: "requires search.type opensearch",
		},
		{
			name:    "elasticsearch sdk with opensearch type",
			cfg:     config.SearchConfig{Type: config.SearchTypeOpenSearch, Driver: config.SearchDriverElasticsearchSDK},
			message: "requires search.type elasticsearch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewSearchClient(tt.cfg, &mockLogger{})
			if err == nil {
				t.Fatal("expected error")
			}
			if client != nil {
				t.Fatalf("expected nil client, got %T", client)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("expected %q in %v", tt.message, err)
			}
		})
	}
}

func TestAdapterConfigCopiesEveryField(t *testing.T) {
	cfg := config.SearchConfig{
		URL:              "http://a:9200",
		URLs:             []string{"http://b:9200"},
		Username:         "user",
		Password:         "pass",
		APIKey:           "key",
		AWSAuthEnabled:   true,
		AWSRegion:        "eu-west-1",
		AWSService:       "es",
		AWSAccessKeyID:   "AKID",
		AWSSecretKey:     "secret",
		AWSSessionToken:  "token",
		MaxConns:         4,
		OperationTimeout: 3 * time.Second,
		LegacyTypes:      true,
		RateLimit:        12.5,
		RateBurst:        3,
	}
	got := adapterConfig(cfg)
	if got.URL != cfg.URL || len(got.URLs) != 1 || got.APIKey != cfg.APIKey {
		t.Fatalf("endpoint fields not copied: %+v", got)
	}
	if !got.AWSAuthEnabled || got.AWSRegion != cfg.AWSRegion || got.AWSSessionToken != cfg.AWSSessionToken {
		t.Fatalf("aws fields not copied: %+v", got)
	}
	if !got.LegacyTypes || got.RateLimit != 12.5 || got.RateBurst != 3 || got.MaxConns != 4 {
		t.Fatalf("transport fields not copied: %+v", got)
	}
}
