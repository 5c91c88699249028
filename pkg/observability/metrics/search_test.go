package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSearchMetricsRecordsQueries(t *testing.T) {
	reg := NewRegistry()
	m, err := NewSearchMetrics(reg)
	if err != nil {
		t.Fatalf("NewSearchMetrics: %v", err)
	}

	m.ObserveQuery("places", "search.query", 15*time.Millisecond, 3, nil)
	m.ObserveQuery("places", "search.query", 5*time.Millisecond, 0, errors.New("boom"))
	m.ObserveWrite("places", "search.index", time.Millisecond, nil)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("places", "search.query", statusOK)); got != 1 {
		t.Errorf("ok queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("places", "search.query", statusError)); got != 1 {
		t.Errorf("failed queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("places", "search.index", statusOK)); got != 1 {
		t.Errorf("writes = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.hits); got != 1 {
		t.Errorf("hit histograms = %d, want 1", got)
	}
}

func TestSearchMetricsRejectsDoubleRegistration(t *testing.T) {
	reg := NewRegistry()
	if _, err := NewSearchMetrics(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewSearchMetrics(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestNilSearchMetricsIsNoop(t *testing.T) {
	var m *SearchMetrics
	m.ObserveQuery("i", "op", time.Second, 1, nil)
	m.ObserveWrite("i", "op", time.Second, nil)
}

func TestRegistryWriteTextFiltersByPrefix(t *testing.T) {
	reg := NewRegistry(WithConstLabel("service", "places-api"), WithConstLabel("env", ""))
	m, err := NewSearchMetrics(reg)
	if err != nil {
		t.Fatalf("NewSearchMetrics: %v", err)
	}
	m.ObserveQuery("places", "search.query", time.Millisecond, 1, nil)

	var all, search strings.Builder
	if err := reg.WriteText(&all); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if err := reg.WriteText(&search, "search_"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}

	for _, name := range []string{"search_requests_total", "search_request_duration_seconds", "search_hits"} {
		if !strings.Contains(search.String(), name) {
			t.Errorf("expected %s in filtered output", name)
		}
	}
	if strings.Contains(search.String(), "go_goroutines") {
		t.Error("runtime metrics should be filtered out")
	}
	if !strings.Contains(all.String(), "go_goroutines") {
		t.Error("expected runtime metrics without a filter")
	}
	if !strings.Contains(search.String(), `service="places-api"`) {
		t.Errorf("expected service label:\n%s", search.String())
	}
	if strings.Contains(search.String(), `env=`) {
		t.Error("empty const labels must be skipped")
	}
}
