package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// SearchMetrics records search request counts, latencies and result sizes.
// A nil *SearchMetrics is valid and records nothing.
type SearchMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	hits     *prometheus.HistogramVec
}

// NewSearchMetrics creates the search collectors and registers them with r.
func NewSearchMetrics(r *Registry) (*SearchMetrics, error) {
	m := &SearchMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_requests_total",
				Help: "Total number of search backend requests",
			},
			[]string{"index", "operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_request_duration_seconds",
				Help:    "Search backend request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"index", "operation"},
		),
		hits: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_hits",
				Help:    "Number of hits returned per search query",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
			},
			[]string{"index"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.hits} {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveQuery records one search request.
func (m *SearchMetrics) ObserveQuery(index, operation string, duration time.Duration, hits int, err error) {
	if m == nil {
		return
	}
	m.observe(index, operation, duration, err)
	if err == nil {
		m.hits.WithLabelValues(index).Observe(float64(hits))
	}
}

// ObserveWrite records one index, delete, refresh or create request.
func (m *SearchMetrics) ObserveWrite(index, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.observe(index, operation, duration, err)
}

func (m *SearchMetrics) observe(index, operation string, duration time.Duration, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	m.requests.WithLabelValues(index, operation, status).Inc()
	m.duration.WithLabelValues(index, operation).Observe(duration.Seconds())
}
