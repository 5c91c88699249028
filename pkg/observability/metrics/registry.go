// Package metrics provides Prometheus metrics for search operations.
package metrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// Registry collects the search metrics of one process run. Runtime and process
// collectors are always registered.
type Registry struct {
	gatherer   prometheus.Gatherer
	registerer prometheus.Registerer
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	labels prometheus.Labels
}

// WithConstLabel adds a label to every metric registered through the registry,
// e.g. service="places-api".
func WithConstLabel(name, value string) Option {
	return func(o *options) {
		if value == "" {
			return
		}
		if o.labels == nil {
			o.labels = prometheus.Labels{}
		}
		o.labels[name] = value
	}
}

// NewRegistry creates a registry with the default runtime collectors.
func NewRegistry(opts ...Option) *Registry {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var registerer prometheus.Registerer = reg
	if len(o.labels) > 0 {
		registerer = prometheus.WrapRegistererWith(o.labels, reg)
	}
	return &Registry{gatherer: reg, registerer: registerer}
}

// Register registers a custom collector with the registry's constant labels.
func (r *Registry) Register(collector prometheus.Collector) error {
	return r.registerer.Register(collector)
}

// Gatherer returns the underlying prometheus.Gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.gatherer
}

// WriteText writes the gathered families in Prometheus text format. When
// prefixes are given only families whose name starts with one of them are
// written.
func (r *Registry) WriteText(w io.Writer, prefixes ...string) error {
	families, err := r.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, family := range families {
		if !hasAnyPrefix(family.GetName(), prefixes) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func hasAnyPrefix(name string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
