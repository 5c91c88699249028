// Package health aggregates readiness checks for the search backend.
package health

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Worse returns the more severe of a and b. Unknown statuses count as unhealthy.
func Worse(a, b Status) Status {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name      string         `json:"name" yaml:"name"`
	Status    Status         `json:"status" yaml:"status"`
	Message   string         `json:"message,omitempty" yaml:"message,omitempty"`
	Error     string         `json:"error,omitempty" yaml:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Duration  time.Duration  `json:"duration" yaml:"duration"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Checker is implemented by every registered check.
type Checker interface {
	Check(ctx context.Context) CheckResult
	Name() string
}

// AggregatedResult is the outcome of a Registry.Check run.
type AggregatedResult struct {
	Status    Status        `json:"status" yaml:"status"`
	Checks    []CheckResult `json:"checks" yaml:"checks"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// IsHealthy reports whether every check passed without degradation.
func (r AggregatedResult) IsHealthy() bool {
	return r.Status == StatusHealthy
}

// Registry holds checkers ordered by name.
type Registry struct {
	mu       sync.RWMutex
	checkers []Checker
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds checker, replacing any checker with the same name.
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, found := slices.BinarySearchFunc(r.checkers, checker.Name(), byName)
	if found {
		r.checkers[i] = checker
		return
	}
	r.checkers = slices.Insert(r.checkers, i, checker)
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.checkers))
	for i, c := range r.checkers {
		names[i] = c.Name()
	}
	return names
}

// Check runs the named checks, or every check when names is empty, in
// parallel. Results follow name order and the overall status is the worst
// one. A name that is not registered yields an unhealthy result.
func (r *Registry) Check(ctx context.Context, names ...string) AggregatedResult {
	start := time.Now()
	names, selected := r.selectCheckers(names)

	results := make([]CheckResult, len(selected))
	var wg sync.WaitGroup
	for i, c := range selected {
		if c == nil {
			results[i] = CheckResult{
				Name:      names[i],
				Status:    StatusUnhealthy,
				Error:     "health check not registered",
				Timestamp: start,
			}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Check(ctx)
		}()
	}
	wg.Wait()

	overall := StatusHealthy
	for _, res := range results {
		overall = Worse(overall, res.Status)
	}
	return AggregatedResult{
		Status:    overall,
		Checks:    results,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
	}
}

// selectCheckers resolves names, sorted and deduplicated, to checkers. Unknown
// names map to nil. An empty names selects every checker.
func (r *Registry) selectCheckers(names []string) ([]string, []Checker) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(names) == 0 {
		all := make([]string, len(r.checkers))
		for i, c := range r.checkers {
			all[i] = c.Name()
		}
		return all, slices.Clone(r.checkers)
	}

	names = slices.Compact(slices.Sorted(slices.Values(names)))
	out := make([]Checker, len(names))
	for i, name := range names {
		if j, found := slices.BinarySearchFunc(r.checkers, name, byName); found {
			out[i] = r.checkers[j]
		}
	}
	return names, out
}

func byName(c Checker, name string) int {
	return strings.Compare(c.Name(), name)
}
