package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nimburion/searchcriteria/pkg/config"
	"github.com/nimburion/searchcriteria/pkg/observability/logger"
	"github.com/nimburion/searchcriteria/pkg/observability/metrics"
	"github.com/nimburion/searchcriteria/pkg/observability/tracing"
	"github.com/nimburion/searchcriteria/pkg/search"
	"github.com/nimburion/searchcriteria/pkg/store"
	"github.com/nimburion/searchcriteria/pkg/version"
)

// backend holds everything a command talking to the cluster needs. Close
// releases it in reverse order of creation.
type backend struct {
	cfg     *config.Config
	log     *logger.ZapLogger
	client  store.SearchClient
	tracer  *tracing.TracerProvider
	metrics *metrics.Registry
	search  *metrics.SearchMetrics
	errOut  io.Writer
}

func (e *environment) openBackend(ctx context.Context, errOut io.Writer) (*backend, error) {
	cfg, secrets, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg, errOut)
	if err != nil {
		return nil, err
	}
	logConfigIfDebug(log, cfg, secrets)
	log.Debug("searchctl build", "build", version.Current(cfg.Service.Name).String())

	b := &backend{cfg: cfg, log: log, errOut: errOut}

	b.tracer, err = tracing.NewTracerProvider(ctx, tracing.TracerConfig{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: version.Current(cfg.Service.Name).Version,
		Environment:    cfg.Service.Environment,
		SearchType:     cfg.Search.Type,
		Endpoint:       cfg.Observability.TracingEndpoint,
		Insecure:       cfg.Observability.TracingInsecure,
		SampleRate:     cfg.Observability.TracingSampleRate,
		Enabled:        cfg.Observability.TracingEnabled,
	})
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("create tracer provider: %w", err)
	}

	if cfg.Observability.MetricsEnabled {
		b.metrics = metrics.NewRegistry(metrics.WithConstLabel("service", cfg.Service.Name))
		if b.search, err = metrics.NewSearchMetrics(b.metrics); err != nil {
			_ = b.Close(ctx)
			return nil, fmt.Errorf("register search metrics: %w", err)
		}
	}

	b.client, err = e.opts.ClientFactory(cfg.Search, log)
	if err != nil {
		_ = b.Close(ctx)
		return nil, fmt.Errorf("connect to search backend: %w", err)
	}
	return b, nil
}

// documentService builds a facade over index that returns raw documents. The
// mapping type defaults to the index name so wrapped aggregations always have a key.
func (b *backend) documentService(index string) (*search.Service[map[string]any], error) {
	typeName := b.cfg.Query.TypeName
	if typeName == "" {
		typeName = index
	}
	mapper, err := search.NewJSONMapper(search.JSONMapperConfig[map[string]any]{
		Index:   index,
		Type:    typeName,
		Columns: b.cfg.Query.Fields,
		Strict:  b.cfg.Query.StrictFields,
		ID:      search.DocumentID,
		// viper lowercases map keys
		CaseInsensitive: true,
	})
	if err != nil {
		return nil, err
	}
	return search.NewService[map[string]any](b.client, mapper, b.log,
		search.WithDefaultLimit(b.cfg.Query.DefaultLimit),
		search.WithMaxLimit(b.cfg.Query.MaxLimit),
		search.WithIDField(b.cfg.Query.IDField),
		search.WithAggregationName(b.cfg.Query.AggregationName),
		search.WithMetrics(b.search),
	)
}

// Close closes the client, flushes spans, dumps search metrics and syncs the logger.
func (b *backend) Close(ctx context.Context) error {
	var errs []error
	if b.client != nil {
		if err := b.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close search client: %w", err))
		}
	}
	if b.tracer != nil {
		if err := b.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	if b.metrics != nil {
		if err := b.metrics.WriteText(b.errOut, "search_"); err != nil {
			errs = append(errs, err)
		}
	}
	// stderr sync fails on some terminals; nothing to report
	_ = b.log.Sync()
	return errors.Join(errs...)
}
