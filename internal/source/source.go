package source

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudportal/backend-go/internal/config"
	"github.com/cloudportal/backend-go/internal/db"
	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/cloudportal/backend-go/internal/observability"
)

// Source produces inventory snapshots for a customer/provider pair. Sources
// are trusted: the core does not validate what they return.
type Source interface {
	Fetch(ctx context.Context, customer, provider string) (*domain.Snapshot, error)
	Name() string
}

// Timed wraps a Source and records fetch latency
type Timed struct {
	inner   Source
	metrics *observability.Metrics
}

// WithMetrics wraps src so every fetch is observed; nil metrics returns src
func WithMetrics(src Source, metrics *observability.Metrics) Source {
	if metrics == nil {
		return src
	}
	return &Timed{inner: src, metrics: metrics}
}

// Name returns the wrapped source's name
func (t *Timed) Name() string { return t.inner.Name() }

// Fetch delegates to the wrapped source
func (t *Timed) Fetch(ctx context.Context, customer, provider string) (*domain.Snapshot, error) {
	start := time.Now()
	snap, err := t.inner.Fetch(ctx, customer, provider)
	t.metrics.ObserveFetch(t.inner.Name(), time.Since(start).Seconds())
	if err != nil {
		t.metrics.RecordLoad(provider, "failed", 0)
	}
	return snap, err
}

// New builds the source selected by cfg.InventorySource. The returned close
// function releases any connections the source holds.
func New(ctx context.Context, cfg *config.Config) (Source, func(), error) {
	noop := func() {}

	switch cfg.InventorySource {
	case "demo", "":
		return NewDemoSource(), noop, nil

	case "file":
		return NewFileSource(cfg.InventoryFile), noop, nil

	case "aws":
		src, err := NewAWSSource(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
		return src, noop, nil

	case "k8s":
		src, err := NewKubernetesSource(cfg.KubeConfig, cfg.KubeNamespace)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
		return src, noop, nil

	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
		return NewPostgresSource(pool), pool.Close, nil
	}

	log.Printf("Unknown inventory source %q", cfg.InventorySource)
	return nil, noop, fmt.Errorf("%w: %s", domain.ErrUnknownSource, cfg.InventorySource)
}
