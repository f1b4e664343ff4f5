package source

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudportal/backend-go/internal/domain"
)

// ErrMissingSelector is returned when a fetch names no customer or provider
var ErrMissingSelector = errors.New("customer and provider are required")

// Retrying wraps a Source and retries transient fetch failures with
// exponential backoff
type Retrying struct {
	inner      Source
	maxElapsed time.Duration
	newBackOff func() backoff.BackOff
}

// WithRetry wraps src; a non-positive maxElapsed returns src unchanged
func WithRetry(src Source, maxElapsed time.Duration) Source {
	if maxElapsed <= 0 {
		return src
	}
	r := &Retrying{inner: src, maxElapsed: maxElapsed}
	r.newBackOff = r.exponential
	return r
}

func (r *Retrying) exponential() backoff.BackOff {
	// BackOff values are stateful; each fetch gets its own.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = r.maxElapsed
	return bo
}

// Name returns the wrapped source's name
func (r *Retrying) Name() string { return r.inner.Name() }

// Fetch delegates to the wrapped source until it succeeds, fails permanently
// or the backoff budget runs out
func (r *Retrying) Fetch(ctx context.Context, customer, provider string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		s, err := r.inner.Fetch(ctx, customer, provider)
		if err == nil {
			snap = s
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		log.Printf("Fetch from %s failed for %s/%s (attempt %d), retrying: %v",
			r.inner.Name(), customer, provider, attempt, err)
		return err
	}, backoff.WithContext(r.newBackOff(), ctx))
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// isRetryable reports whether a fetch error may clear on its own. Missing
// data and bad requests are final.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, domain.ErrSourceUnavailable), errors.Is(err, domain.ErrUnknownSource):
		return false
	case errors.Is(err, ErrMissingSelector), errors.Is(err, fs.ErrNotExist):
		return false
	}
	return true
}
