package refresh

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/cloudportal/backend-go/internal/source"
)

// Loader accepts a freshly fetched snapshot
type Loader interface {
	Load(snapshot domain.Snapshot)
}

// Loop periodically re-fetches one customer/provider inventory and replaces
// the loaded snapshot. It stops after failureLimit consecutive fetch errors.
type Loop struct {
	src          source.Source
	loader       Loader
	customer     string
	provider     string
	interval     time.Duration
	failureLimit int
	fetchTimeout time.Duration
	onGiveUp     func()

	mu                  sync.Mutex
	consecutiveFailures int
	refreshes           int
	running             bool
	cancel              context.CancelFunc
}

// NewLoop creates a new refresh loop. A non-positive failureLimit means the
// loop never gives up.
func NewLoop(src source.Source, loader Loader, customer, provider string, interval time.Duration, failureLimit int) *Loop {
	return &Loop{
		src:          src,
		loader:       loader,
		customer:     customer,
		provider:     provider,
		interval:     interval,
		failureLimit: failureLimit,
		fetchTimeout: 30 * time.Second,
	}
}

// Start begins polling in a goroutine
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.mu.Unlock()

	log.Printf("Inventory refresh started for %s/%s via %s (interval=%v, limit=%d)",
		l.customer, l.provider, l.src.Name(), l.interval, l.failureLimit)

	go l.run(ctx)
}

// Stop halts the loop
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return
	}
	l.running = false
	if l.cancel != nil {
		l.cancel()
	}
	log.Printf("Inventory refresh stopped for %s/%s", l.customer, l.provider)
}

// IsRunning returns whether the loop is currently active
func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Refreshes returns how many snapshots the loop has loaded
func (l *Loop) Refreshes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshes
}

func (l *Loop) run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if l.refresh(ctx) {
				continue
			}
			if l.failureLimit > 0 && l.failures() >= l.failureLimit {
				log.Printf("Inventory refresh for %s/%s failed %d times in a row, giving up",
					l.customer, l.provider, l.failureLimit)
				if l.onGiveUp != nil {
					l.onGiveUp()
				}
				l.Stop()
				return
			}
		}
	}
}

// RefreshNow fetches once and loads the result. On failure the current
// snapshot is kept and false is returned.
func (l *Loop) RefreshNow(ctx context.Context) bool {
	return l.refresh(ctx)
}

func (l *Loop) refresh(ctx context.Context) bool {
	fetchCtx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
	defer cancel()

	snap, err := l.src.Fetch(fetchCtx, l.customer, l.provider)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		l.mu.Lock()
		l.consecutiveFailures++
		n := l.consecutiveFailures
		l.mu.Unlock()
		log.Printf("Inventory refresh failed for %s/%s (%d): %v", l.customer, l.provider, n, err)
		return false
	}

	l.loader.Load(*snap)

	l.mu.Lock()
	l.consecutiveFailures = 0
	l.refreshes++
	l.mu.Unlock()
	return true
}

func (l *Loop) failures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consecutiveFailures
}
