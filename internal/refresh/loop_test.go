package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

type mockSource struct {
	err   error
	calls atomic.Int32
}

func (s *mockSource) Name() string { return "mock" }

func (s *mockSource) Fetch(_ context.Context, customer, provider string) (*domain.Snapshot, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Snapshot{CustomerName: customer, Provider: provider}, nil
}

type mockLoader struct {
	mu    sync.Mutex
	loads []domain.Snapshot
}

func (m *mockLoader) Load(snap domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, snap)
}

func (m *mockLoader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loads)
}

func TestLoopStartStop(t *testing.T) {
	loop := NewLoop(&mockSource{}, &mockLoader{}, "Acme", "AWS", 100*time.Millisecond, 3)

	assert.False(t, loop.IsRunning())

	loop.Start()
	assert.True(t, loop.IsRunning())

	// Starting again should be a no-op
	loop.Start()
	assert.True(t, loop.IsRunning())

	loop.Stop()
	assert.False(t, loop.IsRunning())

	// Stopping again should be a no-op
	loop.Stop()
}

func TestLoopReloadsSnapshot(t *testing.T) {
	loader := &mockLoader{}
	loop := NewLoop(&mockSource{}, loader, "Acme", "AWS", 30*time.Millisecond, 3)
	loop.Start()

	assert.Eventually(t, func() bool { return loader.count() >= 2 }, time.Second, 10*time.Millisecond)
	loop.Stop()

	assert.GreaterOrEqual(t, loop.Refreshes(), 2)
	loader.mu.Lock()
	assert.Equal(t, "Acme", loader.loads[0].CustomerName)
	assert.Equal(t, "AWS", loader.loads[0].Provider)
	loader.mu.Unlock()
}

func TestLoopGivesUpAfterLimit(t *testing.T) {
	src := &mockSource{err: errors.New("throttled")}
	loader := &mockLoader{}

	var gaveUp atomic.Bool
	loop := NewLoop(src, loader, "Acme", "AWS", 20*time.Millisecond, 2)
	loop.onGiveUp = func() { gaveUp.Store(true) }
	loop.Start()

	assert.Eventually(t, func() bool { return !loop.IsRunning() }, time.Second, 10*time.Millisecond,
		"loop should stop after reaching the failure limit")
	assert.True(t, gaveUp.Load())
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, 0, loader.count())
}

func TestLoopWithoutLimitKeepsTrying(t *testing.T) {
	src := &mockSource{err: errors.New("throttled")}
	loop := NewLoop(src, &mockLoader{}, "Acme", "AWS", 20*time.Millisecond, 0)
	loop.Start()

	assert.Eventually(t, func() bool { return src.calls.Load() >= 4 }, time.Second, 10*time.Millisecond)
	assert.True(t, loop.IsRunning())
	loop.Stop()
}
