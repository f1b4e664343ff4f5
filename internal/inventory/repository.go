package inventory

import (
	"log"
	"sync"
	"time"

	"github.com/cloudportal/backend-go/internal/domain"
)

// MergeFunc computes a resource's new specs from its current ones.
// It must return a new Specs value rather than modify its argument.
type MergeFunc func(current domain.Specs) domain.Specs

// Repository holds the currently loaded inventory snapshot, if any
type Repository struct {
	mu       sync.RWMutex
	snapshot *domain.Snapshot
}

// NewRepository creates an empty Repository
func NewRepository() *Repository {
	return &Repository{}
}

// Load replaces the current snapshot wholesale. The input is trusted and
// not validated.
func (r *Repository) Load(snapshot domain.Snapshot) {
	snap := snapshot.Clone()
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now().UTC()
	}

	r.mu.Lock()
	r.snapshot = &snap
	r.mu.Unlock()

	log.Printf("Inventory loaded: customer=%q provider=%q resources=%d services=%d",
		snap.CustomerName, snap.Provider, len(snap.Resources), len(snap.Services))
}

// Current returns a copy of the loaded snapshot; false when nothing is loaded
func (r *Repository) Current() (domain.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.snapshot == nil {
		return domain.Snapshot{}, false
	}
	return r.snapshot.Clone(), true
}

// Resources returns a copy of the current resource list; nil when absent
func (r *Repository) Resources() ([]domain.Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.snapshot == nil {
		return nil, false
	}
	out := make([]domain.Resource, len(r.snapshot.Resources))
	for i, res := range r.snapshot.Resources {
		out[i] = res.Clone()
	}
	return out, true
}

// UpdateResource replaces the specs of resource id with merge's output.
// Collection order and every other resource are left as they were.
func (r *Repository) UpdateResource(id string, merge MergeFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snapshot == nil {
		return domain.ErrInventoryAbsent
	}
	for i := range r.snapshot.Resources {
		if r.snapshot.Resources[i].ID != id {
			continue
		}
		// merge works on a private copy
		r.snapshot.Resources[i].Specs = merge(r.snapshot.Resources[i].Specs.Clone())
		return nil
	}
	return domain.ErrResourceNotFound
}

// Clear drops the current snapshot
func (r *Repository) Clear() {
	r.mu.Lock()
	r.snapshot = nil
	r.mu.Unlock()
}
