package engine

import (
	"errors"
	"log"

	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/cloudportal/backend-go/internal/inventory"
	"github.com/cloudportal/backend-go/internal/observability"
	"github.com/cloudportal/backend-go/internal/selection"
)

// Engine is one view session: it owns the inventory repository and the
// selection state and derives every read view from them
type Engine struct {
	repo      *inventory.Repository
	sel       *selection.State
	catalog   *domain.EnvironmentCatalog
	locations []string
	metrics   *observability.Metrics
}

// New creates an Engine. A nil catalog or empty locations fall back to the
// demo defaults; metrics may be nil.
func New(
	repo *inventory.Repository,
	sel *selection.State,
	catalog *domain.EnvironmentCatalog,
	locations []string,
	metrics *observability.Metrics,
) *Engine {
	if catalog == nil {
		catalog = domain.DefaultEnvironments()
	}
	if len(locations) == 0 {
		locations = domain.DefaultLocations()
	}
	return &Engine{
		repo:      repo,
		sel:       sel,
		catalog:   catalog,
		locations: append([]string(nil), locations...),
		metrics:   metrics,
	}
}

// NewSession creates an Engine with a fresh repository and empty selection
func NewSession(catalog *domain.EnvironmentCatalog, locations []string, metrics *observability.Metrics) *Engine {
	return New(inventory.NewRepository(), selection.NewState(), catalog, locations, metrics)
}

// Catalog returns the environment catalog
func (e *Engine) Catalog() *domain.EnvironmentCatalog { return e.catalog }

// KnownLocations returns the locations the map view can place
func (e *Engine) KnownLocations() []string {
	return append([]string(nil), e.locations...)
}

// Load replaces the session's inventory
func (e *Engine) Load(snapshot domain.Snapshot) {
	e.repo.Load(snapshot)
	if e.metrics != nil {
		e.metrics.RecordLoad(snapshot.Provider, "success", len(snapshot.Resources))
	}
}

// Current returns the loaded snapshot or ErrInventoryAbsent
func (e *Engine) Current() (domain.Snapshot, error) {
	snap, ok := e.repo.Current()
	if !ok {
		return domain.Snapshot{}, domain.ErrInventoryAbsent
	}
	return snap, nil
}

// ToggleEnvironment flips an environment on or off
func (e *Engine) ToggleEnvironment(key string) bool {
	on := e.sel.ToggleEnvironment(key)
	if e.metrics != nil {
		e.metrics.RecordSelection("environment")
	}
	return on
}

// SetLocation selects a location filter, or clears it when re-selected
func (e *Engine) SetLocation(name string) string {
	loc := e.sel.SetLocation(name)
	if e.metrics != nil {
		e.metrics.RecordSelection("location")
	}
	return loc
}

// Selection returns a copy of the current selection
func (e *Engine) Selection() selection.View {
	return e.sel.Snapshot()
}

// IsEnvironmentSelected reports whether key is toggled on
func (e *Engine) IsEnvironmentSelected(key string) bool {
	return e.sel.IsEnvironmentSelected(key)
}

// ActiveEnvironments returns the selected environments that exist in the
// catalog, in catalog order
func (e *Engine) ActiveEnvironments() []domain.Environment {
	active := make([]domain.Environment, 0)
	for _, env := range e.catalog.All() {
		if e.sel.IsEnvironmentSelected(env.Key) {
			active = append(active, env)
		}
	}
	return active
}

// ScalingFactor returns the catalog scaling factor for an environment
func (e *Engine) ScalingFactor(key string) (float64, error) {
	env, ok := e.catalog.Lookup(key)
	if !ok {
		return 0, domain.ErrEnvironmentNotFound
	}
	return env.ScalingFactor, nil
}

// LocationCounts counts the full resource list per known location
func (e *Engine) LocationCounts() (map[string]int, error) {
	resources, ok := e.repo.Resources()
	if !ok {
		return nil, domain.ErrInventoryAbsent
	}
	return CountsByLocation(resources, e.locations), nil
}

// VisibleResources returns the resources that pass the location filter
func (e *Engine) VisibleResources() ([]domain.Resource, error) {
	resources, ok := e.repo.Resources()
	if !ok {
		return nil, domain.ErrInventoryAbsent
	}
	loc, _ := e.sel.Location()
	return FilterByLocation(resources, loc), nil
}

// UpdateResource merges patch into the specs of resource id. Absent
// inventory and unknown IDs fail the whole call; field-level rejections are
// reported in the result while the remaining fields still apply.
func (e *Engine) UpdateResource(id string, patch Patch) (EditResult, error) {
	var result EditResult
	err := e.repo.UpdateResource(id, func(current domain.Specs) domain.Specs {
		merged, res := MergeSpecs(current, patch)
		result = res
		return merged
	})
	if err != nil {
		if e.metrics != nil {
			outcome := "not_found"
			if errors.Is(err, domain.ErrInventoryAbsent) {
				outcome = "absent"
			}
			e.metrics.RecordEdit(outcome)
		}
		return EditResult{ResourceID: id}, err
	}
	result.ResourceID = id

	if e.metrics != nil {
		reasons := make([]string, len(result.Rejected))
		for i, fe := range result.Rejected {
			reasons[i] = fe.Reason()
		}
		e.metrics.RecordEdit(result.Outcome(), reasons...)
	}
	if !result.Clean() {
		log.Printf("Resource %s edit: applied=%v rejected=%d", id, result.Applied, len(result.Rejected))
	} else {
		log.Printf("Resource %s edit: applied=%v", id, result.Applied)
	}
	return result, nil
}

// Reset ends the session: inventory is dropped and the selection cleared
func (e *Engine) Reset() {
	e.repo.Clear()
	e.sel.Reset()
}
