package engine

import (
	"errors"
	"sort"

	"github.com/cloudportal/backend-go/internal/domain"
)

// Patch maps spec field names to replacement values
type Patch map[string]domain.SpecValue

// EditResult reports which fields of a patch were applied and which were
// rejected, so callers can surface partial failures
type EditResult struct {
	ResourceID string               `json:"resource_id"`
	Applied    []string             `json:"applied"`
	Rejected   []*domain.FieldError `json:"rejected"`
}

// Clean reports whether every field in the patch was applied
func (r EditResult) Clean() bool {
	return len(r.Rejected) == 0
}

// Outcome classifies the edit as clean, partial or rejected
func (r EditResult) Outcome() string {
	switch {
	case len(r.Rejected) == 0:
		return "clean"
	case len(r.Applied) == 0:
		return "rejected"
	default:
		return "partial"
	}
}

// Err joins the per-field errors; nil when the edit was clean
func (r EditResult) Err() error {
	if r.Clean() {
		return nil
	}
	errs := make([]error, len(r.Rejected))
	for i, fe := range r.Rejected {
		errs[i] = fe
	}
	return errors.Join(errs...)
}

// MergeSpecs applies patch to current field by field. Fields that exist and
// keep their value kind are replaced; others are rejected and skipped. The
// returned Specs is a new value in the original key order; current is never
// modified. Patch keys are visited in sorted order.
func MergeSpecs(current domain.Specs, patch Patch) (domain.Specs, EditResult) {
	result := EditResult{
		Applied:  []string{},
		Rejected: []*domain.FieldError{},
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := current.Clone()
	for _, key := range keys {
		next, err := merged.Replace(key, patch[key])
		if err != nil {
			var fe *domain.FieldError
			if errors.As(err, &fe) {
				result.Rejected = append(result.Rejected, fe)
			} else {
				result.Rejected = append(result.Rejected, &domain.FieldError{Field: key, Err: err})
			}
			continue
		}
		merged = next
		result.Applied = append(result.Applied, key)
	}
	return merged, result
}
