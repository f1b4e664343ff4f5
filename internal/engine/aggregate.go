package engine

import (
	"strings"

	"github.com/cloudportal/backend-go/internal/domain"
)

// CountsByLocation counts, for every known location, the resources whose
// location string contains that name. Known locations with no resources are
// reported with a zero count. A resource matching several names is counted
// under each of them.
func CountsByLocation(resources []domain.Resource, known []string) map[string]int {
	counts := make(map[string]int, len(known))
	for _, loc := range known {
		counts[loc] = 0
	}
	for _, r := range resources {
		for _, loc := range known {
			if strings.Contains(r.Location, loc) {
				counts[loc]++
			}
		}
	}
	return counts
}

// FilterByLocation returns the resources whose location contains location.
// An empty location returns every resource in its original order. The result
// is always a new slice.
func FilterByLocation(resources []domain.Resource, location string) []domain.Resource {
	out := make([]domain.Resource, 0, len(resources))
	for _, r := range resources {
		if location == "" || strings.Contains(r.Location, location) {
			out = append(out, r)
		}
	}
	return out
}

// GroupByCategory buckets resources by category, keeping input order within
// each bucket
func GroupByCategory(resources []domain.Resource) map[domain.Category][]domain.Resource {
	groups := make(map[domain.Category][]domain.Resource)
	for _, r := range resources {
		groups[r.Category] = append(groups[r.Category], r)
	}
	return groups
}
