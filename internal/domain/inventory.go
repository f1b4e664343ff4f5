package domain

import "time"

// Category groups resources in the portal
type Category string

const (
	CategoryCompute         Category = "compute"
	CategoryStorage         Category = "storage"
	CategoryNetwork         Category = "network"
	CategorySecurity        Category = "security"
	CategoryManagedServices Category = "managed-services"
	CategoryDatabase        Category = "database"
)

// Categories lists every category in display order
func Categories() []Category {
	return []Category{
		CategoryCompute, CategoryStorage, CategoryNetwork,
		CategorySecurity, CategoryManagedServices, CategoryDatabase,
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// Status is display-only; nothing in the core branches on it
type Status string

const (
	StatusActive       Status = "Active"
	StatusInactive     Status = "Inactive"
	StatusProvisioning Status = "Provisioning"
	StatusMaintenance  Status = "Maintenance"
)

// Resource is a provisioned cloud item
type Resource struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Type     string   `json:"type" yaml:"type"`
	Category Category `json:"category" yaml:"category"`
	Location string   `json:"location" yaml:"location"`
	Status   Status   `json:"status" yaml:"status"`
	Specs    Specs    `json:"specs" yaml:"specs"`
	MRR      float64  `json:"mrr" yaml:"mrr"`
}

// Clone returns a copy that shares no mutable state with r
func (r Resource) Clone() Resource {
	r.Specs = r.Specs.Clone()
	return r
}

// Service is a pass-through record of a hyperscaler sub-inventory
type Service struct {
	ID      string            `json:"id" yaml:"id"`
	Service string            `json:"service" yaml:"service"`
	Name    string            `json:"name" yaml:"name"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
	Tags    map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Clone deep-copies the detail and tag maps
func (s Service) Clone() Service {
	s.Details = cloneStringMap(s.Details)
	s.Tags = cloneStringMap(s.Tags)
	return s
}

// Snapshot is the full inventory of one customer at one provider
type Snapshot struct {
	CustomerName string     `json:"customerName" yaml:"customerName"`
	Provider     string     `json:"provider" yaml:"provider"`
	Resources    []Resource `json:"resources" yaml:"resources"`
	Services     []Service  `json:"services,omitempty" yaml:"services,omitempty"`
	LoadedAt     time.Time  `json:"loadedAt" yaml:"-"`
}

// Clone returns a deep copy
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Resources = make([]Resource, len(s.Resources))
	for i, r := range s.Resources {
		c.Resources[i] = r.Clone()
	}
	if s.Services != nil {
		c.Services = make([]Service, len(s.Services))
		for i, svc := range s.Services {
			c.Services[i] = svc.Clone()
		}
	}
	return c
}

// Resource looks up a resource by ID
func (s Snapshot) Resource(id string) (Resource, bool) {
	for _, r := range s.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// TotalMRR sums the monthly recurring revenue of all resources
func (s Snapshot) TotalMRR() float64 {
	total := 0.0
	for _, r := range s.Resources {
		total += r.MRR
	}
	return total
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
