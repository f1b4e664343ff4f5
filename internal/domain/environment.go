package domain

// Environment is a named configuration context with a scaling factor
type Environment struct {
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	ScalingFactor float64 `json:"scalingFactor"`
	Color         string  `json:"color"`
}

// EnvironmentCatalog is the fixed, ordered set of environments
type EnvironmentCatalog struct {
	order []string
	byKey map[string]Environment
}

// NewEnvironmentCatalog builds a catalog; later duplicates of a key are ignored
func NewEnvironmentCatalog(envs ...Environment) *EnvironmentCatalog {
	c := &EnvironmentCatalog{byKey: make(map[string]Environment, len(envs))}
	for _, e := range envs {
		if _, ok := c.byKey[e.Key]; ok {
			continue
		}
		c.order = append(c.order, e.Key)
		c.byKey[e.Key] = e
	}
	return c
}

// DefaultEnvironments returns the demo portal's environment catalog
func DefaultEnvironments() *EnvironmentCatalog {
	return NewEnvironmentCatalog(
		Environment{Key: "production", Name: "Production", ScalingFactor: 1.0, Color: "#dc2626"},
		Environment{Key: "staging", Name: "Staging", ScalingFactor: 0.5, Color: "#f59e0b"},
		Environment{Key: "development", Name: "Development", ScalingFactor: 0.25, Color: "#16a34a"},
		Environment{Key: "dr", Name: "Disaster Recovery", ScalingFactor: 0.75, Color: "#7c3aed"},
		Environment{Key: "testing", Name: "Testing", ScalingFactor: 0.3, Color: "#0ea5e9"},
	)
}

// Lookup returns the environment for key
func (c *EnvironmentCatalog) Lookup(key string) (Environment, bool) {
	e, ok := c.byKey[key]
	return e, ok
}

// Contains reports whether key is in the catalog
func (c *EnvironmentCatalog) Contains(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Keys returns environment keys in catalog order
func (c *EnvironmentCatalog) Keys() []string {
	return append([]string(nil), c.order...)
}

// All returns every environment in catalog order
func (c *EnvironmentCatalog) All() []Environment {
	out := make([]Environment, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byKey[k])
	}
	return out
}

// DefaultLocations are the sites the map view knows how to place
func DefaultLocations() []string {
	return []string{"Mumbai", "Chennai"}
}
