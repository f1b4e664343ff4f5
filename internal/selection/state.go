package selection

import (
	"sort"
	"sync"
)

// View is a point-in-time copy of the selection
type View struct {
	Environments []string `json:"selectedEnvironments"`
	Location     string   `json:"currentLocation,omitempty"`
}

// State tracks the toggled-on environments and the single active location
// filter of one view session. Environment keys are not checked against the
// catalog here.
type State struct {
	mu           sync.Mutex
	environments map[string]struct{}
	location     string
}

// NewState creates an empty selection
func NewState() *State {
	return &State{environments: make(map[string]struct{})}
}

// ToggleEnvironment flips membership of key and returns the new membership
func (s *State) ToggleEnvironment(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.environments[key]; ok {
		delete(s.environments, key)
		return false
	}
	s.environments[key] = struct{}{}
	return true
}

// SetLocation makes name the active location filter. Selecting the active
// location again, or an empty name, clears the filter. Returns the resulting
// location, "" meaning no filter.
func (s *State) SetLocation(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == s.location {
		s.location = ""
	} else {
		s.location = name
	}
	return s.location
}

// IsEnvironmentSelected reports whether key is toggled on
func (s *State) IsEnvironmentSelected(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.environments[key]
	return ok
}

// Location returns the active location filter
func (s *State) Location() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location, s.location != ""
}

// Environments returns the selected keys in sorted order
func (s *State) Environments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedKeys()
}

// Snapshot returns a copy of the whole selection
func (s *State) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{Environments: s.sortedKeys(), Location: s.location}
}

// Reset clears every selection
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.environments = make(map[string]struct{})
	s.location = ""
}

// sortedKeys must be called with s.mu held.
func (s *State) sortedKeys() []string {
	keys := make([]string, 0, len(s.environments))
	for k := range s.environments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
