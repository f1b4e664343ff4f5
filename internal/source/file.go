package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cloudportal/backend-go/internal/domain"
	"gopkg.in/yaml.v3"
)

// fixtureFile is the on-disk layout: a list of snapshots. JSON documents
// parse as well since the YAML decoder accepts them.
type fixtureFile struct {
	Snapshots []domain.Snapshot `yaml:"snapshots"`
}

// FileSource reads snapshots from a YAML or JSON fixture file
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source in logs and metrics
func (s *FileSource) Name() string { return "file" }

// Fetch re-reads the file and returns the snapshot matching customer and
// provider (case-insensitive)
func (s *FileSource) Fetch(ctx context.Context, customer, provider string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read inventory file %s: %w", s.path, err)
	}

	snaps, err := ParseFixtures(data)
	if err != nil {
		return nil, fmt.Errorf("inventory file %s: %w", s.path, err)
	}

	for i := range snaps {
		if strings.EqualFold(snaps[i].CustomerName, customer) && strings.EqualFold(snaps[i].Provider, provider) {
			return &snaps[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no inventory for %s/%s in %s",
		domain.ErrSourceUnavailable, customer, provider, s.path)
}

// ParseFixtures decodes a fixture document into snapshots
func ParseFixtures(data []byte) ([]domain.Snapshot, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return f.Snapshots, nil
}
