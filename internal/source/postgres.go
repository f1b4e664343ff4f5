package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/jackc/pgx/v5"
)

const (
	listResourcesSQL = `
SELECT id, name, type, category, location, status, specs, mrr
FROM inventory_resources
WHERE customer_name = $1 AND provider = $2
ORDER BY position, id`

	listServicesSQL = `
SELECT id, service, name, details, tags
FROM inventory_services
WHERE customer_name = $1 AND provider = $2
ORDER BY id`
)

// querier is the subset of pgxpool.Pool used by PostgresSource
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads inventories from a catalog database. It never writes.
type PostgresSource struct {
	db querier
}

// NewPostgresSource creates a PostgresSource over a pool or connection
func NewPostgresSource(db querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// Name identifies the source in logs and metrics
func (s *PostgresSource) Name() string { return "postgres" }

// Fetch loads the resources and services stored for customer/provider
func (s *PostgresSource) Fetch(ctx context.Context, customer, provider string) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		CustomerName: customer,
		Provider:     provider,
		Resources:    make([]domain.Resource, 0),
	}

	rows, err := s.db.Query(ctx, listResourcesSQL, customer, provider)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r        domain.Resource
			category string
			status   string
			specs    []byte
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &category, &r.Location, &status, &specs, &r.MRR); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		r.Category = domain.Category(category)
		r.Status = domain.Status(status)
		if err := json.Unmarshal(specs, &r.Specs); err != nil {
			return nil, fmt.Errorf("resource %s specs: %w", r.ID, err)
		}
		snap.Resources = append(snap.Resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read resources: %w", err)
	}

	services, err := s.fetchServices(ctx, customer, provider)
	if err != nil {
		return nil, err
	}
	snap.Services = services

	if len(snap.Resources) == 0 && len(snap.Services) == 0 {
		return nil, fmt.Errorf("%w: no inventory for %s/%s", domain.ErrSourceUnavailable, customer, provider)
	}
	return snap, nil
}

func (s *PostgresSource) fetchServices(ctx context.Context, customer, provider string) ([]domain.Service, error) {
	rows, err := s.db.Query(ctx, listServicesSQL, customer, provider)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		var (
			svc     domain.Service
			details []byte
			tags    []byte
		)
		if err := rows.Scan(&svc.ID, &svc.Service, &svc.Name, &details, &tags); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &svc.Details); err != nil {
				return nil, fmt.Errorf("service %s details: %w", svc.ID, err)
			}
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &svc.Tags); err != nil {
				return nil, fmt.Errorf("service %s tags: %w", svc.ID, err)
			}
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read services: %w", err)
	}
	return services, nil
}
