package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows replays canned rows; each row's values are assigned to Scan
// destinations by position
type fakeRows struct {
	data [][]any
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: want %d columns, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *float64:
			*p = row[i].(float64)
		case *[]byte:
			*p = row[i].([]byte)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

type fakeQuerier struct {
	resources *fakeRows
	services  *fakeRows
	err       error
	args      []any
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.args = args
	if strings.Contains(sql, "inventory_services") {
		return q.services, nil
	}
	return q.resources, nil
}

func TestPostgresSourceFetch(t *testing.T) {
	q := &fakeQuerier{
		resources: &fakeRows{data: [][]any{
			{"1", "app-01", "Virtual Machine", "compute", "Mumbai DC", "Active", []byte(`{"cpu_cores":4,"os":"RHEL 9"}`), 320.0},
			{"2", "db-01", "PostgreSQL", "database", "Chennai DC", "Inactive", []byte(`{"storage_gb":200}`), 150.0},
		}},
		services: &fakeRows{data: [][]any{
			{"s1", "RDS", "orders", []byte(`{"engine":"postgres"}`), []byte(`{"team":"payments"}`)},
		}},
	}

	src := NewPostgresSource(q)
	assert.Equal(t, "postgres", src.Name())

	snap, err := src.Fetch(context.Background(), "Acme", "AWS")
	require.NoError(t, err)
	assert.Equal(t, []any{"Acme", "AWS"}, q.args)

	require.Len(t, snap.Resources, 2)
	assert.Equal(t, domain.CategoryCompute, snap.Resources[0].Category)
	assert.Equal(t, domain.StatusInactive, snap.Resources[1].Status)
	assert.Equal(t, []string{"cpu_cores", "os"}, snap.Resources[0].Specs.Keys())
	assert.Equal(t, 320.0, snap.Resources[0].MRR)

	require.Len(t, snap.Services, 1)
	assert.Equal(t, "payments", snap.Services[0].Tags["team"])
}

func TestPostgresSourceEmpty(t *testing.T) {
	q := &fakeQuerier{resources: &fakeRows{}, services: &fakeRows{}}

	_, err := NewPostgresSource(q).Fetch(context.Background(), "Nobody", "AWS")
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestPostgresSourceQueryError(t *testing.T) {
	q := &fakeQuerier{err: errors.New("connection refused")}

	_, err := NewPostgresSource(q).Fetch(context.Background(), "Acme", "AWS")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query resources")
}

func TestPostgresSourceBadSpecs(t *testing.T) {
	q := &fakeQuerier{
		resources: &fakeRows{data: [][]any{
			{"1", "x", "VM", "compute", "Mumbai", "Active", []byte(`{"flag":true}`), 0.0},
		}},
		services: &fakeRows{},
	}

	_, err := NewPostgresSource(q).Fetch(context.Background(), "Acme", "AWS")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "resource 1 specs")
}

func TestPostgresSourceRowsError(t *testing.T) {
	q := &fakeQuerier{
		resources: &fakeRows{err: errors.New("broken pipe")},
		services:  &fakeRows{},
	}

	_, err := NewPostgresSource(q).Fetch(context.Background(), "Acme", "AWS")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read resources")
}
