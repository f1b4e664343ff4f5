package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/cloudportal/backend-go/internal/engine"
	"github.com/cloudportal/backend-go/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	snap *domain.Snapshot
	err  error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(_ context.Context, customer, provider string) (*domain.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap := s.snap.Clone()
	snap.CustomerName = customer
	snap.Provider = provider
	return &snap, nil
}

func sampleSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Resources: []domain.Resource{
			{
				ID: "vm-1", Name: "web-01", Category: domain.CategoryCompute,
				Location: "Mumbai DC-1", Status: domain.StatusActive, MRR: 100,
				Specs: domain.NewSpecs(
					domain.Field("cpu_cores", domain.Number(4)),
					domain.Field("os", domain.Text("RHEL 9")),
				),
			},
			{
				ID: "db-1", Name: "pg", Category: domain.CategoryDatabase,
				Location: "Chennai DC-1", Status: domain.StatusActive, MRR: 50,
				Specs: domain.NewSpecs(domain.Field("storage_gb", domain.Number(500))),
			},
			{
				ID: "deploy/shop/web", Name: "web", Category: domain.CategoryCompute,
				Location: "shop", Status: domain.StatusActive,
				Specs: domain.NewSpecs(domain.Field("replicas", domain.Number(2))),
			},
		},
	}
}

func setupTestRouter(src *stubSource) (*gin.Engine, *engine.Engine) {
	gin.SetMode(gin.TestMode)
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())
	eng := engine.NewSession(nil, nil, metrics)
	inv := NewInventoryHandler(eng, src, "Acme", "Private Cloud")
	sel := NewSelectionHandler(eng)
	return SetupRouter(inv, sel, metrics, "*"), eng
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{snap: sampleSnapshot()})

	w := doRequest(r, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["inventory_loaded"])

	eng.Load(*sampleSnapshot())
	w = doRequest(r, "GET", "/health", "")
	assert.Equal(t, true, decode(t, w)["inventory_loaded"])
}

func TestGetInventory_NotLoaded(t *testing.T) {
	r, _ := setupTestRouter(&stubSource{snap: sampleSnapshot()})

	for _, path := range []string{"/api/inventory", "/api/inventory/resources", "/api/inventory/locations"} {
		w := doRequest(r, "GET", path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "No inventory loaded", decode(t, w)["detail"], path)
	}
}

func TestLoadInventory(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{snap: sampleSnapshot()})

	w := doRequest(r, "POST", "/api/inventory/load", `{"customer":"Globex","provider":"AWS"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Globex", body["customerName"])
	assert.Equal(t, "AWS", body["provider"])
	assert.Equal(t, 3.0, body["resources"])
	assert.Equal(t, "stub", body["source"])

	snap, err := eng.Current()
	require.NoError(t, err)
	assert.Equal(t, "Globex", snap.CustomerName)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestLoadInventory_Defaults(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{snap: sampleSnapshot()})

	w := doRequest(r, "POST", "/api/inventory/load", "")
	require.Equal(t, http.StatusOK, w.Code)

	snap, err := eng.Current()
	require.NoError(t, err)
	assert.Equal(t, "Acme", snap.CustomerName)
	assert.Equal(t, "Private Cloud", snap.Provider)
}

func TestLoadInventory_SourceFailure(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{err: errors.New("upstream down")})

	w := doRequest(r, "POST", "/api/inventory/load", `{"customer":"Globex","provider":"AWS"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "upstream down")

	_, err := eng.Current()
	assert.ErrorIs(t, err, domain.ErrInventoryAbsent)
}

func TestLoadInventory_BadBody(t *testing.T) {
	r, _ := setupTestRouter(&stubSource{snap: sampleSnapshot()})

	w := doRequest(r, "POST", "/api/inventory/load", `{"customer":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInventory(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{})
	eng.Load(*sampleSnapshot())

	w := doRequest(r, "GET", "/api/inventory", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, 150.0, body["totalMrr"])
	snap := body["snapshot"].(map[string]any)
	assert.Len(t, snap["resources"], 3)
}

func TestListResources_LocationFilter(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{})
	eng.Load(*sampleSnapshot())

	w := doRequest(r, "GET", "/api/inventory/resources", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["resources"], 3)

	eng.SetLocation("Mumbai")
	w = doRequest(r, "GET", "/api/inventory/resources", "")
	body := decode(t, w)
	assert.Equal(t, "Mumbai", body["currentLocation"])
	resources := body["resources"].([]any)
	require.Len(t, resources, 1)
	assert.Equal(t, "vm-1", resources[0].(map[string]any)["id"])
}

func TestListResources_CategoryFilter(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{})
	eng.Load(*sampleSnapshot())

	w := doRequest(r, "GET", "/api/inventory/resources?category=database", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["resources"], 1)

	w = doRequest(r, "GET", "/api/inventory/resources?category=security", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["resources"])
}

func TestLocationCounts(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{})
	eng.Load(*sampleSnapshot())

	w := doRequest(r, "GET", "/api/inventory/locations", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, map[string]any{"Mumbai": 1.0, "Chennai": 1.0}, body["counts"])
	assert.Equal(t, []any{"Mumbai", "Chennai"}, body["locations"])
}

func TestUpdateSpecs(t *testing.T) {
	tests := []struct {
		name       string
		patch      string
		wantStatus int
		wantCPU    float64
	}{
		{"clean", `{"cpu_cores": 8}`, http.StatusOK, 8},
		{"partial", `{"cpu_cores": 8, "gpu": 1}`, http.StatusMultiStatus, 8},
		{"rejected", `{"cpu_cores": "eight"}`, http.StatusUnprocessableEntity, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, eng := setupTestRouter(&stubSource{})
			eng.Load(*sampleSnapshot())

			w := doRequest(r, "PATCH", "/api/inventory/resources/vm-1/specs", tt.patch)
			assert.Equal(t, tt.wantStatus, w.Code)

			body := decode(t, w)
			result := body["result"].(map[string]any)
			assert.Equal(t, "vm-1", result["resource_id"])

			snap, err := eng.Current()
			require.NoError(t, err)
			res, ok := snap.Resource("vm-1")
			require.True(t, ok)
			cpu, _ := res.Specs.Get("cpu_cores")
			assert.Equal(t, tt.wantCPU, cpu.Float())
			assert.Equal(t, []string{"cpu_cores", "os"}, res.Specs.Keys())
		})
	}
}

func TestUpdateSpecs_RejectionDetail(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{})
	eng.Load(*sampleSnapshot())

	w := doRequest(r, "PATCH", "/api/inventory/resources/vm-1/specs", `{"os": 9}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	result := decode(t, w)["result"].(map[string]any)
	rejected := result["rejected"].([]any)
	require.Len(t, rejected, 1)
	fe := rejected[0].(map[string]any)
	assert.Equal(t, "os", fe["field"])
	assert.Equal(t, "type_mismatch", fe["reason"])
}

func TestUpdateSpecs_EscapedID(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{})
	eng.Load(*sampleSnapshot())

	w := doRequest(r, "PATCH", "/api/inventory/resources/deploy%2Fshop%2Fweb/specs", `{"replicas": 5}`)
	require.Equal(t, http.StatusOK, w.Code)

	snap, _ := eng.Current()
	res, _ := snap.Resource("deploy/shop/web")
	v, _ := res.Specs.Get("replicas")
	assert.Equal(t, 5.0, v.Float())
}

func TestUpdateSpecs_NotFound(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{})

	w := doRequest(r, "PATCH", "/api/inventory/resources/vm-1/specs", `{"cpu_cores": 8}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No inventory loaded", decode(t, w)["detail"])

	eng.Load(*sampleSnapshot())
	w = doRequest(r, "PATCH", "/api/inventory/resources/vm-404/specs", `{"cpu_cores": 8}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Resource not found", decode(t, w)["detail"])
}

func TestUpdateSpecs_BadBody(t *testing.T) {
	r, eng := setupTestRouter(&stubSource{})
	eng.Load(*sampleSnapshot())

	w := doRequest(r, "PATCH", "/api/inventory/resources/vm-1/specs", `{"cpu_cores": true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
