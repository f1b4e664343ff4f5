package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/cloudportal/backend-go/internal/engine"
	"github.com/cloudportal/backend-go/internal/source"
	"github.com/gin-gonic/gin"
)

// LoadRequest selects the customer/provider inventory to load
type LoadRequest struct {
	Customer string `json:"customer"`
	Provider string `json:"provider"`
}

// InventoryHandler serves the inventory, its derived views and spec edits
type InventoryHandler struct {
	engine          *engine.Engine
	source          source.Source
	defaultCustomer string
	defaultProvider string
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(eng *engine.Engine, src source.Source, defaultCustomer, defaultProvider string) *InventoryHandler {
	return &InventoryHandler{
		engine:          eng,
		source:          src,
		defaultCustomer: defaultCustomer,
		defaultProvider: defaultProvider,
	}
}

// LoadInventory fetches a snapshot from the source and replaces the current one
func (h *InventoryHandler) LoadInventory(c *gin.Context) {
	var req LoadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
	}
	if req.Customer == "" {
		req.Customer = h.defaultCustomer
	}
	if req.Provider == "" {
		req.Provider = h.defaultProvider
	}
	if req.Customer == "" || req.Provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "customer and provider are required"})
		return
	}

	snap, err := h.source.Fetch(c.Request.Context(), req.Customer, req.Provider)
	if err != nil {
		log.Printf("Inventory fetch from %s failed for %s/%s: %v", h.source.Name(), req.Customer, req.Provider, err)
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	h.engine.Load(*snap)
	current, _ := h.engine.Current()
	c.JSON(http.StatusOK, gin.H{
		"customerName": current.CustomerName,
		"provider":     current.Provider,
		"resources":    len(current.Resources),
		"services":     len(current.Services),
		"loadedAt":     current.LoadedAt,
		"source":       h.source.Name(),
	})
}

// GetInventory returns the loaded snapshot
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	snap, err := h.engine.Current()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot": snap,
		"totalMrr": snap.TotalMRR(),
	})
}

// ListResources returns the resources passing the current location filter,
// optionally narrowed to one category
func (h *InventoryHandler) ListResources(c *gin.Context) {
	resources, err := h.engine.VisibleResources()
	if err != nil {
		writeError(c, err)
		return
	}

	if category := c.Query("category"); category != "" {
		resources = engine.GroupByCategory(resources)[domain.Category(category)]
		if resources == nil {
			resources = []domain.Resource{}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"currentLocation": h.engine.Selection().Location,
		"resources":       resources,
	})
}

// LocationCounts returns resource counts per known location for map markers
func (h *InventoryHandler) LocationCounts(c *gin.Context) {
	counts, err := h.engine.LocationCounts()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"counts":          counts,
		"locations":       h.engine.KnownLocations(),
		"currentLocation": h.engine.Selection().Location,
	})
}

// UpdateSpecs applies a partial spec update to one resource. Fully applied
// edits return 200, partially applied 207, fully rejected 422.
func (h *InventoryHandler) UpdateSpecs(c *gin.Context) {
	resourceID := c.Param("resource_id")

	var patch engine.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.engine.UpdateResource(resourceID, patch)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	switch result.Outcome() {
	case "partial":
		status = http.StatusMultiStatus
	case "rejected":
		status = http.StatusUnprocessableEntity
	}

	body := gin.H{"result": result}
	if snap, err := h.engine.Current(); err == nil {
		if r, ok := snap.Resource(resourceID); ok {
			body["resource"] = r
		}
	}
	c.JSON(status, body)
}

// writeError maps core errors to HTTP responses
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInventoryAbsent):
		c.JSON(http.StatusNotFound, gin.H{"detail": "No inventory loaded"})
	case errors.Is(err, domain.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Resource not found"})
	case errors.Is(err, domain.ErrEnvironmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Environment not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}
