package handler

import (
	"net/http"

	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/cloudportal/backend-go/internal/engine"
	"github.com/gin-gonic/gin"
)

// LocationRequest carries a map marker click
type LocationRequest struct {
	Location string `json:"location"`
}

// EnvironmentView is a catalog entry with its selection flag
type EnvironmentView struct {
	domain.Environment
	Selected bool `json:"selected"`
}

// SelectionHandler serves environment and location selection
type SelectionHandler struct {
	engine *engine.Engine
}

// NewSelectionHandler creates a new SelectionHandler
func NewSelectionHandler(eng *engine.Engine) *SelectionHandler {
	return &SelectionHandler{engine: eng}
}

// GetSelection returns the current selection and the active catalog entries
func (h *SelectionHandler) GetSelection(c *gin.Context) {
	view := h.engine.Selection()
	c.JSON(http.StatusOK, gin.H{
		"selectedEnvironments": view.Environments,
		"currentLocation":      view.Location,
		"activeEnvironments":   h.engine.ActiveEnvironments(),
	})
}

// ToggleEnvironment flips one environment. Keys outside the catalog are
// accepted and reported as unknown.
func (h *SelectionHandler) ToggleEnvironment(c *gin.Context) {
	key := c.Param("key")
	selected := h.engine.ToggleEnvironment(key)
	c.JSON(http.StatusOK, gin.H{
		"key":      key,
		"selected": selected,
		"known":    h.engine.Catalog().Contains(key),
	})
}

// SetLocation selects a location filter; posting the active one clears it
func (h *SelectionHandler) SetLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"currentLocation": h.engine.SetLocation(req.Location)})
}

// ListEnvironments returns the catalog with selection flags
func (h *SelectionHandler) ListEnvironments(c *gin.Context) {
	all := h.engine.Catalog().All()
	out := make([]EnvironmentView, 0, len(all))
	for _, env := range all {
		out = append(out, EnvironmentView{
			Environment: env,
			Selected:    h.engine.IsEnvironmentSelected(env.Key),
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetScaling returns an environment's scaling factor
func (h *SelectionHandler) GetScaling(c *gin.Context) {
	key := c.Param("key")
	factor, err := h.engine.ScalingFactor(key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "scalingFactor": factor})
}
