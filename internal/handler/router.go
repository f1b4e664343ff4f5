package handler

import (
	"net/http"

	"github.com/cloudportal/backend-go/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures all API routes
func SetupRouter(
	inventory *InventoryHandler,
	selection *SelectionHandler,
	metrics *observability.Metrics,
	corsOrigin string,
) *gin.Engine {
	r := gin.New()
	// resource IDs may contain escaped slashes (e.g. deploy%2Fshop%2Fweb)
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(gin.Recovery())
	r.Use(CORSMiddleware(corsOrigin))
	if metrics != nil {
		r.Use(PrometheusMiddleware(metrics))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		_, err := inventory.engine.Current()
		c.JSON(http.StatusOK, gin.H{
			"status":           "healthy",
			"inventory_loaded": err == nil,
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Inventory endpoints
	invGroup := r.Group("/api/inventory")
	{
		invGroup.POST("/load", inventory.LoadInventory)
		invGroup.GET("", inventory.GetInventory)
		invGroup.GET("/resources", inventory.ListResources)
		invGroup.GET("/locations", inventory.LocationCounts)
		invGroup.PATCH("/resources/:resource_id/specs", inventory.UpdateSpecs)
	}

	// Selection endpoints
	selGroup := r.Group("/api/selection")
	{
		selGroup.GET("", selection.GetSelection)
		selGroup.POST("/environments/:key/toggle", selection.ToggleEnvironment)
		selGroup.POST("/location", selection.SetLocation)
	}

	// Environment catalog
	envGroup := r.Group("/api/environments")
	{
		envGroup.GET("", selection.ListEnvironments)
		envGroup.GET("/:key/scaling", selection.GetScaling)
	}

	return r
}
