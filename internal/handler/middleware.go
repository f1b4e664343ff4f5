package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloudportal/backend-go/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrometheusMiddleware records HTTP request metrics
func PrometheusMiddleware(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := normalizePath(c.Request.URL.EscapedPath())
		method := c.Request.Method

		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		status := fmt.Sprintf("%d", c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// collapsedAfter lists path segments whose following segment is an
// identifier and must not become a metric label value
var collapsedAfter = map[string]string{
	"resources":    "{id}",
	"environments": "{key}",
}

// normalizePath replaces dynamic path segments with placeholders
func normalizePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	normalized := make([]string, 0, len(parts))

	prev := ""
	for _, part := range parts {
		switch {
		case collapsedAfter[prev] != "":
			normalized = append(normalized, collapsedAfter[prev])
		case isUUID(part):
			normalized = append(normalized, "{id}")
		default:
			normalized = append(normalized, part)
		}
		prev = part
	}

	return "/" + strings.Join(normalized, "/")
}

// isUUID checks if a string is a canonical UUID
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
