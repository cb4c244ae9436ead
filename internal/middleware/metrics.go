package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jp3/expedientes-api/internal/service"
)

// Metrics observes every request on the shared registry. A nil service turns
// the middleware into a passthrough, which lets tests mount routes without
// wiring prometheus.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		metricsSvc.ObserveHTTPRequest(c.Request.Method, routeTemplate(c), c.Writer.Status(), time.Since(start))
	}
}

// routeTemplate prefers the registered pattern so /api/docentes/:id produces
// one series instead of one per id. Unmatched requests fall back to the raw
// path.
func routeTemplate(c *gin.Context) string {
	if pattern := c.FullPath(); pattern != "" {
		return pattern
	}
	return c.Request.URL.Path
}
