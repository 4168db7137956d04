package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classgotcha-api/internal/service"
)

// unmatchedRoute labels requests that hit no route, so requests for arbitrary
// paths cannot grow the path label set.
const unmatchedRoute = "unmatched"

// Metrics records request duration and count per route pattern. Requests to
// any of the skip routes, such as the scrape endpoint itself, are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		skipped[route] = struct{}{}
	}

	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, ok := skipped[route]; ok && route != "" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
