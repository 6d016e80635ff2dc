package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/backend/internal/auth"
	"github.com/cardfolio/cardfolio/backend/internal/metrics"
)

const userIDKey = "userID"

// DemoUserID is the identity used when no auth provider is configured.
// Missing auth config degrades to demo mode, it never blocks startup.
const DemoUserID = "demo-user"

// AuthMiddleware resolves the bearer token to a user id and stores it in
// the request context. With a nil verifier every request runs as the demo
// user.
func AuthMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Set(userIDKey, DemoUserID)
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id for this request.
// Handlers behind AuthMiddleware can rely on it being set.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// MetricsMiddleware records request counts and latency per route
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
