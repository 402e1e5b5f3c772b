package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"tvshow-catalog/internal/shared/response"
)

// AdminKeyHeader carries the operator key for /admin routes
const AdminKeyHeader = "X-Admin-Key"

// AdminMiddleware only lets requests carrying apiKey in X-Admin-Key through.
// An empty apiKey disables the admin routes entirely.
func AdminMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			response.ErrorResponse(c, http.StatusForbidden, "ADMIN_DISABLED", "admin routes are disabled")
			return
		}

		given := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(apiKey)) != 1 {
			response.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "Access denied: admin key required")
			return
		}

		c.Next()
	}
}
