package middleware

import (
	"crypto/subtle"
	"strings"

	"shopnotes-app/internal/apperr"

	"github.com/gin-gonic/gin"
)

// RequireAdminToken guards operator routes with a static bearer token. An
// empty token disables the routes entirely.
func RequireAdminToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			apperr.Respond(c, apperr.Forbidden("Admin API disabled"))
			return
		}
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			apperr.Respond(c, apperr.Unauthorized("Invalid admin token"))
			return
		}
		c.Set("role", "admin")
		c.Next()
	}
}
