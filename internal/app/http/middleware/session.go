package middleware

import (
	"strings"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/infra/shopify"

	"github.com/gin-gonic/gin"
)

// ShopifySession authenticates App Bridge session tokens and stores the
// normalized shop domain under "shop".
func ShopifySession(apiKey, apiSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apperr.Respond(c, apperr.Unauthorized("Missing session token"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			apperr.Respond(c, apperr.Unauthorized("Bearer token malformed"))
			return
		}

		shop, claims, err := shopify.ParseSessionToken(strings.TrimSpace(tokenString), apiKey, apiSecret)
		if err != nil {
			apperr.Respond(c, apperr.Unauthorized("Invalid or expired session"))
			return
		}

		c.Set("shop", shop)
		if claims.Sid != "" {
			c.Set("session_id", claims.Sid)
		}
		c.Next()
	}
}
