package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// WebSocketAuthMiddleware authenticates the event stream. Browsers cannot set
// headers on a websocket handshake, so ?token= is read first; other clients
// may send the usual bearer header.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if raw == "" {
			raw, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if raw == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseToken(strings.TrimSpace(raw))
		if err != nil || claims.UserID == 0 {
			utils.InfoLogger.Printf("Rejected websocket from %s: invalid token", c.ClientIP())
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
