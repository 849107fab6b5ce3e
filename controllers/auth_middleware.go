package controllers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminRequired guards the configuration API with a static bearer token.
// An empty token leaves the API open, which is meant for local use only.
func AdminRequired(token string) gin.HandlerFunc {
	token = strings.TrimSpace(token)
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			RespondError(c, "missing bearer token", http.StatusUnauthorized)
			c.Abort()
			return
		}
		provided := strings.TrimSpace(h[len("Bearer "):])
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			RespondError(c, "invalid token", http.StatusUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}
