package middleware

import "github.com/gin-gonic/gin"

// CORSMiddleware allows the configured client origin, or any origin when
// none is configured.
func CORSMiddleware(clientURL string) gin.HandlerFunc {
	origin := clientURL
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
