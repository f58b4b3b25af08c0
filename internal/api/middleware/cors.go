package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware answers preflight requests and sets CORS headers for the
// allowed origins. An empty list allows every origin.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if allowAll || slices.Contains(allowedOrigins, origin) {
			header := c.Writer.Header()
			switch {
			case origin != "":
				header.Set("Access-Control-Allow-Origin", origin)
				header.Add("Vary", "Origin")
			case len(allowedOrigins) > 0:
				header.Set("Access-Control-Allow-Origin", allowedOrigins[0])
			}

			header.Set("Access-Control-Allow-Credentials", "true")
			header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
			header.Set("Access-Control-Expose-Headers", "X-Total-Count, X-Request-ID")
			header.Set("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
