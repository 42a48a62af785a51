package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds browser security headers to responses.
// These only affect browser-based access to the chat UI; non-browser
// clients ignore them.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// X-Content-Type-Options: prevents MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// X-Frame-Options: prevents clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Referrer-Policy: full URL same-origin only, origin cross-origin
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}
