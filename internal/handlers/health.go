package handlers

import (
	"github.com/gin-gonic/gin"
)

// HealthCheck returns a minimal liveness response without exposing system
// details.
func HealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
		})
	}
}
