package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidelinehq/coach-backend/internal/limits"
)

// GetLimitsConfig returns the current quota limits configuration
func GetLimitsConfig(manager *limits.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Limits manager not initialized"})
			return
		}

		c.JSON(http.StatusOK, manager.GetConfig())
	}
}

// UpdateLimitsConfig updates the quota limits configuration
func UpdateLimitsConfig(manager *limits.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Limits manager not initialized"})
			return
		}

		var config limits.Config
		if err := c.ShouldBindJSON(&config); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		if err := manager.UpdateConfig(config); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Limits configuration updated successfully",
			"config":  manager.GetConfig(),
		})
	}
}
