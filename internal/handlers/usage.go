package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidelinehq/coach-backend/internal/middleware"
	"github.com/sidelinehq/coach-backend/internal/quota"
)

// UsageHandler reports current quota usage for the calling client. It is a
// pure read: safe to poll from the UI on every render, always HTTP 200, and
// a never-seen client simply gets all-zero counts.
// GET /api/usage?conversationId=...
func UsageHandler(quotaSvc *quota.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.ClientIdentity(c)
		conversationID := c.Query("conversationId")

		snapshot := quotaSvc.Snapshot(identity, conversationID)
		c.JSON(http.StatusOK, snapshot)
	}
}
