package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sidelinehq/coach-backend/internal/chatlog"
)

// ChatLogHandler serves the admin/debug chat request log.
type ChatLogHandler struct {
	manager *chatlog.Manager
}

// NewChatLogHandler creates the chat log handler.
func NewChatLogHandler(m *chatlog.Manager) *ChatLogHandler {
	return &ChatLogHandler{manager: m}
}

// GetLogs returns the most recent chat request records.
// GET /api/logs?limit=N
func (h *ChatLogHandler) GetLogs(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	entries, err := h.manager.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  entries,
		"count": len(entries),
	})
}
