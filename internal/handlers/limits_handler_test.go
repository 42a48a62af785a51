package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sidelinehq/coach-backend/internal/limits"
)

func newLimitsRouter(t *testing.T) (*gin.Engine, *limits.Manager) {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "limits.json")
	manager, err := limits.NewManager(configFile, limits.Config{DailyLimit: 20, ConversationLimit: 5})
	if err != nil {
		t.Fatalf("failed to create limits manager: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	r := gin.New()
	r.GET("/api/limits", GetLimitsConfig(manager))
	r.PUT("/api/limits", UpdateLimitsConfig(manager))
	return r, manager
}

func TestGetLimitsConfig(t *testing.T) {
	r, _ := newLimitsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/limits", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var cfg limits.Config
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	if cfg.DailyLimit != 20 || cfg.ConversationLimit != 5 {
		t.Fatalf("expected 20/5, got %d/%d", cfg.DailyLimit, cfg.ConversationLimit)
	}
}

func TestUpdateLimitsConfig(t *testing.T) {
	r, manager := newLimitsRouter(t)

	body := `{"dailyLimit":50,"conversationLimit":10}`
	req := httptest.NewRequest(http.MethodPut, "/api/limits", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	cfg := manager.GetConfig()
	if cfg.DailyLimit != 50 || cfg.ConversationLimit != 10 {
		t.Fatalf("expected 50/10 after update, got %d/%d", cfg.DailyLimit, cfg.ConversationLimit)
	}
}

func TestUpdateLimitsConfig_RejectsInvalid(t *testing.T) {
	r, manager := newLimitsRouter(t)

	body := `{"dailyLimit":0,"conversationLimit":5}`
	req := httptest.NewRequest(http.MethodPut, "/api/limits", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if cfg := manager.GetConfig(); cfg.DailyLimit != 20 {
		t.Fatalf("invalid update must not change config, got daily=%d", cfg.DailyLimit)
	}
}
