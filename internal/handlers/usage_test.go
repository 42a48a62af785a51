package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sidelinehq/coach-backend/internal/middleware"
	"github.com/sidelinehq/coach-backend/internal/quota"
)

func newUsageRouter(quotaSvc *quota.Service) *gin.Engine {
	r := gin.New()
	r.Use(middleware.IdentityMiddleware())
	r.GET("/api/usage", UsageHandler(quotaSvc))
	return r
}

func getUsage(t *testing.T, r *gin.Engine, url, remoteAddr string) quota.Snapshot {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snap quota.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to parse snapshot: %v", err)
	}
	return snap
}

func TestUsageHandler_FreshClientSeesZeroUsage(t *testing.T) {
	quotaSvc := quota.NewService(quota.Limits{Daily: 20, Conversation: 5})
	r := newUsageRouter(quotaSvc)

	snap := getUsage(t, r, "/api/usage?conversationId=c1", "192.0.2.20:40000")

	if snap.Daily.Used != 0 || snap.Daily.Remaining != 20 {
		t.Fatalf("expected daily 0/20 remaining, got used=%d remaining=%d", snap.Daily.Used, snap.Daily.Remaining)
	}
	if snap.Chat.Used != 0 || snap.Chat.Remaining != 5 {
		t.Fatalf("expected chat 0/5 remaining, got used=%d remaining=%d", snap.Chat.Used, snap.Chat.Remaining)
	}
	if snap.Daily.ResetAt == nil || snap.Daily.SecondsUntilReset == nil {
		t.Fatalf("expected daily reset fields to be set")
	}
	if snap.Chat.ResetAt != nil || snap.Chat.SecondsUntilReset != nil {
		t.Fatalf("expected chat reset fields to be null")
	}
}

func TestUsageHandler_ReflectsConsumedQuota(t *testing.T) {
	quotaSvc := quota.NewService(quota.Limits{Daily: 20, Conversation: 5})
	r := newUsageRouter(quotaSvc)

	quotaSvc.Consume("192.0.2.21", "c1")
	quotaSvc.Consume("192.0.2.21", "c1")
	quotaSvc.Consume("192.0.2.21", "c2")

	snap := getUsage(t, r, "/api/usage?conversationId=c1", "192.0.2.21:40000")
	if snap.Daily.Used != 3 {
		t.Fatalf("expected daily used 3, got %d", snap.Daily.Used)
	}
	if snap.Chat.Used != 2 {
		t.Fatalf("expected chat used 2 for c1, got %d", snap.Chat.Used)
	}

	snap = getUsage(t, r, "/api/usage?conversationId=c2", "192.0.2.21:40000")
	if snap.Chat.Used != 1 {
		t.Fatalf("expected chat used 1 for c2, got %d", snap.Chat.Used)
	}
}

func TestUsageHandler_ReadIsIdempotent(t *testing.T) {
	quotaSvc := quota.NewService(quota.DefaultLimits())
	r := newUsageRouter(quotaSvc)

	for i := 0; i < 5; i++ {
		snap := getUsage(t, r, "/api/usage?conversationId=c1", "192.0.2.22:40000")
		if snap.Daily.Used != 0 {
			t.Fatalf("poll %d: usage read mutated counts, daily used=%d", i+1, snap.Daily.Used)
		}
	}
}
