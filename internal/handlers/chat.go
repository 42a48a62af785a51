package handlers

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sidelinehq/coach-backend/internal/chatlog"
	"github.com/sidelinehq/coach-backend/internal/coach"
	"github.com/sidelinehq/coach-backend/internal/middleware"
	"github.com/sidelinehq/coach-backend/internal/providers"
	"github.com/sidelinehq/coach-backend/internal/quota"
	"github.com/sidelinehq/coach-backend/internal/types"
)

const maxMessagesPerRequest = 100

// ChatHandler validates a chat request, reserves quota for it, and forwards
// it to the hosted model. Quota rejections come back as 429 with a reason
// code plus a usage snapshot so the UI can show "used X of Y, resets in Z".
func ChatHandler(quotaSvc *quota.Service, client *providers.Client, chatLog *chatlog.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
			return
		}

		req.ConversationID = strings.TrimSpace(req.ConversationID)
		if req.ConversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "conversationId is required"})
			return
		}
		if len(req.Messages) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "messages must not be empty"})
			return
		}
		if len(req.Messages) > maxMessagesPerRequest {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "too many messages"})
			return
		}
		for _, msg := range req.Messages {
			if msg.Role != "user" && msg.Role != "assistant" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "message role must be user or assistant"})
				return
			}
		}

		identity := middleware.ClientIdentity(c)

		res := quotaSvc.Consume(identity, req.ConversationID)
		if !res.Allowed {
			log.Printf("🚫 [Quota] %s rejected for %s/%s", res.Reason, identity, req.ConversationID)
			recordChat(chatLog, chatlog.Entry{
				Identity:       identity,
				ConversationID: req.ConversationID,
				Verdict:        chatlog.VerdictRejected,
				Reason:         string(res.Reason),
				HTTPStatus:     http.StatusTooManyRequests,
			})
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": string(res.Reason),
				"usage": res.Snapshot,
			})
			return
		}

		system := coach.BuildSystemPrompt(req.Profile, req.ResumeText)

		start := time.Now()
		resp, err := client.CreateMessage(c.Request.Context(), system, req.Messages, req.Stream)
		if err != nil {
			log.Printf("⚠️ Provider request failed: %v", err)
			recordChat(chatLog, chatlog.Entry{
				Identity:       identity,
				ConversationID: req.ConversationID,
				Verdict:        chatlog.VerdictAllowed,
				Model:          client.Model(),
				HTTPStatus:     http.StatusBadGateway,
				DurationMs:     time.Since(start).Milliseconds(),
				Stream:         req.Stream,
				Error:          err.Error(),
			})
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider_unavailable"})
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
			msg := providers.ParseErrorMessage(body)
			log.Printf("⚠️ Provider returned %d: %s", resp.StatusCode, msg)
			recordChat(chatLog, chatlog.Entry{
				Identity:       identity,
				ConversationID: req.ConversationID,
				Verdict:        chatlog.VerdictAllowed,
				Model:          client.Model(),
				HTTPStatus:     resp.StatusCode,
				DurationMs:     time.Since(start).Milliseconds(),
				Stream:         req.Stream,
				Error:          msg,
			})
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider_error"})
			return
		}

		if req.Stream {
			streamChat(c, resp, chatLog, identity, req.ConversationID, client.Model(), start)
			return
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			log.Printf("⚠️ Failed to read provider response: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider_error"})
			return
		}

		completion := providers.ParseCompletion(body)
		recordChat(chatLog, chatlog.Entry{
			Identity:       identity,
			ConversationID: req.ConversationID,
			Verdict:        chatlog.VerdictAllowed,
			Model:          completion.Model,
			HTTPStatus:     http.StatusOK,
			DurationMs:     time.Since(start).Milliseconds(),
			InputTokens:    completion.Usage.InputTokens,
			OutputTokens:   completion.Usage.OutputTokens,
		})

		c.JSON(http.StatusOK, gin.H{
			"conversationId": req.ConversationID,
			"reply":          completion.Text,
			"model":          completion.Model,
			"usage":          completion.Usage,
			"quota": gin.H{
				"dailyRemaining":        res.DailyRemaining,
				"conversationRemaining": res.ConversationRemaining,
			},
		})
	}
}

// streamChat forwards provider SSE events to the client as they arrive.
func streamChat(c *gin.Context, resp *http.Response, chatLog *chatlog.Manager, identity, conversationID, model string, start time.Time) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	var usage providers.Usage
	events, errs := providers.StreamEvents(resp.Body, &usage)

	for line := range events {
		if _, err := c.Writer.WriteString(line); err != nil {
			// Client went away; drain the provider stream so usage is final.
			for range events {
			}
			break
		}
		if line == "\n" {
			c.Writer.Flush()
		}
	}

	if err := <-errs; err != nil {
		log.Printf("⚠️ Provider stream error: %v", err)
	}
	c.Writer.Flush()

	recordChat(chatLog, chatlog.Entry{
		Identity:       identity,
		ConversationID: conversationID,
		Verdict:        chatlog.VerdictAllowed,
		Model:          model,
		HTTPStatus:     http.StatusOK,
		DurationMs:     time.Since(start).Milliseconds(),
		InputTokens:    usage.InputTokens,
		OutputTokens:   usage.OutputTokens,
		Stream:         true,
	})
}

// recordChat writes a chat log entry; the log is optional.
func recordChat(chatLog *chatlog.Manager, e chatlog.Entry) {
	if chatLog == nil {
		return
	}
	if err := chatLog.Record(e); err != nil {
		log.Printf("⚠️ Failed to record chat log: %v", err)
	}
}
