package chatlog

import "time"

// Verdict values recorded per chat request.
const (
	VerdictAllowed  = "allowed"
	VerdictRejected = "rejected"
)

// Entry is one chat request record.
type Entry struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	Identity       string    `json:"identity"`
	ConversationID string    `json:"conversationId"`
	Verdict        string    `json:"verdict"`         // allowed, rejected
	Reason         string    `json:"reason,omitempty"` // quota rejection reason
	Model          string    `json:"model,omitempty"`
	HTTPStatus     int       `json:"httpStatus"`
	DurationMs     int64     `json:"durationMs"`
	InputTokens    int       `json:"inputTokens"`
	OutputTokens   int       `json:"outputTokens"`
	Stream         bool      `json:"stream"`
	Error          string    `json:"error,omitempty"`
}
