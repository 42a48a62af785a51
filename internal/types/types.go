// Package types holds the request/response shapes shared between handlers.
package types

// ChatMessage is a single turn in a coaching conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// AthleteProfile carries the optional background the client supplies so the
// coach can tailor its advice.
type AthleteProfile struct {
	Sport          string `json:"sport,omitempty"`
	Level          string `json:"level,omitempty"` // e.g. "college", "semi-pro", "professional"
	YearsCompeting int    `json:"yearsCompeting,omitempty"`
	TargetIndustry string `json:"targetIndustry,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	ConversationID string          `json:"conversationId"`
	Messages       []ChatMessage   `json:"messages"`
	Profile        *AthleteProfile `json:"profile,omitempty"`
	ResumeText     string          `json:"resumeText,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}
