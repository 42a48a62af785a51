package providers

import (
	"io"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/sidelinehq/coach-backend/internal/config"
	"github.com/sidelinehq/coach-backend/internal/types"
)

func testClient() *Client {
	return NewClient(&config.EnvConfig{
		ProviderBaseURL: "https://api.example.com/",
		ProviderAPIKey:  "key",
		Model:           "test-model",
		MaxTokens:       256,
		RequestTimeout:  5,
	})
}

func TestBuildRequestBody(t *testing.T) {
	c := testClient()

	body, err := c.buildRequestBody("be helpful", []types.ChatMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	}, true)
	if err != nil {
		t.Fatalf("buildRequestBody() error: %v", err)
	}

	if got := gjson.GetBytes(body, "model").String(); got != "test-model" {
		t.Fatalf("model = %q", got)
	}
	if got := gjson.GetBytes(body, "max_tokens").Int(); got != 256 {
		t.Fatalf("max_tokens = %d", got)
	}
	if got := gjson.GetBytes(body, "system").String(); got != "be helpful" {
		t.Fatalf("system = %q", got)
	}
	if !gjson.GetBytes(body, "stream").Bool() {
		t.Fatalf("stream not set")
	}
	if got := gjson.GetBytes(body, "messages.#").Int(); got != 2 {
		t.Fatalf("messages count = %d", got)
	}
	if got := gjson.GetBytes(body, "messages.1.content").String(); got != "hi" {
		t.Fatalf("messages.1.content = %q", got)
	}
}

func TestBuildRequestBody_OmitsEmptySystemAndStream(t *testing.T) {
	c := testClient()

	body, err := c.buildRequestBody("", []types.ChatMessage{{Role: "user", Content: "hello"}}, false)
	if err != nil {
		t.Fatalf("buildRequestBody() error: %v", err)
	}
	if gjson.GetBytes(body, "system").Exists() {
		t.Fatalf("empty system was serialized")
	}
	if gjson.GetBytes(body, "stream").Exists() {
		t.Fatalf("stream=false was serialized")
	}
}

func TestParseCompletion(t *testing.T) {
	body := []byte(`{
		"model": "test-model",
		"content": [{"type":"text","text":"Hello "},{"type":"text","text":"athlete"}],
		"usage": {"input_tokens": 12, "output_tokens": 34}
	}`)

	got := ParseCompletion(body)
	if got.Text != "Hello athlete" {
		t.Fatalf("Text = %q", got.Text)
	}
	if got.Model != "test-model" {
		t.Fatalf("Model = %q", got.Model)
	}
	if got.Usage.InputTokens != 12 || got.Usage.OutputTokens != 34 {
		t.Fatalf("Usage = %+v", got.Usage)
	}
}

func TestParseErrorMessage(t *testing.T) {
	if got := ParseErrorMessage([]byte(`{"error":{"message":"overloaded"}}`)); got != "overloaded" {
		t.Fatalf("ParseErrorMessage() = %q", got)
	}
	if got := ParseErrorMessage([]byte("plain failure\n")); got != "plain failure" {
		t.Fatalf("ParseErrorMessage() fallback = %q", got)
	}
}

func TestStreamEvents_ForwardsAndAccumulatesUsage(t *testing.T) {
	sse := strings.Join([]string{
		"event: message_start",
		`data: {"type":"message_start","message":{"usage":{"input_tokens":9}}}`,
		"",
		"event: content_block_delta",
		`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"hi"}}`,
		"",
		"event: message_delta",
		`data: {"type":"message_delta","usage":{"output_tokens":21}}`,
		"",
	}, "\n")

	var usage Usage
	events, errs := StreamEvents(io.NopCloser(strings.NewReader(sse)), &usage)

	var forwarded []string
	for line := range events {
		forwarded = append(forwarded, line)
	}
	if err := <-errs; err != nil {
		t.Fatalf("stream error: %v", err)
	}

	if len(forwarded) != 9 {
		t.Fatalf("forwarded %d lines, want 9", len(forwarded))
	}
	if usage.InputTokens != 9 || usage.OutputTokens != 21 {
		t.Fatalf("usage = %+v, want 9/21", usage)
	}
}
