// Package providers contains the client for the hosted language-model API.
package providers

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/sidelinehq/coach-backend/internal/config"
	"github.com/sidelinehq/coach-backend/internal/types"
)

const anthropicVersion = "2023-06-01"

// Usage carries the token counts reported by the provider.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Completion is a non-streaming model reply.
type Completion struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

// Client talks to an Anthropic-style messages API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewClient creates a provider client from the environment configuration.
func NewClient(envCfg *config.EnvConfig) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(envCfg.ProviderBaseURL, "/"),
		apiKey:    envCfg.ProviderAPIKey,
		model:     envCfg.Model,
		maxTokens: envCfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(envCfg.RequestTimeout) * time.Second,
		},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// CreateMessage sends a messages request and returns the raw HTTP response.
// The caller owns the response body.
func (c *Client) CreateMessage(ctx context.Context, system string, messages []types.ChatMessage, stream bool) (*http.Response, error) {
	body, err := c.buildRequestBody(system, messages, stream)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	return resp, nil
}

// buildRequestBody assembles the JSON body without an intermediate struct;
// message history is passed through as supplied by the client.
func (c *Client) buildRequestBody(system string, messages []types.ChatMessage, stream bool) ([]byte, error) {
	body := []byte(`{}`)

	var err error
	if body, err = sjson.SetBytes(body, "model", c.model); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "max_tokens", c.maxTokens); err != nil {
		return nil, err
	}
	if system != "" {
		if body, err = sjson.SetBytes(body, "system", system); err != nil {
			return nil, err
		}
	}
	if stream {
		if body, err = sjson.SetBytes(body, "stream", true); err != nil {
			return nil, err
		}
	}
	for i, msg := range messages {
		if body, err = sjson.SetBytes(body, fmt.Sprintf("messages.%d.role", i), msg.Role); err != nil {
			return nil, err
		}
		if body, err = sjson.SetBytes(body, fmt.Sprintf("messages.%d.content", i), msg.Content); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// ParseCompletion extracts the reply text and usage from a non-streaming
// response body.
func ParseCompletion(body []byte) Completion {
	var text strings.Builder
	for _, block := range gjson.GetBytes(body, "content").Array() {
		if block.Get("type").String() == "text" {
			text.WriteString(block.Get("text").String())
		}
	}

	return Completion{
		Text:  text.String(),
		Model: gjson.GetBytes(body, "model").String(),
		Usage: Usage{
			InputTokens:  int(gjson.GetBytes(body, "usage.input_tokens").Int()),
			OutputTokens: int(gjson.GetBytes(body, "usage.output_tokens").Int()),
		},
	}
}

// ParseErrorMessage extracts a provider error message from an error response
// body, falling back to the raw body.
func ParseErrorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
		return msg
	}
	return strings.TrimSpace(string(body))
}

// AccumulateStreamUsage updates usage from a single SSE data line.
// message_start carries input tokens, message_delta the final output count.
func AccumulateStreamUsage(line string, usage *Usage) {
	payload, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return
	}
	payload = strings.TrimSpace(payload)

	if n := gjson.Get(payload, "message.usage.input_tokens").Int(); n > 0 {
		usage.InputTokens = int(n)
	}
	if n := gjson.Get(payload, "usage.output_tokens").Int(); n > 0 {
		usage.OutputTokens = int(n)
	}
}

// StreamEvents reads SSE lines from the provider response body and forwards
// them on the returned channel, accumulating token usage along the way. The
// usage pointer is fully populated once the event channel closes.
func StreamEvents(body io.ReadCloser, usage *Usage) (<-chan string, <-chan error) {
	eventChan := make(chan string, 100)
	errChan := make(chan error, 1)

	go func() {
		defer close(eventChan)
		defer close(errChan)
		defer body.Close()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()

			// Forward SSE framing as-is, including blank separators.
			if strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "data:") || line == "" {
				if usage != nil {
					AccumulateStreamUsage(line, usage)
				}
				eventChan <- line + "\n"
			}
		}

		if err := scanner.Err(); err != nil {
			errChan <- err
		}
	}()

	return eventChan, errChan
}
