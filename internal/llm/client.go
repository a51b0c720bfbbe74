// Package llm is the OpenAI-compatible chat-completions client. Request
// and response shapes come from go-openai; the request body itself is
// marshaled by hand so prompt-cache markers can be injected for model
// families whose gateways honor them.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	openailib "github.com/sashabaranov/go-openai"

	"github.com/vitabench/vita/internal/config"
	"github.com/vitabench/vita/internal/message"
	"github.com/vitabench/vita/internal/retry"
)

const (
	maxTransportRetries = 3
	initialBackoff      = time.Second
	cacheMarkerWindow   = 3
)

// Client talks to one configured model endpoint.
type Client struct {
	model  config.Model
	seed   *int
	client *http.Client
}

// New builds a client for a model configuration.
func New(model config.Model) *Client {
	timeout := time.Duration(model.Timeout) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSeconds * time.Second
	}
	return &Client{
		model:  model,
		seed:   model.Seed,
		client: &http.Client{Timeout: timeout},
	}
}

// ModelName returns the configured model id.
func (c *Client) ModelName() string { return c.model.Name }

// SetSeed overrides the sampling seed (used for per-trial determinism).
func (c *Client) SetSeed(seed int) {
	if c.seed != nil {
		log.Printf("[LLM] Seed is already set to %d, resetting it to %d", *c.seed, seed)
	}
	c.seed = &seed
}

// Generate sends system+history messages (plus optional tools) and returns
// the assistant message with cost and usage attached.
func (c *Client) Generate(ctx context.Context, messages []message.Message, tools []map[string]any, toolChoice string) (message.Message, error) {
	if len(messages) == 0 {
		return message.Message{}, fmt.Errorf("no messages to send")
	}
	body := map[string]any{
		"model":    c.model.Name,
		"messages": c.formatMessages(messages),
		"stream":   false,
	}
	if len(tools) > 0 {
		body["tools"] = tools
		if toolChoice == "" {
			toolChoice = "auto"
		}
		body["tool_choice"] = toolChoice
	}
	if c.model.Temperature != nil {
		body["temperature"] = *c.model.Temperature
	}
	if c.model.MaxTokens > 0 {
		body["max_tokens"] = c.model.MaxTokens
	}
	if c.seed != nil {
		body["seed"] = *c.seed
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return message.Message{}, fmt.Errorf("encode request: %w", err)
	}

	resp, _, err := retry.Do(ctx, maxTransportRetries+1, initialBackoff, func() (*openailib.ChatCompletionResponse, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		return message.Message{}, fmt.Errorf("LLM call failed: %w", err)
	}
	return c.decode(resp)
}

// post performs one HTTP round trip. HTTP 500 and transport errors are
// retryable; other non-2xx statuses abort immediately.
func (c *Client) post(ctx context.Context, payload []byte) (*openailib.ChatCompletionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.model.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, retry.Stop(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.model.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.model.APIKey)
	}
	for k, v := range c.model.Headers {
		req.Header.Set(k, v)
	}
	httpResp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[LLM] Request exception, retrying: %v", err)
		return nil, err
	}
	defer httpResp.Body.Close()
	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode == http.StatusInternalServerError {
		log.Printf("[LLM] API returned 500 error, retrying")
		return nil, fmt.Errorf("API returned 500: %s", strings.TrimSpace(string(data)))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, retry.Stop(fmt.Errorf("API returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(data))))
	}
	var parsed openailib.ChatCompletionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, retry.Stop(fmt.Errorf("invalid API response format: %w", err))
	}
	return &parsed, nil
}

func (c *Client) decode(resp *openailib.ChatCompletionResponse) (message.Message, error) {
	if len(resp.Choices) == 0 {
		return message.Message{}, fmt.Errorf("no choices returned from LLM")
	}
	choice := resp.Choices[0].Message
	if choice.Role != openailib.ChatMessageRoleAssistant {
		return message.Message{}, fmt.Errorf("the response should be an assistant message, got %q", choice.Role)
	}
	usage := &message.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	cost := c.Cost(usage)

	out := message.Message{
		Role:    message.RoleAssistant,
		Content: choice.Content,
		Cost:    &cost,
		Usage:   usage,
	}
	if raw, err := json.Marshal(resp.Choices[0]); err == nil {
		out.Raw = raw
	}
	for _, tc := range choice.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return message.Message{}, fmt.Errorf("tool call %s has invalid arguments: %w", tc.Function.Name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, message.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}

// Cost prices a usage record with the model's per-million-token prices;
// missing prices yield zero.
func (c *Client) Cost(usage *message.Usage) float64 {
	if usage == nil || c.model.Cost == nil {
		return 0
	}
	prompt, completion := c.model.Cost.PromptPrice, c.model.Cost.CompletionPrice
	if prompt == 0 || completion == 0 {
		return 0
	}
	return (prompt*float64(usage.PromptTokens) + completion*float64(usage.CompletionTokens)) / 1_000_000
}

// cacheMarkersEnabled reports whether this model family accepts ephemeral
// prompt-cache markers on text blocks.
func (c *Client) cacheMarkersEnabled() bool {
	name := strings.ToLower(c.model.Name)
	return strings.Contains(name, "claude") || strings.Contains(name, "minimax")
}

// formatMessages renders the trajectory in OpenAI wire shape. For cache-
// marker models, the last up-to-three messages carry their content as text
// blocks with an ephemeral cache_control marker.
func (c *Client) formatMessages(messages []message.Message) []map[string]any {
	formatted := make([]map[string]any, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		entry := map[string]any{"role": m.Role}
		switch m.Role {
		case message.RoleAssistant:
			entry["content"] = m.Content
			if m.IsToolCall() {
				calls := make([]map[string]any, len(m.ToolCalls))
				for j, tc := range m.ToolCalls {
					args, _ := json.Marshal(tc.Arguments)
					calls[j] = map[string]any{
						"id":   tc.ID,
						"type": "function",
						"function": map[string]any{
							"name":      tc.Name,
							"arguments": string(args),
						},
					}
				}
				entry["tool_calls"] = calls
			}
		case message.RoleTool:
			entry["content"] = m.Content
			entry["tool_call_id"] = m.ToolID
			entry["name"] = m.Name
		default:
			entry["content"] = m.Content
		}
		formatted = append(formatted, entry)
	}
	if c.cacheMarkersEnabled() {
		start := len(formatted) - cacheMarkerWindow
		if start < 0 {
			start = 0
		}
		for i := start; i < len(formatted); i++ {
			content, ok := formatted[i]["content"].(string)
			if !ok || content == "" {
				continue
			}
			formatted[i]["content"] = []map[string]any{{
				"type":          "text",
				"text":          content,
				"cache_control": map[string]any{"type": "ephemeral"},
			}}
		}
	}
	return formatted
}
