package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/vitabench/vita/internal/config"
	"github.com/vitabench/vita/internal/message"
)

func chatResponse(content string, toolCalls []map[string]any) map[string]any {
	msg := map[string]any{"role": "assistant", "content": content}
	if toolCalls != nil {
		msg["tool_calls"] = toolCalls
	}
	return map[string]any{
		"choices": []map[string]any{{"message": msg}},
		"usage":   map[string]any{"prompt_tokens": 100, "completion_tokens": 50},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, name string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cost := &config.Cost{PromptPrice: 1.0, CompletionPrice: 2.0}
	return New(config.Model{
		Name:    name,
		BaseURL: srv.URL,
		APIKey:  "sk-test",
		Timeout: 5,
		Cost:    cost,
	}), srv
}

func TestGenerate_ContentAndCost(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("missing auth header, got %q", got)
		}
		json.NewEncoder(w).Encode(chatResponse("hello there", nil))
	}, "gpt-4.1")

	out, err := client.Generate(context.Background(), []message.Message{message.User("hi")}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if out.Content != "hello there" {
		t.Errorf("content = %q", out.Content)
	}
	// (1.0*100 + 2.0*50) / 1e6
	if out.Cost == nil || *out.Cost != 0.0002 {
		t.Errorf("cost = %v, want 0.0002", out.Cost)
	}
	if out.Usage == nil || out.Usage.PromptTokens != 100 {
		t.Errorf("usage = %+v", out.Usage)
	}
}

func TestGenerate_ToolCalls(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse("", []map[string]any{{
			"id":   "call_1",
			"type": "function",
			"function": map[string]any{
				"name":      "pay_delivery_order",
				"arguments": `{"order_id": "OT1"}`,
			},
		}}))
	}, "gpt-4.1")

	out, err := client.Generate(context.Background(), []message.Message{message.User("pay")}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(out.ToolCalls))
	}
	tc := out.ToolCalls[0]
	if tc.ID != "call_1" || tc.Name != "pay_delivery_order" {
		t.Errorf("tool call = %+v", tc)
	}
	if tc.Arguments["order_id"] != "OT1" {
		t.Errorf("arguments should be decoded from the JSON string, got %v", tc.Arguments)
	}
}

func TestGenerate_Retries500(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(chatResponse("recovered", nil))
	}, "gpt-4.1")

	out, err := client.Generate(context.Background(), []message.Message{message.User("hi")}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if out.Content != "recovered" {
		t.Errorf("content = %q", out.Content)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestGenerate_NoRetryOn4xx(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "bad request"}`)
	}, "gpt-4.1")

	if _, err := client.Generate(context.Background(), []message.Message{message.User("hi")}, nil, ""); err == nil {
		t.Fatal("4xx must fail")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("4xx must not retry, got %d attempts", calls)
	}
}

func TestGenerate_CacheMarkersForClaude(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		json.NewEncoder(w).Encode(chatResponse("ok", nil))
	}, "anthropic.claude-3.7-sonnet")

	msgs := []message.Message{
		message.System("policy"),
		message.User("one"),
		{Role: message.RoleAssistant, Content: "two"},
		message.User("three"),
		{Role: message.RoleAssistant, Content: "four"},
	}
	if _, err := client.Generate(context.Background(), msgs, nil, ""); err != nil {
		t.Fatal(err)
	}
	wire := body["messages"].([]any)
	if len(wire) != 5 {
		t.Fatalf("expected 5 wire messages, got %d", len(wire))
	}
	// Only the last three carry cache-marked text blocks.
	for i, raw := range wire {
		entry := raw.(map[string]any)
		_, isBlocks := entry["content"].([]any)
		if i < 2 && isBlocks {
			t.Errorf("message %d should stay a plain string", i)
		}
		if i >= 2 && !isBlocks {
			t.Errorf("message %d should carry cache-marked blocks", i)
		}
	}
	blocks := wire[4].(map[string]any)["content"].([]any)
	block := blocks[0].(map[string]any)
	if block["cache_control"].(map[string]any)["type"] != "ephemeral" {
		t.Errorf("expected ephemeral cache marker, got %v", block)
	}
}

func TestGenerate_NoCacheMarkersForOtherModels(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		json.NewEncoder(w).Encode(chatResponse("ok", nil))
	}, "gpt-4.1")

	if _, err := client.Generate(context.Background(), []message.Message{message.User("hi")}, nil, ""); err != nil {
		t.Fatal(err)
	}
	entry := body["messages"].([]any)[0].(map[string]any)
	if _, isBlocks := entry["content"].([]any); isBlocks {
		t.Error("non-claude models keep plain string content")
	}
}

func TestCost_MissingPriceIsZero(t *testing.T) {
	client := New(config.Model{Name: "m", Cost: &config.Cost{PromptPrice: 1.0}})
	if got := client.Cost(&message.Usage{PromptTokens: 1000, CompletionTokens: 1000}); got != 0 {
		t.Errorf("missing completion price must zero the cost, got %v", got)
	}
	client = New(config.Model{Name: "m"})
	if got := client.Cost(&message.Usage{PromptTokens: 1000}); got != 0 {
		t.Errorf("missing cost block must zero the cost, got %v", got)
	}
}
