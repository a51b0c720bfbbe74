package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vitabench/vita/internal/config"
	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/llm"
	"github.com/vitabench/vita/internal/message"
)

func stubClient(t *testing.T, reply map[string]any, requestBody *map[string]any) *llm.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestBody != nil {
			raw, _ := io.ReadAll(r.Body)
			json.Unmarshal(raw, requestBody)
		}
		json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return llm.New(config.Model{Name: "gpt-4.1", BaseURL: srv.URL, Timeout: 5})
}

func textReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": content}}},
		"usage":   map[string]any{"prompt_tokens": 1, "completion_tokens": 1},
	}
}

func TestNewLLMAgent_RequiresTime(t *testing.T) {
	if _, err := NewLLMAgent(nil, "policy {time}", "", lang.Chinese, nil); err == nil {
		t.Error("an empty simulated time must be rejected")
	}
	if _, err := NewLLMAgent(nil, "policy {time}", "not a time", lang.Chinese, nil); err == nil {
		t.Error("an unparseable simulated time must be rejected")
	}
}

func TestLLMAgent_SystemPromptEmbedsWeekday(t *testing.T) {
	var body map[string]any
	client := stubClient(t, textReply("ok"), &body)
	// 2025-06-01 is a Sunday.
	a, err := NewLLMAgent(client, "Now: {time}.", "2025-06-01 12:00:00", lang.English, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Reset(nil); err != nil {
		t.Fatal(err)
	}
	if _, err := a.GenerateNext(context.Background(), message.User("hi")); err != nil {
		t.Fatal(err)
	}
	system := body["messages"].([]any)[0].(map[string]any)
	if system["role"] != "system" {
		t.Fatalf("first wire message must be the system prompt, got %v", system)
	}
	if !strings.Contains(system["content"].(string), "2025-06-01 12:00:00 Sunday") {
		t.Errorf("system prompt should embed time and weekday, got %q", system["content"])
	}
}

func TestLLMAgent_HistoryAccumulates(t *testing.T) {
	var body map[string]any
	client := stubClient(t, textReply("reply"), &body)
	a, err := NewLLMAgent(client, "{time}", "2025-06-01 12:00:00", lang.Chinese, nil)
	if err != nil {
		t.Fatal(err)
	}
	a.Reset(nil)
	if _, err := a.GenerateNext(context.Background(), message.User("first")); err != nil {
		t.Fatal(err)
	}
	if _, err := a.GenerateNext(context.Background(), message.User("second")); err != nil {
		t.Fatal(err)
	}
	// system + first + reply + second
	if n := len(body["messages"].([]any)); n != 4 {
		t.Errorf("expected 4 wire messages on the second call, got %d", n)
	}
}

func TestLLMAgent_RejectsBadHistory(t *testing.T) {
	client := stubClient(t, textReply("ok"), nil)
	a, err := NewLLMAgent(client, "{time}", "2025-06-01 12:00:00", lang.Chinese, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Reset([]message.Message{message.System("nope")}); err == nil {
		t.Error("system messages are not valid agent history")
	}
}

func TestSoloAgent_RejectsPlainReplies(t *testing.T) {
	client := stubClient(t, textReply("just chatting"), nil)
	a, err := NewSoloAgent(client, "2025-06-01 12:00:00", lang.English, nil)
	if err != nil {
		t.Fatal(err)
	}
	a.Reset(nil)
	_, err = a.GenerateNext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "LLMSoloAgent only supports tool calls before ###STOP###") {
		t.Errorf("plain reply must be rejected with the contract message, got %v", err)
	}
}

func TestSoloAgent_AcceptsStop(t *testing.T) {
	client := stubClient(t, textReply("###STOP###"), nil)
	a, err := NewSoloAgent(client, "2025-06-01 12:00:00", lang.English, nil)
	if err != nil {
		t.Fatal(err)
	}
	a.Reset(nil)
	out, err := a.GenerateNext(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Content, "###STOP###") {
		t.Errorf("stop reply should pass through, got %q", out.Content)
	}
}
