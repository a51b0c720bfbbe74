package user

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
	"github.com/vitabench/vita/internal/task"
)

func stubClient(t *testing.T, content string, requestBody *map[string]any) *llm.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestBody != nil {
			raw, _ := io.ReadAll(r.Body)
			json.Unmarshal(raw, requestBody)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": content}}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5},
		})
	}))
	t.Cleanup(srv.Close)
	return llm.New(config.Model{
		Name: "gpt-4.1", BaseURL: srv.URL, Timeout: 5,
		Cost: &config.Cost{PromptPrice: 1, CompletionPrice: 1},
	})
}

func scenario() task.UserScenario {
	return task.UserScenario{UserProfile: map[string]any{
		"name": "张三", "goal": "point a delivery order at home",
	}}
}

func TestSimulator_ProducesUserMessage(t *testing.T) {
	var body map[string]any
	s := NewSimulator(stubClient(t, "我想点个外卖", &body), scenario(), lang.Chinese)
	s.Reset(nil)
	out, err := s.GenerateNext(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if out.Role != message.RoleUser {
		t.Errorf("the simulator's replies are user turns, got %s", out.Role)
	}
	if out.Cost == nil {
		t.Error("user turns carry their LLM cost")
	}
	system := body["messages"].([]any)[0].(map[string]any)
	if !strings.Contains(system["content"].(string), "张三") {
		t.Errorf("system prompt should embed the profile, got %q", system["content"])
	}
}

func TestSimulator_MirrorsRoles(t *testing.T) {
	var body map[string]any
	s := NewSimulator(stubClient(t, "好的", &body), scenario(), lang.Chinese)
	s.Reset(nil)
	if _, err := s.GenerateNext(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GenerateNext(context.Background(), "需要什么帮助？"); err != nil {
		t.Fatal(err)
	}
	wire := body["messages"].([]any)
	// system, its own first turn (assistant on the wire), the agent's
	// reply (user on the wire)
	if len(wire) != 3 {
		t.Fatalf("expected 3 wire messages, got %d", len(wire))
	}
	if wire[1].(map[string]any)["role"] != "assistant" {
		t.Errorf("the simulator's own turns are assistant on the wire, got %v", wire[1])
	}
	if wire[2].(map[string]any)["role"] != "user" {
		t.Errorf("the agent's reply is a user turn on the wire, got %v", wire[2])
	}
}

func TestIsStop(t *testing.T) {
	m := message.User("everything is done ###STOP###")
	if !IsStop(&m) {
		t.Error("stop token anywhere in the content ends the simulation")
	}
	m = message.User("not finished yet")
	if IsStop(&m) {
		t.Error("ordinary messages must not stop the simulation")
	}
}

func TestDummy_AlwaysStops(t *testing.T) {
	var d Dummy
	out, err := d.GenerateNext(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if !IsStop(&out) {
		t.Errorf("dummy user must stop immediately, got %q", out.Content)
	}
	if out.Cost == nil || *out.Cost != 0 {
		t.Error("dummy user turns are free")
	}
}
