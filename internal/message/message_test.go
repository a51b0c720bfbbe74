package message

import "testing"

func f(v float64) *float64 { return &v }

func TestCosts(t *testing.T) {
	msgs := []Message{
		System("policy"),
		{Role: RoleUser, Content: "hi", Cost: f(0.01)},
		{Role: RoleAssistant, Content: "hello", Cost: f(0.02)},
		Tool("c1", "weather", "sunny", false),
		{Role: RoleAssistant, Content: "bye", Cost: f(0.03)},
	}
	agent, user, ok := Costs(msgs)
	if !ok {
		t.Fatal("all priced messages present, costs should be known")
	}
	if agent != 0.05 {
		t.Errorf("agent cost = %v, want 0.05", agent)
	}
	if user != 0.01 {
		t.Errorf("user cost = %v, want 0.01", user)
	}
}

func TestCosts_MissingCost(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello", Cost: f(0.02)},
	}
	if _, _, ok := Costs(msgs); ok {
		t.Error("a message without cost makes the totals unknown")
	}
}

func TestIsToolCall(t *testing.T) {
	m := Message{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "x"}}}
	if !m.IsToolCall() {
		t.Error("assistant with tool calls should report IsToolCall")
	}
	m = Message{Role: RoleAssistant, Content: "plain"}
	if m.IsToolCall() {
		t.Error("plain assistant reply is not a tool call")
	}
}
