package sim

import (
	"context"
	"testing"
	"time"

	"github.com/vitabench/vita/internal/domains/delivery"
	"github.com/vitabench/vita/internal/entity"
	"github.com/vitabench/vita/internal/env"
	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/message"
	"github.com/vitabench/vita/internal/task"
)

// scriptedAgent replays a fixed list of assistant messages.
type scriptedAgent struct {
	script []message.Message
	next   int
	inputs [][]message.Message
}

func (a *scriptedAgent) Reset(history []message.Message) error { return nil }

func (a *scriptedAgent) GenerateNext(_ context.Context, incoming ...message.Message) (message.Message, error) {
	a.inputs = append(a.inputs, incoming)
	if a.next >= len(a.script) {
		return message.Message{Role: message.RoleAssistant, Content: "done"}, nil
	}
	m := a.script[a.next]
	a.next++
	return m, nil
}

func (a *scriptedAgent) SetSeed(int) {}

// scriptedUser replays user turns, then stops.
type scriptedUser struct {
	script []string
	next   int
}

func (u *scriptedUser) Reset([]message.Message) error { return nil }

func (u *scriptedUser) GenerateNext(context.Context, string) (message.Message, error) {
	if u.next >= len(u.script) {
		return message.User("###STOP###"), nil
	}
	m := message.User(u.script[u.next])
	u.next++
	return m, nil
}

func (u *scriptedUser) SetSeed(int) {}

func testEnvironment(t *testing.T) *env.Environment {
	t.Helper()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	db := &delivery.DB{
		World: &env.World{
			Time:   "2025-06-01 12:00:00",
			UserID: "user_1",
			Clock:  func() time.Time { return fixed },
			Orders: map[string]*entity.Order{},
		},
		Stores: map[string]*delivery.Store{},
	}
	return env.New(delivery.New(db, lang.English))
}

func assistantWithCalls(calls ...message.ToolCall) message.Message {
	return message.Message{Role: message.RoleAssistant, ToolCalls: calls}
}

func newOrchestrator(t *testing.T, ag Agent, us *scriptedUser, limits Limits) *Orchestrator {
	t.Helper()
	return &Orchestrator{
		Task:        task.Task{ID: "task_1"},
		Agent:       ag,
		User:        us,
		Environment: testEnvironment(t),
		Limits:      limits,
	}
}

func TestRun_MaxStepsZero(t *testing.T) {
	o := newOrchestrator(t, &scriptedAgent{}, &scriptedUser{}, Limits{MaxSteps: 0, MaxErrors: 10})
	run := o.Run(context.Background())
	if run.TerminationReason != TerminationMaxSteps {
		t.Errorf("max_steps=0 must terminate immediately, got %s", run.TerminationReason)
	}
	if len(run.Messages) != 0 {
		t.Errorf("no messages should be produced, got %d", len(run.Messages))
	}
}

func TestRun_UserStop(t *testing.T) {
	ag := &scriptedAgent{script: []message.Message{
		{Role: message.RoleAssistant, Content: "How can I help?"},
	}}
	us := &scriptedUser{script: []string{"hello"}}
	o := newOrchestrator(t, ag, us, Limits{MaxSteps: 100, MaxErrors: 10})
	run := o.Run(context.Background())
	if run.TerminationReason != TerminationUserStop {
		t.Fatalf("expected user_stop, got %s", run.TerminationReason)
	}
	// user hello, assistant reply, user stop
	if len(run.Messages) != 3 {
		t.Errorf("expected 3 messages, got %d", len(run.Messages))
	}
	if run.Messages[2].Content != "###STOP###" {
		t.Errorf("stop message should be recorded, got %q", run.Messages[2].Content)
	}
}

func TestRun_ToolLoopAndOrder(t *testing.T) {
	ag := &scriptedAgent{script: []message.Message{
		assistantWithCalls(
			message.ToolCall{ID: "c1", Name: "get_user_all_orders", Arguments: map[string]any{}},
			message.ToolCall{ID: "c2", Name: "get_user_historical_behaviors", Arguments: map[string]any{}},
		),
		{Role: message.RoleAssistant, Content: "You have no orders yet."},
	}}
	us := &scriptedUser{script: []string{"show my orders"}}
	o := newOrchestrator(t, ag, us, Limits{MaxSteps: 100, MaxErrors: 10})
	run := o.Run(context.Background())
	if run.TerminationReason != TerminationUserStop {
		t.Fatalf("expected user_stop, got %s", run.TerminationReason)
	}
	// user, assistant(tool calls), tool, tool, assistant, user stop
	if len(run.Messages) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(run.Messages))
	}
	if run.Messages[2].ToolID != "c1" || run.Messages[3].ToolID != "c2" {
		t.Errorf("tool responses must retain call order, got %q then %q",
			run.Messages[2].ToolID, run.Messages[3].ToolID)
	}
	// The tool batch flows back into the agent's next turn.
	last := ag.inputs[len(ag.inputs)-1]
	if len(last) != 2 || last[0].Role != message.RoleTool {
		t.Errorf("agent should receive the tool batch, got %+v", last)
	}
}

func TestRun_UnknownToolCountsAsError(t *testing.T) {
	ag := &scriptedAgent{script: []message.Message{
		assistantWithCalls(message.ToolCall{ID: "c1", Name: "no_such_tool", Arguments: map[string]any{}}),
	}}
	us := &scriptedUser{script: []string{"hi"}}
	o := newOrchestrator(t, ag, us, Limits{MaxSteps: 100, MaxErrors: 0})
	run := o.Run(context.Background())
	if run.TerminationReason != TerminationTooManyErrors {
		t.Fatalf("max_errors=0 must terminate on the first tool error, got %s", run.TerminationReason)
	}
	toolMsg := run.Messages[len(run.Messages)-1]
	if toolMsg.Content != "Tool 'no_such_tool' not found" {
		t.Errorf("unexpected tool error content: %q", toolMsg.Content)
	}
	if !toolMsg.Error {
		t.Error("tool message should be flagged as an error")
	}
}

// loopingAgent keeps asking for the same tool forever.
type loopingAgent struct{}

func (loopingAgent) Reset([]message.Message) error { return nil }

func (loopingAgent) GenerateNext(context.Context, ...message.Message) (message.Message, error) {
	return assistantWithCalls(message.ToolCall{ID: "c", Name: "get_user_all_orders", Arguments: map[string]any{}}), nil
}

func (loopingAgent) SetSeed(int) {}

func TestRun_StepLimitExhaustion(t *testing.T) {
	us := &scriptedUser{script: []string{"hi"}}
	o := newOrchestrator(t, loopingAgent{}, us, Limits{MaxSteps: 2, MaxErrors: 10})
	run := o.Run(context.Background())
	if run.TerminationReason != TerminationMaxSteps {
		t.Errorf("a tool-looping agent must hit max_steps, got %s", run.TerminationReason)
	}
}

func TestRun_InvalidAgentMessage(t *testing.T) {
	ag := &scriptedAgent{script: []message.Message{
		{Role: message.RoleAssistant, Content: ""},
	}}
	us := &scriptedUser{script: []string{"hi"}}
	o := newOrchestrator(t, ag, us, Limits{MaxSteps: 100, MaxErrors: 10})
	run := o.Run(context.Background())
	if run.TerminationReason != TerminationInvalidAgentMessage {
		t.Errorf("empty assistant message must terminate, got %s", run.TerminationReason)
	}
}

func TestRun_AgentOpensWhenHistoryEndsWithUser(t *testing.T) {
	ag := &scriptedAgent{script: []message.Message{
		{Role: message.RoleAssistant, Content: "Sure, checking."},
	}}
	us := &scriptedUser{}
	o := newOrchestrator(t, ag, us, Limits{MaxSteps: 100, MaxErrors: 10})
	o.Task.MessageHistory = []message.Message{message.User("please check my order")}
	run := o.Run(context.Background())
	if run.TerminationReason != TerminationUserStop {
		t.Fatalf("expected user_stop, got %s", run.TerminationReason)
	}
	if run.Messages[0].Role != message.RoleUser || run.Messages[1].Role != message.RoleAssistant {
		t.Errorf("agent should have answered the seeded user message, got roles %s, %s",
			run.Messages[0].Role, run.Messages[1].Role)
	}
}

func TestRun_RecordsStateAndTimestamps(t *testing.T) {
	ag := &scriptedAgent{script: []message.Message{{Role: message.RoleAssistant, Content: "hello"}}}
	us := &scriptedUser{script: []string{"hi"}}
	o := newOrchestrator(t, ag, us, Limits{MaxSteps: 100, MaxErrors: 10})
	run := o.Run(context.Background())
	if len(run.States) == 0 {
		t.Error("final DB snapshot should be recorded")
	}
	if len(run.StartTime) != len("20060102_150405") || len(run.EndTime) != len("20060102_150405") {
		t.Errorf("timestamps must use YYYYMMDD_HHMMSS, got %q / %q", run.StartTime, run.EndTime)
	}
}
