// Package agent holds the LLM-backed agent drivers: message-history state,
// system-prompt assembly and the call into the LLM service.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/llm"
	"github.com/vitabench/vita/internal/message"
	"github.com/vitabench/vita/internal/prompts"
)

// LLMAgent drives the assistant side of a simulation.
type LLMAgent struct {
	client       *llm.Client
	systemPrompt string
	tools        []map[string]any
	messages     []message.Message
}

// NewLLMAgent builds the agent for one simulation. The simulated time is a
// hard precondition: the system prompt embeds "<time> <weekday>".
func NewLLMAgent(client *llm.Client, instructions, simTime string, language lang.Language, tools []map[string]any) (*LLMAgent, error) {
	timeWithWeekday, err := formatSimTime(simTime, language)
	if err != nil {
		return nil, err
	}
	return &LLMAgent{
		client:       client,
		systemPrompt: prompts.AgentSystemPrompt(instructions, timeWithWeekday),
		tools:        tools,
	}, nil
}

func formatSimTime(simTime string, language lang.Language) (string, error) {
	if simTime == "" {
		return "", fmt.Errorf("agent requires the task's simulated time")
	}
	weekday, err := lang.Weekday(simTime, language)
	if err != nil {
		return "", fmt.Errorf("agent time: %w", err)
	}
	return simTime + " " + weekday, nil
}

// Reset seeds the agent's history. Only assistant, user and tool messages
// are valid agent history.
func (a *LLMAgent) Reset(history []message.Message) error {
	if err := validateHistory(history); err != nil {
		return err
	}
	a.messages = append([]message.Message(nil), history...)
	return nil
}

func validateHistory(history []message.Message) error {
	for i := range history {
		switch history[i].Role {
		case message.RoleAssistant, message.RoleUser, message.RoleTool:
		default:
			return fmt.Errorf("message history must contain only assistant, user, or tool messages, got %q", history[i].Role)
		}
	}
	return nil
}

// GenerateNext appends the incoming message(s) — one user message, or the
// tool responses of the previous assistant turn — calls the LLM and returns
// the assistant message.
func (a *LLMAgent) GenerateNext(ctx context.Context, incoming ...message.Message) (message.Message, error) {
	a.messages = append(a.messages, incoming...)
	full := append([]message.Message{message.System(a.systemPrompt)}, a.messages...)
	assistant, err := a.client.Generate(ctx, full, a.tools, "")
	if err != nil {
		return message.Message{}, err
	}
	a.messages = append(a.messages, assistant)
	return assistant, nil
}

// SetSeed pins the LLM sampling seed.
func (a *LLMAgent) SetSeed(seed int) { a.client.SetSeed(seed) }

// SoloAgent is the no-customer variant: it must keep calling tools until
// it emits the stop token.
type SoloAgent struct {
	client       *llm.Client
	systemPrompt string
	tools        []map[string]any
	messages     []message.Message
}

// NewSoloAgent builds the solo agent for one simulation.
func NewSoloAgent(client *llm.Client, simTime string, language lang.Language, tools []map[string]any) (*SoloAgent, error) {
	timeWithWeekday, err := formatSimTime(simTime, language)
	if err != nil {
		return nil, err
	}
	return &SoloAgent{
		client:       client,
		systemPrompt: prompts.SoloAgentSystemPrompt(timeWithWeekday, language),
		tools:        tools,
	}, nil
}

// Reset seeds the solo agent's history.
func (a *SoloAgent) Reset(history []message.Message) error {
	if err := validateHistory(history); err != nil {
		return err
	}
	a.messages = append([]message.Message(nil), history...)
	return nil
}

// GenerateNext mirrors LLMAgent.GenerateNext but rejects conversational
// replies: the assistant must either call tools or stop.
func (a *SoloAgent) GenerateNext(ctx context.Context, incoming ...message.Message) (message.Message, error) {
	a.messages = append(a.messages, incoming...)
	full := append([]message.Message{message.System(a.systemPrompt)}, a.messages...)
	assistant, err := a.client.Generate(ctx, full, a.tools, "auto")
	if err != nil {
		return message.Message{}, err
	}
	if !assistant.IsToolCall() && !strings.Contains(assistant.Content, prompts.StopToken) {
		return message.Message{}, fmt.Errorf("LLMSoloAgent only supports tool calls before %s.", prompts.StopToken)
	}
	a.messages = append(a.messages, assistant)
	return assistant, nil
}

// SetSeed pins the LLM sampling seed.
func (a *SoloAgent) SetSeed(seed int) { a.client.SetSeed(seed) }
