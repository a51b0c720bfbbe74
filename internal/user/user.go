// Package user holds the simulated-customer drivers. A user is a pure
// request/response wrapper around the LLM service: no tools, just a
// profile-driven persona that must eventually emit the stop token.
package user

import (
	"context"
	"strings"

	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/llm"
	"github.com/vitabench/vita/internal/message"
	"github.com/vitabench/vita/internal/prompts"
	"github.com/vitabench/vita/internal/task"
)

// User is the simulated-customer side of a simulation.
type User interface {
	Reset(history []message.Message) error
	// GenerateNext consumes the assistant's visible reply ("" when the
	// user opens the conversation) and produces the next user message.
	GenerateNext(ctx context.Context, assistantContent string) (message.Message, error)
	SetSeed(seed int)
}

// IsStop reports whether a user message ends the simulation.
func IsStop(m *message.Message) bool {
	return strings.Contains(m.Content, prompts.StopToken)
}

// Simulator is the LLM-backed user. Internally the roles are mirrored:
// the assistant's replies are fed to the LLM as user turns.
type Simulator struct {
	client       *llm.Client
	systemPrompt string
	messages     []message.Message
}

// NewSimulator builds the user simulator from the task's user scenario.
func NewSimulator(client *llm.Client, scenario task.UserScenario, language lang.Language) *Simulator {
	return &Simulator{
		client:       client,
		systemPrompt: prompts.UserSystemPrompt(scenario.UserProfile, language),
	}
}

// Reset seeds the simulator's mirrored history: assistant messages become
// the LLM's user turns and vice versa.
func (s *Simulator) Reset(history []message.Message) error {
	s.messages = s.messages[:0]
	for i := range history {
		switch history[i].Role {
		case message.RoleAssistant:
			if history[i].Content != "" {
				s.messages = append(s.messages, message.User(history[i].Content))
			}
		case message.RoleUser:
			s.messages = append(s.messages, message.Message{Role: message.RoleAssistant, Content: history[i].Content})
		}
	}
	return nil
}

// GenerateNext produces the next customer turn.
func (s *Simulator) GenerateNext(ctx context.Context, assistantContent string) (message.Message, error) {
	if assistantContent != "" {
		s.messages = append(s.messages, message.User(assistantContent))
	}
	full := append([]message.Message{message.System(s.systemPrompt)}, s.messages...)
	reply, err := s.client.Generate(ctx, full, nil, "")
	if err != nil {
		return message.Message{}, err
	}
	s.messages = append(s.messages, reply)
	out := message.User(reply.Content)
	out.Cost = reply.Cost
	out.Usage = reply.Usage
	return out, nil
}

// SetSeed pins the LLM sampling seed.
func (s *Simulator) SetSeed(seed int) { s.client.SetSeed(seed) }

// Dummy always declares the task complete; used for solo-agent runs.
type Dummy struct{}

// Reset implements User.
func (Dummy) Reset([]message.Message) error { return nil }

// GenerateNext immediately emits the stop token at zero cost.
func (Dummy) GenerateNext(context.Context, string) (message.Message, error) {
	zero := 0.0
	m := message.User(prompts.StopToken)
	m.Cost = &zero
	return m, nil
}

// SetSeed implements User.
func (Dummy) SetSeed(int) {}
