package sim

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitabench/vita/internal/env"
	"github.com/vitabench/vita/internal/message"
	"github.com/vitabench/vita/internal/prompts"
	"github.com/vitabench/vita/internal/task"
	"github.com/vitabench/vita/internal/user"
)

// Limits bounds one simulation.
type Limits struct {
	MaxSteps    int
	MaxErrors   int
	MaxDuration time.Duration
}

const timestampLayout = "20060102_150405"

// Orchestrator drives one simulation: it alternates agent turns, user
// turns and tool execution until a terminal state is reached.
type Orchestrator struct {
	Task        task.Task
	Agent       Agent
	User        user.User
	Environment *env.Environment
	Limits      Limits
	Trial       int
	Seed        int
}

// Run executes the simulation and returns its record. The returned run
// always carries a trajectory and a termination reason; evaluation is the
// caller's concern.
func (o *Orchestrator) Run(ctx context.Context) Run {
	start := time.Now()
	run := Run{
		ID:        uuid.NewString(),
		TaskID:    o.Task.ID,
		Trial:     o.Trial,
		Seed:      o.Seed,
		StartTime: start.Format(timestampLayout),
	}

	trajectory := append([]message.Message(nil), o.Task.MessageHistory...)
	if err := o.Agent.Reset(o.Task.MessageHistory); err != nil {
		log.Printf("[Orchestrator] invalid seeded history: %v", err)
		run.TerminationReason = TerminationInvalidAgentMessage
		o.finish(&run, trajectory, start)
		return run
	}
	if err := o.User.Reset(o.Task.MessageHistory); err != nil {
		log.Printf("[Orchestrator] invalid seeded history: %v", err)
		run.TerminationReason = TerminationInvalidAgentMessage
		o.finish(&run, trajectory, start)
		return run
	}

	// The task's seeded history decides who opens: the user by default, the
	// agent when the last seeded message is from the user.
	agentTurn := false
	lastAssistantContent := ""
	if n := len(trajectory); n > 0 {
		last := trajectory[n-1]
		agentTurn = last.Role == message.RoleUser
		if !agentTurn && last.Role == message.RoleAssistant {
			lastAssistantContent = last.Content
		}
	}

	var deadline time.Time
	if o.Limits.MaxDuration > 0 {
		deadline = start.Add(o.Limits.MaxDuration)
	}

	steps, numErrors := 0, 0
	var incoming []message.Message
	reason := TerminationReason("")

	for {
		if steps >= o.Limits.MaxSteps {
			reason = TerminationMaxSteps
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			reason = TerminationMaxDuration
			break
		}
		if ctx.Err() != nil {
			reason = TerminationMaxDuration
			break
		}

		if agentTurn {
			assistant, err := o.Agent.GenerateNext(ctx, incoming...)
			incoming = nil
			if err != nil {
				log.Printf("[Orchestrator] agent generation failed: %v", err)
				reason = TerminationInvalidAgentMessage
				break
			}
			trajectory = append(trajectory, assistant)
			steps++

			if assistant.IsToolCall() {
				batch := make([]message.Message, 0, len(assistant.ToolCalls))
				batchErrors := 0
				for _, tc := range assistant.ToolCalls {
					tm := o.Environment.Call(tc)
					if tm.Error {
						batchErrors++
					}
					batch = append(batch, tm)
				}
				trajectory = append(trajectory, batch...)
				numErrors += batchErrors
				if batchErrors > 0 && numErrors >= o.Limits.MaxErrors {
					reason = TerminationTooManyErrors
					break
				}
				// The agent keeps the turn until it answers without tools.
				incoming = batch
				continue
			}

			if assistant.Content == "" {
				reason = TerminationInvalidAgentMessage
				break
			}
			if strings.Contains(assistant.Content, prompts.StopToken) {
				reason = TerminationAgentStop
				break
			}
			lastAssistantContent = assistant.Content
			agentTurn = false
			continue
		}

		userMsg, err := o.User.GenerateNext(ctx, lastAssistantContent)
		if err != nil {
			log.Printf("[Orchestrator] user generation failed: %v", err)
			reason = TerminationTooManyErrors
			break
		}
		trajectory = append(trajectory, userMsg)
		steps++
		if user.IsStop(&userMsg) {
			reason = TerminationUserStop
			break
		}
		incoming = []message.Message{userMsg}
		agentTurn = true
	}

	run.TerminationReason = reason
	o.finish(&run, trajectory, start)
	return run
}

func (o *Orchestrator) finish(run *Run, trajectory []message.Message, start time.Time) {
	end := time.Now()
	run.EndTime = end.Format(timestampLayout)
	run.Duration = end.Sub(start).Seconds()
	run.Messages = trajectory

	if agentCost, userCost, ok := message.Costs(trajectory); ok {
		run.AgentCost = &agentCost
		run.UserCost = &userCost
	}
	states, err := o.Environment.Dump()
	if err != nil {
		log.Printf("[Orchestrator] dump final state: %v", err)
	} else {
		run.States = states
	}
}
