// Package sim runs one bounded agent/user/tool conversation and records
// its outcome.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vitabench/vita/internal/message"
)

// TerminationReason is the terminal state of a simulation.
type TerminationReason string

const (
	TerminationCompleted           TerminationReason = "completed"
	TerminationUserStop            TerminationReason = "user_stop"
	TerminationAgentStop           TerminationReason = "agent_stop"
	TerminationMaxSteps            TerminationReason = "max_steps"
	TerminationTooManyErrors       TerminationReason = "too_many_errors"
	TerminationInvalidAgentMessage TerminationReason = "invalid_agent_message"
	TerminationMaxDuration         TerminationReason = "max_duration"
)

// PrematureTermination reports whether the simulation failed before a
// meaningful end; such runs are rewarded 0 without consulting any judge.
func PrematureTermination(r TerminationReason) bool {
	switch r {
	case TerminationTooManyErrors, TerminationMaxSteps, TerminationInvalidAgentMessage:
		return true
	}
	return false
}

// Rubric is one judged criterion in a judge verdict.
type Rubric struct {
	Rubrics         string `json:"rubrics"`
	Reasoning       string `json:"reasoning"`
	MeetExpectation bool   `json:"meetExpectation"`
}

// RewardInfo is the evaluation outcome attached to a run.
type RewardInfo struct {
	Reward          float64            `json:"reward"`
	NLRubrics       []Rubric           `json:"nl_rubrics,omitempty"`
	RewardBreakdown map[string]float64 `json:"reward_breakdown,omitempty"`
	Info            map[string]any     `json:"info,omitempty"`
}

// Agent is the assistant-side driver consumed by the orchestrator.
type Agent interface {
	Reset(history []message.Message) error
	GenerateNext(ctx context.Context, incoming ...message.Message) (message.Message, error)
	SetSeed(seed int)
}

// Run is the record of one simulation.
type Run struct {
	ID                string            `json:"id"`
	TaskID            string            `json:"task_id"`
	Trial             int               `json:"trial"`
	Seed              int               `json:"seed"`
	StartTime         string            `json:"start_time"`
	EndTime           string            `json:"end_time"`
	Duration          float64           `json:"duration"`
	TerminationReason TerminationReason `json:"termination_reason"`
	AgentCost         *float64          `json:"agent_cost,omitempty"`
	UserCost          *float64          `json:"user_cost,omitempty"`
	Messages          []message.Message `json:"messages"`
	States            json.RawMessage   `json:"states,omitempty"`
	RewardInfo        *RewardInfo       `json:"reward_info,omitempty"`
}

// AgentInfo describes the agent side of a run.
type AgentInfo struct {
	Implementation string `json:"implementation"`
	LLM            string `json:"llm"`
}

// UserInfo describes the user side of a run.
type UserInfo struct {
	Implementation string `json:"implementation"`
	LLM            string `json:"llm"`
}

// EnvironmentInfo describes the simulated world of a run.
type EnvironmentInfo struct {
	DomainName string `json:"domain_name"`
}

// RunInfo is the run-level configuration stored with the results.
type RunInfo struct {
	NumTrials       int             `json:"num_trials"`
	MaxSteps        int             `json:"max_steps"`
	MaxErrors       int             `json:"max_errors"`
	Seed            int             `json:"seed"`
	Language        string          `json:"language"`
	EvaluationType  string          `json:"evaluation_type"`
	AgentInfo       AgentInfo       `json:"agent_info"`
	UserInfo        UserInfo        `json:"user_info"`
	EnvironmentInfo EnvironmentInfo `json:"environment_info"`
}

// Results is the full output of one run across tasks and trials.
type Results struct {
	Timestamp   string `json:"timestamp"`
	Info        RunInfo `json:"info"`
	Simulations []Run   `json:"simulations"`
}

// Save writes the results document as JSON.
func (r *Results) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadResults reads a results document back.
func LoadResults(path string) (*Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	var results Results
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse results %s: %w", path, err)
	}
	return &results, nil
}
