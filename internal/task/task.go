// Package task defines scenario specifications: the immutable inputs that
// drive one simulation and its evaluation.
package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/vitabench/vita/internal/entity"
	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/message"
)

// Action is the expected counterpart of a tool call in a task spec. When
// CompareArgs is nil every argument is compared.
type Action struct {
	ActionID    string             `json:"action_id"`
	Requestor   message.Requestor  `json:"requestor,omitempty"`
	Name        string             `json:"name"`
	Arguments   map[string]any     `json:"arguments"`
	Info        string             `json:"info,omitempty"`
	CompareArgs []string           `json:"compare_args,omitempty"`
}

// CompareWithToolCall reports whether a tool call matches this action on
// name and on the selected arguments.
func (a *Action) CompareWithToolCall(tc message.ToolCall) bool {
	if a.Name != tc.Name {
		return false
	}
	compare := a.CompareArgs
	if compare == nil {
		compare = make([]string, 0, len(tc.Arguments))
		for k := range tc.Arguments {
			compare = append(compare, k)
		}
	}
	if len(compare) == 0 {
		return true
	}
	for _, k := range compare {
		av, aok := a.Arguments[k]
		tv, tok := tc.Arguments[k]
		if aok != tok || !reflect.DeepEqual(av, tv) {
			return false
		}
	}
	return true
}

// UserScenario is everything the user simulator is told about who it plays.
type UserScenario struct {
	UserProfile map[string]any `json:"user_profile"`
}

// ExpectedState describes orders that must (or may) exist in the final DB,
// with rubrics specific to that state.
type ExpectedState struct {
	RequiredOrders []map[string]any `json:"required_orders,omitempty"`
	OptionalOrders []entity.Order   `json:"optional_orders,omitempty"`
	StateRubrics   []string         `json:"state_rubrics,omitempty"`
}

// EvaluationCriteria is what the judge panel is given.
type EvaluationCriteria struct {
	ExpectedStates []ExpectedState `json:"expected_states,omitempty"`
	OverallRubrics []string        `json:"overall_rubrics,omitempty"`
}

// Rubrics flattens overall rubrics plus per-state rubrics, in order.
func (c *EvaluationCriteria) Rubrics() []string {
	var out []string
	out = append(out, c.OverallRubrics...)
	for _, st := range c.ExpectedStates {
		out = append(out, st.StateRubrics...)
	}
	return out
}

// Task is one immutable scenario input.
type Task struct {
	ID                 string              `json:"id"`
	Domain             string              `json:"domain"`
	Environment        json.RawMessage     `json:"environment"`
	UserScenario       UserScenario        `json:"user_scenario"`
	Instructions       string              `json:"instructions"`
	EvaluationCriteria *EvaluationCriteria `json:"evaluation_criteria,omitempty"`
	MessageHistory     []message.Message   `json:"message_history,omitempty"`
}

// EnvTime extracts the simulated wall-clock time from the environment blob,
// if present.
func (t *Task) EnvTime() string {
	var env struct {
		Time string `json:"time"`
	}
	if err := json.Unmarshal(t.Environment, &env); err != nil {
		return ""
	}
	return env.Time
}

// Load reads a JSON array of tasks.
func Load(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse task file %s: %w", path, err)
	}
	return tasks, nil
}

// FilePath returns the task file for a (domain, language) pair under the
// data directory: tasks.json for Chinese, tasks_en.json for English.
func FilePath(dataDir, domain string, language lang.Language) string {
	name := "tasks.json"
	if language == lang.English {
		name = "tasks_en.json"
	}
	return filepath.Join(dataDir, domain, name)
}
