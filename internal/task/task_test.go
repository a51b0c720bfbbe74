package task

import (
	"testing"

	"github.com/vitabench/vita/internal/message"
)

func TestCompareWithToolCall_AllArgs(t *testing.T) {
	a := Action{
		ActionID:  "pay_1",
		Name:      "pay_delivery_order",
		Arguments: map[string]any{"order_id": "OT1", "note": "x"},
	}
	tc := message.ToolCall{Name: "pay_delivery_order", Arguments: map[string]any{"order_id": "OT1", "note": "x"}}
	if !a.CompareWithToolCall(tc) {
		t.Error("identical call should match")
	}
	tc.Arguments = map[string]any{"order_id": "OT2", "note": "x"}
	if a.CompareWithToolCall(tc) {
		t.Error("differing argument should not match")
	}
}

func TestCompareWithToolCall_CompareArgs(t *testing.T) {
	a := Action{
		ActionID:    "pay_1",
		Name:        "pay_delivery_order",
		Arguments:   map[string]any{"order_id": "OT1", "note": "anything"},
		CompareArgs: []string{"order_id"},
	}
	tc := message.ToolCall{Name: "pay_delivery_order", Arguments: map[string]any{"order_id": "OT1", "note": "different"}}
	if !a.CompareWithToolCall(tc) {
		t.Error("only compare_args should be compared")
	}
}

func TestCompareWithToolCall_NameMismatch(t *testing.T) {
	a := Action{Name: "pay_delivery_order", Arguments: map[string]any{}}
	tc := message.ToolCall{Name: "cancel_delivery_order", Arguments: map[string]any{}}
	if a.CompareWithToolCall(tc) {
		t.Error("different tool names never match")
	}
}

func TestEnvTime(t *testing.T) {
	tk := Task{Environment: []byte(`{"time": "2025-06-01 12:00:00", "stores": {}}`)}
	if got := tk.EnvTime(); got != "2025-06-01 12:00:00" {
		t.Errorf("EnvTime = %q", got)
	}
	tk = Task{Environment: []byte(`{}`)}
	if got := tk.EnvTime(); got != "" {
		t.Errorf("missing time should be empty, got %q", got)
	}
}

func TestRubrics_Flatten(t *testing.T) {
	c := EvaluationCriteria{
		OverallRubrics: []string{"a"},
		ExpectedStates: []ExpectedState{
			{StateRubrics: []string{"b", "c"}},
		},
	}
	got := c.Rubrics()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("rubrics = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rubrics[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
