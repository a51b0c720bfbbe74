package evaluator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/sim"
	"github.com/vitabench/vita/internal/task"
)

func testTask() *task.Task {
	return &task.Task{
		ID:     "task_1",
		Domain: "delivery",
		EvaluationCriteria: &task.EvaluationCriteria{
			OverallRubrics: []string{"the order was created", "the order was paid"},
		},
	}
}

func testRun() *sim.Run {
	return &sim.Run{TaskID: "task_1", TerminationReason: sim.TerminationUserStop}
}

// scriptedPanel wires a panel whose judges return fixed rewards or fail
// every attempt.
func scriptedPanel(t *testing.T, rewards map[string]float64, failing map[string]bool, seed int64) *Panel {
	t.Helper()
	var judges []Judge
	for name := range rewards {
		judges = append(judges, Judge{Name: name})
	}
	for name := range failing {
		judges = append(judges, Judge{Name: name})
	}
	// Rebuild in deterministic order: J1, J2, J3...
	ordered := make([]Judge, 0, len(judges))
	for i := 1; i <= len(judges); i++ {
		ordered = append(ordered, Judge{Name: fmt.Sprintf("J%d", i)})
	}
	p := NewPanel(ordered, false, lang.English, seed)
	p.call = func(_ context.Context, j Judge, _ *sim.Run, _ *task.Task, _ Type) (*sim.RewardInfo, error) {
		if failing[j.Name] {
			return nil, fmt.Errorf("judge %s unavailable", j.Name)
		}
		return &sim.RewardInfo{Reward: rewards[j.Name]}, nil
	}
	return p
}

func TestEvaluate_PrematureTermination(t *testing.T) {
	for _, reason := range []sim.TerminationReason{
		sim.TerminationTooManyErrors,
		sim.TerminationMaxSteps,
		sim.TerminationInvalidAgentMessage,
	} {
		called := false
		p := NewPanel([]Judge{{Name: "J1"}}, false, lang.English, 1)
		p.call = func(context.Context, Judge, *sim.Run, *task.Task, Type) (*sim.RewardInfo, error) {
			called = true
			return &sim.RewardInfo{Reward: 1.0}, nil
		}
		run := testRun()
		run.TerminationReason = reason
		reward, err := p.Evaluate(context.Background(), run, testTask(), TypeTrajectory)
		if err != nil {
			t.Fatalf("%s: %v", reason, err)
		}
		if reward.Reward != 0.0 {
			t.Errorf("%s: reward must be exactly 0.0, got %v", reason, reward.Reward)
		}
		if called {
			t.Errorf("%s: no judge may be called", reason)
		}
	}
}

func TestEvaluate_NoCriteria(t *testing.T) {
	called := false
	p := NewPanel([]Judge{{Name: "J1"}}, false, lang.English, 1)
	p.call = func(context.Context, Judge, *sim.Run, *task.Task, Type) (*sim.RewardInfo, error) {
		called = true
		return &sim.RewardInfo{Reward: 0.0}, nil
	}
	tk := testTask()
	tk.EvaluationCriteria = nil
	reward, err := p.Evaluate(context.Background(), testRun(), tk, TypeTrajectory)
	if err != nil {
		t.Fatal(err)
	}
	if reward.Reward != 1.0 {
		t.Errorf("no criteria must reward exactly 1.0, got %v", reward.Reward)
	}
	if called {
		t.Error("no judge may be called when there are no criteria")
	}
}

func TestEvaluate_EvenPanelRejected(t *testing.T) {
	p := scriptedPanel(t, map[string]float64{"J1": 1, "J2": 1}, nil, 1)
	if _, err := p.Evaluate(context.Background(), testRun(), testTask(), TypeTrajectory); err == nil {
		t.Error("even-sized panels must be rejected")
	}
}

func TestEvaluate_AllSucceedMajority(t *testing.T) {
	// J1→0.9, J2→0.4, J3→0.8: votes [1,0,1], majority 1.
	p := scriptedPanel(t, map[string]float64{"J1": 0.9, "J2": 0.4, "J3": 0.8}, nil, 1)
	reward, err := p.Evaluate(context.Background(), testRun(), testTask(), TypeTrajectory)
	if err != nil {
		t.Fatal(err)
	}
	if reward.Reward != 1.0 {
		t.Errorf("majority vote is 1, reward must be 1.0, got %v", reward.Reward)
	}
	votes := reward.Info["final_votes_by_evaluator"].(map[string]int)
	want := map[string]int{"J1": 1, "J2": 0, "J3": 1}
	for name, v := range want {
		if votes[name] != v {
			t.Errorf("vote of %s: got %d, want %d", name, votes[name], v)
		}
	}
	if reward.NLRubrics != nil {
		t.Error("the surfaced record must have its rubric list cleared")
	}
}

func TestEvaluate_OneJudgeFails_Replacement(t *testing.T) {
	sawOne, sawZero := false, false
	for seed := int64(0); seed < 20; seed++ {
		p := scriptedPanel(t, map[string]float64{"J1": 0.2, "J3": 0.7}, map[string]bool{"J2": true}, seed)
		reward, err := p.Evaluate(context.Background(), testRun(), testTask(), TypeTrajectory)
		if err != nil {
			t.Fatal(err)
		}
		replacements := reward.Info["replacements"].([]map[string]any)
		if len(replacements) != 1 || replacements[0]["failed"] != "J2" {
			t.Fatalf("J2 must be replaced exactly once, got %v", replacements)
		}
		picked := replacements[0]["picked"].(string)
		if picked != "J1" && picked != "J3" {
			t.Fatalf("replacement must come from the successes, got %s", picked)
		}
		// Majority equals the replacement's vote: J1 and the pick decide.
		switch picked {
		case "J3":
			if reward.Reward != 1.0 {
				t.Errorf("picking J3 yields majority 1, got %v", reward.Reward)
			}
			sawOne = true
		case "J1":
			if reward.Reward != 0.0 {
				t.Errorf("picking J1 yields majority 0, got %v", reward.Reward)
			}
			sawZero = true
		}
	}
	if !sawOne || !sawZero {
		t.Error("over many seeds the replacement draw should produce both outcomes")
	}
}

func TestEvaluate_AllJudgesFail_Aborts(t *testing.T) {
	p := scriptedPanel(t, nil, map[string]bool{"J1": true, "J2": true, "J3": true}, 1)
	attempts := 0
	inner := p.call
	p.call = func(ctx context.Context, j Judge, r *sim.Run, tk *task.Task, ty Type) (*sim.RewardInfo, error) {
		attempts++
		return inner(ctx, j, r, tk, ty)
	}
	_, err := p.Evaluate(context.Background(), testRun(), testTask(), TypeTrajectory)
	var aborted *AbortedError
	if !errors.As(err, &aborted) {
		t.Fatalf("expected EvaluationAborted, got %v", err)
	}
	if attempts != 9 {
		t.Errorf("each of 3 judges retries 3 times, got %d attempts", attempts)
	}
}

func TestEvaluate_SingleJudgePanel(t *testing.T) {
	p := scriptedPanel(t, map[string]float64{"J1": 0.9}, nil, 1)
	reward, err := p.Evaluate(context.Background(), testRun(), testTask(), TypeTrajectory)
	if err != nil {
		t.Fatal(err)
	}
	if reward.Reward != 1.0 {
		t.Errorf("single judge majority is its own vote, got %v", reward.Reward)
	}

	p = scriptedPanel(t, nil, map[string]bool{"J1": true}, 1)
	_, err = p.Evaluate(context.Background(), testRun(), testTask(), TypeTrajectory)
	var aborted *AbortedError
	if !errors.As(err, &aborted) {
		t.Errorf("a single failing judge must abort, got %v", err)
	}
}

func TestEvaluate_RetrySucceedsWithinBudget(t *testing.T) {
	calls := 0
	p := NewPanel([]Judge{{Name: "J1"}}, false, lang.English, 1)
	p.call = func(context.Context, Judge, *sim.Run, *task.Task, Type) (*sim.RewardInfo, error) {
		calls++
		if calls < 3 {
			return nil, fmt.Errorf("transient")
		}
		return &sim.RewardInfo{Reward: 1.0}, nil
	}
	reward, err := p.Evaluate(context.Background(), testRun(), testTask(), TypeTrajectory)
	if err != nil {
		t.Fatal(err)
	}
	if reward.Reward != 1.0 {
		t.Errorf("third attempt should have succeeded, got %v", reward.Reward)
	}
	records := reward.Info["judge_records"].([]map[string]any)
	if records[0]["attempts"] != 3 {
		t.Errorf("attempt count must be recorded, got %v", records[0]["attempts"])
	}
}

func TestExtractVerdicts(t *testing.T) {
	content := "```json\n[{\"rubrics\": \"r1\", \"reasoning\": \"ok\", \"meetExpectation\": true}]\n```"
	verdicts, err := extractVerdicts(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(verdicts) != 1 || !verdicts[0].MeetExpectation {
		t.Errorf("unexpected verdicts: %+v", verdicts)
	}
	if _, err := extractVerdicts("no json here"); err == nil {
		t.Error("non-JSON verdicts must error so the retry loop can fire")
	}
}
