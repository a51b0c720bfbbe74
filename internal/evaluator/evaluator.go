// Package evaluator scores a finished simulation with a panel of LLM
// judges: bounded retries per judge, random substitution for failed
// judges, strict-majority aggregation.
package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"

	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/llm"
	"github.com/vitabench/vita/internal/message"
	"github.com/vitabench/vita/internal/prompts"
	"github.com/vitabench/vita/internal/retry"
	"github.com/vitabench/vita/internal/sim"
	"github.com/vitabench/vita/internal/task"
)

// Type selects how the trajectory is presented to the judges.
type Type string

const (
	TypeTrajectory       Type = "trajectory"
	TypeFullTrajRubric   Type = "trajectory_full_traj_rubric"
	TypeSlidingWoRubric  Type = "trajectory_sliding_wo_rubric"
	TypeFullTrajWoRubric Type = "trajectory_full_traj_wo_rubric"
)

// ParseType validates an evaluation-type name.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeTrajectory, TypeFullTrajRubric, TypeSlidingWoRubric, TypeFullTrajWoRubric:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown evaluation type: %s", s)
}

func (t Type) windowed() bool {
	return t == TypeTrajectory || t == TypeSlidingWoRubric
}

func (t Type) withRubrics() bool {
	return t == TypeTrajectory || t == TypeFullTrajRubric
}

const judgeRetries = 3

// AbortedError signals that every judge failed; the simulation keeps no
// reward at all.
type AbortedError struct {
	N int
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("All evaluators failed after %d retries; aborting evaluation (n=%d)", judgeRetries, e.N)
}

// Judge is one panel member.
type Judge struct {
	Name   string
	Client *llm.Client
}

// judgeCall is the per-judge operation; a seam so tests can script judges.
type judgeCall func(ctx context.Context, j Judge, run *sim.Run, t *task.Task, evalType Type) (*sim.RewardInfo, error)

// Panel is an odd-sized set of judges applied to one simulation.
type Panel struct {
	Judges   []Judge
	Parallel bool
	Language lang.Language

	rng  *rand.Rand
	call judgeCall
}

// NewPanel builds a panel. seed pins the replacement-draw RNG for
// deterministic replay.
func NewPanel(judges []Judge, parallel bool, language lang.Language, seed int64) *Panel {
	p := &Panel{
		Judges:   judges,
		Parallel: parallel,
		Language: language,
		rng:      rand.New(rand.NewSource(seed)),
	}
	p.call = p.judgeOnce
	return p
}

type judgeResult struct {
	name     string
	reward   *sim.RewardInfo
	attempts int
	err      error
}

func voteFromReward(reward float64) int {
	if reward >= 0.5 {
		return 1
	}
	return 0
}

// Evaluate runs the panel over one simulation.
//
// Preconditions: premature terminations are rewarded 0 without judges;
// tasks with no evaluation criteria are rewarded 1 without judges; the
// panel must be odd-sized and non-empty.
func (p *Panel) Evaluate(ctx context.Context, run *sim.Run, t *task.Task, evalType Type) (*sim.RewardInfo, error) {
	if sim.PrematureTermination(run.TerminationReason) {
		return &sim.RewardInfo{
			Reward: 0.0,
			Info: map[string]any{
				"note": fmt.Sprintf("Simulation terminated prematurely. Termination reason: %s", run.TerminationReason),
			},
		}, nil
	}
	if t.EvaluationCriteria == nil {
		return &sim.RewardInfo{
			Reward: 1.0,
			Info:   map[string]any{"note": "No evaluation criteria"},
		}, nil
	}
	if len(p.Judges) < 1 {
		return nil, fmt.Errorf("llm_evaluators must have length >= 1")
	}
	if len(p.Judges)%2 == 0 {
		return nil, fmt.Errorf("llm_evaluators must have odd length")
	}

	logPrefix := fmt.Sprintf("[eval:%s:%s]", t.Domain, run.TaskID)
	results := p.runJudges(ctx, run, t, evalType)

	var judgeRecords []map[string]any
	var successes []judgeResult
	allDetails := map[string]any{}
	var failureNames []string

	for _, j := range p.Judges {
		r := results[j.Name]
		if r.err == nil && r.reward != nil {
			vote := voteFromReward(r.reward.Reward)
			successes = append(successes, r)
			judgeRecords = append(judgeRecords, map[string]any{
				"llm_evaluator": r.name,
				"status":        "success",
				"attempts":      r.attempts,
				"reward":        r.reward.Reward,
				"vote":          vote,
			})
			allDetails[r.name] = map[string]any{
				"status":   "success",
				"attempts": r.attempts,
				"reward":   r.reward.Reward,
				"vote":     vote,
			}
			log.Printf("%s evaluator=%s status=success attempts=%d reward=%v vote=%d",
				logPrefix, r.name, r.attempts, r.reward.Reward, vote)
		} else {
			errText := "missing evaluator result"
			if r.err != nil {
				errText = r.err.Error()
			}
			judgeRecords = append(judgeRecords, map[string]any{
				"llm_evaluator": j.Name,
				"status":        "failed",
				"attempts":      r.attempts,
				"error":         errText,
			})
			allDetails[j.Name] = map[string]any{
				"status":   "failed",
				"attempts": r.attempts,
				"error":    errText,
			}
			failureNames = append(failureNames, j.Name)
			log.Printf("%s evaluator=%s status=failed attempts=%d error=%s", logPrefix, j.Name, r.attempts, errText)
		}
	}

	if len(successes) == 0 {
		log.Printf("%s judge_summary successes=0 failures=%d status=aborted reason=all_evaluators_failed",
			logPrefix, len(p.Judges))
		return nil, &AbortedError{N: len(p.Judges)}
	}

	// Every failed judge adopts the vote of a success drawn uniformly at
	// random (with replacement across failures).
	var replacements []map[string]any
	var finalVotes []int
	finalVotesByEvaluator := map[string]int{}
	for _, record := range judgeRecords {
		name := record["llm_evaluator"].(string)
		if record["status"] == "success" {
			vote := record["vote"].(int)
			finalVotes = append(finalVotes, vote)
			finalVotesByEvaluator[name] = vote
			continue
		}
		picked := successes[p.rng.Intn(len(successes))]
		vote := voteFromReward(picked.reward.Reward)
		finalVotes = append(finalVotes, vote)
		finalVotesByEvaluator[name] = vote
		record["replacement_picked"] = picked.name
		record["replacement_vote"] = vote
		replacements = append(replacements, map[string]any{
			"failed": name,
			"picked": picked.name,
			"vote":   vote,
		})
		if detail, ok := allDetails[name].(map[string]any); ok {
			detail["replacement_picked"] = picked.name
			detail["replacement_vote"] = vote
		}
		log.Printf("%s replacement_vote failed=%s picked=%s replacement_vote=%d", logPrefix, name, picked.name, vote)
	}

	voteSum := 0
	for _, v := range finalVotes {
		voteSum += v
	}
	majorityVote := 0
	if voteSum > len(finalVotes)/2 {
		majorityVote = 1
	}

	var chosen judgeResult
	for _, s := range successes {
		if voteFromReward(s.reward.Reward) == majorityVote {
			chosen = s
			break
		}
	}
	log.Printf("%s judge_summary successes=%d failures=%d majority_vote=%d chosen=%s",
		logPrefix, len(successes), len(failureNames), majorityVote, chosen.name)

	judgeNames := make([]string, len(p.Judges))
	for i, j := range p.Judges {
		judgeNames[i] = j.Name
	}
	final := chosen.reward
	final.Reward = float64(majorityVote)
	final.NLRubrics = nil
	if final.Info == nil {
		final.Info = map[string]any{}
	}
	final.Info["judge_mode"] = "majority_vote_reward"
	final.Info["llm_evaluators"] = judgeNames
	final.Info["judge_records"] = judgeRecords
	final.Info["replacements"] = replacements
	final.Info["final_votes_by_evaluator"] = finalVotesByEvaluator
	final.Info["majority_vote"] = majorityVote
	final.Info["majority_reward"] = float64(majorityVote)
	final.Info["failed_evaluators"] = failureNames
	final.Info["all_evaluator_details"] = allDetails
	return final, nil
}

// runJudges executes every judge with bounded retries, in parallel when
// configured (workers = panel size, never more).
func (p *Panel) runJudges(ctx context.Context, run *sim.Run, t *task.Task, evalType Type) map[string]judgeResult {
	results := make(map[string]judgeResult, len(p.Judges))
	runOne := func(j Judge) judgeResult {
		reward, attempts, err := retry.Do(ctx, judgeRetries, 0, func() (*sim.RewardInfo, error) {
			return p.call(ctx, j, run, t, evalType)
		})
		return judgeResult{name: j.Name, reward: reward, attempts: attempts, err: err}
	}
	if p.Parallel && len(p.Judges) > 1 {
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, j := range p.Judges {
			wg.Add(1)
			go func(j Judge) {
				defer wg.Done()
				r := runOne(j)
				mu.Lock()
				results[j.Name] = r
				mu.Unlock()
			}(j)
		}
		wg.Wait()
	} else {
		for _, j := range p.Judges {
			results[j.Name] = runOne(j)
		}
	}
	return results
}

// judgeOnce is one judge LLM call plus verdict extraction.
func (p *Panel) judgeOnce(ctx context.Context, j Judge, run *sim.Run, t *task.Task, evalType Type) (*sim.RewardInfo, error) {
	var rubrics []string
	if t.EvaluationCriteria != nil {
		rubrics = t.EvaluationCriteria.Rubrics()
	}
	prompt := prompts.JudgePrompt(run.Messages, rubrics, string(run.States),
		evalType.windowed(), evalType.withRubrics(), p.Language)

	reply, err := j.Client.Generate(ctx, []message.Message{message.User(prompt)}, nil, "")
	if err != nil {
		return nil, err
	}
	verdicts, err := extractVerdicts(reply.Content)
	if err != nil {
		return nil, err
	}
	met := 0
	for _, v := range verdicts {
		if v.MeetExpectation {
			met++
		}
	}
	reward := float64(met) / float64(len(verdicts))
	return &sim.RewardInfo{
		Reward:    reward,
		NLRubrics: verdicts,
		Info: map[string]any{
			"evaluation_type": string(evalType),
			"num_rubrics":     len(verdicts),
		},
	}, nil
}

// extractVerdicts parses the judge's JSON array, tolerating markdown
// fencing around it.
func extractVerdicts(content string) ([]sim.Rubric, error) {
	text := strings.TrimSpace(content)
	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			text = text[start : end+1]
		}
	}
	var verdicts []sim.Rubric
	if err := json.Unmarshal([]byte(text), &verdicts); err != nil {
		return nil, fmt.Errorf("invalid judge verdict: %w", err)
	}
	if len(verdicts) == 0 {
		return nil, fmt.Errorf("judge verdict contains no rubric judgments")
	}
	return verdicts, nil
}
