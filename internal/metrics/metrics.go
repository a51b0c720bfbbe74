// Package metrics aggregates rewards across tasks and trials: pass^k,
// pass@k, average@k, cost and wall-clock duration.
package metrics

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/vitabench/vita/internal/sim"
)

// IsSuccessful reports whether a reward counts as a pass.
func IsSuccessful(reward float64) bool {
	return reward == 1.0
}

func comb(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result = result * float64(n-i) / float64(i+1)
	}
	return math.Round(result)
}

// PassHatK is C(c,k)/C(n,k): the chance that k uniformly drawn trials are
// all successes.
func PassHatK(numTrials, successCount, k int) (float64, error) {
	if numTrials < k {
		return 0, fmt.Errorf("number of trials %d is less than k %d", numTrials, k)
	}
	return comb(successCount, k) / comb(numTrials, k), nil
}

// PassAtK is 1 - C(n-c,k)/C(n,k): the chance that at least one of k drawn
// trials succeeds.
func PassAtK(numTrials, successCount, k int) float64 {
	if numTrials < k {
		return 0.0
	}
	if successCount > numTrials {
		return 0.0
	}
	if numTrials-successCount >= k {
		return 1.0 - comb(numTrials-successCount, k)/comb(numTrials, k)
	}
	return 1.0
}

// AverageAtK is the mean reward, defined only when at least k rewards
// exist.
func AverageAtK(rewards []float64, k int) float64 {
	if len(rewards) < k || k == 0 {
		return 0.0
	}
	sum := 0.0
	for _, r := range rewards {
		sum += r
	}
	return sum / float64(len(rewards))
}

// AgentMetrics is the aggregated view of one run.
type AgentMetrics struct {
	AvgReward     float64         `json:"avg_reward"`
	PassHatKs     map[int]float64 `json:"pass_hat_ks"`
	PassAtN       map[int]float64 `json:"pass_at_n,omitempty"`
	AverageAtN    map[int]float64 `json:"average_at_n,omitempty"`
	AvgAgentCost  float64         `json:"avg_agent_cost"`
	TotalDuration float64         `json:"total_duration,omitempty"`
}

type taskGroup struct {
	rewards   []float64
	successes int
}

// Compute aggregates metrics over the run's simulations. Simulations with
// no reward (aborted evaluations) are treated as missing.
func Compute(results *sim.Results) AgentMetrics {
	groups := map[string]*taskGroup{}
	var taskOrder []string
	var rewardSum float64
	var rewardCount int
	var agentCostSum float64
	var agentCostCount int

	for i := range results.Simulations {
		s := &results.Simulations[i]
		if s.AgentCost != nil {
			agentCostSum += *s.AgentCost
			agentCostCount++
		}
		if s.RewardInfo == nil {
			continue
		}
		g, ok := groups[s.TaskID]
		if !ok {
			g = &taskGroup{}
			groups[s.TaskID] = g
			taskOrder = append(taskOrder, s.TaskID)
		}
		reward := s.RewardInfo.Reward
		g.rewards = append(g.rewards, reward)
		if IsSuccessful(reward) {
			g.successes++
		}
		rewardSum += reward
		rewardCount++
	}
	sort.Strings(taskOrder)

	maxK := 0
	for _, g := range groups {
		if maxK == 0 || len(g.rewards) < maxK {
			maxK = len(g.rewards)
		}
	}

	m := AgentMetrics{
		PassHatKs:  map[int]float64{},
		PassAtN:    map[int]float64{},
		AverageAtN: map[int]float64{},
	}
	if rewardCount > 0 {
		m.AvgReward = rewardSum / float64(rewardCount)
	}
	if agentCostCount > 0 {
		m.AvgAgentCost = agentCostSum / float64(agentCostCount)
	}

	for k := 1; k <= maxK; k++ {
		var hatVals, atVals, avgVals []float64
		for _, id := range taskOrder {
			g := groups[id]
			if len(g.rewards) < k {
				continue
			}
			if hat, err := PassHatK(len(g.rewards), g.successes, k); err == nil {
				hatVals = append(hatVals, hat)
			}
			atVals = append(atVals, PassAtK(len(g.rewards), g.successes, k))
			avgVals = append(avgVals, AverageAtK(g.rewards, k))
		}
		if len(hatVals) > 0 {
			m.PassHatKs[k] = mean(hatVals)
		}
		if len(atVals) > 0 {
			m.PassAtN[k] = mean(atVals)
		}
		if len(avgVals) > 0 {
			m.AverageAtN[k] = mean(avgVals)
		}
	}

	m.TotalDuration = totalDuration(results)
	return m
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// totalDuration is max(end) - min(start) over all simulations; if any
// timestamp fails to parse, it falls back to summed per-simulation
// durations.
func totalDuration(results *sim.Results) float64 {
	if len(results.Simulations) == 0 {
		return 0.0
	}
	const layout = "20060102_150405"
	var earliest, latest time.Time
	for i := range results.Simulations {
		s := &results.Simulations[i]
		start, err1 := time.Parse(layout, s.StartTime)
		end, err2 := time.Parse(layout, s.EndTime)
		if err1 != nil || err2 != nil {
			log.Printf("[Metrics] Failed to parse time format for simulation %s, using summed durations", s.ID)
			sum := 0.0
			for j := range results.Simulations {
				sum += results.Simulations[j].Duration
			}
			return sum
		}
		if i == 0 || start.Before(earliest) {
			earliest = start
		}
		if i == 0 || end.After(latest) {
			latest = end
		}
	}
	return latest.Sub(earliest).Seconds()
}

// Display prints the metrics in the run summary format.
func Display(m AgentMetrics) {
	fmt.Printf("Average reward: %v\n", m.AvgReward)
	fmt.Println("Pass^k")
	for _, k := range sortedIntKeys(m.PassHatKs) {
		fmt.Printf("  k=%d: %.4f\n", k, m.PassHatKs[k])
	}
	if len(m.PassAtN) > 0 {
		fmt.Println("Pass@K")
		for _, k := range sortedIntKeys(m.PassAtN) {
			fmt.Printf("  k=%d: %.4f\n", k, m.PassAtN[k])
		}
	}
	if len(m.AverageAtN) > 0 {
		fmt.Println("Average@K")
		for _, k := range sortedIntKeys(m.AverageAtN) {
			fmt.Printf("  k=%d: %.4f\n", k, m.AverageAtN[k])
		}
	}
	fmt.Printf("Average agent cost: %v\n", m.AvgAgentCost)
	if m.TotalDuration > 0 {
		fmt.Printf("Total duration: %.2fmin\n", m.TotalDuration/60)
	}
}

func sortedIntKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
