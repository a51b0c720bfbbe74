package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vitabench/vita/internal/sim"
)

// RunSummaryConfig is the slice of run configuration the CSV row records.
type RunSummaryConfig struct {
	SimulationFilename string
	EvaluatorLLMs      []string
	MaxConcurrency     int
	EvaluationType     string
}

// CreateRunSummary flattens one run into the CSV row, keyed by column
// name.
func CreateRunSummary(results *sim.Results, m AgentMetrics, cfg RunSummaryConfig) map[string]string {
	if len(results.Simulations) == 0 {
		return map[string]string{}
	}
	info := results.Info

	var rewards []float64
	var totalAgentCost, totalUserCost, totalDur float64
	terminations := map[string]int{}
	taskIDs := map[string]bool{}
	trials := map[int]bool{}
	for i := range results.Simulations {
		s := &results.Simulations[i]
		taskIDs[s.TaskID] = true
		trials[s.Trial] = true
		if s.RewardInfo != nil {
			rewards = append(rewards, s.RewardInfo.Reward)
		}
		if s.AgentCost != nil {
			totalAgentCost += *s.AgentCost
		}
		if s.UserCost != nil {
			totalUserCost += *s.UserCost
		}
		totalDur += s.Duration
		terminations[string(s.TerminationReason)]++
	}
	minR, maxR, sumR := 0.0, 0.0, 0.0
	for i, r := range rewards {
		if i == 0 || r < minR {
			minR = r
		}
		if i == 0 || r > maxR {
			maxR = r
		}
		sumR += r
	}
	avgR := 0.0
	if len(rewards) > 0 {
		avgR = sumR / float64(len(rewards))
	}

	now := time.Now().Format("20060102_150405")
	row := map[string]string{
		"run_timestamp": now,
		"run_id": fmt.Sprintf("%s_%s_%s_%s", now, info.EnvironmentInfo.DomainName,
			info.AgentInfo.Implementation, info.UserInfo.Implementation),
		"simulation_filename":  cfg.SimulationFilename,
		"domain":               info.EnvironmentInfo.DomainName,
		"agent_implementation": info.AgentInfo.Implementation,
		"agent_llm":            info.AgentInfo.LLM,
		"user_implementation":  info.UserInfo.Implementation,
		"user_llm":             info.UserInfo.LLM,
		"evaluator_llm":        fmt.Sprintf("%v", cfg.EvaluatorLLMs),
		"num_tasks":            fmt.Sprintf("%d", len(taskIDs)),
		"num_trials":           fmt.Sprintf("%d", len(trials)),
		"total_simulations":    fmt.Sprintf("%d", len(results.Simulations)),
		"avg_reward":           fmt.Sprintf("%.4f", avgR),
		"min_reward":           fmt.Sprintf("%.4f", minR),
		"max_reward":           fmt.Sprintf("%.4f", maxR),
		"total_agent_cost":     fmt.Sprintf("%.4f", totalAgentCost),
		"total_user_cost":      fmt.Sprintf("%.4f", totalUserCost),
		"total_duration":       fmt.Sprintf("%.2f", totalDur/60),
		"termination_reasons":  fmt.Sprintf("%v", terminations),
		"seed":                 fmt.Sprintf("%d", info.Seed),
		"max_steps":            fmt.Sprintf("%d", info.MaxSteps),
		"max_errors":           fmt.Sprintf("%d", info.MaxErrors),
		"max_concurrency":      fmt.Sprintf("%d", cfg.MaxConcurrency),
		"evaluation_type":      cfg.EvaluationType,
	}
	for _, k := range sortedIntKeys(m.PassAtN) {
		row[fmt.Sprintf("%s_pass_at_%d", cfg.EvaluationType, k)] = fmt.Sprintf("%.4f", m.PassAtN[k])
	}
	for _, k := range sortedIntKeys(m.PassHatKs) {
		row[fmt.Sprintf("%s_pass_hat_%d", cfg.EvaluationType, k)] = fmt.Sprintf("%.4f", m.PassHatKs[k])
	}
	return row
}

// AppendRunSummary appends one summary row to the CSV, rewriting the file
// when the column set changed so every row stays aligned.
func AppendRunSummary(csvPath string, results *sim.Results, m AgentMetrics, cfg RunSummaryConfig) error {
	row := CreateRunSummary(results, m, cfg)
	if len(row) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		return fmt.Errorf("create csv directory: %w", err)
	}

	existingHeader, existingRows, err := readCSV(csvPath)
	if err != nil {
		return err
	}

	columns := columnsFor(row, existingHeader)
	if !equalColumns(columns, existingHeader) || existingHeader == nil {
		// Rewrite with the merged header.
		records := [][]string{columns}
		for _, old := range existingRows {
			records = append(records, projectRow(old, columns))
		}
		records = append(records, projectRow(row, columns))
		return writeCSV(csvPath, records)
	}

	f, err := os.OpenFile(csvPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(projectRow(row, columns)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func readCSV(path string) (header []string, rows []map[string]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	header = records[0]
	for _, record := range records[1:] {
		row := map[string]string{}
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// columnsFor keeps the existing column order and appends any new columns
// sorted by name.
func columnsFor(row map[string]string, existing []string) []string {
	seen := map[string]bool{}
	var columns []string
	for _, col := range existing {
		columns = append(columns, col)
		seen[col] = true
	}
	var added []string
	for col := range row {
		if !seen[col] {
			added = append(added, col)
		}
	}
	sort.Strings(added)
	return append(columns, added...)
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func projectRow(row map[string]string, columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = row[col]
	}
	return out
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
