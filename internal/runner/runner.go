// Package runner fans simulations out across tasks × trials, bounded by
// the configured concurrency, and evaluates each finished run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vitabench/vita/internal/config"
	"github.com/vitabench/vita/internal/evaluator"
	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/llm"
	"github.com/vitabench/vita/internal/registry"
	"github.com/vitabench/vita/internal/sim"
	"github.com/vitabench/vita/internal/task"
)

// Options configures one run.
type Options struct {
	Tasks    []task.Task
	Domain   string
	Language lang.Language
	Models   config.Models

	AgentImpl string
	UserImpl  string
	AgentLLM  string
	UserLLM   string

	Evaluators         []string
	EvaluationType     evaluator.Type
	ParallelEvaluators bool
	SkipEvaluation     bool

	Trials         int
	MaxConcurrency int
	MaxSteps       int
	MaxErrors      int
	MaxDuration    time.Duration
	Seed           int

	Registry *registry.Registry
}

func (o *Options) normalize() {
	if o.Trials <= 0 {
		o.Trials = config.DefaultNumTrials
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = config.DefaultMaxConcurrency
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = config.DefaultMaxSteps
	}
	if o.MaxErrors <= 0 {
		o.MaxErrors = config.DefaultMaxErrors
	}
	if o.Seed == 0 {
		o.Seed = config.DefaultSeed
	}
	if o.AgentImpl == "" {
		o.AgentImpl = config.DefaultAgentImplementation
	}
	if o.UserImpl == "" {
		o.UserImpl = config.DefaultUserImplementation
	}
	if o.EvaluationType == "" {
		o.EvaluationType = evaluator.Type(config.DefaultEvaluationType)
	}
	if o.Registry == nil {
		o.Registry = registry.Default()
	}
}

// RunAll runs every (task, trial) pair and returns the collected results.
func RunAll(ctx context.Context, opts Options) (*sim.Results, error) {
	opts.normalize()

	agentFactory, err := opts.Registry.Agent(opts.AgentImpl)
	if err != nil {
		return nil, err
	}
	userFactory, err := opts.Registry.User(opts.UserImpl)
	if err != nil {
		return nil, err
	}
	envFactory, err := opts.Registry.Domain(opts.Domain)
	if err != nil {
		return nil, err
	}
	agentModel, err := opts.Models.Get(opts.AgentLLM)
	if err != nil {
		return nil, fmt.Errorf("agent llm: %w", err)
	}
	userModel, err := opts.Models.Get(opts.UserLLM)
	if err != nil {
		return nil, fmt.Errorf("user llm: %w", err)
	}
	judgeModels := make([]config.Model, len(opts.Evaluators))
	for i, name := range opts.Evaluators {
		judgeModels[i], err = opts.Models.Get(name)
		if err != nil {
			return nil, fmt.Errorf("evaluator llm: %w", err)
		}
	}

	type job struct {
		t     task.Task
		trial int
	}
	var jobs []job
	for _, t := range opts.Tasks {
		for trial := 0; trial < opts.Trials; trial++ {
			jobs = append(jobs, job{t: t, trial: trial})
		}
	}

	runs := make([]sim.Run, len(jobs))
	sem := make(chan struct{}, opts.MaxConcurrency)
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(slot int, j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			runs[slot] = runOne(ctx, opts, j.t, j.trial,
				agentFactory, userFactory, envFactory, agentModel, userModel, judgeModels)
		}(i, j)
	}
	wg.Wait()

	results := &sim.Results{
		Timestamp: time.Now().Format("20060102_150405"),
		Info: sim.RunInfo{
			NumTrials:      opts.Trials,
			MaxSteps:       opts.MaxSteps,
			MaxErrors:      opts.MaxErrors,
			Seed:           opts.Seed,
			Language:       string(opts.Language),
			EvaluationType: string(opts.EvaluationType),
			AgentInfo:      sim.AgentInfo{Implementation: opts.AgentImpl, LLM: opts.AgentLLM},
			UserInfo:       sim.UserInfo{Implementation: opts.UserImpl, LLM: opts.UserLLM},
			EnvironmentInfo: sim.EnvironmentInfo{
				DomainName: opts.Domain,
			},
		},
		Simulations: runs,
	}
	return results, nil
}

func runOne(ctx context.Context, opts Options, t task.Task, trial int,
	agentFactory registry.AgentFactory, userFactory registry.UserFactory, envFactory registry.EnvFactory,
	agentModel, userModel config.Model, judgeModels []config.Model) sim.Run {

	seed := opts.Seed + trial
	failed := func(stage string, err error) sim.Run {
		log.Printf("[Runner] task=%s trial=%d %s failed: %v", t.ID, trial, stage, err)
		now := time.Now().Format("20060102_150405")
		return sim.Run{
			TaskID:            t.ID,
			Trial:             trial,
			Seed:              seed,
			StartTime:         now,
			EndTime:           now,
			TerminationReason: sim.TerminationInvalidAgentMessage,
		}
	}

	environment, err := envFactory(t.Environment, opts.Language, nil)
	if err != nil {
		return failed("environment", err)
	}
	ag, err := agentFactory(llm.New(agentModel), t, environment, opts.Language)
	if err != nil {
		return failed("agent", err)
	}
	us, err := userFactory(llm.New(userModel), t, opts.Language)
	if err != nil {
		return failed("user", err)
	}
	ag.SetSeed(seed)
	us.SetSeed(seed)

	orch := &sim.Orchestrator{
		Task:        t,
		Agent:       ag,
		User:        us,
		Environment: environment,
		Limits: sim.Limits{
			MaxSteps:    opts.MaxSteps,
			MaxErrors:   opts.MaxErrors,
			MaxDuration: opts.MaxDuration,
		},
		Trial: trial,
		Seed:  seed,
	}
	run := orch.Run(ctx)

	if opts.SkipEvaluation {
		return run
	}
	judges := make([]evaluator.Judge, len(judgeModels))
	for i, m := range judgeModels {
		judges[i] = evaluator.Judge{Name: opts.Evaluators[i], Client: llm.New(m)}
	}
	panel := evaluator.NewPanel(judges, opts.ParallelEvaluators, opts.Language, int64(seed))
	rewardInfo, err := panel.Evaluate(ctx, &run, &t, opts.EvaluationType)
	if err != nil {
		var aborted *evaluator.AbortedError
		if errors.As(err, &aborted) {
			// The run is persisted without a reward; metrics treat it as
			// missing.
			log.Printf("[Runner] task=%s trial=%d evaluation aborted: %v", t.ID, trial, err)
			return run
		}
		log.Printf("[Runner] task=%s trial=%d evaluation failed: %v", t.ID, trial, err)
		return run
	}
	run.RewardInfo = rewardInfo
	return run
}
