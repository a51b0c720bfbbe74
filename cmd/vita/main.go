package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vitabench/vita/internal/evaluator"
	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/metrics"
	"github.com/vitabench/vita/internal/registry"
	"github.com/vitabench/vita/internal/runner"
	"github.com/vitabench/vita/pkg/config"

	runcfg "github.com/vitabench/vita/internal/config"
)

func main() {
	config.LoadEnv()

	var (
		domain         = flag.String("domain", "", "domain to run (delivery, instore, ota, cross_domain)")
		taskSet        = flag.String("task-set", "", "task set name (defaults to the domain)")
		dataDir        = flag.String("data-dir", "data/domains", "directory holding per-domain task files")
		language       = flag.String("language", "chinese", "prompt/tool-description language (zh/chinese or en/english)")
		agentImpl      = flag.String("agent", runcfg.DefaultAgentImplementation, "agent implementation")
		userImpl       = flag.String("user", runcfg.DefaultUserImplementation, "user implementation")
		agentLLM       = flag.String("agent-llm", "", "model name for the agent")
		userLLM        = flag.String("user-llm", "", "model name for the user simulator")
		evaluators     = flag.String("evaluators", "", "comma-separated judge model names (odd count)")
		evalType       = flag.String("evaluation-type", runcfg.DefaultEvaluationType, "evaluation type")
		parallelEval   = flag.Bool("parallel-evaluators", false, "run the judge panel concurrently")
		skipEval       = flag.Bool("skip-evaluation", false, "run simulations without judging")
		trials         = flag.Int("trials", runcfg.DefaultNumTrials, "trials per task")
		concurrency    = flag.Int("concurrency", runcfg.DefaultMaxConcurrency, "max concurrent simulations")
		maxSteps       = flag.Int("max-steps", runcfg.DefaultMaxSteps, "max steps per simulation")
		maxErrors      = flag.Int("max-errors", runcfg.DefaultMaxErrors, "max tool errors per simulation")
		maxDurationSec = flag.Int("max-duration", 0, "optional per-simulation duration budget in seconds")
		seed           = flag.Int("seed", runcfg.DefaultSeed, "base seed; trial i uses seed+i")
		saveTo         = flag.String("save-to", "", "path for the results JSON")
		csvPath        = flag.String("csv", "", "optional CSV summary file to append to")
	)
	flag.Parse()

	if *domain == "" {
		log.Fatal("[Main] -domain is required")
	}
	if *agentLLM == "" || *userLLM == "" {
		log.Fatal("[Main] -agent-llm and -user-llm are required")
	}
	runLanguage, err := lang.Parse(*language)
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}
	evaluationType, err := evaluator.ParseType(*evalType)
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}

	var judgeNames []string
	if *evaluators != "" {
		for _, name := range strings.Split(*evaluators, ",") {
			if name = strings.TrimSpace(name); name != "" {
				judgeNames = append(judgeNames, name)
			}
		}
	}
	if !*skipEval && len(judgeNames)%2 == 0 {
		log.Fatalf("[Main] -evaluators must list an odd number of judges, got %d", len(judgeNames))
	}

	models, err := runcfg.LoadModels(config.ModelConfigPath())
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}

	reg := registry.Default()
	setName := *taskSet
	if setName == "" {
		setName = *domain
	}
	loader, err := reg.Tasks(setName)
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}
	tasks, err := loader(*dataDir, runLanguage)
	if err != nil {
		log.Fatalf("[Main] load tasks: %v", err)
	}
	fmt.Printf("Loaded %d tasks for %s (%s)\n", len(tasks), setName, runLanguage)

	results, err := runner.RunAll(context.Background(), runner.Options{
		Tasks:              tasks,
		Domain:             *domain,
		Language:           runLanguage,
		Models:             models,
		AgentImpl:          *agentImpl,
		UserImpl:           *userImpl,
		AgentLLM:           *agentLLM,
		UserLLM:            *userLLM,
		Evaluators:         judgeNames,
		EvaluationType:     evaluationType,
		ParallelEvaluators: *parallelEval,
		SkipEvaluation:     *skipEval,
		Trials:             *trials,
		MaxConcurrency:     *concurrency,
		MaxSteps:           *maxSteps,
		MaxErrors:          *maxErrors,
		MaxDuration:        time.Duration(*maxDurationSec) * time.Second,
		Seed:               *seed,
		Registry:           reg,
	})
	if err != nil {
		log.Fatalf("[Main] run failed: %v", err)
	}

	m := metrics.Compute(results)
	metrics.Display(m)

	out := *saveTo
	if out == "" {
		out = fmt.Sprintf("results_%s_%s.json", *domain, results.Timestamp)
	}
	if err := results.Save(out); err != nil {
		log.Fatalf("[Main] save results: %v", err)
	}
	fmt.Printf("Results saved to %s\n", out)

	if *csvPath != "" {
		err := metrics.AppendRunSummary(*csvPath, results, m, metrics.RunSummaryConfig{
			SimulationFilename: out,
			EvaluatorLLMs:      judgeNames,
			MaxConcurrency:     *concurrency,
			EvaluationType:     string(evaluationType),
		})
		if err != nil {
			log.Printf("[Main] append csv summary: %v", err)
		} else {
			fmt.Printf("Appended run summary to %s\n", *csvPath)
		}
	}
}
