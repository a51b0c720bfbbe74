// Package registry names the pluggable pieces of a run: agent and user
// implementations, domain environments and task sets.
package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitabench/vita/internal/agent"
	"github.com/vitabench/vita/internal/domains/delivery"
	"github.com/vitabench/vita/internal/domains/instore"
	"github.com/vitabench/vita/internal/domains/ota"
	"github.com/vitabench/vita/internal/env"
	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/llm"
	"github.com/vitabench/vita/internal/sim"
	"github.com/vitabench/vita/internal/task"
	"github.com/vitabench/vita/internal/user"
)

// AgentFactory builds the agent driver for one simulation.
type AgentFactory func(client *llm.Client, t task.Task, environment *env.Environment, language lang.Language) (sim.Agent, error)

// UserFactory builds the user driver for one simulation.
type UserFactory func(client *llm.Client, t task.Task, language lang.Language) (user.User, error)

// EnvFactory builds a fresh environment from a task environment blob.
type EnvFactory func(raw json.RawMessage, language lang.Language, clock func() time.Time) (*env.Environment, error)

// TasksLoader loads a named task set.
type TasksLoader func(dataDir string, language lang.Language) ([]task.Task, error)

// Registry maps names to implementations.
type Registry struct {
	agents  map[string]AgentFactory
	users   map[string]UserFactory
	domains map[string]EnvFactory
	tasks   map[string]TasksLoader
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		agents:  map[string]AgentFactory{},
		users:   map[string]UserFactory{},
		domains: map[string]EnvFactory{},
		tasks:   map[string]TasksLoader{},
	}
}

// RegisterAgent installs an agent implementation under a name.
func (r *Registry) RegisterAgent(name string, f AgentFactory) error {
	if _, exists := r.agents[name]; exists {
		return fmt.Errorf("agent %s already registered", name)
	}
	r.agents[name] = f
	return nil
}

// RegisterUser installs a user implementation under a name.
func (r *Registry) RegisterUser(name string, f UserFactory) error {
	if _, exists := r.users[name]; exists {
		return fmt.Errorf("user %s already registered", name)
	}
	r.users[name] = f
	return nil
}

// RegisterDomain installs an environment constructor under a domain name.
func (r *Registry) RegisterDomain(name string, f EnvFactory) error {
	if _, exists := r.domains[name]; exists {
		return fmt.Errorf("domain %s already registered", name)
	}
	r.domains[name] = f
	return nil
}

// RegisterTasks installs a task-set loader under a name.
func (r *Registry) RegisterTasks(name string, f TasksLoader) error {
	if _, exists := r.tasks[name]; exists {
		return fmt.Errorf("tasks %s already registered", name)
	}
	r.tasks[name] = f
	return nil
}

// Agent looks up an agent implementation.
func (r *Registry) Agent(name string) (AgentFactory, error) {
	f, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("agent %s not found in registry", name)
	}
	return f, nil
}

// User looks up a user implementation.
func (r *Registry) User(name string) (UserFactory, error) {
	f, ok := r.users[name]
	if !ok {
		return nil, fmt.Errorf("user %s not found in registry", name)
	}
	return f, nil
}

// Domain looks up an environment constructor.
func (r *Registry) Domain(name string) (EnvFactory, error) {
	f, ok := r.domains[name]
	if !ok {
		return nil, fmt.Errorf("domain %s not found in registry", name)
	}
	return f, nil
}

// Tasks looks up a task-set loader.
func (r *Registry) Tasks(name string) (TasksLoader, error) {
	f, ok := r.tasks[name]
	if !ok {
		return nil, fmt.Errorf("task set %s not found in registry", name)
	}
	return f, nil
}

// Default builds the registry with the standard implementations.
func Default() *Registry {
	r := New()

	mustNil := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	mustNil(r.RegisterAgent("llm_agent", func(client *llm.Client, t task.Task, environment *env.Environment, language lang.Language) (sim.Agent, error) {
		return agent.NewLLMAgent(client, t.Instructions, t.EnvTime(), language, environment.OpenAISchema())
	}))
	mustNil(r.RegisterAgent("llm_solo_agent", func(client *llm.Client, t task.Task, environment *env.Environment, language lang.Language) (sim.Agent, error) {
		return agent.NewSoloAgent(client, t.EnvTime(), language, environment.OpenAISchema())
	}))

	mustNil(r.RegisterUser("user_simulator", func(client *llm.Client, t task.Task, language lang.Language) (user.User, error) {
		return user.NewSimulator(client, t.UserScenario, language), nil
	}))
	mustNil(r.RegisterUser("dummy_user", func(*llm.Client, task.Task, lang.Language) (user.User, error) {
		return user.Dummy{}, nil
	}))

	mustNil(r.RegisterDomain("delivery", func(raw json.RawMessage, language lang.Language, clock func() time.Time) (*env.Environment, error) {
		db, err := delivery.NewDB(raw)
		if err != nil {
			return nil, err
		}
		db.Clock = clock
		return env.New(delivery.New(db, language)), nil
	}))
	mustNil(r.RegisterDomain("instore", func(raw json.RawMessage, language lang.Language, clock func() time.Time) (*env.Environment, error) {
		db, err := instore.NewDB(raw)
		if err != nil {
			return nil, err
		}
		db.Clock = clock
		return env.New(instore.New(db, language)), nil
	}))
	mustNil(r.RegisterDomain("ota", func(raw json.RawMessage, language lang.Language, clock func() time.Time) (*env.Environment, error) {
		db, err := ota.NewDB(raw)
		if err != nil {
			return nil, err
		}
		db.Clock = clock
		return env.New(ota.New(db, language)), nil
	}))
	mustNil(r.RegisterDomain("cross_domain", func(raw json.RawMessage, language lang.Language, clock func() time.Time) (*env.Environment, error) {
		ddb, err := delivery.NewDB(raw)
		if err != nil {
			return nil, err
		}
		idb, err := instore.NewDB(raw)
		if err != nil {
			return nil, err
		}
		odb, err := ota.NewDB(raw)
		if err != nil {
			return nil, err
		}
		// One shared world: orders, clock and context tables are common
		// across the three domain views.
		shared := ddb.World
		shared.Clock = clock
		idb.World = shared
		odb.World = shared
		return env.New(
			delivery.New(ddb, language),
			instore.New(idb, language),
			ota.New(odb, language),
		), nil
	}))

	for _, name := range []string{"delivery", "instore", "ota", "cross_domain"} {
		domain := name
		mustNil(r.RegisterTasks(domain, func(dataDir string, language lang.Language) ([]task.Task, error) {
			return task.Load(task.FilePath(dataDir, domain, language))
		}))
	}
	return r
}
