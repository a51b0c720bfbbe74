// Package config loads the model configuration file and holds the
// run-level defaults.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Simulation defaults.
const (
	DefaultMaxSteps       = 300
	DefaultMaxRetries     = 3
	DefaultMaxErrors      = 10
	DefaultSeed           = 300
	DefaultMaxConcurrency = 1
	DefaultNumTrials      = 1
	DefaultEvaluationType = "trajectory"
)

// LLM defaults.
const (
	DefaultAgentImplementation = "llm_agent"
	DefaultUserImplementation  = "user_simulator"
	DefaultTimeoutSeconds      = 600
)

// Cost holds per-million-token prices in dollars.
type Cost struct {
	PromptPrice     float64 `yaml:"prompt_price" json:"prompt_price"`
	CompletionPrice float64 `yaml:"completion_price" json:"completion_price"`
}

// Model is one entry of models.yaml, with the default block merged in.
type Model struct {
	Name        string            `yaml:"name" json:"name"`
	BaseURL     string            `yaml:"base_url" json:"base_url"`
	APIKey      string            `yaml:"api_key" json:"api_key"`
	Headers     map[string]string `yaml:"headers" json:"headers,omitempty"`
	Temperature *float64          `yaml:"temperature" json:"temperature,omitempty"`
	MaxTokens   int               `yaml:"max_tokens" json:"max_tokens,omitempty"`
	Seed        *int              `yaml:"seed" json:"seed,omitempty"`
	Timeout     int               `yaml:"timeout" json:"timeout,omitempty"`
	Cost        *Cost             `yaml:"cost_1m_token_dollar" json:"cost_1m_token_dollar,omitempty"`
}

// Models maps model name to its merged configuration.
type Models map[string]Model

// Get looks up a model by name.
func (m Models) Get(name string) (Model, error) {
	model, ok := m[name]
	if !ok {
		return Model{}, fmt.Errorf("model %q not found in model configuration", name)
	}
	return model, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// substituteEnvVars expands ${VAR} and ${VAR:default} in a string.
func substituteEnvVars(text string) string {
	return envVarPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if v, ok := os.LookupEnv(groups[1]); ok {
			return v
		}
		return groups[2]
	})
}

func substituteRecursive(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = substituteRecursive(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = substituteRecursive(item)
		}
		return out
	case string:
		return substituteEnvVars(v)
	default:
		return data
	}
}

func deepMerge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		if existing, ok := result[k]; ok {
			if em, ok := existing.(map[string]any); ok {
				if om, ok := v.(map[string]any); ok {
					result[k] = deepMerge(em, om)
					continue
				}
			}
		}
		result[k] = v
	}
	return result
}

// LoadModels reads a models.yaml file: a `default` block plus a `models`
// list, with ${VAR}/${VAR:default} substituted and the default block
// deep-merged under every model.
func LoadModels(path string) (Models, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model configuration file (%s) does not exist, you should create it first: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc, _ = substituteRecursive(doc).(map[string]any)

	defaultBlock, _ := doc["default"].(map[string]any)
	if defaultBlock == nil {
		defaultBlock = map[string]any{}
	}
	models := Models{}
	if def, err := decodeModel(defaultBlock); err == nil {
		models["default"] = def
	}
	list, _ := doc["models"].([]any)
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		merged := deepMerge(defaultBlock, entry)
		model, err := decodeModel(merged)
		if err != nil {
			return nil, err
		}
		if model.Name == "" {
			return nil, fmt.Errorf("model entry in %s is missing a name", path)
		}
		models[model.Name] = model
	}
	return models, nil
}

func decodeModel(data map[string]any) (Model, error) {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return Model{}, fmt.Errorf("re-encode model entry: %w", err)
	}
	var model Model
	if err := yaml.Unmarshal(raw, &model); err != nil {
		return Model{}, fmt.Errorf("decode model entry: %w", err)
	}
	if model.Timeout == 0 {
		model.Timeout = DefaultTimeoutSeconds
	}
	return model, nil
}
