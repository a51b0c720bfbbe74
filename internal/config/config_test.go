package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `default:
  base_url: ${VITA_TEST_BASE_URL:https://fallback.example/v1/chat/completions}
  api_key: ${VITA_TEST_API_KEY}
  temperature: 0.0
  timeout: 300
  cost_1m_token_dollar:
    prompt_price: 1.0
    completion_price: 2.0
models:
  - name: gpt-4.1
    max_tokens: 4096
  - name: judge-model
    temperature: 0.7
    cost_1m_token_dollar:
      prompt_price: 3.0
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadModels_EnvSubstitution(t *testing.T) {
	t.Setenv("VITA_TEST_API_KEY", "sk-test")
	os.Unsetenv("VITA_TEST_BASE_URL")
	models, err := LoadModels(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	m, err := models.Get("gpt-4.1")
	if err != nil {
		t.Fatal(err)
	}
	if m.BaseURL != "https://fallback.example/v1/chat/completions" {
		t.Errorf("unset var should use the default, got %q", m.BaseURL)
	}
	if m.APIKey != "sk-test" {
		t.Errorf("set var should substitute, got %q", m.APIKey)
	}
}

func TestLoadModels_DeepMerge(t *testing.T) {
	t.Setenv("VITA_TEST_API_KEY", "sk-test")
	models, err := LoadModels(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	m, err := models.Get("gpt-4.1")
	if err != nil {
		t.Fatal(err)
	}
	if m.MaxTokens != 4096 {
		t.Errorf("model override lost: max_tokens = %d", m.MaxTokens)
	}
	if m.Temperature == nil || *m.Temperature != 0.0 {
		t.Errorf("default temperature should merge in, got %v", m.Temperature)
	}
	if m.Timeout != 300 {
		t.Errorf("default timeout should merge in, got %d", m.Timeout)
	}

	judge, err := models.Get("judge-model")
	if err != nil {
		t.Fatal(err)
	}
	if judge.Temperature == nil || *judge.Temperature != 0.7 {
		t.Errorf("override temperature lost, got %v", judge.Temperature)
	}
	if judge.Cost == nil || judge.Cost.PromptPrice != 3.0 {
		t.Fatalf("nested override lost: %+v", judge.Cost)
	}
	if judge.Cost.CompletionPrice != 2.0 {
		t.Errorf("deep merge must keep sibling keys, got %v", judge.Cost.CompletionPrice)
	}
}

func TestLoadModels_MissingFile(t *testing.T) {
	if _, err := LoadModels(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing model configuration must be fatal")
	}
}

func TestGet_Unknown(t *testing.T) {
	t.Setenv("VITA_TEST_API_KEY", "x")
	models, err := LoadModels(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := models.Get("nope"); err == nil {
		t.Error("unknown model lookup must error")
	}
}
