package env

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vitabench/vita/internal/message"
)

// Environment is a simulation's interface to the simulated world: one
// toolkit for a single-domain task, several for a cross-domain task. Tool
// dispatch selects the owning toolkit by name; there is no attribute
// proxying between databases.
type Environment struct {
	kits []Toolkit
}

// New builds an environment over one or more domain toolkits.
func New(kits ...Toolkit) *Environment {
	return &Environment{kits: kits}
}

// DomainName names the environment; cross-domain environments join their
// domains with "+".
func (e *Environment) DomainName() string {
	names := make([]string, len(e.kits))
	for i, k := range e.kits {
		names[i] = k.Domain()
	}
	return strings.Join(names, "+")
}

// Kits exposes the underlying toolkits.
func (e *Environment) Kits() []Toolkit { return e.kits }

// Call executes one tool call and wraps the outcome as a tool message.
// Unknown tools and tool failures are flagged as errors; precondition
// violations come back as plain content.
func (e *Environment) Call(tc message.ToolCall) message.Message {
	for _, k := range e.kits {
		if !k.Has(tc.Name) {
			continue
		}
		out, err := k.Use(tc.Name, tc.Arguments)
		if err != nil {
			return message.Tool(tc.ID, tc.Name, err.Error(), true)
		}
		return message.Tool(tc.ID, tc.Name, out, false)
	}
	return message.Tool(tc.ID, tc.Name, fmt.Sprintf("Tool '%s' not found", tc.Name), true)
}

// OpenAISchema concatenates the tool schemas of every toolkit. Generic
// tools exist in every toolkit under the same name; the first occurrence
// wins, matching dispatch order.
func (e *Environment) OpenAISchema() []map[string]any {
	var out []map[string]any
	seen := map[string]bool{}
	for _, k := range e.kits {
		for _, schema := range k.OpenAISchema() {
			name, _ := schema["function"].(map[string]any)["name"].(string)
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, schema)
		}
	}
	return out
}

// Hash fingerprints the full environment state. A composite hash is the
// hash of the sorted per-domain hashes joined by "|".
func (e *Environment) Hash() (string, error) {
	if len(e.kits) == 1 {
		return e.kits[0].DBHash()
	}
	hashes := make([]string, len(e.kits))
	for i, k := range e.kits {
		h, err := k.DBHash()
		if err != nil {
			return "", err
		}
		hashes[i] = h
	}
	sort.Strings(hashes)
	return HashString(strings.Join(hashes, "|")), nil
}

// Dump serializes the final database state. Cross-domain environments merge
// the per-domain objects into one.
func (e *Environment) Dump() (json.RawMessage, error) {
	if len(e.kits) == 1 {
		return e.kits[0].DumpDB()
	}
	merged := map[string]json.RawMessage{}
	for _, k := range e.kits {
		raw, err := k.DumpDB()
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("merge %s db: %w", k.Domain(), err)
		}
		for key, v := range fields {
			merged[key] = v
		}
	}
	return json.Marshal(merged)
}

// Statistics merges per-domain database and toolkit statistics.
func (e *Environment) Statistics() map[string]any {
	merged := map[string]any{}
	for _, k := range e.kits {
		for key, v := range k.Statistics() {
			merged[key] = v
		}
	}
	return merged
}
