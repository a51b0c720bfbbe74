package env

import (
	"sort"
	"strings"

	"github.com/vitabench/vita/internal/lang"
)

// ToolDesc is the localized description bundle for one tool. It is what
// the LLM sees; the runtime behavior lives in the Tool itself.
type ToolDesc struct {
	Description    string
	Preconditions  string
	Postconditions string
	Args           map[string]string
	Returns        string
}

// GenericDomain keys the description bundles of the base toolkit tools.
const GenericDomain = "toolkit"

var descriptions = map[string]map[lang.Language]map[string]ToolDesc{}

// RegisterDescriptions installs the description bundles for one domain and
// language. Domains call this from their schema files at package init.
func RegisterDescriptions(domain string, language lang.Language, descs map[string]ToolDesc) {
	byLang, ok := descriptions[domain]
	if !ok {
		byLang = map[lang.Language]map[string]ToolDesc{}
		descriptions[domain] = byLang
	}
	byLang[language] = descs
}

// Describe resolves the description bundle for (domain, tool, language),
// falling back to the generic-toolkit domain for base tools.
func Describe(domain, tool string, language lang.Language) (ToolDesc, bool) {
	if d, ok := descriptions[domain][language][tool]; ok {
		return d, true
	}
	d, ok := descriptions[GenericDomain][language][tool]
	return d, ok
}

// docstring renders the bundle the way the LLM-facing tool description is
// assembled: description, pre/postconditions and the return contract.
func (d ToolDesc) docstring() string {
	var sb strings.Builder
	sb.WriteString(d.Description)
	if d.Preconditions != "" {
		sb.WriteString("\nPreconditions:\n    - " + d.Preconditions)
	}
	if d.Postconditions != "" {
		sb.WriteString("\nPostconditions:\n    - " + d.Postconditions)
	}
	if d.Returns != "" {
		sb.WriteString("\nReturns:\n    " + d.Returns)
	}
	return sb.String()
}

// openAISchema renders one tool as an OpenAI function-calling entry.
func openAISchema(domain string, t *Tool, language lang.Language) map[string]any {
	desc, ok := Describe(domain, t.Name, language)
	if !ok {
		desc = ToolDesc{Description: t.Name}
	}
	props := map[string]any{}
	var required []string
	for _, p := range t.Params {
		prop := map[string]any{"type": p.Type}
		if d, ok := desc.Args[p.Name]; ok {
			prop["description"] = d
		}
		if p.Type == "array" {
			items := p.Items
			if items == "" {
				items = "string"
			}
			prop["items"] = map[string]any{"type": items}
		}
		props[p.Name] = prop
		if !p.Optional {
			required = append(required, p.Name)
		}
	}
	params := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        t.Name,
			"description": desc.docstring(),
			"parameters":  params,
		},
	}
}

// missingDescriptions lists registered tools that have no bundle in the
// given language; used by tests to keep the catalogs complete.
func missingDescriptions(domain string, tools []*Tool, language lang.Language) []string {
	var missing []string
	for _, t := range tools {
		if _, ok := Describe(domain, t.Name, language); !ok {
			missing = append(missing, t.Name)
		}
	}
	sort.Strings(missing)
	return missing
}
