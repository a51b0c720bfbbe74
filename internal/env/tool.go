package env

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ToolType classifies a tool for statistics and schema bookkeeping.
type ToolType string

const (
	ToolRead    ToolType = "read"
	ToolWrite   ToolType = "write"
	ToolThink   ToolType = "think"
	ToolGeneric ToolType = "generic"
)

// Param is one typed parameter of a tool. Type is a JSON type name; Items
// is the element type when Type is "array". Optional parameters are kept
// out of the schema's required list but retain their concrete type.
type Param struct {
	Name     string
	Type     string
	Items    string
	Optional bool
}

// Tool is one callable registered in a toolkit. The description bundle is
// not stored here; it is resolved from the static (domain, name, language)
// lookup when the schema is built.
type Tool struct {
	Name   string
	Type   ToolType
	Params []Param
	Fn     func(args map[string]any) (string, error)
}

// PreconditionError marks a tool-input violation. Dispatch converts it to a
// returned string so the agent can observe and recover; it never counts as
// a system error.
type PreconditionError struct {
	msg string
}

func (e *PreconditionError) Error() string { return e.msg }

// Preconditionf builds a PreconditionError.
func Preconditionf(format string, args ...any) error {
	return &PreconditionError{msg: fmt.Sprintf(format, args...)}
}

// IsPrecondition reports whether err is a precondition violation.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// validateArgs checks presence and JSON types of the supplied arguments
// against the declared parameters. Violations surface as precondition
// errors so the agent sees the validation message.
func validateArgs(t *Tool, args map[string]any) error {
	for _, p := range t.Params {
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Optional {
				continue
			}
			return Preconditionf("missing required parameter '%s'", p.Name)
		}
		if !jsonTypeMatches(p.Type, v) {
			return Preconditionf("parameter '%s' must be of type %s", p.Name, p.Type)
		}
	}
	return nil
}

func jsonTypeMatches(jsonType string, v any) bool {
	switch jsonType {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		return isNumber(v)
	case "integer":
		f, ok := asFloat(v)
		return ok && f == float64(int(f))
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	}
	return true
}

func isNumber(v any) bool {
	_, ok := asFloat(v)
	return ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// String extracts a string argument.
func String(args map[string]any, name string) (string, bool) {
	v, ok := args[name].(string)
	return v, ok
}

// Int extracts an integral argument (JSON numbers arrive as float64).
func Int(args map[string]any, name string) (int, bool) {
	f, ok := asFloat(args[name])
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Float extracts a numeric argument.
func Float(args map[string]any, name string) (float64, bool) {
	return asFloat(args[name])
}

// StringList extracts a list-of-strings argument.
func StringList(args map[string]any, name string) ([]string, bool) {
	raw, ok := args[name].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// IntList extracts a list-of-integers argument.
func IntList(args map[string]any, name string) ([]int, bool) {
	raw, ok := args[name].([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, len(raw))
	for i, item := range raw {
		f, ok := asFloat(item)
		if !ok || f != float64(int(f)) {
			return nil, false
		}
		out[i] = int(f)
	}
	return out, true
}
