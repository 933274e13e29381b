package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	ParamString      ParamType = "string"
	ParamNumber      ParamType = "number"
	ParamInteger     ParamType = "integer"
	ParamBoolean     ParamType = "boolean"
	ParamStringArray ParamType = "array<string>"
)

// Param declares a single named tool parameter.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
}

// Args holds arguments that passed validation. Values keep their decoded
// JSON representation; the getters convert them to Go types.
type Args map[string]any

// Has reports whether the argument was supplied.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a string argument or "" when absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// StringSlice returns an array<string> argument or nil when absent.
func (a Args) StringSlice(name string) []string {
	switch v := a[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Float returns a numeric argument or 0 when absent.
func (a Args) Float(name string) float64 {
	f, _ := toFloat(a[name])
	return f
}

// Int returns a numeric argument truncated to int, or 0 when absent.
func (a Args) Int(name string) int {
	return int(a.Float(name))
}

// Bool returns a boolean argument or false when absent.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Validate checks raw call arguments against the descriptor's parameter
// table. A nil value is treated as an empty argument object. Arguments not
// declared in the table are kept but not checked.
func (d Descriptor) Validate(raw any) (Args, error) {
	var args map[string]any
	switch v := raw.(type) {
	case nil:
		args = map[string]any{}
	case map[string]any:
		args = v
	case Args:
		args = v
	default:
		return nil, fmt.Errorf("%w: arguments must be an object, got %T", ErrValidation, raw)
	}

	var problems []string
	for _, p := range d.Params {
		value, present := args[p.Name]
		if !present || value == nil {
			if p.Required {
				problems = append(problems, fmt.Sprintf("missing required parameter %q", p.Name))
			}
			continue
		}
		if err := checkType(p, value); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return Args(args), nil
}

func checkType(p Param, value any) error {
	switch p.Type {
	case ParamString:
		if _, ok := value.(string); !ok {
			return typeMismatch(p, value)
		}
	case ParamNumber:
		if _, ok := toFloat(value); !ok {
			return typeMismatch(p, value)
		}
	case ParamInteger:
		f, ok := toFloat(value)
		if !ok || f != math.Trunc(f) {
			return typeMismatch(p, value)
		}
	case ParamBoolean:
		if _, ok := value.(bool); !ok {
			return typeMismatch(p, value)
		}
	case ParamStringArray:
		switch v := value.(type) {
		case []string:
		case []any:
			for i, item := range v {
				if _, ok := item.(string); !ok {
					return fmt.Errorf("parameter %q item %d must be a string, got %s", p.Name, i, jsonKind(item))
				}
			}
		default:
			return typeMismatch(p, value)
		}
	default:
		return fmt.Errorf("parameter %q has unsupported type %q", p.Name, p.Type)
	}
	return nil
}

func typeMismatch(p Param, value any) error {
	return fmt.Errorf("parameter %q must be %s, got %s", p.Name, p.Type, jsonKind(value))
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// jsonKind names a decoded value the way a JSON caller would think of it.
func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// Tool renders the descriptor as an mcp-go tool definition.
func (d Descriptor) Tool() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}

	for _, p := range d.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}

		switch p.Type {
		case ParamNumber:
			opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
		case ParamInteger:
			propOpts = append(propOpts, func(schema map[string]any) {
				schema["type"] = "integer"
			})
			opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
		case ParamBoolean:
			opts = append(opts, mcp.WithBoolean(p.Name, propOpts...))
		case ParamStringArray:
			propOpts = append(propOpts, mcp.Items(map[string]any{"type": "string"}))
			opts = append(opts, mcp.WithArray(p.Name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		}
	}

	return mcp.NewTool(d.Name, opts...)
}
