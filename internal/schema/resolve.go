package schema

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/me/createtaxdb/pkg/model"
	"gopkg.in/yaml.v3"
)

// Resolve coerces raw inputs into typed values for s.
//
// Raw values may be strings (from --param k=v), booleans, numbers or nil
// (from a YAML/JSON job file). nil and empty strings leave a parameter unset. An error is
// returned for names outside s, values that do not fit the declared kind,
// and required parameters left without a value or default.
func Resolve(s *model.Schema, raw map[string]any) (model.Values, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make(model.Values, len(raw))
	for _, name := range names {
		p, ok := s.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownParameter, name)
		}
		v, err := coerce(p, raw[name])
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", name, err)
		}
		values[name] = v
	}

	var missing []string
	for _, p := range s.Params() {
		if p.Type.Optional {
			continue
		}
		if !values.Resolve(p).Set {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrMissingParameter, strings.Join(missing, ", "))
	}
	return values, nil
}

func coerce(p model.Param, raw any) (model.Value, error) {
	if raw == nil {
		return model.Unset(), nil
	}
	switch p.Type.Kind {
	case model.KindBool:
		switch v := raw.(type) {
		case bool:
			return model.Bool(v), nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return model.Value{}, fmt.Errorf("invalid boolean %q", v)
			}
			return model.Bool(b), nil
		default:
			return model.Value{}, fmt.Errorf("expected boolean, got %T", raw)
		}
	default:
		var s string
		switch v := raw.(type) {
		case string:
			s = v
		case bool, int, int64, float64:
			s = fmt.Sprint(v)
		default:
			return model.Value{}, fmt.Errorf("expected %s, got %T", p.Type.Kind, raw)
		}
		// An empty location or name is no value; required parameters then
		// fall through to the missing-parameter check.
		if strings.TrimSpace(s) == "" {
			return model.Unset(), nil
		}
		return model.Value{Kind: p.Type.Kind, Str: s, Set: true}, nil
	}
}

// ParseAssignments parses "name=value" pairs as given to --param.
func ParseAssignments(pairs []string) (map[string]any, error) {
	raw := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter assignment %q (want name=value)", pair)
		}
		raw[name] = value
	}
	return raw, nil
}

// LoadValuesFile reads a YAML or JSON job file mapping parameter names to values.
func LoadValuesFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse params file %s: %w", path, err)
	}
	return raw, nil
}
