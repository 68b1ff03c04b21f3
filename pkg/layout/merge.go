package layout

import (
	"reflect"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// Merge returns a new tree containing custom with every property missing from
// custom filled in from def.
//
// For each property of def:
//   - absent or nil in custom: a deep copy of def's value is used
//   - an object on both sides: the two are merged recursively
//   - anything else in custom (scalar, array, object over a scalar): custom wins
//
// Neither argument is modified. Merge fails if either argument is not an
// object or if a compared property holds a function.
func Merge(custom, def any) (Layout, error) {
	c, ok := custom.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeConfig, "merge only accepts two layout objects; %s, %s given", typeName(custom), typeName(def))
	}
	d, ok := def.(map[string]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeConfig, "merge only accepts two layout objects; %s, %s given", typeName(custom), typeName(def))
	}
	out, _ := deepCopy(c).(map[string]any)
	if err := mergeInto(out, d); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeInto(custom, def map[string]any) error {
	for k, dv := range def {
		cv := custom[k]
		if isFunc(cv) || isFunc(dv) {
			return errors.New(errors.ErrCodeConfig, "merge encountered an unsupported property type at %q", k)
		}
		if cv == nil {
			custom[k] = deepCopy(dv)
			continue
		}
		cm, cok := cv.(map[string]any)
		dm, dok := dv.(map[string]any)
		if cok && dok {
			if err := mergeInto(cm, dm); err != nil {
				return err
			}
		}
	}
	return nil
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = deepCopy(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = deepCopy(e)
		}
		return s
	default:
		return v
	}
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if isFunc(v) {
		return "function"
	}
	return reflect.TypeOf(v).Kind().String()
}
