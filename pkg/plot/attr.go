package plot

import (
	"fmt"
	"regexp"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/scale"
)

// resolver evaluates layout attributes against records.
type resolver struct {
	scales *scale.Registry
}

// check verifies every scale function an attribute names is registered.
func (r resolver) check(name string, spec any) error {
	switch v := spec.(type) {
	case []any:
		for _, e := range v {
			if err := r.check(name, e); err != nil {
				return err
			}
		}
	case map[string]any:
		fn, _ := v["scale_function"].(string)
		if _, err := r.scales.Lookup(fn); err != nil {
			return errors.Wrap(errors.ErrCodeConfig, err, "attribute %s", name)
		}
	}
	return nil
}

// resolve returns the attribute value for rec. A constant is returned as
// is; a {scale_function, field, parameters} object is evaluated; in a list
// the first non-nil result wins.
func (r resolver) resolve(spec any, rec data.Record) any {
	switch v := spec.(type) {
	case nil:
		return nil
	case []any:
		for _, e := range v {
			if out := r.resolve(e, rec); out != nil {
				return out
			}
		}
		return nil
	case map[string]any:
		fn, _ := v["scale_function"].(string)
		if fn == "" {
			return nil
		}
		params, _ := v["parameters"].(map[string]any)
		var in any
		if field, ok := v["field"].(string); ok {
			in = rec[field]
		}
		out, err := r.scales.Apply(fn, params, in)
		if err != nil {
			return nil
		}
		return out
	default:
		return v
	}
}

func (r resolver) str(spec any, rec data.Record, def string) string {
	switch v := r.resolve(spec, rec).(type) {
	case nil:
		return def
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (r resolver) num(spec any, rec data.Record, def float64) float64 {
	if f, ok := value(r.resolve(spec, rec)); ok {
		return f
	}
	return def
}

// filter is one label or selection predicate. A filter is either a
// {field, operator, value} triple or an expr-lang boolean expression over
// the record, bound to d.
type filter struct {
	field   string
	op      string
	value   any
	program *vm.Program
}

var exprEnv = map[string]any{"d": map[string]any{}}

func parseFilters(raw any) ([]filter, error) {
	list, _ := raw.([]any)
	out := make([]filter, 0, len(list))
	for i, e := range list {
		switch v := e.(type) {
		case string:
			prog, err := expr.Compile(v, expr.Env(exprEnv), expr.AsBool())
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeConfig, err, "filter %d", i)
			}
			out = append(out, filter{program: prog})
		case map[string]any:
			f := filter{field: str(v, "field", ""), op: str(v, "operator", "="), value: v["value"]}
			if f.field == "" {
				return nil, errors.New(errors.ErrCodeConfig, "filter %d has no field", i)
			}
			if !validOp(f.op) {
				return nil, errors.New(errors.ErrCodeConfig, "filter %d: unknown operator %q", i, f.op)
			}
			out = append(out, f)
		default:
			return nil, errors.New(errors.ErrCodeConfig, "filter %d must be an object or expression", i)
		}
	}
	return out, nil
}

func validOp(op string) bool {
	switch op {
	case "=", "!=", "<", "<=", ">", ">=", "in":
		return true
	}
	return false
}

func (f filter) match(rec data.Record) bool {
	if f.program != nil {
		out, err := expr.Run(f.program, map[string]any{"d": map[string]any(rec)})
		ok, _ := out.(bool)
		return err == nil && ok
	}
	v := rec[f.field]
	switch f.op {
	case "=":
		return scale.Equal(v, f.value)
	case "!=":
		return !scale.Equal(v, f.value)
	case "in":
		list, _ := f.value.([]any)
		for _, c := range list {
			if scale.Equal(v, c) {
				return true
			}
		}
		return false
	}
	a, aok := value(v)
	b, bok := value(f.value)
	if !aok || !bok {
		return false
	}
	switch f.op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func matchAll(filters []filter, rec data.Record) bool {
	for _, f := range filters {
		if !f.match(rec) {
			return false
		}
	}
	return true
}

var placeholder = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// fill substitutes {{field}} references with record values.
func fill(tmpl string, rec data.Record) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		v, ok := rec[m[2:len(m)-2]]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}
