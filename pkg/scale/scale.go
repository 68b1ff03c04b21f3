// Package scale maps data values to visual attributes through named,
// parameterised functions.
//
// A [Registry] is constructed with the built-in functions:
//
//	numerical_cut  (alias numerical_bin)   bucket a number by ascending breaks
//	categorical_cut (alias categorical_bin) look a value up by category position
//	if                                     pick then/else by equality
//	interpolate                            linear interpolation between breaks
//	expression                             evaluate an expr-lang expression
//
// Layouts reference them by name:
//
//	color:
//	  scale_function: numerical_bin
//	  field: ld:state
//	  parameters: {breaks: [0, 0.2, 0.4, 0.6, 0.8], values: [c0, c1, c2, c3, c4, c5]}
package scale

import (
	"sort"
	"sync"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// Func maps a value to an attribute under the given parameters. A nil result
// means "no opinion", letting callers fall through to the next candidate.
type Func func(params map[string]any, value any) any

// Registry is a named table of scale functions. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.funcs["numerical_cut"] = NumericalCut
	r.funcs["numerical_bin"] = NumericalCut
	r.funcs["categorical_cut"] = CategoricalCut
	r.funcs["categorical_bin"] = CategoricalCut
	r.funcs["if"] = If
	r.funcs["interpolate"] = Interpolate
	r.funcs["expression"] = newExpression().apply
	return r
}

// Lookup returns the raw function. An empty name returns nil without error;
// an unknown name fails with NOT_FOUND.
func (r *Registry) Lookup(name string) (Func, error) {
	if name == "" {
		return nil, nil
	}
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "scale function [%s] not found", name)
	}
	return fn, nil
}

// Apply looks up name and evaluates it. An empty name yields nil.
func (r *Registry) Apply(name string, params map[string]any, value any) (any, error) {
	fn, err := r.Lookup(name)
	if err != nil || fn == nil {
		return nil, err
	}
	return fn(params, value), nil
}

// Add registers fn under a new name. It fails if the name is taken.
func (r *Registry) Add(name string, fn Func) error {
	if name == "" || fn == nil {
		return errors.New(errors.ErrCodeConfig, "scale function requires a name and a function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funcs[name]; ok {
		return errors.New(errors.ErrCodeConfig, "scale function [%s] already exists", name)
	}
	r.funcs[name] = fn
	return nil
}

// Set registers fn under name, replacing any existing entry. A nil fn
// removes the entry.
func (r *Registry) Set(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fn == nil {
		delete(r.funcs, name)
		return
	}
	r.funcs[name] = fn
}

// List returns the sorted registered names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
