package scale

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// expression evaluates params["expr"] with the variables value and params.
// Programs are compiled once per source string. Compile or run errors yield
// params["null_value"].
type expression struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

func newExpression() *expression {
	return &expression{cache: make(map[string]*vm.Program)}
}

func (e *expression) apply(params map[string]any, value any) any {
	src, _ := params["expr"].(string)
	if src == "" {
		return nil
	}
	program, err := e.compile(src)
	if err != nil {
		return params["null_value"]
	}
	out, err := expr.Run(program, map[string]any{"value": value, "params": params})
	if err != nil {
		return params["null_value"]
	}
	return out
}

func (e *expression) compile(src string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.cache[src]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[src] = program
	e.mu.Unlock()
	return program, nil
}
