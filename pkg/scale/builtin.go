package scale

import (
	"fmt"
	"math"
	"strconv"
)

// NumericalCut buckets value by ascending params["breaks"]. The result is
// values[i] where i is the number of breaks at or below value, so a value
// equal to a break falls into the upper bucket. Null or NaN values return
// params["null_value"], or values[0] when no null value is set.
func NumericalCut(params map[string]any, value any) any {
	values := list(params["values"])
	if len(values) == 0 {
		return nil
	}
	x, ok := Number(value)
	if !ok || math.IsNaN(x) {
		return nullValue(params, values)
	}
	breaks := list(params["breaks"])
	i := 0
	for ; i < len(breaks); i++ {
		b, ok := Number(breaks[i])
		if !ok || x < b {
			break
		}
	}
	if i >= len(values) {
		i = len(values) - 1
	}
	return values[i]
}

// CategoricalCut returns the values entry at the position of value in
// params["categories"], falling back to null_value or values[0].
func CategoricalCut(params map[string]any, value any) any {
	values := list(params["values"])
	if len(values) == 0 {
		return nil
	}
	if value != nil {
		for i, c := range list(params["categories"]) {
			if Equal(c, value) && i < len(values) {
				return values[i]
			}
		}
	}
	return nullValue(params, values)
}

// If returns params["then"] when value equals params["field_value"] and
// params["else"] otherwise. Either branch may be absent, yielding nil.
func If(params map[string]any, value any) any {
	if Equal(value, params["field_value"]) {
		return params["then"]
	}
	return params["else"]
}

// Interpolate maps value linearly between numeric breaks and values of equal
// length, clamping outside the outermost breaks.
func Interpolate(params map[string]any, value any) any {
	breaks := numbers(list(params["breaks"]))
	values := numbers(list(params["values"]))
	n := min(len(breaks), len(values))
	if n == 0 {
		return nil
	}
	x, ok := Number(value)
	if !ok || math.IsNaN(x) {
		if nv, ok := params["null_value"]; ok {
			return nv
		}
		return nil
	}
	if x <= breaks[0] {
		return values[0]
	}
	if x >= breaks[n-1] {
		return values[n-1]
	}
	for i := 1; i < n; i++ {
		if x <= breaks[i] {
			span := breaks[i] - breaks[i-1]
			if span == 0 {
				return values[i]
			}
			frac := (x - breaks[i-1]) / span
			return values[i-1] + frac*(values[i]-values[i-1])
		}
	}
	return values[n-1]
}

func nullValue(params map[string]any, values []any) any {
	if nv, ok := params["null_value"]; ok {
		return nv
	}
	return values[0]
}

func list(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []float64:
		out := make([]any, len(t))
		for i, f := range t {
			out[i] = f
		}
		return out
	}
	return nil
}

func numbers(vs []any) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		f, ok := Number(v)
		if !ok {
			break
		}
		out = append(out, f)
	}
	return out
}

// Number converts JSON and YAML numeric representations, and numeric
// strings, to float64.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case fmt.Stringer:
		f, err := strconv.ParseFloat(t.String(), 64)
		return f, err == nil
	}
	return 0, false
}

// Equal compares two decoded values, treating numbers of any representation
// as equal when their float64 values match.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if _, ok := b.(string); ok {
		return false
	}
	af, aok := Number(a)
	bf, bok := Number(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
