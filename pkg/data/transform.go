package data

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// Transform converts one fetched value. A nil result drops the value.
type Transform func(v any) any

var transforms = map[string]Transform{
	"neglog10":    negLog10,
	"log10":       log10,
	"scinotation": sciNotation,
}

// Field is a requested column plus the transforms applied to it, parsed
// from "column|t1|t2".
type Field struct {
	Column     string
	Transforms []Transform
}

// ParseField splits a field expression. Unknown transforms are a
// CONFIG_ERROR.
func ParseField(expr string) (Field, error) {
	parts := strings.Split(expr, "|")
	f := Field{Column: parts[0]}
	for _, name := range parts[1:] {
		t, ok := transforms[name]
		if !ok {
			return Field{}, errors.New(errors.ErrCodeConfig, "field %q: unknown transform %q", expr, name)
		}
		f.Transforms = append(f.Transforms, t)
	}
	return f, nil
}

// Apply runs every transform in order.
func (f Field) Apply(v any) any {
	for _, t := range f.Transforms {
		if v == nil {
			return nil
		}
		v = t(v)
	}
	return v
}

func parseFields(exprs []string) ([]Field, error) {
	out := make([]Field, len(exprs))
	for i, e := range exprs {
		f, err := ParseField(e)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

func negLog10(v any) any {
	x, ok := number(v)
	if !ok || x <= 0 {
		return nil
	}
	return -math.Log10(x)
}

func log10(v any) any {
	x, ok := number(v)
	if !ok || x <= 0 {
		return nil
	}
	return math.Log10(x)
}

// sciNotation renders small exponents with three decimals and the rest as
// "m × 10^e".
func sciNotation(v any) any {
	x, ok := number(v)
	if !ok {
		return nil
	}
	if x == 0 {
		return "0"
	}
	var exp float64
	if math.Abs(x) > 1 {
		exp = math.Ceil(math.Log10(math.Abs(x)))
	} else {
		exp = math.Floor(math.Log10(math.Abs(x)))
	}
	if math.Abs(exp) <= 3 {
		return strconv.FormatFloat(x, 'f', 3, 64)
	}
	s := strconv.FormatFloat(x, 'e', 2, 64)
	mant, e, _ := strings.Cut(s, "e")
	n, _ := strconv.Atoi(e)
	return mant + " × 10^" + strconv.Itoa(n)
}
