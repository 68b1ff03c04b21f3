package plot

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/matzehuels/locuszoom/pkg/scale"
	"github.com/matzehuels/locuszoom/pkg/scene"
)

func sub(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func str(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

func numOr(m map[string]any, key string, def float64) float64 {
	if f, ok := scale.Number(m[key]); ok && !math.IsNaN(f) {
		return f
	}
	return def
}

func flag(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func value(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, ok := scale.Number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringList(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// css renders a style map as a deterministic CSS declaration list.
func css(style map[string]any) string {
	if len(style) == 0 {
		return ""
	}
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, style[k]))
	}
	return strings.Join(parts, "; ")
}

func translate(x, y float64) string {
	return fmt.Sprintf("translate(%s,%s)", scene.Num(x), scene.Num(y))
}
