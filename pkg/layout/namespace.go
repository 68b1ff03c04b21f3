package layout

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{namespace(\[[A-Za-z_0-9]+\]|)\}\}`)

// ApplyNamespaces replaces every namespace placeholder in l's values and keys
// using l's own "namespace" property, and returns the result. l is modified
// in place for nested objects.
//
// Two keys that resolve to the same string collide; the key that sorts last
// wins.
func ApplyNamespaces(l Layout) Layout {
	ns := namespaces(l["namespace"])
	out, _ := ns.apply(l).(map[string]any)
	return out
}

// nsMap holds the resolved namespace separators for one layout.
type nsMap struct {
	def  string
	keys map[string]string
}

func namespaces(raw any) nsMap {
	ns := nsMap{keys: make(map[string]string)}
	switch t := raw.(type) {
	case string:
		ns.def = t
	case map[string]any:
		for k, v := range t {
			ns.keys[k] = withSep(fmt.Sprint(v))
		}
		if d, ok := t["default"]; ok {
			ns.def = fmt.Sprint(d)
		} else if len(t) > 0 {
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			ns.def = fmt.Sprint(t[keys[0]])
		}
	}
	ns.def = withSep(ns.def)
	return ns
}

// DefaultNamespace returns the default namespace of a layout's "namespace"
// property, without separator.
func DefaultNamespace(raw any) string {
	return strings.TrimSuffix(namespaces(raw).def, ":")
}

func withSep(ns string) string {
	if ns == "" {
		return ""
	}
	return ns + ":"
}

func (ns nsMap) apply(v any) any {
	switch t := v.(type) {
	case string:
		return ns.resolve(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			val := ns.apply(t[k])
			nk := ns.resolve(k)
			if nk != k {
				delete(t, k)
			}
			t[nk] = val
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = ns.apply(e)
		}
		return t
	default:
		return v
	}
}

func (ns nsMap) resolve(s string) string {
	if !strings.Contains(s, "{{namespace") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		if key := strings.Trim(sub[1], "[]"); key != "" {
			if v, ok := ns.keys[key]; ok {
				return v
			}
		}
		return ns.def
	})
}
