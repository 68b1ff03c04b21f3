package layout

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// Kind identifies a class of layout.
type Kind string

// Layout kinds.
const (
	KindPlot      Kind = "plot"
	KindPanel     Kind = "panel"
	KindDataLayer Kind = "data_layer"
	KindDashboard Kind = "dashboard"
)

// Kinds lists the built-in kinds in dependency order: data layers and
// dashboards are embedded by panels, panels by plots.
var Kinds = []Kind{KindDataLayer, KindDashboard, KindPanel, KindPlot}

// ValidKinds is the set of built-in kinds.
var ValidKinds = map[Kind]bool{
	KindPlot:      true,
	KindPanel:     true,
	KindDataLayer: true,
	KindDashboard: true,
}

// Layout is a JSON-compatible configuration tree.
type Layout = map[string]any

// Registry stores named layout templates by kind. It is safe for concurrent use.
//
// Callers never share memory with the registry: Set stores a deep copy and
// Get returns a fresh one.
type Registry struct {
	mu      sync.RWMutex
	layouts map[Kind]map[string]Layout
}

// NewRegistry returns an empty registry with the built-in kinds allocated.
func NewRegistry() *Registry {
	r := &Registry{layouts: make(map[Kind]map[string]Layout)}
	for _, k := range Kinds {
		r.layouts[k] = make(map[string]Layout)
	}
	return r
}

// Get returns the named template with overrides merged on top and namespace
// placeholders resolved. The result is a JSON round-trip copy, so numbers are
// float64 and the caller may modify it freely.
func (r *Registry) Get(kind Kind, name string, overrides Layout) (Layout, error) {
	r.mu.RLock()
	tmpl, ok := r.layouts[kind][name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "layout type [%s] name [%s] not found", kind, name)
	}

	if overrides == nil {
		overrides = Layout{}
	}
	merged, err := Merge(overrides, tmpl)
	if err != nil {
		return nil, err
	}
	return jsonCopy(ApplyNamespaces(merged))
}

// Set stores a deep copy of l under kind/name. A nil layout deletes the entry.
// Unknown kinds are created on first use.
func (r *Registry) Set(kind Kind, name string, l Layout) error {
	if kind == "" {
		return errors.New(errors.ErrCodeConfig, "unable to set layout: empty kind")
	}
	if err := errors.ValidateName("layout", name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if l == nil {
		delete(r.layouts[kind], name)
		return nil
	}
	c, err := jsonCopy(l)
	if err != nil {
		return err
	}
	if r.layouts[kind] == nil {
		r.layouts[kind] = make(map[string]Layout)
	}
	r.layouts[kind][name] = c
	return nil
}

// Add is an alias for Set.
func (r *Registry) Add(kind Kind, name string, l Layout) error {
	return r.Set(kind, name, l)
}

// List returns the sorted names stored for kind.
func (r *Registry) List(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedNames(r.layouts[kind])
}

// ListAll returns the sorted names of every kind.
func (r *Registry) ListAll() map[Kind][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Kind][]string, len(r.layouts))
	for k, m := range r.layouts {
		out[k] = sortedNames(m)
	}
	return out
}

// Has reports whether kind/name is stored.
func (r *Registry) Has(kind Kind, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.layouts[kind][name]
	return ok
}

func sortedNames(m map[string]Layout) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func jsonCopy(l Layout) (Layout, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "layout is not JSON-safe")
	}
	var out Layout
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "layout round-trip")
	}
	return out, nil
}
