package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

func TestRegistryGetSet(t *testing.T) {
	r := NewRegistry()
	tmpl := Layout{
		"namespace": "assoc",
		"fields":    []any{"{{namespace}}pvalue"},
		"width":     800,
	}
	if err := r.Set(KindPanel, "p", tmpl); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := r.Get(KindPanel, "p", Layout{"width": 400})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got["width"] != float64(400) {
		t.Errorf("width = %v, want 400", got["width"])
	}
	if !reflect.DeepEqual(got["fields"], []any{"assoc:pvalue"}) {
		t.Errorf("fields = %v, want [assoc:pvalue]", got["fields"])
	}

	// Mutating the result or the original template leaves the stored copy alone.
	got["fields"].([]any)[0] = "mutated"
	tmpl["width"] = 1
	again, _ := r.Get(KindPanel, "p", nil)
	if again["fields"].([]any)[0] != "assoc:pvalue" || again["width"] != float64(800) {
		t.Errorf("stored template changed: %v", again)
	}
}

func TestRegistryGetOverrideNamespace(t *testing.T) {
	r := NewRegistry()
	_ = r.Set(KindDataLayer, "dl", Layout{
		"namespace": map[string]any{"default": "", "ld": "ld"},
		"fields":    []any{"{{namespace}}position", "{{namespace[ld]}}state"},
	})

	got, err := r.Get(KindDataLayer, "dl", Layout{"namespace": map[string]any{"default": "assoc", "ld": "ld2"}})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := []any{"assoc:position", "ld2:state"}
	if !reflect.DeepEqual(got["fields"], want) {
		t.Errorf("fields = %v, want %v", got["fields"], want)
	}
}

func TestRegistryNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(KindPlot, "missing", nil)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get() error = %v, want NOT_FOUND", err)
	}
	_, err = r.Get(Kind("bogus"), "x", nil)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(unknown kind) error = %v, want NOT_FOUND", err)
	}
}

func TestRegistryDelete(t *testing.T) {
	r := NewRegistry()
	_ = r.Add(KindPanel, "p", Layout{"a": 1})
	if !r.Has(KindPanel, "p") {
		t.Fatal("Has() = false after Add")
	}
	if err := r.Set(KindPanel, "p", nil); err != nil {
		t.Fatalf("Set(nil) error = %v", err)
	}
	if r.Has(KindPanel, "p") {
		t.Error("Has() = true after delete")
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	_ = r.Set(KindPanel, "b", Layout{})
	_ = r.Set(KindPanel, "a", Layout{})
	_ = r.Set(Kind("custom"), "c", Layout{})

	if got := r.List(KindPanel); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("List(panel) = %v, want [a b]", got)
	}
	if got := r.List(KindPlot); len(got) != 0 {
		t.Errorf("List(plot) = %v, want empty", got)
	}

	all := r.ListAll()
	if !reflect.DeepEqual(all[Kind("custom")], []string{"c"}) {
		t.Errorf("ListAll()[custom] = %v", all[Kind("custom")])
	}
	if _, ok := all[KindDashboard]; !ok {
		t.Error("ListAll() missing dashboard kind")
	}
}

func TestRegistrySetRejectsFunctions(t *testing.T) {
	r := NewRegistry()
	err := r.Set(KindPanel, "p", Layout{"f": func() {}})
	if !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("Set() error = %v, want CONFIG_ERROR", err)
	}
}

func TestRegistrySetRejectsBadNames(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"", "a/b", "ns:x"} {
		if err := r.Set(KindPanel, name, Layout{}); err == nil {
			t.Errorf("Set(%q) error = nil, want error", name)
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	want := map[Kind][]string{
		KindDataLayer: {"association_pvalues", "genes", "genome_legend", "intervals", "phewas_pvalues", "recomb_rate", "significance"},
		KindPanel:     {"association", "genes", "genome_legend", "intervals", "phewas"},
		KindPlot:      {"interval_association", "standard_association", "standard_phewas"},
		KindDashboard: {"standard_panel", "standard_plot"},
	}
	for kind, names := range want {
		if got := r.List(kind); !reflect.DeepEqual(got, names) {
			t.Errorf("List(%s) = %v, want %v", kind, got, names)
		}
	}

	plot, err := r.Get(KindPlot, "standard_association", nil)
	if err != nil {
		t.Fatalf("Get(standard_association) error = %v", err)
	}
	panels, ok := plot["panels"].([]any)
	if !ok || len(panels) != 2 {
		t.Fatalf("panels = %v, want 2 panels", plot["panels"])
	}
	assoc := panels[0].(map[string]any)
	if assoc["id"] != "association" || assoc["proportional_height"] != 0.5 {
		t.Errorf("panel[0] = id %v, proportional_height %v", assoc["id"], assoc["proportional_height"])
	}
	layers := assoc["data_layers"].([]any)
	if len(layers) != 3 {
		t.Fatalf("association data_layers = %d, want 3", len(layers))
	}
	pv := layers[2].(map[string]any)
	fields := pv["fields"].([]any)
	if fields[1] != "position" || fields[len(fields)-1] != "ld:state" {
		t.Errorf("association fields = %v", fields)
	}
	if layers[1].(map[string]any)["fields"].([]any)[0] != "recomb:position" {
		t.Errorf("recomb fields = %v", layers[1].(map[string]any)["fields"])
	}

	assertNoPlaceholders(t, "standard_association", plot)
}

func assertNoPlaceholders(t *testing.T, where string, v any) {
	t.Helper()
	switch x := v.(type) {
	case string:
		if strings.Contains(x, "{{namespace") {
			t.Errorf("%s: unresolved placeholder in %q", where, x)
		}
	case map[string]any:
		for k, e := range x {
			assertNoPlaceholders(t, where, k)
			assertNoPlaceholders(t, where+"."+k, e)
		}
	case []any:
		for _, e := range x {
			assertNoPlaceholders(t, where, e)
		}
	}
}
