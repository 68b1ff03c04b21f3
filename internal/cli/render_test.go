package cli

import (
	"reflect"
	"testing"

	"github.com/matzehuels/locuszoom/pkg/region"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "json", []string{"json"}},
		{"multiple formats", "svg,json", []string{"svg", "json"}},
		{"spaces trimmed", "svg, json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, fallback, want string
	}{
		{"", "standard_association_10_1-2", "standard_association_10_1-2"},
		{"plot.svg", "x", "plot"},
		{"out/plot.json", "x", "out/plot"},
		{"plot.png", "x", "plot.png"},
		{"plot", "x", "plot"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.fallback); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.fallback, got, tt.want)
		}
	}
}

func TestDefaultOutputName(t *testing.T) {
	r := region.Region{Chr: "10", Start: 114550452, End: 115067678}
	if got, want := defaultOutputName("standard_association", r), "standard_association_10_114550452-115067678"; got != want {
		t.Errorf("defaultOutputName() = %q, want %q", got, want)
	}
}

func TestNamespaceOverrides(t *testing.T) {
	got, err := namespaceOverrides([]string{"default=assoc", "ld=ld2"})
	if err != nil {
		t.Fatalf("namespaceOverrides() error = %v", err)
	}
	want := map[string]any{"namespace": map[string]any{"default": "assoc", "ld": "ld2"}}
	if !reflect.DeepEqual(map[string]any(got), want) {
		t.Errorf("namespaceOverrides() = %v, want %v", got, want)
	}

	if got, err := namespaceOverrides(nil); err != nil || got != nil {
		t.Errorf("namespaceOverrides(nil) = %v, %v", got, err)
	}
	for _, bad := range []string{"assoc", "=assoc"} {
		if _, err := namespaceOverrides([]string{bad}); err == nil {
			t.Errorf("namespaceOverrides(%q) should fail", bad)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range kindNames() {
		if _, err := parseKind(k); err != nil {
			t.Errorf("parseKind(%q) error = %v", k, err)
		}
	}
	if _, err := parseKind("widget"); err == nil {
		t.Error("parseKind(widget) should fail")
	}
}
