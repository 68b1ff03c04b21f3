package plot

import (
	"testing"

	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/scale"
)

func TestResolve(t *testing.T) {
	r := resolver{scales: scale.NewRegistry()}
	ref := data.Record{"ld:isrefvar": 1.0, "ld:state": 0.5}
	other := data.Record{"ld:state": 0.9}
	color := []any{
		map[string]any{"scale_function": "if", "field": "ld:isrefvar",
			"parameters": map[string]any{"field_value": 1.0, "then": "#9632b8"}},
		map[string]any{"scale_function": "numerical_bin", "field": "ld:state",
			"parameters": map[string]any{"breaks": []any{0.0, 0.8}, "values": []any{"low", "mid", "high"}}},
		"#B8B8B8",
	}
	tests := []struct {
		name string
		spec any
		rec  data.Record
		want any
	}{
		{"constant", "circle", other, "circle"},
		{"nil", nil, other, nil},
		{"first hit wins", color, ref, "#9632b8"},
		{"falls through", color, other, "high"},
		{"missing field takes the first bin", color, data.Record{}, "low"},
		{"object without function", map[string]any{"field": "x"}, other, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.resolve(tt.spec, tt.rec); got != tt.want {
				t.Errorf("resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveCheck(t *testing.T) {
	r := resolver{scales: scale.NewRegistry()}
	spec := []any{"#fff", map[string]any{"scale_function": "nope"}}
	err := r.check("color", spec)
	if !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("check() = %v, want CONFIG_ERROR", err)
	}
	if err := r.check("color", "#fff"); err != nil {
		t.Errorf("check(constant) = %v", err)
	}
}

func TestFilters(t *testing.T) {
	rec := data.Record{"pval|neglog10": 7.5, "name": "T2D", "ld:state": 0.9}
	tests := []struct {
		name string
		raw  []any
		want bool
	}{
		{"ge", []any{map[string]any{"field": "pval|neglog10", "operator": ">=", "value": 5.0}}, true},
		{"lt", []any{map[string]any{"field": "pval|neglog10", "operator": "<", "value": 5.0}}, false},
		{"eq default", []any{map[string]any{"field": "name", "value": "T2D"}}, true},
		{"in", []any{map[string]any{"field": "name", "operator": "in", "value": []any{"BMI", "T2D"}}}, true},
		{"missing field", []any{map[string]any{"field": "absent", "operator": ">", "value": 1.0}}, false},
		{"expression", []any{`d["ld:state"] > 0.8 && d.name == "T2D"`}, true},
		{"all must match", []any{
			map[string]any{"field": "name", "value": "T2D"},
			`d["pval|neglog10"] > 10`,
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := parseFilters(tt.raw)
			if err != nil {
				t.Fatalf("parseFilters() error = %v", err)
			}
			if got := matchAll(fs, rec); got != tt.want {
				t.Errorf("matchAll() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseFiltersErrors(t *testing.T) {
	for _, raw := range [][]any{
		{map[string]any{"operator": ">"}},
		{map[string]any{"field": "x", "operator": "~"}},
		{"d.x >"},
		{42.0},
	} {
		if _, err := parseFilters(raw); !errors.Is(err, errors.ErrCodeConfig) {
			t.Errorf("parseFilters(%v) error = %v, want CONFIG_ERROR", raw, err)
		}
	}
}

func TestFill(t *testing.T) {
	rec := data.Record{"phewas_string": "Type 2 diabetes", "n": 12.0}
	if got := fill("{{phewas_string}} (n={{n}}){{missing}}", rec); got != "Type 2 diabetes (n=12)" {
		t.Errorf("fill() = %q", got)
	}
}
