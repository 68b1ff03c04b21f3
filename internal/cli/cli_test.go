package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const miniLayout = `{"kind": "plot", "name": "mini", "layout": {"panels": [{
  "id": "assoc", "height": 200,
  "axes": {"x": {"extent": "state", "label_function": "chromosome"}},
  "data_layers": [{
    "id": "points", "type": "scatter",
    "fields": ["id", "position", "log_pvalue"], "id_field": "id",
    "x_axis": {"field": "position"},
    "y_axis": {"axis": 1, "field": "log_pvalue", "floor": 0}
  }]
}]}}`

// testConfig writes a config whose base namespace is static data, plus a
// layouts directory holding the plot "mini". It returns the config path and
// the layouts directory.
func testConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	layouts := filepath.Join(dir, "layouts")
	if err := os.MkdirAll(layouts, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(layouts, "mini.json"), []byte(miniLayout), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := fmt.Sprintf(`layouts_dir = %q

[cache]
backend = "file"
dir = %q

[sources.base]
type = "StaticJSON"
data = [
  { id = "10:100_A/G", position = 100, log_pvalue = 2.0 },
  { id = "10:200_C/T", position = 200, log_pvalue = 6.0 },
]
`, layouts, filepath.Join(dir, "cache"))

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, layouts
}

// testCLI returns a CLI with a silent logger reading the config at path.
func testCLI(path string) *CLI {
	c := New(io.Discard, LogInfo)
	c.configPath = path
	return c
}
