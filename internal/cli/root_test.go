package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/locuszoom/pkg/buildinfo"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"cache", "completion", "layouts", "render", "serve", "sources"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	for _, args := range [][]string{{"layouts", "list"}, {"layouts", "show"}, {"cache", "clear"}, {"cache", "stats"}, {"cache", "path"}} {
		if cmd, _, err := root.Find(args); err != nil || cmd.Name() != args[1] {
			t.Errorf("command %q not registered", strings.Join(args, " "))
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, New(&bytes.Buffer{}, LogInfo), "--version")
	if err != nil {
		t.Fatalf("--version error = %v", err)
	}
	if !strings.Contains(out, appName+" version "+buildinfo.Version) {
		t.Errorf("--version output = %q", out)
	}
}

func TestLayoutsShow(t *testing.T) {
	path, _ := testConfig(t)
	out, err := run(t, testCLI(path), "--config", path, "layouts", "show", "plot", "mini")
	if err != nil {
		t.Fatalf("layouts show error = %v", err)
	}
	var lay map[string]any
	if err := json.Unmarshal([]byte(out), &lay); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if _, ok := lay["panels"]; !ok {
		t.Errorf("resolved layout has no panels: %v", lay)
	}

	if _, err := run(t, testCLI(path), "--config", path, "layouts", "show", "widget", "mini"); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestLayoutsList(t *testing.T) {
	path, _ := testConfig(t)
	out, err := run(t, testCLI(path), "--config", path, "layouts", "list", "plot")
	if err != nil {
		t.Fatalf("layouts list error = %v", err)
	}
	for _, want := range []string{"mini", "standard_association", "standard_phewas"} {
		if !strings.Contains(out, want) {
			t.Errorf("layouts list output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "association_pvalues") {
		t.Error("kind filter should hide data layers")
	}
}

func TestRenderCommand(t *testing.T) {
	path, _ := testConfig(t)
	dir := t.TempDir()

	single := filepath.Join(dir, "mini.svg")
	if _, err := run(t, testCLI(path), "--config", path, "render", "-l", "mini", "-r", "10:1-400", "-o", single); err != nil {
		t.Fatalf("render error = %v", err)
	}
	svg, err := os.ReadFile(single)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Errorf("output is not svg: %.80s", svg)
	}

	base := filepath.Join(dir, "both")
	if _, err := run(t, testCLI(path), "--config", path, "render", "-l", "mini", "-r", "10:1-400", "-f", "svg,json", "-o", base); err != nil {
		t.Fatalf("render error = %v", err)
	}
	for _, ext := range []string{".svg", ".json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}
}

func TestRenderCommandErrors(t *testing.T) {
	path, _ := testConfig(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing region", []string{"render", "-l", "mini"}},
		{"bad format", []string{"render", "-r", "10:1-400", "-f", "png"}},
		{"bad flank", []string{"render", "-r", "10:100", "--flank", "lots"}},
		{"unknown layout", []string{"render", "-l", "nope", "-r", "10:1-400", "--no-cache"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", path}, tt.args...)
			if _, err := run(t, testCLI(path), args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCachePathCommand(t *testing.T) {
	path, _ := testConfig(t)
	out, err := run(t, testCLI(path), "--config", path, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "cache")
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}
}
