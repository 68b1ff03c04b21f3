package cli

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/locuszoom/pkg/cache"
	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := defaultConfig()
	if err != nil {
		t.Fatalf("defaultConfig() error = %v", err)
	}

	want := []string{"base", "gene", "genome", "intervals", "ld", "recomb", "sig"}
	if got := cfg.namespaces(); !reflect.DeepEqual(got, want) {
		t.Errorf("namespaces() = %v, want %v", got, want)
	}
	if cfg.Cache.Backend != backendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, backendFile)
	}
	if ttl, err := cfg.Cache.ttl(); err != nil || ttl != 24*time.Hour {
		t.Errorf("Cache.ttl() = %v, %v, want 24h", ttl, err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}

	var total float64
	for _, rec := range cfg.Sources["genome"].Data {
		switch bp := rec["base_pairs"].(type) {
		case int64:
			total += float64(bp)
		default:
			t.Fatalf("base_pairs has type %T", bp)
		}
	}
	if total != 2881033286 {
		t.Errorf("genome length = %.0f, want 2881033286", total)
	}
}

func TestDefaultConfigBindsEverySource(t *testing.T) {
	cfg, err := defaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	srcs, err := cfg.newSources(cache.NewNullCache())
	if err != nil {
		t.Fatalf("newSources() error = %v", err)
	}
	if got := srcs.Keys(); len(got) != len(cfg.Sources) {
		t.Errorf("Keys() = %v, want %d namespaces", got, len(cfg.Sources))
	}
	base, ok := srcs.Get("base")
	if !ok || base.Name() != data.AssociationName {
		t.Fatalf("base source = %v, want %s", base, data.AssociationName)
	}
	if base.Init().URL == "" {
		t.Error("base source has no url")
	}
	sig, _ := srcs.Get("sig")
	if sig.Name() != data.StaticName {
		t.Errorf("sig source = %s, want %s", sig.Name(), data.StaticName)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path, layouts := testConfig(t)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.LayoutsDir != layouts {
		t.Errorf("LayoutsDir = %q, want %q", cfg.LayoutsDir, layouts)
	}
	if got := cfg.Sources["base"].Type; got != data.StaticName {
		t.Errorf("base type = %q, want %q (file replaces the default)", got, data.StaticName)
	}
	if got := cfg.Sources["ld"].Type; got != data.LDName {
		t.Errorf("ld type = %q, want default %q", got, data.LDName)
	}
	if cfg.Cache.TTL != "24h" {
		t.Errorf("Cache.TTL = %q, want default 24h", cfg.Cache.TTL)
	}

	reg, err := cfg.newLayouts()
	if err != nil {
		t.Fatalf("newLayouts() error = %v", err)
	}
	for _, name := range []string{"mini", "standard_association"} {
		if !reg.Has(layout.KindPlot, name) {
			t.Errorf("registry missing plot %q", name)
		}
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing explicit file", filepath.Join(dir, "nope.toml")},
		{"unknown key", write("unknown.toml", "[cache]\nbackend = \"file\"\ncolour = \"red\"\n")},
		{"bad syntax", write("syntax.toml", "[cache\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.path)
			if !errors.Is(err, errors.ErrCodeConfig) {
				t.Errorf("loadConfig() error = %v, want CONFIG_ERROR", err)
			}
		})
	}
}

func TestLoadConfigMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error = %v", err)
	}
	if len(cfg.Sources) == 0 {
		t.Error("missing default file should yield the built-in sources")
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cache   CacheConfig
		noCache bool
		want    string
		code    errors.Code
	}{
		{"file", CacheConfig{Backend: backendFile, Dir: t.TempDir()}, false, "*cache.FileCache", ""},
		{"none", CacheConfig{Backend: backendNone}, false, "*cache.NullCache", ""},
		{"no-cache flag", CacheConfig{Backend: backendFile}, true, "*cache.NullCache", ""},
		{"redis without addr", CacheConfig{Backend: backendRedis}, false, "", errors.ErrCodeConfig},
		{"unknown backend", CacheConfig{Backend: "memcached"}, false, "", errors.ErrCodeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Cache: tt.cache}
			c, err := cfg.newCache(ctx, tt.noCache)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("newCache() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("newCache() error = %v", err)
			}
			defer c.Close()
			if got := reflect.TypeOf(c).String(); got != tt.want {
				t.Errorf("newCache() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewSourcesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  SourceConfig
		code errors.Code
	}{
		{"unknown type", SourceConfig{Type: "BogusLZ", URL: "http://x/"}, errors.ErrCodeSourceResolution},
		{"missing url", SourceConfig{Type: data.AssociationName}, errors.ErrCodeMissingURL},
		{"static without data", SourceConfig{Type: data.StaticName}, errors.ErrCodeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Sources: map[string]SourceConfig{"x": tt.src}}
			_, err := cfg.newSources(cache.NewNullCache())
			if !errors.Is(err, tt.code) {
				t.Errorf("newSources() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCacheTTL(t *testing.T) {
	if d, err := (CacheConfig{}).ttl(); err != nil || d != 0 {
		t.Errorf("empty ttl = %v, %v, want 0", d, err)
	}
	if _, err := (CacheConfig{TTL: "soon"}).ttl(); !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("bad ttl error = %v, want CONFIG_ERROR", err)
	}
}

func TestKeyerPrefix(t *testing.T) {
	plain := (&Config{}).keyer().ResponseKey("base", "http://x/")
	scoped := (&Config{Cache: CacheConfig{Prefix: "team"}}).keyer().ResponseKey("base", "http://x/")
	if plain == scoped {
		t.Errorf("prefix should change keys, both = %q", plain)
	}
}
