package cli

import (
	"context"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/locuszoom/pkg/buildinfo"
	"github.com/matzehuels/locuszoom/pkg/cache"
	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/layout"
)

//go:embed defaults.toml
var defaultsTOML string

// Cache backends.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the CLI configuration file.
type Config struct {
	Sources    map[string]SourceConfig `toml:"sources"`
	Cache      CacheConfig             `toml:"cache"`
	Server     ServerConfig            `toml:"server"`
	Log        LogConfig               `toml:"log"`
	LayoutsDir string                  `toml:"layouts_dir"`
}

// SourceConfig binds one namespace.
type SourceConfig struct {
	Type    string           `toml:"type"`
	URL     string           `toml:"url"`
	Timeout string           `toml:"timeout"`
	Params  map[string]any   `toml:"params"`
	Data    []map[string]any `toml:"data"` // StaticJSON records
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
	TTL           string `toml:"ttl"`
}

// ServerConfig configures serve.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig sets the log level and output format.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// defaultConfig decodes the built-in configuration.
func defaultConfig() (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(defaultsTOML, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode built-in config")
	}
	return &cfg, nil
}

// loadConfig returns the built-in configuration overlaid with the file at
// path. An empty path uses the default location, where a missing file is
// not an error.
func loadConfig(path string) (*Config, error) {
	cfg, err := defaultConfig()
	if err != nil {
		return nil, err
	}
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	var file Config
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeConfig, "config %s: unknown key %q", path, undecoded[0].String())
	}
	cfg.merge(file)
	return cfg, nil
}

// merge overlays the non-empty values of o.
func (c *Config) merge(o Config) {
	if c.Sources == nil {
		c.Sources = map[string]SourceConfig{}
	}
	for ns, s := range o.Sources {
		c.Sources[ns] = s
	}
	if o.Cache.Backend != "" {
		c.Cache.Backend = o.Cache.Backend
	}
	if o.Cache.Dir != "" {
		c.Cache.Dir = o.Cache.Dir
	}
	if o.Cache.RedisAddr != "" {
		c.Cache.RedisAddr = o.Cache.RedisAddr
	}
	if o.Cache.RedisPassword != "" {
		c.Cache.RedisPassword = o.Cache.RedisPassword
	}
	if o.Cache.RedisDB != 0 {
		c.Cache.RedisDB = o.Cache.RedisDB
	}
	if o.Cache.Prefix != "" {
		c.Cache.Prefix = o.Cache.Prefix
	}
	if o.Cache.TTL != "" {
		c.Cache.TTL = o.Cache.TTL
	}
	if o.Server.Addr != "" {
		c.Server.Addr = o.Server.Addr
	}
	if o.Log.Level != "" {
		c.Log.Level = o.Log.Level
	}
	if o.Log.Format != "" {
		c.Log.Format = o.Log.Format
	}
	if o.LayoutsDir != "" {
		c.LayoutsDir = o.LayoutsDir
	}
}

// ttl parses the cache TTL. Zero keeps entries until cleared.
func (c CacheConfig) ttl() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeConfig, err, "invalid cache ttl %q", c.TTL)
	}
	return d, nil
}

// rawInit returns the raw init handed to the source factory, normalised to the
// JSON value types the data package expects.
func (s SourceConfig) rawInit() (any, error) {
	raw := map[string]any{}
	if s.URL != "" {
		raw["url"] = s.URL
	}
	if s.Timeout != "" {
		raw["timeout"] = s.Timeout
	}
	if len(s.Params) > 0 {
		raw["params"] = s.Params
	}
	if s.Data != nil {
		raw["data"] = s.Data
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "encode source init")
	}
	var out any
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "decode source init")
	}
	return out, nil
}

// namespaces returns the configured namespaces, sorted.
func (c *Config) namespaces() []string {
	out := make([]string, 0, len(c.Sources))
	for ns := range c.Sources {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// newCache opens the configured cache backend. noCache forces the null cache.
func (c *Config) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		if c.Cache.RedisAddr == "" {
			return nil, errors.New(errors.ErrCodeConfig, "cache: redis backend requires redis_addr")
		}
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		})
	case backendFile, "":
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, errors.New(errors.ErrCodeConfig, "cache: unknown backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
}

// keyer scopes cache keys by the configured prefix.
func (c *Config) keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

func (c *Config) cacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cacheDir()
}

// newSources binds every configured namespace. Responses go through c.
func (c *Config) newSources(rc cache.Cache) (*data.Sources, error) {
	ttl, err := c.Cache.ttl()
	if err != nil {
		return nil, err
	}
	client := data.NewClient(rc, ttl, map[string]string{"User-Agent": buildinfo.UserAgent()}).
		WithKeyer(c.keyer())
	srcs := data.NewSources(data.WithFetcher(client))
	for _, ns := range c.namespaces() {
		s := c.Sources[ns]
		raw, err := s.rawInit()
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", ns, err)
		}
		if err := srcs.AddKnown(ns, s.Type, raw); err != nil {
			return nil, fmt.Errorf("source %q: %w", ns, err)
		}
	}
	return srcs, nil
}

// newLayouts returns the built-in layouts plus those in layouts_dir.
func (c *Config) newLayouts() (*layout.Registry, error) {
	reg, err := layout.Default()
	if err != nil {
		return nil, err
	}
	if c.LayoutsDir == "" {
		return reg, nil
	}
	if _, err := reg.LoadDir(c.LayoutsDir); err != nil {
		return nil, err
	}
	return reg, nil
}
