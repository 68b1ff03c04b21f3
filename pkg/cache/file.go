package cache

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache stores one JSON file per entry under dir, sharded by the first
// byte of the key hash. It backs CLI runs.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

func (c *FileCache) Dir() string { return c.dir }

// fileEntry is the on-disk form. Key is kept so entries can be grouped by
// kind without a separate index.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get returns the entry for key. Corrupt and expired entries are removed and
// reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	entry, err := readEntry(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil || entry.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set writes the entry atomically through a temporary file.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Key: key, Data: data}
	if ttl > 0 {
		entry.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// FileStats summarises the entries on disk.
type FileStats struct {
	Responses int   // data-source responses
	Artifacts int   // rendered plots
	Expired   int   // entries past their TTL, counted in neither kind
	Bytes     int64 // total size on disk
}

// Stats walks the cache and counts entries by kind.
func (c *FileCache) Stats() (FileStats, error) {
	var st FileStats
	now := c.now()
	err := c.walk(func(path string, info fs.FileInfo, entry fileEntry, err error) error {
		st.Bytes += info.Size()
		switch {
		case err != nil || entry.expired(now):
			st.Expired++
		case keyKind(entry.Key) == "artifact":
			st.Artifacts++
		default:
			st.Responses++
		}
		return nil
	})
	return st, err
}

// Prune removes expired and unreadable entries and returns how many went.
func (c *FileCache) Prune() (int, error) {
	n := 0
	now := c.now()
	err := c.walk(func(path string, _ fs.FileInfo, entry fileEntry, err error) error {
		if err == nil && !entry.expired(now) {
			return nil
		}
		if rmErr := os.Remove(path); rmErr != nil {
			return rmErr
		}
		n++
		return nil
	})
	return n, err
}

// Clear removes every entry, keeping dir itself, and returns how many
// entries were removed.
func (c *FileCache) Clear() (int, error) {
	n := 0
	if err := c.walk(func(string, fs.FileInfo, fileEntry, error) error { n++; return nil }); err != nil {
		return 0, err
	}
	children, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}
	for _, e := range children {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// walk calls fn for every entry file with its decoded contents. A decode
// failure is passed to fn rather than ending the walk.
func (c *FileCache) walk(fn func(path string, info fs.FileInfo, entry fileEntry, err error) error) error {
	return filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entry, derr := readEntry(path)
		return fn(path, info, entry, derr)
	})
}

func readEntry(path string) (fileEntry, error) {
	var entry fileEntry
	raw, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	err = json.Unmarshal(raw, &entry)
	return entry, err
}

// keyKind returns "response" or "artifact" for keys built by a [Keyer],
// skipping any scope prefix.
func keyKind(key string) string {
	if strings.Contains(key, "artifact:") {
		return "artifact"
	}
	return "response"
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
