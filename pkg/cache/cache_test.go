package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"data":{}}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v", hit, err)
	}
	if string(data) != `{"data":{}}` {
		t.Errorf("Get(k) = %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned as hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), 0)

	if err := os.WriteFile(c.path("k"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 2 {
		t.Errorf("Clear() removed %d entries, want 2", n)
	}
	for _, k := range []string{"a", "b"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s survived Clear", k)
		}
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("Clear should keep the root: %v", err)
	}
	if n, err := c.Clear(); err != nil || n != 0 {
		t.Errorf("Clear() on empty cache = %d, %v", n, err)
	}
}

func TestFileCacheStatsAndPrune(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	k := NewScopedKeyer(NewDefaultKeyer(), "team:")
	_ = c.Set(ctx, k.ResponseKey("base", "http://x/1"), []byte("r1"), time.Hour)
	_ = c.Set(ctx, k.ResponseKey("ld", "http://x/2"), []byte("r2"), 0)
	_ = c.Set(ctx, k.ArtifactKey(ArtifactKeyOpts{Layout: "standard_association", Format: "svg"}), []byte("<svg/>"), 0)
	_ = c.Set(ctx, "stale", []byte("old"), time.Minute)

	now = now.Add(30 * time.Minute)
	st, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Responses != 2 || st.Artifacts != 1 || st.Expired != 1 {
		t.Errorf("Stats() = %+v, want 2 responses, 1 artifact, 1 expired", st)
	}
	if st.Bytes <= 0 {
		t.Errorf("Stats().Bytes = %d", st.Bytes)
	}

	n, err := c.Prune()
	if err != nil || n != 1 {
		t.Fatalf("Prune() = %d, %v, want 1", n, err)
	}
	if st, _ := c.Stats(); st.Expired != 0 || st.Responses != 2 {
		t.Errorf("after Prune Stats() = %+v", st)
	}
}

func TestFileCacheStatsMissingDir(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	_ = os.RemoveAll(c.Dir())
	if st, err := c.Stats(); err != nil || st != (FileStats{}) {
		t.Errorf("Stats() on missing dir = %+v, %v", st, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	rk := k.ResponseKey("base", "https://example.org/results/?filter=x")
	if !strings.HasPrefix(rk, "response:base:") || len(rk) != len("response:base:")+64 {
		t.Errorf("ResponseKey unexpected: %s", rk)
	}
	if rk == k.ResponseKey("ld", "https://example.org/results/?filter=x") {
		t.Error("namespace should be part of the response key")
	}

	a1 := k.ArtifactKey(ArtifactKeyOpts{Layout: "standard_association", Chr: "10", Start: 1, End: 2, Format: "svg"})
	a2 := k.ArtifactKey(ArtifactKeyOpts{Layout: "standard_association", Chr: "10", Start: 1, End: 2, Format: "json"})
	if a1 == a2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(a1, "artifact:standard_association:") {
		t.Errorf("ArtifactKey unexpected: %s", a1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")

	if got := scoped.ResponseKey("base", "u"); !strings.HasPrefix(got, "staging:response:base:") {
		t.Errorf("ScopedKeyer ResponseKey unexpected: %s", got)
	}
	if got := scoped.ArtifactKey(ArtifactKeyOpts{}); !strings.HasPrefix(got, "staging:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey unexpected: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().ResponseKey("test", "key")
	if got := scoped.ResponseKey("test", "key"); got != want {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

// TestRedisCache runs against a live server when LOCUSZOOM_TEST_REDIS is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("LOCUSZOOM_TEST_REDIS")
	if addr == "" {
		t.Skip("LOCUSZOOM_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "locuszoom:test:" + Hash([]byte(t.Name()))
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry survived Delete")
	}
}
