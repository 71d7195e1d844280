package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
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

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}

	if n, err := c.Clear(ctx); n != 0 || err != nil {
		t.Errorf("Clear = %d, %v", n, err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	a := write("a.lock", "alpha")
	b := write("b.lock", "beta")

	h1, err := HashFiles([]string{a, b})
	if err != nil {
		t.Fatalf("HashFiles: %v", err)
	}
	h2, _ := HashFiles([]string{b, a})
	if h1 != h2 {
		t.Error("HashFiles should not depend on argument order")
	}

	write("b.lock", "gamma")
	h3, _ := HashFiles([]string{a, b})
	if h1 == h3 {
		t.Error("changed content should change the hash")
	}

	if _, err := HashFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "setup-pdm-Linux"); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "setup-pdm-Linux", []byte("manifest"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "setup-pdm-Linux")
	if err != nil || !hit || string(data) != "manifest" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "setup-pdm-Linux"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "setup-pdm-Linux"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "setup-pdm-Linux"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	path := c.(*FileCache).path("k")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	const manifestKey = "setup-pdm-Linux-x64-python-3.12.1-0123abcd"
	if err := c.Set(ctx, manifestKey, []byte("m"), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, manifestKey+".json")); err != nil {
		t.Errorf("plain key should be stored under its own name: %v", err)
	}

	const oddKey = "../outside/key with spaces"
	if err := c.Set(ctx, oddKey, []byte("o"), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, Hash([]byte(oddKey))+".json")); err != nil {
		t.Errorf("other keys should be stored under their hash: %v", err)
	}
	if data, hit, _ := c.Get(ctx, oddKey); !hit || string(data) != "o" {
		t.Errorf("Get(%q) = %q, %v", oddKey, data, hit)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected two entry files and no temp files, got %v", entries)
	}
}

func TestFileCacheForeignEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fc := c.(*FileCache)
	// An entry recorded for a different key at the same path is a miss.
	raw := []byte(`{"key":"other","data":"bQ=="}`)
	if err := os.WriteFile(fc.path("k"), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("foreign entry: hit=%v err=%v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"a", "b", "c d"} {
		if err := c.Set(ctx, key, []byte(key), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, ".tmp-123"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := c.Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Clear = %d, %v; want 3", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "README" {
		t.Errorf("Clear should leave only unrelated files, got %v", entries)
	}

	if n, err := c.Clear(ctx); n != 0 || err != nil {
		t.Errorf("second Clear = %d, %v", n, err)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("SETUP_PDM_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SETUP_PDM_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, "setup-pdm-test:")
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "manifest-" + Hash([]byte(t.Name()))[:8]
	defer c.Delete(ctx, key)

	if err := c.Set(ctx, key, []byte("paths"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "paths" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry survived Delete")
	}
}

func TestRedisCacheClear(t *testing.T) {
	url := os.Getenv("SETUP_PDM_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SETUP_PDM_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	client := redis.NewClient(opts)
	prefix := "setup-pdm-test-" + Hash([]byte(t.Name()))[:8] + ":"
	c := NewRedisCacheFromClient(client, prefix)
	defer c.Close()

	if err := client.Set(ctx, "unrelated-"+prefix, "keep", time.Minute).Err(); err != nil {
		t.Fatal(err)
	}
	defer client.Del(ctx, "unrelated-"+prefix)
	for _, key := range []string{"a", "b"} {
		if err := c.Set(ctx, key, []byte(key), time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Clear = %d, %v; want 2", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if v, _ := client.Get(ctx, "unrelated-"+prefix).Result(); v != "keep" {
		t.Error("Clear removed a key outside its prefix")
	}
}

func TestRedisCacheClearWithoutPrefix(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "")
	defer c.Close()
	if _, err := c.Clear(context.Background()); err == nil {
		t.Error("expected Clear to refuse an unprefixed cache")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://not-redis", ""); err == nil {
		t.Error("expected error for non-redis URL")
	}
}
