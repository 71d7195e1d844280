package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const entryExt = ".json"

// plainKey matches keys that are used as file names unchanged. Manifest keys
// (setup-pdm-Linux-x64-python-3.12.1-<sha>) always match.
var plainKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,199}$`)

// FileCache stores one JSON file per entry in a flat directory. A file is
// named after its key when the key is a plain name, so `ls` shows which
// manifests exist; any other key is stored under its SHA-256.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache in dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Get returns the entry for key. Expired, corrupt and foreign entries are
// removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e fileEntry
	if err := json.Unmarshal(raw, &e); err != nil || e.Key != key {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the entry to a temporary file and renames it into place, so a
// concurrent Get sees either the old entry or the new one.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Data: data}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Delete removes the entry for key.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry and any temporary file left by an interrupted
// Set. Only entries are counted.
func (c *FileCache) Clear(ctx context.Context) (int, error) {
	files, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count := 0
	for _, f := range files {
		name := f.Name()
		if f.IsDir() {
			continue
		}
		switch {
		case strings.HasPrefix(name, ".tmp-"):
			_ = os.Remove(filepath.Join(c.dir, name))
		case strings.HasSuffix(name, entryExt):
			if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// Close is a no-op.
func (c *FileCache) Close() error {
	return nil
}

func (c *FileCache) path(key string) string {
	name := key
	if !plainKey.MatchString(key) {
		name = Hash([]byte(key))
	}
	return filepath.Join(c.dir, name+entryExt)
}

var _ Cache = (*FileCache)(nil)
