package depcache

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/setup-pdm/pkg/cache"
	"github.com/matzehuels/setup-pdm/pkg/errors"
	"github.com/matzehuels/setup-pdm/pkg/observability"
)

// Output and state names published by the dispatcher.
const (
	OutputCacheHit  = "cache-hit"
	StatePrimaryKey = "cache-primary-key"
	StatePaths      = "cache-paths"
)

// ManifestTTL matches the runner cache eviction window.
const ManifestTTL = 7 * 24 * time.Hour

// DefaultDependencyPath is the lock file hashed when no globs are given.
const DefaultDependencyPath = "pdm.lock"

// Host receives outputs and job state.
type Host interface {
	SetOutput(name, value string) error
	SaveState(name, value string) error
}

// Options configure the cache key.
type Options struct {
	DependencyPaths []string // globs relative to WorkDir; empty means pdm.lock
	WorkDir         string
	RunnerOS        string // "Linux", "macOS", "Windows"
	Arch            string
}

// Manifest is the record kept in the store for a primary key.
type Manifest struct {
	Key       string    `json:"key"`
	Paths     []string  `json:"paths"`
	CreatedAt time.Time `json:"created_at"`
}

// Dispatcher resolves the dependency cache for one setup run.
type Dispatcher struct {
	Options
	Store  cache.Cache
	Host   Host
	Logger *log.Logger

	cacheDir func(ctx context.Context, pdmBin string) (string, error)
	now      func() time.Time
}

// NewDispatcher creates a Dispatcher. A nil store behaves as an empty one.
func NewDispatcher(opts Options, store cache.Cache, host Host, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	if store == nil {
		store = cache.NewNullCache()
	}
	return &Dispatcher{
		Options:  opts,
		Store:    store,
		Host:     host,
		Logger:   logger,
		cacheDir: pdmCacheDir,
		now:      time.Now,
	}
}

// Cache computes the primary key, looks it up in the store and publishes
// the outcome. pdmBin is the absolute path of the installed pdm executable.
func (d *Dispatcher) Cache(ctx context.Context, pdmBin, pythonVersion string) error {
	files, err := d.matchDependencyFiles()
	if err != nil {
		return err
	}
	digest, err := cache.HashFiles(files)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, err, "hash dependency files")
	}
	key := d.Key(pythonVersion, digest)

	paths, err := d.Paths(ctx, pdmBin)
	if err != nil {
		return err
	}

	hit, err := d.lookup(ctx, key)
	if err != nil {
		return err
	}

	if err := d.Host.SaveState(StatePrimaryKey, key); err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, err, "save %s", StatePrimaryKey)
	}
	encoded, err := json.Marshal(paths)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode cache paths")
	}
	if err := d.Host.SaveState(StatePaths, string(encoded)); err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, err, "save %s", StatePaths)
	}
	if err := d.Host.SetOutput(OutputCacheHit, boolString(hit)); err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, err, "set %s", OutputCacheHit)
	}

	if hit {
		d.Logger.Info("cache restored", "key", key)
		return nil
	}
	d.Logger.Info("cache not found", "key", key)
	return d.record(ctx, key, paths)
}

// Key builds the primary cache key.
func (d *Dispatcher) Key(pythonVersion, digest string) string {
	return strings.Join([]string{"setup-pdm", d.RunnerOS, d.Arch, "python", pythonVersion, digest}, "-")
}

// Paths returns the directories that belong to the dependency cache.
func (d *Dispatcher) Paths(ctx context.Context, pdmBin string) ([]string, error) {
	dir, err := d.cacheDir(ctx, pdmBin)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheFailed, err, "query pdm cache_dir")
	}
	return []string{
		dir,
		filepath.Join(d.WorkDir, ".venv"),
		filepath.Join(d.WorkDir, "__pypackages__"),
	}, nil
}

func (d *Dispatcher) lookup(ctx context.Context, key string) (bool, error) {
	data, ok, err := d.Store.Get(ctx, key)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeCacheFailed, err, "look up %s", key)
	}
	if ok {
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil || m.Key != key {
			d.Logger.Warn("discarding unreadable cache manifest", "key", key)
			ok = false
		}
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, key)
	}
	return ok, nil
}

func (d *Dispatcher) record(ctx context.Context, key string, paths []string) error {
	data, err := json.Marshal(Manifest{Key: key, Paths: paths, CreatedAt: d.now().UTC()})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	if err := d.Store.Set(ctx, key, data, ManifestTTL); err != nil {
		return errors.Wrap(errors.ErrCodeCacheFailed, err, "record manifest")
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
	return nil
}

// matchDependencyFiles expands the dependency globs into a sorted,
// de-duplicated list of regular files.
func (d *Dispatcher) matchDependencyFiles() ([]string, error) {
	patterns := d.DependencyPaths
	if len(patterns) == 0 {
		patterns = []string{DefaultDependencyPath}
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(d.WorkDir, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad cache-dependency-path pattern %q", pattern)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if info, err := os.Stat(m); err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeCacheFailed,
			"no file matched to [%s], make sure you have checked out the target repository",
			strings.Join(patterns, ", "))
	}
	sort.Strings(files)
	return files, nil
}

func pdmCacheDir(ctx context.Context, pdmBin string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, pdmBin, "config", "cache_dir")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.Wrap(errors.ErrCodeCacheFailed, err, "%s", msg)
		}
		return "", err
	}
	dir := strings.TrimSpace(stdout.String())
	if dir == "" {
		return "", errors.New(errors.ErrCodeCacheFailed, "pdm config cache_dir printed nothing")
	}
	return dir, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
