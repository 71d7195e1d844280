// Package depcache computes the dependency cache key for a PDM project and
// records which paths belong to it.
//
// The key is derived from the runner OS, architecture, Python version and a
// SHA-256 over the lock files matched by the cache-dependency-path globs:
//
//	setup-pdm-Linux-x64-python-3.12.0-<sha256>
//
// The paths are PDM's package cache (`pdm config cache_dir`), the project
// virtualenv and __pypackages__. A manifest of the paths is kept in a
// [cache.Cache] store so a later run with the same key reports a hit. The
// dispatcher publishes the cache-hit output and saves the key and paths to
// the job state for the post step.
package depcache
