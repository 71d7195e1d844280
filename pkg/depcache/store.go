package depcache

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/setup-pdm/pkg/cache"
	"github.com/matzehuels/setup-pdm/pkg/errors"
)

// RedisURLEnv names the variable that selects the Redis manifest store.
const RedisURLEnv = "SETUP_PDM_CACHE_REDIS_URL"

const redisPrefix = "setup-pdm:"

// OpenStore returns the Redis store when redisURL is set and a file store
// under dir otherwise.
func OpenStore(ctx context.Context, redisURL, dir string, logger *log.Logger) (cache.Cache, error) {
	if logger == nil {
		logger = log.Default()
	}
	if redisURL != "" {
		store, err := cache.NewRedisCache(ctx, redisURL, redisPrefix)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCacheFailed, err, "connect to cache store")
		}
		logger.Debug("using redis cache store")
		return store, nil
	}
	if dir == "" {
		return cache.NewNullCache(), nil
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheFailed, err, "open cache store")
	}
	logger.Debug("using file cache store", "dir", dir)
	return store, nil
}
