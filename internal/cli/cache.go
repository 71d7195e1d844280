package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/setup-pdm/pkg/cache"
	"github.com/matzehuels/setup-pdm/pkg/depcache"
)

// cacheCommand creates the cache manifest management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the dependency cache manifests",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheShowCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded cache manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			store, where, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.Clear(ctx)
			if err != nil {
				return fmt.Errorf("clear %s: %w", where, err)
			}
			if count == 0 {
				printInfo(c.Out, "Cache is empty")
				return nil
			}
			printSuccess(c.Out, "Cleared %d cache manifests", count)
			printDetail(c.Out, "Store: %s", where)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache manifest directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}

// cacheShowCommand creates the "cache show" subcommand.
func (c *CLI) cacheShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Print the manifest recorded for a cache key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			store, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			data, ok, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				printWarning(c.Out, "No manifest for %s", args[0])
				return nil
			}
			fmt.Fprintln(c.Out, string(data))
			return nil
		},
	}
}

// openStore opens the manifest store shared by the setup run and the cache
// subcommands: Redis when SETUP_PDM_CACHE_REDIS_URL is set, the file store
// under cacheDir otherwise. The second return describes the store for
// display. Without a usable cache directory nothing is recorded.
func (c *CLI) openStore(ctx context.Context) (cache.Cache, string, error) {
	if url := os.Getenv(depcache.RedisURLEnv); url != "" {
		store, err := depcache.OpenStore(ctx, url, "", c.Logger)
		return store, "redis", err
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("Cannot determine the cache directory, cache manifests will not be recorded", "err", err)
		store, err := depcache.OpenStore(ctx, "", "", c.Logger)
		return store, "none", err
	}
	store, err := depcache.OpenStore(ctx, "", dir, c.Logger)
	return store, dir, err
}
