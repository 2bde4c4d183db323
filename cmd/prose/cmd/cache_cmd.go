package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazu/prose/cache"
)

var pruneOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or prune the parse cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.Stats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cache:   %s\n", c.Path())
		fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
		fmt.Fprintf(out, "Trees:   %d bytes\n", stats.TreeBytes)

		if verbosity > 0 {
			paths, err := c.Paths(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(out, "  %s\n", p)
			}
		}
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove entries not refreshed recently",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.Prune(cmd.Context(), time.Now().Add(-pruneOlderThan))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := clearCache(cmd.Context(), c)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", n)
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "remove entries last stored before this long ago")
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Cache, error) {
	m, err := loadManifest()
	if err != nil {
		return nil, err
	}
	return cache.Open(m.CachePath())
}

func clearCache(ctx context.Context, c *cache.Cache) (int, error) {
	paths, err := c.Paths(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range paths {
		if err := c.Delete(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(paths), nil
}
