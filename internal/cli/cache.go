package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskweb/pkg/cache"
	"github.com/matzehuels/taskweb/pkg/config"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear cached layouts and artifacts",
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cacheInfoCommand(), c.cachePathCommand())
	return cmd
}

// fileCache opens the on-disk cache. The redis backend has no local
// entries to inspect.
func (c *CLI) fileCache() (*cache.FileCache, error) {
	if c.Config.Cache.Backend == config.CacheRedis {
		return nil, fmt.Errorf("the redis cache backend manages its own entries; use redis-cli to inspect them")
	}
	dir := c.cacheDir()
	if dir == "" {
		return nil, fmt.Errorf("no cache directory available")
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var expiredOnly bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached layouts and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			remove, what := fc.Clear, "cached"
			if expiredOnly {
				remove, what = fc.Prune, "expired"
			}
			n, err := remove()
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Nothing to remove")
				return nil
			}
			printSuccess("Removed %d %s entries", n, what)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "only remove expired entries")
	return cmd
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache backend, location and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeyValue("Backend", string(c.Config.Cache.Backend))
			if c.Config.Cache.Backend == config.CacheRedis {
				printKeyValue("Address", c.Config.Cache.Redis.Addr)
				return nil
			}
			fc, err := c.fileCache()
			if err != nil {
				return err
			}
			st, err := fc.Stats()
			if err != nil {
				return err
			}
			printKeyValue("Directory", fc.Dir())
			printKeyValue("Entries", fmt.Sprintf("%d (%d expired)", st.Entries, st.Expired))
			printKeyValue("Size", formatBytes(st.Bytes))
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cacheDir()
			if dir == "" {
				return fmt.Errorf("no cache directory available")
			}
			fmt.Fprintln(out, dir)
			return nil
		},
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
