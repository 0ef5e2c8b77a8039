package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/taskweb/internal/server"
	"github.com/matzehuels/taskweb/pkg/cache"
	"github.com/matzehuels/taskweb/pkg/config"
	"github.com/matzehuels/taskweb/pkg/observability"
	"github.com/matzehuels/taskweb/pkg/pipeline"
	"github.com/matzehuels/taskweb/pkg/session"
)

// serverKeyPrefix keeps server entries apart from CLI entries in a shared
// cache.
const serverKeyPrefix = "server:"

// serveCommand starts the HTTP render server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		ttl     time.Duration
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagrams over HTTP",
		Long: `Serve starts an HTTP server that renders posted task documents.

  POST /render?format=svg     render one artifact and return it
  POST /renders               render and store; returns an id
  GET  /renders/{id}/{format} fetch a stored artifact
  GET  /palette               link type colours`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			store, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			keyer := cache.NewScopedKeyer(nil, serverKeyPrefix)
			runner := pipeline.NewRunner(store, keyer, c.Logger)

			sessions, err := c.newSessionStore(store, keyer, noCache)
			if err != nil {
				runner.Close()
				return err
			}

			observability.NewLogHooks(c.Logger).Register()
			defer observability.Reset()

			srv := server.New(server.Config{
				Addr:       addr,
				Runner:     runner,
				Store:      sessions,
				Defaults:   c.baseOptions(),
				SessionTTL: ttl,
				Logger:     c.Logger,
			})
			defer srv.Close()

			go c.cleanupSessions(ctx, sessions, ttl)

			printSuccess("Serving on http://%s", addr)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().DurationVar(&ttl, "ttl", session.DefaultTTL, "how long stored renders are kept")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching and keep renders in memory")
	return cmd
}

// newSessionStore keeps stored renders next to the cache: files under the
// cache directory, keys in redis, or memory when caching is off.
func (c *CLI) newSessionStore(store cache.Cache, keyer cache.Keyer, noCache bool) (session.Store, error) {
	if noCache {
		return session.NewMemoryStore(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheRedis:
		return session.NewCacheStore(store, keyer), nil
	case config.CacheNone:
		return session.NewMemoryStore(), nil
	}
	fs, err := session.NewFileStore(filepath.Join(c.cacheDir(), "renders"))
	if err != nil {
		c.Logger.Warn("stored renders kept in memory", "err", err)
		return session.NewMemoryStore(), nil
	}
	return fs, nil
}

// cleanupSessions drops expired renders until ctx is cancelled.
func (c *CLI) cleanupSessions(ctx context.Context, store session.Store, ttl time.Duration) {
	interval := min(max(ttl/4, time.Minute), time.Hour)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				c.Logger.Warn("render cleanup failed", "err", err)
			}
		}
	}
}
