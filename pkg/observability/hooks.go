// Package observability lets callers observe the pipeline, the caches and
// the HTTP server without the libraries depending on a metrics backend.
//
// Libraries emit events through the registered hooks:
//
//	observability.Pipeline().OnSimulateStart(ctx, nodeCount)
//	ticks, err := scene.Run(ctx)
//	observability.Pipeline().OnSimulateComplete(ctx, nodeCount, ticks, time.Since(start), err)
//
// Every hook defaults to a no-op. main registers real implementations once
// at startup, for example [LogHooks], which the serve command installs:
//
//	observability.NewLogHooks(logger).Register()
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the diagram pipeline.
type PipelineHooks interface {
	// Build events: connections turned into a node/link network.
	OnBuildStart(ctx context.Context, connections int)
	OnBuildComplete(ctx context.Context, nodes, links int, duration time.Duration, err error)

	// Level assignment.
	OnLevels(ctx context.Context, strategy string, maxLevel, cycles int, duration time.Duration)

	// Simulation events.
	OnSimulateStart(ctx context.Context, nodes int)
	OnSimulateComplete(ctx context.Context, nodes, ticks int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request. Route is the matched pattern,
	// not the raw path, so ids do not explode label cardinality.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnError records a request that failed with an error.
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, int)                                  {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration, error)    {}
func (NoopPipelineHooks) OnLevels(context.Context, string, int, int, time.Duration)          {}
func (NoopPipelineHooks) OnSimulateStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnSimulateComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var (
	current  atomic.Pointer[registry]
	updateMu sync.Mutex
)

func init() { Reset() }

// update swaps in a modified copy of the registry so readers never lock.
func update(f func(r *registry)) {
	updateMu.Lock()
	defer updateMu.Unlock()
	next := *current.Load()
	f(&next)
	current.Store(&next)
}

// SetPipelineHooks registers pipeline hooks. A nil value is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. A nil value is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. A nil value is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks. Tests call it in cleanup.
func Reset() {
	updateMu.Lock()
	defer updateMu.Unlock()
	current.Store(&registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
