package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/matzehuels/taskweb/pkg/cache"
	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the viewer and the server use it to avoid duplicating caching
// logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, in graph.Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{InputHash: HashInput(in)}

	l, net, warnings, hit, err := r.layoutWithCacheInfo(ctx, in, result.InputHash, opts, result)
	if err != nil {
		return nil, err
	}
	result.Network = net
	result.Layout = l
	result.Warnings = warnings
	result.CacheInfo.LayoutHit = hit
	result.Stats.NodeCount = len(l.Nodes)
	result.Stats.LinkCount = len(l.Links)
	result.Stats.Ticks = l.Ticks

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout builds the network and computes its layout with caching.
func (r *Runner) Layout(ctx context.Context, in graph.Input, opts Options) (graph.Layout, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	var res Result
	l, _, _, _, err := r.layoutWithCacheInfo(ctx, in, HashInput(in), opts, &res)
	return l, err
}

func (r *Runner) layoutWithCacheInfo(ctx context.Context, in graph.Input, inputHash string, opts Options, res *Result) (graph.Layout, *graph.Network, []string, bool, error) {
	hooks := observability.Pipeline()
	key := r.Keyer.LayoutKey(inputHash, LayoutKeyOpts(opts))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				opts.Logger.Debug("layout from cache", "nodes", len(cached.Nodes))
				return cached, nil, nil, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	buildStart := time.Now()
	hooks.OnBuildStart(ctx, len(in.Connections))
	net, warnings, err := Build(in, *opts.Palette)
	res.Stats.BuildTime = time.Since(buildStart)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, res.Stats.BuildTime, err)
		return graph.Layout{}, nil, nil, false, fmt.Errorf("build: %w", err)
	}
	hooks.OnBuildComplete(ctx, len(net.Nodes), len(net.Links), res.Stats.BuildTime, nil)
	for _, w := range warnings {
		opts.Logger.Warn(w)
	}
	opts.Logger.Info("built network",
		"nodes", len(net.Nodes),
		"links", len(net.Links),
		"types", len(net.Types),
		"duration", res.Stats.BuildTime)

	layoutStart := time.Now()
	hooks.OnSimulateStart(ctx, len(net.Nodes))
	l, err := GenerateLayout(ctx, net, opts)
	res.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnSimulateComplete(ctx, len(net.Nodes), l.Ticks, res.Stats.LayoutTime, err)
	if err != nil {
		return graph.Layout{}, nil, nil, false, fmt.Errorf("layout: %w", err)
	}
	hooks.OnLevels(ctx, l.Strategy, l.MaxLevel, len(l.Cycles), res.Stats.LayoutTime)
	for _, c := range l.Cycles {
		w := fmt.Sprintf("cycle between %v; levels are approximate", c)
		warnings = append(warnings, w)
		opts.Logger.Warn(w)
	}
	opts.Logger.Info("computed layout",
		"strategy", l.Strategy,
		"levels", l.MaxLevel+1,
		"ticks", l.Ticks,
		"duration", res.Stats.LayoutTime)

	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, net, warnings, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, ArtifactKeyOpts(opts, format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, missing)
	rendered, err := Render(ctx, l, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, ArtifactKeyOpts(opts, format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Cache keys
// =============================================================================

// HashInput returns the content hash of an input document.
func HashInput(in graph.Input) string {
	data, _ := json.Marshal(in)
	return cache.Hash(data)
}

// LayoutKeyOpts returns cache key options for layout computation. Options
// must have defaults applied.
func LayoutKeyOpts(o Options) cache.LayoutKeyOpts {
	m := o.Layout.Margin
	return cache.LayoutKeyOpts{
		VizType:  o.VizType,
		Strategy: o.Strategy,
		Width:    o.Layout.Width,
		Height:   o.Layout.Height,
		Margin:   [4]float64{m.Top, m.Right, m.Bottom, m.Left},
		Seed:     o.Seed,
		MaxTicks: o.MaxTicks,
		Palette:  hashPalette(o),
		Forces:   [4]float64{o.Layout.LinkDistance, o.Layout.ChargeStrength, o.Layout.XStrength, o.Layout.YStrength},
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func ArtifactKeyOpts(o Options, format string) cache.ArtifactKeyOpts {
	m := o.Layout.Margin
	return cache.ArtifactKeyOpts{
		Format:      format,
		Scale:       o.Scale,
		Static:      o.Static,
		Title:       o.Title,
		Detailed:    o.Detailed,
		Palette:     hashPalette(o),
		Margin:      [4]float64{m.Top, m.Right, m.Bottom, m.Left},
		LegendColor: o.LegendTextColor,
	}
}

func hashPalette(o Options) string {
	data, _ := json.Marshal(o.Palette)
	return cache.Hash(data)
}
