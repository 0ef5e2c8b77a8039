// Package pipeline provides the build → levels → simulate → render pipeline.
//
// This package is the one place where an input document becomes a diagram.
// The CLI, the terminal viewer and the HTTP server all go through it, so
// they share defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: validate connections and derive the task network
//  2. Levels: assign every task a depth (first-visit or longest-path)
//  3. Simulate: settle the force simulation (skipped for nodelink diagrams)
//  4. Render: encode the settled layout in the requested formats
//
// Stages 1-3 produce a [graph.Layout]; stage 4 turns a layout into bytes.
// Both results are cached by content hash when the runner has a cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// A live simulation for interactive use is available through [NewScene].
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskweb/pkg/config"
	"github.com/matzehuels/taskweb/pkg/dag/transform"
	"github.com/matzehuels/taskweb/pkg/errors"
	"github.com/matzehuels/taskweb/pkg/force"
	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/layout"
	"github.com/matzehuels/taskweb/pkg/palette"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, viewer and server
// =============================================================================

const (
	// DefaultVizType is the default visualization type.
	DefaultVizType = graph.VizTypeForce

	// DefaultStrategy is the default level assignment strategy.
	DefaultStrategy = transform.LongestPath

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(force.DefaultSeed)

	// DefaultMaxTicks bounds a simulation run.
	DefaultMaxTicks = config.DefaultMaxTicks

	// DefaultScale is the default PNG pixel density.
	DefaultScale = 2.0

	// DefaultTitle is the page title of html output.
	DefaultTitle = "taskweb"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. Zero values select
// defaults. This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	VizType  string           `json:"viz_type,omitempty"`
	Strategy string           `json:"strategy,omitempty"`
	Layout   *layout.Config   `json:"layout,omitempty"`
	Seed     uint64           `json:"seed,omitempty"`
	MaxTicks int              `json:"max_ticks,omitempty"`
	Palette  *palette.Palette `json:"palette,omitempty"`

	// Render options
	Formats         []string `json:"formats,omitempty"`
	Scale           float64  `json:"scale,omitempty"`
	Title           string   `json:"title,omitempty"`
	Static          bool     `json:"static,omitempty"`   // drop the script, panels and reset button
	Detailed        bool     `json:"detailed,omitempty"` // nodelink labels with level and metrics
	LegendTextColor string   `json:"legend_text_color,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// FromConfig returns options carrying the settings of a loaded config.
func FromConfig(cfg config.Config) Options {
	l := cfg.Layout
	p := cfg.Palette
	return Options{
		Strategy:        cfg.Strategy,
		Layout:          &l,
		Seed:            cfg.Seed,
		MaxTicks:        cfg.MaxTicks,
		Palette:         &p,
		Scale:           cfg.Render.Scale,
		LegendTextColor: cfg.Render.LegendTextColor,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Network is the built task network. It is nil when the layout came
	// from the cache.
	Network *graph.Network

	// InputHash is the content hash of the input document.
	InputHash string

	// Layout is the settled, serializable diagram.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings lists non-fatal input problems (untyped links, unknown
	// types, cycles).
	Warnings []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Ticks      int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateChoice(errors.ErrCodeInvalidFormat, "format", format, graph.Formats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	return errors.ValidateChoice(errors.ErrCodeInvalidVizType, "viz_type", vizType, graph.VizTypes)
}

// ValidateStrategy checks that a level strategy is valid.
func ValidateStrategy(strategy string) error {
	if strategy == "" {
		return errors.New(errors.ErrCodeInvalidStrategy, "strategy must not be empty")
	}
	if _, err := transform.ParseStrategy(strategy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStrategy, err, "invalid strategy")
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults fills unset layout options.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Strategy == "" {
		o.Strategy = string(DefaultStrategy)
	}
	if o.Layout == nil {
		cfg := layout.DefaultConfig()
		o.Layout = &cfg
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if o.Palette == nil {
		p := palette.Default()
		o.Palette = &p
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_ticks must not be negative, got %d", o.MaxTicks)
	}
	if o.Layout.ChartWidth() <= 0 || o.Layout.ChartHeight() <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout leaves no room for the chart")
	}
	return o.Palette.Validate()
}

// SetRenderDefaults fills unset render options.
func (o *Options) SetRenderDefaults() {
	o.SetLayoutDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{graph.FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.LegendTextColor == "" {
		o.LegendTextColor = "currentColor"
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be positive, got %g", o.Scale)
	}
	return nil
}

// ValidateAndSetDefaults checks every option and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == graph.VizTypeNodelink
}
