// Package cache stores computed layouts and rendered artifacts.
//
// A [Cache] is a byte store with per-entry expiry. Three backends exist:
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (multi-instance servers)
//   - [NullCache]: stores nothing (caching disabled)
//
// Keys are produced by a [Keyer] so that every stage that depends on the
// same inputs lands on the same entry. Layout keys hash the input document
// together with every option that changes positions; artifact keys hash the
// layout together with every render option.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLLayout is how long a settled layout stays cached. Layouts are
	// deterministic for a given input and options, so they can live long.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long rendered output stays cached.
	TTLArtifact = 24 * time.Hour

	// TTLRender is how long a server render stays retrievable by id.
	TTLRender = time.Hour
)

// Cache is the storage interface used by the pipeline and the server.
//
// Get reports a miss with (nil, false, nil); errors are reserved for
// backend failures. A ttl of zero stores the entry without expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts holds the options that change a computed layout.
type LayoutKeyOpts struct {
	VizType  string     `json:"viz_type"`
	Strategy string     `json:"strategy"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Margin   [4]float64 `json:"margin"` // top, right, bottom, left
	Forces   [4]float64 `json:"forces"` // link distance, charge, x and y strength
	Seed     uint64     `json:"seed"`
	MaxTicks int        `json:"max_ticks"`
	Palette  string     `json:"palette"` // hash of the palette in use
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string     `json:"format"`
	Scale       float64    `json:"scale,omitempty"`
	Static      bool       `json:"static,omitempty"`
	Title       string     `json:"title,omitempty"`
	Detailed    bool       `json:"detailed,omitempty"`
	Palette     string     `json:"palette"`
	Margin      [4]float64 `json:"margin"`
	LegendColor string     `json:"legend_color,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key of the layout computed from the input with
	// the given content hash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of an artifact rendered from the layout
	// with the given content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// RenderKey returns the key under which the server stores a render.
	RenderKey(id string) string
}

// DefaultKeyer produces unscoped keys of the form "kind:hash".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(id string) string { return "render:" + id }
