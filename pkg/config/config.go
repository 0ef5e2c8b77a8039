// Package config loads taskweb settings.
//
// Settings come from three layers, later layers winning:
//
//  1. [Default]: the built-in canvas, forces, strategy and palette
//  2. a config file (TOML or YAML, chosen by extension)
//  3. command-line flags, applied by the CLI after loading
//
// The default config file lives in the XDG config directory:
//
//	~/.config/taskweb/config.toml
//
// A file only needs the keys it changes:
//
//	strategy = "first-visit"
//	seed = 7
//
//	[layout]
//	width = 1400
//
//	[[palette.categories]]
//	name = "Build"
//	color = "#1f77b4"
//
// A palette in the file replaces the built-in palette entirely.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/taskweb/pkg/cache"
	"github.com/matzehuels/taskweb/pkg/dag/transform"
	"github.com/matzehuels/taskweb/pkg/errors"
	"github.com/matzehuels/taskweb/pkg/force"
	"github.com/matzehuels/taskweb/pkg/layout"
	"github.com/matzehuels/taskweb/pkg/palette"
)

// AppName names the XDG directories.
const AppName = "taskweb"

// DefaultMaxTicks bounds a simulation run. The default cooling schedule
// settles in about 300 ticks, so the bound only matters for custom decays.
const DefaultMaxTicks = 1000

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend string            `toml:"backend" yaml:"backend"`
	Dir     string            `toml:"dir,omitempty" yaml:"dir,omitempty"` // file backend; empty means the XDG cache dir
	Redis   cache.RedisConfig `toml:"redis" yaml:"redis"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Scale           float64 `toml:"scale" yaml:"scale"`                         // PNG pixel density
	LegendTextColor string  `toml:"legend_text_color" yaml:"legend_text_color"` // SVG legend label fill
}

// ServerConfig configures "taskweb serve".
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Config is the complete taskweb configuration.
type Config struct {
	Strategy string          `toml:"strategy" yaml:"strategy"`
	Seed     uint64          `toml:"seed" yaml:"seed"`
	MaxTicks int             `toml:"max_ticks" yaml:"max_ticks"`
	Layout   layout.Config   `toml:"layout" yaml:"layout"`
	Palette  palette.Palette `toml:"palette" yaml:"palette"`
	Render   RenderConfig    `toml:"render" yaml:"render"`
	Cache    CacheConfig     `toml:"cache" yaml:"cache"`
	Server   ServerConfig    `toml:"server" yaml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Strategy: string(transform.LongestPath),
		Seed:     force.DefaultSeed,
		MaxTicks: DefaultMaxTicks,
		Layout:   layout.DefaultConfig(),
		Palette:  palette.Default(),
		Render: RenderConfig{
			Scale:           2,
			LegendTextColor: "currentColor",
		},
		Cache:  CacheConfig{Backend: CacheFile},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// Validate checks every section and returns the first problem as an
// INVALID_CONFIG, INVALID_STRATEGY or INVALID_PALETTE error.
func (c Config) Validate() error {
	if _, err := transform.ParseStrategy(c.Strategy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStrategy, err, "strategy")
	}
	if c.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_ticks must not be negative, got %d", c.MaxTicks)
	}
	l := c.Layout
	if l.Width <= 0 || l.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout size must be positive, got %gx%g", l.Width, l.Height)
	}
	m := l.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout margins must not be negative")
	}
	if l.ChartWidth() <= 0 || l.ChartHeight() <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margins leave no room for the chart (%gx%g)", l.ChartWidth(), l.ChartHeight())
	}
	if err := c.Palette.Validate(); err != nil {
		return err
	}
	if c.Render.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render scale must be positive, got %g", c.Render.Scale)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone, "":
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis cache needs cache.redis.addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	return nil
}

// Dir returns the XDG config directory for taskweb.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// CacheDir returns the XDG cache directory for taskweb.
func CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", AppName)
}

// Path returns the default config file path.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads the default config file.
// Returns Default if the file doesn't exist.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at path over the defaults and validates
// the result. A missing file yields Default.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := decode(data, format(path), &cfg); err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Parse decodes config text in the given format ("toml" or "yaml") over
// the defaults and validates the result.
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()
	if err := decode(data, format, &cfg); err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// SaveTo writes cfg to path in the format chosen by its extension.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := Marshal(cfg, format(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Marshal encodes cfg as "toml" or "yaml".
func Marshal(cfg Config, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "toml":
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
	}
	return buf.Bytes(), nil
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "toml"
}

func decode(data []byte, format string, cfg *Config) error {
	switch format {
	case "toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown key %q", undecoded[0].String())
		}
		return nil
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return err
		}
		return nil
	}
	return fmt.Errorf("unsupported config format %q", format)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
