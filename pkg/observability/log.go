package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug log line.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks logging to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger.WithPrefix("hooks")}
}

// Register installs h as the pipeline, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnBuildStart(_ context.Context, connections int) {
	h.Logger.Debug("build start", "connections", connections)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, nodes, links int, d time.Duration, err error) {
	h.Logger.Debug("build done", "nodes", nodes, "links", links, "duration", d, "err", err)
}

func (h *LogHooks) OnLevels(_ context.Context, strategy string, maxLevel, cycles int, d time.Duration) {
	h.Logger.Debug("levels", "strategy", strategy, "max", maxLevel, "cycles", cycles, "duration", d)
}

func (h *LogHooks) OnSimulateStart(_ context.Context, nodes int) {
	h.Logger.Debug("simulate start", "nodes", nodes)
}

func (h *LogHooks) OnSimulateComplete(_ context.Context, nodes, ticks int, d time.Duration, err error) {
	h.Logger.Debug("simulate done", "nodes", nodes, "ticks", ticks, "duration", d, "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render done", "formats", formats, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.Logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, route string, err error) {
	h.Logger.Warn("request failed", "method", method, "route", route, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
