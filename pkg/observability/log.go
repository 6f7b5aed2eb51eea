package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// logger. The CLI installs it under --verbose.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load started", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, n int, d time.Duration, err error) {
	h.done("load", err, "source", source, "elements", n, "took", d)
}

func (h *LogHooks) OnExportStart(_ context.Context, n int) {
	h.logger.Debug("export started", "elements", n)
}

func (h *LogHooks) OnExportComplete(_ context.Context, size int, d time.Duration, err error) {
	h.done("export", err, "bytes", size, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, view, format string) {
	h.logger.Debug("render started", "view", view, "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, view, format string, d time.Duration, err error) {
	h.done("render", err, "view", view, "format", format, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "took", d)
}

func (h *LogHooks) done(stage string, err error, kv ...any) {
	if err != nil {
		h.logger.Debug(stage+" failed", append(kv, "error", err)...)
		return
	}
	h.logger.Debug(stage+" complete", kv...)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
