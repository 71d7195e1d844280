package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/setup-pdm/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Installed pdm 2.1.0 (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports stage, cache and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetStageHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnStageStart(_ context.Context, stage string) {
	h.logger.Debug("stage started", "stage", stage)
}

func (h logHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("stage failed", "stage", stage, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("stage complete", "stage", stage, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache manifest hit", "key", key)
}

func (h logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache manifest miss", "key", key)
}

func (h logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache manifest recorded", "key", key, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
