package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks reports render and view events through the CLI logger.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnRenderStart(_ context.Context, engine, id string) {
	h.logger.Debug("render start", "engine", engine, "id", id)
}

func (h logHooks) OnRenderComplete(_ context.Context, engine, id string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "engine", engine, "id", id, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("render complete", "engine", engine, "id", id, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnSuperseded(_ context.Context, token, latest uint64) {
	h.logger.Debug("discarded stale result", "token", token, "latest", latest)
}

func (h logHooks) OnCopy(_ context.Context, size int, err error) {
	if err != nil {
		h.logger.Debug("copy failed", "bytes", size, "err", err)
		return
	}
	h.logger.Debug("copied markup", "bytes", size)
}

func (h logHooks) OnViewportChange(_ context.Context, action string, scale float64) {
	h.logger.Debug("viewport", "action", action, "scale", scale)
}
