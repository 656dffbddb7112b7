// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about render attempts and user actions in the viewer.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so library packages never
// import a concrete backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnRenderStart(ctx, "graphviz", id)
//	// ... render ...
//	observability.Render().OnRenderComplete(ctx, "graphviz", id, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from the render lifecycle.
type RenderHooks interface {
	// OnRenderStart records an engine call for diagram id.
	OnRenderStart(ctx context.Context, engine, id string)

	// OnRenderComplete records the end of an engine call. err is nil on success.
	OnRenderComplete(ctx context.Context, engine, id string, duration time.Duration, err error)

	// OnSuperseded records a result discarded because newer markup arrived.
	OnSuperseded(ctx context.Context, token, latest uint64)
}

// =============================================================================
// View Hooks
// =============================================================================

// ViewHooks receives events from interactive hosts.
type ViewHooks interface {
	// OnCopy records a copy of raw markup to the clipboard.
	OnCopy(ctx context.Context, size int, err error)

	// OnViewportChange records a user zoom, pan or fit.
	OnViewportChange(ctx context.Context, action string, scale float64)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string, string) {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopRenderHooks) OnSuperseded(context.Context, uint64, uint64) {}

// NoopViewHooks is a no-op implementation of ViewHooks.
type NoopViewHooks struct{}

func (NoopViewHooks) OnCopy(context.Context, int, error)                {}
func (NoopViewHooks) OnViewportChange(context.Context, string, float64) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	renderHooks RenderHooks = NoopRenderHooks{}
	viewHooks   ViewHooks   = NoopViewHooks{}
	hooksMu     sync.RWMutex
)

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any render.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetViewHooks registers custom view hooks.
func SetViewHooks(h ViewHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		viewHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// View returns the registered view hooks.
func View() ViewHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return viewHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	viewHooks = NoopViewHooks{}
}
