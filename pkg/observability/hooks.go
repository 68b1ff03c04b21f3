// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through the hooks registered here;
// they never import a metrics backend directly. The CLI registers a
// Prometheus implementation from [github.com/matzehuels/locuszoom/pkg/observability/prom]
// when serving.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSourceHooks(prom.NewSourceHooks(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Source().OnFetchStart(ctx, namespace, url)
//	// ... request ...
//	observability.Source().OnFetchComplete(ctx, namespace, url, status, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// SourceHooks receives events from data-source requests.
type SourceHooks interface {
	OnFetchStart(ctx context.Context, namespace, url string)
	OnFetchComplete(ctx context.Context, namespace, url string, status int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit. keyType is "response" or "artifact".
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// PlotHooks receives events from plot mapping and rendering.
type PlotHooks interface {
	OnMapStart(ctx context.Context, plotID, chr string, start, end int64)
	OnMapComplete(ctx context.Context, plotID string, duration time.Duration, faults int)

	// OnPanelRender fires after each panel render attempt.
	OnPanelRender(ctx context.Context, plotID, panelID string, duration time.Duration, err error)

	// OnCurtain fires when a panel's curtain is raised with an error.
	OnCurtain(ctx context.Context, plotID, panelID string, err error)
}

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnFetchStart(context.Context, string, string) {}
func (NoopSourceHooks) OnFetchComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopPlotHooks is a no-op implementation of PlotHooks.
type NoopPlotHooks struct{}

func (NoopPlotHooks) OnMapStart(context.Context, string, string, int64, int64)            {}
func (NoopPlotHooks) OnMapComplete(context.Context, string, time.Duration, int)           {}
func (NoopPlotHooks) OnPanelRender(context.Context, string, string, time.Duration, error) {}
func (NoopPlotHooks) OnCurtain(context.Context, string, string, error)                    {}

var (
	sourceHooks SourceHooks = NoopSourceHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	plotHooks   PlotHooks   = NoopPlotHooks{}
	hooksMu     sync.RWMutex
)

// SetSourceHooks registers custom data-source hooks.
// This should be called once at application startup.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetPlotHooks registers custom plot hooks.
func SetPlotHooks(h PlotHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		plotHooks = h
	}
}

// Source returns the registered data-source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Plot returns the registered plot hooks.
func Plot() PlotHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return plotHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sourceHooks = NoopSourceHooks{}
	cacheHooks = NoopCacheHooks{}
	plotHooks = NoopPlotHooks{}
}
