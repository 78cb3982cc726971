// Package observability provides hooks for instrumenting the prominence
// driver without pulling any specific metrics/tracing backend into the
// core algorithms.
//
// The package uses the same hooks pattern throughout this codebase: an
// interface per event category, a no-op default, and a global registry a
// caller can override at startup. Logs (via charmbracelet/log) remain
// advisory per the core's logging policy; these hooks are for counters and
// traces a caller wires up separately (e.g. a status server, a KML
// emitter built outside this module).
package observability

import (
	"context"
	"sync"
	"time"
)

// TileHooks receives events from tile loading.
type TileHooks interface {
	OnLoad(ctx context.Context, tileID string, duration time.Duration, err error)
	OnSpikesSuppressed(ctx context.Context, tileID string, count int)
}

// MergeHooks receives events from divide-tree merging.
type MergeHooks interface {
	OnMergeStart(ctx context.Context, leftPeaks, rightPeaks int)
	OnBasinSaddle(ctx context.Context, saddleElevation float64)
}

// PruneHooks receives events from prominence-based pruning.
type PruneHooks interface {
	OnPeakDeleted(ctx context.Context, peakID int, prominence float64)
}

// KMLHooks receives events from the (out-of-core) KML emission seam. KML
// parsing and emission are out of scope for this module; this hook lets a
// caller that does implement them observe when emission was requested.
type KMLHooks interface {
	OnEmitRequested(ctx context.Context, path string)
}

// NoopTileHooks is a no-op implementation of TileHooks.
type NoopTileHooks struct{}

func (NoopTileHooks) OnLoad(context.Context, string, time.Duration, error) {}
func (NoopTileHooks) OnSpikesSuppressed(context.Context, string, int)      {}

// NoopMergeHooks is a no-op implementation of MergeHooks.
type NoopMergeHooks struct{}

func (NoopMergeHooks) OnMergeStart(context.Context, int, int)  {}
func (NoopMergeHooks) OnBasinSaddle(context.Context, float64) {}

// NoopPruneHooks is a no-op implementation of PruneHooks.
type NoopPruneHooks struct{}

func (NoopPruneHooks) OnPeakDeleted(context.Context, int, float64) {}

// NoopKMLHooks is a no-op implementation of KMLHooks.
type NoopKMLHooks struct{}

func (NoopKMLHooks) OnEmitRequested(context.Context, string) {}

var (
	tileHooks  TileHooks  = NoopTileHooks{}
	mergeHooks MergeHooks = NoopMergeHooks{}
	pruneHooks PruneHooks = NoopPruneHooks{}
	kmlHooks   KMLHooks   = NoopKMLHooks{}
	hooksMu    sync.RWMutex
)

// SetTileHooks registers custom tile hooks.
func SetTileHooks(h TileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		tileHooks = h
	}
}

// SetMergeHooks registers custom merge hooks.
func SetMergeHooks(h MergeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		mergeHooks = h
	}
}

// SetPruneHooks registers custom prune hooks.
func SetPruneHooks(h PruneHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pruneHooks = h
	}
}

// SetKMLHooks registers custom KML hooks.
func SetKMLHooks(h KMLHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		kmlHooks = h
	}
}

// Tile returns the registered tile hooks.
func Tile() TileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return tileHooks
}

// Merge returns the registered merge hooks.
func Merge() MergeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return mergeHooks
}

// Prune returns the registered prune hooks.
func Prune() PruneHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pruneHooks
}

// KML returns the registered KML hooks.
func KML() KMLHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return kmlHooks
}

// Reset restores all hooks to their no-op defaults. Primarily useful for
// testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	tileHooks = NoopTileHooks{}
	mergeHooks = NoopMergeHooks{}
	pruneHooks = NoopPruneHooks{}
	kmlHooks = NoopKMLHooks{}
}
