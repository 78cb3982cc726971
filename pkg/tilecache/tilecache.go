// Package tilecache caches decoded elevation tiles and normalizes them on
// the way in: spike suppression replaces implausible single-sample jumps
// with NODATA, and edge reconciliation copies or grows a tile's trailing
// row/column from its east/south neighbors so that splicing runoffs across
// tile boundaries sees consistent elevations on both sides of the seam.
//
// Grounded on pkg/cache's Cache interface family (FileCache, NullCache) for
// the Store shape, extended with the normalization pass and LRU eviction
// a raster tile cache needs.
package tilecache

import (
	"context"
	"sync"
	"time"

	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/observability"
	"github.com/kirmse-prom/prominence/pkg/tilesource"
)

// SpikeThreshold is the elevation difference from a 4-neighbor above which
// a sample is treated as a sensor spike and replaced with NODATA.
const SpikeThreshold = geo.Elevation(1000)

// Store persists decoded tiles by id. Implementations need not normalize;
// normalization is Cache's job, applied uniformly in front of any Store.
type Store interface {
	Get(ctx context.Context, id tilesource.TileID) (tilesource.Tile, bool, error)
	Put(ctx context.Context, id tilesource.TileID, tile tilesource.Tile) error
	Delete(ctx context.Context, id tilesource.TileID) error
}

// EdgeFormat describes how a raster's on-disk format treats its trailing
// row and column, which determines how edge reconciliation is applied.
type EdgeFormat int

const (
	// EdgeDuplicated means the format already stores a trailing row/column
	// (possibly stale or not seamless with the neighbor) that reconciliation
	// overwrites in place. SRTM, NED, and the custom FLT format are this
	// shape.
	EdgeDuplicated EdgeFormat = iota
	// EdgeOmitted means the format has no trailing row/column at all; the
	// tile must grow by one pixel in each direction before neighbor samples
	// can be copied in. GLO-30, FABDEM, and 3DEP UTM tiles are this shape.
	EdgeOmitted
)

// Neighbors carries the tiles adjacent to a loaded tile, as much as are
// available, for edge reconciliation. A nil field means that neighbor has
// not been loaded (a region edge, or a neighbor load that failed); the
// tile's own samples are left as-is along that side.
type Neighbors struct {
	East      tilesource.Tile
	South     tilesource.Tile
	SouthEast tilesource.Tile
}

// Cache wraps a Source with a Store, applying spike suppression and edge
// reconciliation to every tile before it reaches the store or a caller.
// Tile load and spike-suppression events are reported through the global
// observability.Tile() hooks, the same registry every other tile-facing
// component reports through. Safe for concurrent use.
type Cache struct {
	source tilesource.Source
	store  Store
	format EdgeFormat

	mu        sync.Mutex
	neighbors map[tilesource.TileID]Neighbors
}

// New wraps source with store, normalizing every tile according to format
// before it is cached or returned.
func New(source tilesource.Source, store Store, format EdgeFormat) *Cache {
	return &Cache{
		source:    source,
		store:     store,
		format:    format,
		neighbors: make(map[tilesource.TileID]Neighbors),
	}
}

// SetNeighbors records the tiles adjacent to id, consulted the next time id
// is loaded. A region driver calls this once it knows the tile grid's
// layout, before any Get.
func (c *Cache) SetNeighbors(id tilesource.TileID, n Neighbors) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.neighbors[id] = n
}

// Get returns the normalized tile for id, loading and caching it on a
// miss. Returns ErrNotFound if the underlying source has no such tile.
func (c *Cache) Get(ctx context.Context, id tilesource.TileID) (tilesource.Tile, error) {
	if tile, hit, err := c.store.Get(ctx, id); err != nil {
		return nil, err
	} else if hit {
		return tile, nil
	}

	start := time.Now()
	raw, err := c.source.Load(ctx, id)
	observability.Tile().OnLoad(ctx, string(id), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotFound
	}

	raster := toRasterTile(raw)
	suppressed := SuppressSpikes(raster)
	if suppressed > 0 {
		observability.Tile().OnSpikesSuppressed(ctx, string(id), suppressed)
	}

	c.mu.Lock()
	n := c.neighbors[id]
	c.mu.Unlock()

	tile := ReconcileEdges(raster, n, c.format)

	if err := c.store.Put(ctx, id, tile); err != nil {
		return nil, err
	}
	return tile, nil
}

func toRasterTile(t tilesource.Tile) *tilesource.RasterTile {
	if r, ok := t.(*tilesource.RasterTile); ok {
		return r
	}
	w, h := t.Width(), t.Height()
	samples := make([]geo.Elevation, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			samples[y*w+x] = t.At(x, y)
		}
	}
	return tilesource.NewRasterTile(w, h, samples, t.CoordinateSystem())
}

// SuppressSpikes replaces every sample that differs from any of its
// 4-neighbors by more than SpikeThreshold with NODATA, in place, and
// returns the count of samples replaced. A NODATA sample is never treated
// as a neighbor's spike (the difference is meaningless against a missing
// value) and never itself inspected. All samples are judged against the
// tile as loaded, so a lone spike's 4-neighbors, which differ from the
// spike by the same amount, are replaced along with it.
func SuppressSpikes(t *tilesource.RasterTile) int {
	w, h := t.Width(), t.Height()
	type spike struct{ x, y int }
	var spikes []spike

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			e := t.At(x, y)
			if e.IsNoData() {
				continue
			}
			if isSpike(t, x, y, e) {
				spikes = append(spikes, spike{x, y})
			}
		}
	}
	for _, s := range spikes {
		t.Set(s.x, s.y, geo.NoData)
	}
	return len(spikes)
}

func isSpike(t *tilesource.RasterTile, x, y int, e geo.Elevation) bool {
	neighbors := [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}}
	for _, n := range neighbors {
		nx, ny := n[0], n[1]
		if nx < 0 || nx >= t.Width() || ny < 0 || ny >= t.Height() {
			continue
		}
		ne := t.At(nx, ny)
		if ne.IsNoData() {
			continue
		}
		diff := e - ne
		if diff < 0 {
			diff = -diff
		}
		if diff > SpikeThreshold {
			return true
		}
	}
	return false
}

// ReconcileEdges makes t's trailing row/column agree with its east/south
// neighbors, per format. EdgeDuplicated overwrites t's last column/row in
// place; EdgeOmitted grows t by one pixel in each direction first. A nil
// neighbor leaves the corresponding samples as NODATA rather than stale
// or absent data that would produce a spurious runoff mismatch at the
// seam.
func ReconcileEdges(t *tilesource.RasterTile, n Neighbors, format EdgeFormat) *tilesource.RasterTile {
	if format == EdgeOmitted {
		t = growByOnePixel(t)
	}

	w, h := t.Width(), t.Height()
	lastCol, lastRow := w-1, h-1

	if n.East != nil {
		for y := 0; y < h; y++ {
			t.Set(lastCol, y, n.East.At(0, y))
		}
	}
	if n.South != nil {
		for x := 0; x < w; x++ {
			t.Set(x, lastRow, n.South.At(x, 0))
		}
	}
	if n.SouthEast != nil {
		t.Set(lastCol, lastRow, n.SouthEast.At(0, 0))
	}
	return t
}

// growByOnePixel returns a new tile one sample wider and taller than t,
// with t's samples copied into the top-left and the new row/column left as
// NODATA for ReconcileEdges to fill.
func growByOnePixel(t *tilesource.RasterTile) *tilesource.RasterTile {
	w, h := t.Width(), t.Height()
	samples := make([]geo.Elevation, (w+1)*(h+1))
	for i := range samples {
		samples[i] = geo.NoData
	}
	grown := tilesource.NewRasterTile(w+1, h+1, samples, t.CoordinateSystem())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			grown.Set(x, y, t.At(x, y))
		}
	}
	return grown
}
