// Package driver orchestrates the region/merge/parents workflows: a
// worker pool of tile tasks feeding per-tile DivideTrees, a pairwise
// binary-reduction merge of those trees, pruning against an
// IslandTree/LineTree pair, and the final tabular emission.
//
// Grounded on pkg/pipeline/{pipeline.go,runner.go}'s Options/Result/Stats
// staged-timing shape, adapted from Parse→Layout→Render to
// Load→Build→Merge→Prune→Emit, and on pkg/core/deps/resolver.go's
// channel/WaitGroup worker-pool idiom for the tile task pool.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kirmse-prom/prominence/pkg/dividetree"
	"github.com/kirmse-prom/prominence/pkg/dvt"
	stderrors "github.com/kirmse-prom/prominence/pkg/errors"
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/islandtree"
	"github.com/kirmse-prom/prominence/pkg/linetree"
	"github.com/kirmse-prom/prominence/pkg/observability"
	"github.com/kirmse-prom/prominence/pkg/report"
	"github.com/kirmse-prom/prominence/pkg/tilecache"
	"github.com/kirmse-prom/prominence/pkg/tilesource"
	"github.com/kirmse-prom/prominence/pkg/treebuilder"
)

// DefaultThreads is the worker-pool size used when Options.Threads is
// unset, mirroring pipeline.Options's zero-value-means-default idiom.
func DefaultThreads() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

// TileIDFunc enumerates the tile ids covering a bounding box. Tile-file
// naming conventions belong to the loader, not the core, so this is
// injectable; DefaultTileIDs provides a plain one-degree-grid
// convention good enough to drive the worker pool end to end.
type TileIDFunc func(minLat, minLng, maxLat, maxLng float64) []tilesource.TileID

// DefaultTileIDs enumerates one-degree tiles named "N37W105"-style,
// covering [minLat,maxLat) x [minLng,maxLng).
func DefaultTileIDs(minLat, minLng, maxLat, maxLng float64) []tilesource.TileID {
	var ids []tilesource.TileID
	for lat := int(floorFloat(minLat)); lat < int(ceilFloat(maxLat)); lat++ {
		for lng := int(floorFloat(minLng)); lng < int(ceilFloat(maxLng)); lng++ {
			ids = append(ids, tilesource.TileID(tileName(lat, lng)))
		}
	}
	return ids
}

func tileName(lat, lng int) string {
	ns, ew := "N", "E"
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lng < 0 {
		ew, lng = "W", -lng
	}
	return fmt.Sprintf("%s%02d%s%03d", ns, lat, ew, lng)
}

func floorFloat(f float64) float64 {
	i := float64(int(f))
	if f < 0 && i != f {
		i--
	}
	return i
}

func ceilFloat(f float64) float64 {
	i := float64(int(f))
	if f > 0 && i != f {
		i++
	}
	return i
}

// RegionOptions configures a region prominence run: load every tile in a
// bounding box, build its per-tile divide tree, and write it out for a
// later merge pass.
type RegionOptions struct {
	MinLat, MinLng, MaxLat, MaxLng float64
	MinProminence                  geo.Elevation
	Threads                        int
	AntiProminence                 bool
	// Bathymetry is accepted here only so the CLI can validate and log it
	// alongside the other region flags; it has no effect until the final
	// IslandTree rebuild in RunMerge/RunParents (MergeOptions.IsBathymetry,
	// ParentsOptions.IsBathymetry), since sea-level handling is a property
	// of prominence computation, not per-tile tree building.
	Bathymetry bool
	Polygon                        tilesource.Polygon
	EmitKML                        bool
	TileIDs                        TileIDFunc
	OutputPath                     func(id tilesource.TileID) string
	JobID                          string
	Logger                         *log.Logger
	Progress                       ProgressFunc
}

// ProgressFunc receives incremental worker-pool progress, used by a
// terminal progress view or a status endpoint; nil disables reporting.
type ProgressFunc func(stage string, done, total int)

func (o *RegionOptions) setDefaults() {
	if o.Threads <= 0 {
		o.Threads = DefaultThreads()
	}
	if o.TileIDs == nil {
		o.TileIDs = DefaultTileIDs
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// RegionResult reports the outcome of a region run.
type RegionResult struct {
	TilesAttempted int
	TilesBuilt     int
	TilesSkipped   int
	Trees          map[tilesource.TileID]*dividetree.Tree
	Duration       time.Duration
}

// RunRegion loads every tile the bounding box covers (skipping any
// outside Options.Polygon), builds its divide tree via TreeBuilder, and
// returns the built trees keyed by tile id. Fatal per-tile errors are
// logged and counted as skips (local masking, not job failure); the run
// itself only fails if the cache is nil.
func RunRegion(ctx context.Context, cache *tilecache.Cache, opts RegionOptions) (*RegionResult, error) {
	opts.setDefaults()
	if cache == nil {
		return nil, stderrors.New(stderrors.CodeInvariantViolation, "region driver: nil tile cache")
	}
	start := time.Now()

	ids := opts.TileIDs(opts.MinLat, opts.MinLng, opts.MaxLat, opts.MaxLng)
	if opts.AntiProminence {
		opts.Logger.Info("anti-prominence run: elevations will be flipped per tile", "job", opts.JobID)
	}

	type tileJob struct {
		id tilesource.TileID
	}
	type tileResult struct {
		id   tilesource.TileID
		tree *dividetree.Tree
		skip bool
	}

	jobs := make(chan tileJob, len(ids))
	results := make(chan tileResult, len(ids))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for j := range jobs {
			select {
			case <-ctx.Done():
				results <- tileResult{id: j.id, skip: true}
				continue
			default:
			}

			loadStart := time.Now()
			tile, err := cache.Get(ctx, j.id)
			observability.Tile().OnLoad(ctx, string(j.id), time.Since(loadStart), err)
			if errors.Is(err, tilecache.ErrNotFound) {
				results <- tileResult{id: j.id, skip: true}
				continue
			}
			if err != nil {
				opts.Logger.Warn("tile load failed", "tile", j.id, "err", err, "job", opts.JobID)
				results <- tileResult{id: j.id, skip: true}
				continue
			}

			center := tile.CoordinateSystem().LatLng(geo.NewOffsets(geo.Coord(tile.Width()/2), geo.Coord(tile.Height()/2)))
			if opts.Polygon.SkipTile(center) {
				results <- tileResult{id: j.id, skip: true}
				continue
			}

			builder := treebuilder.New(tile)
			tree := builder.BuildDivideTree()
			if opts.AntiProminence {
				tree.FlipElevations()
			}
			if opts.OutputPath != nil {
				if err := writeDvt(opts.OutputPath(j.id), tree); err != nil {
					opts.Logger.Warn("writing .dvt failed", "tile", j.id, "err", err, "job", opts.JobID)
				}
			}
			results <- tileResult{id: j.id, tree: tree}
		}
	}

	for range min(opts.Threads, max(1, len(ids))) {
		wg.Add(1)
		go worker()
	}
	for _, id := range ids {
		jobs <- tileJob{id: id}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	res := &RegionResult{TilesAttempted: len(ids), Trees: map[tilesource.TileID]*dividetree.Tree{}}
	done := 0
	for r := range results {
		done++
		if opts.Progress != nil {
			opts.Progress("load", done, len(ids))
		}
		if r.skip {
			res.TilesSkipped++
			continue
		}
		res.Trees[r.id] = r.tree
		res.TilesBuilt++
	}

	res.Duration = time.Since(start)
	opts.Logger.Info("region run complete",
		"attempted", res.TilesAttempted, "built", res.TilesBuilt, "skipped", res.TilesSkipped,
		"duration", res.Duration, "job", opts.JobID)

	if opts.EmitKML {
		observability.KML().OnEmitRequested(ctx, "")
	}

	return res, nil
}

func writeDvt(path string, tree *dividetree.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return dvt.Write(f, tree, time.Now())
}

// MergeOptions configures a merge run over already-built per-tile trees.
type MergeOptions struct {
	Threads       int
	MinProminence geo.Elevation
	Finalize      bool
	IsBathymetry  bool
	Logger        *log.Logger
	Progress      ProgressFunc
	JobID         string
}

func (o *MergeOptions) setDefaults() {
	if o.Threads <= 0 {
		o.Threads = DefaultThreads()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// MergeResult is the outcome of a merge run.
type MergeResult struct {
	Tree       *dividetree.Tree
	IslandTree *islandtree.Tree
	Duration   time.Duration
}

// RunMerge reduces trees pairwise via binary reduction into
// a single DivideTree, using a fixed-size worker pool for the concurrent
// pairwise merges within each reduction round. After all merges, it
// optionally finalizes (deletes runoffs and re-prunes with a freshly
// built LineTree) and always rebuilds the IslandTree for final
// prominence values.
func RunMerge(ctx context.Context, trees []*dividetree.Tree, opts MergeOptions) (*MergeResult, error) {
	opts.setDefaults()
	if len(trees) == 0 {
		return nil, stderrors.New(stderrors.CodeInputMissing, "merge driver: no trees supplied")
	}
	start := time.Now()

	current := trees
	round := 0
	for len(current) > 1 {
		round++
		pairs := (len(current) + 1) / 2
		next := make([]*dividetree.Tree, pairs)

		type pairJob struct {
			idx int
			a   *dividetree.Tree
			b   *dividetree.Tree // nil if a is the odd one out
		}
		jobs := make(chan pairJob, pairs)
		var wg sync.WaitGroup
		var mergeErr error
		var mu sync.Mutex

		worker := func() {
			defer wg.Done()
			for j := range jobs {
				if j.b == nil {
					next[j.idx] = j.a
					continue
				}
				merged, err := mergeTwo(ctx, j.a, j.b)
				if err != nil {
					mu.Lock()
					if mergeErr == nil {
						mergeErr = err
					}
					mu.Unlock()
					continue
				}
				next[j.idx] = merged
			}
		}

		for range min(opts.Threads, max(1, pairs)) {
			wg.Add(1)
			go worker()
		}
		idx := 0
		for i := 0; i < len(current); i += 2 {
			var b *dividetree.Tree
			if i+1 < len(current) {
				b = current[i+1]
			}
			observability.Merge().OnMergeStart(ctx, len(current[i].Peaks()), lenOrZero(b))
			jobs <- pairJob{idx: idx, a: current[i], b: b}
			idx++
		}
		close(jobs)
		wg.Wait()
		if mergeErr != nil {
			return nil, mergeErr
		}
		if opts.Progress != nil {
			opts.Progress("merge", round, roundsNeeded(len(trees)))
		}
		current = next
	}

	tree := current[0]

	if opts.Finalize {
		tree.DeleteRunoffs()
		lt := linetree.Build(tree)
		it := islandtree.Build(tree, opts.IsBathymetry)
		firePeakDeletedHooks(ctx, tree.Prune(opts.MinProminence, it, lt))
	}

	it := islandtree.Build(tree, opts.IsBathymetry)

	res := &MergeResult{Tree: tree, IslandTree: it, Duration: time.Since(start)}
	opts.Logger.Info("merge run complete", "peaks", len(tree.Peaks()), "duration", res.Duration, "job", opts.JobID)
	return res, nil
}

// firePeakDeletedHooks reports one observability.Prune().OnPeakDeleted
// event per peak Prune actually removed, carrying its real id and the
// prominence it had at removal.
func firePeakDeletedHooks(ctx context.Context, deleted []dividetree.DeletedPeak) {
	for _, d := range deleted {
		observability.Prune().OnPeakDeleted(ctx, d.PeakID, float64(d.Prominence))
	}
}

func lenOrZero(t *dividetree.Tree) int {
	if t == nil {
		return 0
	}
	return len(t.Peaks())
}

func roundsNeeded(n int) int {
	rounds := 0
	for n > 1 {
		n = (n + 1) / 2
		rounds++
	}
	if rounds == 0 {
		rounds = 1
	}
	return rounds
}

// mergeTwo merges b into a, re-expressing both onto a shared coordinate
// system first if they are not already aligned. Returns a
// CodeInvariantViolation error if the coordinate systems are incompatible,
// which is fatal rather than silently producing a wrong tree.
func mergeTwo(ctx context.Context, a, b *dividetree.Tree) (*dividetree.Tree, error) {
	acs, bcs := a.CoordinateSystem(), b.CoordinateSystem()
	if !acs.CompatibleWith(bcs) {
		return nil, stderrors.New(stderrors.CodeInvariantViolation,
			"merge: incompatible coordinate systems (%s vs %s)", acs.String(), bcs.String())
	}
	merged := acs.MergeWith(bcs)
	if !a.SetOrigin(merged) || !b.SetOrigin(merged) {
		return nil, stderrors.New(stderrors.CodeInvariantViolation, "merge: failed to reproject onto shared origin")
	}
	basinSaddles := a.Merge(b)
	for _, elev := range basinSaddles {
		observability.Merge().OnBasinSaddle(ctx, float64(elev))
	}
	return a, nil
}

// ParentsOptions configures a parents-table run over a single finalized
// tree.
type ParentsOptions struct {
	MinProminence geo.Elevation
	IsBathymetry  bool
	CommandLine   string
	Logger        *log.Logger
}

// RunParents builds the IslandTree and LineTree for a finalized divide
// tree and writes the parents table.
func RunParents(tree *dividetree.Tree, opts ParentsOptions, w io.Writer) error {
	it := islandtree.Build(tree, opts.IsBathymetry)
	lt := linetree.Build(tree)
	return report.WriteParents(w, tree, it, lt, opts.MinProminence, opts.CommandLine, time.Now())
}
