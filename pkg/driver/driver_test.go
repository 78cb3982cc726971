package driver

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/kirmse-prom/prominence/pkg/dividetree"
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/observability"
	"github.com/kirmse-prom/prominence/pkg/tilecache"
	"github.com/kirmse-prom/prominence/pkg/tilesource"
	"github.com/kirmse-prom/prominence/pkg/treebuilder"
)

func testCS() geo.CoordinateSystem {
	return geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 5, 5)
}

type fixedSource struct {
	tiles map[tilesource.TileID]tilesource.Tile
}

func (s *fixedSource) Load(_ context.Context, id tilesource.TileID) (tilesource.Tile, error) {
	return s.tiles[id], nil
}

// TestRunRegionBuildsOneTreePerTile runs the three-peak chain on a
// single 5x5 tile scenario through the region driver end to end.
func TestRunRegionBuildsOneTreePerTile(t *testing.T) {
	samples := []geo.Elevation{
		1, 2, 3, 2, 1,
		2, 5, 4, 6, 2,
		3, 4, 9, 7, 3,
		2, 6, 4, 5, 2,
		1, 2, 3, 2, 1,
	}
	tile := tilesource.NewRasterTile(5, 5, samples, testCS())
	src := &fixedSource{tiles: map[tilesource.TileID]tilesource.Tile{"N00E000": tile}}
	cache := tilecache.New(src, tilecache.NewLRUStore(4), tilecache.EdgeDuplicated)

	res, err := RunRegion(context.Background(), cache, RegionOptions{
		MinLat: 0, MinLng: 0, MaxLat: 1, MaxLng: 1,
		TileIDs: func(float64, float64, float64, float64) []tilesource.TileID {
			return []tilesource.TileID{"N00E000"}
		},
	})
	if err != nil {
		t.Fatalf("RunRegion: %v", err)
	}
	if res.TilesBuilt != 1 || res.TilesSkipped != 0 {
		t.Fatalf("built=%d skipped=%d, want built=1 skipped=0", res.TilesBuilt, res.TilesSkipped)
	}
	tree := res.Trees["N00E000"]
	if tree == nil {
		t.Fatal("no tree for N00E000")
	}
	if len(tree.Peaks()) != 1 || tree.Peaks()[0].Elevation != 9 {
		t.Fatalf("peaks = %+v, want a single peak at elevation 9", tree.Peaks())
	}
}

func TestRunRegionSkipsMissingTile(t *testing.T) {
	src := &fixedSource{tiles: map[tilesource.TileID]tilesource.Tile{}}
	cache := tilecache.New(src, tilecache.NewLRUStore(4), tilecache.EdgeDuplicated)

	res, err := RunRegion(context.Background(), cache, RegionOptions{
		TileIDs: func(float64, float64, float64, float64) []tilesource.TileID {
			return []tilesource.TileID{"N00E000"}
		},
	})
	if err != nil {
		t.Fatalf("RunRegion: %v", err)
	}
	if res.TilesSkipped != 1 || res.TilesBuilt != 0 {
		t.Fatalf("skipped=%d built=%d, want skipped=1 built=0", res.TilesSkipped, res.TilesBuilt)
	}
}

func TestRunRegionSkipsTilesOutsidePolygon(t *testing.T) {
	tile := tilesource.NewRasterTile(3, 3, []geo.Elevation{
		1, 1, 1,
		1, 9, 1,
		1, 1, 1,
	}, geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 3, 3))
	src := &fixedSource{tiles: map[tilesource.TileID]tilesource.Tile{"N00E000": tile}}
	cache := tilecache.New(src, tilecache.NewLRUStore(4), tilecache.EdgeDuplicated)

	res, err := RunRegion(context.Background(), cache, RegionOptions{
		TileIDs: func(float64, float64, float64, float64) []tilesource.TileID {
			return []tilesource.TileID{"N00E000"}
		},
		Polygon: tilesource.Polygon{Points: []geo.LatLng{
			{Lat: 10, Lng: 10}, {Lat: 10, Lng: 11}, {Lat: 11, Lng: 11}, {Lat: 11, Lng: 10},
		}},
	})
	if err != nil {
		t.Fatalf("RunRegion: %v", err)
	}
	if res.TilesSkipped != 1 {
		t.Fatalf("skipped=%d, want 1 (tile center is outside the filter polygon)", res.TilesSkipped)
	}
}

// TestRunMergeMatchingRunoffs covers two tiles, one peak each, with
// matching runoffs on the shared edge, connected by a synthesized
// saddle after merge. At 3 samples per degree the 4-sample-wide tiles
// share their edge column, so A's east corners meet B's west corners.
func TestRunMergeMatchingRunoffs(t *testing.T) {
	csA := geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 3, 3)
	csB := geo.NewDegreeCoordinateSystem(0, 1, 1, 2, 3, 3)

	tileA := tilesource.NewRasterTile(4, 4, []geo.Elevation{
		30, 40, 50, 50,
		40, 100, 60, 50,
		30, 60, 55, 50,
		20, 50, 50, 50,
	}, csA)
	tileB := tilesource.NewRasterTile(4, 4, []geo.Elevation{
		50, 45, 40, 30,
		50, 60, 65, 40,
		50, 55, 80, 30,
		50, 40, 30, 20,
	}, csB)

	treeA := treebuilder.New(tileA).BuildDivideTree()
	treeB := treebuilder.New(tileB).BuildDivideTree()

	res, err := RunMerge(context.Background(), []*dividetree.Tree{treeA, treeB}, MergeOptions{})
	if err != nil {
		t.Fatalf("RunMerge: %v", err)
	}
	if len(res.Tree.Peaks()) != 2 {
		t.Fatalf("merged tree has %d peaks, want 2", len(res.Tree.Peaks()))
	}
}

type recordingMergeHooks struct {
	observability.NoopMergeHooks
	mu           sync.Mutex
	basinSaddles []float64
}

func (h *recordingMergeHooks) OnBasinSaddle(_ context.Context, elevation float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.basinSaddles = append(h.basinSaddles, elevation)
}

// TestRunMergeFiresOnBasinSaddle covers the same matching-runoffs
// scenario as TestRunMergeMatchingRunoffs. Both corner pairs on the
// shared column lead to the same two peaks, so the second splice closes
// a cycle and cycle breaking discards one of its two 50 saddles as a
// basin saddle; the test asserts that it is reported through
// observability.Merge().OnBasinSaddle rather than only affecting the
// tree's internal saddle list.
func TestRunMergeFiresOnBasinSaddle(t *testing.T) {
	csA := geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 3, 3)
	csB := geo.NewDegreeCoordinateSystem(0, 1, 1, 2, 3, 3)

	tileA := tilesource.NewRasterTile(4, 4, []geo.Elevation{
		30, 40, 50, 50,
		40, 100, 60, 50,
		30, 60, 55, 50,
		20, 50, 50, 50,
	}, csA)
	tileB := tilesource.NewRasterTile(4, 4, []geo.Elevation{
		50, 45, 40, 30,
		50, 60, 65, 40,
		50, 55, 80, 30,
		50, 40, 30, 20,
	}, csB)

	treeA := treebuilder.New(tileA).BuildDivideTree()
	treeB := treebuilder.New(tileB).BuildDivideTree()

	hooks := &recordingMergeHooks{}
	observability.SetMergeHooks(hooks)
	defer observability.Reset()

	_, err := RunMerge(context.Background(), []*dividetree.Tree{treeA, treeB}, MergeOptions{})
	if err != nil {
		t.Fatalf("RunMerge: %v", err)
	}
	if len(hooks.basinSaddles) == 0 {
		t.Fatal("expected OnBasinSaddle to fire at least once for a merge across a shared tile edge")
	}
}

type recordingPruneHooks struct {
	observability.NoopPruneHooks
	mu      sync.Mutex
	deleted []struct {
		peakID     int
		prominence float64
	}
}

func (h *recordingPruneHooks) OnPeakDeleted(_ context.Context, peakID int, prominence float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, struct {
		peakID     int
		prominence float64
	}{peakID, prominence})
}

// TestFirePeakDeletedHooksReportsRealPeaks guards against firePeakDeletedHooks
// regressing into a single hardcoded placeholder call: it must fire once per
// DeletedPeak, carrying that peak's own id and prominence, and fire zero
// times when nothing was pruned.
func TestFirePeakDeletedHooksReportsRealPeaks(t *testing.T) {
	hooks := &recordingPruneHooks{}
	observability.SetPruneHooks(hooks)
	defer observability.Reset()

	firePeakDeletedHooks(context.Background(), []dividetree.DeletedPeak{
		{PeakID: 7, Prominence: 123.5},
		{PeakID: 12, Prominence: 45},
	})

	if len(hooks.deleted) != 2 {
		t.Fatalf("OnPeakDeleted fired %d times, want 2", len(hooks.deleted))
	}
	if hooks.deleted[0].peakID != 7 || hooks.deleted[0].prominence != 123.5 {
		t.Errorf("first deletion = %+v, want peak 7 at prominence 123.5", hooks.deleted[0])
	}
	if hooks.deleted[1].peakID != 12 || hooks.deleted[1].prominence != 45 {
		t.Errorf("second deletion = %+v, want peak 12 at prominence 45", hooks.deleted[1])
	}

	hooks.deleted = nil
	firePeakDeletedHooks(context.Background(), nil)
	if len(hooks.deleted) != 0 {
		t.Errorf("OnPeakDeleted fired %d times for an empty prune, want 0", len(hooks.deleted))
	}
}

func TestRunMergeRejectsIncompatibleCoordinateSystems(t *testing.T) {
	a := dividetree.New(geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 4, 4), nil, nil, nil)
	b := dividetree.New(geo.NewDegreeCoordinateSystem(0, 0, 1, 1, 8, 8), nil, nil, nil)

	_, err := RunMerge(context.Background(), []*dividetree.Tree{a, b}, MergeOptions{})
	if err == nil {
		t.Fatal("expected an error merging trees with incompatible resolutions")
	}
}

func TestRunParentsWritesTable(t *testing.T) {
	samples := []geo.Elevation{
		1, 2, 3, 2, 1,
		2, 5, 4, 6, 2,
		3, 4, 9, 7, 3,
		2, 6, 4, 5, 2,
		1, 2, 3, 2, 1,
	}
	tile := tilesource.NewRasterTile(5, 5, samples, testCS())
	tree := treebuilder.New(tile).BuildDivideTree()

	var buf strings.Builder
	if err := RunParents(tree, ParentsOptions{MinProminence: 0}, &buf); err != nil {
		t.Fatalf("RunParents: %v", err)
	}
	if !strings.Contains(buf.String(), "# Prominence and line parents") {
		t.Errorf("output missing header: %q", buf.String())
	}
}

func TestDefaultTileIDsCoversBoundingBox(t *testing.T) {
	ids := DefaultTileIDs(36.5, -105.5, 38.5, -103.5)
	want := map[tilesource.TileID]bool{
		"N36W106": true, "N36W105": true, "N36W104": true,
		"N37W106": true, "N37W105": true, "N37W104": true,
		"N38W106": true, "N38W105": true, "N38W104": true,
	}
	if len(ids) != len(want) {
		t.Fatalf("got %d tile ids, want %d: %v", len(ids), len(want), ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected tile id %s", id)
		}
	}
}
