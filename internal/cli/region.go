package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/kirmse-prom/prominence/internal/config"
	"github.com/kirmse-prom/prominence/pkg/driver"
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/statusserver"
	"github.com/kirmse-prom/prominence/pkg/tilecache"
	"github.com/kirmse-prom/prominence/pkg/tilesource"
)

// regionOpts holds the "prominence region" command's flags.
type regionOpts struct {
	minLat, minLng, maxLat, maxLng float64
	minProminence                  float64
	threads                        int
	format                         string
	tileDir                        string
	outputDir                      string
	polygonFile                    string
	utmZone                        int
	antiProminence                 bool
	bathymetry                     bool
	emitKML                        bool
	statusAddr                     string
	noProgress                     bool
	configPath                     string
	cacheBackend                   string
	cacheCapacity                  int
	redisAddr                      string
	redisPrefix                    string
}

func (c *CLI) regionCommand() *cobra.Command {
	o := regionOpts{threads: 0, cacheBackend: "memory", cacheCapacity: 64}

	cmd := &cobra.Command{
		Use:   "region",
		Short: "Build per-tile divide trees for every tile in a bounding box",
		Long: `region loads every tile covering a bounding box, builds each tile's
divide tree, and writes one .dvt file per tile for a later "prominence merge" pass.
Raster decoding is out of scope for this module; --format selects a loader
registered by an external caller via pkg/tilesource.Register.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegion(cmd, &o)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&o.minLat, "min-lat", 0, "minimum latitude of the region")
	f.Float64Var(&o.minLng, "min-lng", 0, "minimum longitude of the region")
	f.Float64Var(&o.maxLat, "max-lat", 0, "maximum latitude of the region")
	f.Float64Var(&o.maxLng, "max-lng", 0, "maximum longitude of the region")
	f.Float64Var(&o.minProminence, "min-prominence", 0, "minimum prominence to retain in a later merge/finalize pass")
	f.IntVar(&o.threads, "threads", 0, "worker pool size (default: GOMAXPROCS)")
	f.StringVar(&o.format, "format", "", "input tile format tag, passed through to a registered pkg/tilesource loader")
	f.StringVar(&o.tileDir, "tile-dir", ".", "directory the format loader reads tiles from")
	f.StringVar(&o.outputDir, "output-dir", ".", "directory to write one .dvt file per built tile")
	f.StringVar(&o.polygonFile, "kml-filter", "", "path to a lat,lng-per-line polygon file; tiles outside it are skipped (KML parsing itself is out of scope)")
	f.IntVar(&o.utmZone, "utm-zone", 0, "UTM zone, when the format loader produces UTM-projected tiles")
	f.BoolVar(&o.antiProminence, "anti-prominence", false, "flip elevations before building each tile's divide tree")
	f.BoolVar(&o.bathymetry, "bathymetry", false, "treat sea level as the minimum saddle elevation rather than zero")
	f.BoolVar(&o.emitKML, "emit-kml", false, "fire the KML-emission observability hook (actual KML writing is out of scope)")
	f.StringVar(&o.statusAddr, "status-addr", "", "serve GET /status job progress on this address (e.g. :8080)")
	f.BoolVar(&o.noProgress, "no-progress", false, "disable the terminal progress view")
	f.StringVar(&o.configPath, "config", "", "optional TOML config file (internal/config); flags override it")
	f.StringVar(&o.cacheBackend, "cache-backend", "memory", `tile cache backend: "memory" or "redis"`)
	f.IntVar(&o.cacheCapacity, "cache-capacity", 64, "in-memory LRU cache capacity, in tiles")
	f.StringVar(&o.redisAddr, "redis-addr", "", "redis address, when --cache-backend=redis")
	f.StringVar(&o.redisPrefix, "redis-prefix", "prominence:", "redis key prefix, when --cache-backend=redis")

	return cmd
}

func runRegion(cmd *cobra.Command, o *regionOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		applyRegionConfig(cmd, o, cfg)
	}

	src, err := tilesource.New(o.format, o.tileDir)
	if err != nil {
		return err
	}

	store, err := newStore(o.cacheBackend, o.cacheCapacity, o.redisAddr, o.redisPrefix)
	if err != nil {
		return err
	}
	cache := tilecache.New(src, store, tilecache.EdgeDuplicated)

	poly, err := loadPolygon(o.polygonFile)
	if err != nil {
		return err
	}

	jobID := uuid.NewString()
	logger.Info("region run starting", "job", jobID, "bbox", fmt.Sprintf("[%.2f,%.2f]-[%.2f,%.2f]", o.minLat, o.minLng, o.maxLat, o.maxLng))
	prog := newProgress(logger)

	status := statusserver.New(jobID)
	if o.statusAddr != "" {
		go func() {
			if err := status.ListenAndServe(o.statusAddr); err != nil {
				logger.Warn("status server stopped", "err", err)
			}
		}()
	}

	var tui *TUIProgress
	progressFns := []driver.ProgressFunc{status.Progress}
	if !o.noProgress && isInteractive(os.Stdout.Fd()) {
		tui = NewTUIProgress()
		go tui.Run() //nolint:errcheck // best-effort terminal view
		progressFns = append(progressFns, tui.Func())
	}

	if err := os.MkdirAll(o.outputDir, 0o755); err != nil {
		return err
	}

	res, err := driver.RunRegion(ctx, cache, driver.RegionOptions{
		MinLat: o.minLat, MinLng: o.minLng, MaxLat: o.maxLat, MaxLng: o.maxLng,
		MinProminence:  geo.Elevation(o.minProminence),
		Threads:        o.threads,
		AntiProminence: o.antiProminence,
		Bathymetry:     o.bathymetry,
		Polygon:        poly,
		EmitKML:        o.emitKML,
		OutputPath: func(id tilesource.TileID) string {
			return filepath.Join(o.outputDir, string(id)+".dvt")
		},
		JobID:    jobID,
		Logger:   logger,
		Progress: combineProgress(progressFns...),
	})
	if tui != nil {
		tui.Finish()
	}
	if err != nil {
		status.Fail(err)
		return err
	}

	prog.done(fmt.Sprintf("region run complete: built %d tiles, skipped %d", res.TilesBuilt, res.TilesSkipped))
	return nil
}

// combineProgress fans one driver.ProgressFunc callback out to several.
func combineProgress(fns ...driver.ProgressFunc) driver.ProgressFunc {
	return func(stage string, done, total int) {
		for _, fn := range fns {
			if fn != nil {
				fn(stage, done, total)
			}
		}
	}
}

func applyRegionConfig(cmd *cobra.Command, o *regionOpts, cfg *config.Config) {
	flags := cmd.Flags()
	setIfUnchanged := func(name string, apply func()) {
		if !flags.Changed(name) {
			apply()
		}
	}
	setIfUnchanged("min-lat", func() { o.minLat = cfg.Region.MinLat })
	setIfUnchanged("min-lng", func() { o.minLng = cfg.Region.MinLng })
	setIfUnchanged("max-lat", func() { o.maxLat = cfg.Region.MaxLat })
	setIfUnchanged("max-lng", func() { o.maxLng = cfg.Region.MaxLng })
	setIfUnchanged("min-prominence", func() { o.minProminence = cfg.Region.MinProminence })
	setIfUnchanged("threads", func() { o.threads = cfg.Region.Threads })
	setIfUnchanged("format", func() { o.format = cfg.Region.Format })
	setIfUnchanged("tile-dir", func() { o.tileDir = cfg.Region.TileDir })
	setIfUnchanged("kml-filter", func() { o.polygonFile = cfg.Region.PolygonFile })
	setIfUnchanged("utm-zone", func() { o.utmZone = cfg.Region.UTMZone })
	setIfUnchanged("anti-prominence", func() { o.antiProminence = cfg.Region.AntiProminence })
	setIfUnchanged("bathymetry", func() { o.bathymetry = cfg.Region.Bathymetry })
	setIfUnchanged("emit-kml", func() { o.emitKML = cfg.Region.EmitKML })
	setIfUnchanged("output-dir", func() { o.outputDir = cfg.Region.OutputDir })
	setIfUnchanged("status-addr", func() { o.statusAddr = cfg.Region.StatusAddr })
	setIfUnchanged("cache-backend", func() { o.cacheBackend = cfg.Cache.Backend })
	setIfUnchanged("cache-capacity", func() { o.cacheCapacity = cfg.Cache.Capacity })
	setIfUnchanged("redis-addr", func() { o.redisAddr = cfg.Cache.RedisAddr })
	setIfUnchanged("redis-prefix", func() { o.redisPrefix = cfg.Cache.RedisPrefix })
}

func newStore(backend string, capacity int, redisAddr, redisPrefix string) (tilecache.Store, error) {
	switch backend {
	case "", "memory":
		return tilecache.NewLRUStore(capacity), nil
	case "redis":
		if redisAddr == "" {
			return nil, fmt.Errorf("cli: --cache-backend=redis requires --redis-addr")
		}
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		return tilecache.NewRedisStore(client, redisPrefix), nil
	default:
		return nil, fmt.Errorf("cli: unknown cache backend %q (want memory or redis)", backend)
	}
}

// loadPolygon reads a simple "lat,lng" per line polygon file. KML
// parsing is out of scope for this module; this is the narrow seam a
// caller that has already extracted a polygon's points (from KML or
// otherwise) can feed into the region driver's skip predicate.
func loadPolygon(path string) (tilesource.Polygon, error) {
	if path == "" {
		return tilesource.Polygon{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return tilesource.Polygon{}, err
	}
	defer f.Close()

	var poly tilesource.Polygon
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return tilesource.Polygon{}, fmt.Errorf("cli: malformed polygon line %q (want lat,lng)", line)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return tilesource.Polygon{}, fmt.Errorf("cli: parsing polygon latitude in %q: %w", line, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return tilesource.Polygon{}, fmt.Errorf("cli: parsing polygon longitude in %q: %w", line, err)
		}
		poly.Points = append(poly.Points, geo.LatLng{Lat: lat, Lng: lng})
	}
	if err := scanner.Err(); err != nil {
		return tilesource.Polygon{}, err
	}
	return poly, nil
}
