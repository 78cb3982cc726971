// Package config loads an optional driver configuration file for
// unattended/batch runs of the region driver; the merge and parents
// drivers do not read it. The
// CLI flags remain the primary surface; this file is an alternate
// source of the same values, with flag values always winning when both
// are given.
//
// Grounded on pkg/deps/rust/cargo.go's os.ReadFile + toml.Unmarshal
// pattern.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Region holds the settings of a "prominence region" run.
type Region struct {
	MinLat         float64 `toml:"min_lat"`
	MinLng         float64 `toml:"min_lng"`
	MaxLat         float64 `toml:"max_lat"`
	MaxLng         float64 `toml:"max_lng"`
	MinProminence  float64 `toml:"min_prominence"`
	Threads        int     `toml:"threads"`
	Format         string  `toml:"format"`
	TileDir        string  `toml:"tile_dir"`
	PolygonFile    string  `toml:"polygon_file"`
	UTMZone        int     `toml:"utm_zone"`
	AntiProminence bool    `toml:"anti_prominence"`
	Bathymetry     bool    `toml:"bathymetry"`
	EmitKML        bool    `toml:"emit_kml"`
	OutputDir      string  `toml:"output_dir"`
	StatusAddr     string  `toml:"status_addr"`
}

// Cache holds the region driver's tile-cache backend settings.
type Cache struct {
	// Backend selects the Store implementation: "memory" (default,
	// pkg/tilecache.LRUStore) or "redis" (pkg/tilecache.RedisStore).
	Backend     string `toml:"backend"`
	Capacity    int    `toml:"capacity"`
	RedisAddr   string `toml:"redis_addr"`
	RedisPrefix string `toml:"redis_prefix"`
}

// Config is the top-level driver configuration file shape.
type Config struct {
	Region Region `toml:"region"`
	Cache  Cache  `toml:"cache"`
}

// Default returns a Config with the same defaults the CLI flags use.
func Default() *Config {
	return &Config{
		Cache: Cache{Backend: "memory", Capacity: 64},
	}
}

// Load reads and parses a TOML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
