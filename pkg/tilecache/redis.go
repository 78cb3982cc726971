package tilecache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kirmse-prom/prominence/pkg/errors"
	"github.com/kirmse-prom/prominence/pkg/geo"
	"github.com/kirmse-prom/prominence/pkg/tilesource"
)

// RedisStore is a Store backed by a redis server, for sharing one warm
// tile cache across a worker pool that spans processes (a region driver
// sharded across hosts for a large job). Grounded on the Get/Set/Delete
// shape of this package's Cache interface family, with redis.Client in
// place of a local file or map.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing redis client. prefix namespaces every
// key this store touches, so one redis instance can serve multiple
// regions or runs without collision.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// redisTile is the wire form of a tile, round-tripped through
// geo.CoordinateSystem's own text encoding rather than reimplementing
// lat/lng math on the decode side.
type redisTile struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Samples  []geo.Elevation `json:"samples"`
	CoordSys string          `json:"cs"`
}

func (s *RedisStore) key(id tilesource.TileID) string {
	return s.prefix + string(id)
}

// Get retrieves and decodes the tile stored for id. A connection failure
// is retried a few times before giving up, since a long-running region
// job shouldn't abort over a transient redis blip.
func (s *RedisStore) Get(ctx context.Context, id tilesource.TileID) (tilesource.Tile, bool, error) {
	var data []byte
	miss := false
	err := retryWithBackoff(ctx, func() error {
		b, err := s.client.Get(ctx, s.key(id)).Bytes()
		if err == redis.Nil {
			miss = true
			return nil
		}
		if err != nil {
			return retryable(err)
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrap(errors.CodeInternal, err, "tilecache: redis get %s", id)
	}
	if miss {
		return nil, false, nil
	}

	var wire redisTile
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, false, errors.Wrap(errors.CodeInputCorrupt, err, "tilecache: decode cached tile %s", id)
	}
	cs, err := geo.ParseCoordinateSystem(wire.CoordSys)
	if err != nil {
		return nil, false, errors.Wrap(errors.CodeInputCorrupt, err, "tilecache: decode coordinate system for %s", id)
	}
	return tilesource.NewRasterTile(wire.Width, wire.Height, wire.Samples, cs), true, nil
}

// Put encodes and stores tile under id, with no expiration: eviction for
// a shared redis cache is left to the server's own policy rather than
// duplicated here.
func (s *RedisStore) Put(ctx context.Context, id tilesource.TileID, tile tilesource.Tile) error {
	w, h := tile.Width(), tile.Height()
	samples := make([]geo.Elevation, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			samples[y*w+x] = tile.At(x, y)
		}
	}
	wire := redisTile{
		Width:    w,
		Height:   h,
		Samples:  samples,
		CoordSys: tile.CoordinateSystem().String(),
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("tilecache: encode tile %s: %w", id, err)
	}

	if err := retryWithBackoff(ctx, func() error {
		if err := s.client.Set(ctx, s.key(id), data, 0).Err(); err != nil {
			return retryable(err)
		}
		return nil
	}); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "tilecache: redis set %s", id)
	}
	return nil
}

// Delete removes id from the redis store.
func (s *RedisStore) Delete(ctx context.Context, id tilesource.TileID) error {
	if err := retryWithBackoff(ctx, func() error {
		if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
			return retryable(err)
		}
		return nil
	}); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "tilecache: redis del %s", id)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
