package tiles

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/olablt/gio-pulsemap/tiles/worker"
)

type TileProvider interface {
	GetTile(ctx context.Context, tile Tile) (image.Image, error)
}

// TileManager caches provider results and loads missing tiles in the
// background so layout never waits on the network.
type TileManager struct {
	cache    Cache
	provider TileProvider
	pool     *worker.Pool
	onLoad   func(Tile)
	log      *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]bool
}

func NewTileManager(provider TileProvider, cache Cache, pool *worker.Pool, log *slog.Logger) *TileManager {
	if cache == nil {
		cache = NewImageCache(DefaultCacheSize)
	}
	if log == nil {
		log = slog.Default()
	}
	return &TileManager{
		cache:    cache,
		provider: provider,
		pool:     pool,
		log:      log,
		pending:  make(map[string]bool),
	}
}

func (tm *TileManager) GetCache() Cache {
	return tm.cache
}

// SetOnLoadCallback registers fn to run, on a worker goroutine, each time a
// tile image is stored.
func (tm *TileManager) SetOnLoadCallback(fn func(Tile)) {
	tm.onLoad = fn
}

// GetTileKey returns a unique string key for a tile
func GetTileKey(tile Tile) string {
	return fmt.Sprintf("%d/%d/%d", tile.Zoom, tile.X, tile.Y)
}

// Cached returns the tile image if it is already loaded.
func (tm *TileManager) Cached(tile Tile) (image.Image, bool) {
	return tm.cache.Get(GetTileKey(tile))
}

// GetTile returns the tile, loading it from the provider on a cache miss.
func (tm *TileManager) GetTile(ctx context.Context, tile Tile) (image.Image, error) {
	if img, ok := tm.Cached(tile); ok {
		return img, nil
	}
	img, err := tm.provider.GetTile(ctx, tile)
	if err != nil {
		return nil, fmt.Errorf("load tile %s: %w", GetTileKey(tile), err)
	}
	tm.Store(tile, img)
	return img, nil
}

// Store replaces the cached image for tile.
func (tm *TileManager) Store(tile Tile, img image.Image) {
	tm.cache.Set(GetTileKey(tile), img)
	if tm.onLoad != nil {
		tm.onLoad(tile)
	}
}

// Prefetch queues a load for every tile that is neither cached nor already
// queued.
func (tm *TileManager) Prefetch(ctx context.Context, tiles []Tile) {
	for _, tile := range tiles {
		key := GetTileKey(tile)
		if _, ok := tm.cache.Get(key); ok {
			continue
		}
		tm.pendingMu.Lock()
		if tm.pending[key] {
			tm.pendingMu.Unlock()
			continue
		}
		tm.pending[key] = true
		tm.pendingMu.Unlock()

		err := tm.pool.Submit(worker.Task{
			Ctx:  ctx,
			Name: "tile " + key,
			Work: func(ctx context.Context) error {
				defer tm.done(key)
				_, err := tm.GetTile(ctx, tile)
				return err
			},
		})
		if err != nil {
			tm.done(key)
			tm.log.Debug("prefetch skipped", "tile", key, "error", err)
		}
	}
}

func (tm *TileManager) done(key string) {
	tm.pendingMu.Lock()
	delete(tm.pending, key)
	tm.pendingMu.Unlock()
}
