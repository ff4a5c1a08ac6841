package tiles

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultRetryDelay = 5 * time.Second

// primaryTimeout bounds one shared primary load.
const primaryTimeout = 10 * time.Second

// CombinedTileProvider serves primary tiles and falls back to a placeholder
// when the primary fails. After a failure it retries the primary once in the
// background and reports a late success through the on-load callback.
type CombinedTileProvider struct {
	primary    TileProvider
	fallback   TileProvider
	RetryDelay time.Duration

	group      singleflight.Group
	onLoadFunc func(Tile, image.Image)
	log        *slog.Logger
}

func NewCombinedTileProvider(primary, fallback TileProvider, log *slog.Logger) *CombinedTileProvider {
	if log == nil {
		log = slog.Default()
	}
	return &CombinedTileProvider{
		primary:    primary,
		fallback:   fallback,
		RetryDelay: DefaultRetryDelay,
		log:        log,
	}
}

func (p *CombinedTileProvider) SetOnLoadCallback(callback func(Tile, image.Image)) {
	p.onLoadFunc = callback
}

func (p *CombinedTileProvider) GetTile(ctx context.Context, tile Tile) (image.Image, error) {
	img, err := p.loadPrimary(ctx, tile)
	if err == nil {
		return img, nil
	}
	p.log.Warn("primary tile failed, using fallback", "tile", GetTileKey(tile), "error", err)

	fallbackImg, ferr := p.fallback.GetTile(ctx, tile)
	if ferr != nil {
		return nil, fmt.Errorf("both primary and fallback providers failed: %w", ferr)
	}
	if p.onLoadFunc != nil && p.RetryDelay > 0 {
		go p.retry(tile)
	}
	return fallbackImg, nil
}

// loadPrimary collapses concurrent requests for the same tile into one. The
// shared load outlives the caller that started it, so a cancelled caller does
// not fail the others waiting on the same key.
func (p *CombinedTileProvider) loadPrimary(ctx context.Context, tile Tile) (image.Image, error) {
	v, err, _ := p.group.Do(GetTileKey(tile), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), primaryTimeout)
		defer cancel()
		return p.primary.GetTile(ctx, tile)
	})
	if err != nil {
		return nil, err
	}
	img, _ := v.(image.Image)
	if img == nil {
		return nil, fmt.Errorf("primary returned no image for %s", GetTileKey(tile))
	}
	return img, nil
}

func (p *CombinedTileProvider) retry(tile Tile) {
	time.Sleep(p.RetryDelay)
	img, err := p.loadPrimary(context.Background(), tile)
	if err != nil {
		p.log.Debug("tile retry failed", "tile", GetTileKey(tile), "error", err)
		return
	}
	p.onLoadFunc(tile, img)
}
