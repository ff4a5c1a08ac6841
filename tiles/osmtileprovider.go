package tiles

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

const (
	DefaultTileURL   = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultUserAgent = "gio-pulsemap/1.0 (+https://github.com/olablt/gio-pulsemap)"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// OSMTileProvider downloads raster tiles from a {z}/{x}/{y} URL template.
type OSMTileProvider struct {
	client    *http.Client
	urlFormat string
	userAgent string
	limiter   *rate.Limiter
	log       *slog.Logger
}

type OSMOption func(*OSMTileProvider)

func WithURL(format string) OSMOption {
	return func(p *OSMTileProvider) { p.urlFormat = format }
}

func WithUserAgent(ua string) OSMOption {
	return func(p *OSMTileProvider) { p.userAgent = ua }
}

func WithHTTPClient(c *http.Client) OSMOption {
	return func(p *OSMTileProvider) { p.client = c }
}

// WithRateLimit caps requests per second. rps <= 0 disables the limit.
func WithRateLimit(rps float64) OSMOption {
	return func(p *OSMTileProvider) {
		if rps <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

func WithLogger(l *slog.Logger) OSMOption {
	return func(p *OSMTileProvider) { p.log = l }
}

func NewOSMTileProvider(opts ...OSMOption) *OSMTileProvider {
	p := &OSMTileProvider{
		client:    &http.Client{},
		urlFormat: DefaultTileURL,
		userAgent: DefaultUserAgent,
		limiter:   rate.NewLimiter(2, 2),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OSMTileProvider) GetTile(ctx context.Context, tile Tile) (image.Image, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	url := p.GetTileURL(tile)
	p.log.Debug("requesting tile", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "image/png,image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	return img, nil
}

// GetTileURL returns the URL for downloading the map tile
func (p *OSMTileProvider) GetTileURL(tile Tile) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(tile.Zoom),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
	).Replace(p.urlFormat)
}
