package main

import (
	"context"
	"log/slog"
	"os"

	"gioui.org/app"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"

	"github.com/olablt/gio-pulsemap/gesture"
	"github.com/olablt/gio-pulsemap/internal/config"
	"github.com/olablt/gio-pulsemap/internal/logging"
	"github.com/olablt/gio-pulsemap/mapview"
	"github.com/olablt/gio-pulsemap/pulse"
	"github.com/olablt/gio-pulsemap/tiles"
	"github.com/olablt/gio-pulsemap/tiles/worker"
	"github.com/olablt/gio-pulsemap/viewport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	pool := worker.NewPool(cfg.Tiles.Workers, log)

	refresh := make(chan struct{}, 1)
	provider, combined := newProvider(cfg, log)
	tm := tiles.NewTileManager(provider, tiles.NewImageCache(cfg.Tiles.CacheSize), pool, log)
	if combined != nil {
		// A late primary tile replaces the placeholder already cached.
		combined.SetOnLoadCallback(tm.Store)
	}
	mv := mapview.New(ctx, tm, refresh, log)
	mv.Gestures = gesture.NewRecognizer(gesture.Admission{Simultaneous: cfg.Gesture.Simultaneous})

	ctrl := viewport.NewController(mv,
		viewport.WithBounds(viewport.Bounds{Min: cfg.Zoom.MinDelta, Max: cfg.Zoom.MaxDelta}),
		viewport.WithRearmListener(cfg.Zoom.RearmListener),
		viewport.WithLogger(log),
	)
	mv.SetHandler(ctrl)
	indicator := pulse.NewIndicator()
	center := viewport.Coordinate{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng}

	go func() {
		w := new(app.Window)
		w.Option(
			app.Title(cfg.Window.Title),
			app.Size(unit.Dp(cfg.Window.Width), unit.Dp(cfg.Window.Height)),
		)

		go func() {
			for range refresh {
				w.Invalidate()
			}
		}()

		var ops op.Ops
		ready := false
		for {
			switch e := w.Event().(type) {
			case app.DestroyEvent:
				cancel()
				pool.Shutdown()
				if e.Err != nil {
					log.Error("window closed", "error", e.Err)
					os.Exit(1)
				}
				os.Exit(0)
			case app.FrameEvent:
				gtx := app.NewContext(&ops, e)
				if !ready {
					ctrl.Start(center, cfg.Map.DistanceM)
					ready = true
				}
				layout.Stack{Alignment: layout.Center}.Layout(gtx,
					layout.Expanded(mv.Layout),
					layout.Stacked(indicator.Layout),
				)
				e.Frame(gtx.Ops)
			}
		}
	}()
	app.Main()
}

// newProvider builds the tile source: generated placeholders when offline,
// otherwise OSM tiles with placeholders while they load or fail.
func newProvider(cfg *config.Config, log *slog.Logger) (tiles.TileProvider, *tiles.CombinedTileProvider) {
	local := tiles.NewLocalTileProvider()
	if cfg.Tiles.Offline {
		log.Info("tiles offline, using placeholders")
		return local, nil
	}
	osm := tiles.NewOSMTileProvider(
		tiles.WithURL(cfg.Tiles.URL),
		tiles.WithUserAgent(cfg.Tiles.UserAgent),
		tiles.WithRateLimit(cfg.Tiles.RPS),
		tiles.WithLogger(log),
	)
	combined := tiles.NewCombinedTileProvider(osm, local, log)
	return combined, combined
}
