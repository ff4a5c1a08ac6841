// Package mapview is a Gio map widget addressed by region (center and span).
// It renders raster tiles at the fractional zoom the span implies, animates
// region changes, and reports finished changes to a single listener.
package mapview

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/olablt/gio-pulsemap/gesture"
	"github.com/olablt/gio-pulsemap/tiles"
	"github.com/olablt/gio-pulsemap/viewport"
)

const DefaultAnimationDuration = 250 * time.Millisecond

// panSlop is how far a single pointer travels before a press becomes a pan.
const panSlop = 6

var background = color.NRGBA{R: 0xf2, G: 0xef, B: 0xe9, A: 0xff}

// Handler receives recognized gestures.
type Handler interface {
	HandleGesture(gesture.Event)
}

type MapView struct {
	TileManager       *tiles.TileManager
	Gestures          *gesture.Recognizer
	AnimationDuration time.Duration

	// region is the committed region; shown trails it while an animation runs.
	region   viewport.Region
	shown    viewport.Region
	anim     *animation
	listener viewport.RegionListener
	handler  Handler

	size         image.Point
	zoom         float64
	visibleTiles []tiles.Tile
	ops          *tiles.ImageOpCache
	refresh      chan<- struct{}
	ctx          context.Context
	log          *slog.Logger

	down      map[pointer.ID]f32.Point
	panID     pointer.ID
	panning   bool
	lastPanAt f32.Point
}

type animation struct {
	from, to viewport.Region
	start    time.Time
}

// New returns a map view drawing tiles from tm. Each time a tile finishes
// loading a value is sent on refresh, without blocking.
func New(ctx context.Context, tm *tiles.TileManager, refresh chan<- struct{}, log *slog.Logger) *MapView {
	if log == nil {
		log = slog.Default()
	}
	mv := &MapView{
		TileManager:       tm,
		Gestures:          gesture.NewRecognizer(gesture.DefaultAdmission),
		AnimationDuration: DefaultAnimationDuration,
		ops:               tiles.NewImageOpCache(tiles.DefaultCacheSize),
		refresh:           refresh,
		ctx:               ctx,
		log:               log,
		down:              make(map[pointer.ID]f32.Point),
	}
	if tm != nil {
		tm.SetOnLoadCallback(mv.tileLoaded)
	}
	return mv
}

// Region returns the committed region. While an animation runs this is its
// target, so consecutive taps compound.
func (mv *MapView) Region() viewport.Region {
	return mv.region
}

// SetRegion commits r. Without animation the change is immediate and the
// listener hears about it before SetRegion returns; with animation it is
// notified once the transition finishes. A new region supersedes a running
// animation.
func (mv *MapView) SetRegion(r viewport.Region, animated bool) {
	mv.region = r
	if !animated || mv.AnimationDuration <= 0 {
		mv.anim = nil
		mv.shown = r
		mv.invalidate()
		mv.notify(false)
		return
	}
	mv.anim = &animation{from: mv.shown, to: r}
	mv.invalidate()
}

func (mv *MapView) SetRegionListener(l viewport.RegionListener) {
	mv.listener = l
}

// SetHandler routes recognized gestures to h.
func (mv *MapView) SetHandler(h Handler) {
	mv.handler = h
}

// Animating reports whether a region transition is in progress.
func (mv *MapView) Animating() bool {
	return mv.anim != nil
}

// Zoom returns the fractional tile zoom of the last frame.
func (mv *MapView) Zoom() float64 {
	return mv.zoom
}

func (mv *MapView) notify(animated bool) {
	if mv.listener != nil {
		mv.listener.RegionChanged(animated)
	}
}

// step advances a running animation to now.
func (mv *MapView) step(now time.Time) {
	a := mv.anim
	if a == nil {
		return
	}
	if a.start.IsZero() {
		a.start = now
	}
	t := float64(now.Sub(a.start)) / float64(mv.AnimationDuration)
	if t >= 1 {
		mv.anim = nil
		mv.shown = a.to
		mv.notify(true)
		return
	}
	mv.shown = interpolate(a.from, a.to, easeOut(t))
}

// interpolate moves the center linearly and the span geometrically, which
// reads as a constant zoom speed.
func interpolate(from, to viewport.Region, t float64) viewport.Region {
	lerp := func(a, b float64) float64 { return a + (b-a)*t }
	geo := func(a, b float64) float64 {
		if a <= 0 || b <= 0 {
			return lerp(a, b)
		}
		return a * math.Pow(b/a, t)
	}
	return viewport.Region{
		Center: viewport.Coordinate{
			Lat: lerp(from.Center.Lat, to.Center.Lat),
			Lng: lerp(from.Center.Lng, to.Center.Lng),
		},
		Span: viewport.Span{
			LatitudeDelta:  geo(from.Span.LatitudeDelta, to.Span.LatitudeDelta),
			LongitudeDelta: geo(from.Span.LongitudeDelta, to.Span.LongitudeDelta),
		},
	}
}

func easeOut(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

func (mv *MapView) tileLoaded(tile tiles.Tile) {
	mv.ops.Delete(tiles.GetTileKey(tile))
	mv.invalidate()
}

func (mv *MapView) invalidate() {
	if mv.refresh == nil {
		return
	}
	select {
	case mv.refresh <- struct{}{}:
	default:
	}
}

func (mv *MapView) Layout(gtx layout.Context) layout.Dimensions {
	tag := mv

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  tag,
			Kinds:   pointer.Scroll | pointer.Drag | pointer.Press | pointer.Release | pointer.Cancel,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		if x, ok := ev.(pointer.Event); ok {
			mv.handlePointer(x)
		}
	}

	mv.step(gtx.Now)
	if mv.anim != nil {
		gtx.Execute(op.InvalidateCmd{})
	}

	mv.size = gtx.Constraints.Max
	mv.updateVisibleTiles()

	// Confine the area of interest to a gtx Max
	defer clip.Rect{Max: mv.size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, tag)
	paint.Fill(gtx.Ops, background)
	mv.drawTiles(gtx)

	return layout.Dimensions{Size: mv.size}
}

// handlePointer feeds the gesture recognizer and tracks single-pointer panning.
func (mv *MapView) handlePointer(ev pointer.Event) {
	for _, g := range mv.Gestures.Update(ev) {
		mv.log.Debug("gesture", "kind", g.Kind, "phase", g.Phase, "scale", g.Scale)
		if mv.handler != nil {
			mv.handler.HandleGesture(g)
		}
	}

	switch ev.Kind {
	case pointer.Press:
		mv.down[ev.PointerID] = ev.Position
		if len(mv.down) > 1 {
			mv.endPan()
		}
	case pointer.Drag:
		start, ok := mv.down[ev.PointerID]
		if !ok || len(mv.down) != 1 || mv.Gestures.Pinch.Active() {
			return
		}
		if !mv.panning {
			d := ev.Position.Sub(start)
			if math.Hypot(float64(d.X), float64(d.Y)) < panSlop {
				return
			}
			mv.panning = true
			mv.panID = ev.PointerID
			mv.lastPanAt = start
		}
		if ev.PointerID != mv.panID {
			return
		}
		mv.panBy(ev.Position.Sub(mv.lastPanAt))
		mv.lastPanAt = ev.Position
	case pointer.Release:
		delete(mv.down, ev.PointerID)
		if ev.PointerID == mv.panID {
			mv.endPan()
		}
	case pointer.Cancel:
		clear(mv.down)
		mv.endPan()
	}
}

// panBy moves the map content by d screen pixels.
func (mv *MapView) panBy(d f32.Point) {
	if d == (f32.Point{}) {
		return
	}
	zoom := mv.currentZoom()
	c := tiles.LatLng{Lat: mv.region.Center.Lat, Lng: mv.region.Center.Lng}
	x, y := tiles.CalculateWorldCoordinates(c, zoom)
	ll := tiles.WorldToLatLng(x-float64(d.X), y-float64(d.Y), zoom)
	center := viewport.Coordinate{Lat: ll.Lat, Lng: ll.Lng}

	// A running zoom keeps its span transition; only the center follows the
	// finger, so the listener still hears about the zoom when it lands.
	mv.region.Center = center
	mv.shown.Center = center
	if a := mv.anim; a != nil {
		a.from.Center = center
		a.to.Center = center
	} else {
		mv.shown = mv.region
	}
	mv.invalidate()
}

func (mv *MapView) endPan() {
	if !mv.panning {
		return
	}
	mv.panning = false
	mv.notify(false)
}

func (mv *MapView) currentZoom() float64 {
	r := mv.shown
	return tiles.ZoomForSpan(
		tiles.LatLng{Lat: r.Center.Lat, Lng: r.Center.Lng},
		r.Span.LatitudeDelta, r.Span.LongitudeDelta, mv.size,
	)
}

func (mv *MapView) updateVisibleTiles() {
	mv.zoom = mv.currentZoom()
	base := int(math.Floor(mv.zoom))
	scale := math.Pow(2, mv.zoom-float64(base))
	covered := image.Pt(
		int(math.Ceil(float64(mv.size.X)/scale)),
		int(math.Ceil(float64(mv.size.Y)/scale)),
	)
	center := tiles.LatLng{Lat: mv.shown.Center.Lat, Lng: mv.shown.Center.Lng}
	mv.visibleTiles = tiles.CalculateVisibleTiles(center, base, covered)

	if mv.TileManager != nil {
		mv.TileManager.Prefetch(mv.ctx, mv.visibleTiles)
	}
}

// drawTiles paints the cached visible tiles at the floor zoom, scaled about
// the screen center to the fractional zoom.
func (mv *MapView) drawTiles(gtx layout.Context) {
	if mv.TileManager == nil {
		return
	}
	base := math.Floor(mv.zoom)
	scale := float32(math.Pow(2, mv.zoom-base))
	screenCenter := image.Pt(mv.size.X>>1, mv.size.Y>>1)

	center := tiles.LatLng{Lat: mv.shown.Center.Lat, Lng: mv.shown.Center.Lng}
	centerWorldPx, centerWorldPy := tiles.CalculateWorldCoordinates(center, base)

	zoomed := op.Affine(f32.Affine2D{}.Scale(layout.FPt(screenCenter), f32.Pt(scale, scale))).Push(gtx.Ops)
	defer zoomed.Pop()

	// Ops for tiles that scrolled or zoomed away are released.
	keep := make(map[string]bool, len(mv.visibleTiles))
	defer mv.ops.Retain(keep)

	for _, tile := range mv.visibleTiles {
		keep[tiles.GetTileKey(tile)] = true
		img, ok := mv.TileManager.Cached(tile)
		if !ok {
			continue
		}
		finalX := screenCenter.X + int(math.Round(float64(tile.X*tiles.TileSize)-centerWorldPx))
		finalY := screenCenter.Y + int(math.Round(float64(tile.Y*tiles.TileSize)-centerWorldPy))

		transform := op.Offset(image.Point{X: finalX, Y: finalY}).Push(gtx.Ops)
		imageOp := mv.ops.Op(tiles.GetTileKey(tile), img)
		imageOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		transform.Pop()
	}
}
