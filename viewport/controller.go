package viewport

import (
	"log/slog"

	"github.com/olablt/gio-pulsemap/gesture"
)

// RegionListener receives region-changed notifications from a Surface.
type RegionListener interface {
	RegionChanged(animated bool)
}

// Surface is the map display the controller drives.
type Surface interface {
	Region() Region
	SetRegion(r Region, animated bool)
	// SetRegionListener replaces the listener. nil deregisters.
	SetRegionListener(l RegionListener)
}

// Controller translates gestures into span changes on a Surface. The center
// is never touched by a gesture; only the span is recomputed and clamped.
//
// All methods must be called from the goroutine delivering UI events.
type Controller struct {
	surface Surface
	bounds  Bounds
	rearm   bool
	log     *slog.Logger

	lastScale float64

	tapOneActivated bool
	tapTwoActivated bool
}

type Option func(*Controller)

func WithBounds(b Bounds) Option {
	return func(c *Controller) { c.bounds = b }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithRearmListener keeps the controller registered after a region change
// instead of detaching itself.
func WithRearmListener(rearm bool) Option {
	return func(c *Controller) { c.rearm = rearm }
}

func NewController(surface Surface, opts ...Option) *Controller {
	c := &Controller{
		surface: surface,
		bounds:  DefaultBounds,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start centers the surface on center with a span covering meters in both
// directions and registers the controller as the region listener.
func (c *Controller) Start(center Coordinate, meters float64) {
	span := SpanWithDistance(center, meters, meters)
	c.log.Debug("viewport start", "lat", center.Lat, "lng", center.Lng, "meters", meters)
	c.surface.SetRegion(Region{Center: center, Span: span}, true)
	c.surface.SetRegionListener(c)
}

// HandleGesture dispatches a recognized gesture.
func (c *Controller) HandleGesture(ev gesture.Event) {
	switch ev.Kind {
	case gesture.KindPinch:
		c.HandlePinch(ev.Scale, ev.Phase)
	case gesture.KindDoubleTap:
		c.DoubleTapZoomIn()
	case gesture.KindTwoFingerTap:
		c.TwoFingerTapZoomOut()
	}
}

// HandlePinch applies a pinch gesture. scale is cumulative since the gesture
// began.
func (c *Controller) HandlePinch(scale float64, phase gesture.Phase) {
	if phase == gesture.Began {
		c.lastScale = scale
	}
	if phase != gesture.Began && phase != gesture.Changed {
		return
	}
	newScale := 1 - (c.lastScale - scale)
	c.commit(c.surface.Region().Span.Scale(newScale), false)
	c.lastScale = scale
}

// DoubleTapZoomIn halves the span.
func (c *Controller) DoubleTapZoomIn() {
	c.tapOneActivated = true
	c.surface.SetRegionListener(c)
	c.commit(c.surface.Region().Span.Scale(2), true)
}

// TwoFingerTapZoomOut doubles the span.
func (c *Controller) TwoFingerTapZoomOut() {
	c.tapTwoActivated = true
	c.surface.SetRegionListener(c)
	c.commit(c.surface.Region().Span.Scale(0.5), true)
}

// RegionChanged clears the pending tap flag and detaches the controller from
// the surface, unless it was built WithRearmListener. Only the tap handlers
// attach it again.
func (c *Controller) RegionChanged(animated bool) {
	if c.tapOneActivated {
		c.tapOneActivated = false
	} else if c.tapTwoActivated {
		c.tapTwoActivated = false
	}
	if c.rearm {
		return
	}
	c.surface.SetRegionListener(nil)
}

func (c *Controller) TapOneActivated() bool { return c.tapOneActivated }
func (c *Controller) TapTwoActivated() bool { return c.tapTwoActivated }

func (c *Controller) commit(span Span, animated bool) {
	r := c.surface.Region()
	r.Span = span.Clamp(c.bounds)
	c.log.Debug("viewport commit",
		"lat_delta", r.Span.LatitudeDelta,
		"lng_delta", r.Span.LongitudeDelta,
		"animated", animated)
	c.surface.SetRegion(r, animated)
}
