package viewport

import (
	"math"
	"testing"

	"github.com/olablt/gio-pulsemap/gesture"
)

// fakeSurface records commits. It never notifies on its own; tests call
// notify to stand in for the display reporting a finished region change.
type fakeSurface struct {
	region   Region
	listener RegionListener
	commits  []commit
}

type commit struct {
	region   Region
	animated bool
}

func (s *fakeSurface) Region() Region { return s.region }

func (s *fakeSurface) SetRegion(r Region, animated bool) {
	s.region = r
	s.commits = append(s.commits, commit{r, animated})
}

func (s *fakeSurface) SetRegionListener(l RegionListener) { s.listener = l }

// notify delivers a region change the way the display would, i.e. only to
// a registered listener. It reports whether anyone was listening.
func (s *fakeSurface) notify() bool {
	if s.listener == nil {
		return false
	}
	s.listener.RegionChanged(true)
	return true
}

var cupertino = Coordinate{Lat: 37.364612, Lng: -122.034747}

func newTestController(span float64, opts ...Option) (*Controller, *fakeSurface) {
	s := &fakeSurface{region: Region{Center: cupertino, Span: Span{span, span}}}
	return NewController(s, opts...), s
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBoundsClamp(t *testing.T) {
	spans := []float64{1e-9, 0.001, 0.01, 0.5, 3, 10, 11, 1e9}
	scales := []float64{1e-6, 0.01, 0.5, 1, 2, 7.3, 1e6}
	for _, s := range spans {
		for _, k := range scales {
			got := Span{s, s}.Scale(k).Clamp(DefaultBounds)
			if got.LatitudeDelta < MinDelta || got.LatitudeDelta > MaxDelta ||
				got.LongitudeDelta < MinDelta || got.LongitudeDelta > MaxDelta {
				t.Errorf("clamp(%v/%v) = %+v out of bounds", s, k, got)
			}
		}
	}
	if v := DefaultBounds.Clamp(math.NaN()); v != MinDelta {
		t.Errorf("NaN clamps to %v", v)
	}
	if got := (Span{1, 1}).Scale(0).Clamp(DefaultBounds); got.LatitudeDelta != MaxDelta {
		t.Errorf("zero scale clamps to %v, want %v", got.LatitudeDelta, MaxDelta)
	}
}

func TestStart(t *testing.T) {
	c, s := newTestController(1)
	c.Start(cupertino, 5000)
	if len(s.commits) != 1 || !s.commits[0].animated {
		t.Fatalf("expected one animated commit, got %+v", s.commits)
	}
	r := s.region
	if r.Center != cupertino {
		t.Errorf("center = %+v", r.Center)
	}
	if !approx(r.Span.LatitudeDelta, 5000/MetersPerDegree) {
		t.Errorf("lat delta = %v", r.Span.LatitudeDelta)
	}
	if r.Span.LongitudeDelta <= r.Span.LatitudeDelta {
		t.Errorf("lng delta %v should exceed lat delta away from the equator", r.Span.LongitudeDelta)
	}
	if s.listener != c {
		t.Error("controller not registered as listener")
	}
}

func TestPinchBeganIsNoop(t *testing.T) {
	for _, scale := range []float64{0.3, 1, 1.7} {
		c, s := newTestController(0.2)
		c.HandlePinch(scale, gesture.Began)
		if s.region.Span != (Span{0.2, 0.2}) {
			t.Errorf("began(%v) changed span to %+v", scale, s.region.Span)
		}
		if len(s.commits) != 1 || s.commits[0].animated {
			t.Errorf("began(%v) should commit once without animation: %+v", scale, s.commits)
		}
	}
}

// Scenario D.
func TestPinchChanged(t *testing.T) {
	c, s := newTestController(0.3)
	c.HandlePinch(1.0, gesture.Began)
	c.HandlePinch(1.5, gesture.Changed)
	if !approx(s.region.Span.LatitudeDelta, 0.2) || !approx(s.region.Span.LongitudeDelta, 0.2) {
		t.Errorf("span = %+v, want 0.2", s.region.Span)
	}
	if c.lastScale != 1.5 {
		t.Errorf("lastScale = %v", c.lastScale)
	}
	c.HandlePinch(1.5, gesture.Changed)
	if !approx(s.region.Span.LatitudeDelta, 0.2) {
		t.Errorf("unchanged scale moved span to %+v", s.region.Span)
	}
	n := len(s.commits)
	c.HandlePinch(3, gesture.Ended)
	c.HandlePinch(3, gesture.Cancelled)
	c.HandlePinch(3, gesture.Other)
	if len(s.commits) != n {
		t.Error("ended/cancelled/other phases committed a region")
	}
	for _, cm := range s.commits {
		if cm.animated {
			t.Error("pinch commit was animated")
		}
	}
}

// A pinch that shrinks by more than one scale unit in a single event gives a
// non-positive newScale; the divided span still goes through the clamp.
func TestPinchCollapse(t *testing.T) {
	tests := []struct {
		name   string
		scale  float64
		expect float64
	}{
		{"negative factor", 1, MinDelta}, // newScale = 1 - (3 - 1) = -1
		{"zero factor", 2, MaxDelta},     // newScale = 1 - (3 - 2) = 0
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := newTestController(1)
			c.HandlePinch(3, gesture.Began)
			c.HandlePinch(tt.scale, gesture.Changed)
			if s.region.Span != (Span{tt.expect, tt.expect}) {
				t.Errorf("span = %+v, want %v", s.region.Span, tt.expect)
			}
			if c.lastScale != tt.scale {
				t.Errorf("lastScale = %v, want %v", c.lastScale, tt.scale)
			}
		})
	}
}

// Scenario A.
func TestDoubleTapZoomIn(t *testing.T) {
	c, s := newTestController(0.05)
	c.DoubleTapZoomIn()
	if !approx(s.region.Span.LatitudeDelta, 0.025) || !approx(s.region.Span.LongitudeDelta, 0.025) {
		t.Errorf("span = %+v", s.region.Span)
	}
	if !s.commits[0].animated {
		t.Error("tap zoom not animated")
	}
	if !c.TapOneActivated() {
		t.Fatal("tapOneActivated not set")
	}
	if !s.notify() {
		t.Fatal("tap handler did not register the listener")
	}
	if c.TapOneActivated() {
		t.Error("tapOneActivated not cleared by region change")
	}
}

// Scenarios B and C.
func TestTwoFingerTapZoomOut(t *testing.T) {
	c, s := newTestController(6)
	c.TwoFingerTapZoomOut()
	if s.region.Span != (Span{10, 10}) {
		t.Errorf("span = %+v, want clamp to 10", s.region.Span)
	}
	if !c.TapTwoActivated() {
		t.Error("tapTwoActivated not set")
	}

	c, s = newTestController(0.015)
	c.TwoFingerTapZoomOut()
	if !approx(s.region.Span.LatitudeDelta, 0.03) {
		t.Errorf("first tap: %+v", s.region.Span)
	}
	c.TwoFingerTapZoomOut()
	if !approx(s.region.Span.LatitudeDelta, 0.06) || !approx(s.region.Span.LongitudeDelta, 0.06) {
		t.Errorf("second tap: %+v", s.region.Span)
	}
}

func TestTapRoundTrip(t *testing.T) {
	for _, v := range []float64{0.02, 0.05, 0.37, 4.9} {
		c, s := newTestController(v)
		c.DoubleTapZoomIn()
		c.TwoFingerTapZoomOut()
		if s.region.Span != (Span{v, v}) {
			t.Errorf("round trip of %v gave %+v", v, s.region.Span)
		}
	}
}

func TestCenterInvariant(t *testing.T) {
	c, s := newTestController(0.5)
	c.HandlePinch(1, gesture.Began)
	c.HandlePinch(1.8, gesture.Changed)
	c.HandlePinch(0.6, gesture.Changed)
	c.DoubleTapZoomIn()
	c.TwoFingerTapZoomOut()
	for i, cm := range s.commits {
		if cm.region.Center != cupertino {
			t.Errorf("commit %d moved center to %+v", i, cm.region.Center)
		}
	}
}

func TestRegionChangedClearsOneFlagAtATime(t *testing.T) {
	c, s := newTestController(1)
	c.DoubleTapZoomIn()
	c.TwoFingerTapZoomOut()
	s.notify()
	if c.TapOneActivated() || !c.TapTwoActivated() {
		t.Errorf("after first change: one=%v two=%v", c.TapOneActivated(), c.TapTwoActivated())
	}
}

// Scenario E: the controller detaches itself after the first change that
// follows a tap, so later changes reach nobody.
func TestRegionChangedDetaches(t *testing.T) {
	c, s := newTestController(1)
	c.TwoFingerTapZoomOut()
	if !s.notify() {
		t.Fatal("no listener after tap")
	}
	if s.listener != nil {
		t.Fatal("listener still attached after region change")
	}
	c.tapTwoActivated = true
	if s.notify() {
		t.Fatal("pan reached a detached controller")
	}
	if !c.TapTwoActivated() {
		t.Error("detached controller still cleared a flag")
	}

	// Pinching does not re-attach.
	c.HandlePinch(1, gesture.Began)
	c.HandlePinch(2, gesture.Changed)
	if s.listener != nil {
		t.Error("pinch re-attached the listener")
	}
}

func TestRearmListener(t *testing.T) {
	c, s := newTestController(1, WithRearmListener(true))
	c.DoubleTapZoomIn()
	s.notify()
	if s.listener != c {
		t.Fatal("rearmed controller detached")
	}
	if !s.notify() {
		t.Error("second change not delivered")
	}
}

func TestHandleGesture(t *testing.T) {
	c, s := newTestController(1, WithBounds(Bounds{Min: 0.5, Max: 2}))
	c.HandleGesture(gesture.Event{Kind: gesture.KindDoubleTap, Phase: gesture.Ended})
	c.HandleGesture(gesture.Event{Kind: gesture.KindDoubleTap, Phase: gesture.Ended})
	if s.region.Span != (Span{0.5, 0.5}) {
		t.Errorf("custom min not applied: %+v", s.region.Span)
	}
	c.HandleGesture(gesture.Event{Kind: gesture.KindTwoFingerTap, Phase: gesture.Ended})
	c.HandleGesture(gesture.Event{Kind: gesture.KindPinch, Phase: gesture.Began, Scale: 1})
	c.HandleGesture(gesture.Event{Kind: gesture.KindPinch, Phase: gesture.Changed, Scale: 0.5})
	if s.region.Span != (Span{2, 2}) {
		t.Errorf("span = %+v", s.region.Span)
	}
}

func TestSpanWithDistance(t *testing.T) {
	s := SpanWithDistance(Coordinate{}, MetersPerDegree, MetersPerDegree)
	if !approx(s.LatitudeDelta, 1) || !approx(s.LongitudeDelta, 1) {
		t.Errorf("equator span = %+v", s)
	}
	s = SpanWithDistance(Coordinate{Lat: 60}, MetersPerDegree, MetersPerDegree)
	if !approx(s.LongitudeDelta, 2) {
		t.Errorf("60N lng delta = %v, want 2", s.LongitudeDelta)
	}
}
