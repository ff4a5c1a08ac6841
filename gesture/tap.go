package gesture

import (
	"time"

	"gioui.org/f32"
	"gioui.org/io/pointer"
)

// DoubleTap recognizes two single-pointer taps landing within Interval and
// Slop of each other. Only the primary mouse button counts as a tap.
type DoubleTap struct {
	Interval time.Duration
	Slop     float32

	active   int
	multi    bool
	downID   pointer.ID
	downPos  f32.Point
	moved    bool
	tracking bool

	haveTap bool
	tapAt   time.Duration
	tapPos  f32.Point
}

func (d *DoubleTap) Update(ev pointer.Event) (Event, bool) {
	switch ev.Kind {
	case pointer.Press:
		d.active++
		if d.active > 1 {
			d.multi = true
			d.tracking = false
			d.haveTap = false
			return Event{}, false
		}
		d.multi = false
		if ev.Source == pointer.Mouse && !ev.Buttons.Contain(pointer.ButtonPrimary) {
			return Event{}, false
		}
		d.tracking = true
		d.downID = ev.PointerID
		d.downPos = ev.Position
		d.moved = false
	case pointer.Drag:
		if d.tracking && ev.PointerID == d.downID && distance(ev.Position, d.downPos) > d.Slop {
			d.moved = true
		}
	case pointer.Release:
		if d.active > 0 {
			d.active--
		}
		if !d.tracking || ev.PointerID != d.downID {
			return Event{}, false
		}
		d.tracking = false
		if d.moved || d.multi {
			d.haveTap = false
			return Event{}, false
		}
		if d.haveTap && ev.Time-d.tapAt <= d.Interval && distance(ev.Position, d.tapPos) <= 2*d.Slop {
			d.haveTap = false
			return Event{Kind: KindDoubleTap, Phase: Ended}, true
		}
		d.haveTap = true
		d.tapAt = ev.Time
		d.tapPos = ev.Position
	case pointer.Cancel:
		*d = DoubleTap{Interval: d.Interval, Slop: d.Slop}
	}
	return Event{}, false
}

// TwoFingerTap recognizes exactly two touch pointers going down and lifting
// within Window without either moving more than Slop. A secondary mouse
// button click stands in for it on desktop.
type TwoFingerTap struct {
	Window time.Duration
	Slop   float32

	start   map[pointer.ID]f32.Point
	firstAt time.Duration
	peak    int
	failed  bool

	secondary    bool
	secondaryPos f32.Point
}

func (t *TwoFingerTap) Update(ev pointer.Event) (Event, bool) {
	if ev.Source == pointer.Mouse {
		return t.mouse(ev)
	}
	if t.start == nil {
		t.start = make(map[pointer.ID]f32.Point)
	}
	switch ev.Kind {
	case pointer.Press:
		if len(t.start) == 0 {
			t.firstAt = ev.Time
			t.peak = 0
			t.failed = false
		}
		t.start[ev.PointerID] = ev.Position
		t.peak = max(t.peak, len(t.start))
		if t.peak > 2 {
			t.failed = true
		}
	case pointer.Drag:
		if p, ok := t.start[ev.PointerID]; ok && distance(ev.Position, p) > t.Slop {
			t.failed = true
		}
	case pointer.Release:
		if _, ok := t.start[ev.PointerID]; !ok {
			return Event{}, false
		}
		delete(t.start, ev.PointerID)
		if len(t.start) > 0 {
			return Event{}, false
		}
		if t.peak == 2 && !t.failed && ev.Time-t.firstAt <= t.Window {
			return Event{Kind: KindTwoFingerTap, Phase: Ended}, true
		}
	case pointer.Cancel:
		clear(t.start)
		t.failed = true
	}
	return Event{}, false
}

func (t *TwoFingerTap) mouse(ev pointer.Event) (Event, bool) {
	switch ev.Kind {
	case pointer.Press:
		t.secondary = ev.Buttons.Contain(pointer.ButtonSecondary)
		t.secondaryPos = ev.Position
	case pointer.Drag:
		if t.secondary && distance(ev.Position, t.secondaryPos) > t.Slop {
			t.secondary = false
		}
	case pointer.Release:
		if t.secondary {
			t.secondary = false
			return Event{Kind: KindTwoFingerTap, Phase: Ended}, true
		}
	case pointer.Cancel:
		t.secondary = false
	}
	return Event{}, false
}
