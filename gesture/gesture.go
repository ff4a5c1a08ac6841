// Package gesture recognizes the map's zoom gestures from Gio pointer events:
// a two-finger pinch, a one-finger double tap and a two-finger single tap.
package gesture

import (
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/io/pointer"
)

// Phase is the stage of a continuous gesture. Discrete gestures report Ended.
type Phase uint8

const (
	Other Phase = iota
	Began
	Changed
	Ended
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Began:
		return "began"
	case Changed:
		return "changed"
	case Ended:
		return "ended"
	case Cancelled:
		return "cancelled"
	default:
		return "other"
	}
}

type Kind uint8

const (
	KindPinch Kind = iota
	KindDoubleTap
	KindTwoFingerTap
)

func (k Kind) String() string {
	switch k {
	case KindPinch:
		return "pinch"
	case KindDoubleTap:
		return "double-tap"
	case KindTwoFingerTap:
		return "two-finger-tap"
	}
	return "unknown"
}

// Event is a recognized gesture. Scale is only meaningful for KindPinch and
// is cumulative since the pinch began.
type Event struct {
	Kind  Kind
	Phase Phase
	Scale float64
}

// Admission decides whether recognizers may fire together. With
// Simultaneous unset, a pinch that has begun suppresses the tap recognizers
// until every pointer is lifted.
type Admission struct {
	Simultaneous bool
}

var DefaultAdmission = Admission{Simultaneous: true}

const (
	DefaultHysteresis         float32 = 8
	DefaultTapSlop            float32 = 10
	DefaultDoubleTapInterval          = 300 * time.Millisecond
	DefaultTwoFingerTapWindow         = 250 * time.Millisecond
	DefaultScrollStep                 = 0.25
)

// Recognizer feeds one pointer event stream to all three recognizers.
type Recognizer struct {
	Admission Admission
	// ScrollStep is the pinch scale added by one mouse wheel notch.
	ScrollStep float64

	Pinch        Pinch
	DoubleTap    DoubleTap
	TwoFingerTap TwoFingerTap

	down    map[pointer.ID]bool
	claimed bool
}

func NewRecognizer(adm Admission) *Recognizer {
	return &Recognizer{
		Admission:  adm,
		ScrollStep: DefaultScrollStep,
		Pinch:      Pinch{Hysteresis: DefaultHysteresis},
		DoubleTap: DoubleTap{
			Interval: DefaultDoubleTapInterval,
			Slop:     DefaultTapSlop,
		},
		TwoFingerTap: TwoFingerTap{
			Window: DefaultTwoFingerTapWindow,
			Slop:   DefaultTapSlop,
		},
	}
}

// Update consumes one pointer event and returns the gestures it completes.
func (r *Recognizer) Update(ev pointer.Event) []Event {
	if r.down == nil {
		r.down = make(map[pointer.ID]bool)
	}
	if ev.Kind == pointer.Scroll {
		return r.scroll(ev)
	}

	var out []Event
	if pe, ok := r.Pinch.Update(ev); ok {
		if pe.Phase == Began {
			r.claimed = true
		}
		out = append(out, pe)
	}
	exclusive := !r.Admission.Simultaneous && r.claimed
	if te, ok := r.DoubleTap.Update(ev); ok && !exclusive {
		out = append(out, te)
	}
	if te, ok := r.TwoFingerTap.Update(ev); ok && !exclusive {
		out = append(out, te)
	}

	switch ev.Kind {
	case pointer.Press:
		r.down[ev.PointerID] = true
	case pointer.Release:
		delete(r.down, ev.PointerID)
	case pointer.Cancel:
		clear(r.down)
	}
	if len(r.down) == 0 {
		r.claimed = false
	}
	return out
}

// scroll turns a wheel notch into a complete pinch.
func (r *Recognizer) scroll(ev pointer.Event) []Event {
	if r.Pinch.Active() || ev.Scroll.Y == 0 {
		return nil
	}
	scale := 1 + r.ScrollStep
	if ev.Scroll.Y > 0 {
		scale = 1 / scale
	}
	return []Event{
		{Kind: KindPinch, Phase: Began, Scale: 1},
		{Kind: KindPinch, Phase: Changed, Scale: scale},
		{Kind: KindPinch, Phase: Ended, Scale: scale},
	}
}

func distance(a, b f32.Point) float32 {
	d := a.Sub(b)
	return float32(math.Hypot(float64(d.X), float64(d.Y)))
}
