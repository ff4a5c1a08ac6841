package gesture

import (
	"gioui.org/f32"
	"gioui.org/io/pointer"
)

// Pinch tracks the first two touch pointers. It begins once their distance
// moves more than Hysteresis pixels away from the distance at touch down.
type Pinch struct {
	Hysteresis float32

	ids     []pointer.ID
	pos     map[pointer.ID]f32.Point
	initial float32
	active  bool
}

func (p *Pinch) Active() bool { return p.active }

func (p *Pinch) Update(ev pointer.Event) (Event, bool) {
	if p.pos == nil {
		p.pos = make(map[pointer.ID]f32.Point)
	}
	switch ev.Kind {
	case pointer.Press:
		if ev.Source != pointer.Touch || len(p.ids) >= 2 {
			return Event{}, false
		}
		p.ids = append(p.ids, ev.PointerID)
		p.pos[ev.PointerID] = ev.Position
		if len(p.ids) == 2 {
			p.initial = p.span()
		}
	case pointer.Drag:
		if _, ok := p.pos[ev.PointerID]; !ok {
			return Event{}, false
		}
		p.pos[ev.PointerID] = ev.Position
		if len(p.ids) < 2 || p.initial == 0 {
			return Event{}, false
		}
		d := p.span()
		scale := float64(d / p.initial)
		if p.active {
			return Event{Kind: KindPinch, Phase: Changed, Scale: scale}, true
		}
		if abs(d-p.initial) > p.Hysteresis {
			p.active = true
			return Event{Kind: KindPinch, Phase: Began, Scale: scale}, true
		}
	case pointer.Release:
		if _, ok := p.pos[ev.PointerID]; !ok {
			return Event{}, false
		}
		scale := 1.0
		if len(p.ids) == 2 && p.initial != 0 {
			scale = float64(p.span() / p.initial)
		}
		p.remove(ev.PointerID)
		if p.active {
			p.active = false
			return Event{Kind: KindPinch, Phase: Ended, Scale: scale}, true
		}
	case pointer.Cancel:
		wasActive := p.active
		p.reset()
		if wasActive {
			return Event{Kind: KindPinch, Phase: Cancelled, Scale: 1}, true
		}
	}
	return Event{}, false
}

func (p *Pinch) span() float32 {
	return distance(p.pos[p.ids[0]], p.pos[p.ids[1]])
}

func (p *Pinch) remove(id pointer.ID) {
	delete(p.pos, id)
	for i, v := range p.ids {
		if v == id {
			p.ids = append(p.ids[:i], p.ids[i+1:]...)
			break
		}
	}
	p.initial = 0
}

func (p *Pinch) reset() {
	p.ids = p.ids[:0]
	clear(p.pos)
	p.initial = 0
	p.active = false
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
