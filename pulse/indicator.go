package pulse

import (
	"image"
	"image/color"
	"time"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
)

// Indicator is the pulsing location marker. The animations start the first
// time it is laid out.
type Indicator struct {
	Size        unit.Dp
	DotSize     unit.Dp
	Fill        color.NRGBA
	Border      color.NRGBA
	BorderWidth unit.Dp
	Animations  []Animation

	started time.Time
}

func NewIndicator() *Indicator {
	return &Indicator{
		Size:        24,
		DotSize:     14,
		Fill:        color.NRGBA{R: 0x00, G: 0x7a, B: 0xff, A: 0xff},
		Border:      color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x99}, // 60% white
		BorderWidth: 3,
		Animations:  []Animation{Scale, Opacity},
	}
}

// Started reports whether the indicator has appeared on screen.
func (ind *Indicator) Started() bool { return !ind.started.IsZero() }

// Values returns the scale and opacity of the inner dot at now.
func (ind *Indicator) Values(now time.Time) (scale, opacity float64) {
	scale, opacity = 1, 1
	elapsed := now.Sub(ind.started)
	for _, a := range ind.Animations {
		switch a.Key {
		case Scale.Key:
			scale = a.Value(elapsed)
		case Opacity.Key:
			opacity = a.Value(elapsed)
		}
	}
	return scale, opacity
}

func (ind *Indicator) running(now time.Time) bool {
	elapsed := now.Sub(ind.started)
	for _, a := range ind.Animations {
		if !a.Done(elapsed) {
			return true
		}
	}
	return false
}

func (ind *Indicator) Layout(gtx layout.Context) layout.Dimensions {
	if ind.started.IsZero() {
		ind.started = gtx.Now
	}
	size := gtx.Dp(ind.Size)
	dot := gtx.Dp(ind.DotSize)
	center := image.Pt(size/2, size/2)

	// Pulse, drawn under the ring so it spreads out from behind it.
	scale, opacity := ind.Values(gtx.Now)
	dotRect := image.Rectangle{
		Min: center.Sub(image.Pt(dot/2, dot/2)),
		Max: center.Add(image.Pt(dot/2, dot/2)),
	}
	tr := op.Affine(f32.Affine2D{}.Scale(layout.FPt(center), f32.Pt(float32(scale), float32(scale)))).Push(gtx.Ops)
	fade := paint.PushOpacity(gtx.Ops, float32(opacity))
	paint.FillShape(gtx.Ops, ind.Fill, clip.Ellipse(dotRect).Op(gtx.Ops))
	fade.Pop()
	tr.Pop()

	// The ring: corner radius is half the height, so the rrect is a circle.
	bw := gtx.Dp(ind.BorderWidth)
	outer := image.Rect(0, 0, size, size)
	rr := size / 2
	paint.FillShape(gtx.Ops, ind.Border, clip.UniformRRect(outer, rr).Op(gtx.Ops))
	inner := image.Rect(bw, bw, size-bw, size-bw)
	paint.FillShape(gtx.Ops, ind.Fill, clip.UniformRRect(inner, inner.Dy()/2).Op(gtx.Ops))

	if ind.running(gtx.Now) {
		gtx.Execute(op.InvalidateCmd{})
	}
	return layout.Dimensions{Size: outer.Max}
}
