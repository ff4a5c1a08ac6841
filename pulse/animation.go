// Package pulse draws the "current location" indicator: a static ring with a
// dot that repeatedly grows and fades.
package pulse

import "time"

// Animation is a repeating linear change of one property, handed to the
// view layer as a plain value.
type Animation struct {
	Key         string
	From, To    float64
	Duration    time.Duration
	RepeatCount int
}

var (
	Scale = Animation{
		Key:         "transform.scale",
		From:        1.0,
		To:          3.0,
		Duration:    1350 * time.Millisecond,
		RepeatCount: 100000,
	}
	Opacity = Animation{
		Key:         "opacity",
		From:        0.2,
		To:          0.0,
		Duration:    1350 * time.Millisecond,
		RepeatCount: 100000,
	}
)

// Value returns the property value elapsed after the animation started.
// Once every repetition has played the value holds at To.
func (a Animation) Value(elapsed time.Duration) float64 {
	if a.Duration <= 0 || a.Done(elapsed) {
		return a.To
	}
	if elapsed < 0 {
		return a.From
	}
	t := float64(elapsed%a.Duration) / float64(a.Duration)
	return a.From + (a.To-a.From)*t
}

// Done reports whether all repetitions have played.
func (a Animation) Done(elapsed time.Duration) bool {
	if a.Duration <= 0 {
		return true
	}
	return elapsed >= a.Duration*time.Duration(max(a.RepeatCount, 1))
}
