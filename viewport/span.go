package viewport

import "math"

// MetersPerDegree is the length of one degree of latitude, and of one degree
// of longitude at the equator.
const MetersPerDegree = 111319.9

// Default clamp bounds for a span delta, in degrees.
const (
	MinDelta = 0.01
	MaxDelta = 10.0
)

// Coordinate is a geographical point in degrees.
type Coordinate struct {
	Lat, Lng float64
}

// Span is the angular width of the visible map region.
type Span struct {
	LatitudeDelta  float64
	LongitudeDelta float64
}

// Region is the visible map viewport.
type Region struct {
	Center Coordinate
	Span   Span
}

// Bounds limits a span delta to [Min, Max].
type Bounds struct {
	Min, Max float64
}

var DefaultBounds = Bounds{Min: MinDelta, Max: MaxDelta}

// Clamp returns v limited to the bounds. NaN and negative values land on Min,
// +Inf on Max.
func (b Bounds) Clamp(v float64) float64 {
	if math.IsNaN(v) || v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Clamp limits both deltas to b.
func (s Span) Clamp(b Bounds) Span {
	return Span{
		LatitudeDelta:  b.Clamp(s.LatitudeDelta),
		LongitudeDelta: b.Clamp(s.LongitudeDelta),
	}
}

// Scale divides both deltas by factor. A factor above 1 zooms in. The result
// is unclamped: a negative factor gives negative deltas and zero gives +Inf,
// which Clamp sends to Min and Max respectively.
func (s Span) Scale(factor float64) Span {
	return Span{
		LatitudeDelta:  s.LatitudeDelta / factor,
		LongitudeDelta: s.LongitudeDelta / factor,
	}
}

// SpanWithDistance returns the span covering latMeters north-south and
// lngMeters east-west around center.
func SpanWithDistance(center Coordinate, latMeters, lngMeters float64) Span {
	cos := math.Cos(center.Lat * math.Pi / 180)
	if cos < 1e-6 {
		cos = 1e-6
	}
	return Span{
		LatitudeDelta:  latMeters / MetersPerDegree,
		LongitudeDelta: lngMeters / (MetersPerDegree * cos),
	}
}
