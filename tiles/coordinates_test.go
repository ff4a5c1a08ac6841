package tiles

import (
	"image"
	"math"
	"testing"
)

func TestWorldRoundTrip(t *testing.T) {
	points := []LatLng{
		{Lat: 37.364612, Lng: -122.034747},
		{Lat: 51.507222, Lng: -0.1275},
		{Lat: -33.8688, Lng: 151.2093},
		{},
	}
	for _, ll := range points {
		for _, z := range []float64{0, 3.5, 12, 18} {
			x, y := CalculateWorldCoordinates(ll, z)
			got := WorldToLatLng(x, y, z)
			if math.Abs(got.Lat-ll.Lat) > 1e-9 || math.Abs(got.Lng-ll.Lng) > 1e-9 {
				t.Errorf("round trip %+v at %v gave %+v", ll, z, got)
			}
		}
	}
}

func TestLatLngToTile(t *testing.T) {
	// Greenwich at zoom 1 sits on the left edge of the eastern tiles.
	got := LatLngToTile(LatLng{Lat: 51.48, Lng: 0.001}, 1)
	if got != (Tile{X: 1, Y: 0, Zoom: 1}) {
		t.Errorf("got %+v", got)
	}
	nw := TileToLatLng(Tile{X: 0, Y: 0, Zoom: 3})
	if math.Abs(nw.Lng+180) > 1e-9 || math.Abs(nw.Lat-MaxLatitude) > 1e-6 {
		t.Errorf("north-west corner = %+v", nw)
	}
}

func TestZoomForSpan(t *testing.T) {
	size := image.Pt(TileSize, TileSize)
	// The whole world in one tile is zoom 0.
	if z := ZoomForSpan(LatLng{}, 170, 360, size); z != 0 {
		t.Errorf("world zoom = %v", z)
	}
	// Halving the span adds one zoom level.
	center := LatLng{Lat: 37.36, Lng: -122.03}
	a := ZoomForSpan(center, 0.1, 0.1, image.Pt(800, 600))
	b := ZoomForSpan(center, 0.05, 0.05, image.Pt(800, 600))
	if math.Abs(b-a-1) > 1e-3 {
		t.Errorf("zoom %v -> %v, want +1", a, b)
	}
	if z := ZoomForSpan(center, 1e-9, 1e-9, size); z != MaxZoom {
		t.Errorf("tiny span zoom = %v, want %v", z, MaxZoom)
	}
	if z := ZoomForSpan(center, 0.1, 0.1, image.Point{}); z != 0 {
		t.Errorf("empty size zoom = %v", z)
	}
}

func TestCalculateVisibleTiles(t *testing.T) {
	got := CalculateVisibleTiles(LatLng{Lat: 37.36, Lng: -122.03}, 12, image.Pt(512, 512))
	if len(got) != 16 {
		t.Errorf("got %d tiles, want 16", len(got))
	}
	// At zoom 0 every candidate collapses onto the single tile.
	got = CalculateVisibleTiles(LatLng{}, 0, image.Pt(1024, 1024))
	if len(got) != 1 || got[0] != (Tile{}) {
		t.Errorf("zoom 0 tiles = %+v", got)
	}
}

func TestCalculateMetersPerPixel(t *testing.T) {
	if m := CalculateMetersPerPixel(0, 0); math.Abs(m-earthCircumference/TileSize) > 1e-6 {
		t.Errorf("equator zoom 0 = %v", m)
	}
	if m := CalculateMetersPerPixel(60, 1); math.Abs(m-earthCircumference/TileSize/4) > 1e-3 {
		t.Errorf("60N zoom 1 = %v", m)
	}
}
