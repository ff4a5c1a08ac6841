package tiles

import (
	"image"
	"math"
)

const (
	TileSize           = 256
	MaxZoom            = 19
	MaxLatitude        = 85.05112878
	earthCircumference = 40075016.686 // meters at equator
)

// Tile represents a map tile coordinates
type Tile struct {
	X, Y, Zoom int
}

// LatLng represents a geographical point
type LatLng struct {
	Lat, Lng float64
}

// LatLngToTile converts geographical coordinates to tile coordinates
func LatLngToTile(ll LatLng, zoom int) Tile {
	x, y := CalculateWorldCoordinates(ll, float64(zoom))
	return Tile{X: int(x / TileSize), Y: int(y / TileSize), Zoom: zoom}
}

// TileToLatLng converts tile coordinates to geographical coordinates (returns top left of tile)
func TileToLatLng(tile Tile) LatLng {
	return WorldToLatLng(float64(tile.X*TileSize), float64(tile.Y*TileSize), float64(tile.Zoom))
}

// CalculateWorldCoordinates converts geographical coordinates to world pixel coordinates at given zoom level
func CalculateWorldCoordinates(ll LatLng, zoom float64) (float64, float64) {
	n := math.Pow(2, zoom)
	latRad := clampLat(ll.Lat) * math.Pi / 180.0
	worldX := float64(TileSize) * n * (ll.Lng + 180) / 360
	worldY := float64(TileSize) * n * (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return worldX, worldY
}

// WorldToLatLng converts world pixel coordinates back to geographical coordinates
func WorldToLatLng(worldX, worldY float64, zoom float64) LatLng {
	n := math.Pow(2, zoom)
	lng := (worldX/(float64(TileSize)*n))*360 - 180
	latRad := math.Pi * (1 - 2*worldY/(float64(TileSize)*n))
	lat := 180 / math.Pi * math.Atan(math.Sinh(latRad))
	return LatLng{Lat: lat, Lng: lng}
}

// CalculateMetersPerPixel calculates the meters per pixel at a given latitude and zoom level
func CalculateMetersPerPixel(latitude float64, zoom float64) float64 {
	return earthCircumference * math.Cos(latitude*math.Pi/180) / (math.Pow(2, zoom) * TileSize)
}

// ZoomForSpan returns the fractional zoom at which a latDelta by lngDelta
// region around center fits in size pixels.
func ZoomForSpan(center LatLng, latDelta, lngDelta float64, size image.Point) float64 {
	if size.X <= 0 || size.Y <= 0 || latDelta <= 0 || lngDelta <= 0 {
		return 0
	}
	zLng := math.Log2(360 * float64(size.X) / (TileSize * lngDelta))

	_, top := CalculateWorldCoordinates(LatLng{Lat: center.Lat + latDelta/2}, 0)
	_, bottom := CalculateWorldCoordinates(LatLng{Lat: center.Lat - latDelta/2}, 0)
	zLat := zLng
	if h := bottom - top; h > 0 {
		zLat = math.Log2(float64(size.Y) / h)
	}
	return max(0, min(zLng, zLat, MaxZoom))
}

// ConstrainTile ensures tile coordinates are within valid bounds for the zoom level
func ConstrainTile(tile Tile) Tile {
	maxTile := (1 << tile.Zoom) - 1
	tile.X = max(0, min(tile.X, maxTile))
	tile.Y = max(0, min(tile.Y, maxTile))
	return tile
}

// CalculateVisibleTiles calculates which tiles are visible given a center point and screen size
func CalculateVisibleTiles(center LatLng, zoom int, screenSize image.Point) []Tile {
	centerTile := LatLngToTile(center, zoom)
	tilesX := (screenSize.X / TileSize) + 2 // Add buffer tiles
	tilesY := (screenSize.Y / TileSize) + 2

	startX := centerTile.X - tilesX/2
	startY := centerTile.Y - tilesY/2

	seen := make(map[Tile]bool, tilesX*tilesY)
	visibleTiles := make([]Tile, 0, tilesX*tilesY)
	for x := startX; x < startX+tilesX; x++ {
		for y := startY; y < startY+tilesY; y++ {
			tile := ConstrainTile(Tile{
				X:    x,
				Y:    y,
				Zoom: zoom,
			})
			if seen[tile] {
				continue
			}
			seen[tile] = true
			visibleTiles = append(visibleTiles, tile)
		}
	}
	return visibleTiles
}

func clampLat(lat float64) float64 {
	return max(-MaxLatitude, min(lat, MaxLatitude))
}
