package tiles

import "image"

// Cache holds decoded tile images keyed by GetTileKey.
type Cache interface {
	Get(key string) (image.Image, bool)
	Set(key string, value image.Image)
	Clear()
	Len() int
}
