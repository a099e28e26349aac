package genart

import "image"

// BitmapCache resolves bitmap names to decoded images, loading each
// name at most once (spec §6.5). No builtin in native.go reads it.
type BitmapCache struct {
	loader  func(name string) (image.Image, error)
	entries map[string]image.Image
}

// NewBitmapCache builds a cache backed by loader, which is called at
// most once per distinct name.
func NewBitmapCache(loader func(name string) (image.Image, error)) *BitmapCache {
	return &BitmapCache{loader: loader, entries: map[string]image.Image{}}
}

// Get returns the decoded image for name, loading and memoising it on
// first use. ErrBitmap wraps any loader failure or a nil loader.
func (c *BitmapCache) Get(name string) (image.Image, error) {
	if img, ok := c.entries[name]; ok {
		return img, nil
	}
	if c.loader == nil {
		return nil, newErr(ErrBitmap, "no bitmap loader configured, requested %q", name)
	}
	img, err := c.loader(name)
	if err != nil {
		return nil, newErr(ErrBitmap, "loading %q: %v", name, err)
	}
	c.entries[name] = img
	return img, nil
}

// Uncached reports whether name has not yet been loaded.
func (c *BitmapCache) Uncached(name string) bool {
	_, ok := c.entries[name]
	return !ok
}
