package genart

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmapCache_MemoizesLoader(t *testing.T) {
	calls := 0
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	cache := NewBitmapCache(func(name string) (image.Image, error) {
		calls++
		return img, nil
	})

	got1, err := cache.Get("a.png")
	assert.NoError(t, err)
	got2, err := cache.Get("a.png")
	assert.NoError(t, err)
	assert.Same(t, got1, got2)
	assert.Equal(t, 1, calls)
}

func TestBitmapCache_PropagatesLoaderError(t *testing.T) {
	cache := NewBitmapCache(func(name string) (image.Image, error) {
		return nil, errors.New("not found")
	})
	_, err := cache.Get("missing.png")
	assert.Error(t, err)
	assert.True(t, IsKind(err, ErrBitmap))
}

func TestBitmapCache_NilLoaderErrors(t *testing.T) {
	cache := NewBitmapCache(nil)
	_, err := cache.Get("a.png")
	assert.Error(t, err)
}

func TestBitmapCache_Uncached(t *testing.T) {
	cache := NewBitmapCache(func(name string) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	})
	assert.True(t, cache.Uncached("a.png"))
	_, _ = cache.Get("a.png")
	assert.False(t, cache.Uncached("a.png"))
}
