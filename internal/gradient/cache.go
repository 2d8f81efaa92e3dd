package gradient

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"sync"
)

// Cache holds decoded images and the gradient fields computed from them.
//
// Field computation dominates the latency of a detection request, so fields
// are cached per (path, options) pair: repeated passes over the same image
// with the same settings, the common case when an agent iterates on
// detection parameters, skip straight to the vote phase.
//
// Cache is safe for concurrent use. Entries stay resident until Evict or
// Clear; a long-running server handling many images should evict what it no
// longer needs.
type Cache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
	fields map[fieldKey]*Field
}

type cachedImage struct {
	img    image.Image
	format string // as reported by image.Decode
}

// fieldKey identifies one computed field. Options is a comparable struct,
// so the pair can key a map directly.
type fieldKey struct {
	path string
	opts Options
}

// NewCache returns an empty cache ready for concurrent use.
func NewCache() *Cache {
	return &Cache{
		images: make(map[string]cachedImage),
		fields: make(map[fieldKey]*Field),
	}
}

// LoadImage returns the decoded image at path, reading and decoding it only
// on the first call. The cache key is the exact path string; relative and
// absolute spellings of the same file are distinct entries.
func (c *Cache) LoadImage(path string) (image.Image, error) {
	c.mu.RLock()
	entry, ok := c.images[path]
	c.mu.RUnlock()
	if ok {
		return entry.img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = cachedImage{img: img, format: format}
	c.mu.Unlock()
	return img, nil
}

// FieldFor returns the gradient field of the image at path computed with
// opts, loading the image and computing the field as needed.
func (c *Cache) FieldFor(path string, opts Options) (*Field, error) {
	key := fieldKey{path: path, opts: opts}

	c.mu.RLock()
	field, ok := c.fields[key]
	c.mu.RUnlock()
	if ok {
		return field, nil
	}

	img, err := c.LoadImage(path)
	if err != nil {
		return nil, err
	}
	field, err = FromImage(img, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.fields[key] = field
	c.mu.Unlock()
	return field, nil
}

// Evict drops the image at path and every field computed from it.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.images, path)
	for key := range c.fields {
		if key.path == path {
			delete(c.fields, key)
		}
	}
}

// Clear empties the cache entirely.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = make(map[string]cachedImage)
	c.fields = make(map[fieldKey]*Field)
}

// ImageInfo is the metadata returned by the image_load tool.
type ImageInfo struct {
	// Width and Height are the image dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the decoded format name: "png", "jpeg", or "gif".
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Info loads the image at path (through the cache) and returns its
// metadata. The format comes from the decoder, not the file extension.
func (c *Cache) Info(path string) (*ImageInfo, error) {
	if _, err := c.LoadImage(path); err != nil {
		return nil, err
	}

	c.mu.RLock()
	entry := c.images[path]
	c.mu.RUnlock()

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}

	bounds := entry.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		FileSizeBytes: stat.Size(),
	}, nil
}
