package gradient

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixture encodes a step image as PNG under dir and returns its path.
func writeFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, stepImage(40, 40, true)))
	return path
}

func TestCacheLoadImageReadsDiskOnce(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "edge.png")
	cache := NewCache()

	img1, err := cache.LoadImage(path)
	require.NoError(t, err)

	// Removing the file proves the second load never touches the disk.
	require.NoError(t, os.Remove(path))

	img2, err := cache.LoadImage(path)
	require.NoError(t, err)
	assert.Same(t, img1, img2)
}

func TestCacheLoadImageMissingFile(t *testing.T) {
	cache := NewCache()
	_, err := cache.LoadImage(filepath.Join(t.TempDir(), "absent.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open image")
}

func TestCacheFieldForReusesPerOptions(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "edge.png")
	cache := NewCache()

	opts := DefaultOptions()
	f1, err := cache.FieldFor(path, opts)
	require.NoError(t, err)
	f2, err := cache.FieldFor(path, opts)
	require.NoError(t, err)
	assert.Same(t, f1, f2, "identical options must hit the cache")

	opts.EdgeThreshold = 0.4
	f3, err := cache.FieldFor(path, opts)
	require.NoError(t, err)
	assert.NotSame(t, f1, f3, "different options are a different field")
}

func TestCacheFieldForRejectsBadOptions(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "edge.png")
	cache := NewCache()

	opts := DefaultOptions()
	opts.DownsampleFactor = 0
	_, err := cache.FieldFor(path, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "downsample_factor")
}

func TestCacheEvictDropsImageAndFields(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "edge.png")
	cache := NewCache()

	_, err := cache.FieldFor(path, DefaultOptions())
	require.NoError(t, err)

	cache.Evict(path)
	require.NoError(t, os.Remove(path))

	_, err = cache.FieldFor(path, DefaultOptions())
	assert.Error(t, err, "evicted entries must be re-read from disk")
}

func TestCacheClear(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "edge.png")
	cache := NewCache()

	_, err := cache.LoadImage(path)
	require.NoError(t, err)

	cache.Clear()
	require.NoError(t, os.Remove(path))

	_, err = cache.LoadImage(path)
	assert.Error(t, err)
}

func TestCacheInfo(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "edge.png")
	cache := NewCache()

	info, err := cache.Info(path)
	require.NoError(t, err)

	assert.Equal(t, 40, info.Width)
	assert.Equal(t, 40, info.Height)
	assert.Equal(t, "png", info.Format)
	assert.Positive(t, info.FileSizeBytes)
}
