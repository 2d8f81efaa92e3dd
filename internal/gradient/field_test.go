package gradient

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/line-tools-mcp/internal/hough"
)

// stepImage returns a grayscale image split into a dark and a bright half.
// With a vertical boundary the right half is bright; otherwise the bottom
// half is.
func stepImage(width, height int, vertical bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			bright := x >= width/2
			if !vertical {
				bright = y >= height/2
			}
			if bright {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// sharpOptions disable blur so gradients stay exactly predictable.
func sharpOptions() Options {
	return Options{
		Kernel:           hough.SourceSobel,
		BlurRadius:       0,
		EdgeThreshold:    0.5,
		DownsampleFactor: 1,
	}
}

func TestFromImageVerticalEdge(t *testing.T) {
	f, err := FromImage(stepImage(40, 40, true), sharpOptions())
	require.NoError(t, err)

	w, h := f.Bounds()
	assert.Equal(t, 40, w)
	assert.Equal(t, 40, h)
	assert.Equal(t, hough.SourceSobel, f.Source())

	// The step between columns 19 and 20 puts a full-strength gradient on
	// both, for every interior row.
	require.Len(t, f.EdgePixels(), 2*38)
	for _, px := range f.EdgePixels() {
		assert.Contains(t, []int{19, 20}, px.X)

		gx, gy := f.GradientAt(px.X, px.Y)
		assert.Positive(t, gx, "brightness increases to the right")
		assert.InDelta(t, 0, gy, 1e-9)
		assert.InDelta(t, math.Sqrt2/2, f.MagnitudeAt(px.X, px.Y), 1e-9,
			"a hard step is 1/sqrt2 of the kernel's maximum response")
	}
}

func TestFromImageHorizontalEdgeIsYUp(t *testing.T) {
	f, err := FromImage(stepImage(40, 40, false), sharpOptions())
	require.NoError(t, err)

	require.NotEmpty(t, f.EdgePixels())
	for _, px := range f.EdgePixels() {
		gx, gy := f.GradientAt(px.X, px.Y)
		assert.InDelta(t, 0, gx, 1e-9)
		assert.Negative(t, gy, "brightness rises downward, so the y-up gradient points down")
	}
}

func TestFromImageScharrKernel(t *testing.T) {
	opts := sharpOptions()
	opts.Kernel = hough.SourceScharr

	f, err := FromImage(stepImage(40, 40, true), opts)
	require.NoError(t, err)

	assert.Equal(t, hough.SourceScharr, f.Source())
	require.NotEmpty(t, f.EdgePixels())
	px := f.EdgePixels()[0]
	gx, _ := f.GradientAt(px.X, px.Y)
	assert.Positive(t, gx)
	assert.InDelta(t, math.Sqrt2/2, f.MagnitudeAt(px.X, px.Y), 1e-9,
		"normalization keeps the step response kernel independent")
}

func TestFromImageBlurSpreadsEdge(t *testing.T) {
	img := stepImage(40, 40, true)

	opts := sharpOptions()
	opts.EdgeThreshold = 0.05
	sharp, err := FromImage(img, opts)
	require.NoError(t, err)

	opts.BlurRadius = 2
	soft, err := FromImage(img, opts)
	require.NoError(t, err)

	assert.Greater(t, len(soft.EdgePixels()), len(sharp.EdgePixels()),
		"blur smears the step across more columns")
}

func TestFromImageDownsample(t *testing.T) {
	opts := sharpOptions()
	opts.EdgeThreshold = 0.1
	opts.DownsampleFactor = 2

	f, err := FromImage(stepImage(100, 60, true), opts)
	require.NoError(t, err)

	w, h := f.Bounds()
	assert.Equal(t, 50, w)
	assert.Equal(t, 30, h)

	sx, sy := f.Scale()
	assert.Equal(t, 2.0, sx)
	assert.Equal(t, 2.0, sy)

	require.NotEmpty(t, f.EdgePixels())
	for _, px := range f.EdgePixels() {
		assert.InDelta(t, 25, px.X, 3, "the step boundary lands at half the original x")
	}
}

func TestFromImageEmptyInputs(t *testing.T) {
	f, err := FromImage(nil, DefaultOptions())
	require.NoError(t, err)
	w, h := f.Bounds()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Empty(t, f.EdgePixels())

	f, err = FromImage(image.NewGray(image.Rect(0, 0, 0, 0)), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, f.EdgePixels())

	sx, sy := f.Scale()
	assert.Equal(t, 1.0, sx)
	assert.Equal(t, 1.0, sy)
}

func TestFromImageFlatImageHasNoEdges(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 30, 30))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	f, err := FromImage(img, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, f.EdgePixels())
	assert.Zero(t, f.MagnitudeAt(15, 15))
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	cases := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"unknown kernel", func(o *Options) { o.Kernel = hough.SourceUnknown }},
		{"negative blur", func(o *Options) { o.BlurRadius = -1 }},
		{"zero threshold", func(o *Options) { o.EdgeThreshold = 0 }},
		{"threshold above one", func(o *Options) { o.EdgeThreshold = 1.1 }},
		{"zero downsample", func(o *Options) { o.DownsampleFactor = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := DefaultOptions()
			tc.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
}

// TestFieldDrivesDetector wires a real image through the whole stack: the
// step boundary must come back as a single horizontal segment claiming both
// full-strength gradient rows.
func TestFieldDrivesDetector(t *testing.T) {
	f, err := FromImage(stepImage(100, 100, false), sharpOptions())
	require.NoError(t, err)

	det, err := hough.NewDetector(hough.DefaultParams(), nil)
	require.NoError(t, err)
	segments := det.Detect(f)

	require.Len(t, segments, 1)
	seg := segments[0]
	assert.InDelta(t, math.Pi/2, seg.Theta, 0.02)
	assert.InDelta(t, 50, seg.Rho, 2.5)
	assert.Equal(t, 2*98, seg.SupportingPixels, "both boundary rows belong to one segment")
	assert.Greater(t, seg.Length(), 90.0)
	assert.InDelta(t, 1.0, seg.DirectionConsistency, 1e-9)
	assert.Equal(t, hough.SourceSobel, seg.Source)
}
