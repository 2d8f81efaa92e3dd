package diag

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/line-tools-mcp/internal/hough"
)

// rowField feeds the detector one horizontal row of full-strength edge
// pixels.
type rowField struct {
	width, height int
	pixels        []image.Point
}

func newRowField(width, height, y int) *rowField {
	f := &rowField{width: width, height: height}
	for x := 2; x < width-2; x++ {
		f.pixels = append(f.pixels, image.Point{X: x, Y: y})
	}
	return f
}

func (f *rowField) Bounds() (int, int) {
	return f.width, f.height
}

func (f *rowField) EdgePixels() []image.Point {
	return f.pixels
}

func (f *rowField) GradientAt(x, y int) (float64, float64) {
	return 0, 1
}

func (f *rowField) MagnitudeAt(x, y int) float64 {
	return 1
}

func (f *rowField) Source() hough.Source {
	return hough.SourceSobel
}

func TestAccumulatorHeatmapRendersPass(t *testing.T) {
	det, err := hough.NewDetector(hough.DefaultParams(), nil)
	require.NoError(t, err)
	det.Detect(newRowField(60, 60, 30))

	result, err := AccumulatorHeatmap(det.Accumulator())
	require.NoError(t, err)

	rhoBins, thetaBins := det.Accumulator().Dims()
	assert.Equal(t, rhoBins, result.RhoBins)
	assert.Equal(t, thetaBins, result.ThetaBins)
	assert.Positive(t, result.MaxVotes)
	assert.Equal(t, "image/png", result.MimeType)

	raw, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestAccumulatorHeatmapRequiresAPass(t *testing.T) {
	_, err := AccumulatorHeatmap(nil)
	assert.Error(t, err)

	det, err := hough.NewDetector(hough.DefaultParams(), nil)
	require.NoError(t, err)
	_, err = AccumulatorHeatmap(det.Accumulator())
	assert.Error(t, err, "no pass has sized the grid yet")
}
