package gradient

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/line-tools-mcp/internal/hough"
)

// Convolution kernels in pixel coordinates (y grows downward). The y kernels
// respond positively to brightness increasing toward the bottom of the image.
var (
	sobelX  = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY  = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
	scharrX = [3][3]float64{{-3, 0, 3}, {-10, 0, 10}, {-3, 0, 3}}
	scharrY = [3][3]float64{{-3, -10, -3}, {0, 0, 0}, {3, 10, 3}}
)

// Options control how an image is turned into a gradient field. The JSON
// names match the MCP tool arguments, so a tool call can be unmarshaled
// straight over DefaultOptions.
type Options struct {
	// Kernel selects the derivative kernel: SourceSobel or SourceScharr.
	Kernel hough.Source `json:"kernel"`

	// BlurRadius is the Gaussian pre-blur radius in pixels. Zero disables
	// the blur.
	BlurRadius float64 `json:"blur_radius"`

	// EdgeThreshold is the minimum normalized gradient magnitude (0, 1]
	// for a pixel to be listed as an edge pixel.
	EdgeThreshold float64 `json:"edge_threshold"`

	// DownsampleFactor shrinks the image by an integer factor before any
	// processing. 1 means full resolution.
	DownsampleFactor int `json:"downsample_factor"`
}

// DefaultOptions returns the settings used by the MCP tools when the caller
// does not override them.
func DefaultOptions() Options {
	return Options{
		Kernel:           hough.SourceSobel,
		BlurRadius:       1.4,
		EdgeThreshold:    0.1,
		DownsampleFactor: 1,
	}
}

// Validate reports the first invalid option, or nil.
func (o Options) Validate() error {
	switch o.Kernel {
	case hough.SourceSobel, hough.SourceScharr:
	default:
		return fmt.Errorf("kernel must be sobel or scharr, got %s", o.Kernel)
	}
	if o.BlurRadius < 0 {
		return fmt.Errorf("blur_radius must not be negative, got %g", o.BlurRadius)
	}
	if o.EdgeThreshold <= 0 || o.EdgeThreshold > 1 {
		return fmt.Errorf("edge_threshold must be in (0, 1], got %g", o.EdgeThreshold)
	}
	if o.DownsampleFactor < 1 {
		return fmt.Errorf("downsample_factor must be at least 1, got %d", o.DownsampleFactor)
	}
	return nil
}

// Field is a precomputed gradient field over a (possibly downsampled) image.
// It implements the detector's input contract.
//
// Gradients are stored in a y-up convention: GradientAt returns a positive
// y component when brightness increases toward the top of the image. The
// detector flips the component back into pixel coordinates itself.
// Magnitudes are normalized against the kernel's maximum possible response,
// so 1.0 is a full black-to-white step and thresholds keep the same meaning
// across images.
type Field struct {
	width  int
	height int

	gx  []float64
	gy  []float64
	mag []float64

	pixels []image.Point
	kernel hough.Source

	scaleX float64
	scaleY float64
}

// FromImage computes the gradient field of img.
//
// The pipeline is: downsample (Lanczos) when DownsampleFactor > 1, grayscale
// conversion, optional Gaussian blur, then a signed 3x3 derivative
// convolution. The one-pixel image border gets no gradient; border pixels
// are never edge pixels.
//
// A nil or empty image yields a field with no edge pixels, which the
// detector treats as a no-op pass.
func FromImage(img image.Image, opts Options) (*Field, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gradient options: %w", err)
	}

	f := &Field{kernel: opts.Kernel, scaleX: 1, scaleY: 1}
	if img == nil {
		return f, nil
	}
	srcW, srcH := img.Bounds().Dx(), img.Bounds().Dy()
	if srcW == 0 || srcH == 0 {
		return f, nil
	}

	work := img
	if opts.DownsampleFactor > 1 {
		w := max(1, srcW/opts.DownsampleFactor)
		h := max(1, srcH/opts.DownsampleFactor)
		work = imaging.Resize(work, w, h, imaging.Lanczos)
		f.scaleX = float64(srcW) / float64(w)
		f.scaleY = float64(srcH) / float64(h)
	}

	gray := effect.Grayscale(work)
	if opts.BlurRadius > 0 {
		gray = blur.Gaussian(gray, opts.BlurRadius)
	}
	lum, width, height := luminance(gray)

	f.width = width
	f.height = height
	n := width * height
	f.gx = make([]float64, n)
	f.gy = make([]float64, n)
	f.mag = make([]float64, n)

	kx, ky := sobelX, sobelY
	axisMax := 4.0 // sum of one side of the kernel on unit luminance
	if opts.Kernel == hough.SourceScharr {
		kx, ky = scharrX, scharrY
		axisMax = 16.0
	}
	norm := 1 / (axisMax * math.Sqrt2)

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			var gx, gy float64
			for j := -1; j <= 1; j++ {
				row := lum[(y+j)*width+x-1 : (y+j)*width+x+2]
				gx += row[0]*kx[j+1][0] + row[1]*kx[j+1][1] + row[2]*kx[j+1][2]
				gy += row[0]*ky[j+1][0] + row[1]*ky[j+1][1] + row[2]*ky[j+1][2]
			}

			i := y*width + x
			f.gx[i] = gx
			f.gy[i] = -gy // flip into y-up
			m := math.Hypot(gx, gy) * norm
			if m > 1 {
				m = 1
			}
			f.mag[i] = m
			if m >= opts.EdgeThreshold {
				f.pixels = append(f.pixels, image.Point{X: x, Y: y})
			}
		}
	}
	return f, nil
}

// luminance flattens a grayscale RGBA image into one float64 per pixel in
// [0, 1].
func luminance(img *image.RGBA) ([]float64, int, int) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	lum := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			lum[y*width+x] = float64(img.Pix[off]) / 255.0
		}
	}
	return lum, width, height
}

// Bounds returns the field dimensions after any downsampling.
func (f *Field) Bounds() (width, height int) {
	return f.width, f.height
}

// EdgePixels returns the pixels whose magnitude met the edge threshold.
// The returned slice is owned by the field and must not be modified.
func (f *Field) EdgePixels() []image.Point {
	return f.pixels
}

// GradientAt returns the signed gradient at (x, y), y-up.
func (f *Field) GradientAt(x, y int) (gx, gy float64) {
	i := y*f.width + x
	return f.gx[i], f.gy[i]
}

// MagnitudeAt returns the normalized gradient magnitude at (x, y).
func (f *Field) MagnitudeAt(x, y int) float64 {
	return f.mag[y*f.width+x]
}

// Source returns the kernel tag carried into detected segments.
func (f *Field) Source() hough.Source {
	return f.kernel
}

// Scale returns the per-axis factors mapping field coordinates back to the
// original image: originalX = fieldX * sx. Both are 1 when no downsampling
// was applied.
func (f *Field) Scale() (sx, sy float64) {
	return f.scaleX, f.scaleY
}
