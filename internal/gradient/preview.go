package gradient

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// Preview is a rendering of a field's gradient magnitudes for visual
// inspection: bright pixels are strong gradients.
type Preview struct {
	// Width and Height are the field dimensions (after any downsampling).
	Width  int `json:"width"`
	Height int `json:"height"`

	// EdgePixels is the number of pixels that met the edge threshold.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the magnitude map encoded as a base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// MagnitudePreview renders the field's normalized magnitudes as a grayscale
// PNG. It answers "what does the detector actually see" before any votes
// are cast.
func MagnitudePreview(f *Field) (*Preview, error) {
	if f == nil || f.width == 0 || f.height == 0 {
		return nil, errors.New("empty gradient field")
	}

	img := image.NewGray(image.Rect(0, 0, f.width, f.height))
	for i, m := range f.mag {
		img.Pix[i] = uint8(m*255 + 0.5)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode gradient preview: %w", err)
	}

	return &Preview{
		Width:       f.width,
		Height:      f.height,
		EdgePixels:  len(f.pixels),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
