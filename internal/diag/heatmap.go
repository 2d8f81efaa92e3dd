// Package diag renders internal detector state for inspection over MCP:
// sometimes the answer to "why did detection miss this line" is visible in
// the vote grid long before it is visible in the output.
package diag

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/line-tools-mcp/internal/hough"
)

// HeatmapResult is the rendered accumulator plus the grid facts needed to
// read it.
type HeatmapResult struct {
	// RhoBins and ThetaBins are the accumulator grid dimensions.
	RhoBins   int `json:"rho_bins"`
	ThetaBins int `json:"theta_bins"`

	// MaxVotes is the strongest cell in the grid.
	MaxVotes int `json:"max_votes"`

	// ImageBase64 is the rendered heatmap as a base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// accGrid adapts the accumulator to the plotter's grid interface: columns
// are theta bins, rows are rho bins, axes in radians and pixels.
type accGrid struct {
	acc *hough.Accumulator
}

func (g accGrid) Dims() (c, r int) {
	rhoBins, thetaBins := g.acc.Dims()
	return thetaBins, rhoBins
}

func (g accGrid) Z(c, r int) float64 { return float64(g.acc.At(r, c)) }
func (g accGrid) X(c int) float64    { return g.acc.ThetaValue(c) }
func (g accGrid) Y(r int) float64    { return g.acc.RhoValue(r) }

// votePalette blends dark blue into warm yellow through HCL space, which
// keeps perceived brightness monotonic in the vote count.
type votePalette struct {
	colors []color.Color
}

func (p votePalette) Colors() []color.Color { return p.colors }

func newVotePalette(steps int) palette.Palette {
	low, _ := colorful.Hex("#0b1d3a")
	high, _ := colorful.Hex("#ffd166")

	colors := make([]color.Color, steps)
	for i := range colors {
		t := float64(i) / float64(steps-1)
		colors[i] = low.BlendHcl(high, t).Clamped()
	}
	return votePalette{colors: colors}
}

// AccumulatorHeatmap renders the vote grid of the most recent detection
// pass. The accumulator has no dimensions until a pass has run; that is
// reported as an error rather than an empty image.
func AccumulatorHeatmap(acc *hough.Accumulator) (*HeatmapResult, error) {
	if acc == nil {
		return nil, errors.New("nil accumulator")
	}
	rhoBins, thetaBins := acc.Dims()
	if rhoBins == 0 || thetaBins == 0 {
		return nil, errors.New("accumulator is empty: no detection pass has run")
	}

	p := plot.New()
	p.Title.Text = "Hough vote accumulator"
	p.X.Label.Text = "theta (rad)"
	p.Y.Label.Text = "rho (px)"

	hm := plotter.NewHeatMap(accGrid{acc: acc}, newVotePalette(256))
	hm.Min = 0
	if hm.Max < 1 {
		hm.Max = 1 // an all-zero grid renders flat instead of dividing by zero
	}
	p.Add(hm)

	wt, err := p.WriterTo(8*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render heatmap: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode heatmap: %w", err)
	}

	return &HeatmapResult{
		RhoBins:     rhoBins,
		ThetaBins:   thetaBins,
		MaxVotes:    acc.MaxVotes(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
