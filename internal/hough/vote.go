package hough

import (
	"image"
	"math"

	"github.com/ironsheep/line-tools-mcp/internal/parallel"
)

// vote scatters weighted votes for every edge pixel into the accumulator.
// Pixels are independent, so the loop runs as a parallel map with a
// completion barrier; the atomic cell adds keep the totals exact under any
// interleaving.
func (d *Detector) vote(field Field, pixels []image.Point) {
	angleWindow := d.params.GradientAngleWindow * math.Pi / 180
	windowBins := int(math.Ceil(angleWindow / d.table.step))

	parallel.Run(d.pool, len(pixels), voteGrain, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			d.votePixel(field, pixels[i], angleWindow, windowBins)
		}
	})
}

// votePixel casts one pixel's votes across the theta bins near its gradient
// direction. Edge gradients are perpendicular to the edge, so only that
// narrow band of angles can describe a line through this pixel; skipping
// the rest of the bins is what makes the vote phase cheap.
func (d *Detector) votePixel(field Field, px image.Point, angleWindow float64, windowBins int) {
	mag := field.MagnitudeAt(px.X, px.Y)
	if mag < minGradientMagnitude {
		return
	}

	gx, gy := field.GradientAt(px.X, px.Y)
	gy = -gy // into pixel coordinates (y down)

	thetaG := math.Atan2(gy, gx)
	if thetaG < 0 {
		thetaG += math.Pi
	}
	if thetaG >= math.Pi {
		thetaG -= math.Pi
	}

	magWeight := math.Min(mag*2, 1)
	x, y := float64(px.X), float64(px.Y)
	centerBin := int(math.Round(thetaG / d.table.step))

	for db := -windowBins; db <= windowBins; db++ {
		bin := centerBin + db
		bin = ((bin % d.table.steps) + d.table.steps) % d.table.steps

		rho := x*d.table.cos[bin] + y*d.table.sin[bin]
		rhoBin := int(math.Round((rho + d.acc.maxRho) / d.acc.rhoBinSize))
		if rhoBin < 0 || rhoBin >= d.acc.rhoBins {
			continue
		}

		// Angular distance folded into [0, pi/2]: a bin pi away describes
		// the same line family.
		angleDiff := math.Abs(d.table.theta(bin) - thetaG)
		if angleDiff > math.Pi/2 {
			angleDiff = math.Pi - angleDiff
		}
		angleWeight := math.Exp(-(angleDiff * angleDiff) / (2 * angleWindow * angleWindow))

		votes := int32(math.Round(magWeight * angleWeight * 10))
		if votes > 0 {
			d.acc.add(rhoBin, bin, votes)
		}
	}
}
