package hough

import (
	"image"
	"math"
	"sort"
)

// Gap segmentation constants: a run of supporting pixels closes wherever
// consecutive projections are more than gapTolerance apart, and fragments
// under minRunSamples are noise.
const (
	gapTolerance  = 8.0
	minRunSamples = 3
)

// projectionSample is one supporting pixel of a candidate line, keyed for
// claiming and ordered by its signed projection along the line tangent.
type projectionSample struct {
	proj     float64
	gradient Vec2 // y flipped into pixel coordinates
	mag      float64
	key      int
}

// lineFrame is the recovered geometry of one peak candidate.
type lineFrame struct {
	rho     float64
	theta   float64
	tangent Vec2
	normal  Vec2
	point   Vec2 // rho * normal, a point on the carrier line
}

// extractSegments walks the ranked peaks and emits finite segments. Pixel
// claiming makes the stage order-dependent: stronger peaks take pixels
// first and later peaks never see them again, so the loop is strictly
// sequential.
func (d *Detector) extractSegments(field Field, pixels []image.Point, width, height int) {
	clear(d.claimed)
	src := field.Source()
	for _, peak := range d.peaks {
		d.extractFromPeak(field, pixels, width, height, peak, src)
	}
}

func (d *Detector) extractFromPeak(field Field, pixels []image.Point, width, height int, peak PeakCandidate, src Source) {
	frame := lineFrame{
		rho:   float64(peak.RhoBin)*d.acc.rhoBinSize - d.acc.maxRho,
		theta: d.table.theta(peak.ThetaBin),
	}
	sin, cos := d.table.sin[peak.ThetaBin], d.table.cos[peak.ThetaBin]
	frame.tangent = Vec2{-sin, cos}
	frame.normal = Vec2{cos, sin}
	frame.point = frame.normal.Scale(frame.rho)

	// Gather the still-unclaimed pixels near the carrier line.
	d.samples = d.samples[:0]
	for _, px := range pixels {
		key := px.Y*width + px.X
		if _, taken := d.claimed[key]; taken {
			continue
		}
		off := Vec2{float64(px.X), float64(px.Y)}.Sub(frame.point)
		if math.Abs(off.Dot(frame.normal)) > d.params.LineDistanceThreshold {
			continue
		}
		gx, gy := field.GradientAt(px.X, px.Y)
		d.samples = append(d.samples, projectionSample{
			proj:     off.Dot(frame.tangent),
			gradient: Vec2{gx, -gy},
			mag:      field.MagnitudeAt(px.X, px.Y),
			key:      key,
		})
	}
	if len(d.samples) < d.params.MinSupportingPixels {
		return
	}

	sort.Slice(d.samples, func(i, j int) bool { return d.samples[i].proj < d.samples[j].proj })

	splitRuns(d.samples, gapTolerance, minRunSamples, func(run []projectionSample) {
		d.emitRun(run, peak, frame, width, height, src)
	})
}

// splitRuns walks projection-sorted samples and invokes emit for every
// contiguous run. Runs with fewer than minSamples entries are dropped.
func splitRuns(samples []projectionSample, gap float64, minSamples int, emit func(run []projectionSample)) {
	runStart := 0
	for i := 1; i <= len(samples); i++ {
		if i < len(samples) && samples[i].proj-samples[i-1].proj <= gap {
			continue
		}
		if i-runStart >= minSamples {
			emit(samples[runStart:i])
		}
		runStart = i
	}
}

// emitRun applies the span filters to one contiguous run, splitting runs
// longer than SegmentMaxLength into equal parts that share the peak's vote
// credit.
func (d *Detector) emitRun(run []projectionSample, peak PeakCandidate, frame lineFrame, width, height int, src Source) {
	span := run[len(run)-1].proj - run[0].proj
	if span < d.params.SegmentMinLength {
		return
	}

	parts := 1
	if span > d.params.SegmentMaxLength {
		parts = int(math.Ceil(span / d.params.SegmentMaxLength))
	}
	partLen := span / float64(parts)
	score := float64(peak.Score) / float64(parts)

	start := 0
	for part := 0; part < parts; part++ {
		end := len(run)
		if part < parts-1 {
			bound := run[0].proj + partLen*float64(part+1)
			end = start
			for end < len(run) && run[end].proj < bound {
				end++
			}
		}
		d.emitPart(run[start:end], score, frame, width, height, src)
		start = end
	}
}

// emitPart measures one candidate part, applies the quality filters, and on
// success claims its pixels and appends the finished segment.
func (d *Detector) emitPart(samples []projectionSample, score float64, frame lineFrame, width, height int, src Source) {
	if len(samples) < d.params.MinSupportingPixels {
		return
	}

	// Samples arrive projection-sorted, so the tight bounds are the first
	// and last entries regardless of the nominal part boundaries.
	minProj := samples[0].proj
	maxProj := samples[len(samples)-1].proj
	var gradSum Vec2
	magSum := 0.0
	for _, s := range samples {
		gradSum = gradSum.Add(s.gradient)
		magSum += s.mag
	}

	actualLen := maxProj - minProj
	if actualLen < d.params.SegmentMinLength*0.5 {
		return
	}
	coverage := float64(len(samples)) / math.Max(1, actualLen)
	if coverage < d.params.MinEdgeCoverage {
		return
	}
	if magSum/float64(len(samples)) < minGradientMagnitude {
		return
	}

	gradDir := gradSum.Normalize()
	consistency := directionConsistency(samples, gradDir)
	if consistency < d.params.MinDirectionConsistency {
		return
	}

	start := frame.point.Add(frame.tangent.Scale(minProj))
	end := frame.point.Add(frame.tangent.Scale(maxProj))
	if !inBounds(start, width, height) && !inBounds(end, width, height) {
		return
	}
	start = clampToBounds(start, width, height)
	end = clampToBounds(end, width, height)
	if end.Sub(start).Length() < d.params.SegmentMinLength {
		return
	}

	// Orient the normal toward the side the averaged gradient faces.
	normal := frame.tangent.Perp()
	if normal.Dot(gradDir) < 0 {
		normal = normal.Scale(-1)
	}

	for _, s := range samples {
		d.claimed[s.key] = struct{}{}
	}

	d.segments = append(d.segments, LineSegment{
		Rho:                  frame.rho,
		Theta:                frame.theta,
		Score:                score,
		Start:                start,
		End:                  end,
		Tangent:              frame.tangent,
		Normal:               normal,
		SupportingPixels:     len(samples),
		EdgeCoverage:         coverage,
		DirectionConsistency: consistency,
		Source:               src,
	})
}

// directionConsistency is the mean agreement between each sample's gradient
// and the aggregate direction, skipping samples whose gradient is too small
// to normalize meaningfully.
func directionConsistency(samples []projectionSample, gradDir Vec2) float64 {
	sum, n := 0.0, 0
	for _, s := range samples {
		if s.gradient.Length() < 1e-6 {
			continue
		}
		sum += math.Abs(s.gradient.Normalize().Dot(gradDir))
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func inBounds(p Vec2, width, height int) bool {
	return p.X >= 0 && p.X <= float64(width-1) && p.Y >= 0 && p.Y <= float64(height-1)
}

func clampToBounds(p Vec2, width, height int) Vec2 {
	return Vec2{
		X: math.Max(0, math.Min(float64(width-1), p.X)),
		Y: math.Max(0, math.Min(float64(height-1), p.Y)),
	}
}
