package hough

import (
	"fmt"
	"image"

	"github.com/ironsheep/line-tools-mcp/internal/parallel"
)

// minGradientMagnitude rejects gradients too weak to trust for direction,
// both at vote time and in the mean-magnitude quality filter.
const minGradientMagnitude = 0.05

// Field supplies one detection pass's input: the edge pixel list and the
// gradient field it was thresholded from.
//
// GradientAt returns the signed gradient in a y-up convention; the detector
// flips the y component into pixel coordinates (y down) itself.
// MagnitudeAt must be normalized to [0, 1]. Both cover the full
// [0, width) x [0, height) range.
type Field interface {
	Bounds() (width, height int)

	// EdgePixels returns the pixels that passed the producer's edge
	// threshold. The slice must stay unchanged for the duration of a pass.
	EdgePixels() []image.Point

	GradientAt(x, y int) (gx, gy float64)
	MagnitudeAt(x, y int) float64

	// Source tags which kernel produced the field; it is propagated
	// unchanged into every output segment.
	Source() Source
}

// Detector runs the full line detection pass: vote, peak search, segment
// extraction. It owns the angle table, the accumulator, and the scratch
// buffers, all of which are reused across passes.
//
// A Detector is not safe for concurrent use: a pass must finish before the
// next one starts, and the returned segments are only valid until then.
type Detector struct {
	params Params
	pool   *parallel.Pool

	table *angleTable
	acc   Accumulator

	// Scratch reused across passes, cleared rather than reallocated.
	peaks    []PeakCandidate
	samples  []projectionSample
	claimed  map[int]struct{}
	segments []LineSegment
}

// NewDetector returns a detector with validated parameters. The pool may be
// nil, in which case the clear and vote phases run on the calling
// goroutine.
func NewDetector(params Params, pool *parallel.Pool) (*Detector, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection params: %w", err)
	}
	return &Detector{
		params:  params,
		pool:    pool,
		claimed: make(map[int]struct{}),
	}, nil
}

// SetParams replaces the tunables for the next pass. The angle table and
// accumulator are rebuilt lazily at the start of that pass if their
// dimensions changed.
func (d *Detector) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid detection params: %w", err)
	}
	d.params = params
	return nil
}

// Params returns the current parameter set.
func (d *Detector) Params() Params {
	return d.params
}

// Detect runs one full pass over the field and returns the detected
// segments, strongest candidates first.
//
// A nil field or an empty edge-pixel list skips the pass and clears the
// previous output; that is expected upstream behavior, not an error. The
// returned slice is reused by the next call to Detect.
func (d *Detector) Detect(field Field) []LineSegment {
	d.segments = d.segments[:0]
	if field == nil {
		return d.segments
	}
	width, height := field.Bounds()
	pixels := field.EdgePixels()
	if width <= 0 || height <= 0 || len(pixels) == 0 {
		return d.segments
	}

	if d.table == nil || d.table.steps != d.params.ThetaSteps {
		d.table = newAngleTable(d.params.ThetaSteps)
	}
	d.acc.ensure(width, height, d.params.ThetaSteps, d.params.RhoBinSize)

	d.acc.clear(d.pool)
	d.vote(field, pixels)
	d.detectPeaks()
	d.extractSegments(field, pixels, width, height)
	return d.segments
}

// Segments returns the output of the most recent pass. Like the slice
// returned by Detect, it is reused by the next pass.
func (d *Detector) Segments() []LineSegment {
	return d.segments
}

// NearestSegment returns the detected segment closest to p within
// maxDistance, or nil when none qualifies.
func (d *Detector) NearestSegment(p Vec2, maxDistance float64) *LineSegment {
	return Nearest(d.segments, p, maxDistance)
}

// Accumulator exposes the vote grid of the most recent pass for
// diagnostics. Callers must treat it as read-only; its dimensions are zero
// before the first pass.
func (d *Detector) Accumulator() *Accumulator {
	return &d.acc
}
