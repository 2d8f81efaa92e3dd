package hough

import "fmt"

// Params holds every tunable of the detection engine. All fields may be
// changed between passes via Detector.SetParams; only a change to ThetaSteps
// or RhoBinSize forces the angle table or accumulator to be rebuilt.
type Params struct {
	// ThetaSteps is the number of angular bins covering [0, pi).
	ThetaSteps int `json:"theta_steps"`

	// RhoBinSize is the width of one distance bin in pixels.
	RhoBinSize float64 `json:"rho_bin_size"`

	// PeakThreshold is the minimum accumulated vote count for a cell to be
	// considered a line candidate.
	PeakThreshold int `json:"peak_threshold"`

	// NMSWindowSize is the side length of the square non-maximum-suppression
	// window. Must be odd.
	NMSWindowSize int `json:"nms_window_size"`

	// MaxLines caps the number of peak candidates examined per pass.
	MaxLines int `json:"max_lines"`

	// SegmentMinLength is the minimum accepted segment length in pixels.
	SegmentMinLength float64 `json:"segment_min_length"`

	// SegmentMaxLength is the length above which a contiguous run is split
	// into equal parts.
	SegmentMaxLength float64 `json:"segment_max_length"`

	// LineDistanceThreshold is the maximum perpendicular distance, in
	// pixels, for an edge pixel to support a candidate line.
	LineDistanceThreshold float64 `json:"line_distance_threshold"`

	// GradientAngleWindow, in degrees, bounds how far a theta bin may sit
	// from a pixel's gradient direction and still receive votes.
	GradientAngleWindow float64 `json:"gradient_angle_window"`

	// MinEdgeCoverage is the minimum supporting-pixels-per-unit-length
	// density for an accepted segment.
	MinEdgeCoverage float64 `json:"min_edge_coverage"`

	// MinDirectionConsistency is the minimum mean agreement between
	// individual pixel gradients and the segment's average gradient.
	MinDirectionConsistency float64 `json:"min_direction_consistency"`

	// MinSupportingPixels is the minimum number of edge pixels a segment
	// must collect.
	MinSupportingPixels int `json:"min_supporting_pixels"`
}

// DefaultParams returns the tuned defaults used by the MCP tools.
func DefaultParams() Params {
	return Params{
		ThetaSteps:              180, // 1 degree resolution
		RhoBinSize:              1.0,
		PeakThreshold:           25,
		NMSWindowSize:           5,
		MaxLines:                50,
		SegmentMinLength:        10,
		SegmentMaxLength:        120,
		LineDistanceThreshold:   2.0,
		GradientAngleWindow:     20, // degrees
		MinEdgeCoverage:         0.3,
		MinDirectionConsistency: 0.6,
		MinSupportingPixels:     8,
	}
}

// Validate reports the first invalid field, or nil. Detector construction
// and updates fail fast on invalid parameters rather than corrupting a
// later pass.
func (p Params) Validate() error {
	if p.ThetaSteps <= 0 {
		return fmt.Errorf("theta_steps must be positive, got %d", p.ThetaSteps)
	}
	if p.RhoBinSize <= 0 {
		return fmt.Errorf("rho_bin_size must be positive, got %g", p.RhoBinSize)
	}
	if p.PeakThreshold <= 0 {
		return fmt.Errorf("peak_threshold must be positive, got %d", p.PeakThreshold)
	}
	if p.NMSWindowSize < 3 || p.NMSWindowSize%2 == 0 {
		return fmt.Errorf("nms_window_size must be odd and at least 3, got %d", p.NMSWindowSize)
	}
	if p.MaxLines <= 0 {
		return fmt.Errorf("max_lines must be positive, got %d", p.MaxLines)
	}
	if p.SegmentMinLength <= 0 {
		return fmt.Errorf("segment_min_length must be positive, got %g", p.SegmentMinLength)
	}
	if p.SegmentMaxLength < p.SegmentMinLength {
		return fmt.Errorf("segment_max_length %g is below segment_min_length %g", p.SegmentMaxLength, p.SegmentMinLength)
	}
	if p.LineDistanceThreshold <= 0 {
		return fmt.Errorf("line_distance_threshold must be positive, got %g", p.LineDistanceThreshold)
	}
	if p.GradientAngleWindow <= 0 || p.GradientAngleWindow > 90 {
		return fmt.Errorf("gradient_angle_window must be in (0, 90] degrees, got %g", p.GradientAngleWindow)
	}
	if p.MinEdgeCoverage < 0 || p.MinEdgeCoverage > 1 {
		return fmt.Errorf("min_edge_coverage must be in [0, 1], got %g", p.MinEdgeCoverage)
	}
	if p.MinDirectionConsistency < 0 || p.MinDirectionConsistency > 1 {
		return fmt.Errorf("min_direction_consistency must be in [0, 1], got %g", p.MinDirectionConsistency)
	}
	if p.MinSupportingPixels < 1 {
		return fmt.Errorf("min_supporting_pixels must be at least 1, got %d", p.MinSupportingPixels)
	}
	return nil
}
