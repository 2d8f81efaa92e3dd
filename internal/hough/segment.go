package hough

import (
	"fmt"
	"math"
)

// Source identifies which upstream edge kernel produced the detector input.
// It is carried through unchanged into every output segment so consumers
// can tell detection runs apart.
type Source uint8

const (
	SourceUnknown Source = iota
	SourceSobel
	SourceScharr
)

func (s Source) String() string {
	switch s {
	case SourceSobel:
		return "sobel"
	case SourceScharr:
		return "scharr"
	default:
		return "unknown"
	}
}

// MarshalText renders the source as its kernel name in JSON output.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a kernel name. An empty string leaves the source
// unchanged so callers can unmarshal over a prefilled default.
func (s *Source) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
	case "sobel":
		*s = SourceSobel
	case "scharr":
		*s = SourceScharr
	case "unknown":
		*s = SourceUnknown
	default:
		return fmt.Errorf("unknown gradient source %q", text)
	}
	return nil
}

// LineSegment is one detected straight line segment.
//
// Rho and Theta are the parameters of the infinite carrier line
// (rho = x*cos(theta) + y*sin(theta), theta in [0, pi)); Start and End are
// the clipped endpoints of the finite segment along it. Tangent and Normal
// are unit vectors; Normal points toward the side the averaged edge
// gradient faces.
type LineSegment struct {
	Rho   float64 `json:"rho"`
	Theta float64 `json:"theta"`

	// Score is the candidate's vote count, divided evenly when a long run
	// is split into several segments.
	Score float64 `json:"score"`

	Start   Vec2 `json:"start"`
	End     Vec2 `json:"end"`
	Tangent Vec2 `json:"tangent"`
	Normal  Vec2 `json:"normal"`

	// SupportingPixels counts the edge pixels claimed by this segment.
	SupportingPixels int `json:"supporting_pixels"`

	// EdgeCoverage is supporting pixels per unit of segment length.
	EdgeCoverage float64 `json:"edge_coverage"`

	// DirectionConsistency is the mean agreement (0..1) between individual
	// pixel gradients and the segment's average gradient.
	DirectionConsistency float64 `json:"direction_consistency"`

	Source Source `json:"source"`
}

// Length returns the distance between the segment's endpoints.
func (s LineSegment) Length() float64 {
	return s.End.Sub(s.Start).Length()
}

// Midpoint returns the point halfway between the segment's endpoints.
func (s LineSegment) Midpoint() Vec2 {
	return Vec2{(s.Start.X + s.End.X) / 2, (s.Start.Y + s.End.Y) / 2}
}

// DistanceTo returns the distance from p to the nearest point on the
// segment, clamping the projection to the segment's extent.
func (s LineSegment) DistanceTo(p Vec2) float64 {
	d := s.End.Sub(s.Start)
	l2 := d.Dot(d)
	if l2 == 0 {
		return p.Sub(s.Start).Length()
	}
	t := p.Sub(s.Start).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(s.Start.Add(d.Scale(t))).Length()
}

// Nearest returns the segment closest to p within maxDistance, or nil when
// no segment qualifies. Ties keep the earlier (higher ranked) segment.
func Nearest(segments []LineSegment, p Vec2, maxDistance float64) *LineSegment {
	var best *LineSegment
	bestDist := maxDistance
	for i := range segments {
		d := segments[i].DistanceTo(p)
		if d > maxDistance {
			continue
		}
		if best == nil || d < bestDist {
			best = &segments[i]
			bestDist = d
		}
	}
	return best
}
