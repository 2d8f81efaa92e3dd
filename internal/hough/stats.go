package hough

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// angleHistogramBins buckets theta over [0, pi) in 15-degree steps.
const angleHistogramBins = 12

// SegmentStats summarizes one detection pass for tool output and logging.
type SegmentStats struct {
	Count int `json:"count"`

	TotalLength  float64 `json:"total_length"`
	MeanLength   float64 `json:"mean_length"`
	MedianLength float64 `json:"median_length"`
	P95Length    float64 `json:"p95_length"`

	MeanScore float64 `json:"mean_score"`
	MaxScore  float64 `json:"max_score"`

	MeanCoverage    float64 `json:"mean_coverage"`
	MeanConsistency float64 `json:"mean_consistency"`

	// AngleHistogram counts segments per 15-degree theta bucket over
	// [0, pi).
	AngleHistogram [angleHistogramBins]int `json:"angle_histogram"`
}

// ComputeStats aggregates the quality metrics of a pass's segments.
// An empty input yields the zero value.
func ComputeStats(segments []LineSegment) SegmentStats {
	var s SegmentStats
	s.Count = len(segments)
	if s.Count == 0 {
		return s
	}

	lengths := make([]float64, len(segments))
	scores := make([]float64, len(segments))
	coverages := make([]float64, len(segments))
	consistencies := make([]float64, len(segments))
	for i, seg := range segments {
		lengths[i] = seg.Length()
		scores[i] = seg.Score
		coverages[i] = seg.EdgeCoverage
		consistencies[i] = seg.DirectionConsistency

		bucket := int(seg.Theta / math.Pi * angleHistogramBins)
		if bucket >= angleHistogramBins {
			bucket = angleHistogramBins - 1
		}
		s.AngleHistogram[bucket]++
	}

	s.TotalLength = floats.Sum(lengths)
	s.MeanLength = stat.Mean(lengths, nil)
	s.MeanScore = stat.Mean(scores, nil)
	s.MaxScore = floats.Max(scores)
	s.MeanCoverage = stat.Mean(coverages, nil)
	s.MeanConsistency = stat.Mean(consistencies, nil)

	sort.Float64s(lengths)
	s.MedianLength = stat.Quantile(0.5, stat.Empirical, lengths, nil)
	s.P95Length = stat.Quantile(0.95, stat.Empirical, lengths, nil)
	return s
}
