// Package hough extracts straight line segments from a field of edge
// pixels and their local gradient vectors.
//
// Detection runs in three stages per pass. First, every edge pixel casts
// weighted votes into a (rho, theta) accumulator, but only for the handful
// of theta bins near its own gradient direction (edge gradients are
// perpendicular to the edge, so the rest of the bins cannot describe a line
// through that pixel). Second, a windowed non-maximum-suppression scan
// collects locally maximal cells above the vote threshold as candidate
// carrier lines, ranked by score. Third, each candidate gathers the
// still-unclaimed edge pixels near its line, orders them by projection,
// splits them into contiguous runs at projection gaps, subdivides long
// runs, filters the parts by support, density, magnitude, and gradient
// coherence, and emits the survivors as finite segments while claiming
// their pixels so weaker candidates cannot reuse them.
//
// # Coordinate System
//
// Pixel coordinates: x grows right, y grows down, (0, 0) top-left. Lines
// are parameterized as rho = x*cos(theta) + y*sin(theta) with theta in
// [0, pi) and rho signed, covering [-diagonal, +diagonal]. Field gradients
// arrive in a y-up convention and are flipped internally.
//
// # Concurrency
//
// The accumulator clear and the vote scatter are parallel maps over cell
// ranges and pixel ranges, run on an optional worker pool behind a
// completion barrier. Votes use atomic adds, so counts are exactly
// reproducible regardless of scheduling, and a repeated pass over unchanged
// input yields identical output. Peak detection and segment extraction are
// sequential: extraction's pixel claiming makes candidate order
// significant. A Detector must not be used from two goroutines at once.
//
// # Quality Filters
//
// A candidate part survives only if it keeps at least MinSupportingPixels
// pixels, spans at least half of SegmentMinLength, reaches MinEdgeCoverage
// pixels per unit length, averages a trustworthy gradient magnitude, and
// its pixel gradients agree with their mean direction by at least
// MinDirectionConsistency. Rejections are silent; they are the filter
// doing its job, not errors.
package hough
