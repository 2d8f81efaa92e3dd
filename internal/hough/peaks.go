package hough

import "sort"

// PeakCandidate is a locally maximal accumulator cell: one candidate
// carrier line identified by its bins and vote count.
type PeakCandidate struct {
	RhoBin   int
	ThetaBin int
	Score    int
}

// detectPeaks scans the accumulator for cells at or above the vote
// threshold that are maximal within the suppression window, then ranks
// them by score and truncates to MaxLines. The scan runs in raster order
// and the sort is stable, so equal scores keep their discovery order.
func (d *Detector) detectPeaks() {
	d.peaks = d.peaks[:0]
	h := d.params.NMSWindowSize / 2
	rhoBins, thetaBins := d.acc.Dims()

	// Rho stays h away from the grid edge; theta wraps, so every theta bin
	// is scanned.
	for r := h; r < rhoBins-h; r++ {
		for t := 0; t < thetaBins; t++ {
			v := d.acc.At(r, t)
			if v < d.params.PeakThreshold {
				continue
			}
			if !d.acc.isLocalMax(r, t, h, v) {
				continue
			}
			d.peaks = append(d.peaks, PeakCandidate{RhoBin: r, ThetaBin: t, Score: v})
		}
	}

	sort.SliceStable(d.peaks, func(i, j int) bool {
		return d.peaks[i].Score > d.peaks[j].Score
	})
	if len(d.peaks) > d.params.MaxLines {
		d.peaks = d.peaks[:d.params.MaxLines]
	}
}
