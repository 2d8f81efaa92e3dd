package hough

import (
	"math"
	"sync/atomic"

	"github.com/ironsheep/line-tools-mcp/internal/parallel"
)

// clearGrain and voteGrain are the minimum chunk sizes handed to the worker
// pool; below these the scheduling overhead exceeds the work.
const (
	clearGrain = 4096
	voteGrain  = 256
)

// Accumulator is the Hough vote grid over (rho, theta) space.
//
// Cells are int32 counters updated with atomic adds during the vote phase,
// which keeps per-pass results exactly reproducible: integer adds commute,
// so the final counts do not depend on worker scheduling. Rho bin r covers
// distance r*rhoBinSize - maxRho where maxRho is the image diagonal, so
// signed distances map onto [0, rhoBins).
type Accumulator struct {
	rhoBins    int
	thetaBins  int
	rhoBinSize float64
	maxRho     float64
	cells      []int32 // row-major, rho*thetaBins + theta
}

// ensure resizes the grid for the given image and parameters. The backing
// array is reallocated only when the computed dimensions actually change;
// otherwise it is reused as-is (callers clear it every pass anyway).
func (a *Accumulator) ensure(width, height int, thetaBins int, rhoBinSize float64) {
	diag := math.Hypot(float64(width), float64(height))
	rhoBins := int(math.Ceil(2 * diag / rhoBinSize))

	a.maxRho = diag
	a.rhoBinSize = rhoBinSize
	if rhoBins == a.rhoBins && thetaBins == a.thetaBins {
		return
	}
	a.rhoBins = rhoBins
	a.thetaBins = thetaBins
	a.cells = make([]int32, rhoBins*thetaBins)
}

// clear zeroes every cell, in parallel chunks when a pool is supplied.
// The pool's completion barrier orders the writes before the vote phase.
func (a *Accumulator) clear(pool *parallel.Pool) {
	parallel.Run(pool, len(a.cells), clearGrain, func(lo, hi int) {
		cells := a.cells[lo:hi]
		for i := range cells {
			cells[i] = 0
		}
	})
}

// add atomically adds votes to cell (rhoBin, thetaBin).
func (a *Accumulator) add(rhoBin, thetaBin int, votes int32) {
	atomic.AddInt32(&a.cells[rhoBin*a.thetaBins+thetaBin], votes)
}

// Dims returns the grid dimensions as (rhoBins, thetaBins).
func (a *Accumulator) Dims() (rhoBins, thetaBins int) {
	return a.rhoBins, a.thetaBins
}

// At returns the vote count of cell (rhoBin, thetaBin).
func (a *Accumulator) At(rhoBin, thetaBin int) int {
	return int(a.cells[rhoBin*a.thetaBins+thetaBin])
}

// RhoValue returns the signed perpendicular distance at the center of a
// rho bin.
func (a *Accumulator) RhoValue(rhoBin int) float64 {
	return float64(rhoBin)*a.rhoBinSize - a.maxRho
}

// ThetaValue returns the angle of a theta bin in radians.
func (a *Accumulator) ThetaValue(thetaBin int) float64 {
	return float64(thetaBin) * math.Pi / float64(a.thetaBins)
}

// MaxVotes returns the largest cell value in the grid.
func (a *Accumulator) MaxVotes() int {
	var best int32
	for _, v := range a.cells {
		if v > best {
			best = v
		}
	}
	return int(best)
}

// isLocalMax reports whether cell (r, t) with value v has no strictly
// greater neighbor inside the (2h+1) x (2h+1) window. Theta wraps
// circularly; rho bins outside the grid are skipped.
func (a *Accumulator) isLocalMax(r, t, h int, v int) bool {
	for dr := -h; dr <= h; dr++ {
		nr := r + dr
		if nr < 0 || nr >= a.rhoBins {
			continue
		}
		for dt := -h; dt <= h; dt++ {
			if dr == 0 && dt == 0 {
				continue
			}
			nt := (t + dt + a.thetaBins) % a.thetaBins
			if a.At(nr, nt) > v {
				return false
			}
		}
	}
	return true
}
