package hough

import "math"

// angleTable caches sine and cosine for every theta bin so the vote kernel
// never calls the trig functions. Bin i covers angle i*step with
// step = pi/steps, so the table spans [0, pi).
type angleTable struct {
	steps int
	step  float64
	sin   []float64
	cos   []float64
}

func newAngleTable(steps int) *angleTable {
	t := &angleTable{
		steps: steps,
		step:  math.Pi / float64(steps),
		sin:   make([]float64, steps),
		cos:   make([]float64, steps),
	}
	for i := 0; i < steps; i++ {
		t.sin[i], t.cos[i] = math.Sincos(float64(i) * t.step)
	}
	return t
}

// theta returns the angle of bin i.
func (t *angleTable) theta(i int) float64 {
	return float64(i) * t.step
}
