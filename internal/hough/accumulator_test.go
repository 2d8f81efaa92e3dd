package hough

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/line-tools-mcp/internal/parallel"
)

func TestAccumulatorEnsureDimensions(t *testing.T) {
	var acc Accumulator
	acc.ensure(100, 100, 180, 1.0)

	rhoBins, thetaBins := acc.Dims()
	wantRho := int(math.Ceil(2 * math.Hypot(100, 100)))
	assert.Equal(t, wantRho, rhoBins)
	assert.Equal(t, 180, thetaBins)
	assert.Len(t, acc.cells, wantRho*180)
	assert.InDelta(t, math.Hypot(100, 100), acc.maxRho, 1e-12)
}

func TestAccumulatorEnsureReusesBacking(t *testing.T) {
	var acc Accumulator
	acc.ensure(100, 100, 180, 1.0)
	first := &acc.cells[0]

	acc.ensure(100, 100, 180, 1.0)
	assert.Same(t, first, &acc.cells[0], "unchanged dimensions must not reallocate")

	acc.ensure(100, 100, 180, 2.0)
	rhoBins, _ := acc.Dims()
	assert.Equal(t, int(math.Ceil(math.Hypot(100, 100))), rhoBins, "halving resolution halves the rho bins")
}

func TestAccumulatorClearZeroesEveryCell(t *testing.T) {
	var acc Accumulator
	acc.ensure(64, 48, 90, 1.0)
	for i := range acc.cells {
		acc.cells[i] = int32(i%7 + 1)
	}

	acc.clear(nil)

	rhoBins, thetaBins := acc.Dims()
	for r := 0; r < rhoBins; r++ {
		for th := 0; th < thetaBins; th++ {
			if acc.At(r, th) != 0 {
				t.Fatalf("cell (%d,%d) = %d after clear", r, th, acc.At(r, th))
			}
		}
	}
}

func TestAccumulatorClearWithPool(t *testing.T) {
	pool := parallel.NewPool(4)
	defer pool.Close()

	var acc Accumulator
	acc.ensure(200, 200, 180, 0.5)
	for i := range acc.cells {
		acc.cells[i] = 9
	}

	acc.clear(pool)

	for i, v := range acc.cells {
		if v != 0 {
			t.Fatalf("cell %d = %d after parallel clear", i, v)
		}
	}
}

func TestAccumulatorAddAndAt(t *testing.T) {
	var acc Accumulator
	acc.ensure(10, 10, 16, 1.0)

	acc.add(3, 5, 4)
	acc.add(3, 5, 6)
	assert.Equal(t, 10, acc.At(3, 5))
	assert.Equal(t, 0, acc.At(3, 6))
	assert.Equal(t, 10, acc.MaxVotes())
}

func TestAccumulatorBinValues(t *testing.T) {
	var acc Accumulator
	acc.ensure(30, 40, 180, 1.0) // diagonal 50

	require.InDelta(t, 50, acc.maxRho, 1e-12)
	assert.InDelta(t, -50, acc.RhoValue(0), 1e-12)
	assert.InDelta(t, 0, acc.RhoValue(50), 1e-12)
	assert.InDelta(t, 0, acc.ThetaValue(0), 1e-12)
	assert.InDelta(t, math.Pi/2, acc.ThetaValue(90), 1e-12)
}

func TestIsLocalMaxPlateau(t *testing.T) {
	var acc Accumulator
	acc.ensure(10, 10, 16, 1.0)
	acc.add(5, 4, 8)
	acc.add(5, 5, 8)

	// Equal neighbors do not suppress each other.
	assert.True(t, acc.isLocalMax(5, 4, 1, 8))
	assert.True(t, acc.isLocalMax(5, 5, 1, 8))

	acc.add(5, 5, 1)
	assert.False(t, acc.isLocalMax(5, 4, 1, 8), "strictly greater neighbor suppresses")
	assert.True(t, acc.isLocalMax(5, 5, 1, 9))
}
