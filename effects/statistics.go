package effects

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/particle"
)

// BinRow is one time-sampled row of the binned statistics output: the
// domain sliced into nBins slabs along one axis, each carrying its mean
// y-velocity and particle density. ioutil's stats writer formats each
// row itself with encoding/csv; it does not read these csv tags.
type BinRow struct {
	Time         float64   `csv:"time"`
	VelocityBins []float64 `csv:"-"`
	DensityBins  []float64 `csv:"-"`
}

// ComputeBinStats slices the domain along axis into nBins equal slabs and
// reports, per slab, the mean particle y-velocity (via gonum/stat.Mean)
// and the particle count divided by sliceVolume (the raw count when
// sliceVolume <= 0). DEAD particles are excluded.
func ComputeBinStats(e *env.Environment, axis int, nBins int, time float64, sliceVolume float64) BinRow {
	lo := e.Boundary.Origin[axis]
	width := e.Boundary.Extent[axis] / float64(nBins)

	velY := make([][]float64, nBins)
	counts := make([]int, nBins)

	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if p.State == particle.Dead {
			return
		}
		bin := int((p.Position[axis] - lo) / width)
		if bin < 0 {
			bin = 0
		}
		if bin >= nBins {
			bin = nBins - 1
		}
		velY[bin] = append(velY[bin], p.Velocity.Y())
		counts[bin]++
	})

	velBins := make([]float64, nBins)
	densBins := make([]float64, nBins)
	for i := 0; i < nBins; i++ {
		if len(velY[i]) > 0 {
			velBins[i] = stat.Mean(velY[i], nil)
		}
		if sliceVolume > 0 {
			densBins[i] = float64(counts[i]) / sliceVolume
		} else {
			densBins[i] = float64(counts[i])
		}
	}

	return BinRow{Time: time, VelocityBins: velBins, DensityBins: densBins}
}
