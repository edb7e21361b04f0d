package grid

import "github.com/pthm-cable/molsim/vecmath"

// Periodicity records, for a CellPair whose two cells straddle the domain
// boundary, which axes wrap and in which direction. A pair with
// Periodicity == 0 is an ordinary interior neighbour pair.
type Periodicity uint8

const (
	WrapX Periodicity = 1 << iota
	WrapY
	WrapZ
)

// Any reports whether the pair wraps on at least one axis.
func (p Periodicity) Any() bool { return p != 0 }

// CellPair is one (half-stencil) neighbouring cell pair. Cells are
// addressed by index rather than pointer so CellPair stays a plain,
// copyable value independent of any one ParticleGrid instance's cell map.
type CellPair struct {
	C1, C2      vecmath.Int3
	Periodicity Periodicity
}
