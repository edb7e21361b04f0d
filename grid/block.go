package grid

import "github.com/pthm-cable/molsim/vecmath"

// Block is a contiguous range of cell indices assigned to one spatial
// decomposition worker. Pairs fully inside the block (both cells belong
// to it) can be processed without coordinating with any other block.
type Block struct {
	Origin vecmath.Int3 // inclusive lower cell index
	Extent vecmath.Int3 // size in cells along each axis
	Pairs  []CellPair   // interior pairs: both cells belong to this block
}

// Contains reports whether cell index idx falls inside the block.
func (b Block) Contains(idx vecmath.Int3) bool {
	for axis := 0; axis < 3; axis++ {
		if idx[axis] < b.Origin[axis] || idx[axis] >= b.Origin[axis]+b.Extent[axis] {
			return false
		}
	}
	return true
}

// ColorSet splits the CellPairs crossing one axis of the block
// decomposition into two colour classes. Within a single colour, no two
// pairs share a cell, so the whole slice can run under one goroutine pool
// without any per-cell locking (spec.md §5, "spatial decomposition").
type ColorSet struct {
	Color0 []CellPair
	Color1 []CellPair
}

// BlockSets is the full partition of a ParticleGrid's pair list produced
// by BuildBlocks: one set of data-parallel interior blocks plus three
// axis-aligned communication colour sets.
type BlockSets struct {
	Interior    []Block
	CommX       ColorSet
	CommY       ColorSet
	CommZ       ColorSet
}
