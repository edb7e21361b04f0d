package grid

import (
	"math"

	"github.com/pthm-cable/molsim/vecmath"
)

// BuildBlocks partitions the cell lattice into roughly targetBlocks
// contiguous regions and classifies every pair from Pairs() as either
// interior to one block or crossing between two, colouring the crossing
// pairs by axis so that spec.md's spatial-decomposition strategy can run
// each colour class lock-free (see package doc).
func (g *ParticleGrid) BuildBlocks(targetBlocks int) BlockSets {
	if targetBlocks < 1 {
		targetBlocks = 1
	}
	perAxis := axisSplitCounts(g.Dim, g.Counts, targetBlocks)

	ranges := [3][]axisRange{}
	for axis := 0; axis < 3; axis++ {
		ranges[axis] = splitAxis(g.Counts[axis], perAxis[axis])
	}

	var blocks []Block
	blockOf := make(map[vecmath.Int3]int, len(ranges[0])*len(ranges[1])*len(ranges[2]))
	for _, rx := range ranges[0] {
		for _, ry := range ranges[1] {
			for _, rz := range ranges[2] {
				b := Block{
					Origin: vecmath.Int3{rx.start, ry.start, rz.start},
					Extent: vecmath.Int3{rx.length, ry.length, rz.length},
				}
				blocks = append(blocks, b)
				id := len(blocks) - 1
				for x := rx.start; x < rx.start+rx.length; x++ {
					for y := ry.start; y < ry.start+ry.length; y++ {
						for z := rz.start; z < rz.start+rz.length; z++ {
							blockOf[vecmath.Int3{x, y, z}] = id
						}
					}
				}
			}
		}
	}

	var sets BlockSets
	for _, pair := range g.Pairs() {
		id1, ok1 := blockOf[pair.C1]
		id2, ok2 := blockOf[pair.C2]
		if !ok1 || !ok2 {
			continue
		}
		if id1 == id2 {
			blocks[id1].Pairs = append(blocks[id1].Pairs, pair)
			continue
		}
		axis, col := crossingAxisAndColor(blocks[id1], blocks[id2])
		switch axis {
		case 0:
			appendColor(&sets.CommX, col, pair)
		case 1:
			appendColor(&sets.CommY, col, pair)
		default:
			appendColor(&sets.CommZ, col, pair)
		}
	}
	sets.Interior = blocks
	g.blocks = sets
	return sets
}

// Blocks returns the BlockSets computed by the most recent BuildBlocks
// call.
func (g *ParticleGrid) Blocks() BlockSets { return g.blocks }

type axisRange struct{ start, length int }

// splitAxis divides n cells into parts contiguous ranges, as evenly as
// possible; the first n%parts ranges absorb the one-cell remainder.
func splitAxis(n, parts int) []axisRange {
	if parts > n {
		parts = n
	}
	if parts < 1 {
		parts = 1
	}
	base := n / parts
	rem := n % parts
	ranges := make([]axisRange, parts)
	pos := 0
	for i := 0; i < parts; i++ {
		l := base
		if i < rem {
			l++
		}
		ranges[i] = axisRange{start: pos, length: l}
		pos += l
	}
	return ranges
}

// axisSplitCounts picks per-axis block counts whose product is close to
// targetBlocks, distributed roughly evenly across the active axes.
func axisSplitCounts(dim int, counts vecmath.Int3, targetBlocks int) [3]int {
	var out [3]int
	active := dim
	if active < 1 {
		active = 1
	}
	root := math.Pow(float64(targetBlocks), 1.0/float64(active))
	for axis := 0; axis < 3; axis++ {
		if axis >= dim {
			out[axis] = 1
			continue
		}
		n := int(math.Round(root))
		if n < 1 {
			n = 1
		}
		if n > counts[axis] {
			n = counts[axis]
		}
		out[axis] = n
	}
	return out
}

// crossingAxisAndColor finds the first axis (x, then y, then z) along
// which blocks a and b differ; a diagonal stencil pair can differ on more
// than one axis, and only the first is used. It assigns a 2-colour class
// from the lower of the two blocks' indices on that axis,
// so that same-colour block-pairs never share a block.
func crossingAxisAndColor(a, b Block) (axis int, color int) {
	for ax := 0; ax < 3; ax++ {
		if a.Origin[ax] != b.Origin[ax] {
			lo := a.Origin[ax]
			if b.Origin[ax] < lo {
				lo = b.Origin[ax]
			}
			return ax, lo % 2
		}
	}
	return 0, 0
}

func appendColor(cs *ColorSet, color int, pair CellPair) {
	if color == 0 {
		cs.Color0 = append(cs.Color0, pair)
	} else {
		cs.Color1 = append(cs.Color1, pair)
	}
}
