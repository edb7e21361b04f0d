// Package grid implements the uniform linked-cell spatial index: cell
// classification, neighbour-pair enumeration with periodic wrap, particle
// migration between cells, and the colour-partitioned block layout used
// by the spatial-decomposition integrator strategy.
package grid

import (
	"math"

	"github.com/pthm-cable/molsim/molerr"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// PeriodicFaces records which of the six domain faces wrap. X is
// Left(-)/Right(+), Y is Bottom(-)/Top(+), Z is Back(-)/Front(+). Faces
// are independent: a face may be periodic while its opposite is not.
type PeriodicFaces struct {
	Left, Right   bool
	Bottom, Top   bool
	Back, Front   bool
}

// faceIsPeriodic reports whether the specific face bounding axis on the
// given side (sign<0: lower face, sign>=0: upper face) wraps. Faces are
// independent: a channel domain may be periodic on its outlet face only,
// without its inlet face agreeing (spec.md §8, "corner rule" scenario).
func (f PeriodicFaces) faceIsPeriodic(axis, sign int) bool {
	switch axis {
	case 0:
		if sign < 0 {
			return f.Left
		}
		return f.Right
	case 1:
		if sign < 0 {
			return f.Bottom
		}
		return f.Top
	default:
		if sign < 0 {
			return f.Back
		}
		return f.Front
	}
}

// ParticleGrid is the linked-cell spatial index over one rectangular
// domain. Cells are keyed by their integer index; a single sentinel cell
// at index (-1,-1,-1) collects every particle that has left the domain
// (OUTSIDE), pending removal or a boundary rule's disposition.
type ParticleGrid struct {
	Dim        int
	Origin     vecmath.Vec3
	Extent     vecmath.Vec3
	Counts     vecmath.Int3
	CellSize   vecmath.Vec3
	periodic   PeriodicFaces

	cells   map[vecmath.Int3]*GridCell
	outside *GridCell

	pairs  []CellPair
	blocks BlockSets
}

var outsideIdx = vecmath.Int3{-1, -1, -1}

// New allocates an unbuilt grid over [origin, origin+extent). dim must be
// 2 or 3; for dim==2 the z axis is collapsed to a single cell.
func New(origin, extent vecmath.Vec3, dim int) *ParticleGrid {
	return &ParticleGrid{
		Dim:    dim,
		Origin: origin,
		Extent: extent,
		cells:  make(map[vecmath.Int3]*GridCell),
	}
}

// Build partitions the domain into cells of at most gridConstant on a
// side (spec.md §4.1: n_d = ceil(extent_d / grid_constant)), classifies
// every cell's boundary membership, and allocates the OUTSIDE sentinel.
func (g *ParticleGrid) Build(gridConstant float64, periodic PeriodicFaces) error {
	if gridConstant <= 0 {
		return molerr.NewConfigError("grid_constant must be positive", nil)
	}
	g.periodic = periodic

	for axis := 0; axis < 3; axis++ {
		if axis >= g.Dim {
			g.Counts[axis] = 1
			g.CellSize[axis] = 1
			continue
		}
		ext := g.Extent[axis]
		if ext <= 0 {
			return molerr.NewConfigError("domain extent must be positive on every active axis", nil)
		}
		n := int(math.Ceil(ext / gridConstant))
		if n < 1 {
			n = 1
		}
		g.Counts[axis] = n
		g.CellSize[axis] = ext / float64(n)
	}

	for x := 0; x < g.Counts[0]; x++ {
		for y := 0; y < g.Counts[1]; y++ {
			for z := 0; z < g.Counts[2]; z++ {
				idx := vecmath.Int3{x, y, z}
				g.cells[idx] = &GridCell{
					Idx:    idx,
					Origin: g.cellOrigin(idx),
					Size:   g.CellSize,
					Type:   g.classify(idx),
				}
			}
		}
	}
	g.outside = &GridCell{Idx: outsideIdx, Type: Outside}

	if err := g.buildPairs(); err != nil {
		return err
	}
	return nil
}

func (g *ParticleGrid) cellOrigin(idx vecmath.Int3) vecmath.Vec3 {
	var o vecmath.Vec3
	for axis := 0; axis < 3; axis++ {
		o[axis] = g.Origin[axis] + float64(idx[axis])*g.CellSize[axis]
	}
	return o
}

func (g *ParticleGrid) classify(idx vecmath.Int3) CellType {
	var t CellType
	if idx[0] == 0 {
		t |= BoundaryLeft
	}
	if idx[0] == g.Counts[0]-1 {
		t |= BoundaryRight
	}
	if g.Dim > 1 {
		if idx[1] == 0 {
			t |= BoundaryBottom
		}
		if idx[1] == g.Counts[1]-1 {
			t |= BoundaryTop
		}
	}
	if g.Dim > 2 {
		if idx[2] == 0 {
			t |= BoundaryBack
		}
		if idx[2] == g.Counts[2]-1 {
			t |= BoundaryFront
		}
	}
	if t == 0 {
		t = Inner
	}
	return t
}

// WhatCell returns the index of the cell that would own pos, without
// regard to whether it currently lies inside the domain.
func (g *ParticleGrid) WhatCell(pos vecmath.Vec3) vecmath.Int3 {
	var idx vecmath.Int3
	for axis := 0; axis < 3; axis++ {
		if axis >= g.Dim {
			continue
		}
		c := int(math.Floor((pos[axis] - g.Origin[axis]) / g.CellSize[axis]))
		idx[axis] = c
	}
	return idx
}

// Cell returns the cell at idx, or the OUTSIDE sentinel if idx is not a
// valid interior index.
func (g *ParticleGrid) Cell(idx vecmath.Int3) *GridCell {
	if c, ok := g.cells[idx]; ok {
		return c
	}
	return g.outside
}

// InBounds reports whether idx addresses a real (non-sentinel) cell.
func (g *ParticleGrid) InBounds(idx vecmath.Int3) bool {
	_, ok := g.cells[idx]
	return ok
}

// Insert places a particle's id into the cell matching its position (or
// the OUTSIDE sentinel), recording the cell index on the particle itself.
func (g *ParticleGrid) Insert(p *particle.Particle, id particle.ID) {
	idx := g.WhatCell(p.Position)
	p.Cell = idx
	g.Cell(idx).Insert(id)
}

// Migrate re-homes a particle whose position has changed, moving it out
// of its recorded cell and into the cell matching its new position.
func (g *ParticleGrid) Migrate(p *particle.Particle, id particle.ID) {
	newIdx := g.WhatCell(p.Position)
	if newIdx == p.Cell {
		return
	}
	g.Cell(p.Cell).Remove(id)
	p.Cell = newIdx
	g.Cell(newIdx).Insert(id)
}

// Clear empties every cell's membership (including OUTSIDE) without
// discarding the cell lattice itself.
func (g *ParticleGrid) Clear() {
	for _, c := range g.cells {
		c.Particles = c.Particles[:0]
	}
	g.outside.Particles = g.outside.Particles[:0]
}

// Pairs returns the full half-stencil list of neighbouring cell pairs,
// built once by Build. Used directly by the serial and cell-lock
// integrator strategies.
func (g *ParticleGrid) Pairs() []CellPair { return g.pairs }

// forwardOffsets is the canonical 13-offset half stencil: for every
// ordered pair of distinct cells that are mutual nearest/next-nearest
// neighbours, exactly one of (off, -off) appears here, so iterating cells
// and applying these offsets visits every neighbour pair exactly once.
var forwardOffsets = []vecmath.Int3{
	{1, 0, 0}, {-1, 1, 0}, {0, 1, 0}, {1, 1, 0},
	{-1, -1, 1}, {0, -1, 1}, {1, -1, 1},
	{-1, 0, 1}, {0, 0, 1}, {1, 0, 1},
	{-1, 1, 1}, {0, 1, 1}, {1, 1, 1},
}

func (g *ParticleGrid) buildPairs() error {
	g.pairs = g.pairs[:0]
	for x := 0; x < g.Counts[0]; x++ {
		for y := 0; y < g.Counts[1]; y++ {
			for z := 0; z < g.Counts[2]; z++ {
				c1 := vecmath.Int3{x, y, z}
				g.pairs = append(g.pairs, CellPair{C1: c1, C2: c1})
				for _, off := range forwardOffsets {
					if g.Dim < 3 && off[2] != 0 {
						continue
					}
					if g.Dim < 2 && off[1] != 0 {
						continue
					}
					pair, ok, err := g.resolvePair(c1, off)
					if err != nil {
						return err
					}
					if ok {
						g.pairs = append(g.pairs, pair)
					}
				}
			}
		}
	}
	return nil
}

// resolvePair computes the neighbour of c1 along off, wrapping through a
// periodic face when the raw neighbour index falls outside the lattice.
// It reports ok=false when the neighbour doesn't exist (non-periodic
// boundary, or a collapsed axis in 2-D).
func (g *ParticleGrid) resolvePair(c1, off vecmath.Int3) (CellPair, bool, error) {
	c2 := c1
	var wrap Periodicity
	for axis := 0; axis < 3; axis++ {
		if off[axis] == 0 {
			continue
		}
		n := c1[axis] + off[axis]
		if n >= 0 && n < g.Counts[axis] {
			c2[axis] = n
			continue
		}
		sign := 1
		if n < 0 {
			sign = -1
		}
		if !g.periodic.faceIsPeriodic(axis, sign) {
			return CellPair{}, false, nil
		}
		c2[axis] = (n + g.Counts[axis]) % g.Counts[axis]
		switch axis {
		case 0:
			wrap |= WrapX
		case 1:
			wrap |= WrapY
		default:
			wrap |= WrapZ
		}
	}
	return CellPair{C1: c1, C2: c2, Periodicity: wrap}, true, nil
}
