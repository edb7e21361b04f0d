package grid

import (
	"iter"
	"sync"

	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// CellType is a bitfield describing a cell's position relative to the
// domain boundary.
type CellType uint16

const (
	Inner CellType = 1 << iota
	BoundaryLeft
	BoundaryRight
	BoundaryTop
	BoundaryBottom
	BoundaryFront
	BoundaryBack
	Outside
)

// BoundaryMask selects every BOUNDARY_* bit.
const BoundaryMask = BoundaryLeft | BoundaryRight | BoundaryTop | BoundaryBottom | BoundaryFront | BoundaryBack

// Has reports whether t carries at least one bit of mask.
func (t CellType) Has(mask CellType) bool { return t&mask != 0 }

// IsBoundary reports whether the cell touches at least one domain face.
func (t CellType) IsBoundary() bool { return t.Has(BoundaryMask) }

// GridCell is one cell of the uniform linked-cell decomposition. Its
// particle membership is the slice of stable ids currently inside it;
// the mutex backs the cell-lock integrator strategy (spec.md §5) and is
// otherwise unused by the serial and spatial-decomposition strategies.
type GridCell struct {
	Origin     vecmath.Vec3
	Size       vecmath.Vec3
	Idx        vecmath.Int3
	Type       CellType
	Particles  []particle.ID
	mu         sync.Mutex
}

// Lock acquires the cell's mutex (cell-lock strategy only).
func (c *GridCell) Lock() { c.mu.Lock() }

// Unlock releases the cell's mutex.
func (c *GridCell) Unlock() { c.mu.Unlock() }

// Insert adds id to the cell's membership.
func (c *GridCell) Insert(id particle.ID) {
	c.Particles = append(c.Particles, id)
}

// Remove deletes id from the cell's membership, if present.
func (c *GridCell) Remove(id particle.ID) {
	for i, p := range c.Particles {
		if p == id {
			c.Particles[i] = c.Particles[len(c.Particles)-1]
			c.Particles = c.Particles[:len(c.Particles)-1]
			return
		}
	}
}

// Len returns the number of particles currently in the cell.
func (c *GridCell) Len() int { return len(c.Particles) }

// UniquePairs yields every (i,j) index pair with i<j into c.Particles —
// the self-pair interaction set for a (cell, cell) CellPair.
func (c *GridCell) UniquePairs() iter.Seq2[particle.ID, particle.ID] {
	return func(yield func(particle.ID, particle.ID) bool) {
		for i := 0; i < len(c.Particles); i++ {
			for j := i + 1; j < len(c.Particles); j++ {
				if !yield(c.Particles[i], c.Particles[j]) {
					return
				}
			}
		}
	}
}

// CrossPairs yields the full Cartesian product of a.Particles x b.Particles
// — the interaction set for a (cell1, cell2) CellPair with cell1 != cell2.
func CrossPairs(a, b *GridCell) iter.Seq2[particle.ID, particle.ID] {
	return func(yield func(particle.ID, particle.ID) bool) {
		for _, p1 := range a.Particles {
			for _, p2 := range b.Particles {
				if !yield(p1, p2) {
					return
				}
			}
		}
	}
}
