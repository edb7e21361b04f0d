// Package integrator implements the Störmer-Verlet step (spec.md §4.7)
// and its three execution strategies for the pairwise-force phase:
// serial, cell-lock, and spatial-decomposition. All three share every
// single-threaded phase of Step; only force accumulation (phase 5) differs.
package integrator

import (
	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/grid"
	"github.com/pthm-cable/molsim/particle"
)

// ForceAccumulator is phase 5 of the Verlet step: walk the grid's
// neighbour-pair list (by whatever policy the strategy implements) and
// add each pair's Newton-3 force contribution into both particles.
type ForceAccumulator interface {
	AccumulateForces(e *env.Environment)
}

// applyPair evaluates one candidate particle pair's force and applies it
// with the Newton-3 sign convention: f is the force on p1 due to p2, so
// p1.Force += f, p2.Force -= f. DEAD particles contribute nothing (benign
// per spec.md §7).
func applyPair(e *env.Environment, id1, id2 particle.ID, pair grid.CellPair) {
	p1 := e.Store.Get(id1)
	p2 := e.Store.Get(id2)
	if p1.State == particle.Dead || p2.State == particle.Dead {
		return
	}
	f := e.Force(p1, p2, pair)
	p1.Force = p1.Force.Add(f)
	p2.Force = p2.Force.Sub(f)
}

// accumulatePair dispatches a single CellPair to the unique-index
// (self-pair) or full-Cartesian-product (distinct-cell) iteration,
// shared by every strategy.
func accumulatePair(e *env.Environment, pair grid.CellPair) {
	c1 := e.Grid.Cell(pair.C1)
	c2 := e.Grid.Cell(pair.C2)
	if pair.C1 == pair.C2 {
		for id1, id2 := range c1.UniquePairs() {
			applyPair(e, id1, id2, pair)
		}
		return
	}
	for id1, id2 := range grid.CrossPairs(c1, c2) {
		applyPair(e, id1, id2, pair)
	}
}

// chunkBounds splits n items across workers worker-sized contiguous
// chunks, teacher-style (pthm-soup/game/parallel.go's
// updateBehaviorAndPhysicsParallel chunking).
func chunkBounds(n, workers int) [][2]int {
	if workers < 1 {
		workers = 1
	}
	size := (n + workers - 1) / workers
	var bounds [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}
