package integrator

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/grid"
)

// SpatialDecomposition is the block/colour parallel strategy: the cell
// lattice is partitioned once (at construction, since cell geometry is
// static) into data-parallel interior blocks plus three axis-aligned
// communication colour sets (grid.BlockSets). Each step runs the interior
// blocks concurrently, then each colour class of each axis in turn —
// same-colour pairs never share a cell (grid.TestBuildBlocksColorsAreDisjoint),
// so a colour class needs no locking, only a barrier against the next
// colour and the next axis. Adapted from the worker-chunk dispatch in
// pthm-soup/game/parallel.go's updateBehaviorAndPhysicsParallel.
type SpatialDecomposition struct {
	Workers int
	blocks  grid.BlockSets
}

// NewSpatialDecomposition partitions e's grid into roughly targetBlocks
// regions. Call once per grid (not per step); the partition depends only
// on cell geometry, which never changes after Build.
func NewSpatialDecomposition(e *env.Environment, targetBlocks int, workers int) *SpatialDecomposition {
	return &SpatialDecomposition{
		Workers: workers,
		blocks:  e.Grid.BuildBlocks(targetBlocks),
	}
}

func (s *SpatialDecomposition) workerCount() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// AccumulateForces implements ForceAccumulator.
func (s *SpatialDecomposition) AccumulateForces(e *env.Environment) {
	s.runBlocks(e, s.blocks.Interior)
	s.runColor(e, s.blocks.CommX.Color0)
	s.runColor(e, s.blocks.CommX.Color1)
	s.runColor(e, s.blocks.CommY.Color0)
	s.runColor(e, s.blocks.CommY.Color1)
	s.runColor(e, s.blocks.CommZ.Color0)
	s.runColor(e, s.blocks.CommZ.Color1)
}

// runBlocks processes every interior block's pair list concurrently.
// Blocks never share a cell by construction, so no synchronisation beyond
// the final barrier is needed.
func (s *SpatialDecomposition) runBlocks(e *env.Environment, blocks []grid.Block) {
	if len(blocks) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, bounds := range chunkBounds(len(blocks), s.workerCount()) {
		lo, hi := bounds[0], bounds[1]
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				for _, pair := range blocks[i].Pairs {
					accumulatePair(e, pair)
				}
			}
		}(lo, hi)
	}
	wg.Wait()
}

// runColor processes one colour class of one axis's communication pairs
// concurrently; same-colour pairs are cell-disjoint, so no locking is
// needed, only the barrier at the end before the next colour/axis runs.
func (s *SpatialDecomposition) runColor(e *env.Environment, pairs []grid.CellPair) {
	if len(pairs) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, bounds := range chunkBounds(len(pairs), s.workerCount()) {
		lo, hi := bounds[0], bounds[1]
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				accumulatePair(e, pairs[i])
			}
		}(lo, hi)
	}
	wg.Wait()
}
