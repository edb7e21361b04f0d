package integrator

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/molsim/env"
)

// CellLock is the per-cell-mutex parallel strategy: the pair list is
// split across Workers goroutines (teacher-style contiguous chunking,
// pthm-soup/game/parallel.go), and before touching either cell's
// membership a worker locks pair.C1 then pair.C2 (only pair.C1 when the
// pair is a self-pair). The half-stencil construction never emits the
// same unordered cell pair twice, so this fixed C1-then-C2 order can
// never deadlock against another goroutine's lock order.
type CellLock struct {
	Workers int
}

// AccumulateForces implements ForceAccumulator.
func (s CellLock) AccumulateForces(e *env.Environment) {
	pairs := e.Grid.Pairs()
	if len(pairs) == 0 {
		return
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var wg sync.WaitGroup
	for _, bounds := range chunkBounds(len(pairs), workers) {
		lo, hi := bounds[0], bounds[1]
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				pair := pairs[i]
				c1 := e.Grid.Cell(pair.C1)
				c2 := e.Grid.Cell(pair.C2)
				self := pair.C1 == pair.C2

				c1.Lock()
				if !self {
					c2.Lock()
				}
				accumulatePair(e, pair)
				if !self {
					c2.Unlock()
				}
				c1.Unlock()
			}
		}(lo, hi)
	}
	wg.Wait()
}
