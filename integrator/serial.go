package integrator

import "github.com/pthm-cable/molsim/env"

// Serial is the single-threaded force accumulation strategy: walk the
// grid's neighbour-pair list in build order. Simplest to reason about,
// and the reference the other two strategies are checked against.
type Serial struct{}

// AccumulateForces implements ForceAccumulator.
func (Serial) AccumulateForces(e *env.Environment) {
	for _, pair := range e.Grid.Pairs() {
		accumulatePair(e, pair)
	}
}
