package integrator

import (
	"github.com/pthm-cable/molsim/effects"
	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// Options bundles the per-step knobs that sit outside the force
// accumulation strategy: the timestep, the optional thermostat and its
// trigger frequency, and the set of time-windowed constant forces.
type Options struct {
	Dt             float64
	TempAdjustFreq int
	Thermostat     *effects.Thermostat
	ConstantForces []*effects.ConstantForce
}

// Step advances the environment by one Störmer-Verlet step (spec.md
// §4.7's phases, plus the bonded-spring pass). acc supplies phase 5
// (pairwise force accumulation); everything else is identical across
// strategies.
// stepIndex is the 1-based step counter (for the thermostat's frequency
// gate) and t is the simulation time at the start of the step.
func Step(e *env.Environment, acc ForceAccumulator, opts Options, stepIndex int, t float64) error {
	// Phase 1: position update, x(t+dt) = x(t) + v(t)*dt + F(t)/(2m)*dt^2.
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if p.State != particle.Alive {
			return
		}
		p.OldPosition = p.Position
		accel := p.Force.Scale(opts.Dt * opts.Dt / (2 * p.Mass))
		p.Position = p.Position.Add(p.Velocity.Scale(opts.Dt)).Add(accel)
	})

	// Phase 2: grid migration for every particle whose position changed.
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if p.State != particle.Alive {
			return
		}
		e.Grid.Migrate(p, id)
	})

	// Phase 3: force reset, preserving F(t) as OldForce for phase 7.
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		p.OldForce = p.Force
		p.Force = vecmath.Zero
	})

	// Phase 4: boundary dispatch. Apply is a no-op for particles in an
	// Inner cell, so every non-DEAD particle can be offered unconditionally;
	// iterating the store's stable id slice (rather than a grid cell's
	// membership slice) keeps this safe even though Apply may itself
	// mutate cell membership via Migrate/Remove.
	var boundaryErr error
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if boundaryErr != nil || p.State == particle.Dead {
			return
		}
		if err := e.ApplyBoundary(p, id); err != nil {
			boundaryErr = err
		}
	})
	if boundaryErr != nil {
		return boundaryErr
	}

	// Phase 5: pairwise force accumulation, strategy-specific.
	acc.AccumulateForces(e)

	// Phase 5b: bonded harmonic springs, evaluated directly per bonded
	// pair rather than discovered through the grid's cell-pair list.
	e.ApplyBonds()

	// Phase 6: time-windowed external forces.
	for _, cf := range opts.ConstantForces {
		cf.Apply(e.Store, t)
	}

	// Phase 7: velocity update, v(t+dt) = v(t) + (F(t)+F(t+dt))/(2m)*dt.
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if p.State != particle.Alive {
			return
		}
		p.Velocity = p.Velocity.Add(p.Force.Add(p.OldForce).Scale(opts.Dt / (2 * p.Mass)))
	})

	// Phase 8: thermostat, gated by frequency.
	if opts.Thermostat != nil && opts.TempAdjustFreq > 0 && stepIndex%opts.TempAdjustFreq == 0 {
		opts.Thermostat.AdjustTemperature(e)
	}
	return nil
}
