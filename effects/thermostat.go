// Package effects layers the optional per-step controllers on top of an
// Environment: temperature control, time-bounded external forces, and
// binned trajectory statistics.
package effects

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/mb"
	"github.com/pthm-cable/molsim/particle"
)

// NoTemp is the sentinel meaning "thermostat target disabled".
const NoTemp = -1

// Thermostat holds the target temperature and the maximum per-adjustment
// change, per spec.md §4.5.
type Thermostat struct {
	TargetTemp   float64
	MaxDeltaTemp float64
}

// SetInitialTemperature replaces every ALIVE particle's velocity with a
// fresh Maxwell-Boltzmann draw at thermal speed sqrt(initTemp/mass).
// STATIONARY and DEAD particles are left untouched.
func SetInitialTemperature(e *env.Environment, initTemp float64, rng *rand.Rand) {
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if p.State != particle.Alive {
			return
		}
		thermalV := math.Sqrt(initTemp / p.Mass)
		p.Velocity = mb.Sample(thermalV, e.Dim, rng)
	})
}

// AdjustTemperature is a no-op when TargetTemp is NoTemp; otherwise it
// clamps the move toward TargetTemp to MaxDeltaTemp and rescales every
// ALIVE particle's velocity by the resulting beta = sqrt(T_new/T_current).
// Operates on the raw (non-drift-corrected) temperature by default —
// pass a non-nil meanV to Environment.Temperature upstream if centre-of-
// mass drift removal is wanted instead.
func (t *Thermostat) AdjustTemperature(e *env.Environment) {
	if t.TargetTemp == NoTemp {
		return
	}
	current := e.Temperature(nil)
	if current <= 0 || math.IsNaN(current) {
		return
	}
	delta := t.TargetTemp - current
	if delta > t.MaxDeltaTemp {
		delta = t.MaxDeltaTemp
	} else if delta < -t.MaxDeltaTemp {
		delta = -t.MaxDeltaTemp
	}
	beta := math.Sqrt((current + delta) / current)

	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if p.State != particle.Alive {
			return
		}
		p.Velocity = p.Velocity.Scale(beta)
	})
}
