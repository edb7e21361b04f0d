// Package mb provides the Maxwell-Boltzmann velocity sampler used to seed
// thermal noise onto newly created particles and onto the thermostat's
// initial-temperature reset. It is specified by spec.md only as the
// function mb(thermal_v, dim) -> v; this is that function.
package mb

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/molsim/vecmath"
)

// Sample draws a velocity vector whose components are independently
// normally distributed with standard deviation thermalV, zeroing out axes
// beyond dim (2 for a 2-D simulation, 3 for 3-D). This is the classical
// Maxwell-Boltzmann construction: each Cartesian velocity component of a
// particle in thermal equilibrium is Gaussian with variance k_B T / m,
// and thermalV == sqrt(k_B T / m) is supplied by the caller.
func Sample(thermalV float64, dim int, rng *rand.Rand) vecmath.Vec3 {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var v vecmath.Vec3
	for axis := 0; axis < dim && axis < 3; axis++ {
		v[axis] = thermalV * gaussian(rng)
	}
	return v
}

// gaussian draws one standard-normal sample via the Box-Muller transform.
// math/rand/v2 does not expose a normal distribution directly, so this is
// the idiomatic stdlib-only construction for it.
func gaussian(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
