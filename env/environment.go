// Package env composes the spatial grid, boundary engine and force
// registry into the single façade the integrator and scenario loader
// drive: particle construction, build-time validation, pairwise force
// evaluation with periodic-image correction, and temperature.
package env

import (
	"math"

	"github.com/pthm-cable/molsim/boundary"
	"github.com/pthm-cable/molsim/force"
	"github.com/pthm-cable/molsim/grid"
	"github.com/pthm-cable/molsim/molerr"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// CenterOrigin is the CENTER_BOUNDARY_ORIGIN sentinel: a boundary origin
// component set to +Inf is resolved at Build to -extent/2 on that axis.
var CenterOrigin = math.Inf(1)

// AutoGridConstant tells Build to default the cell size to the force
// registry's cutoff (or the domain extent, if the registry has no
// cutoff at all).
const AutoGridConstant = 0

// Environment is the simulation façade: one boundary, one force
// registry, one particle store, and (after Build) one spatial grid.
type Environment struct {
	Dim          int
	Boundary     *boundary.Boundary
	Registry     *force.Registry
	Store        *particle.Store
	GridConstant float64

	Grid *grid.ParticleGrid

	built bool
}

// New creates an unbuilt Environment over the given boundary and force
// registry.
func New(dim int, b *boundary.Boundary, registry *force.Registry) *Environment {
	return &Environment{
		Dim:      dim,
		Boundary: b,
		Registry: registry,
		Store:    particle.NewStore(),
	}
}

// AddParticle appends one particle pre-build and returns its id.
func (e *Environment) AddParticle(pos, vel vecmath.Vec3, mass float64, typ int, state particle.State) (particle.ID, error) {
	if e.built {
		return particle.ID{}, molerr.NewInvariantError("AddParticle called after Build")
	}
	return e.Store.Add(particle.Particle{Position: pos, Velocity: vel, Mass: mass, Type: typ, State: state}), nil
}

// Build resolves sentinel configuration, validates the boundary and
// particle placement, and constructs the spatial grid and force table.
// It is the only place build-time configuration errors surface.
func (e *Environment) Build() error {
	if e.built {
		return molerr.NewInvariantError("Build called twice")
	}
	for axis := 0; axis < 3; axis++ {
		if math.IsInf(e.Boundary.Origin[axis], 1) {
			e.Boundary.Origin[axis] = -e.Boundary.Extent[axis] / 2
		}
	}
	for axis := 0; axis < e.Dim; axis++ {
		if e.Boundary.Extent[axis] < 0 {
			return molerr.NewConfigError("boundary extent must be >= 0", nil)
		}
	}

	if err := e.Registry.Build(); err != nil {
		return err
	}

	gc := e.GridConstant
	if gc <= AutoGridConstant {
		gc = e.Registry.Cutoff
		if gc <= 0 {
			gc = maxExtent(e.Boundary.Extent, e.Dim)
		}
	}
	if e.Registry.Cutoff > 0 && gc < e.Registry.Cutoff {
		return molerr.NewConfigError("grid_constant must be >= force registry cutoff", nil)
	}

	g := grid.New(e.Boundary.Origin, e.Boundary.Extent, e.Dim)
	if err := g.Build(gc, e.Boundary.PeriodicFaces()); err != nil {
		return err
	}

	var placementErr error
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if placementErr != nil {
			return
		}
		if !e.inDomain(p.Position) {
			placementErr = molerr.NewConfigError("particle outside domain at build time", nil)
			return
		}
		g.Insert(p, id)
	})
	if placementErr != nil {
		return placementErr
	}

	e.Grid = g
	e.built = true
	return nil
}

func maxExtent(extent vecmath.Vec3, dim int) float64 {
	m := 0.0
	for axis := 0; axis < dim; axis++ {
		if extent[axis] > m {
			m = extent[axis]
		}
	}
	return m
}

func (e *Environment) inDomain(pos vecmath.Vec3) bool {
	for axis := 0; axis < e.Dim; axis++ {
		if pos[axis] < e.Boundary.Origin[axis] || pos[axis] >= e.Boundary.Origin[axis]+e.Boundary.Extent[axis] {
			return false
		}
	}
	return true
}

// Force returns the non-bonded pairwise force between p1 and p2, using
// wrap-aware displacement per pair.Periodicity. Zero if both particles
// are STATIONARY. Bonded harmonic springs are not part of this: they are
// attached per particle-id pair, not discovered via the linked cells, and
// are evaluated separately by ApplyBonds.
func (e *Environment) Force(p1, p2 *particle.Particle, pair grid.CellPair) vecmath.Vec3 {
	if p1.State == particle.Stationary && p2.State == particle.Stationary {
		return vecmath.Zero
	}
	diff := e.displacement(p1.Position, p2.Position, pair.Periodicity)
	return e.Registry.Pair(p1.Type, p2.Type, diff, p1.Mass, p2.Mass)
}

// ApplyBonds evaluates every registered harmonic spring once per step,
// independent of the grid's neighbour-pair list, and adds its Newton-3
// contribution into both endpoints' Force: f is the force on the first
// endpoint due to the second, so p1.Force += f, p2.Force -= f. DEAD
// particles contribute nothing.
func (e *Environment) ApplyBonds() {
	for ids, bond := range e.Registry.Bonds() {
		p1 := e.Store.Get(ids[0])
		p2 := e.Store.Get(ids[1])
		if p1.State == particle.Dead || p2.State == particle.Dead {
			continue
		}
		diff := p1.Position.Sub(p2.Position)
		f := bond.Evaluate(diff, diff.L2(), p1.Mass, p2.Mass)
		p1.Force = p1.Force.Add(f)
		p2.Force = p2.Force.Sub(f)
	}
}

func (e *Environment) displacement(a, b vecmath.Vec3, per grid.Periodicity) vecmath.Vec3 {
	diff := a.Sub(b)
	if per&grid.WrapX != 0 {
		diff[0] = wrap(diff[0], e.Boundary.Extent[0])
	}
	if per&grid.WrapY != 0 {
		diff[1] = wrap(diff[1], e.Boundary.Extent[1])
	}
	if per&grid.WrapZ != 0 {
		diff[2] = wrap(diff[2], e.Boundary.Extent[2])
	}
	return diff
}

// wrap translates a raw coordinate difference into (-extent/2, extent/2]
// so minimum-image forces stay continuous across a periodic face.
func wrap(d, extent float64) float64 {
	half := extent / 2
	if d > half {
		d -= extent
	} else if d < -half {
		d += extent
	}
	return d
}

// ApplyBoundary dispatches the boundary engine for one particle using
// its current cell membership.
func (e *Environment) ApplyBoundary(p *particle.Particle, id particle.ID) error {
	return e.Boundary.Apply(e.Grid, p, id)
}

// Temperature computes kinetic temperature over every non-DEAD particle:
// Σ m·|v-mean|² / (dim · n_alive). meanV is nil to use raw velocities
// (no centre-of-mass drift removal).
func (e *Environment) Temperature(meanV *vecmath.Vec3) float64 {
	var mean vecmath.Vec3
	if meanV != nil {
		mean = *meanV
	}
	sum := 0.0
	n := 0
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if p.State == particle.Dead {
			return
		}
		d := p.Velocity.Sub(mean)
		sum += p.Mass * d.L2Sq()
		n++
	})
	if n == 0 {
		return math.NaN()
	}
	return sum / (float64(e.Dim) * float64(n))
}
