package scenario

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/molsim/boundary"
	"github.com/pthm-cable/molsim/effects"
	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/force"
	"github.com/pthm-cable/molsim/molerr"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// BuildResult is the fully wired simulation a Scenario describes: a built
// Environment, the optional thermostat and its trigger frequency, and the
// time-windowed external forces (already bound to their marked particles).
type BuildResult struct {
	Env            *env.Environment
	General        General
	Thermostat     *effects.Thermostat
	TempAdjustFreq int
	ConstantForces []*effects.ConstantForce
}

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Build wires a parsed Scenario into a live simulation: the force
// registry and boundary from the "force:"/"environment:" sections, every
// particle source, and the optional thermostat/external forces.
func Build(sc *Scenario) (*BuildResult, error) {
	dim := inferDim(sc)

	b := &boundary.Boundary{
		Origin: sc.Environment.Origin,
		Extent: sc.Environment.Extent,
		Rules:  sc.Environment.Rules,
	}

	registry := force.NewRegistry()
	var constantForces []*effects.ConstantForce
	for _, fs := range sc.Forces {
		switch fs.Kind {
		case "lennard jones":
			if len(fs.Values) < 3 {
				return nil, molerr.NewConfigError("lennard-jones force needs epsilon, sigma, type", nil)
			}
			epsilon, sigma, typ := fs.Values[0], fs.Values[1], int(fs.Values[2])
			pot := force.NewLennardJones(epsilon, sigma, sc.General.CutoffRadius)
			registry.Register(typ, pot)
			b.WallPotential = pot
		case "inverse square":
			if len(fs.Values) < 2 {
				return nil, molerr.NewConfigError("inverse-square force needs G, type", nil)
			}
			g, typ := fs.Values[0], int(fs.Values[1])
			registry.Register(typ, force.NewInverseSquare(g, sc.General.CutoffRadius))
		case "gravity":
			if len(fs.Values) < 4 {
				return nil, molerr.NewConfigError("gravity force needs direction(3) and strength", nil)
			}
			constantForces = append(constantForces, &effects.ConstantForce{
				Direction:         vec3(fs.Values[0], fs.Values[1], fs.Values[2]),
				Strength:          fs.Values[3],
				Marker:            effects.MarkAll,
				TStart:            0,
				TEnd:              math.Inf(1),
				ConstAcceleration: true,
			})
		case "pull force":
			if len(fs.Values) < 12 {
				return nil, molerr.NewConfigError("pull-force needs direction(3), strength, box corners(6), tstart, tend", nil)
			}
			constAcc := len(fs.Values) >= 13 && fs.Values[12] != 0
			constantForces = append(constantForces, &effects.ConstantForce{
				Direction:         vec3(fs.Values[0], fs.Values[1], fs.Values[2]),
				Strength:          fs.Values[3],
				Marker:            effects.MarkBox(vec3(fs.Values[4], fs.Values[5], fs.Values[6]), vec3(fs.Values[7], fs.Values[8], fs.Values[9])),
				TStart:            fs.Values[10],
				TEnd:              fs.Values[11],
				ConstAcceleration: constAcc,
			})
		default:
			return nil, molerr.NewConfigError("unknown force kind: "+fs.Kind, nil)
		}
	}

	e := env.New(dim, b, registry)
	e.GridConstant = sc.Environment.GridConstant

	for _, spec := range sc.Particles {
		id, err := e.AddParticle(spec.Position, spec.Velocity, spec.Mass, spec.Type, particle.Alive)
		if err != nil {
			return nil, err
		}
		if spec.HasForce || spec.HasOldForce {
			p := e.Store.Get(id)
			if spec.HasForce {
				p.Force = spec.Force
			}
			if spec.HasOldForce {
				p.OldForce = spec.OldForce
			}
		}
	}
	for _, c := range sc.Cuboids {
		if _, err := e.AddCuboid(c.Origin, c.Velocity, c.Counts, c.Width, c.Mass, c.ThermalV, c.Type, c.Dim, c.State); err != nil {
			return nil, err
		}
	}
	for _, s := range sc.Spheres {
		if _, err := e.AddSphere(s.Origin, s.Velocity, s.RadiusCells, s.Width, s.Mass, s.ThermalV, s.Type, s.Dim, s.State); err != nil {
			return nil, err
		}
	}
	for _, m := range sc.Membranes {
		if _, err := e.AddMembrane(m.Origin, m.Velocity, m.Counts, m.Width, m.Mass, m.SpringK, sc.General.CutoffRadius, m.Type); err != nil {
			return nil, err
		}
	}

	if err := e.Build(); err != nil {
		return nil, err
	}

	for _, cf := range constantForces {
		cf.Bind(e.Store)
	}

	result := &BuildResult{Env: e, General: sc.General, ConstantForces: constantForces}
	if sc.Thermostat != nil {
		result.Thermostat = &effects.Thermostat{
			TargetTemp:   sc.Thermostat.TargetTemp,
			MaxDeltaTemp: sc.Thermostat.MaxDeltaTemp,
		}
		result.TempAdjustFreq = sc.Thermostat.AdjustFreq
		if sc.Thermostat.InitTemp != effects.NoTemp {
			effects.SetInitialTemperature(e, sc.Thermostat.InitTemp, newRNG())
		}
	}
	return result, nil
}

// inferDim picks the environment's dimensionality from the highest
// explicit dim any cuboid or sphere source declares, defaulting to 2 when
// none do (spec.md's scenario grammar has no standalone top-level "dim"
// field; per-source dim is the only signal available).
func inferDim(sc *Scenario) int {
	dim := 2
	for _, c := range sc.Cuboids {
		if c.Dim > dim {
			dim = c.Dim
		}
	}
	for _, s := range sc.Spheres {
		if s.Dim > dim {
			dim = s.Dim
		}
	}
	return dim
}

func vec3(x, y, z float64) vecmath.Vec3 {
	return vecmath.Vec3{x, y, z}
}
