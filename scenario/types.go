// Package scenario reads and writes the TXT and XML scenario file
// formats (spec.md §6): the declarative description of a simulation run
// — particle sources, force laws, the domain boundary, and optional
// thermostat — plus the checkpoint format used to resume a run. Build
// wires a parsed Scenario into a live env.Environment, force.Registry,
// boundary.Boundary and effects controllers.
package scenario

import (
	"github.com/pthm-cable/molsim/boundary"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// General is the scenario's "general:" section: run duration, timestep,
// output cadence, force cutoff, parallel strategy selector, and output
// basename.
type General struct {
	Duration         float64
	Dt               float64
	WriteFreq        int
	CutoffRadius     float64
	ParallelStrategy int // 0 = serial, 1 = cell-lock, 2 = spatial-decomposition
	OutputBaseName   string
}

// ParticleSpec is one "particles:" row: an explicit single particle.
type ParticleSpec struct {
	Position vecmath.Vec3
	Velocity vecmath.Vec3
	Mass     float64
	Type     int

	Force    vecmath.Vec3
	HasForce bool

	OldForce    vecmath.Vec3
	HasOldForce bool
}

// CuboidSpec is one "cuboids:" row: a lattice block of particles.
type CuboidSpec struct {
	Origin, Velocity vecmath.Vec3
	Counts           vecmath.Int3
	Width            float64
	Mass             float64
	ThermalV         float64
	Dim              int
	Type             int
	State            particle.State
}

// SphereSpec is one "spheres:" row: a lattice ball of particles.
type SphereSpec struct {
	Origin, Velocity vecmath.Vec3
	RadiusCells       float64
	Width             float64
	Mass              float64
	ThermalV          float64
	Dim               int
	Type              int
	State             particle.State
}

// MembraneSpec is one "membranes:" row: a 2-D lattice sheet with harmonic
// springs between 8-neighbours.
type MembraneSpec struct {
	Origin, Velocity vecmath.Vec3
	Counts           vecmath.Int3
	Width            float64
	Mass             float64
	SpringK          float64
	Type             int
}

// ForceSpec is one "force:" row, kept in its raw parsed form until Build
// dispatches on Kind.
type ForceSpec struct {
	Kind   string // "lennard jones", "inverse square", "gravity", "pull force"
	Values []float64
}

// EnvironmentSpec is the "environment:" section: domain box, cell size,
// and the six per-face boundary rules (order: Left, Right, Bottom, Top,
// Back, Front — boundary.Face's own iota order).
type EnvironmentSpec struct {
	Origin, Extent vecmath.Vec3
	GridConstant   float64
	Rules          [6]boundary.Rule
}

// ThermostatSpec is the "thermostats:" section. A TargetTemp or InitTemp
// of -1 means "disabled" (effects.NoTemp shares that sentinel value).
type ThermostatSpec struct {
	InitTemp     float64
	AdjustFreq   int
	TargetTemp   float64
	MaxDeltaTemp float64
}

// Scenario is the full parsed contents of one scenario file.
type Scenario struct {
	General     General
	Particles   []ParticleSpec
	Cuboids     []CuboidSpec
	Spheres     []SphereSpec
	Membranes   []MembraneSpec
	Forces      []ForceSpec
	Environment EnvironmentSpec
	Thermostat  *ThermostatSpec
}
