package scenario

import (
	"encoding/xml"
	"math"
	"os"
	"strings"

	"github.com/pthm-cable/molsim/boundary"
	"github.com/pthm-cable/molsim/molerr"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// The XML schema mirrors original_source/src/io/input/xml's
// molSimSchema-generated shape (<simulation><parameters/><output/>
// <particles><particle .../></particles><cuboids>...): one element per
// particle source, attributes for every scalar field. encoding/xml is
// stdlib (DESIGN.md: no example repo parses a bespoke schema, and
// encoding/xml plus struct tags is the idiomatic Go answer for this).

type xmlSimulation struct {
	XMLName    xml.Name         `xml:"simulation"`
	Parameters xmlParameters    `xml:"parameters"`
	Output     xmlOutput        `xml:"output"`
	Particles  []xmlParticle    `xml:"particles>particle"`
	Cuboids    []xmlCuboid      `xml:"cuboids>cuboid"`
	Spheres    []xmlSphere      `xml:"spheres>sphere"`
	Membranes  []xmlMembrane    `xml:"membranes>membrane"`
	Forces     []xmlForce       `xml:"forces>force"`
	Boundary   xmlBoundary      `xml:"boundary"`
	Thermostat *xmlThermostat   `xml:"thermostat"`
}

type xmlParameters struct {
	TEnd             float64 `xml:"tEnd"`
	DeltaT           float64 `xml:"deltaT"`
	CutoffRadius     float64 `xml:"cutoffRadius"`
	ParallelStrategy int     `xml:"parallelStrategy"`
}

type xmlOutput struct {
	BaseName      string `xml:"baseName"`
	WriteFrequency int   `xml:"writeFrequency"`
}

type xmlParticle struct {
	X, Y, Z             float64 `xml:"x,attr"`
	Vel1, Vel2, Vel3    float64 `xml:"vel1,attr"`
	Mass                float64 `xml:"mass,attr"`
	Type                int     `xml:"type,attr"`
}

type xmlCuboid struct {
	X, Y, Z          float64 `xml:"x,attr"`
	Vel1, Vel2, Vel3 float64 `xml:"vel1,attr"`
	NumPartX         int     `xml:"numPartX,attr"`
	NumPartY         int     `xml:"numPartY,attr"`
	NumPartZ         int     `xml:"numPartZ,attr"`
	Width            float64 `xml:"width,attr"`
	Mass             float64 `xml:"mass,attr"`
	ThermalV         float64 `xml:"thermal_v,attr"`
	Dimension        int     `xml:"dimension,attr"`
	Type             int     `xml:"type,attr"`
	State            int     `xml:"state,attr"`
}

type xmlSphere struct {
	X, Y, Z          float64 `xml:"x,attr"`
	Vel1, Vel2, Vel3 float64 `xml:"vel1,attr"`
	Radius           float64 `xml:"radius,attr"`
	Width            float64 `xml:"width,attr"`
	Mass             float64 `xml:"mass,attr"`
	ThermalV         float64 `xml:"thermal_v,attr"`
	Dimension        int     `xml:"dimension,attr"`
	Type             int     `xml:"type,attr"`
	State            int     `xml:"state,attr"`
}

type xmlMembrane struct {
	X, Y, Z          float64 `xml:"x,attr"`
	Vel1, Vel2, Vel3 float64 `xml:"vel1,attr"`
	NumPartX         int     `xml:"numPartX,attr"`
	NumPartY         int     `xml:"numPartY,attr"`
	Width            float64 `xml:"width,attr"`
	Mass             float64 `xml:"mass,attr"`
	K                float64 `xml:"k,attr"`
	Type             int     `xml:"type,attr"`
}

type xmlForce struct {
	Kind   string    `xml:"kind,attr"`
	Values []float64 `xml:"value"`
}

type xmlBoundary struct {
	OriginX, OriginY, OriginZ float64 `xml:"originX,attr"`
	ExtentX, ExtentY, ExtentZ float64 `xml:"extentX,attr"`
	GridConstant              float64 `xml:"gridConstant,attr"`
	Rules                     [6]int  `xml:"rule"`
}

type xmlThermostat struct {
	InitTemp     float64 `xml:"initTemp,attr"`
	AdjustFreq   int     `xml:"adjustFreq,attr"`
	TargetTemp   float64 `xml:"targetTemp,attr"`
	MaxDeltaTemp float64 `xml:"maxDeltaTemp,attr"`
}

// ReadXML parses a scenario description in the XML schema adapted from
// original_source's molSimSchema (<simulation> root, one element per
// particle source) into the same Scenario the TXT reader produces.
func ReadXML(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, molerr.NewIOError("cannot open scenario file", err)
	}
	var sim xmlSimulation
	if err := xml.Unmarshal(data, &sim); err != nil {
		return nil, molerr.NewConfigError("malformed scenario XML", err)
	}

	sc := &Scenario{
		General: General{
			Duration:         sim.Parameters.TEnd,
			Dt:               sim.Parameters.DeltaT,
			WriteFreq:        sim.Output.WriteFrequency,
			CutoffRadius:     sim.Parameters.CutoffRadius,
			ParallelStrategy: sim.Parameters.ParallelStrategy,
			OutputBaseName:   sim.Output.BaseName,
		},
		Environment: EnvironmentSpec{
			Origin:       vecmath.Vec3{sim.Boundary.OriginX, sim.Boundary.OriginY, sim.Boundary.OriginZ},
			Extent:       vecmath.Vec3{sim.Boundary.ExtentX, sim.Boundary.ExtentY, sim.Boundary.ExtentZ},
			GridConstant: sim.Boundary.GridConstant,
		},
	}
	for i := 0; i < 6; i++ {
		sc.Environment.Rules[i] = boundary.Rule(sim.Boundary.Rules[i])
	}

	for _, p := range sim.Particles {
		sc.Particles = append(sc.Particles, ParticleSpec{
			Position: vecmath.Vec3{p.X, p.Y, p.Z},
			Velocity: vecmath.Vec3{p.Vel1, p.Vel2, p.Vel3},
			Mass:     p.Mass,
			Type:     p.Type,
		})
	}
	for _, c := range sim.Cuboids {
		sc.Cuboids = append(sc.Cuboids, CuboidSpec{
			Origin:   vecmath.Vec3{c.X, c.Y, c.Z},
			Velocity: vecmath.Vec3{c.Vel1, c.Vel2, c.Vel3},
			Counts:   vecmath.Int3{c.NumPartX, c.NumPartY, c.NumPartZ},
			Width:    c.Width,
			Mass:     c.Mass,
			ThermalV: c.ThermalV,
			Dim:      c.Dimension,
			Type:     c.Type,
			State:    stateFromInt(c.State),
		})
	}
	for _, s := range sim.Spheres {
		sc.Spheres = append(sc.Spheres, SphereSpec{
			Origin:      vecmath.Vec3{s.X, s.Y, s.Z},
			Velocity:    vecmath.Vec3{s.Vel1, s.Vel2, s.Vel3},
			RadiusCells: s.Radius,
			Width:       s.Width,
			Mass:        s.Mass,
			ThermalV:    s.ThermalV,
			Dim:         s.Dimension,
			Type:        s.Type,
			State:       stateFromInt(s.State),
		})
	}
	for _, m := range sim.Membranes {
		sc.Membranes = append(sc.Membranes, MembraneSpec{
			Origin:   vecmath.Vec3{m.X, m.Y, m.Z},
			Velocity: vecmath.Vec3{m.Vel1, m.Vel2, m.Vel3},
			Counts:   vecmath.Int3{m.NumPartX, m.NumPartY, 1},
			Width:    m.Width,
			Mass:     m.Mass,
			SpringK:  m.K,
			Type:     m.Type,
		})
	}
	for _, fs := range sim.Forces {
		kind := strings.ToLower(fs.Kind)
		kind = strings.NewReplacer("-", " ", "_", " ").Replace(kind)
		kind = strings.TrimSpace(kind)
		sc.Forces = append(sc.Forces, ForceSpec{Kind: kind, Values: fs.Values})
	}
	if sim.Thermostat != nil {
		dT := sim.Thermostat.MaxDeltaTemp
		if dT == -1 {
			dT = math.Inf(1)
		}
		sc.Thermostat = &ThermostatSpec{
			InitTemp:     sim.Thermostat.InitTemp,
			AdjustFreq:   sim.Thermostat.AdjustFreq,
			TargetTemp:   sim.Thermostat.TargetTemp,
			MaxDeltaTemp: dT,
		}
	}
	return sc, nil
}

func stateFromInt(v int) particle.State {
	if v == 1 {
		return particle.Alive
	}
	return particle.Stationary
}
