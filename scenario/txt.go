package scenario

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pthm-cable/molsim/boundary"
	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/molerr"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// sectionHeaders maps a line exactly matching a section label to the
// section name subsequent lines belong to, grounded on
// original_source/src/io/input/txt/TXTFileReader.cpp's sectionMap.
var sectionHeaders = map[string]string{
	"general:":     "general",
	"particles:":   "particles",
	"cuboids:":     "cuboids",
	"spheres:":     "spheres",
	"force:":       "force",
	"environment:": "environment",
	"thermostats:": "thermostats",
	"membranes:":   "membranes",
}

// ReadTXT parses a scenario description in the line-oriented TXT format:
// blank lines and lines starting with "#" are ignored; a line matching a
// section header switches the active section; every other line is parsed
// according to the active section's field grammar.
func ReadTXT(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, molerr.NewIOError("cannot open scenario file", err)
	}
	defer f.Close()

	sc := &Scenario{}
	section := ""
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if s, ok := sectionHeaders[line]; ok {
			section = s
			continue
		}

		var perr error
		switch section {
		case "general":
			perr = parseGeneral(line, sc)
		case "particles":
			perr = parseParticleLine(line, sc)
		case "cuboids":
			perr = parseCuboidLine(line, sc)
		case "spheres":
			perr = parseSphereLine(line, sc)
		case "membranes":
			perr = parseMembraneLine(line, sc)
		case "force":
			perr = parseForceLine(line, sc)
		case "environment":
			perr = parseEnvironmentLine(line, sc)
		case "thermostats":
			perr = parseThermostatLine(line, sc)
		default:
			perr = fmt.Errorf("line outside any known section")
		}
		if perr != nil {
			return nil, molerr.NewConfigError(fmt.Sprintf("%s:%d: %v", path, lineNo, perr), perr)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, molerr.NewIOError("error reading scenario file", err)
	}
	return sc, nil
}

// parseValues splits line on whitespace and parses every field as a
// float64, erroring if fewer than expected fields are present.
func parseValues(line string, expected int) ([]float64, error) {
	fields := strings.Fields(line)
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			break // stop at the first non-numeric field (e.g. a trailing name)
		}
		vals = append(vals, v)
	}
	if len(vals) < expected {
		return nil, fmt.Errorf("expected at least %d numeric fields, got %d: %q", expected, len(vals), line)
	}
	return vals, nil
}

func parseGeneral(line string, sc *Scenario) error {
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return fmt.Errorf("general line needs 5 numbers plus an output basename: %q", line)
	}
	nums := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return fmt.Errorf("general field %d: %w", i, err)
		}
		nums[i] = v
	}
	sc.General = General{
		Duration:         nums[0],
		Dt:               nums[1],
		WriteFreq:        int(nums[2]),
		CutoffRadius:     nums[3],
		ParallelStrategy: int(nums[4]),
		OutputBaseName:   fields[5],
	}
	return nil
}

func parseParticleLine(line string, sc *Scenario) error {
	vals, err := parseValues(line, 8)
	if err != nil {
		return err
	}
	spec := ParticleSpec{
		Position: vecmath.Vec3{vals[0], vals[1], vals[2]},
		Velocity: vecmath.Vec3{vals[3], vals[4], vals[5]},
		Mass:     vals[6],
		Type:     int(vals[7]),
	}
	if len(vals) >= 11 {
		spec.Force = vecmath.Vec3{vals[8], vals[9], vals[10]}
		spec.HasForce = true
	}
	if len(vals) >= 14 {
		spec.OldForce = vecmath.Vec3{vals[11], vals[12], vals[13]}
		spec.HasOldForce = true
	}
	sc.Particles = append(sc.Particles, spec)
	return nil
}

func parseCuboidLine(line string, sc *Scenario) error {
	vals, err := parseValues(line, 15)
	if err != nil {
		return err
	}
	state := particle.Stationary
	if vals[14] == 1 {
		state = particle.Alive
	}
	sc.Cuboids = append(sc.Cuboids, CuboidSpec{
		Origin:   vecmath.Vec3{vals[0], vals[1], vals[2]},
		Velocity: vecmath.Vec3{vals[3], vals[4], vals[5]},
		Counts:   vecmath.Int3{int(vals[6]), int(vals[7]), int(vals[8])},
		Width:    vals[9],
		Mass:     vals[10],
		ThermalV: vals[11],
		Dim:      int(vals[12]),
		Type:     int(vals[13]),
		State:    state,
	})
	return nil
}

func parseSphereLine(line string, sc *Scenario) error {
	vals, err := parseValues(line, 13)
	if err != nil {
		return err
	}
	state := particle.Stationary
	if vals[12] == 1 {
		state = particle.Alive
	}
	sc.Spheres = append(sc.Spheres, SphereSpec{
		Origin:      vecmath.Vec3{vals[0], vals[1], vals[2]},
		Velocity:    vecmath.Vec3{vals[3], vals[4], vals[5]},
		RadiusCells: vals[6],
		Width:       vals[7],
		Mass:        vals[8],
		ThermalV:    vals[9],
		Dim:         int(vals[10]),
		Type:        int(vals[11]),
		State:       state,
	})
	return nil
}

func parseMembraneLine(line string, sc *Scenario) error {
	vals, err := parseValues(line, 13)
	if err != nil {
		return err
	}
	sc.Membranes = append(sc.Membranes, MembraneSpec{
		Origin:   vecmath.Vec3{vals[0], vals[1], vals[2]},
		Velocity: vecmath.Vec3{vals[3], vals[4], vals[5]},
		Counts:   vecmath.Int3{int(vals[6]), int(vals[7]), int(vals[8])},
		Width:    vals[9],
		Mass:     vals[10],
		SpringK:  vals[11],
		Type:     int(vals[12]),
	})
	return nil
}

func parseForceLine(line string, sc *Scenario) error {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return fmt.Errorf("empty force line")
	}
	name := strings.ToLower(fields[0])
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	name = strings.TrimSpace(name)

	vals := make([]float64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("force parameter %q: %w", f, err)
		}
		vals = append(vals, v)
	}
	sc.Forces = append(sc.Forces, ForceSpec{Kind: name, Values: vals})
	return nil
}

func parseEnvironmentLine(line string, sc *Scenario) error {
	vals, err := parseValues(line, 13)
	if err != nil {
		return err
	}
	var rules [6]boundary.Rule
	for i := 0; i < 6; i++ {
		rules[i] = boundary.Rule(int(vals[7+i]))
	}
	sc.Environment = EnvironmentSpec{
		Origin:       vecmath.Vec3{vals[0], vals[1], vals[2]},
		Extent:       vecmath.Vec3{vals[3], vals[4], vals[5]},
		GridConstant: vals[6],
		Rules:        rules,
	}
	return nil
}

func parseThermostatLine(line string, sc *Scenario) error {
	vals, err := parseValues(line, 4)
	if err != nil {
		return err
	}
	dT := vals[3]
	if dT == -1 {
		dT = math.Inf(1)
	}
	sc.Thermostat = &ThermostatSpec{
		InitTemp:     vals[0],
		AdjustFreq:   int(vals[1]),
		TargetTemp:   vals[2],
		MaxDeltaTemp: dT,
	}
	return nil
}

// WriteCheckpoint writes the scenario's general/environment/force/
// thermostat sections verbatim, followed by a "particles:" section built
// from e's live state with each row augmented by force and old_force
// (14 values),
// so a resumed run can complete its first velocity half-step without a
// transient (spec.md §6).
func WriteCheckpoint(path string, sc *Scenario, e *env.Environment) error {
	f, err := os.Create(path)
	if err != nil {
		return molerr.NewIOError("cannot create checkpoint file", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "general:\n%g %g %d %g %d %s\n\n",
		sc.General.Duration, sc.General.Dt, sc.General.WriteFreq, sc.General.CutoffRadius,
		sc.General.ParallelStrategy, sc.General.OutputBaseName)

	fmt.Fprintf(w, "environment:\n%g %g %g %g %g %g %g %d %d %d %d %d %d\n\n",
		sc.Environment.Origin[0], sc.Environment.Origin[1], sc.Environment.Origin[2],
		sc.Environment.Extent[0], sc.Environment.Extent[1], sc.Environment.Extent[2],
		sc.Environment.GridConstant,
		sc.Environment.Rules[0], sc.Environment.Rules[1], sc.Environment.Rules[2],
		sc.Environment.Rules[3], sc.Environment.Rules[4], sc.Environment.Rules[5])

	if len(sc.Forces) > 0 {
		fmt.Fprintf(w, "force:\n")
		for _, fs := range sc.Forces {
			// fs.Kind is space-normalized (parseForceLine), but parsing
			// splits on whitespace, so re-emit it dash-joined or the
			// reload would only see the first word as the kind.
			fmt.Fprintf(w, "%s", strings.ReplaceAll(fs.Kind, " ", "-"))
			for _, v := range fs.Values {
				fmt.Fprintf(w, " %g", v)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	if sc.Thermostat != nil {
		dT := sc.Thermostat.MaxDeltaTemp
		if math.IsInf(dT, 1) {
			dT = -1
		}
		fmt.Fprintf(w, "thermostats:\n%g %d %g %g\n\n", sc.Thermostat.InitTemp, sc.Thermostat.AdjustFreq, sc.Thermostat.TargetTemp, dT)
	}

	fmt.Fprintf(w, "particles:\n")
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if p.State == particle.Dead {
			return
		}
		fmt.Fprintf(w, "%g %g %g %g %g %g %g %d %g %g %g %g %g %g\n",
			p.Position[0], p.Position[1], p.Position[2],
			p.Velocity[0], p.Velocity[1], p.Velocity[2],
			p.Mass, p.Type,
			p.Force[0], p.Force[1], p.Force[2],
			p.OldForce[0], p.OldForce[1], p.OldForce[2])
	})

	return w.Flush()
}
