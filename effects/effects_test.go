package effects

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/molsim/boundary"
	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/force"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

func newTestEnv(t *testing.T) *env.Environment {
	t.Helper()
	b := &boundary.Boundary{
		Origin: vecmath.Vec3{0, 0, 0},
		Extent: vecmath.Vec3{10, 10, 0},
		Rules:  [6]boundary.Rule{boundary.Outflow, boundary.Outflow, boundary.Outflow, boundary.Outflow, boundary.Outflow, boundary.Outflow},
	}
	r := force.NewRegistry()
	r.Register(0, force.NewLennardJones(1, 1, 2.5))
	e := env.New(2, b, r)
	for i := 0; i < 5; i++ {
		if _, err := e.AddParticle(vecmath.Vec3{float64(i) + 1, 5, 0}, vecmath.Zero, 1, 0, particle.Alive); err != nil {
			t.Fatalf("AddParticle: %v", err)
		}
	}
	if err := e.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return e
}

func TestSetInitialTemperatureSeedsNonzeroTemperature(t *testing.T) {
	e := newTestEnv(t)
	rng := rand.New(rand.NewPCG(1, 2))
	SetInitialTemperature(e, 2.0, rng)
	got := e.Temperature(nil)
	if got <= 0 {
		t.Fatalf("temperature after seeding = %v, want > 0", got)
	}
}

func TestAdjustTemperatureMovesTowardTarget(t *testing.T) {
	e := newTestEnv(t)
	for _, id := range e.Store.IDs() {
		e.Store.Get(id).Velocity = vecmath.Vec3{1, 0, 0}
	}
	before := e.Temperature(nil)

	th := &Thermostat{TargetTemp: before * 4, MaxDeltaTemp: 1000}
	th.AdjustTemperature(e)

	after := e.Temperature(nil)
	if after <= before {
		t.Fatalf("temperature did not increase toward target: before=%v after=%v", before, after)
	}
}

func TestAdjustTemperatureNoOpWhenDisabled(t *testing.T) {
	e := newTestEnv(t)
	before := e.Temperature(nil)
	th := &Thermostat{TargetTemp: NoTemp}
	th.AdjustTemperature(e)
	after := e.Temperature(nil)
	if before != after {
		t.Fatalf("disabled thermostat changed temperature: %v -> %v", before, after)
	}
}

func TestConstantForceTimeWindow(t *testing.T) {
	e := newTestEnv(t)
	cf := &ConstantForce{Direction: vecmath.Vec3{0, 1, 0}, Strength: 5, Marker: MarkAll, TStart: 1, TEnd: 2}
	cf.Bind(e.Store)

	cf.Apply(e.Store, 0.5)
	for _, id := range e.Store.IDs() {
		if !e.Store.Get(id).Force.IsZero() {
			t.Fatal("force applied outside time window")
		}
	}

	cf.Apply(e.Store, 1.5)
	for _, id := range e.Store.IDs() {
		if e.Store.Get(id).Force.Y() != 5 {
			t.Fatalf("Force.Y = %v, want 5", e.Store.Get(id).Force.Y())
		}
	}
}

func TestGravityConstAcceleration(t *testing.T) {
	g := Gravity(9.8, 1)
	if !g.ConstAcceleration {
		t.Fatal("Gravity must set ConstAcceleration = true")
	}
	if g.Direction.Y() != 1 {
		t.Fatalf("Gravity direction = %v, want unit +Y", g.Direction)
	}
}

func TestComputeBinStatsCountsAndAverages(t *testing.T) {
	e := newTestEnv(t)
	for _, id := range e.Store.IDs() {
		// Large x-velocity, small y-velocity: the bin statistic must report
		// the y component, not speed, or this would read ~20 instead of ~3.
		e.Store.Get(id).Velocity = vecmath.Vec3{20, 3, 0}
	}
	row := ComputeBinStats(e, 0, 5, 0, 0)
	if len(row.VelocityBins) != 5 || len(row.DensityBins) != 5 {
		t.Fatalf("expected 5 bins, got %d/%d", len(row.VelocityBins), len(row.DensityBins))
	}
	total := 0.0
	for _, d := range row.DensityBins {
		total += d
	}
	if math.Abs(total-5) > 1e-9 {
		t.Fatalf("total density = %v, want 5 particles", total)
	}
	for i, v := range row.VelocityBins {
		if row.DensityBins[i] == 0 {
			continue
		}
		if math.Abs(v-3) > 1e-9 {
			t.Fatalf("VelocityBins[%d] = %v, want 3 (y-velocity, not speed)", i, v)
		}
	}
}
