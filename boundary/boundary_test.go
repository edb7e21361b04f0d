package boundary

import (
	"math"
	"testing"

	"github.com/pthm-cable/molsim/force"
	"github.com/pthm-cable/molsim/grid"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

func mustLJ() force.Potential {
	return force.NewLennardJones(1, 1, 2.5)
}

func newTestGrid(t *testing.T, b *Boundary) *grid.ParticleGrid {
	t.Helper()
	g := grid.New(b.Origin, b.Extent, 2)
	if err := g.Build(2.5, b.PeriodicFaces()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func allFaces(r Rule) [6]Rule {
	return [6]Rule{r, r, r, r, r, r}
}

// newID hands out a fresh, valid particle.ID. particle.ID is ark's
// ecs.Entity, an opaque generational struct with unexported fields, so
// tests cannot construct one from an integer literal; a throwaway store
// is the only way to mint one.
func newID(t *testing.T) particle.ID {
	t.Helper()
	return particle.NewStore().Add(particle.Particle{})
}

func TestOutflowMarksDead(t *testing.T) {
	b := &Boundary{Origin: vecmath.Vec3{0, 0, 0}, Extent: vecmath.Vec3{10, 10, 0}, Rules: allFaces(Outflow)}
	g := newTestGrid(t, b)

	p := &particle.Particle{OldPosition: vecmath.Vec3{9.5, 5, 0}, Position: vecmath.Vec3{10.5, 5, 0}, State: particle.Alive}
	id := newID(t)
	g.Insert(p, id)

	if err := b.Apply(g, p, id); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.State != particle.Dead {
		t.Fatalf("state = %v, want DEAD", p.State)
	}
}

func TestPeriodicTeleportScenario(t *testing.T) {
	// spec.md scenario 2: particle at (0,1,0), v=(-1,0,0), after one step
	// of dt=0.001 lands near (-0.001,1,0) which wraps to ~(9.999,1,0).
	b := &Boundary{Origin: vecmath.Vec3{0, 0, 0}, Extent: vecmath.Vec3{10, 10, 0}, Rules: allFaces(Periodic)}
	g := newTestGrid(t, b)

	p := &particle.Particle{OldPosition: vecmath.Vec3{0, 1, 0}, Position: vecmath.Vec3{-0.001, 1, 0}, State: particle.Alive}
	id := newID(t)
	g.Insert(p, id)

	if err := b.Apply(g, p, id); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if math.Abs(p.Position.X()-9.999) > 1e-9 {
		t.Fatalf("teleported x = %v, want ~9.999", p.Position.X())
	}
	if p.State != particle.Alive {
		t.Fatalf("periodic particle should remain ALIVE, got %v", p.State)
	}
}

func TestVelocityReflectionScenario(t *testing.T) {
	b := &Boundary{Origin: vecmath.Vec3{0, 0, 0}, Extent: vecmath.Vec3{10, 10, 0}, Rules: allFaces(VelocityReflection)}
	g := newTestGrid(t, b)

	p := &particle.Particle{
		OldPosition: vecmath.Vec3{9.9, 5, 0},
		Position:    vecmath.Vec3{10.2, 5, 0},
		Velocity:    vecmath.Vec3{3, 0, 0},
		State:       particle.Alive,
	}
	id := newID(t)
	g.Insert(p, id)

	if err := b.Apply(g, p, id); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.Position.X() >= 10 || p.Position.X() <= 0 {
		t.Fatalf("reflected position out of domain: %v", p.Position)
	}
	if p.Velocity.X() >= 0 {
		t.Fatalf("reflected velocity should have flipped sign, got %v", p.Velocity.X())
	}
}

func TestCornerRuleScenario(t *testing.T) {
	// spec.md scenario 6: OUTFLOW on all faces except PERIODIC on TOP; a
	// particle heading up-and-left exits via the top before its left-wall
	// crossing would register.
	rules := allFaces(Outflow)
	rules[FaceTop] = Periodic
	b := &Boundary{Origin: vecmath.Vec3{0, 0, 0}, Extent: vecmath.Vec3{3, 3, 0}, Rules: rules}
	g := grid.New(b.Origin, b.Extent, 2)
	if err := g.Build(1.5, b.PeriodicFaces()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	old := vecmath.Vec3{1.1, 2.5, 0}
	// one time-unit of travel at v=(-1,1,0): would reach (0.1, 3.5, 0)
	// absent any boundary; the top face (y=3) is crossed at t=0.5 while
	// the left face (x=0) would only be crossed at t=1.1, so TOP wins.
	pos := vecmath.Vec3{0.1, 3.5, 0}

	p := &particle.Particle{OldPosition: old, Position: pos, Velocity: vecmath.Vec3{-1, 1, 0}, State: particle.Alive}
	id := newID(t)
	g.Insert(p, id)

	if err := b.Apply(g, p, id); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.State != particle.Alive {
		t.Fatalf("expected particle to survive via periodic top, got state %v", p.State)
	}
	if math.Abs(p.Position.Y()-0.5) > 1e-9 {
		t.Fatalf("wrapped y = %v, want 0.5", p.Position.Y())
	}
}

func TestRepulsiveForceAddsWallForce(t *testing.T) {
	b := &Boundary{
		Origin:        vecmath.Vec3{0, 0, 0},
		Extent:        vecmath.Vec3{10, 10, 0},
		Rules:         allFaces(RepulsiveForce),
		WallPotential: mustLJ(),
	}
	g := newTestGrid(t, b)

	p := &particle.Particle{Position: vecmath.Vec3{0.3, 5, 0}, OldPosition: vecmath.Vec3{0.3, 5, 0}, Mass: 1, State: particle.Alive}
	id := newID(t)
	g.Insert(p, id)

	if err := b.Apply(g, p, id); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.Force.X() <= 0 {
		t.Fatalf("expected outward (+x) repulsion near left wall, got %v", p.Force)
	}
}
