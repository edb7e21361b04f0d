package force

import (
	"math"
	"testing"

	"github.com/pthm-cable/molsim/vecmath"
)

func TestLennardJonesRepulsiveAtShortRange(t *testing.T) {
	lj := NewLennardJones(1, 1, 2.5)
	diff := vecmath.Vec3{0.9, 0, 0}
	f := lj.Evaluate(diff, diff.L2(), 1, 1)
	if f.X() <= 0 {
		t.Fatalf("expected repulsive (positive x) force at r<sigma, got %v", f)
	}
}

func TestLennardJonesZeroBeyondCutoff(t *testing.T) {
	lj := NewLennardJones(1, 1, 2.5)
	diff := vecmath.Vec3{3, 0, 0}
	f := lj.Evaluate(diff, diff.L2(), 1, 1)
	if !f.IsZero() {
		t.Fatalf("expected zero force beyond cutoff, got %v", f)
	}
}

func TestLennardJonesDefaultCutoff(t *testing.T) {
	lj := NewLennardJones(1, 2, 0)
	if lj.Cutoff != 6 {
		t.Fatalf("default cutoff = %v, want 3*sigma = 6", lj.Cutoff)
	}
}

func TestPeriodicForceContinuityScenario(t *testing.T) {
	// spec.md scenario 3: two particles 2 units apart via wrap in a 10-wide
	// periodic domain exert equal and opposite forces; for LJ(1,1) at r=2
	// that's 24*(2*(1/2)^12-(1/2)^6)/4 * diff.x(=2) == -0.181640625.
	lj := NewLennardJones(1, 1, 2.5)
	diff := vecmath.Vec3{2, 0, 0}
	f := lj.Evaluate(diff, diff.L2(), 1, 1)
	if math.Abs(f.X()-(-0.181640625)) > 1e-9 {
		t.Fatalf("F.x = %v, want -0.181640625", f.X())
	}
}

func TestInverseSquareAttractive(t *testing.T) {
	g := NewInverseSquare(1, 0)
	diff := vecmath.Vec3{2, 0, 0}
	f := g.Evaluate(diff, diff.L2(), 1, 1)
	if f.X() >= 0 {
		t.Fatalf("expected attractive (negative x) force, got %v", f)
	}
}

func TestRegistryMixingLorentzBerthelot(t *testing.T) {
	r := NewRegistry()
	r.Register(0, NewLennardJones(1, 1, 2.5))
	r.Register(1, NewLennardJones(4, 3, 3.0))
	if err := r.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	mixed, ok := r.Lookup(0, 1)
	if !ok {
		t.Fatal("expected mixed potential for (0,1)")
	}
	if math.Abs(mixed.Epsilon-2) > 1e-12 {
		t.Fatalf("epsilon_mix = %v, want sqrt(1*4)=2", mixed.Epsilon)
	}
	if math.Abs(mixed.Sigma-2) > 1e-12 {
		t.Fatalf("sigma_mix = %v, want (1+3)/2=2", mixed.Sigma)
	}
	if r.Cutoff != 3.0 {
		t.Fatalf("registry cutoff = %v, want max(2.5,3.0)=3.0", r.Cutoff)
	}
}

func TestRegistryMixingRejectsDifferentKinds(t *testing.T) {
	r := NewRegistry()
	r.Register(0, NewLennardJones(1, 1, 2.5))
	r.Register(1, NewInverseSquare(1, 0))
	if err := r.Build(); err == nil {
		t.Fatal("expected error mixing LJ with InverseSquare")
	}
}

func TestHarmonicBondEvaluate(t *testing.T) {
	h := NewHarmonic(10, 1.0, 0)
	diff := vecmath.Vec3{1.5, 0, 0}
	f := h.Evaluate(diff, diff.L2(), 1, 1)
	// stretched beyond rest length: restoring force pulls back, i.e.
	// negative x component on the particle at the +x end.
	if f.X() >= 0 {
		t.Fatalf("expected restoring (negative x) force when stretched, got %v", f)
	}
}
