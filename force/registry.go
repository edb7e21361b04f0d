package force

import (
	"iter"
	"math"

	"github.com/pthm-cable/molsim/molerr"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

type typePair [2]int

func orderedTypePair(t1, t2 int) typePair {
	if t1 <= t2 {
		return typePair{t1, t2}
	}
	return typePair{t2, t1}
}

type bondKey [2]particle.ID

// orderedBondKey canonicalizes an unordered particle-id pair. ark's
// entity ids are generational structs with an ID() accessor rather than
// directly orderable values, so ordering goes through that accessor.
func orderedBondKey(a, b particle.ID) bondKey {
	if a.ID() <= b.ID() {
		return bondKey{a, b}
	}
	return bondKey{b, a}
}

// Registry is the force composition layer: one Potential per particle
// type, a cross-type table produced by mixing at Build time, and bonded
// harmonic springs attached to specific ordered particle-id pairs.
type Registry struct {
	byType map[int]Potential
	mixed  map[typePair]Potential
	bonds  map[bondKey]Potential

	Cutoff float64
	built  bool
}

// NewRegistry creates an empty, unbuilt force registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[int]Potential),
		mixed:  make(map[typePair]Potential),
		bonds:  make(map[bondKey]Potential),
	}
}

// Register assigns the pairwise potential used when both particles of a
// pair carry type t. Must be called before Build.
func (r *Registry) Register(t int, p Potential) {
	r.byType[t] = p
}

// AddBond attaches a harmonic spring between an ordered particle-id pair
// (membrane mesh edges). Bonds bypass the linked-cell pair list entirely
// and are evaluated directly by the integrator each step.
func (r *Registry) AddBond(a, b particle.ID, p Potential) {
	r.bonds[orderedBondKey(a, b)] = p
}

// Build computes the cross-type mixing table (Lorentz-Berthelot for LJ,
// geometric mean of G for inverse-square) and the registry-wide cutoff,
// the max over every registered and mixed (non-bonded) potential.
func (r *Registry) Build() error {
	types := make([]int, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}

	maxCutoff := 0.0
	for _, p := range r.byType {
		if p.Cutoff > maxCutoff {
			maxCutoff = p.Cutoff
		}
	}

	for i := 0; i < len(types); i++ {
		for j := i + 1; j < len(types); j++ {
			t1, t2 := types[i], types[j]
			p1, p2 := r.byType[t1], r.byType[t2]
			mixed, err := mix(p1, p2)
			if err != nil {
				return err
			}
			r.mixed[orderedTypePair(t1, t2)] = mixed
			if mixed.Cutoff > maxCutoff {
				maxCutoff = mixed.Cutoff
			}
		}
	}

	r.Cutoff = maxCutoff
	r.built = true
	return nil
}

// mix combines two same-kind potentials via the standard combinatoric
// rule for that kind. Mixing potentials of different kinds is a build
// error (spec.md §4.3).
func mix(p1, p2 Potential) (Potential, error) {
	if p1.Kind != p2.Kind {
		return Potential{}, molerr.NewConfigError("cannot mix pair potentials of different kinds", nil)
	}
	cutoff := math.Max(p1.Cutoff, p2.Cutoff)
	switch p1.Kind {
	case LennardJones:
		return Potential{
			Kind:    LennardJones,
			Epsilon: math.Sqrt(p1.Epsilon * p2.Epsilon),
			Sigma:   (p1.Sigma + p2.Sigma) / 2,
			Cutoff:  cutoff,
		}, nil
	case InverseSquare:
		return Potential{
			Kind:   InverseSquare,
			G:      math.Sqrt(p1.G * p2.G),
			Cutoff: cutoff,
		}, nil
	case Harmonic:
		return Potential{}, molerr.NewConfigError("harmonic potentials are bonded per-pair, not mixed by type", nil)
	default:
		return Potential{}, molerr.NewConfigError("cannot mix unknown potential kind", nil)
	}
}

// Lookup returns the potential governing a (t1,t2) type pair: the
// registered potential when t1==t2, otherwise the mixed entry.
func (r *Registry) Lookup(t1, t2 int) (Potential, bool) {
	if t1 == t2 {
		p, ok := r.byType[t1]
		return p, ok
	}
	p, ok := r.mixed[orderedTypePair(t1, t2)]
	return p, ok
}

// Bonds yields every registered harmonic spring as its ordered endpoint
// ids and potential. Bonds are attached per particle-id pair at scenario
// build time and are evaluated directly once per step, independent of
// the grid's cell-pair list (see env.Environment.ApplyBonds).
func (r *Registry) Bonds() iter.Seq2[[2]particle.ID, Potential] {
	return func(yield func([2]particle.ID, Potential) bool) {
		for k, p := range r.bonds {
			if !yield([2]particle.ID{k[0], k[1]}, p) {
				return
			}
		}
	}
}

// Pair evaluates the non-bonded pairwise force between p1 and p2 of the
// given types, given the (possibly periodic-wrapped) displacement
// p1.Position - p2.Position. Returns zero if the pair has no registered
// potential (e.g. a Harmonic-only type that never appears by-type).
func (r *Registry) Pair(t1, t2 int, diff vecmath.Vec3, m1, m2 float64) vecmath.Vec3 {
	pot, ok := r.Lookup(t1, t2)
	if !ok {
		return vecmath.Zero
	}
	return pot.Evaluate(diff, diff.L2(), m1, m2)
}
