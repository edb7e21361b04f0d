// Package force implements the pairwise force registry: per-type
// potentials, cross-type mixing, bonded harmonic springs, and cutoff
// bookkeeping. Dispatch uses a tagged-union Potential rather than an
// interface with multiple implementations, since the set of kinds is
// closed and small (spec.md §9, "Polymorphic force").
package force

import (
	"math"

	"github.com/pthm-cable/molsim/vecmath"
)

// Kind tags which pairwise law a Potential evaluates.
type Kind uint8

const (
	None Kind = iota
	LennardJones
	InverseSquare
	Harmonic
)

// Potential is a closed tagged union over the supported pair laws. Only
// the fields relevant to Kind are meaningful.
type Potential struct {
	Kind Kind

	// LennardJones
	Epsilon float64
	Sigma   float64

	// InverseSquare
	G float64

	// Harmonic
	SpringK float64
	Rest    float64

	Cutoff float64
}

// NewLennardJones builds an LJ potential, defaulting cutoff to 3*sigma
// per spec.md §4.3 when cutoff <= 0 is supplied.
func NewLennardJones(epsilon, sigma, cutoff float64) Potential {
	if cutoff <= 0 {
		cutoff = 3 * sigma
	}
	return Potential{Kind: LennardJones, Epsilon: epsilon, Sigma: sigma, Cutoff: cutoff}
}

// NewInverseSquare builds a gravitational/Coulombic 1/r^2 potential,
// defaulting cutoff to 10*G per spec.md §4.3 when cutoff <= 0 is supplied.
func NewInverseSquare(g, cutoff float64) Potential {
	if cutoff <= 0 {
		cutoff = 10 * g
	}
	return Potential{Kind: InverseSquare, G: g, Cutoff: cutoff}
}

// NewHarmonic builds a bonded spring potential. Harmonic springs are
// attached to specific ordered particle-id pairs and are never evaluated
// through the linked-cell pair list.
func NewHarmonic(k, rest, cutoff float64) Potential {
	return Potential{Kind: Harmonic, SpringK: k, Rest: rest, Cutoff: cutoff}
}

// Evaluate returns the force exerted on p1 by p2 (the caller adds it
// directly to p1.Force and subtracts it from p2.Force for the Newton-3
// counterpart), given diff = p1.Position - p2.Position already corrected
// for periodic wrap, and the pair's masses. dist is precomputed by the
// caller (|diff|) to avoid a redundant sqrt across mixed dispatch sites.
func (p Potential) Evaluate(diff vecmath.Vec3, dist float64, m1, m2 float64) vecmath.Vec3 {
	if dist == 0 {
		return vecmath.Zero
	}
	switch p.Kind {
	case LennardJones:
		if dist > p.Cutoff {
			return vecmath.Zero
		}
		sr6 := math.Pow(p.Sigma/dist, 6)
		sr12 := sr6 * sr6
		mag := 24 * p.Epsilon / (dist * dist) * (2*sr12 - sr6)
		return diff.Scale(mag)
	case InverseSquare:
		if p.Cutoff > 0 && dist > p.Cutoff {
			return vecmath.Zero
		}
		mag := -p.G * m1 * m2 / (dist * dist * dist)
		return diff.Scale(mag)
	case Harmonic:
		mag := -p.SpringK * (dist - p.Rest) / dist
		return diff.Scale(mag)
	default:
		return vecmath.Zero
	}
}
