package boundary

import (
	"math"

	"github.com/pthm-cable/molsim/force"
	"github.com/pthm-cable/molsim/grid"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// Rule is a per-face boundary behaviour. The numeric values match the
// scenario file encoding (spec.md §6): OUTFLOW=0, PERIODIC=1,
// REPULSIVE_FORCE=2, VELOCITY_REFLECTION=3.
type Rule int

const (
	Outflow Rule = iota
	Periodic
	RepulsiveForce
	VelocityReflection
)

// Boundary is the domain box plus its six per-face rules and the
// optional ghost-wall potential used by REPULSIVE_FORCE faces.
type Boundary struct {
	Origin vecmath.Vec3
	Extent vecmath.Vec3
	Rules  [6]Rule

	// WallPotential is evaluated at twice the perpendicular distance to
	// a REPULSIVE_FORCE face, mirror-image style (spec.md §4.2).
	WallPotential force.Potential
}

// PeriodicFaces projects this boundary's rules onto the grid.PeriodicFaces
// shape the linked-cell grid needs to wrap neighbour pairs correctly.
func (b *Boundary) PeriodicFaces() grid.PeriodicFaces {
	return grid.PeriodicFaces{
		Left:   b.Rules[FaceLeft] == Periodic,
		Right:  b.Rules[FaceRight] == Periodic,
		Bottom: b.Rules[FaceBottom] == Periodic,
		Top:    b.Rules[FaceTop] == Periodic,
		Back:   b.Rules[FaceBack] == Periodic,
		Front:  b.Rules[FaceFront] == Periodic,
	}
}

func (b *Boundary) facePlane(f Face) float64 {
	axis := f.Axis()
	if f.Sign() < 0 {
		return b.Origin[axis]
	}
	return b.Origin[axis] + b.Extent[axis]
}

// Apply dispatches the rule appropriate to p's current cell: ghost-wall
// repulsion while the particle sits in a BOUNDARY cell, or full
// outflow/periodic/reflection resolution (with corner disambiguation)
// when it has stepped into the OUTSIDE sentinel cell.
func (b *Boundary) Apply(g *grid.ParticleGrid, p *particle.Particle, id particle.ID) error {
	cell := g.Cell(p.Cell)
	if cell.Type == grid.Outside {
		return b.applyOutside(g, p, id)
	}
	if cell.Type.IsBoundary() {
		b.applyRepulsive(cell.Type, p)
	}
	return nil
}

// applyRepulsive adds a ghost-wall force for every touched face whose
// rule is REPULSIVE_FORCE. STATIONARY particles are included: the rule
// is geometric, not a function of mobility, so an anchored membrane edge
// still feels the wall it sits against.
func (b *Boundary) applyRepulsive(cellType grid.CellType, p *particle.Particle) {
	for f := FaceLeft; f <= FaceFront; f++ {
		if b.Rules[f] != RepulsiveForce {
			continue
		}
		if !cellType.Has(f.cellTypeBit()) {
			continue
		}
		axis := f.Axis()
		plane := b.facePlane(f)
		d := p.Position[axis] - plane

		var diff vecmath.Vec3
		diff[axis] = 2 * d
		p.Force = p.Force.Add(b.WallPotential.Evaluate(diff, diff.L2(), p.Mass, p.Mass))
	}
}

// applyOutside resolves which face a particle actually crossed when its
// step landed it in the OUTSIDE sentinel, breaking corner ambiguity by
// smallest valid crossing parameter t, ties going to the lower axis.
func (b *Boundary) applyOutside(g *grid.ParticleGrid, p *particle.Particle, id particle.ID) error {
	delta := p.Position.Sub(p.OldPosition)

	bestT := math.Inf(1)
	bestFace := Face(-1)

	for axis := 0; axis < 3; axis++ {
		var face Face
		var plane float64
		switch {
		case p.Position[axis] < b.Origin[axis]:
			face, plane = faceForAxisSign(axis, -1), b.Origin[axis]
		case p.Position[axis] >= b.Origin[axis]+b.Extent[axis]:
			face, plane = faceForAxisSign(axis, 1), b.Origin[axis]+b.Extent[axis]
		default:
			continue
		}
		if delta[axis] == 0 {
			continue
		}
		t := (plane - p.OldPosition[axis]) / delta[axis]
		if t < 0 || t > 1 {
			continue
		}
		intersect := p.OldPosition.Add(delta.Scale(t))
		if !b.inFaceRectangle(axis, intersect) {
			continue
		}
		if t < bestT {
			bestT = t
			bestFace = face
		}
	}

	if bestFace < 0 {
		// No face explains the exit: every out-of-bounds axis has zero
		// displacement, a crossing parameter outside [0,1], or an
		// intersection outside the face rectangle. Fail safe to outflow rather
		// than leaving the particle stranded with no applicable rule.
		return b.outflow(g, p, id)
	}

	switch b.Rules[bestFace] {
	case Periodic:
		return b.teleport(g, p, id, bestFace)
	case VelocityReflection:
		return b.reflect(g, p, id, bestFace)
	case RepulsiveForce:
		// Tunnelled through a repulsive wall within one step. The wall
		// force never got to act, so fail to the sink rather than let
		// the particle re-enter at undefined velocity.
		return b.outflow(g, p, id)
	default:
		return b.outflow(g, p, id)
	}
}

func (b *Boundary) inFaceRectangle(crossedAxis int, point vecmath.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if axis == crossedAxis {
			continue
		}
		if point[axis] < b.Origin[axis] || point[axis] > b.Origin[axis]+b.Extent[axis] {
			return false
		}
	}
	return true
}

func (b *Boundary) outflow(g *grid.ParticleGrid, p *particle.Particle, id particle.ID) error {
	g.Cell(p.Cell).Remove(id)
	p.State = particle.Dead
	return nil
}

func (b *Boundary) teleport(g *grid.ParticleGrid, p *particle.Particle, id particle.ID, f Face) error {
	axis := f.Axis()
	span := b.Extent[axis]
	rel := p.Position[axis] - b.Origin[axis]
	wrapped := math.Mod(rel, span)
	if wrapped < 0 {
		wrapped += span
	}
	p.Position[axis] = b.Origin[axis] + wrapped
	g.Migrate(p, id)
	return nil
}

func (b *Boundary) reflect(g *grid.ParticleGrid, p *particle.Particle, id particle.ID, f Face) error {
	axis := f.Axis()
	plane := b.facePlane(f)
	p.Position[axis] = 2*plane - p.Position[axis]
	p.Velocity[axis] = -p.Velocity[axis]
	g.Migrate(p, id)
	return nil
}
