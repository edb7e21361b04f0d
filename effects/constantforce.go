package effects

import (
	"math"

	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

// Marker is a predicate over a particle, evaluated once at bind time to
// fix the set of ids a ConstantForce applies to.
type Marker func(*particle.Particle) bool

// MarkAll selects every particle.
func MarkAll(*particle.Particle) bool { return true }

// MarkBox selects particles whose position lies within [x1,x2] on every
// axis (inclusive).
func MarkBox(x1, x2 vecmath.Vec3) Marker {
	return func(p *particle.Particle) bool {
		for axis := 0; axis < 3; axis++ {
			if p.Position[axis] < x1[axis] || p.Position[axis] > x2[axis] {
				return false
			}
		}
		return true
	}
}

// ConstantForce binds a direction, strength, time window and marker
// predicate, fixing a set of marked particle ids at Bind time and adding
// a force contribution to each marked, non-DEAD particle every step the
// current time falls in [TStart, TEnd].
type ConstantForce struct {
	Direction         vecmath.Vec3
	Strength          float64
	Marker            Marker
	TStart, TEnd      float64
	ConstAcceleration bool

	marked []particle.ID
}

// Gravity is the ConstantForce shortcut for a uniform pull along +axis
// with strength g (a negative g pulls toward -axis):
// const_acceleration = true, direction the unit vector along axis.
func Gravity(g float64, axis int) *ConstantForce {
	var dir vecmath.Vec3
	dir[axis] = 1
	return &ConstantForce{
		Direction:         dir,
		Strength:          g,
		Marker:            MarkAll,
		TStart:            0,
		TEnd:              math.Inf(1),
		ConstAcceleration: true,
	}
}

// Bind evaluates Marker across the population, fixing the marked id set.
// Call once, after every particle the force should consider has been
// added (build time).
func (c *ConstantForce) Bind(store *particle.Store) {
	c.marked = c.marked[:0]
	store.Each(func(id particle.ID, p *particle.Particle) {
		if c.Marker(p) {
			c.marked = append(c.marked, id)
		}
	})
}

// Apply adds this force's contribution to every marked, non-DEAD
// particle's Force field, if t falls within [TStart, TEnd].
func (c *ConstantForce) Apply(store *particle.Store, t float64) {
	if t < c.TStart || t > c.TEnd {
		return
	}
	for _, id := range c.marked {
		p := store.Get(id)
		if p.State == particle.Dead {
			continue
		}
		denom := 1.0
		if c.ConstAcceleration {
			denom = p.Mass
		}
		p.Force = p.Force.Add(c.Direction.Scale(c.Strength / denom))
	}
}
