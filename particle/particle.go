// Package particle defines the per-particle state record and its backing
// store. Storage follows the teacher's arena pattern: particles are
// entities in a single shared ark/ecs.World, each carrying exactly one
// Particle component (mirroring how the teacher attaches a single
// NeuralGenome/Brain component to an entity via ecs.Map[T]), rather than
// splitting the record across many small ECS components. Ids are the
// stable ecs.Entity identities ark hands out on creation — dense,
// monotone, never reused within a world's lifetime, exactly as spec.md
// requires.
package particle

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/molsim/vecmath"
)

// State is the lifecycle state of a particle.
type State uint8

const (
	// Alive particles move under the integrator.
	Alive State = iota
	// Dead particles are excluded from the live grid; their slot (id) is
	// preserved so ids stay dense and stable.
	Dead
	// Stationary particles participate in force evaluation but their
	// position and velocity are never updated by the integrator.
	Stationary
)

func (s State) String() string {
	switch s {
	case Alive:
		return "ALIVE"
	case Dead:
		return "DEAD"
	case Stationary:
		return "STATIONARY"
	default:
		return "UNKNOWN"
	}
}

// Particle is the full per-particle state record, owned by the
// Environment and addressed by stable id (ecs.Entity).
type Particle struct {
	Position    vecmath.Vec3
	OldPosition vecmath.Vec3
	Velocity    vecmath.Vec3
	Force       vecmath.Vec3
	OldForce    vecmath.Vec3
	Cell        vecmath.Int3
	Mass        float64
	Type        int
	State       State
}

// ID is a stable particle identifier: the ark ecs.Entity handle (an
// opaque, generational entity reference) of the particle's entity.
type ID = ecs.Entity

// Store is the particle arena: a single ark/ecs.World plus the typed
// accessor for the Particle component living on every entity in it.
type Store struct {
	world *ecs.World
	m     *ecs.Map1[Particle]
	ids   []ID // insertion order, preserved for deterministic iteration
}

// NewStore creates an empty particle arena.
func NewStore() *Store {
	world := ecs.NewWorld()
	return &Store{
		world: world,
		m:     ecs.NewMap1[Particle](world),
	}
}

// Add inserts a new particle and returns its stable id.
func (s *Store) Add(p Particle) ID {
	id := s.m.NewEntity(&p)
	s.ids = append(s.ids, id)
	return id
}

// Get returns a pointer to the live particle record for id. The pointer is
// valid until the next structural change to the store (entity add/remove);
// integrator code must not retain it across a step boundary.
func (s *Store) Get(id ID) *Particle {
	return s.m.Get(id)
}

// Len returns the number of particles ever added (including DEAD ones;
// DEAD particles keep their slot, so this equals the build-time count).
func (s *Store) Len() int {
	return len(s.ids)
}

// IDs returns every particle id in insertion order.
func (s *Store) IDs() []ID {
	return s.ids
}

// Each calls fn for every particle in insertion order.
func (s *Store) Each(fn func(id ID, p *Particle)) {
	for _, id := range s.ids {
		fn(id, s.m.Get(id))
	}
}

// CountAlive returns the number of ALIVE+STATIONARY particles.
func (s *Store) CountAlive() int {
	n := 0
	for _, id := range s.ids {
		st := s.m.Get(id).State
		if st == Alive || st == Stationary {
			n++
		}
	}
	return n
}

// CountDead returns the number of DEAD particles.
func (s *Store) CountDead() int {
	return s.Len() - s.CountAlive()
}
