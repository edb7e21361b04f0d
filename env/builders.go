package env

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/molsim/force"
	"github.com/pthm-cable/molsim/mb"
	"github.com/pthm-cable/molsim/molerr"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// AddCuboid emits counts.X*counts.Y*counts.Z particles on an axis-aligned
// lattice of spacing w starting at origin, with bulk velocity v plus
// mb(vt, dim) thermal noise per particle.
func (e *Environment) AddCuboid(origin, v vecmath.Vec3, counts vecmath.Int3, w, m, vt float64, typ int, dim int, state particle.State) ([]particle.ID, error) {
	if e.built {
		return nil, molerr.NewInvariantError("AddCuboid called after Build")
	}
	if counts[0] == 0 || counts[1] == 0 || counts[2] == 0 {
		return nil, molerr.NewConfigError("cuboid particle counts must all be >= 1", nil)
	}
	rng := newRNG()
	ids := make([]particle.ID, 0, counts[0]*counts[1]*counts[2])
	for x := 0; x < counts[0]; x++ {
		for y := 0; y < counts[1]; y++ {
			for z := 0; z < counts[2]; z++ {
				pos := vecmath.Vec3{
					origin[0] + float64(x)*w,
					origin[1] + float64(y)*w,
					origin[2] + float64(z)*w,
				}
				vel := v.Add(mb.Sample(vt, dim, rng))
				id, err := e.AddParticle(pos, vel, m, typ, state)
				if err != nil {
					return nil, err
				}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// AddSphere emits every lattice point of spacing w within radiusCells
// cells of origin.
func (e *Environment) AddSphere(origin, v vecmath.Vec3, radiusCells, w, m, vt float64, typ int, dim int, state particle.State) ([]particle.ID, error) {
	if e.built {
		return nil, molerr.NewInvariantError("AddSphere called after Build")
	}
	if dim < 2 || dim > 3 {
		return nil, molerr.NewConfigError("AddSphere requires an explicit dim of 2 or 3", nil)
	}
	rng := newRNG()
	n := int(math.Ceil(radiusCells))
	radius := radiusCells * w

	var ids []particle.ID
	for x := -n; x <= n; x++ {
		for y := -n; y <= n; y++ {
			zlo, zhi := 0, 0
			if dim == 3 {
				zlo, zhi = -n, n
			}
			for z := zlo; z <= zhi; z++ {
				offset := vecmath.Vec3{float64(x) * w, float64(y) * w, float64(z) * w}
				if offset.L2() > radius {
					continue
				}
				vel := v.Add(mb.Sample(vt, dim, rng))
				id, err := e.AddParticle(origin.Add(offset), vel, m, typ, state)
				if err != nil {
					return nil, err
				}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// AddMembrane emits a 2-D counts.X x counts.Y lattice of spacing w
// starting at origin, with bulk velocity v, and registers harmonic
// springs of stiffness k (rest length = initial distance) between every
// 8-neighbour in the mesh.
func (e *Environment) AddMembrane(origin, v vecmath.Vec3, counts vecmath.Int3, w, m, k, cutoff float64, typ int) ([]particle.ID, error) {
	if e.built {
		return nil, molerr.NewInvariantError("AddMembrane called after Build")
	}
	if counts[2] != 1 {
		return nil, molerr.NewConfigError("membrane counts_z must be 1", nil)
	}
	if counts[0] == 0 || counts[1] == 0 {
		return nil, molerr.NewConfigError("membrane particle counts must all be >= 1", nil)
	}

	mesh := make([][]particle.ID, counts[0])
	var ids []particle.ID
	for x := 0; x < counts[0]; x++ {
		mesh[x] = make([]particle.ID, counts[1])
		for y := 0; y < counts[1]; y++ {
			pos := vecmath.Vec3{origin[0] + float64(x)*w, origin[1] + float64(y)*w, origin[2]}
			id, err := e.AddParticle(pos, v, m, typ, particle.Alive)
			if err != nil {
				return nil, err
			}
			mesh[x][y] = id
			ids = append(ids, id)
		}
	}

	neighborOffsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	for x := 0; x < counts[0]; x++ {
		for y := 0; y < counts[1]; y++ {
			a := mesh[x][y]
			pa := e.Store.Get(a)
			for _, off := range neighborOffsets {
				nx, ny := x+off[0], y+off[1]
				if nx < 0 || nx >= counts[0] || ny < 0 || ny >= counts[1] {
					continue
				}
				// Register each undirected mesh edge exactly once by
				// lattice coordinate, not particle id (ark's entity ids
				// support equality, not ordering).
				if nx < x || (nx == x && ny < y) {
					continue
				}
				b := mesh[nx][ny]
				pb := e.Store.Get(b)
				rest := pa.Position.Sub(pb.Position).L2()
				e.Registry.AddBond(a, b, force.NewHarmonic(k, rest, cutoff))
			}
		}
	}
	return ids, nil
}
