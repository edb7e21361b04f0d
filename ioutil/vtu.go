package ioutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/molerr"
	"github.com/pthm-cable/molsim/particle"
)

// WriteVTU writes one VTK XML UnstructuredGrid (.vtu) frame: one point per
// live particle carrying mass/velocity/force/type point-data arrays, no
// cells. Layout grounded on
// original_source/src/io/Output/VTKWriter.cpp's initializeOutput/
// plotParticle (mass, velocity, force, type data arrays in that order; the
// "force" array is old_force, matching plotParticle's own field choice).
func WriteVTU(dir, base string, iter int, e *env.Environment) error {
	path := filepath.Join(dir, FrameName(base, iter, "vtu"))
	f, err := os.Create(path)
	if err != nil {
		return molerr.NewIOError("cannot create VTK frame", err)
	}
	defer f.Close()

	n := 0
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if aliveOrStationary(p) {
			n++
		}
	})

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, `<?xml version="1.0"?>`)
	fmt.Fprintln(w, `<VTKFile type="UnstructuredGrid" version="0.1" byte_order="LittleEndian">`)
	fmt.Fprintln(w, `  <UnstructuredGrid>`)
	fmt.Fprintf(w, "    <Piece NumberOfPoints=\"%d\" NumberOfCells=\"0\">\n", n)

	fmt.Fprintln(w, `      <PointData>`)
	fmt.Fprintln(w, `        <DataArray type="Float32" Name="mass" NumberOfComponents="1" format="ascii">`)
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if aliveOrStationary(p) {
			fmt.Fprintf(w, "          %g\n", p.Mass)
		}
	})
	fmt.Fprintln(w, `        </DataArray>`)

	fmt.Fprintln(w, `        <DataArray type="Float32" Name="velocity" NumberOfComponents="3" format="ascii">`)
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if aliveOrStationary(p) {
			fmt.Fprintf(w, "          %g %g %g\n", p.Velocity[0], p.Velocity[1], p.Velocity[2])
		}
	})
	fmt.Fprintln(w, `        </DataArray>`)

	fmt.Fprintln(w, `        <DataArray type="Float32" Name="force" NumberOfComponents="3" format="ascii">`)
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if aliveOrStationary(p) {
			fmt.Fprintf(w, "          %g %g %g\n", p.OldForce[0], p.OldForce[1], p.OldForce[2])
		}
	})
	fmt.Fprintln(w, `        </DataArray>`)

	fmt.Fprintln(w, `        <DataArray type="Int32" Name="type" NumberOfComponents="1" format="ascii">`)
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if aliveOrStationary(p) {
			fmt.Fprintf(w, "          %d\n", p.Type)
		}
	})
	fmt.Fprintln(w, `        </DataArray>`)
	fmt.Fprintln(w, `      </PointData>`)

	fmt.Fprintln(w, `      <CellData>`)
	fmt.Fprintln(w, `      </CellData>`)

	fmt.Fprintln(w, `      <Points>`)
	fmt.Fprintln(w, `        <DataArray type="Float32" Name="points" NumberOfComponents="3" format="ascii">`)
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if aliveOrStationary(p) {
			fmt.Fprintf(w, "          %g %g %g\n", p.Position[0], p.Position[1], p.Position[2])
		}
	})
	fmt.Fprintln(w, `        </DataArray>`)
	fmt.Fprintln(w, `      </Points>`)

	// Paraview wants a (possibly empty) Cells block even though there are
	// no cells, matching the original writer's dummy "types" entry.
	fmt.Fprintln(w, `      <Cells>`)
	fmt.Fprintln(w, `        <DataArray type="Float32" Name="types" NumberOfComponents="0" format="ascii">`)
	fmt.Fprintln(w, `        </DataArray>`)
	fmt.Fprintln(w, `      </Cells>`)

	fmt.Fprintln(w, `    </Piece>`)
	fmt.Fprintln(w, `  </UnstructuredGrid>`)
	fmt.Fprintln(w, `</VTKFile>`)

	return w.Flush()
}
