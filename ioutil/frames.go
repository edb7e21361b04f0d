// Package ioutil writes the simulation's external output formats: VTK
// unstructured-grid frames, XYZ frames, the binned-statistics CSV, and a
// benchmark-mode performance CSV. Frame naming follows
// "<base>_<iter:%04d>.<ext>"; writers never read back what they write.
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

// FrameName builds the "<base>_<iter:%04d>.<ext>" output file name spec.md
// §6 specifies, grounded on the 4-digit zero-padded iteration suffix
// original_source's VTKWriter/XYZWriter both use.
func FrameName(base string, iter int, ext string) string {
	return fmt.Sprintf("%s_%04d.%s", base, iter, ext)
}

// PrepareOutputDir ensures dir exists, refusing to reuse a non-empty
// existing directory unless overwrite is set (the CLI's -f flag).
func PrepareOutputDir(dir string, overwrite bool) error {
	entries, err := os.ReadDir(dir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return molerr.NewIOError("cannot create output directory", mkErr)
		}
		return nil
	case err != nil:
		return molerr.NewIOError("cannot stat output directory", err)
	case len(entries) > 0 && !overwrite:
		return molerr.NewIOError(fmt.Sprintf("output directory %q is not empty (pass -f to overwrite)", dir), nil)
	}
	return nil
}

// aliveOrStationary reports whether p should appear in a frame: spec.md
// §6's writers only ever plot ALIVE|STATIONARY particles, skipping DEAD
// ones entirely (original_source's plot_particles filters the same way).
func aliveOrStationary(p *particle.Particle) bool {
	return p.State == particle.Alive || p.State == particle.Stationary
}

// WriteXYZ writes one XYZ frame: a particle count, a comment line, then
// one "<symbol> x y z" row per live particle, grounded line-for-line on
// original_source/src/io/XYZWriter.cpp.
func WriteXYZ(dir, base string, iter int, e *env.Environment) error {
	path := filepath.Join(dir, FrameName(base, iter, "xyz"))
	f, err := os.Create(path)
	if err != nil {
		return molerr.NewIOError("cannot create XYZ frame", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	n := 0
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if aliveOrStationary(p) {
			n++
		}
	})
	fmt.Fprintln(w, n)
	fmt.Fprintln(w, "Generated by molsim. See http://openbabel.org/wiki/XYZ_(format) for file format doku.")
	e.Store.Each(func(id particle.ID, p *particle.Particle) {
		if !aliveOrStationary(p) {
			return
		}
		fmt.Fprintf(w, "Ar %g %g %g\n", p.Position[0], p.Position[1], p.Position[2])
	})
	return w.Flush()
}
