package ioutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/pthm-cable/molsim/effects"
	"github.com/pthm-cable/molsim/molerr"
)

// StatsWriter writes the binned-statistics CSV spec.md §6 describes: a
// header "time&vel&dens/bins,1,...,n_bins" followed by three rows per
// sample ("t,<time>", "v,v_1,...,v_n", "d,d_1,...,d_n"). The per-sample
// row triplet has no fixed column count (n_bins is a runtime parameter),
// which is why this writer uses stdlib encoding/csv directly rather than
// gocsv's one-struct-per-row model — see DESIGN.md.
type StatsWriter struct {
	f *os.File
	w *csv.Writer
}

// NewStatsWriter creates path and writes its header row.
func NewStatsWriter(path string, nBins int) (*StatsWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, molerr.NewIOError("cannot create stats CSV", err)
	}
	w := csv.NewWriter(f)

	header := make([]string, nBins+1)
	header[0] = "time&vel&dens/bins"
	for i := 1; i <= nBins; i++ {
		header[i] = strconv.Itoa(i)
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, molerr.NewIOError("cannot write stats CSV header", err)
	}
	return &StatsWriter{f: f, w: w}, nil
}

// WriteSample appends one sample's t/v/d row triplet.
func (sw *StatsWriter) WriteSample(row effects.BinRow) error {
	tRow := []string{"t", fmt.Sprintf("%g", row.Time)}
	vRow := make([]string, len(row.VelocityBins)+1)
	vRow[0] = "v"
	for i, v := range row.VelocityBins {
		vRow[i+1] = fmt.Sprintf("%g", v)
	}
	dRow := make([]string, len(row.DensityBins)+1)
	dRow[0] = "d"
	for i, d := range row.DensityBins {
		dRow[i+1] = fmt.Sprintf("%g", d)
	}
	for _, r := range [][]string{tRow, vRow, dRow} {
		if err := sw.w.Write(r); err != nil {
			return molerr.NewIOError("cannot write stats CSV row", err)
		}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (sw *StatsWriter) Close() error {
	sw.w.Flush()
	if err := sw.w.Error(); err != nil {
		sw.f.Close()
		return molerr.NewIOError("cannot flush stats CSV", err)
	}
	return sw.f.Close()
}
