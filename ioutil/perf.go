package ioutil

import (
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/molsim/molerr"
)

// BenchmarkRow is one -b replication's wall-clock timing, written with
// gocsv the same way telemetry/output.go marshals PerfStatsCSV: one flat
// struct per row, csv tags driving the header.
type BenchmarkRow struct {
	Replication int     `csv:"replication"`
	WallMs      float64 `csv:"wall_ms"`
}

// WriteBenchmarkCSV writes one row per -b replication; the mean is not
// written to the file (MeanMs computes it separately). Grounded on telemetry/output.go's WritePerf (gocsv.Marshal over a flat
// struct slice).
func WriteBenchmarkCSV(path string, wallMs []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return molerr.NewIOError("cannot create benchmark CSV", err)
	}
	defer f.Close()

	rows := make([]BenchmarkRow, len(wallMs))
	var sum float64
	for i, ms := range wallMs {
		rows[i] = BenchmarkRow{Replication: i, WallMs: ms}
		sum += ms
	}
	if err := gocsv.Marshal(rows, f); err != nil {
		return molerr.NewIOError("cannot write benchmark CSV", err)
	}
	return nil
}

// MeanMs returns the mean of wallMs, or 0 for an empty slice.
func MeanMs(wallMs []float64) float64 {
	if len(wallMs) == 0 {
		return 0
	}
	var sum float64
	for _, ms := range wallMs {
		sum += ms
	}
	return sum / float64(len(wallMs))
}
