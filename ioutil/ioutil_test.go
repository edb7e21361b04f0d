package ioutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/molsim/boundary"
	"github.com/pthm-cable/molsim/effects"
	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/force"
	"github.com/pthm-cable/molsim/particle"
	"github.com/pthm-cable/molsim/vecmath"
)

func testEnv(t *testing.T) *env.Environment {
	t.Helper()
	b := &boundary.Boundary{
		Origin: vecmath.Vec3{0, 0, 0},
		Extent: vecmath.Vec3{10, 10, 0},
		Rules:  [6]boundary.Rule{boundary.Outflow, boundary.Outflow, boundary.Outflow, boundary.Outflow, boundary.Outflow, boundary.Outflow},
	}
	registry := force.NewRegistry()
	registry.Register(0, force.NewLennardJones(5, 1, 2.5))
	e := env.New(2, b, registry)
	e.GridConstant = 2.5
	if _, err := e.AddParticle(vecmath.Vec3{1, 1, 0}, vecmath.Vec3{0.1, 0, 0}, 1, 0, particle.Alive); err != nil {
		t.Fatalf("AddParticle: %v", err)
	}
	if _, err := e.AddParticle(vecmath.Vec3{3, 3, 0}, vecmath.Vec3{0, 0, 0}, 1, 0, particle.Dead); err != nil {
		t.Fatalf("AddParticle: %v", err)
	}
	if err := e.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return e
}

func TestFrameName(t *testing.T) {
	if got, want := FrameName("run", 7, "xyz"), "run_0007.xyz"; got != want {
		t.Fatalf("FrameName = %q, want %q", got, want)
	}
}

func TestPrepareOutputDirRefusesNonEmptyWithoutForce(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := PrepareOutputDir(dir, false); err == nil {
		t.Fatal("expected an error for a non-empty output directory without -f")
	}
	if err := PrepareOutputDir(dir, true); err != nil {
		t.Fatalf("PrepareOutputDir(overwrite): %v", err)
	}
}

func TestWriteXYZSkipsDeadParticles(t *testing.T) {
	e := testEnv(t)
	dir := t.TempDir()
	if err := WriteXYZ(dir, "run", 0, e); err != nil {
		t.Fatalf("WriteXYZ: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "run_0000.xyz"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != "1" {
		t.Fatalf("particle count line = %q, want \"1\" (DEAD particle must be excluded)", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (count, comment, one particle row)", len(lines))
	}
}

func TestWriteVTUContainsExpectedPointCount(t *testing.T) {
	e := testEnv(t)
	dir := t.TempDir()
	if err := WriteVTU(dir, "run", 3, e); err != nil {
		t.Fatalf("WriteVTU: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "run_0003.vtu"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `NumberOfPoints="1"`) {
		t.Fatalf("expected NumberOfPoints=\"1\" (DEAD particle excluded), got:\n%s", content)
	}
	if !strings.Contains(content, `Name="velocity"`) || !strings.Contains(content, `Name="force"`) {
		t.Fatal("expected velocity and force point-data arrays")
	}
}

func TestStatsWriterHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.csv")
	sw, err := NewStatsWriter(path, 3)
	if err != nil {
		t.Fatalf("NewStatsWriter: %v", err)
	}
	row := effects.BinRow{Time: 1.5, VelocityBins: []float64{0.1, 0.2, 0.3}, DensityBins: []float64{1, 2, 3}}
	if err := sw.WriteSample(row); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := sw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != "time&vel&dens/bins,1,2,3" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (header + t/v/d rows)", len(lines))
	}
	if !strings.HasPrefix(lines[1], "t,") || !strings.HasPrefix(lines[2], "v,") || !strings.HasPrefix(lines[3], "d,") {
		t.Fatalf("row prefixes wrong: %v", lines[1:])
	}
}

func TestWriteBenchmarkCSVAndMean(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.csv")
	samples := []float64{10, 20, 30}
	if err := WriteBenchmarkCSV(path, samples); err != nil {
		t.Fatalf("WriteBenchmarkCSV: %v", err)
	}
	if got, want := MeanMs(samples), 20.0; got != want {
		t.Fatalf("MeanMs = %v, want %v", got, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "replication") || !strings.Contains(string(data), "wall_ms") {
		t.Fatalf("expected gocsv header fields, got:\n%s", string(data))
	}
}
