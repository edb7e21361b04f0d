// Command molsim drives a molecular-dynamics simulation from a scenario
// file: parse (TXT or XML), build the environment, step it with
// Störmer-Verlet under one of three parallel strategies, and emit VTK or
// XYZ frames plus binned statistics on a write-frequency schedule.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pthm-cable/molsim/effects"
	"github.com/pthm-cable/molsim/env"
	"github.com/pthm-cable/molsim/integrator"
	"github.com/pthm-cable/molsim/ioutil"
	"github.com/pthm-cable/molsim/molconfig"
	"github.com/pthm-cable/molsim/molerr"
	"github.com/pthm-cable/molsim/scenario"
)

var (
	benchmark  = flag.Bool("b", false, "benchmark mode: disable per-step IO, run N replications, report mean ms")
	force      = flag.Bool("f", false, "allow overwrite of an existing, non-empty output directory")
	outputDir  = flag.String("o", "output", "output directory for frames, stats.csv and checkpoint.txt")
	configPath = flag.String("c", "", "path to a molconfig YAML override file")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] <input_file> <XYZ|VTK>\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if err := molconfig.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "molconfig: %v\n", err)
		os.Exit(1)
	}
	cfg := molconfig.Cfg()
	setupLogging(cfg.Logging)

	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}
	inputFile, formatArg := flag.Arg(0), strings.ToUpper(flag.Arg(1))
	if formatArg != "XYZ" && formatArg != "VTK" {
		slog.Error("unsupported output format", "format", flag.Arg(1))
		os.Exit(1)
	}

	sc, err := readScenario(inputFile)
	if err != nil {
		slog.Error("failed to read scenario", "file", inputFile, "error", err)
		os.Exit(1)
	}

	result, err := scenario.Build(sc)
	if err != nil {
		slog.Error("failed to build environment", "error", err)
		os.Exit(1)
	}

	acc, err := strategyFor(result.General.ParallelStrategy, result.Env, cfg.Engine)
	if err != nil {
		slog.Error("failed to select parallel strategy", "error", err)
		os.Exit(1)
	}

	nSteps := int(result.General.Duration / result.General.Dt)
	opts := integrator.Options{
		Dt:             result.General.Dt,
		TempAdjustFreq: result.TempAdjustFreq,
		Thermostat:     result.Thermostat,
		ConstantForces: result.ConstantForces,
	}

	if *benchmark {
		runBenchmark(sc, cfg, nSteps, formatArg)
		return
	}

	if err := ioutil.PrepareOutputDir(*outputDir, *force); err != nil {
		slog.Error("output directory not usable", "error", err)
		os.Exit(1)
	}

	if err := runSimulation(result.Env, acc, opts, nSteps, formatArg, sc, cfg); err != nil {
		slog.Error("simulation step failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg molconfig.LoggingConfig) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func readScenario(path string) (*scenario.Scenario, error) {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return scenario.ReadXML(path)
	}
	return scenario.ReadTXT(path)
}

func strategyFor(strategy int, e *env.Environment, cfg molconfig.EngineConfig) (integrator.ForceAccumulator, error) {
	switch strategy {
	case 0:
		return integrator.Serial{}, nil
	case 1:
		return integrator.CellLock{Workers: cfg.Workers}, nil
	case 2:
		return integrator.NewSpatialDecomposition(e, cfg.TargetBlocks, cfg.Workers), nil
	default:
		return nil, molerr.NewConfigError(fmt.Sprintf("unknown parallel strategy %d", strategy), nil)
	}
}

func writeFrame(e *env.Environment, base string, iter int, format string) error {
	switch format {
	case "XYZ":
		return ioutil.WriteXYZ(*outputDir, base, iter, e)
	default:
		return ioutil.WriteVTU(*outputDir, base, iter, e)
	}
}

// runSimulation drives the full Störmer-Verlet loop with per-step IO:
// frames and a binned-statistics sample every WriteFreq steps, and a
// final checkpoint.
func runSimulation(e *env.Environment, acc integrator.ForceAccumulator, opts integrator.Options, nSteps int, format string, sc *scenario.Scenario, cfg *molconfig.Config) error {
	statsPath := filepath.Join(*outputDir, "stats.csv")
	sw, err := ioutil.NewStatsWriter(statsPath, cfg.Stats.Bins)
	if err != nil {
		return err
	}
	defer sw.Close()

	writeFreq := sc.General.WriteFreq
	if writeFreq <= 0 {
		writeFreq = 1
	}

	t := 0.0
	for step := 1; step <= nSteps; step++ {
		if err := integrator.Step(e, acc, opts, step, t); err != nil {
			return err
		}
		t += opts.Dt

		if step%writeFreq == 0 {
			if err := writeFrame(e, sc.General.OutputBaseName, step, format); err != nil {
				return err
			}
			row := effects.ComputeBinStats(e, cfg.Stats.Axis, cfg.Stats.Bins, t, cfg.Stats.SliceVolume)
			if err := sw.WriteSample(row); err != nil {
				return err
			}
			slog.Info("step", "step", step, "sim_time", t, "alive", e.Store.CountAlive())
		}
	}

	return scenario.WriteCheckpoint(filepath.Join(*outputDir, "checkpoint.txt"), sc, e)
}

// runBenchmark runs cfg.Benchmark.Replications independent simulations
// with all per-step IO disabled, timing each one, then writes a CSV of
// the per-replication wall times and reports the mean.
func runBenchmark(sc *scenario.Scenario, cfg *molconfig.Config, nSteps int, format string) {
	_ = format // benchmark mode never writes frames
	wallMs := make([]float64, 0, cfg.Benchmark.Replications)
	for rep := 0; rep < cfg.Benchmark.Replications; rep++ {
		result, err := scenario.Build(sc)
		if err != nil {
			slog.Error("benchmark: failed to build environment", "replication", rep, "error", err)
			os.Exit(1)
		}
		acc, err := strategyFor(result.General.ParallelStrategy, result.Env, cfg.Engine)
		if err != nil {
			slog.Error("benchmark: failed to select parallel strategy", "error", err)
			os.Exit(1)
		}
		opts := integrator.Options{
			Dt:             result.General.Dt,
			TempAdjustFreq: result.TempAdjustFreq,
			Thermostat:     result.Thermostat,
			ConstantForces: result.ConstantForces,
		}

		start := time.Now()
		t := 0.0
		for step := 1; step <= nSteps; step++ {
			if err := integrator.Step(result.Env, acc, opts, step, t); err != nil {
				slog.Error("benchmark: step failed", "replication", rep, "step", step, "error", err)
				os.Exit(1)
			}
			t += opts.Dt
		}
		wallMs = append(wallMs, float64(time.Since(start).Milliseconds()))
		slog.Info("benchmark replication done", "replication", rep, "wall_ms", wallMs[rep])
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		slog.Error("benchmark: cannot create output directory", "error", err)
		os.Exit(1)
	}
	if err := ioutil.WriteBenchmarkCSV(filepath.Join(*outputDir, "benchmark.csv"), wallMs); err != nil {
		slog.Error("benchmark: cannot write CSV", "error", err)
		os.Exit(1)
	}
	slog.Info("benchmark complete", "replications", len(wallMs), "mean_ms", ioutil.MeanMs(wallMs))
}
