// Command vehiclesim runs one vehicle dynamics and fuel simulation, either
// interactively or from flags, prints the run statistics and writes the
// step records to CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/vehicle.sim/internal/config"
	"github.com/banshee-data/vehicle.sim/internal/db"
	"github.com/banshee-data/vehicle.sim/internal/fsutil"
	"github.com/banshee-data/vehicle.sim/internal/monitoring"
	"github.com/banshee-data/vehicle.sim/internal/plot"
	"github.com/banshee-data/vehicle.sim/internal/report"
	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
	"github.com/banshee-data/vehicle.sim/internal/version"
)

// options are the parsed command line flags.
type options struct {
	configPath string
	dbPath     string
	outDir     string
	label      string
	plot       bool
	batch      bool
	debug      bool
	version    bool

	mass, width, height, length, efficiency float64
	distance, speed                         float64
	scenario                                int
}

func parseFlags(args []string, errOut io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("vehiclesim", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&o.configPath, "config", "", "Path to a JSON simulation config (defaults are built in)")
	fs.StringVar(&o.dbPath, "db", "", "Also store the run in this SQLite database")
	fs.StringVar(&o.outDir, "out", "", "Directory for CSV, report and plot output (overrides output_dir)")
	fs.StringVar(&o.label, "label", "", "Label for stored runs and output file names")
	fs.BoolVar(&o.plot, "plot", false, "Write an analysis report and PNG charts next to the CSV")
	fs.BoolVar(&o.batch, "batch", false, "Take all parameters from flags and skip the prompts; passing -batch counts as the go/no-go confirmation")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&o.version, "version", false, "Print version information and exit")

	fs.Float64Var(&o.mass, "mass", 1500, "Vehicle mass (kg), batch mode")
	fs.Float64Var(&o.width, "width", 1.8, "Vehicle width (m), batch mode")
	fs.Float64Var(&o.height, "height", 1.5, "Vehicle height (m), batch mode")
	fs.Float64Var(&o.length, "length", 4.5, "Vehicle length (m), batch mode")
	fs.Float64Var(&o.efficiency, "efficiency", 0.25, "Engine efficiency, batch mode")
	fs.Float64Var(&o.distance, "distance", 10, "Travel distance (km), batch mode")
	fs.Float64Var(&o.speed, "speed", 50, "Initial speed (km/h), batch mode")
	fs.IntVar(&o.scenario, "scenario", 1, "Scenario 1-3, batch mode")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

func loadConfig(path string) (*config.SimConfig, error) {
	if path == "" {
		return config.DefaultSimConfig(), nil
	}
	return config.LoadSimConfig(path)
}

// app holds what one invocation needs to run simulations.
type app struct {
	opts *options
	cfg  *config.SimConfig
	fsys fsutil.FileSystem
	out  io.Writer
}

func (a *app) outputDir() string {
	if a.opts.outDir != "" {
		return a.opts.outDir
	}
	return a.cfg.GetOutputDir()
}

// run executes the whole program against in and out.
func run(ctx context.Context, args []string, in io.Reader, out io.Writer, fsys fsutil.FileSystem) error {
	opts, err := parseFlags(args, out)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintf(out, "vehiclesim %s\n", version.String())
		return nil
	}
	monitoring.SetDebug(opts.debug)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	a := &app{opts: opts, cfg: cfg, fsys: fsys, out: out}

	report.Title(out)
	if opts.batch {
		// -batch stands in for the interactive confirmation.
		p := vehicle.NewProfile(opts.mass, opts.width, opts.height, opts.length, opts.efficiency)
		t := vehicle.Trip{DistanceKm: opts.distance, InitialSpeedKmh: opts.speed, Scenario: vehicle.Scenario(opts.scenario)}
		if err := vehicle.CheckRanges(p, t); err != nil {
			return err
		}
		report.InputSummary(out, p, t)
		err = a.simulate(ctx, p, t)
	} else {
		err = a.interactive(ctx, newPrompter(in, out))
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, report.Rule)
	fmt.Fprintln(out, "PROGRAM TERMINATED SUCCESSFULLY")
	fmt.Fprintln(out, report.Rule)
	return nil
}

// interactive prompts for a profile and trip, confirms, runs, and offers
// another scenario until the user declines.
func (a *app) interactive(ctx context.Context, p *prompter) error {
	for {
		fmt.Fprintln(a.out, "Enter Vehicle Parameters:")
		fmt.Fprintln(a.out, report.Rule)
		profile, err := p.readProfile()
		if err != nil {
			return err
		}

		report.Section(a.out, "Enter Trip Parameters:")
		trip, err := p.readTrip(report.ScenarioMenu)
		if err != nil {
			return err
		}

		report.InputSummary(a.out, profile, trip)
		if !p.yes("Confirm and start simulation? (1 = Yes, 0 = No): ") {
			fmt.Fprintln(a.out, "Simulation cancelled.")
			return nil
		}

		if err := a.simulate(ctx, profile, trip); err != nil {
			return err
		}

		fmt.Fprintln(a.out, report.Rule)
		if !p.yes("Run another scenario? (1 = Yes, 0 = No): ") {
			return nil
		}
		fmt.Fprintln(a.out)
	}
}

// simulate runs one trip and writes every requested output.
func (a *app) simulate(ctx context.Context, profile vehicle.Profile, trip vehicle.Trip) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.GetRunTimeout())
	defer cancel()

	opts := append(a.cfg.EngineOptions(), sim.WithObserver(sim.LogProgress(func(format string, v ...interface{}) {
		fmt.Fprintf(a.out, format+"\n", v...)
	})))
	engine, err := sim.New(profile, trip, opts...)
	if err != nil {
		return err
	}

	report.Section(a.out, "SIMULATION RUNNING...")
	fmt.Fprintf(a.out, "Total Steps: %d\n", engine.StepCount())
	fmt.Fprintln(a.out, report.Rule)
	res, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	report.Section(a.out, "SIMULATION COMPLETED")

	summary, summaryErr := stats.Summarize(res.Records)
	switch {
	case errors.Is(summaryErr, stats.ErrDegenerateRun):
		fmt.Fprintf(a.out, "No statistics: %v\n", summaryErr)
	case summaryErr != nil:
		return summaryErr
	default:
		report.Summary(a.out, summary)
	}

	dir := a.outputDir()
	path, err := report.SaveCSV(a.fsys, dir, trip.Scenario, res.Records)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Results saved to: %s\n", path)

	if a.opts.dbPath != "" {
		if err := a.store(ctx, profile, trip, res); err != nil {
			return err
		}
	}
	if a.opts.plot && summaryErr == nil {
		if err := a.analyse(dir, trip, res.Records); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) store(ctx context.Context, profile vehicle.Profile, trip vehicle.Trip, res *sim.Result) error {
	database, err := db.NewDB(a.opts.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	stored, err := database.InsertRun(ctx, a.opts.label, profile, trip, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Run stored as %s in %s\n", stored.ID, a.opts.dbPath)
	return nil
}

func (a *app) label(trip vehicle.Trip) string {
	if a.opts.label != "" {
		return a.opts.label
	}
	return fmt.Sprintf("scenario_%d", int(trip.Scenario))
}

// analyse writes the detailed text report and the analysis charts.
func (a *app) analyse(dir string, trip vehicle.Trip, records []sim.StepRecord) error {
	label := a.label(trip)
	analysis, err := stats.Analyze(records, a.cfg.AnalysisOptions())
	if err != nil {
		return err
	}
	reportPath, err := report.SaveAnalysis(a.fsys, dir, label, analysis)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Report saved to: %s\n", reportPath)

	plotPath, err := plot.SaveAnalysis(a.fsys, dir, label, records, a.cfg.GetPeakWindow())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Charts saved to: %s\n", plotPath)
	monitoring.Debugf("[vehiclesim] analysis for %s written to %s", label, dir)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, fsutil.OSFileSystem{})
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, vehicle.ErrInvalidInput):
		fmt.Fprintf(os.Stdout, "ERROR: %v\n", err)
		os.Exit(1)
	default:
		log.Fatalf("vehiclesim: %v", err)
	}
}
