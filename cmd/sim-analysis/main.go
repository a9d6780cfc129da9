// Command sim-analysis runs the detailed analysis over saved simulation
// runs: scenario CSV files in a directory, CSV files named on the command
// line, or runs fetched from a sim-server. It prints the statistics,
// writes a text report and charts per run, and compares runs when there
// is more than one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/vehicle.sim/internal/api"
	"github.com/banshee-data/vehicle.sim/internal/config"
	"github.com/banshee-data/vehicle.sim/internal/fsutil"
	"github.com/banshee-data/vehicle.sim/internal/httputil"
	"github.com/banshee-data/vehicle.sim/internal/plot"
	"github.com/banshee-data/vehicle.sim/internal/report"
	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
	"github.com/banshee-data/vehicle.sim/internal/version"
)

var errNoRuns = errors.New("no simulation runs found")

const fetchTimeout = 60 * time.Second

type options struct {
	dir        string
	outDir     string
	configPath string
	server     string
	runIDs     string
	noPlot     bool
	version    bool
	files      []string
}

func parseFlags(args []string, errOut io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("sim-analysis", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&o.dir, "dir", ".", "Directory searched for vehicle_simulation_scenario_<n>.csv files")
	fs.StringVar(&o.outDir, "out", "", "Directory for reports and charts (defaults to -dir)")
	fs.StringVar(&o.configPath, "config", "", "Path to a JSON simulation config for the analysis parameters")
	fs.StringVar(&o.server, "server", "http://localhost:8080", "sim-server base URL used with -runs")
	fs.StringVar(&o.runIDs, "runs", "", "Comma-separated run ids to fetch from -server instead of reading CSV files")
	fs.BoolVar(&o.noPlot, "no-plot", false, "Skip PNG chart generation")
	fs.BoolVar(&o.version, "version", false, "Print version information and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.files = fs.Args()
	if o.outDir == "" {
		o.outDir = o.dir
	}
	return o, nil
}

// dataset is a set of labelled runs in load order.
type dataset struct {
	labels  []string
	records map[string][]sim.StepRecord
}

func (d *dataset) add(label string, records []sim.StepRecord) {
	if d.records == nil {
		d.records = map[string][]sim.StepRecord{}
	}
	if _, dup := d.records[label]; !dup {
		d.labels = append(d.labels, label)
	}
	d.records[label] = records
}

// loadCSVs reads the named files, or the scenario CSVs found in dir when no
// files are named.
func loadCSVs(fsys fsutil.FileSystem, dir string, files []string, out io.Writer) *dataset {
	type source struct{ label, path string }
	var sources []source
	if len(files) > 0 {
		for _, f := range files {
			sources = append(sources, source{strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)), f})
		}
	} else {
		for _, s := range vehicle.Scenarios {
			path := filepath.Join(dir, report.CSVFileName(s))
			if fsys.Exists(path) {
				sources = append(sources, source{fmt.Sprintf("Scenario_%d", int(s)), path})
			}
		}
	}

	d := &dataset{}
	for _, src := range sources {
		records, err := report.LoadCSV(fsys, src.path)
		if err != nil {
			fmt.Fprintf(out, "Error loading file: %v\n", err)
			continue
		}
		d.add(src.label, records)
	}
	return d
}

// fetchRuns reads runs from a sim-server.
func fetchRuns(ctx context.Context, c *api.Client, ids []string) (*dataset, error) {
	d := &dataset{}
	for _, id := range ids {
		run, err := c.Run(ctx, id)
		if err != nil {
			return nil, err
		}
		records, err := c.Records(ctx, id)
		if err != nil {
			return nil, err
		}
		label := run.Label
		if label == "" {
			label = id
		}
		d.add(label, records)
	}
	return d, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func run(ctx context.Context, args []string, out io.Writer, fsys fsutil.FileSystem, client httputil.HTTPClient) error {
	opts, err := parseFlags(args, out)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintf(out, "sim-analysis %s\n", version.String())
		return nil
	}

	cfg := config.DefaultSimConfig()
	if opts.configPath != "" {
		if cfg, err = config.LoadSimConfig(opts.configPath); err != nil {
			return err
		}
	}

	report.Section(out, "ADVANCED VEHICLE SIMULATION ANALYSIS")

	var d *dataset
	if ids := splitIDs(opts.runIDs); len(ids) > 0 {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		if d, err = fetchRuns(fetchCtx, api.NewClient(opts.server, client), ids); err != nil {
			return err
		}
	} else {
		d = loadCSVs(fsys, opts.dir, opts.files, out)
	}
	if len(d.labels) == 0 {
		fmt.Fprintln(out, "ERROR: No simulation CSV files found.")
		fmt.Fprintln(out, "Please run vehiclesim first.")
		return errNoRuns
	}
	fmt.Fprintf(out, "\nFound %d run(s)\n", len(d.labels))

	summaries := map[string]stats.Summary{}
	for _, label := range d.labels {
		report.Section(out, "Processing: "+label)
		a, err := stats.Analyze(d.records[label], cfg.AnalysisOptions())
		if err != nil {
			fmt.Fprintf(out, "Skipping %s: %v\n", label, err)
			continue
		}
		summaries[label] = a.Summary

		if err := report.Analysis(out, label, a); err != nil {
			return err
		}
		path, err := report.SaveAnalysis(fsys, opts.outDir, label, a)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSummary report exported to: %s\n", path)

		if !opts.noPlot {
			path, err := plot.SaveAnalysis(fsys, opts.outDir, label, d.records[label], cfg.GetPeakWindow())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Analysis plot saved as: %s\n", path)
		}
	}

	if len(summaries) > 1 {
		report.Section(out, "SCENARIO COMPARISON")
		if !opts.noPlot {
			runs := map[string][]sim.StepRecord{}
			for label := range summaries {
				runs[label] = d.records[label]
			}
			path, err := plot.SaveComparison(fsys, opts.outDir, runs)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Scenario comparison saved as: %s\n\n", path)
		}
		report.Comparison(out, d.labels, summaries)
	}

	report.Section(out, "ANALYSIS COMPLETE")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: fetchTimeout}
	err := run(ctx, os.Args[1:], os.Stdout, fsutil.OSFileSystem{}, client)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errNoRuns):
		os.Exit(1)
	default:
		log.Fatalf("sim-analysis: %v", err)
	}
}
