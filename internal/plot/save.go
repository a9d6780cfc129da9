package plot

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/vehicle.sim/internal/fsutil"
	"github.com/banshee-data/vehicle.sim/internal/security"
	"github.com/banshee-data/vehicle.sim/internal/sim"
)

// AnalysisFileName is the conventional name of a run's analysis sheet.
func AnalysisFileName(label string) string {
	return "vehicle_analysis_" + label + ".png"
}

// SaveAnalysis renders the analysis sheet for records into dir, with the
// rolling fuel rate taken over window steps.
func SaveAnalysis(fsys fsutil.FileSystem, dir, label string, records []sim.StepRecord, window int) (string, error) {
	panels, err := Panels(records, window)
	if err != nil {
		return "", err
	}
	return save(fsys, dir, AnalysisFileName(label), func(w io.Writer) error {
		return WriteSheet(w, panels, SheetColumns, SheetWidth, SheetHeight)
	})
}

// SaveComparison renders the comparison sheet for runs into dir.
func SaveComparison(fsys fsutil.FileSystem, dir string, runs map[string][]sim.StepRecord) (string, error) {
	panels, err := Comparison(runs)
	if err != nil {
		return "", err
	}
	return save(fsys, dir, ComparisonFileName(runLabels(runs)...), func(w io.Writer) error {
		return WriteSheet(w, panels, 2, SheetWidth, SheetHeight)
	})
}

func save(fsys fsutil.FileSystem, dir, name string, write func(io.Writer) error) (string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create plot directory: %w", err)
	}
	path := filepath.Join(dir, security.SanitizeFilename(name))
	if _, ok := fsys.(fsutil.OSFileSystem); ok {
		var err error
		if path, err = security.SafeJoin(dir, name); err != nil {
			return "", err
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
