// Package report renders simulation results: the 13-column step CSV, the
// console summary and the plain-text analysis report.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/vehicle.sim/internal/fsutil"
	"github.com/banshee-data/vehicle.sim/internal/security"
	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

// ErrBadHeader is returned by ReadCSV when the header row does not match
// sim.Columns.
var ErrBadHeader = errors.New("unexpected CSV header")

// CSVFileName is the conventional file name for a scenario's results.
func CSVFileName(s vehicle.Scenario) string {
	return fmt.Sprintf("vehicle_simulation_scenario_%d.csv", int(s))
}

// FormatValue renders a float the way it is written to CSV: the shortest
// representation that parses back to the same value.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes the header and one row per record, in step order.
func WriteCSV(w io.Writer, records []sim.StepRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sim.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(sim.Columns))
	for i, r := range records {
		for j, v := range r.Values() {
			row[j] = FormatValue(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV.
func ReadCSV(r io.Reader) ([]sim.StepRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(sim.Columns)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrBadHeader)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range sim.Columns {
		if strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i+1, header[i], col)
		}
	}

	var out []sim.StepRecord
	vals := make([]float64, len(sim.Columns))
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for j, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, %s: %w", line, sim.Columns[j], err)
			}
			vals[j] = v
		}
		rec, _ := sim.RecordFromValues(vals)
		out = append(out, rec)
	}
	return out, nil
}

// SaveCSV writes records to CSVFileName(s) inside dir and returns the path.
func SaveCSV(fsys fsutil.FileSystem, dir string, s vehicle.Scenario, records []sim.StepRecord) (string, error) {
	return saveFile(fsys, dir, CSVFileName(s), func(w io.Writer) error {
		return WriteCSV(w, records)
	})
}

// LoadCSV reads a results file through fsys.
func LoadCSV(fsys fsutil.FileSystem, path string) ([]sim.StepRecord, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// saveFile creates dir, validates name inside it and streams write into
// the new file.
func saveFile(fsys fsutil.FileSystem, dir, name string, write func(io.Writer) error) (string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path, err := outputPath(fsys, dir, name)
	if err != nil {
		return "", err
	}
	f, err := fsys.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// outputPath joins name to dir. On the real filesystem the result is also
// checked for symlink escapes.
func outputPath(fsys fsutil.FileSystem, dir, name string) (string, error) {
	if _, ok := fsys.(fsutil.OSFileSystem); ok {
		return security.SafeJoin(dir, name)
	}
	return filepath.Join(dir, security.SanitizeFilename(name)), nil
}
