package report

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/vehicle.sim/internal/fsutil"
	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/testutil"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

const header = "time,speed,acceleration,drag,rolling_resistance,slope_resistance,total_resistance,fuel,cumulative_fuel,reynolds,cd,altitude,slope"

func TestCSVFileName(t *testing.T) {
	assert.Equal(t, "vehicle_simulation_scenario_1.csv", CSVFileName(vehicle.ScenarioUrban))
	assert.Equal(t, "vehicle_simulation_scenario_3.csv", CSVFileName(vehicle.ScenarioSport))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "4200000", FormatValue(4.2e6))
	assert.Equal(t, "0.0000181", FormatValue(1.81e-5))
	assert.Equal(t, "-0.02", FormatValue(-0.02))
	assert.Equal(t, "0", FormatValue(0))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testutil.SyntheticRecords(2, 10, 0.5)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, header, lines[0])
	assert.Equal(t, "1,10,0,50,220.725,0,270.725,0.5,1,4200000,0.3,0,0", lines[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, header+"\n", buf.String())

	recs, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCSVRoundTrip(t *testing.T) {
	for _, s := range vehicle.Scenarios {
		t.Run(s.String(), func(t *testing.T) {
			res := testutil.ReferenceRun(t, s)

			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, res.Records))

			got, err := ReadCSV(&buf)
			require.NoError(t, err)
			if diff := cmp.Diff(res.Records, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		isBad   bool
	}{
		{"empty", "", "empty file", true},
		{"wrong column", strings.Replace(header, "drag", "lift", 1) + "\n", `"lift"`, true},
		{"short row", header + "\n1,2,3\n", "line 2", false},
		{"not a number", header + "\n0,x,0,0,0,0,0,0,0,0,0,0,0\n", "line 2, speed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.isBad, errors.Is(err, ErrBadHeader))
		})
	}
}

func TestSaveCSV_Memory(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	recs := testutil.SyntheticRecords(5, 12, 0.01)

	path, err := SaveCSV(fsys, "/out", vehicle.ScenarioHighway, recs)
	require.NoError(t, err)
	assert.Equal(t, "/out/vehicle_simulation_scenario_2.csv", path)
	assert.True(t, fsys.Exists("/out"))

	got, err := LoadCSV(fsys, path)
	require.NoError(t, err)
	assert.Equal(t, recs, got)

	_, err = LoadCSV(fsys, "/out/missing.csv")
	assert.Error(t, err)
}

func TestSaveCSV_Disk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	recs := testutil.SyntheticRecords(3, 12, 0.01)

	path, err := SaveCSV(fsutil.OSFileSystem{}, dir, vehicle.ScenarioSport, recs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vehicle_simulation_scenario_3.csv"), path)

	got, err := LoadCSV(fsutil.OSFileSystem{}, path)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestInputSummary(t *testing.T) {
	var buf bytes.Buffer
	InputSummary(&buf, testutil.ReferenceProfile(), testutil.ReferenceTrip(vehicle.ScenarioUrban))
	out := buf.String()

	for _, want := range []string{
		"INPUT SUMMARY",
		"Vehicle Mass: 1500.00000 kg",
		"Dimensions: 1.80000m x 1.50000m x 4.50000m",
		"Frontal Area: 2.70000 m^2",
		"Engine Efficiency: 25.00000%",
		"Travel Distance: 10.00000 km",
		"Initial Speed: 50.00000 km/h",
		"Scenario: 1",
	} {
		assert.Contains(t, out, want)
	}
}

func TestScenarioMenu(t *testing.T) {
	var buf bytes.Buffer
	ScenarioMenu(&buf)
	assert.Contains(t, buf.String(), "1. Urban Driving (Stop-and-go traffic)")
	assert.Contains(t, buf.String(), "2. Highway Driving (Acceleration/Deceleration)")
	assert.Contains(t, buf.String(), "3. Sport Driving (Variable speed)")
}

func TestSummary(t *testing.T) {
	s, err := stats.Summarize(testutil.SyntheticRecords(11, 10, 0.001))
	require.NoError(t, err)

	var buf bytes.Buffer
	Summary(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "SIMULATION STATISTICS")
	assert.Contains(t, out, "Total Fuel Consumed: 0.01100 L")
	assert.Contains(t, out, "Total Distance: 0.10000 km")
	assert.Contains(t, out, "Average Speed: 10.00000 m/s (36.00000 km/h)")
	assert.Contains(t, out, "Fuel per 100km: 11.00000 L/100km")
	assert.Contains(t, out, "Altitude Change: 0.00000 m")
}

func TestComparison(t *testing.T) {
	s, err := stats.Summarize(testutil.SyntheticRecords(11, 10, 0.001))
	require.NoError(t, err)

	var buf bytes.Buffer
	Comparison(&buf, []string{"b", "missing", "a"}, map[string]stats.Summary{"a": s, "b": s})
	out := buf.String()

	assert.Contains(t, out, "Comparative Statistics:")
	assert.Contains(t, out, "  Total Fuel: 0.011 L")
	assert.Contains(t, out, "  Distance: 0.100 km")
	assert.NotContains(t, out, "missing")
	assert.Less(t, strings.Index(out, "\nb:"), strings.Index(out, "\na:"))
}

func TestAnalysisReport(t *testing.T) {
	res := testutil.ReferenceRun(t, vehicle.ScenarioHighway)
	a, err := stats.Analyze(res.Records, stats.DefaultAnalysisOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Analysis(&buf, "highway", a))
	out := buf.String()
	for _, want := range []string{
		"Run: highway",
		"FUEL & ENERGY",
		"Resistance breakdown:",
		"PEAK CONSUMPTION",
		"CORRELATIONS",
	} {
		assert.Contains(t, out, want)
	}

	fsys := fsutil.NewMemoryFileSystem()
	path, err := SaveAnalysis(fsys, "reports", "highway run", a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("reports", "summary_report_highway_run.txt"), path)
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run: highway run")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAnalysisReport_WriteError(t *testing.T) {
	a, err := stats.Analyze(testutil.SyntheticRecords(5, 10, 0.001), stats.DefaultAnalysisOptions())
	require.NoError(t, err)
	assert.EqualError(t, Analysis(failingWriter{}, "x", a), "disk full")
}
