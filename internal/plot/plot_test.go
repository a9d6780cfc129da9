package plot

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/vehicle.sim/internal/fsutil"
	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/stats"
	"github.com/banshee-data/vehicle.sim/internal/testutil"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

func panelTitles(panels []*plot.Plot) []string {
	titles := make([]string, len(panels))
	for i, p := range panels {
		titles[i] = p.Title.Text
	}
	return titles
}

func TestPanels(t *testing.T) {
	res := testutil.ReferenceRun(t, vehicle.ScenarioSport)
	panels, err := Panels(res.Records, 100)
	require.NoError(t, err)

	want := []string{
		"Speed Profile", "Cumulative Fuel", "Resistance Forces",
		"Acceleration Profile", "Drag Coefficient vs Reynolds", "Altitude Profile",
		"Speed Distribution", "Fuel Consumption vs Speed", "Reynolds Number Distribution",
		"Total Resistance Force", "Resistance Force Breakdown", "Rolling Fuel Consumption (100 s window)",
	}
	assert.Equal(t, want, panelTitles(panels))

	_, err = Panels(nil, 100)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPanels_Window(t *testing.T) {
	records := testutil.ReferenceRun(t, vehicle.ScenarioUrban).Records

	panels, err := Panels(records, 250)
	require.NoError(t, err)
	assert.Equal(t, "Rolling Fuel Consumption (250 s window)", panels[11].Title.Text)

	panels, err = Panels(records, 0)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Rolling Fuel Consumption (%d s window)", stats.DefaultPeakWindow), panels[11].Title.Text)
}

func TestPanels_ConstantSeries(t *testing.T) {
	// Constant speed and Reynolds number put every sample in one bin.
	panels, err := Panels(testutil.SyntheticRecords(50, 14, 0.002), 10)
	require.NoError(t, err)
	require.Len(t, panels, 12)

	var buf bytes.Buffer
	require.NoError(t, WriteSheet(&buf, panels, SheetColumns, 12*vg.Inch, 10*vg.Inch))
	_, err = png.DecodeConfig(&buf)
	assert.NoError(t, err)
}

func TestWriteSheet_PNG(t *testing.T) {
	panels, err := Panels(testutil.SyntheticRecords(120, 14, 0.002), 100)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSheet(&buf, panels, SheetColumns, 12*vg.Inch, 10*vg.Inch))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, 0)
	assert.Greater(t, cfg.Height, 0)

	assert.ErrorIs(t, WriteSheet(&buf, nil, 2, vg.Inch, vg.Inch), ErrNoData)
}

func TestWritePanel(t *testing.T) {
	panels, err := Panels(testutil.SyntheticRecords(10, 14, 0.002), 100)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePanel(&buf, panels[0]))
	_, err = png.DecodeConfig(&buf)
	assert.NoError(t, err)
}

func TestSaveAnalysis(t *testing.T) {
	res := testutil.ReferenceRun(t, vehicle.ScenarioHighway)

	dir := t.TempDir()
	path, err := SaveAnalysis(fsutil.OSFileSystem{}, dir, "scenario_2", res.Records, 100)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vehicle_analysis_scenario_2.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.DecodeConfig(f)
	assert.NoError(t, err)
}

func TestSaveComparison_Memory(t *testing.T) {
	runs := map[string][]sim.StepRecord{
		"urban": testutil.ReferenceRun(t, vehicle.ScenarioUrban).Records,
		"sport": testutil.ReferenceRun(t, vehicle.ScenarioSport).Records,
		"empty": nil,
	}
	fsys := fsutil.NewMemoryFileSystem()
	path, err := SaveComparison(fsys, "/plots", runs)
	require.NoError(t, err)
	assert.Equal(t, "/plots/comparison_sport_urban.png", path)

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestComparison(t *testing.T) {
	runs := map[string][]sim.StepRecord{
		"urban":   testutil.ReferenceRun(t, vehicle.ScenarioUrban).Records,
		"highway": testutil.ReferenceRun(t, vehicle.ScenarioHighway).Records,
	}
	panels, err := Comparison(runs)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Speed Comparison", "Fuel Consumption Comparison", "Drag Force Comparison",
		"Total Fuel Comparison", "Altitude Comparison",
	}, panelTitles(panels))
}

func TestComparison_NoData(t *testing.T) {
	_, err := Comparison(map[string][]sim.StepRecord{"a": nil})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGenerateColors(t *testing.T) {
	assert.Nil(t, generateColors(0))

	colors := generateColors(3)
	require.Len(t, colors, 3)
	seen := map[color.Color]bool{}
	for _, c := range colors {
		seen[c] = true
	}
	assert.Len(t, seen, 3)
}
