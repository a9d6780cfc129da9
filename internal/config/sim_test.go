package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/vehicle.sim/internal/physics"
	"github.com/banshee-data/vehicle.sim/internal/stats"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsFileMatchesBuiltins(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if diff := cmp.Diff(DefaultSimConfig(), cfg); diff != "" {
		t.Errorf("defaults file drifted from built-in defaults (-got +want):\n%s", diff)
	}
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := EmptySimConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, physics.DefaultConstants(), cfg.Constants())
	assert.Equal(t, stats.DefaultAnalysisOptions(), cfg.AnalysisOptions())
	assert.Equal(t, 1.0, cfg.GetTimeStep())
	assert.Equal(t, 5000, cfg.GetProgressInterval())
	assert.Equal(t, 2*time.Minute, cfg.GetRunTimeout())
	assert.Equal(t, ".", cfg.GetOutputDir())
	assert.Len(t, cfg.EngineOptions(), 3)
}

func TestLoadSimConfig_Partial(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"air_density": 0.9, "peak_window": 50, "run_timeout": "30s"}`)

	cfg, err := LoadSimConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Constants().AirDensity)
	assert.Equal(t, physics.DefaultGravity, cfg.Constants().Gravity)
	assert.Equal(t, 50, cfg.AnalysisOptions().PeakWindow)
	assert.Equal(t, 30*time.Second, cfg.GetRunTimeout())
}

func TestLoadSimConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"extension", "cfg.yaml", `{}`, ".json extension"},
		{"bad json", "cfg.json", `{`, "failed to parse"},
		{"negative density", "cfg.json", `{"air_density": -1}`, "air_density"},
		{"zero timestep", "cfg.json", `{"time_step": 0}`, "time_step"},
		{"progress", "cfg.json", `{"progress_interval": 0}`, "progress_interval"},
		{"timeout", "cfg.json", `{"run_timeout": "soon"}`, "run_timeout"},
		{"price", "cfg.json", `{"fuel_price_per_liter": -2}`, "fuel_price_per_liter"},
		{"energy", "cfg.json", `{"fuel_energy_density": 0}`, "fuel_energy_density"},
		{"window", "cfg.json", `{"peak_window": -5}`, "peak_window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadSimConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSimConfig_Missing(t *testing.T) {
	_, err := LoadSimConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat")
}

func TestLoadSimConfig_TooLarge(t *testing.T) {
	body := `{"output_dir": "` + strings.Repeat("a", maxConfigFileSize) + `"}`
	path := writeConfig(t, "big.json", body)
	_, err := LoadSimConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestGetRunTimeout_Unparseable(t *testing.T) {
	cfg := &SimConfig{RunTimeout: ptrString("later")}
	assert.Equal(t, defaultRunTimeout, cfg.GetRunTimeout())
}
