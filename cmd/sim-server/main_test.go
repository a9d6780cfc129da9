package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/vehicle.sim/internal/api"
	"github.com/banshee-data/vehicle.sim/internal/db"
	"github.com/banshee-data/vehicle.sim/internal/monitoring"
	"github.com/banshee-data/vehicle.sim/internal/testutil"
	"github.com/banshee-data/vehicle.sim/internal/units"
	"github.com/banshee-data/vehicle.sim/internal/vehicle"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

// TestFlagDefaults verifies the flags exist and have the expected defaults.
func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, ":8080", *listen)
	assert.Equal(t, "simulation.db", *dbFile)
	assert.Equal(t, units.MPS, *speedUnits)
	assert.Equal(t, "", *configFile)
	assert.False(t, *versionFlag)
	assert.True(t, *checkMigs)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.GetTimeStep())

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"time_step": -1}`), 0o600))
	_, err = loadConfig(path)
	assert.Error(t, err)
}

func TestNewHandler(t *testing.T) {
	database, err := db.NewDBWithMigrationCheck(filepath.Join(t.TempDir(), "server.db"), true)
	require.NoError(t, err)
	defer database.Close()

	cfg, err := loadConfig("")
	require.NoError(t, err)
	h, err := newHandler(database, cfg, units.KMPH, t.TempDir())
	require.NoError(t, err)

	body, err := json.Marshal(api.RunRequest{
		Label:   "server",
		Vehicle: testutil.ReferenceProfile().Params(),
		Trip:    testutil.ReferenceTrip(vehicle.ScenarioUrban),
	})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewReader(body)))
	testutil.AssertStatusCode(t, w.Code, http.StatusCreated)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	assert.Contains(t, w.Body.String(), `"units":"kmph"`)

	// Admin routes are mounted; access control may still refuse the caller.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/tailsql/", nil))
	assert.NotEqual(t, http.StatusNotFound, w.Code)
}
