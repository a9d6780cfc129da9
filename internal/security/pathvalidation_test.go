package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	require.NoError(t, os.MkdirAll(safeDir, 0o755))
	require.NoError(t, os.MkdirAll(unsafeDir, 0o755))

	symlinkPath := filepath.Join(safeDir, "evil-symlink")
	require.NoError(t, os.Symlink(unsafeDir, symlinkPath))

	tests := []struct {
		name      string
		filePath  string
		dir       string
		wantError bool
	}{
		{"file in directory", filepath.Join(tmpDir, "run.csv"), tmpDir, false},
		{"nested new file", filepath.Join(tmpDir, "a", "b", "run.csv"), tmpDir, false},
		{"dot dot", filepath.Join(tmpDir, "..", "run.csv"), tmpDir, true},
		{"relative escape", "../../../etc/passwd", tmpDir, true},
		{"absolute outside", "/etc/passwd", tmpDir, true},
		{"through symlink", filepath.Join(symlinkPath, "run.csv"), safeDir, true},
		{"symlink itself", symlinkPath, safeDir, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.dir)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrPathEscape)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePathWithinDirectory_MissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	err := ValidatePathWithinDirectory(filepath.Join(missing, "x"), missing)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPathEscape)
}

func TestSafeJoin(t *testing.T) {
	dir := t.TempDir()

	p, err := SafeJoin(dir, "vehicle_simulation_scenario_1.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vehicle_simulation_scenario_1.csv"), p)

	p, err = SafeJoin(dir, "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "etc_passwd"), p)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"":                     "unknown",
		"run 1/2":              "run_1_2",
		"..":                   "unknown",
		"__a__b__":             "a_b",
		"urban-run.csv":        "urban-run.csv",
		"résumé":               "r_sum",
		"scenario:2 (highway)": "scenario_2_highway",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}
