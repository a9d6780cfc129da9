package fsutil

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, fsys FileSystem, dir string) {
	t.Helper()

	sub := filepath.Join(dir, "out", "runs")
	require.NoError(t, fsys.MkdirAll(sub, 0o755))
	assert.True(t, fsys.Exists(sub))

	name := filepath.Join(sub, "run.csv")
	assert.False(t, fsys.Exists(name))

	w, err := fsys.Create(name)
	require.NoError(t, err)
	_, err = io.WriteString(w, "time,speed\n0,1\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.True(t, fsys.Exists(name))

	r, err := fsys.Open(name)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "time,speed\n0,1\n", string(data))

	_, err = fsys.Open(filepath.Join(sub, "missing.csv"))
	assert.Error(t, err)
}

func TestOSFileSystem(t *testing.T) {
	exercise(t, OSFileSystem{}, t.TempDir())
}

func TestMemoryFileSystem(t *testing.T) {
	m := NewMemoryFileSystem()
	exercise(t, m, "/sim")

	assert.Equal(t, []string{"/sim/out/runs/run.csv"}, m.Files())
	assert.True(t, m.Exists("/sim/out"))
	assert.True(t, m.Exists("/sim"))
}

func TestMemoryFileSystem_ContentsVisibleOnClose(t *testing.T) {
	m := NewMemoryFileSystem()
	w, err := m.Create("a.txt")
	require.NoError(t, err)
	_, _ = w.Write([]byte("hello"))

	data, err := m.ReadFile("a.txt")
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, w.Close())
	data, err = m.ReadFile("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
