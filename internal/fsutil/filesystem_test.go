package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAll(t *testing.T, fsys FileSystem, name, content string) {
	t.Helper()
	w, err := fsys.Create(name)
	require.NoError(t, err)
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func readAll(t *testing.T, fsys FileSystem, name string) string {
	t.Helper()
	f, err := fsys.Open(name)
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(b)
}

func exerciseFileSystem(t *testing.T, fsys FileSystem, root string) {
	dir := filepath.Join(root, "plots", "run-1")
	require.NoError(t, fsys.MkdirAll(dir, 0755))

	info, err := fsys.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	name := filepath.Join(dir, "metrics.jsonl")
	assert.False(t, Exists(fsys, name))
	writeAll(t, fsys, name, `{"frame":0}`+"\n")
	assert.True(t, Exists(fsys, name))
	assert.Equal(t, `{"frame":0}`+"\n", readAll(t, fsys, name))

	info, err = fsys.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, int64(12), info.Size())
	assert.False(t, info.IsDir())

	writeAll(t, fsys, name, "replaced")
	assert.Equal(t, "replaced", readAll(t, fsys, name))

	_, err = fsys.Open(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOSFileSystem(t *testing.T) {
	exerciseFileSystem(t, OSFileSystem{}, t.TempDir())
}

func TestMemoryFileSystem(t *testing.T) {
	m := NewMemoryFileSystem()
	exerciseFileSystem(t, m, "/data")

	assert.Equal(t, []string{"/data/plots/run-1/metrics.jsonl"}, m.Files())

	m.WriteFile("/inbox/a.json", []byte("{}"))
	info, err := m.Stat("/inbox")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, fs.ModeDir|0755, info.Mode()&(fs.ModeDir|os.ModePerm))

	b, err := m.ReadFile("/inbox/a.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}

func TestMemoryFileSystem_CreateVisibleOnClose(t *testing.T) {
	m := NewMemoryFileSystem()
	w, err := m.Create("out.png")
	require.NoError(t, err)
	_, _ = w.Write([]byte("partial"))

	b, err := m.ReadFile("out.png")
	require.NoError(t, err)
	assert.Empty(t, b)

	require.NoError(t, w.Close())
	b, err = m.ReadFile("out.png")
	require.NoError(t, err)
	assert.Equal(t, "partial", string(b))
}
