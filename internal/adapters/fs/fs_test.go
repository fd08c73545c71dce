package fs_test

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bb/internal/adapters/fs"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestMemoryFileSystem_StatAndRead(t *testing.T) {
	m := fs.NewMemoryFileSystem(epoch)
	added := m.Add("/p/a.ts", "export const a = 1;")

	info, err := m.Stat("/p/a.ts")
	require.NoError(t, err)
	assert.Equal(t, added, info.ModTime())
	assert.Equal(t, "a.ts", info.Name())
	assert.False(t, info.IsDir())

	data, err := m.ReadFile("/p/a.ts")
	require.NoError(t, err)
	assert.Equal(t, "export const a = 1;", string(data))
	assert.Equal(t, 1, m.Reads("/p/a.ts"))

	dir, err := m.Stat("/p")
	require.NoError(t, err)
	assert.True(t, dir.IsDir())

	_, err = m.Stat("/p/missing.ts")
	assert.True(t, errors.Is(err, iofs.ErrNotExist))
	_, err = m.ReadFile("/p/missing.ts")
	assert.True(t, errors.Is(err, iofs.ErrNotExist))
}

func TestMemoryFileSystem_TouchAdvancesClock(t *testing.T) {
	m := fs.NewMemoryFileSystem(epoch)
	first := m.Add("/p/a.ts", "x")
	second := m.Touch("/p/a.ts")
	assert.True(t, second.After(first))

	info, err := m.Stat("/p/a.ts")
	require.NoError(t, err)
	assert.Equal(t, second, info.ModTime())

	m.Remove("/p/a.ts")
	_, err = m.Stat("/p/a.ts")
	assert.Error(t, err)
}

func TestMemoryFileSystem_WriteFile(t *testing.T) {
	m := fs.NewMemoryFileSystem(epoch)
	require.NoError(t, m.WriteFile("/out/a.js", []byte("a"), 0o644))
	require.NoError(t, m.WriteFile("/out/b.js", []byte("b"), 0o644))

	assert.Equal(t, []string{"/out/a.js", "/out/b.js"}, m.Writes())
	assert.Equal(t, []string{"/out/a.js", "/out/b.js"}, m.Files())
}

func TestOutputWriter_SkipsIdenticalContent(t *testing.T) {
	m := fs.NewMemoryFileSystem(epoch)
	w := fs.NewOutputWriter(m, "/out")

	require.NoError(t, w.WriteFile("src/app.js", []byte("one")))
	require.NoError(t, w.WriteFile("src/app.js", []byte("one")))
	require.NoError(t, w.WriteFile("src/app.js", []byte("two")))

	assert.Len(t, m.Writes(), 2)
	data, err := m.ReadFile(filepath.Join("/out", "src", "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestOSFileSystem_WriteCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	osfs := fs.NewOSFileSystem()
	target := filepath.Join(dir, "nested", "deep", "a.js")

	require.NoError(t, osfs.WriteFile(target, []byte("ok"), 0o644))

	data, err := osfs.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))

	_, err = osfs.Stat(filepath.Join(dir, "nope"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
