package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	_, ok := s.Get("sidebar-pinned")
	assert.False(t, ok)

	require.NoError(t, s.Set("sidebar-pinned", "true"))
	require.NoError(t, s.Set("sidebar:state", "false"))
	v, ok := s.Get("sidebar-pinned")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
	assert.Equal(t, []string{"sidebar-pinned", "sidebar:state"}, s.Keys())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.msgpack")

	fs, err := OpenFileStore(path)
	require.NoError(t, err)
	_, ok := fs.Get("sidebar-pinned")
	assert.False(t, ok)

	require.NoError(t, fs.Set("sidebar-pinned", "true"))
	assert.FileExists(t, path)

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	v, ok := reopened.Get("sidebar-pinned")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
	assert.Equal(t, path, reopened.Path())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.msgpack")
	require.NoError(t, os.WriteFile(path, []byte{0xc1, 0xff, 0x00}, 0o644))
	_, err := OpenFileStore(path)
	assert.Error(t, err)
}
