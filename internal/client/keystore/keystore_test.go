package keystore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreate_CreatesThenLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "device.key")

	k1, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, k1, 32)

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	k2, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, k1, k2)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.key"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidContent(t *testing.T) {
	dir := t.TempDir()

	notHex := filepath.Join(dir, "nothex.key")
	require.NoError(t, os.WriteFile(notHex, []byte("zz"), 0o600))
	_, err := Load(notHex)
	assert.ErrorIs(t, err, ErrInvalidKeyFile)

	short := filepath.Join(dir, "short.key")
	require.NoError(t, os.WriteFile(short, []byte("abcd"), 0o600))
	_, err = Load(short)
	assert.ErrorIs(t, err, ErrInvalidKeyFile)

	_, _, err = LoadOrCreate(short)
	assert.ErrorIs(t, err, ErrInvalidKeyFile, "a corrupt key must not be replaced silently")
}

func TestLoad_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	path := filepath.Join(t.TempDir(), "device.key")
	_, _, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.NoError(t, os.Chmod(path, 0o644))

	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInsecurePermissions)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.key")
	_, _, err := LoadOrCreate(path)
	require.NoError(t, err)

	require.NoError(t, Remove(path))
	require.NoError(t, Remove(path))
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
