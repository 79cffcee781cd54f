package localstate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataDir_Override(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "state")
	t.Setenv(envHome, tmp)

	dir, err := DataDir()
	require.NoError(t, err)
	require.Equal(t, tmp, dir)

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o700), fi.Mode().Perm())
}

func TestDBPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(envHome, tmp)

	p, err := DBPath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, dbFilename), p)

	explicit := filepath.Join(t.TempDir(), "profile")
	p, err = DBPath(explicit)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(explicit, dbFilename), p)
}
