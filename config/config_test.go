package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mcfls.toml")
	require.NoError(t, os.WriteFile(path, []byte(dedent.Dedent(`
		default-namespace = "mypack"
		ignored-dirs = [".git", "generated"]
		check-existence = false
		cache-ttl-seconds = 60
	`)), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "mypack", settings.DefaultNamespace)
	require.Equal(t, []string{".git", "generated"}, settings.IgnoredDirs)
	require.False(t, settings.CheckExistence)
	require.Equal(t, time.Minute, settings.CacheTTL())

	// Unset keys keep their defaults.
	require.Equal(t, Default().MaxFileSize, settings.MaxFileSize)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	settings, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), settings)
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mcfls.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = = toml"), 0o644))

	settings, err := Load(path)
	require.Error(t, err)
	require.Equal(t, Default(), settings)
}
