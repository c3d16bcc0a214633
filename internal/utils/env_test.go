package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvironmentFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LAUNCHER_TEST_ENV_VALUE=from-dotenv\n"), 0600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("LAUNCHER_TEST_ENV_VALUE")
	})

	loaded := LoadEnvironment()
	require.Contains(t, loaded, ".env")
	require.Equal(t, "from-dotenv", os.Getenv("LAUNCHER_TEST_ENV_VALUE"))
}

func TestLoadEnvironmentKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LAUNCHER_TEST_KEEP=dotenv\n"), 0600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("LAUNCHER_TEST_KEEP", "shell")

	LoadEnvironment()
	require.Equal(t, "shell", os.Getenv("LAUNCHER_TEST_KEEP"))
}
