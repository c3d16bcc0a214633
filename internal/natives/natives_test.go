package natives

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJar(t *testing.T, entries map[string]string) string {
	t.Helper()

	jarPath := filepath.Join(t.TempDir(), "natives.jar")
	f, err := os.Create(jarPath)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for name, body := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return jarPath
}

func TestExtractFlattensMatchingEntries(t *testing.T) {
	jar := writeJar(t, map[string]string{
		"linux/x64/liblwjgl.so":   "elf",
		"META-INF/libshadowed.so": "skip me",
		"META-INF/MANIFEST.MF":    "manifest",
		"windows/lwjgl.dll":       "pe",
	})
	dest := t.TempDir()

	extracted, err := Extract(jar, dest, Extension("linux"), []string{"META-INF/"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dest, "liblwjgl.so")}, extracted)

	data, err := os.ReadFile(filepath.Join(dest, "liblwjgl.so"))
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))
	assert.NoFileExists(t, filepath.Join(dest, "libshadowed.so"))
}

func TestExtractRejectsNonArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jar")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err := Extract(path, t.TempDir(), ".so", nil)
	assert.Error(t, err)
}

func TestShouldExtract(t *testing.T) {
	tests := []struct {
		name    string
		isDir   bool
		ext     string
		exclude []string
		want    bool
	}{
		{"lib/libfoo.so", false, ".so", nil, true},
		{"lib/", true, ".so", nil, false},
		{"foo.dll", false, ".so", nil, false},
		{"META-INF/foo.dylib", false, ".dylib", []string{"META-INF/"}, false},
		{"foo.dylib", false, ".dylib", []string{"META-INF/"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldExtract(tt.name, tt.isDir, tt.ext, tt.exclude))
		})
	}
}
