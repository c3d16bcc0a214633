package state

import (
	"path/filepath"
	"sync"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

func sampleCatalog() *models.Catalog {
	return &models.Catalog{
		Latest: models.Latest{Release: "1.20", Snapshot: "1.20"},
		Versions: []models.Version{
			{ID: "1.20", Type: models.ReleaseTypeRelease, URL: "https://example.com/1.20.json"},
			{ID: "1.19", Type: models.ReleaseTypeRelease, URL: "https://example.com/1.19.json"},
		},
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	assert.False(t, s.CatalogLoaded())

	want := sampleCatalog()
	s.WriteCatalog(want)

	require.True(t, s.CatalogLoaded())
	assert.Equal(t, want, s.Catalog())
	assert.Equal(t, "1.20", s.LatestReleaseID())
	assert.Equal(t, 2, s.VersionCount())
	assert.Equal(t, "1.19", s.VersionID(1))
	assert.Equal(t, models.ReleaseTypeRelease, s.VersionType(0))
}

func TestReadBeforeWriteFaults(t *testing.T) {
	s := New(t.TempDir())

	assert.PanicsWithError(t, "catalog read before it was written", func() { s.Catalog() })
	assert.PanicsWithError(t, "manifest read before it was written", func() { s.Manifest() })
	assert.Panics(t, func() { s.AssetIndex() })
	assert.Panics(t, func() { s.ClassPath() })
	assert.Panics(t, func() { s.JarPath() })
	assert.Panics(t, func() { s.VersionCount() })
	assert.False(t, s.ManifestLoaded())
}

func TestVersionIndexOutOfRangeFaults(t *testing.T) {
	s := New(t.TempDir())
	s.WriteCatalog(sampleCatalog())

	assert.PanicsWithError(t, "version index 2 out of range [0, 2)", func() { s.VersionID(2) })
	assert.Panics(t, func() { s.VersionType(-1) })
}

func TestWriteManifestResetsSelection(t *testing.T) {
	s := New(t.TempDir())
	s.WriteManifest(&models.Manifest{ID: "1.19"})
	s.SetClassPath("a.jar")
	s.SetJarPath("client.jar")
	s.WriteAssetIndex(&models.AssetIndex{})

	s.WriteManifest(&models.Manifest{ID: "1.20"})

	assert.Equal(t, "1.20", s.Manifest().ID)
	assert.Panics(t, func() { s.ClassPath() })
	assert.Panics(t, func() { s.JarPath() })
	assert.Panics(t, func() { s.AssetIndex() })
}

func TestFromUTF16(t *testing.T) {
	base := t.TempDir()
	s := FromUTF16(utf16.Encode([]rune(base)))

	assert.Equal(t, filepath.Join(base, "synth_launcher"), s.Dir())
	assert.Equal(t, filepath.Join(base, "synth_launcher", "libraries"), s.LibrariesDir())
}

func TestConcurrentReadersSeeWholeValues(t *testing.T) {
	s := New(t.TempDir())
	s.WriteCatalog(sampleCatalog())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.WriteCatalog(sampleCatalog())
		}()
		go func() {
			defer wg.Done()
			c := s.Catalog()
			assert.Len(t, c.Versions, 2)
		}()
	}
	wg.Wait()
}
