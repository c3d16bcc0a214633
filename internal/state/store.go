// Package state holds the catalog and selected version the foreign side reads synchronously.
package state

import (
	"path/filepath"
	"sync"
	"unicode/utf16"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

// DirName is appended to the base directory handed over by a foreign caller
const DirName = "synth_launcher"

// Store is the process-scoped cache of the latest catalog and selected
// version. Every value is replaced whole under the write lock.
type Store struct {
	mu sync.RWMutex

	dir        string
	catalog    *models.Catalog
	manifest   *models.Manifest
	assetIndex *models.AssetIndex
	classPath  *string
	jarPath    *string
}

// New returns an empty store rooted at dir
func New(dir string) *Store {
	return &Store{dir: dir}
}

// FromUTF16 decodes a wide string of explicit length, not terminated, and
// roots the store at <path>/synth_launcher.
func FromUTF16(buf []uint16) *Store {
	return New(filepath.Join(string(utf16.Decode(buf)), DirName))
}

func (s *Store) Dir() string          { return s.dir }
func (s *Store) VersionsDir() string  { return filepath.Join(s.dir, "versions") }
func (s *Store) AssetsDir() string    { return filepath.Join(s.dir, "assets") }
func (s *Store) LibrariesDir() string { return filepath.Join(s.dir, "libraries") }
func (s *Store) NativesDir() string   { return filepath.Join(s.dir, "natives") }

func (s *Store) WriteCatalog(c *models.Catalog) {
	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()
}

// WriteManifest selects a version. The asset index, class path and jar of the
// previous selection are dropped with it.
func (s *Store) WriteManifest(m *models.Manifest) {
	s.mu.Lock()
	s.manifest = m
	s.assetIndex = nil
	s.classPath = nil
	s.jarPath = nil
	s.mu.Unlock()
}

func (s *Store) WriteAssetIndex(i *models.AssetIndex) {
	s.mu.Lock()
	s.assetIndex = i
	s.mu.Unlock()
}

func (s *Store) SetClassPath(cp string) {
	s.mu.Lock()
	s.classPath = &cp
	s.mu.Unlock()
}

func (s *Store) SetJarPath(p string) {
	s.mu.Lock()
	s.jarPath = &p
	s.mu.Unlock()
}

func (s *Store) CatalogLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog != nil
}

func (s *Store) ManifestLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest != nil
}

// Catalog returns the stored catalog. Calling it before WriteCatalog is a fault.
func (s *Store) Catalog() *models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		errs.Fault("catalog read before it was written")
	}
	return s.catalog
}

// Manifest returns the selected version's manifest. Calling it before WriteManifest is a fault.
func (s *Store) Manifest() *models.Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.manifest == nil {
		errs.Fault("manifest read before it was written")
	}
	return s.manifest
}

func (s *Store) AssetIndex() *models.AssetIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.assetIndex == nil {
		errs.Fault("asset index read before it was written")
	}
	return s.assetIndex
}

func (s *Store) ClassPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.classPath == nil {
		errs.Fault("class path read before it was written")
	}
	return *s.classPath
}

func (s *Store) JarPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.jarPath == nil {
		errs.Fault("jar path read before it was written")
	}
	return *s.jarPath
}

// LatestReleaseID returns the id the catalog marks as latest release
func (s *Store) LatestReleaseID() string {
	return s.Catalog().Latest.Release
}

func (s *Store) VersionCount() int {
	return len(s.Catalog().Versions)
}

// VersionID returns the id of the i-th catalog entry. An index out of range is a fault.
func (s *Store) VersionID(i int) string {
	return s.version(i).ID
}

func (s *Store) VersionType(i int) models.ReleaseType {
	return s.version(i).Type
}

// Version returns the i-th catalog entry
func (s *Store) Version(i int) models.Version {
	return s.version(i)
}

func (s *Store) version(i int) models.Version {
	c := s.Catalog()
	if i < 0 || i >= len(c.Versions) {
		errs.Fault("version index %d out of range [0, %d)", i, len(c.Versions))
	}
	return c.Versions[i]
}
