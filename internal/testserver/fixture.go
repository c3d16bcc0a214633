package testserver

import (
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

// Paths served by a Fixture
const (
	CatalogPath  = "/mc/game/version_manifest.json"
	ManifestPath = "/v1/packages/1.20.json"
	IndexPath    = "/v1/packages/indexes/5.json"
	LibraryPath  = "/libraries/com/example/core/1.0/core-1.0.jar"
	JarPath      = "/v1/objects/client.jar"
	ResourceRoot = "/resources"
)

// Fixture is a two-version catalog whose 1.20 manifest references one
// unconditionally allowed library and one asset.
type Fixture struct {
	Server *Server

	Catalog  models.Catalog
	Manifest models.Manifest
	Index    models.AssetIndex

	LibraryBytes []byte
	AssetBytes   []byte
	JarBytes     []byte
	AssetHash    string
}

// NewFixture starts a server and registers every document of the scenario.
func NewFixture() *Fixture {
	s := New()
	f := &Fixture{
		Server:       s,
		LibraryBytes: []byte("library bytes"),
		AssetBytes:   []byte("asset bytes"),
		JarBytes:     []byte("client jar bytes"),
	}
	f.AssetHash = SHA1(f.AssetBytes)

	s.Put(ResourceRoot+"/"+f.AssetHash[:2]+"/"+f.AssetHash, f.AssetBytes)
	libURL := s.Put(LibraryPath, f.LibraryBytes)
	jarURL := s.Put(JarPath, f.JarBytes)

	f.Index = models.AssetIndex{Objects: map[string]models.AssetObject{
		"minecraft/sounds/click.ogg": {Hash: f.AssetHash, Size: int64(len(f.AssetBytes))},
	}}
	indexURL, indexBytes := s.PutJSON(IndexPath, f.Index)

	f.Manifest = models.Manifest{
		ID:        "1.20",
		Type:      models.ReleaseTypeRelease,
		MainClass: "net.minecraft.client.main.Main",
		Assets:    "5",
		AssetIndex: models.AssetIndexRef{
			ID:   "5",
			SHA1: SHA1(indexBytes),
			Size: int64(len(indexBytes)),
			URL:  indexURL,
		},
		Downloads: models.Downloads{Client: models.Artifact{
			SHA1: SHA1(f.JarBytes),
			Size: int64(len(f.JarBytes)),
			URL:  jarURL,
		}},
		Libraries: []models.Library{{
			Name:  "com.example:core:1.0",
			Rules: []models.Rule{{Action: models.ActionAllow}},
			Downloads: models.LibraryDownloads{Artifact: &models.Artifact{
				Path: "com/example/core/1.0/core-1.0.jar",
				SHA1: SHA1(f.LibraryBytes),
				Size: int64(len(f.LibraryBytes)),
				URL:  libURL,
			}},
		}},
		MinecraftArguments: "--username ${auth_player_name} --version ${version_name} --gameDir ${game_directory} --assetsDir ${assets_root} --assetIndex ${assets_index_name}",
	}
	manifestURL, _ := s.PutJSON(ManifestPath, f.Manifest)

	f.Catalog = models.Catalog{
		Latest: models.Latest{Release: "1.20", Snapshot: "1.20"},
		Versions: []models.Version{
			{ID: "1.20", Type: models.ReleaseTypeRelease, URL: manifestURL},
			{ID: "1.19", Type: models.ReleaseTypeRelease, URL: s.URL + "/v1/packages/1.19.json"},
		},
	}
	s.PutJSON(CatalogPath, f.Catalog)

	return f
}

func (f *Fixture) CatalogURL() string   { return f.Server.URL + CatalogPath }
func (f *Fixture) ResourcesURL() string { return f.Server.URL + ResourceRoot }

// AssetPath is the server path of the fixture's single asset
func (f *Fixture) AssetPath() string {
	return ResourceRoot + "/" + f.AssetHash[:2] + "/" + f.AssetHash
}

func (f *Fixture) Close() { f.Server.Close() }
