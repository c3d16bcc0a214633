package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modernManifest = `{
	"id": "1.20",
	"type": "release",
	"mainClass": "net.minecraft.client.main.Main",
	"assets": "5",
	"assetIndex": {"id": "5", "sha1": "abc", "size": 10, "totalSize": 100, "url": "https://example.com/5.json"},
	"downloads": {"client": {"sha1": "def", "size": 20, "url": "https://example.com/client.jar"}},
	"libraries": [],
	"arguments": {
		"game": ["--username", "${auth_player_name}", {"rules": [{"action": "allow", "features": {"is_demo_user": true}}], "value": "--demo"}],
		"jvm": [
			{"rules": [{"action": "allow", "os": {"name": "osx"}}], "value": ["-XstartOnFirstThread"]},
			{"rules": [{"action": "allow", "os": {"arch": "x86"}}], "value": "-Xss1M"},
			"-cp", "${classpath}"
		]
	}
}`

func TestManifestArgumentTemplates(t *testing.T) {
	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(modernManifest), &m))

	assert.Equal(t, ReleaseTypeRelease, m.Type)
	assert.Equal(t, "abc", m.AssetIndex.SHA1)
	assert.Equal(t, "def", m.Downloads.Client.SHA1)

	assert.Equal(t, []string{"--username", "${auth_player_name}"}, m.GameTemplates(linux))
	assert.Equal(t, []string{"-cp", "${classpath}"}, m.JVMTemplates(linux))
	assert.Equal(t, []string{"-XstartOnFirstThread", "-cp", "${classpath}"}, m.JVMTemplates(osx))
	assert.Equal(t, []string{"-Xss1M", "-cp", "${classpath}"}, m.JVMTemplates(windows))
}

func TestManifestLegacyArguments(t *testing.T) {
	var m Manifest
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "1.7.10",
		"type": "release",
		"minecraftArguments": "--username ${auth_player_name} --version ${version_name}"
	}`), &m))

	assert.Equal(t, []string{"--username", "${auth_player_name}", "--version", "${version_name}"}, m.GameTemplates(linux))
	assert.Equal(t, DefaultJVMArguments, m.JVMTemplates(linux))
}

func TestCatalogLatestRelease(t *testing.T) {
	c := Catalog{
		Latest: Latest{Release: "1.20", Snapshot: "23w01a"},
		Versions: []Version{
			{ID: "23w01a", Type: ReleaseTypeSnapshot},
			{ID: "1.20", Type: ReleaseTypeRelease},
		},
	}

	v, ok := c.LatestRelease()
	require.True(t, ok)
	assert.Equal(t, "1.20", v.ID)

	_, ok = c.Find("1.0")
	assert.False(t, ok)
}

func TestAssetObjectPath(t *testing.T) {
	assert.Equal(t, "ab/abcdef", AssetObject{Hash: "abcdef"}.Path())
}
