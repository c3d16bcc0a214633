package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
)

var (
	linux   = Platform{OS: "linux", Arch: "x86_64"}
	osx     = Platform{OS: "osx", Arch: "arm64"}
	windows = Platform{OS: "windows", Arch: "x86"}
)

func TestRulesAllow(t *testing.T) {
	tests := []struct {
		name     string
		rules    []Rule
		platform Platform
		want     bool
	}{
		{"no rules", nil, linux, true},
		{"blanket disallow", []Rule{{Action: ActionDisallow}}, linux, false},
		{"blanket allow", []Rule{{Action: ActionAllow}}, osx, true},
		{"allow linux on linux", []Rule{{Action: ActionAllow, OS: &OSRule{Name: "linux"}}}, linux, true},
		{"allow linux on osx", []Rule{{Action: ActionAllow, OS: &OSRule{Name: "linux"}}}, osx, false},
		{
			"allow all but osx on osx",
			[]Rule{{Action: ActionAllow}, {Action: ActionDisallow, OS: &OSRule{Name: "osx"}}},
			osx, false,
		},
		{
			"allow all but osx on windows",
			[]Rule{{Action: ActionAllow}, {Action: ActionDisallow, OS: &OSRule{Name: "osx"}}},
			windows, true,
		},
		{"arch qualifier matches", []Rule{{Action: ActionAllow, OS: &OSRule{Name: "windows", Arch: "x86"}}}, windows, true},
		{"arch qualifier mismatches", []Rule{{Action: ActionAllow, OS: &OSRule{Arch: "x86"}}}, linux, false},
		{"feature not enabled", []Rule{{Action: ActionAllow, Features: map[string]bool{"is_demo_user": true}}}, linux, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RulesAllow(tt.rules, tt.platform))
		})
	}
}

func TestLibraryAllowedFromJSON(t *testing.T) {
	var libs []Library
	require.NoError(t, json.Unmarshal([]byte(`[
		{"name": "a:always:1", "downloads": {"artifact": {"path": "a.jar", "sha1": "x", "size": 1, "url": "u"}}},
		{"name": "a:never:1", "rules": [{"action": "disallow"}], "downloads": {"artifact": {"sha1": "x", "size": 1, "url": "u"}}},
		{"name": "a:linux:1", "rules": [{"action": "allow", "os": {"name": "linux"}}], "downloads": {"artifact": {"sha1": "x", "size": 1, "url": "u"}}}
	]`), &libs))

	assert.True(t, libs[0].Allowed(linux))
	assert.False(t, libs[1].Allowed(linux))
	assert.True(t, libs[2].Allowed(linux))
	assert.False(t, libs[2].Allowed(windows))
}

func TestArtifactsResolvesNatives(t *testing.T) {
	lib := Library{
		Name: "org.lwjgl:lwjgl-platform:2.9.4",
		Downloads: LibraryDownloads{
			Classifiers: map[string]Artifact{
				"natives-linux":      {SHA1: "l", URL: "https://example.com/l.jar"},
				"natives-windows-32": {SHA1: "w", URL: "https://example.com/w.jar"},
			},
		},
		Natives: map[string]string{"linux": "natives-linux", "windows": "natives-windows-${arch}"},
		Extract: &Extract{Exclude: []string{"META-INF/"}},
	}

	got, err := lib.Artifacts(linux)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Native)
	assert.Equal(t, "l", got[0].SHA1)
	assert.Equal(t, []string{"META-INF/"}, got[0].Exclude)
	assert.Equal(t, "org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar", got[0].Path)

	got, err = lib.Artifacts(windows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "w", got[0].SHA1)

	got, err = lib.Artifacts(osx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestArtifactsMalformedLibrary(t *testing.T) {
	_, err := Library{Name: "broken:lib:1"}.Artifacts(linux)
	require.Error(t, err)
	assert.Equal(t, errs.KindDecode, errs.KindOf(err))
}

func TestMavenPath(t *testing.T) {
	assert.Equal(t, "com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar", MavenPath("com.mojang:brigadier:1.0.18", ""))
	assert.Equal(t, "a/b/c/1/c-1-natives.jar", MavenPath("a.b:c:1:natives", ""))
	assert.Equal(t, "plain", MavenPath("plain", ""))
}
