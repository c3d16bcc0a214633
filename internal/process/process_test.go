package process

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

func legacyOptions() LaunchOptions {
	return LaunchOptions{
		JavaPath: "java",
		Manifest: &models.Manifest{
			ID:                 "1.12.2",
			Type:               models.ReleaseTypeRelease,
			MainClass:          "net.minecraft.client.main.Main",
			AssetIndex:         models.AssetIndexRef{ID: "1.12"},
			MinecraftArguments: "--username ${auth_player_name} --version ${version_name} --assetIndex ${assets_index_name} --uuid ${auth_uuid} --userType ${user_type}",
		},
		Platform:   models.Platform{OS: "linux", Arch: "x86_64"},
		Profile:    OfflineProfile("Steve"),
		GameDir:    "/games/mc",
		AssetsDir:  "/data/assets",
		NativesDir: "/data/natives",
		ClassPath:  "/data/libraries/a.jar",
		JarPath:    "/data/versions/1.12.2/1.12.2.jar",
	}
}

func TestBuildArgsLegacy(t *testing.T) {
	o := legacyOptions()
	args := BuildArgs(o)

	cp := "/data/libraries/a.jar" + string(os.PathListSeparator) + "/data/versions/1.12.2/1.12.2.jar"
	require.Len(t, args, len(models.DefaultJVMArguments)+1+10)
	assert.Equal(t, "-Djava.library.path=/data/natives", args[0])
	assert.Equal(t, "-Dminecraft.launcher.brand=synth-launcher", args[4])
	assert.Equal(t, []string{"-cp", cp}, args[6:8])
	assert.Equal(t, "net.minecraft.client.main.Main", args[8])
	assert.Equal(t, []string{
		"--username", "Steve",
		"--version", "1.12.2",
		"--assetIndex", "1.12",
		"--uuid", o.Profile.UUID,
		"--userType", "legacy",
	}, args[9:])
}

func TestBuildArgsPrependsJVMArgs(t *testing.T) {
	o := legacyOptions()
	o.JVMArgs = []string{"-Xmx4G", "-XX:+UseG1GC"}
	args := BuildArgs(o)

	require.Len(t, args, len(models.DefaultJVMArguments)+2+1+10)
	assert.Equal(t, []string{"-Xmx4G", "-XX:+UseG1GC"}, args[:2])
	assert.Equal(t, "-Djava.library.path=/data/natives", args[2])
	assert.Equal(t, "net.minecraft.client.main.Main", args[10])
}

func TestBuildArgsFiltersRules(t *testing.T) {
	var m models.Manifest
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "1.20",
		"type": "release",
		"mainClass": "net.minecraft.client.main.Main",
		"assetIndex": {"id": "5"},
		"arguments": {
			"game": [
				"--gameDir", "${game_directory}",
				{"rules": [{"action": "allow", "features": {"is_demo_user": true}}], "value": "--demo"}
			],
			"jvm": [
				{"rules": [{"action": "allow", "os": {"name": "osx"}}], "value": ["-XstartOnFirstThread"]},
				{"rules": [{"action": "allow", "os": {"name": "linux"}}], "value": "-Dlinux=true"},
				"-cp", "${classpath}"
			]
		}
	}`), &m))

	o := legacyOptions()
	o.Manifest = &m
	o.ClassPath = ""

	assert.Equal(t, []string{
		"-Dlinux=true",
		"-cp", "/data/versions/1.12.2/1.12.2.jar",
		"net.minecraft.client.main.Main",
		"--gameDir", "/games/mc",
	}, BuildArgs(o))
}

func TestOfflineProfile(t *testing.T) {
	p := OfflineProfile("Steve")

	assert.Equal(t, "Steve", p.Name)
	assert.Len(t, p.UUID, 32)
	assert.Equal(t, byte('3'), p.UUID[12], "name-based version 3")
	assert.Equal(t, p, OfflineProfile("Steve"))
	assert.NotEqual(t, p.UUID, OfflineProfile("Alex").UUID)
}

func TestLaunchRequiresJava(t *testing.T) {
	o := legacyOptions()
	o.JavaPath = ""

	_, err := Launch(o)
	assert.ErrorContains(t, err, "java path is required")
}
