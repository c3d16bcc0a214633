// Package process turns an installed version into a java command line and runs it.
package process

import (
	"crypto/md5"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/client"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

const LauncherName = "synth-launcher"

// Profile is the identity handed to the game
type Profile struct {
	Name        string
	UUID        string
	AccessToken string
	UserType    string
}

// OfflineProfile builds a profile that needs no authentication. The UUID is
// the name-based id offline servers derive from "OfflinePlayer:<name>".
func OfflineProfile(name string) Profile {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	id, _ := uuid.FromBytes(sum[:])

	return Profile{
		Name:        name,
		UUID:        strings.ReplaceAll(id.String(), "-", ""),
		AccessToken: "0",
		UserType:    "legacy",
	}
}

// LaunchOptions describes one installed version ready to run
type LaunchOptions struct {
	JavaPath   string
	Manifest   *models.Manifest
	Platform   models.Platform
	Profile    Profile
	GameDir    string
	AssetsDir  string
	NativesDir string
	// ClassPath holds the libraries only; the client jar is appended.
	ClassPath string
	JarPath   string
	// JVMArgs go ahead of the version's JVM arguments
	JVMArgs []string
	// Env entries (KEY=VALUE) extend the launcher's environment
	Env []string
}

func (o LaunchOptions) classPath() string {
	if o.ClassPath == "" {
		return o.JarPath
	}
	return o.ClassPath + string(os.PathListSeparator) + o.JarPath
}

// BuildArgs expands the manifest's argument templates into the java argument list:
// JVM arguments, the main class, then game arguments.
func BuildArgs(o LaunchOptions) []string {
	m := o.Manifest
	jvm := strings.NewReplacer(
		"${natives_directory}", o.NativesDir,
		"${launcher_name}", LauncherName,
		"${launcher_version}", client.Version,
		"${classpath}", o.classPath(),
	)
	game := strings.NewReplacer(
		"${auth_player_name}", o.Profile.Name,
		"${version_name}", m.ID,
		"${game_directory}", o.GameDir,
		"${assets_root}", o.AssetsDir,
		"${game_assets}", o.AssetsDir,
		"${assets_index_name}", m.AssetIndex.ID,
		"${auth_uuid}", o.Profile.UUID,
		"${auth_access_token}", o.Profile.AccessToken,
		"${auth_session}", o.Profile.AccessToken,
		"${clientid}", "",
		"${auth_xuid}", "",
		"${user_properties}", "{}",
		"${user_type}", o.Profile.UserType,
		"${version_type}", string(m.Type),
	)

	args := append([]string(nil), o.JVMArgs...)
	for _, t := range m.JVMTemplates(o.Platform) {
		args = append(args, jvm.Replace(t))
	}
	args = append(args, m.MainClass)
	for _, t := range m.GameTemplates(o.Platform) {
		args = append(args, game.Replace(t))
	}
	return args
}

// GameProcess represents a running game
type GameProcess struct {
	Cmd     *exec.Cmd
	Process *os.Process
}

// Launch starts java with the expanded arguments in the game directory
func Launch(o LaunchOptions) (*GameProcess, error) {
	if o.JavaPath == "" {
		return nil, fmt.Errorf("java path is required")
	}
	if err := os.MkdirAll(o.GameDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create game directory: %w", err)
	}

	javaPath := o.JavaPath
	if strings.ContainsRune(javaPath, filepath.Separator) {
		abs, err := filepath.Abs(javaPath)
		if err != nil {
			return nil, fmt.Errorf("invalid java path: %v", err)
		}
		javaPath = filepath.Clean(abs)
	}

	args := BuildArgs(o)
	logger.Info("Launching %s as %s", o.Manifest.ID, o.Profile.Name)
	logger.Debug("%s %s", javaPath, strings.Join(args, " "))

	// #nosec G204 - arguments come from a verified manifest
	cmd := exec.Command(javaPath, args...)
	cmd.Dir = o.GameDir
	if len(o.Env) > 0 {
		cmd.Env = append(os.Environ(), o.Env...)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start java: %w", err)
	}

	return &GameProcess{Cmd: cmd, Process: cmd.Process}, nil
}

// WaitForExit waits for the game to exit or for a signal to terminate it
func (g *GameProcess) WaitForExit() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan error, 1)
	go func() {
		done <- g.Cmd.Wait()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, stopping the game...", sig)
		if g.Process != nil {
			if err := g.Process.Kill(); err != nil {
				return err
			}
		}
		return fmt.Errorf("game terminated by signal: %v", sig)
	case err := <-done:
		if err != nil {
			logger.Error("Game exited with error: %v", err)
			return fmt.Errorf("game exited with error: %w", err)
		}
		logger.Info("Game exited")
		return nil
	}
}
