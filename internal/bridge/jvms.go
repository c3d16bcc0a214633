package bridge

import (
	"context"
	"slices"
	"time"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/process"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/storage"
)

// DefaultJVM selects the java found on PATH instead of a registered runtime
const DefaultJVM = -1

const inspectTimeout = 30 * time.Second

func (b *Bridge) loadJVMs() {
	if b.registry == nil {
		return
	}
	jvms, err := b.registry.ListJVMs(context.Background())
	if err != nil {
		logger.Warn("Failed to load registered runtimes: %v", err)
		return
	}
	b.jvms = jvms
}

// AddJVM runs the java executable at path to learn its vendor and version and
// registers it. args and env are applied whenever the game is started with it.
func (b *Bridge) AddJVM(path string, args, env []string) Result {
	ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
	defer cancel()

	info, err := process.InspectJVM(ctx, path)
	if err != nil {
		return b.encode(errs.IO("inspect "+path, err))
	}

	jvm := &storage.JVM{Name: info.Name(), Path: path, Args: args, Env: env}

	b.jvmMu.Lock()
	defer b.jvmMu.Unlock()
	if b.registry != nil {
		if err := b.registry.AddJVM(context.Background(), jvm); err != nil {
			return b.encode(errs.IO("register "+path, err))
		}
	}
	b.jvms = append(b.jvms, jvm)

	logger.Info("Registered %s at %s", jvm.Name, path)
	return Result{Code: Success}
}

// RemoveJVM unregisters the i-th runtime. Later runtimes shift down by one.
func (b *Bridge) RemoveJVM(i int) Result {
	b.jvmMu.Lock()
	defer b.jvmMu.Unlock()

	jvm := b.jvmAt(i)
	if b.registry != nil {
		if err := b.registry.RemoveJVM(context.Background(), jvm.ID); err != nil {
			return b.encode(errs.IO("unregister "+jvm.Path, err))
		}
	}
	b.jvms = slices.Delete(b.jvms, i, i+1)
	return Result{Code: Success}
}

// JVMCount returns the number of registered runtimes
func (b *Bridge) JVMCount() int {
	b.jvmMu.RLock()
	defer b.jvmMu.RUnlock()
	return len(b.jvms)
}

// JVMName leases the display name of the i-th runtime
func (b *Bridge) JVMName(i int) OwnedString {
	return b.strings.Lease(b.JVM(i).Name)
}

// JVM returns a copy of the i-th runtime
func (b *Bridge) JVM(i int) storage.JVM {
	b.jvmMu.RLock()
	defer b.jvmMu.RUnlock()
	return *b.jvmAt(i)
}

// JVMs returns copies of every registered runtime in index order
func (b *Bridge) JVMs() []storage.JVM {
	b.jvmMu.RLock()
	defer b.jvmMu.RUnlock()

	out := make([]storage.JVM, len(b.jvms))
	for i, jvm := range b.jvms {
		out[i] = *jvm
	}
	return out
}

func (b *Bridge) jvmAt(i int) *storage.JVM {
	if i < 0 || i >= len(b.jvms) {
		errs.Fault("jvm index %d out of range (%d registered)", i, len(b.jvms))
	}
	return b.jvms[i]
}

// LaunchOptions describes the installed version started with runtime jvm, or
// with java from PATH for DefaultJVM. The manifest, class path and jar must
// already be in the store.
func (b *Bridge) LaunchOptions(jvm int, profile process.Profile) process.LaunchOptions {
	o := process.LaunchOptions{
		JavaPath:   "java",
		Manifest:   b.store.Manifest(),
		Platform:   b.pipeline.Platform(),
		Profile:    profile,
		GameDir:    b.store.Dir(),
		AssetsDir:  b.store.AssetsDir(),
		NativesDir: b.store.NativesDir(),
		ClassPath:  b.store.ClassPath(),
		JarPath:    b.store.JarPath(),
	}
	if jvm != DefaultJVM {
		r := b.JVM(jvm)
		o.JavaPath = r.Path
		o.JVMArgs = r.Args
		o.Env = r.Env
	}
	return o
}

// Play starts the installed version with runtime jvm as an offline player and
// returns once the process is running. The process is reaped in the background.
func (b *Bridge) Play(jvm int, playerName string) Result {
	game, err := process.Launch(b.LaunchOptions(jvm, process.OfflineProfile(playerName)))
	if err != nil {
		return b.encode(errs.IO("launch", err))
	}

	go func() {
		if err := game.Cmd.Wait(); err != nil {
			logger.Warn("Game exited with error: %v", err)
			return
		}
		logger.Info("Game exited")
	}()
	return Result{Code: Success}
}
