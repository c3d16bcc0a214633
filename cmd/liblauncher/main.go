//go:build cgo

// Command liblauncher builds the launcher core as a C shared library:
//
//	go build -buildmode=c-shared -o liblauncher.so ./cmd/liblauncher
//
// Every launcher_* call is synchronous from the caller's point of view. Long
// work runs on the shared task runtime behind opaque handles; strings cross
// the boundary as leases the caller reads with launcher_read_string and
// releases with launcher_free_string. Misuse of a handle or a lease aborts the
// process.
package main

/*
#include <stdbool.h>
#include <stddef.h>
#include <stdint.h>

typedef struct {
	uint64_t id;
	uint64_t len;
} launcher_string;

typedef struct {
	int32_t code;
	launcher_string error;
} launcher_result;
*/
import "C"

import (
	"path/filepath"
	"sync"
	"unicode/utf16"
	"unsafe"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/client"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/config"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/download"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/state"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/storage"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/utils"
)

var (
	mu      sync.Mutex
	current *bridge.Bridge
)

func launcher() *bridge.Bridge {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		errs.Fault("launcher_init was not called")
	}
	return current
}

func kindOf(kind C.int32_t) async.Kind {
	if kind < 0 || int(kind) >= len(async.Kinds) {
		errs.Fault("unknown task kind %d", kind)
	}
	return async.Kinds[kind]
}

func toC(o bridge.OwnedString) C.launcher_string {
	return C.launcher_string{id: C.uint64_t(o.ID), len: C.uint64_t(o.Len)}
}

//export launcher_init
func launcher_init(path *C.uint16_t, length C.size_t) {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		errs.Fault("launcher_init called twice")
	}

	buf := unsafe.Slice((*uint16)(unsafe.Pointer(path)), int(length))
	store := state.FromUTF16(buf)

	utils.LoadEnvironment()
	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()
	cfg.DataDir = store.Dir()

	if _, err := storage.EnsureDir(store.Dir()); err != nil {
		logger.Error("Failed to create data directory: %v", err)
	}
	if _, err := logger.InitFileOnly(store.Dir()); err != nil {
		logger.Warn("Logging to stdout: %v", err)
	}

	var ledger storage.Ledger
	var registry storage.JVMRegistry
	if l, err := storage.NewSQLiteLedger(filepath.Join(store.Dir(), "launcher.db")); err != nil {
		logger.Warn("Task history and runtime registry disabled: %v", err)
	} else {
		ledger = l
		registry = l
	}

	pipeline := download.NewPipeline(client.NewHTTPClient(cfg.HTTPTimeout), download.Options{
		CatalogURL:   cfg.CatalogURL,
		ResourcesURL: cfg.ResourcesURL,
		Concurrency:  cfg.Concurrency,
		Platform:     models.CurrentPlatform(),
	})
	current = bridge.New(async.Default(), store, pipeline, ledger, registry)
	logger.Info("Launcher initialized at %s", store.Dir())
}

// launcher_create_task starts a task. kind indexes catalog, manifest,
// asset-index, assets, libraries, jar. arg may be NULL.
//
//export launcher_create_task
func launcher_create_task(kind C.int32_t, arg *C.char) C.uint64_t {
	var s string
	if arg != nil {
		s = C.GoString(arg)
	}
	return C.uint64_t(launcher().CreateTask(kindOf(kind), s))
}

//export launcher_poll_task
func launcher_poll_task(h C.uint64_t) C.bool {
	return C.bool(launcher().Poll(async.Handle(h)))
}

//export launcher_task_progress
func launcher_task_progress(h C.uint64_t, finished *C.int64_t, total *C.int64_t) {
	p := launcher().Progress(async.Handle(h))
	if finished != nil {
		*finished = C.int64_t(p.Finished)
	}
	if total != nil {
		*total = C.int64_t(p.Total)
	}
}

//export launcher_await_task
func launcher_await_task(h C.uint64_t, kind C.int32_t) C.launcher_result {
	res := launcher().Await(async.Handle(h), kindOf(kind))
	return C.launcher_result{code: C.int32_t(res.Code), error: toC(res.Error)}
}

//export launcher_cancel_task
func launcher_cancel_task(h C.uint64_t, kind C.int32_t) {
	launcher().Cancel(async.Handle(h), kindOf(kind))
}

// launcher_read_string copies up to capacity bytes of a leased string into buf
// and returns the full length. The string is not NUL-terminated.
//
//export launcher_read_string
func launcher_read_string(id C.uint64_t, buf *C.char, capacity C.size_t) C.size_t {
	text := launcher().Text(bridge.OwnedString{ID: uint64(id)})
	if buf != nil && capacity > 0 {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(capacity))
		copy(dst, text)
	}
	return C.size_t(len(text))
}

//export launcher_free_string
func launcher_free_string(s C.launcher_string) {
	launcher().FreeString(bridge.OwnedString{ID: uint64(s.id), Len: int(s.len)})
}

//export launcher_is_catalog_loaded
func launcher_is_catalog_loaded() C.bool {
	return C.bool(launcher().CatalogLoaded())
}

//export launcher_latest_release
func launcher_latest_release() C.launcher_string {
	return toC(launcher().LatestRelease())
}

//export launcher_version_count
func launcher_version_count() C.int64_t {
	return C.int64_t(launcher().VersionCount())
}

//export launcher_version_id
func launcher_version_id(i C.int64_t) C.launcher_string {
	return toC(launcher().VersionID(int(i)))
}

//export launcher_version_type
func launcher_version_type(i C.int64_t) C.launcher_string {
	return toC(launcher().VersionType(int(i)))
}

// launcher_add_jvm runs the java executable at path (UTF-16) and registers it
// under its vendor and major version.
//
//export launcher_add_jvm
func launcher_add_jvm(path *C.uint16_t, length C.size_t) C.launcher_result {
	buf := unsafe.Slice((*uint16)(unsafe.Pointer(path)), int(length))
	res := launcher().AddJVM(string(utf16.Decode(buf)), nil, nil)
	return C.launcher_result{code: C.int32_t(res.Code), error: toC(res.Error)}
}

//export launcher_remove_jvm
func launcher_remove_jvm(i C.int64_t) C.launcher_result {
	res := launcher().RemoveJVM(int(i))
	return C.launcher_result{code: C.int32_t(res.Code), error: toC(res.Error)}
}

//export launcher_jvm_len
func launcher_jvm_len() C.int64_t {
	return C.int64_t(launcher().JVMCount())
}

//export launcher_jvm_name
func launcher_jvm_name(i C.int64_t) C.launcher_string {
	return toC(launcher().JVMName(int(i)))
}

// launcher_play starts the installed version with runtime jvm, or java from
// PATH when jvm is -1. name is the offline player name and may be NULL.
//
//export launcher_play
func launcher_play(jvm C.int64_t, name *C.char) C.launcher_result {
	player := "Player"
	if name != nil {
		player = C.GoString(name)
	}
	res := launcher().Play(int(jvm), player)
	return C.launcher_result{code: C.int32_t(res.Code), error: toC(res.Error)}
}

func main() {}
