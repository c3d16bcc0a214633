// Package bridge lets a synchronous caller across a runtime boundary start,
// poll, await and cancel pipeline work through opaque handles.
//
// Every handle is consumed exactly once, by Await or Cancel. Awaiting a
// successful task writes its value into the state store before the Result is
// returned. Misuse of a handle (unknown, consumed, wrong kind) panics with a
// precondition error; it is never encoded as a Result.
package bridge

import (
	"context"
	"sync"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/async"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/download"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/state"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/storage"
)

// Bridge is the process-scoped context shared by every boundary
type Bridge struct {
	rt       *async.Runtime
	tasks    *async.TaskManager
	store    *state.Store
	pipeline *download.Pipeline
	strings  *StringTable
	ledger   storage.Ledger
	registry storage.JVMRegistry

	mu      sync.Mutex
	records map[async.Handle]string

	jvmMu sync.RWMutex
	jvms  []*storage.JVM
}

// New creates a bridge. ledger and registry may be nil; without a registry
// runtimes are only kept in memory.
func New(rt *async.Runtime, store *state.Store, pipeline *download.Pipeline, ledger storage.Ledger, registry storage.JVMRegistry) *Bridge {
	b := &Bridge{
		rt:       rt,
		tasks:    async.NewTaskManager(),
		store:    store,
		pipeline: pipeline,
		strings:  NewStringTable(),
		ledger:   ledger,
		registry: registry,
		records:  make(map[async.Handle]string),
	}
	b.loadJVMs()
	return b
}

func (b *Bridge) Store() *state.Store          { return b.store }
func (b *Bridge) Strings() *StringTable        { return b.strings }
func (b *Bridge) Pipeline() *download.Pipeline { return b.pipeline }
func (b *Bridge) Tasks() *async.TaskManager    { return b.tasks }
func (b *Bridge) Ledger() storage.Ledger       { return b.ledger }

// CreateTask starts a task of kind. arg is the version id for manifest tasks
// (empty selects the latest release) and is ignored otherwise.
func (b *Bridge) CreateTask(kind async.Kind, arg string) async.Handle {
	switch kind {
	case async.KindCatalog:
		return b.FetchCatalog()
	case async.KindManifest:
		return b.FetchManifest(arg)
	case async.KindAssetIndex:
		return b.FetchAssetIndex()
	case async.KindAssets:
		return b.SyncAssets()
	case async.KindLibraries:
		return b.FetchLibraries()
	case async.KindJar:
		return b.FetchJar()
	}
	errs.Fault("unknown task kind %q", kind)
	return 0
}

// FetchCatalog starts a catalog fetch
func (b *Bridge) FetchCatalog() async.Handle {
	return spawn(b, async.KindCatalog, "", nil, b.pipeline.FetchCatalog)
}

// FetchManifest starts a manifest fetch for versionID. The catalog must be loaded.
func (b *Bridge) FetchManifest(versionID string) async.Handle {
	catalog := b.store.Catalog()
	if versionID == "" {
		versionID = catalog.Latest.Release
	}
	version, ok := catalog.Find(versionID)
	if !ok {
		errs.Fault("version %q is not in the catalog", versionID)
	}

	versionsDir := b.store.VersionsDir()
	return spawn(b, async.KindManifest, versionID, nil, func(ctx context.Context) (*models.Manifest, error) {
		return b.pipeline.FetchManifest(ctx, version, versionsDir)
	})
}

// FetchAssetIndex starts an asset index fetch for the selected version
func (b *Bridge) FetchAssetIndex() async.Handle {
	manifest := b.store.Manifest()
	assetsDir := b.store.AssetsDir()
	return spawn(b, async.KindAssetIndex, manifest.ID, nil, func(ctx context.Context) (*models.AssetIndex, error) {
		return b.pipeline.FetchAssetIndex(ctx, manifest.AssetIndex, assetsDir)
	})
}

// SyncAssets fetches the asset index of the selected version, then reconciles every object
func (b *Bridge) SyncAssets() async.Handle {
	manifest := b.store.Manifest()
	assetsDir := b.store.AssetsDir()
	progress := &download.Progress{}
	return spawn(b, async.KindAssets, manifest.ID, progress, func(ctx context.Context) (*models.AssetIndex, error) {
		index, err := b.pipeline.FetchAssetIndex(ctx, manifest.AssetIndex, assetsDir)
		if err != nil {
			return nil, err
		}
		if err := b.pipeline.SyncAssetObjects(ctx, index, assetsDir, progress); err != nil {
			return nil, err
		}
		return index, nil
	})
}

// FetchLibraries resolves and reconciles the selected version's libraries
func (b *Bridge) FetchLibraries() async.Handle {
	manifest := b.store.Manifest()
	librariesDir := b.store.LibrariesDir()
	nativesDir := b.store.NativesDir()
	progress := &download.Progress{}
	return spawn(b, async.KindLibraries, manifest.ID, progress, func(ctx context.Context) (string, error) {
		return b.pipeline.ResolveAndFetchLibraries(ctx, manifest.Libraries, librariesDir, nativesDir, progress)
	})
}

// FetchJar reconciles the selected version's client jar
func (b *Bridge) FetchJar() async.Handle {
	manifest := b.store.Manifest()
	versionsDir := b.store.VersionsDir()
	progress := &download.Progress{}
	return spawn(b, async.KindJar, manifest.ID, progress, func(ctx context.Context) (string, error) {
		return b.pipeline.FetchJar(ctx, manifest, versionsDir, progress)
	})
}

func spawn[T any](b *Bridge, kind async.Kind, arg string, progress *download.Progress, work func(context.Context) (T, error)) async.Handle {
	task := async.Spawn(b.rt, context.Background(), work)

	var p async.Progress
	if progress != nil {
		p = progress
	}
	h := b.tasks.Register(kind, task, p)
	activeTasks.Inc()
	b.recordStart(h, kind, arg)
	return h
}

// Poll reports whether the task behind h has finished
func (b *Bridge) Poll(h async.Handle) bool {
	return b.tasks.Poll(h)
}

// Progress returns the counters of the task behind h
func (b *Bridge) Progress(h async.Handle) models.TaskProgress {
	return b.tasks.Progress(h)
}

// View snapshots the task behind h for polling boundaries
func (b *Bridge) View(h async.Handle) models.TaskView {
	return b.tasks.View(h)
}

// Await blocks until the task behind h finishes, consumes h and returns the
// encoded outcome. kind must be the kind h was created with.
func (b *Bridge) Await(h async.Handle, kind async.Kind) Result {
	switch kind {
	case async.KindCatalog:
		return await(b, h, kind, b.store.WriteCatalog)
	case async.KindManifest:
		return await(b, h, kind, b.store.WriteManifest)
	case async.KindAssetIndex, async.KindAssets:
		return await(b, h, kind, b.store.WriteAssetIndex)
	case async.KindLibraries:
		return await(b, h, kind, b.store.SetClassPath)
	case async.KindJar:
		return await(b, h, kind, b.store.SetJarPath)
	}
	errs.Fault("unknown task kind %q", kind)
	return Result{}
}

func await[T any](b *Bridge, h async.Handle, kind async.Kind, apply func(T)) Result {
	task := async.Consume[T](b.tasks, h, kind)
	activeTasks.Dec()

	value, err := task.Await()
	if err == nil {
		apply(value)
	} else {
		logger.Warn("Task %d (%s) failed: %v", h, kind, err)
	}

	res := b.encode(err)
	tasksTotal.WithLabelValues(string(kind), res.Code.String()).Inc()
	b.recordFinish(h, models.TaskStatusConsumed, res.Code, err)
	return res
}

// Cancel signals the task behind h to stop and consumes h immediately. The
// returned channel is closed once the work has unwound; callers may ignore it.
func (b *Bridge) Cancel(h async.Handle, kind async.Kind) <-chan struct{} {
	return b.cancel(h, kind, b.tasks.Retire(h, kind))
}

func (b *Bridge) cancel(h async.Handle, kind async.Kind, job async.Job) <-chan struct{} {
	activeTasks.Dec()
	done := job.Cancel()

	tasksTotal.WithLabelValues(string(kind), outcomeCancelled).Inc()
	b.recordFinish(h, models.TaskStatusCancelled, Success, nil)
	logger.Debug("Task %d (%s) cancelled", h, kind)
	return done
}

// Close cancels every outstanding task and waits for them to unwind
func (b *Bridge) Close() {
	for _, r := range b.tasks.RetireAll() {
		<-b.cancel(r.Handle, r.Kind, r.Job)
	}
}

func (b *Bridge) encode(err error) Result {
	if err == nil {
		return Result{Code: Success}
	}
	return Result{Code: CodeOf(err), Error: b.strings.Lease(err.Error())}
}

// Text returns a leased string
func (b *Bridge) Text(o OwnedString) string {
	return b.strings.Text(o)
}

// FreeString releases a string handed out by this bridge
func (b *Bridge) FreeString(o OwnedString) {
	b.strings.Free(o)
}

// CatalogLoaded never faults
func (b *Bridge) CatalogLoaded() bool {
	return b.store.CatalogLoaded()
}

// LatestRelease leases the id of the latest release. The catalog must be loaded.
func (b *Bridge) LatestRelease() OwnedString {
	return b.strings.Lease(b.store.LatestReleaseID())
}

func (b *Bridge) VersionCount() int {
	return b.store.VersionCount()
}

// VersionID leases the id of the i-th catalog entry
func (b *Bridge) VersionID(i int) OwnedString {
	return b.strings.Lease(b.store.VersionID(i))
}

// VersionType leases the release type of the i-th catalog entry
func (b *Bridge) VersionType(i int) OwnedString {
	return b.strings.Lease(string(b.store.VersionType(i)))
}

func (b *Bridge) recordStart(h async.Handle, kind async.Kind, arg string) {
	if b.ledger == nil {
		return
	}

	rec := &storage.TaskRecord{Handle: uint64(h), Kind: string(kind), Arg: arg}
	if err := b.ledger.RecordStart(context.Background(), rec); err != nil {
		logger.Warn("Failed to record start of task %d: %v", h, err)
		return
	}

	b.mu.Lock()
	b.records[h] = rec.ID
	b.mu.Unlock()
}

func (b *Bridge) recordFinish(h async.Handle, status models.TaskStatus, code Code, cause error) {
	if b.ledger == nil {
		return
	}

	b.mu.Lock()
	id, ok := b.records[h]
	delete(b.records, h)
	b.mu.Unlock()
	if !ok {
		return
	}

	var text string
	if cause != nil {
		text = cause.Error()
	}
	if err := b.ledger.RecordFinish(context.Background(), id, status, int(code), text); err != nil {
		logger.Warn("Failed to record outcome of task %d: %v", h, err)
	}
}
