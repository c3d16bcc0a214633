package async

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

// Handle is the opaque identifier a foreign caller holds for a task. Zero is never issued.
type Handle uint64

// Kind tags a handle with the pipeline operation it runs
type Kind string

const (
	KindCatalog    Kind = "catalog"
	KindManifest   Kind = "manifest"
	KindAssetIndex Kind = "asset-index"
	KindAssets     Kind = "assets"
	KindLibraries  Kind = "libraries"
	KindJar        Kind = "jar"
)

// Kinds lists every kind in boundary order
var Kinds = []Kind{KindCatalog, KindManifest, KindAssetIndex, KindAssets, KindLibraries, KindJar}

// ParseKind validates a kind received from a boundary
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown task kind %q", s)
}

// Progress is implemented by counters a task updates while it runs
type Progress interface {
	Snapshot() models.TaskProgress
}

type entry struct {
	kind     Kind
	job      Job
	progress Progress
}

// TaskManager issues handles for running tasks. Handles grow monotonically
// and are never reused, so any issued handle that is no longer active has been
// consumed and every later use of it is detected.
type TaskManager struct {
	activeTasks map[Handle]entry
	mu          sync.RWMutex
	next        Handle
}

func NewTaskManager() *TaskManager {
	return &TaskManager{
		activeTasks: make(map[Handle]entry),
		next:        1,
	}
}

// Register stores job under a fresh handle. progress may be nil.
func (tm *TaskManager) Register(kind Kind, job Job, progress Progress) Handle {
	tm.mu.Lock()
	h := tm.next
	tm.next++
	tm.activeTasks[h] = entry{kind: kind, job: job, progress: progress}
	tm.mu.Unlock()

	logger.Debug("Registered %s task %d", kind, h)
	return h
}

func (tm *TaskManager) lookup(h Handle) entry {
	tm.mu.RLock()
	e, ok := tm.activeTasks[h]
	next := tm.next
	tm.mu.RUnlock()

	if !ok {
		if h == 0 || h >= next {
			errs.Fault("unknown task handle %d", h)
		}
		errs.Fault("task handle %d was already consumed", h)
	}
	return e
}

// Kind returns the kind handle h was created with
func (tm *TaskManager) Kind(h Handle) Kind {
	return tm.lookup(h).kind
}

// Poll reports whether the task behind h has finished
func (tm *TaskManager) Poll(h Handle) bool {
	return tm.lookup(h).job.Poll()
}

// Progress returns the counters of the task behind h, zero when it reports none
func (tm *TaskManager) Progress(h Handle) models.TaskProgress {
	e := tm.lookup(h)
	if e.progress == nil {
		return models.TaskProgress{}
	}
	return e.progress.Snapshot()
}

// View reports kind, completion and progress of h from a single lookup
func (tm *TaskManager) View(h Handle) models.TaskView {
	e := tm.lookup(h)
	view := models.TaskView{Handle: uint64(h), Kind: string(e.kind), Done: e.job.Poll()}
	if e.progress != nil {
		view.TaskProgress = e.progress.Snapshot()
	}
	return view
}

// Retire removes h from the registry after checking it was created as kind.
// The returned job is owned by the caller, who must consume it.
func (tm *TaskManager) Retire(h Handle, kind Kind) Job {
	tm.mu.Lock()
	e, ok := tm.activeTasks[h]
	if ok && e.kind == kind {
		delete(tm.activeTasks, h)
	}
	next := tm.next
	tm.mu.Unlock()

	switch {
	case !ok && (h == 0 || h >= next):
		errs.Fault("unknown task handle %d", h)
	case !ok:
		errs.Fault("task handle %d was already consumed", h)
	case e.kind != kind:
		errs.Fault("task handle %d is a %s task, not %s", h, e.kind, kind)
	}

	logger.Debug("Task %d retired", h)
	return e.job
}

// Consume retires h and returns its task with the result type T.
func Consume[T any](tm *TaskManager, h Handle, kind Kind) *Task[T] {
	job := tm.Retire(h, kind)
	task, ok := job.(*Task[T])
	if !ok {
		errs.Fault("task handle %d holds %T, not %T", h, job, task)
	}
	return task
}

// Active returns the number of handles that have not been consumed
func (tm *TaskManager) Active() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.activeTasks)
}

// Retired is a job removed from the registry along with the handle it was issued under
type Retired struct {
	Handle Handle
	Kind   Kind
	Job    Job
}

// RetireAll empties the registry and returns every outstanding task in handle order.
// The caller owns the returned jobs.
func (tm *TaskManager) RetireAll() []Retired {
	tm.mu.Lock()
	pending := tm.activeTasks
	tm.activeTasks = make(map[Handle]entry)
	tm.mu.Unlock()

	retired := make([]Retired, 0, len(pending))
	for h, e := range pending {
		retired = append(retired, Retired{Handle: h, Kind: e.kind, Job: e.job})
	}
	slices.SortFunc(retired, func(a, b Retired) int { return cmp.Compare(a.Handle, b.Handle) })
	return retired
}

// CancelAll cancels and retires every outstanding task and waits for them to unwind.
func (tm *TaskManager) CancelAll() {
	for _, r := range tm.RetireAll() {
		logger.Debug("Cancelling task %d", r.Handle)
		<-r.Job.Cancel()
	}
}
