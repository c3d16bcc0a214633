package async

import (
	"context"
	"runtime/debug"
	"sync/atomic"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/errs"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
)

// Job is the type-erased view of a Task used by the handle registry.
type Job interface {
	Poll() bool
	Done() <-chan struct{}
	Cancel() <-chan struct{}
}

// Task is one unit of work scheduled on a Runtime. It is consumed exactly
// once, by Await or by Cancel.
type Task[T any] struct {
	cancel   context.CancelFunc
	done     chan struct{}
	value    T
	err      error
	panicked any
	consumed atomic.Bool
}

var _ Job = (*Task[struct{}])(nil)

// Spawn schedules work on rt and returns immediately. The context handed to
// work is cancelled by Cancel.
func Spawn[T any](rt *Runtime, ctx context.Context, work func(context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ok := rt.submit(func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Task panicked: %v\n%s", r, debug.Stack())
				t.panicked = r
			}
		}()

		if err := ctx.Err(); err != nil {
			t.err = err
			return
		}
		t.value, t.err = work(ctx)
	})
	if !ok {
		cancel()
		errs.Fault("spawn on a runtime that has been shut down")
	}

	return t
}

// Poll reports whether the work has finished. Once true it stays true.
func (t *Task[T]) Poll() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done is closed when the work has returned
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Await blocks until the work finishes and returns its result. A panic raised
// by the work is raised again here. It must not be called from a runtime job.
func (t *Task[T]) Await() (T, error) {
	t.consume("await")
	<-t.done
	t.cancel()

	if t.panicked != nil {
		panic(t.panicked)
	}
	return t.value, t.err
}

// Cancel signals the work to stop and returns a channel closed once it has unwound.
func (t *Task[T]) Cancel() <-chan struct{} {
	t.consume("cancel")
	t.cancel()
	return t.done
}

func (t *Task[T]) consume(op string) {
	if !t.consumed.CompareAndSwap(false, true) {
		errs.Fault("%s on a task that was already consumed", op)
	}
}
