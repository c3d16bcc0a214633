// Package async runs launcher work in the background and tracks it through opaque handles.
package async

import (
	"runtime"
	"sync"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
)

// Runtime is a fixed pool of worker goroutines fed from an unbounded FIFO queue.
type Runtime struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closed  bool
	workers int
	wg      sync.WaitGroup
}

// Default is the process-wide runtime, created on first use.
var Default = sync.OnceValue(func() *Runtime {
	return NewRuntime(runtime.NumCPU())
})

// NewRuntime starts workers goroutines. Values below one are raised to one.
func NewRuntime(workers int) *Runtime {
	if workers < 1 {
		workers = 1
	}

	rt := &Runtime{workers: workers}
	rt.cond = sync.NewCond(&rt.mu)

	rt.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go rt.worker()
	}

	logger.Debug("Runtime started with %d workers", workers)
	return rt
}

// Workers returns the pool size
func (rt *Runtime) Workers() int {
	return rt.workers
}

func (rt *Runtime) submit(job func()) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return false
	}
	rt.queue = append(rt.queue, job)
	rt.cond.Signal()
	return true
}

func (rt *Runtime) worker() {
	defer rt.wg.Done()

	for {
		rt.mu.Lock()
		for len(rt.queue) == 0 && !rt.closed {
			rt.cond.Wait()
		}
		if len(rt.queue) == 0 {
			rt.mu.Unlock()
			return
		}
		job := rt.queue[0]
		rt.queue[0] = nil
		rt.queue = rt.queue[1:]
		rt.mu.Unlock()

		job()
	}
}

// Shutdown stops accepting work and waits for queued jobs to drain.
func (rt *Runtime) Shutdown() {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return
	}
	rt.closed = true
	rt.cond.Broadcast()
	rt.mu.Unlock()

	rt.wg.Wait()
	logger.Debug("Runtime stopped")
}
