// Package parallel provides a small fixed-size worker pool used by the
// detection engine for its data-parallel phases (accumulator clearing and
// vote scattering). Work is expressed as index ranges rather than task
// lists: both phases iterate flat buffers, so contiguous chunks with a
// completion barrier are all that is needed.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines consuming from a shared queue.
//
// Thread safety: Pool is safe for concurrent use, but the detection engine
// drives one phase at a time from a single goroutine.
type Pool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
	closed  atomic.Bool
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		tasks:   make(chan func(), workers*4),
	}

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// ExecuteAll runs every task on the pool and returns once all of them have
// completed. Must not be called from a pool worker. After Close it runs the
// tasks on the calling goroutine instead.
func (p *Pool) ExecuteAll(tasks []func()) {
	if len(tasks) == 0 {
		return
	}
	if p.closed.Load() {
		for _, task := range tasks {
			task()
		}
		return
	}

	var barrier sync.WaitGroup
	barrier.Add(len(tasks))
	for _, task := range tasks {
		fn := task
		p.tasks <- func() {
			defer barrier.Done()
			fn()
		}
	}
	barrier.Wait()
}

// ParallelFor splits [0, n) into contiguous chunks of at least grain
// elements, runs fn(lo, hi) for each chunk on the pool, and returns once
// every chunk has completed. Chunk boundaries carry no ordering guarantee.
func (p *Pool) ParallelFor(n, grain int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if grain < 1 {
		grain = 1
	}

	chunks := (n + grain - 1) / grain
	if limit := p.workers * 4; chunks > limit {
		chunks = limit
	}
	if chunks <= 1 {
		fn(0, n)
		return
	}

	size := (n + chunks - 1) / chunks
	tasks := make([]func(), 0, chunks)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		start, end := lo, hi
		tasks = append(tasks, func() { fn(start, end) })
	}
	p.ExecuteAll(tasks)
}

// Run executes fn over [0, n) using p, or directly on the calling goroutine
// when p is nil. It lets callers treat "no pool" as sequential execution.
func Run(p *Pool, n, grain int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if p == nil {
		fn(0, n)
		return
	}
	p.ParallelFor(n, grain, fn)
}

// Close stops the workers after the queued tasks finish.
// Safe to call multiple times.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}
