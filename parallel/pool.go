// Package parallel runs jobs on a fixed set of workers. Each worker owns one
// value of state, such as a scratch context, that is passed to every job it
// runs and is never shared with another worker.
package parallel

import (
	"runtime"
	"sync"
)

type (
	// WorkerFunc queues a job. It blocks while all workers are busy and the
	// queue is full.
	WorkerFunc[S any] func(job func(state S))
	// WaitFunc blocks until queued jobs have run. With done set the pool is
	// closed first and no more jobs may be queued.
	WaitFunc func(done bool)
	// CancelFunc closes the pool.
	CancelFunc func()
)

// Pool is a started worker pool.
type Pool[S any] struct {
	wg      sync.WaitGroup
	pending sync.WaitGroup
	Do      WorkerFunc[S]
	Wait    WaitFunc
	Cancel  CancelFunc
}

// Start launches numWorkers workers, each with its own state from
// newState. With numWorkers < 1 one worker per CPU is started; with exactly
// one worker jobs run synchronously on the calling goroutine.
func Start[S any](numWorkers int, newState func() S) *Pool[S] {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool[S]{}

	if numWorkers == 1 {
		var (
			state S
			once  sync.Once
		)
		pool.Do = func(job func(S)) {
			once.Do(func() { state = newState() })
			job(state)
		}
		pool.Wait = func(bool) {}
		pool.Cancel = func() {}
		return pool
	}

	workChan := make(chan func(S), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			state := newState()
			for job := range workChan {
				job(state)
				pool.pending.Done()
			}
		})
	}

	pool.Do = func(job func(S)) {
		pool.pending.Add(1)
		workChan <- job
	}
	pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	pool.Wait = func(done bool) {
		if done {
			pool.Cancel()
			pool.wg.Wait()
			return
		}
		pool.pending.Wait()
	}

	return pool
}
