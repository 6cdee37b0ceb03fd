// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool runs independent tasks in parallel, with a soft limit on the number of
// goroutines running at the same time.
package workerspool

import (
	"runtime"
	"sync"
)

// Pool of workers. The zero value is not usable, create it with New.
type Pool struct {
	maxParallelism int
	mu             sync.Mutex
	cond           sync.Cond // Signaled whenever numRunning decreases.
	numRunning     int
}

// New returns a new Pool with parallelism set to runtime.NumCPU().
func New() *Pool {
	w := &Pool{maxParallelism: runtime.NumCPU()}
	w.cond = sync.Cond{L: &w.mu}
	return w
}

// MaxParallelism returns the limit of tasks running at the same time.
// 0 means tasks are run inline, and -1 means no limit.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// SetMaxParallelism sets the limit of tasks running at the same time. See MaxParallelism.
//
// It should only be changed while no tasks are running.
func (w *Pool) SetMaxParallelism(maxParallelism int) {
	w.maxParallelism = maxParallelism
}

// lockedIsFull must be called with w.mu held.
func (w *Pool) lockedIsFull() bool {
	return w.maxParallelism >= 0 && w.numRunning >= w.maxParallelism
}

// WaitToStart blocks until a worker is available and starts task in a new goroutine.
// If parallelism is disabled, the task is run inline before returning.
func (w *Pool) WaitToStart(task func()) {
	if w.maxParallelism == 0 {
		task()
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.lockedIsFull() {
		w.cond.Wait()
	}
	w.numRunning++
	go func() {
		defer func() {
			w.mu.Lock()
			w.numRunning--
			w.cond.Signal()
			w.mu.Unlock()
		}()
		task()
	}()
}

// ForEach calls fn(i) for i in [0, n) using the pool, and returns once all calls finished.
// fn must not panic.
func (w *Pool) ForEach(n int, fn func(i int)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		w.WaitToStart(func() {
			defer wg.Done()
			fn(i)
		})
	}
	wg.Wait()
}
