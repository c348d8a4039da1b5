// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/psantana5/linux-reality-check/internal/sched"
)

// LockKind is a tagged variant selector for the lock-contention kernel
// (spec §4.7, §9 Design Notes: "prefer tagged variants over function
// pointers so branch targets are visible").
type LockKind int

const (
	LockBusyWait LockKind = iota
	LockMutex
	LockAtomic
)

func (k LockKind) String() string {
	switch k {
	case LockBusyWait:
		return "busy_wait"
	case LockMutex:
		return "mutex"
	case LockAtomic:
		return "atomic"
	default:
		return "unknown"
	}
}

// busySpinlock is a userspace test-and-set spinlock, standing in for the
// pthread_spin_lock used by original_source/core/lock_contention.c's
// spinlock_worker.
type busySpinlock struct{ flag int32 }

func (s *busySpinlock) Lock() {
	for !atomic.CompareAndSwapInt32(&s.flag, 0, 1) {
		// busy-wait; no OS-level suspension, matches "busy-wait lock" in
		// spec §4.7.
	}
}

func (s *busySpinlock) Unlock() { atomic.StoreInt32(&s.flag, 0) }

// maxLockWorkloadSize mirrors the 256-byte opaque stack buffer
// original_source/scenarios/lock_scaling.c holds its lock_workload_t in
// (`char work_buf[256]`). Go's LockWorkload is heap-allocated, not
// stack-held, so nothing forces it to fit — but constructing one that
// silently outgrew that budget would make the two implementations
// incomparable, so NewLockWorkload checks against the same bound the
// original's opaque buffer imposed (spec §9 open question 1: "expose the
// object size and check at construction").
const maxLockWorkloadSize = 256

// LockWorkload is the shared object N threads contend over. Its Size is
// exposed per spec §9 open question 1 ("expose the object size and check
// at construction").
type LockWorkload struct {
	spin           busySpinlock
	mu             sync.Mutex
	atomicCounter  uint64
	sharedCounter  uint64
	threadCount    int
	iterPerThread  int
	pinThreads     bool
}

// Size reports the in-memory size of the workload object in bytes.
func (w *LockWorkload) Size() int {
	return int(unsafe.Sizeof(*w))
}

// NewLockWorkload constructs a lock workload for threadCount goroutines
// each performing iterPerThread critical-section entries.
func NewLockWorkload(threadCount, iterPerThread int, pinThreads bool) (*LockWorkload, error) {
	if threadCount <= 0 || iterPerThread <= 0 {
		return nil, errors.Errorf("threadCount and iterPerThread must be positive, got %d/%d", threadCount, iterPerThread)
	}
	w := &LockWorkload{threadCount: threadCount, iterPerThread: iterPerThread, pinThreads: pinThreads}
	if size := w.Size(); size > maxLockWorkloadSize {
		return nil, errors.Errorf("lock workload object is %d bytes, exceeds the %d-byte budget", size, maxLockWorkloadSize)
	}
	return w, nil
}

// Run executes the workload with the given lock kind, fanning out to
// threadCount goroutines and rejoining before returning (spec §2 "fan out
// inside a single iteration, then rejoin, before the after-snapshot").
// Threads are optionally pinned round-robin to the online CPU set (spec
// §4.7 "Each thread may be pinned round-robin to available CPUs").
func (w *LockWorkload) Run(kind LockKind) error {
	online, err := sched.OnlineCPUs()
	if err != nil {
		return err
	}
	cpus := online.ToSlice()

	var wg sync.WaitGroup
	wg.Add(w.threadCount)
	for t := 0; t < w.threadCount; t++ {
		t := t
		go func() {
			defer wg.Done()
			if w.pinThreads && len(cpus) > 0 {
				sched.LockOSThread()
				defer sched.UnlockOSThread()
				_ = sched.PinToCPU(cpus[t%len(cpus)])
			}
			w.runWorker(kind)
		}()
	}
	wg.Wait()
	return nil
}

func (w *LockWorkload) runWorker(kind LockKind) {
	switch kind {
	case LockBusyWait:
		for i := 0; i < w.iterPerThread; i++ {
			w.spin.Lock()
			w.sharedCounter++
			w.spin.Unlock()
		}
	case LockMutex:
		for i := 0; i < w.iterPerThread; i++ {
			w.mu.Lock()
			w.sharedCounter++
			w.mu.Unlock()
		}
	case LockAtomic:
		for i := 0; i < w.iterPerThread; i++ {
			atomic.AddUint64(&w.atomicCounter, 1)
		}
	}
}

// Counter returns the final value of whichever counter the last Run call
// updated, for sanity-checking that no update was lost to a race.
func (w *LockWorkload) Counter(kind LockKind) uint64 {
	if kind == LockAtomic {
		return atomic.LoadUint64(&w.atomicCounter)
	}
	return w.sharedCounter
}
