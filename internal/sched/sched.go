// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package sched controls thread CPU affinity, scheduling priority, and
// current-CPU queries for the execution-context controller (spec §4.2).
//
// All operations here mutate process/thread scheduler state outside the
// measured region of any workload; callers apply them during scenario
// setup, never inside a begin/end bracket.
package sched

import (
	"runtime"
	"unsafe"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// OnlineCPUs returns the set of CPU indices the calling thread could be
// pinned to, read from the current thread's affinity mask before any
// restriction is applied.
func OnlineCPUs() (mapset.Set[int], error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, errors.Wrap(err, "sched_getaffinity")
	}
	// Count is the number of set bits, not the highest index, so scan until
	// every set bit has been found.
	n := set.Count()
	cpus := mapset.NewThreadUnsafeSet[int]()
	for i := 0; cpus.Cardinality() < n; i++ {
		if set.IsSet(i) {
			cpus.Add(i)
		}
	}
	return cpus, nil
}

// PinToCPU restricts the calling OS thread to a single CPU index. The
// caller must have already locked the goroutine to its OS thread with
// runtime.LockOSThread, otherwise the Go scheduler may migrate the
// goroutine onto an unpinned thread between calls.
func PinToCPU(cpu int) error {
	online, err := OnlineCPUs()
	if err != nil {
		return err
	}
	if !online.Contains(cpu) {
		return errors.Errorf("cpu %d is not in the online set %v", cpu, online.ToSlice())
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return errors.Wrapf(err, "sched_setaffinity(cpu=%d)", cpu)
	}
	return nil
}

// PinThreadToCPU applies the same restriction to another OS thread,
// identified by its Linux thread id (tid).
func PinThreadToCPU(tid int, cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(tid, &set); err != nil {
		return errors.Wrapf(err, "sched_setaffinity(tid=%d, cpu=%d)", tid, cpu)
	}
	return nil
}

// SetNice adjusts the calling process's static priority. Values below zero
// commonly require CAP_SYS_NICE; a permission failure here is non-fatal to
// the caller — the scenario driver skips the condition instead of aborting.
func SetNice(n int) error {
	if n < -20 || n > 19 {
		return errors.Errorf("nice value %d out of range [-20, 19]", n)
	}
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, n); err != nil {
		return errors.Wrapf(err, "setpriority(%d)", n)
	}
	return nil
}

// GetNice returns the calling process's current static priority.
// getpriority(2)'s raw return value is 20-nice, not nice itself, since the
// syscall interface can't otherwise distinguish a legitimate negative
// result from its -1 error convention; x/sys/unix passes that value
// through unchanged, so the offset is undone here.
func GetNice() (int, error) {
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, 0)
	if err != nil {
		return 0, errors.Wrap(err, "getpriority")
	}
	return 20 - prio, nil
}

// CurrentCPU returns the CPU index currently executing the caller, or -1 if
// the query fails. Never returns an error: it is called at snapshot
// boundaries where a failure must degrade to a sentinel, not abort.
func CurrentCPU() int {
	var cpu uint32
	if _, _, errno := unix.RawSyscall(unix.SYS_GETCPU, uintptr(unsafe.Pointer(&cpu)), 0, 0); errno != 0 {
		return -1
	}
	return int(cpu)
}

// YieldNow performs a voluntary reschedule via sched_yield. No registered
// scenario calls it.
func YieldNow() error {
	if _, _, errno := unix.Syscall(unix.SYS_SCHED_YIELD, 0, 0, 0); errno != 0 {
		return errors.Wrap(errno, "sched_yield")
	}
	return nil
}

// LockOSThread pins the calling goroutine to its current OS thread for the
// remainder of a measured region, so that PinToCPU's effect is not silently
// undone by the Go runtime moving the goroutine to a different thread.
func LockOSThread() {
	runtime.LockOSThread()
}

// UnlockOSThread releases a prior LockOSThread call.
func UnlockOSThread() {
	runtime.UnlockOSThread()
}
