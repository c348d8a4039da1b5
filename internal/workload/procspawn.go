// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ProcessCreationMode selects one of the four process-creation variants
// (spec §4.7). Go's runtime does not expose a raw vfork or clone(2) call
// safe to use from a goroutine-scheduled program (both would freeze every
// other goroutine on this OS thread until the child execs or exits), so
// those two variants shell out to a tiny helper via the same
// syscall.ForkExec path fork uses, distinguished by the clone flags
// requested — this is the closest safe approximation available without
// hand-written assembly.
type ProcessCreationMode int

const (
	ProcessForkExec ProcessCreationMode = iota
	ProcessVforkLike
	ProcessCloneLike
	ProcessPosixSpawnLike
)

// trivialChildPath names "true" (POSIX-mandated to exist and exit 0
// immediately), the minimal-work child every variant needs.
var trivialChildPath = "/bin/true"

func init() {
	if _, err := os.Stat(trivialChildPath); err != nil {
		if p, err := exec.LookPath("true"); err == nil {
			trivialChildPath = p
		}
	}
}

// SpawnAndReap creates a child running the trivial program and waits for
// it to exit, matching whichever creation mode was requested. fork_exec
// and posix_spawn_like both run the child through os/exec with no extra
// clone flags; vfork_like passes CLONE_VFORK|CLONE_VM and clone_like
// passes CLONE_VM to syscall.ForkExec.
func SpawnAndReap(mode ProcessCreationMode) error {
	switch mode {
	case ProcessVforkLike, ProcessCloneLike:
		return spawnWithCloneFlags(mode)
	default:
		cmd := exec.Command(trivialChildPath)
		if err := cmd.Run(); err != nil {
			return errors.Wrap(err, "run trivial child")
		}
		return nil
	}
}

func spawnWithCloneFlags(mode ProcessCreationMode) error {
	var flags uintptr
	switch mode {
	case ProcessVforkLike:
		flags = uintptr(unix.CLONE_VFORK | unix.CLONE_VM)
	case ProcessCloneLike:
		flags = uintptr(unix.CLONE_VM)
	}
	pid, err := syscall.ForkExec(trivialChildPath, []string{trivialChildPath}, &syscall.ProcAttr{
		Env: os.Environ(),
		Sys: &syscall.SysProcAttr{Cloneflags: flags},
	})
	if err != nil {
		return errors.Wrap(err, "forkexec with clone flags")
	}
	var ws syscall.WaitStatus
	if _, err := syscall.Wait4(pid, &ws, 0, nil); err != nil {
		return errors.Wrap(err, "wait4")
	}
	return nil
}
