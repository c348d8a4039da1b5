// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"os"

	"github.com/pkg/errors"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

const fileIOSize = 32 * 1024 * 1024
const fileIOBlockSize = 64 * 1024
const fileIORandomOps = 2000

// FileIOPatterns compares sequential read, sequential write, random
// pread, O_DIRECT read, mmap sequential, and mmap random access over an
// identically sized file each time (spec §4.7 "file I/O patterns").
// O_DIRECT can fail on filesystems that don't support it (tmpfs, some
// overlayfs configurations); that failure skips only that condition.
func FileIOPatterns() Definition {
	dir, err := os.MkdirTemp("", "lrc-fileio")
	columns := append([]string{"run", "condition_label", "pattern"}, baseMetricColumns...)

	return Definition{
		Name:             "file_io_patterns",
		Columns:          columns,
		RunsPerCondition: 10,
		Cleanup: func() error {
			if err != nil {
				return nil
			}
			return os.RemoveAll(dir)
		},
		CheckPreconditions: func() (bool, string) {
			if err != nil {
				return false, "could not create scratch directory for file I/O scenario: " + err.Error()
			}
			return true, ""
		},
		Conditions: func() ([]Condition, error) {
			return []Condition{
				{Label: "sequential_read", ExtraColumns: []string{"sequential_read"}},
				{Label: "sequential_write", ExtraColumns: []string{"sequential_write"}},
				{Label: "random_read", ExtraColumns: []string{"random_read"}},
				{Label: "direct_read", ExtraColumns: []string{"direct_read"}},
				{Label: "mmap_sequential_read", ExtraColumns: []string{"mmap_sequential_read"}},
				{Label: "mmap_random_read", ExtraColumns: []string{"mmap_random_read"}},
			}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			path, ferr := workload.TestFile(dir, fileIOSize)
			if ferr != nil {
				return nil, errors.Wrap(ErrSkipCondition, ferr.Error())
			}
			defer os.Remove(path)

			var opErr error
			snap, err := measure(nil, func() {
				switch cond.ExtraColumns[0] {
				case "sequential_read":
					_, opErr = workload.SequentialRead(path)
				case "sequential_write":
					opErr = workload.SequentialWrite(path, fileIOSize)
				case "random_read":
					_, opErr = workload.RandomSeekRead(path, fileIOSize, fileIOBlockSize, fileIORandomOps, int64(runIndex))
				case "direct_read":
					_, opErr = workload.DirectRead(path, fileIOBlockSize)
				case "mmap_sequential_read":
					_, opErr = workload.MmapSequentialRead(path)
				case "mmap_random_read":
					_, opErr = workload.MmapRandomAccess(path, fileIORandomOps, int64(runIndex))
				}
			})
			if err != nil {
				return nil, err
			}
			if opErr != nil {
				return nil, errors.Wrap(ErrSkipCondition, opErr.Error())
			}
			return baseMetricFields(snap), nil
		},
	}
}
