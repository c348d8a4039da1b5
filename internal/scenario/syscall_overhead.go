// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"golang.org/x/sys/unix"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

const syscallIterations = 1_000_000

// SyscallOverhead compares a pure-CPU baseline against getpid (often
// vDSO-accelerated), a read from /dev/null (simple kernel work), and
// getrusage (moderate kernel work), matching
// original_source/scenarios/syscall_overhead.c's four conditions (spec
// §4.7 "syscall overhead").
func SyscallOverhead() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "syscall_type"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "syscall_overhead",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			return []Condition{
				{Label: "baseline", ExtraColumns: []string{"baseline"}},
				{Label: "getpid", ExtraColumns: []string{"getpid"}},
				{Label: "read_devnull", ExtraColumns: []string{"read_devnull"}},
				{Label: "getrusage", ExtraColumns: []string{"getrusage"}},
			}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			var fd int
			var openErr error
			if cond.ExtraColumns[0] == "read_devnull" {
				fd, openErr = unix.Open("/dev/null", unix.O_RDONLY, 0)
				if openErr != nil {
					return nil, openErr
				}
				defer unix.Close(fd)
			}

			var buf [1]byte
			var rusage unix.Rusage

			snap, err := measure(hw, func() {
				switch cond.ExtraColumns[0] {
				case "getpid":
					for i := 0; i < syscallIterations; i++ {
						unix.Getpid()
					}
				case "read_devnull":
					for i := 0; i < syscallIterations; i++ {
						unix.Read(fd, buf[:])
					}
				case "getrusage":
					for i := 0; i < syscallIterations; i++ {
						unix.Getrusage(unix.RUSAGE_SELF, &rusage)
					}
				default:
					workload.CPUSpin(syscallIterations)
				}
			})
			if err != nil {
				return nil, err
			}
			fields := baseMetricFields(snap)
			fields = append(fields, hwFields(snap)...)
			return fields, nil
		},
	}
}
