// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/psantana5/linux-reality-check/internal/sched"
	"github.com/psantana5/linux-reality-check/internal/workload"
)

// pinnedIterations is the fixed CPUSpin workload every condition runs, so
// the only thing that varies across conditions is CPU affinity.
const pinnedIterations = 20_000_000

// Pinned compares an unpinned run against runs pinned to each available
// CPU, isolating the effect of affinity alone on an otherwise identical
// CPU-bound kernel (spec §4.2, §4.7).
func Pinned() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "pinned",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			online, err := sched.OnlineCPUs()
			if err != nil {
				return nil, errors.Wrap(err, "enumerate online cpus")
			}
			conditions := []Condition{{Label: "unpinned"}}
			for _, cpu := range online.ToSlice() {
				conditions = append(conditions, Condition{Label: fmt.Sprintf("pinned_cpu%d", cpu)})
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			if cond.Label != "unpinned" {
				var cpu int
				if _, err := fmt.Sscanf(cond.Label, "pinned_cpu%d", &cpu); err != nil {
					return nil, errors.Wrapf(err, "parse condition label %q", cond.Label)
				}
				sched.LockOSThread()
				defer sched.UnlockOSThread()
				if err := sched.PinToCPU(cpu); err != nil {
					return nil, errors.Wrap(ErrSkipCondition, err.Error())
				}
			}

			snap, err := measure(hw, func() {
				workload.CPUSpin(pinnedIterations)
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
