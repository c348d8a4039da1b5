// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"fmt"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

var lockScalingThreadCounts = []int{1, 2, 4, 8}

const lockIterationsPerThread = 200_000

// LockScaling runs each lock kind (busy-wait, mutex, atomic) across a
// range of thread counts, exposing how contention cost grows with thread
// count differently for each synchronization primitive (spec §4.7 "lock
// contention scaling").
func LockScaling() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "lock_kind", "thread_count"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)
	columns = append(columns, "ns_per_operation")

	return Definition{
		Name:             "lock_scaling",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			var conditions []Condition
			for _, kind := range []workload.LockKind{workload.LockBusyWait, workload.LockMutex, workload.LockAtomic} {
				for _, tc := range lockScalingThreadCounts {
					conditions = append(conditions, Condition{
						Label:        fmt.Sprintf("%s_%dthreads", kind, tc),
						ExtraColumns: []string{kind.String(), itoa(tc)},
					})
				}
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			var kind workload.LockKind
			switch cond.ExtraColumns[0] {
			case "busy_wait":
				kind = workload.LockBusyWait
			case "mutex":
				kind = workload.LockMutex
			case "atomic":
				kind = workload.LockAtomic
			}
			threadCount := mustAtoi(cond.ExtraColumns[1])

			w, err := workload.NewLockWorkload(threadCount, lockIterationsPerThread, true)
			if err != nil {
				return nil, err
			}

			var runErr error
			snap, err := measure(hw, func() {
				runErr = w.Run(kind)
			})
			if err != nil {
				return nil, err
			}
			if runErr != nil {
				return nil, runErr
			}
			operations := threadCount * lockIterationsPerThread
			nsPerOp, _ := metricsDerived("ns_per_operation", snap, map[string]interface{}{"iterations": float64(operations)})

			fields := baseMetricFields(snap)
			fields = append(fields, hwFields(snap)...)
			fields = append(fields, formatRate3(nsPerOp))
			return fields, nil
		},
	}
}
