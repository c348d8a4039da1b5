// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"fmt"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

var rwlockThreadCounts = []int{2, 4, 8}
var rwlockWriterPercents = []int{5, 50, 95}

const rwlockIterations = 500_000

// RWLockScaling walks thread count and writer-fraction independently over
// a sync.RWMutex-protected counter, showing where read-mostly workloads
// stop scaling as writer pressure increases (spec §4.7 "reader-writer
// lock scaling").
func RWLockScaling() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "thread_count", "writer_percent"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "rwlock_scaling",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			var conditions []Condition
			for _, tc := range rwlockThreadCounts {
				for _, wp := range rwlockWriterPercents {
					conditions = append(conditions, Condition{
						Label:        fmt.Sprintf("%dthreads_%dpct_writers", tc, wp),
						ExtraColumns: []string{itoa(tc), itoa(wp)},
					})
				}
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			threadCount := mustAtoi(cond.ExtraColumns[0])
			writerPercent := mustAtoi(cond.ExtraColumns[1])

			snap, err := measure(hw, func() {
				workload.RunRWLock(threadCount, rwlockIterations, writerPercent, int64(runIndex))
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
