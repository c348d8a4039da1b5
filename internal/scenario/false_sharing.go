// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"fmt"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

var falseSharingThreadCounts = []int{2, 4, 8}

const falseSharingIterations = 5_000_000

// FalseSharing runs the packed and cache-line-padded counter layouts
// across a range of thread counts, isolating the cost of false sharing
// from thread count alone (spec §4.7 "false sharing").
func FalseSharing() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "layout", "thread_count"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "false_sharing",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			var conditions []Condition
			for _, layout := range []string{"packed", "padded"} {
				for _, tc := range falseSharingThreadCounts {
					conditions = append(conditions, Condition{
						Label:        fmt.Sprintf("%s_%dthreads", layout, tc),
						ExtraColumns: []string{layout, itoa(tc)},
					})
				}
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			layout := workload.LayoutPacked
			if cond.ExtraColumns[0] == "padded" {
				layout = workload.LayoutPadded
			}
			threadCount := mustAtoi(cond.ExtraColumns[1])

			snap, err := measure(hw, func() {
				workload.RunFalseSharing(threadCount, falseSharingIterations, layout)
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
