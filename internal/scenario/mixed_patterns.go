// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"github.com/psantana5/linux-reality-check/internal/workload"
)

const mixedBufferSize = 32 * 1024 * 1024
const mixedWorkingSet = 500_000
const mixedComputeRatio = 4
const mixedPhases = 4

// MixedPatterns runs the uniform, phased, and bursty variants of the
// combined memory-plus-compute kernel, approximating realistic
// application access patterns rather than a single isolated effect (spec
// §4.7 "realistic mixed patterns", supplemented from
// mixed_workload.c beyond the distilled spec's uniform-only case).
func MixedPatterns() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "pattern"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "mixed_patterns",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			return []Condition{
				{Label: "uniform", ExtraColumns: []string{"uniform"}},
				{Label: "phased", ExtraColumns: []string{"phased"}},
				{Label: "bursty", ExtraColumns: []string{"bursty"}},
			}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			m := workload.NewMixedWorkload(mixedBufferSize, mixedWorkingSet, mixedComputeRatio, int64(runIndex))

			snap, err := measure(hw, func() {
				switch cond.ExtraColumns[0] {
				case "phased":
					m.RunPhased(mixedPhases)
				case "bursty":
					m.RunBursty(mixedWorkingSet)
				default:
					m.Run()
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
