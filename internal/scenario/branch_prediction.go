// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"github.com/pkg/errors"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

const branchInputSize = 4_000_000
const branchThreshold = int32(128)

// BranchPrediction compares a data-dependent conditional sum over sorted
// data (predictor-friendly), the same sum over random data (predictor-
// hostile), and a branchless rewrite of the same computation, exposing
// misprediction cost directly through the branch_misses/branch_miss_rate
// columns (spec §4.7 "branch prediction").
func BranchPrediction() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "mode"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "branch_prediction",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			return []Condition{
				{Label: "sorted", ExtraColumns: []string{"sorted"}},
				{Label: "random", ExtraColumns: []string{"random"}},
				{Label: "branchless", ExtraColumns: []string{"branchless"}},
			}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			var mode workload.BranchMode
			switch cond.ExtraColumns[0] {
			case "sorted":
				mode = workload.BranchSorted
			case "random", "branchless":
				mode = workload.BranchRandom
			default:
				return nil, errors.Errorf("unknown branch mode %q", cond.ExtraColumns[0])
			}
			data := workload.GenerateBranchInput(branchInputSize, mode, int64(runIndex))

			snap, err := measure(hw, func() {
				if cond.ExtraColumns[0] == "branchless" {
					workload.BranchlessSum(data, branchThreshold)
				} else {
					workload.BranchSum(data, branchThreshold)
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
