// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/psantana5/linux-reality-check/internal/sched"
	"github.com/psantana5/linux-reality-check/internal/workload"
)

var niceLevels = []int{-10, -5, 0, 5, 10, 19}

const niceIterations = 20_000_000

// NiceLevels runs the same CPU-bound kernel at a range of static
// scheduler priorities. Negative values commonly require CAP_SYS_NICE; a
// permission failure skips that condition rather than aborting the whole
// scenario (spec §4.2, §7 "Skipped condition").
func NiceLevels() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "nice_value"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "nice_levels",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			conditions := make([]Condition, len(niceLevels))
			for i, n := range niceLevels {
				conditions[i] = Condition{Label: fmt.Sprintf("nice_%d", n), ExtraColumns: []string{itoa(n)}}
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			n := mustAtoi(cond.ExtraColumns[0])
			original, err := sched.GetNice()
			if err != nil {
				return nil, errors.Wrap(err, "getnice")
			}
			if err := sched.SetNice(n); err != nil {
				return nil, errors.Wrap(ErrSkipCondition, err.Error())
			}
			defer sched.SetNice(original)

			snap, err := measure(hw, func() {
				workload.CPUSpin(niceIterations)
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
