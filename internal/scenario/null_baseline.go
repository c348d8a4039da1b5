// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

// NullBaseline measures pure measurement overhead: the begin/end bracket
// wraps nothing but a single no-op, so every non-zero field it reports is
// the cost of the harness itself, not of any workload. Every other
// scenario's numbers are only meaningful relative to this one (spec §4.7
// "the harness must be able to measure itself").
func NullBaseline() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "null_baseline",
		Columns:          columns,
		RunsPerCondition: 100,
		GlobalRunIndex:   true,
		Conditions: func() ([]Condition, error) {
			return []Condition{{Label: "baseline"}}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			snap, err := measure(hw, func() {})
			if err != nil {
				return nil, err
			}
			fields := baseMetricFields(snap)
			fields = append(fields, hwFields(snap)...)
			return fields, nil
		},
	}
}
