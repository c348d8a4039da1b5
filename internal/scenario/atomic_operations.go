// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"fmt"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

const atomicIterations = 5_000_000

var atomicContendedThreadCounts = []int{2, 4, 8}

// AtomicOperations compares a plain (non-atomic) increment baseline
// against relaxed atomic adds, CAS retry loops, and multi-threaded
// contended atomic adds, exposing the incremental cost each stronger
// guarantee adds (spec §4.7 "atomic operations").
func AtomicOperations() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "op", "thread_count"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "atomic_operations",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			conditions := []Condition{
				{Label: "non_atomic", ExtraColumns: []string{"non_atomic", "1"}},
				{Label: "relaxed_add", ExtraColumns: []string{"relaxed_add", "1"}},
				{Label: "compare_and_swap", ExtraColumns: []string{"compare_and_swap", "1"}},
			}
			for _, tc := range atomicContendedThreadCounts {
				conditions = append(conditions, Condition{
					Label:        fmt.Sprintf("contended_add_%dthreads", tc),
					ExtraColumns: []string{"contended_add", itoa(tc)},
				})
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			op := cond.ExtraColumns[0]
			threadCount := mustAtoi(cond.ExtraColumns[1])
			var counter uint64

			snap, err := measure(hw, func() {
				switch op {
				case "non_atomic":
					workload.NonAtomicIncrement(&counter, atomicIterations)
				case "relaxed_add":
					workload.RelaxedAdd(&counter, atomicIterations)
				case "compare_and_swap":
					workload.CompareAndSwapLoop(&counter, atomicIterations)
				case "contended_add":
					workload.ContendedAdd(threadCount, atomicIterations)
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
