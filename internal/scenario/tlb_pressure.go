// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"fmt"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

// tlbPressureBufferSizes span from comfortably inside typical TLB reach
// to well beyond it, matching original_source/scenarios/tlb_pressure.c's
// six working-set sizes (spec §8 end-to-end scenario #6).
var tlbPressureBufferSizes = []int{
	16 * 1024,
	64 * 1024,
	256 * 1024,
	1024 * 1024,
	4 * 1024 * 1024,
	16 * 1024 * 1024,
}

// tlbPressureStrides step from touching every page (heaviest TLB
// pressure) to touching every 16th page (lightest), matching
// original_source/scenarios/tlb_pressure.c's five stride values.
var tlbPressureStrides = []int{1, 2, 4, 8, 16}

const tlbPageSize = 4096
const tlbIterations = 1_000_000

// TLBPressure walks buffers of increasing size at increasing page
// strides, crossing working-set size against stride so the monotonicity
// of TLB-miss cost can be observed against both dimensions independently
// (spec §4.7, §8 end-to-end scenario #6 "TLB pressure").
func TLBPressure() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "buffer_bytes", "page_stride"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)
	columns = append(columns, "ns_per_access")

	return Definition{
		Name:             "tlb_pressure",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			var conditions []Condition
			for _, size := range tlbPressureBufferSizes {
				for _, stride := range tlbPressureStrides {
					conditions = append(conditions, Condition{
						Label:        fmt.Sprintf("%dKB_stride%d", size/1024, stride),
						ExtraColumns: []string{itoa(size), itoa(stride)},
					})
				}
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			size := mustAtoi(cond.ExtraColumns[0])
			stride := mustAtoi(cond.ExtraColumns[1])
			buf := make([]byte, size)
			workload.StreamWrite(buf)

			snap, err := measure(hw, func() {
				workload.TLBTouch(buf, tlbPageSize, stride, tlbIterations)
			})
			if err != nil {
				return nil, err
			}
			nsPerAccess, _ := metricsDerived("ns_per_access", snap, map[string]interface{}{"accesses": float64(tlbIterations)})

			fields := baseMetricFields(snap)
			fields = append(fields, hwFields(snap)...)
			fields = append(fields, formatRate3(nsPerAccess))
			return fields, nil
		},
	}
}
