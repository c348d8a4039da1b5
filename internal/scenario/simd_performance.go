// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"github.com/psantana5/linux-reality-check/internal/workload"
)

const simdElementCount = 8_000_000

// SIMDPerformance compares scalar, auto-vectorization-friendly, and
// manually-unrolled 4-/8-wide float32 add and dot-product kernels. This is
// the one scenario whose "vector width" columns are a documented
// approximation, not a literal SIMD instruction count — see
// internal/workload/simd.go and DESIGN.md (spec §4.7 "SIMD performance").
func SIMDPerformance() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "kernel"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)
	columns = append(columns, "ns_per_element")

	return Definition{
		Name:             "simd_performance",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			return []Condition{
				{Label: "scalar_add", ExtraColumns: []string{"scalar_add"}},
				{Label: "auto_vector_add", ExtraColumns: []string{"auto_vector_add"}},
				{Label: "vector_add_128", ExtraColumns: []string{"vector_add_128"}},
				{Label: "vector_add_256", ExtraColumns: []string{"vector_add_256"}},
				{Label: "scalar_dot", ExtraColumns: []string{"scalar_dot"}},
				{Label: "vector_dot", ExtraColumns: []string{"vector_dot"}},
			}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			a := make([]float32, simdElementCount)
			b := make([]float32, simdElementCount)
			for i := range a {
				a[i] = float32(i % 997)
				b[i] = float32((i * 3) % 997)
			}

			snap, err := measure(hw, func() {
				switch cond.ExtraColumns[0] {
				case "scalar_add":
					workload.ScalarAdd(a, b)
				case "auto_vector_add":
					workload.AutoVectorAdd(a, b)
				case "vector_add_128":
					workload.VectorAdd128(a, b)
				case "vector_add_256":
					workload.VectorAdd256(a, b)
				case "scalar_dot":
					workload.ScalarDotProduct(a, b)
				case "vector_dot":
					workload.VectorDotProduct(a, b)
				}
			})
			if err != nil {
				return nil, err
			}
			nsPerElement, _ := metricsDerived("ns_per_element", snap, map[string]interface{}{"elements": float64(simdElementCount)})

			fields := baseMetricFields(snap)
			fields = append(fields, hwFields(snap)...)
			fields = append(fields, formatRate3(nsPerElement))
			return fields, nil
		},
	}
}
