// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"github.com/psantana5/linux-reality-check/internal/workload"
)

const hugePageBufferSize = 128 * 1024 * 1024
const hugePageIterations = 10_000_000

// HugePages compares the same page-strided access pattern across
// ordinary, transparent-huge-page-advised, and explicitly hugetlb-backed
// buffers. explicit_huge degrades to ordinary pages and sets
// Degraded=true on systems with no pre-reserved hugetlb pool, rather than
// failing the scenario (spec §4.7, §9 open question 2).
func HugePages() Definition {
	columns := append([]string{"run", "condition_label", "page_type"}, baseMetricColumns...)
	columns = append(columns, "degraded")

	return Definition{
		Name:             "huge_pages",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			return []Condition{
				{Label: workload.PageOrdinary.String(), ExtraColumns: []string{workload.PageOrdinary.String()}},
				{Label: workload.PageTransparentHuge.String(), ExtraColumns: []string{workload.PageTransparentHuge.String()}},
				{Label: workload.PageExplicitHuge.String(), ExtraColumns: []string{workload.PageExplicitHuge.String()}},
			}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			var pt workload.PageType
			switch cond.ExtraColumns[0] {
			case workload.PageTransparentHuge.String():
				pt = workload.PageTransparentHuge
			case workload.PageExplicitHuge.String():
				pt = workload.PageExplicitHuge
			default:
				pt = workload.PageOrdinary
			}
			buf, err := workload.AllocHugePageBuffer(hugePageBufferSize, pt)
			if err != nil {
				return nil, err
			}
			defer buf.Free()

			snap, err := measure(nil, func() {
				workload.HugePageAccess(buf, 4096, 1, hugePageIterations)
			})
			if err != nil {
				return nil, err
			}
			fields := baseMetricFields(snap)
			fields = append(fields, degradedField(buf.Degraded))
			return fields, nil
		},
	}
}
