// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"github.com/psantana5/linux-reality-check/internal/workload"
)

// cacheHierarchySizes span from comfortably inside L1 to comfortably
// larger than any last-level cache on current hardware, so the runtime
// and miss-rate columns visibly step at each cache boundary.
var cacheHierarchySizes = []struct {
	label string
	bytes int
}{
	{"l1_16kb", 16 * 1024},
	{"l2_256kb", 256 * 1024},
	{"llc_8mb", 8 * 1024 * 1024},
	{"dram_64mb", 64 * 1024 * 1024},
}

// CacheHierarchy walks a sequential stream read over buffers sized to sit
// inside each cache level in turn, exposing the runtime and LLC-miss step
// function of the cache hierarchy (spec §4.7 "cache hierarchy").
func CacheHierarchy() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "buffer_bytes"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)

	return Definition{
		Name:             "cache_hierarchy",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			conditions := make([]Condition, len(cacheHierarchySizes))
			for i, s := range cacheHierarchySizes {
				conditions[i] = Condition{Label: s.label, ExtraColumns: []string{itoa(s.bytes)}}
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			var size int
			for _, s := range cacheHierarchySizes {
				if s.label == cond.Label {
					size = s.bytes
				}
			}
			buf := make([]byte, size)
			workload.StreamWrite(buf)

			snap, err := measure(hw, func() {
				workload.StreamRead(buf)
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
