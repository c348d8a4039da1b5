// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"fmt"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

var bandwidthBufferSizes = []int{1 * 1024 * 1024, 16 * 1024 * 1024, 128 * 1024 * 1024}

// MemoryBandwidth measures sequential read, write, and copy throughput
// across a range of buffer sizes large enough to be bandwidth- rather than
// latency-bound (spec §4.7 "memory bandwidth").
func MemoryBandwidth() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "operation", "buffer_bytes"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)
	columns = append(columns, "throughput_mbs")

	return Definition{
		Name:             "memory_bandwidth",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			var conditions []Condition
			for _, op := range []string{"read", "write", "copy"} {
				for _, size := range bandwidthBufferSizes {
					conditions = append(conditions, Condition{
						Label:        fmt.Sprintf("%s_%d", op, size),
						ExtraColumns: []string{op, itoa(size)},
					})
				}
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			op, size := cond.ExtraColumns[0], mustAtoi(cond.ExtraColumns[1])
			src := make([]byte, size)
			workload.StreamWrite(src)
			dst := make([]byte, size)

			snap, err := measure(hw, func() {
				switch op {
				case "read":
					workload.StreamRead(src)
				case "write":
					workload.StreamWrite(dst)
				case "copy":
					workload.StreamCopy(dst, src)
				}
			})
			if err != nil {
				return nil, err
			}
			throughput, _ := metricsDerived("throughput_mbs", snap, map[string]interface{}{"bytes": float64(size)})

			fields := baseMetricFields(snap)
			fields = append(fields, hwFields(snap)...)
			fields = append(fields, formatRate3(throughput))
			return fields, nil
		},
	}
}
