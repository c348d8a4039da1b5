// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"fmt"

	"github.com/psantana5/linux-reality-check/internal/workload"
)

var latencyBandwidthSizes = []int{256 * 1024, 16 * 1024 * 1024, 128 * 1024 * 1024}

const chaseIterations = 2_000_000

// LatencyVsBandwidth contrasts a dependent pointer-chase (latency-bound,
// one outstanding load at a time) against an independent random-read
// (bandwidth-bound, many outstanding loads) over the same buffer sizes,
// making the difference between the two access patterns visible in
// ns_per_access (spec §4.7 "latency vs bandwidth").
func LatencyVsBandwidth() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "pattern", "buffer_bytes"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)
	columns = append(columns, "ns_per_access")

	return Definition{
		Name:             "latency_vs_bandwidth",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			var conditions []Condition
			for _, pattern := range []string{"chase", "random"} {
				for _, size := range latencyBandwidthSizes {
					conditions = append(conditions, Condition{
						Label:        fmt.Sprintf("%s_%d", pattern, size),
						ExtraColumns: []string{pattern, itoa(size)},
					})
				}
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			pattern, size := cond.ExtraColumns[0], mustAtoi(cond.ExtraColumns[1])
			buf := make([]byte, size)
			var accesses int

			var body func()
			switch pattern {
			case "chase":
				workload.BuildChain(buf, int64(runIndex))
				accesses = chaseIterations
				body = func() { workload.ChasePointers(buf, uint64(accesses)) }
			default:
				workload.StreamWrite(buf)
				indices := workload.GenerateIndices(chaseIterations, size/8, int64(runIndex))
				accesses = len(indices)
				body = func() { workload.RandomRead(buf, indices) }
			}

			snap, err := measure(hw, body)
			if err != nil {
				return nil, err
			}
			nsPerAccess, _ := metricsDerived("ns_per_access", snap, map[string]interface{}{"accesses": float64(accesses)})

			fields := baseMetricFields(snap)
			fields = append(fields, hwFields(snap)...)
			fields = append(fields, formatRate3(nsPerAccess))
			return fields, nil
		},
	}
}
