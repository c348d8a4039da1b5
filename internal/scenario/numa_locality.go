// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"github.com/pkg/errors"

	"github.com/psantana5/linux-reality-check/internal/numa"
	"github.com/psantana5/linux-reality-check/internal/workload"
)

const numaBufferSize = 64 * 1024 * 1024

// NumaLocality compares local node-bound allocation, remote node-bound
// allocation, and interleaved allocation for the same sequential-stream
// workload. On single-node systems only the local condition is
// enumerated; it falls back to an ordinary heap allocation and every
// record carries Degraded=true, per spec §9 open question 2 rather than
// aborting the scenario outright.
func NumaLocality() Definition {
	hw := openHW()
	columns := append([]string{"run", "condition_label", "policy"}, baseMetricColumns...)
	columns = append(columns, hwColumns...)
	columns = append(columns, "degraded")

	return Definition{
		Name:             "numa_locality",
		Columns:          columns,
		RunsPerCondition: 10,
		CheckPreconditions: func() (bool, string) {
			if !numa.Available() {
				return true, "single NUMA node visible; every condition will run degraded (heap fallback)"
			}
			return true, ""
		},
		Conditions: func() ([]Condition, error) {
			conditions := []Condition{{Label: "local", ExtraColumns: []string{"local"}}}
			if numa.NodeCount() > 1 {
				conditions = append(conditions,
					Condition{Label: "remote", ExtraColumns: []string{"remote"}},
					Condition{Label: "interleaved", ExtraColumns: []string{"interleaved"}},
				)
			}
			return conditions, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			var region *numa.Region
			var err error
			switch cond.ExtraColumns[0] {
			case "local":
				region, err = numa.AllocOnNode(numaBufferSize, 0)
			case "remote":
				region, err = numa.AllocOnNode(numaBufferSize, numa.NodeCount()-1)
			case "interleaved":
				region, err = numa.AllocInterleaved(numaBufferSize)
			}
			if err != nil {
				return nil, errors.Wrap(ErrSkipCondition, err.Error())
			}
			defer numa.Free(region)
			buf := region.Bytes()
			workload.StreamWrite(buf)

			snap, err := measure(hw, func() {
				workload.StreamRead(buf)
			})
			if err != nil {
				return nil, err
			}
			degraded := !region.Bound
			fields := baseMetricFields(snap)
			fields = append(fields, hwFields(snap)...)
			fields = append(fields, degradedField(degraded))
			return fields, nil
		},
	}
}
