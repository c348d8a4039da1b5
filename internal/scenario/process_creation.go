// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"github.com/psantana5/linux-reality-check/internal/workload"
)

// ProcessCreation compares the four process-creation variants (spec
// §4.7): the runtime column here is the orchestrator's own wall-clock
// bracket around SpawnAndReap, which already includes the child's exit —
// there is no separate child-side snapshot to report (spec §9 open
// question 3).
func ProcessCreation() Definition {
	columns := append([]string{"run", "condition_label", "mode"}, baseMetricColumns...)

	return Definition{
		Name:             "process_creation",
		Columns:          columns,
		RunsPerCondition: 10,
		Conditions: func() ([]Condition, error) {
			return []Condition{
				{Label: "fork_exec", ExtraColumns: []string{"fork_exec"}},
				{Label: "vfork_like", ExtraColumns: []string{"vfork_like"}},
				{Label: "clone_like", ExtraColumns: []string{"clone_like"}},
				{Label: "posix_spawn_like", ExtraColumns: []string{"posix_spawn_like"}},
			}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			var mode workload.ProcessCreationMode
			switch cond.ExtraColumns[0] {
			case "vfork_like":
				mode = workload.ProcessVforkLike
			case "clone_like":
				mode = workload.ProcessCloneLike
			case "posix_spawn_like":
				mode = workload.ProcessPosixSpawnLike
			default:
				mode = workload.ProcessForkExec
			}

			var spawnErr error
			snap, err := measure(nil, func() {
				spawnErr = workload.SpawnAndReap(mode)
			})
			if err != nil {
				return nil, err
			}
			if spawnErr != nil {
				return nil, spawnErr
			}
			return baseMetricFields(snap), nil
		},
	}
}
