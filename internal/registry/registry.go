// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package registry is the integration glue between the command layer and
// the scenario library (spec §2): it names every scenario, builds its
// Definition on demand (so a scenario's setup cost — buffers, file
// handles, opened counter groups — is only paid for scenarios actually
// selected to run), and dispatches by name.
package registry

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/psantana5/linux-reality-check/internal/scenario"
)

// factory builds a fresh Definition for one scenario. Deferred
// construction keeps scenario setup (buffer allocation, perf_event_open,
// scratch directories) from happening for scenarios that were not
// selected for a given invocation.
type factory func() scenario.Definition

var factories = map[string]factory{
	"null_baseline":        scenario.NullBaseline,
	"pinned":               scenario.Pinned,
	"cache_hierarchy":      scenario.CacheHierarchy,
	"memory_bandwidth":     scenario.MemoryBandwidth,
	"latency_vs_bandwidth": scenario.LatencyVsBandwidth,
	"lock_scaling":         scenario.LockScaling,
	"false_sharing":        scenario.FalseSharing,
	"tlb_pressure":         scenario.TLBPressure,
	"numa_locality":        scenario.NumaLocality,
	"nice_levels":          scenario.NiceLevels,
	"branch_prediction":    scenario.BranchPrediction,
	"huge_pages":           scenario.HugePages,
	"process_creation":     scenario.ProcessCreation,
	"atomic_operations":    scenario.AtomicOperations,
	"rwlock_scaling":       scenario.RWLockScaling,
	"simd_performance":     scenario.SIMDPerformance,
	"file_io_patterns":     scenario.FileIOPatterns,
	"mixed_patterns":       scenario.MixedPatterns,
	"syscall_overhead":     scenario.SyscallOverhead,
}

// Names returns every registered scenario name, sorted, for CLI help text
// and "run all" expansion.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the named scenario's Definition. Returns an error for
// an unknown name rather than panicking, since the name typically comes
// from a command-line flag or config file.
func Build(name string) (scenario.Definition, error) {
	f, ok := factories[name]
	if !ok {
		return scenario.Definition{}, errors.Errorf("unknown scenario %q (known: %v)", name, Names())
	}
	return f(), nil
}
