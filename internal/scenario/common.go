// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package scenario

import (
	"strconv"

	"github.com/psantana5/linux-reality-check/internal/emit"
	"github.com/psantana5/linux-reality-check/internal/hwcounters"
	"github.com/psantana5/linux-reality-check/internal/metrics"
)

// baseMetricColumns is the column set every scenario's schema carries
// (spec §3, §6): the raw before/after-derived snapshot fields common to
// every measured iteration, independent of hardware counters.
var baseMetricColumns = []string{
	"timestamp_ns", "runtime_ns",
	"voluntary_ctxt_switches", "nonvoluntary_ctxt_switches",
	"minor_page_faults", "major_page_faults",
	"start_cpu", "end_cpu",
}

// hwColumns is appended for scenarios that report hardware-counter deltas
// and their two ratio-derived columns.
var hwColumns = []string{
	"instructions", "cycles", "l1_dcache_misses", "llc_misses",
	"branches", "branch_misses", "ipc", "branch_miss_rate",
}

// baseMetricFields renders baseMetricColumns from a completed snapshot.
func baseMetricFields(s *metrics.Snapshot) []string {
	return []string{
		emit.FormatInt(s.TimestampNS),
		emit.FormatInt(s.RuntimeNS),
		emit.FormatInt(s.VoluntaryCtxtSwitches),
		emit.FormatInt(s.NonvoluntaryCtxtSwitches),
		emit.FormatInt(s.MinorPageFaults),
		emit.FormatInt(s.MajorPageFaults),
		emit.FormatSignedInt(s.StartCPU),
		emit.FormatSignedInt(s.EndCPU),
	}
}

// hwFields renders hwColumns from a completed snapshot's hardware-counter
// deltas.
func hwFields(s *metrics.Snapshot) []string {
	return []string{
		emit.FormatInt(s.HW.Instructions),
		emit.FormatInt(s.HW.Cycles),
		emit.FormatInt(s.HW.L1DCacheMisses),
		emit.FormatInt(s.HW.LLCMisses),
		emit.FormatInt(s.HW.Branches),
		emit.FormatInt(s.HW.BranchMisses),
		emit.FormatRate3(s.HW.IPC()),
		emit.FormatRate6(s.HW.BranchMissRate()),
	}
}

// itoa renders a plain decimal condition-parameter column (buffer sizes,
// thread counts, and similar values fixed at condition-enumeration time).
func itoa(v int) string {
	return strconv.Itoa(v)
}

// mustAtoi parses a condition-parameter column back into an int. Panics on
// malformed input, which would mean a scenario built its own
// ExtraColumns wrong — a programmer error, not a runtime condition.
func mustAtoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}
	return v
}

// metricsDerived evaluates one of the standard derived formulas against a
// completed snapshot plus scenario-supplied workload parameters (bytes,
// iterations, accesses, elements, flops).
func metricsDerived(name string, snap *metrics.Snapshot, extra map[string]interface{}) (float64, error) {
	vars := metrics.VarsFromSnapshot(snap)
	for k, v := range extra {
		vars[k] = v
	}
	return metrics.Evaluate(name, vars)
}

// formatRate3 renders a derived rate to 3 decimal places, matching the IPC
// column's formatting convention for every other 3-decimal derived value.
func formatRate3(v float64) string {
	return emit.FormatRate3(v)
}

// degradedField renders the spec §9 open-question-2 "Degraded" flag as a
// trailing schema column for scenarios whose context application can fall
// back to best-effort semantics (NUMA binding, huge pages).
func degradedField(degraded bool) string {
	return strconv.FormatBool(degraded)
}

// measure runs fn as the workload body of one begin/end bracket against an
// already-opened counter group (nil is fine: metrics.Begin and End skip
// the hardware counters for a nil group, and hwFields then reports zeros)
// and returns the completed snapshot.
func measure(hw *hwcounters.Group, fn func()) (*metrics.Snapshot, error) {
	snap, err := metrics.Begin(hw)
	if err != nil {
		return nil, err
	}
	fn()
	if err := metrics.End(snap, hw); err != nil {
		return nil, err
	}
	return snap, nil
}

// openHW opens the fixed hardware-counter panel once for a scenario's
// lifetime (perf_event_open is comparatively expensive; the state machine
// in spec §4.5 is designed to be opened once and reset/read every
// iteration via Start/Stop). A failed Init degrades to nil: the scenario
// still runs, hwFields simply reports zeros.
func openHW() *hwcounters.Group {
	hw := hwcounters.New()
	if err := hw.Init(); err != nil {
		return nil
	}
	return hw
}
