// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package metrics implements the metric-snapshot container, before/after
// differencing, and derived-column computation (spec §3, §4.6).
package metrics

import (
	"github.com/pkg/errors"

	"github.com/psantana5/linux-reality-check/internal/hwcounters"
	"github.com/psantana5/linux-reality-check/internal/kcounters"
	"github.com/psantana5/linux-reality-check/internal/sched"
	"github.com/psantana5/linux-reality-check/internal/timing"
)

// Snapshot is the per-iteration container described in spec §3. All fields
// are populated by Begin/End; nothing here is shared between threads —
// each iteration owns a stack-local Snapshot.
type Snapshot struct {
	TimestampNS uint64
	RuntimeNS   uint64

	VoluntaryCtxtSwitches    uint64
	NonvoluntaryCtxtSwitches uint64
	MinorPageFaults          uint64
	MajorPageFaults          uint64

	StartCPU int32
	EndCPU   int32

	HW         hwcounters.Deltas
	HWReported bool

	// Degraded marks a record whose context application (NUMA binding,
	// huge pages) fell back to best-effort semantics, per spec §9 open
	// question 2. Scenarios that cannot degrade leave this false always.
	Degraded bool

	startNS   uint64
	startKC   kcounters.Snapshot
	startedOK bool
}

// Begin captures the starting timestamp, kernel counters, and CPU index,
// then starts hw if it is non-nil. It allocates the returned Snapshot, and
// the two pseudo-file reads allocate their own buffers; all of this
// happens here, before the measured region, bracketing it rather than
// sitting inside it.
func Begin(hw *hwcounters.Group) (*Snapshot, error) {
	ns, err := timing.NowNS()
	if err != nil {
		return nil, errors.Wrap(err, "begin: clock read failed")
	}
	s := &Snapshot{
		TimestampNS: ns,
		StartCPU:    int32(sched.CurrentCPU()),
	}
	s.startNS = ns
	s.startKC = kcounters.Read()
	s.startedOK = true
	if hw != nil {
		hw.Start()
	}
	return s, nil
}

// End captures the ending timestamp and counters, replacing RuntimeNS and
// every counter field with the (end - start) delta, and sets EndCPU.
func End(s *Snapshot, hw *hwcounters.Group) error {
	if !s.startedOK {
		return errors.New("end called without a matching begin")
	}
	if hw != nil {
		hw.Stop()
		s.HW = hw.Read()
		s.HWReported = hw.Available
	}

	endNS, err := timing.NowNS()
	if err != nil {
		return errors.Wrap(err, "end: clock read failed")
	}
	endKC := kcounters.Read()

	s.RuntimeNS = endNS - s.startNS
	s.VoluntaryCtxtSwitches = subClamped(endKC.VoluntaryCtxtSwitches, s.startKC.VoluntaryCtxtSwitches)
	s.NonvoluntaryCtxtSwitches = subClamped(endKC.NonvoluntaryCtxtSwitches, s.startKC.NonvoluntaryCtxtSwitches)
	s.MinorPageFaults = subClamped(endKC.MinorPageFaults, s.startKC.MinorPageFaults)
	s.MajorPageFaults = subClamped(endKC.MajorPageFaults, s.startKC.MajorPageFaults)
	s.EndCPU = int32(sched.CurrentCPU())
	return nil
}

// subClamped guards against a counter appearing to go backwards (a reset
// pseudo-file read, or PID reuse racing a read) by clamping the delta at
// zero rather than wrapping to a huge unsigned value.
func subClamped(end, start uint64) uint64 {
	if end < start {
		return 0
	}
	return end - start
}
