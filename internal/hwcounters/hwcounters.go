// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package hwcounters implements the hardware-counter group state machine
// (spec §4.5): a fixed panel of six PMU events opened via perf_event_open,
// reset/enabled at iteration start, disabled/read at iteration end.
package hwcounters

import (
	"log/slog"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	perfTypeHardware = 0
	perfTypeHWCache  = 3

	perfCountHWInstructions = 1
	perfCountHWCPUCycles    = 0
	perfCountHWCacheMisses  = 3
	perfCountHWBranchInsns  = 4
	perfCountHWBranchMisses = 5

	perfCountHWCacheL1D        = 0
	perfCountHWCacheOpRead     = 0
	perfCountHWCacheResultMiss = 1

	ioctlReset   = 0x2403
	ioctlEnable  = 0x2400
	ioctlDisable = 0x2401
)

func cacheConfig(cache, op, result uint64) uint64 {
	return cache | (op << 8) | (result << 16)
}

// event is one panel slot: fixed identity plus the live state (fd, whether
// it opened) plus the last delta computed by Stop.
type event struct {
	name      string
	typ       uint32
	config    uint64
	fd        int
	live      bool
	delta     uint64
	mandatory bool
}

// state models the §4.5 state machine: Uninitialized -> Opened -> Counting
// -> Idle -> Closed. Counting/Idle are tracked implicitly by whether Start
// has been called since the last Stop.
type state int

const (
	stateUninitialized state = iota
	stateOpened
	stateClosed
)

// Group is a fixed panel of six hardware counters: instructions retired,
// CPU cycles, L1 data-cache read misses, last-level cache misses, branches
// retired, and branch mispredictions.
type Group struct {
	events    []*event
	st        state
	Available bool // false if the two mandatory events failed to open
}

// New constructs an unopened Group. Call Init before Start/Stop.
func New() *Group {
	return &Group{
		events: []*event{
			{name: "instructions", typ: perfTypeHardware, config: perfCountHWInstructions, mandatory: true},
			{name: "cycles", typ: perfTypeHardware, config: perfCountHWCPUCycles, mandatory: true},
			{name: "l1_dcache_misses", typ: perfTypeHWCache, config: cacheConfig(perfCountHWCacheL1D, perfCountHWCacheOpRead, perfCountHWCacheResultMiss)},
			{name: "llc_misses", typ: perfTypeHardware, config: perfCountHWCacheMisses},
			{name: "branches", typ: perfTypeHardware, config: perfCountHWBranchInsns},
			{name: "branch_misses", typ: perfTypeHardware, config: perfCountHWBranchMisses},
		},
	}
}

// Init opens every event attached to the calling process on any CPU,
// hypervisor-excluded, kernel-included, initially disabled. If either
// mandatory event (instructions, cycles) fails to open, Available is false
// and every subsequent Start/Stop call becomes a no-op; other events
// failing individually degrades gracefully (that field reads 0 forever).
func (g *Group) Init() error {
	g.Available = true
	for _, e := range g.events {
		fd, err := openCounter(e.typ, e.config)
		if err != nil {
			if e.mandatory {
				slog.Warn("mandatory hardware counter unavailable", "event", e.name, "error", err)
				g.Available = false
			} else {
				slog.Warn("hardware counter unavailable, will read as 0", "event", e.name, "error", err)
			}
			e.live = false
			continue
		}
		e.fd = fd
		e.live = true
	}
	if !g.Available {
		g.Close()
		return errors.New("mandatory hardware counters unavailable")
	}
	g.st = stateOpened
	return nil
}

// perfEventAttr mirrors struct perf_event_attr from linux/perf_event.h,
// enough of it to open a counting (non-sampling) event. Field layout
// matches other_examples/LynnColeArt-guda's perf_counters_linux.go.
type perfEventAttr struct {
	Type               uint32
	Size               uint32
	Config             uint64
	SamplePeriod       uint64
	SampleType         uint64
	ReadFormat         uint64
	Flags              uint64
	WakeupEvents       uint32
	BpType             uint32
	ConfigOne          uint64
	ConfigTwo          uint64
	BranchSampleType   uint64
	SampleRegsUser     uint64
	SampleStackUser    uint32
	ClockID            int32
	SampleRegsIntr     uint64
	AuxWatermark       uint32
	SampleMaxStack     uint16
	_                  uint16
}

// Bit positions within perf_event_attr's packed flag bitfield: bit 0 is
// "disabled" (start inactive), bit 6 is "exclude_hv" (hypervisor-excluded).
// "exclude_kernel" (bit 5) is deliberately left unset: the spec calls for
// kernel-included counting.
const (
	attrFlagDisabled  = 1 << 0
	attrFlagExcludeHV = 1 << 6
)

func openCounter(typ uint32, config uint64) (int, error) {
	attr := perfEventAttr{
		Type:   typ,
		Size:   uint32(unsafe.Sizeof(perfEventAttr{})),
		Config: config,
		Flags:  attrFlagDisabled | attrFlagExcludeHV,
	}
	fd, _, errno := unix.Syscall6(
		unix.SYS_PERF_EVENT_OPEN,
		uintptr(unsafe.Pointer(&attr)),
		0,               // pid: calling process
		^uintptr(0),     // cpu: -1, any CPU
		^uintptr(0),     // group_fd: -1, not grouped
		0,
		0,
	)
	if errno != 0 {
		return -1, errno
	}
	return int(fd), nil
}

// Start resets each live event to zero then enables it. A no-op if the
// group is unavailable.
func (g *Group) Start() {
	if !g.Available {
		return
	}
	for _, e := range g.events {
		if !e.live {
			continue
		}
		_ = ioctl(e.fd, ioctlReset)
		_ = ioctl(e.fd, ioctlEnable)
	}
}

// Stop disables each live event and reads its value. A read returning less
// than 8 bytes reports that event as 0 for this iteration only (spec §3
// invariant), it does not disable the whole group.
func (g *Group) Stop() {
	if !g.Available {
		return
	}
	for _, e := range g.events {
		if !e.live {
			e.delta = 0
			continue
		}
		_ = ioctl(e.fd, ioctlDisable)
		var buf [8]byte
		n, err := unix.Read(e.fd, buf[:])
		if err != nil || n != 8 {
			e.delta = 0
			continue
		}
		e.delta = leUint64(buf[:])
	}
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func ioctl(fd int, request uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), request, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// Close closes every open descriptor. Safe to call multiple times.
func (g *Group) Close() {
	for _, e := range g.events {
		if e.live {
			unix.Close(e.fd)
			e.live = false
		}
	}
	g.st = stateClosed
}

// Deltas is the immutable snapshot of the six raw counter values captured
// by the most recent Stop call.
type Deltas struct {
	Instructions   uint64
	Cycles         uint64
	L1DCacheMisses uint64
	LLCMisses      uint64
	Branches       uint64
	BranchMisses   uint64
}

// Read returns the current deltas. Call after Stop.
func (g *Group) Read() Deltas {
	get := func(name string) uint64 {
		for _, e := range g.events {
			if e.name == name {
				return e.delta
			}
		}
		return 0
	}
	return Deltas{
		Instructions:   get("instructions"),
		Cycles:         get("cycles"),
		L1DCacheMisses: get("l1_dcache_misses"),
		LLCMisses:      get("llc_misses"),
		Branches:       get("branches"),
		BranchMisses:   get("branch_misses"),
	}
}

// IPC computes instructions-per-cycle, 0 when cycles is 0 (spec §3).
func (d Deltas) IPC() float64 {
	if d.Cycles == 0 {
		return 0
	}
	return float64(d.Instructions) / float64(d.Cycles)
}

// BranchMissRate computes branch_misses/branches, 0 when branches is 0.
func (d Deltas) BranchMissRate() float64 {
	if d.Branches == 0 {
		return 0
	}
	return float64(d.BranchMisses) / float64(d.Branches)
}
