// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package timing provides the monotonic-raw nanosecond clock the rest of the
// measurement substrate brackets every iteration with.
package timing

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// NowNS reads CLOCK_MONOTONIC_RAW, a clock unaffected by NTP or adjtime
// slewing. unix.ClockGettime issues the clock_gettime system call
// directly; the vDSO fast path is not used, so every read pays a syscall
// trap.
//
// A read failure is fatal to the caller's scenario: there is no quieter
// fallback clock that would not also quietly corrupt runtime deltas.
func NowNS() (uint64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return 0, errors.Wrap(err, "clock_gettime(CLOCK_MONOTONIC_RAW)")
	}
	return uint64(ts.Sec)*1_000_000_000 + uint64(ts.Nsec), nil
}

// MustNowNS panics on clock failure. Used only in contexts (benchmark setup,
// tests) where a clock failure means the machine itself cannot run this
// suite at all.
func MustNowNS() uint64 {
	ns, err := NowNS()
	if err != nil {
		panic(err)
	}
	return ns
}
