// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import "encoding/binary"

// TLBTouch performs iterations word touches across buf, wrapping the
// offset modulo len(buf), stepping pageStride pages between touches — the
// same fixed-iteration-count, wraparound-offset scheme as
// original_source/scenarios/tlb_pressure.c's measure_tlb_pressure, which
// keeps the access count (and so the per-access cost) comparable across
// buffer sizes that don't evenly divide by the stride. pageSize is
// typically the OS page size (4096 on x86_64); pageStride selects every
// Nth page.
func TLBTouch(buf []byte, pageSize, pageStride int, iterations uint64) uint64 {
	if pageSize <= 0 {
		pageSize = 4096
	}
	if pageStride < 1 {
		pageStride = 1
	}
	size := len(buf)
	if size < 8 {
		return 0
	}
	step := pageSize * pageStride
	var sum uint64
	for i := uint64(0); i < iterations; i++ {
		off := int((i * uint64(step)) % uint64(size))
		off -= off % 8
		if off+8 > size {
			off = size - 8
		}
		sum += binary.LittleEndian.Uint64(buf[off : off+8])
	}
	return sum
}
