// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import "sync"

// paddedCounter occupies exactly one cache line so that N of them, laid
// out consecutively, never share a line — eliminating false sharing.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// FalseSharingLayout selects whether per-thread counters are packed
// adjacently (sharing cache lines) or cache-line-padded (spec §4.7).
type FalseSharingLayout int

const (
	LayoutPacked FalseSharingLayout = iota
	LayoutPadded
)

// RunFalseSharing runs threadCount goroutines, each incrementing its own
// counter iterations times. In LayoutPacked, all counters live in one
// contiguous []uint64 (adjacent, same cache line for nearby indices). In
// LayoutPadded, each counter is isolated in its own cache line.
func RunFalseSharing(threadCount int, iterations uint64, layout FalseSharingLayout) []uint64 {
	var wg sync.WaitGroup
	wg.Add(threadCount)

	results := make([]uint64, threadCount)

	switch layout {
	case LayoutPacked:
		packed := make([]uint64, threadCount)
		for t := 0; t < threadCount; t++ {
			t := t
			go func() {
				defer wg.Done()
				for i := uint64(0); i < iterations; i++ {
					packed[t]++
				}
			}()
		}
		wg.Wait()
		copy(results, packed)

	case LayoutPadded:
		padded := make([]paddedCounter, threadCount)
		for t := 0; t < threadCount; t++ {
			t := t
			go func() {
				defer wg.Done()
				for i := uint64(0); i < iterations; i++ {
					padded[t].value++
				}
			}()
		}
		wg.Wait()
		for i := range padded {
			results[i] = padded[i].value
		}
	}

	return results
}
