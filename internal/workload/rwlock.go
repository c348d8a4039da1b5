// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import (
	"math/rand"
	"sync"
)

// RunRWLock runs threadCount goroutines against a shared sync.RWMutex-
// protected counter. Each goroutine performs iterations operations; a
// per-operation coin flip (seeded explicitly) decides read-lock/read vs
// write-lock/mutate according to writerPercent (spec §4.7 "reader-writer
// lock scaling").
func RunRWLock(threadCount int, iterations uint64, writerPercent int, seed int64) uint64 {
	var mu sync.RWMutex
	var counter uint64

	var wg sync.WaitGroup
	wg.Add(threadCount)
	for t := 0; t < threadCount; t++ {
		t := t
		go func() {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed + int64(t)))
			var localRead uint64
			for i := uint64(0); i < iterations; i++ {
				if r.Intn(100) < writerPercent {
					mu.Lock()
					counter++
					mu.Unlock()
				} else {
					mu.RLock()
					localRead += counter
					mu.RUnlock()
				}
			}
		}()
	}
	wg.Wait()
	return counter
}
