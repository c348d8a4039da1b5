// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import (
	"encoding/binary"
	"math/rand"
)

// BuildChain builds a permutation-based pointer chain over count 8-byte
// slots of buf: each slot holds the index of its successor, forming a
// single cycle through all count slots (a Fisher-Yates shuffle of the
// identity permutation, matching original_source/core/memory_random.c's
// shuffle_indices before it is threaded into a chain).
//
// Explicit seeding (spec §4.7) makes the chain reproducible across runs
// for the same seed.
func BuildChain(buf []byte, seed int64) {
	count := len(buf) / 8
	if count == 0 {
		return
	}
	perm := make([]int, count)
	for i := range perm {
		perm[i] = i
	}
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(count, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

	for i := 0; i < count-1; i++ {
		binary.LittleEndian.PutUint64(buf[perm[i]*8:], uint64(perm[i+1]))
	}
	binary.LittleEndian.PutUint64(buf[perm[count-1]*8:], uint64(perm[0]))
}

// ChasePointers performs iterations dependent reads over a chain built by
// BuildChain: each load's address is derived from the prior load's value,
// so there is no instruction-level parallelism to hide latency behind.
// This measures true load-to-use latency (spec §4.7, glossary "pointer
// chase"). Returns the final index visited so the compiler cannot elide
// the loop.
func ChasePointers(buf []byte, iterations uint64) uint64 {
	var index uint64
	for i := uint64(0); i < iterations; i++ {
		index = binary.LittleEndian.Uint64(buf[index*8:])
	}
	return index
}

// GenerateIndices produces a slice of count random indices in [0, mod),
// seeded explicitly, matching memory_random_generate_indices.
func GenerateIndices(count int, mod int, seed int64) []uint64 {
	r := rand.New(rand.NewSource(seed))
	indices := make([]uint64, count)
	for i := range indices {
		indices[i] = uint64(r.Intn(mod))
	}
	return indices
}

// RandomRead sums buf's 8-byte words at the positions named by indices,
// with no dependency chain between accesses — it measures random-access
// bandwidth rather than latency, matching memory_random_read.
func RandomRead(buf []byte, indices []uint64) uint64 {
	count := uint64(len(buf) / 8)
	if count == 0 {
		return 0
	}
	var sum uint64
	for _, idx := range indices {
		off := (idx % count) * 8
		sum += binary.LittleEndian.Uint64(buf[off : off+8])
	}
	return sum
}
