// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import (
	"encoding/binary"
	"math/rand"
)

// MixedWorkload interleaves memory access over a working-set-sized index
// list with a configurable number of compute ops per access, matching
// original_source/core/mixed_workload.c. Buffer and index generation is
// setup, performed once before the measured region.
type MixedWorkload struct {
	buffer       []byte
	indices      []uint64
	computeRatio int
}

// NewMixedWorkload allocates and initializes a buffer of bufferSize bytes
// and a working set of workingSet random indices into it, seeded
// explicitly for reproducibility.
func NewMixedWorkload(bufferSize, workingSet, computeRatio int, seed int64) *MixedWorkload {
	buf := make([]byte, bufferSize)
	count := bufferSize / 8
	for i := 0; i < count; i++ {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(i))
	}
	r := rand.New(rand.NewSource(seed))
	indices := make([]uint64, workingSet)
	for i := range indices {
		indices[i] = uint64(r.Intn(count))
	}
	return &MixedWorkload{buffer: buf, indices: indices, computeRatio: computeRatio}
}

// Run walks the working set once, performing computeRatio integer
// multiplications per memory access.
func (m *MixedWorkload) Run() uint64 {
	var acc uint64
	count := uint64(len(m.buffer) / 8)
	for _, idx := range m.indices {
		off := (idx % count) * 8
		acc += binary.LittleEndian.Uint64(m.buffer[off : off+8])
		for c := 0; c < m.computeRatio; c++ {
			acc = acc*2654435761 + 1
		}
	}
	return acc
}

// RunPhased grows the working set across phases (spec §4.7 "phased"
// variant): phase p touches indices[:len(indices)*(p+1)/phases].
func (m *MixedWorkload) RunPhased(phases int) uint64 {
	var acc uint64
	count := uint64(len(m.buffer) / 8)
	total := len(m.indices)
	for p := 0; p < phases; p++ {
		limit := total * (p + 1) / phases
		for _, idx := range m.indices[:limit] {
			off := (idx % count) * 8
			acc += binary.LittleEndian.Uint64(m.buffer[off : off+8])
			for c := 0; c < m.computeRatio; c++ {
				acc = acc*2654435761 + 1
			}
		}
	}
	return acc
}

// RunBursty alternates compute-heavy and memory-heavy windows every 1000
// iterations (spec §4.7 "bursty" variant).
func (m *MixedWorkload) RunBursty(iterations int) uint64 {
	var acc uint64
	count := uint64(len(m.buffer) / 8)
	n := len(m.indices)
	for i := 0; i < iterations; i++ {
		burstIsCompute := (i/1000)%2 == 0
		idx := m.indices[i%n]
		off := (idx % count) * 8
		acc += binary.LittleEndian.Uint64(m.buffer[off : off+8])
		ratio := m.computeRatio
		if burstIsCompute {
			ratio *= 8
		}
		for c := 0; c < ratio; c++ {
			acc = acc*2654435761 + 1
		}
	}
	return acc
}
