// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package workload holds the deterministic microbenchmark kernels of spec
// §4.7. Every kernel is a pure function of its parameters and buffers, has
// no internal timing code, and performs no allocation or I/O once its
// setup has completed — setup happens before the scenario driver calls
// Begin, cleanup happens after End.
package workload

// CPUSpin performs a fixed count of integer ALU operations (add, xor,
// multiply) with no memory traffic beyond a single accumulator, matching
// original_source/core/cpu_spin.c. The result is returned so the caller
// can consume it and prevent the compiler from proving the loop dead.
func CPUSpin(iterations uint64) uint64 {
	var result uint64
	for i := uint64(0); i < iterations; i++ {
		result += i
		result ^= i << 1
		result *= 3
	}
	return result
}

// CPUSpinPhased nests CPUSpin's loop body across a number of phases, used
// by scenarios that need a longer-running, still purely CPU-bound kernel
// (e.g. to study scheduler behavior over extended periods).
func CPUSpinPhased(iterations uint64, phases uint32) uint64 {
	var result uint64
	for phase := uint32(0); phase < phases; phase++ {
		for i := uint64(0); i < iterations; i++ {
			result += i
			result ^= i << 1
			result *= 3
		}
	}
	return result
}
