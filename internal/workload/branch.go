// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import (
	"math/rand"
	"sort"
)

// BranchMode selects one of the three branch-prediction test modes (spec
// §4.7).
type BranchMode int

const (
	// BranchSorted traverses a sorted array with a data-dependent branch;
	// the predictor learns the pattern quickly (high accuracy).
	BranchSorted BranchMode = iota
	// BranchRandom traverses a randomly ordered array with the same
	// branch; the predictor cannot learn it (low accuracy).
	BranchRandom
	// BranchBranchless replaces the conditional with bit-mask arithmetic,
	// eliminating the mispredictable branch entirely.
	BranchBranchless
)

// GenerateBranchInput produces n int32 values in [0, 256), seeded
// explicitly, either sorted or left in random order per mode.
func GenerateBranchInput(n int, mode BranchMode, seed int64) []int32 {
	r := rand.New(rand.NewSource(seed))
	data := make([]int32, n)
	for i := range data {
		data[i] = int32(r.Intn(256))
	}
	if mode == BranchSorted {
		sort.Slice(data, func(i, j int) bool { return data[i] < data[j] })
	}
	return data
}

// BranchSum computes a conditional sum over data: values at or above the
// threshold are added, others are skipped, via an actual branch.
func BranchSum(data []int32, threshold int32) int64 {
	var sum int64
	for _, v := range data {
		if v >= threshold {
			sum += int64(v)
		}
	}
	return sum
}

// BranchlessSum computes the same conditional sum using bit-mask
// arithmetic instead of a branch: the mask is all-ones when v >= threshold
// and all-zeros otherwise.
func BranchlessSum(data []int32, threshold int32) int64 {
	var sum int64
	for _, v := range data {
		diff := v - threshold
		mask := ^(diff >> 31) // all-ones if diff >= 0, else all-zeros
		sum += int64(v & mask)
	}
	return sum
}
