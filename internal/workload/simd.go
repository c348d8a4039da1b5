// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

// SIMD lane widths modeled here are expressed as manually unrolled scalar
// loops rather than compiler intrinsics or assembly: Go's toolchain has no
// portable SIMD intrinsic surface in the standard library, so "128-bit" and
// "256-bit vector add" are approximated by chunk widths of 4 and 8 float32
// lanes respectively, relying on the compiler's own auto-vectorization
// where it applies. This is a documented deviation from the original
// hand-written SSE/AVX kernels (see DESIGN.md).

// ScalarAdd adds b into a element-wise, one lane at a time.
func ScalarAdd(a, b []float32) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		a[i] += b[i]
	}
}

// AutoVectorAdd is identical to ScalarAdd but written with an
// index-stepped loop shape that gives the compiler's auto-vectorizer the
// best chance of recognizing the pattern (no dependencies across
// iterations, no aliasing hazards assumed).
func AutoVectorAdd(a, b []float32) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		a[i] = a[i] + b[i]
	}
}

// VectorAdd128 processes 4 float32 lanes per iteration (the width of a
// 128-bit SSE register), handling a non-multiple-of-4 tail scalar.
func VectorAdd128(a, b []float32) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	lanes := n - n%4
	for i := 0; i < lanes; i += 4 {
		a[i] += b[i]
		a[i+1] += b[i+1]
		a[i+2] += b[i+2]
		a[i+3] += b[i+3]
	}
	for i := lanes; i < n; i++ {
		a[i] += b[i]
	}
}

// VectorAdd256 processes 8 float32 lanes per iteration (the width of a
// 256-bit AVX register), handling a non-multiple-of-8 tail scalar.
func VectorAdd256(a, b []float32) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	lanes := n - n%8
	for i := 0; i < lanes; i += 8 {
		for l := 0; l < 8; l++ {
			a[i+l] += b[i+l]
		}
	}
	for i := lanes; i < n; i++ {
		a[i] += b[i]
	}
}

// ScalarDotProduct computes the dot product of a and b one lane at a time.
func ScalarDotProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// VectorDotProduct computes the same dot product using 8-wide partial
// sums to reduce the serial dependency chain, mirroring how a vectorized
// reduction accumulates into multiple lanes before a final horizontal add.
func VectorDotProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var acc [8]float64
	lanes := n - n%8
	for i := 0; i < lanes; i += 8 {
		for l := 0; l < 8; l++ {
			acc[l] += float64(a[i+l]) * float64(b[i+l])
		}
	}
	var sum float64
	for _, v := range acc {
		sum += v
	}
	for i := lanes; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
