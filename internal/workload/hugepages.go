// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import (
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// PageType selects how a huge-pages buffer is backed (spec §4.7).
type PageType int

const (
	PageOrdinary PageType = iota
	PageTransparentHuge
	PageExplicitHuge
)

func (p PageType) String() string {
	switch p {
	case PageOrdinary:
		return "ordinary"
	case PageTransparentHuge:
		return "transparent_huge"
	case PageExplicitHuge:
		return "explicit_huge"
	default:
		return "unknown"
	}
}

// HugePageBuffer is a mmap'd region allocated per the requested PageType.
// Degraded reports whether the requested page type could not be honored
// and the allocation fell back to ordinary pages (spec §9 open question
// 2: "records that look like their intended counterparts" get flagged).
type HugePageBuffer struct {
	Mem      []byte
	Degraded bool
}

// AllocHugePageBuffer allocates size bytes backed by the requested page
// type. Explicit huge pages (MAP_HUGETLB) fail on systems without
// pre-reserved hugetlb pages; that failure is non-fatal (spec §7
// "Degrading") and falls back to an ordinary anonymous mapping with
// Degraded set. Transparent huge pages are requested via MADV_HUGEPAGE,
// which is advisory: the kernel may or may not honor it, so Degraded is
// never set for that path (there's no synchronous failure to observe).
func AllocHugePageBuffer(size int, pt PageType) (*HugePageBuffer, error) {
	switch pt {
	case PageExplicitHuge:
		mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_HUGETLB)
		if err == nil {
			return &HugePageBuffer{Mem: mem}, nil
		}
		slog.Warn("explicit huge page allocation failed, falling back to ordinary pages", "error", err)
		mem, err = unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
		if err != nil {
			return nil, errors.Wrap(err, "mmap fallback after MAP_HUGETLB failure")
		}
		return &HugePageBuffer{Mem: mem, Degraded: true}, nil

	case PageTransparentHuge:
		mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
		if err != nil {
			return nil, errors.Wrap(err, "mmap")
		}
		if err := unix.Madvise(mem, unix.MADV_HUGEPAGE); err != nil {
			slog.Warn("MADV_HUGEPAGE advisory rejected", "error", err)
		}
		return &HugePageBuffer{Mem: mem}, nil

	default:
		mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
		if err != nil {
			return nil, errors.Wrap(err, "mmap")
		}
		return &HugePageBuffer{Mem: mem}, nil
	}
}

// Free unmaps the buffer.
func (b *HugePageBuffer) Free() error {
	return errors.Wrap(unix.Munmap(b.Mem), "munmap")
}

// HugePageAccess runs the fixed page-strided access pattern shared by all
// three page types, reusing TLBTouch.
func HugePageAccess(b *HugePageBuffer, pageSize, pageStride int, iterations uint64) uint64 {
	return TLBTouch(b.Mem, pageSize, pageStride, iterations)
}
