// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package numa discovers NUMA topology and performs node-bound or
// interleaved page allocation for the workload library (spec §4.3).
//
// Node count is cached for the process lifetime the way the original
// implementation caches it (core/numa_utils.c): a sentinel distinguishes
// "not yet queried" from "queried and unavailable" from a real count, and
// the cache is populated exactly once.
package numa

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// nodeSysfsRoot is a var, not a const, so tests can redirect it at a
// synthetic sysfs tree without touching the real machine's topology.
var nodeSysfsRoot = "/sys/devices/system/node"

const (
	maxNodes    = 256
	bitsPerWord = 64

	mpolDefault    = 0
	mpolBind       = 2
	mpolInterleave = 3

	mpolMFStrict = 1 << 0
	mpolMFMove   = 1 << 1
)

// sysMbind is the memory-policy binding syscall number on x86_64, the only
// architecture the module targets (spec Non-goals); other architectures
// number this syscall differently.
const sysMbind = 237

var (
	nodeCountOnce sync.Once
	nodeCountVal  int  // -1 == unavailable, >=1 == real count
	nodeCountErr  bool // true if discovery itself failed (treated as unavailable)
)

// NodeCount returns the number of NUMA nodes visible under
// /sys/devices/system/node, enumerating nodeN directories until the next
// index is missing. The result is cached for the process lifetime.
func NodeCount() int {
	nodeCountOnce.Do(func() {
		count := 0
		for i := 0; i < maxNodes; i++ {
			path := fmt.Sprintf("%s/node%d", nodeSysfsRoot, i)
			if _, err := os.Stat(path); err != nil {
				break
			}
			count++
		}
		if count == 0 {
			nodeCountVal = -1
			nodeCountErr = true
			return
		}
		nodeCountVal = count
	})
	return nodeCountVal
}

// resetCache clears the cached node count. Exposed only to tests: the spec
// requires the cache be bypassable for testing (§9 Design Notes).
func resetCache() {
	nodeCountOnce = sync.Once{}
	nodeCountVal = 0
	nodeCountErr = false
}

// Available reports whether the system has more than one NUMA node.
func Available() bool {
	return NodeCount() > 1
}

// NodeCPUs parses a node's cpulist file (comma-separated ranges "A-B" or
// singletons "A") into the full set of CPU indices. The original
// implementation's parser only read the first range; this one consumes the
// entire comma-separated list per the spec's §9 redesign note.
func NodeCPUs(node int) (mapset.Set[int], error) {
	path := fmt.Sprintf("%s/node%d/cpulist", nodeSysfsRoot, node)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	cpus := mapset.NewThreadUnsafeSet[int]()
	if !scanner.Scan() {
		return cpus, nil
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return cpus, nil
	}
	for _, field := range strings.Split(line, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(field, "-"); ok {
			start, err := strconv.Atoi(lo)
			if err != nil {
				return nil, errors.Wrapf(err, "parse cpulist range %q", field)
			}
			end, err := strconv.Atoi(hi)
			if err != nil {
				return nil, errors.Wrapf(err, "parse cpulist range %q", field)
			}
			for i := start; i <= end; i++ {
				cpus.Add(i)
			}
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(err, "parse cpulist entry %q", field)
		}
		cpus.Add(v)
	}
	return cpus, nil
}

// Region describes a block of memory returned by AllocOnNode or
// AllocInterleaved, remembering how it was obtained so Free can release it
// correctly.
type Region struct {
	ptr     unsafe.Pointer
	size    int
	mmapped bool
	fixed   []byte // when mmapped, the slice backing the region for unix.Munmap
	heap    []byte // when heap-allocated, kept alive by this reference
	Bound   bool   // true if the memory-policy bind actually succeeded
}

func pageAlign(size int) int {
	pageSize := os.Getpagesize()
	if size%pageSize == 0 {
		return size
	}
	return (size/pageSize + 1) * pageSize
}

func nodeMask(nodes ...int) []uintptr {
	words := (maxNodes + bitsPerWord - 1) / bitsPerWord
	mask := make([]uintptr, words)
	for _, n := range nodes {
		mask[n/bitsPerWord] |= 1 << uintptr(n%bitsPerWord)
	}
	return mask
}

func mbind(addr unsafe.Pointer, size int, mode int, mask []uintptr, flags int) error {
	maxNode := len(mask)*bitsPerWord + 1
	_, _, errno := unix.Syscall6(
		sysMbind,
		uintptr(addr),
		uintptr(size),
		uintptr(mode),
		uintptr(unsafe.Pointer(&mask[0])),
		uintptr(maxNode),
		uintptr(flags),
	)
	if errno != 0 {
		return errno
	}
	return nil
}

// AllocOnNode obtains page-aligned anonymous memory bound to node via
// mbind(MPOL_BIND). On single-node systems it transparently falls back to
// an ordinary heap allocation. If the bind syscall fails the memory is
// still returned unbound (Region.Bound == false) with a warning logged —
// non-fatal by design, scenarios still run on best effort.
func AllocOnNode(size int, node int) (*Region, error) {
	if NodeCount() < 2 {
		buf := make([]byte, size)
		return &Region{ptr: unsafe.Pointer(&buf[0]), size: size, heap: buf, Bound: false}, nil
	}
	if node < 0 || node >= NodeCount() {
		return nil, errors.Errorf("numa node %d out of range [0,%d)", node, NodeCount())
	}

	aligned := pageAlign(size)
	buf, err := unix.Mmap(-1, 0, aligned, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, errors.Wrap(err, "mmap")
	}

	region := &Region{ptr: unsafe.Pointer(&buf[0]), size: aligned, mmapped: true, fixed: buf}
	mask := nodeMask(node)
	if err := mbind(region.ptr, aligned, mpolBind, mask, mpolMFStrict|mpolMFMove); err != nil {
		slog.Warn("mbind(MPOL_BIND) failed, memory remains unbound", "node", node, "error", err)
		region.Bound = false
		return region, nil
	}
	region.Bound = true
	return region, nil
}

// AllocInterleaved allocates memory with pages round-robin distributed
// across every node via mbind(MPOL_INTERLEAVE). Falls back to a heap
// allocation on single-node systems.
func AllocInterleaved(size int) (*Region, error) {
	count := NodeCount()
	if count < 2 {
		buf := make([]byte, size)
		return &Region{ptr: unsafe.Pointer(&buf[0]), size: size, heap: buf, Bound: false}, nil
	}

	aligned := pageAlign(size)
	buf, err := unix.Mmap(-1, 0, aligned, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, errors.Wrap(err, "mmap")
	}

	region := &Region{ptr: unsafe.Pointer(&buf[0]), size: aligned, mmapped: true, fixed: buf}
	nodes := make([]int, count)
	for i := range nodes {
		nodes[i] = i
	}
	mask := nodeMask(nodes...)
	if err := mbind(region.ptr, aligned, mpolInterleave, mask, mpolMFMove); err != nil {
		slog.Warn("mbind(MPOL_INTERLEAVE) failed, memory remains unbound", "error", err)
		region.Bound = false
		return region, nil
	}
	region.Bound = true
	return region, nil
}

// Bytes exposes the region's backing memory for the workload to operate on.
func (r *Region) Bytes() []byte {
	if r.mmapped {
		return r.fixed
	}
	return r.heap
}

// Free releases the region using whichever mechanism allocated it: munmap
// for mmapped regions, or simply dropping the heap reference otherwise.
// A region must always be freed through this method, never a generic
// deallocator, because the allocation path is conditional (spec §4.3
// invariant).
func Free(r *Region) error {
	if r == nil {
		return nil
	}
	if r.mmapped {
		if err := unix.Munmap(r.fixed); err != nil {
			return errors.Wrap(err, "munmap")
		}
		r.fixed = nil
		return nil
	}
	r.heap = nil
	return nil
}
