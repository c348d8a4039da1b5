// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package workload

import (
	"math/rand"
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// FileIOPattern selects one of the six file-I/O access patterns (spec
// §4.7).
type FileIOPattern int

const (
	FileIOSeqRead FileIOPattern = iota
	FileIOSeqWrite
	FileIORandomRead
	FileIODirectRead
	FileIOMmapSeqRead
	FileIOMmapRandomRead
)

// TestFile creates a file of size bytes in dir (the backing temporary
// directory named by spec §4.7), filled with deterministic content, and
// returns its path. The caller unlinks it after the measured region.
func TestFile(dir string, size int) (string, error) {
	f, err := os.CreateTemp(dir, "lrc-fileio-*")
	if err != nil {
		return "", errors.Wrap(err, "create test file")
	}
	defer f.Close()

	buf := make([]byte, 1<<20)
	for i := range buf {
		buf[i] = byte(i)
	}
	remaining := size
	for remaining > 0 {
		n := len(buf)
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(buf[:n]); err != nil {
			return "", errors.Wrap(err, "write test file")
		}
		remaining -= n
	}
	return f.Name(), nil
}

// SequentialRead reads path from start to end via ordinary buffered reads.
func SequentialRead(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer f.Close()
	return drain(f)
}

// SequentialWrite overwrites path sequentially with size bytes of
// deterministic content.
func SequentialWrite(path string, size int) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer f.Close()

	buf := make([]byte, 64*1024)
	remaining := size
	for remaining > 0 {
		n := len(buf)
		if remaining < n {
			n = remaining
		}
		if _, err := f.Write(buf[:n]); err != nil {
			return errors.Wrap(err, "write")
		}
		remaining -= n
	}
	return nil
}

// RandomSeekRead performs count reads of blockSize bytes at random offsets
// within a file of the given size, seeded explicitly.
func RandomSeekRead(path string, size, blockSize, count int, seed int64) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer f.Close()

	r := rand.New(rand.NewSource(seed))
	buf := make([]byte, blockSize)
	var sum uint64
	maxOffset := size - blockSize
	if maxOffset < 0 {
		maxOffset = 0
	}
	for i := 0; i < count; i++ {
		offset := int64(r.Intn(maxOffset + 1))
		n, err := f.ReadAt(buf, offset)
		if err != nil && n == 0 {
			return sum, errors.Wrap(err, "pread")
		}
		for _, b := range buf[:n] {
			sum += uint64(b)
		}
	}
	return sum, nil
}

// DirectRead opens path with O_DIRECT, bypassing the page cache, and reads
// it sequentially in blockSize-aligned chunks. O_DIRECT requires aligned
// buffers and offsets on most filesystems; the buffer is page-aligned via
// a slightly larger allocation.
func DirectRead(path string, blockSize int) (uint64, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECT, 0)
	if err != nil {
		return 0, errors.Wrap(err, "open O_DIRECT")
	}
	defer unix.Close(fd)

	pageSize := os.Getpagesize()
	raw := make([]byte, blockSize+pageSize)
	aligned := alignedSlice(raw, pageSize, blockSize)

	var sum uint64
	for {
		n, err := unix.Read(fd, aligned)
		if n <= 0 || err != nil {
			break
		}
		for _, b := range aligned[:n] {
			sum += uint64(b)
		}
	}
	return sum, nil
}

func alignedSlice(raw []byte, alignment, length int) []byte {
	addr := uintptr(0)
	if len(raw) > 0 {
		addr = uintptr(unsafe.Pointer(&raw[0]))
	}
	pad := (alignment - int(addr%uintptr(alignment))) % alignment
	end := pad + length
	if end > len(raw) {
		end = len(raw)
	}
	return raw[pad:end]
}

// MmapSequentialRead memory-maps path and walks it sequentially, summing
// bytes to prevent the mapping from being elided.
func MmapSequentialRead(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat")
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return 0, errors.Wrap(err, "mmap")
	}
	defer unix.Munmap(mem)

	var sum uint64
	for _, b := range mem {
		sum += uint64(b)
	}
	return sum, nil
}

// MmapRandomAccess memory-maps path and touches count random offsets.
func MmapRandomAccess(path string, count int, seed int64) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat")
	}
	size := int(info.Size())
	if size == 0 {
		return 0, nil
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return 0, errors.Wrap(err, "mmap")
	}
	defer unix.Munmap(mem)

	r := rand.New(rand.NewSource(seed))
	var sum uint64
	for i := 0; i < count; i++ {
		sum += uint64(mem[r.Intn(size)])
	}
	return sum, nil
}

func drain(f *os.File) (uint64, error) {
	buf := make([]byte, 64*1024)
	var sum uint64
	for {
		n, err := f.Read(buf)
		for _, b := range buf[:n] {
			sum += uint64(b)
		}
		if err != nil {
			break
		}
	}
	return sum, nil
}
