// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package emit implements the column-stable text record writer (spec
// §4.9, §6): a header line followed by one comma-separated line per
// record, unbuffered on scenario end, with a caller-configurable overwrite
// policy for an already-existing output path.
package emit

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// OverwritePolicy controls what happens when the output path already
// exists.
type OverwritePolicy int

const (
	// OverwritePolicyDefault overwrites an existing file; when stderr is a
	// terminal it first prints a notice saying so. No policy prompts for
	// confirmation.
	OverwritePolicyDefault OverwritePolicy = iota
	// OverwritePolicyAlways always overwrites without prompting. This is
	// the default for scenario-driven runs per spec §4.9.
	OverwritePolicyAlways
	// OverwritePolicyNever refuses to overwrite an existing file.
	OverwritePolicyNever
)

// Writer emits one CSV file per scenario, matching the exact column
// universe declared by that scenario's schema.
type Writer struct {
	f       *os.File
	w       *bufio.Writer
	columns []string
}

// Open creates (or overwrites, per policy) the file at path and writes the
// header line before any record. The caller must call Close when the
// scenario finishes, including on the interrupt path (spec §4.8 step 5,
// §5 "released ... by a scoped acquisition pattern").
func Open(path string, columns []string, policy OverwritePolicy) (*Writer, error) {
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory for %s", path)
	}

	if _, err := os.Stat(path); err == nil {
		if resolvePolicy(policy) == OverwritePolicyNever {
			return nil, errors.Errorf("output path %s already exists and overwrite policy forbids replacing it", path)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open output file %s", path)
	}
	w := &Writer{f: f, w: bufio.NewWriter(f), columns: columns}
	if _, err := w.w.WriteString(strings.Join(columns, ",") + "\n"); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "write header")
	}
	return w, nil
}

// dirOf returns the parent directory of path, or "." if path has none.
func dirOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "."
	}
	return path[:idx]
}

// resolvePolicy turns OverwritePolicyDefault into OverwritePolicyAlways,
// first printing a notice when stderr is attached to a terminal. Open
// calls it only when the output path already exists.
func resolvePolicy(p OverwritePolicy) OverwritePolicy {
	if p != OverwritePolicyDefault {
		return p
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintln(os.Stderr, "output file exists; overwriting (re-run with --overwrite never to refuse)")
	}
	return OverwritePolicyAlways
}

// WriteRecord appends one record, its fields ordered per the schema
// supplied to Open. The caller is responsible for having exactly
// len(columns) fields already formatted as strings; numeric formatting
// (fixed-point for derived rates, decimal integers otherwise) happens
// before this call.
func (w *Writer) WriteRecord(fields []string) error {
	if len(fields) != len(w.columns) {
		return errors.Errorf("record has %d fields, schema declares %d", len(fields), len(w.columns))
	}
	if _, err := w.w.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
		return errors.Wrap(err, "write record")
	}
	return nil
}

// Flush forces buffered records to disk without closing the file, used at
// interrupt boundaries so partially-written output survives a clean stop
// (spec §4.8 "Interrupt" failure semantics).
func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "flush")
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return errors.Wrap(w.f.Close(), "close")
}

// FormatInt renders a decimal integer column.
func FormatInt(v uint64) string {
	return fmt.Sprintf("%d", v)
}

// FormatSignedInt renders a decimal signed integer column (CPU indices,
// which use -1 as an "unavailable" sentinel).
func FormatSignedInt(v int32) string {
	return fmt.Sprintf("%d", v)
}

// FormatRate3 renders a derived rate to 3 decimal places (IPC, spec §6).
func FormatRate3(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// FormatRate6 renders a derived rate to 6 decimal places (branch-miss-rate
// and similar, spec §6).
func FormatRate6(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
