// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package scenario implements the per-experiment orchestration described
// in spec §4.8: condition matrix enumeration, per-run context application,
// snapshot/execute/snapshot bracketing, and record emission, plus the
// signal-driven interrupt handling of spec §5.
package scenario

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/pkg/errors"

	"github.com/psantana5/linux-reality-check/internal/emit"
)

// ErrSkipCondition signals that context application failed for the
// current condition (spec §7 "Skipped condition"): the driver warns once
// and moves to the next condition without writing any records for the
// remaining runs of this one.
var ErrSkipCondition = errors.New("scenario: skip remaining runs for this condition")

// Condition is one point in a scenario's condition matrix: a human-
// readable label plus its already-formatted extra column values, in the
// order the scenario's schema declares them.
type Condition struct {
	Label        string
	ExtraColumns []string
}

// IterationFunc runs exactly one measured iteration for the given
// condition and run index. It is responsible for applying execution
// context (pinning, allocation, seeding), the begin/workload/end bracket,
// and returning the already-formatted metric and derived columns in
// schema order — everything after run_index/condition_label/extra
// condition columns. Returning ErrSkipCondition (or a wrapped instance of
// it) tells the driver to abandon the remaining runs of this condition;
// any other error aborts the whole scenario (spec §7 "Fatal").
type IterationFunc func(cond Condition, runIndex int) ([]string, error)

// ConditionsFunc enumerates the full condition matrix. Returning an error
// aborts the scenario before any output file is created.
type ConditionsFunc func() ([]Condition, error)

// Definition is everything the driver needs to run one scenario end to
// end (spec §4.8 steps 1-5).
type Definition struct {
	// Name identifies the scenario and names its output file
	// (data/<Name>.csv).
	Name string
	// Columns is the full, schema-declared column list: run,
	// condition_label, the scenario's condition-specific columns, the
	// metric snapshot columns it reports, and any derived columns —
	// exactly as spec §6 describes.
	Columns []string
	// RunsPerCondition is how many measured iterations each condition
	// gets (typical 10; null-baseline uses ~100, spec §4.8 step 4).
	RunsPerCondition int
	// GlobalRunIndex, when true, numbers runs continuously across the
	// whole condition matrix instead of restarting at 0 for each
	// condition (spec §4.8 "the outer iteration index increments across
	// the whole condition matrix in some scenarios").
	GlobalRunIndex bool
	// CheckPreconditions validates scenario-wide requirements (e.g.
	// NUMA multi-node availability). A non-empty warning is logged; ok
	// false aborts the scenario before enumerating conditions.
	CheckPreconditions func() (ok bool, warning string)
	// Conditions enumerates the condition matrix.
	Conditions ConditionsFunc
	// RunIteration executes one measured iteration.
	RunIteration IterationFunc
	// OutputDir defaults to "data" (spec §6).
	OutputDir string
	// Cleanup releases scenario-wide resources acquired outside the
	// per-iteration loop (scratch directories, mmap'd regions). Runs once
	// after the loop exits, success or failure alike. Optional.
	Cleanup func() error
}

// Run executes a scenario end to end: precondition check, output file
// open, condition matrix enumeration, the per-condition/per-run loop, and
// clean interrupt handling that flushes partial output (spec §5, §7).
func Run(def Definition, policy emit.OverwritePolicy) error {
	if def.CheckPreconditions != nil {
		ok, warning := def.CheckPreconditions()
		if warning != "" {
			slog.Warn(warning, "scenario", def.Name)
		}
		if !ok {
			return errors.Errorf("scenario %s: preconditions not met", def.Name)
		}
	}

	conditions, err := def.Conditions()
	if err != nil {
		return errors.Wrapf(err, "scenario %s: enumerate conditions", def.Name)
	}

	outputDir := def.OutputDir
	if outputDir == "" {
		outputDir = "data"
	}
	path := filepath.Join(outputDir, fmt.Sprintf("%s.csv", def.Name))

	writer, err := emit.Open(path, def.Columns, policy)
	if err != nil {
		return errors.Wrapf(err, "scenario %s: open output", def.Name)
	}
	defer writer.Close()

	if def.Cleanup != nil {
		defer func() {
			if err := def.Cleanup(); err != nil {
				slog.Warn("scenario cleanup failed", "scenario", def.Name, "error", err)
			}
		}()
	}

	var interrupted atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			interrupted.Store(true)
		}
	}()

	globalRun := 0
	for _, cond := range conditions {
		if interrupted.Load() {
			break
		}
		for run := 0; run < def.RunsPerCondition; run++ {
			if interrupted.Load() {
				break
			}
			runIndex := run
			if def.GlobalRunIndex {
				runIndex = globalRun
			}
			fields, err := def.RunIteration(cond, runIndex)
			globalRun++
			if err != nil {
				if errors.Is(err, ErrSkipCondition) {
					slog.Warn("skipping remaining runs for condition", "scenario", def.Name, "condition", cond.Label, "error", err)
					break
				}
				return errors.Wrapf(err, "scenario %s: condition %s run %d", def.Name, cond.Label, run)
			}

			record := make([]string, 0, len(def.Columns))
			record = append(record, fmt.Sprintf("%d", runIndex), cond.Label)
			record = append(record, cond.ExtraColumns...)
			record = append(record, fields...)
			if err := writer.WriteRecord(record); err != nil {
				return errors.Wrapf(err, "scenario %s: write record", def.Name)
			}
		}
	}

	if interrupted.Load() {
		slog.Warn("scenario interrupted, flushing partial output", "scenario", def.Name)
		return writer.Flush()
	}
	return nil
}
