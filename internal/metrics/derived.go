// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package metrics

import (
	"github.com/casbin/govaluate"
	"github.com/pkg/errors"
)

// derivedFormula pairs a column name with a parsed expression, mirroring
// the "parse once, store, evaluate per record" pattern of the teacher's
// cmd/metrics/loader.go MetricDefinition.
type derivedFormula struct {
	Name       string
	Expression string
	compiled   *govaluate.EvaluableExpression
}

// standardFormulas is the fixed catalog of derived columns the emission
// layer may select from (spec §3, §6 column universe). Scenarios pick a
// subset by name; unmatched formulas are simply never evaluated.
var standardFormulas = mustCompile([]derivedFormula{
	{Name: "ipc", Expression: "cycles > 0 ? instructions / cycles : 0"},
	{Name: "branch_miss_rate", Expression: "branches > 0 ? branch_misses / branches : 0"},
	{Name: "ns_per_operation", Expression: "iterations > 0 ? runtime_ns / iterations : 0"},
	{Name: "ns_per_access", Expression: "accesses > 0 ? runtime_ns / accesses : 0"},
	{Name: "ns_per_element", Expression: "elements > 0 ? runtime_ns / elements : 0"},
	{Name: "throughput_mbs", Expression: "runtime_ns > 0 ? (bytes / 1048576.0) / (runtime_ns / 1000000000.0) : 0"},
	{Name: "throughput_gflops", Expression: "runtime_ns > 0 ? (flops / 1000000000.0) / (runtime_ns / 1000000000.0) : 0"},
	{Name: "bandwidth_gbs", Expression: "runtime_ns > 0 ? (bytes / 1073741824.0) / (runtime_ns / 1000000000.0) : 0"},
	{Name: "ops_per_second", Expression: "runtime_ns > 0 ? iterations / (runtime_ns / 1000000000.0) : 0"},
	{Name: "time_microseconds", Expression: "runtime_ns / 1000.0"},
})

func mustCompile(formulas []derivedFormula) map[string]*derivedFormula {
	out := make(map[string]*derivedFormula, len(formulas))
	for i := range formulas {
		f := &formulas[i]
		expr, err := govaluate.NewEvaluableExpression(f.Expression)
		if err != nil {
			panic(errors.Wrapf(err, "derived formula %q failed to compile", f.Name))
		}
		f.compiled = expr
		out[f.Name] = f
	}
	return out
}

// Evaluate computes a named derived column against a variable set built
// from the snapshot and scenario-supplied workload parameters (iterations,
// bytes, accesses, elements, flops). Returns 0 and a wrapped error if the
// formula name is unknown or evaluation fails; callers already treat 0 as
// the correct value for an undefined denominator, so an emission caller
// that ignores the error still gets a defensible default.
func Evaluate(name string, vars map[string]interface{}) (float64, error) {
	f, ok := standardFormulas[name]
	if !ok {
		return 0, errors.Errorf("unknown derived column %q", name)
	}
	result, err := f.compiled.Evaluate(vars)
	if err != nil {
		return 0, errors.Wrapf(err, "evaluating derived column %q", name)
	}
	switch v := result.(type) {
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, errors.Errorf("derived column %q produced non-numeric result %T", name, result)
	}
}

// VarsFromSnapshot builds the base variable set every derived formula can
// draw from; scenario-specific keys (iterations, bytes, accesses, elements,
// flops) are merged in by the caller before evaluation.
func VarsFromSnapshot(s *Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"runtime_ns":    float64(s.RuntimeNS),
		"instructions":  float64(s.HW.Instructions),
		"cycles":        float64(s.HW.Cycles),
		"branches":      float64(s.HW.Branches),
		"branch_misses": float64(s.HW.BranchMisses),
	}
}
