package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psantana5/linux-reality-check/internal/emit"
)

func TestRunWritesOneRecordPerIteration(t *testing.T) {
	dir := t.TempDir()
	def := Definition{
		Name:             "fake",
		Columns:          []string{"run", "condition_label", "value"},
		RunsPerCondition: 3,
		OutputDir:        dir,
		Conditions: func() ([]Condition, error) {
			return []Condition{{Label: "only"}}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			return []string{"x"}, nil
		},
	}

	require.NoError(t, Run(def, emit.OverwritePolicyAlways))

	data, err := os.ReadFile(filepath.Join(dir, "fake.csv"))
	require.NoError(t, err)
	require.Equal(t, "run,condition_label,value\n0,only,x\n1,only,x\n2,only,x\n", string(data))
}

func TestRunGlobalRunIndexDoesNotResetAcrossConditions(t *testing.T) {
	dir := t.TempDir()
	def := Definition{
		Name:             "fake",
		Columns:          []string{"run", "condition_label"},
		RunsPerCondition: 2,
		GlobalRunIndex:   true,
		OutputDir:        dir,
		Conditions: func() ([]Condition, error) {
			return []Condition{{Label: "a"}, {Label: "b"}}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			return nil, nil
		},
	}
	require.NoError(t, Run(def, emit.OverwritePolicyAlways))

	data, err := os.ReadFile(filepath.Join(dir, "fake.csv"))
	require.NoError(t, err)
	require.Equal(t, "run,condition_label\n0,a\n1,a\n2,b\n3,b\n", string(data))
}

func TestRunSkipConditionMovesToNextCondition(t *testing.T) {
	dir := t.TempDir()
	seen := map[string]int{}
	def := Definition{
		Name:             "fake",
		Columns:          []string{"run", "condition_label"},
		RunsPerCondition: 5,
		OutputDir:        dir,
		Conditions: func() ([]Condition, error) {
			return []Condition{{Label: "bad"}, {Label: "good"}}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			seen[cond.Label]++
			if cond.Label == "bad" {
				return nil, ErrSkipCondition
			}
			return nil, nil
		},
	}
	require.NoError(t, Run(def, emit.OverwritePolicyAlways))
	require.Equal(t, 1, seen["bad"])
	require.Equal(t, 5, seen["good"])
}

func TestRunFatalErrorAbortsScenario(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	def := Definition{
		Name:             "fake",
		Columns:          []string{"run", "condition_label"},
		RunsPerCondition: 3,
		OutputDir:        dir,
		Conditions: func() ([]Condition, error) {
			return []Condition{{Label: "only"}}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			calls++
			if calls == 2 {
				return nil, os.ErrInvalid
			}
			return nil, nil
		},
	}
	require.Error(t, Run(def, emit.OverwritePolicyAlways))
	require.Equal(t, 2, calls)
}

func TestRunCallsCleanupEvenOnFailure(t *testing.T) {
	dir := t.TempDir()
	cleaned := false
	def := Definition{
		Name:             "fake",
		Columns:          []string{"run", "condition_label"},
		RunsPerCondition: 1,
		OutputDir:        dir,
		Cleanup: func() error {
			cleaned = true
			return nil
		},
		Conditions: func() ([]Condition, error) {
			return []Condition{{Label: "only"}}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			return nil, os.ErrInvalid
		},
	}
	require.Error(t, Run(def, emit.OverwritePolicyAlways))
	require.True(t, cleaned)
}

func TestRunFailsPreconditions(t *testing.T) {
	dir := t.TempDir()
	def := Definition{
		Name:             "fake",
		Columns:          []string{"run", "condition_label"},
		RunsPerCondition: 1,
		OutputDir:        dir,
		CheckPreconditions: func() (bool, string) {
			return false, "not available on this host"
		},
		Conditions: func() ([]Condition, error) {
			return []Condition{{Label: "only"}}, nil
		},
		RunIteration: func(cond Condition, runIndex int) ([]string, error) {
			return nil, nil
		},
	}
	require.Error(t, Run(def, emit.OverwritePolicyAlways))
}
