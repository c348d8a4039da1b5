// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the optional YAML suite file that selects which
// scenarios to run and overrides their defaults, modeled on the teacher's
// internal/common/targets.go targets.yaml pattern but repurposed for
// scenario selection instead of remote target connection details.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ScenarioOverride adjusts one scenario's run count without touching its
// workload parameters, which stay in code (spec §4.7 scenarios are not
// meant to be reparametrized from the outside). The output directory and
// overwrite policy are set suite-wide on Suite, not per scenario.
type ScenarioOverride struct {
	Name             string `yaml:"name"`
	RunsPerCondition int    `yaml:"runs_per_condition,omitempty"`
}

// Suite is the top-level shape of a suite YAML file.
type Suite struct {
	// Scenarios lists the scenario names to run, in order. Empty means
	// "every registered scenario" (the command layer expands an empty
	// list to the full registry).
	Scenarios []string `yaml:"scenarios"`
	// OutputDir overrides the default "data" output directory for every
	// scenario in this suite.
	OutputDir string `yaml:"output_dir,omitempty"`
	// Overwrite selects "always", "never", or "default" (overwrite, with a
	// notice when stderr is a terminal). Empty defers to the --overwrite flag; when
	// that flag is left at its own "default" value, this field is used
	// as a fallback instead.
	Overwrite string `yaml:"overwrite,omitempty"`
	// Overrides adjusts individual scenarios' run counts.
	Overrides []ScenarioOverride `yaml:"overrides,omitempty"`
}

// Load reads and parses a suite file at path.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read suite file %s", path)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parse suite file %s", path)
	}
	for _, name := range s.Scenarios {
		if name == "" {
			return nil, errors.Errorf("suite file %s: empty scenario name", path)
		}
	}
	return &s, nil
}

// RunsPerConditionFor returns the override for name, or ok=false if the
// suite does not override it.
func (s *Suite) RunsPerConditionFor(name string) (int, bool) {
	for _, o := range s.Overrides {
		if o.Name == name && o.RunsPerCondition > 0 {
			return o.RunsPerCondition, true
		}
	}
	return 0, false
}
