// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/psantana5/linux-reality-check/internal/config"
	"github.com/psantana5/linux-reality-check/internal/emit"
	"github.com/psantana5/linux-reality-check/internal/registry"
	"github.com/psantana5/linux-reality-check/internal/scenario"
)

const runCmdName = "run"

var runExamples = []string{
	fmt.Sprintf("  Run every scenario:               $ %s %s --all", appName, runCmdName),
	fmt.Sprintf("  Run one scenario:                 $ %s %s --scenario cache_hierarchy", appName, runCmdName),
	fmt.Sprintf("  Run several by name:              $ %s %s --scenario pinned,nice_levels", appName, runCmdName),
	fmt.Sprintf("  Run a curated suite from YAML:    $ %s %s --suite suite.yaml", appName, runCmdName),
}

var runCmd = &cobra.Command{
	Use:           runCmdName,
	Short:         "Run one or more scenarios and write their CSV records",
	Example:       strings.Join(runExamples, "\n"),
	RunE:          runRunCmd,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagAll       bool
	flagList      bool
	flagScenarios []string
	flagSuite     string
	flagOutputDir string
	flagOverwrite string
)

func init() {
	runCmd.Flags().BoolVar(&flagAll, "all", false, "run every registered scenario")
	runCmd.Flags().BoolVar(&flagList, "list", false, "list every registered scenario and exit")
	runCmd.Flags().StringSliceVar(&flagScenarios, "scenario", nil, "comma-separated scenario names to run")
	runCmd.Flags().StringVar(&flagSuite, "suite", "", "path to a YAML suite file selecting scenarios and overrides")
	runCmd.Flags().StringVar(&flagOutputDir, "output", "", "override the output directory (default \"data\")")
	runCmd.Flags().StringVar(&flagOverwrite, "overwrite", "default", `overwrite policy for existing output files: "default", "always", or "never"`)
	runCmd.MarkFlagsMutuallyExclusive("all", "scenario", "suite")
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	if flagDebug {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			slog.Debug("flag", "name", f.Name, "value", f.Value.String())
		})
	}

	if flagList {
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
		return nil
	}

	names, suite, err := resolveScenarioNames()
	if err != nil {
		return err
	}
	overwrite := flagOverwrite
	if overwrite == "default" && suite != nil && suite.Overwrite != "" {
		overwrite = suite.Overwrite
	}
	policy, err := parseOverwritePolicy(overwrite)
	if err != nil {
		return err
	}

	var failures []string
	for _, name := range names {
		def, err := registry.Build(name)
		if err != nil {
			return err
		}
		if flagOutputDir != "" {
			def.OutputDir = flagOutputDir
		} else if suite != nil && suite.OutputDir != "" {
			def.OutputDir = suite.OutputDir
		}
		if suite != nil {
			if runs, ok := suite.RunsPerConditionFor(name); ok {
				def.RunsPerCondition = runs
			}
		}

		slog.Info("running scenario", "name", name)
		if err := scenario.Run(def, policy); err != nil {
			slog.Error("scenario failed", "name", name, "error", err)
			failures = append(failures, name)
		}
	}
	if len(failures) > 0 {
		return errors.Errorf("%d scenario(s) failed: %s", len(failures), strings.Join(failures, ", "))
	}
	return nil
}

// resolveScenarioNames determines which scenarios to run from --all,
// --scenario, or --suite (mutually exclusive, enforced by cobra), and
// returns the suite (nil if none was given) so its overrides can still be
// applied per scenario.
func resolveScenarioNames() ([]string, *config.Suite, error) {
	switch {
	case flagSuite != "":
		suite, err := config.Load(flagSuite)
		if err != nil {
			return nil, nil, err
		}
		names := suite.Scenarios
		if len(names) == 0 {
			names = registry.Names()
		}
		return names, suite, nil
	case flagAll:
		return registry.Names(), nil, nil
	case len(flagScenarios) > 0:
		return flagScenarios, nil, nil
	default:
		return nil, nil, errors.New("specify one of --all, --scenario, or --suite (or --list to see scenario names)")
	}
}

func parseOverwritePolicy(s string) (emit.OverwritePolicy, error) {
	switch s {
	case "", "default":
		return emit.OverwritePolicyDefault, nil
	case "always":
		return emit.OverwritePolicyAlways, nil
	case "never":
		return emit.OverwritePolicyNever, nil
	default:
		return emit.OverwritePolicyDefault, errors.Errorf("invalid --overwrite value %q", s)
	}
}
