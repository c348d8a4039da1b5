// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package cmd provides the command line interface for the application.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const appName = "lrc"

var gVersion = "0.1.0" // overwritten by ldflags at release build time

var examples = []string{
	fmt.Sprintf("  Run every scenario against the local host:     $ %s run --all", appName),
	fmt.Sprintf("  Run one scenario:                              $ %s run --scenario pinned", appName),
	fmt.Sprintf("  Run a curated suite:                           $ %s run --suite suite.yaml", appName),
	fmt.Sprintf("  List every registered scenario:                $ %s run --list", appName),
}

var rootCmd = &cobra.Command{
	Use:     appName,
	Short:   appName,
	Long:    "lrc measures what the Linux kernel and scheduler actually cost, one narrowly scoped experiment at a time.",
	Example: strings.Join(examples, "\n"),
	Version: gVersion,
}

var flagDebug bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// Execute adds all child commands to the root command and runs it. It is
// called by main.main() exactly once.
func Execute() {
	cobra.EnableCommandSorting = false
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
