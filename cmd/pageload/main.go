// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Pageload inspects the results of web page load tests.
//
// Usage:
//
//	pageload [-L level] [-C dir] ls [DIRECTORY]
//	pageload [-L level] [-C dir] rm TEST...
//	pageload [-L level] [-C dir] filter -f FILTER [options] TEST...
//	pageload list-filters
//
// Test results are stored below a base directory, one directory per
// named test, each holding one subdirectory per test run named by its
// start time. A TEST names a test result by a prefix of its
// signature, optionally followed by the runs to use:
//
//	3f2a9c        all runs
//	3f2a9c:2      run 2
//	3f2a9c:1,4-6  runs 1, 4, 5 and 6
//
// The filter command extracts metrics from the selected runs with a
// named filter (see list-filters) and prints them one run after the
// other. With -c, aggregate results are shown side by side; with
// -b mean or -b median, they are combined into one. Adding -d to
// either shows the difference between exactly two results or two
// combined groups.
//
// The base directory, log level and output format default to the
// environment variables PAGELOAD_DIR, PAGELOAD_LOGGING and
// PAGELOAD_OUTPUT.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var exit = os.Exit // replaced during testing

// config holds the defaults of the global flags.
type config struct {
	Dir     string `envconfig:"DIR" default:"."`
	Logging string `envconfig:"LOGGING" default:"info"`
	Output  string `envconfig:"OUTPUT" default:"text"`
}

// An app is one invocation of pageload.
type app struct {
	stdout, stderr io.Writer
	cfg            config
	log            *zap.Logger
}

func main() {
	if err := pageload(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		exit(1)
	}
}

// pageload runs the command line args, writing results to stdout and
// logs to stderr. Errors are logged before they are returned.
func pageload(stdout, stderr io.Writer, args []string) error {
	a := &app{stdout: stdout, stderr: stderr}
	if err := envconfig.Process("pageload", &a.cfg); err != nil {
		fmt.Fprintf(stderr, "pageload: %v\n", err)
		return err
	}
	a.log = newLogger(stderr, a.cfg.Logging)
	defer func() { a.log.Sync() }()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		a.log.Error(err.Error())
		return err
	}
	return nil
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pageload",
		Short:         "Inspect web page load test results",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.log = newLogger(a.stderr, a.cfg.Logging)
			a.log.Debug("command line", zap.String("command", cmd.Name()), zap.Strings("args", args))
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVarP(&a.cfg.Logging, "logging", "L", a.cfg.Logging, "log `level`: debug, info, warning, error or critical")
	root.PersistentFlags().StringVarP(&a.cfg.Dir, "dir", "C", a.cfg.Dir, "base `directory` of test results")

	root.AddCommand(a.lsCmd(), a.rmCmd(), a.filterCmd(), a.listFiltersCmd())
	return root
}

// newLogger returns a console logger writing to w at the named
// level. Unknown levels mean warning.
func newLogger(w io.Writer, level string) *zap.Logger {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info":
		lvl = zapcore.InfoLevel
	case "error":
		lvl = zapcore.ErrorLevel
	case "critical":
		lvl = zapcore.FatalLevel
	default:
		lvl = zapcore.WarnLevel
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core)
}
