// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageload/pageload/filter"
	"github.com/pageload/pageload/report"
	"github.com/pageload/pageload/result"
)

func (a *app) lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [DIRECTORY]",
		Short: "List the test results below a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := a.cfg.Dir
			if len(args) == 1 {
				base = args[0]
			}
			dirs, err := result.Discover(base)
			if err != nil {
				return err
			}
			for _, d := range dirs {
				fmt.Fprintln(a.stdout, d.Name())
				for _, r := range d.Results() {
					fmt.Fprintf(a.stdout, "  [%s] %s\n", r.ShortSignature(), r.Time().Format(report.TimeLayout))
				}
				fmt.Fprintln(a.stdout)
			}
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm TEST...",
		Short: "Remove test results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := result.Discover(a.cfg.Dir)
			if err != nil {
				return err
			}
			for _, arg := range args {
				sel, err := result.ParseSelector(arg)
				if err != nil {
					return err
				}
				d, r, err := result.Find(dirs, sel.Prefix)
				if errors.Is(err, result.ErrNotFound) {
					a.log.Warn("test result not found", zap.String("test", arg))
					continue
				} else if err != nil {
					return err
				}
				if err := d.Remove(r); err != nil {
					return err
				}
				if err := d.WriteManifest(); err != nil {
					return err
				}
				a.log.Debug("removed", zap.String("dir", r.Dir()))
				fmt.Fprintf(a.stdout, "%s Removed\n", r.Signature())
			}
			return nil
		},
	}
}

func (a *app) listFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-filters",
		Short: "List the available filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range filter.All() {
				fmt.Fprintf(a.stdout, "%s - (type: %s) %s\n", f.Name, f.Kind, f.Description)
			}
			return nil
		},
	}
}
