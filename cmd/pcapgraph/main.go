// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Command pcapgraph wires cobra/pflag flags into an internal/run.Request
// and prints the result as a text transcript.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pocc/pcapgraph/internal/normalize"
	"github.com/pocc/pcapgraph/internal/pcaperr"
	"github.com/pocc/pcapgraph/internal/run"
	"github.com/pocc/pcapgraph/internal/textsummary"
)

var opNames = map[string]run.Operation{
	"union":                         run.Union,
	"intersection":                  run.Intersection,
	"difference":                    run.Difference,
	"symmetric-difference":          run.SymmetricDifference,
	"bounded-intersection":          run.BoundedIntersection,
	"inverse-bounded-intersection":  run.InverseBoundedIntersection,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var pe *pcaperr.Error
		if errors.As(err, &pe) {
			os.Exit(pe.Kind.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		ops          []string
		stripL2      bool
		stripL3      bool
		excludeEmpty bool
		ignoreUTC    bool
		outDir       string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "pcapgraph [flags] capture...",
		Short: "Compute set-algebra operations over packet captures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			requested := make([]run.Operation, 0, len(ops))
			for _, name := range ops {
				op, ok := opNames[name]
				if !ok {
					return fmt.Errorf("unknown operation %q", name)
				}
				requested = append(requested, op)
			}
			if len(requested) == 0 {
				requested = []run.Operation{run.Union}
			}

			req := run.Request{
				Inputs: args,
				Ops:    requested,
				Policy: normalize.Policy{
					StripL2:         stripL2,
					StripL3:         stripL3,
					IgnoreUTCOffset: ignoreUTC,
				},
				ExcludeEmpty: excludeEmpty,
				OutDir:       outDir,
				Log:          log,
			}

			result, err := run.Run(context.Background(), req)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), textsummary.Render(result.Summaries))
			for _, w := range result.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ops, "op", nil,
		"operation(s) to run: union, intersection, difference, symmetric-difference, bounded-intersection, inverse-bounded-intersection")
	cmd.Flags().BoolVar(&stripL2, "strip-l2", false, "strip the link-layer header before computing canonical keys")
	cmd.Flags().BoolVar(&stripL3, "strip-l3", false, "homogenise mutable layer-3 fields before computing canonical keys")
	cmd.Flags().BoolVar(&excludeEmpty, "exclude-empty", false, "omit empty derived captures from the output")
	cmd.Flags().BoolVar(&ignoreUTC, "ignore-utc-offset", false, "do not add the global header's UTC offset to record seconds")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory derived captures are written to")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
