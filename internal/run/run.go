// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package run is the seam between an external CLI parser and the core:
// a Request in, a Result out. cmd/pcapgraph is its only caller.
package run

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pocc/pcapgraph/internal/capture"
	"github.com/pocc/pcapgraph/internal/normalize"
	"github.com/pocc/pcapgraph/internal/output"
	"github.com/pocc/pcapgraph/internal/pcapio"
	"github.com/pocc/pcapgraph/internal/setalgebra"
	"github.com/pocc/pcapgraph/internal/toolchain"
)

// Operation names one requested set-algebra operation.
type Operation int

const (
	Union Operation = iota
	Intersection
	Difference
	SymmetricDifference
	BoundedIntersection
	InverseBoundedIntersection
)

func (o Operation) String() string {
	switch o {
	case Union:
		return "union"
	case Intersection:
		return "intersection"
	case Difference:
		return "difference"
	case SymmetricDifference:
		return "symmetric_difference"
	case BoundedIntersection:
		return "bounded_intersection"
	case InverseBoundedIntersection:
		return "inverse_bounded_intersection"
	}
	return "unknown"
}

// Request is everything a CLI parser gathers before invoking the core
// (spec §6 "Contract with collaborators").
type Request struct {
	Inputs       []string
	Ops          []Operation
	Policy       normalize.Policy
	ExcludeEmpty bool

	// OutDir is where Derived Captures are written. Defaults to the
	// current directory when empty.
	OutDir string
	// ScratchDir is where non-native inputs are converted through
	// editcap. Defaults to OutDir/.pcapgraph-scratch when empty.
	ScratchDir string

	Log logrus.FieldLogger
}

// Result is what the core hands back to the CLI (spec §6).
type Result struct {
	Summaries []output.Summary
	Warnings  []string
}

// warnHook collects logrus Warn-level records into Result.Warnings
// without changing where they are also printed.
type warnHook struct{ out *[]string }

func (h *warnHook) Levels() []logrus.Level { return []logrus.Level{logrus.WarnLevel} }
func (h *warnHook) Fire(e *logrus.Entry) error {
	*h.out = append(*h.out, e.Message)
	return nil
}

// Run executes req end to end: toolchain detection, parsing every
// input, the requested set-algebra operations, and writing the Derived
// Captures through the Output Assembler.
func Run(ctx context.Context, req Request) (Result, error) {
	log := req.Log
	if log == nil {
		log = logrus.New()
	}

	var warnings []string
	if fl, ok := log.(*logrus.Logger); ok {
		fl.AddHook(&warnHook{out: &warnings})
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = "."
	}
	scratchDir := req.ScratchDir
	if scratchDir == "" {
		scratchDir = outDir + "/.pcapgraph-scratch"
	}

	if err := toolchain.Detect(log); err != nil {
		return Result{}, err
	}
	if err := pcapio.EnsureScratchDir(scratchDir); err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(scratchDir)

	caps := make([]*capture.Capture, len(req.Inputs))
	for i, path := range req.Inputs {
		c, err := capture.Load(ctx, scratchDir, path, req.Policy, log)
		if err != nil {
			return Result{}, err
		}
		caps[i] = c
	}

	inputs := setalgebra.FromCaptures(caps)
	engine := setalgebra.New(req.Policy, log)

	var derived []*setalgebra.DerivedCapture
	for _, op := range req.Ops {
		out, err := runOne(engine, op, inputs)
		if err != nil {
			return Result{}, err
		}
		derived = append(derived, out...)
	}

	outCaps := make([]output.Capture, len(derived))
	for i, d := range derived {
		outCaps[i] = d
	}

	asm := output.New(outDir, req.ExcludeEmpty, log)
	summaries, err := asm.Write(outCaps)
	if err != nil {
		return Result{}, err
	}

	return Result{Summaries: summaries, Warnings: warnings}, nil
}

func runOne(e *setalgebra.Engine, op Operation, inputs []setalgebra.CaptureLike) ([]*setalgebra.DerivedCapture, error) {
	switch op {
	case Union:
		d, _, err := e.Union(inputs)
		if err != nil {
			return nil, err
		}
		return []*setalgebra.DerivedCapture{d}, nil

	case Intersection:
		d, _, err := e.Intersection(inputs)
		if err != nil {
			return nil, err
		}
		return []*setalgebra.DerivedCapture{d}, nil

	case Difference:
		d, err := e.Difference(inputs)
		if err != nil {
			return nil, err
		}
		return []*setalgebra.DerivedCapture{d}, nil

	case SymmetricDifference:
		return e.SymmetricDifference(inputs)

	case BoundedIntersection:
		return e.BoundedIntersection(inputs)

	case InverseBoundedIntersection:
		return e.InverseBoundedIntersection(inputs)
	}
	return nil, nil
}
