// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package setalgebra computes derived Captures from input Captures
// using Canonical Frame Keys (component C4 of the core): union,
// intersection, difference, symmetric difference, bounded intersection
// and its inverse.
package setalgebra

import (
	"io"
	"time"

	"github.com/pocc/pcapgraph/internal/capture"
	"github.com/pocc/pcapgraph/internal/normalize"
	"github.com/pocc/pcapgraph/internal/pcapio"
	"github.com/sirupsen/logrus"
)

// CaptureLike is the minimal view the engine needs of an input: a
// Capture parsed from disk, or a DerivedCapture produced by an earlier
// operation, so one operation's output can be passed as an input to
// another.
type CaptureLike interface {
	FrameList() []pcapio.Frame
	LinkKind() pcapio.LinkType
	DisplayName() string

	// Keys returns the Canonical Frame Key, as a string, of every frame
	// in capture order under p. A *capture.Capture answers this from its
	// per-policy cache (spec §4.3); a DerivedCapture, freshly computed
	// from one operation's output, has nothing worth caching and answers
	// it directly.
	Keys(p normalize.Policy) ([]string, error)
}

// FromCaptures adapts a slice of parsed Captures to CaptureLike.
func FromCaptures(cs []*capture.Capture) []CaptureLike {
	out := make([]CaptureLike, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

// DerivedCapture is a Capture produced by the engine: its frames are
// owned copies, never aliasing input storage (spec §3 "Invariants").
type DerivedCapture struct {
	Name     string
	LinkType pcapio.LinkType
	Frames   []pcapio.Frame
}

func (d *DerivedCapture) FrameList() []pcapio.Frame { return d.Frames }
func (d *DerivedCapture) LinkKind() pcapio.LinkType { return d.LinkType }
func (d *DerivedCapture) DisplayName() string       { return d.Name }

// Keys computes the Canonical Frame Key of every frame in capture order
// under p. Unlike capture.Capture, a DerivedCapture is the output of a
// single operation and is never re-keyed under the same policy twice,
// so there is nothing worth caching here.
func (d *DerivedCapture) Keys(p normalize.Policy) ([]string, error) {
	keys := make([]string, len(d.Frames))
	for i, f := range d.Frames {
		k, err := p.CanonicalKey(f.Data, d.LinkType)
		if err != nil {
			return nil, err
		}
		keys[i] = string(k)
	}
	return keys, nil
}

// Summarize mirrors capture.Capture's summary tuple for a DerivedCapture.
func (d *DerivedCapture) Summarize() capture.Summary {
	s := capture.Summary{Count: len(d.Frames)}
	for i, f := range d.Frames {
		if i == 0 {
			s.Earliest, s.Latest = f.Timestamp, f.Timestamp
			continue
		}
		if f.Timestamp.Before(s.Earliest) {
			s.Earliest = f.Timestamp
		}
		if f.Timestamp.After(s.Latest) {
			s.Latest = f.Timestamp
		}
	}
	return s
}

// Engine holds the normalisation policy active for a run's set-algebra
// operations. It is pure over its inputs and produces every Derived
// Capture an operation can legally produce, including empty ones —
// the exclude-empty policy flag is an Output Assembler (C5) concern,
// applied once when deciding what to write and report, not scattered
// across each operation.
type Engine struct {
	Policy normalize.Policy
	Log    logrus.FieldLogger
}

// New builds an Engine. A nil logger installs a discard logger.
func New(policy normalize.Policy, log logrus.FieldLogger) *Engine {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Engine{Policy: policy, Log: log}
}

// keyedFrame is one input frame paired with its Canonical Frame Key and
// the bytes that should be emitted if this frame survives into a
// Derived Capture.
type keyedFrame struct {
	key       string
	emitBytes []byte
	ts        time.Time
}

// scan computes the ordered list of keyed frames for one input under the
// engine's policy. It draws every Canonical Frame Key from in.Keys,
// which for a *capture.Capture is the per-policy cache of spec §4.3 —
// C4's lookups go through C3's cache rather than recomputing keys on
// every operation. emitBytes is the normalised bytes when the policy
// strips headers (so the result stays consistent with its declared raw
// link type) and the original frame bytes otherwise (spec §4.4).
func (e *Engine) scan(in CaptureLike) ([]keyedFrame, error) {
	keys, err := in.Keys(e.Policy)
	if err != nil {
		return nil, err
	}
	frames := in.FrameList()
	out := make([]keyedFrame, len(frames))
	for i, f := range frames {
		emit := f.Data
		if e.Policy.Strips() {
			emit = []byte(keys[i])
		}
		out[i] = keyedFrame{key: keys[i], emitBytes: emit, ts: f.Timestamp}
	}
	return out, nil
}

// emittedLinkType is the link type a Derived Capture carries: raw IP
// (101) when the policy strips headers, otherwise inherited from the
// first input (spec §3 "Derived Capture").
func (e *Engine) emittedLinkType(inputs []CaptureLike) pcapio.LinkType {
	if e.Policy.Strips() {
		return pcapio.LinkTypeRawIP
	}
	return inputs[0].LinkKind()
}

func requireMinInputs(inputs []CaptureLike) error {
	if len(inputs) < 2 {
		return insufficientInputsErr(len(inputs))
	}
	return nil
}

// toFrames converts keyed frames, in order, to the pcapio.Frame list a
// DerivedCapture stores, copying bytes so the result never aliases
// input storage.
func toFrames(kfs []keyedFrame) []pcapio.Frame {
	out := make([]pcapio.Frame, len(kfs))
	for i, kf := range kfs {
		data := make([]byte, len(kf.emitBytes))
		copy(data, kf.emitBytes)
		out[i] = pcapio.Frame{Data: data, Timestamp: kf.ts}
	}
	return out
}
