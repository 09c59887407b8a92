// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package setalgebra

import (
	"fmt"

	"github.com/pocc/pcapgraph/internal/pcaperr"
)

// BoundedIntersection computes the plain intersection X, then for each
// input locates the contiguous slice Bᵢ bounded by the earliest and
// latest timestamps present in X (spec §4.4 "Bounded intersection").
func (e *Engine) BoundedIntersection(inputs []CaptureLike) ([]*DerivedCapture, error) {
	slices, _, err := e.boundedSlices(inputs)
	if err != nil {
		return nil, err
	}

	out := make([]*DerivedCapture, len(inputs))
	for i, sl := range slices {
		name := fmt.Sprintf("bounded_intersect-%s.pcap", inputs[i].DisplayName())
		out[i] = &DerivedCapture{Name: name, LinkType: e.emittedLinkType(inputs), Frames: toFrames(sl)}
	}
	return out, nil
}

// InverseBoundedIntersection emits, for each input, Bᵢ \ X — the
// bounded slice with the plain intersection's keys removed (spec §4.4
// "Inverse bounded intersection"). X and the Bᵢ themselves are
// discarded once the inverse outputs are built.
func (e *Engine) InverseBoundedIntersection(inputs []CaptureLike) ([]*DerivedCapture, error) {
	slices, x, err := e.boundedSlices(inputs)
	if err != nil {
		return nil, err
	}

	xKeys := make(map[string]bool, len(x))
	for _, kf := range x {
		xKeys[kf.key] = true
	}

	out := make([]*DerivedCapture, len(inputs))
	for i, sl := range slices {
		var frames []keyedFrame
		for _, kf := range sl {
			if !xKeys[kf.key] {
				frames = append(frames, kf)
			}
		}
		frames = dedupeByKey(frames)

		name := fmt.Sprintf("inv_bounded_intersect-%s.pcap", inputs[i].DisplayName())
		out[i] = &DerivedCapture{Name: name, LinkType: e.emittedLinkType(inputs), Frames: toFrames(frames)}
	}
	return out, nil
}

// boundedSlices computes the plain intersection X and, for each input,
// the contiguous capture-order slice between the forward occurrence of
// X's earliest-timestamp key and the reverse occurrence of its
// latest-timestamp key. It is the shared core of Bounded Intersection
// and its inverse.
func (e *Engine) boundedSlices(inputs []CaptureLike) ([][]keyedFrame, []keyedFrame, error) {
	if err := requireMinInputs(inputs); err != nil {
		return nil, nil, err
	}

	x, err := e.intersectKeyed(inputs)
	if err != nil {
		return nil, nil, err
	}
	if len(x) == 0 {
		return nil, nil, emptyIntersectionErr()
	}

	keyMin, keyMax := boundaryKeys(x)

	slices := make([][]keyedFrame, len(inputs))
	for i, in := range inputs {
		kfs, err := e.scan(in)
		if err != nil {
			return nil, nil, err
		}

		lo := forwardFind(kfs, keyMin)
		if lo < 0 {
			return nil, nil, boundaryNotFoundErr(in.DisplayName(), "start")
		}
		hi := reverseFind(kfs, keyMax)
		if hi < 0 {
			return nil, nil, boundaryNotFoundErr(in.DisplayName(), "end")
		}
		// Inputs are not guaranteed timestamp-sorted before output
		// assembly (spec §4.5 step 2 sorts on the way out, not before).
		// lo > hi here would mean the forward occurrence of t_min's key
		// falls after the reverse occurrence of t_max's key in capture
		// order — the slice could no longer be called Iᵢ[first..=last],
		// so this is a fault (spec §7), not a case to paper over.
		if lo > hi {
			return nil, nil, pcaperr.New(pcaperr.InternalInvariant, fmt.Errorf(
				"%s: forward boundary index %d follows reverse boundary index %d", in.DisplayName(), lo, hi))
		}
		slices[i] = kfs[lo : hi+1]
	}
	return slices, x, nil
}

// boundaryKeys returns the key of the earliest-timestamp frame and the
// key of the latest-timestamp frame in x. Ties are broken by keeping
// the first-seen frame, which matches x's capture-order-derived
// ordering (spec §4.4: "ties on timestamp are broken by the input
// ordering").
func boundaryKeys(x []keyedFrame) (min, max string) {
	minTS, maxTS := x[0].ts, x[0].ts
	min, max = x[0].key, x[0].key
	for _, kf := range x[1:] {
		if kf.ts.Before(minTS) {
			minTS, min = kf.ts, kf.key
		}
		if kf.ts.After(maxTS) {
			maxTS, max = kf.ts, kf.key
		}
	}
	return min, max
}

// forwardFind returns the index of the first frame whose key matches,
// scanning front to back, or -1.
func forwardFind(kfs []keyedFrame, key string) int {
	for i, kf := range kfs {
		if kf.key == key {
			return i
		}
	}
	return -1
}

// reverseFind returns the index of the first frame whose key matches,
// scanning back to front, or -1.
func reverseFind(kfs []keyedFrame, key string) int {
	for i := len(kfs) - 1; i >= 0; i-- {
		if kfs[i].key == key {
			return i
		}
	}
	return -1
}
