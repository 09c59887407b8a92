// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package setalgebra

import "sort"

// FrequencyEntry is one row of the union operation's side report: a
// Canonical Frame Key that occurred more than once across all inputs,
// and how many times.
type FrequencyEntry struct {
	Key   string
	Count int
}

// Union computes K1 ∪ K2 ∪ … ∪ Kn (spec §4.4 "Union"). The returned
// FrequencyEntry slice is a diagnostic side channel — the ten most
// common multi-occurrence keys — and does not affect the Derived
// Capture itself.
func (e *Engine) Union(inputs []CaptureLike) (*DerivedCapture, []FrequencyEntry, error) {
	if err := requireMinInputs(inputs); err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool)
	counts := make(map[string]int)
	var frames []keyedFrame

	for _, in := range inputs {
		kfs, err := e.scan(in)
		if err != nil {
			return nil, nil, err
		}
		for _, kf := range kfs {
			counts[kf.key]++
			if !seen[kf.key] {
				seen[kf.key] = true
				frames = append(frames, kf)
			}
		}
	}

	d := &DerivedCapture{Name: "union.pcap", LinkType: e.emittedLinkType(inputs), Frames: toFrames(frames)}

	report := topFrequent(counts, 10)
	return d, report, nil
}

// topFrequent returns the n keys with count > 1, highest first, ties
// broken by key for determinism (spec §8 "Determinism").
func topFrequent(counts map[string]int, n int) []FrequencyEntry {
	entries := make([]FrequencyEntry, 0, len(counts))
	for k, c := range counts {
		if c > 1 {
			entries = append(entries, FrequencyEntry{Key: k, Count: c})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
