// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package setalgebra

import "github.com/pocc/pcapgraph/internal/pcapio"

// excludedEthertypes are ambient broadcast protocols unconditionally
// dropped from Intersection (spec §4.4 "Intersection"): their frames
// repeat verbatim across captures and would otherwise swamp the result.
// Not applied to Union or Difference (spec §9 "Open questions").
var excludedEthertypes = map[uint16]bool{
	0x0806: true, // ARP
	0x8809: true, // LACP
	0x88cc: true, // LLDP
}

// ethertype reads an Ethernet frame's EtherType field, or reports false
// for any other link type or a too-short frame.
func ethertype(frame []byte, linkType pcapio.LinkType) (uint16, bool) {
	if linkType != pcapio.LinkTypeEthernet || len(frame) < 14 {
		return 0, false
	}
	return uint16(frame[12])<<8 | uint16(frame[13]), true
}

// PercentEntry is one row of Intersection's |X|/|Ii| report.
type PercentEntry struct {
	Name    string
	Percent int
}

// Intersection computes K1 ∩ K2 ∩ … ∩ Kn, excluding ARP/LACP/LLDP
// frames, and reports what fraction of each input survived into it
// (spec §4.4 "Intersection").
func (e *Engine) Intersection(inputs []CaptureLike) (*DerivedCapture, []PercentEntry, error) {
	if err := requireMinInputs(inputs); err != nil {
		return nil, nil, err
	}

	frames, err := e.intersectKeyed(inputs)
	if err != nil {
		return nil, nil, err
	}

	d := &DerivedCapture{Name: "intersect.pcap", LinkType: e.emittedLinkType(inputs), Frames: toFrames(frames)}

	report := make([]PercentEntry, len(inputs))
	for i, in := range inputs {
		pct := 0
		if n := len(in.FrameList()); n > 0 {
			pct = 100 * len(frames) / n
		}
		report[i] = PercentEntry{Name: in.DisplayName(), Percent: pct}
	}
	return d, report, nil
}

// intersectKeyed computes X = K1 ∩ … ∩ Kn with the ARP/LACP/LLDP
// exclusion applied, shared by Intersection and Bounded Intersection.
// Timestamps on the returned frames come from inputs[0] (spec §4.4
// "timestamps drawn from the first input that contains each surviving
// key").
func (e *Engine) intersectKeyed(inputs []CaptureLike) ([]keyedFrame, error) {
	keyed, err := e.scanAll(inputs)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(keyed[0]))
	for _, kfs := range keyed {
		seenInThis := make(map[string]bool, len(kfs))
		for _, kf := range kfs {
			if seenInThis[kf.key] {
				continue
			}
			seenInThis[kf.key] = true
			counts[kf.key]++
		}
	}

	rawFrames := inputs[0].FrameList()
	var frames []keyedFrame
	for i, kf := range keyed[0] {
		if counts[kf.key] != len(inputs) {
			continue
		}
		if et, ok := ethertype(rawFrames[i].Data, inputs[0].LinkKind()); ok && excludedEthertypes[et] {
			continue
		}
		frames = append(frames, kf)
	}
	return dedupeByKey(frames), nil
}

// scanAll scans every input, failing on the first normalisation error.
func (e *Engine) scanAll(inputs []CaptureLike) ([][]keyedFrame, error) {
	out := make([][]keyedFrame, len(inputs))
	for i, in := range inputs {
		kfs, err := e.scan(in)
		if err != nil {
			return nil, err
		}
		out[i] = kfs
	}
	return out, nil
}

// dedupeByKey keeps the first occurrence of each key, in order.
func dedupeByKey(kfs []keyedFrame) []keyedFrame {
	seen := make(map[string]bool, len(kfs))
	out := make([]keyedFrame, 0, len(kfs))
	for _, kf := range kfs {
		if seen[kf.key] {
			continue
		}
		seen[kf.key] = true
		out = append(out, kf)
	}
	return out
}
