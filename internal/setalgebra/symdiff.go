// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package setalgebra

import "fmt"

// SymmetricDifference computes, for each i, Sᵢ = Kᵢ \ ⋃_{j≠i} Kⱼ — n
// applications of Difference with a rotating minuend (spec §4.4
// "Symmetric difference"). The result slice has one entry per input, in
// input order, and may contain empty Derived Captures; exclude-empty
// filtering happens downstream in the Output Assembler.
func (e *Engine) SymmetricDifference(inputs []CaptureLike) ([]*DerivedCapture, error) {
	if err := requireMinInputs(inputs); err != nil {
		return nil, err
	}

	keyed := make([][]keyedFrame, len(inputs))
	for i, in := range inputs {
		kfs, err := e.scan(in)
		if err != nil {
			return nil, err
		}
		keyed[i] = kfs
	}

	out := make([]*DerivedCapture, len(inputs))
	for i := range inputs {
		others := make(map[string]bool)
		for j, kfs := range keyed {
			if j == i {
				continue
			}
			for _, kf := range kfs {
				others[kf.key] = true
			}
		}

		var frames []keyedFrame
		for _, kf := range keyed[i] {
			if !others[kf.key] {
				frames = append(frames, kf)
			}
		}
		frames = dedupeByKey(frames)

		name := fmt.Sprintf("symdiff_%s.pcap", inputs[i].DisplayName())
		out[i] = &DerivedCapture{Name: name, LinkType: e.emittedLinkType(inputs), Frames: toFrames(frames)}
	}
	return out, nil
}
