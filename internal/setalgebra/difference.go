// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package setalgebra

import "fmt"

// Difference computes K1 \ (K2 ∪ … ∪ Kn); inputs[0] is the minuend,
// fixed by argument order (spec §4.4 "Difference").
func (e *Engine) Difference(inputs []CaptureLike) (*DerivedCapture, error) {
	if err := requireMinInputs(inputs); err != nil {
		return nil, err
	}

	minuend, err := e.scan(inputs[0])
	if err != nil {
		return nil, err
	}

	subtrahend := make(map[string]bool)
	for _, in := range inputs[1:] {
		kfs, err := e.scan(in)
		if err != nil {
			return nil, err
		}
		for _, kf := range kfs {
			subtrahend[kf.key] = true
		}
	}

	var frames []keyedFrame
	for _, kf := range minuend {
		if !subtrahend[kf.key] {
			frames = append(frames, kf)
		}
	}
	frames = dedupeByKey(frames)

	name := fmt.Sprintf("diff_%s.pcap", inputs[0].DisplayName())
	d := &DerivedCapture{Name: name, LinkType: e.emittedLinkType(inputs), Frames: toFrames(frames)}
	return d, nil
}
