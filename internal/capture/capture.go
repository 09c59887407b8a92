// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package capture holds the in-memory representation of one parsed
// input file (component C3 of the core) and serves read-only accessors
// to the set-algebra engine.
package capture

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pocc/pcapgraph/internal/normalize"
	"github.com/pocc/pcapgraph/internal/pcapio"
	"github.com/sirupsen/logrus"
)

// minValidTimestamp is the spec §4.3 floor below which a capture's
// timestamps are considered nonsensical.
var minValidTimestamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Capture is a named collection of Frames parsed from one input file,
// in the order they were read. Capture is immutable once constructed:
// the set-algebra engine only ever reads from it.
type Capture struct {
	Name     string
	Path     string
	LinkType pcapio.LinkType
	Frames   []pcapio.Frame

	count    int
	earliest time.Time
	latest   time.Time
	hasFrame bool

	mx      sync.Mutex
	indexes map[normalize.Policy]*policyIndex
}

// policyIndex is the per-policy cache built by indexFor: the ordered
// Canonical Frame Key of every frame, and the same keys grouped by
// value for O(1) average lookup.
type policyIndex struct {
	keys  []string
	byKey map[string][]int
}

// Load parses path through pcapio (delegating format conversion as
// needed) and returns a Capture. A zero-frame file is not an error: it
// is surfaced to the caller as a warning and returned as an empty
// Capture (spec §4.3 "Failure semantics"). policy's IgnoreUTCOffset
// governs how pcap input (native or editcap-converted) resolves record
// timestamps.
func Load(ctx context.Context, scratchDir, path string, policy normalize.Policy, log logrus.FieldLogger) (*Capture, error) {
	opts := pcapio.OpenOptions{IgnoreUTCOffset: policy.IgnoreUTCOffset}
	frames, linkType, err := pcapio.LoadFile(ctx, scratchDir, path, opts)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		Name:     displayName(path),
		Path:     path,
		LinkType: linkType,
		Frames:   frames,
		indexes:  make(map[normalize.Policy]*policyIndex),
	}
	c.computeSummary()

	if c.count == 0 {
		log.WithField("path", path).Warn("capture: zero frames")
	}
	if c.hasFrame && c.earliest.Before(minValidTimestamp) {
		return nil, timestampOutOfRangeErr(path, c.earliest)
	}
	return c, nil
}

func displayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (c *Capture) computeSummary() {
	c.count = len(c.Frames)
	for i, f := range c.Frames {
		if i == 0 {
			c.earliest, c.latest = f.Timestamp, f.Timestamp
			c.hasFrame = true
			continue
		}
		if f.Timestamp.Before(c.earliest) {
			c.earliest = f.Timestamp
		}
		if f.Timestamp.After(c.latest) {
			c.latest = f.Timestamp
		}
	}
}

// Summary is the (count, earliest, latest) tuple of spec §4.3,
// undefined bounds reported as the zero time for an empty Capture.
type Summary struct {
	Count    int
	Earliest time.Time
	Latest   time.Time
}

// Summarize returns the precomputed (count, earliest, latest) tuple.
func (c *Capture) Summarize() Summary {
	return Summary{Count: c.count, Earliest: c.earliest, Latest: c.latest}
}

// Len reports the number of frames in the Capture.
func (c *Capture) Len() int {
	return c.count
}

// FrameList, LinkKind and DisplayName satisfy setalgebra.CaptureLike,
// the minimal view the engine needs of an input.
func (c *Capture) FrameList() []pcapio.Frame { return c.Frames }
func (c *Capture) LinkKind() pcapio.LinkType { return c.LinkType }
func (c *Capture) DisplayName() string       { return c.Name }

// IndexOf returns, under policy p, the list of frame indexes whose
// Canonical Frame Key equals key, building and caching the key->indexes
// map for p on first use (spec §4.3: "lazily built on first request and
// cached per policy").
func (c *Capture) IndexOf(p normalize.Policy, key string) ([]int, error) {
	idx, err := c.indexFor(p)
	if err != nil {
		return nil, err
	}
	return idx.byKey[key], nil
}

// Keys returns the Canonical Frame Key, as a string, of every frame in
// capture order, building and caching the per-policy index on first use
// (spec §4.3: "lazily built on first request and cached per policy").
// This is the method the set-algebra engine (C4) calls once per input
// per operation, so the cache indexFor builds here is the real lookup
// path behind every canonical-key comparison, not just IndexOf's.
func (c *Capture) Keys(p normalize.Policy) ([]string, error) {
	idx, err := c.indexFor(p)
	if err != nil {
		return nil, err
	}
	return idx.keys, nil
}

func (c *Capture) indexFor(p normalize.Policy) (*policyIndex, error) {
	c.mx.Lock()
	defer c.mx.Unlock()

	if idx, ok := c.indexes[p]; ok {
		return idx, nil
	}

	keys := make([]string, len(c.Frames))
	byKey := make(map[string][]int, len(c.Frames))
	for i, f := range c.Frames {
		k, err := p.CanonicalKey(f.Data, c.LinkType)
		if err != nil {
			return nil, err
		}
		keys[i] = string(k)
		byKey[keys[i]] = append(byKey[keys[i]], i)
	}

	idx := &policyIndex{keys: keys, byKey: byKey}
	c.indexes[p] = idx
	return idx, nil
}
