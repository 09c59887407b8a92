// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package normalize computes Canonical Frame Keys from raw frame bytes
// under a declared policy (component C2 of the core): strip-l2,
// strip-l3, or identity.
package normalize

import (
	"github.com/pocc/pcapgraph/internal/pcaperr"
	"github.com/pocc/pcapgraph/internal/pcapio"
)

// Policy is the normalisation configuration active for one set-algebra
// run. The zero value is identity: neither flag set.
type Policy struct {
	StripL2 bool
	StripL3 bool

	// IgnoreUTCOffset opts out of adding the pcap global header's UTC
	// offset to record seconds on read, the inconsistent observed
	// behaviour flagged in spec §9. It does not affect canonical keys,
	// only how a Capture's frames are timestamped at parse time.
	IgnoreUTCOffset bool
}

// Identity is the policy under which a Canonical Frame Key equals the
// raw frame bytes.
var Identity = Policy{}

// Strips reports whether this policy removes the link-layer header,
// which forces the emitted link type to raw IP (101) per spec §3.
func (p Policy) Strips() bool {
	return p.StripL2 || p.StripL3
}

const (
	ethernetHeaderLen    = 14
	ethernetVLANHeaderLen = 18
)

var vlanTagBytes = [2]byte{0x81, 0x00}

// linkHeaderLen returns the length of the link-layer header to strip
// for a given link type, per spec §4.2.
func linkHeaderLen(frame []byte, linkType pcapio.LinkType) (int, error) {
	if linkType != pcapio.LinkTypeEthernet {
		return 0, pcaperr.New(pcaperr.UnsupportedLinkType, errUnsupportedLinkType(linkType))
	}
	if len(frame) >= 14 && frame[12] == vlanTagBytes[0] && frame[13] == vlanTagBytes[1] {
		return ethernetVLANHeaderLen, nil
	}
	return ethernetHeaderLen, nil
}

// CanonicalKey computes the Canonical Frame Key for frame under p. The
// returned byte slice is an owned copy safe to retain past frame's
// lifetime; frame itself is never mutated.
func (p Policy) CanonicalKey(frame []byte, linkType pcapio.LinkType) ([]byte, error) {
	if !p.StripL2 && !p.StripL3 {
		key := make([]byte, len(frame))
		copy(key, frame)
		return key, nil
	}

	hdrLen, err := linkHeaderLen(frame, linkType)
	if err != nil {
		return nil, err
	}
	if hdrLen > len(frame) {
		return nil, pcaperr.New(pcaperr.UnsupportedLinkType, errTruncatedLinkHeader)
	}
	payload := frame[hdrLen:]

	if !p.StripL3 {
		key := make([]byte, len(payload))
		copy(key, payload)
		return key, nil
	}

	return homogenizeL3(payload)
}

// homogenizeL3 rewrites the fields of an IPv4/IPv6 header that a Layer-3
// hop would mutate, per spec §4.2.
func homogenizeL3(l3 []byte) ([]byte, error) {
	if len(l3) == 0 {
		return nil, pcaperr.New(pcaperr.UnsupportedIpVersion, errEmptyL3)
	}
	version := l3[0] >> 4
	switch version {
	case 4:
		if len(l3) < 20 {
			return nil, pcaperr.New(pcaperr.UnsupportedIpVersion, errTruncatedIPv4)
		}
		out := make([]byte, len(l3))
		copy(out, l3)
		out[8] = 0xff             // TTL
		out[10], out[11] = 0x13, 0x37 // header checksum
		out[12], out[13], out[14], out[15] = 0x0a, 0x01, 0x01, 0x01 // src
		out[16], out[17], out[18], out[19] = 0x0a, 0x02, 0x02, 0x02 // dst
		return out, nil

	case 6:
		if len(l3) < 8 {
			return nil, pcaperr.New(pcaperr.UnsupportedIpVersion, errTruncatedIPv6)
		}
		out := make([]byte, len(l3))
		copy(out, l3)
		out[7] = 0x2a // hop limit
		return out, nil

	default:
		return nil, pcaperr.New(pcaperr.UnsupportedIpVersion, errUnknownIPVersion(version))
	}
}
