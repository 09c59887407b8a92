// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package normalize

import (
	"fmt"

	"github.com/pocc/pcapgraph/internal/pcapio"
)

var (
	errTruncatedLinkHeader = fmt.Errorf("frame shorter than its declared link-layer header")
	errEmptyL3             = fmt.Errorf("empty layer-3 payload")
	errTruncatedIPv4       = fmt.Errorf("frame too short for an IPv4 header")
	errTruncatedIPv6       = fmt.Errorf("frame too short for an IPv6 header")
)

func errUnsupportedLinkType(lt pcapio.LinkType) error {
	return fmt.Errorf("strip-l2 requested on unsupported link type %d", lt)
}

func errUnknownIPVersion(version byte) error {
	return fmt.Errorf("unsupported IP version nibble %d", version)
}
