// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package pcapio

import "errors"

var (
	errShortGlobalHeader = errors.New("file shorter than the 24-byte global header")
	errShortRecordHeader = errors.New("truncated 16-byte record header")
	errBadMagic          = errors.New("unrecognized magic number")
	errRecordOverrun     = errors.New("captured length exceeds remaining file bytes")
)
