// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package pcapio

import (
	"encoding/binary"

	"github.com/pocc/pcapgraph/internal/pcaperr"
)

const (
	globalHeaderSize = 24
	recordHeaderSize = 16
)

const (
	magicMicrosecondsLE uint32 = 0xa1b2c3d4
	magicMicrosecondsBE uint32 = 0xd4c3b2a1
	magicNanosecondsLE  uint32 = 0xa1b23c4d
	magicNanosecondsBE  uint32 = 0x4d3cb2a1
)

// Resolution is the sub-second unit a capture's records are stored in.
type Resolution int

const (
	Microseconds Resolution = iota
	Nanoseconds
)

// LinkType is the libpcap link-layer type registry value for a capture.
type LinkType uint32

const (
	LinkTypeEthernet LinkType = 1
	LinkTypeRawIP    LinkType = 101
	LinkTypeIEEE80211 LinkType = 105
)

// globalHeader is the 24-byte header at the start of every libpcap file.
type globalHeader struct {
	Magic        uint32
	VersionMajor uint16
	VersionMinor uint16
	UTCOffset    int32
	TSAccuracy   uint32
	SnapLen      uint32
	LinkType     LinkType
}

// detectByteOrder inspects the magic number and reports the byte order and
// sub-second resolution it implies, per spec §4.1.
func detectByteOrder(magic uint32) (binary.ByteOrder, Resolution, bool) {
	switch magic {
	case magicMicrosecondsLE:
		return binary.LittleEndian, Microseconds, true
	case magicMicrosecondsBE:
		return binary.BigEndian, Microseconds, true
	case magicNanosecondsLE:
		return binary.LittleEndian, Nanoseconds, true
	case magicNanosecondsBE:
		return binary.BigEndian, Nanoseconds, true
	default:
		return nil, 0, false
	}
}

// parseGlobalHeader decodes the first 24 bytes of a libpcap file.
func parseGlobalHeader(b []byte) (*globalHeader, binary.ByteOrder, Resolution, error) {
	if len(b) < globalHeaderSize {
		return nil, nil, 0, pcaperr.At(pcaperr.TruncatedRecord, 0, errShortGlobalHeader)
	}
	magicRaw := binary.LittleEndian.Uint32(b[0:4])
	order, res, ok := detectByteOrder(magicRaw)
	if !ok {
		// try reading as big-endian in case the magic itself needs swapping
		magicRaw = binary.BigEndian.Uint32(b[0:4])
		order, res, ok = detectByteOrder(magicRaw)
		if !ok {
			return nil, nil, 0, pcaperr.At(pcaperr.BadMagic, 0, errBadMagic)
		}
	}
	h := &globalHeader{
		Magic:        magicRaw,
		VersionMajor: order.Uint16(b[4:6]),
		VersionMinor: order.Uint16(b[6:8]),
		UTCOffset:    int32(order.Uint32(b[8:12])),
		TSAccuracy:   order.Uint32(b[12:16]),
		SnapLen:      order.Uint32(b[16:20]),
		LinkType:     LinkType(order.Uint32(b[20:24])),
	}
	return h, order, res, nil
}

// marshalGlobalHeader emits the fixed global header spec §4.1 "Write" calls
// for: magic a1b2c3d4, version 2.4, UTC offset 0, accuracy 0, snaplen
// 0xffff, caller-chosen link type. Always little-endian (native on every
// platform pcapgraph targets) and always microsecond resolution, since
// microsecond is the magic the spec fixes for output.
func marshalGlobalHeader(linkType LinkType) []byte {
	b := make([]byte, globalHeaderSize)
	order := binary.LittleEndian
	order.PutUint32(b[0:4], magicMicrosecondsLE)
	order.PutUint16(b[4:6], 2)
	order.PutUint16(b[6:8], 4)
	order.PutUint32(b[8:12], 0)
	order.PutUint32(b[12:16], 0)
	order.PutUint32(b[16:20], 0xffff)
	order.PutUint32(b[20:24], uint32(linkType))
	return b
}

type recordHeader struct {
	Seconds uint32
	Sub     uint32
	CapLen  uint32
	OrigLen uint32
}

func parseRecordHeader(b []byte, order binary.ByteOrder) recordHeader {
	return recordHeader{
		Seconds: order.Uint32(b[0:4]),
		Sub:     order.Uint32(b[4:8]),
		CapLen:  order.Uint32(b[8:12]),
		OrigLen: order.Uint32(b[12:16]),
	}
}

func marshalRecordHeader(b []byte, h recordHeader) {
	order := binary.LittleEndian
	order.PutUint32(b[0:4], h.Seconds)
	order.PutUint32(b[4:8], h.Sub)
	order.PutUint32(b[8:12], h.CapLen)
	order.PutUint32(b[12:16], h.OrigLen)
}
