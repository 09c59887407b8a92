// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package pcapio

import (
	"encoding/binary"
	"os"
	"time"

	"github.com/pocc/pcapgraph/internal/pcaperr"
)

const (
	blockSectionHeader       = 0x0a0d0d0a
	blockInterfaceDescription = 0x00000001
	blockEnhancedPacket       = 0x00000006

	byteOrderMagic = 0x1a2b3c4d

	optionTSResol = 9
	optionEndOfOpt = 0
)

// interfaceInfo is everything an Enhanced Packet Block needs from the
// Interface Description Block it refers to.
type interfaceInfo struct {
	linkType LinkType
	// tsresolDiv is the number of ticks per second for this interface's
	// timestamps; pcapng defaults to 1e6 (microseconds) when the
	// if_tsresol option is absent.
	tsresolDiv int64
}

// ReadPcapng parses a pcapng file into an ordered slice of Frames plus
// the link type of its (first) interface. Only Section Header, Interface
// Description and Enhanced Packet blocks are understood; blocks of any
// other type are skipped, so frames they carry are not returned. This
// is the minimal fast path spec.md names .pcapng for, not a general
// pcapng decoder.
func ReadPcapng(path string) ([]Frame, LinkType, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, pcaperr.New(pcaperr.FilesystemError, err)
	}
	if len(b) < 12 {
		return nil, 0, pcaperr.At(pcaperr.TruncatedRecord, 0, errShortGlobalHeader)
	}

	var order binary.ByteOrder = binary.LittleEndian
	var frames []Frame
	var ifaces []interfaceInfo
	var linkType LinkType

	pos := 0
	for pos+8 <= len(b) {
		blockType := binary.LittleEndian.Uint32(b[pos : pos+4])
		if blockType == blockSectionHeader {
			magic := binary.LittleEndian.Uint32(b[pos+8 : pos+12])
			if magic == byteOrderMagic {
				order = binary.LittleEndian
			} else {
				order = binary.BigEndian
			}
		}
		blockType = order.Uint32(b[pos : pos+4])
		blockLen := order.Uint32(b[pos+4 : pos+8])
		if blockLen < 12 || pos+int(blockLen) > len(b) {
			return nil, 0, pcaperr.At(pcaperr.TruncatedRecord, int64(pos), errRecordOverrun)
		}
		body := b[pos+8 : pos+int(blockLen)-4]

		switch blockType {
		case blockInterfaceDescription:
			if len(body) < 8 {
				return nil, 0, pcaperr.At(pcaperr.TruncatedRecord, int64(pos), errShortRecordHeader)
			}
			lt := LinkType(order.Uint16(body[0:2]))
			div := int64(1_000_000)
			if opts := body[8:]; len(opts) > 0 {
				if d, ok := readTSResol(opts, order); ok {
					div = d
				}
			}
			ifaces = append(ifaces, interfaceInfo{linkType: lt, tsresolDiv: div})
			if linkType == 0 {
				linkType = lt
			}

		case blockEnhancedPacket:
			if len(body) < 20 {
				return nil, 0, pcaperr.At(pcaperr.TruncatedRecord, int64(pos), errShortRecordHeader)
			}
			ifaceID := order.Uint32(body[0:4])
			tsHigh := order.Uint32(body[4:8])
			tsLow := order.Uint32(body[8:12])
			capLen := order.Uint32(body[12:16])
			if uint64(20)+uint64(capLen) > uint64(len(body)) {
				return nil, 0, pcaperr.At(pcaperr.TruncatedRecord, int64(pos), errRecordOverrun)
			}
			data := make([]byte, capLen)
			copy(data, body[20:20+capLen])

			div := int64(1_000_000)
			if int(ifaceID) < len(ifaces) {
				div = ifaces[ifaceID].tsresolDiv
			}
			ts := pcapngTimestamp(tsHigh, tsLow, div)
			frames = append(frames, Frame{Data: data, Timestamp: ts})
		}

		pos += int(blockLen)
	}

	if linkType == 0 {
		linkType = LinkTypeEthernet
	}
	return frames, linkType, nil
}

// readTSResol scans an options TLV list for if_tsresol (option code 9)
// and converts its value to ticks-per-second. The high bit of the value
// selects base-2 instead of base-10.
func readTSResol(opts []byte, order binary.ByteOrder) (int64, bool) {
	pos := 0
	for pos+4 <= len(opts) {
		code := order.Uint16(opts[pos : pos+2])
		length := int(order.Uint16(opts[pos+2 : pos+4]))
		pos += 4
		if code == optionEndOfOpt {
			break
		}
		if pos+length > len(opts) {
			break
		}
		if code == optionTSResol && length >= 1 {
			v := opts[pos]
			if v&0x80 != 0 {
				return int64(1) << (v &^ 0x80), true
			}
			div := int64(1)
			for i := byte(0); i < v; i++ {
				div *= 10
			}
			return div, true
		}
		// options are padded to 4-byte boundaries
		pos += (length + 3) &^ 3
	}
	return 0, false
}

func pcapngTimestamp(high, low uint32, div int64) time.Time {
	ticks := (uint64(high) << 32) | uint64(low)
	seconds := int64(ticks) / div
	remainder := int64(ticks) % div
	nanos := remainder * (1_000_000_000 / div)
	return time.Unix(seconds, nanos).UTC()
}
