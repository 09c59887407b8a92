// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package pcapio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPcapng assembles a minimal Section Header + Interface Description
// + one Enhanced Packet block, little-endian, microsecond resolution
// (no if_tsresol option, so ReadPcapng falls back to 1e6).
func buildPcapng(t *testing.T, payload []byte) []byte {
	t.Helper()
	var b []byte

	// Section Header Block: type, total_len, byte_order_magic, major,
	// minor, section_len(-1), total_len (again).
	shb := make([]byte, 28)
	binary.LittleEndian.PutUint32(shb[0:4], blockSectionHeader)
	binary.LittleEndian.PutUint32(shb[4:8], 28)
	binary.LittleEndian.PutUint32(shb[8:12], byteOrderMagic)
	binary.LittleEndian.PutUint16(shb[12:14], 1)
	binary.LittleEndian.PutUint16(shb[14:16], 0)
	binary.LittleEndian.PutUint64(shb[16:24], ^uint64(0))
	binary.LittleEndian.PutUint32(shb[24:28], 28)
	b = append(b, shb...)

	// Interface Description Block: type, total_len, linktype, reserved,
	// snaplen, total_len (again) — no options.
	idb := make([]byte, 20)
	binary.LittleEndian.PutUint32(idb[0:4], blockInterfaceDescription)
	binary.LittleEndian.PutUint32(idb[4:8], 20)
	binary.LittleEndian.PutUint16(idb[8:10], uint16(LinkTypeEthernet))
	binary.LittleEndian.PutUint16(idb[10:12], 0)
	binary.LittleEndian.PutUint32(idb[12:16], 0xffff)
	binary.LittleEndian.PutUint32(idb[16:20], 20)
	b = append(b, idb...)

	// Enhanced Packet Block: type, total_len, iface_id, ts_high, ts_low,
	// caplen, origlen, data (padded to 4), total_len (again).
	padded := len(payload)
	if rem := padded % 4; rem != 0 {
		padded += 4 - rem
	}
	epbLen := 32 + padded
	epb := make([]byte, epbLen)
	binary.LittleEndian.PutUint32(epb[0:4], blockEnhancedPacket)
	binary.LittleEndian.PutUint32(epb[4:8], uint32(epbLen))
	binary.LittleEndian.PutUint32(epb[8:12], 0)
	binary.LittleEndian.PutUint32(epb[12:16], 0)
	binary.LittleEndian.PutUint32(epb[16:20], 5_000_000)
	binary.LittleEndian.PutUint32(epb[20:24], uint32(len(payload)))
	binary.LittleEndian.PutUint32(epb[24:28], uint32(len(payload)))
	copy(epb[28:28+len(payload)], payload)
	binary.LittleEndian.PutUint32(epb[epbLen-4:epbLen], uint32(epbLen))
	b = append(b, epb...)

	return b
}

func TestReadPcapng(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.pcapng")
	require.NoError(t, os.WriteFile(path, buildPcapng(t, []byte("hello")), 0o644))

	frames, linkType, err := ReadPcapng(path)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	assert.Equal(t, LinkTypeEthernet, linkType)
	assert.Equal(t, []byte("hello"), frames[0].Data)
	assert.Equal(t, int64(5), frames[0].Timestamp.Unix())
}
