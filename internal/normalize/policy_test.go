// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocc/pcapgraph/internal/pcapio"
)

// ethFrame builds a bare Ethernet + IPv4 frame: 12 bytes of
// src/dst MACs, 2 bytes ethertype (0x0800), then an IPv4 header.
func ethFrame(ttl, checksumHi, checksumLo byte, payload ...byte) []byte {
	f := make([]byte, 14)
	f[12], f[13] = 0x08, 0x00
	ipv4 := []byte{
		0x45, 0x00, 0x00, 0x14,
		0x00, 0x00, 0x00, 0x00,
		ttl, 0x06, checksumHi, checksumLo,
		192, 168, 1, 1,
		10, 0, 0, 1,
	}
	f = append(f, ipv4...)
	f = append(f, payload...)
	return f
}

func TestCanonicalKeyIdentity(t *testing.T) {
	frame := ethFrame(64, 0xab, 0xcd)
	key, err := Identity.CanonicalKey(frame, pcapio.LinkTypeEthernet)
	require.NoError(t, err)
	assert.Equal(t, frame, key)
}

func TestCanonicalKeyStripL2(t *testing.T) {
	frame := ethFrame(64, 0xab, 0xcd)
	p := Policy{StripL2: true}
	key, err := p.CanonicalKey(frame, pcapio.LinkTypeEthernet)
	require.NoError(t, err)
	assert.Equal(t, frame[14:], key)
}

func TestCanonicalKeyIsPure(t *testing.T) {
	frame := ethFrame(64, 0xab, 0xcd)
	original := append([]byte(nil), frame...)
	p := Policy{StripL2: true}

	first, err := p.CanonicalKey(frame, pcapio.LinkTypeEthernet)
	require.NoError(t, err)
	second, err := p.CanonicalKey(frame, pcapio.LinkTypeEthernet)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, original, frame, "CanonicalKey must not mutate its input")
}

func TestCanonicalKeyStripL3HomogenisesIPv4(t *testing.T) {
	frame1 := ethFrame(64, 0xab, 0xcd, 0x01)
	frame2 := ethFrame(32, 0x11, 0x22, 0x01)
	p := Policy{StripL3: true}

	key1, err := p.CanonicalKey(frame1, pcapio.LinkTypeEthernet)
	require.NoError(t, err)
	key2, err := p.CanonicalKey(frame2, pcapio.LinkTypeEthernet)
	require.NoError(t, err)

	assert.Equal(t, key1, key2, "TTL and checksum differences collapse after homogenisation")
	assert.Equal(t, byte(0xff), key1[8])
	assert.Equal(t, []byte{0x13, 0x37}, key1[10:12])
	assert.Equal(t, []byte{0x0a, 0x01, 0x01, 0x01}, key1[12:16])
	assert.Equal(t, []byte{0x0a, 0x02, 0x02, 0x02}, key1[16:20])
}

func TestCanonicalKeyStripL3SubsumesL2(t *testing.T) {
	frame := ethFrame(64, 0xab, 0xcd, 0x01)
	stripL3 := Policy{StripL3: true}
	l3Key, err := stripL3.CanonicalKey(frame, pcapio.LinkTypeEthernet)
	require.NoError(t, err)

	// the strip-l3 key has already lost its link header, so it parses as
	// an IPv4 header directly; homogenising it again must not change it.
	again, err := homogenizeL3(l3Key)
	require.NoError(t, err)
	assert.Equal(t, l3Key, again)
}

func TestCanonicalKeyStripL3HomogenisesIPv6(t *testing.T) {
	f := make([]byte, 14)
	f[12], f[13] = 0x86, 0xdd
	ipv6 := make([]byte, 40)
	ipv6[0] = 0x60
	ipv6[7] = 0x05
	f = append(f, ipv6...)

	p := Policy{StripL3: true}
	key, err := p.CanonicalKey(f, pcapio.LinkTypeEthernet)
	require.NoError(t, err)
	assert.Equal(t, byte(0x2a), key[7])
}

func TestCanonicalKeyDetectsVLANTag(t *testing.T) {
	f := make([]byte, 18)
	f[12], f[13] = 0x81, 0x00
	f[16], f[17] = 0x08, 0x00
	ipv4 := []byte{0x45, 0, 0, 0, 0, 0, 0, 0, 64, 6, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8}
	f = append(f, ipv4...)

	p := Policy{StripL2: true}
	key, err := p.CanonicalKey(f, pcapio.LinkTypeEthernet)
	require.NoError(t, err)
	assert.Equal(t, f[18:], key)
}

func TestCanonicalKeyUnsupportedIPVersion(t *testing.T) {
	f := make([]byte, 14)
	f = append(f, 0x55, 0, 0, 0)

	p := Policy{StripL3: true}
	_, err := p.CanonicalKey(f, pcapio.LinkTypeEthernet)
	assert.Error(t, err)
}

func TestCanonicalKeyUnsupportedLinkType(t *testing.T) {
	p := Policy{StripL2: true}
	_, err := p.CanonicalKey([]byte{1, 2, 3}, pcapio.LinkTypeIEEE80211)
	assert.Error(t, err)
}

func TestStrips(t *testing.T) {
	assert.False(t, Identity.Strips())
	assert.True(t, Policy{StripL2: true}.Strips())
	assert.True(t, Policy{StripL3: true}.Strips())
}
