// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package pcapio

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocc/pcapgraph/internal/pcaperr"
)

func TestLoadFileDispatchesNativePcap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "native.pcap")
	require.NoError(t, WriteFile(path, LinkTypeEthernet, []Frame{
		{Data: []byte("p"), Timestamp: time.Unix(1, 0).UTC()},
	}))

	frames, linkType, err := LoadFile(context.Background(), dir, path, OpenOptions{})
	require.NoError(t, err)
	assert.Len(t, frames, 1)
	assert.Equal(t, LinkTypeEthernet, linkType)
}

func TestLoadFileRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.unknownext")
	writeBytes(t, path, []byte{0})

	_, _, err := LoadFile(context.Background(), dir, path, OpenOptions{})
	require.Error(t, err)
	assert.Equal(t, pcaperr.UnsupportedFormat, pcaperr.Of(err))
}

func TestEnsureScratchDirCreatesNested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureScratchDir(dir))

	require.NoError(t, WriteFile(filepath.Join(dir, "x.pcap"), LinkTypeEthernet, nil))
}
