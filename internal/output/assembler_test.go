// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package output

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocc/pcapgraph/internal/pcapio"
)

type fakeCapture struct {
	name     string
	linkType pcapio.LinkType
	frames   []pcapio.Frame
}

func (f fakeCapture) DisplayName() string       { return f.name }
func (f fakeCapture) LinkKind() pcapio.LinkType { return f.linkType }
func (f fakeCapture) FrameList() []pcapio.Frame { return f.frames }

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestWriteProducesSummariesAndFiles(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, false, discardLogger())

	caps := []Capture{
		fakeCapture{name: "union.pcap", linkType: pcapio.LinkTypeEthernet, frames: []pcapio.Frame{
			{Data: []byte("x"), Timestamp: time.Unix(100, 0).UTC()},
			{Data: []byte("y"), Timestamp: time.Unix(200, 0).UTC()},
		}},
	}

	summaries, err := a.Write(caps)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, "union.pcap", summaries[0].Filename)
	assert.Equal(t, 2, summaries[0].Count)
	assert.Equal(t, int64(100), summaries[0].Earliest.Unix())
	assert.Equal(t, int64(200), summaries[0].Latest.Unix())

	_, err = os.Stat(filepath.Join(dir, "union.pcap"))
	assert.NoError(t, err)
}

func TestWriteExcludesEmptyWhenRequested(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, true, discardLogger())

	caps := []Capture{
		fakeCapture{name: "empty.pcap", linkType: pcapio.LinkTypeEthernet},
		fakeCapture{name: "full.pcap", linkType: pcapio.LinkTypeEthernet, frames: []pcapio.Frame{
			{Data: []byte("x"), Timestamp: time.Unix(1, 0).UTC()},
		}},
	}

	summaries, err := a.Write(caps)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "full.pcap", summaries[0].Filename)

	_, err = os.Stat(filepath.Join(dir, "empty.pcap"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteKeepsEmptyWhenNotExcluded(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, false, discardLogger())

	summaries, err := a.Write([]Capture{
		fakeCapture{name: "empty.pcap", linkType: pcapio.LinkTypeEthernet},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].Count)
}

func TestWriteDisambiguatesNameCollisions(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, false, discardLogger())

	frame := []pcapio.Frame{{Data: []byte("z"), Timestamp: time.Unix(1, 0).UTC()}}
	summaries, err := a.Write([]Capture{
		fakeCapture{name: "dup.pcap", linkType: pcapio.LinkTypeEthernet, frames: frame},
		fakeCapture{name: "dup.pcap", linkType: pcapio.LinkTypeEthernet, frames: frame},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.NotEqual(t, summaries[0].Filename, summaries[1].Filename)
	assert.Equal(t, "dup.pcap", summaries[0].Filename)
	assert.Contains(t, summaries[1].Filename, "dup-")
}
