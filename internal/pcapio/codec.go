// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package pcapio reads and writes libpcap-format files directly from
// bytes: global header, per-record headers, endianness detection and
// timestamp reconstruction (component C1 of the core). The API follows
// the teacher's lpcap package — a struct wrapping an *os.File accessed
// through ReaderAt/Writer, one packet read or written per call, an
// offset tracked under a mutex — widened to the real libpcap wire
// format instead of lpcap's own simplified one.
package pcapio

import (
	"encoding/binary"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pocc/pcapgraph/internal/pcaperr"
)

// Frame is one parsed record: its raw bytes and capture timestamp.
type Frame struct {
	Data      []byte
	Timestamp time.Time
}

// OpenOptions controls deviations from the default read behaviour.
type OpenOptions struct {
	// IgnoreUTCOffset disables adding the global header's UTC offset to
	// record seconds, opting out of the inconsistent observed behaviour
	// flagged in spec §9.
	IgnoreUTCOffset bool
}

// Reader parses one pcap file's frames in capture order. It holds no
// state shared with other Readers; multiple Readers may run concurrently
// against distinct files (spec §4.1 "Concurrency").
type Reader struct {
	f          *os.File
	header     *globalHeader
	order      binary.ByteOrder
	resolution Resolution
	utcOffset  int32
	mx         sync.Mutex
	offset     int64
	size       int64
}

// Open parses the global header of path and returns a Reader positioned
// at the first record.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, OpenOptions{})
}

// OpenWithOptions is Open with explicit read-behaviour overrides.
func OpenWithOptions(path string, opts OpenOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pcaperr.New(pcaperr.FilesystemError, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pcaperr.New(pcaperr.FilesystemError, err)
	}
	if st.Size() < globalHeaderSize {
		f.Close()
		return nil, pcaperr.At(pcaperr.TruncatedRecord, 0, errShortGlobalHeader)
	}

	b := make([]byte, globalHeaderSize)
	if _, err := f.ReadAt(b, 0); err != nil {
		f.Close()
		return nil, pcaperr.New(pcaperr.FilesystemError, err)
	}
	header, order, res, err := parseGlobalHeader(b)
	if err != nil {
		f.Close()
		return nil, err
	}

	utcOffset := header.UTCOffset
	if opts.IgnoreUTCOffset {
		utcOffset = 0
	}

	return &Reader{
		f:          f,
		header:     header,
		order:      order,
		resolution: res,
		utcOffset:  utcOffset,
		offset:     globalHeaderSize,
		size:       st.Size(),
	}, nil
}

// LinkType reports the capture's link-layer type.
func (r *Reader) LinkType() LinkType {
	return r.header.LinkType
}

// Resolution reports the sub-second unit of timestamps this file stores.
func (r *Reader) Resolution() Resolution {
	return r.resolution
}

// Next reports whether another record remains to be read.
func (r *Reader) Next() bool {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.offset < r.size
}

// ReadFrame reads the next record's header and payload.
func (r *Reader) ReadFrame() (Frame, error) {
	r.mx.Lock()
	defer r.mx.Unlock()

	if r.offset+recordHeaderSize > r.size {
		return Frame{}, pcaperr.At(pcaperr.TruncatedRecord, r.offset, errShortRecordHeader)
	}
	hb := make([]byte, recordHeaderSize)
	if _, err := r.f.ReadAt(hb, r.offset); err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}
		return Frame{}, pcaperr.New(pcaperr.FilesystemError, err)
	}
	rec := parseRecordHeader(hb, r.order)
	r.offset += recordHeaderSize

	if r.offset+int64(rec.CapLen) > r.size {
		return Frame{}, pcaperr.At(pcaperr.TruncatedRecord, r.offset, errRecordOverrun)
	}
	data := make([]byte, rec.CapLen)
	if rec.CapLen > 0 {
		if _, err := r.f.ReadAt(data, r.offset); err != nil {
			return Frame{}, pcaperr.New(pcaperr.FilesystemError, err)
		}
	}
	r.offset += int64(rec.CapLen)

	seconds := int64(rec.Seconds) + int64(r.utcOffset)
	var ts time.Time
	if r.resolution == Nanoseconds {
		ts = time.Unix(seconds, int64(rec.Sub)).UTC()
	} else {
		ts = time.Unix(seconds, int64(rec.Sub)*1000).UTC()
	}

	return Frame{Data: data, Timestamp: ts}, nil
}

// ReadAll drains the Reader into an ordered slice of Frames, preserving
// capture order (spec's "core does not reorder packets during parse").
func (r *Reader) ReadAll() ([]Frame, error) {
	var frames []Frame
	for r.Next() {
		f, err := r.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// Close releases the underlying file descriptor.
func (r *Reader) Close() error {
	return r.f.Close()
}

// WriteFile serialises frames to path as a libpcap file under linkType,
// sorting by timestamp ascending first — "the single point of ordering
// normalisation in the system" (spec §4.1 "Reordering on write").
func WriteFile(path string, linkType LinkType, frames []Frame) error {
	sorted := make([]Frame, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return pcaperr.New(pcaperr.FilesystemError, err)
	}
	defer f.Close()

	if _, err := f.Write(marshalGlobalHeader(linkType)); err != nil {
		return pcaperr.New(pcaperr.FilesystemError, err)
	}

	hb := make([]byte, recordHeaderSize)
	for _, fr := range sorted {
		secs := uint32(fr.Timestamp.Unix())
		usec := uint32(fr.Timestamp.Nanosecond() / 1000)
		marshalRecordHeader(hb, recordHeader{
			Seconds: secs,
			Sub:     usec,
			CapLen:  uint32(len(fr.Data)),
			OrigLen: uint32(len(fr.Data)),
		})
		if _, err := f.Write(hb); err != nil {
			return pcaperr.New(pcaperr.FilesystemError, err)
		}
		if len(fr.Data) > 0 {
			if _, err := f.Write(fr.Data); err != nil {
				return pcaperr.New(pcaperr.FilesystemError, err)
			}
		}
	}
	return nil
}
