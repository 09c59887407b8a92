// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package pcapio

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pocc/pcapgraph/internal/pcaperr"
	"github.com/pocc/pcapgraph/internal/toolchain"
)

// convertibleExtensions lists every non-native format the common
// capture-analysis toolchain accepts, per spec §6.
var convertibleExtensions = map[string]bool{
	".cap": true, ".dmp": true, ".5vw": true, ".trc0": true, ".trc1": true,
	".enc": true, ".trc": true, ".fdc": true, ".syc": true, ".bfr": true,
	".tr1": true, ".snoop": true,
}

// LoadFile parses path into an ordered slice of Frames and its link
// type, converting through editcap first when the extension requires it
// (spec §4.1 "Input contract"). scratchDir is where any temporary
// conversion output is written; it is removed before LoadFile returns.
// opts applies to the native .pcap path and to editcap-converted input;
// the .pcapng path ignores it, as pcapng carries no UTC offset to opt
// out of.
func LoadFile(ctx context.Context, scratchDir, path string, opts OpenOptions) ([]Frame, LinkType, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pcap":
		r, err := OpenWithOptions(path, opts)
		if err != nil {
			return nil, 0, err
		}
		defer r.Close()
		frames, err := r.ReadAll()
		if err != nil {
			return nil, 0, err
		}
		return frames, r.LinkType(), nil

	case ".pcapng":
		return ReadPcapng(path)

	default:
		if !convertibleExtensions[ext] {
			return nil, 0, pcaperr.New(pcaperr.UnsupportedFormat, errUnsupportedExtension(ext))
		}
		tempPath, cleanup, err := toolchain.Convert(ctx, scratchDir, path)
		if err != nil {
			return nil, 0, err
		}
		defer cleanup()

		r, err := OpenWithOptions(tempPath, opts)
		if err != nil {
			return nil, 0, err
		}
		defer r.Close()
		frames, err := r.ReadAll()
		if err != nil {
			return nil, 0, err
		}
		return frames, r.LinkType(), nil
	}
}

func errUnsupportedExtension(ext string) error {
	return &unsupportedExtensionError{ext: ext}
}

type unsupportedExtensionError struct{ ext string }

func (e *unsupportedExtensionError) Error() string {
	return "unsupported capture file extension " + e.ext
}

// EnsureScratchDir creates dir if it does not already exist, used by
// callers that own a scratch directory for the lifetime of one run.
func EnsureScratchDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
