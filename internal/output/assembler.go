// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package output converts Derived Captures into written pcap files and
// the minimal summaries handed back to the external grapher (component
// C5 of the core).
package output

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pocc/pcapgraph/internal/pcapio"
)

// Capture is the minimal view the assembler needs of a Derived Capture.
type Capture interface {
	DisplayName() string
	LinkKind() pcapio.LinkType
	FrameList() []pcapio.Frame
}

// Summary is the (filename, count, earliest, latest) tuple handed to
// the external grapher (spec §4.5); it never carries frame bytes.
type Summary struct {
	Filename string
	Count    int
	Earliest time.Time
	Latest   time.Time
}

// Assembler writes Derived Captures to dir and reports what it wrote.
type Assembler struct {
	Dir          string
	ExcludeEmpty bool
	Log          logrus.FieldLogger
}

// New builds an Assembler rooted at dir. A nil logger installs a
// discard logger.
func New(dir string, excludeEmpty bool, log logrus.FieldLogger) *Assembler {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Assembler{Dir: dir, ExcludeEmpty: excludeEmpty, Log: log}
}

// Write serialises every Derived Capture in caps to a.Dir, skipping
// empty ones when a.ExcludeEmpty is set (spec §4.4 "Empty results"),
// and returns one Summary per emitted file in the same order caps were
// given.
func (a *Assembler) Write(caps []Capture) ([]Summary, error) {
	summaries := make([]Summary, 0, len(caps))
	used := make(map[string]bool, len(caps))

	for _, c := range caps {
		frames := c.FrameList()
		if len(frames) == 0 {
			a.Log.WithField("name", c.DisplayName()).Warn("output: empty derived capture")
			if a.ExcludeEmpty {
				continue
			}
		}

		name := a.uniqueName(used, c.DisplayName())
		used[name] = true

		path := filepath.Join(a.Dir, name)
		if err := pcapio.WriteFile(path, c.LinkKind(), frames); err != nil {
			return nil, err
		}

		summaries = append(summaries, summarize(name, frames))
	}
	return summaries, nil
}

// uniqueName returns name, or name with a uuid suffix inserted before
// its extension if name has already been used in this run or already
// exists on disk (spec §4.5 "On filename collision..."; the suffix is a
// uuid rather than a timestamp, since a run may emit more than one
// colliding file within the same second).
func (a *Assembler) uniqueName(used map[string]bool, name string) string {
	if !used[name] && !a.fileExists(name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for {
		candidate := stem + "-" + uuid.NewString()[:8] + ext
		if !used[candidate] && !a.fileExists(candidate) {
			return candidate
		}
	}
}

func (a *Assembler) fileExists(name string) bool {
	_, err := os.Stat(filepath.Join(a.Dir, name))
	return err == nil
}

func summarize(filename string, frames []pcapio.Frame) Summary {
	s := Summary{Filename: filename, Count: len(frames)}
	for i, f := range frames {
		if i == 0 {
			s.Earliest, s.Latest = f.Timestamp, f.Timestamp
			continue
		}
		if f.Timestamp.Before(s.Earliest) {
			s.Earliest = f.Timestamp
		}
		if f.Timestamp.After(s.Latest) {
			s.Latest = f.Timestamp
		}
	}
	return s
}
