// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package textsummary renders Output Assembler summaries as a
// column-aligned transcript, for callers without a bar-chart renderer.
package textsummary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pocc/pcapgraph/internal/output"
)

const header = "\nPCAP NAME           YEAR  DATE 0  DATE $     TIME 0    TIME $       UTC 0              UTC $"

const row = "\n%-19s %-5s %-7s %-10s %-9s %-12s %-18d %-18d"

// Render formats summaries into the text transcript, sorted by
// filename (original_source/pcapgraph/print_text.py "output_text").
func Render(summaries []output.Summary) string {
	sorted := make([]output.Summary, len(summaries))
	copy(sorted, summaries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Filename < sorted[j].Filename })

	var b strings.Builder
	b.WriteString(header)
	for _, s := range sorted {
		name := s.Filename
		if len(name) > 17 {
			name = name[:17]
		}
		fmt.Fprintf(&b, row,
			name,
			s.Earliest.Format("2006"),
			s.Earliest.Format("Jan-02"),
			s.Latest.Format("Jan-02"),
			s.Earliest.Format("15:04:05"),
			s.Latest.Format("15:04:05"),
			s.Earliest.Unix(),
			s.Latest.Unix(),
		)
	}
	return b.String()
}
