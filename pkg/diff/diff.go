// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diff renders line diffs of patched text for previews.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around a change
const DefaultContext = 3

// Op is the kind of a diff line
type Op int

const (
	OpEqual Op = iota
	OpDelete
	OpInsert
)

// 📝 Line is one line of a line diff
type Line struct {
	Op   Op
	Text string // without the trailing newline

	// last line of a text that does not end in a newline
	NoNewline bool

	// lines of before/after consumed before this one
	oldPos int
	newPos int
}

// Lines computes a line diff between before and after
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []Line
	oldPos, newPos := 0, 0
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			line := Line{Text: text, oldPos: oldPos, newPos: newPos}
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				line.Op = OpDelete
				oldPos++
			case diffmatchpatch.DiffInsert:
				line.Op = OpInsert
				newPos++
			default:
				line.Op = OpEqual
				oldPos++
				newPos++
			}
			out = append(out, line)
		}
	}

	if before != "" && !strings.HasSuffix(before, "\n") {
		markLast(out, OpInsert)
	}
	if after != "" && !strings.HasSuffix(after, "\n") {
		markLast(out, OpDelete)
	}
	return out
}

// markLast flags the last line that does not have op skip
func markLast(lines []Line, skip Op) {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Op != skip {
			lines[i].NoNewline = true
			return
		}
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\n")
	}
	return parts
}

// Changed reports whether any line differs
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Op != OpEqual {
			return true
		}
	}
	return false
}

type hunk struct {
	start, end int // [start, end) into lines
}

func hunks(lines []Line, context int) []hunk {
	var out []hunk
	for i, l := range lines {
		if l.Op == OpEqual {
			continue
		}
		start := max(i-context, 0)
		end := min(i+context+1, len(lines))
		if n := len(out); n > 0 && start <= out[n-1].end {
			out[n-1].end = max(out[n-1].end, end)
			continue
		}
		out = append(out, hunk{start: start, end: end})
	}
	return out
}

// Unified writes a unified-style diff of before and after to w. Nothing is
// written when the texts are equal.
func Unified(w io.Writer, path, before, after string, context int) error {
	lines := Lines(before, after)
	if !Changed(lines) {
		return nil
	}

	bold := color.New(color.Bold)
	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)
	hdr := color.New(color.FgCyan)

	if _, err := fmt.Fprintf(w, "%s\n%s\n", bold.Sprint("--- a/"+path), bold.Sprint("+++ b/"+path)); err != nil {
		return err
	}

	for _, h := range hunks(lines, context) {
		oldCount, newCount := 0, 0
		for _, l := range lines[h.start:h.end] {
			if l.Op != OpInsert {
				oldCount++
			}
			if l.Op != OpDelete {
				newCount++
			}
		}
		first := lines[h.start]
		oldStart, newStart := first.oldPos, first.newPos
		if oldCount > 0 {
			oldStart++
		}
		if newCount > 0 {
			newStart++
		}

		if _, err := fmt.Fprintln(w, hdr.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount)); err != nil {
			return err
		}

		for _, l := range lines[h.start:h.end] {
			var s string
			switch l.Op {
			case OpDelete:
				s = del.Sprint("-" + l.Text)
			case OpInsert:
				s = ins.Sprint("+" + l.Text)
			default:
				s = " " + l.Text
			}
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
			if l.NoNewline {
				if _, err := fmt.Fprintln(w, `\ No newline at end of file`); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
