// Package diff computes line diffs with sergi/go-diff and renders them as
// unified hunks. Reconciliation uses it to show the expected tally table next
// to the exported one.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op classifies a diff line.
type Op int

const (
	OpEqual  Op = iota // present in both
	OpInsert           // only in the new text
	OpDelete           // only in the old text
)

// Prefix is the unified-diff marker for the op.
func (o Op) Prefix() string {
	switch o {
	case OpInsert:
		return "+"
	case OpDelete:
		return "-"
	default:
		return " "
	}
}

// Line is one line of a diff. OldNum and NewNum are 1-based and zero when the
// line does not exist on that side.
type Line struct {
	Op     Op
	Text   string
	OldNum int
	NewNum int
}

// Hunk is a run of changes with surrounding context.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// Result is the diff of two texts.
type Result struct {
	OldName, NewName string
	Lines            []Line
}

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// Lines diffs old against new line by line.
func Lines(oldName, newName, oldText, newText string) *Result {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	res := &Result{OldName: oldName, NewName: newName}
	oldNum, newNum := 0, 0
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			l := Line{Text: text}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldNum++
				newNum++
				l.Op, l.OldNum, l.NewNum = OpEqual, oldNum, newNum
			case diffmatchpatch.DiffInsert:
				newNum++
				l.Op, l.NewNum = OpInsert, newNum
			case diffmatchpatch.DiffDelete:
				oldNum++
				l.Op, l.OldNum = OpDelete, oldNum
			}
			res.Lines = append(res.Lines, l)
		}
	}
	return res
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// Changed reports whether the texts differ.
func (r *Result) Changed() bool {
	for _, l := range r.Lines {
		if l.Op != OpEqual {
			return true
		}
	}
	return false
}

// Hunks groups changes, keeping context unchanged lines on either side.
// Hunks whose context would overlap are merged.
func (r *Result) Hunks(context int) []Hunk {
	if context < 0 {
		context = 0
	}
	var hunks []Hunk
	n := len(r.Lines)
	for i := 0; i < n; {
		if r.Lines[i].Op == OpEqual {
			i++
			continue
		}
		start := max(0, i-context)
		// Extend until a run of more than 2*context equal lines.
		end := i
		for j := i; j < n; j++ {
			if r.Lines[j].Op != OpEqual {
				end = j
				continue
			}
			if j-end > 2*context {
				break
			}
		}
		stop := min(n, end+context+1)
		hunks = append(hunks, newHunk(r.Lines[start:stop]))
		i = stop
	}
	return hunks
}

func newHunk(lines []Line) Hunk {
	h := Hunk{Lines: lines}
	for _, l := range lines {
		if l.Op != OpInsert {
			h.OldCount++
			if h.OldStart == 0 {
				h.OldStart = l.OldNum
			}
		}
		if l.Op != OpDelete {
			h.NewCount++
			if h.NewStart == 0 {
				h.NewStart = l.NewNum
			}
		}
	}
	return h
}

// Unified renders the diff in unified format. An unchanged diff renders as
// the empty string.
func (r *Result) Unified(context int) string {
	hunks := r.Hunks(context)
	if len(hunks) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", r.OldName, r.NewName)
	for _, h := range hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			sb.WriteString(l.Op.Prefix())
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
