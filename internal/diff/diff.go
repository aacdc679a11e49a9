// Package diff renders line diffs between a page and its annotated form.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/imgajeed76/relstamp/internal/ui/styles"
)

// LineType marks a diff line as context, addition or deletion.
type LineType int

const (
	LineContext LineType = iota
	LineAdd
	LineDelete
)

// Line is one line of a hunk.
type Line struct {
	Type    LineType
	Content string
}

// Hunk is a contiguous group of changes with surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Result is the diff of one page.
type Result struct {
	Path  string
	Hunks []Hunk
}

// Changed reports whether the page differs at all.
func (r Result) Changed() bool {
	return len(r.Hunks) > 0
}

// Compute diffs before and after line by line, keeping contextLines of
// unchanged text around each change (3 when contextLines <= 0).
func Compute(path, before, after string, contextLines int) Result {
	if contextLines <= 0 {
		contextLines = 3
	}
	return Result{Path: path, Hunks: hunks(lines(before, after), contextLines)}
}

func lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	a, b, table := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(a, b, false), table)

	var out []Line
	for _, d := range diffs {
		t := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			t = LineAdd
		case diffmatchpatch.DiffDelete:
			t = LineDelete
		}
		for _, content := range strings.SplitAfter(d.Text, "\n") {
			if content == "" {
				continue
			}
			out = append(out, Line{Type: t, Content: strings.TrimSuffix(content, "\n")})
		}
	}
	return out
}

// hunks merges change windows whose context would overlap or touch.
func hunks(ls []Line, ctx int) []Hunk {
	oldAt := make([]int, len(ls))
	newAt := make([]int, len(ls))
	o, n := 1, 1
	for i, l := range ls {
		oldAt[i], newAt[i] = o, n
		if l.Type != LineAdd {
			o++
		}
		if l.Type != LineDelete {
			n++
		}
	}

	type window struct{ lo, hi int }
	var windows []window
	for i, l := range ls {
		if l.Type == LineContext {
			continue
		}
		lo, hi := max(0, i-ctx), min(len(ls)-1, i+ctx)
		if k := len(windows) - 1; k >= 0 && lo <= windows[k].hi+1 {
			windows[k].hi = hi
			continue
		}
		windows = append(windows, window{lo, hi})
	}

	out := make([]Hunk, 0, len(windows))
	for _, w := range windows {
		h := Hunk{OldStart: oldAt[w.lo], NewStart: newAt[w.lo], Lines: ls[w.lo : w.hi+1]}
		for _, l := range h.Lines {
			if l.Type != LineAdd {
				h.OldCount++
			}
			if l.Type != LineDelete {
				h.NewCount++
			}
		}
		out = append(out, h)
	}
	return out
}

// Format renders a result in unified diff form.
func Format(r Result, noColor bool) string {
	paint := func(s string, style func(string) string) string {
		if noColor {
			return s
		}
		return style(s)
	}

	var sb strings.Builder
	sb.WriteString(paint(fmt.Sprintf("--- a/%s", r.Path), styles.Header) + "\n")
	sb.WriteString(paint(fmt.Sprintf("+++ b/%s", r.Path), styles.Header) + "\n")

	for _, h := range r.Hunks {
		header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		sb.WriteString(paint(header, styles.HunkHeader) + "\n")
		for _, l := range h.Lines {
			switch l.Type {
			case LineAdd:
				sb.WriteString(paint("+"+l.Content, styles.Green))
			case LineDelete:
				sb.WriteString(paint("-"+l.Content, styles.Red))
			default:
				sb.WriteString(paint(" "+l.Content, styles.Mute))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
