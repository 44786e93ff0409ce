package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/mergelens/internal/conflict"
	"github.com/zjrosen/mergelens/internal/linediff"
	"github.com/zjrosen/mergelens/internal/review"
	"github.com/zjrosen/mergelens/internal/sections"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderFileDiff prints one file's blocks with unified diff markers.
func renderFileDiff(w io.Writer, st styles, d review.FileDiff) {
	_, _ = fmt.Fprintln(w, st.header.Render(fmt.Sprintf("%s (+%d -%d)", d.Path, d.Added, d.Removed)))
	var hl *highlighter
	if st.highlight {
		hl = newHighlighter(d.Path)
	}
	for i := 0; i < len(d.Blocks); i++ {
		b := d.Blocks[i]
		if b.Op == linediff.OpDelete && i+1 < len(d.Blocks) {
			next := d.Blocks[i+1]
			if next.Op == linediff.OpInsert && len(next.Lines) == len(b.Lines) {
				renderModified(w, st, b.Lines, next.Lines)
				i++
				continue
			}
		}
		style := st.forOp(b.Op)
		prefix := b.Op.Prefix()
		for _, line := range b.Lines {
			if b.Op == linediff.OpEqual && hl != nil {
				_, _ = fmt.Fprintln(w, prefix+hl.line(line))
				continue
			}
			_, _ = fmt.Fprintln(w, style.Render(prefix+line))
		}
	}
}

// renderModified prints a delete run and the insert run that replaced it line for
// line, emphasising the changed words.
func renderModified(w io.Writer, st styles, oldLines, newLines []string) {
	results := make([]linediff.WordDiffResult, len(oldLines))
	for i := range oldLines {
		results[i] = linediff.WordDiff(oldLines[i], newLines[i])
	}
	for i, r := range results {
		_, _ = fmt.Fprintln(w, renderSegments(st.removed, st.removedWord, "-", r.OldSegments, oldLines[i]))
	}
	for i, r := range results {
		_, _ = fmt.Fprintln(w, renderSegments(st.added, st.addedWord, "+", r.NewSegments, newLines[i]))
	}
}

func renderSegments(base, changed lipgloss.Style, prefix string, segs []linediff.Segment, line string) string {
	if len(segs) == 0 {
		return base.Render(prefix + line)
	}
	var sb strings.Builder
	sb.WriteString(base.Render(prefix))
	for _, seg := range segs {
		if seg.Type == linediff.SegmentUnchanged {
			sb.WriteString(base.Render(seg.Text))
		} else {
			sb.WriteString(changed.Render(seg.Text))
		}
	}
	return sb.String()
}

func renderFileError(w io.Writer, st styles, path string, err error) {
	_, _ = fmt.Fprintln(w, st.errorText.Render(fmt.Sprintf("%s: %v", path, err)))
}

// renderSections prints each section under a marker line, with old and new line numbers.
func renderSections(w io.Writer, st styles, files []review.FileSections) {
	for i, f := range files {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w, st.header.Render(f.Path))
		for _, sec := range f.Sections {
			style := st.forLineType(sec.Type)
			_, _ = fmt.Fprintln(w, st.lineNumber.Render(fmt.Sprintf("@@ %s (%d)", sec.Type, len(sec.Lines))))
			for _, line := range sec.Lines {
				_, _ = fmt.Fprintf(w, "%s %s\n",
					st.lineNumber.Render(lineNumbers(line)),
					style.Render(line.Content))
			}
		}
	}
}

func lineNumbers(line sections.DisplayLine) string {
	return fmt.Sprintf("%5s %5s", optInt(line.BeforeLineNumber), optInt(line.AfterLineNumber))
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprint(*n)
}

// renderConflicts prints one line per path: state, path, hint.
func renderConflicts(w io.Writer, st styles, entries []conflict.Entry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "no unmerged paths")
		return
	}

	width := 0
	for _, e := range entries {
		width = max(width, runewidth.StringWidth(e.Path))
	}
	conflicted := 0
	for _, e := range entries {
		if e.State == conflict.StateConflicted {
			conflicted++
		}
		state := fmt.Sprintf("%-10s", e.State)
		_, _ = fmt.Fprintf(w, "%s %s  %s\n",
			st.forState(e.State).Render(state),
			runewidth.FillRight(e.Path, width),
			st.context.Render(e.Hint))
	}
	_, _ = fmt.Fprintf(w, "%d conflicted, %d resolved\n", conflicted, len(entries)-conflicted)
}
