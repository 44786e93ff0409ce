package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/mergelens/internal/conflict"
	"github.com/zjrosen/mergelens/internal/linediff"
	"github.com/zjrosen/mergelens/internal/sections"
)

var (
	addedColor   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#7CCF7E"}
	removedColor = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#F07178"}
)

// styles holds output styles bound to one writer, so color is only emitted on terminals.
type styles struct {
	header     lipgloss.Style
	added      lipgloss.Style
	removed    lipgloss.Style
	context    lipgloss.Style
	lineNumber lipgloss.Style
	conflicted lipgloss.Style
	resolved   lipgloss.Style
	errorText  lipgloss.Style

	// word-level emphasis inside modified lines
	addedWord   lipgloss.Style
	removedWord lipgloss.Style

	// highlight syntax-colors unchanged lines in file diffs
	highlight bool
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	// diff lines must keep their tabs
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return styles{
		header:      base.Bold(true),
		added:       base.Foreground(addedColor),
		removed:     base.Foreground(removedColor),
		context:     base.Faint(true),
		lineNumber:  base.Foreground(lipgloss.Color("8")),
		conflicted:  base.Bold(true).Foreground(removedColor),
		resolved:    base.Foreground(addedColor),
		errorText:   base.Foreground(removedColor),
		addedWord:   base.Bold(true).Underline(true).Foreground(addedColor),
		removedWord: base.Bold(true).Underline(true).Foreground(removedColor),
	}
}

func (s styles) forOp(op linediff.Op) lipgloss.Style {
	switch op {
	case linediff.OpInsert:
		return s.added
	case linediff.OpDelete:
		return s.removed
	default:
		return s.context
	}
}

func (s styles) forLineType(t sections.PatchLineType) lipgloss.Style {
	switch t {
	case sections.LineAdded:
		return s.added
	case sections.LineRemoved:
		return s.removed
	default:
		return s.context
	}
}

func (s styles) forState(state conflict.State) lipgloss.Style {
	if state == conflict.StateResolved {
		return s.resolved
	}
	return s.conflicted
}
