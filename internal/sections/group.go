package sections

import (
	"fmt"
	"strings"
)

// GroupSections folds consecutive records of the same type into sections.
//
// The leading '+' of added lines and '-' of removed lines is stripped once; context
// lines are copied as-is. Line numbers pass through untouched. Empty input yields no
// sections. A record with an unknown type aborts the whole call.
func GroupSections(records []PatchLine) ([]Section, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var (
		out     []Section
		current *Section
	)

	for i, rec := range records {
		content, err := displayContent(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		if current != nil && current.Type != rec.Type {
			out = append(out, *current)
			current = nil
		}
		if current == nil {
			current = &Section{Type: rec.Type}
		}

		current.Lines = append(current.Lines, DisplayLine{
			Content:          content,
			BeforeLineNumber: rec.Left,
			AfterLineNumber:  rec.Right,
		})
	}

	out = append(out, *current)
	return out, nil
}

func displayContent(rec PatchLine) (string, error) {
	switch rec.Type {
	case LineAdded:
		return strings.TrimPrefix(rec.Line, "+"), nil
	case LineRemoved:
		return strings.TrimPrefix(rec.Line, "-"), nil
	case LineContext:
		return rec.Line, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownLineType, int(rec.Type))
	}
}

// LineCount returns the number of display lines across sections.
func LineCount(sections []Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Lines)
	}
	return n
}
