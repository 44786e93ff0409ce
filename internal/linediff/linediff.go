package linediff

import (
	"fmt"
	"strings"

	"github.com/zjrosen/mergelens/internal/symbolmap"
)

// LineDiff diffs oldLines against newLines.
//
// Every distinct line across both inputs gets one symbol from a shared map, so equal
// lines collapse to equal runes wherever they occur. Both inputs empty yields a nil
// slice. Identical inputs yield exactly one OpEqual block.
//
// If the inputs hold more distinct lines than symbolmap.Capacity the diff is aborted
// with an error wrapping symbolmap.ErrCapacityExceeded.
func LineDiff(oldLines, newLines []string, opts ...Option) ([]Block, error) {
	symbols := symbolmap.New()

	oldText, err := symbols.Encode(oldLines)
	if err != nil {
		return nil, fmt.Errorf("encoding old lines: %w", err)
	}
	newText, err := symbols.Encode(newLines)
	if err != nil {
		return nil, fmt.Errorf("encoding new lines: %w", err)
	}

	diffs := CharDiff(oldText, newText, opts...)

	blocks := make([]Block, 0, len(diffs))
	for _, d := range diffs {
		lines, err := symbols.Decode(d.Text)
		if err != nil {
			return nil, fmt.Errorf("decoding %s block: %w", d.Op, err)
		}
		if len(lines) == 0 {
			continue
		}
		// Cleanup passes can leave neighbours with the same op.
		if n := len(blocks); n > 0 && blocks[n-1].Op == d.Op {
			blocks[n-1].Lines = append(blocks[n-1].Lines, lines...)
			continue
		}
		blocks = append(blocks, Block{Op: d.Op, Lines: lines})
	}
	if len(blocks) == 0 {
		return nil, nil
	}
	return blocks, nil
}

// LineDiffText splits both texts with SplitLines and diffs the result.
func LineDiffText(oldText, newText string, opts ...Option) ([]Block, error) {
	return LineDiff(SplitLines(oldText), SplitLines(newText), opts...)
}

// SplitLines splits text on "\n". A single trailing newline does not produce an
// extra empty line, and empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// Reconstruct projects blocks back onto the two inputs: Equal and Delete lines
// form the old sequence, Equal and Insert lines form the new one.
func Reconstruct(blocks []Block) (oldLines, newLines []string) {
	for _, b := range blocks {
		switch b.Op {
		case OpEqual:
			oldLines = append(oldLines, b.Lines...)
			newLines = append(newLines, b.Lines...)
		case OpDelete:
			oldLines = append(oldLines, b.Lines...)
		case OpInsert:
			newLines = append(newLines, b.Lines...)
		}
	}
	return oldLines, newLines
}

// Stats counts inserted and deleted lines.
func Stats(blocks []Block) (added, removed int) {
	for _, b := range blocks {
		switch b.Op {
		case OpInsert:
			added += len(b.Lines)
		case OpDelete:
			removed += len(b.Lines)
		}
	}
	return added, removed
}
