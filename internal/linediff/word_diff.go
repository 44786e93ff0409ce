package linediff

import (
	"strings"
	"unicode"

	"github.com/zjrosen/mergelens/internal/symbolmap"
)

// WordDiffMaxLineLength skips word diff for lines exceeding this length.
const WordDiffMaxLineLength = 500

// SegmentType indicates whether a segment is unchanged, added, or deleted.
type SegmentType int

const (
	SegmentUnchanged SegmentType = iota
	SegmentAdded
	SegmentDeleted
)

// Segment is a run of text with its diff status.
type Segment struct {
	Type SegmentType
	Text string
}

// WordDiffResult holds the segments for both sides of a modified line.
type WordDiffResult struct {
	OldSegments []Segment // Segments for the deleted line
	NewSegments []Segment // Segments for the added line
}

// tokenize splits a line into tokens (words and punctuation).
// Example: "foo.bar.baz()" → ["foo", ".", "bar", ".", "baz", "(", ")"]
func tokenize(line string) []string {
	if line == "" {
		return nil
	}

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range line {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			flush()
			tokens = append(tokens, string(r))
			continue
		}
		current.WriteRune(r)
	}
	flush()

	return tokens
}

// WordDiff computes a word-level diff between a deleted line and the added line that
// replaced it. Lines longer than WordDiffMaxLineLength are reported as a whole-line
// delete and add.
func WordDiff(oldLine, newLine string) WordDiffResult {
	if oldLine == "" && newLine == "" {
		return WordDiffResult{}
	}
	if oldLine == "" {
		return WordDiffResult{NewSegments: []Segment{{Type: SegmentAdded, Text: newLine}}}
	}
	if newLine == "" {
		return WordDiffResult{OldSegments: []Segment{{Type: SegmentDeleted, Text: oldLine}}}
	}
	if len(oldLine) > WordDiffMaxLineLength || len(newLine) > WordDiffMaxLineLength {
		return wholeLine(oldLine, newLine)
	}

	// Tokens go through the same symbol encoding as lines, one rune per token.
	symbols := symbolmap.New()
	oldText, err := symbols.Encode(tokenize(oldLine))
	if err != nil {
		return wholeLine(oldLine, newLine)
	}
	newText, err := symbols.Encode(tokenize(newLine))
	if err != nil {
		return wholeLine(oldLine, newLine)
	}

	var result WordDiffResult
	for _, d := range CharDiff(oldText, newText, WithCleanup(CleanupSemantic)) {
		tokens, err := symbols.Decode(d.Text)
		if err != nil {
			return wholeLine(oldLine, newLine)
		}
		text := strings.Join(tokens, "")

		switch d.Op {
		case OpEqual:
			result.OldSegments = append(result.OldSegments, Segment{Type: SegmentUnchanged, Text: text})
			result.NewSegments = append(result.NewSegments, Segment{Type: SegmentUnchanged, Text: text})
		case OpDelete:
			result.OldSegments = append(result.OldSegments, Segment{Type: SegmentDeleted, Text: text})
		case OpInsert:
			result.NewSegments = append(result.NewSegments, Segment{Type: SegmentAdded, Text: text})
		}
	}
	return result
}

func wholeLine(oldLine, newLine string) WordDiffResult {
	return WordDiffResult{
		OldSegments: []Segment{{Type: SegmentDeleted, Text: oldLine}},
		NewSegments: []Segment{{Type: SegmentAdded, Text: newLine}},
	}
}
