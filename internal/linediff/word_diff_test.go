package linediff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "simple word", input: "hello", expected: []string{"hello"}},
		{name: "two words", input: "hello world", expected: []string{"hello", " ", "world"}},
		{name: "dotted identifier", input: "foo.bar.baz()", expected: []string{"foo", ".", "bar", ".", "baz", "(", ")"}},
		{name: "assignment with spaces", input: "x := foo()", expected: []string{"x", " ", ":", "=", " ", "foo", "(", ")"}},
		{name: "tabs", input: "a\tb", expected: []string{"a", "\t", "b"}},
		{name: "operators", input: "a + b", expected: []string{"a", " ", "+", " ", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tokenize(tt.input))
		})
	}
}

func TestWordDiff_EdgeCases(t *testing.T) {
	require.Equal(t, WordDiffResult{}, WordDiff("", ""))

	added := WordDiff("", "new")
	require.Nil(t, added.OldSegments)
	require.Equal(t, []Segment{{Type: SegmentAdded, Text: "new"}}, added.NewSegments)

	deleted := WordDiff("old", "")
	require.Nil(t, deleted.NewSegments)
	require.Equal(t, []Segment{{Type: SegmentDeleted, Text: "old"}}, deleted.OldSegments)
}

func TestWordDiff_ChangedIdentifier(t *testing.T) {
	oldLine := "return foo.bar(x)"
	newLine := "return foo.baz(x)"

	result := WordDiff(oldLine, newLine)
	require.Equal(t, oldLine, segmentText(result.OldSegments, SegmentAdded))
	require.Equal(t, newLine, segmentText(result.NewSegments, SegmentDeleted))

	require.Contains(t, changedText(result.OldSegments), "bar")
	require.Contains(t, changedText(result.NewSegments), "baz")
	require.NotContains(t, changedText(result.OldSegments), "return")
}

func TestWordDiff_LongLineFallsBackToWholeLine(t *testing.T) {
	oldLine := strings.Repeat("a ", WordDiffMaxLineLength)
	newLine := strings.Repeat("b ", WordDiffMaxLineLength)

	result := WordDiff(oldLine, newLine)
	require.Equal(t, []Segment{{Type: SegmentDeleted, Text: oldLine}}, result.OldSegments)
	require.Equal(t, []Segment{{Type: SegmentAdded, Text: newLine}}, result.NewSegments)
}

// segmentText rebuilds one side, skipping segments of the other side's type.
func segmentText(segs []Segment, skip SegmentType) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.Type != skip {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

func changedText(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.Type != SegmentUnchanged {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}
