package linediff

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/mergelens/internal/symbolmap"
)

func TestLineDiff_SingleLineChange(t *testing.T) {
	oldLines := []string{"a", "b", "c"}
	newLines := []string{"a", "x", "c"}

	blocks, err := LineDiff(oldLines, newLines)
	require.NoError(t, err)
	require.Equal(t, []Block{
		{Op: OpEqual, Lines: []string{"a"}},
		{Op: OpDelete, Lines: []string{"b"}},
		{Op: OpInsert, Lines: []string{"x"}},
		{Op: OpEqual, Lines: []string{"c"}},
	}, blocks)

	gotOld, gotNew := Reconstruct(blocks)
	require.Equal(t, oldLines, gotOld)
	require.Equal(t, newLines, gotNew)
}

func TestLineDiff_Identical(t *testing.T) {
	lines := []string{"package main", "", "func main() {}", ""}

	blocks, err := LineDiff(lines, lines)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, OpEqual, blocks[0].Op)
	require.Equal(t, lines, blocks[0].Lines)
}

func TestLineDiff_BothEmpty(t *testing.T) {
	blocks, err := LineDiff(nil, []string{})
	require.NoError(t, err)
	require.Nil(t, blocks)
}

func TestLineDiff_OneSideEmpty(t *testing.T) {
	blocks, err := LineDiff(nil, []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []Block{{Op: OpInsert, Lines: []string{"a", "b"}}}, blocks)

	blocks, err = LineDiff([]string{"a", "b"}, nil)
	require.NoError(t, err)
	require.Equal(t, []Block{{Op: OpDelete, Lines: []string{"a", "b"}}}, blocks)
}

func TestLineDiff_DisjointDeletesFirst(t *testing.T) {
	blocks, err := LineDiff([]string{"a", "b"}, []string{"c", "d"})
	require.NoError(t, err)
	require.Equal(t, []Block{
		{Op: OpDelete, Lines: []string{"a", "b"}},
		{Op: OpInsert, Lines: []string{"c", "d"}},
	}, blocks)
}

func TestLineDiff_RepeatedLinesShareSymbols(t *testing.T) {
	oldLines := []string{"}", "}", "x", "}"}
	newLines := []string{"}", "x", "}", "}"}

	blocks, err := LineDiff(oldLines, newLines)
	require.NoError(t, err)

	gotOld, gotNew := Reconstruct(blocks)
	require.Equal(t, oldLines, gotOld)
	require.Equal(t, newLines, gotNew)
}

func TestLineDiff_CapacityExceeded(t *testing.T) {
	oldLines := make([]string, symbolmap.Capacity+1)
	for i := range oldLines {
		oldLines[i] = "line " + strconv.Itoa(i)
	}

	blocks, err := LineDiff(oldLines, []string{"x"})
	require.Error(t, err)
	require.True(t, errors.Is(err, symbolmap.ErrCapacityExceeded))
	require.Nil(t, blocks, "no partial diff on capacity failure")
}

func TestLineDiff_CapacityCountsBothSides(t *testing.T) {
	half := symbolmap.Capacity/2 + 1
	oldLines := make([]string, half)
	newLines := make([]string, half)
	for i := 0; i < half; i++ {
		oldLines[i] = "old " + strconv.Itoa(i)
		newLines[i] = "new " + strconv.Itoa(i)
	}

	_, err := LineDiff(oldLines, newLines)
	require.ErrorIs(t, err, symbolmap.ErrCapacityExceeded)
}

func TestLineDiffText(t *testing.T) {
	blocks, err := LineDiffText("one\ntwo\nthree\n", "one\n2\nthree\n")
	require.NoError(t, err)

	gotOld, gotNew := Reconstruct(blocks)
	require.Equal(t, []string{"one", "two", "three"}, gotOld)
	require.Equal(t, []string{"one", "2", "three"}, gotNew)

	added, removed := Stats(blocks)
	require.Equal(t, 1, added)
	require.Equal(t, 1, removed)
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single line no newline", input: "a", want: []string{"a"}},
		{name: "single line with newline", input: "a\n", want: []string{"a"}},
		{name: "blank line", input: "\n", want: []string{""}},
		{name: "trailing blank line kept", input: "a\n\n", want: []string{"a", ""}},
		{name: "crlf left intact", input: "a\r\nb\r\n", want: []string{"a\r", "b\r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SplitLines(tt.input))
		})
	}
}

func TestParseCleanup(t *testing.T) {
	for _, c := range []Cleanup{CleanupNone, CleanupSemantic, CleanupEfficiency, CleanupMerge} {
		got, ok := ParseCleanup(c.String())
		require.True(t, ok, c.String())
		require.Equal(t, c, got)
	}

	got, ok := ParseCleanup("")
	require.True(t, ok)
	require.Equal(t, CleanupNone, got)

	_, ok = ParseCleanup("aggressive")
	require.False(t, ok)
}

func TestOp_String(t *testing.T) {
	require.Equal(t, "equal", OpEqual.String())
	require.Equal(t, "insert", OpInsert.String())
	require.Equal(t, "delete", OpDelete.String())
	require.Equal(t, "edit", OpEdit.String())
	require.Equal(t, "unknown", Op(42).String())
}

func TestCharDiff_CleanupKeepsText(t *testing.T) {
	text1 := "The quick brown fox jumps over the lazy dog."
	text2 := "That quick brown cat jumped over a lazy dog!"

	for _, c := range []Cleanup{CleanupNone, CleanupSemantic, CleanupEfficiency, CleanupMerge} {
		t.Run(c.String(), func(t *testing.T) {
			diffs := CharDiff(text1, text2, WithCleanup(c), WithTimeout(0))
			got1, got2 := joinDiffs(diffs)
			require.Equal(t, text1, got1)
			require.Equal(t, text2, got2)
		})
	}
}

func joinDiffs(diffs []Diff) (string, string) {
	var a, b string
	for _, d := range diffs {
		switch d.Op {
		case OpEqual:
			a += d.Text
			b += d.Text
		case OpDelete:
			a += d.Text
		case OpInsert:
			b += d.Text
		}
	}
	return a, b
}

func linesGen() *rapid.Generator[[]string] {
	// A small alphabet forces plenty of repeated lines.
	return rapid.SliceOfN(rapid.SampledFrom([]string{"", "a", "b", "c", "}", "return nil", "\t// x"}), 0, 40)
}

func TestLineDiff_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		oldLines := linesGen().Draw(rt, "old")
		newLines := linesGen().Draw(rt, "new")
		cleanup := rapid.SampledFrom([]Cleanup{CleanupNone, CleanupSemantic, CleanupEfficiency, CleanupMerge}).Draw(rt, "cleanup")

		blocks, err := LineDiff(oldLines, newLines, WithCleanup(cleanup))
		if err != nil {
			rt.Fatalf("LineDiff: %v", err)
		}

		gotOld, gotNew := Reconstruct(blocks)
		if !equalLines(oldLines, gotOld) {
			rt.Fatalf("old mismatch: want %q got %q", oldLines, gotOld)
		}
		if !equalLines(newLines, gotNew) {
			rt.Fatalf("new mismatch: want %q got %q", newLines, gotNew)
		}

		for i, b := range blocks {
			if len(b.Lines) == 0 {
				rt.Fatalf("block %d is empty", i)
			}
			if b.Op == OpEdit {
				rt.Fatalf("block %d has OpEdit", i)
			}
			if i > 0 && blocks[i-1].Op == b.Op {
				rt.Fatalf("blocks %d and %d share op %s", i-1, i, b.Op)
			}
		}
	})
}

func TestLineDiff_Idempotence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOfN(rapid.String(), 1, 30).Draw(rt, "lines")

		blocks, err := LineDiff(lines, lines)
		if err != nil {
			rt.Fatalf("LineDiff: %v", err)
		}
		if len(blocks) != 1 || blocks[0].Op != OpEqual || !equalLines(lines, blocks[0].Lines) {
			rt.Fatalf("LineDiff(A, A) = %+v, want one equal block", blocks)
		}
	})
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
