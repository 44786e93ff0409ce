package sections

import (
	"testing"

	sgdiff "github.com/sourcegraph/go-diff/diff"
	"github.com/stretchr/testify/require"
)

func TestParsePatch_Empty(t *testing.T) {
	files, err := ParsePatch(nil)
	require.NoError(t, err)
	require.Empty(t, files)

	files, err = ParsePatch([]byte("\n"))
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestParsePatch_SingleFile(t *testing.T) {
	input := `diff --git a/file.go b/file.go
index abc1234..def5678 100644
--- a/file.go
+++ b/file.go
@@ -10,3 +10,3 @@ func example() {
 	context line
-	deleted line
+	added line
 	more context
`

	files, err := ParsePatch([]byte(input))
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	require.Equal(t, "file.go", f.OldPath)
	require.Equal(t, "file.go", f.NewPath)
	require.Equal(t, []PatchLine{
		{Type: LineContext, Line: "\tcontext line", Left: ptr(10), Right: ptr(10)},
		{Type: LineRemoved, Line: "-\tdeleted line", Left: ptr(11)},
		{Type: LineAdded, Line: "+\tadded line", Right: ptr(11)},
		{Type: LineContext, Line: "\tmore context", Left: ptr(12), Right: ptr(12)},
	}, f.Lines)

	sections, err := GroupSections(f.Lines)
	require.NoError(t, err)
	require.Len(t, sections, 4)
	require.Equal(t, "\tdeleted line", sections[1].Lines[0].Content)
	require.Equal(t, "\tadded line", sections[2].Lines[0].Content)
}

func TestParsePatch_MultipleFilesAndHunks(t *testing.T) {
	input := `diff --git a/first.go b/first.go
--- a/first.go
+++ b/first.go
@@ -1,2 +1,3 @@
 line one
+added
 line two
@@ -20,2 +21,1 @@
-gone
 kept
diff --git a/second.go b/second.go
--- a/second.go
+++ b/second.go
@@ -5,2 +5,1 @@
-removed
 kept
`

	files, err := ParsePatch([]byte(input))
	require.NoError(t, err)
	require.Len(t, files, 2)

	first := files[0]
	require.Equal(t, "first.go", first.Path())
	require.Len(t, first.Lines, 5)
	require.Equal(t, PatchLine{Type: LineRemoved, Line: "-gone", Left: ptr(20)}, first.Lines[3])
	require.Equal(t, PatchLine{Type: LineContext, Line: "kept", Left: ptr(21), Right: ptr(21)}, first.Lines[4])

	second := files[1]
	require.Equal(t, "second.go", second.Path())
	require.Equal(t, PatchLine{Type: LineRemoved, Line: "-removed", Left: ptr(5)}, second.Lines[0])
}

func TestParsePatch_NewFile(t *testing.T) {
	input := `diff --git a/new.txt b/new.txt
new file mode 100644
index 0000000..3b18e51
--- /dev/null
+++ b/new.txt
@@ -0,0 +1,2 @@
+hello
+world
\ No newline at end of file
`

	files, err := ParsePatch([]byte(input))
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "/dev/null", files[0].OldPath)
	require.Equal(t, "new.txt", files[0].Path())
	require.Equal(t, []PatchLine{
		{Type: LineAdded, Line: "+hello", Right: ptr(1)},
		{Type: LineAdded, Line: "+world", Right: ptr(2)},
	}, files[0].Lines)
}

func TestFilePatch_PathFallsBackToOld(t *testing.T) {
	require.Equal(t, "gone.txt", FilePatch{OldPath: "gone.txt", NewPath: "/dev/null"}.Path())
}

func TestHunkLines_UnexpectedPrefix(t *testing.T) {
	_, err := hunkLines(&sgdiff.Hunk{
		OrigStartLine: 1,
		NewStartLine:  1,
		Body:          []byte(" ok\n?what\n"),
	})
	require.ErrorIs(t, err, ErrMalformedPatch)
}

func TestHunkLines_BlankContext(t *testing.T) {
	lines, err := hunkLines(&sgdiff.Hunk{
		OrigStartLine: 3,
		NewStartLine:  4,
		Body:          []byte(" a\n\n+b\n"),
	})
	require.NoError(t, err)
	require.Equal(t, []PatchLine{
		{Type: LineContext, Line: "a", Left: ptr(3), Right: ptr(4)},
		{Type: LineContext, Line: "", Left: ptr(4), Right: ptr(5)},
		{Type: LineAdded, Line: "+b", Right: ptr(6)},
	}, lines)
}
