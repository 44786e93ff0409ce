package sections

import (
	"bytes"
	"fmt"
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// ParsePatch parses multi-file unified diff output (e.g. `git diff`) into classified
// line records, one FilePatch per file.
//
// Added and removed records keep their '+' and '-' prefix; context records lose the
// leading space. Line numbers are derived from each hunk header. "\ No newline at end
// of file" markers are dropped.
func ParsePatch(raw []byte) ([]FilePatch, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	fileDiffs, err := sgdiff.ParseMultiFileDiff(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPatch, err)
	}

	files := make([]FilePatch, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		fp := FilePatch{
			OldPath: trimSidePrefix(fd.OrigName, "a/"),
			NewPath: trimSidePrefix(fd.NewName, "b/"),
		}
		for _, h := range fd.Hunks {
			lines, err := hunkLines(h)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fp.Path(), err)
			}
			fp.Lines = append(fp.Lines, lines...)
		}
		files = append(files, fp)
	}
	return files, nil
}

func hunkLines(h *sgdiff.Hunk) ([]PatchLine, error) {
	oldLn := int(h.OrigStartLine)
	newLn := int(h.NewStartLine)

	body := strings.ReplaceAll(string(h.Body), "\r\n", "\n")
	body = strings.TrimSuffix(body, "\n")
	if body == "" {
		return nil, nil
	}

	var out []PatchLine
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			// Some tools strip the trailing space of blank context lines.
			out = append(out, PatchLine{Type: LineContext, Line: "", Left: linePtr(oldLn), Right: linePtr(newLn)})
			oldLn++
			newLn++
			continue
		}

		switch line[0] {
		case ' ':
			out = append(out, PatchLine{Type: LineContext, Line: line[1:], Left: linePtr(oldLn), Right: linePtr(newLn)})
			oldLn++
			newLn++
		case '-':
			out = append(out, PatchLine{Type: LineRemoved, Line: line, Left: linePtr(oldLn)})
			oldLn++
		case '+':
			out = append(out, PatchLine{Type: LineAdded, Line: line, Right: linePtr(newLn)})
			newLn++
		case '\\':
			continue
		default:
			return nil, fmt.Errorf("%w: unexpected hunk line prefix %q", ErrMalformedPatch, line)
		}
	}
	return out, nil
}

func trimSidePrefix(name, prefix string) string {
	name = strings.TrimSpace(name)
	if name == "/dev/null" {
		return name
	}
	return strings.TrimPrefix(name, prefix)
}

func linePtr(n int) *int {
	v := n
	return &v
}
