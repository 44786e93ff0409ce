// Package sections groups classified unified-diff lines into contiguous display
// sections, and adapts unified diff text into the classified line records it groups.
package sections

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLineType indicates a patch line whose type is not added, removed, or context.
	ErrUnknownLineType = errors.New("unknown patch line type")

	// ErrMalformedPatch indicates unified diff text that could not be parsed.
	ErrMalformedPatch = errors.New("malformed patch")
)

// PatchLineType classifies one line of a patch.
type PatchLineType int

const (
	LineContext PatchLineType = iota // ' ' prefix - unchanged line
	LineAdded                        // '+' prefix - added line
	LineRemoved                      // '-' prefix - removed line
)

// String returns the wire name of the line type.
func (t PatchLineType) String() string {
	switch t {
	case LineContext:
		return "context"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return fmt.Sprintf("PatchLineType(%d)", int(t))
	}
}

// Valid reports whether t is one of the known line types.
func (t PatchLineType) Valid() bool {
	return t == LineContext || t == LineAdded || t == LineRemoved
}

// MarshalText implements encoding.TextMarshaler.
func (t PatchLineType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLineType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PatchLineType) UnmarshalText(text []byte) error {
	parsed, err := ParsePatchLineType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParsePatchLineType parses "added", "removed", or "context".
func ParsePatchLineType(s string) (PatchLineType, error) {
	switch s {
	case "context":
		return LineContext, nil
	case "added":
		return LineAdded, nil
	case "removed":
		return LineRemoved, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLineType, s)
	}
}

// PatchLine is one classified line produced by a unified diff generator.
// Added and removed lines still carry their leading '+' or '-'.
type PatchLine struct {
	Type  PatchLineType `json:"type"`
	Line  string        `json:"line"`
	Left  *int          `json:"left,omitempty"`  // line number in the old file
	Right *int          `json:"right,omitempty"` // line number in the new file
}

// DisplayLine is one line of a Section ready for rendering.
type DisplayLine struct {
	Content          string `json:"content"`
	BeforeLineNumber *int   `json:"beforeLineNumber,omitempty"`
	AfterLineNumber  *int   `json:"afterLineNumber,omitempty"`
}

// Section is a maximal run of patch lines sharing one type.
type Section struct {
	Type  PatchLineType `json:"sectionType"`
	Lines []DisplayLine `json:"lines"`
}

// FilePatch holds the classified lines for one file of a multi-file diff.
type FilePatch struct {
	OldPath string
	NewPath string
	Lines   []PatchLine
}

// Path returns the path to display for the file, preferring the new side.
func (f FilePatch) Path() string {
	if f.NewPath == "" || f.NewPath == "/dev/null" {
		return f.OldPath
	}
	return f.NewPath
}
