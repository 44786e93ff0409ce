package conflict

import (
	"fmt"
	"strings"
)

// Marker is the line prefix git writes at the start of an unresolved region.
const Marker = "<<<<<<<"

// State is the conflict state of a path.
type State int

const (
	// StateUnknown is the state before any presence or content snapshot exists.
	// Classify never returns it.
	StateUnknown State = iota
	StateConflicted
	StateResolved
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateConflicted:
		return "conflicted"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Classify returns the conflict state of a path from its presence and current content.
// A deletion on either side is always a conflict. Otherwise the path is conflicted
// while any line of content starts with Marker.
func Classify(p Presence, content string) State {
	if !p.Ours || !p.Theirs {
		return StateConflicted
	}
	if HasConflictMarker(content) {
		return StateConflicted
	}
	return StateResolved
}

// HasConflictMarker reports whether any line of content starts with Marker.
func HasConflictMarker(content string) bool {
	for len(content) > 0 {
		line := content
		if i := strings.IndexByte(content, '\n'); i >= 0 {
			line, content = content[:i], content[i+1:]
		} else {
			content = ""
		}
		if strings.HasPrefix(line, Marker) {
			return true
		}
	}
	return false
}

// Entry is the classification of one path.
type Entry struct {
	Path     string   `json:"path"`
	Presence Presence `json:"presence"`
	Hint     string   `json:"hint"`
	State    State    `json:"state"`
}

// ContentFunc returns the current content of path.
type ContentFunc func(path string) (string, error)

// Entries classifies every path of presence in lexical path order.
// content is only consulted for paths present on both sides.
func Entries(presence map[string]Presence, content ContentFunc) ([]Entry, error) {
	paths := SortedPaths(presence)
	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		p := presence[path]
		e := Entry{Path: path, Presence: p, Hint: Hint(p)}

		if p.Ours && p.Theirs {
			text, err := content(path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			e.State = Classify(p, text)
		} else {
			e.State = Classify(p, "")
		}
		entries = append(entries, e)
	}
	return entries, nil
}
