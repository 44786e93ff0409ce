// Package conflict derives per-path three-way presence during a merge or rebase,
// the hint shown for each path, and whether the path is still conflicted.
package conflict

import "sort"

// Presence records which of the three merge trees contain a path.
type Presence struct {
	Ancestor bool `json:"ancestor"`
	Ours     bool `json:"ours"`
	Theirs   bool `json:"theirs"`
}

// BuildPresence unions the three path lists into one presence record per path.
// Flags for lists that do not mention a path stay false.
func BuildPresence(ancestor, ours, theirs []string) map[string]Presence {
	out := make(map[string]Presence, len(ancestor)+len(ours)+len(theirs))

	for _, p := range ancestor {
		e := out[p]
		e.Ancestor = true
		out[p] = e
	}
	for _, p := range ours {
		e := out[p]
		e.Ours = true
		out[p] = e
	}
	for _, p := range theirs {
		e := out[p]
		e.Theirs = true
		out[p] = e
	}
	return out
}

// SortedPaths returns the keys of a presence map in lexical order.
func SortedPaths(presence map[string]Presence) []string {
	paths := make([]string, 0, len(presence))
	for p := range presence {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
