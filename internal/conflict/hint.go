package conflict

import "fmt"

const (
	verbModified = "modified"
	verbAdded    = "added"
	verbDeleted  = "deleted"
)

// Hint describes what each side did to the file.
//
// The "You" clause takes the theirs-derived verb and the "They" clause the
// ours-derived verb. UI copy depends on this exact phrasing.
func Hint(p Presence) string {
	defaultVerb := verbAdded
	if p.Ancestor {
		defaultVerb = verbModified
	}

	oursVerb := defaultVerb
	if !p.Ours {
		oursVerb = verbDeleted
	}
	theirsVerb := defaultVerb
	if !p.Theirs {
		theirsVerb = verbDeleted
	}

	return fmt.Sprintf("You have %s this file, They have %s this file.", theirsVerb, oursVerb)
}
