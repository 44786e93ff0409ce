// Package linediff computes line-granularity diffs by encoding each line as a single
// rune and running a character-level sequence diff over the encoded text.
package linediff

// Op is the kind of a diff block.
type Op int

const (
	OpEqual  Op = iota // present in both versions
	OpInsert           // present only in the new version
	OpDelete           // present only in the old version
	OpEdit             // reserved; never produced by LineDiff
)

// String returns a human-readable name for the op.
func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Prefix returns the unified diff marker for the op.
func (o Op) Prefix() string {
	switch o {
	case OpInsert:
		return "+"
	case OpDelete:
		return "-"
	default:
		return " "
	}
}

// Diff is one run of characters from CharDiff.
type Diff struct {
	Op   Op
	Text string
}

// Block is a run of lines sharing one op.
type Block struct {
	Op    Op       `json:"op"`
	Lines []string `json:"lines"`
}

// Cleanup selects the post-processing pass applied to a character diff.
type Cleanup int

const (
	// CleanupNone keeps the raw Myers output.
	CleanupNone Cleanup = iota
	// CleanupSemantic folds trivial equalities into larger, human-readable edits.
	CleanupSemantic
	// CleanupEfficiency folds equalities that cost more to render than to re-state.
	CleanupEfficiency
	// CleanupMerge only merges adjacent runs of the same op.
	CleanupMerge
)

// String returns the config name of the cleanup mode.
func (c Cleanup) String() string {
	switch c {
	case CleanupNone:
		return "none"
	case CleanupSemantic:
		return "semantic"
	case CleanupEfficiency:
		return "efficiency"
	case CleanupMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// ParseCleanup converts a config value into a Cleanup. Empty means CleanupNone.
func ParseCleanup(s string) (Cleanup, bool) {
	switch s {
	case "", "none":
		return CleanupNone, true
	case "semantic":
		return CleanupSemantic, true
	case "efficiency":
		return CleanupEfficiency, true
	case "merge":
		return CleanupMerge, true
	default:
		return CleanupNone, false
	}
}
