package linediff

import (
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultTimeout matches the diffmatchpatch default deadline.
const DefaultTimeout = time.Second

type options struct {
	cleanup Cleanup
	timeout time.Duration
}

// Option configures CharDiff and LineDiff.
type Option func(*options)

// WithCleanup sets the cleanup pass. Cleanup moves block boundaries but never
// changes the text either side reconstructs to.
func WithCleanup(c Cleanup) Option {
	return func(o *options) { o.cleanup = c }
}

// WithTimeout bounds the bisection search. Zero means no deadline. When the deadline
// passes the result is still a valid diff, just a less minimal one.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func buildOptions(opts []Option) options {
	o := options{cleanup: CleanupNone, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CharDiff diffs text1 against text2 rune by rune.
//
// The underlying algorithm is Myers' bisection as implemented by diffmatchpatch,
// after trimming common prefix and suffix. When the two texts share no runes the
// result is a single Delete of text1 followed by a single Insert of text2.
func CharDiff(text1, text2 string, opts ...Option) []Diff {
	o := buildOptions(opts)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = o.timeout

	diffs := dmp.DiffMain(text1, text2, false)
	switch o.cleanup {
	case CleanupSemantic:
		diffs = dmp.DiffCleanupSemantic(diffs)
	case CleanupEfficiency:
		diffs = dmp.DiffCleanupEfficiency(diffs)
	case CleanupMerge:
		diffs = dmp.DiffCleanupMerge(diffs)
	}

	out := make([]Diff, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		out = append(out, Diff{Op: fromOperation(d.Type), Text: d.Text})
	}
	return out
}

func fromOperation(op diffmatchpatch.Operation) Op {
	switch op {
	case diffmatchpatch.DiffInsert:
		return OpInsert
	case diffmatchpatch.DiffDelete:
		return OpDelete
	default:
		return OpEqual
	}
}
