package git

import "context"

// Stage is an index stage number as reported by git ls-files --stage.
type Stage int

const (
	StageAncestor Stage = 1 // common ancestor
	StageOurs     Stage = 2 // current branch
	StageTheirs   Stage = 3 // branch being merged
)

// String returns the conventional name of the stage.
func (s Stage) String() string {
	switch s {
	case StageAncestor:
		return "ancestor"
	case StageOurs:
		return "ours"
	case StageTheirs:
		return "theirs"
	default:
		return "unknown"
	}
}

// Executor defines the git operations mergelens needs.
// This abstraction allows for easy testing with mock implementations.
type Executor interface {
	IsGitRepo() bool
	GetRepoRoot() (string, error)
	// IsMerging reports whether a merge, rebase, cherry-pick or revert is in progress.
	IsMerging() (bool, error)

	// ShowFile returns the content of path at ref. An empty ref reads the working tree.
	// Returns ErrPathNotFound if the path does not exist at ref.
	ShowFile(ctx context.Context, ref, path string) (string, error)
	// GetDiff returns unified diff output of ref against the working tree, limited to paths
	// when any are given. An empty ref diffs against HEAD.
	GetDiff(ctx context.Context, ref string, paths ...string) (string, error)
	// ListUnmergedStages returns the unmerged paths present at each index stage.
	// Returns ErrNotInMerge when nothing is unmerged and no merge or rebase is in progress.
	ListUnmergedStages(ctx context.Context) (map[Stage][]string, error)
}
