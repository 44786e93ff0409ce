package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/zjrosen/mergelens/internal/log"
)

// Git-specific errors.
var (
	// ErrNotGitRepo indicates the directory is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrNotInMerge indicates no merge, rebase, cherry-pick or revert is in progress.
	ErrNotInMerge = errors.New("no merge or rebase in progress")

	// ErrPathNotFound indicates the path does not exist at the requested ref.
	ErrPathNotFound = errors.New("path not found")

	// ErrUnknownRevision indicates the ref could not be resolved.
	ErrUnknownRevision = errors.New("unknown revision")
)

// Compile-time check that RealExecutor implements Executor.
var _ Executor = (*RealExecutor)(nil)

// RealExecutor implements Executor by executing actual git commands.
type RealExecutor struct {
	workDir string
}

// NewRealExecutor creates a new RealExecutor.
func NewRealExecutor(workDir string) *RealExecutor {
	return &RealExecutor{workDir: workDir}
}

// runGit executes a git command and returns an error if it fails.
func (e *RealExecutor) runGit(args ...string) error {
	_, err := e.runGitOutput(args...)
	return err
}

// runGitOutput executes a git command and returns trimmed stdout.
func (e *RealExecutor) runGitOutput(args ...string) (string, error) {
	out, err := e.runGitRaw(context.Background(), args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// runGitRaw executes a git command and returns stdout untouched. File content and
// patches keep their trailing newlines.
func (e *RealExecutor) runGitRaw(ctx context.Context, args ...string) (string, error) {
	//nolint:gosec // G204: args come from controlled sources
	cmd := exec.CommandContext(ctx, "git", args...)
	if e.workDir != "" {
		cmd.Dir = e.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug(log.CatGit, "running git", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), ctxErr)
		}
		stderrStr := strings.TrimSpace(stderr.String())
		// Parse git-specific errors
		if stderrStr != "" {
			return "", parseGitError(stderrStr, err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	return stdout.String(), nil
}

// parseGitError converts git stderr messages to specific error types.
func parseGitError(stderr string, originalErr error) error {
	stderrLower := strings.ToLower(stderr)

	// Not a git repository
	if strings.Contains(stderrLower, "not a git repository") {
		return fmt.Errorf("%w: %s", ErrNotGitRepo, stderr)
	}

	// fatal: path 'x' does not exist in 'HEAD'
	// fatal: path 'x' exists on disk, but not in 'HEAD'
	if strings.Contains(stderrLower, "does not exist in") ||
		strings.Contains(stderrLower, "exists on disk, but not in") {
		return fmt.Errorf("%w: %s", ErrPathNotFound, stderr)
	}

	// fatal: invalid object name 'x'.
	// fatal: ambiguous argument 'x': unknown revision or path not in the working tree.
	if strings.Contains(stderrLower, "invalid object name") ||
		strings.Contains(stderrLower, "unknown revision") {
		return fmt.Errorf("%w: %s", ErrUnknownRevision, stderr)
	}

	return fmt.Errorf("git error: %s: %w", stderr, originalErr)
}

// IsGitRepo checks if the current directory is a git repository.
func (e *RealExecutor) IsGitRepo() bool {
	err := e.runGit("rev-parse", "--git-dir")
	return err == nil
}

// GetRepoRoot returns the root directory of the git repository.
func (e *RealExecutor) GetRepoRoot() (string, error) {
	return e.runGitOutput("rev-parse", "--show-toplevel")
}

// GitPath returns the path of name inside the git directory, such as "index" or "HEAD".
// Linked worktrees resolve to their own files.
func (e *RealExecutor) GitPath(name string) (string, error) {
	p, err := e.runGitOutput("rev-parse", "--git-path", name)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) && e.workDir != "" {
		p = filepath.Join(e.workDir, p)
	}
	return p, nil
}

// inProgressHeads are the refs git writes while a merge-like operation waits on conflicts.
var inProgressHeads = []string{"MERGE_HEAD", "REBASE_HEAD", "CHERRY_PICK_HEAD", "REVERT_HEAD"}

// IsMerging reports whether a merge, rebase, cherry-pick or revert is in progress.
func (e *RealExecutor) IsMerging() (bool, error) {
	if !e.IsGitRepo() {
		return false, ErrNotGitRepo
	}
	for _, head := range inProgressHeads {
		// rev-parse -q --verify exits non-zero without stderr when the ref is missing
		if err := e.runGit("rev-parse", "-q", "--verify", head); err == nil {
			return true, nil
		}
	}
	return false, nil
}

// ShowFile returns the content of path at ref, or in the working tree when ref is empty.
func (e *RealExecutor) ShowFile(ctx context.Context, ref, path string) (string, error) {
	if ref == "" {
		full := path
		if !filepath.IsAbs(full) && e.workDir != "" {
			full = filepath.Join(e.workDir, path)
		}
		data, err := os.ReadFile(full) //nolint:gosec // G304: path is the file under review
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrPathNotFound, path)
			}
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	}

	// ./ makes the path relative to workDir rather than the repository root
	return e.runGitRaw(ctx, "show", ref+":./"+filepath.ToSlash(path))
}

// GetDiff returns the unified diff of ref against the working tree.
func (e *RealExecutor) GetDiff(ctx context.Context, ref string, paths ...string) (string, error) {
	if ref == "" {
		ref = "HEAD"
	}
	args := []string{"diff", "--no-color", "--no-ext-diff", ref}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	return e.runGitRaw(ctx, args...)
}

// ListUnmergedStages returns unmerged paths grouped by index stage.
// Unmerged index entries are reported whatever operation left them. With none,
// ErrNotInMerge is returned unless a merge-like operation is still in progress.
func (e *RealExecutor) ListUnmergedStages(ctx context.Context) (map[Stage][]string, error) {
	output, err := e.runGitRaw(ctx, "ls-files", "-u", "-z")
	if err != nil {
		if errors.Is(err, ErrNotGitRepo) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list unmerged files: %w", err)
	}
	if output != "" {
		return parseUnmergedStages(output)
	}

	merging, err := e.IsMerging()
	if err != nil {
		return nil, err
	}
	if !merging {
		return nil, ErrNotInMerge
	}
	return parseUnmergedStages("")
}

// parseUnmergedStages parses NUL-terminated git ls-files -u -z output.
// Format of each record:
//
//	<mode> SP <object> SP <stage> TAB <path> NUL
//
// Paths within each stage are sorted and de-duplicated.
func parseUnmergedStages(output string) (map[Stage][]string, error) {
	stages := map[Stage][]string{
		StageAncestor: nil,
		StageOurs:     nil,
		StageTheirs:   nil,
	}

	for record := range strings.SplitSeq(output, "\x00") {
		if record == "" {
			continue
		}

		meta, path, found := strings.Cut(record, "\t")
		if !found || path == "" {
			return nil, fmt.Errorf("malformed ls-files record %q", record)
		}

		fields := strings.Fields(meta)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed ls-files record %q", record)
		}

		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("malformed stage in ls-files record %q: %w", record, err)
		}

		stage := Stage(n)
		switch stage {
		case StageAncestor, StageOurs, StageTheirs:
			stages[stage] = append(stages[stage], path)
		default:
			// stage 0 entries are merged and do not belong in this listing
			continue
		}
	}

	for stage, paths := range stages {
		sort.Strings(paths)
		stages[stage] = dedupeSorted(paths)
	}

	return stages, nil
}

func dedupeSorted(paths []string) []string {
	if len(paths) < 2 {
		return paths
	}
	out := paths[:1]
	for _, p := range paths[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
