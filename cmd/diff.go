package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mergelens/internal/git"
	"github.com/zjrosen/mergelens/internal/review"
)

var (
	diffOldRef    string
	diffNewRef    string
	diffFiles     bool
	diffJSON      bool
	diffHighlight bool
	diffWatch     bool
)

// errFilesFailed makes the exit status non-zero when any file in a batch fails.
var errFilesFailed = errors.New("some files could not be diffed")

var diffCmd = &cobra.Command{
	Use:   "diff <path>... | diff --files OLD NEW",
	Short: "Show line diffs between two versions of files",
	Long: `Show the line diff of each path between two refs.

--old defaults to HEAD and --new defaults to the working tree. Paths are relative
to the current directory. A file missing on one side is shown as fully added or
deleted. Files larger than diff.max_file_bytes are skipped.

Examples:
  # Working tree against HEAD
  mergelens diff internal/app.go

  # Between two refs
  mergelens diff --old main --new feature cmd/root.go cmd/diff.go

  # Two files outside git
  mergelens diff --files before.txt after.txt

  # Re-diff on every save, commit or git add
  mergelens diff --watch internal/app.go

  # Color unchanged lines by language
  mergelens diff --highlight main.go

  # Machine-readable output
  mergelens diff --json main.go | jq '.[0].blocks'`,
	Args: func(cmd *cobra.Command, args []string) error {
		if diffFiles {
			return cobra.ExactArgs(2)(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffOldRef, "old", "", "old ref (default HEAD)")
	diffCmd.Flags().StringVar(&diffNewRef, "new", "", "new ref (default working tree)")
	diffCmd.Flags().BoolVar(&diffFiles, "files", false, "diff two files on disk instead of git paths")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "print JSON")
	diffCmd.Flags().BoolVar(&diffHighlight, "highlight", false, "syntax-highlight unchanged lines")
	diffCmd.Flags().BoolVarP(&diffWatch, "watch", "w", false, "re-diff when the files or the git index change")
	diffCmd.MarkFlagsMutuallyExclusive("json", "highlight")
	diffCmd.MarkFlagsMutuallyExclusive("files", "watch")
	diffCmd.MarkFlagsMutuallyExclusive("files", "old")
	diffCmd.MarkFlagsMutuallyExclusive("files", "new")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	dir, err := currentDir()
	if err != nil {
		return err
	}
	svc, shutdown, err := newService(dir)
	if err != nil {
		return err
	}
	defer shutdown()

	out := cmd.OutOrStdout()
	st := newStyles(out)
	st.highlight = diffHighlight

	if diffFiles {
		oldText, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		newText, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}
		d, err := svc.DiffText(cmd.Context(), args[1], string(oldText), string(newText))
		if err != nil {
			return err
		}
		if diffJSON {
			return writeJSON(out, []review.FileDiff{d})
		}
		renderFileDiff(out, st, d)
		return nil
	}

	reqs := make([]review.FileRequest, len(args))
	for i, path := range args {
		reqs[i] = review.FileRequest{Path: path, OldRef: diffOldRef, NewRef: diffNewRef}
	}
	results := svc.DiffFiles(cmd.Context(), reqs)

	err = printDiffResults(cmd, st, results)
	if !diffWatch {
		return err
	}
	if err != nil && !errors.Is(err, errFilesFailed) {
		return err
	}
	return watchDiffs(cmd, st, svc, dir, reqs)
}

// watchDiffs re-runs reqs whenever a file or the repository state changes.
// Cached blobs are dropped first because HEAD and branch names may have moved.
func watchDiffs(cmd *cobra.Command, st styles, svc *review.Service, dir string, reqs []review.FileRequest) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	paths := make([]string, len(reqs))
	for i, req := range reqs {
		paths[i] = filepath.Join(dir, req.Path)
	}

	w, onChange, err := startWatcher(git.NewRealExecutor(dir), paths)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-onChange:
			if err := svc.InvalidateBlobs(ctx, reqs...); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "\n-- %s --\n", time.Now().Format(time.TimeOnly))
			err := printDiffResults(cmd, st, svc.DiffFiles(ctx, reqs))
			if err != nil && !errors.Is(err, errFilesFailed) {
				return err
			}
		}
	}
}

type diffResultJSON struct {
	review.FileDiff
	Error string `json:"error,omitempty"`
}

func printDiffResults(cmd *cobra.Command, st styles, results []review.FileResult) error {
	out := cmd.OutOrStdout()
	failed := false

	if diffJSON {
		payload := make([]diffResultJSON, len(results))
		for i, r := range results {
			payload[i] = diffResultJSON{FileDiff: r.Diff}
			payload[i].Path = r.Request.Path
			if r.Err != nil {
				payload[i].Error = r.Err.Error()
				failed = true
			}
		}
		if err := writeJSON(out, payload); err != nil {
			return err
		}
	} else {
		for i, r := range results {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			if r.Err != nil {
				renderFileError(cmd.ErrOrStderr(), newStyles(cmd.ErrOrStderr()), r.Request.Path, r.Err)
				failed = true
				continue
			}
			renderFileDiff(out, st, r.Diff)
		}
	}

	if failed {
		return errFilesFailed
	}
	return nil
}
