package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mergelens/internal/conflict"
	"github.com/zjrosen/mergelens/internal/git"
	"github.com/zjrosen/mergelens/internal/log"
	"github.com/zjrosen/mergelens/internal/review"
)

var (
	conflictsWatch bool
	conflictsJSON  bool
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Classify the unmerged paths of an in-progress merge",
	Long: `List every unmerged path of the current merge as conflicted or resolved,
with a hint describing what each side did to the file.

A path deleted on either side is always conflicted. A path present on both sides
is conflicted while it still contains a "<<<<<<<" marker line.

With --watch the list is refreshed whenever one of the files or the git index
changes, so git add and git rm show up too. Stop with Ctrl-C.

Examples:
  mergelens conflicts
  mergelens conflicts --watch
  mergelens conflicts --json | jq '.[] | select(.state == "conflicted") | .path'`,
	Args: cobra.NoArgs,
	RunE: runConflicts,
}

func init() {
	conflictsCmd.Flags().BoolVarP(&conflictsWatch, "watch", "w", false, "re-classify when files change")
	conflictsCmd.Flags().BoolVar(&conflictsJSON, "json", false, "print JSON")
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, _ []string) error {
	dir, err := currentDir()
	if err != nil {
		return err
	}
	// unmerged paths are relative to the repository root
	root, err := git.NewRealExecutor(dir).GetRepoRoot()
	if err != nil {
		if errors.Is(err, git.ErrNotGitRepo) {
			return fmt.Errorf("mergelens conflicts must be run inside a git repository")
		}
		return err
	}

	svc, shutdown, err := newService(root)
	if err != nil {
		return err
	}
	defer shutdown()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	entries, err := svc.Conflicts(ctx)
	if err != nil {
		if errors.Is(err, git.ErrNotInMerge) {
			return fmt.Errorf("no merge or rebase in progress")
		}
		return err
	}
	if err := printConflicts(out, entries); err != nil {
		return err
	}

	if !conflictsWatch || len(entries) == 0 {
		return nil
	}
	return watchConflicts(ctx, out, svc, root, entries)
}

func printConflicts(out io.Writer, entries []conflict.Entry) error {
	if conflictsJSON {
		if entries == nil {
			entries = []conflict.Entry{}
		}
		return writeJSON(out, entries)
	}
	renderConflicts(out, newStyles(out), entries)
	return nil
}

func watchConflicts(ctx context.Context, out io.Writer, svc *review.Service, root string, entries []conflict.Entry) error {
	paths := review.ConflictPaths(entries)
	for i, p := range paths {
		paths[i] = filepath.Join(root, p)
	}

	w, onChange, err := startWatcher(git.NewRealExecutor(root), paths)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-onChange:
			entries, err := svc.Conflicts(ctx)
			if errors.Is(err, git.ErrNotInMerge) {
				_, _ = fmt.Fprintln(out, "merge finished")
				return nil
			}
			if err != nil {
				log.ErrorErr(log.CatWatcher, "re-classifying conflicts failed", err)
				_, _ = fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			_, _ = fmt.Fprintf(out, "\n-- %s --\n", time.Now().Format(time.TimeOnly))
			if err := printConflicts(out, entries); err != nil {
				return err
			}
		}
	}
}
