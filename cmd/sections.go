package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mergelens/internal/review"
)

var (
	sectionsRef   string
	sectionsStdin bool
	sectionsJSON  bool
)

var sectionsCmd = &cobra.Command{
	Use:   "sections [paths...]",
	Short: "Group a unified diff into runs of context, removed and added lines",
	Long: `Group the working tree diff against a ref into display sections.

Each section is a maximal run of lines of one kind, with the old and new line
numbers of every line. With --stdin the patch is read from standard input
instead of running git diff.

Examples:
  mergelens sections
  mergelens sections --ref main internal/
  git diff HEAD~3 | mergelens sections --stdin --json`,
	RunE: runSections,
}

func init() {
	sectionsCmd.Flags().StringVar(&sectionsRef, "ref", "", "ref to diff the working tree against (default HEAD)")
	sectionsCmd.Flags().BoolVar(&sectionsStdin, "stdin", false, "read a unified diff from stdin")
	sectionsCmd.Flags().BoolVar(&sectionsJSON, "json", false, "print JSON")
	sectionsCmd.MarkFlagsMutuallyExclusive("stdin", "ref")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	dir, err := currentDir()
	if err != nil {
		return err
	}
	svc, shutdown, err := newService(dir)
	if err != nil {
		return err
	}
	defer shutdown()

	var files []review.FileSections
	if sectionsStdin {
		if len(args) > 0 {
			return fmt.Errorf("paths cannot be combined with --stdin")
		}
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		files, err = svc.SectionsFromPatch(cmd.Context(), raw)
		if err != nil {
			return err
		}
	} else {
		files, err = svc.Sections(cmd.Context(), sectionsRef, args...)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if sectionsJSON {
		if files == nil {
			files = []review.FileSections{}
		}
		return writeJSON(out, files)
	}
	renderSections(out, newStyles(out), files)
	return nil
}
