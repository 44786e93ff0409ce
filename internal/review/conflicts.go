package review

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/mergelens/internal/conflict"
	"github.com/zjrosen/mergelens/internal/git"
	"github.com/zjrosen/mergelens/internal/log"
	"github.com/zjrosen/mergelens/internal/tracing"
)

// Conflicts classifies every unmerged path of the in-progress merge or rebase.
// Returns git.ErrNotInMerge when there is neither.
func (s *Service) Conflicts(ctx context.Context) ([]conflict.Entry, error) {
	ctx = WithRunID(ctx)
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanConflicts, runAttr(ctx))

	entries, err := s.conflicts(ctx)
	if err == nil {
		conflicted := 0
		for _, e := range entries {
			if e.State == conflict.StateConflicted {
				conflicted++
			}
		}
		span.SetAttributes(
			attribute.Int(tracing.AttrFileCount, len(entries)),
			attribute.Int(tracing.AttrConflicted, conflicted),
			attribute.Int(tracing.AttrResolved, len(entries)-conflicted),
		)
		log.Info(log.CatConflict, "classified conflicts", "run", RunID(ctx), "paths", len(entries), "conflicted", conflicted)
	}
	tracing.End(span, err)
	return entries, err
}

func (s *Service) conflicts(ctx context.Context) ([]conflict.Entry, error) {
	stages, err := s.git.ListUnmergedStages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unmerged paths: %w", err)
	}

	presence := conflict.BuildPresence(
		stages[git.StageAncestor],
		stages[git.StageOurs],
		stages[git.StageTheirs],
	)

	return conflict.Entries(presence, func(path string) (string, error) {
		content, err := s.git.ShowFile(ctx, "", path)
		if errors.Is(err, git.ErrPathNotFound) {
			// removed from the working tree: nothing left to hold markers
			return "", nil
		}
		return content, err
	})
}

// ConflictPaths returns the paths of entries, in order.
func ConflictPaths(entries []conflict.Entry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}
