package review

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/mergelens/internal/cachemanager"
	"github.com/zjrosen/mergelens/internal/git"
	"github.com/zjrosen/mergelens/internal/linediff"
	"github.com/zjrosen/mergelens/internal/log"
	"github.com/zjrosen/mergelens/internal/tracing"
)

// FileRequest names a file and the two refs to compare.
// An empty OldRef means HEAD; an empty NewRef means the working tree.
type FileRequest struct {
	Path   string `json:"path"`
	OldRef string `json:"oldRef,omitempty"`
	NewRef string `json:"newRef,omitempty"`
}

// FileDiff is the line diff of one file.
type FileDiff struct {
	Path    string           `json:"path"`
	Blocks  []linediff.Block `json:"blocks"`
	Added   int              `json:"added"`
	Removed int              `json:"removed"`
}

// FileResult pairs a request with its diff or the error that prevented it.
type FileResult struct {
	Request FileRequest
	Diff    FileDiff
	Err     error
}

// DiffFile diffs one file between two refs. A file missing on one side diffs
// against empty content; missing on both sides is git.ErrPathNotFound.
func (s *Service) DiffFile(ctx context.Context, req FileRequest) (FileDiff, error) {
	ctx = WithRunID(ctx)
	oldRef := req.OldRef
	if oldRef == "" {
		oldRef = DefaultOldRef
	}

	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanDiffFile,
		runAttr(ctx),
		attribute.String(tracing.AttrPath, req.Path),
		attribute.String(tracing.AttrOldRef, oldRef),
		attribute.String(tracing.AttrNewRef, req.NewRef),
	)

	diff, err := s.diffFile(ctx, span, req.Path, oldRef, req.NewRef)
	tracing.End(span, err)
	if err != nil {
		log.ErrorErr(log.CatReview, "diff failed", err, "path", req.Path, "run", RunID(ctx))
	}
	return diff, err
}

func (s *Service) diffFile(ctx context.Context, span trace.Span, path, oldRef, newRef string) (FileDiff, error) {
	oldText, oldFound, err := s.readBlob(ctx, oldRef, path)
	if err != nil {
		return FileDiff{}, fmt.Errorf("reading %s at %s: %w", path, oldRef, err)
	}
	newText, newFound, err := s.readBlob(ctx, newRef, path)
	if err != nil {
		return FileDiff{}, fmt.Errorf("reading %s at %s: %w", path, refName(newRef), err)
	}
	if !oldFound && !newFound {
		return FileDiff{}, fmt.Errorf("%w: %s", git.ErrPathNotFound, path)
	}

	return s.diffText(span, path, oldText, newText)
}

// DiffText diffs two in-memory versions of path with the configured options.
func (s *Service) DiffText(ctx context.Context, path, oldText, newText string) (FileDiff, error) {
	ctx = WithRunID(ctx)
	_, span := tracing.Start(ctx, s.tracer, tracing.SpanDiffFile,
		runAttr(ctx),
		attribute.String(tracing.AttrPath, path),
	)
	diff, err := s.diffText(span, path, oldText, newText)
	tracing.End(span, err)
	return diff, err
}

func (s *Service) diffText(span trace.Span, path, oldText, newText string) (FileDiff, error) {
	size := int64(max(len(oldText), len(newText)))
	if limit := s.cfg.Diff.MaxFileBytes; limit > 0 && size > limit {
		span.AddEvent(tracing.EventFileSkipped, trace.WithAttributes(attribute.Int64(tracing.AttrBytes, size)))
		log.Warn(log.CatDiff, "skipping large file", "path", path, "bytes", size, "limit", limit)
		return FileDiff{}, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, path, size, limit)
	}

	blocks, err := linediff.LineDiffText(oldText, newText, s.cfg.Diff.Options()...)
	if err != nil {
		return FileDiff{}, fmt.Errorf("diffing %s: %w", path, err)
	}

	added, removed := linediff.Stats(blocks)
	span.SetAttributes(
		attribute.Int(tracing.AttrBlocks, len(blocks)),
		attribute.Int(tracing.AttrAdded, added),
		attribute.Int(tracing.AttrRemoved, removed),
	)
	log.Debug(log.CatDiff, "diffed file", "path", path, "blocks", len(blocks), "added", added, "removed", removed)

	return FileDiff{Path: path, Blocks: blocks, Added: added, Removed: removed}, nil
}

// DiffFiles diffs every request in parallel, bounded by diff.concurrency.
// Results are in request order; a failed file does not stop the others.
func (s *Service) DiffFiles(ctx context.Context, reqs []FileRequest) []FileResult {
	ctx = WithRunID(ctx)
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanDiffFiles,
		runAttr(ctx),
		attribute.Int(tracing.AttrFileCount, len(reqs)),
	)
	defer span.End()

	results := make([]FileResult, len(reqs))

	var g errgroup.Group
	limit := s.cfg.Diff.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Request: req, Err: err}
				return nil
			}
			diff, err := s.DiffFile(ctx, req)
			results[i] = FileResult{Request: req, Diff: diff, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info(log.CatReview, "diffed files", "run", RunID(ctx), "files", len(reqs), "failed", failed)

	return results
}

// InvalidateBlobs drops the cached blobs of reqs. Ref names such as HEAD or a branch
// can move between runs, so long-running callers invalidate before diffing again.
func (s *Service) InvalidateBlobs(ctx context.Context, reqs ...FileRequest) error {
	keys := make([]string, 0, 2*len(reqs))
	for _, req := range reqs {
		oldRef := req.OldRef
		if oldRef == "" {
			oldRef = DefaultOldRef
		}
		keys = append(keys, cachemanager.BlobKey(oldRef, req.Path))
		if req.NewRef != "" {
			keys = append(keys, cachemanager.BlobKey(req.NewRef, req.Path))
		}
	}
	if err := s.blobs.Invalidate(ctx, keys...); err != nil {
		return fmt.Errorf("invalidating cached blobs: %w", err)
	}
	log.Debug(log.CatCache, "invalidated blobs", "keys", len(keys))
	return nil
}

func refName(ref string) string {
	if ref == "" {
		return "working tree"
	}
	return ref
}
