// Package review ties the diff, section and conflict engines to a git repository.
package review

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/mergelens/internal/cachemanager"
	"github.com/zjrosen/mergelens/internal/config"
	"github.com/zjrosen/mergelens/internal/git"
	"github.com/zjrosen/mergelens/internal/tracing"
)

// ErrFileTooLarge is reported for files above diff.max_file_bytes.
var ErrFileTooLarge = errors.New("file too large to diff")

// DefaultOldRef is the ref compared against when a request leaves OldRef empty.
const DefaultOldRef = "HEAD"

// Service runs diffs, section grouping and conflict classification against a repository.
type Service struct {
	git    git.Executor
	cfg    config.Config
	tracer trace.Tracer
	blobs  *cachemanager.ReadThroughCache[string, string, blobRequest]
}

// Option configures a Service.
type Option func(*Service)

// WithTracer sets the tracer used for review spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithBlobCache replaces the default in-memory blob cache.
func WithBlobCache(cache cachemanager.CacheManager[string, string]) Option {
	return func(s *Service) {
		s.blobs = s.newBlobReader(cache)
	}
}

type blobRequest struct {
	ref  string
	path string
}

// New creates a Service. cfg should already be validated.
func New(executor git.Executor, cfg config.Config, opts ...Option) *Service {
	s := &Service{
		git: executor,
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.blobs == nil {
		s.blobs = s.newBlobReader(cachemanager.NewInMemoryCacheManager[string, string](
			"blobs", cfg.Cache.TTL, cachemanager.DefaultCleanupInterval,
		))
	}
	return s
}

func (s *Service) newBlobReader(cache cachemanager.CacheManager[string, string]) *cachemanager.ReadThroughCache[string, string, blobRequest] {
	return cachemanager.NewReadThroughCache(
		cache,
		func(ctx context.Context, req blobRequest) (string, error) {
			span := trace.SpanFromContext(ctx)
			span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, false))
			span.AddEvent(tracing.EventCacheMiss)
			return s.git.ShowFile(ctx, req.ref, req.path)
		},
		!s.cfg.Cache.Enabled,
	)
}

// readBlob returns the content of path at ref. Working-tree reads bypass the cache.
// A path missing at ref reads as absent rather than failing.
func (s *Service) readBlob(ctx context.Context, ref, path string) (content string, found bool, err error) {
	// cache.hit starts true; the loader flips it on a miss.
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanReadBlob,
		runAttr(ctx),
		attribute.String(tracing.AttrPath, path),
		attribute.String(tracing.AttrRef, ref),
		attribute.Bool(tracing.AttrCacheHit, ref != ""),
	)
	if ref == "" {
		content, err = s.git.ShowFile(ctx, "", path)
	} else {
		content, err = s.blobs.Get(ctx, cachemanager.BlobKey(ref, path), blobRequest{ref: ref, path: path}, s.cfg.Cache.TTL)
	}
	if errors.Is(err, git.ErrPathNotFound) {
		tracing.End(span, nil)
		return "", false, nil
	}
	tracing.End(span, err)
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}

func runAttr(ctx context.Context) attribute.KeyValue {
	return attribute.String(tracing.AttrRunID, RunID(ctx))
}
