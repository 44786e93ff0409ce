package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span names.
const (
	SpanDiffFile  = "review.diff_file"
	SpanDiffFiles = "review.diff_files"
	SpanSections  = "review.sections"
	SpanConflicts = "review.conflicts"
	SpanReadBlob  = "git.read_blob"
)

// Span attribute keys.
const (
	AttrRunID     = "run.id"
	AttrPath      = "file.path"
	AttrOldRef    = "ref.old"
	AttrNewRef    = "ref.new"
	AttrRef       = "ref.name"
	AttrFileCount = "file.count"
	AttrBytes     = "file.bytes"

	AttrBlocks   = "diff.blocks"
	AttrAdded    = "diff.lines_added"
	AttrRemoved  = "diff.lines_removed"
	AttrSections = "sections.count"
	AttrLines    = "sections.lines"

	AttrConflicted = "conflict.conflicted"
	AttrResolved   = "conflict.resolved"

	AttrCacheHit = "cache.hit"

	AttrErrorMessage = "error.message"
)

// Event names.
const (
	EventFileSkipped = "file.skipped"
	EventCacheMiss   = "cache.miss"
)

// Start opens an internal span. A nil tracer yields a no-op span.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records the outcome of span and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
