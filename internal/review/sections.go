package review

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/mergelens/internal/log"
	"github.com/zjrosen/mergelens/internal/sections"
	"github.com/zjrosen/mergelens/internal/tracing"
)

// FileSections is the grouped display of one file's patch.
type FileSections struct {
	Path     string             `json:"path"`
	Sections []sections.Section `json:"sections"`
}

// Sections groups the diff of the working tree against ref, limited to paths if given.
func (s *Service) Sections(ctx context.Context, ref string, paths ...string) ([]FileSections, error) {
	ctx = WithRunID(ctx)
	raw, err := s.git.GetDiff(ctx, ref, paths...)
	if err != nil {
		log.ErrorErr(log.CatReview, "git diff failed", err, "ref", ref)
		return nil, fmt.Errorf("diffing against %s: %w", refName(ref), err)
	}
	return s.SectionsFromPatch(ctx, []byte(raw))
}

// SectionsFromPatch groups every file of a unified diff.
func (s *Service) SectionsFromPatch(ctx context.Context, raw []byte) ([]FileSections, error) {
	ctx = WithRunID(ctx)
	_, span := tracing.Start(ctx, s.tracer, tracing.SpanSections,
		runAttr(ctx),
		attribute.Int(tracing.AttrBytes, len(raw)),
	)

	out, err := groupPatch(raw)
	if err == nil {
		total, lines := 0, 0
		for _, f := range out {
			total += len(f.Sections)
			lines += sections.LineCount(f.Sections)
		}
		span.SetAttributes(
			attribute.Int(tracing.AttrFileCount, len(out)),
			attribute.Int(tracing.AttrSections, total),
			attribute.Int(tracing.AttrLines, lines),
		)
		log.Debug(log.CatSections, "grouped sections", "run", RunID(ctx), "files", len(out), "sections", total, "lines", lines)
	}
	tracing.End(span, err)
	return out, err
}

func groupPatch(raw []byte) ([]FileSections, error) {
	patches, err := sections.ParsePatch(raw)
	if err != nil {
		return nil, err
	}

	out := make([]FileSections, 0, len(patches))
	for _, p := range patches {
		secs, err := sections.GroupSections(p.Lines)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Path(), err)
		}
		out = append(out, FileSections{Path: p.Path(), Sections: secs})
	}
	return out, nil
}
