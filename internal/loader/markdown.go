package loader

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/htmlpost"
	"git.home.luguber.info/inful/docpublish/internal/render"
)

// markdownLoader loads conceptual content. Frontmatter is already split
// off; raw is the markdown body only.
type markdownLoader struct {
	converter render.MarkdownConverter
	bookmarks render.BookmarkValidator
}

func (l *markdownLoader) load(ctx context.Context, doc document.SourceDocument, raw []byte, authorMetadata map[string]any, errs *berrors.List) (document.Model, error) {
	if line, found := findConflictMarker(raw); found {
		// Collected, not thrown: conversion still runs so the report for
		// this file stays complete.
		errs.Add(berrors.ContentError(fmt.Sprintf("unresolved merge conflict marker at line %d", line)))
	}

	converted, convErrs := l.converter.Convert(ctx, raw)
	for _, err := range convErrs {
		errs.Add(berrors.WrapParse(err, "markdown conversion failed"))
	}

	processed, err := htmlpost.Process(converted, doc.Locale)
	if err != nil {
		return nil, berrors.InternalError(err, "html post-processing failed")
	}

	title, rawTitle, hasHeading := htmlpost.ExtractTitle(processed.HTML)
	if !hasHeading {
		// Collected even when author metadata supplies a title: the missing
		// heading is a content defect independent of title resolution.
		errs.Add(berrors.ContentError("page has no heading to derive a title from"))
	}
	if declared, ok := authorMetadata[document.KeyTitle].(string); ok && declared != "" {
		title = declared
	}

	l.bookmarks.RegisterBookmarks(doc.FilePath, processed.Bookmarks)

	return document.NewConceptual(processed.HTML, processed.WordCount, title, rawTitle), nil
}

// findConflictMarker reports the first unresolved merge conflict marker
// outside fenced code blocks.
func findConflictMarker(raw []byte) (line int, found bool) {
	inFence := false
	for i, text := range strings.Split(string(raw), "\n") {
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(text, "<<<<<<<") || strings.HasPrefix(text, ">>>>>>>") || text == "=======" {
			return i + 1, true
		}
	}
	return 0, false
}
