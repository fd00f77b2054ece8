// Package render defines the rendering capability interfaces the pipeline
// consumes. Each output kind is unified behind a small interface so the
// core stays agnostic to which rendering technology backs it.
package render

import "context"

// MarkdownConverter turns authored markdown into an HTML fragment.
// Conversion problems are collected, not thrown.
type MarkdownConverter interface {
	Convert(ctx context.Context, source []byte) (string, []error)
}

// ScriptRenderer runs a data-shaping script producing a plain value from a
// model. Used for structured-content pre-render, template metadata, and the
// mime-specific data transform.
type ScriptRenderer interface {
	RenderObject(ctx context.Context, name string, model map[string]any) (any, []error)
}

// MarkupRenderer renders a named logic-less template into final markup.
type MarkupRenderer interface {
	Render(ctx context.Context, name string, model any) (string, error)
}

// ServerTemplateRenderer renders a legacy server-side template from a
// typed record. Only landing pages use it.
type ServerTemplateRenderer interface {
	Render(ctx context.Context, name string, record any) (string, error)
}

// BookmarkValidator accepts the bookmark anchor set extracted from each
// built page for later cross-reference checking.
type BookmarkValidator interface {
	RegisterBookmarks(filePath string, bookmarks []string)
}

// NoopBookmarkValidator discards registrations.
type NoopBookmarkValidator struct{}

func (NoopBookmarkValidator) RegisterBookmarks(string, []string) {}
