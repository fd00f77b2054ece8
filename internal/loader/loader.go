// Package loader turns one authored source file into the canonical content
// model. Dispatch is a closed tagged variant keyed by file kind; each case
// carries its own loader function.
package loader

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/render"
	"git.home.luguber.info/inful/docpublish/internal/schema"
)

// loadFunc is one dispatch case. A non-nil error is fatal for the file;
// everything else is appended to errs.
type loadFunc func(ctx context.Context, doc document.SourceDocument, raw []byte, authorMetadata map[string]any, errs *berrors.List) (document.Model, error)

// ContentLoader dispatches by file kind to a format-specific loader.
type ContentLoader struct {
	markdown  *markdownLoader
	schemaDoc *SchemaDocumentProcessor

	dispatch map[document.FileKind]loadFunc
}

// New wires a content loader from its capabilities.
func New(converter render.MarkdownConverter, bookmarks render.BookmarkValidator, serverTemplates render.ServerTemplateRenderer, registry *schema.Registry) *ContentLoader {
	if bookmarks == nil {
		bookmarks = render.NoopBookmarkValidator{}
	}

	md := &markdownLoader{converter: converter, bookmarks: bookmarks}
	sd := &SchemaDocumentProcessor{
		registry:        registry,
		serverTemplates: serverTemplates,
		bookmarks:       bookmarks,
	}

	l := &ContentLoader{markdown: md, schemaDoc: sd}
	l.dispatch = map[document.FileKind]loadFunc{
		document.KindMarkdown: md.load,
		document.KindYaml:     sd.load,
		document.KindJson:     sd.load,
	}
	return l
}

// Load produces the canonical model for one file. The returned error is
// fatal and aborts the file; non-fatal problems are collected into errs.
func (l *ContentLoader) Load(ctx context.Context, doc document.SourceDocument, raw []byte, authorMetadata map[string]any, errs *berrors.List) (document.Model, error) {
	kind := document.FileKindFromPath(doc.FilePath)
	fn, ok := l.dispatch[kind]
	if !ok {
		return nil, berrors.New(berrors.CategoryInternal, berrors.SeverityFatal,
			fmt.Sprintf("no loader for file %s", doc.FilePath))
	}
	return fn(ctx, doc, raw, authorMetadata, errs)
}
