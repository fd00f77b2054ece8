package output

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/render"
)

// Rendered is the terminal output of one page build.
type Rendered struct {
	// Output is one of three shapes: the merged output model verbatim
	// (raw JSON branch), a TemplateModel (templated JSON branch), or the
	// final markup string.
	Output any

	// Metadata is the companion metadata object. Serialization is
	// key-sorted (encoding/json orders map keys; meta tags iterate
	// SortedKeys) so output is deterministic.
	Metadata map[string]any

	// IsMarkup is true when Output is the final markup string.
	IsMarkup bool
}

// Strategy selects among the three terminal output shapes based on the
// Output.Json and Legacy configuration flags. Page kind only; data files
// bypass rendering entirely.
type Strategy struct {
	jsonOutput bool
	legacy     bool

	scripts   render.ScriptRenderer
	markup    render.MarkupRenderer
	bookmarks render.BookmarkValidator
}

// NewStrategy wires a rendering strategy.
func NewStrategy(jsonOutput, legacy bool, scripts render.ScriptRenderer, markup render.MarkupRenderer, bookmarks render.BookmarkValidator) *Strategy {
	if scripts == nil {
		scripts = render.IdentityScriptRenderer{}
	}
	if bookmarks == nil {
		bookmarks = render.NoopBookmarkValidator{}
	}
	return &Strategy{
		jsonOutput: jsonOutput,
		legacy:     legacy,
		scripts:    scripts,
		markup:     markup,
		bookmarks:  bookmarks,
	}
}

// Render applies the output branching rules to one built page.
func (s *Strategy) Render(ctx context.Context, doc document.SourceDocument, res Result, errs *berrors.List) Rendered {
	if s.jsonOutput && !s.legacy {
		// Raw branch: the merged model goes out verbatim, no template
		// invocation.
		return Rendered{Output: res.Model, Metadata: res.Metadata}
	}

	model, _ := res.Model.(map[string]any)
	tm, tmMeta := s.createTemplateModel(ctx, doc, model, errs)

	if s.jsonOutput {
		return Rendered{Output: tm, Metadata: tmMeta}
	}

	markup, err := s.markup.Render(ctx, pageTemplate(), tm)
	if err != nil {
		errs.Add(berrors.Wrap(err, berrors.CategoryCollaborator, berrors.SeverityError, "page markup render failed"))
		markup = tm.Content
	}
	return Rendered{Output: markup, Metadata: tmMeta, IsMarkup: true}
}

// createTemplateModel derives the TemplateModel and its metadata for the
// non-raw branches.
func (s *Strategy) createTemplateModel(ctx context.Context, doc document.SourceDocument, model map[string]any, errs *berrors.List) (document.TemplateModel, map[string]any) {
	content := s.deriveContent(ctx, doc, model, errs)
	tmMeta := s.deriveTemplateMetadata(ctx, doc, model, errs)

	tm := document.TemplateModel{
		Content:                       content,
		RawMetadata:                   tmMeta,
		PageMetadata:                  BuildMetaTags(tmMeta),
		ThemesRelativePathToOutputRoot: themesRelativePath(doc.FilePath),
	}
	return tm, tmMeta
}

// themesRelativePath walks back up to the output root from the page's
// directory depth.
func themesRelativePath(filePath string) string {
	depth := strings.Count(document.SitePath(filePath), "/")
	return strings.Repeat("../", depth) + "_themes/"
}
