package output

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/htmlpost"
)

// PlaceholderContent replaces empty or whitespace-only page bodies. The
// hosting layer treats empty bodies as not-found.
const PlaceholderContent = "<div></div>"

// conceptualKey names scripts and templates for untyped content.
const conceptualKey = "Conceptual"

// deriveContent produces the final content string for a page.
//
// Conceptual models (including legacy landing pages) contribute their
// conceptual field verbatim. True structured content runs a script-based
// pre-render into a simplified view, then a logic-less template render,
// then the same post-processing as conceptual content.
func (s *Strategy) deriveContent(ctx context.Context, doc document.SourceDocument, model map[string]any, errs *berrors.List) string {
	var content string

	if document.Model(model).IsConceptual() {
		content, _ = model[document.KeyConceptual].(string)
	} else {
		view, scriptErrs := s.scripts.RenderObject(ctx, viewScript(doc.SchemaType), model)
		for _, err := range scriptErrs {
			errs.Add(berrors.Wrap(err, berrors.CategoryCollaborator, berrors.SeverityError, "content view script failed"))
		}

		fragment, err := s.markup.Render(ctx, contentTemplate(doc.SchemaType), view)
		if err != nil {
			errs.Add(berrors.Wrap(err, berrors.CategoryCollaborator, berrors.SeverityError, "content template render failed"))
		}

		processed, err := htmlpost.Process(fragment, doc.Locale)
		if err != nil {
			errs.Add(berrors.InternalError(err, "html post-processing failed"))
		} else {
			s.bookmarks.RegisterBookmarks(doc.FilePath, processed.Bookmarks)
			content = processed.HTML
		}
	}

	if strings.TrimSpace(content) == "" {
		return PlaceholderContent
	}
	return content
}

// deriveTemplateMetadata computes template metadata through the script
// capability keyed by schema type (or the conceptual key when untyped).
// Landing pages carry a conceptual field that is stripped here.
func (s *Strategy) deriveTemplateMetadata(ctx context.Context, doc document.SourceDocument, model map[string]any, errs *berrors.List) map[string]any {
	key := doc.SchemaType
	if key == "" {
		key = conceptualKey
	}

	value, scriptErrs := s.scripts.RenderObject(ctx, metadataScript(key), model)
	for _, err := range scriptErrs {
		errs.Add(berrors.Wrap(err, berrors.CategoryCollaborator, berrors.SeverityError, "template metadata script failed"))
	}

	meta, ok := value.(map[string]any)
	if !ok {
		if value != nil {
			errs.Add(berrors.ValidationError(fmt.Sprintf("template metadata script for %s did not return an object", key)))
		}
		meta = map[string]any{}
	}

	if _, has := meta[document.KeyConceptual]; has {
		meta = Merge(meta)
		delete(meta, document.KeyConceptual)
	}
	return meta
}

func viewScript(schemaType string) string      { return schemaType + ".view" }
func metadataScript(key string) string         { return key + ".mta" }
func contentTemplate(schemaType string) string { return schemaType + ".html" }

// pageTemplate names the site-level markup template wrapping a page.
func pageTemplate() string { return "page.html" }

// BuildMetaTags derives page-level HTML meta tags from template metadata,
// excluding keys reserved with the private-prefix convention and values
// that do not render as scalars.
func BuildMetaTags(meta map[string]any) string {
	var sb strings.Builder
	for _, key := range SortedKeys(meta) {
		if strings.HasPrefix(key, "_") {
			continue
		}
		switch v := meta[key].(type) {
		case string:
			writeMetaTag(&sb, key, v)
		case bool:
			writeMetaTag(&sb, key, fmt.Sprintf("%t", v))
		case int, int64, float64:
			writeMetaTag(&sb, key, fmt.Sprintf("%v", v))
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					writeMetaTag(&sb, key, s)
				}
			}
		}
	}
	return sb.String()
}

func writeMetaTag(sb *strings.Builder, name, content string) {
	sb.WriteString(`<meta name="`)
	sb.WriteString(htmlEscape(name))
	sb.WriteString(`" content="`)
	sb.WriteString(htmlEscape(content))
	sb.WriteString("\" />\n")
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
