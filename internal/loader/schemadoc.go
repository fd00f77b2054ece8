package loader

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/htmlpost"
	"git.home.luguber.info/inful/docpublish/internal/render"
	"git.home.luguber.info/inful/docpublish/internal/schema"
)

// SchemaDocumentProcessor loads schema-typed yaml/json sources: parse,
// validate, two-pass transform, and the legacy landing-page re-render.
type SchemaDocumentProcessor struct {
	registry        *schema.Registry
	serverTemplates render.ServerTemplateRenderer
	bookmarks       render.BookmarkValidator
}

func (p *SchemaDocumentProcessor) load(ctx context.Context, doc document.SourceDocument, raw []byte, authorMetadata map[string]any, errs *berrors.List) (document.Model, error) {
	// JSON is parsed with the same decoder; it is a YAML subset.
	var top any
	if err := yaml.Unmarshal(raw, &top); err != nil {
		errs.Add(berrors.WrapParse(err, "syntax error in schema-typed source"))
	}

	obj, ok := top.(map[string]any)
	if !ok {
		// Fatal: nothing below can run without an object tree.
		return nil, berrors.TypeError(fmt.Sprintf("top-level token of %s is not an object", doc.FilePath))
	}

	transformer, err := p.registry.Lookup(doc.SchemaType)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryCollaborator, berrors.SeverityFatal, "schema transformer lookup failed")
	}

	for _, verr := range transformer.Validate(obj) {
		errs.Add(berrors.Wrap(verr, berrors.CategoryValidation, berrors.SeverityError, "schema validation failed"))
	}

	tctx := schema.Context{FilePath: doc.FilePath, Locale: doc.Locale}

	// Pass one transforms the author metadata alone so the full-document
	// pass never needs to re-derive it.
	metaIn := map[string]any{document.KeyMetadata: authorMetadata}
	metaOut, tErrs := transformer.Transform(ctx, metaIn, tctx)
	for _, terr := range tErrs {
		errs.Add(berrors.Wrap(terr, berrors.CategoryValidation, berrors.SeverityError, "metadata transform failed"))
	}

	transformed, tErrs := transformer.Transform(ctx, obj, tctx)
	for _, terr := range tErrs {
		errs.Add(berrors.Wrap(terr, berrors.CategoryValidation, berrors.SeverityError, "content transform failed"))
	}
	if transformed == nil {
		transformed = map[string]any{}
	}
	if metaOut != nil {
		if spliced, ok := metaOut[document.KeyMetadata]; ok {
			transformed[document.KeyMetadata] = spliced
		}
	}

	if doc.Legacy && doc.SchemaType == schema.LandingDataType {
		return p.renderLandingPage(ctx, doc, transformed, errs)
	}

	return document.Model(transformed), nil
}

// landingPage is the record handed to the server-side template for the
// legacy landing-page render pass.
type landingPage struct {
	Title    string           `json:"title"`
	Summary  string           `json:"summary"`
	Metadata map[string]any   `json:"metadata"`
	Sections []map[string]any `json:"sections"`
}

// renderLandingPage runs the second, layered content-generation pass for
// legacy landing pages: server-template render, then the same
// post-processing as conceptual content, re-wrapped as a conceptual-shaped
// model. The extension data carries the transformed object verbatim.
func (p *SchemaDocumentProcessor) renderLandingPage(ctx context.Context, doc document.SourceDocument, transformed map[string]any, errs *berrors.List) (document.Model, error) {
	record, err := deserializeLandingPage(transformed)
	if err != nil {
		return nil, berrors.TypeError(fmt.Sprintf("landing page shape mismatch in %s: %v", doc.FilePath, err))
	}

	rendered, err := p.serverTemplates.Render(ctx, schema.LandingDataType, record)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryCollaborator, berrors.SeverityFatal, "landing page template render failed")
	}

	processed, err := htmlpost.Process(rendered, doc.Locale)
	if err != nil {
		return nil, berrors.InternalError(err, "html post-processing failed")
	}

	title := record.Title
	rawTitle := ""
	if extracted, raw, ok := htmlpost.ExtractTitle(processed.HTML); ok {
		rawTitle = raw
		if title == "" {
			title = extracted
		}
	}

	p.bookmarks.RegisterBookmarks(doc.FilePath, processed.Bookmarks)

	model := document.NewConceptual(processed.HTML, processed.WordCount, title, rawTitle)
	model[document.KeyExtension] = transformed
	return model, nil
}

func deserializeLandingPage(transformed map[string]any) (landingPage, error) {
	data, err := json.Marshal(transformed)
	if err != nil {
		return landingPage{}, err
	}
	var record landingPage
	if err := json.Unmarshal(data, &record); err != nil {
		return landingPage{}, err
	}
	return record, nil
}
