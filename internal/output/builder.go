package output

import (
	"context"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/metadata"
	"git.home.luguber.info/inful/docpublish/internal/render"
)

// Result is what the output builder hands to the rendering strategy.
type Result struct {
	// Model is the merged output model. For data-kind files this is the
	// value produced by the data transform script, wrapped only if the
	// script returned an object.
	Model any

	// Metadata is the companion metadata object. Nil for data-kind files:
	// no companion artifact is produced for them.
	Metadata map[string]any
}

// Builder merges content model, author metadata, and system metadata per
// the content-type rules.
type Builder struct {
	scripts render.ScriptRenderer
}

// NewBuilder creates an output model builder. scripts backs the
// mime-specific data transform.
func NewBuilder(scripts render.ScriptRenderer) *Builder {
	if scripts == nil {
		scripts = render.IdentityScriptRenderer{}
	}
	return &Builder{scripts: scripts}
}

// Build merges per content kind. The merge precedence asymmetry between
// conceptual and schema-typed content is deliberate: system metadata folds
// into the top level for conceptual pages but into the nested metadata
// object for schema-typed ones.
func (b *Builder) Build(ctx context.Context, doc document.SourceDocument, model document.Model, authorMetadata map[string]any, sys metadata.SystemMetadata, errs *berrors.List) Result {
	sysMap := sys.AsMap()

	if doc.ContentKind == document.ContentPage && doc.IsConceptual() {
		return Result{
			Model:    Merge(authorMetadata, model, sysMap),
			Metadata: Merge(authorMetadata, sysMap),
		}
	}

	// Schema-typed: system metadata always wins over content-declared
	// metadata at the nested level.
	merged := Merge(model.Metadata(), sysMap)
	outputModel := Merge(map[string]any{}, model, map[string]any{document.KeyMetadata: merged})

	if doc.ContentKind == document.ContentData {
		value, scriptErrs := b.scripts.RenderObject(ctx, dataTransformScript(doc.SchemaType), outputModel)
		for _, err := range scriptErrs {
			errs.Add(berrors.Wrap(err, berrors.CategoryCollaborator, berrors.SeverityError, "data transform script failed"))
		}
		if value == nil {
			value = outputModel
		}
		return Result{Model: value, Metadata: nil}
	}

	return Result{Model: outputModel, Metadata: merged}
}

// dataTransformScript names the mime-specific data transform for a schema
// type.
func dataTransformScript(schemaType string) string {
	return schemaType + ".json"
}
