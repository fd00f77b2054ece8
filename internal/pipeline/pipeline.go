// Package pipeline coordinates the per-document build: content loading,
// system metadata, output merging, rendering, and publish registration.
// One Pipeline instance serves many files; per-file state lives in the
// Report.
package pipeline

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/frontmatter"
	"git.home.luguber.info/inful/docpublish/internal/loader"
	"git.home.luguber.info/inful/docpublish/internal/metadata"
	"git.home.luguber.info/inful/docpublish/internal/observability"
	"git.home.luguber.info/inful/docpublish/internal/output"
	"git.home.luguber.info/inful/docpublish/internal/publish"
)

// Report is the complete result of one file's pipeline run.
type Report struct {
	Doc      document.SourceDocument
	Item     *publish.PublishItem
	Errors   []*berrors.BuildError
	Skipped  bool // true when the registry rejected the claim
	Duration time.Duration
}

// Fatal reports whether the file's build was aborted.
func (r Report) Fatal() bool {
	for _, e := range r.Errors {
		if e.IsFatal() {
			return true
		}
	}
	return false
}

// Pipeline wires the stages for one build configuration.
type Pipeline struct {
	cfg        *config.Config
	loader     *loader.ContentLoader
	authorMeta metadata.MetadataProvider
	sysBuilder *metadata.Builder
	outputs    *output.Builder
	strategy   *output.Strategy
	assembler  *publish.Assembler
}

// New assembles a pipeline.
func New(cfg *config.Config, contentLoader *loader.ContentLoader, authorMeta metadata.MetadataProvider, sysBuilder *metadata.Builder, outputs *output.Builder, strategy *output.Strategy, assembler *publish.Assembler) *Pipeline {
	if authorMeta == nil {
		authorMeta = metadata.StaticMetadataProvider{}
	}
	return &Pipeline{
		cfg:        cfg,
		loader:     contentLoader,
		authorMeta: authorMeta,
		sysBuilder: sysBuilder,
		outputs:    outputs,
		strategy:   strategy,
		assembler:  assembler,
	}
}

// BuildFile runs the full pipeline for one source file. A fatal error
// aborts only this file; the report always carries every error collected
// up to that point.
func (p *Pipeline) BuildFile(ctx context.Context, doc document.SourceDocument, raw []byte) Report {
	start := time.Now()
	ctx = observability.WithFile(ctx, doc.FilePath)
	errs := berrors.NewList()

	report := func(item *publish.PublishItem, skipped bool) Report {
		return Report{
			Doc:      doc,
			Item:     item,
			Errors:   errs.Errors(),
			Skipped:  skipped,
			Duration: time.Since(start),
		}
	}

	if doc.Locale == "" {
		doc.Locale = p.cfg.Localization.DefaultLocale
	}

	authorMetadata, body := p.resolveAuthorMetadata(ctx, doc, raw, errs)

	// Content loading and system metadata are independent; their errors
	// merge into the one per-file list, loader first.
	loadErrs := berrors.NewList()
	model, fatal := p.loadContent(ctx, doc, body, authorMetadata, loadErrs)

	sysErrs := berrors.NewList()
	sys := p.sysBuilder.Build(observability.WithStage(ctx, "system-metadata"), doc, authorMetadata, sysErrs)

	errs.Merge(loadErrs)
	errs.Merge(sysErrs)

	if fatal != nil {
		errs.Add(fatal)
		observability.ErrorContext(ctx, "file build aborted")
		return report(nil, false)
	}

	res := p.outputs.Build(observability.WithStage(ctx, "output-model"), doc, model, authorMetadata, sys, errs)

	var rendered output.Rendered
	if doc.ContentKind == document.ContentPage {
		rendered = p.strategy.Render(observability.WithStage(ctx, "render"), doc, res, errs)
	} else {
		// Data files publish the transformed value as-is.
		rendered = output.Rendered{Output: res.Model}
	}

	routing := p.routing(doc, sys)
	item, err := p.assembler.Assemble(observability.WithStage(ctx, "publish"), doc, rendered, routing, res.Metadata, errs)
	if err != nil {
		errs.Add(err)
		return report(nil, false)
	}
	if item == nil {
		observability.InfoContext(ctx, "output path already claimed, skipping writes")
		return report(nil, true)
	}

	return report(item, false)
}

// resolveAuthorMetadata merges provider-served metadata with markdown
// frontmatter (frontmatter wins). The returned body has frontmatter
// stripped for markdown sources and is raw for everything else.
func (p *Pipeline) resolveAuthorMetadata(ctx context.Context, doc document.SourceDocument, raw []byte, errs *berrors.List) (map[string]any, []byte) {
	provided, provErrs := p.authorMeta.AuthorMetadata(ctx, doc.FilePath)
	for _, err := range provErrs {
		errs.Add(berrors.CollaboratorError(err, "author metadata lookup failed"))
	}
	if provided == nil {
		provided = map[string]any{}
	}

	if document.FileKindFromPath(doc.FilePath) != document.KindMarkdown {
		return provided, raw
	}

	fm, body, had, err := frontmatter.Split(raw)
	if err != nil {
		errs.Add(berrors.WrapParse(err, "frontmatter split failed"))
		return provided, raw
	}
	if !had {
		return provided, body
	}

	declared, err := frontmatter.ParseYAML(fm)
	if err != nil {
		errs.Add(berrors.WrapParse(err, "frontmatter parse failed"))
		return provided, body
	}
	return output.Merge(provided, declared), body
}

// loadContent runs the format-specific loader. The second return value is
// the fatal error, if any.
func (p *Pipeline) loadContent(ctx context.Context, doc document.SourceDocument, body []byte, authorMetadata map[string]any, errs *berrors.List) (document.Model, error) {
	model, err := p.loader.Load(observability.WithStage(ctx, "load"), doc, body, authorMetadata, errs)
	if err != nil {
		return nil, err
	}
	return model, nil
}

// routing derives the publish addressing for one file from its system
// metadata.
func (p *Pipeline) routing(doc document.SourceDocument, sys metadata.SystemMetadata) publish.Routing {
	urlPath := relativeURLPath(sys)
	return publish.Routing{
		URL:          "/" + sys.Locale + "/" + urlPath,
		SourcePath:   doc.FilePath,
		Locale:       sys.Locale,
		Monikers:     sys.Monikers,
		MonikerGroup: sys.MonikerGroup,
		BasePath:     p.cfg.SiteBasePath,
	}
}

func relativeURLPath(sys metadata.SystemMetadata) string {
	prefix := sys.CanonicalURLPrefix
	url := sys.CanonicalURL
	if len(url) >= len(prefix) && url[:len(prefix)] == prefix {
		return url[len(prefix):]
	}
	return url
}
