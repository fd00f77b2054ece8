package metadata

import (
	"context"
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
)

// breadcrumbKey is the author metadata key that opts a file into
// breadcrumb resolution.
const breadcrumbKey = "breadcrumb_path"

// Builder aggregates system metadata from independently fallible
// collaborator lookups. It always returns a fully populated record: a
// failed sub-lookup contributes its zero value and a collected
// collaborator error.
type Builder struct {
	cfg        *config.Config
	monikers   MonikerProvider
	contrib    ContributionProvider
	toc        TocProvider
	breadcrumb BreadcrumbResolver
}

// NewBuilder wires a builder. Nil providers degrade to their noop
// equivalents so callers only inject what they have.
func NewBuilder(cfg *config.Config, monikers MonikerProvider, contrib ContributionProvider, toc TocProvider, breadcrumb BreadcrumbResolver) *Builder {
	if monikers == nil {
		monikers = StaticMonikerProvider(nil)
	}
	if contrib == nil {
		contrib = NoopContributionProvider{}
	}
	if toc == nil {
		toc = NoopTocProvider{}
	}
	if breadcrumb == nil {
		breadcrumb = IdentityBreadcrumbResolver{}
	}
	return &Builder{cfg: cfg, monikers: monikers, contrib: contrib, toc: toc, breadcrumb: breadcrumb}
}

// Build computes the system metadata for one file. Collaborator failures
// are appended to errs; the returned record is complete regardless.
func (b *Builder) Build(ctx context.Context, doc document.SourceDocument, authorMetadata map[string]any, errs *berrors.List) SystemMetadata {
	locale := doc.Locale
	if locale == "" {
		locale = b.cfg.Localization.DefaultLocale
	}

	sitePath := document.SitePath(doc.FilePath)
	urlPath := siteURLPath(sitePath)
	prefix := canonicalURLPrefix(b.cfg.HostName, b.cfg.SiteBasePath, locale)

	meta := SystemMetadata{
		Locale:             locale,
		Path:               sitePath,
		CanonicalURLPrefix: prefix,
		CanonicalURL:       prefix + urlPath,
		DocumentID:         documentID(b.cfg.Name, sitePath),
		// The version-independent ID ignores the file extension so markdown
		// and schema-typed sources publishing to the same URL share it.
		DocumentVersionIndependentID: documentID(b.cfg.Name, urlPath),
		SearchProduct:                b.cfg.Product,
		SearchDocsetName:             b.cfg.Name,
		Monikers:                     []string{},
	}

	if monikers, err := b.monikers.Monikers(ctx, doc.FilePath); err != nil {
		errs.Add(berrors.CollaboratorError(err, "moniker lookup failed"))
	} else if monikers != nil {
		meta.Monikers = monikers
	}
	meta.MonikerGroup = monikerGroup(meta.Monikers)

	if declared, ok := authorMetadata[breadcrumbKey].(string); ok && declared != "" {
		if resolved, err := b.breadcrumb.Resolve(ctx, declared); err != nil {
			errs.Add(berrors.CollaboratorError(err, "breadcrumb resolution failed"))
		} else {
			meta.BreadcrumbPath = resolved
		}
	}

	if tocRel, err := b.toc.TocRelativePath(ctx, doc.FilePath); err != nil {
		errs.Add(berrors.CollaboratorError(err, "toc lookup failed"))
	} else {
		meta.TocRelativePath = tocRel
	}

	if contribution, err := b.contrib.Contribution(ctx, doc.FilePath); err != nil {
		errs.Add(berrors.CollaboratorError(err, "contribution lookup failed"))
	} else {
		meta.Author = contribution.Author
		meta.UpdatedAt = contribution.UpdatedAt
		meta.GitCommit = contribution.Commit
	}

	if urls, err := b.contrib.GitURLs(ctx, doc.FilePath); err != nil {
		errs.Add(berrors.CollaboratorError(err, "git url lookup failed"))
	} else {
		meta.ContentGitURL = urls.ContentGitURL
		meta.OriginalContentGitURL = urls.OriginalContentGitURL
		meta.OriginalContentGitURLTemplate = urls.OriginalContentGitURLTemplate
	}

	if b.cfg.Output.Pdf {
		meta.PdfURLPrefixTemplate = fmt.Sprintf("https://%s/pdfstore/%s/%s.%s/{branchName}",
			b.cfg.HostName, locale, b.cfg.Product, b.cfg.Name)
	}

	return meta
}

// siteURLPath strips the source extension and index file names from a
// normalized site path. Only a whole "index" segment is stripped, never a
// stem that merely ends in it.
func siteURLPath(sitePath string) string {
	ext := path.Ext(sitePath)
	p := strings.TrimSuffix(sitePath, ext)
	if p == "index" {
		return ""
	}
	return strings.TrimSuffix(p, "/index")
}

func canonicalURLPrefix(hostName, basePath, locale string) string {
	base := strings.TrimSuffix(basePath, "/")
	return fmt.Sprintf("https://%s%s/%s/", hostName, base, locale)
}
