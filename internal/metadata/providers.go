// Package metadata builds the file-level system metadata record. Every
// field is a pure function of file identity and collaborator results;
// construction never depends on content loading.
package metadata

import (
	"context"
	"time"
)

// MetadataProvider resolves author-declared metadata for a file.
type MetadataProvider interface {
	AuthorMetadata(ctx context.Context, filePath string) (map[string]any, []error)
}

// MonikerProvider resolves the ordered version labels a file applies to.
type MonikerProvider interface {
	Monikers(ctx context.Context, filePath string) ([]string, error)
}

// Contribution is the result of a source-control contribution lookup.
type Contribution struct {
	Author    string
	UpdatedAt time.Time
	Commit    string
}

// GitURLs carries repository URLs derived for a file.
type GitURLs struct {
	ContentGitURL                 string
	OriginalContentGitURL         string
	OriginalContentGitURLTemplate string
}

// ContributionProvider resolves git contribution data and repository URLs.
type ContributionProvider interface {
	Contribution(ctx context.Context, filePath string) (Contribution, error)
	GitURLs(ctx context.Context, filePath string) (GitURLs, error)
}

// TocProvider resolves the relative path from a file to its nearest
// table-of-contents file.
type TocProvider interface {
	TocRelativePath(ctx context.Context, filePath string) (string, error)
}

// BreadcrumbResolver resolves an author-declared breadcrumb path against
// the site's redirect map.
type BreadcrumbResolver interface {
	Resolve(ctx context.Context, declaredPath string) (string, error)
}

// StaticMetadataProvider serves fixed author metadata keyed by file path.
// Intended for tests and single-docset builds with sidecar metadata.
type StaticMetadataProvider map[string]map[string]any

func (p StaticMetadataProvider) AuthorMetadata(_ context.Context, filePath string) (map[string]any, []error) {
	if meta, ok := p[filePath]; ok {
		return meta, nil
	}
	return map[string]any{}, nil
}

// StaticMonikerProvider serves a fixed moniker list for every file.
type StaticMonikerProvider []string

func (p StaticMonikerProvider) Monikers(context.Context, string) ([]string, error) {
	return []string(p), nil
}

// NoopContributionProvider returns empty contribution data.
type NoopContributionProvider struct{}

func (NoopContributionProvider) Contribution(context.Context, string) (Contribution, error) {
	return Contribution{}, nil
}

func (NoopContributionProvider) GitURLs(context.Context, string) (GitURLs, error) {
	return GitURLs{}, nil
}

// NoopTocProvider returns an empty TOC path.
type NoopTocProvider struct{}

func (NoopTocProvider) TocRelativePath(context.Context, string) (string, error) {
	return "", nil
}

// IdentityBreadcrumbResolver returns the declared path unchanged.
type IdentityBreadcrumbResolver struct{}

func (IdentityBreadcrumbResolver) Resolve(_ context.Context, declaredPath string) (string, error) {
	return declaredPath, nil
}
