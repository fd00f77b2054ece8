// Package document defines the data model flowing through the per-file
// publish pipeline: the source descriptor, the canonical content model
// produced by loading, and the template model handed to renderers.
package document

import (
	"path"
	"path/filepath"
	"strings"
)

// FileKind identifies the source format, selected by file extension.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindMarkdown
	KindYaml
	KindJson
)

// ContentKind identifies what the file publishes as.
type ContentKind string

const (
	ContentPage ContentKind = "page"
	ContentData ContentKind = "data"
)

// SourceDocument describes one authored source file. It is immutable for
// the duration of one build.
type SourceDocument struct {
	FilePath    string      // Path relative to the docset root
	ContentKind ContentKind // page or data
	SchemaType  string      // Empty means conceptual content
	Locale      string
	Legacy      bool
	Monikers    []string // Ordered version labels this file applies to
	IsPage      bool
}

// IsConceptual reports whether the document carries free-form authored
// content with no schema type.
func (d SourceDocument) IsConceptual() bool {
	return d.SchemaType == ""
}

// BaseName returns the file name without directory or extension.
func (d SourceDocument) BaseName() string {
	name := path.Base(SitePath(d.FilePath))
	return strings.TrimSuffix(name, path.Ext(name))
}

// FileKindFromPath selects the loader dispatch tag by extension.
func FileKindFromPath(filePath string) FileKind {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".md":
		return KindMarkdown
	case ".yml", ".yaml":
		return KindYaml
	case ".json":
		return KindJson
	default:
		return KindUnknown
	}
}

// SitePath normalizes a file path to forward-slash separators regardless
// of host path conventions.
func SitePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
