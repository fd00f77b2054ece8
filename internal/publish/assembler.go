package publish

import (
	"context"
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/output"
)

// Output artifact suffixes. The legacy metadata companion path is derived
// by replacing the primary suffix with the metadata suffix.
const (
	RawPageSuffix  = ".raw.page.json"
	MarkupSuffix   = ".html"
	DataSuffix     = ".json"
	MetadataSuffix = ".mta.json"
)

// Routing carries the addressing inputs for one file's publish item.
type Routing struct {
	URL          string
	SourcePath   string
	Locale       string
	Monikers     []string
	MonikerGroup string
	BasePath     string
}

// Assembler builds the manifest entry, performs atomic unique
// registration, and triggers artifact writes only on success.
type Assembler struct {
	registry Registry
	writer   ArtifactWriter
	legacy   bool
}

// NewAssembler wires an assembler.
func NewAssembler(registry Registry, writer ArtifactWriter, legacy bool) *Assembler {
	return &Assembler{registry: registry, writer: writer, legacy: legacy}
}

// Assemble publishes one built file. A registry rejection skips all writes
// and returns a nil item: the collision is reported by the registry owner,
// not recorded as this file's error.
func (a *Assembler) Assemble(ctx context.Context, doc document.SourceDocument, rendered output.Rendered, routing Routing, extensionData map[string]any, errs *berrors.List) (*PublishItem, error) {
	if isReserved404(doc.FilePath) {
		// Non-fatal: custom 404 pages are unsupported but the page still
		// builds.
		errs.Add(berrors.ContentError(fmt.Sprintf("custom 404 page is not supported: %s", doc.FilePath)))
	}

	outputPath := OutputPath(doc, routing, rendered.IsMarkup)
	item := PublishItem{
		URL:           routing.URL,
		Path:          outputPath,
		SourcePath:    document.SitePath(routing.SourcePath),
		Locale:        routing.Locale,
		Monikers:      routing.Monikers,
		MonikerGroup:  routing.MonikerGroup,
		ExtensionData: extensionData,
	}

	claimed, err := a.registry.Claim(ctx, item)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CategoryPublish, berrors.SeverityFatal, "publish registry claim failed")
	}
	if !claimed {
		return nil, nil
	}

	if rendered.IsMarkup {
		markup, _ := rendered.Output.(string)
		if err := a.writer.WriteText(outputPath, markup); err != nil {
			return nil, berrors.Wrap(err, berrors.CategoryPublish, berrors.SeverityFatal, "write markup artifact failed")
		}
	} else {
		if err := a.writer.WriteJSON(outputPath, rendered.Output); err != nil {
			return nil, berrors.Wrap(err, berrors.CategoryPublish, berrors.SeverityFatal, "write output artifact failed")
		}
	}

	if a.legacy && doc.ContentKind == document.ContentPage && rendered.Metadata != nil {
		if err := a.writer.WriteJSON(MetadataPath(outputPath), rendered.Metadata); err != nil {
			return nil, berrors.Wrap(err, berrors.CategoryPublish, berrors.SeverityFatal, "write metadata artifact failed")
		}
	}

	return &item, nil
}

// OutputPath derives the primary artifact path from routing data and the
// output shape.
func OutputPath(doc document.SourceDocument, routing Routing, isMarkup bool) string {
	sitePath := document.SitePath(doc.FilePath)
	ext := path.Ext(sitePath)
	stem := strings.TrimSuffix(sitePath, ext)

	var suffix string
	switch {
	case doc.ContentKind == document.ContentData:
		suffix = DataSuffix
	case isMarkup:
		suffix = MarkupSuffix
	default:
		suffix = RawPageSuffix
	}

	segments := []string{}
	if base := strings.Trim(routing.BasePath, "/"); base != "" {
		segments = append(segments, base)
	}
	if routing.MonikerGroup != "" {
		segments = append(segments, routing.MonikerGroup)
	}
	segments = append(segments, stem+suffix)
	return path.Join(segments...)
}

// MetadataPath maps a primary artifact path to its legacy metadata
// companion path.
func MetadataPath(primaryPath string) string {
	switch {
	case strings.HasSuffix(primaryPath, RawPageSuffix):
		return strings.TrimSuffix(primaryPath, RawPageSuffix) + MetadataSuffix
	case strings.HasSuffix(primaryPath, MarkupSuffix):
		return strings.TrimSuffix(primaryPath, MarkupSuffix) + MetadataSuffix
	default:
		return primaryPath + MetadataSuffix
	}
}

// isReserved404 reports whether the file's base name (case-insensitive,
// extension ignored) is the reserved "404".
func isReserved404(filePath string) bool {
	name := path.Base(document.SitePath(filePath))
	name = strings.TrimSuffix(name, path.Ext(name))
	return strings.EqualFold(name, "404")
}
