package output

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
)

// failingMarkup fails the test if invoked.
type failingMarkup struct{ t *testing.T }

func (m failingMarkup) Render(context.Context, string, any) (string, error) {
	m.t.Fatal("markup renderer must not be invoked on the raw branch")
	return "", nil
}

// fixedMarkup returns a fixed string.
type fixedMarkup struct{ out string }

func (m fixedMarkup) Render(context.Context, string, any) (string, error) {
	return m.out, nil
}

// erroringMarkup always fails.
type erroringMarkup struct{}

func (erroringMarkup) Render(context.Context, string, any) (string, error) {
	return "", errors.New("template engine down")
}

func conceptualResult() Result {
	model := map[string]any{
		document.KeyConceptual: "<p>body</p>",
		document.KeyWordCount:  1,
	}
	return Result{Model: model, Metadata: map[string]any{"title": "T"}}
}

func TestRender_JsonOutputWithoutLegacy_ReturnsModelVerbatim(t *testing.T) {
	s := NewStrategy(true, false, nil, failingMarkup{t}, nil)
	doc := document.SourceDocument{FilePath: "a.md", ContentKind: document.ContentPage}
	res := conceptualResult()
	errs := berrors.NewList()

	rendered := s.Render(context.Background(), doc, res, errs)

	require.False(t, rendered.IsMarkup)
	// Reference equality: the raw branch hands back the merged model itself.
	require.Equal(t, res.Model, rendered.Output)
	require.Equal(t, res.Metadata, rendered.Metadata)
	require.Zero(t, errs.Len())
}

func TestRender_JsonOutputWithLegacy_ReturnsTemplateModel(t *testing.T) {
	s := NewStrategy(true, true, nil, fixedMarkup{"unused"}, nil)
	doc := document.SourceDocument{FilePath: "a.md", ContentKind: document.ContentPage}
	errs := berrors.NewList()

	rendered := s.Render(context.Background(), doc, conceptualResult(), errs)

	tm, ok := rendered.Output.(document.TemplateModel)
	require.True(t, ok)
	require.Equal(t, "<p>body</p>", tm.Content)
	require.False(t, rendered.IsMarkup)
}

func TestRender_MarkupBranch_ReturnsRenderedString(t *testing.T) {
	s := NewStrategy(false, false, nil, fixedMarkup{"<html>final</html>"}, nil)
	doc := document.SourceDocument{FilePath: "a.md", ContentKind: document.ContentPage}
	errs := berrors.NewList()

	rendered := s.Render(context.Background(), doc, conceptualResult(), errs)

	require.True(t, rendered.IsMarkup)
	require.Equal(t, "<html>final</html>", rendered.Output)
}

func TestRender_MarkupFailure_CollectedAndFallsBackToContent(t *testing.T) {
	s := NewStrategy(false, false, nil, erroringMarkup{}, nil)
	doc := document.SourceDocument{FilePath: "a.md", ContentKind: document.ContentPage}
	errs := berrors.NewList()

	rendered := s.Render(context.Background(), doc, conceptualResult(), errs)

	require.Equal(t, 1, errs.Len())
	require.False(t, errs.HasFatal())
	require.Equal(t, "<p>body</p>", rendered.Output)
}

func TestRender_EmptyConceptualContent_UsesPlaceholder(t *testing.T) {
	s := NewStrategy(true, true, nil, fixedMarkup{""}, nil)
	doc := document.SourceDocument{FilePath: "a.md", ContentKind: document.ContentPage}
	res := Result{
		Model:    map[string]any{document.KeyConceptual: "   \n\t "},
		Metadata: map[string]any{},
	}
	errs := berrors.NewList()

	rendered := s.Render(context.Background(), doc, res, errs)

	tm := rendered.Output.(document.TemplateModel)
	require.Equal(t, PlaceholderContent, tm.Content)
}

func TestDeriveTemplateMetadata_LandingPage_ConceptualFieldStripped(t *testing.T) {
	s := NewStrategy(true, true, nil, fixedMarkup{""}, nil)
	doc := document.SourceDocument{FilePath: "index.yml", ContentKind: document.ContentPage}
	errs := berrors.NewList()

	meta := s.deriveTemplateMetadata(context.Background(), doc, map[string]any{
		document.KeyConceptual: "<p>landing</p>",
		"title":                "Landing",
	}, errs)

	require.NotContains(t, meta, document.KeyConceptual)
	require.Equal(t, "Landing", meta["title"])
}

func TestBuildMetaTags_PrivatePrefixedKeysExcluded(t *testing.T) {
	tags := BuildMetaTags(map[string]any{
		"title":    "A Page",
		"_private": "secret",
		"keywords": []any{"go", "docs"},
		"count":    3,
	})

	require.NotContains(t, tags, "secret")
	require.NotContains(t, tags, "_private")
	require.Contains(t, tags, `<meta name="title" content="A Page" />`)
	require.Contains(t, tags, `<meta name="keywords" content="go" />`)
	require.Contains(t, tags, `<meta name="keywords" content="docs" />`)
	require.Contains(t, tags, `<meta name="count" content="3" />`)
}

func TestBuildMetaTags_DeterministicKeyOrder(t *testing.T) {
	meta := map[string]any{"b": "2", "a": "1", "c": "3"}
	tags := BuildMetaTags(meta)

	aIdx := strings.Index(tags, `name="a"`)
	bIdx := strings.Index(tags, `name="b"`)
	cIdx := strings.Index(tags, `name="c"`)
	require.True(t, aIdx < bIdx && bIdx < cIdx)
}

func TestThemesRelativePath_WalksUpDirectoryDepth(t *testing.T) {
	require.Equal(t, "_themes/", themesRelativePath("index.md"))
	require.Equal(t, "../../_themes/", themesRelativePath("a/b/page.md"))
}
