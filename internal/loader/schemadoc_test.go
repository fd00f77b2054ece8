package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/document"
	berrors "git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/schema"
)

func TestLoad_Yaml_NonObjectTopLevel_FatalTypeError(t *testing.T) {
	l := newTestLoader(nil)
	doc := document.SourceDocument{FilePath: "list.yml", ContentKind: document.ContentPage, SchemaType: "TestType"}
	errs := berrors.NewList()

	model, err := l.Load(context.Background(), doc, []byte("- one\n- two\n"), map[string]any{}, errs)

	require.Nil(t, model)
	require.Error(t, err)
	require.True(t, berrors.IsFatal(err))
	require.True(t, berrors.IsCategory(err, berrors.CategoryType))
}

func TestLoad_Json_ScalarTopLevel_FatalTypeError(t *testing.T) {
	l := newTestLoader(nil)
	doc := document.SourceDocument{FilePath: "num.json", ContentKind: document.ContentPage, SchemaType: "TestType"}
	errs := berrors.NewList()

	_, err := l.Load(context.Background(), doc, []byte("42"), map[string]any{}, errs)
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryType))
}

func TestLoad_Yaml_UnregisteredSchemaType_Fatal(t *testing.T) {
	l := newTestLoader(nil)
	doc := document.SourceDocument{FilePath: "x.yml", ContentKind: document.ContentPage, SchemaType: "Nope"}
	errs := berrors.NewList()

	_, err := l.Load(context.Background(), doc, []byte("a: 1\n"), map[string]any{}, errs)
	require.Error(t, err)
	require.True(t, berrors.IsFatal(err))
}

func TestLoad_Yaml_Passthrough_ReturnsObjectModel(t *testing.T) {
	l := newTestLoader(nil)
	doc := document.SourceDocument{FilePath: "page.yml", ContentKind: document.ContentPage, SchemaType: "TestType"}
	errs := berrors.NewList()

	model, err := l.Load(context.Background(), doc, []byte("items:\n  - a\n"), map[string]any{}, errs)
	require.NoError(t, err)
	require.Equal(t, []any{"a"}, model["items"])
}

// splicingTransformer distinguishes the metadata pass (no content key)
// from the full-document pass and tags each result.
type splicingTransformer struct{}

func (splicingTransformer) Validate(map[string]any) []error { return nil }

func (splicingTransformer) Transform(_ context.Context, obj map[string]any, _ schema.Context) (map[string]any, []error) {
	if _, full := obj["content"]; !full {
		meta, _ := obj["metadata"].(map[string]any)
		out := map[string]any{"source": "metadata-pass"}
		for k, v := range meta {
			out[k] = v
		}
		return map[string]any{"metadata": out}, nil
	}
	return map[string]any{
		"content":  obj["content"],
		"metadata": map[string]any{"source": "document-pass"},
	}, nil
}

func TestLoad_Yaml_MetadataPassResultSplicedIntoDocumentResult(t *testing.T) {
	registry := schema.NewRegistry()
	registry.Register("Spliced", splicingTransformer{})
	l := New(nil, nil, nil, registry)

	doc := document.SourceDocument{FilePath: "page.yml", ContentKind: document.ContentPage, SchemaType: "Spliced"}
	errs := berrors.NewList()

	model, err := l.Load(context.Background(), doc, []byte("content: body\nmetadata:\n  title: t\n"),
		map[string]any{"title": "author-title"}, errs)
	require.NoError(t, err)

	meta, ok := model["metadata"].(map[string]any)
	require.True(t, ok)
	// The full-document pass must not win over the metadata pass.
	require.Equal(t, "metadata-pass", meta["source"])
	require.Equal(t, "author-title", meta["title"])
	require.Equal(t, "body", model["content"])
}

func TestLoad_LegacyLandingPage_RewrappedAsConceptualWithExtensionData(t *testing.T) {
	bookmarks := newRecordingBookmarks()
	l := newTestLoader(bookmarks)
	doc := document.SourceDocument{
		FilePath:    "index.yml",
		ContentKind: document.ContentPage,
		SchemaType:  schema.LandingDataType,
		Locale:      "en-us",
		Legacy:      true,
	}
	errs := berrors.NewList()

	raw := []byte("title: Welcome\nsummary: All the docs\n")
	model, err := l.Load(context.Background(), doc, raw, map[string]any{}, errs)
	require.NoError(t, err)

	require.True(t, model.IsConceptual())
	require.Contains(t, model[document.KeyConceptual].(string), "Welcome")
	require.Equal(t, "Welcome", model[document.KeyTitle])

	// Extension data carries the transformed object verbatim, untouched by
	// the landing render pass.
	ext, ok := model[document.KeyExtension].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Welcome", ext["title"])
	require.Equal(t, "All the docs", ext["summary"])

	require.Contains(t, bookmarks.files["index.yml"], "landing-intro")
}

func TestLoad_NonLegacyLandingPage_NoRenderPass(t *testing.T) {
	l := newTestLoader(nil)
	doc := document.SourceDocument{
		FilePath:    "index.yml",
		ContentKind: document.ContentPage,
		SchemaType:  schema.LandingDataType,
		Legacy:      false,
	}
	errs := berrors.NewList()

	model, err := l.Load(context.Background(), doc, []byte("title: Welcome\n"), map[string]any{}, errs)
	require.NoError(t, err)
	require.False(t, model.IsConceptual())
	require.Equal(t, "Welcome", model["title"])
}
